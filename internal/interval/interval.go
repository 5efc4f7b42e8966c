// Package interval provides 1-based closed genomic intervals and the
// exonic-distance sums the boundary annotator is built on.
package interval

import (
	"fmt"
	"strconv"
	"strings"
)

// Interval is a closed genomic interval [Start, End] in 1-based coordinates.
type Interval struct {
	Start int
	End   int
}

// Len returns the number of bases covered by the interval.
func (iv Interval) Len() int {
	return iv.End - iv.Start + 1
}

// Contains reports whether pos lies inside the interval.
func (iv Interval) Contains(pos int) bool {
	return pos >= iv.Start && pos <= iv.End
}

func (iv Interval) String() string {
	return fmt.Sprintf("%d-%d", iv.Start, iv.End)
}

// SumToPoint returns the number of bases of the sorted list that lie
// strictly before point.
func SumToPoint(sorted []Interval, point int) int {
	total := 0
	for _, iv := range sorted {
		if iv.Start > point {
			break
		}
		if iv.End < point {
			total += iv.Len()
		} else {
			total += point - iv.Start
		}
	}
	return total
}

// SumFromPoint returns the number of bases of the sorted list that lie
// strictly after point.
func SumFromPoint(sorted []Interval, point int) int {
	total := 0
	for i := len(sorted) - 1; i >= 0; i-- {
		iv := sorted[i]
		if iv.End < point {
			break
		}
		if iv.Start > point {
			total += iv.Len()
		} else {
			total += iv.End - point
		}
	}
	return total
}

// TotalLen returns the summed length of all intervals.
func TotalLen(list []Interval) int {
	total := 0
	for _, iv := range list {
		total += iv.Len()
	}
	return total
}

// Gaps returns the intervals between consecutive members of a sorted list.
// Adjacent or overlapping members produce no gap.
func Gaps(sorted []Interval) []Interval {
	var gaps []Interval
	for i := 1; i < len(sorted); i++ {
		start := sorted[i-1].End + 1
		end := sorted[i].Start - 1
		if end >= start {
			gaps = append(gaps, Interval{Start: start, End: end})
		}
	}
	return gaps
}

// Span returns the first start and last end of a sorted list.
// ok is false for an empty list.
func Span(sorted []Interval) (start, end int, ok bool) {
	if len(sorted) == 0 {
		return 0, 0, false
	}
	return sorted[0].Start, sorted[len(sorted)-1].End, true
}

// Format renders a list as "s-e,s-e"; an empty list renders ".".
func Format(list []Interval) string {
	if len(list) == 0 {
		return "."
	}
	parts := make([]string, len(list))
	for i, iv := range list {
		parts[i] = iv.String()
	}
	return strings.Join(parts, ",")
}

// Parse is the inverse of Format.
func Parse(s string) ([]Interval, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	list := make([]Interval, 0, len(fields))
	for _, f := range fields {
		lo, hi, found := strings.Cut(f, "-")
		if !found {
			return nil, fmt.Errorf("interval %q: missing '-'", f)
		}
		start, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("interval %q: %w", f, err)
		}
		end, err := strconv.Atoi(hi)
		if err != nil {
			return nil, fmt.Errorf("interval %q: %w", f, err)
		}
		if end < start {
			return nil, fmt.Errorf("interval %q: end before start", f)
		}
		list = append(list, Interval{Start: start, End: end})
	}
	return list, nil
}
