// Package stats provides summaries over tail and boundary annotations.
//
// Summaries are printed after a run with --summary and served by the HTTP
// API; they never feed back into annotation.
package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aria-lang/isoannot-go/internal/boundary"
	"github.com/aria-lang/isoannot-go/internal/report"
)

// TailStats counts how often each end of an alignment carried a tail.
type TailStats struct {
	Count      int
	PolyAFound int
	PolyTFound int
	BothFound  int
	NoneFound  int
}

// FromTails tallies tail rows.
func FromTails(rows []report.TailRow) *TailStats {
	s := &TailStats{Count: len(rows)}
	for _, r := range rows {
		a, t := r.PolyA.Present(), r.PolyT.Present()
		switch {
		case a && t:
			s.BothFound++
		case !a && !t:
			s.NoneFound++
		}
		if a {
			s.PolyAFound++
		}
		if t {
			s.PolyTFound++
		}
	}
	return s
}

// FoundRatio returns the proportion of alignments with a tail at either
// end.
func (s *TailStats) FoundRatio() float64 {
	if s.Count == 0 {
		return 0.0
	}
	return float64(s.Count-s.NoneFound) / float64(s.Count)
}

func (s *TailStats) String() string {
	return fmt.Sprintf(`TailStats {
  alignments: %d
  polyA found: %d
  polyT found: %d
  both ends: %d
  no tail: %d
  with tail: %.1f%%
}`, s.Count, s.PolyAFound, s.PolyTFound, s.BothFound, s.NoneFound, s.FoundRatio()*100)
}

// BoundaryStats summarizes boundary annotations.
type BoundaryStats struct {
	Count        int
	Unspliced    int
	SitesMatch   int
	SitesDiffer  int
	Canonical    int
	NonCanonical int
	NoRegion     int

	MedianAbsTSS    int
	MedianAbsTTS    int
	MeanPercADown   float64
	HighPercADown   int // reads with at least 0.8 A downstream
	CodingRefsCount int
}

// FromAnnotations calculates statistics for a set of annotations.
func FromAnnotations(anns []*boundary.Annotation) (*BoundaryStats, error) {
	if len(anns) == 0 {
		return nil, fmt.Errorf("annotation list cannot be empty")
	}

	s := &BoundaryStats{Count: len(anns)}
	tss := make([]int, 0, len(anns))
	tts := make([]int, 0, len(anns))
	percSum := 0.0
	percN := 0

	for _, a := range anns {
		switch a.SitesMatch {
		case boundary.Unspliced:
			s.Unspliced++
		case boundary.SitesMatch:
			s.SitesMatch++
		case boundary.SitesDiffer:
			s.SitesDiffer++
		}

		if canonical, ok := a.AllCanonical.Get(); !ok {
			s.NoRegion++
		} else if canonical {
			s.Canonical++
		} else {
			s.NonCanonical++
		}

		if perc, ok := a.PercADownstream.Get(); ok {
			percSum += perc
			percN++
			if perc >= 0.8 {
				s.HighPercADown++
			}
		}
		if a.CDSStart >= 0 {
			s.CodingRefsCount++
		}

		tss = append(tss, abs(a.DiffToTSS))
		tts = append(tts, abs(a.DiffToTTS))
	}

	s.MedianAbsTSS = median(tss)
	s.MedianAbsTTS = median(tts)
	if percN > 0 {
		s.MeanPercADown = percSum / float64(percN)
	}
	return s, nil
}

func (s *BoundaryStats) String() string {
	return fmt.Sprintf(`BoundaryStats {
  reads: %d
  unspliced: %d
  junctions match reference: %d
  junctions differ: %d
  canonical: %d, non-canonical: %d, no region: %d
  median |diff to TSS|: %d
  median |diff to TTS|: %d
  mean A downstream: %.2f (>=0.8: %d)
  coding references: %d
}`, s.Count, s.Unspliced, s.SitesMatch, s.SitesDiffer,
		s.Canonical, s.NonCanonical, s.NoRegion,
		s.MedianAbsTSS, s.MedianAbsTTS, s.MeanPercADown, s.HighPercADown,
		s.CodingRefsCount)
}

// DistanceHistogram bins signed end distances.
type DistanceHistogram struct {
	Bins     []int
	Min      int
	Max      int
	BinWidth int
	NumBins  int
}

// NewDistanceHistogram creates a histogram of distances.
func NewDistanceHistogram(distances []int, numBins int) (*DistanceHistogram, error) {
	if len(distances) == 0 {
		return nil, fmt.Errorf("distance list cannot be empty")
	}
	if numBins <= 0 {
		return nil, fmt.Errorf("numBins must be positive")
	}

	lo, hi := distances[0], distances[0]
	for _, d := range distances {
		lo = min(lo, d)
		hi = max(hi, d)
	}

	binWidth := (hi - lo) / numBins
	if binWidth < 1 {
		binWidth = 1
	}

	bins := make([]int, numBins)
	for _, d := range distances {
		i := (d - lo) / binWidth
		if i >= numBins {
			i = numBins - 1
		}
		bins[i]++
	}

	return &DistanceHistogram{
		Bins:     bins,
		Min:      lo,
		Max:      hi,
		BinWidth: binWidth,
		NumBins:  numBins,
	}, nil
}

func (h *DistanceHistogram) String() string {
	var b strings.Builder
	b.WriteString("Distance Histogram:\n")
	for i := 0; i < h.NumBins; i++ {
		start := h.Min + i*h.BinWidth
		end := start + h.BinWidth
		count := h.Bins[i]
		fmt.Fprintf(&b, "%6d..%6d: %s (%d)\n", start, end, strings.Repeat("#", count/5), count)
	}
	return b.String()
}

func median(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
