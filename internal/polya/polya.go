// Package polya locates poly(A) tails and poly(T) heads in the clipped ends
// of long-read alignments.
//
// A read sequenced from the sense strand ends in a run of A's that the
// aligner soft-clips; a read from the antisense strand starts with the
// reverse complement, a run of T's. Both cases are handled by one scan: the
// 5' window is reverse-complemented first so the same poly(A) detector
// applies to either end.
package polya

import (
	"log/slog"
	"strings"

	"github.com/aria-lang/isoannot-go/internal/alignment"
	"github.com/aria-lang/isoannot-go/internal/sequence"
)

// NotFound is the coordinate reported alongside ok == false.
const NotFound = -1

// Default scan parameters.
const (
	DefaultWindowSize  = 20
	DefaultMinFraction = 0.8
)

// Finder scans alignments for homopolymer tails.
type Finder struct {
	WindowSize  int
	MinFraction float64
	logger      *slog.Logger
}

// Option configures a Finder.
type Option func(*Finder)

// WithLogger sets the logger used for per-alignment debug output.
func WithLogger(l *slog.Logger) Option {
	return func(f *Finder) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFinder creates a finder. Non-positive parameters fall back to the
// defaults.
func NewFinder(windowSize int, minFraction float64, opts ...Option) *Finder {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if minFraction <= 0 {
		minFraction = DefaultMinFraction
	}
	f := &Finder{
		WindowSize:  windowSize,
		MinFraction: minFraction,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DefaultFinder returns a finder with a 20 base window and 0.8 fraction.
func DefaultFinder() *Finder {
	return NewFinder(DefaultWindowSize, DefaultMinFraction)
}

// Threshold is the minimum number of A's a window must hold.
func (f *Finder) Threshold() int {
	return int(float64(f.WindowSize) * f.MinFraction)
}

// FindPolyA returns the smallest offset i such that s[i:i+WindowSize]
// holds at least Threshold A's. s is expected upper-case.
func (f *Finder) FindPolyA(s string) (int, bool) {
	w := f.WindowSize
	if len(s) < w {
		return NotFound, false
	}
	threshold := f.Threshold()

	count := strings.Count(s[:w], "A")
	for i := 0; ; i++ {
		if count >= threshold {
			return i, true
		}
		if i+w >= len(s) {
			return NotFound, false
		}
		if s[i] == 'A' {
			count--
		}
		if s[i+w] == 'A' {
			count++
		}
	}
}

// end selects which side of the alignment a scan looks at.
type end int

const (
	threePrime end = iota
	fivePrime
)

func (e end) String() string {
	if e == fivePrime {
		return "polyT"
	}
	return "polyA"
}

// FindPolyATail searches the 3' clip for a poly(A) run and returns the
// genomic coordinate of its start, never beyond the alignment end.
func (f *Finder) FindPolyATail(a *alignment.Alignment) (int, bool) {
	return f.locate(a, threePrime)
}

// FindPolyTHead searches the 5' clip for a poly(T) run and returns the
// genomic coordinate of its end, never before the alignment start.
func (f *Finder) FindPolyTHead(a *alignment.Alignment) (int, bool) {
	return f.locate(a, fivePrime)
}

// locate is the shared primitive behind both ends. The window is cut from
// the clipped end, reverse-complemented for the 5' end, scanned for a
// poly(A) run and the offset mapped back to the reference.
//
// Indels inside the clip are not modelled, so the coordinate is an
// approximation bounded by the alignment span.
func (f *Finder) locate(a *alignment.Alignment, e end) (int, bool) {
	f.logger.Debug("detecting tail", "read", a.Name, "end", e.String())

	if len(a.Seq) == 0 {
		return NotFound, false
	}

	var clipped int
	if e == threePrime {
		clipped = a.TrailingClip()
	} else {
		clipped = a.LeadingClip()
	}
	whole := min(clipped, len(a.Seq))

	// The scan never needs more than the whole read, so the doubled window
	// is bounded by it.
	span := 2 * min(f.WindowSize, len(a.Seq))
	var window string
	if e == threePrime {
		from := len(a.Seq) - whole
		to := min(from+span, len(a.Seq))
		window = strings.ToUpper(a.Seq[from:to])
	} else {
		to := whole
		from := max(to-span, 0)
		window = sequence.ReverseComplement(a.Seq[from:to])
	}

	offset, ok := f.FindPolyA(window)
	if !ok {
		f.logger.Debug("no tail found", "read", a.Name, "end", e.String())
		return NotFound, false
	}

	var pos int
	if e == threePrime {
		pos = min(a.End+clipped-whole+offset+1, a.End)
	} else {
		pos = max(a.Start-clipped+whole-offset, a.Start)
	}
	f.logger.Debug("tail found", "read", a.Name, "end", e.String(), "pos", pos)
	return pos, true
}
