// Package profile derives a read's exon/intron structure from its
// alignment and compares its introns with a reference transcript.
package profile

import (
	"github.com/aria-lang/isoannot-go/internal/alignment"
	"github.com/aria-lang/isoannot-go/internal/genemodel"
	"github.com/aria-lang/isoannot-go/internal/interval"
)

// Intron profile values.
const (
	Match    = 1
	Mismatch = -1
)

// Profile is the combined exon/intron view of one read.
type Profile struct {
	Exons         []interval.Interval
	Introns       []interval.Interval
	IntronProfile []int
}

// Build profiles a against t. A read intron scores Match only when a
// transcript intron has exactly the same coordinates. A nil transcript
// marks every intron as Mismatch.
func Build(a *alignment.Alignment, t *genemodel.Transcript) *Profile {
	p := &Profile{
		Exons:   a.Blocks(),
		Introns: a.Introns(),
	}
	p.IntronProfile = Compare(p.Introns, t)
	return p
}

// Compare scores each read intron against the introns of t.
func Compare(introns []interval.Interval, t *genemodel.Transcript) []int {
	ref := make(map[interval.Interval]struct{})
	if t != nil {
		for _, in := range t.Introns() {
			ref[in] = struct{}{}
		}
	}

	scores := make([]int, len(introns))
	for i, in := range introns {
		if _, ok := ref[in]; ok {
			scores[i] = Match
		} else {
			scores[i] = Mismatch
		}
	}
	return scores
}
