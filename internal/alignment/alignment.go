// Package alignment provides an immutable view of a single read alignment.
//
// Records come from SAM/BAM files through biogo/hts and are reduced to the
// fields the annotators need: the query sequence, the CIGAR, the 0-based
// half-open reference span and the strand.
package alignment

import (
	"fmt"

	"github.com/biogo/hts/sam"

	"github.com/aria-lang/isoannot-go/internal/interval"
)

// Alignment is one aligned read.
type Alignment struct {
	Name    string
	Ref     string
	Seq     string // query bases; empty when the record carries none
	Cigar   sam.Cigar
	Start   int // 0-based, inclusive
	End     int // 0-based, exclusive
	Reverse bool
}

// FromRecord converts a biogo/hts SAM record.
func FromRecord(r *sam.Record) *Alignment {
	a := &Alignment{
		Name:    r.Name,
		Cigar:   r.Cigar,
		Start:   r.Pos,
		End:     r.End(),
		Reverse: r.Flags&sam.Reverse != 0,
	}
	if r.Ref != nil {
		a.Ref = r.Ref.Name()
	}
	if r.Seq.Length > 0 {
		a.Seq = string(r.Seq.Expand())
	}
	return a
}

// New builds an alignment from textual fields. cigar may be empty or "*".
// When seq is non-empty its length must match the query length implied by
// the CIGAR.
func New(name, seq, cigar string, start int) (*Alignment, error) {
	if start < 0 {
		return nil, fmt.Errorf("alignment %s: negative start %d", name, start)
	}

	var ops sam.Cigar
	if cigar != "" && cigar != "*" {
		var err error
		ops, err = sam.ParseCigar([]byte(cigar))
		if err != nil {
			return nil, fmt.Errorf("alignment %s: parsing cigar %q: %w", name, cigar, err)
		}
	}

	ref, query := lengths(ops)
	if seq != "" && len(ops) > 0 && query != len(seq) {
		return nil, fmt.Errorf("alignment %s: cigar %q implies %d query bases, sequence has %d",
			name, cigar, query, len(seq))
	}

	return &Alignment{
		Name:  name,
		Seq:   seq,
		Cigar: ops,
		Start: start,
		End:   start + ref,
	}, nil
}

// lengths returns the reference and query lengths consumed by ops.
// Hard clips consume neither.
func lengths(ops sam.Cigar) (ref, query int) {
	for _, co := range ops {
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			ref += co.Len()
			query += co.Len()
		case sam.CigarDeletion, sam.CigarSkipped:
			ref += co.Len()
		case sam.CigarInsertion, sam.CigarSoftClipped:
			query += co.Len()
		}
	}
	return ref, query
}

// Strand returns "+" for forward and "-" for reverse alignments.
func (a *Alignment) Strand() string {
	if a.Reverse {
		return "-"
	}
	return "+"
}

// TrailingClip returns the soft-clipped length at the 3' end of the
// alignment. A soft clip hidden behind a trailing hard clip counts.
func (a *Alignment) TrailingClip() int {
	n := len(a.Cigar)
	if n == 0 {
		return 0
	}
	if n > 1 && a.Cigar[n-1].Type() == sam.CigarHardClipped && a.Cigar[n-2].Type() == sam.CigarSoftClipped {
		return a.Cigar[n-2].Len()
	}
	if a.Cigar[n-1].Type() == sam.CigarSoftClipped {
		return a.Cigar[n-1].Len()
	}
	return 0
}

// LeadingClip is the 5' counterpart of TrailingClip.
func (a *Alignment) LeadingClip() int {
	n := len(a.Cigar)
	if n == 0 {
		return 0
	}
	if n > 1 && a.Cigar[0].Type() == sam.CigarHardClipped && a.Cigar[1].Type() == sam.CigarSoftClipped {
		return a.Cigar[1].Len()
	}
	if a.Cigar[0].Type() == sam.CigarSoftClipped {
		return a.Cigar[0].Len()
	}
	return 0
}

// Blocks returns the aligned exon blocks as 1-based closed intervals.
// Skipped regions (N) split blocks; deletions do not.
func (a *Alignment) Blocks() []interval.Interval {
	var blocks []interval.Interval
	pos := a.Start
	blockStart := -1

	for _, co := range a.Cigar {
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			if blockStart < 0 {
				blockStart = pos
			}
			pos += co.Len()
		case sam.CigarDeletion:
			pos += co.Len()
		case sam.CigarSkipped:
			if blockStart >= 0 {
				blocks = append(blocks, interval.Interval{Start: blockStart + 1, End: pos})
				blockStart = -1
			}
			pos += co.Len()
		}
	}
	if blockStart >= 0 {
		blocks = append(blocks, interval.Interval{Start: blockStart + 1, End: pos})
	}
	return blocks
}

// Introns returns the skipped regions (N) as 1-based closed intervals.
func (a *Alignment) Introns() []interval.Interval {
	var introns []interval.Interval
	pos := a.Start

	for _, co := range a.Cigar {
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch, sam.CigarDeletion:
			pos += co.Len()
		case sam.CigarSkipped:
			introns = append(introns, interval.Interval{Start: pos + 1, End: pos + co.Len()})
			pos += co.Len()
		}
	}
	return introns
}

func (a *Alignment) String() string {
	return fmt.Sprintf("%s %s:%d-%d(%s) %v", a.Name, a.Ref, a.Start, a.End, a.Strand(), a.Cigar)
}
