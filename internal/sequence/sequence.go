// Package sequence provides nucleotide sequence helpers used by the tail
// and boundary annotators.
//
// Reads coming out of an aligner and reference windows cut from a FASTA
// file are plain strings; this package gives them a validated type plus the
// handful of operations the annotators need: reverse complement, base
// counting and base fractions over a fixed-length window.
package sequence

import "strings"

// ValidDNABases lists the accepted nucleotide codes.
var ValidDNABases = map[rune]bool{'A': true, 'C': true, 'G': true, 'T': true, 'N': true}

// Sequence is a validated, upper-case DNA sequence.
type Sequence struct {
	Bases string
}

// New creates a new DNA sequence with validation.
// Bases are upper-cased before validation.
func New(bases string) (*Sequence, error) {
	normalized := strings.ToUpper(bases)

	if len(normalized) == 0 {
		return nil, &EmptySequenceError{}
	}

	if err := ValidateDNA(normalized); err != nil {
		return nil, err
	}

	return &Sequence{Bases: normalized}, nil
}

// Len returns the length of the sequence.
func (s *Sequence) Len() int {
	return len(s.Bases)
}

// complementBase returns the complement of an upper-case DNA base.
func complementBase(c byte) byte {
	switch c {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	default:
		return 'N'
	}
}

// ReverseComplement returns the upper-case reverse complement of bases.
// Anything other than A, C, G or T (in either case) becomes N.
func ReverseComplement(bases string) string {
	n := len(bases)
	rc := make([]byte, n)
	for i := 0; i < n; i++ {
		c := bases[n-1-i]
		if 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		rc[i] = complementBase(c)
	}
	return string(rc)
}

// BaseCounts holds the count of each base type.
type BaseCounts struct {
	A int
	C int
	G int
	T int
	N int
}

// CountBases counts bases of a raw string case-insensitively.
// Codes other than A, C, G and T are counted as N.
func CountBases(bases string) BaseCounts {
	counts := BaseCounts{}

	for i := 0; i < len(bases); i++ {
		switch bases[i] {
		case 'A', 'a':
			counts.A++
		case 'C', 'c':
			counts.C++
		case 'G', 'g':
			counts.G++
		case 'T', 't':
			counts.T++
		default:
			counts.N++
		}
	}

	return counts
}

// Total returns the total count of all bases.
func (bc BaseCounts) Total() int {
	return bc.A + bc.C + bc.G + bc.T + bc.N
}

// Of returns the count for a single base letter.
func (bc BaseCounts) Of(base byte) int {
	switch base {
	case 'A', 'a':
		return bc.A
	case 'C', 'c':
		return bc.C
	case 'G', 'g':
		return bc.G
	case 'T', 't':
		return bc.T
	default:
		return bc.N
	}
}

// Fraction returns the share of base in bases, measured against a fixed
// denominator rather than len(bases). A window cut short by the end of a
// reference region therefore reports a lower fraction.
func Fraction(bases string, base byte, denominator int) float64 {
	if denominator <= 0 {
		return 0.0
	}
	return float64(CountBases(bases).Of(base)) / float64(denominator)
}
