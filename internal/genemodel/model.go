// Package genemodel holds the reference transcript model the boundary
// annotator measures reads against: transcripts with their exon and CDS
// intervals, genes grouping them, and per-gene reference sequence windows.
package genemodel

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aria-lang/isoannot-go/internal/interval"
)

// Lookup failures. An unknown id means the assignment that named it is
// inconsistent with the loaded annotation.
var (
	ErrUnknownTranscript = errors.New("unknown transcript")
	ErrUnknownGene       = errors.New("unknown gene")
)

// Strand is the orientation of a feature.
type Strand byte

const (
	Unstranded Strand = '.'
	Plus       Strand = '+'
	Minus      Strand = '-'
)

// ParseStrand converts "+", "-" or anything else (unstranded).
func ParseStrand(s string) Strand {
	switch s {
	case "+":
		return Plus
	case "-":
		return Minus
	default:
		return Unstranded
	}
}

func (s Strand) String() string {
	switch s {
	case Plus, Minus:
		return string(rune(s))
	default:
		return "."
	}
}

// Transcript is one annotated isoform. Coordinates are 1-based closed.
type Transcript struct {
	ID     string
	GeneID string
	Chrom  string
	Strand Strand
	Start  int
	End    int
	Exons  []interval.Interval // sorted by start
	CDS    []interval.Interval // sorted by start; empty for non-coding
}

// Length returns the spliced length of the transcript.
func (t *Transcript) Length() int {
	return interval.TotalLen(t.Exons)
}

// ExonCount returns the number of exons.
func (t *Transcript) ExonCount() int {
	return len(t.Exons)
}

// Introns returns the gaps between consecutive exons.
func (t *Transcript) Introns() []interval.Interval {
	return interval.Gaps(t.Exons)
}

// Gene groups transcripts sharing a gene id.
type Gene struct {
	ID          string
	Chrom       string
	Strand      Strand
	Start       int
	End         int
	Transcripts []string // ordered by transcript start, then id
}

// DB is an in-memory transcript model.
type DB struct {
	genes       map[string]*Gene
	transcripts map[string]*Transcript
}

// NewDB creates an empty model.
func NewDB() *DB {
	return &DB{
		genes:       make(map[string]*Gene),
		transcripts: make(map[string]*Transcript),
	}
}

// AddTranscript registers a transcript and its gene. Exons and CDS are
// sorted; a zero Start/End is filled from the exon span.
func (db *DB) AddTranscript(t *Transcript) error {
	if t.ID == "" {
		return fmt.Errorf("transcript without id")
	}
	if t.GeneID == "" {
		return fmt.Errorf("transcript %s: missing gene id", t.ID)
	}
	if len(t.Exons) == 0 {
		return fmt.Errorf("transcript %s: no exons", t.ID)
	}
	if _, dup := db.transcripts[t.ID]; dup {
		return fmt.Errorf("transcript %s: duplicate id", t.ID)
	}

	sortIntervals(t.Exons)
	sortIntervals(t.CDS)
	if t.Start == 0 && t.End == 0 {
		t.Start, t.End, _ = interval.Span(t.Exons)
	}

	g, ok := db.genes[t.GeneID]
	if !ok {
		g = &Gene{ID: t.GeneID, Chrom: t.Chrom, Strand: t.Strand, Start: t.Start, End: t.End}
		db.genes[t.GeneID] = g
	}
	if t.Chrom != g.Chrom {
		return fmt.Errorf("transcript %s: chromosome %s differs from gene %s on %s", t.ID, t.Chrom, g.ID, g.Chrom)
	}
	g.Start = min(g.Start, t.Start)
	g.End = max(g.End, t.End)

	db.transcripts[t.ID] = t
	g.Transcripts = append(g.Transcripts, t.ID)
	sort.SliceStable(g.Transcripts, func(i, j int) bool {
		a, b := db.transcripts[g.Transcripts[i]], db.transcripts[g.Transcripts[j]]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.ID < b.ID
	})
	return nil
}

// Transcript returns the transcript with the given id.
func (db *DB) Transcript(id string) (*Transcript, error) {
	t, ok := db.transcripts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTranscript, id)
	}
	return t, nil
}

// Gene returns the gene with the given id.
func (db *DB) Gene(id string) (*Gene, error) {
	g, ok := db.genes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGene, id)
	}
	return g, nil
}

// Children returns the transcripts of a gene ordered by genomic start.
func (db *DB) Children(geneID string) ([]*Transcript, error) {
	g, err := db.Gene(geneID)
	if err != nil {
		return nil, err
	}
	children := make([]*Transcript, len(g.Transcripts))
	for i, id := range g.Transcripts {
		children[i] = db.transcripts[id]
	}
	return children, nil
}

// Genes returns all genes ordered by chromosome and start.
func (db *DB) Genes() []*Gene {
	genes := make([]*Gene, 0, len(db.genes))
	for _, g := range db.genes {
		genes = append(genes, g)
	}
	sort.Slice(genes, func(i, j int) bool {
		if genes[i].Chrom != genes[j].Chrom {
			return genes[i].Chrom < genes[j].Chrom
		}
		if genes[i].Start != genes[j].Start {
			return genes[i].Start < genes[j].Start
		}
		return genes[i].ID < genes[j].ID
	})
	return genes
}

// TranscriptCount returns the number of loaded transcripts.
func (db *DB) TranscriptCount() int {
	return len(db.transcripts)
}

func sortIntervals(list []interval.Interval) {
	sort.Slice(list, func(i, j int) bool { return list[i].Start < list[j].Start })
}
