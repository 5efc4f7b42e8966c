// Package isoannot provides a high-level API for tail localization and
// isoform boundary annotation of long-read alignments.
//
// Example usage:
//
//	finder := isoannot.NewFinder(20, 0.8)
//	a, err := isoannot.NewAlignment("read1", seq, "1200M35S", 10432)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if pos, ok := finder.FindPolyATail(a); ok {
//	    fmt.Println("poly(A) tail starts at", pos)
//	}
//
//	model, err := isoannot.LoadModel("genes.gtf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ann := isoannot.NewAnnotator(model, 20)
package isoannot

import (
	"fmt"
	"io"

	"github.com/aria-lang/isoannot-go/internal/alignment"
	"github.com/aria-lang/isoannot-go/internal/boundary"
	"github.com/aria-lang/isoannot-go/internal/genemodel"
	"github.com/aria-lang/isoannot-go/internal/interval"
	"github.com/aria-lang/isoannot-go/internal/polya"
	"github.com/aria-lang/isoannot-go/internal/stats"
)

// Re-export types for convenience
type (
	Alignment     = alignment.Alignment
	Interval      = interval.Interval
	Finder        = polya.Finder
	Model         = genemodel.DB
	Transcript    = genemodel.Transcript
	Gene          = genemodel.Gene
	GeneRegion    = genemodel.GeneRegion
	Contigs       = genemodel.Contigs
	Annotator     = boundary.Annotator
	Read          = boundary.Read
	Annotation    = boundary.Annotation
	SiteMatch     = boundary.SiteMatch
	BoundaryStats = stats.BoundaryStats
	TailStats     = stats.TailStats
)

// NotFound is the position reported when no tail is found.
const NotFound = polya.NotFound

// NewFinder creates a tail finder. Non-positive parameters fall back to a
// 20 base window and a 0.8 fraction.
func NewFinder(windowSize int, minFraction float64) *Finder {
	return polya.NewFinder(windowSize, minFraction)
}

// FindPolyA scans s for the first window rich enough in A.
func FindPolyA(s string, windowSize int, minFraction float64) (int, bool) {
	return polya.NewFinder(windowSize, minFraction).FindPolyA(s)
}

// NewAlignment builds an alignment from SAM text fields. start is
// 0-based.
func NewAlignment(name, seq, cigar string, start int) (*Alignment, error) {
	return alignment.New(name, seq, cigar, start)
}

// OpenAlignments opens a SAM or BAM file.
func OpenAlignments(path string) (*alignment.Reader, error) {
	return alignment.Open(path)
}

// LoadModel loads a GTF annotation file.
func LoadModel(path string) (*Model, error) {
	return genemodel.LoadGTFFile(path)
}

// ParseModel loads GTF rows from r.
func ParseModel(r io.Reader) (*Model, error) {
	return genemodel.LoadGTF(r)
}

// LoadReference loads a FASTA file.
func LoadReference(path string) (Contigs, error) {
	return genemodel.LoadFASTAFile(path)
}

// NewAnnotator creates a boundary annotator with the given downstream
// window length.
func NewAnnotator(model *Model, upstreamRegionLen int) *Annotator {
	return boundary.NewAnnotator(model, boundary.WithUpstreamRegionLen(upstreamRegionLen))
}

// Region cuts the reference window of a gene, padded so the downstream
// composition window fits. ok is false when the gene's contig is absent.
func Region(model *Model, contigs Contigs, geneID string, upstreamRegionLen int) (*GeneRegion, bool, error) {
	g, err := model.Gene(geneID)
	if err != nil {
		return nil, false, err
	}
	r, ok := genemodel.NewGeneRegion(g, contigs, upstreamRegionLen+1, nil)
	return r, ok, nil
}

// Version returns the isoannot version.
func Version() string {
	return "1.0.0"
}

// Info returns information about isoannot.
func Info() string {
	return fmt.Sprintf(`isoannot v%s - long-read tail and isoform boundary annotation

Features:
  - poly(A) tail and poly(T) head localization in clipped read ends
  - exonic distance to annotated TSS/TTS, per transcript and per gene
  - canonical splice-site and exact junction checks
  - downstream genomic adenine content
  - reference CDS span
  - SAM/BAM, GTF and FASTA input; TSV and BED output
`, Version())
}
