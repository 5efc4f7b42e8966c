// Package boundary measures how a read's ends and junctions relate to the
// annotated transcript it was assigned to.
//
// Distances are exonic, not genomic. When a read overshoots a transcript
// end the distance is negative and counted along the read's own exons;
// when it falls short the distance is positive and counted along the
// transcript's exons.
package boundary

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/aria-lang/isoannot-go/internal/genemodel"
	"github.com/aria-lang/isoannot-go/internal/interval"
	"github.com/aria-lang/isoannot-go/internal/sequence"
)

// DefaultUpstreamRegionLen is the length of the window checked for
// genomic adenines past a read's 3' end.
const DefaultUpstreamRegionLen = 20

// ErrEmptyRead is returned for reads without exon blocks.
var ErrEmptyRead = errors.New("read has no exon blocks")

// Splice-site dinucleotides, read left to right on the genome.
var (
	donorSites      = []string{"GT", "GC", "AT"}
	acceptorSites   = []string{"AG", "AC"}
	donorSitesRC    = []string{"AC", "GC", "AT"}
	acceptorSitesRC = []string{"CT", "GT"}
)

// Read is the combined profile of one read and its assignment.
type Read struct {
	ID           string
	GeneID       string
	TranscriptID string
	Exons        []interval.Interval // sorted exon blocks
	Introns      []interval.Interval // sorted intron positions
	// IntronProfile has one entry per read intron; 1 marks an exact match
	// with a reference intron.
	IntronProfile []int
}

// Start returns the first base of the first exon block.
func (r *Read) Start() int {
	if len(r.Exons) == 0 {
		return 0
	}
	return r.Exons[0].Start
}

// End returns the last base of the last exon block.
func (r *Read) End() int {
	if len(r.Exons) == 0 {
		return 0
	}
	return r.Exons[len(r.Exons)-1].End
}

// Length returns the number of aligned exonic bases.
func (r *Read) Length() int {
	return interval.TotalLen(r.Exons)
}

// ExonCount returns the number of exon blocks.
func (r *Read) ExonCount() int {
	return len(r.Exons)
}

// Model is the transcript lookup the annotator needs.
type Model interface {
	Transcript(id string) (*genemodel.Transcript, error)
	Children(geneID string) ([]*genemodel.Transcript, error)
}

// SiteMatch says whether a read's junctions equal the reference's.
type SiteMatch int

const (
	Unspliced SiteMatch = iota
	SitesMatch
	SitesDiffer
)

func (m SiteMatch) String() string {
	switch m {
	case SitesMatch:
		return "True"
	case SitesDiffer:
		return "False"
	default:
		return "Unspliced"
	}
}

// Annotator computes boundary metrics against a transcript model.
type Annotator struct {
	model       Model
	upstreamLen int
	logger      *slog.Logger
}

// Option configures an Annotator.
type Option func(*Annotator)

// WithUpstreamRegionLen sets the downstream composition window length.
// Non-positive values are ignored.
func WithUpstreamRegionLen(n int) Option {
	return func(a *Annotator) {
		if n > 0 {
			a.upstreamLen = n
		}
	}
}

// WithLogger sets the annotator's logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Annotator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAnnotator creates an annotator over model.
func NewAnnotator(model Model, opts ...Option) *Annotator {
	a := &Annotator{
		model:       model,
		upstreamLen: DefaultUpstreamRegionLen,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// UpstreamRegionLen returns the downstream composition window length.
func (a *Annotator) UpstreamRegionLen() int {
	return a.upstreamLen
}

// TSSDist returns the exonic distance from the transcript's leftmost
// boundary to the read start, negative when the read starts before it.
func (a *Annotator) TSSDist(r *Read, transcriptID string) (int, error) {
	t, err := a.model.Transcript(transcriptID)
	if err != nil {
		return 0, err
	}
	return tssDist(r, t), nil
}

// TTSDist returns the exonic distance from the read end to the
// transcript's rightmost boundary, negative when the read ends past it.
func (a *Annotator) TTSDist(r *Read, transcriptID string) (int, error) {
	t, err := a.model.Transcript(transcriptID)
	if err != nil {
		return 0, err
	}
	return ttsDist(r, t), nil
}

func tssDist(r *Read, t *genemodel.Transcript) int {
	start := r.Start()
	if start < t.Start {
		return -interval.SumToPoint(r.Exons, t.Start)
	}
	return interval.SumToPoint(t.Exons, start)
}

func ttsDist(r *Read, t *genemodel.Transcript) int {
	end := r.End()
	if end > t.End {
		return -interval.SumFromPoint(r.Exons, t.End)
	}
	return interval.SumFromPoint(t.Exons, end)
}

// ClosestTSTS returns, over every transcript of the read's gene, the TSS
// and the TTS distance of smallest magnitude. The two are chosen
// independently; ties go to the transcript that starts first.
func (a *Annotator) ClosestTSTS(r *Read) (tss, tts int, err error) {
	children, err := a.model.Children(r.GeneID)
	if err != nil {
		return 0, 0, err
	}
	if len(children) == 0 {
		return 0, 0, fmt.Errorf("gene %s has no transcripts: %w", r.GeneID, genemodel.ErrUnknownTranscript)
	}

	tss, tts = tssDist(r, children[0]), ttsDist(r, children[0])
	for _, t := range children[1:] {
		if d := tssDist(r, t); abs(d) < abs(tss) {
			tss = d
		}
		if d := ttsDist(r, t); abs(d) < abs(tts) {
			tts = d
		}
	}
	return tss, tts, nil
}

// SitesMatchReference reports whether every read intron equals a
// reference intron.
func SitesMatchReference(r *Read) SiteMatch {
	if len(r.Introns) == 0 {
		return Unspliced
	}
	for _, v := range r.IntronProfile {
		if v != 1 {
			return SitesDiffer
		}
	}
	return SitesMatch
}

// SitesAreCanonical reports whether every intron has canonical splice
// dinucleotides in region. Each verdict is computed once and kept in the
// region's cache; cached verdicts are never recomputed.
func SitesAreCanonical(introns []interval.Interval, region *genemodel.GeneRegion, strand genemodel.Strand) bool {
	for _, in := range introns {
		canonical, ok := region.Sites.Lookup(in)
		if !ok {
			canonical = region.Sites.Store(in, isCanonical(in, region, strand))
		}
		if !canonical {
			return false
		}
	}
	return true
}

func isCanonical(in interval.Interval, region *genemodel.GeneRegion, strand genemodel.Strand) bool {
	left := region.Offset(in.Start)
	right := region.Offset(in.End)
	leftSite := strings.ToUpper(region.Slice(left, left+2))
	rightSite := strings.ToUpper(region.Slice(right-1, right+1))

	if strand == genemodel.Plus {
		return slices.Contains(donorSites, leftSite) && slices.Contains(acceptorSites, rightSite)
	}
	return slices.Contains(donorSitesRC, leftSite) && slices.Contains(acceptorSitesRC, rightSite)
}

// DownstreamPolyA returns the reference bases just past the read's 3' end
// and the fraction of them that are A (plus strand) or T (minus strand).
// The fraction is always taken over the full window length, so a window
// cut short by the region edge scores lower.
func (a *Annotator) DownstreamPolyA(start, end int, region *genemodel.GeneRegion, strand genemodel.Strand) (string, float64) {
	n := a.upstreamLen
	if strand == genemodel.Plus {
		i := region.Offset(end) + 1
		seq := region.Slice(i, i+n)
		return seq, sequence.Fraction(seq, 'A', n)
	}
	i := region.Offset(start)
	seq := region.Slice(i-n, i)
	return seq, sequence.Fraction(seq, 'T', n)
}

// RefCDSRegion returns the first CDS start and last CDS end of a
// transcript, or (-1, -1) when it has no CDS.
func (a *Annotator) RefCDSRegion(transcriptID string) (start, end int, err error) {
	t, err := a.model.Transcript(transcriptID)
	if err != nil {
		return 0, 0, err
	}
	start, end, ok := interval.Span(t.CDS)
	if !ok {
		return -1, -1, nil
	}
	return start, end, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
