package boundary

import (
	"fmt"

	"github.com/aria-lang/isoannot-go/internal/genemodel"
	"github.com/aria-lang/isoannot-go/internal/interval"
	"github.com/aria-lang/isoannot-go/internal/optional"
)

// Annotation gathers the boundary metrics of one read against its
// assigned transcript. TSS always denotes the read's 5' end: for minus
// strand transcripts the genomic left/right distances are swapped.
type Annotation struct {
	ReadID       string
	Chrom        string
	Strand       genemodel.Strand
	Length       int
	ExonCount    int
	GeneID       string
	TranscriptID string
	RefLength    int
	RefExons     int

	DiffToTSS     int
	DiffToTTS     int
	DiffToGeneTSS int
	DiffToGeneTTS int

	SitesMatch SiteMatch
	CDSStart   int
	CDSEnd     int

	// Absent when no reference region is loaded for the gene, or when the
	// bases they need lie outside it.
	AllCanonical    optional.Value[bool]
	PercADownstream optional.Value[float64]
	SeqADownstream  optional.Value[string]
}

// Annotate computes every metric for r. region may be nil, in which case
// the sequence-dependent fields are absent. They are also absent when the
// read reaches past the region far enough that their bases were not cut.
// Unknown transcript or gene ids are returned as errors.
func (a *Annotator) Annotate(r *Read, region *genemodel.GeneRegion) (*Annotation, error) {
	if len(r.Exons) == 0 {
		return nil, fmt.Errorf("read %s: %w", r.ID, ErrEmptyRead)
	}

	t, err := a.model.Transcript(r.TranscriptID)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.ID, err)
	}

	tss, tts := tssDist(r, t), ttsDist(r, t)
	geneTSS, geneTTS, err := a.ClosestTSTS(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.ID, err)
	}
	if t.Strand == genemodel.Minus {
		tss, tts = tts, tss
		geneTSS, geneTTS = geneTTS, geneTSS
	}

	cdsStart, cdsEnd, err := a.RefCDSRegion(t.ID)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.ID, err)
	}

	ann := &Annotation{
		ReadID:        r.ID,
		Chrom:         t.Chrom,
		Strand:        t.Strand,
		Length:        r.Length(),
		ExonCount:     r.ExonCount(),
		GeneID:        r.GeneID,
		TranscriptID:  t.ID,
		RefLength:     t.Length(),
		RefExons:      t.ExonCount(),
		DiffToTSS:     tss,
		DiffToTTS:     tts,
		DiffToGeneTSS: geneTSS,
		DiffToGeneTTS: geneTTS,
		SitesMatch:    SitesMatchReference(r),
		CDSStart:      cdsStart,
		CDSEnd:        cdsEnd,
	}

	if region != nil {
		if sitesCovered(r.Introns, region) {
			ann.AllCanonical = optional.Of(SitesAreCanonical(r.Introns, region, t.Strand))
		} else {
			a.logger.Debug("splice sites outside gene region", "read", r.ID, "gene", region.GeneID)
		}
		if from, to := a.downstreamWindow(r, t.Strand); region.Covers(from, to) {
			seq, frac := a.DownstreamPolyA(r.Start(), r.End(), region, t.Strand)
			ann.SeqADownstream = optional.Of(seq)
			ann.PercADownstream = optional.Of(frac)
		} else {
			a.logger.Debug("downstream window outside gene region", "read", r.ID, "gene", region.GeneID)
		}
	}

	a.logger.Debug("annotated read",
		"read", r.ID,
		"transcript", t.ID,
		"tss", tss,
		"tts", tts,
		"region", region != nil)
	return ann, nil
}

func sitesCovered(introns []interval.Interval, region *genemodel.GeneRegion) bool {
	for _, in := range introns {
		if !region.Covers(in.Start, in.Start+1) || !region.Covers(in.End-1, in.End) {
			return false
		}
	}
	return true
}

// downstreamWindow returns the span DownstreamPolyA reads for r.
func (a *Annotator) downstreamWindow(r *Read, strand genemodel.Strand) (from, to int) {
	if strand == genemodel.Plus {
		return r.End() + 1, r.End() + a.upstreamLen
	}
	return r.Start() - a.upstreamLen, r.Start() - 1
}
