package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/aria-lang/isoannot-go/internal/alignment"
	"github.com/aria-lang/isoannot-go/internal/boundary"
	"github.com/aria-lang/isoannot-go/internal/genemodel"
	"github.com/aria-lang/isoannot-go/internal/metrics"
	"github.com/aria-lang/isoannot-go/internal/polya"
	"github.com/aria-lang/isoannot-go/internal/profile"
	"github.com/aria-lang/isoannot-go/internal/readassign"
)

// Skip reasons reported to metrics.
const (
	SkipUnassigned   = "unassigned"
	SkipNotReported  = "not_reportable"
	SkipNoTranscript = "no_transcript"
	SkipEmpty        = "no_blocks"
)

// Result is one assigned read. Annotation is nil for reads that were
// assigned but not annotated.
type Result struct {
	Alignment  *alignment.Alignment
	Assignment *readassign.Assignment
	Annotation *boundary.Annotation
	PolyAFound bool
}

// Boundaries joins alignments with their assignments and annotates them.
type Boundaries struct {
	Annotator   *boundary.Annotator
	Model       *genemodel.DB
	Regions     *genemodel.Regions // nil when no reference is loaded
	Assignments map[string]*readassign.Assignment
	// Finder, when set, fills Result.PolyAFound.
	Finder *polya.Finder
	// KeepUnannotated also emits assigned reads that get no annotation.
	KeepUnannotated bool
	Metrics         *metrics.Metrics
	Options         Options
}

// Annotate builds the read profile of a and annotates it. It reports
// false for alignments that have no reportable assignment, unless
// KeepUnannotated is set and the read is assigned. An assignment naming
// an unknown transcript or gene is an error.
func (p *Boundaries) Annotate(a *alignment.Alignment) (Result, bool, error) {
	asg, ok := p.Assignments[a.Name]
	if !ok {
		p.Metrics.ObserveSkipped(SkipUnassigned)
		return Result{}, false, nil
	}
	res := Result{Alignment: a, Assignment: asg, PolyAFound: p.polyAFound(a, asg)}
	switch {
	case !asg.Type.Reportable():
		p.Metrics.ObserveSkipped(SkipNotReported)
		return res, p.KeepUnannotated, nil
	case asg.TranscriptID == "":
		p.Metrics.ObserveSkipped(SkipNoTranscript)
		return res, p.KeepUnannotated, nil
	}

	t, err := p.Model.Transcript(asg.TranscriptID)
	if err != nil {
		return Result{}, false, fmt.Errorf("read %s: %w", a.Name, err)
	}
	geneID := asg.GeneID
	if geneID == "" {
		geneID = t.GeneID
	}

	prof := profile.Build(a, t)
	read := &boundary.Read{
		ID:            a.Name,
		GeneID:        geneID,
		TranscriptID:  t.ID,
		Exons:         prof.Exons,
		Introns:       prof.Introns,
		IntronProfile: prof.IntronProfile,
	}

	var region *genemodel.GeneRegion
	if p.Regions != nil {
		if region, err = p.Regions.Get(geneID); err != nil {
			return Result{}, false, fmt.Errorf("read %s: %w", a.Name, err)
		}
	}

	ann, err := p.Annotator.Annotate(read, region)
	if errors.Is(err, boundary.ErrEmptyRead) {
		p.Metrics.ObserveSkipped(SkipEmpty)
		return res, p.KeepUnannotated, nil
	}
	if err != nil {
		return Result{}, false, err
	}
	p.Metrics.ObserveAnnotated()
	res.Annotation = ann
	return res, true, nil
}

// polyAFound looks for the tail at the transcript's 3' end: the poly(T)
// head for minus strand transcripts, the poly(A) tail otherwise.
func (p *Boundaries) polyAFound(a *alignment.Alignment, asg *readassign.Assignment) bool {
	if p.Finder == nil {
		return false
	}
	if t, err := p.Model.Transcript(asg.TranscriptID); err == nil && t.Strand == genemodel.Minus {
		_, ok := p.Finder.FindPolyTHead(a)
		return ok
	}
	_, ok := p.Finder.FindPolyATail(a)
	return ok
}

// Run emits one result per reportable alignment of src, in input order.
// With KeepUnannotated every assigned alignment is emitted.
func (p *Boundaries) Run(ctx context.Context, src Source, emit func(Result) error) error {
	return run(ctx, src, p.Options, p.Annotate, emit)
}
