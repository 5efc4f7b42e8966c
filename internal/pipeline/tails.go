package pipeline

import (
	"context"

	"github.com/aria-lang/isoannot-go/internal/alignment"
	"github.com/aria-lang/isoannot-go/internal/metrics"
	"github.com/aria-lang/isoannot-go/internal/optional"
	"github.com/aria-lang/isoannot-go/internal/polya"
	"github.com/aria-lang/isoannot-go/internal/report"
)

// Tails locates poly(A) tails and poly(T) heads.
type Tails struct {
	Finder  *polya.Finder
	Metrics *metrics.Metrics
	Options Options
}

// Locate runs both searches on one alignment.
func (p *Tails) Locate(a *alignment.Alignment) report.TailRow {
	aPos, aOK := p.Finder.FindPolyATail(a)
	tPos, tOK := p.Finder.FindPolyTHead(a)
	polyA, polyT := optional.FromOK(aPos, aOK), optional.FromOK(tPos, tOK)
	p.Metrics.ObserveTails(polyA.Present(), polyT.Present())

	return report.TailRow{
		ReadID: a.Name,
		Chrom:  a.Ref,
		Strand: a.Strand(),
		PolyA:  polyA,
		PolyT:  polyT,
	}
}

// Run emits one row per alignment of src, in input order.
func (p *Tails) Run(ctx context.Context, src Source, emit func(report.TailRow) error) error {
	return run(ctx, src, p.Options, func(a *alignment.Alignment) (report.TailRow, bool, error) {
		return p.Locate(a), true, nil
	}, emit)
}
