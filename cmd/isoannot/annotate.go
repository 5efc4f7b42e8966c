package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/aria-lang/isoannot-go/internal/boundary"
	"github.com/aria-lang/isoannot-go/internal/genemodel"
	"github.com/aria-lang/isoannot-go/internal/metrics"
	"github.com/aria-lang/isoannot-go/internal/pipeline"
	"github.com/aria-lang/isoannot-go/internal/polya"
	"github.com/aria-lang/isoannot-go/internal/readassign"
	"github.com/aria-lang/isoannot-go/internal/report"
	"github.com/aria-lang/isoannot-go/internal/sitecache"
	"github.com/aria-lang/isoannot-go/internal/stats"
)

type annotateFlags struct {
	in, assignments, gtf, fasta, out, bed, tsv string
	tsvTypes                                   []string
	histBins                                   int
}

func newAnnotateCmd(a *app) *cobra.Command {
	var f annotateFlags

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Annotate assigned reads against a GTF model",
		Long: `Joins alignments with their transcript assignments and writes one
SQANTI-style row per uniquely assigned read: distances to the annotated
TSS/TTS, junction agreement, canonical splice sites, downstream A content
and the reference CDS. Without --fasta the sequence-dependent columns are NA.

--tsv additionally writes one line per assigned read with its isoform,
assignment type and events, and whether a poly(A) tail was found.`,
		Example: `  isoannot annotate --in reads.bam --assignments reads.tsv --gtf genes.gtf --fasta genome.fa
  isoannot annotate --in reads.bam --assignments reads.tsv --gtf genes.gtf --tsv reads.assigned.tsv --tsv-types unique`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.annotate(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.in, "in", "-", "SAM or BAM input (- for SAM on stdin)")
	fl.StringVar(&f.assignments, "assignments", "", "Read assignment TSV")
	fl.StringVar(&f.gtf, "gtf", "", "Reference annotation in GTF")
	fl.StringVar(&f.fasta, "fasta", "", "Reference genome FASTA")
	fl.StringVar(&f.out, "out", "-", "Output TSV (- for stdout)")
	fl.StringVar(&f.bed, "bed", "", "Also write read exon blocks as BED")
	fl.StringVar(&f.tsv, "tsv", "", "Also write per-read assignments with poly(A) status")
	fl.StringSliceVar(&f.tsvTypes, "tsv-types", nil, "Assignment types written to --tsv (default all)")
	fl.IntVar(&f.histBins, "hist-bins", 10, "Bins of the TSS distance histogram in the summary")
	cmd.MarkFlagRequired("assignments")
	cmd.MarkFlagRequired("gtf")
	return cmd
}

func (a *app) annotate(cmd *cobra.Command, f annotateFlags) (err error) {
	filter, err := assignmentFilter(f.tsvTypes)
	if err != nil {
		return err
	}
	model, err := genemodel.LoadGTFFile(f.gtf)
	if err != nil {
		return err
	}
	assignments, err := readassign.ReadFile(f.assignments)
	if err != nil {
		return err
	}
	a.logger.Info("model loaded",
		"genes", len(model.Genes()),
		"transcripts", model.TranscriptCount(),
		"assignments", len(assignments))

	var regions *genemodel.Regions
	if f.fasta != "" {
		contigs, err := genemodel.LoadFASTAFile(f.fasta)
		if err != nil {
			return err
		}
		newCache, closeCache := a.siteCaches()
		defer closeCache()
		regions = genemodel.NewRegions(model, contigs, a.cfg.UpstreamRegionLen+1, newCache)
	}

	src, err := openAlignments(f.in, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer src.Close()

	w, closeOut, err := createOutput(f.out, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOnReturn(closeOut, &err)
	sw := report.NewSqantiWriter(w)

	var bw *report.BEDWriter
	if f.bed != "" {
		bedOut, closeBed, cerr := createOutput(f.bed, cmd.OutOrStdout())
		if cerr != nil {
			return cerr
		}
		defer closeOnReturn(closeBed, &err)
		bw = report.NewBEDWriter(bedOut)
	}

	var tw *report.AssignmentWriter
	if f.tsv != "" {
		tsvOut, closeTSV, cerr := createOutput(f.tsv, cmd.OutOrStdout())
		if cerr != nil {
			return cerr
		}
		defer closeOnReturn(closeTSV, &err)
		tw = report.NewAssignmentWriter(tsvOut, filter)
	}

	p := &pipeline.Boundaries{
		Annotator: boundary.NewAnnotator(model,
			boundary.WithUpstreamRegionLen(a.cfg.UpstreamRegionLen),
			boundary.WithLogger(a.logger)),
		Model:       model,
		Regions:     regions,
		Assignments: assignments,
		Metrics:     a.metrics,
		Options:     pipeline.Options{Workers: a.cfg.Workers, Logger: a.logger},
	}
	if tw != nil {
		p.Finder = polya.NewFinder(a.cfg.WindowSize, a.cfg.MinPolyAFraction, polya.WithLogger(a.logger))
		p.KeepUnannotated = true
	}

	var anns []*boundary.Annotation
	err = p.Run(cmd.Context(), src, func(r pipeline.Result) error {
		if tw != nil {
			if _, err := tw.Write(r.Assignment, r.PolyAFound); err != nil {
				return err
			}
		}
		if r.Annotation == nil {
			return nil
		}
		if _, err := sw.Write(r.Assignment, r.Annotation); err != nil {
			return err
		}
		if bw != nil {
			err := bw.Write(r.Annotation.Chrom, r.Alignment.Name, r.Annotation.Strand.String(), r.Alignment.Blocks())
			if err != nil {
				return err
			}
		}
		if a.summary {
			anns = append(anns, r.Annotation)
		}
		return nil
	})
	if err == nil {
		err = sw.Flush()
	}
	if err == nil && bw != nil {
		err = bw.Flush()
	}
	if err == nil && tw != nil {
		err = tw.Flush()
	}
	if err = a.outputErr(err); err != nil {
		return err
	}

	a.logger.Info("reads annotated", "rows", sw.Rows())
	if a.summary {
		a.printBoundarySummary(cmd, anns, f.histBins)
	}
	return nil
}

// assignmentFilter parses --tsv-types; no types selects every assignment.
func assignmentFilter(names []string) (report.AssignmentFilter, error) {
	if len(names) == 0 {
		return nil, nil
	}
	types := make([]readassign.Type, 0, len(names))
	for _, name := range names {
		t, err := readassign.ParseType(name)
		if err != nil {
			return nil, fmt.Errorf("--tsv-types: %w", err)
		}
		types = append(types, t)
	}
	return report.OnlyTypes(types...), nil
}

// siteCaches returns the per-region canonical-site cache constructor. A
// configured Redis address shares verdicts between processes working on
// identical regions; otherwise each region gets an in-memory cache.
func (a *app) siteCaches() (func(r *genemodel.GeneRegion) sitecache.Cache, func() error) {
	if a.cfg.RedisAddr == "" {
		return nil, func() error { return nil }
	}
	client := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
	a.logger.Info("using redis site cache", "addr", a.cfg.RedisAddr)
	return func(r *genemodel.GeneRegion) sitecache.Cache {
		return sitecache.NewRedis(client, r.Key(), sitecache.WithRedisLogger(a.logger))
	}, client.Close
}

// printSkipped lists the reads left out of the table, by reason.
func (a *app) printSkipped(w io.Writer) {
	counts, err := metrics.SkippedCounts(a.registry)
	if err != nil {
		a.logger.Warn("no skip counts", "error", err)
		return
	}
	reasons := make([]string, 0, len(counts))
	for reason := range counts {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)

	fmt.Fprintln(w, "Skipped {")
	for _, reason := range reasons {
		fmt.Fprintf(w, "  %s: %d\n", reason, counts[reason])
	}
	fmt.Fprintln(w, "}")
}

func (a *app) printBoundarySummary(cmd *cobra.Command, anns []*boundary.Annotation, bins int) {
	stderr := cmd.ErrOrStderr()
	a.printSkipped(stderr)

	s, err := stats.FromAnnotations(anns)
	if err != nil {
		a.logger.Warn("no summary", "error", err)
		return
	}
	fmt.Fprintln(stderr, s)

	tss := make([]int, len(anns))
	for i, ann := range anns {
		tss[i] = ann.DiffToTSS
	}
	h, err := stats.NewDistanceHistogram(tss, bins)
	if err != nil {
		a.logger.Warn("no histogram", "error", err)
		return
	}
	fmt.Fprint(stderr, h)
}
