package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aria-lang/isoannot-go/internal/pipeline"
	"github.com/aria-lang/isoannot-go/internal/polya"
	"github.com/aria-lang/isoannot-go/internal/report"
	"github.com/aria-lang/isoannot-go/internal/stats"
)

func newTailsCmd(a *app) *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "tails",
		Short: "Locate poly(A) tails and poly(T) heads",
		Long: `Scans the soft-clipped ends of every mapped alignment for a poly(A) run
(3' end) or poly(T) run (5' end) and reports the genomic position of each.
Positions that were not found are written as NA.`,
		Example: `  isoannot tails --in reads.bam --out tails.tsv
  samtools view -h reads.bam | isoannot tails | head`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			src, err := openAlignments(in, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer src.Close()

			w, closeOut, err := createOutput(out, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeOnReturn(closeOut, &err)

			p := &pipeline.Tails{
				Finder: polya.NewFinder(a.cfg.WindowSize, a.cfg.MinPolyAFraction,
					polya.WithLogger(a.logger)),
				Metrics: a.metrics,
				Options: pipeline.Options{Workers: a.cfg.Workers, Logger: a.logger},
			}

			tw := report.NewTailWriter(w)
			var rows []report.TailRow
			err = p.Run(cmd.Context(), src, func(r report.TailRow) error {
				if a.summary {
					rows = append(rows, r)
				}
				return tw.Write(r)
			})
			if err == nil {
				err = tw.Flush()
			}
			if err = a.outputErr(err); err != nil {
				return err
			}

			a.logger.Info("tails located", "alignments", tw.Rows())
			if a.summary {
				fmt.Fprintln(cmd.ErrOrStderr(), stats.FromTails(rows))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "-", "SAM or BAM input (- for SAM on stdin)")
	cmd.Flags().StringVar(&out, "out", "-", "Output TSV (- for stdout)")
	return cmd
}
