package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aria-lang/isoannot-go/internal/optional"
	"github.com/aria-lang/isoannot-go/internal/polya"
	"github.com/aria-lang/isoannot-go/internal/sequence"
)

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan SEQUENCE...",
		Short: "Scan a sequence for a poly(A) window",
		Long: `Prints the offset of the first window holding enough A's, or NA.
Lower-case bases are accepted.`,
		Example: `  isoannot scan CCCCAAAAAAAAAAAAAAAAAAAA
  isoannot scan --window-size 10 --min-fraction 0.9 ACGTAAAAAAAAAA`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := polya.NewFinder(a.cfg.WindowSize, a.cfg.MinPolyAFraction, polya.WithLogger(a.logger))
			for _, arg := range args {
				seq, err := sequence.New(strings.TrimSpace(arg))
				if err != nil {
					return fmt.Errorf("sequence %q: %w", arg, err)
				}
				pos, ok := f.FindPolyA(seq.Bases)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", arg, optional.FromOK(pos, ok))
			}
			return nil
		},
	}
}
