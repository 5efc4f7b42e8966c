// Command isoannot locates poly(A) tails in long-read alignments and
// annotates read boundaries against a reference transcript model.
//
// Usage:
//
//	isoannot [command] [flags]
//
// Commands:
//
//	tails       Locate poly(A) tails and poly(T) heads
//	annotate    Annotate assigned reads against a GTF model
//	scan        Scan a sequence for a poly(A) window
//	config      Show the effective configuration
//	version     Show version information
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
