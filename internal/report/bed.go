package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/aria-lang/isoannot-go/internal/interval"
)

var bedColumns = []string{
	"chrom", "chromStart", "chromEnd", "name", "score", "strand",
	"blockCount", "blockSizes", "blockStarts",
}

// BEDWriter writes read exon blocks. Block starts are absolute 0-based
// genomic positions.
type BEDWriter struct {
	*table
}

// NewBEDWriter creates the table on w.
func NewBEDWriter(w io.Writer) *BEDWriter {
	return &BEDWriter{newTable(w, bedColumns, true)}
}

// Write appends one read. Reads without blocks are skipped.
func (bw *BEDWriter) Write(chrom, name, strand string, blocks []interval.Interval) error {
	if len(blocks) == 0 {
		return nil
	}
	sizes := make([]string, len(blocks))
	starts := make([]string, len(blocks))
	for i, b := range blocks {
		sizes[i] = strconv.Itoa(b.Len())
		starts[i] = strconv.Itoa(b.Start - 1)
	}
	return bw.writeFields(
		chrom,
		strconv.Itoa(blocks[0].Start-1),
		strconv.Itoa(blocks[len(blocks)-1].End),
		name,
		"0",
		strand,
		strconv.Itoa(len(blocks)),
		strings.Join(sizes, ","),
		strings.Join(starts, ","),
	)
}
