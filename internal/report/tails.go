package report

import (
	"io"
	"strconv"

	"github.com/aria-lang/isoannot-go/internal/optional"
)

var tailColumns = []string{"read_id", "chrom", "strand", "polyA_pos", "polyT_pos"}

// TailRow is the tail search result of one alignment.
type TailRow struct {
	ReadID string
	Chrom  string
	Strand string
	PolyA  optional.Value[int]
	PolyT  optional.Value[int]
}

// TailWriter writes the tail table.
type TailWriter struct {
	*table
}

// NewTailWriter creates a tail table on w.
func NewTailWriter(w io.Writer) *TailWriter {
	return &TailWriter{newTable(w, tailColumns, true)}
}

// Write appends one row.
func (tw *TailWriter) Write(r TailRow) error {
	return tw.writeFields(
		r.ReadID,
		r.Chrom,
		r.Strand,
		r.PolyA.Format(strconv.Itoa),
		r.PolyT.Format(strconv.Itoa),
	)
}
