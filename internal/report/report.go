// Package report renders tail and boundary annotations as tab-separated
// tables. Unavailable fields are written as NA so one missing value never
// drops a record.
package report

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"syscall"
)

// IsBrokenPipe reports whether err comes from a reader that went away,
// such as `head` closing its input early.
func IsBrokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe))
}

// table writes a header line before the first row.
type table struct {
	w       *bufio.Writer
	header  string
	started bool
	rows    int
}

func newTable(w io.Writer, columns []string, comment bool) *table {
	header := strings.Join(columns, "\t")
	if comment {
		header = "#" + header
	}
	return &table{w: bufio.NewWriter(w), header: header}
}

func (t *table) writeFields(fields ...string) error {
	if !t.started {
		if err := t.line(t.header); err != nil {
			return err
		}
		t.started = true
	}
	if err := t.line(strings.Join(fields, "\t")); err != nil {
		return err
	}
	t.rows++
	return nil
}

func (t *table) line(s string) error {
	if _, err := t.w.WriteString(s); err != nil {
		return err
	}
	return t.w.WriteByte('\n')
}

// Flush writes the header if no row was written, then flushes.
func (t *table) Flush() error {
	if !t.started {
		if err := t.line(t.header); err != nil {
			return err
		}
		t.started = true
	}
	return t.w.Flush()
}

// Rows returns the number of rows written so far.
func (t *table) Rows() int {
	return t.rows
}
