// Package readassign reads the per-read isoform assignments produced by
// an upstream assigner.
package readassign

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Type is the kind of assignment a read received.
type Type string

const (
	Unique                Type = "unique"
	UniqueMinorDifference Type = "unique_minor_difference"
	Ambiguous             Type = "ambiguous"
	Inconsistent          Type = "inconsistent"
	Empty                 Type = "empty"
)

// ParseType validates an assignment type name.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case Unique, UniqueMinorDifference, Ambiguous, Inconsistent, Empty:
		return t, nil
	default:
		return "", fmt.Errorf("unknown assignment type %q", s)
	}
}

// Reportable reports whether reads of this type appear in boundary
// tables. Empty and ambiguous assignments have no single transcript.
func (t Type) Reportable() bool {
	return t != Empty && t != Ambiguous
}

// Assignment links one read to a gene and transcript.
type Assignment struct {
	ReadID         string
	GeneID         string
	TranscriptID   string
	Type           Type
	Classification string
}

const columns = 5

// Reader parses a tab-separated assignment table:
//
//	read_id  gene_id  transcript_id  assignment_type  classification
//
// Lines starting with '#' and blank lines are skipped.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Reader{sc: sc}
}

// Read returns the next assignment, or io.EOF.
func (r *Reader) Read() (*Assignment, error) {
	for r.sc.Scan() {
		r.line++
		text := strings.TrimRight(r.sc.Text(), "\r")
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) < columns {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", r.line, columns, len(fields))
		}
		typ, err := ParseType(fields[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		return &Assignment{
			ReadID:         fields[0],
			GeneID:         dotToEmpty(fields[1]),
			TranscriptID:   dotToEmpty(fields[2]),
			Type:           typ,
			Classification: fields[4],
		}, nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", r.line, err)
	}
	return nil, io.EOF
}

// ReadAll loads every assignment keyed by read id. A read listed twice is
// an error.
func ReadAll(r io.Reader) (map[string]*Assignment, error) {
	rd := NewReader(r)
	out := make(map[string]*Assignment)
	for {
		a, err := rd.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if _, dup := out[a.ReadID]; dup {
			return nil, fmt.Errorf("read %s assigned twice", a.ReadID)
		}
		out[a.ReadID] = a
	}
}

// ReadFile loads the assignments in path.
func ReadFile(path string) (map[string]*Assignment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	all, err := ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return all, nil
}

func dotToEmpty(s string) string {
	if s == "." {
		return ""
	}
	return s
}
