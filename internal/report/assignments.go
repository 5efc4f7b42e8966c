package report

import (
	"io"

	"github.com/aria-lang/isoannot-go/internal/readassign"
)

var assignmentColumns = []string{"read_id", "isoform_id", "assignment_type", "assignment_events", "polyA_found"}

// AssignmentFilter selects the assignments an AssignmentWriter prints.
type AssignmentFilter func(*readassign.Assignment) bool

// OnlyTypes accepts assignments of the listed types.
func OnlyTypes(types ...readassign.Type) AssignmentFilter {
	allowed := make(map[readassign.Type]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	return func(a *readassign.Assignment) bool {
		return allowed[a.Type]
	}
}

// AssignmentWriter writes one line per read assignment together with
// whether a poly(A) tail was found on the read.
type AssignmentWriter struct {
	*table
	filter AssignmentFilter
}

// NewAssignmentWriter creates the table on w. A nil filter prints every
// assignment.
func NewAssignmentWriter(w io.Writer, filter AssignmentFilter) *AssignmentWriter {
	return &AssignmentWriter{table: newTable(w, assignmentColumns, true), filter: filter}
}

// Write appends the line for asg and reports whether it passed the filter.
// Missing transcript or events are written as ".".
func (aw *AssignmentWriter) Write(asg *readassign.Assignment, polyAFound bool) (bool, error) {
	if asg == nil || (aw.filter != nil && !aw.filter(asg)) {
		return false, nil
	}
	err := aw.writeFields(
		asg.ReadID,
		orDot(asg.TranscriptID),
		orDot(string(asg.Type)),
		orDot(asg.Classification),
		formatBool(polyAFound),
	)
	return err == nil, err
}

func orDot(s string) string {
	if s == "" {
		return "."
	}
	return s
}
