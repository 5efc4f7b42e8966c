package sequence

import "fmt"

// EmptySequenceError is returned when a sequence is empty.
type EmptySequenceError struct{}

func (e *EmptySequenceError) Error() string {
	return "sequence must have at least one base"
}

// InvalidBaseError is returned when a code outside ValidDNABases is found.
type InvalidBaseError struct {
	Position int
	Found    rune
}

func (e *InvalidBaseError) Error() string {
	return fmt.Sprintf("invalid base '%c' at position %d", e.Found, e.Position)
}

// ValidateDNA checks that bases holds only upper-case A, C, G, T or N.
func ValidateDNA(bases string) error {
	for i, b := range bases {
		if !ValidDNABases[b] {
			return &InvalidBaseError{Position: i, Found: b}
		}
	}
	return nil
}
