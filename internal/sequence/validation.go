package sequence

import "fmt"

// SequenceError is the base error type for sequence operations.
type SequenceError interface {
	error
	IsSequenceError()
}

// LengthMismatchError is returned when a slice does not hold exactly the
// number of bytes its role requires.
type LengthMismatchError struct {
	Field    string
	Expected int
	Actual   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s: expected length %d, got %d", e.Field, e.Expected, e.Actual)
}

func (e *LengthMismatchError) IsSequenceError() {}

// InvalidWidthError is returned when a width cannot back a sequence, such as
// the translation of a width that is not a multiple of three.
type InvalidWidthError struct {
	Width int
}

func (e *InvalidWidthError) Error() string {
	return fmt.Sprintf("invalid sequence width %d (must be in 1..%d)", e.Width, MaxWidth)
}

func (e *InvalidWidthError) IsSequenceError() {}

// IsNucleotide reports whether b is one of A, C, G, T or the ambiguity symbol.
func IsNucleotide(b byte) bool {
	switch b {
	case 'A', 'C', 'G', 'T', Ambiguous:
		return true
	}
	return false
}
