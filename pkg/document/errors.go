package document

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKey is returned when a key is empty, has an empty section or
	// contains a character outside letters, digits, '_', '\'', '.', ' ' and '-'.
	ErrInvalidKey = errors.New("invalid key")
	// ErrInvalidKeyQuoting is returned when a key section uses single quotes
	// anywhere other than exactly one at its start and one at its end.
	ErrInvalidKeyQuoting = errors.New("invalid key quoting")
	// ErrParse is returned when raw text does not form a document.
	ErrParse = errors.New("document parse error")
)

// ParseError reports where a document failed to parse. It matches ErrParse
// and the underlying cause with errors.Is.
type ParseError struct {
	Line int // 1-based line where the failing block starts
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v at line %d: %v", ErrParse, e.Line, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}
