package pfm

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Load and Decode matches one of these
// with errors.Is, unless it is an I/O error from the underlying reader.
var (
	ErrFileOpen      = errors.New("pfm: cannot open file")
	ErrInvalidFormat = errors.New("pfm: invalid format")
	ErrTruncatedData = errors.New("pfm: truncated pixel data")
)

// FormatError describes a header violation.
type FormatError struct {
	Field   string // Header field being read (e.g., "magic", "width", "terminator")
	Details string // What was wrong with it
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("pfm: invalid header: %s: %s", e.Field, e.Details)
}

// Unwrap makes errors.Is(err, ErrInvalidFormat) hold for every FormatError.
func (e *FormatError) Unwrap() error {
	return ErrInvalidFormat
}

func formatErrorf(field, format string, args ...any) error {
	return &FormatError{Field: field, Details: fmt.Sprintf(format, args...)}
}
