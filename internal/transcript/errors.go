package transcript

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord marks a record without index, speaker and dialogue text.
var ErrMalformedRecord = errors.New("record needs index, speaker and dialogue text")

// ErrBadQuote marks a line whose quoted field is unterminated or runs into
// the next field.
var ErrBadQuote = errors.New("bad quoting in record")

// LoadError reports a transcript that could not be read or parsed. Line is
// zero when the failure is not tied to a specific record.
type LoadError struct {
	Path string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	if e == nil {
		return ""
	}
	if e.Line > 0 {
		return fmt.Sprintf("load transcript %s line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("load transcript %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
