package catalog

import (
	"fmt"
	"strings"
)

// SourceReadError reports that the raw records could not be obtained at all.
// The catalog is left as it was before the call.
type SourceReadError struct {
	Err error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("read earthquake source: %v", e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// RecordFormatError reports a single record that could not be compiled.
// Index is the record's position in the input, header excluded.
type RecordFormatError struct {
	Index int
	Field int
	Value string
	Err   error
}

func (e *RecordFormatError) Error() string {
	return fmt.Sprintf("record %d: field %d %q: %v", e.Index, e.Field, e.Value, e.Err)
}

func (e *RecordFormatError) Unwrap() error { return e.Err }

// DateBound names a query bound and the value it was given.
type DateBound struct {
	Name  string
	Value string
}

// InvalidDateFormatError lists every query bound that is not a valid
// YYYY-MM-DD calendar date.
type InvalidDateFormatError struct {
	Bounds []DateBound
}

func (e *InvalidDateFormatError) Error() string {
	parts := make([]string, len(e.Bounds))
	for i, b := range e.Bounds {
		parts[i] = fmt.Sprintf("%s=%q", b.Name, b.Value)
	}
	return "dates must be strings in the form YYYY-MM-DD: " + strings.Join(parts, ", ")
}

// Names returns the names of the rejected bounds.
func (e *InvalidDateFormatError) Names() []string {
	names := make([]string, len(e.Bounds))
	for i, b := range e.Bounds {
		names[i] = b.Name
	}
	return names
}
