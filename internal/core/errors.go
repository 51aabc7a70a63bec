package core

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySource marks a source that produced no flattened fields.
	ErrEmptySource = errors.New("source yielded no fields")

	// ErrNoData is returned by Build when no source produced a row.
	ErrNoData = errors.New("no data: no source produced a row")

	// ErrRowNotFound is returned when no row carries the requested instrument.
	ErrRowNotFound = errors.New("instrument not found")

	// ErrIndexOutOfRange is returned for an invalid positional row index.
	ErrIndexOutOfRange = errors.New("row index out of range")

	// ErrMissingIdentifier is returned when a persisted table has no instrument column.
	ErrMissingIdentifier = fmt.Errorf("table has no %q column", IdentifierColumn)
)

// SourceLoadError reports a source whose documents could not be read or parsed.
type SourceLoadError struct {
	Source string // instrument name
	Path   string // offending file, if known
	Err    error
}

func (e *SourceLoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("load source %q: %s: %v", e.Source, e.Path, e.Err)
	}
	return fmt.Sprintf("load source %q: %v", e.Source, e.Err)
}

func (e *SourceLoadError) Unwrap() error { return e.Err }

// Warning is a non-fatal problem recorded while building a table.
// Err is a *SourceLoadError or wraps ErrEmptySource.
type Warning struct {
	Instrument string
	Err        error
}

func (w Warning) String() string {
	return w.Err.Error()
}

func rowNotFound(instrument string) error {
	return fmt.Errorf("%w: %q", ErrRowNotFound, instrument)
}

func indexOutOfRange(index, rows int) error {
	return fmt.Errorf("%w: %d (table has %d rows)", ErrIndexOutOfRange, index, rows)
}
