package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/instrumentdiff/internal/flatten"
)

// Builder flattens sources into a Table.
type Builder struct {
	// Separator joins path segments. Empty means flatten.DefaultSeparator.
	Separator string

	// PrefixMultiple prefixes every key with its document label when a source
	// holds more than one document, so files in one directory do not collide.
	PrefixMultiple bool
}

// NewBuilder returns a builder with the given separator and multi-document
// prefixing enabled.
func NewBuilder(sep string) *Builder {
	return &Builder{Separator: sep, PrefixMultiple: true}
}

func (b *Builder) sep() string {
	if b.Separator == "" {
		return flatten.DefaultSeparator
	}
	return b.Separator
}

// BuildResult is the outcome of a successful Build.
type BuildResult struct {
	Table       *Table
	Warnings    []Warning
	SourcesSeen int
	Duration    time.Duration
}

// FlattenSource loads every document of src and merges their flattened
// fields into one record. Later documents overwrite earlier ones on an exact
// key collision.
func (b *Builder) FlattenSource(ctx context.Context, src Source) (*flatten.Record, error) {
	trees, err := src.Trees(ctx)
	if err != nil {
		return nil, err
	}

	sep := b.sep()
	prefix := b.PrefixMultiple && len(trees) > 1

	merged := flatten.NewRecord()
	for _, tree := range trees {
		flat := flatten.Flatten(tree.Value, "", sep)
		if prefix {
			merged.MergePrefixed(flat, tree.Label, sep)
		} else {
			merged.Merge(flat)
		}
	}
	return merged, nil
}

// Build flattens each source into one row. A source that fails to load or
// yields no fields is skipped with a warning; Build fails only when no
// source produced a row (ErrNoData) or ctx is cancelled.
func (b *Builder) Build(ctx context.Context, sources []Source) (*BuildResult, error) {
	start := time.Now()
	result := &BuildResult{SourcesSeen: len(sources)}

	var rows []Row
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build cancelled: %w", err)
		}

		name := src.Name()
		slog.Debug("processing source", "instrument", name)

		fields, err := b.FlattenSource(ctx, src)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			var loadErr *SourceLoadError
			if !errors.As(err, &loadErr) {
				err = &SourceLoadError{Source: name, Err: err}
			}
			slog.Warn("skipping source", "instrument", name, "error", err)
			result.Warnings = append(result.Warnings, Warning{Instrument: name, Err: err})
			continue
		}

		if fields.Has(IdentifierColumn) {
			slog.Warn("dropping field that shadows the identifier column",
				"instrument", name,
				"field", IdentifierColumn,
			)
			fields = withoutField(fields, IdentifierColumn)
		}

		if fields.Len() == 0 {
			err := fmt.Errorf("%w: %q", ErrEmptySource, name)
			slog.Warn("skipping source", "instrument", name, "error", err)
			result.Warnings = append(result.Warnings, Warning{Instrument: name, Err: err})
			continue
		}

		rows = append(rows, Row{Instrument: name, Fields: fields})
	}

	if len(rows) == 0 {
		return nil, ErrNoData
	}

	result.Table = NewTable(rows)
	result.Duration = time.Since(start)
	return result, nil
}

func withoutField(r *flatten.Record, path string) *flatten.Record {
	out := flatten.NewRecord()
	for _, f := range r.Fields() {
		if f.Path != path {
			out.Set(f.Path, f.Value)
		}
	}
	return out
}
