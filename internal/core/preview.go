package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/instrumentdiff/internal/flatten"
)

// Preview limits used when the caller passes zero.
const (
	DefaultPreviewSources = 3
	DefaultPreviewFields  = 5
)

// PreviewEntry samples the flattened fields of one source.
type PreviewEntry struct {
	Instrument string
	Fields     []flatten.Field // first fields in traversal order
	Remaining  int             // fields not included in Fields
	Err        error           // load error; Fields is empty when set
}

// Preview flattens up to maxSources sources without building a table and
// returns the first maxFields fields of each. Load errors are reported per
// entry rather than failing the preview.
func (b *Builder) Preview(ctx context.Context, sources []Source, maxSources, maxFields int) ([]PreviewEntry, error) {
	if maxSources <= 0 {
		maxSources = DefaultPreviewSources
	}
	if maxFields <= 0 {
		maxFields = DefaultPreviewFields
	}
	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}

	entries := make([]PreviewEntry, 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("preview cancelled: %w", err)
		}

		entry := PreviewEntry{Instrument: src.Name()}
		rec, err := b.FlattenSource(ctx, src)
		if err != nil {
			entry.Err = err
			entries = append(entries, entry)
			continue
		}

		all := rec.Fields()
		if len(all) > maxFields {
			entry.Fields = all[:maxFields]
			entry.Remaining = len(all) - maxFields
		} else {
			entry.Fields = all
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
