// Package core builds instrument tables from nested documents and compares
// their rows.
//
// The package holds all domain logic independent of any UI or transport
// layer. The CLI, the interactive menu and the HTTP server all drive it the
// same way.
//
// # Building
//
// Each [Source] is a named container of documents; [DirSources] yields one
// per subdirectory of a data root. [Builder.Build] flattens every document
// with [flatten.Flatten], merges a source's documents into one [Row] and
// collects the rows into a [Table]:
//
//	sources, _ := core.DirSources("data", nil)
//	res, err := core.NewBuilder(".").Build(ctx, sources)
//	if errors.Is(err, core.ErrNoData) { ... }
//	for _, w := range res.Warnings { ... } // skipped sources
//
// A source that fails to load or yields no fields is skipped with a
// [Warning]; only a build with no rows at all fails.
//
// # Persistence
//
// [WriteCSV] writes the table with the instrument column first and the
// remaining columns sorted; missing cells are empty. [ReadCSV] reads it back.
// Missing and null cannot be told apart once persisted.
//
// # Comparing
//
// [CompareRows] splits the union of two rows' columns into differences,
// columns only in the first or second row, and same values. A [Comparator]
// wraps one loaded table, compares over all of its columns and adds lookups
// by instrument or position that fail with [ErrRowNotFound] or
// [ErrIndexOutOfRange].
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]:
//
//   - SRC001-SRC002: source loading
//   - TBL001-TBL002: table build and table file problems
//   - ROW001-ROW002: row lookups
//   - FILE001-FILE003: document and table file parsing
//   - REQ001: request and command parameters
//   - DB001-DB004: snapshot store
package core
