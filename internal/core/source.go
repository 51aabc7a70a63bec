package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JonMunkholm/instrumentdiff/internal/flatten"
)

// DefaultExtensions are the document types read from a source directory.
var DefaultExtensions = []string{".json"}

// Tree is one nested document of a source. Label distinguishes documents
// within the same source (a file stem for directory sources).
type Tree struct {
	Label string
	Value flatten.Value
}

// Source is a named container of nested documents. The name becomes the
// row's instrument identifier.
type Source interface {
	Name() string
	Trees(ctx context.Context) ([]Tree, error)
}

// DirSource reads every document with a known extension in one directory.
// Subdirectories are not descended into.
type DirSource struct {
	Dir        string
	Extensions []string
}

// NewDirSource returns a source over dir. A nil exts uses DefaultExtensions.
func NewDirSource(dir string, exts []string) *DirSource {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	return &DirSource{Dir: dir, Extensions: exts}
}

// Name returns the directory's base name.
func (s *DirSource) Name() string {
	return filepath.Base(s.Dir)
}

// Trees parses the directory's documents in file name order. Any unreadable
// or malformed file fails the whole source with a *SourceLoadError.
func (s *DirSource) Trees(ctx context.Context) ([]Tree, error) {
	files, err := s.files()
	if err != nil {
		return nil, &SourceLoadError{Source: s.Name(), Err: err}
	}

	trees := make([]Tree, 0, len(files))
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("operation cancelled: %w", err)
		}

		path := filepath.Join(s.Dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &SourceLoadError{Source: s.Name(), Path: path, Err: err}
		}

		v, err := flatten.Decode(name, data)
		if err != nil {
			return nil, &SourceLoadError{Source: s.Name(), Path: path, Err: err}
		}

		trees = append(trees, Tree{
			Label: strings.TrimSuffix(name, filepath.Ext(name)),
			Value: v,
		})
	}
	return trees, nil
}

func (s *DirSource) files() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", s.Dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if s.accepts(entry.Name()) {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func (s *DirSource) accepts(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range s.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// DirSources returns one DirSource per immediate subdirectory of root,
// sorted by name. Hidden directories are skipped.
func DirSources(root string, exts []string) ([]Source, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading data root %s: %w", root, err)
	}

	var sources []Source
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		sources = append(sources, NewDirSource(filepath.Join(root, entry.Name()), exts))
	}
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Name() < sources[j].Name()
	})
	return sources, nil
}

// StaticSource is an in-memory source, useful for tests and callers that
// already hold decoded documents.
type StaticSource struct {
	SourceName string
	Documents  []Tree
	Err        error
}

func (s StaticSource) Name() string { return s.SourceName }

func (s StaticSource) Trees(context.Context) ([]Tree, error) {
	if s.Err != nil {
		return nil, &SourceLoadError{Source: s.SourceName, Err: s.Err}
	}
	return s.Documents, nil
}
