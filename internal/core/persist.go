package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/JonMunkholm/instrumentdiff/internal/flatten"
)

// numericCell matches the number literals written for numeric fields.
var numericCell = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// WriteCSV writes t with a header row (identifier first, then sorted field
// columns) and one line per row. Absent, null and NaN cells are written empty.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)

	header := t.Columns()
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(header))
	for _, row := range t.rows {
		record[0] = row.Instrument
		for i, col := range t.columns {
			v, ok := row.Fields.Get(col)
			if !ok || v.IsMissing() {
				record[i+1] = ""
				continue
			}
			record[i+1] = v.Text()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %q: %w", row.Instrument, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveCSV writes t to path, replacing any existing file.
func SaveCSV(path string, t *Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create table file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close table file: %w", cerr)
		}
	}()

	if err := WriteCSV(f, t); err != nil {
		return fmt.Errorf("write table file %s: %w", path, err)
	}
	return nil
}

// ReadCSV parses a table written by WriteCSV. Empty cells become missing
// fields; other cells are typed by ParseCell.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(wrapTableReader(r))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file: %w", ErrMissingIdentifier)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	idCol := -1
	for i, h := range header {
		if h == IdentifierColumn {
			idCol = i
			break
		}
	}
	if idCol < 0 {
		return nil, ErrMissingIdentifier
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv at line %d: %w", line, err)
		}
		if isEmptyRecord(record) {
			continue
		}
		if idCol >= len(record) {
			return nil, fmt.Errorf("invalid csv at line %d: row has %d columns, expected %d", line, len(record), len(header))
		}

		fields := flatten.NewRecord()
		for i, cell := range record {
			if i == idCol || i >= len(header) || cell == "" {
				continue
			}
			fields.Set(header[i], ParseCell(cell))
		}
		rows = append(rows, Row{Instrument: record[idCol], Fields: fields})
	}

	return NewTableWithColumns(rows, header), nil
}

// LoadCSV reads a table from path.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table file: %w", err)
	}
	defer f.Close()

	counter := &countingReader{r: f}
	t, err := ReadCSV(counter)
	if err != nil {
		return nil, fmt.Errorf("read table file %s: %w", path, err)
	}

	slog.Debug("table loaded",
		"path", path,
		"bytes", counter.n,
		"rows", t.Len(),
		"columns", len(t.columns)+1,
	)
	return t, nil
}

// ParseCell types a persisted cell: true/false (any case) become booleans,
// numeric literals become numbers, anything else stays a string.
func ParseCell(cell string) flatten.Value {
	switch strings.ToLower(cell) {
	case "true":
		return flatten.Bool(true)
	case "false":
		return flatten.Bool(false)
	}
	if numericCell.MatchString(cell) {
		if v, err := flatten.NumberLiteral(cell); err == nil {
			return v
		}
	}
	return flatten.String(cell)
}

func isEmptyRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
