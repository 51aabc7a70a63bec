package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/instrumentdiff/internal/core"
	"github.com/JonMunkholm/instrumentdiff/internal/flatten"
	"github.com/JonMunkholm/instrumentdiff/internal/logging"
	"github.com/JonMunkholm/instrumentdiff/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// InstrumentsResponse is the body of GET /api/instruments.
type InstrumentsResponse struct {
	Instruments []string `json:"instruments"`
	Count       int      `json:"count"`
	Columns     []string `json:"columns"`
}

// FieldResponse is one field of an instrument, in flatten order.
type FieldResponse struct {
	Path  string        `json:"path"`
	Value flatten.Value `json:"value"`
}

// InstrumentResponse is the body of GET /api/instruments/{instrument}.
type InstrumentResponse struct {
	Instrument string          `json:"instrument"`
	Index      int             `json:"index"`
	Fields     []FieldResponse `json:"fields"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":      "ok",
		"instruments": s.comparator.Table().Len(),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	t := s.comparator.Table()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.InstrumentList(t.Instruments(), len(t.Columns())).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

func (s *Server) handleComparePage(w http.ResponseWriter, r *http.Request) {
	first, second, err := instrumentParams(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	c, err := s.comparator.CompareByInstrument(first, second)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ComparisonPage(c, s.cfg.Compare.SameLimit).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render comparison", "error", err)
	}
}

func (s *Server) handleListInstruments(w http.ResponseWriter, r *http.Request) {
	t := s.comparator.Table()
	writeJSON(w, InstrumentsResponse{
		Instruments: t.Instruments(),
		Count:       t.Len(),
		Columns:     t.Columns(),
	})
}

func (s *Server) handleGetInstrument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "instrument")
	t := s.comparator.Table()

	row, err := t.RowByInstrument(name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := InstrumentResponse{Instrument: row.Instrument, Index: -1, Fields: []FieldResponse{}}
	for i, n := range t.Instruments() {
		if n == name {
			resp.Index = i
			break
		}
	}
	for _, f := range row.Fields.Fields() {
		resp.Fields = append(resp.Fields, FieldResponse{Path: f.Path, Value: f.Value})
	}
	writeJSON(w, resp)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	first, second, err := instrumentParams(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	c, err := s.comparator.CompareByInstrument(first, second)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Debug("compared", "first", first, "second", second,
		"different", c.Summary.DifferentFields)
	writeJSON(w, c)
}

func (s *Server) handleCompareByIndex(w http.ResponseWriter, r *http.Request) {
	i, err := indexParam(r, "first")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	j, err := indexParam(r, "second")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	c, err := s.comparator.CompareByIndex(i, j)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, c)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="instruments.csv"`)
	if err := core.WriteCSV(w, s.comparator.Table()); err != nil {
		logging.FromContext(r.Context()).Error("export failed", "error", err)
	}
}

func instrumentParams(r *http.Request) (string, string, error) {
	q := r.URL.Query()
	first := strings.TrimSpace(q.Get("first"))
	second := strings.TrimSpace(q.Get("second"))
	if first == "" {
		return "", "", invalidParameter("first", "required")
	}
	if second == "" {
		return "", "", invalidParameter("second", "required")
	}
	return first, second, nil
}

func indexParam(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, invalidParameter(name, "required")
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidParameter(name, "must be an integer")
	}
	return i, nil
}
