package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/instrumentdiff/internal/config"
	"github.com/JonMunkholm/instrumentdiff/internal/core"
	"github.com/JonMunkholm/instrumentdiff/internal/flatten"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() *core.Table {
	a := flatten.NewRecord()
	a.Set("x", flatten.Number(1))
	a.Set("y", flatten.Null())
	a.Set("chan.c1.gain", flatten.Number(3))

	b := flatten.NewRecord()
	b.Set("x", flatten.Number(1))
	b.Set("z", flatten.Number(2))
	b.Set("chan.c1.gain", flatten.Number(4))

	return core.NewTable([]core.Row{
		{Instrument: "A", Fields: a},
		{Instrument: "B", Fields: b},
	})
}

func testConfig() *config.Config {
	return &config.Config{
		Compare: config.CompareConfig{SameLimit: 5},
		Server:  config.ServerConfig{RequestTimeout: 5 * time.Second},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	s := NewServer(core.NewComparator(testTable()), cfg)
	t.Cleanup(func() { _ = s.Shutdown(t.Context()) })
	return s
}

func do(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, testConfig()), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestListInstruments(t *testing.T) {
	rec := do(t, newTestServer(t, testConfig()), "/api/instruments")
	require.Equal(t, http.StatusOK, rec.Code)

	var body InstrumentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"A", "B"}, body.Instruments)
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, []string{"instrument", "chan.c1.gain", "x", "y", "z"}, body.Columns)
}

func TestGetInstrument(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, "/api/instruments/B")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Instrument string `json:"instrument"`
		Index      int    `json:"index"`
		Fields     []struct {
			Path  string `json:"path"`
			Value any    `json:"value"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "B", body.Instrument)
	assert.Equal(t, 1, body.Index)
	require.Len(t, body.Fields, 3)
	assert.Equal(t, "x", body.Fields[0].Path, "fields keep flatten order")
	assert.Equal(t, "chan.c1.gain", body.Fields[2].Path)

	rec = do(t, s, "/api/instruments/ZZZ")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ROW001", decode(t, rec)["code"])
}

func TestCompare(t *testing.T) {
	rec := do(t, newTestServer(t, testConfig()), "/api/compare?first=A&second=B")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, []any{"A", "B"}, body["instruments_compared"])
	assert.Equal(t, map[string]any{"chan.c1.gain": map[string]any{"A": 3.0, "B": 4.0}}, body["differences"])
	assert.Equal(t, map[string]any{"z": 2.0}, body["only_in_second"])
	assert.Equal(t, map[string]any{"x": 1.0, "y": core.BothMissing}, body["same_values"])

	summary := body["summary"].(map[string]any)
	assert.Equal(t, 4.0, summary["total_fields"])
	assert.Equal(t, 1.0, summary["different_fields"])
}

func TestCompare_Errors(t *testing.T) {
	s := newTestServer(t, testConfig())

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCode   string
	}{
		{"unknown instrument", "/api/compare?first=A&second=ZZZ", http.StatusNotFound, "ROW001"},
		{"missing second", "/api/compare?first=A", http.StatusBadRequest, "REQ001"},
		{"index out of range", "/api/compare/by-index?first=0&second=2", http.StatusNotFound, "ROW002"},
		{"negative index", "/api/compare/by-index?first=-1&second=0", http.StatusNotFound, "ROW002"},
		{"non-numeric index", "/api/compare/by-index?first=a&second=0", http.StatusBadRequest, "REQ001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.target)
			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.wantCode, body["code"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestCompareByIndex(t *testing.T) {
	rec := do(t, newTestServer(t, testConfig()), "/api/compare/by-index?first=1&second=0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"B", "A"}, decode(t, rec)["instruments_compared"])
}

func TestExport(t *testing.T) {
	rec := do(t, newTestServer(t, testConfig()), "/api/export")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	tbl, err := core.ReadCSV(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, tbl.Instruments())
	assert.Equal(t, testTable().Columns(), tbl.Columns())
}

func TestPages(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2 instruments, 5 columns")
	assert.Contains(t, rec.Body.String(), "/compare?first=A&amp;second=B")

	rec = do(t, s, "/compare?first=A&second=B")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<h1>A vs B</h1>")

	rec = do(t, s, "/compare?first=A&second=nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Code: ROW001")
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	s := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, do(t, s, "/healthz").Code)
	}
	rec := do(t, s, "/healthz")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.True(t, strings.Contains(rec.Body.String(), "rate limit exceeded"))
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     1,
		window:   time.Minute,
		done:     make(chan struct{}),
	}
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	assert.True(t, rl.allow("1.2.3.4"))
	assert.False(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("5.6.7.8"), "limits are per IP")

	clock = clock.Add(2 * time.Minute)
	assert.True(t, rl.allow("1.2.3.4"))
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"secret"}}
	s := newTestServer(t, cfg)

	assert.Equal(t, http.StatusUnauthorized, do(t, s, "/api/instruments").Code)
	assert.Equal(t, http.StatusOK, do(t, s, "/healthz").Code, "health is public")

	req := httptest.NewRequest(http.MethodGet, "/api/instruments", nil)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
