package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lioia/pagerank/pkg/pagerank"
	"github.com/lioia/pagerank/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const symmetricGraph = `{"a": ["b"], "b": ["a"]}`

func do(t *testing.T, s *ApiServer, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, NewApiServer(pagerank.DefaultConfig()), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestRank(t *testing.T) {
	s := NewApiServer(pagerank.DefaultConfig())
	rec := do(t, s, http.MethodPost, "/rank", `{"graph": `+symmetricGraph+`, "samples": 20000, "seed": 5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result services.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Id)
	assert.Equal(t, 20000, result.Samples)
	assert.InDelta(t, 0.5, result.Iteration["a"], 1e-9)
	assert.InDelta(t, 0.5, result.Iteration["b"], 1e-9)
	assert.InDelta(t, 0.5, result.Sampling["a"], 0.02)
	assert.InDelta(t, 0.5, result.Sampling["b"], 0.02)
}

func TestRankErrors(t *testing.T) {
	s := NewApiServer(pagerank.DefaultConfig())
	cases := []struct {
		name string
		body string
		code int
	}{
		{"empty graph", `{"graph": {}}`, http.StatusBadRequest},
		{"dangling link", `{"graph": {"a": ["b"]}}`, http.StatusBadRequest},
		{"damping", `{"graph": ` + symmetricGraph + `, "damping": 1.5}`, http.StatusBadRequest},
		{"samples", `{"graph": ` + symmetricGraph + `, "samples": -1}`, http.StatusBadRequest},
		{"resource", `{"resource": "/etc/passwd"}`, http.StatusBadRequest},
		{"malformed", `{"graph": [`, http.StatusBadRequest},
		{"not converged", `{"graph": {"a": ["b"], "b": ["c"], "c": []}, "max_sweeps": 1}`, http.StatusUnprocessableEntity},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/rank", c.body)
			assert.Equal(t, c.code, rec.Code, rec.Body.String())
		})
	}
}

func TestRequestLimits(t *testing.T) {
	s := NewApiServer(pagerank.DefaultConfig())
	s.MaxPages = 2
	s.MaxSamples = 1000
	large := `{"a": ["b"], "b": ["c"], "c": ["a"]}`

	rec := do(t, s, http.MethodPost, "/rank", `{"graph": `+symmetricGraph+`, "samples": 1001}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "1000")

	rec = do(t, s, http.MethodPost, "/rank", `{"graph": `+symmetricGraph+`, "samples": 1000}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, target := range []string{"/rank", "/render"} {
		rec = do(t, s, http.MethodPost, target, `{"graph": `+large+`}`)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, target)
	}
	rec = do(t, s, http.MethodPost, "/distribution", `{"graph": `+large+`, "page": "a"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	// The default limit always admits the configured sample count
	cfg := pagerank.DefaultConfig()
	cfg.Samples = 2 * DefaultMaxSamples
	assert.Equal(t, cfg.Samples, NewApiServer(cfg).MaxSamples)
}

func TestDistribution(t *testing.T) {
	s := NewApiServer(pagerank.DefaultConfig())
	rec := do(t, s, http.MethodPost, "/distribution", `{"graph": {"a": ["b"], "b": [], "c": []}, "page": "a"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var distribution pagerank.Distribution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &distribution))
	assert.InDelta(t, 1.0, distribution.Sum(), 1e-9)
	assert.InDelta(t, 0.05+0.85, distribution["b"], 1e-9)

	rec = do(t, s, http.MethodPost, "/distribution", `{"graph": {"a": []}, "page": "z"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRender(t *testing.T) {
	s := NewApiServer(pagerank.DefaultConfig())
	rec := do(t, s, http.MethodPost, "/render", `{"graph": `+symmetricGraph+`, "ranks": {"a": 0.5, "b": 0.5}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/vnd.graphviz", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "digraph")

	rec = do(t, s, http.MethodPost, "/render?format=gif", `{"graph": `+symmetricGraph+`}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/render", `{"graph": {"a": ["b"]}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
