package queue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/lioia/pagerank/pkg/graph"
	"github.com/lioia/pagerank/pkg/pagerank"
	"github.com/lioia/pagerank/pkg/services"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handle(t *testing.T, body string) (services.Result, error) {
	t.Helper()
	w := &Worker{Defaults: pagerank.DefaultConfig()}
	data, err := w.Handle(context.Background(), []byte(body))
	if err != nil {
		return services.Result{}, err
	}
	var result services.Result
	require.NoError(t, json.Unmarshal(data, &result))
	return result, nil
}

func TestHandle(t *testing.T) {
	result, err := handle(t, `{"id": "j1", "graph": {"a": ["b"], "b": ["a"]}, "samples": 10000, "seed": 1}`)
	require.NoError(t, err)
	assert.Empty(t, result.Error)
	assert.Equal(t, "j1", result.Id)
	assert.InDelta(t, 0.5, result.Iteration["a"], 1e-9)
	assert.InDelta(t, 1.0, result.Sampling.Sum(), 1e-9)
}

func TestHandleResource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.txt")
	require.NoError(t, os.WriteFile(path, []byte("a b\nb c\nc a\n"), 0o644))

	result, err := handle(t, `{"id": "j2", "resource": "`+path+`", "samples": 1000, "seed": 1}`)
	require.NoError(t, err)
	assert.Empty(t, result.Error)
	assert.Len(t, result.Iteration, 3)
}

func TestHandleResourceFailures(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("a b c\n"), 0o644))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/busy.txt" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	// Permanent failures are reported in the result so the job is acknowledged
	permanent := []struct {
		name     string
		resource string
		message  string
	}{
		{"malformed", bad, "could not convert line"},
		{"missing", filepath.Join(dir, "missing.txt"), "stat"},
		{"not found", server.URL + "/graph.txt", "unexpected status"},
	}
	for _, c := range permanent {
		t.Run(c.name, func(t *testing.T) {
			result, err := handle(t, `{"id": "j3", "resource": "`+c.resource+`"}`)
			require.NoError(t, err)
			assert.Equal(t, "j3", result.Id)
			assert.Contains(t, result.Error, c.message)
			assert.Nil(t, result.Iteration)
		})
	}

	// Temporary failures are returned so the job is requeued
	_, err := handle(t, `{"id": "j4", "resource": "`+server.URL+`/busy.txt"}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, graph.ErrUnavailable))
}

func TestHandleInvalidJob(t *testing.T) {
	result, err := handle(t, `not json`)
	require.NoError(t, err)
	assert.Contains(t, result.Error, "decode job")

	result, err = handle(t, `{"id": "j5", "graph": {}}`)
	require.NoError(t, err)
	assert.Equal(t, "j5", result.Id)
	assert.Contains(t, result.Error, "empty graph")
	assert.Nil(t, result.Sampling)
}
