package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/lioia/pagerank/pkg/graph"
	"github.com/lioia/pagerank/pkg/pagerank"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGraph() graph.Graph {
	g := graph.New()
	g.AddLink("a", "b")
	g.AddLink("b", "a")
	g.AddLink("b", "c")
	g.AddPage("d")
	return g
}

func TestJobConfig(t *testing.T) {
	cfg, err := Job{Samples: 10, Tolerance: 0.01}.Config(pagerank.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, pagerank.DefaultDamping, cfg.DampingFactor)
	assert.Equal(t, 10, cfg.Samples)
	assert.Equal(t, 0.01, cfg.Tolerance)

	_, err = Job{Damping: 2}.Config(pagerank.DefaultConfig())
	assert.True(t, errors.Is(err, pagerank.ErrInvalidArgument))
}

func TestRun(t *testing.T) {
	job := Job{Id: "job-1", Graph: testGraph(), Samples: 20000, Seed: 9}
	result, err := Run(context.Background(), job, pagerank.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "job-1", result.Id)
	assert.Equal(t, 20000, result.Samples)
	assert.Len(t, result.Sampling, 4)
	assert.Len(t, result.Iteration, 4)
	assert.InDelta(t, 1.0, result.Sampling.Sum(), 1e-9)
	assert.InDelta(t, 1.0, result.Iteration.Sum(), 1e-9)
	assert.LessOrEqual(t, result.Delta, pagerank.DefaultTolerance)
	assert.Positive(t, result.Sweeps)

	again, err := Run(context.Background(), job, pagerank.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, result, again, "same seed, same result")
}

func TestRunErrors(t *testing.T) {
	_, err := Run(context.Background(), Job{Graph: graph.New()}, pagerank.DefaultConfig())
	assert.True(t, errors.Is(err, pagerank.ErrEmptyGraph))

	_, err = Run(context.Background(), Job{Graph: testGraph(), Samples: -5}, pagerank.DefaultConfig())
	assert.True(t, errors.Is(err, pagerank.ErrInvalidArgument))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := Run(ctx, Job{Id: "job-2", Graph: testGraph(), Samples: 100, Seed: 1}, pagerank.DefaultConfig())
	assert.True(t, errors.Is(err, context.Canceled))
	// Both estimators still ran to completion
	require.NotNil(t, result)
	assert.Len(t, result.Sampling, 4)
	assert.Len(t, result.Iteration, 4)
}

func TestJobJSON(t *testing.T) {
	var job Job
	require.NoError(t, json.Unmarshal([]byte(`{"id": "x", "graph": {"a": ["b"], "b": []}, "damping": 0.9, "seed": 3}`), &job))
	assert.Equal(t, "x", job.Id)
	assert.Equal(t, 0.9, job.Damping)
	assert.Equal(t, []string{"b"}, job.Graph.OutLinks("a"))
}
