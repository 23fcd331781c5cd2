// Package services runs both PageRank estimators for a single job, shared by
// the HTTP api and the queue worker.
package services

import (
	"context"
	"math/rand"
	"time"

	"github.com/lioia/pagerank/pkg/graph"
	"github.com/lioia/pagerank/pkg/pagerank"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Job describes one PageRank computation. Zero values take the defaults.
type Job struct {
	Id        string      `json:"id,omitempty"`
	Graph     graph.Graph `json:"graph"`
	Resource  string      `json:"resource,omitempty"` // Graph resource, only honored by the queue worker
	Damping   float64     `json:"damping,omitempty"`
	Samples   int         `json:"samples,omitempty"`
	Tolerance float64     `json:"tolerance,omitempty"`
	MaxSweeps int         `json:"max_sweeps,omitempty"`
	Seed      int64       `json:"seed,omitempty"` // 0: time seeded
}

// Result of a job: one rank estimate per estimator, never merged
type Result struct {
	Id        string         `json:"id,omitempty"`
	Sampling  pagerank.Ranks `json:"sampling,omitempty"`
	Iteration pagerank.Ranks `json:"iteration,omitempty"`
	Samples   int            `json:"samples,omitempty"`
	Sweeps    int            `json:"sweeps,omitempty"`
	Delta     float64        `json:"delta,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Config merges the job parameters over defaults and validates the result
func (j Job) Config(defaults pagerank.Config) (pagerank.Config, error) {
	cfg := defaults
	if j.Damping != 0 {
		cfg.DampingFactor = j.Damping
	}
	if j.Samples != 0 {
		cfg.Samples = j.Samples
	}
	if j.Tolerance != 0 {
		cfg.Tolerance = j.Tolerance
	}
	if j.MaxSweeps != 0 {
		cfg.MaxSweeps = j.MaxSweeps
	}
	return cfg, cfg.Validate()
}

// Run computes both estimates of job.Graph concurrently. Each estimator owns
// its own rank map.
func Run(ctx context.Context, job Job, defaults pagerank.Config) (*Result, error) {
	cfg, err := job.Config(defaults)
	if err != nil {
		return nil, err
	}
	seed := job.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.Logger != nil {
		cfg.Logger = cfg.Logger.WithFields(logrus.Fields{"job": job.Id, "pages": len(job.Graph)})
	}

	result := Result{Id: job.Id, Samples: cfg.Samples}
	var group errgroup.Group
	group.Go(func() error {
		ranks, err := pagerank.Sample(job.Graph, cfg, rand.New(rand.NewSource(seed)))
		result.Sampling = ranks
		return err
	})
	group.Go(func() error {
		iteration, err := pagerank.Iterate(job.Graph, cfg)
		if iteration != nil {
			result.Iteration = iteration.Ranks
			result.Sweeps = iteration.Sweeps
			result.Delta = iteration.Delta
		}
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return &result, ctx.Err()
}
