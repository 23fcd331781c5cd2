package pagerank

import (
	"math"

	"github.com/lioia/pagerank/pkg/graph"
	"github.com/pkg/errors"
)

// Result of the iterative estimator
type Result struct {
	Ranks  Ranks   // Rank of every page after the last sweep
	Sweeps int     // Number of sweeps executed
	Delta  float64 // Maximum rank change of the last sweep
}

// IterateRank computes PageRank by repeatedly recomputing every rank from the
// ranks of its inbound linkers until no rank changes by more than 0.001.
func IterateRank(g graph.Graph, damping float64) (Ranks, error) {
	// Validate would replace a zero damping factor with the default
	if err := checkDamping(damping); err != nil {
		return nil, err
	}
	result, err := Iterate(g, Config{DampingFactor: damping, Tolerance: DefaultTolerance})
	if err != nil {
		return nil, err
	}
	return result.Ranks, nil
}

// Iterate runs the iterative estimator with the damping factor, tolerance
// and sweep bound of cfg.
//
// R_(i + 1) (p) = (1 - d) / N + d sum_(q in B_p) (R_i(q) / N_q) + d sum_(q sink) (R_i(q) / N)
//
// When cfg.MaxSweeps is reached before convergence the partial result is
// returned along with ErrNotConverged.
func Iterate(g graph.Graph, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkGraph(g); err != nil {
		return nil, err
	}
	log := cfg.log().WithField("estimator", "iterative")

	d := cfg.DampingFactor
	pages := g.Pages()
	n := float64(len(pages))

	// Inbound links and sinks, in page order so every run sums in the same order
	inLinks := make(map[string][]string, len(pages))
	var sinks []string
	for _, q := range pages {
		if g.OutDegree(q) == 0 {
			sinks = append(sinks, q)
			continue
		}
		for _, p := range g.OutLinks(q) {
			inLinks[p] = append(inLinks[p], q)
		}
	}

	ranks := make(Ranks, len(pages))
	for _, page := range pages {
		ranks[page] = 1 / n
	}

	result := &Result{Delta: math.Inf(1)}
	for result.Delta > cfg.Tolerance {
		if cfg.MaxSweeps > 0 && result.Sweeps >= cfg.MaxSweeps {
			result.Ranks = ranks
			log.Warnf("No convergence after %d sweeps (delta %f)", result.Sweeps, result.Delta)
			return result, errors.Wrapf(ErrNotConverged, "%d sweeps, delta %g", result.Sweeps, result.Delta)
		}

		// Every sink spreads its rank over the whole graph
		sinkMass := 0.0
		for _, q := range sinks {
			sinkMass += ranks[q]
		}

		// Build the next snapshot from the current one only
		next := make(Ranks, len(pages))
		for _, p := range pages {
			linkMass := 0.0
			for _, q := range inLinks[p] {
				linkMass += ranks[q] / float64(g.OutDegree(q))
			}
			next[p] = (1-d)/n + d*linkMass + d*sinkMass/n
		}

		result.Delta = Delta(ranks, next)
		result.Sweeps++
		ranks = next
		log.Debugf("Sweep %d: delta %f", result.Sweeps, result.Delta)
	}
	log.Infof("Converged after %d sweep(s)", result.Sweeps)

	result.Ranks = ranks
	return result, nil
}
