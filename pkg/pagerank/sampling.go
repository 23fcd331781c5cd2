package pagerank

import (
	"math/rand"
	"time"

	"github.com/lioia/pagerank/pkg/graph"
	"github.com/pkg/errors"
)

// SampleRank estimates PageRank as the visit frequency of a single random
// walk of n steps over g, starting from a uniformly random page.
// A nil rng uses a time-seeded source.
func SampleRank(g graph.Graph, damping float64, n int, rng Source) (Ranks, error) {
	if err := checkGraph(g); err != nil {
		return nil, err
	}
	if err := checkDamping(damping); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "sample count must be positive, got %d", n)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	// Stable page order so a seeded source replays the same walk
	pages := g.Pages()
	visits := make(map[string]int, len(pages))
	for _, page := range pages {
		visits[page] = 0
	}
	// The transition model is deterministic: compute it once per page
	distributions := make(map[string]Distribution, len(pages))

	page := pages[rng.Intn(len(pages))]
	for i := 0; i < n; i++ {
		visits[page]++
		distribution, ok := distributions[page]
		if !ok {
			distribution = transition(g, page, damping)
			distributions[page] = distribution
		}
		page = distribution.Draw(pages, rng)
	}

	ranks := make(Ranks, len(pages))
	for p, count := range visits {
		ranks[p] = float64(count) / float64(n)
	}
	return ranks, nil
}

// Sample runs SampleRank with the damping factor and sample count of cfg
func Sample(g graph.Graph, cfg Config, rng Source) (Ranks, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.log().WithField("estimator", "sampling")
	log.Debugf("Sampling %d steps over %d pages", cfg.Samples, len(g))
	ranks, err := SampleRank(g, cfg.DampingFactor, cfg.Samples, rng)
	if err != nil {
		return nil, err
	}
	log.Infof("Sampled %d steps", cfg.Samples)
	return ranks, nil
}
