package pagerank

import (
	"github.com/lioia/pagerank/pkg/graph"
	"github.com/pkg/errors"
)

// Transition returns the probability distribution of the page the surfer
// visits after page.
//
// With probability damping the surfer follows one of the links of page, with
// probability 1 - damping it jumps to any page of the graph. A sink page only
// contributes the jump term; the result is normalized so it always sums to 1.
func Transition(g graph.Graph, page string, damping float64) (Distribution, error) {
	if err := checkGraph(g); err != nil {
		return nil, err
	}
	if err := checkDamping(damping); err != nil {
		return nil, err
	}
	if !g.Has(page) {
		return nil, errors.Wrapf(ErrInvalidPage, "page %q not in graph", page)
	}
	return transition(g, page, damping), nil
}

// transition assumes the arguments are already checked
func transition(g graph.Graph, page string, damping float64) Distribution {
	n := float64(len(g))
	distribution := make(Distribution, len(g))
	for p := range g {
		distribution[p] = (1 - damping) / n
	}

	if degree := g.OutDegree(page); degree > 0 {
		linkMass := damping / float64(degree)
		for link := range g[page] {
			distribution[link] += linkMass
		}
	}

	normalize(distribution)
	return distribution
}

// checkGraph rejects empty graphs and links to pages outside the graph
func checkGraph(g graph.Graph) error {
	if len(g) == 0 {
		return ErrEmptyGraph
	}
	if err := g.Validate(); err != nil {
		return errors.Wrapf(ErrInvalidPage, "%v", err)
	}
	return nil
}
