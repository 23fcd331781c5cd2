package pagerank

import (
	"math"
	"sort"
)

// Distribution is a probability distribution over the pages of a graph
type Distribution map[string]float64

// Ranks maps every page to its estimated PageRank
type Ranks map[string]float64

// Source is the random source consumed by the sampling estimator.
// *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// Sum returns the total mass of the distribution
func (d Distribution) Sum() float64 {
	return sum(d)
}

// Draw picks one of pages with probability proportional to its value in d.
// pages must be the keys of d in a stable order.
func (d Distribution) Draw(pages []string, rng Source) string {
	total := 0.0
	for _, page := range pages {
		total += d[page]
	}
	target := rng.Float64() * total
	cumulative := 0.0
	for _, page := range pages {
		cumulative += d[page]
		if target < cumulative {
			return page
		}
	}
	// Floating point drift: fall back to the last page with mass
	for i := len(pages) - 1; i >= 0; i-- {
		if d[pages[i]] > 0 {
			return pages[i]
		}
	}
	return pages[len(pages)-1]
}

func (r Ranks) Sum() float64 {
	return sum(r)
}

// Pages returns the ranked pages in lexical order
func (r Ranks) Pages() []string {
	pages := make([]string, 0, len(r))
	for page := range r {
		pages = append(pages, page)
	}
	sort.Strings(pages)
	return pages
}

// Delta returns the maximum absolute difference between two rank maps
func Delta(a, b Ranks) float64 {
	delta := 0.0
	for page, rank := range a {
		delta = math.Max(delta, math.Abs(rank-b[page]))
	}
	for page, rank := range b {
		if _, ok := a[page]; !ok {
			delta = math.Max(delta, math.Abs(rank))
		}
	}
	return delta
}

func sum[M ~map[string]float64](m M) float64 {
	total := 0.0
	for _, v := range m {
		total += v
	}
	return total
}

// normalize divides every value by the total so the map sums to 1
func normalize[M ~map[string]float64](m M) {
	total := sum(m)
	if total == 0 {
		return
	}
	for k := range m {
		m[k] /= total
	}
}
