package pagerank

import "github.com/pkg/errors"

var (
	// ErrEmptyGraph is returned when the graph has no pages
	ErrEmptyGraph = errors.New("empty graph")
	// ErrInvalidPage is returned when a page is not a key of the graph
	ErrInvalidPage = errors.New("invalid page")
	// ErrInvalidArgument is returned for a damping factor outside (0, 1),
	// a non-positive sample count or tolerance
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotConverged is returned by Iterate when MaxSweeps is reached first
	ErrNotConverged = errors.New("not converged")
)
