package graph

import (
	"fmt"
	"io"

	"github.com/goccy/go-graphviz"
	"github.com/pkg/errors"
)

// Render draws the graph with graphviz in the given format ("dot", "svg",
// "png", "jpg"). When ranks is not nil every node is labeled with its rank and
// scaled by it.
func Render(g Graph, ranks map[string]float64, format string, w io.Writer) error {
	gv := graphviz.New()
	defer gv.Close()
	graph, err := gv.Graph()
	if err != nil {
		return errors.Wrap(err, "create graphviz graph")
	}
	defer graph.Close()

	pages := g.Pages()
	for _, page := range pages {
		node, err := graph.CreateNode(page)
		if err != nil {
			return errors.Wrapf(err, "create node %s", page)
		}
		if rank, ok := ranks[page]; ok {
			node.SetLabel(fmt.Sprintf("%s\n%.4f", page, rank))
			node.SetFontSize(10 + 30*rank)
		}
	}
	for _, page := range pages {
		from, err := graph.Node(page)
		if err != nil {
			return errors.Wrapf(err, "lookup node %s", page)
		}
		for _, link := range g.OutLinks(page) {
			to, err := graph.Node(link)
			if err != nil || to == nil {
				return errors.Wrapf(ErrUnknownPage, "%s links to %s", page, link)
			}
			if _, err := graph.CreateEdge(page+"->"+link, from, to); err != nil {
				return errors.Wrapf(err, "create edge %s -> %s", page, link)
			}
		}
	}

	if err := gv.Render(graph, graphviz.Format(format), w); err != nil {
		return errors.Wrapf(err, "render %s", format)
	}
	return nil
}
