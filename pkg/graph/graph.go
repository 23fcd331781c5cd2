package graph

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/lioia/pagerank/pkg/utils"
	"github.com/pkg/errors"
)

// ErrUnknownPage is returned when a link points to a page that is not a key of the graph
var ErrUnknownPage = errors.New("unknown page")

// ErrUnavailable marks loading failures that may succeed on a retry
// (network errors and 5xx responses)
var ErrUnavailable = errors.New("resource unavailable")

// Graph maps every page to the set of pages it links to.
// Every link target is itself a key; a page with no links is a sink.
type Graph map[string]map[string]struct{}

func New() Graph {
	return make(Graph)
}

// AddPage adds a page with no outlinks (no-op if it already exists)
func (g Graph) AddPage(page string) {
	if g[page] == nil {
		g[page] = make(map[string]struct{})
	}
}

// AddLink adds both pages and the link between them. Self-links are dropped.
func (g Graph) AddLink(from, to string) {
	g.AddPage(from)
	g.AddPage(to)
	if from == to {
		return
	}
	g[from][to] = struct{}{}
}

// Pages returns every page in lexical order
func (g Graph) Pages() []string {
	pages := make([]string, 0, len(g))
	for page := range g {
		pages = append(pages, page)
	}
	sort.Strings(pages)
	return pages
}

// OutLinks returns the pages linked by page in lexical order
func (g Graph) OutLinks(page string) []string {
	links := make([]string, 0, len(g[page]))
	for link := range g[page] {
		links = append(links, link)
	}
	sort.Strings(links)
	return links
}

func (g Graph) OutDegree(page string) int {
	return len(g[page])
}

func (g Graph) Has(page string) bool {
	_, ok := g[page]
	return ok
}

func (g Graph) EdgeCount() int {
	count := 0
	for _, links := range g {
		count += len(links)
	}
	return count
}

// Validate checks that every link target is a page of the graph
func (g Graph) Validate() error {
	for page, links := range g {
		for link := range links {
			if _, ok := g[link]; !ok {
				return errors.Wrapf(ErrUnknownPage, "%s links to %s", page, link)
			}
		}
	}
	return nil
}

// Prune removes every link whose target is not a page of the graph
func (g Graph) Prune() {
	for page, links := range g {
		for link := range links {
			if _, ok := g[link]; !ok || link == page {
				delete(links, link)
			}
		}
	}
}

// MarshalJSON encodes the graph as page -> sorted list of links
func (g Graph) MarshalJSON() ([]byte, error) {
	out := make(map[string][]string, len(g))
	for page := range g {
		out[page] = g.OutLinks(page)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes page -> list of links. Targets that are not keys are
// kept so Validate can report them; use Prune to drop them instead.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var in map[string][]string
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*g = make(Graph, len(in))
	for page, links := range in {
		(*g).AddPage(page)
		for _, link := range links {
			if link == page {
				continue
			}
			(*g)[page][link] = struct{}{}
		}
	}
	return nil
}

// LoadGraphResource loads a graph from a url, a corpus directory, a json file
// or an edge list file
func LoadGraphResource(resource string) (g Graph, err error) {
	var bytes []byte
	// Check if it's a network resource or a local one
	if strings.HasPrefix(resource, "http") {
		// Loading file from network
		var resp *http.Response
		resp, err = http.Get(resource)
		if err != nil {
			utils.WarnLog("loader", "Could not load network file at %s: %v", resource, err)
			return nil, errors.Wrapf(ErrUnavailable, "get %s: %v", resource, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, errors.Wrapf(ErrUnavailable, "get %s: status %s", resource, resp.Status)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, errors.Errorf("get %s: unexpected status %s", resource, resp.Status)
		}
		// Read response body
		bytes, err = io.ReadAll(resp.Body)
		if err != nil {
			utils.WarnLog("loader", "Could not load body from request: %v", err)
			return nil, errors.Wrapf(ErrUnavailable, "read body: %v", err)
		}
	} else {
		info, statErr := os.Stat(resource)
		if statErr != nil {
			return nil, errors.Wrapf(statErr, "stat %s", resource)
		}
		// A directory is a corpus of documents
		if info.IsDir() {
			return Crawl(resource)
		}
		// Loading file from local filesystem
		bytes, err = os.ReadFile(resource)
		if err != nil {
			utils.WarnLog("loader", "Could not read graph at %s: %v", resource, err)
			return nil, errors.Wrapf(err, "read %s", resource)
		}
	}
	if strings.HasSuffix(resource, ".json") {
		g = New()
		if err = json.Unmarshal(bytes, &g); err != nil {
			return nil, errors.Wrapf(err, "parse %s", resource)
		}
		g.Prune()
		return g, nil
	}
	// Parse graph file into graph representation
	g, err = LoadGraphFromBytes(bytes)
	if err != nil {
		utils.WarnLog("loader", "Could not load graph from %s: %v", resource, err)
		return nil, err
	}
	return g, nil
}

// LoadGraphFromBytes parses an edge list: one "from to" (or "from,to") pair
// per line; a line with a single page declares it without links.
func LoadGraphFromBytes(contents []byte) (Graph, error) {
	g := New()
	// Split file contents in lines (based on newline delimiter)
	lines := strings.Split(strings.ReplaceAll(string(contents), "\r\n", "\n"), "\n")
	for i, line := range lines {
		from, to, skip, err := convertLine(line)
		// There was an error loading the line
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", i+1)
		}
		// Comment line -> no new node to add
		if skip {
			continue
		}
		if to == "" {
			g.AddPage(from)
			continue
		}
		g.AddLink(from, to)
	}
	utils.NodeLog("loader", "Loaded graph with %d pages and %d links", len(g), g.EdgeCount())
	return g, nil
}

func convertLine(line string) (string, string, bool, error) {
	line = strings.TrimSpace(line)
	// Skip comment lines
	if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") || line == "" {
		return "", "", true, nil
	}
	// Convert line to csv format
	tokens := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	switch len(tokens) {
	case 1:
		return tokens[0], "", false, nil
	case 2:
		return tokens[0], tokens[1], false, nil
	}
	return "", "", false, errors.Errorf("could not convert line %q", line)
}
