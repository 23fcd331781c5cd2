package graph

import (
	"bytes"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/lioia/pagerank/pkg/utils"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Crawl parses every .html and .md file of directory and returns the graph of
// links between them. Pages are identified by file name; self-links and
// links to files outside the corpus are dropped.
func Crawl(directory string) (Graph, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, errors.Wrapf(err, "read corpus %s", directory)
	}

	g := New()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext != ".html" && ext != ".md" {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(directory, name))
		if err != nil {
			return nil, errors.Wrapf(err, "read page %s", name)
		}

		var links []string
		if ext == ".html" {
			links = ExtractHTMLLinks(bytes.NewReader(contents))
		} else {
			links = ExtractMarkdownLinks(contents)
		}
		g.AddPage(name)
		for _, link := range links {
			if link == name {
				continue
			}
			g[name][link] = struct{}{}
		}
	}

	// Only include links to other pages in the corpus
	g.Prune()
	utils.NodeLog("crawler", "Crawled %s: %d pages, %d links", directory, len(g), g.EdgeCount())
	return g, nil
}

// ExtractHTMLLinks returns the href of every anchor of the document
func ExtractHTMLLinks(body io.Reader) []string {
	doc := html.NewTokenizer(body)
	var links []string
	for tokenType := doc.Next(); tokenType != html.ErrorToken; tokenType = doc.Next() {
		if tokenType != html.StartTagToken && tokenType != html.SelfClosingTagToken {
			continue
		}
		token := doc.Token()
		if token.DataAtom != atom.A {
			continue
		}
		for _, attr := range token.Attr {
			if attr.Key == "href" {
				if link := normalizeLink(attr.Val); link != "" {
					links = append(links, link)
				}
			}
		}
	}
	return links
}

// ExtractMarkdownLinks returns every non-fragment link destination of a markdown document
func ExtractMarkdownLinks(body []byte) []string {
	doc := goldmark.DefaultParser().Parse(text.NewReader(body))

	var links []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		if dest := normalizeLink(string(link.Destination)); dest != "" {
			links = append(links, dest)
		}
		return ast.WalkContinue, nil
	})
	return links
}

// normalizeLink strips fragments and queries from relative links.
// Absolute urls are kept as they are and get pruned later.
func normalizeLink(dest string) string {
	dest = strings.TrimSpace(dest)
	if dest == "" || strings.HasPrefix(dest, "#") {
		return ""
	}
	if strings.Contains(dest, "://") {
		return dest
	}
	ref, err := url.Parse(dest)
	if err != nil {
		return dest
	}
	return strings.TrimPrefix(ref.Path, "./")
}
