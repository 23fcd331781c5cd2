package report

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/lioia/pagerank/pkg/pagerank"
	"github.com/pkg/errors"
)

// Format writes header followed by one "  page: rank" line per page, sorted by page
func Format(w io.Writer, header string, ranks pagerank.Ranks) error {
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	for _, page := range ranks.Pages() {
		if _, err := fmt.Fprintf(w, "  %s: %.4f\n", page, ranks[page]); err != nil {
			return err
		}
	}
	return nil
}

// Print writes the results of both estimators
func Print(w io.Writer, sampled pagerank.Ranks, samples int, iterated pagerank.Ranks) error {
	if err := Format(w, fmt.Sprintf("PageRank Results from Sampling (n = %d)", samples), sampled); err != nil {
		return err
	}
	return Format(w, "PageRank Results from Iteration", iterated)
}

// Write saves the results of both estimators to the output file
func Write(output string, sampled pagerank.Ranks, samples int, iterated pagerank.Ranks) error {
	file, err := os.Create(output)
	if err != nil {
		return errors.Wrapf(err, "create %s", output)
	}
	defer file.Close()
	w := bufio.NewWriter(file)
	if err = Print(w, sampled, samples, iterated); err != nil {
		return errors.Wrapf(err, "write %s", output)
	}
	return w.Flush()
}
