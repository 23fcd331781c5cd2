package main

import (
	"bytes"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lioia/pagerank/pkg/graph"
	"github.com/lioia/pagerank/pkg/pagerank"
	"github.com/lioia/pagerank/pkg/report"
	"github.com/lioia/pagerank/pkg/utils"
)

var damping float64   // Damping factor
var samples int       // Random walk length
var tolerance float64 // Convergence threshold
var seed int64        // Random seed (0: time)
var configFile string // config.json path
var output string     // Results file
var render string     // Rendered graph file (format from extension)
var verbose bool      // Compute logs

func init() {
	flag.Float64Var(&damping, "damping", 0, "Damping factor (default 0.85)")
	flag.IntVar(&samples, "samples", 0, "Number of samples (default 100000)")
	flag.Float64Var(&tolerance, "tolerance", 0, "Convergence tolerance (default 0.001)")
	flag.Int64Var(&seed, "seed", 0, "Random seed, 0 seeds from the clock")
	flag.StringVar(&configFile, "config", "config.json", "Configuration file")
	flag.StringVar(&output, "output", "", "Write results to file")
	flag.StringVar(&render, "render", "", "Render the ranked graph to file (.dot, .svg, .png, .jpg)")
	flag.BoolVar(&verbose, "v", false, "Verbose compute logs")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] corpus\n", os.Args[0])
		flag.PrintDefaults()
	}
}

// first returns the first non-zero value
func first[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

func main() {
	flag.Parse()

	env, err := utils.ReadEnvVars()
	utils.FailOnError("Failed to read environment variables", err)
	utils.InitLog(verbose || env.NodeLog, false)
	config, err := utils.LoadConfiguration(configFile)
	utils.FailOnError("Failed to load configuration %s", err, configFile)

	resource := first(flag.Arg(0), config.Graph)
	if resource == "" {
		flag.Usage()
		os.Exit(1)
	}
	g, err := graph.LoadGraphResource(resource)
	utils.FailOnError("Failed to load graph %s", err, resource)

	cfg := pagerank.Config{
		DampingFactor: first(damping, config.Damping, env.Damping),
		Samples:       first(samples, config.Samples, env.Samples),
		Tolerance:     first(tolerance, config.Tolerance, env.Tolerance),
		Logger:        utils.ComputeLogger("cli"),
	}
	err = cfg.Validate()
	utils.FailOnError("Invalid configuration", err)

	rngSeed := first(seed, config.Seed, env.Seed, time.Now().UnixNano())
	sampled, err := pagerank.Sample(g, cfg, rand.New(rand.NewSource(rngSeed)))
	utils.FailOnError("Sampling failed", err)
	iterated, err := pagerank.Iterate(g, cfg)
	utils.FailOnError("Iteration failed", err)

	err = report.Print(os.Stdout, sampled, cfg.Samples, iterated.Ranks)
	utils.FailOnError("Failed to print results", err)

	if out := first(output, config.Output); out != "" {
		err = report.Write(out, sampled, cfg.Samples, iterated.Ranks)
		utils.FailOnError("Failed to write results to %s", err, out)
	}
	if render != "" {
		format := strings.TrimPrefix(filepath.Ext(render), ".")
		var buf bytes.Buffer
		err = graph.Render(g, iterated.Ranks, format, &buf)
		utils.FailOnError("Failed to render graph", err)
		err = os.WriteFile(render, buf.Bytes(), 0o644)
		utils.FailOnError("Failed to write %s", err, render)
	}
}
