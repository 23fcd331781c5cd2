package utils

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

type Config struct {
	Damping   float64
	Samples   int
	Tolerance float64
	Seed      int64
	Graph     string
	Output    string
}

// Load config.json (damping, samples, tolerance, graph resource and output file).
// A missing file is not an error: the zero Config is returned.
func LoadConfiguration(path string) (config Config, err error) {
	// File does not exist -> nothing to load
	if _, err = os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, errors.Wrapf(err, "stat %s", path)
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		err = errors.Wrap(err, "read")
		return
	}
	// Parse config.json into Config struct
	if err = json.Unmarshal(bytes, &config); err != nil {
		err = errors.Wrap(err, "parse")
		return
	}
	return
}
