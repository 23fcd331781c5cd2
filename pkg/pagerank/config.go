package pagerank

import (
	"io"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultDamping   = 0.85
	DefaultSamples   = 100000
	DefaultTolerance = 0.001
)

// Config holds the parameters shared by both estimators.
type Config struct {
	// DampingFactor is the probability that the surfer follows one of the
	// links of the current page instead of jumping to a random page.
	//
	// If not specified, 0.85 is used.
	DampingFactor float64

	// Samples is the length of the random walk of the sampling estimator.
	//
	// If not specified, 100000 is used.
	Samples int

	// Tolerance is the maximum per-page rank change between two sweeps of
	// the iterative estimator for it to be considered converged.
	//
	// If not specified, 0.001 is used.
	Tolerance float64

	// MaxSweeps bounds the number of sweeps of the iterative estimator.
	// Zero means no bound.
	MaxSweeps int

	// Logger receives progress messages. Nil disables logging.
	Logger *logrus.Entry
}

// DefaultConfig returns a configuration with every default set
func DefaultConfig() Config {
	return Config{
		DampingFactor: DefaultDamping,
		Samples:       DefaultSamples,
		Tolerance:     DefaultTolerance,
	}
}

// Validate checks the configuration and sets the default values where required.
func (c *Config) Validate() error {
	var err error
	if c.DampingFactor == 0 {
		c.DampingFactor = DefaultDamping
	} else if err2 := checkDamping(c.DampingFactor); err2 != nil {
		err = multierror.Append(err, err2)
	}

	if c.Samples < 0 {
		err = multierror.Append(err, errors.Wrapf(ErrInvalidArgument, "samples must be positive, got %d", c.Samples))
	} else if c.Samples == 0 {
		c.Samples = DefaultSamples
	}

	if c.Tolerance < 0 || c.Tolerance >= 1 {
		err = multierror.Append(err, errors.Wrapf(ErrInvalidArgument, "tolerance must be in the range (0, 1), got %g", c.Tolerance))
	} else if c.Tolerance == 0 {
		c.Tolerance = DefaultTolerance
	}

	if c.MaxSweeps < 0 {
		err = multierror.Append(err, errors.Wrapf(ErrInvalidArgument, "max sweeps must not be negative, got %d", c.MaxSweeps))
	}
	return err
}

// discard is used when no logger is configured
var discard = logrus.NewEntry(&logrus.Logger{
	Out:       io.Discard,
	Formatter: new(logrus.TextFormatter),
	Hooks:     make(logrus.LevelHooks),
	Level:     logrus.PanicLevel,
})

func (c *Config) log() *logrus.Entry {
	if c.Logger == nil {
		return discard
	}
	return c.Logger
}

func checkDamping(d float64) error {
	if !(d > 0 && d < 1) {
		return errors.Wrapf(ErrInvalidArgument, "damping factor must be in the range (0, 1), got %g", d)
	}
	return nil
}
