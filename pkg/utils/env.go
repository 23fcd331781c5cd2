package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type EnvVars struct {
	Damping     float64
	Samples     int
	Tolerance   float64
	Seed        int64
	ApiPort     int
	GrpcPort    int
	Prefetch    int
	RabbitHost  string
	RabbitUser  string
	RabbitPass  string
	WorkQueue   string
	ResultQueue string
	NodeLog     bool
	ServerLog   bool
}

// ReadEnvVars reads the configuration from the environment (and .env if present).
// Unset numeric values stay zero so the estimator defaults apply.
func ReadEnvVars() (EnvVars, error) {
	// Loading .env file if it exists
	// It will not override already existing env vars
	_ = godotenv.Load()
	var env EnvVars
	var err error
	if env.Damping, err = envOr("DAMPING", 0.0, parseFloat); err != nil {
		return EnvVars{}, err
	}
	if env.Tolerance, err = envOr("TOLERANCE", 0.0, parseFloat); err != nil {
		return EnvVars{}, err
	}
	if env.Samples, err = envOr("SAMPLES", 0, strconv.Atoi); err != nil {
		return EnvVars{}, err
	}
	if env.Seed, err = envOr("SEED", int64(0), parseInt64); err != nil {
		return EnvVars{}, err
	}
	if env.ApiPort, err = envOr("API_PORT", 8080, strconv.Atoi); err != nil {
		return EnvVars{}, err
	}
	if env.GrpcPort, err = envOr("GRPC_PORT", 0, strconv.Atoi); err != nil {
		return EnvVars{}, err
	}
	if env.Prefetch, err = envOr("PREFETCH", 1, strconv.Atoi); err != nil {
		return EnvVars{}, err
	}
	if env.NodeLog, err = envOr("NODE_LOG", false, strconv.ParseBool); err != nil {
		return EnvVars{}, err
	}
	if env.ServerLog, err = envOr("SERVER_LOG", false, strconv.ParseBool); err != nil {
		return EnvVars{}, err
	}
	env.RabbitHost = envStringOr("RABBIT_HOST", "")
	env.RabbitUser = envStringOr("RABBIT_USER", "guest")
	env.RabbitPass = envStringOr("RABBIT_PASSWORD", "guest")
	env.WorkQueue = envStringOr("WORK_QUEUE", "work")
	env.ResultQueue = envStringOr("RESULT_QUEUE", "result")
	return env, nil
}

// RabbitURL returns the amqp connection string, empty when no host is configured
func (e EnvVars) RabbitURL() string {
	if e.RabbitHost == "" {
		return ""
	}
	return fmt.Sprintf("amqp://%s:%s@%s:5672/", e.RabbitUser, e.RabbitPass, e.RabbitHost)
}

// lookupEnv returns the trimmed value of name; blank counts as unset
func lookupEnv(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

func envStringOr(name, or string) string {
	if value, ok := lookupEnv(name); ok {
		return value
	}
	return or
}

// envOr parses name with parse. Unset -> or; set but malformed -> error
func envOr[T any](name string, or T, parse func(string) (T, error)) (T, error) {
	value, ok := lookupEnv(name)
	if !ok {
		return or, nil
	}
	parsed, err := parse(value)
	if err != nil {
		return or, errors.Wrapf(err, "invalid %s %q", name, value)
	}
	return parsed, nil
}

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
func parseInt64(s string) (int64, error)   { return strconv.ParseInt(s, 10, 64) }
