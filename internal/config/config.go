// Package config loads and validates the run configuration: the
// world-size/rank/thread/scheme/transport knobs spec.md §6's CLI keeps
// out of its one-positional-argument contract, and §9's "worker
// identity source" Open Question resolves into an optional YAML file.
package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tspbb/solver/internal/bound"
	"github.com/tspbb/solver/internal/transport"
)

// EnvVar names the environment variable that points at an optional YAML
// config file. It is never a CLI flag: cmd/tspsolve's positional
// argument is reserved for the distance-file path.
const EnvVar = "TSPSOLVE_CONFIG"

// Config is one rank's view of a distributed run.
type Config struct {
	WorldSize int `yaml:"world_size" validate:"min=1,max=4096"`
	Rank      int `yaml:"rank" validate:"min=0"`
	Threads   int `yaml:"threads" validate:"min=1"`

	BoundScheme string `yaml:"bound_scheme" validate:"oneof=A B"`

	MatrixAddr string `yaml:"matrix_addr"`
	ResultAddr string `yaml:"result_addr"`

	MetricsAddr string `yaml:"metrics_addr"`

	MaxStackDepth int `yaml:"max_stack_depth" validate:"min=0"`
}

var validate = validator.New()

// DefaultConfig is what a standalone, single-rank invocation uses with
// no TSPSOLVE_CONFIG file present.
func DefaultConfig() Config {
	addrs := transport.DefaultAddresses()
	return Config{
		WorldSize:     1,
		Rank:          0,
		Threads:       runtime.NumCPU(),
		BoundScheme:   string(bound.SchemeB),
		MatrixAddr:    addrs.MatrixAddr,
		ResultAddr:    addrs.ResultAddr,
		MetricsAddr:   "",
		MaxStackDepth: 0,
	}
}

// Load reads the config named by EnvVar if set, overlays it onto
// DefaultConfig, and validates the result. With EnvVar unset, Load
// returns DefaultConfig unmodified.
func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv(EnvVar)
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate runs struct-tag validation and the cross-field checks the
// tags can't express (Rank against WorldSize).
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	if c.Rank >= c.WorldSize {
		return fmt.Errorf("config: rank %d out of range for world_size %d", c.Rank, c.WorldSize)
	}
	return nil
}

// Scheme resolves BoundScheme to its typed form.
func (c Config) Scheme() bound.Scheme {
	return bound.Scheme(c.BoundScheme)
}

// Addresses extracts the transport address pair.
func (c Config) Addresses() transport.Addresses {
	return transport.Addresses{MatrixAddr: c.MatrixAddr, ResultAddr: c.ResultAddr}
}

func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	e := verrs[0]
	switch e.Tag() {
	case "min":
		return fmt.Errorf("config: %s must be at least %s", e.Field(), e.Param())
	case "max":
		return fmt.Errorf("config: %s must not exceed %s", e.Field(), e.Param())
	case "oneof":
		return fmt.Errorf("config: %s must be one of %q", e.Field(), e.Param())
	default:
		return fmt.Errorf("config: %s failed validation (%s)", e.Field(), e.Tag())
	}
}
