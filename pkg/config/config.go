// Package config holds the run configuration of the simulator. It is read
// from YAML and can be overridden by netlist .options cards and CLI flags.
package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/edp1096/jj-spice/internal/consts"
	"github.com/edp1096/jj-spice/internal/logging"
	"github.com/edp1096/jj-spice/pkg/matrix"
)

type Config struct {
	Solver   string       `yaml:"solver"`
	LogLevel string       `yaml:"log_level"`
	Newton   NewtonConfig `yaml:"newton"`
	Output   OutputConfig `yaml:"output"`
}

type NewtonConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
}

type OutputConfig struct {
	CSV  string `yaml:"csv"`
	Plot string `yaml:"plot"`
}

func Default() *Config {
	return &Config{
		Solver:   "dense",
		LogLevel: "info",
		Newton: NewtonConfig{
			MaxIterations: consts.DEFAULT_MAX_ITERATIONS,
			Tolerance:     consts.DEFAULT_TOLERANCE,
		},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := matrix.NewSolver(c.Solver); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Newton.MaxIterations < 0 {
		return fmt.Errorf("newton.max_iterations must not be negative, got %d", c.Newton.MaxIterations)
	}
	if c.Newton.Tolerance <= 0 {
		return fmt.Errorf("newton.tolerance must be positive, got %g", c.Newton.Tolerance)
	}
	return nil
}

// netlistOptions are the keys accepted on a .options card.
type netlistOptions struct {
	Solver   *string  `mapstructure:"solver"`
	MaxIter  *int     `mapstructure:"maxiter"`
	Tol      *float64 `mapstructure:"tol"`
	LogLevel *string  `mapstructure:"loglevel"`
}

// ApplyOptions overlays .options key=value pairs. Unknown keys are errors.
func (c *Config) ApplyOptions(options map[string]any) error {
	var opts netlistOptions
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(options); err != nil {
		return fmt.Errorf("invalid .options: %w", err)
	}

	if opts.Solver != nil {
		c.Solver = *opts.Solver
	}
	if opts.MaxIter != nil {
		c.Newton.MaxIterations = *opts.MaxIter
	}
	if opts.Tol != nil {
		c.Newton.Tolerance = *opts.Tol
	}
	if opts.LogLevel != nil {
		c.LogLevel = *opts.LogLevel
	}
	return c.Validate()
}

func (c *Config) NewSolver() (matrix.Solver, error) {
	return matrix.NewSolver(c.Solver)
}
