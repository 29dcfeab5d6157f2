// Package config provides configuration management for succd.
package config

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/viper"
)

// unfoldingToolBinary is the Petri-net unfolding tool discovered via
// PATH — punf, the PR/T-net unfolding tool built around the
// McMillan/ERV algorithm.
const unfoldingToolBinary = "punf"

// discoverUnfoldingTool resolves unfoldingToolBinary via PATH, returning
// "" if it isn't installed. Called at default-construction time so a
// stock Config reflects what's actually available: claiming the oracle
// is enabled when it cannot possibly run would make every node's
// Phase-2 filter fail out of the box.
func discoverUnfoldingTool() string {
	path, err := exec.LookPath(unfoldingToolBinary)
	if err != nil {
		return ""
	}
	return path
}

// ExpansionKind selects a succession-diagram expansion strategy.
type ExpansionKind string

const (
	ExpansionBFS     ExpansionKind = "bfs"
	ExpansionDFS     ExpansionKind = "dfs"
	ExpansionMinimal ExpansionKind = "min"
	ExpansionTarget  ExpansionKind = "target"
	ExpansionBlock   ExpansionKind = "block"
)

// Config holds all configuration recognized by an analysis.
type Config struct {
	Limits    LimitsConfig    `mapstructure:"limits"`
	Oracles   OraclesConfig   `mapstructure:"oracles"`
	Expansion ExpansionConfig `mapstructure:"expansion"`
	RNGSeed   uint64          `mapstructure:"rng_seed"`
	Debug     bool            `mapstructure:"debug"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LimitsConfig holds the resource caps bounding a single analysis.
type LimitsConfig struct {
	MaxSDNodes         int `mapstructure:"max_sd_nodes"`
	MaxBDDSize         int `mapstructure:"max_bdd_size"`
	MaxCandidates      int `mapstructure:"max_candidates"`
	SimulationSteps    int `mapstructure:"simulation_steps"`
	RetainedSetSamples int `mapstructure:"retained_set_samples"`
}

// OraclesConfig configures the external trap-space solver, the Petri-net
// unfolding tool, and which reachability oracles are enabled.
type OraclesConfig struct {
	SolverPath           string `mapstructure:"solver_path"`
	UnfoldingToolPath    string `mapstructure:"unfolding_tool_path"`
	PintReachability     bool   `mapstructure:"pint_reachability"`
	SymbolicReachability bool   `mapstructure:"symbolic_reachability"`
}

// ExpansionConfig selects the expansion strategy and, for target-driven
// expansion, the target trap space.
type ExpansionConfig struct {
	Kind   ExpansionKind  `mapstructure:"kind"`
	Target map[string]int `mapstructure:"target"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"` // json or text
}

// TelemetryConfig holds OpenTelemetry settings read from the config
// file. telemetry.Init does not use them: tracing is configured from the
// OTEL_* environment variables, independently of debug.
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	Endpoint    string `mapstructure:"endpoint"`
}

// Load reads configuration from the specified file path, falling back to
// defaults when the file is absent.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("succd")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/succd")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("config file not found, using defaults")
		} else if os.IsNotExist(err) {
			fmt.Printf("config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from an in-memory buffer (useful for
// testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in defaults without touching the
// filesystem; used by callers that construct a Config programmatically.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("limits.max_sd_nodes", 1<<20)
	v.SetDefault("limits.max_bdd_size", 1<<24)
	v.SetDefault("limits.max_candidates", 100000)
	v.SetDefault("limits.simulation_steps", 1024)
	v.SetDefault("limits.retained_set_samples", 5)

	toolPath := discoverUnfoldingTool()
	v.SetDefault("oracles.unfolding_tool_path", toolPath)
	v.SetDefault("oracles.pint_reachability", toolPath != "")
	v.SetDefault("oracles.symbolic_reachability", true)

	v.SetDefault("expansion.kind", string(ExpansionBFS))

	v.SetDefault("rng_seed", 0)
	v.SetDefault("debug", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "succd")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Expansion.Kind {
	case ExpansionBFS, ExpansionDFS, ExpansionMinimal, ExpansionTarget, ExpansionBlock:
	case "":
		c.Expansion.Kind = ExpansionBFS
	default:
		return fmt.Errorf("unsupported expansion kind: %s", c.Expansion.Kind)
	}
	if c.Expansion.Kind == ExpansionTarget && len(c.Expansion.Target) == 0 {
		return fmt.Errorf("expansion kind %q requires a non-empty target space", ExpansionTarget)
	}
	if c.Limits.MaxSDNodes < 1 {
		return fmt.Errorf("max_sd_nodes must be at least 1")
	}
	if c.Limits.MaxCandidates < 1 {
		return fmt.Errorf("max_candidates must be at least 1")
	}
	if c.Limits.RetainedSetSamples < 1 {
		return fmt.Errorf("retained_set_samples must be at least 1")
	}
	return nil
}
