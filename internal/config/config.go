// Package config loads modcheck settings from .modcheck.yaml, MODCHECK_
// environment variables and built-in defaults, in increasing precedence of
// defaults < file < environment. Command-line flags are applied on top by the
// CLI.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/modcheck/internal/ir"
)

const (
	// FileName is the configuration file looked up in the working directory.
	FileName = ".modcheck.yaml"

	// EnvPrefix prefixes environment overrides, e.g. MODCHECK_MAX_CYCLES.
	EnvPrefix = "MODCHECK"
)

// Config holds every configurable setting.
type Config struct {
	Root             string   `mapstructure:"root"`
	Source           string   `mapstructure:"source"`
	Declarations     string   `mapstructure:"declarations"`
	InternalSegments []string `mapstructure:"internal_segments"`
	DefaultScope     string   `mapstructure:"default_scope"`
	MaxCycles        int      `mapstructure:"max_cycles"`
	Workers          int      `mapstructure:"workers"`

	Docs    DocsConfig    `mapstructure:"docs"`
	History HistoryConfig `mapstructure:"history"`
}

// DocsConfig controls documentation output.
type DocsConfig struct {
	Output  string `mapstructure:"output"`
	Diagram string `mapstructure:"diagram"`
}

// HistoryConfig controls run recording.
type HistoryConfig struct {
	DB string `mapstructure:"db"`
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// ConfigFilePath is used exclusively when set and must exist.
	ConfigFilePath string

	// Dir is searched for FileName when ConfigFilePath is empty.
	// Empty means the working directory.
	Dir string
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Source:           "yaml",
		InternalSegments: []string{"internal", "impl"},
		DefaultScope:     string(ir.ScopeExposed),
		MaxCycles:        100,
		Workers:          0,
		Docs: DocsConfig{
			Output:  filepath.Join("build", "modcheck-docs"),
			Diagram: "plantuml",
		},
	}
}

// Load resolves the configuration. The second result is the config file
// used, or "" when only defaults and environment applied.
func Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("root", defaults.Root)
	v.SetDefault("source", defaults.Source)
	v.SetDefault("declarations", defaults.Declarations)
	v.SetDefault("internal_segments", defaults.InternalSegments)
	v.SetDefault("default_scope", defaults.DefaultScope)
	v.SetDefault("max_cycles", defaults.MaxCycles)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("docs.output", defaults.Docs.Output)
	v.SetDefault("docs.diagram", defaults.Docs.Diagram)
	v.SetDefault("history.db", defaults.History.DB)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", fmt.Errorf("config file not found: %s", opts.ConfigFilePath)
		}
		resolvedPath = opts.ConfigFilePath
	} else if local := filepath.Join(opts.Dir, FileName); fileExists(local) {
		resolvedPath = local
	}

	if resolvedPath != "" {
		v.SetConfigFile(resolvedPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read config %s: %w", resolvedPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolvedPath, nil
}

// Validate checks value constraints. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	switch c.Source {
	case "yaml", "go":
	default:
		errs = append(errs, fmt.Errorf("source: must be yaml or go, got %q", c.Source))
	}
	if _, err := c.Scope(); err != nil {
		errs = append(errs, err)
	}
	if c.MaxCycles < 0 {
		errs = append(errs, fmt.Errorf("max_cycles: must not be negative, got %d", c.MaxCycles))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers: must not be negative, got %d", c.Workers))
	}
	switch c.Docs.Diagram {
	case "plantuml", "mermaid":
	default:
		errs = append(errs, fmt.Errorf("docs.diagram: must be plantuml or mermaid, got %q", c.Docs.Diagram))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Scope parses DefaultScope case-insensitively.
func (c *Config) Scope() (ir.Scope, error) {
	switch s := ir.Scope(strings.ToUpper(c.DefaultScope)); s {
	case ir.ScopeExposed, ir.ScopeInternal:
		return s, nil
	default:
		return "", fmt.Errorf("default_scope: must be exposed or internal, got %q", c.DefaultScope)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
