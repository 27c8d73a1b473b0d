package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"prsummary.dev/prsummary/internal/github"
	"prsummary.dev/prsummary/internal/resolver"
)

const (
	// FileName is looked up in the working directory
	FileName = ".pr-summary.toml"
	// LogFileEnv overrides log_file
	LogFileEnv = "PR_SUMMARY_LOG_FILE"
)

// Config is the pr-summary configuration
type Config struct {
	API               string `toml:"api"`
	Hostname          string `toml:"hostname"`
	PerPage           int    `toml:"per_page"`
	MaxFetchPRs       int    `toml:"max_fetch_prs"`
	MaxCommitPages    int    `toml:"max_commit_pages"`
	LookupConcurrency int    `toml:"lookup_concurrency"`
	Template          string `toml:"template"`      // text/template file; empty for the built-in layout
	LogFile           string `toml:"log_file"`      // rotated debug log; empty disables it
	ReleaseTitle      string `toml:"release_title"` // fmt format receiving the release date
	path              string // file the config was read from, empty for defaults
}

// Default returns the configuration used when no file is found
func Default() *Config {
	opts := resolver.DefaultOptions()
	return &Config{
		API:               string(github.FlavorREST),
		Hostname:          github.DefaultHostname,
		PerPage:           opts.PerPage,
		MaxFetchPRs:       opts.MaxFetchPRs,
		MaxCommitPages:    opts.MaxCommitPages,
		LookupConcurrency: opts.LookupConcurrency,
		ReleaseTitle:      "Release %s",
	}
}

// Load reads the configuration. An explicit path must exist; otherwise
// .pr-summary.toml in the working directory and then the user config
// directory are tried, falling back to defaults.
func Load(explicit string) (*Config, error) {
	var cfg *Config
	if explicit != "" {
		loaded, err := LoadFile(explicit)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = Default()
		for _, candidate := range searchPaths() {
			loaded, err := LoadFile(candidate)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, err
			}
			cfg = loaded
			break
		}
	}

	if logFile := os.Getenv(LogFileEnv); logFile != "" {
		cfg.LogFile = logFile
	}
	return cfg, nil
}

// LoadFile reads one configuration file over the defaults
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("failed to parse config %s:\n%s", path, strict.String())
		}
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.path = path

	// Relative template paths are relative to the config file
	if cfg.Template != "" && !filepath.IsAbs(cfg.Template) {
		cfg.Template = filepath.Join(filepath.Dir(path), cfg.Template)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func searchPaths() []string {
	paths := []string{FileName}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		paths = append(paths, filepath.Join(dir, "pr-summary", "config.toml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "pr-summary", "config.toml"))
	}
	return paths
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	if _, err := github.ParseFlavor(c.API); err != nil {
		return err
	}
	for name, v := range map[string]int{
		"per_page":           c.PerPage,
		"max_fetch_prs":      c.MaxFetchPRs,
		"max_commit_pages":   c.MaxCommitPages,
		"lookup_concurrency": c.LookupConcurrency,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}
	if c.PerPage > github.DefaultPerPage {
		return fmt.Errorf("per_page must be at most %d, got %d", github.DefaultPerPage, c.PerPage)
	}
	return nil
}

// Path returns the file the configuration was read from, empty for defaults
func (c *Config) Path() string {
	return c.path
}

// Flavor returns the configured API flavor
func (c *Config) Flavor() github.Flavor {
	flavor, err := github.ParseFlavor(c.API)
	if err != nil {
		return github.FlavorREST
	}
	return flavor
}

// ResolverOptions returns the resolver limits
func (c *Config) ResolverOptions() resolver.Options {
	return resolver.Options{
		PerPage:           c.PerPage,
		MaxFetchPRs:       c.MaxFetchPRs,
		MaxCommitPages:    c.MaxCommitPages,
		LookupConcurrency: c.LookupConcurrency,
	}
}

// Encode renders the configuration as TOML
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
