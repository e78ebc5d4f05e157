// Package config loads and validates the wordex configuration file.
package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/wordex/internal/errors"
)

// DefaultFileName is the config file wordex looks for in the working directory.
const DefaultFileName = ".wordex.yml"

// Config represents the complete wordex configuration.
type Config struct {
	Version   int             `yaml:"version"`
	Output    OutputConfig    `yaml:"output"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Storage   StorageConfig   `yaml:"storage"`
	Errors    ErrorsConfig    `yaml:"errors"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// OutputConfig configures where index artifacts are written.
type OutputConfig struct {
	// Dir is the directory receiving bucket files and the run catalog.
	Dir string `yaml:"dir"`
}

// PipelineConfig configures the concurrent indexing pipeline.
type PipelineConfig struct {
	// Workers is the tokenizer worker pool size (>= 1).
	Workers int `yaml:"workers"`

	// QueueDepth is the capacity of the bounded hand-off channels (>= 1).
	// Smaller values trade throughput for a tighter memory ceiling.
	QueueDepth int `yaml:"queue_depth"`

	// Deadline is an optional overall run deadline (e.g. "10m", "" = none).
	// Expiry is treated as a fatal pipeline error.
	Deadline string `yaml:"deadline"`
}

// TokenizerConfig configures the word-normalization rule.
type TokenizerConfig struct {
	// MinTokenLength drops normalized words shorter than this (default 1).
	MinTokenLength int `yaml:"min_token_length"`

	// SplitIdentifiers additionally splits camelCase and snake_case
	// identifiers into their components.
	SplitIdentifiers bool `yaml:"split_identifiers"`

	// StopWords are normalized words excluded from the index.
	StopWords []string `yaml:"stop_words"`
}

// CorpusConfig configures document enumeration.
type CorpusConfig struct {
	// Include restricts enumeration to matching glob patterns (empty = all).
	Include []string `yaml:"include"`

	// Exclude skips matching glob patterns.
	Exclude []string `yaml:"exclude"`

	// MaxFileSize skips documents larger than this many bytes (0 = 10MB).
	MaxFileSize int64 `yaml:"max_file_size"`
}

// StorageConfig configures bucket flushing.
type StorageConfig struct {
	// FlushRetries is the number of retries for a failed bucket write
	// before the error becomes fatal.
	FlushRetries int `yaml:"flush_retries"`
}

// ErrorsConfig reclassifies per-document read errors.
type ErrorsConfig struct {
	// FatalKinds lists document error kinds escalated from skippable to
	// fatal. Valid kinds: not-found, permission, too-large, decode, io.
	FatalKinds []string `yaml:"fatal_kinds"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level"`
}

// validKinds are the document error kinds accepted in errors.fatal_kinds.
var validKinds = map[string]struct{}{
	"not-found":  {},
	"permission": {},
	"too-large":  {},
	"decode":     {},
	"io":         {},
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Output: OutputConfig{
			Dir: ".wordex",
		},
		Pipeline: PipelineConfig{
			Workers:    runtime.NumCPU(),
			QueueDepth: 64,
			Deadline:   "",
		},
		Tokenizer: TokenizerConfig{
			MinTokenLength:   1,
			SplitIdentifiers: false,
			StopWords:        nil,
		},
		Corpus: CorpusConfig{
			Include:     nil,
			Exclude:     []string{".wordex/**", ".git/**"},
			MaxFileSize: 10 * 1024 * 1024,
		},
		Storage: StorageConfig{
			FlushRetries: 2,
		},
		Errors: ErrorsConfig{
			FatalKinds: nil,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a config file and merges it over the defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeConfigNotFound, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("parsing %s: %v", path, err), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Pipeline.Workers < 1 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("pipeline.workers must be >= 1, got %d", c.Pipeline.Workers), nil)
	}
	if c.Pipeline.QueueDepth < 1 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("pipeline.queue_depth must be >= 1, got %d", c.Pipeline.QueueDepth), nil)
	}
	if c.Tokenizer.MinTokenLength < 1 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("tokenizer.min_token_length must be >= 1, got %d", c.Tokenizer.MinTokenLength), nil)
	}
	if c.Storage.FlushRetries < 0 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("storage.flush_retries must be >= 0, got %d", c.Storage.FlushRetries), nil)
	}
	if c.Output.Dir == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "output.dir must not be empty", nil)
	}
	if _, err := c.Deadline(); err != nil {
		return err
	}
	for _, kind := range c.Errors.FatalKinds {
		if _, ok := validKinds[kind]; !ok {
			return errors.New(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("errors.fatal_kinds: unknown kind %q", kind), nil)
		}
	}
	return nil
}

// Deadline parses the optional pipeline deadline. Zero means none.
func (c *Config) Deadline() (time.Duration, error) {
	if c.Pipeline.Deadline == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Pipeline.Deadline)
	if err != nil {
		return 0, errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("pipeline.deadline: %v", err), err)
	}
	if d < 0 {
		return 0, errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("pipeline.deadline must not be negative, got %s", d), nil)
	}
	return d, nil
}

// FatalKindSet returns the escalated error kinds as a lookup set.
func (c *Config) FatalKindSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Errors.FatalKinds))
	for _, kind := range c.Errors.FatalKinds {
		set[kind] = struct{}{}
	}
	return set
}
