package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/wordex/internal/errors"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.GreaterOrEqual(t, cfg.Pipeline.Workers, 1)
	assert.GreaterOrEqual(t, cfg.Pipeline.QueueDepth, 1)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Output.Dir, cfg.Output.Dir)
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".wordex.yml")
	content := `
version: 1
pipeline:
  workers: 2
  queue_depth: 8
  deadline: "5m"
tokenizer:
  min_token_length: 2
  split_identifiers: true
  stop_words: [the, a]
errors:
  fatal_kinds: [decode]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Pipeline.Workers)
	assert.Equal(t, 8, cfg.Pipeline.QueueDepth)
	assert.Equal(t, 2, cfg.Tokenizer.MinTokenLength)
	assert.True(t, cfg.Tokenizer.SplitIdentifiers)
	assert.Equal(t, []string{"the", "a"}, cfg.Tokenizer.StopWords)

	d, err := cfg.Deadline()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, d)

	_, escalated := cfg.FatalKindSet()["decode"]
	assert.True(t, escalated)

	// Untouched sections keep their defaults.
	assert.Equal(t, Default().Corpus.MaxFileSize, cfg.Corpus.MaxFileSize)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero workers", func(c *Config) { c.Pipeline.Workers = 0 }},
		{"zero queue depth", func(c *Config) { c.Pipeline.QueueDepth = 0 }},
		{"zero min token length", func(c *Config) { c.Tokenizer.MinTokenLength = 0 }},
		{"negative flush retries", func(c *Config) { c.Storage.FlushRetries = -1 }},
		{"empty output dir", func(c *Config) { c.Output.Dir = "" }},
		{"bad deadline", func(c *Config) { c.Pipeline.Deadline = "soon" }},
		{"negative deadline", func(c *Config) { c.Pipeline.Deadline = "-1s" }},
		{"unknown fatal kind", func(c *Config) { c.Errors.FatalKinds = []string{"cosmic-rays"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".wordex.yml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline: ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
}
