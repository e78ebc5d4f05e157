package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestIndexThenLookup(t *testing.T) {
	corpusDir := writeCorpus(t, map[string]string{
		"a.txt": "the quick brown fox",
		"b.txt": "the lazy dog",
	})

	_, err := execute(t, "index", corpusDir, "--no-tui")
	require.NoError(t, err)

	// Bucket files and catalog live under the default output dir.
	outDir := filepath.Join(corpusDir, ".wordex")
	ents, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.NotEmpty(t, ents)

	out, err := execute(t, "lookup", "fox", corpusDir)
	require.NoError(t, err)
	assert.Contains(t, out, "fox: 1 documents")
	assert.Contains(t, out, "a.txt")

	out, err = execute(t, "lookup", "THE", corpusDir)
	require.NoError(t, err)
	assert.Contains(t, out, "the: 2 documents")

	out, err = execute(t, "lookup", "unicorn", corpusDir)
	require.NoError(t, err)
	assert.Contains(t, out, "no matches")
}

func TestIndexDoesNotIndexItsOwnOutput(t *testing.T) {
	corpusDir := writeCorpus(t, map[string]string{"a.txt": "hello world"})

	_, err := execute(t, "index", corpusDir, "--no-tui")
	require.NoError(t, err)

	// A second run must not pick up the bucket files or catalog.
	_, err = execute(t, "index", corpusDir, "--no-tui")
	require.NoError(t, err)

	out, err := execute(t, "lookup", "hello", corpusDir)
	require.NoError(t, err)
	assert.Contains(t, out, "hello: 1 documents")
}

func TestStats(t *testing.T) {
	corpusDir := writeCorpus(t, map[string]string{"a.txt": "alpha beta"})

	_, err := execute(t, "index", corpusDir, "--no-tui")
	require.NoError(t, err)

	out, err := execute(t, "stats", corpusDir)
	require.NoError(t, err)
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "Documents: 1 indexed")
	assert.Contains(t, out, "Buckets")
}

func TestStatsWithoutIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".wordex"), 0o755))

	_, err := execute(t, "stats", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no index runs")
}

func TestLookupWithoutIndex(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"a.txt": "text"})

	_, err := execute(t, "lookup", "text", dir)
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "wordex")
}

func TestIndexCustomOutputDir(t *testing.T) {
	corpusDir := writeCorpus(t, map[string]string{"a.txt": "custom output"})
	outDir := t.TempDir()

	_, err := execute(t, "index", corpusDir, "--no-tui", "--output", outDir)
	require.NoError(t, err)

	out, err := execute(t, "lookup", "custom", corpusDir, "--output", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "custom: 1 documents")
}
