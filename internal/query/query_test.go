package query

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/wordex/internal/catalog"
	"github.com/Aman-CERP/wordex/internal/corpus"
	"github.com/Aman-CERP/wordex/internal/pipeline"
	"github.com/Aman-CERP/wordex/internal/tokenizer"
)

// buildIndex runs the full pipeline over files and records the run, the
// same way the CLI does.
func buildIndex(t *testing.T, files map[string]string) string {
	t.Helper()

	corpusDir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(corpusDir, name), []byte(content), 0o644))
	}
	outDir := t.TempDir()

	coord := pipeline.NewCoordinator(pipeline.Config{
		OutputDir: outDir,
		Rule:      tokenizer.DefaultRule(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	src := corpus.NewSource(corpus.NewWalker(corpusDir, corpus.WalkOptions{}))
	res, err := coord.Run(context.Background(), src)
	require.NoError(t, err)

	cat, err := catalog.Open(outDir)
	require.NoError(t, err)
	defer cat.Close()
	_, err = cat.RecordRun(res)
	require.NoError(t, err)

	return outDir
}

func TestLookup(t *testing.T) {
	outDir := buildIndex(t, map[string]string{
		"a.txt": "the quick brown fox",
		"b.txt": "the lazy dog",
	})

	e, err := NewEngine(outDir)
	require.NoError(t, err)
	defer e.Close()

	matches, err := e.Lookup("the")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, uint32(1), matches[0].DocID)
	assert.Contains(t, matches[0].Path, "a.txt")
	assert.Equal(t, []uint32{0}, matches[0].Positions)
	assert.Equal(t, uint32(2), matches[1].DocID)
	assert.Contains(t, matches[1].Path, "b.txt")

	matches, err = e.Lookup("fox")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, []uint32{3}, matches[0].Positions)
}

func TestLookupNormalizesCase(t *testing.T) {
	outDir := buildIndex(t, map[string]string{"a.txt": "Hello World"})

	e, err := NewEngine(outDir)
	require.NoError(t, err)
	defer e.Close()

	matches, err := e.Lookup("  HELLO ")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestLookupUnknownWord(t *testing.T) {
	outDir := buildIndex(t, map[string]string{"a.txt": "alpha"})

	e, err := NewEngine(outDir)
	require.NoError(t, err)
	defer e.Close()

	// Same bucket as an indexed word.
	matches, err := e.Lookup("apricot")
	require.NoError(t, err)
	assert.Empty(t, matches)

	// Bucket that was never published.
	matches, err = e.Lookup("zebra")
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = e.Lookup("")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestNewEngineRequiresRecordedRun(t *testing.T) {
	_, err := NewEngine(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no index runs")
}
