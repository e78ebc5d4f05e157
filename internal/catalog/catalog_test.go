package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/wordex/internal/bucket"
	"github.com/Aman-CERP/wordex/internal/errors"
	"github.com/Aman-CERP/wordex/internal/pipeline"
)

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		State: pipeline.StateCompleted,
		Indexed: []pipeline.DocRef{
			{ID: 1, Path: "/corpus/a.txt", WordCount: 4},
			{ID: 2, Path: "/corpus/b.txt", WordCount: 3},
		},
		Skipped: []pipeline.Skip{
			{DocID: 3, Path: "/corpus/c.bin", Code: errors.ErrCodeDocDecode, Reason: "not valid UTF-8"},
		},
		Buckets: []bucket.Info{
			{Key: "f", Path: "/out/bucket-f.wdx", Words: 2, Bytes: 120},
			{Key: "t", Path: "/out/bucket-t.wdx", Words: 1, Bytes: 80},
		},
		WordCount: 7,
		Duration:  1200 * time.Millisecond,
	}
}

func TestRecordAndLatestRun(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	runID, err := c.RecordRun(sampleResult())
	require.NoError(t, err)
	require.NotZero(t, runID)

	run, found, err := c.LatestRun()
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, runID, run.ID)
	assert.Equal(t, "completed", run.State)
	assert.Equal(t, 2, run.Documents)
	assert.Equal(t, 1, run.Skipped)
	assert.Equal(t, 3, run.Words)
	assert.Equal(t, 2, run.Buckets)
	assert.Equal(t, uint64(7), run.WordCount)
	assert.Equal(t, 1200*time.Millisecond, run.Duration)
}

func TestLatestRunPicksNewest(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.RecordRun(sampleResult())
	require.NoError(t, err)

	second := sampleResult()
	second.State = pipeline.StateFailed
	id2, err := c.RecordRun(second)
	require.NoError(t, err)

	run, found, err := c.LatestRun()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, id2, run.ID)
	assert.Equal(t, "failed", run.State)
}

func TestLatestRunEmpty(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	_, found, err := c.LatestRun()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDocPath(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	runID, err := c.RecordRun(sampleResult())
	require.NoError(t, err)

	path, found, err := c.DocPath(runID, 2)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "/corpus/b.txt", path)

	_, found, err = c.DocPath(runID, 99)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSkipsAndBuckets(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	runID, err := c.RecordRun(sampleResult())
	require.NoError(t, err)

	skips, err := c.Skips(runID)
	require.NoError(t, err)
	require.Len(t, skips, 1)
	assert.Equal(t, uint32(3), skips[0].DocID)
	assert.Equal(t, errors.ErrCodeDocDecode, skips[0].Code)

	buckets, err := c.Buckets(runID)
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, "f", buckets[0].Key)
	assert.Equal(t, int64(120), buckets[0].Bytes)
	assert.Equal(t, "t", buckets[1].Key)
}

func TestOpenIsReentrant(t *testing.T) {
	dir := t.TempDir()

	c1, err := Open(dir)
	require.NoError(t, err)
	_, err = c1.RecordRun(sampleResult())
	require.NoError(t, err)
	require.NoError(t, c1.Close())

	c2, err := Open(dir)
	require.NoError(t, err)
	defer c2.Close()

	_, found, err := c2.LatestRun()
	require.NoError(t, err)
	assert.True(t, found)
}
