package bucket

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/wordex/internal/errors"
	"github.com/Aman-CERP/wordex/internal/index"
)

func sampleBucket() index.Bucket {
	return index.Bucket{
		Key: "a",
		Entries: []index.Entry{
			{Word: "ant", Postings: []index.Posting{
				{DocID: 1, Positions: []uint32{0, 7}},
			}},
			{Word: "apple", Postings: []index.Posting{
				{DocID: 1, Positions: []uint32{3}},
				{DocID: 4, Positions: []uint32{0, 1, 2}},
			}},
			{Word: "axe", Postings: []index.Posting{
				{DocID: 2, Positions: []uint32{9}},
			}},
		},
	}
}

func TestWriteAndLookup(t *testing.T) {
	dir := t.TempDir()

	info, err := Write(dir, sampleBucket())
	require.NoError(t, err)
	assert.Equal(t, "a", info.Key)
	assert.Equal(t, filepath.Join(dir, "bucket-a.wdx"), info.Path)
	assert.Equal(t, 3, info.Words)

	st, err := os.Stat(info.Path)
	require.NoError(t, err)
	assert.Equal(t, info.Bytes, st.Size())

	r, err := Open(info.Path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 3, r.Words())
	assert.Equal(t, []string{"ant", "apple", "axe"}, r.AllWords())

	postings, found, err := r.Lookup("apple")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, postings, 2)
	assert.Equal(t, uint32(1), postings[0].DocID)
	assert.Equal(t, []uint32{3}, postings[0].Positions)
	assert.Equal(t, uint32(4), postings[1].DocID)
	assert.Equal(t, []uint32{0, 1, 2}, postings[1].Positions)

	_, found, err = r.Lookup("banana")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestWriteEmptyBucket(t *testing.T) {
	dir := t.TempDir()

	info, err := Write(dir, index.Bucket{Key: "q"})
	require.NoError(t, err)

	r, err := Open(info.Path)
	require.NoError(t, err)
	defer r.Close()

	assert.Zero(t, r.Words())
	_, found, err := r.Lookup("quince")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestWriteIsDeterministic(t *testing.T) {
	dir := t.TempDir()

	b := sampleBucket()
	info1, err := Write(dir, b)
	require.NoError(t, err)
	first, err := os.ReadFile(info1.Path)
	require.NoError(t, err)

	info2, err := Write(dir, b)
	require.NoError(t, err)
	second, err := os.ReadFile(info2.Path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := Write(dir, sampleBucket())
	require.NoError(t, err)

	ents, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, ents, 1)
	assert.Equal(t, "bucket-a.wdx", ents[0].Name())
}

func TestOpenRejectsCorruption(t *testing.T) {
	dir := t.TempDir()
	info, err := Write(dir, sampleBucket())
	require.NoError(t, err)

	raw, err := os.ReadFile(info.Path)
	require.NoError(t, err)

	t.Run("truncated", func(t *testing.T) {
		path := filepath.Join(dir, "trunc.wdx")
		require.NoError(t, os.WriteFile(path, raw[:len(raw)-10], 0o644))
		_, err := Open(path)
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeBucketWrite, errors.GetCode(err))
	})

	t.Run("flipped dictionary byte", func(t *testing.T) {
		bad := append([]byte(nil), raw...)
		// The dictionary sits just before the fixed-size footer.
		bad[len(bad)-footerSize-3] ^= 0xff
		path := filepath.Join(dir, "flip.wdx")
		require.NoError(t, os.WriteFile(path, bad, 0o644))
		_, err := Open(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checksum")
	})

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte(nil), raw...)
		bad[0] = 0
		path := filepath.Join(dir, "magic.wdx")
		require.NoError(t, os.WriteFile(path, bad, 0o644))
		_, err := Open(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "magic")
	})

	t.Run("wrong version", func(t *testing.T) {
		bad := append([]byte(nil), raw...)
		bad[4] = 99
		path := filepath.Join(dir, "version.wdx")
		require.NoError(t, os.WriteFile(path, bad, 0o644))
		_, err := Open(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "version")
	})
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "bucket-num.wdx", FileName("num"))
	assert.Equal(t, "bucket-k.wdx", FileName("k"))
}
