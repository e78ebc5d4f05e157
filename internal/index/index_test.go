package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/wordex/internal/errors"
	"github.com/Aman-CERP/wordex/internal/tokenizer"
)

func tokens(terms ...string) []tokenizer.Token {
	out := make([]tokenizer.Token, len(terms))
	for i, t := range terms {
		out[i] = tokenizer.Token{Term: t, Position: uint32(i)}
	}
	return out
}

func TestNewFragment(t *testing.T) {
	f := NewFragment(1, "a.txt", tokens("the", "quick", "the"))

	assert.Equal(t, uint32(1), f.DocID)
	assert.Equal(t, 3, f.WordCount)
	assert.Equal(t, []uint32{0, 2}, f.Terms["the"])
	assert.Equal(t, []uint32{1}, f.Terms["quick"])
}

func TestMergedFold(t *testing.T) {
	m := NewMerged()
	require.NoError(t, m.Fold(NewFragment(1, "a.txt", tokens("the", "quick", "fox"))))
	require.NoError(t, m.Fold(NewFragment(2, "b.txt", tokens("the", "lazy", "fox"))))

	assert.Equal(t, 2, m.Docs())
	assert.Equal(t, 4, m.Words())
	assert.Equal(t, uint64(6), m.WordCount())

	entries, err := m.Entries()
	require.NoError(t, err)

	byWord := make(map[string][]Posting)
	for _, e := range entries {
		byWord[e.Word] = e.Postings
	}
	assert.Equal(t, []Posting{{DocID: 1, Positions: []uint32{0}}, {DocID: 2, Positions: []uint32{0}}}, byWord["the"])
	assert.Equal(t, []Posting{{DocID: 1, Positions: []uint32{2}}, {DocID: 2, Positions: []uint32{2}}}, byWord["fox"])
	assert.Equal(t, []Posting{{DocID: 1, Positions: []uint32{1}}}, byWord["quick"])
	assert.Equal(t, []Posting{{DocID: 2, Positions: []uint32{1}}}, byWord["lazy"])
}

func TestMergedFoldOrderIndependent(t *testing.T) {
	frags := []*Fragment{
		NewFragment(1, "a.txt", tokens("alpha", "beta")),
		NewFragment(2, "b.txt", tokens("beta", "gamma")),
		NewFragment(3, "c.txt", tokens("alpha", "gamma")),
	}

	forward := NewMerged()
	for _, f := range frags {
		require.NoError(t, forward.Fold(f))
	}
	reverse := NewMerged()
	for i := len(frags) - 1; i >= 0; i-- {
		require.NoError(t, reverse.Fold(frags[i]))
	}

	fe, err := forward.Entries()
	require.NoError(t, err)
	re, err := reverse.Entries()
	require.NoError(t, err)
	assert.Equal(t, fe, re)
}

func TestMergedFoldReplayedFragment(t *testing.T) {
	m := NewMerged()
	require.NoError(t, m.Fold(NewFragment(7, "a.txt", tokens("one"))))

	err := m.Fold(NewFragment(7, "a.txt", tokens("two")))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFragmentReplayed, errors.GetCode(err))
	assert.True(t, errors.IsFatal(err))
}

func TestEntriesDuplicatePosting(t *testing.T) {
	m := NewMerged()
	// Corrupt the postings list directly; Fold cannot produce this state.
	m.words["word"] = []Posting{
		{DocID: 3, Positions: []uint32{0}},
		{DocID: 3, Positions: []uint32{5}},
	}

	_, err := m.Entries()
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDuplicatePosting, errors.GetCode(err))
}

func TestEntriesSorted(t *testing.T) {
	m := NewMerged()
	require.NoError(t, m.Fold(NewFragment(2, "b.txt", tokens("zebra", "apple"))))
	require.NoError(t, m.Fold(NewFragment(1, "a.txt", tokens("mango", "apple"))))

	entries, err := m.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "apple", entries[0].Word)
	assert.Equal(t, "mango", entries[1].Word)
	assert.Equal(t, "zebra", entries[2].Word)
	// apple's postings sorted by doc id regardless of fold order
	assert.Equal(t, uint32(1), entries[0].Postings[0].DocID)
	assert.Equal(t, uint32(2), entries[0].Postings[1].DocID)
}

func TestBucketKey(t *testing.T) {
	tests := []struct {
		word string
		key  string
	}{
		{"apple", "a"},
		{"zebra", "z"},
		{"42nd", "num"},
		{"7", "num"},
		{"über", "sym"},
		{"日本", "sym"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.key, BucketKey(tt.word), tt.word)
	}
}

func TestPartition(t *testing.T) {
	m := NewMerged()
	require.NoError(t, m.Fold(NewFragment(1, "a.txt", tokens("42", "apple", "ant", "banana", "zebra"))))
	entries, err := m.Entries()
	require.NoError(t, err)

	buckets := Partition(entries)
	require.Len(t, buckets, 4)
	assert.Equal(t, "num", buckets[0].Key)
	assert.Equal(t, "a", buckets[1].Key)
	assert.Equal(t, "b", buckets[2].Key)
	assert.Equal(t, "z", buckets[3].Key)
	assert.Len(t, buckets[1].Entries, 2)

	// Keys are disjoint and contents stay in word order across buckets.
	var last string
	for _, b := range buckets {
		for _, e := range b.Entries {
			assert.Greater(t, e.Word, last)
			last = e.Word
		}
	}
}

func TestPartitionEmpty(t *testing.T) {
	assert.Empty(t, Partition(nil))
}
