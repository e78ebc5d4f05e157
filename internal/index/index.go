// Package index holds the in-memory index structures: the per-document
// fragment produced by tokenizer workers and the merged index owned by
// the single merger goroutine.
package index

import (
	"fmt"
	"sort"

	"github.com/Aman-CERP/wordex/internal/errors"
	"github.com/Aman-CERP/wordex/internal/tokenizer"
)

// Posting records every occurrence of a word within one document.
// Positions are token offsets from the start of the document, ascending.
type Posting struct {
	DocID     uint32
	Positions []uint32
}

// Entry is one word with its postings, the unit written to bucket files.
// Postings are sorted by DocID with no duplicates.
type Entry struct {
	Word     string
	Postings []Posting
}

// Fragment is the index of a single document. It is built by exactly one
// tokenizer worker and handed to the merger by value over a channel; after
// the hand-off the worker never touches it again.
type Fragment struct {
	DocID     uint32
	Path      string
	WordCount int
	Terms     map[string][]uint32
}

// NewFragment indexes one document's tokens.
func NewFragment(docID uint32, path string, tokens []tokenizer.Token) *Fragment {
	terms := make(map[string][]uint32)
	for _, tok := range tokens {
		terms[tok.Term] = append(terms[tok.Term], tok.Position)
	}
	return &Fragment{
		DocID:     docID,
		Path:      path,
		WordCount: len(tokens),
		Terms:     terms,
	}
}

// Merged accumulates fragments into the full index. It is exclusively
// owned and mutated by the merger goroutine; no lock is needed or taken.
//
// Postings are appended in arrival order and sorted once at Entries time,
// which makes the fold commutative over fragments: the final content is
// independent of the order in which documents finished tokenizing.
type Merged struct {
	words     map[string][]Posting
	docs      map[uint32]string
	wordCount uint64
}

// NewMerged creates an empty merged index.
func NewMerged() *Merged {
	return &Merged{
		words: make(map[string][]Posting),
		docs:  make(map[uint32]string),
	}
}

// Fold merges one fragment. Seeing the same document twice is a merge
// invariant violation (a coordinator bug, not an environmental failure)
// and is fatal.
func (m *Merged) Fold(f *Fragment) error {
	if prev, seen := m.docs[f.DocID]; seen {
		return errors.New(errors.ErrCodeFragmentReplayed,
			fmt.Sprintf("document %d (%s) already folded as %s", f.DocID, f.Path, prev), nil)
	}
	m.docs[f.DocID] = f.Path

	for word, positions := range f.Terms {
		m.words[word] = append(m.words[word], Posting{
			DocID:     f.DocID,
			Positions: positions,
		})
	}
	m.wordCount += uint64(f.WordCount)
	return nil
}

// Docs returns the number of folded documents.
func (m *Merged) Docs() int {
	return len(m.docs)
}

// DocPaths returns the folded documents as id -> path.
func (m *Merged) DocPaths() map[uint32]string {
	return m.docs
}

// Words returns the number of distinct words.
func (m *Merged) Words() int {
	return len(m.words)
}

// WordCount returns the total number of tokens folded.
func (m *Merged) WordCount() uint64 {
	return m.wordCount
}

// Entries returns the index as a word-sorted slice with each word's
// postings sorted by DocID. A duplicate DocID inside one word's postings
// is a merge invariant violation and is fatal.
func (m *Merged) Entries() ([]Entry, error) {
	entries := make([]Entry, 0, len(m.words))
	for word, postings := range m.words {
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].DocID < postings[j].DocID
		})
		for i := 1; i < len(postings); i++ {
			if postings[i].DocID == postings[i-1].DocID {
				return nil, errors.New(errors.ErrCodeDuplicatePosting,
					fmt.Sprintf("word %q has duplicate postings for document %d", word, postings[i].DocID), nil)
			}
		}
		entries = append(entries, Entry{Word: word, Postings: postings})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Word < entries[j].Word
	})
	return entries, nil
}
