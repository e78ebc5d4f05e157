// Package corpus enumerates the documents fed into the indexing pipeline.
package corpus

import (
	"github.com/Aman-CERP/wordex/internal/errors"
)

// PathInfo is one entry of the underlying directory traversal.
type PathInfo struct {
	Path string
	Size int64
}

// Iterator is the minimal traversal contract the pipeline requires.
// Next returns the next entry, false when the sequence is exhausted,
// or an error when a path cannot be listed.
type Iterator interface {
	Next() (PathInfo, bool, error)
}

// Document is one indexed unit of text. The ID is assigned at enumeration
// time, is monotonically increasing within a run, and is never reused.
type Document struct {
	ID   uint32
	Path string
	Size int64
}

// Source wraps an Iterator and assigns document IDs.
// A Source is good for exactly one run.
type Source struct {
	it   Iterator
	next uint32
}

// NewSource creates a Source over the given traversal.
// IDs start at 1 so that 0 can never collide with a real document.
func NewSource(it Iterator) *Source {
	return &Source{it: it, next: 1}
}

// Next returns the next Document, false at end of sequence.
// An iterator failure is an enumeration error and terminates the
// sequence early.
func (s *Source) Next() (Document, bool, error) {
	info, ok, err := s.it.Next()
	if err != nil {
		return Document{}, false, errors.New(errors.ErrCodeEnumeration,
			"enumerating documents: "+err.Error(), err)
	}
	if !ok {
		return Document{}, false, nil
	}

	doc := Document{
		ID:   s.next,
		Path: info.Path,
		Size: info.Size,
	}
	s.next++
	return doc, true, nil
}

// SliceIterator iterates over a fixed list of entries. Used by tests and
// by callers that already hold the file list.
type SliceIterator struct {
	entries []PathInfo
	pos     int
}

// NewSliceIterator creates an Iterator over the given entries.
func NewSliceIterator(entries []PathInfo) *SliceIterator {
	return &SliceIterator{entries: entries}
}

// Next implements Iterator.
func (s *SliceIterator) Next() (PathInfo, bool, error) {
	if s.pos >= len(s.entries) {
		return PathInfo{}, false, nil
	}
	info := s.entries[s.pos]
	s.pos++
	return info, true, nil
}
