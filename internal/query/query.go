// Package query answers word lookups against a published index directory.
package query

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/wordex/internal/bucket"
	"github.com/Aman-CERP/wordex/internal/catalog"
	"github.com/Aman-CERP/wordex/internal/errors"
	"github.com/Aman-CERP/wordex/internal/index"
)

// readerCacheSize bounds the number of bucket files held open. The whole
// key space is 28 buckets, so this only matters for long-lived processes
// querying many indexes.
const readerCacheSize = 8

// Match is one document containing the looked-up word.
type Match struct {
	DocID     uint32
	Path      string
	Positions []uint32
}

// Engine resolves words to documents using the bucket files and the run
// catalog under one output directory.
type Engine struct {
	dir     string
	runID   int64
	cat     *catalog.Catalog
	readers *lru.Cache[string, *bucket.Reader]
}

// NewEngine opens the index under dir at its latest recorded run.
func NewEngine(dir string) (*Engine, error) {
	cat, err := catalog.Open(dir)
	if err != nil {
		return nil, err
	}

	run, found, err := cat.LatestRun()
	if err != nil {
		cat.Close()
		return nil, err
	}
	if !found {
		cat.Close()
		return nil, errors.New(errors.ErrCodeCatalog,
			fmt.Sprintf("no index runs recorded in %s", dir), nil)
	}

	readers, err := lru.NewWithEvict(readerCacheSize, func(_ string, r *bucket.Reader) {
		_ = r.Close()
	})
	if err != nil {
		cat.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err)
	}

	return &Engine{dir: dir, runID: run.ID, cat: cat, readers: readers}, nil
}

// Close releases open bucket readers and the catalog.
func (e *Engine) Close() error {
	e.readers.Purge()
	return e.cat.Close()
}

// RunID returns the catalog run the engine resolves paths against.
func (e *Engine) RunID() int64 {
	return e.runID
}

// Lookup returns every document containing word, in document ID order.
// The word is normalized the same way indexing normalized it.
func (e *Engine) Lookup(word string) ([]Match, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil, nil
	}

	r, ok, err := e.reader(index.BucketKey(word))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	postings, found, err := r.Lookup(word)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	matches := make([]Match, 0, len(postings))
	for _, p := range postings {
		path, known, err := e.cat.DocPath(e.runID, p.DocID)
		if err != nil {
			return nil, err
		}
		if !known {
			path = fmt.Sprintf("doc:%d", p.DocID)
		}
		matches = append(matches, Match{DocID: p.DocID, Path: path, Positions: p.Positions})
	}
	return matches, nil
}

// reader returns the cached bucket reader for key, opening it on first
// use. A bucket file that was never published means no word in that key
// range was indexed.
func (e *Engine) reader(key string) (*bucket.Reader, bool, error) {
	if r, ok := e.readers.Get(key); ok {
		return r, true, nil
	}

	path := filepath.Join(e.dir, bucket.FileName(key))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, false, nil
	}

	r, err := bucket.Open(path)
	if err != nil {
		return nil, false, err
	}
	e.readers.Add(key, r)
	return r, true, nil
}
