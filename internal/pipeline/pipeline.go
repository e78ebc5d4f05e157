// Package pipeline runs one index build: a feeder enumerates documents,
// a pool of tokenizer workers turns them into fragments, and a single
// merger folds the fragments and flushes the result into bucket files.
//
// Channels between the stages are bounded, so a slow merger backpressures
// the workers and a slow worker pool backpressures enumeration. The first
// fatal error wins: it is recorded once, cancels the run, and every later
// failure is discarded.
package pipeline

import (
	"time"

	"github.com/Aman-CERP/wordex/internal/bucket"
)

// State is the lifecycle state of one run.
type State int32

const (
	// StateIdle means Run has not been called yet.
	StateIdle State = iota
	// StateRunning means documents are being enumerated and tokenized.
	StateRunning
	// StateDraining means the source is exhausted and in-flight
	// fragments are still being folded.
	StateDraining
	// StateCompleted means every bucket was flushed successfully.
	StateCompleted
	// StateFailed means a fatal error aborted the run.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DocRef is one successfully indexed document.
type DocRef struct {
	ID        uint32
	Path      string
	WordCount int
}

// Skip records one document excluded from the run by a skippable error.
type Skip struct {
	DocID  uint32
	Path   string
	Code   string
	Reason string
}

// Result is the outcome of one run. On failure it still carries whatever
// was published before the fatal error: earlier buckets remain valid
// files on disk.
type Result struct {
	State     State
	Indexed   []DocRef
	Skipped   []Skip
	Buckets   []bucket.Info
	WordCount uint64
	Duration  time.Duration
}

// Words returns the number of distinct indexed words.
func (r *Result) Words() int {
	n := 0
	for _, b := range r.Buckets {
		n += b.Words
	}
	return n
}

// failure is the single fatal error cell. Stage is one of enumerate,
// tokenize, merge, flush, deadline, cancelled; doc and bucket attribute
// the failure when known.
type failure struct {
	err    error
	stage  string
	doc    string
	bucket string
}
