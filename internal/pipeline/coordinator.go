package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/wordex/internal/bucket"
	"github.com/Aman-CERP/wordex/internal/corpus"
	"github.com/Aman-CERP/wordex/internal/errors"
	"github.com/Aman-CERP/wordex/internal/index"
	"github.com/Aman-CERP/wordex/internal/tokenizer"
	"github.com/Aman-CERP/wordex/internal/ui"
)

// Config configures one run.
type Config struct {
	// Workers is the tokenizer pool size. Defaults to NumCPU.
	Workers int

	// QueueDepth bounds the document and fragment channels. Defaults to 64.
	QueueDepth int

	// OutputDir is where bucket files are published.
	OutputDir string

	// Rule is the tokenization rule applied to every document.
	Rule tokenizer.Rule

	// MaxFileSize skips documents larger than this many bytes (0 = no limit).
	MaxFileSize int64

	// FlushRetries is the retry count for a failed bucket write.
	FlushRetries int

	// Deadline aborts the run after this duration (0 = no deadline).
	Deadline time.Duration

	// FatalKinds escalates the named skippable document error kinds to fatal.
	FatalKinds map[string]struct{}

	// Renderer receives progress and error events. Optional.
	Renderer ui.Renderer

	// Logger receives structured run events. Defaults to slog.Default().
	Logger *slog.Logger
}

// Coordinator drives one run through the state machine. A Coordinator is
// good for exactly one Run call.
type Coordinator struct {
	cfg     Config
	log     *slog.Logger
	state   atomic.Int32
	failure atomic.Pointer[failure]

	skipMu  sync.Mutex
	skipped []Skip
}

// NewCoordinator creates a Coordinator with defaults applied.
func NewCoordinator(cfg Config) *Coordinator {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = 64
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{cfg: cfg, log: log}
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Run executes the pipeline over src and blocks until every bucket is
// flushed or a fatal error aborts the run. On failure the returned Result
// still lists the buckets published before the error.
func (c *Coordinator) Run(ctx context.Context, src *corpus.Source) (*Result, error) {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return nil, errors.New(errors.ErrCodeInternal,
			fmt.Sprintf("coordinator already used (state %s)", c.State()), nil)
	}

	start := time.Now()

	var cancel context.CancelFunc
	runCtx := ctx
	if c.cfg.Deadline > 0 {
		runCtx, cancel = context.WithTimeout(ctx, c.cfg.Deadline)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	// First fatal error wins; everyone else observes the cancellation.
	fail := func(f *failure) {
		if c.failure.CompareAndSwap(nil, f) {
			c.log.Error("run_failed",
				slog.String("stage", f.stage),
				slog.String("doc", f.doc),
				slog.String("bucket", f.bucket),
				slog.String("error", f.err.Error()))
			cancel()
		}
	}

	c.log.Info("pipeline_started",
		slog.Int("workers", c.cfg.Workers),
		slog.Int("queue_depth", c.cfg.QueueDepth),
		slog.String("output_dir", c.cfg.OutputDir))

	docs := make(chan corpus.Document, c.cfg.QueueDepth)
	frags := make(chan *index.Fragment, c.cfg.QueueDepth)

	// Feeder: enumerate documents until the source is exhausted.
	go func() {
		defer close(docs)
		scanned := 0
		for {
			doc, ok, err := src.Next()
			if err != nil {
				fail(&failure{err: err, stage: "enumerate"})
				return
			}
			if !ok {
				c.state.CompareAndSwap(int32(StateRunning), int32(StateDraining))
				c.log.Debug("enumeration_complete", slog.Int("documents", scanned))
				return
			}
			scanned++
			c.progress(ui.ProgressEvent{Stage: ui.StageScanning, Current: scanned, CurrentFile: doc.Path})
			select {
			case docs <- doc:
			case <-runCtx.Done():
				return
			}
		}
	}()

	// Tokenizer pool.
	g, gctx := errgroup.WithContext(runCtx)
	for i := 0; i < c.cfg.Workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case doc, ok := <-docs:
					if !ok {
						return nil
					}
					frag, err := c.processDoc(doc)
					if err != nil {
						if errors.IsSkippable(err) {
							c.recordSkip(doc, err)
							continue
						}
						fail(&failure{err: err, stage: "tokenize", doc: doc.Path})
						return err
					}
					select {
					case frags <- frag:
					case <-gctx.Done():
						return nil
					}
				}
			}
		})
	}
	go func() {
		_ = g.Wait()
		close(frags)
	}()

	// Merger: this goroutine exclusively owns the merged index.
	merged := index.NewMerged()
	var indexed []DocRef
	for frag := range frags {
		if c.failure.Load() != nil {
			continue
		}
		if err := merged.Fold(frag); err != nil {
			fail(&failure{err: err, stage: "merge", doc: frag.Path})
			continue
		}
		indexed = append(indexed, DocRef{ID: frag.DocID, Path: frag.Path, WordCount: frag.WordCount})
		c.progress(ui.ProgressEvent{Stage: ui.StageTokenizing, Current: len(indexed), CurrentFile: frag.Path})
	}

	if c.failure.Load() == nil {
		switch runCtx.Err() {
		case context.DeadlineExceeded:
			fail(&failure{
				err:   errors.New(errors.ErrCodeDeadline, fmt.Sprintf("run exceeded deadline %s", c.cfg.Deadline), runCtx.Err()),
				stage: "deadline",
			})
		case context.Canceled:
			fail(&failure{err: runCtx.Err(), stage: "cancelled"})
		}
	}

	// Flush: buckets close only after the full drain, so every bucket sees
	// every document's postings.
	var written []bucket.Info
	if c.failure.Load() == nil {
		entries, err := merged.Entries()
		if err != nil {
			fail(&failure{err: err, stage: "merge"})
		} else {
			written = c.flush(runCtx, entries, fail)
		}
	}

	sort.Slice(indexed, func(i, j int) bool { return indexed[i].ID < indexed[j].ID })

	res := &Result{
		Indexed:   indexed,
		Skipped:   c.takeSkips(),
		Buckets:   written,
		WordCount: merged.WordCount(),
		Duration:  time.Since(start),
	}

	if f := c.failure.Load(); f != nil {
		c.state.Store(int32(StateFailed))
		res.State = StateFailed
		c.notifyError(ui.ErrorEvent{File: f.doc, Err: f.err})
		return res, f.err
	}

	c.state.Store(int32(StateCompleted))
	res.State = StateCompleted
	c.log.Info("run_completed",
		slog.Int("documents", len(res.Indexed)),
		slog.Int("skipped", len(res.Skipped)),
		slog.Int("words", res.Words()),
		slog.Int("buckets", len(res.Buckets)),
		slog.Int64("duration_ms", res.Duration.Milliseconds()))
	return res, nil
}

// flush partitions the merged entries and publishes each bucket with retry.
func (c *Coordinator) flush(ctx context.Context, entries []index.Entry, fail func(*failure)) []bucket.Info {
	buckets := index.Partition(entries)

	retryCfg := errors.DefaultRetryConfig()
	retryCfg.MaxRetries = c.cfg.FlushRetries

	var written []bucket.Info
	for i, b := range buckets {
		c.progress(ui.ProgressEvent{
			Stage:   ui.StageFlushing,
			Current: i + 1,
			Total:   len(buckets),
			Message: bucket.FileName(b.Key),
		})

		var info bucket.Info
		err := errors.Retry(ctx, retryCfg, func() error {
			var werr error
			info, werr = c.write(b)
			return werr
		})
		if err != nil {
			fail(&failure{
				err:    errors.New(errors.ErrCodeBucketWrite, fmt.Sprintf("flushing bucket %s: %v", b.Key, err), err),
				stage:  "flush",
				bucket: b.Key,
			})
			break
		}

		written = append(written, info)
		c.log.Info("bucket_flushed",
			slog.String("bucket", info.Key),
			slog.Int("words", info.Words),
			slog.Int64("bytes", info.Bytes))
	}
	return written
}

// write publishes one bucket. Split out so tests can inject flush failures.
var writeBucket = bucket.Write

func (c *Coordinator) write(b index.Bucket) (bucket.Info, error) {
	return writeBucket(c.cfg.OutputDir, b)
}

func (c *Coordinator) recordSkip(doc corpus.Document, err error) {
	skip := Skip{
		DocID:  doc.ID,
		Path:   doc.Path,
		Code:   errors.GetCode(err),
		Reason: err.Error(),
	}
	c.skipMu.Lock()
	c.skipped = append(c.skipped, skip)
	c.skipMu.Unlock()

	c.log.Warn("document_skipped",
		slog.Uint64("doc_id", uint64(doc.ID)),
		slog.String("path", doc.Path),
		slog.String("code", skip.Code))
	c.notifyError(ui.ErrorEvent{File: doc.Path, Err: err, IsWarn: true})
}

func (c *Coordinator) takeSkips() []Skip {
	c.skipMu.Lock()
	defer c.skipMu.Unlock()
	skips := c.skipped
	sort.Slice(skips, func(i, j int) bool { return skips[i].DocID < skips[j].DocID })
	return skips
}

func (c *Coordinator) progress(ev ui.ProgressEvent) {
	if c.cfg.Renderer != nil {
		c.cfg.Renderer.UpdateProgress(ev)
	}
}

func (c *Coordinator) notifyError(ev ui.ErrorEvent) {
	if c.cfg.Renderer != nil {
		c.cfg.Renderer.AddError(ev)
	}
}
