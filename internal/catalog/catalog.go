// Package catalog persists run history in a SQLite database next to the
// bucket files. The catalog is how doc IDs in postings resolve back to
// paths after the run that assigned them has finished.
package catalog

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/Aman-CERP/wordex/internal/errors"
	"github.com/Aman-CERP/wordex/internal/pipeline"
)

// FileName is the catalog database file under the output directory.
const FileName = "catalog.db"

// Run is one recorded index run.
type Run struct {
	ID        int64
	State     string
	Documents int
	Skipped   int
	Words     int
	Buckets   int
	WordCount uint64
	Duration  time.Duration
	CreatedAt time.Time
}

// Catalog is the SQLite-backed run history.
type Catalog struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalog under dir.
func Open(dir string) (*Catalog, error) {
	path := filepath.Join(dir, FileName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.New(errors.ErrCodeCatalog,
			fmt.Sprintf("opening catalog %s: %v", path, err), err)
	}
	// The catalog has exactly one writer (the CLI process holds the
	// output lock), so a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	c := &Catalog{db: db}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close releases the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		state TEXT NOT NULL,
		documents INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		words INTEGER NOT NULL,
		buckets INTEGER NOT NULL,
		word_count INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS documents (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		doc_id INTEGER NOT NULL,
		path TEXT NOT NULL,
		word_count INTEGER NOT NULL,
		PRIMARY KEY (run_id, doc_id)
	);

	CREATE TABLE IF NOT EXISTS skips (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		doc_id INTEGER NOT NULL,
		path TEXT NOT NULL,
		code TEXT NOT NULL,
		reason TEXT NOT NULL,
		PRIMARY KEY (run_id, doc_id)
	);

	CREATE TABLE IF NOT EXISTS buckets (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		key TEXT NOT NULL,
		path TEXT NOT NULL,
		words INTEGER NOT NULL,
		bytes INTEGER NOT NULL,
		PRIMARY KEY (run_id, key)
	);
	`
	if _, err := c.db.Exec(schema); err != nil {
		return errors.New(errors.ErrCodeCatalog,
			fmt.Sprintf("creating catalog schema: %v", err), err)
	}
	return nil
}

// RecordRun stores one run and its documents, skips and buckets in a
// single transaction.
func (c *Catalog) RecordRun(res *pipeline.Result) (int64, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return 0, errors.New(errors.ErrCodeCatalog, fmt.Sprintf("begin transaction: %v", err), err)
	}
	defer func() { _ = tx.Rollback() }()

	r, err := tx.Exec(`
		INSERT INTO runs (state, documents, skipped, words, buckets, word_count, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, res.State.String(), len(res.Indexed), len(res.Skipped), res.Words(),
		len(res.Buckets), res.WordCount, res.Duration.Milliseconds())
	if err != nil {
		return 0, errors.New(errors.ErrCodeCatalog, fmt.Sprintf("insert run: %v", err), err)
	}
	runID, err := r.LastInsertId()
	if err != nil {
		return 0, errors.New(errors.ErrCodeCatalog, fmt.Sprintf("run id: %v", err), err)
	}

	docStmt, err := tx.Prepare(`INSERT INTO documents (run_id, doc_id, path, word_count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, errors.New(errors.ErrCodeCatalog, fmt.Sprintf("prepare documents: %v", err), err)
	}
	defer docStmt.Close()
	for _, d := range res.Indexed {
		if _, err := docStmt.Exec(runID, d.ID, d.Path, d.WordCount); err != nil {
			return 0, errors.New(errors.ErrCodeCatalog, fmt.Sprintf("insert document: %v", err), err)
		}
	}

	skipStmt, err := tx.Prepare(`INSERT INTO skips (run_id, doc_id, path, code, reason) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, errors.New(errors.ErrCodeCatalog, fmt.Sprintf("prepare skips: %v", err), err)
	}
	defer skipStmt.Close()
	for _, s := range res.Skipped {
		if _, err := skipStmt.Exec(runID, s.DocID, s.Path, s.Code, s.Reason); err != nil {
			return 0, errors.New(errors.ErrCodeCatalog, fmt.Sprintf("insert skip: %v", err), err)
		}
	}

	bucketStmt, err := tx.Prepare(`INSERT INTO buckets (run_id, key, path, words, bytes) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, errors.New(errors.ErrCodeCatalog, fmt.Sprintf("prepare buckets: %v", err), err)
	}
	defer bucketStmt.Close()
	for _, b := range res.Buckets {
		if _, err := bucketStmt.Exec(runID, b.Key, b.Path, b.Words, b.Bytes); err != nil {
			return 0, errors.New(errors.ErrCodeCatalog, fmt.Sprintf("insert bucket: %v", err), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.New(errors.ErrCodeCatalog, fmt.Sprintf("commit run: %v", err), err)
	}
	return runID, nil
}

// LatestRun returns the most recent run, or found=false when the catalog
// is empty.
func (c *Catalog) LatestRun() (Run, bool, error) {
	var run Run
	var durationMs int64
	err := c.db.QueryRow(`
		SELECT id, state, documents, skipped, words, buckets, word_count, duration_ms, created_at
		FROM runs ORDER BY id DESC LIMIT 1
	`).Scan(&run.ID, &run.State, &run.Documents, &run.Skipped, &run.Words,
		&run.Buckets, &run.WordCount, &durationMs, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, errors.New(errors.ErrCodeCatalog, fmt.Sprintf("latest run: %v", err), err)
	}
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return run, true, nil
}

// DocPath resolves a document ID from the given run back to its path.
func (c *Catalog) DocPath(runID int64, docID uint32) (string, bool, error) {
	var path string
	err := c.db.QueryRow(`
		SELECT path FROM documents WHERE run_id = ? AND doc_id = ?
	`, runID, docID).Scan(&path)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.New(errors.ErrCodeCatalog, fmt.Sprintf("doc path: %v", err), err)
	}
	return path, true, nil
}

// Skips returns the skip records of one run in doc ID order.
func (c *Catalog) Skips(runID int64) ([]pipeline.Skip, error) {
	rows, err := c.db.Query(`
		SELECT doc_id, path, code, reason FROM skips WHERE run_id = ? ORDER BY doc_id
	`, runID)
	if err != nil {
		return nil, errors.New(errors.ErrCodeCatalog, fmt.Sprintf("query skips: %v", err), err)
	}
	defer rows.Close()

	var skips []pipeline.Skip
	for rows.Next() {
		var s pipeline.Skip
		if err := rows.Scan(&s.DocID, &s.Path, &s.Code, &s.Reason); err != nil {
			return nil, errors.New(errors.ErrCodeCatalog, fmt.Sprintf("scan skip: %v", err), err)
		}
		skips = append(skips, s)
	}
	return skips, rows.Err()
}

// Buckets returns the bucket records of one run in key order.
func (c *Catalog) Buckets(runID int64) ([]BucketRecord, error) {
	rows, err := c.db.Query(`
		SELECT key, path, words, bytes FROM buckets WHERE run_id = ? ORDER BY key
	`, runID)
	if err != nil {
		return nil, errors.New(errors.ErrCodeCatalog, fmt.Sprintf("query buckets: %v", err), err)
	}
	defer rows.Close()

	var buckets []BucketRecord
	for rows.Next() {
		var b BucketRecord
		if err := rows.Scan(&b.Key, &b.Path, &b.Words, &b.Bytes); err != nil {
			return nil, errors.New(errors.ErrCodeCatalog, fmt.Sprintf("scan bucket: %v", err), err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// BucketRecord is one bucket row from the catalog.
type BucketRecord struct {
	Key   string
	Path  string
	Words int
	Bytes int64
}
