// Package journal keeps extraction batches in SQLite database keyed by segment
// number, so long extraction runs can be resumed and failures inspected.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"tocidx/records"
)

// Status of the journaled segment.
type Status string

const (
	StatusDone   Status = "done"
	StatusFailed Status = "failed"
)

const schema = `
CREATE TABLE IF NOT EXISTS batches (
	segment INTEGER PRIMARY KEY,
	source  TEXT NOT NULL DEFAULT '',
	status  TEXT NOT NULL,
	payload BLOB,
	failure TEXT NOT NULL DEFAULT '',
	updated INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
	id      TEXT PRIMARY KEY,
	started INTEGER NOT NULL
);
`

const upsert = `
INSERT INTO batches (segment, source, status, payload, failure, updated)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(segment) DO UPDATE SET
	source = excluded.source,
	status = excluded.status,
	payload = excluded.payload,
	failure = excluded.failure,
	updated = excluded.updated
`

// ErrClosed is returned by operations on closed journal.
var ErrClosed = errors.New("journal is closed")

// Entry describes single journaled segment.
type Entry struct {
	Segment int
	Source  string
	Status  Status
	Failure string
	Updated time.Time
	Batch   records.Batch
}

// Journal is a single connection to journal database. It is not safe for
// concurrent use.
type Journal struct {
	conn *sqlite.Conn
	log  *zap.Logger
	now  func() time.Time
}

// Open opens (creating when necessary) journal database at path.
func Open(path string, log *zap.Logger) (*Journal, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("unable to open journal '%s': %w", path, err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return nil, multierr.Append(fmt.Errorf("unable to prepare journal '%s': %w", path, err), conn.Close())
	}
	log.Debug("Journal opened", zap.String("path", path))
	return &Journal{conn: conn, log: log, now: time.Now}, nil
}

// Close releases database connection.
func (j *Journal) Close() error {
	if j == nil || j.conn == nil {
		return nil
	}
	err := j.conn.Close()
	j.conn = nil
	return err
}

// BeginRun records run identifier, useful when looking at journal later.
func (j *Journal) BeginRun(id string) error {
	if j.conn == nil {
		return ErrClosed
	}
	return sqlitex.Execute(j.conn, `INSERT OR REPLACE INTO runs (id, started) VALUES (?, ?)`,
		&sqlitex.ExecOptions{Args: []any{id, j.now().Unix()}})
}

// Put stores successfully extracted batch for segment, replacing whatever was
// recorded for it before.
func (j *Journal) Put(segment int, source string, b records.Batch) error {
	if j.conn == nil {
		return ErrClosed
	}
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("unable to encode batch for segment %d: %w", segment, err)
	}
	if err := j.store(segment, source, StatusDone, payload, ""); err != nil {
		return err
	}
	j.log.Debug("Batch journaled", zap.Int("segment", segment), zap.String("source", source),
		zap.Int("outline", len(b.Outline)), zap.Int("index", len(b.Index)))
	return nil
}

// Fail records failed segment. Failed segments read back as empty batches.
func (j *Journal) Fail(segment int, source string, cause error) error {
	if j.conn == nil {
		return ErrClosed
	}
	msg := "unknown failure"
	if cause != nil {
		msg = cause.Error()
	}
	if err := j.store(segment, source, StatusFailed, nil, msg); err != nil {
		return err
	}
	j.log.Debug("Batch failure journaled", zap.Int("segment", segment), zap.String("source", source), zap.String("failure", msg))
	return nil
}

func (j *Journal) store(segment int, source string, status Status, payload []byte, failure string) error {
	err := sqlitex.Execute(j.conn, upsert, &sqlitex.ExecOptions{
		Args: []any{segment, source, string(status), payload, failure, j.now().Unix()},
	})
	if err != nil {
		return fmt.Errorf("unable to journal segment %d: %w", segment, err)
	}
	return nil
}

// PutAll stores several batches atomically, segments are numbered starting
// with first.
func (j *Journal) PutAll(first int, sources []string, bs []records.Batch) (err error) {
	if j.conn == nil {
		return ErrClosed
	}
	if len(sources) != len(bs) {
		return fmt.Errorf("mismatched sources (%d) and batches (%d)", len(sources), len(bs))
	}
	defer sqlitex.Save(j.conn)(&err)

	for i := range bs {
		if err = j.Put(first+i, sources[i], bs[i]); err != nil {
			return err
		}
	}
	return nil
}

// Next returns segment number following the last journaled one.
func (j *Journal) Next() (int, error) {
	if j.conn == nil {
		return 0, ErrClosed
	}
	next := 1
	err := sqlitex.Execute(j.conn, `SELECT COALESCE(MAX(segment), 0) + 1 FROM batches`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			next = int(stmt.ColumnInt64(0))
			return nil
		}})
	if err != nil {
		return 0, fmt.Errorf("unable to query journal: %w", err)
	}
	return next, nil
}

// Entries returns every journaled segment in segment order. Payloads which
// cannot be decoded are reported as failures.
func (j *Journal) Entries() ([]Entry, error) {
	if j.conn == nil {
		return nil, ErrClosed
	}
	var entries []Entry
	err := sqlitex.Execute(j.conn, `SELECT segment, source, status, payload, failure, updated FROM batches ORDER BY segment`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			e := Entry{
				Segment: int(stmt.ColumnInt64(0)),
				Source:  stmt.ColumnText(1),
				Status:  Status(stmt.ColumnText(2)),
				Failure: stmt.ColumnText(4),
				Updated: time.Unix(stmt.ColumnInt64(5), 0),
			}
			if e.Status == StatusDone {
				payload := make([]byte, stmt.ColumnLen(3))
				stmt.ColumnBytes(3, payload)
				if err := json.Unmarshal(payload, &e.Batch); err != nil {
					e.Status, e.Failure, e.Batch = StatusFailed, fmt.Sprintf("corrupted payload: %v", err), records.Batch{}
				}
			}
			entries = append(entries, e)
			return nil
		}})
	if err != nil {
		return nil, fmt.Errorf("unable to read journal: %w", err)
	}
	return entries, nil
}

// Batches returns journaled batches in segment order, failed segments become
// empty batches.
func (j *Journal) Batches() ([]records.Batch, error) {
	entries, err := j.Entries()
	if err != nil {
		return nil, err
	}
	bs := make([]records.Batch, 0, len(entries))
	for _, e := range entries {
		if e.Status != StatusDone {
			j.log.Warn("Segment failed, using empty batch", zap.Int("segment", e.Segment),
				zap.String("source", e.Source), zap.String("failure", e.Failure))
		}
		bs = append(bs, e.Batch)
	}
	return bs, nil
}
