// Package sqlite provides a SQLite-backed persistent store that mirrors the
// in-memory semantics while snapshotting state as JSON after every commit.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"trackcore/internal/infra/persistence/memory"
	"trackcore/internal/schema"
	"trackcore/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

// Store persists the in-memory state to a single SQLite table as JSON blobs.
// It snapshots the full state after every successful transaction.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore constructs a snapshotting SQLite-backed persistent store.
func NewStore(path string, hooks *domain.HookSet) (*Store, error) {
	if path == "" {
		path = "trackcore.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	ctx := context.Background()
	if err := applyDDL(ctx, db, schema.SQLite()); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	mem := memory.NewStore(hooks)
	s := &Store{Store: mem, db: db, path: path}
	if err := s.load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func applyDDL(ctx context.Context, db *sql.DB, ddl string) error {
	for _, stmt := range schema.SplitStatements(ddl) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute ddl: %w", err)
		}
	}
	return nil
}

var sqliteBuckets = []string{"members", "projects", "actions", "votes"}

func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	type raw struct {
		bucket  string
		payload []byte
	}
	var raws []raw
	for rows.Next() {
		var r raw
		if err := rows.Scan(&r.bucket, &r.payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		raws = append(raws, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if len(raws) == 0 {
		return nil
	}
	snapshot := memory.Snapshot{}
	for _, r := range raws {
		switch r.bucket {
		case "members":
			if err := json.Unmarshal(r.payload, &snapshot.Members); err != nil {
				return fmt.Errorf("decode members: %w", err)
			}
		case "projects":
			if err := json.Unmarshal(r.payload, &snapshot.Projects); err != nil {
				return fmt.Errorf("decode projects: %w", err)
			}
		case "actions":
			if err := json.Unmarshal(r.payload, &snapshot.Actions); err != nil {
				return fmt.Errorf("decode actions: %w", err)
			}
		case "votes":
			if err := json.Unmarshal(r.payload, &snapshot.Votes); err != nil {
				return fmt.Errorf("decode votes: %w", err)
			}
		}
	}
	s.ImportState(snapshot)
	return nil
}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range sqliteBuckets {
		var data []byte
		switch bucket {
		case "members":
			data, err = json.Marshal(snapshot.Members)
		case "projects":
			data, err = json.Marshal(snapshot.Projects)
		case "actions":
			data, err = json.Marshal(snapshot.Actions)
		case "votes":
			data, err = json.Marshal(snapshot.Votes)
		}
		if err != nil {
			retErr = err
			return retErr
		}
		if _, err = tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	return nil
}

// RunInTransaction applies fn within a transaction, then snapshots state to
// SQLite if the commit succeeded.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) ([]domain.Change, error) {
	changes, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return changes, err
	}
	if pErr := s.persist(); pErr != nil {
		return changes, pErr
	}
	return changes, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }
