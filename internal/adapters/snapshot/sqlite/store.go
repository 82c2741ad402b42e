// Package sqlite persists a store.Value as a full snapshot in a
// single SQLite database, one row per (type, bucket) pair holding the
// encoded records as a JSON blob. It mirrors the teacher's
// snapshot-after-every-transaction approach but generalizes the fixed
// bucket list into whatever entity types the caller's registry
// declares.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"dohmane/internal/adapters/snapshot/wire"
	"dohmane/pkg/store"
)

// Store snapshots a store.Value to a SQLite file on every Save call.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

var bucketNames = [...]string{"initial", "current", "deleted"}

// Open creates or reopens the SQLite database at path, creating the
// snapshot tables if absent.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "dohmane.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS dohmane_state (
		type_name TEXT NOT NULL,
		bucket TEXT NOT NULL,
		payload BLOB NOT NULL,
		PRIMARY KEY(type_name, bucket)
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS dohmane_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create meta table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the configured database file path.
func (s *Store) Path() string { return s.path }

// Save replaces the full snapshot in a single transaction.
func (s *Store) Save(ctx context.Context, v store.Value) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM dohmane_state`); err != nil {
		retErr = fmt.Errorf("clear state: %w", err)
		return retErr
	}

	byBucket := map[string]map[string]map[store.Key]store.Record{
		"initial": v.Initial,
		"current": v.Current,
		"deleted": v.Deleted,
	}
	for _, bucketName := range bucketNames {
		for typeName, records := range byBucket[bucketName] {
			data, err := wire.MarshalRecords(records)
			if err != nil {
				retErr = fmt.Errorf("encode %s/%s: %w", typeName, bucketName, err)
				return retErr
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO dohmane_state(type_name,bucket,payload) VALUES(?,?,?)`,
				typeName, bucketName, data); err != nil {
				retErr = fmt.Errorf("insert %s/%s: %w", typeName, bucketName, err)
				return retErr
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO dohmane_meta(key,value) VALUES('next_key',?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		fmt.Sprint(v.NextKey)); err != nil {
		retErr = fmt.Errorf("write next_key: %w", err)
		return retErr
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load reads back the most recently saved snapshot. An empty database
// yields store.New().
func (s *Store) Load(ctx context.Context) (store.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := store.New()
	rows, err := s.db.QueryContext(ctx, `SELECT type_name, bucket, payload FROM dohmane_state`)
	if err != nil {
		return store.Value{}, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var typeName, bucketName string
		var payload []byte
		if err := rows.Scan(&typeName, &bucketName, &payload); err != nil {
			return store.Value{}, fmt.Errorf("scan: %w", err)
		}
		records, err := wire.UnmarshalRecords(payload)
		if err != nil {
			return store.Value{}, fmt.Errorf("decode %s/%s: %w", typeName, bucketName, err)
		}
		switch bucketName {
		case "initial":
			v.Initial[typeName] = records
		case "current":
			v.Current[typeName] = records
		case "deleted":
			v.Deleted[typeName] = records
		}
	}
	if err := rows.Err(); err != nil {
		return store.Value{}, fmt.Errorf("iterate state: %w", err)
	}

	var nextKeyStr string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM dohmane_meta WHERE key='next_key'`).Scan(&nextKeyStr)
	switch {
	case err == sql.ErrNoRows:
		v.NextKey = -1
	case err != nil:
		return store.Value{}, fmt.Errorf("select next_key: %w", err)
	default:
		if _, err := fmt.Sscan(nextKeyStr, &v.NextKey); err != nil {
			return store.Value{}, fmt.Errorf("parse next_key %q: %w", nextKeyStr, err)
		}
	}
	return v, nil
}
