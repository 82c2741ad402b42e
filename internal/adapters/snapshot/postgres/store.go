// Package postgres persists a store.Value as a full snapshot in
// Postgres, using the same generic (type_name, bucket, payload) shape
// as the sqlite adapter. It talks to the database through pgx's
// native pool rather than database/sql.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dohmane/internal/adapters/snapshot/wire"
	"dohmane/pkg/store"
)

const defaultDSN = "postgres://localhost/dohmane?sslmode=disable"

var bucketNames = [...]string{"initial", "current", "deleted"}

// Store snapshots a store.Value to Postgres on every Save call.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn (falling back to defaultDSN) and ensures the
// snapshot tables exist.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS dohmane_state (
		type_name TEXT NOT NULL,
		bucket TEXT NOT NULL,
		payload JSONB NOT NULL,
		PRIMARY KEY(type_name, bucket)
	)`); err != nil {
		return fmt.Errorf("create state table: %w", err)
	}
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS dohmane_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() { s.pool.Close() }

// Save replaces the full snapshot in a single transaction.
func (s *Store) Save(ctx context.Context, v store.Value) (retErr error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM dohmane_state`); err != nil {
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
			if _, err := tx.Exec(ctx,
				`INSERT INTO dohmane_state(type_name,bucket,payload) VALUES($1,$2,$3)`,
				typeName, bucketName, data); err != nil {
				retErr = fmt.Errorf("insert %s/%s: %w", typeName, bucketName, err)
				return retErr
			}
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO dohmane_meta(key,value) VALUES('next_key',$1) ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		fmt.Sprint(v.NextKey)); err != nil {
		retErr = fmt.Errorf("write next_key: %w", err)
		return retErr
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load reads back the most recently saved snapshot. An empty database
// yields store.New().
func (s *Store) Load(ctx context.Context) (store.Value, error) {
	v := store.New()

	rows, err := s.pool.Query(ctx, `SELECT type_name, bucket, payload FROM dohmane_state`)
	if err != nil {
		return store.Value{}, fmt.Errorf("select state: %w", err)
	}
	defer rows.Close()

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
	err = s.pool.QueryRow(ctx, `SELECT value FROM dohmane_meta WHERE key='next_key'`).Scan(&nextKeyStr)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
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
