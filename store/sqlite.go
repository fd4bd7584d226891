package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
)`

// SQLiteStore is a KV backed by a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the SQLite database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(1000)&_pragma=journal_mode(WAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	// a single writer avoids SQLITE_BUSY between our own connections
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating kv table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(
	ctx context.Context,
	key string,
) ([]byte, bool, error) {
	if err := checkKey("get", key); err != nil {
		return nil, false, err
	}

	var value []byte

	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).
		Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, sqliteErr(ctx, "get", key, err)
	}

	if value == nil {
		value = []byte{}
	}

	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey("set", key); err != nil {
		return err
	}

	if value == nil {
		value = []byte{}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)

	return sqliteErr(ctx, "set", key, err)
}

func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if err := checkKey("remove", key); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)

	return sqliteErr(ctx, "remove", key, err)
}

func (s *SQLiteStore) ListKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, sqliteErr(ctx, "list", "", err)
	}
	defer rows.Close()

	var keys []string

	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, sqliteErr(ctx, "list", "", err)
		}

		keys = append(keys, k)
	}

	return keys, sqliteErr(ctx, "list", "", rows.Err())
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func sqliteErr(ctx context.Context, op, key string, err error) error {
	if err == nil {
		return nil
	}

	if cerr := ctxErr(ctx, op, key); cerr != nil {
		return cerr
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_FULL:
			return wrap(op, key, KindQuota, err)
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return wrap(op, key, KindTimeout, err)
		case sqlite3.SQLITE_TOOBIG:
			return wrap(op, key, KindQuota, err)
		}
	}

	return wrap(op, key, KindTransient, err)
}
