package store

import (
	"context"
	"errors"
	"io/fs"
	"sync/atomic"
	"syscall"
	"time"

	bolt "go.etcd.io/bbolt"
)

const kvBucket = "kv"

// BoltStore is a KV backed by a single BoltDB bucket.
type BoltStore struct {
	db     *bolt.DB
	closed atomic.Bool
}

// open creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		pathToDB,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseOpen) ||
			errors.Is(err, bolt.ErrTimeout) {
			return nil, errLiftRunning
		}

		return nil, err
	}

	return db, nil
}

// NewBoltStore opens the database at dbPath and prepares its buckets.
func NewBoltStore(dbPath string) (*BoltStore, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err = tx.CreateBucketIfNotExists([]byte(kvBucket))
		if err != nil {
			return err
		}

		return migrate(tx)
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(
	ctx context.Context,
	key string,
) ([]byte, bool, error) {
	if err := s.precheck(ctx, "get", key); err != nil {
		return nil, false, err
	}

	var value []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(kvBucket)).Get([]byte(key))
		if v != nil {
			// values are only valid for the life of the transaction
			value = append([]byte{}, v...)
		}

		return nil
	})
	if err != nil {
		return nil, false, boltErr("get", key, err)
	}

	return value, value != nil, nil
}

func (s *BoltStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.precheck(ctx, "set", key); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(kvBucket)).Put([]byte(key), value)
	})

	return boltErr("set", key, err)
}

func (s *BoltStore) Remove(ctx context.Context, key string) error {
	if err := s.precheck(ctx, "remove", key); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(kvBucket)).Delete([]byte(key))
	})

	return boltErr("remove", key, err)
}

func (s *BoltStore) ListKeys(ctx context.Context) ([]string, error) {
	if err := s.precheck(ctx, "list", "*"); err != nil {
		return nil, err
	}

	var keys []string

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(kvBucket)).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, boltErr("list", "", err)
	}

	return keys, nil
}

func (s *BoltStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	return s.db.Close()
}

func (s *BoltStore) precheck(ctx context.Context, op, key string) error {
	if key != "*" {
		if err := checkKey(op, key); err != nil {
			return err
		}
	} else {
		key = ""
	}

	if s.closed.Load() {
		return &Error{Op: op, Key: key, Kind: KindTransient, Err: errClosed}
	}

	return ctxErr(ctx, op, key)
}

func boltErr(op, key string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, syscall.ENOSPC):
		return wrap(op, key, KindQuota, err)
	case errors.Is(err, bolt.ErrTimeout):
		return wrap(op, key, KindTimeout, err)
	case errors.Is(err, bolt.ErrValueTooLarge), errors.Is(err, bolt.ErrKeyTooLarge):
		return wrap(op, key, KindQuota, err)
	case errors.Is(err, bolt.ErrKeyRequired):
		return wrap(op, key, KindInvalid, err)
	}

	return wrap(op, key, KindTransient, err)
}
