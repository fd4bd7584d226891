package store

import (
	"encoding/binary"
	"strings"

	bolt "go.etcd.io/bbolt"
)

const (
	metaBucket    = "meta"
	schemaVersion = 1
)

var schemaKey = []byte("schema_version")

// legacy buckets from builds that stored each key family in its own bucket.
var legacyBuckets = map[string]string{
	"workout_history":  historyPrefix,
	"plans":            plansPrefix,
	"user_preferences": preferencesPrefix,
}

// migrateLegacyBuckets folds per-family buckets into the flat kv bucket,
// turning bucket "workout_history" key "u1" into "workout_history_u1".
func migrateLegacyBuckets(tx *bolt.Tx) error {
	kv := tx.Bucket([]byte(kvBucket))

	for name, prefix := range legacyBuckets {
		bucket := tx.Bucket([]byte(name))
		if bucket == nil {
			continue
		}

		cur := bucket.Cursor()

		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			newKey := string(k)
			if !strings.HasPrefix(newKey, prefix) {
				newKey = prefix + newKey
			}

			// never clobber data already written in the new layout
			if kv.Get([]byte(newKey)) != nil {
				continue
			}

			err := kv.Put([]byte(newKey), append([]byte{}, v...))
			if err != nil {
				return err
			}
		}

		err := tx.DeleteBucket([]byte(name))
		if err != nil {
			return err
		}
	}

	return nil
}

func migrate(tx *bolt.Tx) error {
	meta, err := tx.CreateBucketIfNotExists([]byte(metaBucket))
	if err != nil {
		return err
	}

	var version uint64
	if v := meta.Get(schemaKey); len(v) == 8 {
		version = binary.BigEndian.Uint64(v)
	}

	if version >= schemaVersion {
		return nil
	}

	err = migrateLegacyBuckets(tx)
	if err != nil {
		return err
	}

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, schemaVersion)

	return meta.Put(schemaKey, buf)
}
