package index

import (
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/compact"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/embops"
	"github.com/vmihailenco/msgpack/v5"
)

// DB is a wrapper around badger.DB providing concrete methods for
// storing/retrieving feature vectors and compaction checkpoints.
type DB struct {
	bdb *badger.DB
}

// Close closes the internal Badger database.
// It is necessary to perform the close especially
// in cases of data writing.
// It is possible to call the method on nil instance
// or on an uninitialized DB object, in which case
// it is a NOP.
func (db *DB) Close() error {
	if db != nil && db.bdb != nil {
		return db.bdb.Close()
	}
	return nil
}

func (db *DB) Flush() error {
	return db.bdb.DropAll()
}

func (db *DB) Size() (int64, int64) {
	return db.bdb.Size()
}

func (db *DB) storeFeatures(prefix byte, fv *embops.FeatureVector) error {
	value, err := msgpack.Marshal(fv)
	if err != nil {
		return fmt.Errorf("failed to store feature vector: %w", err)
	}
	err = db.bdb.Update(func(txn *badger.Txn) error {
		return txn.Set(encodeKey(prefix, fv.ID), value)
	})
	if err != nil {
		return fmt.Errorf("failed to store feature vector: %w", err)
	}
	return nil
}

func (db *DB) getFeatures(prefix byte, id string) (*embops.FeatureVector, error) {
	var ans embops.FeatureVector
	err := db.bdb.View(func(txn *badger.Txn) error {
		item, err := txn.Get(encodeKey(prefix, id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &ans)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feature vector %s: %w", id, err)
	}
	return &ans, nil
}

func (db *DB) StoreTraceFeatures(fv *embops.FeatureVector) error {
	return db.storeFeatures(TraceFeatsPrefix, fv)
}

func (db *DB) GetTraceFeatures(traceID string) (*embops.FeatureVector, error) {
	return db.getFeatures(TraceFeatsPrefix, traceID)
}

func (db *DB) StoreGroupFeatures(fv *embops.FeatureVector) error {
	return db.storeFeatures(GroupFeatsPrefix, fv)
}

func (db *DB) GetGroupFeatures(groupID string) (*embops.FeatureVector, error) {
	return db.getFeatures(GroupFeatsPrefix, groupID)
}

// ListGroupFeatures iterates all stored group-level vectors
// in ascending key order.
func (db *DB) ListGroupFeatures() ([]*embops.FeatureVector, error) {
	ans := make([]*embops.FeatureVector, 0, 16)
	err := db.bdb.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{GroupFeatsPrefix}
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var fv embops.FeatureVector
			err := it.Item().Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &fv)
			})
			if err != nil {
				return err
			}
			ans = append(ans, &fv)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list group feature vectors: %w", err)
	}
	return ans, nil
}

// SaveCheckpoint makes DB a compact.CheckpointStore. Only the latest
// record is kept - an exact resume never needs an older one.
func (db *DB) SaveCheckpoint(cp *compact.Checkpoint) error {
	value, err := cp.Marshal()
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	err = db.bdb.Update(func(txn *badger.Txn) error {
		return txn.Set(encodeKey(CheckpointPrefix, "latest"), value)
	})
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint returns the latest stored compaction progress record
// or nil when there is none.
func (db *DB) LoadCheckpoint() (*compact.Checkpoint, error) {
	var ans *compact.Checkpoint
	err := db.bdb.View(func(txn *badger.Txn) error {
		item, err := txn.Get(encodeKey(CheckpointPrefix, "latest"))
		if err == badger.ErrKeyNotFound {
			return nil

		} else if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			cp, err := compact.UnmarshalCheckpoint(val)
			if err != nil {
				return err
			}
			ans = cp
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	return ans, nil
}

func (db *DB) StoreTimestamp(key string, value time.Time) error {
	return db.bdb.Update(func(txn *badger.Txn) error {
		return txn.Set(encodeKey(AuxDataPrefix, key), encodeTime(value))
	})
}

func (db *DB) ReadTimestamp(key string) (time.Time, error) {
	var result time.Time
	err := db.bdb.View(func(txn *badger.Txn) error {
		item, err := txn.Get(encodeKey(AuxDataPrefix, key))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			t, decodeErr := decodeTime(val)
			if decodeErr != nil {
				return decodeErr
			}
			result = t
			return nil
		})
	})

	return result, err
}

func OpenDB(path string) (*DB, error) {
	opts := badger.DefaultOptions(path).
		WithValueLogFileSize(256 << 20). // 256MB value log files
		WithNumMemtables(8).             // More memtables for writes
		WithNumLevelZeroTables(8)

	ans := &DB{}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open features database: %w", err)
	}
	ans.bdb = db
	return ans, nil
}
