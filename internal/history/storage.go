package history

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys. Records are stored under a per-fingerprint key so repeat
// solves of the same position overwrite their prior record; runIndex tracks
// insertion order so ListRecent can return the most recent N without a
// table scan.
const (
	keyPrefixRecord = "record:"
	keyRunIndex     = "run_index"
)

// Mode distinguishes which of the two entry points produced a record.
type Mode int

const (
	ModeEvaluate Mode = iota
	ModeGenerateDatabase
)

// SolveRecord is one logged run of the engine: the position solved, its
// value, and the search effort spent finding it.
type SolveRecord struct {
	Fingerprint uint64        `json:"fingerprint"`
	Mode        Mode          `json:"mode"`
	Eval        int           `json:"eval"`
	Moves       []int         `json:"moves"`
	Nodes       uint64        `json:"nodes"`
	Workers     int           `json:"workers"`
	Elapsed     time.Duration `json:"elapsed"`
	Timestamp   time.Time     `json:"timestamp"`
}

// Store wraps BadgerDB for persistent storage of solve records.
type Store struct {
	db *badger.DB
}

// Open opens (creating if needed) the run-history store at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// OpenDefault opens the store at the platform data directory (see
// GetHistoryDir), creating it if needed.
func OpenDefault() (*Store, error) {
	dir, err := GetHistoryDir()
	if err != nil {
		return nil, err
	}
	return Open(dir)
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record saves rec under its fingerprint, stamping Timestamp with now, and
// appends it to the recency index.
func (s *Store) Record(rec SolveRecord, now time.Time) error {
	rec.Timestamp = now

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(recordKey(rec.Fingerprint), data); err != nil {
			return err
		}
		return appendRunIndex(txn, rec.Fingerprint)
	})
}

// Lookup returns the most recently recorded result for fingerprint, or
// ok=false if the position has never been solved.
func (s *Store) Lookup(fingerprint uint64) (SolveRecord, bool, error) {
	var rec SolveRecord
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(fingerprint))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})

	return rec, found, err
}

// ListRecent returns the records of up to limit of the most recently
// recorded fingerprints, most recent first.
func (s *Store) ListRecent(limit int) ([]SolveRecord, error) {
	var fingerprints []uint64

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyRunIndex))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &fingerprints)
		})
	})
	if err != nil {
		return nil, err
	}

	if limit > len(fingerprints) {
		limit = len(fingerprints)
	}
	recent := fingerprints[len(fingerprints)-limit:]

	records := make([]SolveRecord, 0, limit)
	for i := len(recent) - 1; i >= 0; i-- {
		rec, ok, err := s.Lookup(recent[i])
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func recordKey(fingerprint uint64) []byte {
	key := make([]byte, len(keyPrefixRecord)+8)
	n := copy(key, keyPrefixRecord)
	binary.BigEndian.PutUint64(key[n:], fingerprint)
	return key
}

// appendRunIndex keeps a JSON array of every fingerprint ever recorded, in
// insertion order, so ListRecent need not scan the whole keyspace. Duplicate
// entries are allowed: a fingerprint solved twice appears twice, reflecting
// real run order.
func appendRunIndex(txn *badger.Txn, fingerprint uint64) error {
	var fingerprints []uint64

	item, err := txn.Get([]byte(keyRunIndex))
	if err == nil {
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &fingerprints)
		}); err != nil {
			return err
		}
	} else if err != badger.ErrKeyNotFound {
		return err
	}

	fingerprints = append(fingerprints, fingerprint)

	data, err := json.Marshal(fingerprints)
	if err != nil {
		return err
	}
	return txn.Set([]byte(keyRunIndex), data)
}
