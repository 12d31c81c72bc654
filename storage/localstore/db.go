package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// collection and slot keys
const (
	keyAccounts   = "accounts"
	keyNRICIndex  = "index:nric"
	keyAttendance = "attendance"
	keyEnrolments = "enrolments"
	keyPrograms   = "programs"
	keyActivity   = "activity"

	keySession         = "session:current"
	keyPendingVerif    = "auth:pending_verification"
	keyRememberedEmail = "auth:remembered_email"
	keyAuthedAccount   = "backend:authed"
)

// DB is a flat key-value store backed by a single JSON file. Values are whole
// collections or single slots; every write rewrites the entire file. It is a
// deliberate trade of throughput for simplicity and fits the data volumes of
// a single campus deployment.
type DB struct {
	mu   sync.RWMutex
	path string
	data map[string]json.RawMessage
}

// Open loads the store at path, creating parent directories as needed. A
// missing file is an empty store, not an error.
func Open(path string) (*DB, error) {
	db := &DB{path: path, data: make(map[string]json.RawMessage)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return db, nil
		}
		return nil, errors.Wrapf(err, "reading store %s", path)
	}
	if len(raw) == 0 {
		return db, nil
	}
	if err = json.Unmarshal(raw, &db.data); err != nil {
		return nil, errors.Wrapf(err, "parsing store %s", path)
	}
	return db, nil
}

// flush persists the whole store. Callers must hold the write lock.
func (db *DB) flush() error {
	raw, err := json.MarshalIndent(db.data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding store")
	}
	if err = os.MkdirAll(filepath.Dir(db.path), 0o755); err != nil {
		return errors.Wrap(err, "creating store dir")
	}
	if err = os.WriteFile(db.path, raw, 0o600); err != nil {
		return errors.Wrapf(err, "writing store %s", db.path)
	}
	return nil
}

// Get decodes the value at key into out and reports whether the key exists.
func (db *DB) Get(key string, out interface{}) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	raw, ok := db.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, errors.Wrapf(err, "decoding %q", key)
	}
	return true, nil
}

// Put replaces the value at key and flushes.
func (db *DB) Put(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %q", key)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	db.data[key] = raw
	return db.flush()
}

// Delete removes key and flushes. Removing an absent key is a no-op.
func (db *DB) Delete(key string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.data[key]; !ok {
		return nil
	}
	delete(db.data, key)
	return db.flush()
}
