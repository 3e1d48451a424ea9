package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"docu-assets/pkg/utils"
)

const assetKeyPrefix = "asset:" // Prefix for asset path keys in the index

// BadgerIndex implements AssetIndex on BadgerDB. It is the persisted-index
// seed source for the seen registry: ListPaths replaces a full directory
// walk on trees too large to scan every run.
type BadgerIndex struct {
	db  *badger.DB
	log *logrus.Entry
}

// NewBadgerIndex opens (or creates) the asset index at dir.
func NewBadgerIndex(dir string, logger *logrus.Entry) (*BadgerIndex, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating index directory '%s': %w", utils.ErrFilesystem, dir, err)
	}

	opts := badger.DefaultOptions(dir).
		WithLogger(&badgerLogrusAdapter{logger.WithField("component", "badgerdb")}).
		WithNumVersionsToKeep(1) // Only the latest entry per path matters

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: opening asset index at '%s': %w", utils.ErrDatabase, dir, err)
	}
	logger.WithField("dir", dir).Debug("Asset index opened")
	return &BadgerIndex{db: db, log: logger}, nil
}

const maxConflictRetries = 10

// dbUpdate wraps db.Update with a retry loop for BadgerDB transaction
// conflicts; they resolve in microseconds, so a tight loop is sufficient.
func (i *BadgerIndex) dbUpdate(fn func(txn *badger.Txn) error) error {
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err := i.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("%w: transaction conflict not resolved after %d retries", utils.ErrDatabase, maxConflictRetries)
}

// ListPaths returns every asset path recorded in the index.
func (i *BadgerIndex) ListPaths() ([]string, error) {
	var paths []string
	err := i.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(assetKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			paths = append(paths, string(key[len(assetKeyPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: listing asset index: %w", utils.ErrDatabase, err)
	}
	return paths, nil
}

// Record stores or refreshes the entry for a persisted asset path.
func (i *BadgerIndex) Record(path string, entry *AssetEntry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: marshaling index entry for '%s': %w", utils.ErrDatabase, path, err)
	}
	err = i.dbUpdate(func(txn *badger.Txn) error {
		return txn.Set([]byte(assetKeyPrefix+path), value)
	})
	if err != nil {
		return fmt.Errorf("%w: recording '%s': %w", utils.ErrDatabase, path, err)
	}
	return nil
}

// Get retrieves the entry for a path; found is false when it is unknown.
func (i *BadgerIndex) Get(path string) (entry *AssetEntry, found bool, err error) {
	err = i.db.View(func(txn *badger.Txn) error {
		item, errGet := txn.Get([]byte(assetKeyPrefix + path))
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			return nil
		}
		if errGet != nil {
			return errGet
		}
		return item.Value(func(val []byte) error {
			var e AssetEntry
			if errJSON := json.Unmarshal(val, &e); errJSON != nil {
				return errJSON
			}
			entry = &e
			found = true
			return nil
		})
	})
	if err != nil {
		return nil, false, fmt.Errorf("%w: reading index entry for '%s': %w", utils.ErrDatabase, path, err)
	}
	return entry, found, nil
}

// Forget removes the entry for a swept path. Forgetting an unknown path is
// not an error.
func (i *BadgerIndex) Forget(path string) error {
	err := i.dbUpdate(func(txn *badger.Txn) error {
		return txn.Delete([]byte(assetKeyPrefix + path))
	})
	if err != nil {
		return fmt.Errorf("%w: forgetting '%s': %w", utils.ErrDatabase, path, err)
	}
	return nil
}

// Close cleanly closes the index.
func (i *BadgerIndex) Close() error {
	if i.db == nil {
		return nil
	}
	return i.db.Close()
}

// badgerLogrusAdapter implements badger.Logger on a logrus entry.
type badgerLogrusAdapter struct {
	*logrus.Entry
}

func (l *badgerLogrusAdapter) Errorf(f string, v ...interface{})   { l.Entry.Errorf(f, v...) }
func (l *badgerLogrusAdapter) Warningf(f string, v ...interface{}) { l.Entry.Warningf(f, v...) }
func (l *badgerLogrusAdapter) Infof(f string, v ...interface{})    { l.Entry.Debugf(f, v...) }
func (l *badgerLogrusAdapter) Debugf(f string, v ...interface{})   { l.Entry.Debugf(f, v...) }
