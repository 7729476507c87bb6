package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/japaniel/kanjigraph/pkg/entity"
)

const badgerKeyPrefix = "entity/"

// BadgerStore keeps JSON records in a badger database under keys entity/{id}.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a badger database at dir. An empty dir opens an in-memory
// database.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close releases the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func badgerKey(id int64) []byte {
	return []byte(badgerKeyPrefix + strconv.FormatInt(id, 10))
}

// Get implements Store.
func (s *BadgerStore) Get(ctx context.Context, id int64) (entity.Entity, error) {
	if err := ctx.Err(); err != nil {
		return entity.Entity{}, err
	}
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(id))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return entity.Entity{}, fmt.Errorf("entity %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return entity.Entity{}, fmt.Errorf("read entity %d: %w", id, err)
	}
	return entity.Decode(raw)
}

// Put writes records in one transaction batch.
func (s *BadgerStore) Put(entities ...entity.Entity) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, e := range entities {
		raw, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode entity %d: %w", e.ID, err)
		}
		if err := wb.Set(badgerKey(e.ID), raw); err != nil {
			return fmt.Errorf("write entity %d: %w", e.ID, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush entities: %w", err)
	}
	return nil
}

// Count returns the number of records stored.
func (s *BadgerStore) Count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(badgerKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Each calls fn for every stored record in key order.
func (s *BadgerStore) Each(fn func(entity.Entity) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var e entity.Entity
			err := it.Item().Value(func(raw []byte) error {
				var err error
				e, err = entity.Decode(raw)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(e); err != nil {
				return err
			}
		}
		return nil
	})
}
