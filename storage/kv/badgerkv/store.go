package badgerkv

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/reportcard/core"
)

// Store persists values in a badger database.
type Store struct {
	prefix string
	db     *badger.DB
}

var _ core.KVStore = (*Store)(nil)

// Open opens the badger database at path, or an in-memory one when path is empty.
func Open(path, prefix string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "opening badger")
	}
	return &Store{prefix: prefix, db: db}, nil
}

// Shared returns a Store over the same database under another prefix.
func (s *Store) Shared(prefix string) *Store {
	return &Store{prefix: prefix, db: s.db}
}

func (s *Store) key(k string) []byte {
	return []byte(s.prefix + k)
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, core.ErrKeyNotFound
		}
		return nil, errors.Wrapf(err, "getting %s", key)
	}
	return value, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(key), value)
	})
	return errors.Wrapf(err, "setting %s", key)
}

func (s *Store) Delete(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key(key))
	})
	return errors.Wrapf(err, "deleting %s", key)
}

func (s *Store) Clear(_ context.Context) error {
	return errors.Wrap(s.db.DropPrefix([]byte(s.prefix)), "clearing store")
}

func (s *Store) Close() error {
	return s.db.Close()
}
