package repos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/reportcard/core"
	"github.com/trezcool/reportcard/core/backup"
)

// Store gathers every record collection of a KVStore.
type Store struct {
	*Students
	*Comments
	*Settings
	kv core.KVStore
}

var _ backup.Repository = (*Store)(nil)

func NewStore(kv core.KVStore) *Store {
	return &Store{
		Students: NewStudents(kv),
		Comments: NewComments(kv),
		Settings: NewSettings(kv),
		kv:       kv,
	}
}

func (s *Store) Clear(ctx context.Context) error {
	return errors.Wrap(s.kv.Clear(ctx), "clearing store")
}

func (s *Store) Close() error {
	return s.kv.Close()
}
