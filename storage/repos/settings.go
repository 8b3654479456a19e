package repos

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/reportcard/core"
	"github.com/trezcool/reportcard/core/settings"
)

type Settings struct {
	kv core.KVStore
	mu sync.Mutex
}

var _ settings.Repository = (*Settings)(nil)

func NewSettings(kv core.KVStore) *Settings {
	return &Settings{kv: kv}
}

func (repo *Settings) GetSettings(ctx context.Context) (settings.Settings, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.load(ctx)
}

func (repo *Settings) SaveSettings(ctx context.Context, s settings.Settings) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.save(ctx, s)
}

// ModifySettings applies fn to the stored settings and saves them, holding the lock throughout.
func (repo *Settings) ModifySettings(ctx context.Context, fn func(s *settings.Settings) error) (settings.Settings, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	s, err := repo.load(ctx)
	if err != nil {
		return s, err
	}
	if err := fn(&s); err != nil {
		return settings.Settings{}, err
	}
	if err := repo.save(ctx, s); err != nil {
		return settings.Settings{}, err
	}
	return s, nil
}

func (repo *Settings) load(ctx context.Context) (settings.Settings, error) {
	s := settings.Default()
	data, err := repo.kv.Get(ctx, SettingsKey)
	if err != nil {
		if errors.Cause(err) == core.ErrKeyNotFound {
			return s, nil
		}
		return s, errors.Wrap(err, "loading settings")
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return settings.Default(), errors.Wrap(err, "decoding settings")
	}
	return s, nil
}

func (repo *Settings) save(ctx context.Context, s settings.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encoding settings")
	}
	return errors.Wrap(repo.kv.Set(ctx, SettingsKey, data), "saving settings")
}
