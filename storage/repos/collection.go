package repos

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/reportcard/core"
)

// Keys of the stored collections.
const (
	StudentsKey = "students"
	CommentsKey = "comments"
	SettingsKey = "settings"
)

// collection is a JSON encoded list of records stored under a single key.
// Writers must hold mu for the whole read-modify-write.
type collection[T any] struct {
	kv  core.KVStore
	key string
	mu  sync.Mutex
}

func (c *collection[T]) load(ctx context.Context) ([]T, error) {
	data, err := c.kv.Get(ctx, c.key)
	if err != nil {
		if errors.Cause(err) == core.ErrKeyNotFound {
			return []T{}, nil
		}
		return nil, errors.Wrapf(err, "loading %s", c.key)
	}
	items := make([]T, 0)
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", c.key)
	}
	return items, nil
}

func (c *collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", c.key)
	}
	return errors.Wrapf(c.kv.Set(ctx, c.key, data), "saving %s", c.key)
}

// modify runs fn on the stored items and saves the result.
func (c *collection[T]) modify(ctx context.Context, fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	if items, err = fn(items); err != nil {
		return err
	}
	return c.save(ctx, items)
}

func (c *collection[T]) all(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

func (c *collection[T]) replace(ctx context.Context, items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx, items)
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
