package inmem

import (
	"context"
	"strings"
	"sync"

	"github.com/trezcool/reportcard/core"
)

// Store keeps values in memory. It is lost on exit.
type Store struct {
	prefix string
	mu     *sync.RWMutex
	data   map[string][]byte
}

var _ core.KVStore = (*Store)(nil)

func NewStore(prefix string) *Store {
	return &Store{prefix: prefix, mu: new(sync.RWMutex), data: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[s.prefix+key]
	if !ok {
		return nil, core.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[s.prefix+key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, s.prefix+key)
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.data {
		if strings.HasPrefix(k, s.prefix) {
			delete(s.data, k)
		}
	}
	return nil
}

func (s *Store) Close() error { return nil }

// Shared returns a Store over the same data under another prefix.
func (s *Store) Shared(prefix string) *Store {
	return &Store{prefix: prefix, mu: s.mu, data: s.data}
}
