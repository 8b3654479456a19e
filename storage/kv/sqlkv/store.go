package sqlkv

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/reportcard/core"
)

// Store persists values in the kv_store table of a SQL database.
type Store struct {
	prefix string
	db     *sqlx.DB
}

var _ core.KVStore = (*Store)(nil)

type row struct {
	Key       string    `db:"store_key"`
	Value     string    `db:"store_value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NowFunc is mocked in tests.
var NowFunc = func() time.Time { return time.Now().UTC() }

// NewStore wraps db. driverName is the name db was opened with.
func NewStore(db *sql.DB, driverName, prefix string) *Store {
	return &Store{prefix: prefix, db: sqlx.NewDb(db, driverName)}
}

// Shared returns a Store over the same table under another prefix.
func (s *Store) Shared(prefix string) *Store {
	return &Store{prefix: prefix, db: s.db}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	q := s.db.Rebind("SELECT store_value FROM kv_store WHERE store_key = ?")
	if err := s.db.GetContext(ctx, &value, q, s.prefix+key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrKeyNotFound
		}
		return nil, errors.Wrapf(err, "getting %s", key)
	}
	return []byte(value), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	r := row{Key: s.prefix + key, Value: string(value), UpdatedAt: NowFunc()}
	q := `INSERT INTO kv_store (store_key, store_value, updated_at)
		VALUES (:store_key, :store_value, :updated_at)
		ON CONFLICT (store_key) DO UPDATE SET store_value = excluded.store_value, updated_at = excluded.updated_at`
	_, err := s.db.NamedExecContext(ctx, q, r)
	return errors.Wrapf(err, "setting %s", key)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	q := s.db.Rebind("DELETE FROM kv_store WHERE store_key = ?")
	_, err := s.db.ExecContext(ctx, q, s.prefix+key)
	return errors.Wrapf(err, "deleting %s", key)
}

func (s *Store) Clear(ctx context.Context) error {
	q := s.db.Rebind(`DELETE FROM kv_store WHERE store_key LIKE ? ESCAPE '\'`)
	_, err := s.db.ExecContext(ctx, q, escapeLike(s.prefix)+"%")
	return errors.Wrap(err, "clearing store")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
