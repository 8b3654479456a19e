package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/reportcard/core"
	"github.com/trezcool/reportcard/storage/database"
	"github.com/trezcool/reportcard/storage/kv/badgerkv"
	"github.com/trezcool/reportcard/storage/kv/inmem"
	"github.com/trezcool/reportcard/storage/kv/sqlkv"
)

var ErrUnknownEngine = errors.New("unknown storage engine")

// Open returns the KVStore of the configured storage engine.
// SQL databases are created and migrated up when needed.
func Open(conf *core.Config) (core.KVStore, error) {
	prefix := conf.Storage.Prefix
	switch conf.Storage.Engine {
	case core.EngineMemory:
		return inmem.NewStore(prefix), nil
	case core.EngineBadger:
		store, err := badgerkv.Open(conf.Storage.Path, prefix)
		if err != nil {
			return nil, err
		}
		return store, nil
	case core.EnginePostgres, core.EngineSQLite:
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(context.Background(), db, conf.Storage.Engine, "up"); err != nil {
			_ = db.Close()
			return nil, err
		}
		driver, _ := database.DriverName(conf.Storage.Engine)
		return sqlkv.NewStore(db, driver, prefix), nil
	}
	return nil, errors.Wrap(ErrUnknownEngine, conf.Storage.Engine)
}
