package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/trezcool/reportcard/core"
	appfs "github.com/trezcool/reportcard/fs"
)

const migrationsDir = "migrations"

var (
	// ErrNotSQL is returned for storage engines that are not backed by a SQL database.
	ErrNotSQL = errors.New("storage engine is not a SQL database")

	gooseRun     = goose.RunContext
	gooseRunFunc = gooseRun // mockable
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DriverName returns the database/sql driver of a SQL storage engine.
func DriverName(engine string) (string, error) {
	switch engine {
	case core.EnginePostgres:
		return "postgres", nil
	case core.EngineSQLite:
		return "sqlite", nil
	}
	return "", ErrNotSQL
}

func dialect(engine string) string {
	if engine == core.EngineSQLite {
		return "sqlite3"
	}
	return "postgres"
}

func postgresURL(dbName string, admin bool, conf *core.Config) string {
	dbConf := conf.Storage.Database
	user := url.UserPassword(dbConf.User, dbConf.Password)
	if admin && dbConf.AdminUser != "" {
		user = url.UserPassword(dbConf.AdminUser, dbConf.AdminPassword)
	}

	sslMode := "require"
	if dbConf.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     user,
		Host:     dbConf.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open opens and pings the configured SQL database.
func Open(conf *core.Config) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch conf.Storage.Engine {
	case core.EnginePostgres:
		db, err = sql.Open("postgres", postgresURL(conf.Storage.Database.Name, false, conf))
	case core.EngineSQLite:
		path := conf.Storage.Path
		if path == "" {
			path = ":memory:"
		}
		db, err = sql.Open("sqlite", path)
		if err == nil {
			// sqlite allows a single writer; in-memory databases are per connection.
			db.SetMaxOpenConns(1)
		}
	default:
		return nil, ErrNotSQL
	}
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sql.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func createDB(db *sql.DB, name string) error {
	// check if DB exists
	var exists bool
	rows, err := db.Query("SELECT true FROM pg_database WHERE datname = $1", name)
	if err != nil {
		return errors.Wrap(err, "checking DB")
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		if err = rows.Scan(&exists); err != nil {
			return errors.Wrap(err, "checking DB")
		}
	}
	if err = rows.Err(); err != nil {
		return errors.Wrap(err, "checking DB")
	}

	// create DB if not exist
	if !exists {
		if _, err = db.Exec(fmt.Sprintf("CREATE DATABASE %q", name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// CreateIfNotExist creates the postgres database, connecting as the admin user when configured.
// sqlite databases are created on open.
func CreateIfNotExist(conf *core.Config) error {
	if conf.Storage.Engine != core.EnginePostgres {
		return nil
	}

	db, err := sql.Open("postgres", postgresURL("postgres", true, conf))
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	if err = ping(db); err != nil {
		return errors.Wrap(err, "pinging database")
	}
	return createDB(db, conf.Storage.Database.Name)
}

// Migrate runs a goose command (up, down, status, ...) with the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, engine, command string, args ...string) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect(dialect(engine)); err != nil {
		return errors.Wrap(err, "setting migration dialect")
	}
	if err := gooseRunFunc(ctx, command, db, migrationsDir, args...); err != nil {
		return errors.Wrapf(err, "migrating database (%s)", command)
	}
	return nil
}
