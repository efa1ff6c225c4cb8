package database

import (
	"context"
	"database/sql"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	appfs "github.com/Bhaskar-J-Pathak/Acad-AI/fs"
)

// Engines
const (
	Memory   = "memory"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

const migrationsDir = "migrations"

func init() {
	// modernc registers itself as "sqlite"
	sqlx.BindDriver(SQLite, sqlx.QUESTION)
}

var ErrUnknownEngine = errors.New("unknown database engine")

func dataSourceName(conf *core.Config) (string, error) {
	switch conf.Database.Engine {
	case SQLite:
		return conf.Database.Path, nil
	case Postgres:
		sslMode := "require"
		if conf.Database.DisableTLS {
			sslMode = "disable"
		}
		q := make(url.Values)
		q.Set("sslmode", sslMode)
		q.Set("timezone", "utc")

		u := url.URL{
			Scheme:   Postgres,
			User:     url.UserPassword(conf.Database.User, conf.Database.Password),
			Host:     conf.Database.Address(),
			Path:     conf.Database.Name,
			RawQuery: q.Encode(),
		}
		return u.String(), nil
	default:
		return "", errors.Wrap(ErrUnknownEngine, conf.Database.Engine)
	}
}

// Open connects to the configured SQL database and waits until it answers.
func Open(ctx context.Context, conf *core.Config) (*sqlx.DB, error) {
	dsn, err := dataSourceName(conf)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(conf.Database.Engine, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if conf.Database.Engine == SQLite {
		// a single writer avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}
	if err = ping(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, db *sql.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}
	return errors.Wrap(err, "DB ping timeout")
}

func dialect(engine string) string {
	if engine == SQLite {
		return "sqlite3"
	}
	return Postgres
}

func setupGoose(engine string) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect(dialect(engine)); err != nil {
		return errors.Wrap(err, "setting migration dialect")
	}
	return nil
}

// Migrate applies every pending embedded migration.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if err := setupGoose(db.DriverName()); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.DB, migrationsDir); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

// RunMigrations runs a goose command (up, down, status, version, redo, reset...) over the embedded migrations.
func RunMigrations(ctx context.Context, db *sqlx.DB, command string, args ...string) error {
	if err := setupGoose(db.DriverName()); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db.DB, migrationsDir, args...); err != nil {
		return errors.Wrapf(err, "goose %s", command)
	}
	return nil
}
