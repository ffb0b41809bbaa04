package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-content-blocks/internal/logging"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var ErrMigrationsUnsupportedDialect = errors.New("di: no migrations for database dialect")

func (c *Container) configureStorage() error {
	if c.bunDB == nil {
		if strings.ToLower(strings.TrimSpace(c.Config.Storage.Provider)) != "bun" {
			return nil
		}
		db, err := openBunDB(c.Config.Storage.Driver, c.Config.Storage.DSN)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}

	if !c.Config.Storage.AutoMigrate || c.migrations == nil {
		return nil
	}
	applied, err := ApplyMigrations(context.Background(), c.bunDB, c.migrations)
	if err != nil {
		c.Close()
		return err
	}
	logging.WithFields(logging.BlocksLogger(c.loggerProvider), map[string]any{
		"dialect": c.bunDB.Dialect().Name().String(),
		"files":   applied,
	}).Info("storage.migrations.applied")
	return nil
}

func openBunDB(driver, dsn string) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("di: open sqlite: %w", err)
		}
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		db.SetMaxOpenConns(1)
		return db, nil
	case "postgres", "pg":
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("di: open postgres: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("di: unsupported storage driver %q", driver)
	}
}

// ApplyMigrations executes the "*.up.sql" files found under the directory
// named after the database dialect ("sqlite" or "postgres") in lexical
// order. Statements are separated by semicolons and must be idempotent.
func ApplyMigrations(ctx context.Context, db *bun.DB, fsys fs.FS) ([]string, error) {
	dir, err := migrationDir(db.Dialect().Name())
	if err != nil {
		return nil, err
	}
	files, err := fs.Glob(fsys, path.Join(dir, "*.up.sql"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	for _, file := range files {
		raw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, err
		}
		for _, stmt := range strings.Split(string(raw), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return nil, fmt.Errorf("di: migration %s: %w", file, err)
			}
		}
	}
	return files, nil
}

func migrationDir(name dialect.Name) (string, error) {
	switch name {
	case dialect.SQLite:
		return "sqlite", nil
	case dialect.PG:
		return "postgres", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrMigrationsUnsupportedDialect, name.String())
	}
}
