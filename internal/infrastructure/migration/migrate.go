package migration

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Регистрация драйверов баз данных для миграций
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// Migrator часть migrate.Migrate, нужная для накатывания схемы
type Migrator interface {
	Up() error
	Close() (error, error)
}

// MigrationEngine фабрика мигратора; в тестах подменяется моком
type MigrationEngine func(src source.Driver, databaseURL string) (Migrator, error)

type Migration struct {
	databaseURL string
	engine      MigrationEngine
}

func NewMigration(databaseURL string, engine MigrationEngine) *Migration {
	return &Migration{
		databaseURL: databaseURL,
		engine:      engine,
	}
}

// DefaultEngine мигратор поверх встроенных SQL-файлов
func DefaultEngine(src source.Driver, databaseURL string) (Migrator, error) {
	return migrate.NewWithSourceInstance("iofs", src, databaseURL)
}

// SQLiteURL адрес базы для драйвера миграций sqlite3
func SQLiteURL(path string) string {
	return "sqlite3://" + path
}

// PostgresURL переводит DSN pgx в адрес драйвера миграций pgx5
func PostgresURL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

func dialectDir(databaseURL string) (string, error) {
	switch {
	case strings.HasPrefix(databaseURL, "sqlite3://"):
		return "sqlite", nil
	case strings.HasPrefix(databaseURL, "pgx5://"):
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported migration database url: %q", databaseURL)
	}
}

func (mg *Migration) Up() (err error) {
	dir, err := dialectDir(mg.databaseURL)
	if err != nil {
		return err
	}

	src, err := iofs.New(files, dir)
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}

	m, err := mg.engine(src, mg.databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		serr, dberr := m.Close()
		if serr != nil {
			if err != nil {
				err = fmt.Errorf("%w; migration source error: %v", err, serr)
			} else {
				err = serr
			}
		}
		if dberr != nil {
			if err != nil {
				err = fmt.Errorf("%w; migration database error: %v", err, dberr)
			} else {
				err = dberr
			}
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w; migration up error", err)
	}
	return nil
}
