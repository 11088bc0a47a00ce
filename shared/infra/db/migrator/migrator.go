package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

type Migrator struct {
	provider *goose.Provider
}

func NewMigrator(db *sql.DB, migrationsFS fs.FS) (*Migrator, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrationsFS)
	if err != nil {
		return nil, fmt.Errorf("goose.NewProvider: %w", err)
	}

	return &Migrator{provider: provider}, nil
}

// Up applies pending migrations and returns the resulting schema version.
func (m *Migrator) Up(ctx context.Context) (int64, error) {
	if _, err := m.provider.Up(ctx); err != nil {
		return 0, err
	}

	return m.provider.GetDBVersion(ctx)
}
