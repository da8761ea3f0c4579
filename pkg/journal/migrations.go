package journal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

const migrationsLogPrefix = "journal:migrations"

// Migration is one schema step: the .sql file's name plus its statements.
// Carrying the name keeps logs and failures attributable to a file.
type Migration struct {
	Name string
	SQL  string
}

// LoadMigrationFiles collects the .sql files under dir as migrations, ordered
// by file name. Naming migrations NNNN_description.sql makes that order the
// application order.
func LoadMigrationFiles(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to read migration dir %s: %w", migrationsLogPrefix, dir, err)
	}

	var migrations []Migration
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".sql" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s - failed to read %s: %w", migrationsLogPrefix, e.Name(), err)
		}
		migrations = append(migrations, Migration{Name: e.Name(), SQL: string(data)})
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Name < migrations[j].Name })

	slog.Info(fmt.Sprintf("%s - Loaded %d migration files from %s", migrationsLogPrefix, len(migrations), dir))
	return migrations, nil
}

// RunMigrations applies migrations in order. Forward-only: the schema uses
// IF NOT EXISTS statements, so re-running applied migrations is harmless and
// there is no down path.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, migrations []Migration) error {
	for _, m := range migrations {
		slog.Info(fmt.Sprintf("%s - Applying %s", migrationsLogPrefix, m.Name))
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("%s - migration %s failed: %w", migrationsLogPrefix, m.Name, err)
		}
	}
	slog.Info(fmt.Sprintf("%s - Applied %d migrations", migrationsLogPrefix, len(migrations)))
	return nil
}

// MigrationStatus reports whether the journal schema has been applied, by
// checking for the bridge_commands table.
func MigrationStatus(ctx context.Context, pool *pgxpool.Pool, migrationPath string) error {
	var exists bool
	err := pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = 'bridge_commands')`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%s - failed to check schema: %w", migrationsLogPrefix, err)
	}

	migrations, err := LoadMigrationFiles(migrationPath)
	if err != nil {
		return fmt.Errorf("%s - load migration list: %w", migrationsLogPrefix, err)
	}

	if exists {
		fmt.Printf("Migration status: applied (schema present, %d migration files in %s)\n", len(migrations), migrationPath)
	} else {
		fmt.Printf("Migration status: not applied (run 'bridge migrate up'). %d migration files in %s\n", len(migrations), migrationPath)
	}
	return nil
}
