package pg

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

// Migrate aplica, en orden, los archivos *_up.sql de fsys que aún no figuran
// en schema_migrations. Cada archivo corre en su propia transacción.
func Migrate(ctx context.Context, db DB, fsys fs.FS) (int, error) {
	log := logger.From(ctx).With(logger.Component("pg.migrate"))

	const ensure = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := db.Exec(ctx, ensure); err != nil {
		return 0, fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied := map[string]bool{}
	rows, err := db.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return 0, fmt.Errorf("query applied migrations: %w", err)
	}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return 0, err
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return 0, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), "_up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	var n int
	for _, version := range files {
		if applied[version] {
			continue
		}
		b, err := fs.ReadFile(fsys, version)
		if err != nil {
			return n, err
		}

		tx, err := db.Begin(ctx)
		if err != nil {
			return n, fmt.Errorf("begin tx: %w", err)
		}
		if _, err := tx.Exec(ctx, string(b)); err != nil {
			_ = tx.Rollback(ctx)
			return n, fmt.Errorf("exec %s: %w", version, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			_ = tx.Rollback(ctx)
			return n, fmt.Errorf("record version %s: %w", version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return n, fmt.Errorf("commit tx: %w", err)
		}
		log.Info("migration applied", logger.String("version", version))
		n++
	}
	return n, nil
}
