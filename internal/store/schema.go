package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed schema/*.sql
var schemaFiles embed.FS

// Execer is the subset of pgx used to apply schema statements.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ApplySchema creates the title tables and indexes if they do not exist yet.
// Files are applied in lexical order; every statement is idempotent.
func ApplySchema(ctx context.Context, db Execer) error {
	paths, err := fs.Glob(schemaFiles, "schema/*.sql")
	if err != nil {
		return fmt.Errorf("list schema files: %w", err)
	}
	sort.Strings(paths)
	for _, path := range paths {
		payload, err := schemaFiles.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read schema %s: %w", path, err)
		}
		if _, err := db.Exec(ctx, string(payload)); err != nil {
			return fmt.Errorf("apply schema %s: %w", path, err)
		}
	}
	return nil
}

// EnsureSchema bootstraps the schema on the store's pool.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := ApplySchema(ctx, s.pool); err != nil {
		return err
	}
	s.logger.Info("store: schema ready")
	return nil
}

// SchemaFiles lists the embedded schema files in application order.
func SchemaFiles() []string {
	paths, _ := fs.Glob(schemaFiles, "schema/*.sql")
	sort.Strings(paths)
	return paths
}
