package seed

import (
	"context"
	"fmt"
	"log/slog"

	"lexlib/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates, clears and drops the prefixed library tables
type Schema struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	prefix string
	logger *slog.Logger
}

// NewSchema creates a schema manager for one table prefix
func NewSchema(pool *pgxpool.Pool, prefix string, logger *slog.Logger) *Schema {
	return &Schema{
		pool:   pool,
		tables: postgres.NewTableNames(prefix),
		prefix: prefix,
		logger: logger,
	}
}

// Statements returns the DDL in execution order.
//
// materials.parent_id is TEXT: a top-level row points at its document (or the
// document's root material), so it cannot reference a single table.
func (s *Schema) Statements() []string {
	t := s.tables
	p := s.prefix
	return []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,
		`CREATE TABLE IF NOT EXISTS ` + t.Catalogues + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + t.DocumentTypes + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + t.Documents + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			title TEXT NOT NULL,
			ref TEXT NOT NULL UNIQUE,
			catalogue_id UUID REFERENCES ` + t.Catalogues + `(id) ON DELETE SET NULL,
			document_type_id UUID REFERENCES ` + t.DocumentTypes + `(id),
			root_material_id UUID,
			published BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + t.Materials + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			document_id UUID NOT NULL REFERENCES ` + t.Documents + `(id) ON DELETE CASCADE,
			parent_id TEXT NOT NULL,
			ref TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			material_type TEXT NOT NULL CHECK (material_type IN ('division', 'article')),
			status TEXT NOT NULL,
			position INTEGER,
			body TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + t.Annotations + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id TEXT NOT NULL,
			document_id UUID NOT NULL REFERENCES ` + t.Documents + `(id) ON DELETE CASCADE,
			material_id UUID NOT NULL REFERENCES ` + t.Materials + `(id) ON DELETE CASCADE,
			kind TEXT NOT NULL CHECK (kind IN ('bookmark', 'note')),
			body TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + p + `materials_document_parent ON ` + t.Materials + `(document_id, parent_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_` + p + `materials_parent ON ` + t.Materials + `(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + p + `documents_catalogue ON ` + t.Documents + `(catalogue_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + p + `annotations_user_document ON ` + t.Annotations + `(user_id, document_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + p + `annotations_bookmark_unique ON ` + t.Annotations + `(user_id, material_id) WHERE kind = 'bookmark'`,
	}
}

// Run creates any missing tables and indexes
func (s *Schema) Run(ctx context.Context) error {
	for _, stmt := range s.Statements() {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("run schema: %w", err)
		}
	}
	s.logger.Info("schema ready", "prefix", s.prefix)
	return nil
}

// DropAll drops every table, dependents first
func (s *Schema) DropAll(ctx context.Context) error {
	all := s.tables.All()
	for i := len(all) - 1; i >= 0; i-- {
		if _, err := s.pool.Exec(ctx, "DROP TABLE IF EXISTS "+all[i]+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", all[i], err)
		}
		s.logger.Info("dropped table", "table", all[i])
	}
	return nil
}

// ClearData deletes all rows but keeps the schema
func (s *Schema) ClearData(ctx context.Context) error {
	all := s.tables.All()
	for i := len(all) - 1; i >= 0; i-- {
		if _, err := s.pool.Exec(ctx, "DELETE FROM "+all[i]); err != nil {
			return fmt.Errorf("clear %s: %w", all[i], err)
		}
	}
	return nil
}
