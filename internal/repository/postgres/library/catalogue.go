package library

import (
	"context"
	"fmt"
	"log/slog"

	"lexlib/internal/domain"
	models "lexlib/internal/domain/models/library"
	libraryRepo "lexlib/internal/domain/repositories/library"
	"lexlib/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCatalogueRepository implements the CatalogueRepository interface
type PostgresCatalogueRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewCatalogueRepository creates a new catalogue repository
func NewCatalogueRepository(config *postgres.RepositoryConfig) libraryRepo.CatalogueRepository {
	return &PostgresCatalogueRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new catalogue
func (r *PostgresCatalogueRepository) Create(ctx context.Context, catalogue *models.Catalogue) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, description, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, r.tables.Catalogues)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		catalogue.Name,
		catalogue.Description,
		catalogue.Position,
		catalogue.CreatedAt,
		catalogue.UpdatedAt,
	).Scan(&catalogue.ID, &catalogue.CreatedAt, &catalogue.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("catalogue '%s' already exists: %w", catalogue.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create catalogue: %w", err)
	}

	return nil
}

// GetByID retrieves a catalogue by ID
func (r *PostgresCatalogueRepository) GetByID(ctx context.Context, id string) (*models.Catalogue, error) {
	query := fmt.Sprintf(`
		SELECT id, name, description, position, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Catalogues)

	var c models.Catalogue
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.Position,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("catalogue %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get catalogue: %w", err)
	}

	return &c, nil
}

// Update updates a catalogue
func (r *PostgresCatalogueRepository) Update(ctx context.Context, catalogue *models.Catalogue) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, position = $3, updated_at = $4
		WHERE id = $5
	`, r.tables.Catalogues)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		catalogue.Name,
		catalogue.Description,
		catalogue.Position,
		catalogue.UpdatedAt,
		catalogue.ID,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("catalogue '%s' already exists: %w", catalogue.Name, domain.ErrConflict)
		}
		return fmt.Errorf("update catalogue: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("catalogue %s: %w", catalogue.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a catalogue; its documents keep existing without a catalogue
func (r *PostgresCatalogueRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Catalogues)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete catalogue: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("catalogue %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// List returns catalogues ordered by position, then name
func (r *PostgresCatalogueRepository) List(ctx context.Context) ([]models.Catalogue, error) {
	query := fmt.Sprintf(`
		SELECT id, name, description, position, created_at, updated_at
		FROM %s
		ORDER BY position ASC, name ASC
	`, r.tables.Catalogues)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list catalogues: %w", err)
	}
	defer rows.Close()

	catalogues := []models.Catalogue{}
	for rows.Next() {
		var c models.Catalogue
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Position, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan catalogue: %w", err)
		}
		catalogues = append(catalogues, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalogues: %w", err)
	}

	return catalogues, nil
}

// PostgresDocumentTypeRepository implements the DocumentTypeRepository interface
type PostgresDocumentTypeRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentTypeRepository creates a new document type repository
func NewDocumentTypeRepository(config *postgres.RepositoryConfig) libraryRepo.DocumentTypeRepository {
	return &PostgresDocumentTypeRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new document type
func (r *PostgresDocumentTypeRepository) Create(ctx context.Context, docType *models.DocumentType) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, created_at, updated_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, r.tables.DocumentTypes)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, docType.Name, docType.CreatedAt, docType.UpdatedAt).
		Scan(&docType.ID, &docType.CreatedAt, &docType.UpdatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("document type '%s' already exists: %w", docType.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create document type: %w", err)
	}

	return nil
}

// GetByID retrieves a document type by ID
func (r *PostgresDocumentTypeRepository) GetByID(ctx context.Context, id string) (*models.DocumentType, error) {
	query := fmt.Sprintf(`SELECT id, name, created_at, updated_at FROM %s WHERE id = $1`, r.tables.DocumentTypes)

	var dt models.DocumentType
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&dt.ID, &dt.Name, &dt.CreatedAt, &dt.UpdatedAt); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document type %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document type: %w", err)
	}

	return &dt, nil
}

// Delete removes a document type that no document references
func (r *PostgresDocumentTypeRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.DocumentTypes)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return &domain.ConflictError{
				Message:      "document type is still used by documents",
				ResourceType: "document_type",
				ResourceID:   id,
			}
		}
		return fmt.Errorf("delete document type: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document type %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// List returns document types ordered by name
func (r *PostgresDocumentTypeRepository) List(ctx context.Context) ([]models.DocumentType, error) {
	query := fmt.Sprintf(`SELECT id, name, created_at, updated_at FROM %s ORDER BY name ASC`, r.tables.DocumentTypes)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list document types: %w", err)
	}
	defer rows.Close()

	types := []models.DocumentType{}
	for rows.Next() {
		var dt models.DocumentType
		if err := rows.Scan(&dt.ID, &dt.Name, &dt.CreatedAt, &dt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document type: %w", err)
		}
		types = append(types, dt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document types: %w", err)
	}

	return types, nil
}
