package library

import (
	"context"
	"fmt"
	"log/slog"

	"lexlib/internal/domain"
	models "lexlib/internal/domain/models/library"
	libraryRepo "lexlib/internal/domain/repositories/library"
	"lexlib/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) libraryRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const documentColumns = `id, title, ref, catalogue_id, document_type_id, root_material_id, published, created_at, updated_at`

func scanDocument(row pgx.Row, doc *models.Document) error {
	return row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Ref,
		&doc.CatalogueID,
		&doc.DocumentTypeID,
		&doc.RootMaterialID,
		&doc.Published,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
}

// Create creates a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, ref, catalogue_id, document_type_id, root_material_id, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.Title,
		doc.Ref,
		doc.CatalogueID,
		doc.DocumentTypeID,
		doc.RootMaterialID,
		doc.Published,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)

	if err != nil {
		return r.mapWriteError(ctx, "create document", doc, err)
	}

	return nil
}

// GetByID retrieves a document by ID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, documentColumns, r.tables.Documents)

	var doc models.Document
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanDocument(executor.QueryRow(ctx, query, id), &doc); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// Update updates an existing document
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, ref = $2, catalogue_id = $3, document_type_id = $4,
		    root_material_id = $5, published = $6, updated_at = $7
		WHERE id = $8
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		doc.Title,
		doc.Ref,
		doc.CatalogueID,
		doc.DocumentTypeID,
		doc.RootMaterialID,
		doc.Published,
		doc.UpdatedAt,
		doc.ID,
	)
	if err != nil {
		return r.mapWriteError(ctx, "update document", doc, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a document; materials and annotations cascade
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// List lists documents matching the filter, ordered by ref then title
func (r *PostgresDocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE TRUE`, documentColumns, r.tables.Documents)
	var args []interface{}

	if filter.CatalogueID != nil {
		args = append(args, *filter.CatalogueID)
		query += fmt.Sprintf(` AND catalogue_id = $%d`, len(args))
	}
	if filter.DocumentTypeID != nil {
		args = append(args, *filter.DocumentTypeID)
		query += fmt.Sprintf(` AND document_type_id = $%d`, len(args))
	}
	if filter.Published != nil {
		args = append(args, *filter.Published)
		query += fmt.Sprintf(` AND published = $%d`, len(args))
	}
	query += ` ORDER BY ref ASC, title ASC`

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	documents := []models.Document{}
	for rows.Next() {
		var doc models.Document
		if err := scanDocument(rows, &doc); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return documents, nil
}

// mapWriteError turns constraint violations into domain errors
func (r *PostgresDocumentRepository) mapWriteError(ctx context.Context, op string, doc *models.Document, err error) error {
	if postgres.IsPgDuplicateError(err) {
		existingID, queryErr := r.getExistingDocumentID(ctx, doc.Ref)
		if queryErr != nil {
			return fmt.Errorf("document '%s' already exists: %w", doc.Ref, domain.ErrConflict)
		}
		return &domain.ConflictError{
			Message:      fmt.Sprintf("document '%s' already exists", doc.Ref),
			ResourceType: "document",
			ResourceID:   existingID,
		}
	}
	if postgres.IsPgForeignKeyError(err) {
		return fmt.Errorf("catalogue or document type: %w", domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// getExistingDocumentID finds the document holding a reference
func (r *PostgresDocumentRepository) getExistingDocumentID(ctx context.Context, ref string) (string, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE ref = $1`, r.tables.Documents)

	var id string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, ref).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}
