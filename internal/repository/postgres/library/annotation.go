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

// PostgresAnnotationRepository implements the AnnotationRepository interface
type PostgresAnnotationRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewAnnotationRepository creates a new annotation repository
func NewAnnotationRepository(config *postgres.RepositoryConfig) libraryRepo.AnnotationRepository {
	return &PostgresAnnotationRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const annotationColumns = `id, user_id, document_id, material_id, kind, body, created_at, updated_at`

func scanAnnotation(row pgx.Row, a *models.Annotation) error {
	return row.Scan(
		&a.ID,
		&a.UserID,
		&a.DocumentID,
		&a.MaterialID,
		&a.Kind,
		&a.Body,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
}

// Create creates a bookmark or note. A user holds at most one bookmark per material.
func (r *PostgresAnnotationRepository) Create(ctx context.Context, a *models.Annotation) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, document_id, material_id, kind, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Annotations)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		a.UserID,
		a.DocumentID,
		a.MaterialID,
		a.Kind,
		a.Body,
		a.CreatedAt,
		a.UpdatedAt,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "material is already bookmarked",
				ResourceType: "annotation",
				ResourceID:   a.MaterialID,
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("material %s: %w", a.MaterialID, domain.ErrNotFound)
		}
		return fmt.Errorf("create annotation: %w", err)
	}

	return nil
}

// GetByID retrieves an annotation by ID
func (r *PostgresAnnotationRepository) GetByID(ctx context.Context, id string) (*models.Annotation, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, annotationColumns, r.tables.Annotations)

	var a models.Annotation
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanAnnotation(executor.QueryRow(ctx, query, id), &a); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("annotation %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get annotation: %w", err)
	}

	return &a, nil
}

// Update updates the body of an annotation
func (r *PostgresAnnotationRepository) Update(ctx context.Context, a *models.Annotation) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET body = $1, updated_at = $2
		WHERE id = $3
	`, r.tables.Annotations)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, a.Body, a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("update annotation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("annotation %s: %w", a.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes an annotation
func (r *PostgresAnnotationRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Annotations)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete annotation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("annotation %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByUser lists a user's annotations, newest first
func (r *PostgresAnnotationRepository) ListByUser(ctx context.Context, userID string, documentID *string) ([]models.Annotation, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1`, annotationColumns, r.tables.Annotations)
	args := []interface{}{userID}

	if documentID != nil {
		query += ` AND document_id = $2`
		args = append(args, *documentID)
	}
	query += ` ORDER BY created_at DESC`

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	defer rows.Close()

	annotations := []models.Annotation{}
	for rows.Next() {
		var a models.Annotation
		if err := scanAnnotation(rows, &a); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		annotations = append(annotations, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate annotations: %w", err)
	}

	return annotations, nil
}
