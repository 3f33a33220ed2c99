package library

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"lexlib/internal/domain"
	models "lexlib/internal/domain/models/library"
	libraryRepo "lexlib/internal/domain/repositories/library"
	"lexlib/internal/materialtree"
	"lexlib/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresMaterialRepository implements the MaterialRepository interface
type PostgresMaterialRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewMaterialRepository creates a new material repository
func NewMaterialRepository(config *postgres.RepositoryConfig) libraryRepo.MaterialRepository {
	return &PostgresMaterialRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// materialColumns is the select list shared by every listing; children_count is computed
func (r *PostgresMaterialRepository) materialColumns() string {
	return fmt.Sprintf(`
		m.id, m.document_id, m.parent_id, m.ref, m.title, m.material_type, m.status,
		m.position, m.body,
		(SELECT COUNT(*) FROM %s c WHERE c.parent_id = m.id::text) AS children_count,
		m.created_at, m.updated_at`, r.tables.Materials)
}

const materialOrder = `ORDER BY m.position ASC NULLS LAST, m.created_at ASC, m.id ASC`

func scanMaterial(row pgx.Row, m *models.Material) error {
	return row.Scan(
		&m.ID,
		&m.DocumentID,
		&m.ParentID,
		&m.Ref,
		&m.Title,
		&m.MaterialType,
		&m.Status,
		&m.Position,
		&m.Body,
		&m.ChildrenCount,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
}

// Create inserts a material, appending it after its last sibling when no position is given
func (r *PostgresMaterialRepository) Create(ctx context.Context, material *models.Material) error {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (document_id, parent_id, ref, title, material_type, status, position, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6,
		        COALESCE($7, (SELECT COALESCE(MAX(position), 0) + 1 FROM %[1]s WHERE document_id = $1 AND parent_id = $2)),
		        $8, $9, $10)
		RETURNING id, position, created_at, updated_at
	`, r.tables.Materials)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		material.DocumentID,
		material.ParentID,
		material.Ref,
		material.Title,
		material.MaterialType,
		material.Status,
		material.Position,
		material.Body,
		material.CreatedAt,
		material.UpdatedAt,
	).Scan(&material.ID, &material.Position, &material.CreatedAt, &material.UpdatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", material.DocumentID, domain.ErrNotFound)
		}
		if postgres.IsPgCheckViolation(err) {
			return fmt.Errorf("material '%s': %w", material.Ref, domain.ErrValidation)
		}
		return fmt.Errorf("create material: %w", err)
	}

	return nil
}

// GetByID retrieves a material by ID
func (r *PostgresMaterialRepository) GetByID(ctx context.Context, id string) (*models.Material, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s m WHERE m.id = $1`, r.materialColumns(), r.tables.Materials)

	var material models.Material
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanMaterial(executor.QueryRow(ctx, query, id), &material); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("material %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get material: %w", err)
	}

	return &material, nil
}

// Update persists the editable fields of a material
func (r *PostgresMaterialRepository) Update(ctx context.Context, material *models.Material) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, ref = $2, title = $3, material_type = $4, status = $5,
		    position = $6, body = $7, updated_at = $8
		WHERE id = $9
	`, r.tables.Materials)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		material.ParentID,
		material.Ref,
		material.Title,
		material.MaterialType,
		material.Status,
		material.Position,
		material.Body,
		material.UpdatedAt,
		material.ID,
	)
	if err != nil {
		if postgres.IsPgCheckViolation(err) {
			return fmt.Errorf("material %s: %w", material.ID, domain.ErrValidation)
		}
		return fmt.Errorf("update material: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("material %s: %w", material.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a single material row
func (r *PostgresMaterialRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Materials)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("material %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByDocument returns the flat material list of a document
func (r *PostgresMaterialRepository) ListByDocument(ctx context.Context, documentID string) ([]models.Material, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s m WHERE m.document_id = $1 %s`,
		r.materialColumns(), r.tables.Materials, materialOrder)

	return r.list(ctx, "list materials", query, documentID)
}

// ListChildren returns the direct children of parentID within a document
func (r *PostgresMaterialRepository) ListChildren(ctx context.Context, documentID, parentID string) ([]models.Material, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s m WHERE m.document_id = $1 AND m.parent_id = $2 %s`,
		r.materialColumns(), r.tables.Materials, materialOrder)

	return r.list(ctx, "list children", query, documentID, parentID)
}

// ListByIDs returns the materials with the given IDs
func (r *PostgresMaterialRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Material, error) {
	if len(ids) == 0 {
		return []models.Material{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s m WHERE m.id = ANY($1::uuid[]) %s`,
		r.materialColumns(), r.tables.Materials, materialOrder)

	return r.list(ctx, "list materials by id", query, ids)
}

func (r *PostgresMaterialRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]models.Material, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	materials := []models.Material{}
	for rows.Next() {
		var m models.Material
		if err := scanMaterial(rows, &m); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		materials = append(materials, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}

	return materials, nil
}

// UpdatePositions writes all positions in one statement
func (r *PostgresMaterialRepository) UpdatePositions(ctx context.Context, updates []materialtree.PositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	ids := make([]string, len(updates))
	positions := make([]int32, len(updates))
	for i, u := range updates {
		ids[i] = u.ID
		positions[i] = int32(u.Position)
	}

	query := fmt.Sprintf(`
		UPDATE %s AS m
		SET position = u.position, updated_at = NOW()
		FROM unnest($1::uuid[], $2::int[]) AS u(id, position)
		WHERE m.id = u.id
	`, r.tables.Materials)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, ids, positions)
	if err != nil {
		return fmt.Errorf("update positions: %w", err)
	}

	if int(result.RowsAffected()) != len(updates) {
		return fmt.Errorf("update positions: %d of %d materials found: %w",
			result.RowsAffected(), len(updates), domain.ErrNotFound)
	}

	r.logger.Debug("positions updated", "count", len(updates))
	return nil
}

// UpdateStatus sets the status of the given materials
func (r *PostgresMaterialRepository) UpdateStatus(ctx context.Context, ids []string, status models.Status) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, updated_at = NOW()
		WHERE id = ANY($2::uuid[])
	`, r.tables.Materials)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, status, ids); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	return nil
}

// Search runs PostgreSQL full-text search over material title, ref and body.
// Title and ref matches weigh twice as much as body matches.
func (r *PostgresMaterialRepository) Search(ctx context.Context, opts *models.SearchOptions) (*models.SearchResults, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid search options: %v", domain.ErrValidation, err)
	}

	where, args := r.searchConditions(opts)

	query := fmt.Sprintf(`
		SELECT m.id, m.document_id, m.ref, m.title,
		       ts_headline($1, m.body, websearch_to_tsquery($1, $2),
		                   'MaxWords=35, MinWords=15, MaxFragments=1') AS snippet,
		       (ts_rank(to_tsvector($1, m.ref || ' ' || m.title), websearch_to_tsquery($1, $2)) * 2.0
		        + ts_rank(to_tsvector($1, m.body), websearch_to_tsquery($1, $2))) AS rank_score
		FROM %s m
		JOIN %s d ON d.id = m.document_id
		WHERE %s
		ORDER BY rank_score DESC, m.id ASC
		LIMIT $%d OFFSET $%d
	`, r.tables.Materials, r.tables.Documents, where, len(args)+1, len(args)+2)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, append(args, opts.Limit, opts.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("full-text search query failed: %w", err)
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var hit models.SearchResult
		if err := rows.Scan(&hit.MaterialID, &hit.DocumentID, &hit.Ref, &hit.Title, &hit.Snippet, &hit.Score); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		results = append(results, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s m
		JOIN %s d ON d.id = m.document_id
		WHERE %s
	`, r.tables.Materials, r.tables.Documents, where)

	var total int
	if err := executor.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count query failed: %w", err)
	}

	return models.NewSearchResults(results, total, opts, "postgres"), nil
}

// searchConditions builds the WHERE clause shared by the search and count queries
func (r *PostgresMaterialRepository) searchConditions(opts *models.SearchOptions) (string, []interface{}) {
	conditions := []string{
		`(to_tsvector($1, m.ref || ' ' || m.title) @@ websearch_to_tsquery($1, $2)
		  OR to_tsvector($1, m.body) @@ websearch_to_tsquery($1, $2))`,
	}
	args := []interface{}{opts.Language, opts.Query}

	if opts.DocumentID != "" {
		args = append(args, opts.DocumentID)
		conditions = append(conditions, fmt.Sprintf("m.document_id = $%d", len(args)))
	}
	if opts.PublishedOnly {
		conditions = append(conditions, "d.published = TRUE")
	}

	return strings.Join(conditions, " AND "), args
}
