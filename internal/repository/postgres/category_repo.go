package postgres

import (
	"context"
	"errors"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

var _ domain.CategoryRepository = (*CategoryRepository)(nil)

const categoryColumns = `id, owner_id, name, type, template_id, is_visible, created_at, updated_at, deleted_at`

func scanCategory(row rowScanner) (*domain.Category, error) {
	var (
		c          domain.Category
		ownerID    pgtype.UUID
		templateID pgtype.Int4
		deletedAt  pgtype.Timestamptz
	)
	err := row.Scan(&c.ID, &ownerID, &c.Name, &c.Type, &templateID, &c.IsVisible, &c.CreatedAt, &c.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	if ownerID.Valid {
		id := uuid.UUID(ownerID.Bytes)
		c.OwnerID = &id
	}
	if templateID.Valid {
		c.TemplateID = &templateID.Int32
	}
	if deletedAt.Valid {
		c.DeletedAt = &deletedAt.Time
	}
	return &c, nil
}

// Create inserts a new category
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		INSERT INTO categories (owner_id, name, type, template_id, is_visible)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + categoryColumns

	created, err := scanCategory(r.pool.QueryRow(ctx, query,
		category.OwnerID, category.Name, string(category.Type), category.TemplateID, category.IsVisible))
	if err != nil {
		return nil, mapStoreError(err)
	}
	return created, nil
}

// GetByID retrieves a category by ID, regardless of owner, excluding
// soft-deleted rows
func (r *CategoryRepository) GetByID(ctx context.Context, id int32) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 AND deleted_at IS NULL`

	category, err := scanCategory(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, mapStoreError(err)
	}
	return category, nil
}

// ListByOwner retrieves the owner's categories plus global templates
func (r *CategoryRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories
		WHERE (owner_id = $1 OR owner_id IS NULL) AND deleted_at IS NULL
		ORDER BY owner_id NULLS FIRST, name`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, mapStoreError(err)
		}
		categories = append(categories, category)
	}
	return categories, mapStoreError(rows.Err())
}

// Update renames a category and sets its visibility
func (r *CategoryRepository) Update(ctx context.Context, ownerID uuid.UUID, id int32, name string, isVisible bool) (*domain.Category, error) {
	query := `
		UPDATE categories SET name = $3, is_visible = $4, updated_at = now()
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL
		RETURNING ` + categoryColumns

	category, err := scanCategory(r.pool.QueryRow(ctx, query, id, ownerID, name, isVisible))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, mapStoreError(err)
	}
	return category, nil
}

// SoftDelete marks a category as deleted
func (r *CategoryRepository) SoftDelete(ctx context.Context, ownerID uuid.UUID, id int32) error {
	query := `
		UPDATE categories SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`

	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return mapStoreError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}
