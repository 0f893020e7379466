package repository

import (
	"context"
	"database/sql"
	"fmt"

	"kommshop-catalog/internal/domain"
	"kommshop-catalog/internal/query"

	"github.com/google/uuid"
)

// CategoryUpdate describes a partial category mutation. Nil fields are
// left untouched.
type CategoryUpdate struct {
	Name        *string
	Description *string
}

// CategoryRepository defines the interface for category data access.
// Lookups that match nothing return nil results, not errors; every failure
// that does surface is already classified into the catalog taxonomy.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, id uuid.UUID, update CategoryUpdate) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	FindByNamePattern(ctx context.Context, pattern string) ([]*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create inserts a new category using parameterized queries
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	sqlQuery := `
		INSERT INTO categories (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(
		ctx,
		sqlQuery,
		category.ID,
		category.Name,
		category.Description,
		category.CreatedAt,
	)
	if err != nil {
		return classify("create category", err)
	}

	return nil
}

// Update applies a partial mutation to a category. Returns nil when no
// category with the id exists.
func (r *categoryRepository) Update(ctx context.Context, id uuid.UUID, update CategoryUpdate) (*domain.Category, error) {
	sqlQuery := `
		UPDATE categories
		SET name        = COALESCE($2, name),
		    description = COALESCE($3, description)
		WHERE id = $1
		RETURNING id, name, description, created_at
	`

	updated := &domain.Category{}
	err := r.db.QueryRowContext(ctx, sqlQuery, id, update.Name, update.Description).Scan(
		&updated.ID,
		&updated.Name,
		&updated.Description,
		&updated.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, classify("update category", err)
	}

	return updated, nil
}

// Delete removes a category and returns what was removed, or nil when the
// id matched nothing. Products referencing the category are not touched.
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	sqlQuery := `
		DELETE FROM categories
		WHERE id = $1
		RETURNING id, name, description, created_at
	`

	deleted := &domain.Category{}
	err := r.db.QueryRowContext(ctx, sqlQuery, id).Scan(
		&deleted.ID,
		&deleted.Name,
		&deleted.Description,
		&deleted.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, classify("delete category", err)
	}

	return deleted, nil
}

// FindByID retrieves a category by exact id, nil when absent
func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	sqlQuery := `
		SELECT id, name, description, created_at
		FROM categories
		WHERE id = $1
	`

	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, sqlQuery, id).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, classify("find category by id", err)
	}

	return category, nil
}

// FindByNamePattern retrieves categories whose name contains the pattern,
// case-insensitively and non-anchored. Results come back ordered by id so
// that "first match" is stable across calls.
func (r *categoryRepository) FindByNamePattern(ctx context.Context, pattern string) ([]*domain.Category, error) {
	sqlQuery := `
		SELECT id, name, description, created_at
		FROM categories
		WHERE name ILIKE $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, sqlQuery, query.Pattern(pattern))
	if err != nil {
		return nil, classify("find categories by name", err)
	}
	defer rows.Close()

	return scanCategories(rows)
}

// List retrieves all categories ordered by name
func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	sqlQuery := `
		SELECT id, name, description, created_at
		FROM categories
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, classify("list categories", err)
	}
	defer rows.Close()

	return scanCategories(rows)
}

func scanCategories(rows *sql.Rows) ([]*domain.Category, error) {
	categories := []*domain.Category{}
	for rows.Next() {
		category := &domain.Category{}
		err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Description,
			&category.CreatedAt,
		)
		if err != nil {
			return nil, classify("scan category", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, classify("iterate categories", fmt.Errorf("error iterating categories: %w", err))
	}

	return categories, nil
}
