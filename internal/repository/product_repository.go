package repository

import (
	"context"
	"database/sql"
	"fmt"

	"kommshop-catalog/internal/domain"
	"kommshop-catalog/internal/query"

	"github.com/google/uuid"
)

// productColumns is the projection every product read shares: the product
// row plus the category name joined in. The INNER JOIN excludes products
// whose category reference no longer resolves, so a dangling id is never
// returned to a caller.
const productColumns = `
	p.id, p.name, p.description, p.price, p.category_id, c.name,
	p.favourited_by, p.created_at, p.updated_at
`

const productFrom = `
	FROM products p
	INNER JOIN categories c ON c.id = p.category_id
`

// ProductUpdate describes a partial product mutation. Nil fields are left
// untouched. NewFavourite adds a user id to the favourites set without
// replacing the rest of the product.
type ProductUpdate struct {
	Name         *string
	Description  *string
	Price        *float64
	CategoryID   *uuid.UUID
	NewFavourite *uuid.UUID
}

// ProductRepository defines the interface for product data access. All
// reads return products with the category denormalized to its name.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, update ProductUpdate) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindAll(ctx context.Context) ([]*domain.Product, error)
	FindAllByName(ctx context.Context, search string) ([]*domain.Product, error)
	FindAllByCategory(ctx context.Context, category string) ([]*domain.Product, error)
	FindAllByCategoryAndName(ctx context.Context, search, category string) ([]*domain.Product, error)
	FindMany(ctx context.Context, compiled query.Compiled) ([]*domain.Product, error)
	Count(ctx context.Context, compiled query.Compiled) (int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product and returns it with the category name
// denormalized. The caller must have resolved the category reference first;
// raw category text never reaches this method.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	sqlQuery := `
		INSERT INTO products (id, name, description, price, category_id, favourited_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		sqlQuery,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.CategoryID,
		uuidArray(product.FavouritedBy),
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return nil, classify("create product", err)
	}

	return r.FindByID(ctx, product.ID)
}

// Update applies a partial mutation and returns the updated product with
// its category denormalized, or nil when the id matched nothing. The
// favourites set-add is guarded so a user id is never duplicated.
func (r *productRepository) Update(ctx context.Context, id uuid.UUID, update ProductUpdate) (*domain.Product, error) {
	sqlQuery := `
		UPDATE products
		SET name        = COALESCE($2, name),
		    description = COALESCE($3, description),
		    price       = COALESCE($4, price),
		    category_id = COALESCE($5, category_id),
		    favourited_by = CASE
		        WHEN $6::uuid IS NULL OR $6 = ANY(favourited_by) THEN favourited_by
		        ELSE array_append(favourited_by, $6)
		    END,
		    updated_at = now()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		sqlQuery,
		id,
		update.Name,
		update.Description,
		update.Price,
		update.CategoryID,
		update.NewFavourite,
	)
	if err != nil {
		return nil, classify("update product", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, classify("update product", err)
	}
	if rowsAffected == 0 {
		return nil, nil
	}

	return r.FindByID(ctx, id)
}

// Delete removes a product and returns what was removed, or nil when the
// id matched nothing. Sibling category references are not validated.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	sqlQuery := `
		DELETE FROM products
		WHERE id = $1
		RETURNING id, name
	`

	deleted := &domain.Product{}
	err := r.db.QueryRowContext(ctx, sqlQuery, id).Scan(&deleted.ID, &deleted.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, classify("delete product", err)
	}

	return deleted, nil
}

// FindByID retrieves a product by id, nil when absent or when its category
// reference no longer resolves
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	sqlQuery := `SELECT` + productColumns + productFrom + `WHERE p.id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, sqlQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, classify("find product by id", err)
	}

	return product, nil
}

// FindAll retrieves every product with a resolvable category
func (r *productRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	sqlQuery := `SELECT` + productColumns + productFrom + `ORDER BY ` + query.DefaultOrderBy

	rows, err := r.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, classify("find all products", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// FindAllByName retrieves products whose name contains the search term,
// case-insensitively
func (r *productRepository) FindAllByName(ctx context.Context, search string) ([]*domain.Product, error) {
	sqlQuery := `SELECT` + productColumns + productFrom + `
		WHERE p.name ILIKE $1
		ORDER BY ` + query.DefaultOrderBy

	rows, err := r.db.QueryContext(ctx, sqlQuery, query.Pattern(search))
	if err != nil {
		return nil, classify("find products by name", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// FindAllByCategory retrieves products whose resolved category name
// contains the pattern. Products with dangling category references never
// match.
func (r *productRepository) FindAllByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	sqlQuery := `SELECT` + productColumns + productFrom + `
		WHERE c.name ILIKE $1
		ORDER BY ` + query.DefaultOrderBy

	rows, err := r.db.QueryContext(ctx, sqlQuery, query.Pattern(category))
	if err != nil {
		return nil, classify("find products by category", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// FindAllByCategoryAndName retrieves products matching the search term by
// name, narrowed to those whose resolved category name matches the pattern
func (r *productRepository) FindAllByCategoryAndName(ctx context.Context, search, category string) ([]*domain.Product, error) {
	sqlQuery := `SELECT` + productColumns + productFrom + `
		WHERE p.name ILIKE $1 AND c.name ILIKE $2
		ORDER BY ` + query.DefaultOrderBy

	rows, err := r.db.QueryContext(ctx, sqlQuery, query.Pattern(search), query.Pattern(category))
	if err != nil {
		return nil, classify("find products by category and name", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// FindMany executes a compiled catalog query: filter, sort and page bounds
func (r *productRepository) FindMany(ctx context.Context, compiled query.Compiled) ([]*domain.Product, error) {
	where := ""
	if compiled.Where != "" {
		where = "WHERE " + compiled.Where + "\n"
	}

	argc := len(compiled.Args)
	sqlQuery := fmt.Sprintf(`SELECT%s%s%sORDER BY %s LIMIT $%d OFFSET $%d`,
		productColumns, productFrom, where, compiled.OrderBy, argc+1, argc+2)

	args := append(append([]any{}, compiled.Args...), compiled.Limit, compiled.Offset)

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, classify("find products", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// Count executes the total-count companion of a compiled query, sharing its
// filter but ignoring sort and page bounds
func (r *productRepository) Count(ctx context.Context, compiled query.Compiled) (int, error) {
	where := ""
	if compiled.Where != "" {
		where = "WHERE " + compiled.Where
	}

	sqlQuery := `SELECT COUNT(*)` + productFrom + where

	var total int
	if err := r.db.QueryRowContext(ctx, sqlQuery, compiled.Args...).Scan(&total); err != nil {
		return 0, classify("count products", err)
	}

	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var favourites uuidArray
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.CategoryID,
		&product.CategoryName,
		&favourites,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	product.FavouritedBy = favourites
	return product, nil
}

func scanProducts(rows *sql.Rows) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, classify("scan product", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, classify("iterate products", fmt.Errorf("error iterating products: %w", err))
	}

	return products, nil
}
