package service

import (
	"context"
	"fmt"
	"time"

	"kommshop-catalog/internal/domain"
	"kommshop-catalog/internal/query"
	"kommshop-catalog/internal/repository"

	"github.com/google/uuid"
)

// CreateProductInput carries an already-validated product create request.
// Category is a token: either a category id or a name fragment.
type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
}

// UpdateProductInput carries a partial product update; nil fields are left
// untouched
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
}

// ProductService defines the interface for catalog business logic. Reads
// compile queries and delegate to the product store; writes pass the
// category resolution gate before anything is persisted.
type ProductService interface {
	Find(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindAll(ctx context.Context, search, category string) ([]*domain.Product, error)
	FindManyWithPagination(ctx context.Context, searchValue string, q domain.CatalogQuery) (*domain.ProductPage, error)
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.Product, error)
	Favourite(ctx context.Context, productID, userID uuid.UUID) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (string, error)
}

type productService struct {
	productRepo     repository.ProductRepository
	categoryService CategoryService
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository, categoryService CategoryService) ProductService {
	return &productService{
		productRepo:     productRepo,
		categoryService: categoryService,
	}
}

// Find retrieves a product by id, nil when absent
func (s *productService) Find(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// FindAll serves the search surface. With a category the search term (if
// any) narrows within it. With free text and no category the term might be
// a product name fragment or a category name fragment, so both lookups run
// and the results union by product id, first occurrence winning.
func (s *productService) FindAll(ctx context.Context, search, category string) ([]*domain.Product, error) {
	switch {
	case category != "" && search != "":
		return s.productRepo.FindAllByCategoryAndName(ctx, search, category)
	case category != "":
		return s.productRepo.FindAllByCategory(ctx, category)
	case search != "":
		return s.findAllDualMode(ctx, search)
	}
	return s.productRepo.FindAll(ctx)
}

type findResult struct {
	products []*domain.Product
	err      error
}

// findAllDualMode fans the free-text term out to the by-name and
// by-category lookups concurrently and unions the results
func (s *productService) findAllDualMode(ctx context.Context, search string) ([]*domain.Product, error) {
	byCategoryCh := make(chan findResult, 1)
	go func() {
		products, err := s.productRepo.FindAllByCategory(ctx, search)
		byCategoryCh <- findResult{products: products, err: err}
	}()

	byName, nameErr := s.productRepo.FindAllByName(ctx, search)
	byCategory := <-byCategoryCh

	if nameErr != nil {
		return nil, nameErr
	}
	if byCategory.err != nil {
		return nil, byCategory.err
	}

	return unionByID(byName, byCategory.products), nil
}

// FindManyWithPagination compiles the catalog query and runs the page and
// total-count queries concurrently against the same filter. A free-text
// searchValue stands in for a missing name filter.
func (s *productService) FindManyWithPagination(ctx context.Context, searchValue string, q domain.CatalogQuery) (*domain.ProductPage, error) {
	if searchValue != "" {
		if q.Filters == nil {
			q.Filters = &domain.QueryFilters{}
		}
		if q.Filters.Name == "" {
			q.Filters.Name = searchValue
		}
	}
	q.Normalize()

	compiled := query.Compile(q)

	type countResult struct {
		total int
		err   error
	}

	countCh := make(chan countResult, 1)
	go func() {
		total, err := s.productRepo.Count(ctx, compiled)
		countCh <- countResult{total: total, err: err}
	}()

	products, err := s.productRepo.FindMany(ctx, compiled)
	count := <-countCh

	if err != nil {
		return nil, err
	}
	if count.err != nil {
		return nil, count.err
	}

	return &domain.ProductPage{
		Data:  products,
		Total: count.total,
		Page:  q.Page,
		Limit: q.Limit,
	}, nil
}

// Create persists a new product. The category token must resolve before
// anything is written; on resolution failure no partial product exists.
func (s *productService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	category, err := s.categoryService.Resolve(ctx, input.Category)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:           uuid.New(),
		Name:         input.Name,
		Description:  input.Description,
		Price:        input.Price,
		CategoryID:   category.ID,
		FavouritedBy: []uuid.UUID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return s.productRepo.Create(ctx, product)
}

// Update applies a partial mutation. A category change re-runs the
// resolution gate; other fields go straight through. Returns nil when the
// id matches nothing.
func (s *productService) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.Product, error) {
	update := repository.ProductUpdate{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
	}

	if input.Category != nil {
		category, err := s.categoryService.Resolve(ctx, *input.Category)
		if err != nil {
			return nil, err
		}
		update.CategoryID = &category.ID
	}

	return s.productRepo.Update(ctx, id, update)
}

// Favourite adds a user id to a product's favourites set. It is a
// specialised update: no category resolution, duplicates are absorbed by
// the set-add.
func (s *productService) Favourite(ctx context.Context, productID, userID uuid.UUID) (*domain.Product, error) {
	return s.productRepo.Update(ctx, productID, repository.ProductUpdate{NewFavourite: &userID})
}

// Delete removes a product. Category references of sibling products are
// not validated. Returns an empty message when the id matches nothing.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) (string, error) {
	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return "", err
	}
	if deleted == nil {
		return "", nil
	}

	return fmt.Sprintf("Product %s:%s deleted", deleted.ID, deleted.Name), nil
}

// unionByID merges product lists keeping the first occurrence of each id
func unionByID(lists ...[]*domain.Product) []*domain.Product {
	seen := make(map[uuid.UUID]struct{})
	merged := []*domain.Product{}
	for _, list := range lists {
		for _, product := range list {
			if _, ok := seen[product.ID]; ok {
				continue
			}
			seen[product.ID] = struct{}{}
			merged = append(merged, product)
		}
	}
	return merged
}
