package service

import (
	"context"
	"fmt"
	"time"

	"kommshop-catalog/internal/domain"
	"kommshop-catalog/internal/repository"

	"github.com/google/uuid"
)

// CategoryService defines the interface for category business logic,
// including the resolution of loosely-typed category tokens into canonical
// category records.
type CategoryService interface {
	Find(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	FindAll(ctx context.Context, name string) ([]*domain.Category, error)
	Create(ctx context.Context, name, description string) (*domain.Category, error)
	Update(ctx context.Context, id uuid.UUID, name, description *string) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) (string, error)
	Resolve(ctx context.Context, token string) (*domain.Category, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

// Find retrieves a category by id, nil when absent
func (s *categoryService) Find(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

// FindAll lists categories, narrowed by a case-insensitive name pattern
// when one is given. An empty result is not an error.
func (s *categoryService) FindAll(ctx context.Context, name string) ([]*domain.Category, error) {
	if name != "" {
		return s.categoryRepo.FindByNamePattern(ctx, name)
	}
	return s.categoryRepo.List(ctx)
}

// Create persists a new category
func (s *categoryService) Create(ctx context.Context, name, description string) (*domain.Category, error) {
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// Update applies a partial mutation; nil fields leave the stored value
// alone. Returns nil when the id matches nothing.
func (s *categoryService) Update(ctx context.Context, id uuid.UUID, name, description *string) (*domain.Category, error) {
	return s.categoryRepo.Update(ctx, id, repository.CategoryUpdate{
		Name:        name,
		Description: description,
	})
}

// Delete removes a category by id. Deleting an unknown id is an
// invalid-category failure. Products referencing the category keep their
// now-dangling reference; there is no cascade.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) (string, error) {
	deleted, err := s.categoryRepo.Delete(ctx, id)
	if err != nil {
		return "", err
	}
	if deleted == nil {
		return "", domain.NewError(domain.KindInvalidCategory, domain.OriginService,
			fmt.Sprintf("category %s not found", id), nil)
	}

	return fmt.Sprintf("category %s:%s deleted", deleted.ID, deleted.Name), nil
}

// Resolve turns a category token into exactly one canonical category. A
// token shaped like an identifier is looked up by exact id; anything else
// is matched case-insensitively as a name substring, with the first
// candidate in id order winning. Zero candidates fail with
// invalid_category. Resolve is the pre-write gate for product mutations
// and never persists anything itself.
func (s *categoryService) Resolve(ctx context.Context, token string) (*domain.Category, error) {
	if id, err := uuid.Parse(token); err == nil {
		category, err := s.categoryRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, domain.NewError(domain.KindInvalidCategory, domain.OriginPreWriteHook,
				fmt.Sprintf("no category with id %s", id), nil)
		}
		return category, nil
	}

	candidates, err := s.categoryRepo.FindByNamePattern(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, domain.NewError(domain.KindInvalidCategory, domain.OriginPreWriteHook,
			fmt.Sprintf("no category matching %q", token), nil)
	}

	return candidates[0], nil
}
