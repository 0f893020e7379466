package service

import (
	"bytes"
	"context"
	"sort"
	"strings"

	"kommshop-catalog/internal/domain"
	"kommshop-catalog/internal/query"
	"kommshop-catalog/internal/repository"

	"github.com/google/uuid"
)

// fakeCategoryRepo is an in-memory CategoryRepository that mirrors the
// store's ordering behaviour: substring matches come back ordered by id.
type fakeCategoryRepo struct {
	categories   map[uuid.UUID]*domain.Category
	patternCalls int
}

func newFakeCategoryRepo(categories ...*domain.Category) *fakeCategoryRepo {
	f := &fakeCategoryRepo{categories: make(map[uuid.UUID]*domain.Category)}
	for _, c := range categories {
		f.categories[c.ID] = c
	}
	return f
}

func (f *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	f.categories[category.ID] = category
	return nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, id uuid.UUID, update repository.CategoryUpdate) (*domain.Category, error) {
	category, ok := f.categories[id]
	if !ok {
		return nil, nil
	}
	if update.Name != nil {
		category.Name = *update.Name
	}
	if update.Description != nil {
		category.Description = *update.Description
	}
	return category, nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id uuid.UUID) (*domain.Category, error) {
	category, ok := f.categories[id]
	if !ok {
		return nil, nil
	}
	delete(f.categories, id)
	return category, nil
}

func (f *fakeCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Category, error) {
	return f.categories[id], nil
}

func (f *fakeCategoryRepo) FindByNamePattern(_ context.Context, pattern string) ([]*domain.Category, error) {
	f.patternCalls++
	var matches []*domain.Category
	for _, c := range f.categories {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(pattern)) {
			matches = append(matches, c)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return bytes.Compare(matches[i].ID[:], matches[j].ID[:]) < 0
	})
	return matches, nil
}

func (f *fakeCategoryRepo) List(_ context.Context) ([]*domain.Category, error) {
	var all []*domain.Category
	for _, c := range f.categories {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

// fakeProductRepo is an in-memory ProductRepository with canned results for
// the search lookups and a record of every write.
type fakeProductRepo struct {
	products map[uuid.UUID]*domain.Product

	byName     []*domain.Product
	byCategory []*domain.Product

	created      []*domain.Product
	updates      []repository.ProductUpdate
	lastCompiled query.Compiled
	countResult  int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*domain.Product)}
}

func (f *fakeProductRepo) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	f.created = append(f.created, product)
	f.products[product.ID] = product
	return product, nil
}

func (f *fakeProductRepo) Update(_ context.Context, id uuid.UUID, update repository.ProductUpdate) (*domain.Product, error) {
	f.updates = append(f.updates, update)
	product, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	if update.Name != nil {
		product.Name = *update.Name
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.CategoryID != nil {
		product.CategoryID = *update.CategoryID
	}
	if update.NewFavourite != nil {
		present := false
		for _, u := range product.FavouritedBy {
			if u == *update.NewFavourite {
				present = true
			}
		}
		if !present {
			product.FavouritedBy = append(product.FavouritedBy, *update.NewFavourite)
		}
	}
	return product, nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	delete(f.products, id)
	return product, nil
}

func (f *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	return f.products[id], nil
}

func (f *fakeProductRepo) FindAll(_ context.Context) ([]*domain.Product, error) {
	var all []*domain.Product
	for _, p := range f.products {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

func (f *fakeProductRepo) FindAllByName(_ context.Context, _ string) ([]*domain.Product, error) {
	return f.byName, nil
}

func (f *fakeProductRepo) FindAllByCategory(_ context.Context, _ string) ([]*domain.Product, error) {
	return f.byCategory, nil
}

func (f *fakeProductRepo) FindAllByCategoryAndName(_ context.Context, _, _ string) ([]*domain.Product, error) {
	return f.byCategory, nil
}

func (f *fakeProductRepo) FindMany(_ context.Context, compiled query.Compiled) ([]*domain.Product, error) {
	f.lastCompiled = compiled
	return f.byName, nil
}

func (f *fakeProductRepo) Count(_ context.Context, _ query.Compiled) (int, error) {
	return f.countResult, nil
}
