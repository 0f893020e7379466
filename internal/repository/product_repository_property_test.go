package repository

import (
	"context"
	"testing"
	"time"

	"kommshop-catalog/internal/domain"
	"kommshop-catalog/internal/query"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func createTestCategory(t *testing.T, name string) *domain.Category {
	t.Helper()
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        name + " " + uuid.New().String(),
		Description: "Test category description",
		CreatedAt:   time.Now(),
	}
	if err := NewCategoryRepository(testDB).Create(context.Background(), category); err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	return category
}

// Product creation preserves attributes and denormalizes the category name
func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	productRepo := NewProductRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(name string, description string, price float64) bool {
			ctx := context.Background()

			category := createTestCategory(t, "Creation")

			product := &domain.Product{
				ID:          uuid.New(),
				Name:        name + " " + uuid.New().String(),
				Description: description,
				Price:       price,
				CategoryID:  category.ID,
				CreatedAt:   time.Now(),
				UpdatedAt:   time.Now(),
			}

			created, err := productRepo.Create(ctx, product)
			if err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			retrieved, err := productRepo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}
			if retrieved == nil {
				t.Logf("FAIL: Product not found after create")
				return false
			}

			if retrieved.ID != product.ID {
				t.Logf("FAIL: ID mismatch. Expected %s, got %s", product.ID, retrieved.ID)
				return false
			}

			if retrieved.Name != product.Name {
				t.Logf("FAIL: Name mismatch. Expected %s, got %s", product.Name, retrieved.Name)
				return false
			}

			if retrieved.Description != product.Description {
				t.Logf("FAIL: Description mismatch. Expected %s, got %s", product.Description, retrieved.Description)
				return false
			}

			// Compare prices with small tolerance for floating point
			if retrieved.Price < price-0.01 || retrieved.Price > price+0.01 {
				t.Logf("FAIL: Price mismatch. Expected %f, got %f", price, retrieved.Price)
				return false
			}

			// Reads carry the category name, not just the id
			if retrieved.CategoryName != category.Name {
				t.Logf("FAIL: CategoryName mismatch. Expected %s, got %s", category.Name, retrieved.CategoryName)
				return false
			}
			if created.CategoryName != category.Name {
				t.Logf("FAIL: Create result missing category name, got %s", created.CategoryName)
				return false
			}

			if len(retrieved.FavouritedBy) != 0 {
				t.Logf("FAIL: New product should have no favourites, got %d", len(retrieved.FavouritedBy))
				return false
			}

			if retrieved.CreatedAt.IsZero() || retrieved.UpdatedAt.IsZero() {
				t.Logf("FAIL: Timestamps not set")
				return false
			}

			// Cleanup
			_, _ = productRepo.Delete(ctx, product.ID)
			_, _ = testDB.Exec("DELETE FROM categories WHERE id = $1", category.ID)

			return true
		},
		gen.RegexMatch(`[A-Za-z0-9 ]{3,50}`),       // name
		gen.RegexMatch(`[A-Za-z0-9 .,!?]{10,200}`), // description
		gen.Float64Range(0.01, 9999.99),            // price
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Partial updates touch only the supplied fields
func TestProperty_ProductPartialUpdatesAreReflected(t *testing.T) {
	productRepo := NewProductRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("updating a subset of fields leaves the rest untouched", prop.ForAll(
		func(description1 string, description2 string, price1 float64, price2 float64) bool {
			ctx := context.Background()

			category := createTestCategory(t, "Update")

			product := &domain.Product{
				ID:          uuid.New(),
				Name:        "Updatable " + uuid.New().String(),
				Description: description1,
				Price:       price1,
				CategoryID:  category.ID,
				CreatedAt:   time.Now(),
				UpdatedAt:   time.Now(),
			}

			if _, err := productRepo.Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			updated, err := productRepo.Update(ctx, product.ID, ProductUpdate{
				Description: &description2,
				Price:       &price2,
			})
			if err != nil {
				t.Logf("FAIL: Failed to update product: %v", err)
				return false
			}
			if updated == nil {
				t.Logf("FAIL: Update reported product missing")
				return false
			}

			if updated.Description != description2 {
				t.Logf("FAIL: Description not updated. Expected %s, got %s", description2, updated.Description)
				return false
			}

			if updated.Price < price2-0.01 || updated.Price > price2+0.01 {
				t.Logf("FAIL: Price not updated. Expected %f, got %f", price2, updated.Price)
				return false
			}

			// Untouched fields survive the partial update
			if updated.Name != product.Name {
				t.Logf("FAIL: Name changed by partial update. Expected %s, got %s", product.Name, updated.Name)
				return false
			}
			if updated.CategoryID != category.ID {
				t.Logf("FAIL: CategoryID changed by partial update")
				return false
			}

			// Cleanup
			_, _ = productRepo.Delete(ctx, product.ID)
			_, _ = testDB.Exec("DELETE FROM categories WHERE id = $1", category.ID)

			return true
		},
		gen.RegexMatch(`[A-Za-z0-9 .,!?]{10,200}`), // description1
		gen.RegexMatch(`[A-Za-z0-9 .,!?]{10,200}`), // description2
		gen.Float64Range(0.01, 9999.99),            // price1
		gen.Float64Range(0.01, 9999.99),            // price2
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Favouriting is set-add: repeating the same user changes nothing
func TestProperty_FavouriteIsIdempotent(t *testing.T) {
	productRepo := NewProductRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("favouriting twice with the same user yields one entry", prop.ForAll(
		func(price float64) bool {
			ctx := context.Background()

			category := createTestCategory(t, "Favourite")

			product := &domain.Product{
				ID:         uuid.New(),
				Name:       "Favourable " + uuid.New().String(),
				Price:      price,
				CategoryID: category.ID,
				CreatedAt:  time.Now(),
				UpdatedAt:  time.Now(),
			}
			if _, err := productRepo.Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			userID := uuid.New()

			first, err := productRepo.Update(ctx, product.ID, ProductUpdate{NewFavourite: &userID})
			if err != nil || first == nil {
				t.Logf("FAIL: First favourite failed: %v", err)
				return false
			}
			if len(first.FavouritedBy) != 1 || first.FavouritedBy[0] != userID {
				t.Logf("FAIL: Expected favourites [%s], got %v", userID, first.FavouritedBy)
				return false
			}

			second, err := productRepo.Update(ctx, product.ID, ProductUpdate{NewFavourite: &userID})
			if err != nil || second == nil {
				t.Logf("FAIL: Second favourite failed: %v", err)
				return false
			}
			if len(second.FavouritedBy) != 1 {
				t.Logf("FAIL: Favourite not idempotent, got %v", second.FavouritedBy)
				return false
			}

			// A different user still gets added
			otherID := uuid.New()
			third, err := productRepo.Update(ctx, product.ID, ProductUpdate{NewFavourite: &otherID})
			if err != nil || third == nil {
				t.Logf("FAIL: Third favourite failed: %v", err)
				return false
			}
			if len(third.FavouritedBy) != 2 {
				t.Logf("FAIL: Expected two favourites, got %v", third.FavouritedBy)
				return false
			}

			// Cleanup
			_, _ = productRepo.Delete(ctx, product.ID)
			_, _ = testDB.Exec("DELETE FROM categories WHERE id = $1", category.ID)

			return true
		},
		gen.Float64Range(0.01, 9999.99),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Product deletion removes from catalog
func TestProductDeletionRemovesFromCatalog(t *testing.T) {
	cleanTables(t)
	ctx := context.Background()
	productRepo := NewProductRepository(testDB)

	category := createTestCategory(t, "Deletion")
	product := &domain.Product{
		ID:         uuid.New(),
		Name:       "Doomed " + uuid.New().String(),
		Price:      9.99,
		CategoryID: category.ID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if _, err := productRepo.Create(ctx, product); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	deleted, err := productRepo.Delete(ctx, product.ID)
	if err != nil {
		t.Fatalf("Failed to delete product: %v", err)
	}
	if deleted == nil || deleted.Name != product.Name {
		t.Fatalf("Delete should return the removed product, got %+v", deleted)
	}

	retrieved, err := productRepo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("FindByID after delete errored: %v", err)
	}
	if retrieved != nil {
		t.Fatalf("Expected nil after deletion, got %+v", retrieved)
	}

	// Deleting again reports absence, not an error
	again, err := productRepo.Delete(ctx, product.ID)
	if err != nil {
		t.Fatalf("Second delete errored: %v", err)
	}
	if again != nil {
		t.Fatalf("Second delete should return nil, got %+v", again)
	}
}

// Products whose category was removed disappear from every read
func TestDanglingCategoryReferencesAreExcluded(t *testing.T) {
	cleanTables(t)
	ctx := context.Background()
	productRepo := NewProductRepository(testDB)

	category := createTestCategory(t, "Ephemeral")
	product := &domain.Product{
		ID:         uuid.New(),
		Name:       "Orphaned " + uuid.New().String(),
		Price:      4.50,
		CategoryID: category.ID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if _, err := productRepo.Create(ctx, product); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	// Remove the category out from under the product
	if _, err := testDB.Exec("DELETE FROM categories WHERE id = $1", category.ID); err != nil {
		t.Fatalf("Failed to delete category: %v", err)
	}

	retrieved, err := productRepo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("FindByID errored: %v", err)
	}
	if retrieved != nil {
		t.Fatalf("Expected dangling product to be invisible, got %+v", retrieved)
	}

	all, err := productRepo.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll errored: %v", err)
	}
	for _, p := range all {
		if p.ID == product.ID {
			t.Fatalf("Dangling product leaked into FindAll")
		}
	}
}

// Duplicate product names surface as conflicts
func TestDuplicateProductNameIsConflict(t *testing.T) {
	cleanTables(t)
	ctx := context.Background()
	productRepo := NewProductRepository(testDB)

	category := createTestCategory(t, "Conflict")
	name := "Twice " + uuid.New().String()

	if _, err := productRepo.Create(ctx, &domain.Product{
		ID: uuid.New(), Name: name, Price: 1.00, CategoryID: category.ID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	_, err := productRepo.Create(ctx, &domain.Product{
		ID: uuid.New(), Name: name, Price: 2.00, CategoryID: category.ID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	})
	if err == nil {
		t.Fatal("Expected duplicate name to fail")
	}
	if !domain.IsKind(err, domain.KindConflict) {
		t.Fatalf("Expected conflict kind, got %v", err)
	}
}

// Name search is a case-insensitive substring match
func TestFindAllByNameMatchesSubstringsCaseInsensitively(t *testing.T) {
	cleanTables(t)
	ctx := context.Background()
	productRepo := NewProductRepository(testDB)

	category := createTestCategory(t, "Search")
	names := []string{"Espresso Classic", "Double ESPRESSO", "Latte Macchiato"}
	for _, n := range names {
		if _, err := productRepo.Create(ctx, &domain.Product{
			ID: uuid.New(), Name: n, Price: 10, CategoryID: category.ID,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}); err != nil {
			t.Fatalf("Failed to create product %q: %v", n, err)
		}
	}

	found, err := productRepo.FindAllByName(ctx, "espresso")
	if err != nil {
		t.Fatalf("FindAllByName errored: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(found))
	}

	// Wildcard characters in the search term are literals
	found, err = productRepo.FindAllByName(ctx, "%")
	if err != nil {
		t.Fatalf("FindAllByName errored: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("Expected %% to match nothing, got %d products", len(found))
	}
}

// Pagination pages partition the filtered set and Count agrees with it
func TestFindManyPaginationCoversFilteredSet(t *testing.T) {
	cleanTables(t)
	ctx := context.Background()
	productRepo := NewProductRepository(testDB)

	category := createTestCategory(t, "Paging")
	for i := 0; i < 7; i++ {
		p := &domain.Product{
			ID:         uuid.New(),
			Name:       "Pageable " + string(rune('A'+i)) + " " + uuid.New().String(),
			Price:      float64(i + 1),
			CategoryID: category.ID,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
		if _, err := productRepo.Create(ctx, p); err != nil {
			t.Fatalf("Failed to create product: %v", err)
		}
	}

	q := domain.CatalogQuery{
		Page:    1,
		Limit:   3,
		Filters: &domain.QueryFilters{Name: "Pageable"},
	}

	seen := map[uuid.UUID]bool{}
	for page := 1; ; page++ {
		q.Page = page
		compiled := query.Compile(q)

		products, err := productRepo.FindMany(ctx, compiled)
		if err != nil {
			t.Fatalf("FindMany page %d errored: %v", page, err)
		}
		if len(products) == 0 {
			break
		}
		if len(products) > q.Limit {
			t.Fatalf("Page %d exceeded limit: %d products", page, len(products))
		}
		for _, p := range products {
			if seen[p.ID] {
				t.Fatalf("Product %s appeared on two pages", p.ID)
			}
			seen[p.ID] = true
		}
	}

	if len(seen) != 7 {
		t.Fatalf("Pages covered %d products, want 7", len(seen))
	}

	total, err := productRepo.Count(ctx, query.Compile(q))
	if err != nil {
		t.Fatalf("Count errored: %v", err)
	}
	if total != 7 {
		t.Fatalf("Count = %d, want 7", total)
	}
}
