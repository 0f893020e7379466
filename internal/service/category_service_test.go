package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"kommshop-catalog/internal/domain"

	"github.com/google/uuid"
)

func mustCategory(name string) *domain.Category {
	return &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
	}
}

func TestResolveByID(t *testing.T) {
	ctx := context.Background()
	category := mustCategory("Beverages")
	svc := NewCategoryService(newFakeCategoryRepo(category))

	resolved, err := svc.Resolve(ctx, category.ID.String())
	if err != nil {
		t.Fatalf("Resolve errored: %v", err)
	}
	if resolved.ID != category.ID {
		t.Fatalf("Resolved wrong category: %s", resolved.ID)
	}
}

func TestResolveByUnknownIDFailsAtTheGate(t *testing.T) {
	ctx := context.Background()
	svc := NewCategoryService(newFakeCategoryRepo(mustCategory("Beverages")))

	_, err := svc.Resolve(ctx, uuid.New().String())
	if err == nil {
		t.Fatal("Expected resolution to fail")
	}
	if !domain.IsKind(err, domain.KindInvalidCategory) {
		t.Fatalf("Expected invalid_category, got %v", err)
	}

	var classified *domain.Error
	if !errors.As(err, &classified) || classified.Origin != domain.OriginPreWriteHook {
		t.Fatalf("Expected pre_write_hook origin, got %v", err)
	}
}

// An id-shaped token is never retried as a name fragment
func TestResolveIDTokenDoesNotFallBackToNames(t *testing.T) {
	ctx := context.Background()
	repo := newFakeCategoryRepo(mustCategory("Beverages"))
	svc := NewCategoryService(repo)

	_, _ = svc.Resolve(ctx, uuid.New().String())

	if repo.patternCalls != 0 {
		t.Fatalf("Expected no name lookups for an id token, got %d", repo.patternCalls)
	}
}

func TestResolveByNameFragment(t *testing.T) {
	ctx := context.Background()
	category := mustCategory("Hot Beverages")
	svc := NewCategoryService(newFakeCategoryRepo(category, mustCategory("Snacks")))

	resolved, err := svc.Resolve(ctx, "beverage")
	if err != nil {
		t.Fatalf("Resolve errored: %v", err)
	}
	if resolved.ID != category.ID {
		t.Fatalf("Resolved wrong category: %s", resolved.Name)
	}
}

// With several candidates the lowest id wins, every time
func TestResolveAmbiguousFragmentIsDeterministic(t *testing.T) {
	ctx := context.Background()
	a := mustCategory("Beverages Hot")
	b := mustCategory("Beverages Cold")
	svc := NewCategoryService(newFakeCategoryRepo(a, b))

	want := a
	if b.ID.String() < a.ID.String() {
		want = b
	}

	for i := 0; i < 10; i++ {
		resolved, err := svc.Resolve(ctx, "beverages")
		if err != nil {
			t.Fatalf("Resolve errored: %v", err)
		}
		if resolved.ID != want.ID {
			t.Fatalf("Resolution flapped: got %s, want %s", resolved.ID, want.ID)
		}
	}
}

func TestResolveNoMatchFailsAtTheGate(t *testing.T) {
	ctx := context.Background()
	svc := NewCategoryService(newFakeCategoryRepo(mustCategory("Beverages")))

	_, err := svc.Resolve(ctx, "furniture")
	if err == nil {
		t.Fatal("Expected resolution to fail")
	}
	if !domain.IsKind(err, domain.KindInvalidCategory) {
		t.Fatalf("Expected invalid_category, got %v", err)
	}
	if !strings.Contains(err.Error(), "furniture") {
		t.Fatalf("Expected the token in the message, got %q", err.Error())
	}
}

func TestDeleteUnknownCategoryIsInvalidCategory(t *testing.T) {
	ctx := context.Background()
	svc := NewCategoryService(newFakeCategoryRepo())

	_, err := svc.Delete(ctx, uuid.New())
	if err == nil {
		t.Fatal("Expected delete to fail")
	}
	if !domain.IsKind(err, domain.KindInvalidCategory) {
		t.Fatalf("Expected invalid_category, got %v", err)
	}

	var classified *domain.Error
	if !errors.As(err, &classified) || classified.Origin != domain.OriginService {
		t.Fatalf("Expected service origin, got %v", err)
	}
}

func TestDeleteReportsWhatWasRemoved(t *testing.T) {
	ctx := context.Background()
	category := mustCategory("Beverages")
	svc := NewCategoryService(newFakeCategoryRepo(category))

	msg, err := svc.Delete(ctx, category.ID)
	if err != nil {
		t.Fatalf("Delete errored: %v", err)
	}
	if !strings.Contains(msg, category.ID.String()) || !strings.Contains(msg, category.Name) {
		t.Fatalf("Message missing id or name: %q", msg)
	}
}

func TestFindAllWithNameNarrows(t *testing.T) {
	ctx := context.Background()
	beverages := mustCategory("Beverages")
	svc := NewCategoryService(newFakeCategoryRepo(beverages, mustCategory("Snacks")))

	found, err := svc.FindAll(ctx, "bever")
	if err != nil {
		t.Fatalf("FindAll errored: %v", err)
	}
	if len(found) != 1 || found[0].ID != beverages.ID {
		t.Fatalf("Expected the beverages category, got %v", found)
	}

	all, err := svc.FindAll(ctx, "")
	if err != nil {
		t.Fatalf("FindAll errored: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected both categories, got %d", len(all))
	}
}
