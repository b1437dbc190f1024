package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
	"github.com/mohammadpnp/customer-import/internal/infrastructure/repository"
)

func TestCustomerRepositoryCRUDIntegration(t *testing.T) {
	gdb, _ := openTestDB(t)
	ctx := context.Background()
	repo := repository.NewCustomerRepository(gdb)

	created, err := repo.Create(ctx, domain.Customer{Name: "Alice", Phone: "111", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected generated id")
	}

	_, err = repo.Create(ctx, domain.Customer{Name: "Bob_Smith", Address: "100% Main St"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := repo.Update(ctx, domain.Customer{ID: created.ID, Name: "Alicia", Phone: "111"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Alicia" || updated.Email != "" {
		t.Fatalf("unexpected updated customer: %+v", updated)
	}

	if _, err := repo.Update(ctx, domain.Customer{ID: 9999, Name: "ghost"}); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}

	page, err := repo.Search(ctx, domain.SearchFilter{Name: "_", Page: 1, Size: 10})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if page.Total != 1 || page.Items[0].Name != "Bob_Smith" {
		t.Fatalf("expected underscore to match literally, got %+v", page)
	}

	page, err = repo.Search(ctx, domain.SearchFilter{Address: "100%", Page: 1, Size: 10})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("expected one address match, got %d", page.Total)
	}

	total, err := repo.Count(ctx)
	if err != nil || total != 2 {
		t.Fatalf("expected count 2, got %d err=%v", total, err)
	}
	today, err := repo.CountCreatedSince(ctx, time.Now().Add(-time.Hour))
	if err != nil || today != 2 {
		t.Fatalf("expected 2 created in the last hour, got %d err=%v", today, err)
	}

	deleted, err := repo.Delete(ctx, []int64{created.ID})
	if err != nil || deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d err=%v", deleted, err)
	}
	if _, err := repo.GetByID(ctx, created.ID); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}
