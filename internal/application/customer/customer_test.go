package customer_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	app "github.com/mohammadpnp/customer-import/internal/application/customer"
	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

func TestGetCustomerByID(t *testing.T) {
	t.Parallel()

	repo := newFakeCustomerRepository(domain.Customer{ID: 7, Name: "Alice", Phone: "111", TaskID: "task-1"})
	uc := app.NewGetCustomerByID(repo)

	out, err := uc.Execute(context.Background(), app.GetCustomerByIDInput{ID: 7})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Name != "Alice" || out.TaskID != "task-1" {
		t.Fatalf("unexpected output: %+v", out)
	}

	if _, err := uc.Execute(context.Background(), app.GetCustomerByIDInput{ID: 0}); !errors.Is(err, app.ErrInvalidCustomerID) {
		t.Fatalf("expected ErrInvalidCustomerID, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), app.GetCustomerByIDInput{ID: 8}); !errors.Is(err, app.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}

	repo.err = errBoom
	if _, err := uc.Execute(context.Background(), app.GetCustomerByIDInput{ID: 7}); !errors.Is(err, app.ErrGetCustomer) {
		t.Fatalf("expected ErrGetCustomer, got %v", err)
	}
}

func TestSaveCustomerCreateAndUpdate(t *testing.T) {
	t.Parallel()

	repo := newFakeCustomerRepository()
	cache := &fakeCountCache{}
	uc := app.NewSaveCustomer(repo, cache)

	created, err := uc.Execute(context.Background(), app.SaveCustomerInput{Name: " Bob ", Phone: " 222 "})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.ID == 0 || created.Name != "Bob" || created.Phone != "222" {
		t.Fatalf("unexpected created customer: %+v", created)
	}
	if cache.invalidated != 1 {
		t.Fatalf("expected cache invalidation on create, got %d", cache.invalidated)
	}

	updated, err := uc.Execute(context.Background(), app.SaveCustomerInput{ID: created.ID, Name: "Bobby"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Name != "Bobby" || updated.Phone != "" {
		t.Fatalf("unexpected updated customer: %+v", updated)
	}

	if _, err := uc.Execute(context.Background(), app.SaveCustomerInput{ID: 999, Name: "X"}); !errors.Is(err, app.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), app.SaveCustomerInput{Name: "  "}); !errors.Is(err, app.ErrInvalidCustomer) {
		t.Fatalf("expected ErrInvalidCustomer, got %v", err)
	}
}

func TestSaveCustomerRejectsOverlongFields(t *testing.T) {
	t.Parallel()

	repo := newFakeCustomerRepository()
	uc := app.NewSaveCustomer(repo, &fakeCountCache{})

	_, err := uc.Execute(context.Background(), app.SaveCustomerInput{Name: "Bob", Phone: strings.Repeat("9", domain.MaxPhoneLength+1)})
	if !errors.Is(err, app.ErrInvalidCustomer) {
		t.Fatalf("expected ErrInvalidCustomer, got %v", err)
	}
	if !strings.Contains(err.Error(), "phone") {
		t.Fatalf("expected the error to name the field, got %v", err)
	}
	if len(repo.customers) != 0 {
		t.Fatalf("expected nothing stored, got %d customers", len(repo.customers))
	}
}

func TestDeleteCustomersInGroups(t *testing.T) {
	t.Parallel()

	customers := make([]domain.Customer, 0, 1200)
	ids := make([]int64, 0, 1200)
	for i := int64(1); i <= 1200; i++ {
		customers = append(customers, domain.Customer{ID: i, Name: "c"})
		ids = append(ids, i)
	}
	repo := newFakeCustomerRepository(customers...)
	cache := &fakeCountCache{}
	uc := app.NewDeleteCustomers(repo, cache)

	out, err := uc.Execute(context.Background(), app.DeleteCustomersInput{IDs: ids})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Deleted != 1200 {
		t.Fatalf("expected 1200 deleted, got %d", out.Deleted)
	}
	if len(repo.deleted) != 3 || len(repo.deleted[2]) != 200 {
		t.Fatalf("expected 3 groups, got %d", len(repo.deleted))
	}
	if cache.invalidated != 1 {
		t.Fatalf("expected one cache invalidation, got %d", cache.invalidated)
	}

	if _, err := uc.Execute(context.Background(), app.DeleteCustomersInput{IDs: []int64{5}}); !errors.Is(err, app.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), app.DeleteCustomersInput{}); !errors.Is(err, app.ErrInvalidCustomerID) {
		t.Fatalf("expected ErrInvalidCustomerID, got %v", err)
	}
}

func TestSearchCustomersTrimsAndPages(t *testing.T) {
	t.Parallel()

	repo := newFakeCustomerRepository(domain.Customer{ID: 1, Name: "Alice"})
	uc := app.NewSearchCustomers(repo)

	out, err := uc.Execute(context.Background(), app.SearchCustomersInput{Name: " Ali ", Size: 10000})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.filter.Name != "Ali" || repo.filter.Page != 1 || repo.filter.Size != 500 {
		t.Fatalf("unexpected filter: %+v", repo.filter)
	}
	if out.Total != 1 || len(out.Items) != 1 {
		t.Fatalf("unexpected output: %+v", out)
	}

	repo.err = errBoom
	if _, err := uc.Execute(context.Background(), app.SearchCustomersInput{}); !errors.Is(err, app.ErrSearchCustomers) {
		t.Fatalf("expected ErrSearchCustomers, got %v", err)
	}
}

func TestCountCustomersUsesCache(t *testing.T) {
	t.Parallel()

	repo := newFakeCustomerRepository()
	repo.count = 42
	cache := &fakeCountCache{}
	uc := app.NewCountCustomers(repo, cache, zerolog.Nop())

	out, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Count != 42 || repo.countCalls != 1 {
		t.Fatalf("expected database count on miss, got %d after %d calls", out.Count, repo.countCalls)
	}
	if len(cache.sets) != 1 || cache.sets[0] != 42 {
		t.Fatalf("expected count to be cached, got %v", cache.sets)
	}

	cache.value, cache.ok = 40, true
	out, err = uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Count != 40 || repo.countCalls != 1 {
		t.Fatalf("expected cached count, got %d after %d calls", out.Count, repo.countCalls)
	}

	cache.getErr = errBoom
	out, err = uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("expected cache error to fall through, got %v", err)
	}
	if out.Count != 42 {
		t.Fatalf("expected database count, got %d", out.Count)
	}
}

func TestCountTodayCustomersStartsAtMidnight(t *testing.T) {
	t.Parallel()

	repo := newFakeCustomerRepository()
	repo.count = 3
	now := time.Date(2024, 5, 6, 15, 4, 5, 0, time.UTC)
	uc := app.NewCountTodayCustomers(repo, func() time.Time { return now })

	out, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Count != 3 {
		t.Fatalf("expected 3, got %d", out.Count)
	}
	if !repo.since.Equal(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected since: %v", repo.since)
	}
}
