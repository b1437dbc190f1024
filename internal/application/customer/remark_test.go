package customer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	app "github.com/mohammadpnp/customer-import/internal/application/customer"
	domain "github.com/mohammadpnp/customer-import/internal/domain/customer"
)

func TestCustomerRemarkLifecycle(t *testing.T) {
	t.Parallel()

	customers := newFakeCustomerRepository(domain.Customer{ID: 7, Name: "Alice"})
	remarks := newFakeRemarkRepository()
	get := app.NewGetCustomerRemark(remarks)
	save := app.NewSaveCustomerRemark(customers, remarks)
	del := app.NewDeleteCustomerRemark(remarks)
	ctx := context.Background()

	empty, err := get.Execute(ctx, app.GetCustomerRemarkInput{CustomerID: 7})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if empty.HasRemark || empty.CustomerID != 7 {
		t.Fatalf("expected no remark yet, got %+v", empty)
	}

	saved, err := save.Execute(ctx, app.SaveCustomerRemarkInput{CustomerID: 7, Remark: "  call back on Monday  "})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !saved.HasRemark || saved.Remark != "call back on Monday" || saved.UpdatedAt == nil {
		t.Fatalf("unexpected saved remark: %+v", saved)
	}

	got, err := get.Execute(ctx, app.GetCustomerRemarkInput{CustomerID: 7})
	if err != nil || got.Remark != "call back on Monday" {
		t.Fatalf("expected stored remark, got %+v err=%v", got, err)
	}

	if err := del.Execute(ctx, app.DeleteCustomerRemarkInput{CustomerID: 7}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if after, _ := get.Execute(ctx, app.GetCustomerRemarkInput{CustomerID: 7}); after.HasRemark {
		t.Fatalf("expected remark to be gone, got %+v", after)
	}
}

func TestSaveCustomerRemarkValidation(t *testing.T) {
	t.Parallel()

	customers := newFakeCustomerRepository(domain.Customer{ID: 7, Name: "Alice"})
	remarks := newFakeRemarkRepository()
	save := app.NewSaveCustomerRemark(customers, remarks)
	ctx := context.Background()

	if _, err := save.Execute(ctx, app.SaveCustomerRemarkInput{CustomerID: 0, Remark: "x"}); !errors.Is(err, app.ErrInvalidCustomerID) {
		t.Fatalf("expected ErrInvalidCustomerID, got %v", err)
	}
	if _, err := save.Execute(ctx, app.SaveCustomerRemarkInput{CustomerID: 8, Remark: "x"}); !errors.Is(err, app.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if _, err := save.Execute(ctx, app.SaveCustomerRemarkInput{CustomerID: 7, Remark: strings.Repeat("备", 2001)}); !errors.Is(err, app.ErrRemarkTooLong) {
		t.Fatalf("expected ErrRemarkTooLong, got %v", err)
	}
	if len(remarks.remarks) != 0 {
		t.Fatalf("expected nothing saved, got %+v", remarks.remarks)
	}

	remarks.err = errBoom
	if _, err := save.Execute(ctx, app.SaveCustomerRemarkInput{CustomerID: 7, Remark: "x"}); !errors.Is(err, app.ErrCustomerRemark) {
		t.Fatalf("expected ErrCustomerRemark, got %v", err)
	}
	if err := app.NewDeleteCustomerRemark(remarks).Execute(ctx, app.DeleteCustomerRemarkInput{CustomerID: 7}); !errors.Is(err, app.ErrCustomerRemark) {
		t.Fatalf("expected ErrCustomerRemark, got %v", err)
	}
}
