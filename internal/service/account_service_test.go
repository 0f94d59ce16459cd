package service

import (
	"context"
	"testing"

	"securevision/internal/repository"
)

func TestAccountService_GetOrCreateIdempotent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewAccountService(store)

	a, err := svc.GetOrCreate(ctx, 1001, "Oksana")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := svc.GetOrCreate(ctx, 1001, "Oksana")
	if err != nil || b.ID != a.ID {
		t.Fatalf("expected same account, got %v %+v", err, b)
	}

	if _, err := svc.GetOrCreate(ctx, 0, "x"); err != ErrInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestAccountService_SetPhone(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewAccountService(store)
	a, _ := svc.GetOrCreate(ctx, 1, "A")

	if err := svc.SetPhone(ctx, a.ID, "12345"); err != ErrInvalidInput {
		t.Fatalf("expected invalid input for short phone, got %v", err)
	}
	if err := svc.SetPhone(ctx, a.ID, "+380501234567"); err != nil {
		t.Fatalf("set phone: %v", err)
	}
	got, err := svc.GetByExternalID(ctx, 1)
	if err != nil || got.Phone != "+380501234567" {
		t.Fatalf("phone not saved: %v %+v", err, got)
	}
}

func TestAccountService_Unknown(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewAccountService(store)
	if _, err := svc.GetByExternalID(ctx, 5); err != ErrUnknownAccount {
		t.Fatalf("expected unknown account, got %v", err)
	}
}
