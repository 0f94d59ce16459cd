package service

import (
	"context"
	"testing"

	"securevision/internal/domain"
	"securevision/internal/repository"
)

func TestTaskService_CRUD(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewTaskService(repository.NewMemoryTasks(store))

	created, err := svc.Create(ctx, domain.Task{Title: "купити камеру", Description: "до п'ятниці"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	created.Description = "до понеділка"
	if _, err := svc.Update(ctx, *created); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, err := svc.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %d", err, len(list))
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID); err == nil {
		t.Fatalf("expected not found")
	}
}

func TestTaskService_Invalid(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewTaskService(repository.NewMemoryTasks(store))

	if _, err := svc.Create(ctx, domain.Task{Title: ""}); err != ErrInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if err := svc.Delete(ctx, 0); err != ErrInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
