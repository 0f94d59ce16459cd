package service

import (
	"context"

	"securevision/internal/domain"
	"securevision/internal/repository"
)

// TaskService инкапсулирует логику экрана задач
type TaskService struct {
	repo repository.TaskRepository
}

func NewTaskService(repo repository.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) Create(ctx context.Context, t domain.Task) (*domain.Task, error) {
	if t.Title == "" {
		return nil, ErrInvalidInput
	}
	cp := t
	if err := s.repo.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *TaskService) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *TaskService) Update(ctx context.Context, t domain.Task) (*domain.Task, error) {
	if t.ID <= 0 || t.Title == "" {
		return nil, ErrInvalidInput
	}
	cp := t
	if err := s.repo.Update(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

func (s *TaskService) List(ctx context.Context) ([]domain.Task, error) {
	return s.repo.List(ctx)
}
