package service

import (
	"context"
	"errors"

	"securevision/internal/domain"
	"securevision/internal/repository"
)

// CatalogService подбор систем по числовым параметрам. Только чтение.
type CatalogService struct {
	catalog repository.CatalogRepository
}

func NewCatalogService(catalog repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalog: catalog}
}

var ErrInvalidInput = errors.New("invalid input")

// Search фильтрует каталог: нижние границы по камерам и площади включительно,
// верхняя по цене включительно. Пустой результат — не ошибка.
func (s *CatalogService) Search(ctx context.Context, f repository.CatalogFilter) ([]domain.CatalogItem, error) {
	if f.MinCameras < 0 || f.MinArea < 0 {
		return nil, ErrInvalidInput
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return nil, ErrInvalidInput
	}
	return s.catalog.List(ctx, f)
}

// GetItem возвращает позицию каталога по id
func (s *CatalogService) GetItem(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.catalog.GetByID(ctx, id)
}
