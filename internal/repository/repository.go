package repository

import (
	"context"
	"errors"

	"securevision/internal/domain"
)

// ErrNotFound возвращается, когда сущность не найдена
var ErrNotFound = errors.New("not found")

// CatalogFilter параметры подбора систем. Нулевые значения — без ограничения.
type CatalogFilter struct {
	MinCameras int64
	MinArea    int64
	MaxPrice   *float64
}

// AccountRepository интерфейс репозитория аккаунтов
type AccountRepository interface {
	GetOrCreate(ctx context.Context, externalID int64, name string) (*domain.Account, error)
	GetByExternalID(ctx context.Context, externalID int64) (*domain.Account, error)
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	UpdateBalance(ctx context.Context, id int64, balance float64) error
	UpdatePhone(ctx context.Context, id int64, phone string) error
}

// CatalogRepository интерфейс репозитория каталога. Каталог — справочные
// данные: после посева записи не меняются.
type CatalogRepository interface {
	Create(ctx context.Context, item *domain.CatalogItem) error
	GetByID(ctx context.Context, id int64) (*domain.CatalogItem, error)
	List(ctx context.Context, f CatalogFilter) ([]domain.CatalogItem, error)
	Count(ctx context.Context) (int64, error)
}

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByAccount(ctx context.Context, accountID int64) ([]domain.Order, error)
}

// TaskRepository интерфейс репозитория задач
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Task, error)
}

// TxManager абстракция транзакции. Для in-memory — глобальная блокировка записи,
// для sqlite — транзакция database/sql в контексте.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
