package domain

import "time"

// Account представляет пользователя бота с предоплаченным балансом
type Account struct {
	ID         int64   `json:"id"`
	ExternalID int64   `json:"external_id"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone,omitempty"`
	Balance    float64 `json:"balance"`
}

// CatalogItem система видеонаблюдения из каталога
type CatalogItem struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	CameraCount  int64    `json:"camera_count"`
	CoverageArea int64    `json:"coverage_area"`
	Price        float64  `json:"price"`
	Features     []string `json:"features"`
}

// OrderStatus тип статуса заказа
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order сущность заказа. TotalPrice фиксируется в момент подтверждения
// и не следует за изменениями цены в каталоге.
type Order struct {
	ID            string      `json:"id"`
	AccountID     int64       `json:"account_id"`
	CatalogItemID int64       `json:"catalog_item_id"`
	Phone         string      `json:"phone"`
	TotalPrice    float64     `json:"total_price"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Task запись сопутствующего экрана задач
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OwnerID     int64  `json:"owner_id,omitempty"`
}
