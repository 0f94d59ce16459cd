package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"securevision/internal/domain"
	"securevision/internal/repository"
)

// CheckoutService оформляет покупку: списание с баланса и создание заказа
// выполняются как одна единица работы — либо записаны оба, либо ни одного.
type CheckoutService struct {
	accounts repository.AccountRepository
	catalog  repository.CatalogRepository
	orders   repository.OrderRepository
	tx       repository.TxManager
}

func NewCheckoutService(accounts repository.AccountRepository, catalog repository.CatalogRepository, orders repository.OrderRepository, tx repository.TxManager) *CheckoutService {
	return &CheckoutService{accounts: accounts, catalog: catalog, orders: orders, tx: tx}
}

// Checkout заново читает цену и баланс в момент подтверждения — значения,
// собранные раньше по ходу диалога, могли устареть. Возвращает заказ и
// баланс после списания.
func (s *CheckoutService) Checkout(ctx context.Context, accountID, itemID int64, phone string) (*domain.Order, float64, error) {
	if accountID <= 0 || itemID <= 0 {
		return nil, 0, ErrInvalidInput
	}
	var (
		created    *domain.Order
		newBalance float64
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		item, err := s.catalog.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		a, err := s.accounts.GetByID(ctx, accountID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnknownAccount
		}
		if err != nil {
			return err
		}
		if a.Balance < item.Price {
			return ErrInsufficientFunds
		}
		a.Balance -= item.Price
		if err := s.accounts.UpdateBalance(ctx, a.ID, a.Balance); err != nil {
			return err
		}
		o := domain.Order{
			ID:            uuid.NewString(),
			AccountID:     a.ID,
			CatalogItemID: item.ID,
			Phone:         phone,
			TotalPrice:    item.Price,
			Status:        domain.OrderStatusPaid,
		}
		if err := s.orders.Create(ctx, &o); err != nil {
			// откат транзакции вернёт списанное; половинчатое состояние недопустимо
			log.Printf("checkout: order insert failed after debit, rolling back: %v", err)
			return err
		}
		created = &o
		newBalance = a.Balance
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return created, newBalance, nil
}

// ListOrders возвращает заказы аккаунта, новые первыми
func (s *CheckoutService) ListOrders(ctx context.Context, accountID int64) ([]domain.Order, error) {
	if accountID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.orders.ListByAccount(ctx, accountID)
}
