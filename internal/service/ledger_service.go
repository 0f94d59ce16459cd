package service

import (
	"context"
	"errors"

	"securevision/internal/domain"
	"securevision/internal/repository"
)

// LedgerService реализует операции над балансом: пополнение и списание.
// Проверка средств и запись нового баланса выполняются внутри одной
// транзакции, поэтому параллельные операции по одному аккаунту не могут
// увести баланс в минус.
type LedgerService struct {
	accounts repository.AccountRepository
	tx       repository.TxManager
}

func NewLedgerService(accounts repository.AccountRepository, tx repository.TxManager) *LedgerService {
	return &LedgerService{accounts: accounts, tx: tx}
}

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownAccount    = errors.New("unknown account")
)

// Credit увеличивает баланс на amount (> 0)
func (s *LedgerService) Credit(ctx context.Context, accountID int64, amount float64) (*domain.Account, error) {
	if accountID <= 0 || amount <= 0 {
		return nil, ErrInvalidInput
	}
	var updated *domain.Account
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		a, err := s.accounts.GetByID(ctx, accountID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnknownAccount
		}
		if err != nil {
			return err
		}
		a.Balance += amount
		if err := s.accounts.UpdateBalance(ctx, a.ID, a.Balance); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Debit списывает amount (> 0) и возвращает новый баланс.
// При нехватке средств баланс не меняется.
func (s *LedgerService) Debit(ctx context.Context, accountID int64, amount float64) (float64, error) {
	if accountID <= 0 || amount <= 0 {
		return 0, ErrInvalidInput
	}
	var newBalance float64
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		a, err := s.accounts.GetByID(ctx, accountID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnknownAccount
		}
		if err != nil {
			return err
		}
		if a.Balance < amount {
			return ErrInsufficientFunds
		}
		a.Balance -= amount
		if err := s.accounts.UpdateBalance(ctx, a.ID, a.Balance); err != nil {
			return err
		}
		newBalance = a.Balance
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}
