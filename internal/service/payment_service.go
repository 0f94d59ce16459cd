package service

import (
	"context"
	"errors"

	"securevision/internal/domain"
	"securevision/internal/repository"
)

// PaymentService имитация платёжного шлюза. Единственный путь пополнения
// баланса в системе; при интеграции с реальным процессингом компонент
// заменяется целиком, а не расширяется.
type PaymentService struct {
	accounts repository.AccountRepository
	ledger   *LedgerService
}

func NewPaymentService(accounts repository.AccountRepository, ledger *LedgerService) *PaymentService {
	return &PaymentService{accounts: accounts, ledger: ledger}
}

// SimulateTopUp зачисляет amount на аккаунт по внешнему id
func (s *PaymentService) SimulateTopUp(ctx context.Context, externalID int64, amount float64) (*domain.Account, error) {
	if externalID <= 0 || amount <= 0 {
		return nil, ErrInvalidInput
	}
	a, err := s.accounts.GetByExternalID(ctx, externalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnknownAccount
	}
	if err != nil {
		return nil, err
	}
	return s.ledger.Credit(ctx, a.ID, amount)
}
