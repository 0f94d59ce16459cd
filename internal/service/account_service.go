package service

import (
	"context"
	"errors"

	"securevision/internal/domain"
	"securevision/internal/repository"
)

// AccountService регистрация и данные аккаунта
type AccountService struct {
	accounts repository.AccountRepository
}

func NewAccountService(accounts repository.AccountRepository) *AccountService {
	return &AccountService{accounts: accounts}
}

// GetOrCreate ленивая регистрация по внешнему id; повторный вызов
// возвращает существующий аккаунт
func (s *AccountService) GetOrCreate(ctx context.Context, externalID int64, name string) (*domain.Account, error) {
	if externalID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.accounts.GetOrCreate(ctx, externalID, name)
}

func (s *AccountService) GetByExternalID(ctx context.Context, externalID int64) (*domain.Account, error) {
	if externalID <= 0 {
		return nil, ErrInvalidInput
	}
	a, err := s.accounts.GetByExternalID(ctx, externalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnknownAccount
	}
	return a, err
}

// SetPhone сохраняет контактный телефон (не короче 10 символов)
func (s *AccountService) SetPhone(ctx context.Context, accountID int64, phone string) error {
	if accountID <= 0 || len(phone) < 10 {
		return ErrInvalidInput
	}
	err := s.accounts.UpdatePhone(ctx, accountID, phone)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUnknownAccount
	}
	return err
}
