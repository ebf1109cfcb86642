package service

import (
	"context"
	"strings"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountService handles account-related business logic
type AccountService struct {
	accountRepo domain.AccountRepository
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo domain.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// CreateAccountInput holds the input for creating an account
type CreateAccountInput struct {
	Name        string
	Type        domain.AccountType
	BaseBalance decimal.Decimal
	Currency    string
}

// CreateAccount creates a new account with validation
func (s *AccountService) CreateAccount(ctx context.Context, ownerID uuid.UUID, input CreateAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxAccountNameLength {
		return nil, domain.ErrNameTooLong
	}
	if !domain.ValidAccountTypes[input.Type] {
		return nil, domain.ErrInvalidAccountType
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		return nil, domain.ErrCurrencyRequired
	}

	account := &domain.Account{
		OwnerID:     ownerID,
		Name:        name,
		Type:        input.Type,
		BaseBalance: input.BaseBalance,
		Currency:    currency,
	}
	return s.accountRepo.Create(ctx, account)
}

// GetAccounts retrieves all active accounts for an owner
func (s *AccountService) GetAccounts(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	return s.accountRepo.ListByOwner(ctx, ownerID)
}

// GetAccount retrieves a single account, enforcing ownership
func (s *AccountService) GetAccount(ctx context.Context, ownerID uuid.UUID, id int32) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return account, nil
}

// RenameAccount updates an account's name
func (s *AccountService) RenameAccount(ctx context.Context, ownerID uuid.UUID, id int32, name string) (*domain.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxAccountNameLength {
		return nil, domain.ErrNameTooLong
	}
	if _, err := s.GetAccount(ctx, ownerID, id); err != nil {
		return nil, err
	}
	return s.accountRepo.Update(ctx, ownerID, id, name)
}

// DeleteAccount soft deletes an account. Its transactions stay in the ledger
// so historical aggregates remain reproducible.
func (s *AccountService) DeleteAccount(ctx context.Context, ownerID uuid.UUID, id int32) error {
	if _, err := s.GetAccount(ctx, ownerID, id); err != nil {
		return err
	}
	return s.accountRepo.SoftDelete(ctx, ownerID, id)
}
