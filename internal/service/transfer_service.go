package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferService coordinates paired ledger entries for money moving between
// two accounts of the same owner. Both legs are written atomically; a
// single-leg transfer silently corrupts one account's balance, so the repo
// contract never exposes that state.
type TransferService struct {
	transactionRepo domain.TransactionRepository
	accountRepo     domain.AccountRepository
}

// NewTransferService creates a new TransferService
func NewTransferService(transactionRepo domain.TransactionRepository, accountRepo domain.AccountRepository) *TransferService {
	return &TransferService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
	}
}

// CreateTransferInput holds the input for creating a transfer
type CreateTransferInput struct {
	FromAccountID int32
	ToAccountID   int32
	Amount        decimal.Decimal
	Currency      string
	Date          time.Time
	Description   *string
}

// CreateTransfer validates and atomically writes both legs of a transfer.
// The outgoing leg carries TransferRoleOut and contributes negatively to the
// source account; the incoming leg mirrors it on the destination.
func (s *TransferService) CreateTransfer(ctx context.Context, ownerID uuid.UUID, input CreateTransferInput) (*domain.TransferResult, error) {
	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccountTransfer
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		return nil, domain.ErrCurrencyRequired
	}

	fromAccount, err := s.ownedAccount(ctx, ownerID, input.FromAccountID)
	if err != nil {
		return nil, err
	}
	toAccount, err := s.ownedAccount(ctx, ownerID, input.ToAccountID)
	if err != nil {
		return nil, err
	}

	notes, err := normalizeNotes(input.Description)
	if err != nil {
		return nil, err
	}

	pairID := uuid.New()
	outRole := domain.TransferRoleOut
	inRole := domain.TransferRoleIn
	fromID := input.FromAccountID
	toID := input.ToAccountID
	date := input.Date.UTC().Truncate(24 * time.Hour)

	fromLeg := &domain.Transaction{
		OwnerID:        ownerID,
		AccountID:      &fromID,
		Name:           fmt.Sprintf("Transfer to %s", toAccount.Name),
		Amount:         input.Amount,
		Type:           domain.TransactionTypeTransfer,
		Currency:       currency,
		OccurredAt:     date,
		TransferPairID: &pairID,
		TransferRole:   &outRole,
		Notes:          notes,
	}
	toLeg := &domain.Transaction{
		OwnerID:        ownerID,
		AccountID:      &toID,
		Name:           fmt.Sprintf("Transfer from %s", fromAccount.Name),
		Amount:         input.Amount,
		Type:           domain.TransactionTypeTransfer,
		Currency:       currency,
		OccurredAt:     date,
		TransferPairID: &pairID,
		TransferRole:   &inRole,
		Notes:          notes,
	}

	return s.transactionRepo.CreateTransferPair(ctx, fromLeg, toLeg)
}

// GetTransfer returns both legs of a transfer pair.
func (s *TransferService) GetTransfer(ctx context.Context, ownerID uuid.UUID, pairID uuid.UUID) (*domain.TransferResult, error) {
	legs, err := s.transactionRepo.GetTransferPair(ctx, ownerID, pairID)
	if err != nil {
		return nil, err
	}
	return pairResult(legs)
}

// UpdateTransferInput holds the fields that may change on a transfer
type UpdateTransferInput struct {
	Amount      decimal.Decimal
	Date        time.Time
	Description *string
}

// UpdateTransfer edits both legs of a transfer together. Editing a single
// leg is an invariant violation and has no code path here.
func (s *TransferService) UpdateTransfer(ctx context.Context, ownerID uuid.UUID, pairID uuid.UUID, input UpdateTransferInput) (*domain.TransferResult, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	notes, err := normalizeNotes(input.Description)
	if err != nil {
		return nil, err
	}

	legs, err := s.transactionRepo.UpdateTransferPair(ctx, ownerID, pairID, &domain.TransferUpdate{
		Amount:     input.Amount,
		OccurredAt: input.Date.UTC().Truncate(24 * time.Hour),
		Notes:      notes,
	})
	if err != nil {
		return nil, err
	}
	return pairResult(legs)
}

// DeleteTransfer soft-deletes both legs together.
func (s *TransferService) DeleteTransfer(ctx context.Context, ownerID uuid.UUID, pairID uuid.UUID) error {
	return s.transactionRepo.SoftDeleteTransferPair(ctx, ownerID, pairID)
}

func (s *TransferService) ownedAccount(ctx context.Context, ownerID uuid.UUID, accountID int32) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.OwnerID != ownerID {
		// Not ErrAccountNotFound: the handler decides how much to reveal.
		return nil, domain.ErrForbidden
	}
	return account, nil
}

func pairResult(legs []*domain.Transaction) (*domain.TransferResult, error) {
	if len(legs) != 2 {
		return nil, domain.ErrTransferNotFound
	}
	result := &domain.TransferResult{}
	for _, leg := range legs {
		if leg.TransferRole == nil {
			return nil, domain.ErrTransferNotFound
		}
		switch *leg.TransferRole {
		case domain.TransferRoleOut:
			result.FromTransaction = leg
		case domain.TransferRoleIn:
			result.ToTransaction = leg
		}
	}
	if result.FromTransaction == nil || result.ToTransaction == nil {
		return nil, domain.ErrTransferNotFound
	}
	return result, nil
}
