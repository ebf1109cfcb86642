package service

import (
	"context"
	"strings"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction-related business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	accountRepo     domain.AccountRepository
	categoryRepo    domain.CategoryRepository
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, accountRepo domain.AccountRepository, categoryRepo domain.CategoryRepository) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		categoryRepo:    categoryRepo,
	}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	AccountID         int32
	Name              string
	Amount            decimal.Decimal
	Type              domain.TransactionType
	Currency          string
	OccurredAt        *time.Time
	CategoryID        *int32
	IsRecurring       bool
	RecurrenceCadence *domain.RecurrenceCadence
	RecurrenceEndDate *time.Time
	Metadata          map[string]any
	Notes             *string
}

// CreateTransaction creates a new transaction with validation. Transfer rows
// are never created here; they only exist as paired legs made by the
// transfer coordinator.
func (s *TransactionService) CreateTransaction(ctx context.Context, ownerID uuid.UUID, input CreateTransactionInput) (*domain.Transaction, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxTransactionNameLength {
		return nil, domain.ErrNameTooLong
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if !domain.ValidTransactionTypes[input.Type] || input.Type == domain.TransactionTypeTransfer {
		return nil, domain.ErrInvalidTransactionType
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		return nil, domain.ErrCurrencyRequired
	}

	if _, err := s.ownedAccount(ctx, ownerID, input.AccountID); err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if err := s.usableCategory(ctx, ownerID, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	if input.IsRecurring {
		if input.RecurrenceCadence == nil || !domain.ValidCadences[*input.RecurrenceCadence] {
			return nil, domain.ErrInvalidCadence
		}
	}

	notes, err := normalizeNotes(input.Notes)
	if err != nil {
		return nil, err
	}

	occurredAt := time.Now().UTC().Truncate(24 * time.Hour)
	if input.OccurredAt != nil {
		occurredAt = *input.OccurredAt
	}

	accountID := input.AccountID
	transaction := &domain.Transaction{
		OwnerID:           ownerID,
		AccountID:         &accountID,
		Name:              name,
		Amount:            input.Amount,
		Type:              input.Type,
		Currency:          currency,
		OccurredAt:        occurredAt,
		CategoryID:        input.CategoryID,
		IsRecurring:       input.IsRecurring,
		RecurrenceCadence: input.RecurrenceCadence,
		RecurrenceEndDate: input.RecurrenceEndDate,
		Metadata:          input.Metadata,
		Notes:             notes,
	}
	return s.transactionRepo.Create(ctx, transaction)
}

// GetTransactions retrieves transactions for an owner with optional filters and pagination
func (s *TransactionService) GetTransactions(ctx context.Context, ownerID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	return s.transactionRepo.ListByOwner(ctx, ownerID, filters)
}

// GetTransaction retrieves a transaction, enforcing ownership
func (s *TransactionService) GetTransaction(ctx context.Context, ownerID uuid.UUID, id int32) (*domain.Transaction, error) {
	tx, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	if tx.IsDeleted() {
		return nil, domain.ErrTransactionNotFound
	}
	return tx, nil
}

// UpdateTransactionInput holds the input for updating a transaction
type UpdateTransactionInput struct {
	AccountID         int32
	Name              string
	Amount            decimal.Decimal
	Type              domain.TransactionType
	Currency          string
	OccurredAt        time.Time
	CategoryID        *int32
	IsRecurring       bool
	RecurrenceCadence *domain.RecurrenceCadence
	RecurrenceEndDate *time.Time
	Metadata          map[string]any
	Notes             *string
}

// UpdateTransaction updates an existing transaction. Transfer legs are
// rejected: a partial edit of one leg would corrupt the pair invariant, so
// legs only change through the transfer coordinator.
func (s *TransactionService) UpdateTransaction(ctx context.Context, ownerID uuid.UUID, id int32, input UpdateTransactionInput) (*domain.Transaction, error) {
	existing, err := s.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if existing.IsTransferLeg() {
		return nil, domain.ErrTransferLegImmutable
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxTransactionNameLength {
		return nil, domain.ErrNameTooLong
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if !domain.ValidTransactionTypes[input.Type] || input.Type == domain.TransactionTypeTransfer {
		return nil, domain.ErrInvalidTransactionType
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		return nil, domain.ErrCurrencyRequired
	}

	if _, err := s.ownedAccount(ctx, ownerID, input.AccountID); err != nil {
		return nil, err
	}
	if input.CategoryID != nil {
		if err := s.usableCategory(ctx, ownerID, *input.CategoryID); err != nil {
			return nil, err
		}
	}
	if input.IsRecurring {
		if input.RecurrenceCadence == nil || !domain.ValidCadences[*input.RecurrenceCadence] {
			return nil, domain.ErrInvalidCadence
		}
	}

	notes, err := normalizeNotes(input.Notes)
	if err != nil {
		return nil, err
	}

	accountID := input.AccountID
	return s.transactionRepo.Update(ctx, ownerID, id, &domain.Transaction{
		AccountID:         &accountID,
		Name:              name,
		Amount:            input.Amount,
		Type:              input.Type,
		Currency:          currency,
		OccurredAt:        input.OccurredAt,
		CategoryID:        input.CategoryID,
		IsRecurring:       input.IsRecurring,
		RecurrenceCadence: input.RecurrenceCadence,
		RecurrenceEndDate: input.RecurrenceEndDate,
		Metadata:          input.Metadata,
		Notes:             notes,
	})
}

// DeleteTransaction soft deletes a transaction. Transfer legs cascade to the
// whole pair. Deleting an already-deleted transaction is a no-op.
func (s *TransactionService) DeleteTransaction(ctx context.Context, ownerID uuid.UUID, id int32) error {
	tx, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tx.OwnerID != ownerID {
		return domain.ErrForbidden
	}
	if tx.IsDeleted() {
		return nil
	}
	if tx.IsTransferLeg() {
		return s.transactionRepo.SoftDeleteTransferPair(ctx, ownerID, *tx.TransferPairID)
	}
	return s.transactionRepo.SoftDelete(ctx, ownerID, id)
}

// ownedAccount loads an account and checks ownership, translating another
// owner's account into Forbidden rather than NotFound.
func (s *TransactionService) ownedAccount(ctx context.Context, ownerID uuid.UUID, accountID int32) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return account, nil
}

func (s *TransactionService) usableCategory(ctx context.Context, ownerID uuid.UUID, categoryID int32) error {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if !category.AccessibleBy(ownerID) {
		return domain.ErrForbidden
	}
	return nil
}

func normalizeNotes(notes *string) (*string, error) {
	if notes == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > domain.MaxTransactionNotesLen {
		return nil, domain.ErrNotesTooLong
	}
	return &trimmed, nil
}
