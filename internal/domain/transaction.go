package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome     TransactionType = "income"
	TransactionTypeExpense    TransactionType = "expense"
	TransactionTypeTransfer   TransactionType = "transfer"
	TransactionTypeInvestment TransactionType = "investment"
	TransactionTypeOther      TransactionType = "other"
)

// ValidTransactionTypes is the closed set accepted on create/update.
var ValidTransactionTypes = map[TransactionType]bool{
	TransactionTypeIncome:     true,
	TransactionTypeExpense:    true,
	TransactionTypeTransfer:   true,
	TransactionTypeInvestment: true,
	TransactionTypeOther:      true,
}

// TransferRole marks which side of a transfer pair a leg is. Both legs are
// stored as type transfer with a positive amount; the role decides the sign
// of the leg's balance contribution.
type TransferRole string

const (
	TransferRoleOut TransferRole = "out"
	TransferRoleIn  TransferRole = "in"
)

type RecurrenceCadence string

const (
	CadenceDaily   RecurrenceCadence = "daily"
	CadenceWeekly  RecurrenceCadence = "weekly"
	CadenceMonthly RecurrenceCadence = "monthly"
	CadenceYearly  RecurrenceCadence = "yearly"
)

var ValidCadences = map[RecurrenceCadence]bool{
	CadenceDaily:   true,
	CadenceWeekly:  true,
	CadenceMonthly: true,
	CadenceYearly:  true,
}

// Transaction is one signed monetary event in the ledger. Amount is always
// positive; direction is derived from Type (and TransferRole for transfer
// legs), never stored as a negative amount.
type Transaction struct {
	ID                int32             `json:"id"`
	OwnerID           uuid.UUID         `json:"ownerId"`
	AccountID         *int32            `json:"accountId,omitempty"` // nullable only for orphaned legacy rows
	Name              string            `json:"name"`
	Amount            decimal.Decimal   `json:"amount"`
	Type              TransactionType   `json:"type"`
	Currency          string            `json:"currency"`
	OccurredAt        time.Time         `json:"occurredAt"`
	CategoryID        *int32            `json:"categoryId,omitempty"`
	IsRecurring       bool              `json:"isRecurring"`
	RecurrenceCadence *RecurrenceCadence `json:"recurrenceCadence,omitempty"`
	RecurrenceEndDate *time.Time        `json:"recurrenceEndDate,omitempty"`
	Metadata          map[string]any    `json:"metadata,omitempty"` // opaque, never interpreted by the engine
	TransferPairID    *uuid.UUID        `json:"transferPairId,omitempty"`
	TransferRole      *TransferRole     `json:"transferRole,omitempty"`
	Notes             *string           `json:"notes,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
	DeletedAt         *time.Time        `json:"deletedAt,omitempty"`
}

// IsDeleted reports whether the transaction has been soft-deleted.
func (t *Transaction) IsDeleted() bool {
	return t.DeletedAt != nil
}

// IsTransferLeg reports whether the transaction is one side of a transfer
// pair. Legs may only be mutated together, through the transfer operations.
func (t *Transaction) IsTransferLeg() bool {
	return t.TransferPairID != nil
}

type TransactionFilters struct {
	AccountID  *int32
	CategoryID *int32
	StartDate  *time.Time
	EndDate    *time.Time
	Type       *TransactionType
	Page       int32
	PageSize   int32
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

// TransferResult holds both legs of a newly created or updated transfer.
type TransferResult struct {
	FromTransaction *Transaction `json:"fromTransaction"`
	ToTransaction   *Transaction `json:"toTransaction"`
}

// TransferUpdate carries the fields that may change on an existing transfer;
// both legs receive the same values.
type TransferUpdate struct {
	Amount     decimal.Decimal
	OccurredAt time.Time
	Notes      *string
}

type TransactionRepository interface {
	Create(ctx context.Context, transaction *Transaction) (*Transaction, error)
	// GetByID returns the transaction regardless of owner so callers can
	// distinguish Forbidden from NotFound. Soft-deleted rows are returned
	// with DeletedAt set, so delete can stay idempotent.
	GetByID(ctx context.Context, id int32) (*Transaction, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, filters *TransactionFilters) (*PaginatedTransactions, error)
	// ListActiveByOwner returns every non-deleted transaction for the owner
	// in a single read, for balance aggregation.
	ListActiveByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Transaction, error)
	// ListByDateRange returns non-deleted transactions with occurred_at in
	// [start, end], in a single read, for period and budget aggregation.
	ListByDateRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]*Transaction, error)
	Update(ctx context.Context, ownerID uuid.UUID, id int32, transaction *Transaction) (*Transaction, error)
	SoftDelete(ctx context.Context, ownerID uuid.UUID, id int32) error

	// Transfer pair operations are atomic: both legs or neither.
	CreateTransferPair(ctx context.Context, fromLeg, toLeg *Transaction) (*TransferResult, error)
	GetTransferPair(ctx context.Context, ownerID uuid.UUID, pairID uuid.UUID) ([]*Transaction, error)
	UpdateTransferPair(ctx context.Context, ownerID uuid.UUID, pairID uuid.UUID, update *TransferUpdate) ([]*Transaction, error)
	SoftDeleteTransferPair(ctx context.Context, ownerID uuid.UUID, pairID uuid.UUID) error
}
