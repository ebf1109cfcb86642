package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCash       AccountType = "cash"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeOther      AccountType = "other"
)

// ValidAccountTypes is the closed set accepted on create/update.
var ValidAccountTypes = map[AccountType]bool{
	AccountTypeChecking:   true,
	AccountTypeSavings:    true,
	AccountTypeCash:       true,
	AccountTypeCreditCard: true,
	AccountTypeInvestment: true,
	AccountTypeOther:      true,
}

// Account is a user-owned money container. BaseBalance is stored in the
// account's natural sign; credit_card accounts are liabilities and their
// stored balance is inverted when contributing to displayed balances.
type Account struct {
	ID          int32           `json:"id"`
	OwnerID     uuid.UUID       `json:"ownerId"`
	Name        string          `json:"name"`
	Type        AccountType     `json:"type"`
	BaseBalance decimal.Decimal `json:"baseBalance"`
	Currency    string          `json:"currency"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   *time.Time      `json:"deletedAt,omitempty"`
}

// IsDeleted reports whether the account has been soft-deleted.
func (a *Account) IsDeleted() bool {
	return a.DeletedAt != nil
}

type AccountRepository interface {
	Create(ctx context.Context, account *Account) (*Account, error)
	// GetByID returns the account regardless of owner so callers can
	// distinguish Forbidden from NotFound. Soft-deleted rows are excluded.
	GetByID(ctx context.Context, id int32) (*Account, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Account, error)
	Update(ctx context.Context, ownerID uuid.UUID, id int32, name string) (*Account, error)
	SoftDelete(ctx context.Context, ownerID uuid.UUID, id int32) error
}
