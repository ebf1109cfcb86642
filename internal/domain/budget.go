package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget is a spending plan over a date window. BudgetAmount is an optional
// overall cap used when no lines are present. Spent/remaining/progress are
// always computed, never stored.
type Budget struct {
	ID           int32            `json:"id"`
	OwnerID      uuid.UUID        `json:"ownerId"`
	Name         string           `json:"name"`
	BudgetAmount *decimal.Decimal `json:"budgetAmount,omitempty"`
	StartDate    time.Time        `json:"startDate"`
	EndDate      time.Time        `json:"endDate"`
	IsRecurrent  bool             `json:"isRecurrent"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	DeletedAt    *time.Time       `json:"deletedAt,omitempty"`
}

// IsDeleted reports whether the budget has been soft-deleted.
func (b *Budget) IsDeleted() bool {
	return b.DeletedAt != nil
}

// BudgetLine allocates part of a budget to one category. The category is
// unique within a budget.
type BudgetLine struct {
	ID         int32           `json:"id"`
	BudgetID   int32           `json:"budgetId"`
	CategoryID int32           `json:"categoryId"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	DeletedAt  *time.Time      `json:"deletedAt,omitempty"`
}

// BudgetLineProgress is the computed view of one budget line.
type BudgetLineProgress struct {
	CategoryID         int32           `json:"categoryId"`
	Amount             decimal.Decimal `json:"amount"`
	SpentAmount        decimal.Decimal `json:"spentAmount"`
	RemainingAmount    decimal.Decimal `json:"remainingAmount"` // may go negative on overspend
	ProgressPercentage float64         `json:"progressPercentage"` // uncapped above 100
}

// BudgetTotals aggregates progress across all lines of a budget.
type BudgetTotals struct {
	TotalBudget               decimal.Decimal `json:"totalBudget"`
	TotalSpent                decimal.Decimal `json:"totalSpent"`
	TotalRemaining            decimal.Decimal `json:"totalRemaining"`
	OverallProgressPercentage float64         `json:"overallProgressPercentage"`
}

// BudgetDetails is the full computed view of a budget for its resolved
// period window.
type BudgetDetails struct {
	Budget      *Budget              `json:"budget"`
	PeriodStart time.Time            `json:"periodStart"`
	PeriodEnd   time.Time            `json:"periodEnd"`
	Lines       []BudgetLineProgress `json:"budgetLines"`
	Totals      BudgetTotals         `json:"totalMetrics"`
}

type BudgetRepository interface {
	// GetWithLines returns the budget regardless of owner so callers can
	// distinguish Forbidden from NotFound, along with its non-deleted lines.
	GetWithLines(ctx context.Context, id int32) (*Budget, []*BudgetLine, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Budget, error)
	// CreateWithLines and ReplaceLines are atomic: a half-applied edit never
	// persists. ReplaceLines removes lines absent from the new set, inserts
	// new ones and updates changed ones in a single transaction.
	CreateWithLines(ctx context.Context, budget *Budget, lines []*BudgetLine) (*Budget, []*BudgetLine, error)
	UpdateWithLines(ctx context.Context, ownerID uuid.UUID, id int32, budget *Budget, lines []*BudgetLine) (*Budget, []*BudgetLine, error)
	// SoftDelete soft-deletes the budget and cascades to its lines.
	SoftDelete(ctx context.Context, ownerID uuid.UUID, id int32) error
}
