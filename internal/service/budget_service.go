package service

import (
	"context"
	"strings"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/centavo/centavo-backend/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetService computes spent/remaining/progress for budgets and manages
// the budget + lines lifecycle.
type BudgetService struct {
	budgetRepo      domain.BudgetRepository
	categoryRepo    domain.CategoryRepository
	transactionRepo domain.TransactionRepository
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, categoryRepo domain.CategoryRepository, transactionRepo domain.TransactionRepository) *BudgetService {
	return &BudgetService{
		budgetRepo:      budgetRepo,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
	}
}

// GetBudgetDetails resolves the budget's period window and aggregates
// matching expense transactions into per-line and total progress. The
// explicit now parameter keeps recurrent-window resolution deterministic.
func (s *BudgetService) GetBudgetDetails(ctx context.Context, ownerID uuid.UUID, budgetID int32, now time.Time) (*domain.BudgetDetails, error) {
	budget, lines, err := s.ownedBudget(ctx, ownerID, budgetID)
	if err != nil {
		return nil, err
	}

	start, end := ResolveBudgetWindow(budget, now)

	// One read per aggregation call: rows summed here all come from the
	// same commit point.
	transactions, err := s.transactionRepo.ListByDateRange(ctx, ownerID, start, end)
	if err != nil {
		return nil, err
	}

	spentByCategory := make(map[int32]decimal.Decimal)
	for _, tx := range transactions {
		if tx.IsDeleted() || tx.Type != domain.TransactionTypeExpense || tx.CategoryID == nil {
			continue
		}
		spentByCategory[*tx.CategoryID] = spentByCategory[*tx.CategoryID].Add(tx.Amount)
	}

	details := &domain.BudgetDetails{
		Budget:      budget,
		PeriodStart: start,
		PeriodEnd:   end,
		Lines:       make([]domain.BudgetLineProgress, 0, len(lines)),
	}

	totalBudget := decimal.Zero
	totalSpent := decimal.Zero
	for _, line := range lines {
		spent := spentByCategory[line.CategoryID]
		details.Lines = append(details.Lines, domain.BudgetLineProgress{
			CategoryID:         line.CategoryID,
			Amount:             line.Amount,
			SpentAmount:        spent,
			RemainingAmount:    line.Amount.Sub(spent),
			ProgressPercentage: progressPercentage(spent, line.Amount),
		})
		totalBudget = totalBudget.Add(line.Amount)
		totalSpent = totalSpent.Add(spent)
	}

	// Without lines the overall cap stands in as the budget total.
	if len(lines) == 0 && budget.BudgetAmount != nil {
		totalBudget = *budget.BudgetAmount
		for _, spent := range spentByCategory {
			totalSpent = totalSpent.Add(spent)
		}
	}

	details.Totals = domain.BudgetTotals{
		TotalBudget:               totalBudget,
		TotalSpent:                totalSpent,
		TotalRemaining:            totalBudget.Sub(totalSpent),
		OverallProgressPercentage: progressPercentage(totalSpent, totalBudget),
	}
	return details, nil
}

// ResolveBudgetWindow returns the budget's effective [start, end] window.
// Non-recurrent budgets use their stored dates. Recurrent budgets map the
// stored window onto the recurrence instance containing now: a window shaped
// like a calendar month tracks calendar months, anything else advances by
// its own day length.
func ResolveBudgetWindow(budget *domain.Budget, now time.Time) (time.Time, time.Time) {
	start := util.TruncateToDay(budget.StartDate)
	end := util.TruncateToDay(budget.EndDate)
	if !budget.IsRecurrent {
		return start, end
	}

	today := util.TruncateToDay(now)
	if today.Before(start) {
		return start, end
	}

	if isCalendarMonth(start, end) {
		monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		monthEnd := time.Date(today.Year(), today.Month(), util.LastDayOfMonth(today.Year(), today.Month()), 0, 0, 0, 0, time.UTC)
		return monthStart, monthEnd
	}

	length := end.Sub(start) + 24*time.Hour
	elapsed := today.Sub(start) / length
	start = start.Add(elapsed * length)
	return start, start.Add(length - 24*time.Hour)
}

func isCalendarMonth(start, end time.Time) bool {
	return start.Day() == 1 &&
		start.Year() == end.Year() && start.Month() == end.Month() &&
		end.Day() == util.LastDayOfMonth(end.Year(), end.Month())
}

// progressPercentage returns spent/allocated*100, uncapped above 100 so
// overspend stays visible, and 0 when nothing is allocated.
func progressPercentage(spent, allocated decimal.Decimal) float64 {
	if allocated.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	pct, _ := spent.Div(allocated).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	return pct
}

// BudgetLineInput is one allocation in a budget payload
type BudgetLineInput struct {
	CategoryID int32
	Amount     decimal.Decimal
}

// BudgetInput holds the input for creating or updating a budget
type BudgetInput struct {
	Name         string
	BudgetAmount *decimal.Decimal
	StartDate    time.Time
	EndDate      time.Time
	IsRecurrent  bool
	Lines        []BudgetLineInput
}

// CreateBudget creates a budget and its lines in one atomic write.
func (s *BudgetService) CreateBudget(ctx context.Context, ownerID uuid.UUID, input BudgetInput) (*domain.BudgetDetails, error) {
	budget, lines, err := s.validateBudgetInput(ctx, ownerID, input)
	if err != nil {
		return nil, err
	}
	budget.OwnerID = ownerID

	created, _, err := s.budgetRepo.CreateWithLines(ctx, budget, lines)
	if err != nil {
		return nil, err
	}
	return s.GetBudgetDetails(ctx, ownerID, created.ID, time.Now().UTC())
}

// UpdateBudget replaces the budget fields and the full line set in one
// transaction. Lines absent from the payload are removed, new ones inserted,
// changed ones updated; a half-applied edit never persists.
func (s *BudgetService) UpdateBudget(ctx context.Context, ownerID uuid.UUID, budgetID int32, input BudgetInput) (*domain.BudgetDetails, error) {
	if _, _, err := s.ownedBudget(ctx, ownerID, budgetID); err != nil {
		return nil, err
	}

	budget, lines, err := s.validateBudgetInput(ctx, ownerID, input)
	if err != nil {
		return nil, err
	}

	if _, _, err := s.budgetRepo.UpdateWithLines(ctx, ownerID, budgetID, budget, lines); err != nil {
		return nil, err
	}
	return s.GetBudgetDetails(ctx, ownerID, budgetID, time.Now().UTC())
}

// ListBudgets returns the owner's active budgets.
func (s *BudgetService) ListBudgets(ctx context.Context, ownerID uuid.UUID) ([]*domain.Budget, error) {
	return s.budgetRepo.ListByOwner(ctx, ownerID)
}

// DeleteBudget soft-deletes the budget and cascades to its lines.
func (s *BudgetService) DeleteBudget(ctx context.Context, ownerID uuid.UUID, budgetID int32) error {
	if _, _, err := s.ownedBudget(ctx, ownerID, budgetID); err != nil {
		return err
	}
	return s.budgetRepo.SoftDelete(ctx, ownerID, budgetID)
}

func (s *BudgetService) ownedBudget(ctx context.Context, ownerID uuid.UUID, budgetID int32) (*domain.Budget, []*domain.BudgetLine, error) {
	budget, lines, err := s.budgetRepo.GetWithLines(ctx, budgetID)
	if err != nil {
		return nil, nil, err
	}
	if budget.OwnerID != ownerID {
		return nil, nil, domain.ErrForbidden
	}
	if budget.IsDeleted() {
		return nil, nil, domain.ErrBudgetNotFound
	}
	return budget, lines, nil
}

func (s *BudgetService) validateBudgetInput(ctx context.Context, ownerID uuid.UUID, input BudgetInput) (*domain.Budget, []*domain.BudgetLine, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxBudgetNameLength {
		return nil, nil, domain.ErrNameTooLong
	}
	if input.BudgetAmount != nil && input.BudgetAmount.IsNegative() {
		return nil, nil, domain.ErrInvalidAmount
	}
	start := util.TruncateToDay(input.StartDate)
	end := util.TruncateToDay(input.EndDate)
	if end.Before(start) {
		return nil, nil, domain.ErrInvalidDateRange
	}

	seen := make(map[int32]bool, len(input.Lines))
	lines := make([]*domain.BudgetLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.Amount.IsNegative() {
			return nil, nil, domain.ErrInvalidAmount
		}
		if seen[line.CategoryID] {
			return nil, nil, domain.ErrDuplicateBudgetLine
		}
		seen[line.CategoryID] = true

		category, err := s.categoryRepo.GetByID(ctx, line.CategoryID)
		if err != nil {
			return nil, nil, err
		}
		if !category.AccessibleBy(ownerID) {
			return nil, nil, domain.ErrForbidden
		}

		lines = append(lines, &domain.BudgetLine{
			CategoryID: line.CategoryID,
			Amount:     line.Amount,
		})
	}

	return &domain.Budget{
		Name:         name,
		BudgetAmount: input.BudgetAmount,
		StartDate:    start,
		EndDate:      end,
		IsRecurrent:  input.IsRecurrent,
	}, lines, nil
}
