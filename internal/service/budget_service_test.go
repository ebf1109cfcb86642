package service

import (
	"context"
	"testing"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/centavo/centavo-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type budgetFixture struct {
	service         *BudgetService
	budgetRepo      *testutil.MockBudgetRepository
	categoryRepo    *testutil.MockCategoryRepository
	transactionRepo *testutil.MockTransactionRepository
	ownerID         uuid.UUID
}

func newBudgetFixture(t *testing.T) *budgetFixture {
	t.Helper()
	budgetRepo := testutil.NewMockBudgetRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	ownerID := uuid.New()

	oid := ownerID
	categoryRepo.AddCategory(&domain.Category{
		ID:        1,
		OwnerID:   &oid,
		Name:      "Food",
		Type:      domain.TransactionTypeExpense,
		IsVisible: true,
	})
	categoryRepo.AddCategory(&domain.Category{
		ID:        2,
		OwnerID:   &oid,
		Name:      "Transport",
		Type:      domain.TransactionTypeExpense,
		IsVisible: true,
	})

	return &budgetFixture{
		service:         NewBudgetService(budgetRepo, categoryRepo, transactionRepo),
		budgetRepo:      budgetRepo,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
		ownerID:         ownerID,
	}
}

func (f *budgetFixture) addExpense(id int32, categoryID int32, amount float64, day time.Time) {
	catID := categoryID
	f.transactionRepo.AddTransaction(&domain.Transaction{
		ID:         id,
		OwnerID:    f.ownerID,
		AccountID:  int32Ptr(1),
		Name:       "expense",
		Amount:     decimal.NewFromFloat(amount),
		Type:       domain.TransactionTypeExpense,
		Currency:   "EUR",
		OccurredAt: day,
		CategoryID: &catID,
	})
}

func TestGetBudgetDetails_LineProgress(t *testing.T) {
	f := newBudgetFixture(t)

	march1 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	march31 := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	total := decimal.NewFromFloat(500.00)
	f.budgetRepo.AddBudget(&domain.Budget{
		ID:           1,
		OwnerID:      f.ownerID,
		Name:         "March",
		BudgetAmount: &total,
		StartDate:    march1,
		EndDate:      march31,
	}, []*domain.BudgetLine{
		{ID: 1, BudgetID: 1, CategoryID: 1, Amount: decimal.NewFromFloat(200.00)},
		{ID: 2, BudgetID: 1, CategoryID: 2, Amount: decimal.NewFromFloat(100.00)},
	})

	f.addExpense(1, 1, 150.00, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	f.addExpense(2, 2, 120.00, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
	// Outside the window, must not count
	f.addExpense(3, 1, 999.00, time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC))

	details, err := f.service.GetBudgetDetails(context.Background(), f.ownerID, 1, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(details.Lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(details.Lines))
	}

	food := details.Lines[0]
	if !food.SpentAmount.Equal(decimal.NewFromFloat(150.00)) {
		t.Errorf("Expected Food spent 150.00, got %s", food.SpentAmount)
	}
	if !food.RemainingAmount.Equal(decimal.NewFromFloat(50.00)) {
		t.Errorf("Expected Food remaining 50.00, got %s", food.RemainingAmount)
	}
	if food.ProgressPercentage != 75.0 {
		t.Errorf("Expected Food progress 75.0, got %f", food.ProgressPercentage)
	}

	// Overspend stays visible: 120/100 = 120%, remaining goes negative
	transport := details.Lines[1]
	if transport.ProgressPercentage != 120.0 {
		t.Errorf("Expected Transport progress 120.0, got %f", transport.ProgressPercentage)
	}
	if !transport.RemainingAmount.Equal(decimal.NewFromFloat(-20.00)) {
		t.Errorf("Expected Transport remaining -20.00, got %s", transport.RemainingAmount)
	}

	if !details.Totals.TotalBudget.Equal(decimal.NewFromFloat(300.00)) {
		t.Errorf("Expected total budget 300.00, got %s", details.Totals.TotalBudget)
	}
	if !details.Totals.TotalSpent.Equal(decimal.NewFromFloat(270.00)) {
		t.Errorf("Expected total spent 270.00, got %s", details.Totals.TotalSpent)
	}
	if details.Totals.OverallProgressPercentage != 90.0 {
		t.Errorf("Expected overall progress 90.0, got %f", details.Totals.OverallProgressPercentage)
	}
}

func TestGetBudgetDetails_NoLinesFallsBackToBudgetAmount(t *testing.T) {
	f := newBudgetFixture(t)

	total := decimal.NewFromFloat(400.00)
	f.budgetRepo.AddBudget(&domain.Budget{
		ID:           1,
		OwnerID:      f.ownerID,
		Name:         "Cap only",
		BudgetAmount: &total,
		StartDate:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}, nil)

	f.addExpense(1, 1, 50.00, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	f.addExpense(2, 2, 30.00, time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC))

	details, err := f.service.GetBudgetDetails(context.Background(), f.ownerID, 1, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !details.Totals.TotalBudget.Equal(decimal.NewFromFloat(400.00)) {
		t.Errorf("Expected total budget 400.00, got %s", details.Totals.TotalBudget)
	}
	if !details.Totals.TotalSpent.Equal(decimal.NewFromFloat(80.00)) {
		t.Errorf("Expected total spent 80.00, got %s", details.Totals.TotalSpent)
	}
	if details.Totals.OverallProgressPercentage != 20.0 {
		t.Errorf("Expected overall progress 20.0, got %f", details.Totals.OverallProgressPercentage)
	}
}

func TestGetBudgetDetails_OtherOwnerForbidden(t *testing.T) {
	f := newBudgetFixture(t)

	f.budgetRepo.AddBudget(&domain.Budget{
		ID:        1,
		OwnerID:   uuid.New(),
		Name:      "Not yours",
		StartDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}, nil)

	_, err := f.service.GetBudgetDetails(context.Background(), f.ownerID, 1, time.Now())
	if err != domain.ErrForbidden {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
}

func TestResolveBudgetWindow_NonRecurrent(t *testing.T) {
	budget := &domain.Budget{
		StartDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	start, end := ResolveBudgetWindow(budget, time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC))
	if !start.Equal(budget.StartDate) || !end.Equal(budget.EndDate) {
		t.Errorf("Expected stored window, got [%v, %v]", start, end)
	}
}

func TestResolveBudgetWindow_RecurrentCalendarMonth(t *testing.T) {
	budget := &domain.Budget{
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		IsRecurrent: true,
	}

	// February instance keeps month shape, including leap handling
	start, end := ResolveBudgetWindow(budget, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	if !start.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected Feb 1 start, got %v", start)
	}
	if !end.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected Feb 29 end, got %v", end)
	}

	start, end = ResolveBudgetWindow(budget, time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC))
	if !start.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected April window, got [%v, %v]", start, end)
	}
}

func TestResolveBudgetWindow_RecurrentFixedLength(t *testing.T) {
	// A 14-day window advances in 14-day steps
	budget := &domain.Budget{
		StartDate:   time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC),
		IsRecurrent: true,
	}

	start, end := ResolveBudgetWindow(budget, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))
	if !start.Equal(time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected second instance start Mar 17, got %v", start)
	}
	if !end.Equal(time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected second instance end Mar 30, got %v", end)
	}

	// Before the first instance the stored window holds
	start, end = ResolveBudgetWindow(budget, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	if !start.Equal(budget.StartDate) || !end.Equal(budget.EndDate) {
		t.Errorf("Expected stored window before start, got [%v, %v]", start, end)
	}
}

func TestCreateBudget_DuplicateLineRejected(t *testing.T) {
	f := newBudgetFixture(t)

	_, err := f.service.CreateBudget(context.Background(), f.ownerID, BudgetInput{
		Name:      "Dup",
		StartDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Lines: []BudgetLineInput{
			{CategoryID: 1, Amount: decimal.NewFromFloat(100.00)},
			{CategoryID: 1, Amount: decimal.NewFromFloat(50.00)},
		},
	})
	if err != domain.ErrDuplicateBudgetLine {
		t.Errorf("Expected ErrDuplicateBudgetLine, got %v", err)
	}
}

func TestCreateBudget_InvalidDateRange(t *testing.T) {
	f := newBudgetFixture(t)

	_, err := f.service.CreateBudget(context.Background(), f.ownerID, BudgetInput{
		Name:      "Backwards",
		StartDate: time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != domain.ErrInvalidDateRange {
		t.Errorf("Expected ErrInvalidDateRange, got %v", err)
	}
}

func TestUpdateBudget_ReplacesLines(t *testing.T) {
	f := newBudgetFixture(t)

	created, err := f.service.CreateBudget(context.Background(), f.ownerID, BudgetInput{
		Name:      "March",
		StartDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Lines: []BudgetLineInput{
			{CategoryID: 1, Amount: decimal.NewFromFloat(100.00)},
		},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	updated, err := f.service.UpdateBudget(context.Background(), f.ownerID, created.Budget.ID, BudgetInput{
		Name:      "March v2",
		StartDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Lines: []BudgetLineInput{
			{CategoryID: 2, Amount: decimal.NewFromFloat(80.00)},
		},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if updated.Budget.Name != "March v2" {
		t.Errorf("Expected renamed budget, got %q", updated.Budget.Name)
	}
	if len(updated.Lines) != 1 || updated.Lines[0].CategoryID != 2 {
		t.Fatalf("Expected single line for category 2, got %+v", updated.Lines)
	}
}

func TestDeleteBudget_CascadesToLines(t *testing.T) {
	f := newBudgetFixture(t)

	created, err := f.service.CreateBudget(context.Background(), f.ownerID, BudgetInput{
		Name:      "March",
		StartDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Lines: []BudgetLineInput{
			{CategoryID: 1, Amount: decimal.NewFromFloat(100.00)},
		},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := f.service.DeleteBudget(context.Background(), f.ownerID, created.Budget.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, line := range f.budgetRepo.Lines[created.Budget.ID] {
		if line.DeletedAt == nil {
			t.Errorf("Expected line %d soft-deleted with the budget", line.ID)
		}
	}

	_, err = f.service.GetBudgetDetails(context.Background(), f.ownerID, created.Budget.ID, time.Now())
	if err != domain.ErrBudgetNotFound {
		t.Errorf("Expected ErrBudgetNotFound after delete, got %v", err)
	}
}
