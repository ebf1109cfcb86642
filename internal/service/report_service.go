package service

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"sort"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/centavo/centavo-backend/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// barColorPalette is the fixed palette categories are hashed into, so the
// same category renders the same color across requests.
var barColorPalette = []string{
	"#4E79A7", "#F28E2B", "#E15759", "#76B7B2", "#59A14F",
	"#EDC948", "#B07AA1", "#FF9DA7", "#9C755F", "#BAB0AC",
}

// BarColor returns the deterministic palette color for a category.
func BarColor(categoryID int32) string {
	h := fnv.New32a()
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(categoryID))
	h.Write(buf[:])
	return barColorPalette[h.Sum32()%uint32(len(barColorPalette))]
}

// ReportService buckets transactions into calendar periods and computes
// income/expense summaries with navigation cursors.
type ReportService struct {
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
}

// NewReportService creates a new ReportService
func NewReportService(transactionRepo domain.TransactionRepository, categoryRepo domain.CategoryRepository) *ReportService {
	return &ReportService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
	}
}

// GetIncomeExpenseReport computes the report for the period of the given
// granularity containing periodDate.
func (s *ReportService) GetIncomeExpenseReport(ctx context.Context, ownerID uuid.UUID, periodDate time.Time, granularity domain.Granularity) (*domain.Report, error) {
	period, err := util.ResolvePeriod(granularity, periodDate)
	if err != nil {
		return nil, err
	}

	// One read per aggregation call; every sum below comes from the same
	// commit point.
	transactions, err := s.transactionRepo.ListByDateRange(ctx, ownerID, period.Start, period.End)
	if err != nil {
		return nil, err
	}

	categoryNames, err := s.categoryNames(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		Granularity: granularity,
		Period:      period.Key(),
		PeriodLabel: period.Label(),
		PrevPeriod:  period.Prev().Key(),
		NextPeriod:  period.Next().Key(),
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		TimeSeries:  make([]domain.TimeBucket, period.BucketCount()),
	}
	for i := range report.TimeSeries {
		report.TimeSeries[i] = domain.TimeBucket{
			Label:     period.BucketLabel(i),
			Income:    decimal.Zero,
			Expense:   decimal.Zero,
			Net:       decimal.Zero,
			SortOrder: i + 1,
		}
	}

	incomeByCategory := make(map[int32]*domain.CategoryBreakdownEntry)
	expenseByCategory := make(map[int32]*domain.CategoryBreakdownEntry)
	totalIncome := decimal.Zero
	totalExpenses := decimal.Zero

	for _, tx := range transactions {
		if tx.IsDeleted() {
			continue
		}
		var isIncome bool
		switch tx.Type {
		case domain.TransactionTypeIncome:
			isIncome = true
		case domain.TransactionTypeExpense:
			isIncome = false
		default:
			// Transfers and investments move money, they are not income or
			// spending.
			continue
		}

		if i := period.BucketIndex(tx.OccurredAt); i >= 0 {
			if isIncome {
				report.TimeSeries[i].Income = report.TimeSeries[i].Income.Add(tx.Amount)
			} else {
				report.TimeSeries[i].Expense = report.TimeSeries[i].Expense.Add(tx.Amount)
			}
		}

		if isIncome {
			totalIncome = totalIncome.Add(tx.Amount)
		} else {
			totalExpenses = totalExpenses.Add(tx.Amount)
		}

		if tx.CategoryID == nil {
			continue
		}
		name, known := categoryNames[*tx.CategoryID]
		if !known {
			// A dangling category reference degrades to exclusion from the
			// breakdown instead of failing the whole report.
			log.Warn().
				Int32("transaction_id", tx.ID).
				Int32("category_id", *tx.CategoryID).
				Msg("transaction references unknown category, excluded from breakdown")
			continue
		}

		group := expenseByCategory
		if isIncome {
			group = incomeByCategory
		}
		entry, ok := group[*tx.CategoryID]
		if !ok {
			entry = &domain.CategoryBreakdownEntry{
				CategoryID:   *tx.CategoryID,
				CategoryName: name,
				Amount:       decimal.Zero,
				BarColor:     BarColor(*tx.CategoryID),
			}
			group[*tx.CategoryID] = entry
		}
		entry.Amount = entry.Amount.Add(tx.Amount)
		entry.TransactionCount++
	}

	for i := range report.TimeSeries {
		report.TimeSeries[i].Net = report.TimeSeries[i].Income.Sub(report.TimeSeries[i].Expense)
	}

	report.Categories = domain.CategoryBreakdowns{
		Income:   finishBreakdown(incomeByCategory),
		Expenses: finishBreakdown(expenseByCategory),
	}
	report.Summary = domain.ReportSummary{
		TotalIncome:    totalIncome,
		TotalExpenses:  totalExpenses,
		TotalBalance:   totalIncome.Sub(totalExpenses),
		NetSavingsRate: savingsRate(totalIncome, totalExpenses),
	}
	return report, nil
}

// GetExpenseReportByCategory is the month-fixed, expense-only variant used
// for the light-weight category view.
func (s *ReportService) GetExpenseReportByCategory(ctx context.Context, ownerID uuid.UUID, periodDate time.Time) (*domain.CategoryExpenseReport, error) {
	full, err := s.GetIncomeExpenseReport(ctx, ownerID, periodDate, domain.GranularityMonth)
	if err != nil {
		return nil, err
	}
	return &domain.CategoryExpenseReport{
		Period:      full.Period,
		PeriodLabel: full.PeriodLabel,
		PrevPeriod:  full.PrevPeriod,
		NextPeriod:  full.NextPeriod,
		PeriodStart: full.PeriodStart,
		PeriodEnd:   full.PeriodEnd,
		TotalSpent:  full.Summary.TotalExpenses,
		Expenses:    full.Categories.Expenses,
	}, nil
}

func (s *ReportService) categoryNames(ctx context.Context, ownerID uuid.UUID) (map[int32]string, error) {
	categories, err := s.categoryRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	names := make(map[int32]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

// finishBreakdown assigns percentages of the group total and orders entries
// by amount descending, largest spenders first.
func finishBreakdown(group map[int32]*domain.CategoryBreakdownEntry) []domain.CategoryBreakdownEntry {
	total := decimal.Zero
	for _, entry := range group {
		total = total.Add(entry.Amount)
	}

	entries := make([]domain.CategoryBreakdownEntry, 0, len(group))
	for _, entry := range group {
		if total.IsPositive() {
			pct, _ := entry.Amount.Div(total).Mul(decimal.NewFromInt(100)).Round(1).Float64()
			entry.Percentage = pct
		}
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Amount.Equal(entries[j].Amount) {
			return entries[i].Amount.GreaterThan(entries[j].Amount)
		}
		return entries[i].CategoryID < entries[j].CategoryID
	})
	return entries
}

func savingsRate(totalIncome, totalExpenses decimal.Decimal) float64 {
	if !totalIncome.IsPositive() {
		return 0
	}
	rate, _ := totalIncome.Sub(totalExpenses).Div(totalIncome).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	return rate
}
