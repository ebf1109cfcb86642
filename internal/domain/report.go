package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Granularity string

const (
	GranularityYear  Granularity = "year"
	GranularityMonth Granularity = "month"
	GranularityWeek  Granularity = "week"
)

var ValidGranularities = map[Granularity]bool{
	GranularityYear:  true,
	GranularityMonth: true,
	GranularityWeek:  true,
}

// TimeBucket is one sub-period of a report window (a month of a year report,
// a day of a month or week report).
type TimeBucket struct {
	Label     string          `json:"label"`
	Income    decimal.Decimal `json:"income"`
	Expense   decimal.Decimal `json:"expense"`
	Net       decimal.Decimal `json:"net"`
	SortOrder int             `json:"sortOrder"`
}

// CategoryBreakdownEntry is one category's share of a report window.
type CategoryBreakdownEntry struct {
	CategoryID       int32           `json:"categoryId"`
	CategoryName     string          `json:"categoryName"`
	Amount           decimal.Decimal `json:"amount"`
	TransactionCount int             `json:"transactionCount"`
	Percentage       float64         `json:"percentage"` // share of the type's total; 0 when the total is 0
	BarColor         string          `json:"barColor"`   // stable per category across requests
}

// CategoryBreakdowns groups breakdown entries by transaction type.
type CategoryBreakdowns struct {
	Income   []CategoryBreakdownEntry `json:"income"`
	Expenses []CategoryBreakdownEntry `json:"expenses"`
}

// ReportSummary holds the window-wide totals.
type ReportSummary struct {
	TotalIncome    decimal.Decimal `json:"totalIncome"`
	TotalExpenses  decimal.Decimal `json:"totalExpenses"`
	TotalBalance   decimal.Decimal `json:"totalBalance"`
	NetSavingsRate float64         `json:"netSavingsRate"` // 0 when total income is 0
}

// Report is the income/expense view of one resolved period window.
type Report struct {
	Granularity Granularity        `json:"granularity"`
	Period      string             `json:"period"`
	PeriodLabel string             `json:"periodLabel"`
	PrevPeriod  string             `json:"prevPeriod"`
	NextPeriod  string             `json:"nextPeriod"`
	PeriodStart time.Time          `json:"periodStart"`
	PeriodEnd   time.Time          `json:"periodEnd"`
	Summary     ReportSummary      `json:"summary"`
	TimeSeries  []TimeBucket       `json:"timeSeries"`
	Categories  CategoryBreakdowns `json:"categories"`
}

// CategoryExpenseReport is the month-fixed expense breakdown variant.
type CategoryExpenseReport struct {
	Period      string                   `json:"period"`
	PeriodLabel string                   `json:"periodLabel"`
	PrevPeriod  string                   `json:"prevPeriod"`
	NextPeriod  string                   `json:"nextPeriod"`
	PeriodStart time.Time                `json:"periodStart"`
	PeriodEnd   time.Time                `json:"periodEnd"`
	TotalSpent  decimal.Decimal          `json:"totalSpent"`
	Expenses    []CategoryBreakdownEntry `json:"expenses"`
}
