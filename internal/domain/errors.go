package domain

import "errors"

// Domain errors
var (
	// Validation
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrSameAccountTransfer    = errors.New("cannot transfer to the same account")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAccountType     = errors.New("invalid account type")
	ErrInvalidGranularity     = errors.New("invalid report granularity")
	ErrInvalidCadence         = errors.New("invalid recurrence cadence")
	ErrInvalidDateRange       = errors.New("end date must not precede start date")
	ErrNameRequired           = errors.New("name is required")
	ErrNameTooLong            = errors.New("name exceeds maximum length")
	ErrNotesTooLong           = errors.New("notes exceed maximum length")
	ErrDuplicateBudgetLine    = errors.New("duplicate category in budget lines")
	ErrTransferLegImmutable   = errors.New("transfer legs must be edited through the transfer endpoints")
	ErrCurrencyRequired       = errors.New("currency is required")

	// Lookup
	ErrNotFound            = errors.New("resource not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTransferNotFound    = errors.New("transfer not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrBudgetNotFound      = errors.New("budget not found")

	// Access
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Storage
	ErrConflict         = errors.New("atomic operation could not complete")
	ErrStoreUnavailable = errors.New("storage unavailable")
)

// IsNotFound reports whether err is any of the lookup failures.
func IsNotFound(err error) bool {
	for _, target := range []error{
		ErrNotFound,
		ErrUserNotFound,
		ErrAccountNotFound,
		ErrTransactionNotFound,
		ErrTransferNotFound,
		ErrCategoryNotFound,
		ErrBudgetNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Validation constants
const (
	MaxAccountNameLength     = 255
	MaxTransactionNameLength = 255
	MaxTransactionNotesLen   = 1000
	MaxBudgetNameLength      = 255
	MaxCategoryNameLength    = 100
)
