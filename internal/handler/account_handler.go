package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/centavo/centavo-backend/internal/middleware"
	"github.com/centavo/centavo-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService     *service.AccountService
	calculationService *service.CalculationService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService, calculationService *service.CalculationService) *AccountHandler {
	return &AccountHandler{
		accountService:     accountService,
		calculationService: calculationService,
	}
}

// CreateAccountRequest represents the create account request body
type CreateAccountRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Type        string `json:"type" validate:"required"`
	BaseBalance string `json:"baseBalance,omitempty"`
	Currency    string `json:"currency" validate:"required,len=3"`
}

// UpdateAccountRequest represents the update account request body
type UpdateAccountRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID           int32   `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	BaseBalance  string  `json:"baseBalance"`
	TotalBalance *string `json:"totalBalance,omitempty"`
	Currency     string  `json:"currency"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

// BalanceResponse represents a single account balance view
type BalanceResponse struct {
	AccountID    int32  `json:"accountId"`
	BaseBalance  string `json:"baseBalance"`
	TotalBalance string `json:"totalBalance"`
}

// CreateAccount handles POST /api/v1/accounts
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", fieldErrors(err))
	}

	baseBalance := decimal.Zero
	if req.BaseBalance != "" {
		var err error
		baseBalance, err = decimal.NewFromString(req.BaseBalance)
		if err != nil {
			return NewValidationError(c, "Invalid base balance", []ValidationError{
				{Field: "baseBalance", Message: "Must be a valid decimal number"},
			})
		}
	}

	input := service.CreateAccountInput{
		Name:        req.Name,
		Type:        domain.AccountType(req.Type),
		BaseBalance: baseBalance,
		Currency:    req.Currency,
	}

	account, err := h.accountService.CreateAccount(c.Request().Context(), ownerID, input)
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		}
		if errors.Is(err, domain.ErrNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 255 characters or less"},
			})
		}
		if errors.Is(err, domain.ErrInvalidAccountType) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "type", Message: "Type must be one of: checking, savings, cash, credit_card, investment, other"},
			})
		}
		if errors.Is(err, domain.ErrCurrencyRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "currency", Message: "Currency is required"},
			})
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to create account")
		return renderResourceError(c, err, "Account")
	}

	log.Info().Str("owner_id", ownerID.String()).Int32("account_id", account.ID).Str("name", account.Name).Msg("Account created")

	return c.JSON(http.StatusCreated, toAccountResponse(account, nil))
}

// GetAccounts handles GET /api/v1/accounts
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	accounts, err := h.accountService.GetAccounts(c.Request().Context(), ownerID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to get accounts")
		return renderResourceError(c, err, "Account")
	}

	balances, err := h.calculationService.CalculateBalances(c.Request().Context(), ownerID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to calculate balances")
		return renderResourceError(c, err, "Account")
	}

	response := make([]AccountResponse, len(accounts))
	for i, account := range accounts {
		response[i] = toAccountResponse(account, balances[account.ID])
	}

	return c.JSON(http.StatusOK, response)
}

// GetAccount handles GET /api/v1/accounts/:id
func (h *AccountHandler) GetAccount(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	account, err := h.accountService.GetAccount(c.Request().Context(), ownerID, int32(id))
	if err != nil {
		return renderResourceError(c, err, "Account")
	}

	balance, err := h.calculationService.CalculateBalance(c.Request().Context(), ownerID, account.ID)
	if err != nil {
		return renderResourceError(c, err, "Account")
	}

	return c.JSON(http.StatusOK, toAccountResponse(account, balance))
}

// GetBalance handles GET /api/v1/accounts/:id/balance
func (h *AccountHandler) GetBalance(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	balance, err := h.calculationService.CalculateBalance(c.Request().Context(), ownerID, int32(id))
	if err != nil {
		return renderResourceError(c, err, "Account")
	}

	return c.JSON(http.StatusOK, BalanceResponse{
		AccountID:    balance.AccountID,
		BaseBalance:  balance.BaseBalance.StringFixed(2),
		TotalBalance: balance.TotalBalance.StringFixed(2),
	})
}

// UpdateAccount handles PUT /api/v1/accounts/:id
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	var req UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	account, err := h.accountService.RenameAccount(c.Request().Context(), ownerID, int32(id), req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		}
		if errors.Is(err, domain.ErrNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 255 characters or less"},
			})
		}
		return renderResourceError(c, err, "Account")
	}

	log.Info().Str("owner_id", ownerID.String()).Int32("account_id", account.ID).Str("name", account.Name).Msg("Account updated")
	return c.JSON(http.StatusOK, toAccountResponse(account, nil))
}

// DeleteAccount handles DELETE /api/v1/accounts/:id
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	if err := h.accountService.DeleteAccount(c.Request().Context(), ownerID, int32(id)); err != nil {
		return renderResourceError(c, err, "Account")
	}

	log.Info().Str("owner_id", ownerID.String()).Int("account_id", id).Msg("Account deleted (soft)")
	return c.NoContent(http.StatusNoContent)
}

func toAccountResponse(account *domain.Account, balance *service.AccountBalance) AccountResponse {
	resp := AccountResponse{
		ID:          account.ID,
		Name:        account.Name,
		Type:        string(account.Type),
		BaseBalance: service.ComputeBaseBalance(account).StringFixed(2),
		Currency:    account.Currency,
		CreatedAt:   account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   account.UpdatedAt.Format(time.RFC3339),
	}
	if balance != nil {
		total := balance.TotalBalance.StringFixed(2)
		resp.TotalBalance = &total
	}
	return resp
}
