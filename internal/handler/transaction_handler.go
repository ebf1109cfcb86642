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

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionRequest represents the create/update transaction request body
type TransactionRequest struct {
	AccountID         int32          `json:"accountId" validate:"required"`
	Name              string         `json:"name" validate:"required,max=255"`
	Amount            string         `json:"amount" validate:"required"`
	Type              string         `json:"type" validate:"required"`
	Currency          string         `json:"currency" validate:"required,len=3"`
	OccurredAt        *string        `json:"occurredAt,omitempty"`
	CategoryID        *int32         `json:"categoryId,omitempty"`
	IsRecurring       bool           `json:"isRecurring"`
	RecurrenceCadence *string        `json:"recurrenceCadence,omitempty"`
	RecurrenceEndDate *string        `json:"recurrenceEndDate,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	Notes             *string        `json:"notes,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID                int32          `json:"id"`
	AccountID         *int32         `json:"accountId,omitempty"`
	Name              string         `json:"name"`
	Amount            string         `json:"amount"`
	Type              string         `json:"type"`
	Currency          string         `json:"currency"`
	OccurredAt        string         `json:"occurredAt"`
	CategoryID        *int32         `json:"categoryId,omitempty"`
	IsRecurring       bool           `json:"isRecurring"`
	RecurrenceCadence *string        `json:"recurrenceCadence,omitempty"`
	RecurrenceEndDate *string        `json:"recurrenceEndDate,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	TransferPairID    *string        `json:"transferPairId,omitempty"`
	TransferRole      *string        `json:"transferRole,omitempty"`
	Notes             *string        `json:"notes,omitempty"`
	CreatedAt         string         `json:"createdAt"`
	UpdatedAt         string         `json:"updatedAt"`
}

// PaginatedTransactionsResponse wraps a page of transactions
type PaginatedTransactionsResponse struct {
	Data       []TransactionResponse `json:"data"`
	Page       int32                 `json:"page"`
	PageSize   int32                 `json:"pageSize"`
	TotalItems int64                 `json:"totalItems"`
	TotalPages int32                 `json:"totalPages"`
}

const dateLayout = "2006-01-02"

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", fieldErrors(err))
	}

	input, verr := toCreateTransactionInput(req)
	if verr != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{*verr})
	}

	tx, err := h.transactionService.CreateTransaction(c.Request().Context(), ownerID, *input)
	if err != nil {
		if resp := transactionValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to create transaction")
		return renderResourceError(c, err, "Transaction")
	}

	log.Info().Str("owner_id", ownerID.String()).Int32("transaction_id", tx.ID).Str("type", string(tx.Type)).Msg("Transaction created")
	return c.JSON(http.StatusCreated, toTransactionResponse(tx))
}

// GetTransactions handles GET /api/v1/transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters, verr := parseTransactionFilters(c)
	if verr != nil {
		return NewValidationError(c, "Invalid filter", []ValidationError{*verr})
	}

	page, err := h.transactionService.GetTransactions(c.Request().Context(), ownerID, filters)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to list transactions")
		return renderResourceError(c, err, "Transaction")
	}

	data := make([]TransactionResponse, len(page.Data))
	for i, tx := range page.Data {
		data[i] = toTransactionResponse(tx)
	}

	return c.JSON(http.StatusOK, PaginatedTransactionsResponse{
		Data:       data,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	})
}

// GetTransaction handles GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	tx, err := h.transactionService.GetTransaction(c.Request().Context(), ownerID, int32(id))
	if err != nil {
		return renderResourceError(c, err, "Transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(tx))
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", fieldErrors(err))
	}

	createInput, verr := toCreateTransactionInput(req)
	if verr != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{*verr})
	}
	occurredAt := time.Now().UTC().Truncate(24 * time.Hour)
	if createInput.OccurredAt != nil {
		occurredAt = *createInput.OccurredAt
	}

	input := service.UpdateTransactionInput{
		AccountID:         createInput.AccountID,
		Name:              createInput.Name,
		Amount:            createInput.Amount,
		Type:              createInput.Type,
		Currency:          createInput.Currency,
		OccurredAt:        occurredAt,
		CategoryID:        createInput.CategoryID,
		IsRecurring:       createInput.IsRecurring,
		RecurrenceCadence: createInput.RecurrenceCadence,
		RecurrenceEndDate: createInput.RecurrenceEndDate,
		Metadata:          createInput.Metadata,
		Notes:             createInput.Notes,
	}

	tx, err := h.transactionService.UpdateTransaction(c.Request().Context(), ownerID, int32(id), input)
	if err != nil {
		if errors.Is(err, domain.ErrTransferLegImmutable) {
			return NewConflictError(c, "Transfer legs can only be edited through the transfer endpoints")
		}
		if resp := transactionValidationResponse(c, err); resp != nil {
			return resp
		}
		return renderResourceError(c, err, "Transaction")
	}

	log.Info().Str("owner_id", ownerID.String()).Int32("transaction_id", tx.ID).Msg("Transaction updated")
	return c.JSON(http.StatusOK, toTransactionResponse(tx))
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.transactionService.DeleteTransaction(c.Request().Context(), ownerID, int32(id)); err != nil {
		return renderResourceError(c, err, "Transaction")
	}

	log.Info().Str("owner_id", ownerID.String()).Int("transaction_id", id).Msg("Transaction deleted (soft)")
	return c.NoContent(http.StatusNoContent)
}

func toCreateTransactionInput(req TransactionRequest) (*service.CreateTransactionInput, *ValidationError) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, &ValidationError{Field: "amount", Message: "Must be a valid decimal number"}
	}

	input := &service.CreateTransactionInput{
		AccountID:   req.AccountID,
		Name:        req.Name,
		Amount:      amount,
		Type:        domain.TransactionType(req.Type),
		Currency:    req.Currency,
		CategoryID:  req.CategoryID,
		IsRecurring: req.IsRecurring,
		Metadata:    req.Metadata,
		Notes:       req.Notes,
	}

	if req.OccurredAt != nil {
		occurredAt, err := time.ParseInLocation(dateLayout, *req.OccurredAt, time.UTC)
		if err != nil {
			return nil, &ValidationError{Field: "occurredAt", Message: "Must be a date in YYYY-MM-DD format"}
		}
		input.OccurredAt = &occurredAt
	}
	if req.RecurrenceCadence != nil {
		cadence := domain.RecurrenceCadence(*req.RecurrenceCadence)
		input.RecurrenceCadence = &cadence
	}
	if req.RecurrenceEndDate != nil {
		endDate, err := time.ParseInLocation(dateLayout, *req.RecurrenceEndDate, time.UTC)
		if err != nil {
			return nil, &ValidationError{Field: "recurrenceEndDate", Message: "Must be a date in YYYY-MM-DD format"}
		}
		input.RecurrenceEndDate = &endDate
	}

	return input, nil
}

// transactionValidationResponse maps the validation sentinels shared by
// create and update. Returns nil when err is not a validation failure.
func transactionValidationResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be positive"},
		})
	case errors.Is(err, domain.ErrInvalidTransactionType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Type must be one of: income, expense, investment, other"},
		})
	case errors.Is(err, domain.ErrInvalidCadence):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "recurrenceCadence", Message: "Cadence must be one of: daily, weekly, monthly, yearly"},
		})
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 255 characters or less"},
		})
	case errors.Is(err, domain.ErrNotesTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "notes", Message: "Notes must be 1000 characters or less"},
		})
	case errors.Is(err, domain.ErrCurrencyRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "currency", Message: "Currency is required"},
		})
	}
	return nil
}

func parseTransactionFilters(c echo.Context) (*domain.TransactionFilters, *ValidationError) {
	filters := &domain.TransactionFilters{}

	if v := c.QueryParam("accountId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, &ValidationError{Field: "accountId", Message: "Must be an integer"}
		}
		accountID := int32(id)
		filters.AccountID = &accountID
	}
	if v := c.QueryParam("categoryId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, &ValidationError{Field: "categoryId", Message: "Must be an integer"}
		}
		categoryID := int32(id)
		filters.CategoryID = &categoryID
	}
	if v := c.QueryParam("type"); v != "" {
		txType := domain.TransactionType(v)
		if !domain.ValidTransactionTypes[txType] {
			return nil, &ValidationError{Field: "type", Message: "Unknown transaction type"}
		}
		filters.Type = &txType
	}
	if v := c.QueryParam("startDate"); v != "" {
		start, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			return nil, &ValidationError{Field: "startDate", Message: "Must be a date in YYYY-MM-DD format"}
		}
		filters.StartDate = &start
	}
	if v := c.QueryParam("endDate"); v != "" {
		end, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			return nil, &ValidationError{Field: "endDate", Message: "Must be a date in YYYY-MM-DD format"}
		}
		filters.EndDate = &end
	}
	if v := c.QueryParam("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return nil, &ValidationError{Field: "page", Message: "Must be a positive integer"}
		}
		filters.Page = int32(page)
	}
	if v := c.QueryParam("pageSize"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 {
			return nil, &ValidationError{Field: "pageSize", Message: "Must be a positive integer"}
		}
		filters.PageSize = int32(size)
	}

	return filters, nil
}

func toTransactionResponse(tx *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          tx.ID,
		AccountID:   tx.AccountID,
		Name:        tx.Name,
		Amount:      tx.Amount.StringFixed(2),
		Type:        string(tx.Type),
		Currency:    tx.Currency,
		OccurredAt:  tx.OccurredAt.Format(dateLayout),
		CategoryID:  tx.CategoryID,
		IsRecurring: tx.IsRecurring,
		Metadata:    tx.Metadata,
		Notes:       tx.Notes,
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   tx.UpdatedAt.Format(time.RFC3339),
	}
	if tx.RecurrenceCadence != nil {
		cadence := string(*tx.RecurrenceCadence)
		resp.RecurrenceCadence = &cadence
	}
	if tx.RecurrenceEndDate != nil {
		endDate := tx.RecurrenceEndDate.Format(dateLayout)
		resp.RecurrenceEndDate = &endDate
	}
	if tx.TransferPairID != nil {
		pairID := tx.TransferPairID.String()
		resp.TransferPairID = &pairID
	}
	if tx.TransferRole != nil {
		role := string(*tx.TransferRole)
		resp.TransferRole = &role
	}
	return resp
}
