package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/centavo/centavo-backend/internal/middleware"
	"github.com/centavo/centavo-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransferHandler handles transfer-related HTTP requests
type TransferHandler struct {
	transferService *service.TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService *service.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// CreateTransferRequest represents the create transfer request body
type CreateTransferRequest struct {
	FromAccountID int32   `json:"fromAccountId" validate:"required"`
	ToAccountID   int32   `json:"toAccountId" validate:"required"`
	Amount        string  `json:"amount" validate:"required"`
	Currency      string  `json:"currency" validate:"required,len=3"`
	Date          string  `json:"date" validate:"required"`
	Description   *string `json:"description,omitempty"`
}

// UpdateTransferRequest represents the update transfer request body
type UpdateTransferRequest struct {
	Amount      string  `json:"amount" validate:"required"`
	Date        string  `json:"date" validate:"required"`
	Description *string `json:"description,omitempty"`
}

// TransferResponse represents both legs of a transfer
type TransferResponse struct {
	TransferPairID  string              `json:"transferPairId"`
	FromTransaction TransactionResponse `json:"fromTransaction"`
	ToTransaction   TransactionResponse `json:"toTransaction"`
}

// CreateTransfer handles POST /api/v1/transfers
func (h *TransferHandler) CreateTransfer(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateTransferRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", fieldErrors(err))
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}
	date, err := time.ParseInLocation(dateLayout, req.Date, time.UTC)
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "date", Message: "Must be a date in YYYY-MM-DD format"},
		})
	}

	input := service.CreateTransferInput{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        amount,
		Currency:      req.Currency,
		Date:          date,
		Description:   req.Description,
	}

	result, err := h.transferService.CreateTransfer(c.Request().Context(), ownerID, input)
	if err != nil {
		if resp := transferValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to create transfer")
		return renderResourceError(c, err, "Transfer")
	}

	log.Info().
		Str("owner_id", ownerID.String()).
		Int32("from_account_id", req.FromAccountID).
		Int32("to_account_id", req.ToAccountID).
		Msg("Transfer created")

	return c.JSON(http.StatusCreated, toTransferResponse(result))
}

// GetTransfer handles GET /api/v1/transfers/:pairId
func (h *TransferHandler) GetTransfer(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	pairID, err := uuid.Parse(c.Param("pairId"))
	if err != nil {
		return NewValidationError(c, "Invalid transfer pair ID", nil)
	}

	result, err := h.transferService.GetTransfer(c.Request().Context(), ownerID, pairID)
	if err != nil {
		return renderResourceError(c, err, "Transfer")
	}

	return c.JSON(http.StatusOK, toTransferResponse(result))
}

// UpdateTransfer handles PUT /api/v1/transfers/:pairId
func (h *TransferHandler) UpdateTransfer(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	pairID, err := uuid.Parse(c.Param("pairId"))
	if err != nil {
		return NewValidationError(c, "Invalid transfer pair ID", nil)
	}

	var req UpdateTransferRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", fieldErrors(err))
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}
	date, err := time.ParseInLocation(dateLayout, req.Date, time.UTC)
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "date", Message: "Must be a date in YYYY-MM-DD format"},
		})
	}

	input := service.UpdateTransferInput{
		Amount:      amount,
		Date:        date,
		Description: req.Description,
	}

	result, err := h.transferService.UpdateTransfer(c.Request().Context(), ownerID, pairID, input)
	if err != nil {
		if resp := transferValidationResponse(c, err); resp != nil {
			return resp
		}
		return renderResourceError(c, err, "Transfer")
	}

	log.Info().Str("owner_id", ownerID.String()).Str("transfer_pair_id", pairID.String()).Msg("Transfer updated")
	return c.JSON(http.StatusOK, toTransferResponse(result))
}

// DeleteTransfer handles DELETE /api/v1/transfers/:pairId
func (h *TransferHandler) DeleteTransfer(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	pairID, err := uuid.Parse(c.Param("pairId"))
	if err != nil {
		return NewValidationError(c, "Invalid transfer pair ID", nil)
	}

	if err := h.transferService.DeleteTransfer(c.Request().Context(), ownerID, pairID); err != nil {
		return renderResourceError(c, err, "Transfer")
	}

	log.Info().Str("owner_id", ownerID.String()).Str("transfer_pair_id", pairID.String()).Msg("Transfer deleted (soft)")
	return c.NoContent(http.StatusNoContent)
}

func transferValidationResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrSameAccountTransfer):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "toAccountId", Message: "Source and destination accounts must differ"},
		})
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be positive"},
		})
	case errors.Is(err, domain.ErrCurrencyRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "currency", Message: "Currency is required"},
		})
	case errors.Is(err, domain.ErrNotesTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "description", Message: "Description must be 1000 characters or less"},
		})
	}
	return nil
}

func toTransferResponse(result *domain.TransferResult) TransferResponse {
	resp := TransferResponse{
		FromTransaction: toTransactionResponse(result.FromTransaction),
		ToTransaction:   toTransactionResponse(result.ToTransaction),
	}
	if result.FromTransaction.TransferPairID != nil {
		resp.TransferPairID = result.FromTransaction.TransferPairID.String()
	}
	return resp
}
