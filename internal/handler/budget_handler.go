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

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// BudgetLineRequest represents one category allocation in a budget request
type BudgetLineRequest struct {
	CategoryID int32  `json:"categoryId" validate:"required"`
	Amount     string `json:"amount" validate:"required"`
}

// BudgetRequest represents the create/update budget request body
type BudgetRequest struct {
	Name         string              `json:"name" validate:"required,max=255"`
	BudgetAmount *string             `json:"budgetAmount,omitempty"`
	StartDate    string              `json:"startDate" validate:"required"`
	EndDate      string              `json:"endDate" validate:"required"`
	IsRecurrent  bool                `json:"isRecurrent"`
	Lines        []BudgetLineRequest `json:"budgetLines" validate:"dive"`
}

// BudgetResponse represents a budget in list responses
type BudgetResponse struct {
	ID           int32   `json:"id"`
	Name         string  `json:"name"`
	BudgetAmount *string `json:"budgetAmount,omitempty"`
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	IsRecurrent  bool    `json:"isRecurrent"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

// BudgetLineProgressResponse represents one line's computed progress
type BudgetLineProgressResponse struct {
	CategoryID         int32   `json:"categoryId"`
	Amount             string  `json:"amount"`
	SpentAmount        string  `json:"spentAmount"`
	RemainingAmount    string  `json:"remainingAmount"`
	ProgressPercentage float64 `json:"progressPercentage"`
}

// BudgetTotalsResponse represents budget-wide progress
type BudgetTotalsResponse struct {
	TotalBudget               string  `json:"totalBudget"`
	TotalSpent                string  `json:"totalSpent"`
	TotalRemaining            string  `json:"totalRemaining"`
	OverallProgressPercentage float64 `json:"overallProgressPercentage"`
}

// BudgetDetailsResponse represents the full computed budget view
type BudgetDetailsResponse struct {
	Budget       BudgetResponse               `json:"budget"`
	PeriodStart  string                       `json:"periodStart"`
	PeriodEnd    string                       `json:"periodEnd"`
	BudgetLines  []BudgetLineProgressResponse `json:"budgetLines"`
	TotalMetrics BudgetTotalsResponse         `json:"totalMetrics"`
}

// CreateBudget handles POST /api/v1/budgets
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	input, resp := h.bindBudgetInput(c)
	if resp != nil {
		return resp
	}

	details, err := h.budgetService.CreateBudget(c.Request().Context(), ownerID, *input)
	if err != nil {
		if resp := budgetValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to create budget")
		return renderResourceError(c, err, "Budget")
	}

	log.Info().Str("owner_id", ownerID.String()).Int32("budget_id", details.Budget.ID).Str("name", details.Budget.Name).Msg("Budget created")
	return c.JSON(http.StatusCreated, toBudgetDetailsResponse(details))
}

// GetBudgets handles GET /api/v1/budgets
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	budgets, err := h.budgetService.ListBudgets(c.Request().Context(), ownerID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to list budgets")
		return renderResourceError(c, err, "Budget")
	}

	response := make([]BudgetResponse, len(budgets))
	for i, budget := range budgets {
		response[i] = toBudgetResponse(budget)
	}

	return c.JSON(http.StatusOK, response)
}

// GetBudget handles GET /api/v1/budgets/:id
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	details, err := h.budgetService.GetBudgetDetails(c.Request().Context(), ownerID, int32(id), time.Now().UTC())
	if err != nil {
		return renderResourceError(c, err, "Budget")
	}

	return c.JSON(http.StatusOK, toBudgetDetailsResponse(details))
}

// UpdateBudget handles PUT /api/v1/budgets/:id
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	input, resp := h.bindBudgetInput(c)
	if resp != nil {
		return resp
	}

	details, err := h.budgetService.UpdateBudget(c.Request().Context(), ownerID, int32(id), *input)
	if err != nil {
		if resp := budgetValidationResponse(c, err); resp != nil {
			return resp
		}
		return renderResourceError(c, err, "Budget")
	}

	log.Info().Str("owner_id", ownerID.String()).Int32("budget_id", details.Budget.ID).Msg("Budget updated")
	return c.JSON(http.StatusOK, toBudgetDetailsResponse(details))
}

// DeleteBudget handles DELETE /api/v1/budgets/:id
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	if err := h.budgetService.DeleteBudget(c.Request().Context(), ownerID, int32(id)); err != nil {
		return renderResourceError(c, err, "Budget")
	}

	log.Info().Str("owner_id", ownerID.String()).Int("budget_id", id).Msg("Budget deleted (soft)")
	return c.NoContent(http.StatusNoContent)
}

func (h *BudgetHandler) bindBudgetInput(c echo.Context) (*service.BudgetInput, error) {
	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return nil, NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return nil, NewValidationError(c, "Validation failed", fieldErrors(err))
	}

	startDate, err := time.ParseInLocation(dateLayout, req.StartDate, time.UTC)
	if err != nil {
		return nil, NewValidationError(c, "Invalid start date", []ValidationError{
			{Field: "startDate", Message: "Must be a date in YYYY-MM-DD format"},
		})
	}
	endDate, err := time.ParseInLocation(dateLayout, req.EndDate, time.UTC)
	if err != nil {
		return nil, NewValidationError(c, "Invalid end date", []ValidationError{
			{Field: "endDate", Message: "Must be a date in YYYY-MM-DD format"},
		})
	}

	input := &service.BudgetInput{
		Name:        req.Name,
		StartDate:   startDate,
		EndDate:     endDate,
		IsRecurrent: req.IsRecurrent,
	}

	if req.BudgetAmount != nil {
		amount, err := decimal.NewFromString(*req.BudgetAmount)
		if err != nil {
			return nil, NewValidationError(c, "Invalid budget amount", []ValidationError{
				{Field: "budgetAmount", Message: "Must be a valid decimal number"},
			})
		}
		input.BudgetAmount = &amount
	}

	for _, line := range req.Lines {
		amount, err := decimal.NewFromString(line.Amount)
		if err != nil {
			return nil, NewValidationError(c, "Invalid line amount", []ValidationError{
				{Field: "budgetLines.amount", Message: "Must be a valid decimal number"},
			})
		}
		input.Lines = append(input.Lines, service.BudgetLineInput{
			CategoryID: line.CategoryID,
			Amount:     amount,
		})
	}

	return input, nil
}

func budgetValidationResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 255 characters or less"},
		})
	case errors.Is(err, domain.ErrInvalidDateRange):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "endDate", Message: "End date must not precede start date"},
		})
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "budgetLines.amount", Message: "Amounts must not be negative"},
		})
	case errors.Is(err, domain.ErrDuplicateBudgetLine):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "budgetLines", Message: "Each category may appear at most once"},
		})
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "budgetLines.categoryId", Message: "Category does not exist or is not accessible"},
		})
	}
	return nil
}

func toBudgetResponse(budget *domain.Budget) BudgetResponse {
	resp := BudgetResponse{
		ID:          budget.ID,
		Name:        budget.Name,
		StartDate:   budget.StartDate.Format(dateLayout),
		EndDate:     budget.EndDate.Format(dateLayout),
		IsRecurrent: budget.IsRecurrent,
		CreatedAt:   budget.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   budget.UpdatedAt.Format(time.RFC3339),
	}
	if budget.BudgetAmount != nil {
		amount := budget.BudgetAmount.StringFixed(2)
		resp.BudgetAmount = &amount
	}
	return resp
}

func toBudgetDetailsResponse(details *domain.BudgetDetails) BudgetDetailsResponse {
	lines := make([]BudgetLineProgressResponse, len(details.Lines))
	for i, line := range details.Lines {
		lines[i] = BudgetLineProgressResponse{
			CategoryID:         line.CategoryID,
			Amount:             line.Amount.StringFixed(2),
			SpentAmount:        line.SpentAmount.StringFixed(2),
			RemainingAmount:    line.RemainingAmount.StringFixed(2),
			ProgressPercentage: line.ProgressPercentage,
		}
	}

	return BudgetDetailsResponse{
		Budget:      toBudgetResponse(details.Budget),
		PeriodStart: details.PeriodStart.Format(dateLayout),
		PeriodEnd:   details.PeriodEnd.Format(dateLayout),
		BudgetLines: lines,
		TotalMetrics: BudgetTotalsResponse{
			TotalBudget:               details.Totals.TotalBudget.StringFixed(2),
			TotalSpent:                details.Totals.TotalSpent.StringFixed(2),
			TotalRemaining:            details.Totals.TotalRemaining.StringFixed(2),
			OverallProgressPercentage: details.Totals.OverallProgressPercentage,
		},
	}
}
