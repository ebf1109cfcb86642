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
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the create category request body
type CreateCategoryRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	Type       string `json:"type" validate:"required"`
	TemplateID *int32 `json:"templateId,omitempty"`
}

// UpdateCategoryRequest represents the update category request body
type UpdateCategoryRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	IsVisible bool   `json:"isVisible"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID         int32  `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	IsGlobal   bool   `json:"isGlobal"`
	TemplateID *int32 `json:"templateId,omitempty"`
	IsVisible  bool   `json:"isVisible"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// CreateCategory handles POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", fieldErrors(err))
	}

	input := service.CreateCategoryInput{
		Name:       req.Name,
		Type:       domain.TransactionType(req.Type),
		TemplateID: req.TemplateID,
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), ownerID, input)
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		}
		if errors.Is(err, domain.ErrNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 100 characters or less"},
			})
		}
		if errors.Is(err, domain.ErrInvalidTransactionType) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "type", Message: "Type must be a valid transaction type"},
			})
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to create category")
		return renderResourceError(c, err, "Category")
	}

	log.Info().Str("owner_id", ownerID.String()).Int32("category_id", category.ID).Str("name", category.Name).Msg("Category created")
	return c.JSON(http.StatusCreated, toCategoryResponse(category))
}

// GetCategories handles GET /api/v1/categories
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	categories, err := h.categoryService.GetCategories(c.Request().Context(), ownerID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to list categories")
		return renderResourceError(c, err, "Category")
	}

	response := make([]CategoryResponse, len(categories))
	for i, category := range categories {
		response[i] = toCategoryResponse(category)
	}

	return c.JSON(http.StatusOK, response)
}

// UpdateCategory handles PUT /api/v1/categories/:id
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	var req UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), ownerID, int32(id), req.Name, req.IsVisible)
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		}
		if errors.Is(err, domain.ErrNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 100 characters or less"},
			})
		}
		return renderResourceError(c, err, "Category")
	}

	log.Info().Str("owner_id", ownerID.String()).Int32("category_id", category.ID).Msg("Category updated")
	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

// DeleteCategory handles DELETE /api/v1/categories/:id
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	if err := h.categoryService.DeleteCategory(c.Request().Context(), ownerID, int32(id)); err != nil {
		return renderResourceError(c, err, "Category")
	}

	log.Info().Str("owner_id", ownerID.String()).Int("category_id", id).Msg("Category deleted (soft)")
	return c.NoContent(http.StatusNoContent)
}

func toCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:         category.ID,
		Name:       category.Name,
		Type:       string(category.Type),
		IsGlobal:   category.IsGlobal(),
		TemplateID: category.TemplateID,
		IsVisible:  category.IsVisible,
		CreatedAt:  category.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  category.UpdatedAt.Format(time.RFC3339),
	}
}
