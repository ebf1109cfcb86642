package service

import (
	"context"
	"strings"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/google/uuid"
)

// CategoryService handles category-related business logic
type CategoryService struct {
	categoryRepo domain.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CreateCategoryInput holds the input for creating a category
type CreateCategoryInput struct {
	Name       string
	Type       domain.TransactionType
	TemplateID *int32
}

// CreateCategory creates a user-owned category
func (s *CategoryService) CreateCategory(ctx context.Context, ownerID uuid.UUID, input CreateCategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxCategoryNameLength {
		return nil, domain.ErrNameTooLong
	}
	if !domain.ValidTransactionTypes[input.Type] {
		return nil, domain.ErrInvalidTransactionType
	}

	if input.TemplateID != nil {
		template, err := s.categoryRepo.GetByID(ctx, *input.TemplateID)
		if err != nil {
			return nil, err
		}
		if !template.IsGlobal() {
			return nil, domain.ErrCategoryNotFound
		}
	}

	owner := ownerID
	category := &domain.Category{
		OwnerID:    &owner,
		Name:       name,
		Type:       input.Type,
		TemplateID: input.TemplateID,
		IsVisible:  true,
	}
	return s.categoryRepo.Create(ctx, category)
}

// GetCategories returns the owner's categories plus global templates
func (s *CategoryService) GetCategories(ctx context.Context, ownerID uuid.UUID) ([]*domain.Category, error) {
	return s.categoryRepo.ListByOwner(ctx, ownerID)
}

// UpdateCategory renames a category or toggles its visibility. Global
// templates are read-only.
func (s *CategoryService) UpdateCategory(ctx context.Context, ownerID uuid.UUID, id int32, name string, isVisible bool) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxCategoryNameLength {
		return nil, domain.ErrNameTooLong
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.IsGlobal() || *category.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}

	return s.categoryRepo.Update(ctx, ownerID, id, name, isVisible)
}

// DeleteCategory soft deletes a user-owned category. Transactions keep their
// category reference; aggregations simply skip rows whose category has gone.
func (s *CategoryService) DeleteCategory(ctx context.Context, ownerID uuid.UUID, id int32) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if category.IsGlobal() || *category.OwnerID != ownerID {
		return domain.ErrForbidden
	}
	return s.categoryRepo.SoftDelete(ctx, ownerID, id)
}
