package service

import (
	"context"
	"testing"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/centavo/centavo-backend/internal/testutil"
	"github.com/google/uuid"
)

func TestCreateCategory_Success(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	service := NewCategoryService(repo)
	ownerID := uuid.New()

	category, err := service.CreateCategory(context.Background(), ownerID, CreateCategoryInput{
		Name: "  Groceries  ",
		Type: domain.TransactionTypeExpense,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if category.Name != "Groceries" {
		t.Errorf("Expected trimmed name, got %q", category.Name)
	}
	if category.OwnerID == nil || *category.OwnerID != ownerID {
		t.Error("Expected category owned by the creator")
	}
	if !category.IsVisible {
		t.Error("Expected new category visible by default")
	}
}

func TestCreateCategory_FromTemplate(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	service := NewCategoryService(repo)
	ownerID := uuid.New()

	repo.AddCategory(&domain.Category{
		ID:        1,
		OwnerID:   nil,
		Name:      "Food",
		Type:      domain.TransactionTypeExpense,
		IsVisible: true,
	})

	category, err := service.CreateCategory(context.Background(), ownerID, CreateCategoryInput{
		Name:       "Food",
		Type:       domain.TransactionTypeExpense,
		TemplateID: int32Ptr(1),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if category.TemplateID == nil || *category.TemplateID != 1 {
		t.Error("Expected template reference kept")
	}
}

func TestCreateCategory_TemplateMustBeGlobal(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	service := NewCategoryService(repo)
	ownerID := uuid.New()

	otherOwner := uuid.New()
	repo.AddCategory(&domain.Category{
		ID:        1,
		OwnerID:   &otherOwner,
		Name:      "Private",
		Type:      domain.TransactionTypeExpense,
		IsVisible: true,
	})

	_, err := service.CreateCategory(context.Background(), ownerID, CreateCategoryInput{
		Name:       "Copy",
		Type:       domain.TransactionTypeExpense,
		TemplateID: int32Ptr(1),
	})
	if err != domain.ErrCategoryNotFound {
		t.Errorf("Expected ErrCategoryNotFound for a non-global template, got %v", err)
	}
}

func TestGetCategories_IncludesGlobals(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	service := NewCategoryService(repo)
	ownerID := uuid.New()
	otherOwner := uuid.New()

	repo.AddCategory(&domain.Category{ID: 1, OwnerID: nil, Name: "Food", Type: domain.TransactionTypeExpense, IsVisible: true})
	repo.AddCategory(&domain.Category{ID: 2, OwnerID: &ownerID, Name: "Mine", Type: domain.TransactionTypeExpense, IsVisible: true})
	repo.AddCategory(&domain.Category{ID: 3, OwnerID: &otherOwner, Name: "Theirs", Type: domain.TransactionTypeExpense, IsVisible: true})

	categories, err := service.GetCategories(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("Expected global plus own category, got %d", len(categories))
	}
	for _, category := range categories {
		if category.ID == 3 {
			t.Error("Expected another owner's category excluded")
		}
	}
}

func TestUpdateCategory_GlobalReadOnly(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	service := NewCategoryService(repo)

	repo.AddCategory(&domain.Category{ID: 1, OwnerID: nil, Name: "Food", Type: domain.TransactionTypeExpense, IsVisible: true})

	_, err := service.UpdateCategory(context.Background(), uuid.New(), 1, "Renamed", true)
	if err != domain.ErrForbidden {
		t.Errorf("Expected ErrForbidden for a global template, got %v", err)
	}
}

func TestUpdateCategory_OwnCategory(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	service := NewCategoryService(repo)
	ownerID := uuid.New()

	repo.AddCategory(&domain.Category{ID: 1, OwnerID: &ownerID, Name: "Food", Type: domain.TransactionTypeExpense, IsVisible: true})

	category, err := service.UpdateCategory(context.Background(), ownerID, 1, "Dining", false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if category.Name != "Dining" || category.IsVisible {
		t.Errorf("Expected renamed hidden category, got %q visible=%v", category.Name, category.IsVisible)
	}
}

func TestDeleteCategory(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	service := NewCategoryService(repo)
	ownerID := uuid.New()
	otherOwner := uuid.New()

	repo.AddCategory(&domain.Category{ID: 1, OwnerID: &ownerID, Name: "Mine", Type: domain.TransactionTypeExpense, IsVisible: true})
	repo.AddCategory(&domain.Category{ID: 2, OwnerID: &otherOwner, Name: "Theirs", Type: domain.TransactionTypeExpense, IsVisible: true})
	repo.AddCategory(&domain.Category{ID: 3, OwnerID: nil, Name: "Global", Type: domain.TransactionTypeExpense, IsVisible: true})

	if err := service.DeleteCategory(context.Background(), ownerID, 1); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := service.DeleteCategory(context.Background(), ownerID, 2); err != domain.ErrForbidden {
		t.Errorf("Expected ErrForbidden for another owner's category, got %v", err)
	}
	if err := service.DeleteCategory(context.Background(), ownerID, 3); err != domain.ErrForbidden {
		t.Errorf("Expected ErrForbidden for a global template, got %v", err)
	}

	categories, err := service.GetCategories(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for _, category := range categories {
		if category.ID == 1 {
			t.Error("Expected deleted category excluded from listing")
		}
	}
}
