package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Category is a grouping key for aggregation. OwnerID is nil for global
// template categories visible to every user.
type Category struct {
	ID         int32           `json:"id"`
	OwnerID    *uuid.UUID      `json:"ownerId,omitempty"`
	Name       string          `json:"name"`
	Type       TransactionType `json:"type"`
	TemplateID *int32          `json:"templateId,omitempty"` // optional reference to a global template
	IsVisible  bool            `json:"isVisible"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	DeletedAt  *time.Time      `json:"deletedAt,omitempty"`
}

// IsDeleted reports whether the category has been soft-deleted.
func (c *Category) IsDeleted() bool {
	return c.DeletedAt != nil
}

// IsGlobal reports whether the category is a global template.
func (c *Category) IsGlobal() bool {
	return c.OwnerID == nil
}

// AccessibleBy reports whether the category may be used by the given owner.
func (c *Category) AccessibleBy(ownerID uuid.UUID) bool {
	return c.IsGlobal() || *c.OwnerID == ownerID
}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	// GetByID returns the category regardless of owner so callers can
	// distinguish Forbidden from NotFound. Soft-deleted rows are excluded.
	GetByID(ctx context.Context, id int32) (*Category, error)
	// ListByOwner returns the owner's categories plus global templates.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Category, error)
	Update(ctx context.Context, ownerID uuid.UUID, id int32, name string, isVisible bool) (*Category, error)
	SoftDelete(ctx context.Context, ownerID uuid.UUID, id int32) error
}
