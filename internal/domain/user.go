package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the owner of every other entity. Authentication happens outside
// this service; the auth middleware only resolves the token subject to an ID.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
}
