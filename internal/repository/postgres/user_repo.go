package postgres

import (
	"context"
	"errors"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

var _ domain.UserRepository = (*UserRepository)(nil)

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u    domain.User
		name pgtype.Text
	)
	if err := row.Scan(&u.ID, &u.Email, &name, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if name.Valid {
		u.Name = &name.String
	}
	return &u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT id, email, name, created_at, updated_at FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, mapStoreError(err)
	}
	return user, nil
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	created, err := scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, name) VALUES ($1, $2, $3)
		RETURNING id, email, name, created_at, updated_at`,
		user.ID, user.Email, user.Name))
	if err != nil {
		return nil, mapStoreError(err)
	}
	return created, nil
}
