package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRepository implements domain.AccountRepository using PostgreSQL
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

var _ domain.AccountRepository = (*AccountRepository)(nil)

const accountColumns = `id, owner_id, name, account_type, base_balance, currency, created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		a           domain.Account
		baseBalance pgtype.Numeric
		deletedAt   pgtype.Timestamptz
	)
	err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Type, &baseBalance, &a.Currency, &a.CreatedAt, &a.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	a.BaseBalance = pgNumericToDecimal(baseBalance)
	if deletedAt.Valid {
		a.DeletedAt = &deletedAt.Time
	}
	return &a, nil
}

// Create inserts a new account
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	balance, err := decimalToPgNumeric(account.BaseBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid base balance: %w", err)
	}

	query := `
		INSERT INTO accounts (owner_id, name, account_type, base_balance, currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + accountColumns

	created, err := scanAccount(r.pool.QueryRow(ctx, query,
		account.OwnerID, account.Name, string(account.Type), balance, account.Currency))
	if err != nil {
		return nil, mapStoreError(err)
	}
	return created, nil
}

// GetByID retrieves an account by ID, regardless of owner, excluding
// soft-deleted rows
func (r *AccountRepository) GetByID(ctx context.Context, id int32) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND deleted_at IS NULL`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, mapStoreError(err)
	}
	return account, nil
}

// ListByOwner retrieves all active accounts for an owner
func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 AND deleted_at IS NULL ORDER BY id`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, mapStoreError(err)
		}
		accounts = append(accounts, account)
	}
	return accounts, mapStoreError(rows.Err())
}

// Update renames an account
func (r *AccountRepository) Update(ctx context.Context, ownerID uuid.UUID, id int32, name string) (*domain.Account, error) {
	query := `
		UPDATE accounts SET name = $3, updated_at = now()
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL
		RETURNING ` + accountColumns

	account, err := scanAccount(r.pool.QueryRow(ctx, query, id, ownerID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, mapStoreError(err)
	}
	return account, nil
}

// SoftDelete marks an account as deleted
func (r *AccountRepository) SoftDelete(ctx context.Context, ownerID uuid.UUID, id int32) error {
	query := `
		UPDATE accounts SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`

	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return mapStoreError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
