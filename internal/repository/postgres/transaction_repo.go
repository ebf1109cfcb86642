package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

var _ domain.TransactionRepository = (*TransactionRepository)(nil)

const transactionColumns = `id, owner_id, account_id, name, amount, type, currency, occurred_at,
	category_id, is_recurring, recurrence_cadence, recurrence_end_date, metadata,
	transfer_pair_id, transfer_role, notes, created_at, updated_at, deleted_at`

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		t          domain.Transaction
		accountID  pgtype.Int4
		amount     pgtype.Numeric
		occurredAt pgtype.Date
		categoryID pgtype.Int4
		cadence    pgtype.Text
		recEnd     pgtype.Date
		metadata   []byte
		pairID     pgtype.UUID
		role       pgtype.Text
		notes      pgtype.Text
		deletedAt  pgtype.Timestamptz
	)
	err := row.Scan(&t.ID, &t.OwnerID, &accountID, &t.Name, &amount, &t.Type, &t.Currency, &occurredAt,
		&categoryID, &t.IsRecurring, &cadence, &recEnd, &metadata,
		&pairID, &role, &notes, &t.CreatedAt, &t.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	t.Amount = pgNumericToDecimal(amount)
	t.OccurredAt = occurredAt.Time
	if accountID.Valid {
		t.AccountID = &accountID.Int32
	}
	if categoryID.Valid {
		t.CategoryID = &categoryID.Int32
	}
	if cadence.Valid {
		c := domain.RecurrenceCadence(cadence.String)
		t.RecurrenceCadence = &c
	}
	if recEnd.Valid {
		t.RecurrenceEndDate = &recEnd.Time
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
			return nil, fmt.Errorf("decode transaction metadata: %w", err)
		}
	}
	if pairID.Valid {
		id := uuid.UUID(pairID.Bytes)
		t.TransferPairID = &id
	}
	if role.Valid {
		r := domain.TransferRole(role.String)
		t.TransferRole = &r
	}
	if notes.Valid {
		t.Notes = &notes.String
	}
	if deletedAt.Valid {
		t.DeletedAt = &deletedAt.Time
	}
	return &t, nil
}

type txQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertTransaction(ctx context.Context, q txQuerier, transaction *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	var metadata []byte
	if transaction.Metadata != nil {
		metadata, err = json.Marshal(transaction.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encode transaction metadata: %w", err)
		}
	}

	var cadence *string
	if transaction.RecurrenceCadence != nil {
		s := string(*transaction.RecurrenceCadence)
		cadence = &s
	}
	var role *string
	if transaction.TransferRole != nil {
		s := string(*transaction.TransferRole)
		role = &s
	}

	query := `
		INSERT INTO transactions (owner_id, account_id, name, amount, type, currency, occurred_at,
			category_id, is_recurring, recurrence_cadence, recurrence_end_date, metadata,
			transfer_pair_id, transfer_role, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + transactionColumns

	created, err := scanTransaction(q.QueryRow(ctx, query,
		transaction.OwnerID, transaction.AccountID, transaction.Name, amount,
		string(transaction.Type), transaction.Currency, transaction.OccurredAt,
		transaction.CategoryID, transaction.IsRecurring, cadence, transaction.RecurrenceEndDate,
		metadata, transaction.TransferPairID, role, transaction.Notes))
	if err != nil {
		return nil, mapStoreError(err)
	}
	return created, nil
}

// Create inserts a new transaction
func (r *TransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	return insertTransaction(ctx, r.pool, transaction)
}

// GetByID retrieves a transaction by ID, regardless of owner, including
// soft-deleted rows so callers can keep delete idempotent
func (r *TransactionRepository) GetByID(ctx context.Context, id int32) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	transaction, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, mapStoreError(err)
	}
	return transaction, nil
}

// ListByOwner retrieves non-deleted transactions with optional filters and pagination
func (r *TransactionRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	page := int32(1)
	pageSize := int32(domain.DefaultPageSize)

	var (
		accountID  *int32
		categoryID *int32
		startDate  *time.Time
		endDate    *time.Time
		txType     *string
	)
	if filters != nil {
		if filters.Page > 0 {
			page = filters.Page
		}
		if filters.PageSize > 0 {
			pageSize = filters.PageSize
			if pageSize > domain.MaxPageSize {
				pageSize = domain.MaxPageSize
			}
		}
		accountID = filters.AccountID
		categoryID = filters.CategoryID
		startDate = filters.StartDate
		endDate = filters.EndDate
		if filters.Type != nil {
			s := string(*filters.Type)
			txType = &s
		}
	}
	offset := (page - 1) * pageSize

	where := ` FROM transactions
		WHERE owner_id = $1 AND deleted_at IS NULL
		AND ($2::int IS NULL OR account_id = $2)
		AND ($3::int IS NULL OR category_id = $3)
		AND ($4::date IS NULL OR occurred_at >= $4)
		AND ($5::date IS NULL OR occurred_at <= $5)
		AND ($6::text IS NULL OR type = $6)`

	var totalItems int64
	err := r.pool.QueryRow(ctx, `SELECT count(*)`+where,
		ownerID, accountID, categoryID, startDate, endDate, txType).Scan(&totalItems)
	if err != nil {
		return nil, mapStoreError(err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+transactionColumns+where+` ORDER BY occurred_at DESC, id DESC LIMIT $7 OFFSET $8`,
		ownerID, accountID, categoryID, startDate, endDate, txType, pageSize, offset)
	if err != nil {
		return nil, mapStoreError(err)
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, mapStoreError(err)
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, mapStoreError(err)
	}

	totalPages := int32(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) > 0 {
		totalPages++
	}

	return &domain.PaginatedTransactions{
		Data:       transactions,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// ListActiveByOwner retrieves every non-deleted transaction for an owner in
// one read
func (r *TransactionRepository) ListActiveByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE owner_id = $1 AND deleted_at IS NULL ORDER BY occurred_at, id`
	return r.list(ctx, query, ownerID)
}

// ListByDateRange retrieves non-deleted transactions within [start, end] in
// one read
func (r *TransactionRepository) ListByDateRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE owner_id = $1 AND deleted_at IS NULL AND occurred_at >= $2 AND occurred_at <= $3
		ORDER BY occurred_at, id`
	return r.list(ctx, query, ownerID, start, end)
}

func (r *TransactionRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapStoreError(err)
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, mapStoreError(err)
		}
		transactions = append(transactions, transaction)
	}
	return transactions, mapStoreError(rows.Err())
}

// Update rewrites a transaction's mutable fields
func (r *TransactionRepository) Update(ctx context.Context, ownerID uuid.UUID, id int32, transaction *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	var metadata []byte
	if transaction.Metadata != nil {
		metadata, err = json.Marshal(transaction.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encode transaction metadata: %w", err)
		}
	}
	var cadence *string
	if transaction.RecurrenceCadence != nil {
		s := string(*transaction.RecurrenceCadence)
		cadence = &s
	}

	query := `
		UPDATE transactions
		SET account_id = $3, name = $4, amount = $5, type = $6, currency = $7, occurred_at = $8,
			category_id = $9, is_recurring = $10, recurrence_cadence = $11, recurrence_end_date = $12,
			metadata = $13, notes = $14, updated_at = now()
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL AND transfer_pair_id IS NULL
		RETURNING ` + transactionColumns

	updated, err := scanTransaction(r.pool.QueryRow(ctx, query,
		id, ownerID, transaction.AccountID, transaction.Name, amount, string(transaction.Type),
		transaction.Currency, transaction.OccurredAt, transaction.CategoryID, transaction.IsRecurring,
		cadence, transaction.RecurrenceEndDate, metadata, transaction.Notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, mapStoreError(err)
	}
	return updated, nil
}

// SoftDelete marks a transaction as deleted
func (r *TransactionRepository) SoftDelete(ctx context.Context, ownerID uuid.UUID, id int32) error {
	query := `
		UPDATE transactions SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`

	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return mapStoreError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// CreateTransferPair inserts both legs of a transfer inside one database
// transaction. If either insert fails the whole operation rolls back; a
// single committed leg is never observable.
func (r *TransactionRepository) CreateTransferPair(ctx context.Context, fromLeg, toLeg *domain.Transaction) (*domain.TransferResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	defer tx.Rollback(ctx)

	fromResult, err := insertTransaction(ctx, tx, fromLeg)
	if err != nil {
		return nil, err
	}
	toResult, err := insertTransaction(ctx, tx, toLeg)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapStoreError(err)
	}

	return &domain.TransferResult{
		FromTransaction: fromResult,
		ToTransaction:   toResult,
	}, nil
}

// GetTransferPair returns both active legs of a transfer pair
func (r *TransactionRepository) GetTransferPair(ctx context.Context, ownerID uuid.UUID, pairID uuid.UUID) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE owner_id = $1 AND transfer_pair_id = $2 AND deleted_at IS NULL ORDER BY transfer_role DESC`

	legs, err := r.list(ctx, query, ownerID, pairID)
	if err != nil {
		return nil, err
	}
	if len(legs) == 0 {
		return nil, domain.ErrTransferNotFound
	}
	return legs, nil
}

// UpdateTransferPair applies the same edit to both legs inside one database
// transaction. Anything other than exactly two updated legs rolls back.
func (r *TransactionRepository) UpdateTransferPair(ctx context.Context, ownerID uuid.UUID, pairID uuid.UUID, update *domain.TransferUpdate) ([]*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(update.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE transactions SET amount = $3, occurred_at = $4, notes = $5, updated_at = now()
		WHERE owner_id = $1 AND transfer_pair_id = $2 AND deleted_at IS NULL`,
		ownerID, pairID, amount, update.OccurredAt, update.Notes)
	if err != nil {
		return nil, mapStoreError(err)
	}
	switch tag.RowsAffected() {
	case 0:
		return nil, domain.ErrTransferNotFound
	case 2:
	default:
		// A lone leg means the pair invariant is already broken; refuse to
		// make it look like a valid transfer.
		return nil, fmt.Errorf("%w: transfer pair %s has %d active legs", domain.ErrConflict, pairID, tag.RowsAffected())
	}

	rows, err := tx.Query(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE owner_id = $1 AND transfer_pair_id = $2 AND deleted_at IS NULL ORDER BY transfer_role DESC`,
		ownerID, pairID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	defer rows.Close()

	var legs []*domain.Transaction
	for rows.Next() {
		leg, err := scanTransaction(rows)
		if err != nil {
			return nil, mapStoreError(err)
		}
		legs = append(legs, leg)
	}
	if err := rows.Err(); err != nil {
		return nil, mapStoreError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapStoreError(err)
	}
	return legs, nil
}

// SoftDeleteTransferPair marks both legs deleted in a single statement
func (r *TransactionRepository) SoftDeleteTransferPair(ctx context.Context, ownerID uuid.UUID, pairID uuid.UUID) error {
	query := `
		UPDATE transactions SET deleted_at = now(), updated_at = now()
		WHERE owner_id = $1 AND transfer_pair_id = $2 AND deleted_at IS NULL`

	tag, err := r.pool.Exec(ctx, query, ownerID, pairID)
	if err != nil {
		return mapStoreError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransferNotFound
	}
	return nil
}
