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

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

var _ domain.BudgetRepository = (*BudgetRepository)(nil)

const budgetColumns = `id, owner_id, name, budget_amount, start_date, end_date, is_recurrent, created_at, updated_at, deleted_at`
const budgetLineColumns = `id, budget_id, category_id, amount, created_at, updated_at, deleted_at`

func scanBudget(row rowScanner) (*domain.Budget, error) {
	var (
		b            domain.Budget
		budgetAmount pgtype.Numeric
		startDate    pgtype.Date
		endDate      pgtype.Date
		deletedAt    pgtype.Timestamptz
	)
	err := row.Scan(&b.ID, &b.OwnerID, &b.Name, &budgetAmount, &startDate, &endDate, &b.IsRecurrent, &b.CreatedAt, &b.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	if budgetAmount.Valid {
		amount := pgNumericToDecimal(budgetAmount)
		b.BudgetAmount = &amount
	}
	b.StartDate = startDate.Time
	b.EndDate = endDate.Time
	if deletedAt.Valid {
		b.DeletedAt = &deletedAt.Time
	}
	return &b, nil
}

func scanBudgetLine(row rowScanner) (*domain.BudgetLine, error) {
	var (
		l         domain.BudgetLine
		amount    pgtype.Numeric
		deletedAt pgtype.Timestamptz
	)
	err := row.Scan(&l.ID, &l.BudgetID, &l.CategoryID, &amount, &l.CreatedAt, &l.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	l.Amount = pgNumericToDecimal(amount)
	if deletedAt.Valid {
		l.DeletedAt = &deletedAt.Time
	}
	return &l, nil
}

// GetWithLines retrieves a budget (regardless of owner, including
// soft-deleted so callers can decide) and its active lines
func (r *BudgetRepository) GetWithLines(ctx context.Context, id int32) (*domain.Budget, []*domain.BudgetLine, error) {
	budget, err := scanBudget(r.pool.QueryRow(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.ErrBudgetNotFound
		}
		return nil, nil, mapStoreError(err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+budgetLineColumns+` FROM budget_lines WHERE budget_id = $1 AND deleted_at IS NULL ORDER BY id`, id)
	if err != nil {
		return nil, nil, mapStoreError(err)
	}
	defer rows.Close()

	var lines []*domain.BudgetLine
	for rows.Next() {
		line, err := scanBudgetLine(rows)
		if err != nil {
			return nil, nil, mapStoreError(err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapStoreError(err)
	}
	return budget, lines, nil
}

// ListByOwner retrieves all active budgets for an owner
func (r *BudgetRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Budget, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE owner_id = $1 AND deleted_at IS NULL ORDER BY start_date DESC, id DESC`, ownerID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	defer rows.Close()

	var budgets []*domain.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, mapStoreError(err)
		}
		budgets = append(budgets, budget)
	}
	return budgets, mapStoreError(rows.Err())
}

// CreateWithLines inserts a budget and all its lines in one database
// transaction
func (r *BudgetRepository) CreateWithLines(ctx context.Context, budget *domain.Budget, lines []*domain.BudgetLine) (*domain.Budget, []*domain.BudgetLine, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, mapStoreError(err)
	}
	defer tx.Rollback(ctx)

	created, err := insertBudget(ctx, tx, budget)
	if err != nil {
		return nil, nil, err
	}

	createdLines, err := insertBudgetLines(ctx, tx, created.ID, lines)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, mapStoreError(err)
	}
	return created, createdLines, nil
}

// UpdateWithLines rewrites the budget fields and replaces the full line set
// in one database transaction: lines absent from the new set are
// soft-deleted, existing categories updated, new ones inserted.
func (r *BudgetRepository) UpdateWithLines(ctx context.Context, ownerID uuid.UUID, id int32, budget *domain.Budget, lines []*domain.BudgetLine) (*domain.Budget, []*domain.BudgetLine, error) {
	budgetAmount, err := nullableNumeric(budget)
	if err != nil {
		return nil, nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, mapStoreError(err)
	}
	defer tx.Rollback(ctx)

	updated, err := scanBudget(tx.QueryRow(ctx, `
		UPDATE budgets SET name = $3, budget_amount = $4, start_date = $5, end_date = $6, is_recurrent = $7, updated_at = now()
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL
		RETURNING `+budgetColumns,
		id, ownerID, budget.Name, budgetAmount, budget.StartDate, budget.EndDate, budget.IsRecurrent))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.ErrBudgetNotFound
		}
		return nil, nil, mapStoreError(err)
	}

	keep := make([]int32, 0, len(lines))
	for _, line := range lines {
		keep = append(keep, line.CategoryID)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE budget_lines SET deleted_at = now(), updated_at = now()
		WHERE budget_id = $1 AND deleted_at IS NULL AND NOT (category_id = ANY($2))`,
		id, keep); err != nil {
		return nil, nil, mapStoreError(err)
	}

	updatedLines, err := insertBudgetLines(ctx, tx, id, lines)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, mapStoreError(err)
	}
	return updated, updatedLines, nil
}

// SoftDelete marks the budget and all its lines deleted in one database
// transaction
func (r *BudgetRepository) SoftDelete(ctx context.Context, ownerID uuid.UUID, id int32) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapStoreError(err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE budgets SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`, id, ownerID)
	if err != nil {
		return mapStoreError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}

	if _, err := tx.Exec(ctx, `
		UPDATE budget_lines SET deleted_at = now(), updated_at = now()
		WHERE budget_id = $1 AND deleted_at IS NULL`, id); err != nil {
		return mapStoreError(err)
	}

	return mapStoreError(tx.Commit(ctx))
}

func insertBudget(ctx context.Context, tx pgx.Tx, budget *domain.Budget) (*domain.Budget, error) {
	budgetAmount, err := nullableNumeric(budget)
	if err != nil {
		return nil, err
	}

	created, err := scanBudget(tx.QueryRow(ctx, `
		INSERT INTO budgets (owner_id, name, budget_amount, start_date, end_date, is_recurrent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+budgetColumns,
		budget.OwnerID, budget.Name, budgetAmount, budget.StartDate, budget.EndDate, budget.IsRecurrent))
	if err != nil {
		return nil, mapStoreError(err)
	}
	return created, nil
}

// insertBudgetLines upserts the given lines for the budget, reviving a
// previously soft-deleted category allocation when it reappears.
func insertBudgetLines(ctx context.Context, tx pgx.Tx, budgetID int32, lines []*domain.BudgetLine) ([]*domain.BudgetLine, error) {
	result := make([]*domain.BudgetLine, 0, len(lines))
	for _, line := range lines {
		amount, err := decimalToPgNumeric(line.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid line amount: %w", err)
		}

		created, err := scanBudgetLine(tx.QueryRow(ctx, `
			INSERT INTO budget_lines (budget_id, category_id, amount)
			VALUES ($1, $2, $3)
			ON CONFLICT (budget_id, category_id)
			DO UPDATE SET amount = EXCLUDED.amount, deleted_at = NULL, updated_at = now()
			RETURNING `+budgetLineColumns,
			budgetID, line.CategoryID, amount))
		if err != nil {
			return nil, mapStoreError(err)
		}
		result = append(result, created)
	}
	return result, nil
}

func nullableNumeric(budget *domain.Budget) (*pgtype.Numeric, error) {
	if budget.BudgetAmount == nil {
		return nil, nil
	}
	num, err := decimalToPgNumeric(*budget.BudgetAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid budget amount: %w", err)
	}
	return &num, nil
}
