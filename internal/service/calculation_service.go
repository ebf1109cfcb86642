package service

import (
	"context"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComputeBaseBalance returns the account's base contribution with the
// per-type sign adjustment applied: credit_card accounts store a liability,
// so their balance is inverted for display.
func ComputeBaseBalance(account *domain.Account) decimal.Decimal {
	if account.Type == domain.AccountTypeCreditCard {
		return account.BaseBalance.Neg()
	}
	return account.BaseBalance
}

// TransactionContribution returns the signed contribution of one transaction
// to its account's balance. Expenses and outgoing transfer legs subtract;
// everything else adds. Soft-deleted rows contribute nothing.
func TransactionContribution(tx *domain.Transaction) decimal.Decimal {
	if tx.IsDeleted() {
		return decimal.Zero
	}
	switch {
	case tx.Type == domain.TransactionTypeExpense:
		return tx.Amount.Neg()
	case tx.Type == domain.TransactionTypeTransfer && tx.TransferRole != nil && *tx.TransferRole == domain.TransferRoleOut:
		return tx.Amount.Neg()
	default:
		return tx.Amount
	}
}

// ComputeBalance derives an account's total balance from its transaction
// log. It is a pure function re-derived on every read, so it can never drift
// from the underlying ledger.
func ComputeBalance(account *domain.Account, transactions []*domain.Transaction) decimal.Decimal {
	total := ComputeBaseBalance(account)
	for _, tx := range transactions {
		total = total.Add(TransactionContribution(tx))
	}
	return total
}

// AccountBalance holds the computed balance view of one account.
type AccountBalance struct {
	AccountID    int32
	BaseBalance  decimal.Decimal // sign-adjusted
	TotalBalance decimal.Decimal
}

// CalculationService derives account balances from the ledger. All read
// paths share the same pure computation.
type CalculationService struct {
	accountRepo     domain.AccountRepository
	transactionRepo domain.TransactionRepository
}

// NewCalculationService creates a new CalculationService
func NewCalculationService(accountRepo domain.AccountRepository, transactionRepo domain.TransactionRepository) *CalculationService {
	return &CalculationService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
}

// CalculateBalances computes balances for every active account of the owner.
// Transactions are fetched in one read so the aggregation never mixes rows
// from different commit points.
func (s *CalculationService) CalculateBalances(ctx context.Context, ownerID uuid.UUID) (map[int32]*AccountBalance, error) {
	accounts, err := s.accountRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.ListActiveByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	byAccount := make(map[int32][]*domain.Transaction)
	for _, tx := range transactions {
		if tx.AccountID == nil {
			continue // orphaned legacy rows belong to no balance
		}
		byAccount[*tx.AccountID] = append(byAccount[*tx.AccountID], tx)
	}

	results := make(map[int32]*AccountBalance, len(accounts))
	for _, account := range accounts {
		results[account.ID] = &AccountBalance{
			AccountID:    account.ID,
			BaseBalance:  ComputeBaseBalance(account),
			TotalBalance: ComputeBalance(account, byAccount[account.ID]),
		}
	}
	return results, nil
}

// CalculateBalance computes the balance view of a single account.
func (s *CalculationService) CalculateBalance(ctx context.Context, ownerID uuid.UUID, accountID int32) (*AccountBalance, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}

	transactions, err := s.transactionRepo.ListActiveByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var own []*domain.Transaction
	for _, tx := range transactions {
		if tx.AccountID != nil && *tx.AccountID == accountID {
			own = append(own, tx)
		}
	}

	return &AccountBalance{
		AccountID:    account.ID,
		BaseBalance:  ComputeBaseBalance(account),
		TotalBalance: ComputeBalance(account, own),
	}, nil
}
