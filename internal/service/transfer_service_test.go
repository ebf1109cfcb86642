package service

import (
	"context"
	"testing"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/centavo/centavo-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newTransferFixture(t *testing.T) (*TransferService, *testutil.MockTransactionRepository, *testutil.MockAccountRepository, uuid.UUID) {
	t.Helper()
	accountRepo := testutil.NewMockAccountRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	ownerID := uuid.New()

	accountRepo.AddAccount(&domain.Account{
		ID:          1,
		OwnerID:     ownerID,
		Name:        "Checking",
		Type:        domain.AccountTypeChecking,
		BaseBalance: decimal.NewFromFloat(500.00),
		Currency:    "EUR",
	})
	accountRepo.AddAccount(&domain.Account{
		ID:          2,
		OwnerID:     ownerID,
		Name:        "Savings",
		Type:        domain.AccountTypeSavings,
		BaseBalance: decimal.Zero,
		Currency:    "EUR",
	})

	return NewTransferService(transactionRepo, accountRepo), transactionRepo, accountRepo, ownerID
}

func TestCreateTransfer_Success(t *testing.T) {
	transferService, _, _, ownerID := newTransferFixture(t)

	result, err := transferService.CreateTransfer(context.Background(), ownerID, CreateTransferInput{
		FromAccountID: 1,
		ToAccountID:   2,
		Amount:        decimal.NewFromFloat(150.00),
		Currency:      "eur",
		Date:          time.Date(2025, 3, 10, 15, 4, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	from := result.FromTransaction
	to := result.ToTransaction

	if from.TransferPairID == nil || to.TransferPairID == nil || *from.TransferPairID != *to.TransferPairID {
		t.Fatal("Expected both legs to share one transfer pair ID")
	}
	if *from.TransferRole != domain.TransferRoleOut || *to.TransferRole != domain.TransferRoleIn {
		t.Errorf("Expected out/in roles, got %v/%v", *from.TransferRole, *to.TransferRole)
	}
	if from.Type != domain.TransactionTypeTransfer || to.Type != domain.TransactionTypeTransfer {
		t.Error("Expected both legs to have type transfer")
	}
	if !from.Amount.Equal(to.Amount) {
		t.Errorf("Expected equal amounts on both legs, got %s and %s", from.Amount, to.Amount)
	}
	if from.Currency != "EUR" {
		t.Errorf("Expected currency upper-cased to EUR, got %s", from.Currency)
	}
	if from.Name != "Transfer to Savings" {
		t.Errorf("Unexpected outgoing leg name %q", from.Name)
	}
	if to.Name != "Transfer from Checking" {
		t.Errorf("Unexpected incoming leg name %q", to.Name)
	}
	if !from.OccurredAt.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected occurred_at truncated to midnight UTC, got %v", from.OccurredAt)
	}
}

func TestCreateTransfer_SameAccount(t *testing.T) {
	transferService, _, _, ownerID := newTransferFixture(t)

	_, err := transferService.CreateTransfer(context.Background(), ownerID, CreateTransferInput{
		FromAccountID: 1,
		ToAccountID:   1,
		Amount:        decimal.NewFromFloat(10.00),
		Currency:      "EUR",
		Date:          time.Now(),
	})
	if err != domain.ErrSameAccountTransfer {
		t.Errorf("Expected ErrSameAccountTransfer, got %v", err)
	}
}

func TestCreateTransfer_NonPositiveAmount(t *testing.T) {
	transferService, _, _, ownerID := newTransferFixture(t)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromFloat(-5.00)} {
		_, err := transferService.CreateTransfer(context.Background(), ownerID, CreateTransferInput{
			FromAccountID: 1,
			ToAccountID:   2,
			Amount:        amount,
			Currency:      "EUR",
			Date:          time.Now(),
		})
		if err != domain.ErrInvalidAmount {
			t.Errorf("Amount %s: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestCreateTransfer_UnknownAccount(t *testing.T) {
	transferService, _, _, ownerID := newTransferFixture(t)

	_, err := transferService.CreateTransfer(context.Background(), ownerID, CreateTransferInput{
		FromAccountID: 1,
		ToAccountID:   99,
		Amount:        decimal.NewFromFloat(10.00),
		Currency:      "EUR",
		Date:          time.Now(),
	})
	if err != domain.ErrAccountNotFound {
		t.Errorf("Expected ErrAccountNotFound, got %v", err)
	}
}

func TestCreateTransfer_OtherOwnerAccount(t *testing.T) {
	transferService, _, accountRepo, ownerID := newTransferFixture(t)

	accountRepo.AddAccount(&domain.Account{
		ID:          3,
		OwnerID:     uuid.New(),
		Name:        "Not yours",
		Type:        domain.AccountTypeChecking,
		BaseBalance: decimal.Zero,
		Currency:    "EUR",
	})

	_, err := transferService.CreateTransfer(context.Background(), ownerID, CreateTransferInput{
		FromAccountID: 1,
		ToAccountID:   3,
		Amount:        decimal.NewFromFloat(10.00),
		Currency:      "EUR",
		Date:          time.Now(),
	})
	if err != domain.ErrForbidden {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
}

func TestCreateTransfer_AtomicFailureWritesNothing(t *testing.T) {
	transferService, transactionRepo, _, ownerID := newTransferFixture(t)

	transactionRepo.CreateTransferPairFn = func(ctx context.Context, fromLeg, toLeg *domain.Transaction) (*domain.TransferResult, error) {
		// Simulates the store rejecting the pair mid-write; nothing persists.
		return nil, domain.ErrConflict
	}

	_, err := transferService.CreateTransfer(context.Background(), ownerID, CreateTransferInput{
		FromAccountID: 1,
		ToAccountID:   2,
		Amount:        decimal.NewFromFloat(10.00),
		Currency:      "EUR",
		Date:          time.Now(),
	})
	if err != domain.ErrConflict {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}
	if len(transactionRepo.Transactions) != 0 {
		t.Errorf("Expected no legs persisted, found %d", len(transactionRepo.Transactions))
	}
}

func TestUpdateTransfer_BothLegsChange(t *testing.T) {
	transferService, _, _, ownerID := newTransferFixture(t)

	created, err := transferService.CreateTransfer(context.Background(), ownerID, CreateTransferInput{
		FromAccountID: 1,
		ToAccountID:   2,
		Amount:        decimal.NewFromFloat(100.00),
		Currency:      "EUR",
		Date:          time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	pairID := *created.FromTransaction.TransferPairID
	updated, err := transferService.UpdateTransfer(context.Background(), ownerID, pairID, UpdateTransferInput{
		Amount: decimal.NewFromFloat(75.00),
		Date:   time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !updated.FromTransaction.Amount.Equal(decimal.NewFromFloat(75.00)) {
		t.Errorf("Expected outgoing amount 75.00, got %s", updated.FromTransaction.Amount)
	}
	if !updated.ToTransaction.Amount.Equal(decimal.NewFromFloat(75.00)) {
		t.Errorf("Expected incoming amount 75.00, got %s", updated.ToTransaction.Amount)
	}
}

func TestDeleteTransfer_BothLegsDeleted(t *testing.T) {
	transferService, transactionRepo, _, ownerID := newTransferFixture(t)

	created, err := transferService.CreateTransfer(context.Background(), ownerID, CreateTransferInput{
		FromAccountID: 1,
		ToAccountID:   2,
		Amount:        decimal.NewFromFloat(100.00),
		Currency:      "EUR",
		Date:          time.Now(),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	pairID := *created.FromTransaction.TransferPairID
	if err := transferService.DeleteTransfer(context.Background(), ownerID, pairID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, tx := range transactionRepo.Transactions {
		if !tx.IsDeleted() {
			t.Errorf("Expected leg %d to be soft-deleted", tx.ID)
		}
	}

	_, err = transferService.GetTransfer(context.Background(), ownerID, pairID)
	if err != domain.ErrTransferNotFound {
		t.Errorf("Expected ErrTransferNotFound after delete, got %v", err)
	}
}

func TestGetTransfer_OtherOwner(t *testing.T) {
	transferService, _, _, ownerID := newTransferFixture(t)

	created, err := transferService.CreateTransfer(context.Background(), ownerID, CreateTransferInput{
		FromAccountID: 1,
		ToAccountID:   2,
		Amount:        decimal.NewFromFloat(100.00),
		Currency:      "EUR",
		Date:          time.Now(),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err = transferService.GetTransfer(context.Background(), uuid.New(), *created.FromTransaction.TransferPairID)
	if err != domain.ErrTransferNotFound {
		t.Errorf("Expected ErrTransferNotFound for another owner, got %v", err)
	}
}
