package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/centavo/centavo-backend/internal/middleware"
	"github.com/centavo/centavo-backend/internal/service"
	"github.com/centavo/centavo-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// newTestContext builds an echo context with the request validator wired,
// the way the server configures it at startup.
func newTestContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewRequestValidator()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func newAccountHandlerFixture() (*AccountHandler, *testutil.MockAccountRepository, *testutil.MockTransactionRepository) {
	accountRepo := testutil.NewMockAccountRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	accountService := service.NewAccountService(accountRepo)
	calculationService := service.NewCalculationService(accountRepo, transactionRepo)
	return NewAccountHandler(accountService, calculationService), accountRepo, transactionRepo
}

func TestCreateAccountHandler_Success(t *testing.T) {
	handler, _, _ := newAccountHandlerFixture()
	ownerID := uuid.New()

	c, rec := newTestContext(http.MethodPost, "/api/v1/accounts", `{"name": "My Savings", "type": "savings", "baseBalance": "1000.50", "currency": "eur"}`)
	middleware.SetOwnerID(c, ownerID)

	if err := handler.CreateAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	var response AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Name != "My Savings" {
		t.Errorf("Expected name 'My Savings', got %s", response.Name)
	}
	if response.BaseBalance != "1000.50" {
		t.Errorf("Expected base balance '1000.50', got %s", response.BaseBalance)
	}
	if response.Currency != "EUR" {
		t.Errorf("Expected currency 'EUR', got %s", response.Currency)
	}
}

func TestCreateAccountHandler_MissingCurrency(t *testing.T) {
	handler, _, _ := newAccountHandlerFixture()

	c, rec := newTestContext(http.MethodPost, "/api/v1/accounts", `{"name": "My Savings", "type": "savings"}`)
	middleware.SetOwnerID(c, uuid.New())

	if err := handler.CreateAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCreateAccountHandler_Unauthenticated(t *testing.T) {
	handler, _, _ := newAccountHandlerFixture()

	c, rec := newTestContext(http.MethodPost, "/api/v1/accounts", `{"name": "My Savings", "type": "savings", "currency": "EUR"}`)

	if err := handler.CreateAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestGetAccountsHandler_IncludesTotals(t *testing.T) {
	handler, accountRepo, transactionRepo := newAccountHandlerFixture()
	ownerID := uuid.New()

	accountRepo.AddAccount(&domain.Account{
		ID:          1,
		OwnerID:     ownerID,
		Name:        "Checking",
		Type:        domain.AccountTypeChecking,
		BaseBalance: decimal.NewFromFloat(100.00),
		Currency:    "EUR",
	})
	accountID := int32(1)
	transactionRepo.AddTransaction(&domain.Transaction{
		ID:        1,
		OwnerID:   ownerID,
		AccountID: &accountID,
		Name:      "Salary",
		Amount:    decimal.NewFromFloat(50.00),
		Type:      domain.TransactionTypeIncome,
		Currency:  "EUR",
	})

	c, rec := newTestContext(http.MethodGet, "/api/v1/accounts", "")
	middleware.SetOwnerID(c, ownerID)

	if err := handler.GetAccounts(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("Expected 1 account, got %d", len(response))
	}
	if response[0].TotalBalance == nil || *response[0].TotalBalance != "150.00" {
		t.Errorf("Expected total balance '150.00', got %v", response[0].TotalBalance)
	}
}

func TestGetBalanceHandler_CreditCardInversion(t *testing.T) {
	handler, accountRepo, _ := newAccountHandlerFixture()
	ownerID := uuid.New()

	accountRepo.AddAccount(&domain.Account{
		ID:          1,
		OwnerID:     ownerID,
		Name:        "Visa",
		Type:        domain.AccountTypeCreditCard,
		BaseBalance: decimal.NewFromFloat(200.00),
		Currency:    "EUR",
	})

	c, rec := newTestContext(http.MethodGet, "/api/v1/accounts/1/balance", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	middleware.SetOwnerID(c, ownerID)

	if err := handler.GetBalance(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.BaseBalance != "-200.00" {
		t.Errorf("Expected base balance '-200.00', got %s", response.BaseBalance)
	}
	if response.TotalBalance != "-200.00" {
		t.Errorf("Expected total balance '-200.00', got %s", response.TotalBalance)
	}
}

func TestGetAccountHandler_OtherOwnerRendersNotFound(t *testing.T) {
	handler, accountRepo, _ := newAccountHandlerFixture()

	accountRepo.AddAccount(&domain.Account{
		ID:          1,
		OwnerID:     uuid.New(),
		Name:        "Not yours",
		Type:        domain.AccountTypeChecking,
		BaseBalance: decimal.Zero,
		Currency:    "EUR",
	})

	c, rec := newTestContext(http.MethodGet, "/api/v1/accounts/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	middleware.SetOwnerID(c, uuid.New())

	if err := handler.GetAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for another owner's account, got %d", rec.Code)
	}
}

func TestDeleteAccountHandler(t *testing.T) {
	handler, accountRepo, _ := newAccountHandlerFixture()
	ownerID := uuid.New()

	accountRepo.AddAccount(&domain.Account{
		ID:          1,
		OwnerID:     ownerID,
		Name:        "Closing",
		Type:        domain.AccountTypeChecking,
		BaseBalance: decimal.Zero,
		Currency:    "EUR",
	})

	c, rec := newTestContext(http.MethodDelete, "/api/v1/accounts/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	middleware.SetOwnerID(c, ownerID)

	if err := handler.DeleteAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
}
