package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/google/uuid"
)

// MockAccountRepository is a mock implementation of domain.AccountRepository
type MockAccountRepository struct {
	Accounts map[int32]*domain.Account
	NextID   int32
	CreateFn func(ctx context.Context, account *domain.Account) (*domain.Account, error)
}

// NewMockAccountRepository creates a new MockAccountRepository
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts: make(map[int32]*domain.Account),
		NextID:   1,
	}
}

// AddAccount seeds the mock with a pre-built account
func (m *MockAccountRepository) AddAccount(account *domain.Account) {
	m.Accounts[account.ID] = account
	if account.ID >= m.NextID {
		m.NextID = account.ID + 1
	}
}

// Create creates a new account
func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, account)
	}
	account.ID = m.NextID
	m.NextID++
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	m.Accounts[account.ID] = account
	return account, nil
}

// GetByID retrieves a non-deleted account by ID
func (m *MockAccountRepository) GetByID(ctx context.Context, id int32) (*domain.Account, error) {
	account, ok := m.Accounts[id]
	if !ok || account.IsDeleted() {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

// ListByOwner retrieves all non-deleted accounts for an owner
func (m *MockAccountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for _, account := range m.Accounts {
		if account.OwnerID == ownerID && !account.IsDeleted() {
			accounts = append(accounts, account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// Update renames an owner's account
func (m *MockAccountRepository) Update(ctx context.Context, ownerID uuid.UUID, id int32, name string) (*domain.Account, error) {
	account, ok := m.Accounts[id]
	if !ok || account.IsDeleted() || account.OwnerID != ownerID {
		return nil, domain.ErrAccountNotFound
	}
	account.Name = name
	account.UpdatedAt = time.Now()
	return account, nil
}

// SoftDelete marks an owner's account as deleted
func (m *MockAccountRepository) SoftDelete(ctx context.Context, ownerID uuid.UUID, id int32) error {
	account, ok := m.Accounts[id]
	if !ok || account.IsDeleted() || account.OwnerID != ownerID {
		return domain.ErrAccountNotFound
	}
	now := time.Now()
	account.DeletedAt = &now
	return nil
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions map[int32]*domain.Transaction
	NextID       int32

	CreateFn             func(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error)
	CreateTransferPairFn func(ctx context.Context, fromLeg, toLeg *domain.Transaction) (*domain.TransferResult, error)
	UpdateTransferPairFn func(ctx context.Context, ownerID uuid.UUID, pairID uuid.UUID, update *domain.TransferUpdate) ([]*domain.Transaction, error)
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int32]*domain.Transaction),
		NextID:       1,
	}
}

// AddTransaction seeds the mock with a pre-built transaction
func (m *MockTransactionRepository) AddTransaction(tx *domain.Transaction) {
	m.Transactions[tx.ID] = tx
	if tx.ID >= m.NextID {
		m.NextID = tx.ID + 1
	}
}

func (m *MockTransactionRepository) insert(tx *domain.Transaction) *domain.Transaction {
	tx.ID = m.NextID
	m.NextID++
	tx.CreatedAt = time.Now()
	tx.UpdatedAt = tx.CreatedAt
	m.Transactions[tx.ID] = tx
	return tx
}

// Create creates a new transaction
func (m *MockTransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, transaction)
	}
	return m.insert(transaction), nil
}

// GetByID retrieves a transaction by ID, soft-deleted rows included
func (m *MockTransactionRepository) GetByID(ctx context.Context, id int32) (*domain.Transaction, error) {
	tx, ok := m.Transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return tx, nil
}

// ListByOwner retrieves a filtered, paginated page of non-deleted transactions
func (m *MockTransactionRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}

	var matched []*domain.Transaction
	for _, tx := range m.Transactions {
		if tx.OwnerID != ownerID || tx.IsDeleted() {
			continue
		}
		if filters.AccountID != nil && (tx.AccountID == nil || *tx.AccountID != *filters.AccountID) {
			continue
		}
		if filters.CategoryID != nil && (tx.CategoryID == nil || *tx.CategoryID != *filters.CategoryID) {
			continue
		}
		if filters.Type != nil && tx.Type != *filters.Type {
			continue
		}
		if filters.StartDate != nil && tx.OccurredAt.Before(*filters.StartDate) {
			continue
		}
		if filters.EndDate != nil && tx.OccurredAt.After(*filters.EndDate) {
			continue
		}
		matched = append(matched, tx)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].OccurredAt.Equal(matched[j].OccurredAt) {
			return matched[i].OccurredAt.After(matched[j].OccurredAt)
		}
		return matched[i].ID > matched[j].ID
	})

	totalItems := int64(len(matched))
	totalPages := int32((totalItems + int64(pageSize) - 1) / int64(pageSize))
	start := int((page - 1) * pageSize)
	if start > len(matched) {
		start = len(matched)
	}
	end := start + int(pageSize)
	if end > len(matched) {
		end = len(matched)
	}

	return &domain.PaginatedTransactions{
		Data:       matched[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// ListActiveByOwner retrieves all non-deleted transactions for an owner
func (m *MockTransactionRepository) ListActiveByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Transaction, error) {
	var txs []*domain.Transaction
	for _, tx := range m.Transactions {
		if tx.OwnerID == ownerID && !tx.IsDeleted() {
			txs = append(txs, tx)
		}
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].ID < txs[j].ID })
	return txs, nil
}

// ListByDateRange retrieves non-deleted transactions within [start, end]
func (m *MockTransactionRepository) ListByDateRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]*domain.Transaction, error) {
	var txs []*domain.Transaction
	for _, tx := range m.Transactions {
		if tx.OwnerID != ownerID || tx.IsDeleted() {
			continue
		}
		if tx.OccurredAt.Before(start) || tx.OccurredAt.After(end) {
			continue
		}
		txs = append(txs, tx)
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].ID < txs[j].ID })
	return txs, nil
}

// Update replaces the mutable fields of a non-transfer transaction
func (m *MockTransactionRepository) Update(ctx context.Context, ownerID uuid.UUID, id int32, transaction *domain.Transaction) (*domain.Transaction, error) {
	existing, ok := m.Transactions[id]
	if !ok || existing.IsDeleted() || existing.OwnerID != ownerID || existing.IsTransferLeg() {
		return nil, domain.ErrTransactionNotFound
	}
	transaction.ID = existing.ID
	transaction.OwnerID = existing.OwnerID
	transaction.CreatedAt = existing.CreatedAt
	transaction.UpdatedAt = time.Now()
	m.Transactions[id] = transaction
	return transaction, nil
}

// SoftDelete marks an owner's transaction as deleted
func (m *MockTransactionRepository) SoftDelete(ctx context.Context, ownerID uuid.UUID, id int32) error {
	tx, ok := m.Transactions[id]
	if !ok || tx.IsDeleted() || tx.OwnerID != ownerID {
		return domain.ErrTransactionNotFound
	}
	now := time.Now()
	tx.DeletedAt = &now
	return nil
}

// CreateTransferPair inserts both legs or neither
func (m *MockTransactionRepository) CreateTransferPair(ctx context.Context, fromLeg, toLeg *domain.Transaction) (*domain.TransferResult, error) {
	if m.CreateTransferPairFn != nil {
		return m.CreateTransferPairFn(ctx, fromLeg, toLeg)
	}
	return &domain.TransferResult{
		FromTransaction: m.insert(fromLeg),
		ToTransaction:   m.insert(toLeg),
	}, nil
}

// GetTransferPair retrieves both active legs of a pair, outgoing leg first
func (m *MockTransactionRepository) GetTransferPair(ctx context.Context, ownerID uuid.UUID, pairID uuid.UUID) ([]*domain.Transaction, error) {
	legs := m.activeLegs(ownerID, pairID)
	if len(legs) == 0 {
		return nil, domain.ErrTransferNotFound
	}
	return legs, nil
}

// UpdateTransferPair applies the update to both legs atomically
func (m *MockTransactionRepository) UpdateTransferPair(ctx context.Context, ownerID uuid.UUID, pairID uuid.UUID, update *domain.TransferUpdate) ([]*domain.Transaction, error) {
	if m.UpdateTransferPairFn != nil {
		return m.UpdateTransferPairFn(ctx, ownerID, pairID, update)
	}
	legs := m.activeLegs(ownerID, pairID)
	if len(legs) == 0 {
		return nil, domain.ErrTransferNotFound
	}
	if len(legs) != 2 {
		return nil, domain.ErrConflict
	}
	for _, leg := range legs {
		leg.Amount = update.Amount
		leg.OccurredAt = update.OccurredAt
		leg.Notes = update.Notes
		leg.UpdatedAt = time.Now()
	}
	return legs, nil
}

// SoftDeleteTransferPair marks both legs as deleted
func (m *MockTransactionRepository) SoftDeleteTransferPair(ctx context.Context, ownerID uuid.UUID, pairID uuid.UUID) error {
	legs := m.activeLegs(ownerID, pairID)
	if len(legs) == 0 {
		return domain.ErrTransferNotFound
	}
	now := time.Now()
	for _, leg := range legs {
		leg.DeletedAt = &now
	}
	return nil
}

func (m *MockTransactionRepository) activeLegs(ownerID uuid.UUID, pairID uuid.UUID) []*domain.Transaction {
	var legs []*domain.Transaction
	for _, tx := range m.Transactions {
		if tx.OwnerID != ownerID || tx.IsDeleted() {
			continue
		}
		if tx.TransferPairID == nil || *tx.TransferPairID != pairID {
			continue
		}
		legs = append(legs, tx)
	}
	// Outgoing leg first, matching the store's ordering
	sort.Slice(legs, func(i, j int) bool {
		ri, rj := "", ""
		if legs[i].TransferRole != nil {
			ri = string(*legs[i].TransferRole)
		}
		if legs[j].TransferRole != nil {
			rj = string(*legs[j].TransferRole)
		}
		return ri > rj
	})
	return legs
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[int32]*domain.Category
	NextID     int32
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories: make(map[int32]*domain.Category),
		NextID:     1,
	}
}

// AddCategory seeds the mock with a pre-built category
func (m *MockCategoryRepository) AddCategory(category *domain.Category) {
	m.Categories[category.ID] = category
	if category.ID >= m.NextID {
		m.NextID = category.ID + 1
	}
}

// Create creates a new category
func (m *MockCategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	category.ID = m.NextID
	m.NextID++
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	m.Categories[category.ID] = category
	return category, nil
}

// GetByID retrieves a non-deleted category by ID
func (m *MockCategoryRepository) GetByID(ctx context.Context, id int32) (*domain.Category, error) {
	category, ok := m.Categories[id]
	if !ok || category.IsDeleted() {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}

// ListByOwner retrieves the owner's categories plus global templates
func (m *MockCategoryRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Category, error) {
	var categories []*domain.Category
	for _, category := range m.Categories {
		if category.IsDeleted() {
			continue
		}
		if category.AccessibleBy(ownerID) {
			categories = append(categories, category)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

// Update edits an owner's category
func (m *MockCategoryRepository) Update(ctx context.Context, ownerID uuid.UUID, id int32, name string, isVisible bool) (*domain.Category, error) {
	category, ok := m.Categories[id]
	if !ok || category.IsDeleted() || category.OwnerID == nil || *category.OwnerID != ownerID {
		return nil, domain.ErrCategoryNotFound
	}
	category.Name = name
	category.IsVisible = isVisible
	category.UpdatedAt = time.Now()
	return category, nil
}

// SoftDelete marks an owner's category as deleted
func (m *MockCategoryRepository) SoftDelete(ctx context.Context, ownerID uuid.UUID, id int32) error {
	category, ok := m.Categories[id]
	if !ok || category.IsDeleted() || category.OwnerID == nil || *category.OwnerID != ownerID {
		return domain.ErrCategoryNotFound
	}
	now := time.Now()
	category.DeletedAt = &now
	return nil
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets    map[int32]*domain.Budget
	Lines      map[int32][]*domain.BudgetLine
	NextID     int32
	NextLineID int32

	UpdateWithLinesFn func(ctx context.Context, ownerID uuid.UUID, id int32, budget *domain.Budget, lines []*domain.BudgetLine) (*domain.Budget, []*domain.BudgetLine, error)
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets:    make(map[int32]*domain.Budget),
		Lines:      make(map[int32][]*domain.BudgetLine),
		NextID:     1,
		NextLineID: 1,
	}
}

// AddBudget seeds the mock with a pre-built budget and its lines
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget, lines []*domain.BudgetLine) {
	m.Budgets[budget.ID] = budget
	m.Lines[budget.ID] = lines
	if budget.ID >= m.NextID {
		m.NextID = budget.ID + 1
	}
	for _, line := range lines {
		if line.ID >= m.NextLineID {
			m.NextLineID = line.ID + 1
		}
	}
}

// GetWithLines retrieves a budget and its active lines
func (m *MockBudgetRepository) GetWithLines(ctx context.Context, id int32) (*domain.Budget, []*domain.BudgetLine, error) {
	budget, ok := m.Budgets[id]
	if !ok {
		return nil, nil, domain.ErrBudgetNotFound
	}
	var active []*domain.BudgetLine
	for _, line := range m.Lines[id] {
		if line.DeletedAt == nil {
			active = append(active, line)
		}
	}
	return budget, active, nil
}

// ListByOwner retrieves all non-deleted budgets for an owner
func (m *MockBudgetRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Budget, error) {
	var budgets []*domain.Budget
	for _, budget := range m.Budgets {
		if budget.OwnerID == ownerID && !budget.IsDeleted() {
			budgets = append(budgets, budget)
		}
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].ID < budgets[j].ID })
	return budgets, nil
}

// CreateWithLines creates a budget and its lines
func (m *MockBudgetRepository) CreateWithLines(ctx context.Context, budget *domain.Budget, lines []*domain.BudgetLine) (*domain.Budget, []*domain.BudgetLine, error) {
	budget.ID = m.NextID
	m.NextID++
	budget.CreatedAt = time.Now()
	budget.UpdatedAt = budget.CreatedAt
	m.Budgets[budget.ID] = budget

	for _, line := range lines {
		line.ID = m.NextLineID
		m.NextLineID++
		line.BudgetID = budget.ID
		line.CreatedAt = budget.CreatedAt
		line.UpdatedAt = budget.CreatedAt
		m.Lines[budget.ID] = append(m.Lines[budget.ID], line)
	}
	return budget, m.Lines[budget.ID], nil
}

// UpdateWithLines replaces a budget's fields and line set
func (m *MockBudgetRepository) UpdateWithLines(ctx context.Context, ownerID uuid.UUID, id int32, budget *domain.Budget, lines []*domain.BudgetLine) (*domain.Budget, []*domain.BudgetLine, error) {
	if m.UpdateWithLinesFn != nil {
		return m.UpdateWithLinesFn(ctx, ownerID, id, budget, lines)
	}
	existing, ok := m.Budgets[id]
	if !ok || existing.IsDeleted() || existing.OwnerID != ownerID {
		return nil, nil, domain.ErrBudgetNotFound
	}
	existing.Name = budget.Name
	existing.BudgetAmount = budget.BudgetAmount
	existing.StartDate = budget.StartDate
	existing.EndDate = budget.EndDate
	existing.IsRecurrent = budget.IsRecurrent
	existing.UpdatedAt = time.Now()

	m.Lines[id] = nil
	for _, line := range lines {
		line.ID = m.NextLineID
		m.NextLineID++
		line.BudgetID = id
		line.CreatedAt = existing.UpdatedAt
		line.UpdatedAt = existing.UpdatedAt
		m.Lines[id] = append(m.Lines[id], line)
	}
	return existing, m.Lines[id], nil
}

// SoftDelete marks the budget and its lines as deleted
func (m *MockBudgetRepository) SoftDelete(ctx context.Context, ownerID uuid.UUID, id int32) error {
	budget, ok := m.Budgets[id]
	if !ok || budget.IsDeleted() || budget.OwnerID != ownerID {
		return domain.ErrBudgetNotFound
	}
	now := time.Now()
	budget.DeletedAt = &now
	for _, line := range m.Lines[id] {
		line.DeletedAt = &now
	}
	return nil
}

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users map[uuid.UUID]*domain.User
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[uuid.UUID]*domain.User)}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if user, ok := m.Users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// Create creates a new user
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.Users[user.ID] = user
	return user, nil
}
