package handler

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes. The auth middleware is applied per
// group so the health endpoint stays open.
func RegisterRoutes(e *echo.Echo, authMiddleware echo.MiddlewareFunc, profileHandler *ProfileHandler, accountHandler *AccountHandler, transactionHandler *TransactionHandler, transferHandler *TransferHandler, categoryHandler *CategoryHandler, budgetHandler *BudgetHandler, reportHandler *ReportHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Profile routes (protected)
	me := api.Group("/me")
	me.Use(authMiddleware)
	me.GET("", profileHandler.GetProfile)
	me.POST("", profileHandler.RegisterProfile)

	// Account routes (protected)
	accounts := api.Group("/accounts")
	accounts.Use(authMiddleware)
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.GET("/:id/balance", accountHandler.GetBalance)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	// Transaction routes (protected)
	transactions := api.Group("/transactions")
	transactions.Use(authMiddleware)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Transfer routes (protected)
	transfers := api.Group("/transfers")
	transfers.Use(authMiddleware)
	transfers.POST("", transferHandler.CreateTransfer)
	transfers.GET("/:pairId", transferHandler.GetTransfer)
	transfers.PUT("/:pairId", transferHandler.UpdateTransfer)
	transfers.DELETE("/:pairId", transferHandler.DeleteTransfer)

	// Category routes (protected)
	categories := api.Group("/categories")
	categories.Use(authMiddleware)
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Budget routes (protected)
	budgets := api.Group("/budgets")
	budgets.Use(authMiddleware)
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	// Report routes (protected)
	reports := api.Group("/reports")
	reports.Use(authMiddleware)
	reports.GET("/income-expense", reportHandler.GetIncomeExpenseReport)
	reports.GET("/expenses-by-category", reportHandler.GetExpenseReportByCategory)
}
