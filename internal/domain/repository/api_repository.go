package repository

import (
	"context"

	"github.com/diillson/finly-dashboard-go/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// BudgetAPI defines the interface for the Finly backend REST API.
// Every method issues exactly one HTTP request.
type BudgetAPI interface {
	// Auth Operations
	Login(ctx context.Context, creds entity.Credentials) (string, error)
	Register(ctx context.Context, in entity.RegisterInput) (string, error)
	GetUserInfo(ctx context.Context, token string) (entity.User, error)
	Logout(ctx context.Context, token string) error
	RefreshToken(ctx context.Context, token string) (string, error)

	// Budget Operations
	CreateBudget(ctx context.Context, token string, in entity.BudgetInput) (*entity.Budget, error)
	GetBudget(ctx context.Context, token string) (*entity.Budget, error)
	GetBudgetHistory(ctx context.Context, token string, budgetID int64) ([]entity.BudgetHistoryEntry, error)
	GetBalance(ctx context.Context, token string, budgetID int64) (decimal.Decimal, error)

	// Category Operations
	GetCategories(ctx context.Context, token string, userID entity.UserID) ([]entity.Category, error)
	GetCustomCategories(ctx context.Context, token string) ([]entity.Category, error)
	CreateCategory(ctx context.Context, token string, in entity.CategoryInput) error
	DeleteCategory(ctx context.Context, token string, categoryID int64) error

	// Transaction Operations
	CreateTransaction(ctx context.Context, token string, in entity.TransactionInput) error
	ListTransactions(ctx context.Context, token string, userID entity.UserID) ([]entity.Transaction, error)
	UpdateTransaction(ctx context.Context, token string, transactionID int64, patch entity.TransactionPatch) error
	DeleteTransaction(ctx context.Context, token string, transactionID int64) error
}
