package services

import (
	"context"

	"github.com/shopspring/decimal"

	"expensetracker/internal/models"
	"expensetracker/internal/repository"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// ExpenseInput is a complete expense draft as submitted by a client.
type ExpenseInput struct {
	Title       string
	Amount      decimal.Decimal
	Category    string
	Date        models.Date
	Description string
}

// ExpensePatch carries the fields of an update; nil fields are left unchanged.
type ExpensePatch struct {
	Title       *string
	Amount      *decimal.Decimal
	Category    *string
	Date        *models.Date
	Description *string
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	ListExpenses(ctx context.Context, userID string, filter repository.ExpenseFilter) ([]models.Expense, error)
	CountExpenses(ctx context.Context, userID string, filter repository.ExpenseFilter) (int64, error)
	GetExpense(ctx context.Context, userID, id string) (*models.Expense, error)
	CreateExpense(ctx context.Context, userID string, in ExpenseInput) (*models.Expense, error)
	UpdateExpense(ctx context.Context, userID, id string, patch ExpensePatch) (*models.Expense, error)
	DeleteExpense(ctx context.Context, userID, id string) error
}

// CategoryServicer defines the contract for the category enumeration.
type CategoryServicer interface {
	ListCategories() []string
}
