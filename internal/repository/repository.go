// Package repository persists users and expenses. Two backends implement the
// same interfaces: a gorm-backed SQL store and a flat JSON file.
package repository

import (
	"context"
	"errors"
	"time"

	"expensetracker/internal/models"
	"expensetracker/internal/pagination"
)

var (
	// ErrNotFound is returned when no record matches the owner and id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("duplicate record")
)

// ExpenseFilter narrows List results. Zero values disable a criterion.
type ExpenseFilter struct {
	Category string
	From     *time.Time
	To       *time.Time
	Search   string
	// Page, when set, limits List to one window of the ordered results.
	Page *pagination.PageRequest
}

// ExpenseRepository stores expenses scoped to their owning user.
type ExpenseRepository interface {
	// List returns the owner's expenses, newest created first.
	List(ctx context.Context, userID string, filter ExpenseFilter) ([]models.Expense, error)
	// Count returns how many expenses match filter, ignoring Page.
	Count(ctx context.Context, userID string, filter ExpenseFilter) (int64, error)
	Get(ctx context.Context, userID, id string) (*models.Expense, error)
	// Create assigns the id and timestamps before persisting.
	Create(ctx context.Context, expense *models.Expense) error
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, userID, id string) error
}

// UserRepository stores account holders.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	RecordLogin(ctx context.Context, id string, at time.Time) error
}
