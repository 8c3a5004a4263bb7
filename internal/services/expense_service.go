package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
	"expensetracker/internal/repository"
)

// maxAmount is the largest value a numeric(12,2) column holds.
var maxAmount = decimal.RequireFromString("9999999999.99")

// expenseService handles expense-related business logic.
type expenseService struct {
	expenses repository.ExpenseRepository
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(expenses repository.ExpenseRepository) ExpenseServicer {
	return &expenseService{expenses: expenses}
}

// ListExpenses returns the user's expenses, newest first.
func (s *expenseService) ListExpenses(ctx context.Context, userID string, filter repository.ExpenseFilter) ([]models.Expense, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "from must not be after to")
	}
	expenses, err := s.expenses.List(ctx, userID, filter)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

// CountExpenses returns how many of the user's expenses match filter.
func (s *expenseService) CountExpenses(ctx context.Context, userID string, filter repository.ExpenseFilter) (int64, error) {
	total, err := s.expenses.Count(ctx, userID, filter)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

// GetExpense retrieves one of the user's expenses.
func (s *expenseService) GetExpense(ctx context.Context, userID, id string) (*models.Expense, error) {
	expense, err := s.expenses.Get(ctx, userID, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return expense, nil
}

// CreateExpense validates the draft and stores it for the user.
func (s *expenseService) CreateExpense(ctx context.Context, userID string, in ExpenseInput) (*models.Expense, error) {
	expense := &models.Expense{
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Amount:      in.Amount.Round(2),
		Category:    strings.TrimSpace(in.Category),
		Date:        in.Date,
		Description: strings.TrimSpace(in.Description),
	}
	if err := validateExpense(expense); err != nil {
		return nil, err
	}

	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// UpdateExpense applies the patch to an existing expense.
func (s *expenseService) UpdateExpense(ctx context.Context, userID, id string, patch ExpensePatch) (*models.Expense, error) {
	expense, err := s.expenses.Get(ctx, userID, id)
	if err != nil {
		return nil, mapRepoError(err)
	}

	if patch.Title != nil {
		expense.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Amount != nil {
		expense.Amount = patch.Amount.Round(2)
	}
	if patch.Category != nil {
		expense.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Date != nil {
		expense.Date = *patch.Date
	}
	if patch.Description != nil {
		expense.Description = strings.TrimSpace(*patch.Description)
	}
	if err := validateExpense(expense); err != nil {
		return nil, err
	}

	if err := s.expenses.Update(ctx, expense); err != nil {
		return nil, mapRepoError(err)
	}
	return s.GetExpense(ctx, userID, id)
}

// DeleteExpense removes one of the user's expenses.
func (s *expenseService) DeleteExpense(ctx context.Context, userID, id string) error {
	if err := s.expenses.Delete(ctx, userID, id); err != nil {
		return mapRepoError(err)
	}
	return nil
}

func validateExpense(e *models.Expense) error {
	if e.Title == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if !e.Amount.IsPositive() || e.Amount.GreaterThan(maxAmount) {
		return apperrors.ErrInvalidAmount
	}
	if e.Category == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if e.Date.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
	}
	return nil
}

func mapRepoError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrExpenseNotFound
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
