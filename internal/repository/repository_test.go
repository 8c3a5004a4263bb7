package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/models"
	"expensetracker/internal/pagination"
	"expensetracker/internal/repository"
	"expensetracker/internal/testutil"
)

type backend struct {
	name  string
	setup func(t *testing.T) (repository.UserRepository, repository.ExpenseRepository)
}

func backends() []backend {
	return []backend{
		{
			name: "gorm",
			setup: func(t *testing.T) (repository.UserRepository, repository.ExpenseRepository) {
				db := testutil.SetupTestDB(t)
				t.Cleanup(func() { testutil.TeardownTestDB(t, db) })
				return repository.NewGormUserRepository(db), repository.NewGormExpenseRepository(db)
			},
		},
		{
			name: "jsonfile",
			setup: func(t *testing.T) (repository.UserRepository, repository.ExpenseRepository) {
				store, err := repository.OpenFileStore(filepath.Join(t.TempDir(), "store.json"))
				if err != nil {
					t.Fatalf("failed to open file store: %v", err)
				}
				return store.Users(), store.Expenses()
			},
		},
	}
}

func mustUser(t *testing.T, users repository.UserRepository, email string) *models.User {
	t.Helper()
	user := &models.User{Name: "Ana", Email: email, Password: "hash", IsActive: true}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func mustExpense(t *testing.T, expenses repository.ExpenseRepository, userID, title, category string, date models.Date) *models.Expense {
	t.Helper()
	expense := &models.Expense{
		UserID:   userID,
		Title:    title,
		Amount:   decimal.RequireFromString("10.25"),
		Category: category,
		Date:     date,
	}
	if err := expenses.Create(context.Background(), expense); err != nil {
		t.Fatalf("failed to create expense: %v", err)
	}
	return expense
}

func TestUserRepository(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			users, _ := b.setup(t)

			user := mustUser(t, users, "ana@test.com")
			if user.ID == "" {
				t.Fatal("expected id to be assigned")
			}

			dup := &models.User{Name: "Other", Email: "ana@test.com", Password: "x", IsActive: true}
			if err := users.Create(ctx, dup); !errors.Is(err, repository.ErrDuplicate) {
				t.Errorf("expected ErrDuplicate, got %v", err)
			}

			byEmail, err := users.GetByEmail(ctx, "ana@test.com")
			testutil.AssertNoError(t, err)
			if byEmail.ID != user.ID {
				t.Errorf("expected %s, got %s", user.ID, byEmail.ID)
			}

			if _, err := users.GetByID(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			testutil.AssertNoError(t, users.RecordLogin(ctx, user.ID, time.Now()))
			byID, err := users.GetByID(ctx, user.ID)
			testutil.AssertNoError(t, err)
			if byID.LastLoginAt == nil {
				t.Error("expected last login to be recorded")
			}
		})
	}
}

func TestExpenseRepository_CRUD(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			users, expenses := b.setup(t)
			owner := mustUser(t, users, "owner@test.com")
			other := mustUser(t, users, "other@test.com")

			created := mustExpense(t, expenses, owner.ID, "Coffee", "Food", models.NewDate(2024, 1, 1))
			if created.ID == "" || created.CreatedAt.IsZero() {
				t.Fatal("expected id and created_at to be assigned")
			}

			got, err := expenses.Get(ctx, owner.ID, created.ID)
			testutil.AssertNoError(t, err)
			if got.Title != "Coffee" || !got.Amount.Equal(decimal.RequireFromString("10.25")) {
				t.Errorf("unexpected expense %+v", got)
			}
			if got.Date.String() != "2024-01-01" {
				t.Errorf("expected date 2024-01-01, got %s", got.Date)
			}

			if _, err := expenses.Get(ctx, other.ID, created.ID); !errors.Is(err, repository.ErrNotFound) {
				t.Errorf("other user must not see the expense, got %v", err)
			}

			got.Title = "Latte"
			got.Amount = decimal.RequireFromString("5.75")
			testutil.AssertNoError(t, expenses.Update(ctx, got))

			updated, err := expenses.Get(ctx, owner.ID, created.ID)
			testutil.AssertNoError(t, err)
			if updated.Title != "Latte" || !updated.Amount.Equal(decimal.RequireFromString("5.75")) {
				t.Errorf("update not applied: %+v", updated)
			}

			foreign := *updated
			foreign.UserID = other.ID
			if err := expenses.Update(ctx, &foreign); !errors.Is(err, repository.ErrNotFound) {
				t.Errorf("expected ErrNotFound updating foreign expense, got %v", err)
			}

			if err := expenses.Delete(ctx, other.ID, created.ID); !errors.Is(err, repository.ErrNotFound) {
				t.Errorf("expected ErrNotFound deleting foreign expense, got %v", err)
			}
			testutil.AssertNoError(t, expenses.Delete(ctx, owner.ID, created.ID))
			if err := expenses.Delete(ctx, owner.ID, created.ID); !errors.Is(err, repository.ErrNotFound) {
				t.Errorf("expected ErrNotFound on second delete, got %v", err)
			}
		})
	}
}

func TestExpenseRepository_ListFiltersAndOrder(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			users, expenses := b.setup(t)
			owner := mustUser(t, users, "owner@test.com")
			other := mustUser(t, users, "other@test.com")

			first := mustExpense(t, expenses, owner.ID, "Groceries", "Food", models.NewDate(2024, 1, 10))
			second := mustExpense(t, expenses, owner.ID, "Bus pass", "Transportation", models.NewDate(2024, 2, 1))
			third := mustExpense(t, expenses, owner.ID, "Dinner out", "Food", models.NewDate(2024, 3, 5))
			mustExpense(t, expenses, other.ID, "Not mine", "Food", models.NewDate(2024, 1, 1))

			all, err := expenses.List(ctx, owner.ID, repository.ExpenseFilter{})
			testutil.AssertNoError(t, err)
			if len(all) != 3 {
				t.Fatalf("expected 3 expenses, got %d", len(all))
			}
			if all[0].ID != third.ID || all[1].ID != second.ID || all[2].ID != first.ID {
				t.Errorf("expected newest first, got %s, %s, %s", all[0].Title, all[1].Title, all[2].Title)
			}

			food, err := expenses.List(ctx, owner.ID, repository.ExpenseFilter{Category: "Food"})
			testutil.AssertNoError(t, err)
			if len(food) != 2 {
				t.Errorf("expected 2 food expenses, got %d", len(food))
			}

			from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
			to := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
			ranged, err := expenses.List(ctx, owner.ID, repository.ExpenseFilter{From: &from, To: &to})
			testutil.AssertNoError(t, err)
			if len(ranged) != 1 || ranged[0].ID != second.ID {
				t.Errorf("expected only the bus pass in range, got %d results", len(ranged))
			}

			searched, err := expenses.List(ctx, owner.ID, repository.ExpenseFilter{Search: "TRANSPORT"})
			testutil.AssertNoError(t, err)
			if len(searched) != 1 || searched[0].ID != second.ID {
				t.Errorf("expected case-insensitive category match, got %d results", len(searched))
			}

			empty, err := expenses.List(ctx, "nobody", repository.ExpenseFilter{})
			testutil.AssertNoError(t, err)
			if empty == nil || len(empty) != 0 {
				t.Errorf("expected empty non-nil slice, got %#v", empty)
			}
		})
	}
}

func TestExpenseRepository_SearchIsLiteral(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			users, expenses := b.setup(t)
			owner := mustUser(t, users, "owner@test.com")

			sale := mustExpense(t, expenses, owner.ID, "50% off shoes", "Shopping", models.NewDate(2024, 1, 1))
			mustExpense(t, expenses, owner.ID, "500 pens", "Education", models.NewDate(2024, 1, 2))
			snake := mustExpense(t, expenses, owner.ID, "a_b test", "Education", models.NewDate(2024, 1, 3))
			mustExpense(t, expenses, owner.ID, "axb test", "Education", models.NewDate(2024, 1, 4))
			slash := mustExpense(t, expenses, owner.ID, `c:\tmp`, "Utilities", models.NewDate(2024, 1, 5))

			tests := []struct {
				search string
				want   string
			}{
				{search: "50%", want: sale.ID},
				{search: "a_b", want: snake.ID},
				{search: `\`, want: slash.ID},
			}
			for _, tt := range tests {
				found, err := expenses.List(ctx, owner.ID, repository.ExpenseFilter{Search: tt.search})
				testutil.AssertNoError(t, err)
				if len(found) != 1 || found[0].ID != tt.want {
					t.Errorf("search %q: expected exactly one literal match, got %d results", tt.search, len(found))
				}
				count, err := expenses.Count(ctx, owner.ID, repository.ExpenseFilter{Search: tt.search})
				testutil.AssertNoError(t, err)
				if count != 1 {
					t.Errorf("search %q: expected count 1, got %d", tt.search, count)
				}
			}
		})
	}
}

func TestExpenseRepository_PageAndCount(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			users, expenses := b.setup(t)
			owner := mustUser(t, users, "owner@test.com")

			var created []*models.Expense
			for i := 1; i <= 5; i++ {
				created = append(created, mustExpense(t, expenses, owner.ID, "Item", "Food", models.NewDate(2024, 1, i)))
			}

			total, err := expenses.Count(ctx, owner.ID, repository.ExpenseFilter{Page: &pagination.PageRequest{Page: 1, PageSize: 2}})
			testutil.AssertNoError(t, err)
			if total != 5 {
				t.Errorf("expected count 5 regardless of page, got %d", total)
			}

			page, err := expenses.List(ctx, owner.ID, repository.ExpenseFilter{Page: &pagination.PageRequest{Page: 2, PageSize: 2}})
			testutil.AssertNoError(t, err)
			if len(page) != 2 {
				t.Fatalf("expected 2 expenses on page 2, got %d", len(page))
			}
			if page[0].ID != created[2].ID {
				t.Errorf("expected third newest on page 2, got %s", page[0].ID)
			}

			none, err := expenses.Count(ctx, owner.ID, repository.ExpenseFilter{Category: "Rent"})
			testutil.AssertNoError(t, err)
			if none != 0 {
				t.Errorf("expected no rent expenses, got %d", none)
			}
		})
	}
}

func TestFileStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "store.json")

	store, err := repository.OpenFileStore(path)
	testutil.AssertNoError(t, err)
	owner := mustUser(t, store.Users(), "owner@test.com")
	created := mustExpense(t, store.Expenses(), owner.ID, "Rent", "Utilities", models.NewDate(2024, 4, 1))

	reopened, err := repository.OpenFileStore(path)
	testutil.AssertNoError(t, err)

	got, err := reopened.Expenses().Get(ctx, owner.ID, created.ID)
	testutil.AssertNoError(t, err)
	if got.Title != "Rent" || got.Date.String() != "2024-04-01" {
		t.Errorf("unexpected expense after reopen: %+v", got)
	}

	user, err := reopened.Users().GetByEmail(ctx, "owner@test.com")
	testutil.AssertNoError(t, err)
	if user.Password != "hash" {
		t.Error("password hash must survive a reload")
	}
}
