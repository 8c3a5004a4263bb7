package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
	"expensetracker/internal/pagination"
	"expensetracker/internal/repository"
	"expensetracker/internal/services"
)

// --- mock expense service ---

type mockExpenseService struct {
	listExpensesFn  func(userID string, filter repository.ExpenseFilter) ([]models.Expense, error)
	countExpensesFn func(userID string, filter repository.ExpenseFilter) (int64, error)
	getExpenseFn    func(userID, id string) (*models.Expense, error)
	createExpenseFn func(userID string, in services.ExpenseInput) (*models.Expense, error)
	updateExpenseFn func(userID, id string, patch services.ExpensePatch) (*models.Expense, error)
	deleteExpenseFn func(userID, id string) error
}

func (m *mockExpenseService) ListExpenses(_ context.Context, userID string, filter repository.ExpenseFilter) ([]models.Expense, error) {
	if m.listExpensesFn != nil {
		return m.listExpensesFn(userID, filter)
	}
	return []models.Expense{}, nil
}

func (m *mockExpenseService) CountExpenses(_ context.Context, userID string, filter repository.ExpenseFilter) (int64, error) {
	if m.countExpensesFn != nil {
		return m.countExpensesFn(userID, filter)
	}
	return 0, nil
}

func (m *mockExpenseService) GetExpense(_ context.Context, userID, id string) (*models.Expense, error) {
	if m.getExpenseFn != nil {
		return m.getExpenseFn(userID, id)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) CreateExpense(_ context.Context, userID string, in services.ExpenseInput) (*models.Expense, error) {
	if m.createExpenseFn != nil {
		return m.createExpenseFn(userID, in)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) UpdateExpense(_ context.Context, userID, id string, patch services.ExpensePatch) (*models.Expense, error) {
	if m.updateExpenseFn != nil {
		return m.updateExpenseFn(userID, id, patch)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) DeleteExpense(_ context.Context, userID, id string) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(userID, id)
	}
	return nil
}

var _ services.ExpenseServicer = (*mockExpenseService)(nil)

type recordingMetrics struct {
	ops []string
}

func (r *recordingMetrics) RecordExpenseMutation(op string) { r.ops = append(r.ops, op) }

func setupExpenseRouter(handler *ExpenseHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/expenses", handler.ListExpenses)
	auth.POST("/expenses", handler.CreateExpense)
	auth.GET("/expenses/:id", handler.GetExpense)
	auth.PUT("/expenses/:id", handler.UpdateExpense)
	auth.DELETE("/expenses/:id", handler.DeleteExpense)
	return r
}

func sampleExpense(id string) *models.Expense {
	e := &models.Expense{
		UserID:   testUserID,
		Title:    "Groceries",
		Amount:   decimal.RequireFromString("42.10"),
		Category: "Food",
		Date:     models.NewDate(2024, 3, 2),
	}
	e.ID = id
	return e
}

func TestExpenseHandler_ListExpenses(t *testing.T) {
	t.Run("returns array with filters applied", func(t *testing.T) {
		var gotFilter repository.ExpenseFilter
		svc := &mockExpenseService{
			listExpensesFn: func(userID string, filter repository.ExpenseFilter) ([]models.Expense, error) {
				if userID != testUserID {
					t.Errorf("expected user %s, got %s", testUserID, userID)
				}
				gotFilter = filter
				return []models.Expense{*sampleExpense("e1")}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, nil))

		rec := doRequest(r, "GET", "/expenses?category=Food&q=groc&from=2024-01-01&to=2024-12-31", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var list []map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
			t.Fatalf("expected JSON array: %v", err)
		}
		if len(list) != 1 || list[0]["id"] != "e1" {
			t.Fatalf("unexpected body %s", rec.Body.String())
		}
		if list[0]["amount"] != 42.1 {
			t.Errorf("expected numeric amount 42.1, got %v", list[0]["amount"])
		}
		if list[0]["date"] != "2024-03-02" {
			t.Errorf("expected date 2024-03-02, got %v", list[0]["date"])
		}
		if gotFilter.Category != "Food" || gotFilter.Search != "groc" {
			t.Errorf("unexpected filter %+v", gotFilter)
		}
		if gotFilter.From == nil || gotFilter.To == nil || gotFilter.From.Year() != 2024 {
			t.Errorf("expected date range to be parsed, got %+v", gotFilter)
		}
	})

	t.Run("returns 400 on bad date", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, nil))

		rec := doRequest(r, "GET", "/expenses?from=yesterday", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("page params set filter and total headers", func(t *testing.T) {
		var gotFilter repository.ExpenseFilter
		svc := &mockExpenseService{
			listExpensesFn: func(_ string, filter repository.ExpenseFilter) ([]models.Expense, error) {
				gotFilter = filter
				return []models.Expense{}, nil
			},
			countExpensesFn: func(string, repository.ExpenseFilter) (int64, error) { return 45, nil },
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, nil))

		rec := doRequest(r, "GET", "/expenses?page=2", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFilter.Page == nil || gotFilter.Page.Page != 2 || gotFilter.Page.PageSize != pagination.DefaultPageSize {
			t.Errorf("unexpected page %+v", gotFilter.Page)
		}
		if got := rec.Header().Get("X-Total-Count"); got != "45" {
			t.Errorf("expected X-Total-Count 45, got %q", got)
		}
		if got := rec.Header().Get("X-Total-Pages"); got != "3" {
			t.Errorf("expected X-Total-Pages 3, got %q", got)
		}
	})

	t.Run("returns 400 on bad page size", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, nil))

		rec := doRequest(r, "GET", "/expenses?page_size=1000", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("no paging headers by default", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, nil))

		rec := doRequest(r, "GET", "/expenses", "")

		if rec.Header().Get("X-Total-Count") != "" {
			t.Error("expected no total header without page params")
		}
	})

	t.Run("empty list encodes as []", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, nil))

		rec := doRequest(r, "GET", "/expenses", "")

		if body := rec.Body.String(); body != "[]" {
			t.Errorf("expected [], got %s", body)
		}
	})
}

func TestExpenseHandler_CreateExpense(t *testing.T) {
	t.Run("returns 201 and accepts string amount", func(t *testing.T) {
		metrics := &recordingMetrics{}
		var got services.ExpenseInput
		svc := &mockExpenseService{
			createExpenseFn: func(_ string, in services.ExpenseInput) (*models.Expense, error) {
				got = in
				e := sampleExpense("new-id")
				e.Amount = in.Amount
				return e, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, metrics))

		rec := doRequest(r, "POST", "/expenses",
			`{"title":"Groceries","amount":"19.99","category":"Food","date":"2024-03-02"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !got.Amount.Equal(decimal.RequireFromString("19.99")) {
			t.Errorf("expected amount 19.99, got %s", got.Amount)
		}
		if got.Date.String() != "2024-03-02" {
			t.Errorf("expected date 2024-03-02, got %s", got.Date)
		}
		if parseJSON(t, rec)["id"] != "new-id" {
			t.Error("expected server id in response")
		}
		if len(metrics.ops) != 1 || metrics.ops[0] != "create" {
			t.Errorf("expected create to be recorded, got %v", metrics.ops)
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{name: "missing title", body: `{"amount":5,"category":"Food","date":"2024-01-01"}`},
		{name: "blank title", body: `{"title":"  ","amount":5,"category":"Food","date":"2024-01-01"}`},
		{name: "zero amount", body: `{"title":"x","amount":0,"category":"Food","date":"2024-01-01"}`},
		{name: "negative amount", body: `{"title":"x","amount":-2,"category":"Food","date":"2024-01-01"}`},
		{name: "non numeric amount", body: `{"title":"x","amount":"abc","category":"Food","date":"2024-01-01"}`},
		{name: "missing category", body: `{"title":"x","amount":5,"date":"2024-01-01"}`},
		{name: "missing date", body: `{"title":"x","amount":5,"category":"Food"}`},
		{name: "bad date", body: `{"title":"x","amount":5,"category":"Food","date":"03/02/2024"}`},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			metrics := &recordingMetrics{}
			r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, metrics))

			rec := doRequest(r, "POST", "/expenses", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
			if len(metrics.ops) != 0 {
				t.Error("failed create must not be recorded")
			}
		})
	}
}

func TestExpenseHandler_GetExpense(t *testing.T) {
	t.Run("returns 200", func(t *testing.T) {
		svc := &mockExpenseService{
			getExpenseFn: func(_, id string) (*models.Expense, error) { return sampleExpense(id), nil },
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, nil))

		rec := doRequest(r, "GET", "/expenses/e9", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if parseJSON(t, rec)["id"] != "e9" {
			t.Error("expected id e9")
		}
	})

	t.Run("returns 404", func(t *testing.T) {
		svc := &mockExpenseService{
			getExpenseFn: func(_, _ string) (*models.Expense, error) { return nil, apperrors.ErrExpenseNotFound },
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, nil))

		rec := doRequest(r, "GET", "/expenses/missing", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "EXPENSE_NOT_FOUND")
	})
}

func TestExpenseHandler_UpdateExpense(t *testing.T) {
	t.Run("passes only provided fields", func(t *testing.T) {
		metrics := &recordingMetrics{}
		var got services.ExpensePatch
		svc := &mockExpenseService{
			updateExpenseFn: func(_, id string, patch services.ExpensePatch) (*models.Expense, error) {
				got = patch
				return sampleExpense(id), nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, metrics))

		rec := doRequest(r, "PUT", "/expenses/e1", `{"amount":7.5}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Amount == nil || !got.Amount.Equal(decimal.RequireFromString("7.5")) {
			t.Errorf("expected amount 7.5 in patch, got %v", got.Amount)
		}
		if got.Title != nil || got.Category != nil || got.Date != nil {
			t.Error("omitted fields must stay nil")
		}
		if len(metrics.ops) != 1 || metrics.ops[0] != "update" {
			t.Errorf("expected update to be recorded, got %v", metrics.ops)
		}
	})

	t.Run("returns 400 on negative amount", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}, nil))

		rec := doRequest(r, "PUT", "/expenses/e1", `{"amount":-1}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404", func(t *testing.T) {
		svc := &mockExpenseService{
			updateExpenseFn: func(_, _ string, _ services.ExpensePatch) (*models.Expense, error) {
				return nil, apperrors.ErrExpenseNotFound
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, nil))

		rec := doRequest(r, "PUT", "/expenses/missing", `{"title":"x"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestExpenseHandler_DeleteExpense(t *testing.T) {
	t.Run("returns confirmation message", func(t *testing.T) {
		metrics := &recordingMetrics{}
		var deleted string
		svc := &mockExpenseService{
			deleteExpenseFn: func(_, id string) error {
				deleted = id
				return nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, metrics))

		rec := doRequest(r, "DELETE", "/expenses/e1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if parseJSON(t, rec)["message"] != "Expense deleted" {
			t.Errorf("unexpected body %s", rec.Body.String())
		}
		if deleted != "e1" {
			t.Errorf("expected e1 deleted, got %s", deleted)
		}
		if len(metrics.ops) != 1 || metrics.ops[0] != "delete" {
			t.Errorf("expected delete to be recorded, got %v", metrics.ops)
		}
	})

	t.Run("returns 404", func(t *testing.T) {
		svc := &mockExpenseService{
			deleteExpenseFn: func(_, _ string) error { return apperrors.ErrExpenseNotFound },
		}
		r := setupExpenseRouter(NewExpenseHandler(svc, nil))

		rec := doRequest(r, "DELETE", "/expenses/missing", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
