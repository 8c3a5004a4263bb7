package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
	"expensetracker/internal/pagination"
	"expensetracker/internal/repository"
	"expensetracker/internal/services"
)

// MutationRecorder counts successful expense writes.
type MutationRecorder interface {
	RecordExpenseMutation(operation string)
}

type noopRecorder struct{}

func (noopRecorder) RecordExpenseMutation(string) {}

// ExpenseHandler handles expense CRUD requests
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	metrics        MutationRecorder
}

// NewExpenseHandler creates a new ExpenseHandler. metrics may be nil.
func NewExpenseHandler(expenseService services.ExpenseServicer, metrics MutationRecorder) *ExpenseHandler {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &ExpenseHandler{expenseService: expenseService, metrics: metrics}
}

// CreateExpenseRequest represents a new expense. Amount accepts a JSON number
// or a numeric string.
type CreateExpenseRequest struct {
	Title       string          `json:"title" binding:"required,notblank,max=200"`
	Amount      decimal.Decimal `json:"amount" binding:"required,gt=0" swaggertype:"number"`
	Category    string          `json:"category" binding:"required,category"`
	Date        models.Date     `json:"date" binding:"required" swaggertype:"string" example:"2024-01-15"`
	Description string          `json:"description" binding:"max=1000"`
}

// UpdateExpenseRequest carries the fields to change; omitted fields are kept.
type UpdateExpenseRequest struct {
	Title       *string          `json:"title" binding:"omitempty,notblank,max=200"`
	Amount      *decimal.Decimal `json:"amount" binding:"omitempty,gt=0" swaggertype:"number"`
	Category    *string          `json:"category" binding:"omitempty,category"`
	Date        *models.Date     `json:"date" swaggertype:"string" example:"2024-01-15"`
	Description *string          `json:"description" binding:"omitempty,max=1000"`
}

// ListExpenses returns the user's expenses
// @Summary     List expenses
// @Description Get the authenticated user's expenses, newest first
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       category query string false "Exact category"
// @Param       from     query string false "Earliest date (YYYY-MM-DD)"
// @Param       to       query string false "Latest date (YYYY-MM-DD)"
// @Param       q        query string false "Case-insensitive title or category search"
// @Param       page      query int    false "Page number; enables paging"
// @Param       page_size query int    false "Page size (max 100); enables paging"
// @Success     200 {array} models.Expense "Expenses"
// @Header      200 {integer} X-Total-Count "Matching expenses, when paging"
// @Header      200 {integer} X-Total-Pages "Page count, when paging"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter := repository.ExpenseFilter{
		Category: c.Query("category"),
		Search:   c.Query("q"),
	}
	if filter.From, err = parseDateQuery(c, "from"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.To, err = parseDateQuery(c, "to"); err != nil {
		respondWithError(c, err)
		return
	}

	if c.Query("page") != "" || c.Query("page_size") != "" {
		var page pagination.PageRequest
		if err := c.ShouldBindQuery(&page); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "page must be at least 1 and page_size between 1 and 100"))
			return
		}
		page.Defaults()
		filter.Page = &page

		total, err := h.expenseService.CountExpenses(c.Request.Context(), userID, filter)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.Header("X-Total-Count", strconv.FormatInt(total, 10))
		c.Header("X-Total-Pages", strconv.Itoa(pagination.TotalPages(total, page.PageSize)))
	}

	expenses, err := h.expenseService.ListExpenses(c.Request.Context(), userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, expenses)
}

// CreateExpense records a new expense
// @Summary     Create expense
// @Description Add an expense for the authenticated user
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateExpenseRequest true "Expense data"
// @Success     201 {object} models.Expense "Created expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), userID, services.ExpenseInput{
		Title:       req.Title,
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.metrics.RecordExpenseMutation("create")
	c.JSON(http.StatusCreated, expense)
}

// GetExpense returns a single expense
// @Summary     Get expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} models.Expense "Expense"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpense(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, expense)
}

// UpdateExpense changes an existing expense
// @Summary     Update expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Expense ID"
// @Param       request body UpdateExpenseRequest true "Fields to change"
// @Success     200 {object} models.Expense "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), userID, c.Param("id"), services.ExpensePatch{
		Title:       req.Title,
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.metrics.RecordExpenseMutation("update")
	c.JSON(http.StatusOK, expense)
}

// DeleteExpense removes an expense
// @Summary     Delete expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} MessageResponse "Expense deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	h.metrics.RecordExpenseMutation("delete")
	c.JSON(http.StatusOK, MessageResponse{Message: "Expense deleted"})
}

func parseDateQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, key+" must be formatted as YYYY-MM-DD")
	}
	return &d.Time, nil
}
