// Package client provides an HTTP client for the expense API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/models"
)

// DefaultTimeout applies when New is given a nil http.Client.
const DefaultTimeout = 15 * time.Second

// Expense is an expense record as returned by the API.
type Expense struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        models.Date     `json:"date"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ExpenseDraft is the client-submitted part of an expense.
type ExpenseDraft struct {
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        models.Date     `json:"date"`
	Description string          `json:"description"`
}

// User is the public part of an account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResult is returned by Login and Register.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// IsStatus reports whether err is a StatusError with the given status code.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == status
}

// Client communicates with the expense API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the API rooted at baseURL (for example
// "http://localhost:5000/api/v1").
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// ListExpenses fetches the authenticated user's expenses, newest first.
func (c *Client) ListExpenses(ctx context.Context) ([]Expense, error) {
	var expenses []Expense
	if err := c.do(ctx, http.MethodGet, "/expenses", nil, &expenses); err != nil {
		return nil, fmt.Errorf("fetching expenses: %w", err)
	}
	if expenses == nil {
		expenses = []Expense{}
	}
	return expenses, nil
}

// GetExpense fetches a single expense.
func (c *Client) GetExpense(ctx context.Context, id string) (*Expense, error) {
	var expense Expense
	if err := c.do(ctx, http.MethodGet, "/expenses/"+url.PathEscape(id), nil, &expense); err != nil {
		return nil, fmt.Errorf("fetching expense %s: %w", id, err)
	}
	return &expense, nil
}

// ListCategories fetches the category labels. A server without the
// endpoint yields an empty list.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := c.do(ctx, http.MethodGet, "/categories", nil, &categories)
	if IsStatus(err, http.StatusNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching categories: %w", err)
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// CreateExpense submits a draft and returns the stored record.
func (c *Client) CreateExpense(ctx context.Context, draft ExpenseDraft) (*Expense, error) {
	var expense Expense
	if err := c.do(ctx, http.MethodPost, "/expenses", draft, &expense); err != nil {
		return nil, fmt.Errorf("creating expense: %w", err)
	}
	return &expense, nil
}

// UpdateExpense replaces the fields of an expense and returns the stored record.
func (c *Client) UpdateExpense(ctx context.Context, id string, draft ExpenseDraft) (*Expense, error) {
	var expense Expense
	if err := c.do(ctx, http.MethodPut, "/expenses/"+url.PathEscape(id), draft, &expense); err != nil {
		return nil, fmt.Errorf("updating expense %s: %w", id, err)
	}
	return &expense, nil
}

// DeleteExpense removes an expense.
func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/expenses/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("deleting expense %s: %w", id, err)
	}
	return nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &result); err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}
	return &result, nil
}

// Register creates an account and returns its token.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &result); err != nil {
		return nil, fmt.Errorf("registering: %w", err)
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeStatusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeStatusError(resp *http.Response) error {
	se := &StatusError{StatusCode: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) != nil || len(envelope.Error) == 0 {
		return se
	}

	var detail struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(envelope.Error, &detail) == nil {
		se.Code, se.Message = detail.Code, detail.Message
		return se
	}
	var plain string
	if json.Unmarshal(envelope.Error, &plain) == nil {
		se.Message = plain
	}
	return se
}
