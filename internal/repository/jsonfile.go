package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/models"
	"expensetracker/internal/pagination"
	"expensetracker/internal/uuid"
)

// FileStore keeps every user and expense in a single JSON document. Each
// mutation rewrites the file through a temp file and rename.
type FileStore struct {
	path string

	mu   sync.RWMutex
	data fileData
}

type fileData struct {
	Users    []userRecord    `json:"users"`
	Expenses []expenseRecord `json:"expenses"`
}

type userRecord struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type expenseRecord struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        models.Date     `json:"date"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OpenFileStore loads path, starting empty when the file does not exist yet.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return s, nil
}

// Expenses returns the expense view of the store.
func (s *FileStore) Expenses() ExpenseRepository { return fileExpenses{s} }

// Users returns the user view of the store.
func (s *FileStore) Users() UserRepository { return fileUsers{s} }

// save must be called with mu held for writing.
func (s *FileStore) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating store directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("writing store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing store: %w", err)
	}
	return nil
}

// mutate applies fn and persists the result, rolling back on a failed write.
func (s *FileStore) mutate(fn func(d *fileData) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := fileData{
		Users:    append([]userRecord(nil), s.data.Users...),
		Expenses: append([]expenseRecord(nil), s.data.Expenses...),
	}
	if err := fn(&s.data); err != nil {
		return err
	}
	if err := s.save(); err != nil {
		s.data = before
		return err
	}
	return nil
}

type fileExpenses struct{ s *FileStore }

func (r fileExpenses) List(ctx context.Context, userID string, filter ExpenseFilter) ([]models.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	expenses := r.matching(userID, filter)
	sort.SliceStable(expenses, func(i, j int) bool {
		if expenses[i].CreatedAt.Equal(expenses[j].CreatedAt) {
			return expenses[i].ID > expenses[j].ID
		}
		return expenses[i].CreatedAt.After(expenses[j].CreatedAt)
	})
	if filter.Page != nil {
		expenses = pagination.Slice(expenses, *filter.Page)
	}
	return expenses, nil
}

func (r fileExpenses) Count(ctx context.Context, userID string, filter ExpenseFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.matching(userID, filter))), nil
}

// matching returns the owner's records passing filter. Callers hold the lock.
func (r fileExpenses) matching(userID string, filter ExpenseFilter) []models.Expense {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	expenses := []models.Expense{}
	for _, rec := range r.s.data.Expenses {
		if rec.UserID != userID {
			continue
		}
		if filter.Category != "" && rec.Category != filter.Category {
			continue
		}
		if filter.From != nil && rec.Date.Before(models.DateOf(*filter.From).Time) {
			continue
		}
		if filter.To != nil && rec.Date.After(models.DateOf(*filter.To).Time) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(rec.Title), search) &&
			!strings.Contains(strings.ToLower(rec.Category), search) {
			continue
		}
		expenses = append(expenses, rec.toModel())
	}
	return expenses
}

func (r fileExpenses) Get(ctx context.Context, userID, id string) (*models.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rec := range r.s.data.Expenses {
		if rec.ID == id && rec.UserID == userID {
			expense := rec.toModel()
			return &expense, nil
		}
	}
	return nil, ErrNotFound
}

func (r fileExpenses) Create(ctx context.Context, expense *models.Expense) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.s.mutate(func(d *fileData) error {
		now := time.Now().UTC()
		if expense.ID == "" {
			expense.ID = uuid.New()
		}
		expense.CreatedAt = now
		expense.UpdatedAt = now
		d.Expenses = append(d.Expenses, newExpenseRecord(expense))
		return nil
	})
}

func (r fileExpenses) Update(ctx context.Context, expense *models.Expense) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.s.mutate(func(d *fileData) error {
		for i, rec := range d.Expenses {
			if rec.ID != expense.ID || rec.UserID != expense.UserID {
				continue
			}
			expense.CreatedAt = rec.CreatedAt
			expense.UpdatedAt = time.Now().UTC()
			d.Expenses[i] = newExpenseRecord(expense)
			return nil
		}
		return ErrNotFound
	})
}

func (r fileExpenses) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.s.mutate(func(d *fileData) error {
		for i, rec := range d.Expenses {
			if rec.ID == id && rec.UserID == userID {
				d.Expenses = append(d.Expenses[:i], d.Expenses[i+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
}

type fileUsers struct{ s *FileStore }

func (r fileUsers) Create(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.s.mutate(func(d *fileData) error {
		for _, rec := range d.Users {
			if rec.Email == user.Email {
				return ErrDuplicate
			}
		}
		now := time.Now().UTC()
		if user.ID == "" {
			user.ID = uuid.New()
		}
		user.CreatedAt = now
		user.UpdatedAt = now
		d.Users = append(d.Users, newUserRecord(user))
		return nil
	})
}

func (r fileUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(ctx, func(rec userRecord) bool { return rec.Email == email && rec.IsActive })
}

func (r fileUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.find(ctx, func(rec userRecord) bool { return rec.ID == id })
}

func (r fileUsers) RecordLogin(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.s.mutate(func(d *fileData) error {
		for i := range d.Users {
			if d.Users[i].ID == id {
				at := at
				d.Users[i].LastLoginAt = &at
				return nil
			}
		}
		return ErrNotFound
	})
}

func (r fileUsers) find(ctx context.Context, match func(userRecord) bool) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rec := range r.s.data.Users {
		if match(rec) {
			user := rec.toModel()
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func newExpenseRecord(e *models.Expense) expenseRecord {
	return expenseRecord{
		ID:          e.ID,
		UserID:      e.UserID,
		Title:       e.Title,
		Amount:      e.Amount,
		Category:    e.Category,
		Date:        e.Date,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (rec expenseRecord) toModel() models.Expense {
	e := models.Expense{
		UserID:      rec.UserID,
		Title:       rec.Title,
		Amount:      rec.Amount,
		Category:    rec.Category,
		Date:        rec.Date,
		Description: rec.Description,
	}
	e.ID = rec.ID
	e.CreatedAt = rec.CreatedAt
	e.UpdatedAt = rec.UpdatedAt
	return e
}

func newUserRecord(u *models.User) userRecord {
	return userRecord{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Password:    u.Password,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (rec userRecord) toModel() models.User {
	u := models.User{
		Name:        rec.Name,
		Email:       rec.Email,
		Password:    rec.Password,
		IsActive:    rec.IsActive,
		LastLoginAt: rec.LastLoginAt,
	}
	u.ID = rec.ID
	u.CreatedAt = rec.CreatedAt
	u.UpdatedAt = rec.UpdatedAt
	return u
}
