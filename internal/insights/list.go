package insights

import (
	"fmt"
	"sort"
	"strings"

	"expensetracker/internal/client"
)

// Query narrows an expense list.
type Query struct {
	// Search matches the category case-insensitively as a substring.
	Search string
	// Category, when set, must equal the record's category exactly.
	Category string
}

// Filter returns the expenses matching q, in their original order.
func Filter(expenses []client.Expense, q Query) []client.Expense {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]client.Expense, 0, len(expenses))
	for _, e := range expenses {
		if search != "" {
			if e.Category == "" || !strings.Contains(strings.ToLower(e.Category), search) {
				continue
			}
		}
		if q.Category != "" && e.Category != q.Category {
			continue
		}
		out = append(out, e)
	}
	return out
}

// SortKey selects a list ordering.
type SortKey string

const (
	SortByDate     SortKey = "date"
	SortByAmount   SortKey = "amount"
	SortByTitle    SortKey = "title"
	SortByCategory SortKey = "category"
)

// ParseSortKey accepts date, amount, title or category. An empty string
// means date.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortByDate, nil
	case SortByDate, SortByAmount, SortByTitle, SortByCategory:
		return k, nil
	default:
		return "", fmt.Errorf("invalid sort %q: must be date, amount, title, or category", s)
	}
}

// Sort returns a sorted copy of expenses. Date sorts newest first with
// undated records last, amount sorts highest first, and title and category
// sort alphabetically ignoring case. Ties keep their input order.
func Sort(expenses []client.Expense, by SortKey) []client.Expense {
	out := append([]client.Expense{}, expenses...)

	var less func(a, b client.Expense) bool
	switch by {
	case SortByAmount:
		less = func(a, b client.Expense) bool { return a.Amount.GreaterThan(b.Amount) }
	case SortByTitle:
		less = func(a, b client.Expense) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case SortByCategory:
		less = func(a, b client.Expense) bool { return strings.ToLower(a.Category) < strings.ToLower(b.Category) }
	default:
		less = func(a, b client.Expense) bool {
			if a.Date.IsZero() != b.Date.IsZero() {
				return b.Date.IsZero()
			}
			return a.Date.After(b.Date.Time)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
