// Package insights derives dashboard figures and list views from a slice of
// cached expenses. Every function is pure and leaves its input untouched.
package insights

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/client"
)

// OtherCategory labels expenses with a blank category.
const OtherCategory = "Other"

// RecentCount is the number of records Summarize reports as recent.
const RecentCount = 5

// TrendMonths bounds the monthly trend.
const TrendMonths = 6

// Period restricts which expenses a summary covers.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod accepts all, month or year. An empty string means all.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PeriodAll:
		return PeriodAll, nil
	case PeriodMonth, PeriodYear:
		return p, nil
	default:
		return "", fmt.Errorf("invalid period %q: must be all, month, or year", s)
	}
}

// CategoryTotal is the spend in one category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
	// Percentage of the period total, rounded to one decimal place.
	Percentage decimal.Decimal
}

// MonthTotal is the spend in one calendar month.
type MonthTotal struct {
	Month  time.Time
	Amount decimal.Decimal
}

// Label formats the month as "Jan 2024".
func (m MonthTotal) Label() string { return m.Month.Format("Jan 2006") }

// Summary holds the dashboard figures.
type Summary struct {
	Period     Period
	Total      decimal.Decimal
	Count      int
	Average    decimal.Decimal
	Categories []CategoryTotal
	// Trend covers all expenses regardless of Period.
	Trend  []MonthTotal
	Recent []client.Expense
}

// Summarize computes the dashboard for the expenses falling in period,
// relative to now.
func Summarize(expenses []client.Expense, period Period, now time.Time) Summary {
	inPeriod := InPeriod(expenses, period, now)

	s := Summary{
		Period:     period,
		Total:      decimal.Zero,
		Average:    decimal.Zero,
		Count:      len(inPeriod),
		Categories: []CategoryTotal{},
		Trend:      Trend(expenses, TrendMonths),
		Recent:     Recent(inPeriod, RecentCount),
	}
	for _, e := range inPeriod {
		s.Total = s.Total.Add(e.Amount)
	}
	if s.Count > 0 {
		s.Average = s.Total.Div(decimal.NewFromInt(int64(s.Count))).Round(2)
	}
	s.Categories = byCategory(inPeriod, s.Total)
	return s
}

// InPeriod returns the expenses dated in now's month or year. Undated
// records only appear under PeriodAll.
func InPeriod(expenses []client.Expense, period Period, now time.Time) []client.Expense {
	out := make([]client.Expense, 0, len(expenses))
	for _, e := range expenses {
		switch period {
		case PeriodMonth:
			if e.Date.IsZero() || e.Date.Year() != now.Year() || e.Date.Month() != now.Month() {
				continue
			}
		case PeriodYear:
			if e.Date.IsZero() || e.Date.Year() != now.Year() {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func byCategory(expenses []client.Expense, total decimal.Decimal) []CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, e := range expenses {
		category := strings.TrimSpace(e.Category)
		if category == "" {
			category = OtherCategory
		}
		if _, ok := totals[category]; !ok {
			order = append(order, category)
		}
		totals[category] = totals[category].Add(e.Amount)
	}

	out := make([]CategoryTotal, 0, len(order))
	hundred := decimal.NewFromInt(100)
	for _, category := range order {
		ct := CategoryTotal{Category: category, Amount: totals[category], Percentage: decimal.Zero}
		if total.IsPositive() {
			ct.Percentage = ct.Amount.Mul(hundred).Div(total).Round(1)
		}
		out = append(out, ct)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Trend returns per-month totals for the latest months that have any
// expenses, oldest first.
func Trend(expenses []client.Expense, months int) []MonthTotal {
	totals := make(map[time.Time]decimal.Decimal)
	for _, e := range expenses {
		if e.Date.IsZero() {
			continue
		}
		month := time.Date(e.Date.Year(), e.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
		totals[month] = totals[month].Add(e.Amount)
	}

	out := make([]MonthTotal, 0, len(totals))
	for month, amount := range totals {
		out = append(out, MonthTotal{Month: month, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	if months >= 0 && len(out) > months {
		out = out[len(out)-months:]
	}
	return out
}

// Recent returns the first n expenses.
func Recent(expenses []client.Expense, n int) []client.Expense {
	if n < 0 {
		n = 0
	}
	if n > len(expenses) {
		n = len(expenses)
	}
	return append([]client.Expense{}, expenses[:n]...)
}
