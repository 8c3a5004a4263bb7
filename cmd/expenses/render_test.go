package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"expensetracker/internal/client"
	"expensetracker/internal/expensecache"
	"expensetracker/internal/insights"
	"expensetracker/internal/models"
)

func sample() []client.Expense {
	return []client.Expense{
		{ID: "1", Title: "Lunch", Amount: decimal.RequireFromString("12.5"), Category: "Food", Date: models.NewDate(2024, time.March, 2)},
		{ID: "2", Title: "Gift", Amount: decimal.RequireFromString("7.5"), Date: models.NewDate(2024, time.March, 3)},
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	if err := renderTable(&buf, sample()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Lunch", "$12.50", "2024-03-02", "Other"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := renderTable(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No expenses found") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestRenderDashboard(t *testing.T) {
	var buf bytes.Buffer
	state := expensecache.State{
		Expenses: sample(),
		Err:      &expensecache.Error{Kind: expensecache.FetchFailed, Message: "Failed to fetch expenses"},
	}

	renderDashboard(&buf, state, insights.PeriodMonth, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC))

	out := buf.String()
	for _, want := range []string{"This Month", "$20.00", "$10.00", "62.5%", "Other", "Mar 2024", "Failed to fetch expenses"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestDraftFlags_ApplyOnlyChanged(t *testing.T) {
	var f draftFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.register(fs)
	if err := fs.Parse([]string{"--amount", "3.25", "--date", "2024-02-29"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	d := client.ExpenseDraft{Title: "Coffee", Category: "Food", Description: "keep"}
	if err := f.apply(fs, &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.Title != "Coffee" || d.Description != "keep" {
		t.Errorf("unset flags must not change fields: %+v", d)
	}
	if !d.Amount.Equal(decimal.RequireFromString("3.25")) {
		t.Errorf("expected amount 3.25, got %s", d.Amount)
	}
	if d.Date.String() != "2024-02-29" {
		t.Errorf("expected date 2024-02-29, got %s", d.Date)
	}
}

func TestDraftFlags_InvalidAmount(t *testing.T) {
	var f draftFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.register(fs)
	_ = fs.Parse([]string{"--amount", "lots"})

	if err := f.apply(fs, &client.ExpenseDraft{}); err == nil {
		t.Fatal("expected error for invalid amount")
	}
}

func TestBar(t *testing.T) {
	if got := bar(decimal.NewFromInt(100)); strings.Count(got, "█") != barWidth {
		t.Errorf("expected full bar, got %q", got)
	}
	if got := bar(decimal.Zero); strings.Contains(got, "█") {
		t.Errorf("expected empty bar, got %q", got)
	}
}
