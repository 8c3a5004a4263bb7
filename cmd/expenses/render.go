package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"expensetracker/internal/client"
	"expensetracker/internal/expensecache"
	"expensetracker/internal/insights"
)

const barWidth = 24

func formatAmount(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func formatDate(e client.Expense) string {
	if e.Date.IsZero() {
		return "-"
	}
	return e.Date.String()
}

func categoryOf(e client.Expense) string {
	if strings.TrimSpace(e.Category) == "" {
		return insights.OtherCategory
	}
	return e.Category
}

func renderTable(w io.Writer, expenses []client.Expense) error {
	if len(expenses) == 0 {
		fmt.Fprintln(w, SubtleStyle.Render("No expenses found. Use 'expenses add' to record one."))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		HeaderStyle.Render("ID"),
		HeaderStyle.Render("Date"),
		HeaderStyle.Render("Title"),
		HeaderStyle.Render("Category"),
		HeaderStyle.Render("Amount"))
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 8),
		strings.Repeat("─", 10),
		strings.Repeat("─", 20),
		strings.Repeat("─", 14),
		strings.Repeat("─", 10))

	for _, e := range expenses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, formatDate(e), e.Title, categoryOf(e), formatAmount(e.Amount))
	}
	return tw.Flush()
}

func renderDetail(w io.Writer, e client.Expense) {
	fmt.Fprintln(w, TitleStyle.Render(e.Title))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", e.ID)
	fmt.Fprintf(tw, "Amount\t%s\n", AmountStyle.Render(formatAmount(e.Amount)))
	fmt.Fprintf(tw, "Category\t%s\n", categoryOf(e))
	fmt.Fprintf(tw, "Date\t%s\n", formatDate(e))
	if e.Description != "" {
		fmt.Fprintf(tw, "Description\t%s\n", e.Description)
	}
	if !e.CreatedAt.IsZero() {
		fmt.Fprintf(tw, "Created\t%s\n", e.CreatedAt.Local().Format(time.DateTime))
	}
	_ = tw.Flush()
}

func periodLabel(p insights.Period) string {
	switch p {
	case insights.PeriodMonth:
		return "This Month"
	case insights.PeriodYear:
		return "This Year"
	default:
		return "All Time"
	}
}

func renderDashboard(w io.Writer, state expensecache.State, period insights.Period, now time.Time) {
	s := insights.Summarize(state.Expenses, period, now)

	fmt.Fprintln(w, TitleStyle.Render("Expense Dashboard · "+periodLabel(period)))

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total Spent", formatAmount(s.Total)),
		card("Expenses", fmt.Sprintf("%d", s.Count)),
		card("Average", formatAmount(s.Average)),
	)
	fmt.Fprintln(w, cards)

	if state.Err != nil {
		fmt.Fprintln(w, ErrorStyle.Render(state.Err.Message))
	}
	if state.Loading {
		fmt.Fprintln(w, SubtleStyle.Render("Refreshing..."))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, HeaderStyle.Render("By category"))
	if len(s.Categories) == 0 {
		fmt.Fprintln(w, SubtleStyle.Render("  No expenses in this period"))
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range s.Categories {
		fmt.Fprintf(tw, "  %s\t%s\t%s%%\t%s\n", c.Category, formatAmount(c.Amount), c.Percentage.StringFixed(1), bar(c.Percentage))
	}
	_ = tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, HeaderStyle.Render("Monthly trend"))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, m := range s.Trend {
		fmt.Fprintf(tw, "  %s\t%s\n", m.Label(), formatAmount(m.Amount))
	}
	_ = tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, HeaderStyle.Render("Recent"))
	for _, e := range s.Recent {
		fmt.Fprintf(w, "  %s  %-24s %s\n", formatDate(e), e.Title, AmountStyle.Render(formatAmount(e.Amount)))
	}
}

func card(label, value string) string {
	return CardStyle.Render(SubtleStyle.Render(label) + "\n" + AmountStyle.Render(value))
}

// bar draws a percentage as a horizontal bar.
func bar(pct decimal.Decimal) string {
	n := int(pct.Mul(decimal.NewFromInt(barWidth)).Div(decimal.NewFromInt(100)).Round(0).IntPart())
	if n < 0 {
		n = 0
	}
	if n > barWidth {
		n = barWidth
	}
	return lipgloss.NewStyle().Foreground(primaryColor).Render(strings.Repeat("█", n))
}
