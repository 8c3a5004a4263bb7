package insights

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/client"
	"expensetracker/internal/models"
)

var now = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func exp(id, title, amount, category string, date models.Date) client.Expense {
	return client.Expense{
		ID:       id,
		Title:    title,
		Amount:   decimal.RequireFromString(amount),
		Category: category,
		Date:     date,
	}
}

func day(y int, m time.Month, d int) models.Date { return models.NewDate(y, m, d) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{in: "", want: PeriodAll},
		{in: "all", want: PeriodAll},
		{in: "Month", want: PeriodMonth},
		{in: " year ", want: PeriodYear},
		{in: "week", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePeriod(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, PeriodAll, now)

	assert.True(t, s.Total.IsZero())
	assert.True(t, s.Average.IsZero())
	assert.Zero(t, s.Count)
	assert.Empty(t, s.Categories)
	assert.Empty(t, s.Trend)
	assert.Empty(t, s.Recent)
}

func TestSummarize_Periods(t *testing.T) {
	expenses := []client.Expense{
		exp("1", "Lunch", "12.50", "Food", day(2024, time.March, 2)),
		exp("2", "Bus", "2.50", "Transportation", day(2024, time.January, 20)),
		exp("3", "Rent", "900", "Utilities", day(2023, time.December, 1)),
		exp("4", "Undated", "5", "Food", models.Date{}),
	}

	tests := []struct {
		period Period
		count  int
		total  string
	}{
		{period: PeriodAll, count: 4, total: "920"},
		{period: PeriodYear, count: 2, total: "15"},
		{period: PeriodMonth, count: 1, total: "12.5"},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			s := Summarize(expenses, tt.period, now)

			assert.Equal(t, tt.count, s.Count)
			assert.True(t, s.Total.Equal(dec(tt.total)), "total %s", s.Total)
			assert.Len(t, s.Trend, 3, "trend ignores the period")
		})
	}
}

func TestSummarize_AverageRoundsToCents(t *testing.T) {
	expenses := []client.Expense{
		exp("1", "a", "10", "Food", day(2024, time.March, 1)),
		exp("2", "b", "10", "Food", day(2024, time.March, 2)),
		exp("3", "c", "0.01", "Food", day(2024, time.March, 3)),
	}

	s := Summarize(expenses, PeriodAll, now)

	assert.True(t, s.Average.Equal(dec("6.67")), "average %s", s.Average)
}

func TestSummarize_Categories(t *testing.T) {
	expenses := []client.Expense{
		exp("1", "Lunch", "30", "Food", day(2024, time.March, 1)),
		exp("2", "Gift", "10", "", day(2024, time.March, 2)),
		exp("3", "Dinner", "30", "Food", day(2024, time.March, 3)),
		exp("4", "Bus", "30", "Transportation", day(2024, time.March, 4)),
	}

	s := Summarize(expenses, PeriodAll, now)

	require.Len(t, s.Categories, 3)
	assert.Equal(t, "Food", s.Categories[0].Category)
	assert.True(t, s.Categories[0].Amount.Equal(dec("60")))
	assert.True(t, s.Categories[0].Percentage.Equal(dec("60")))
	assert.Equal(t, "Transportation", s.Categories[1].Category)
	assert.Equal(t, OtherCategory, s.Categories[2].Category)
	assert.True(t, s.Categories[2].Percentage.Equal(dec("10")))
}

func TestSummarize_RecentIsFirstFiveInPeriod(t *testing.T) {
	var expenses []client.Expense
	for i := 1; i <= 7; i++ {
		expenses = append(expenses, exp(string(rune('0'+i)), "x", "1", "Food", day(2024, time.March, i)))
	}
	expenses = append([]client.Expense{exp("old", "x", "1", "Food", day(2020, time.March, 1))}, expenses...)

	s := Summarize(expenses, PeriodMonth, now)

	require.Len(t, s.Recent, RecentCount)
	assert.Equal(t, "1", s.Recent[0].ID)
}

func TestTrend_LastSixMonthsAscending(t *testing.T) {
	var expenses []client.Expense
	for m := time.January; m <= time.August; m++ {
		expenses = append(expenses, exp("id", "x", "10", "Food", day(2023, m, 10)))
	}
	expenses = append(expenses, exp("id", "x", "5", "Food", day(2023, time.August, 11)))

	trend := Trend(expenses, TrendMonths)

	require.Len(t, trend, TrendMonths)
	assert.Equal(t, time.March, trend[0].Month.Month())
	assert.Equal(t, time.August, trend[5].Month.Month())
	assert.True(t, trend[5].Amount.Equal(dec("15")))
	assert.Equal(t, "Aug 2023", trend[5].Label())
}

func TestRecent(t *testing.T) {
	expenses := []client.Expense{
		exp("1", "a", "1", "Food", day(2024, time.March, 1)),
		exp("2", "b", "1", "Food", day(2024, time.March, 1)),
	}

	assert.Len(t, Recent(expenses, 5), 2)
	assert.Len(t, Recent(expenses, 1), 1)
	assert.Empty(t, Recent(expenses, -1))

	got := Recent(expenses, 1)
	got[0].Title = "changed"
	assert.Equal(t, "a", expenses[0].Title)
}
