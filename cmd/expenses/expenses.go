package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"expensetracker/internal/client"
	"expensetracker/internal/insights"
	"expensetracker/internal/models"
)

func listCmd() *cobra.Command {
	var search, category, sortBy string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := insights.ParseSortKey(sortBy)
			if err != nil {
				return err
			}
			cache, err := openCache(cmd.Context())
			if err != nil {
				return err
			}

			expenses := insights.Filter(cache.Snapshot().Expenses, insights.Query{Search: search, Category: category})
			return renderTable(cmd.OutOrStdout(), insights.Sort(expenses, key))
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "match categories containing this text")
	cmd.Flags().StringVar(&category, "category", "", "only show this category")
	cmd.Flags().StringVar(&sortBy, "sort", "date", "sort by date, amount, title, or category")

	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache(cmd.Context())
			if err != nil {
				return err
			}
			e, ok := cache.Lookup(args[0])
			if !ok {
				return fmt.Errorf("expense %s not found", args[0])
			}
			renderDetail(cmd.OutOrStdout(), e)
			return nil
		},
	}
}

// draftFlags holds the expense fields accepted by add and edit.
type draftFlags struct {
	title       string
	amount      string
	category    string
	date        string
	description string
}

func (f *draftFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "what the money was spent on")
	fs.StringVar(&f.amount, "amount", "", "amount, e.g. 12.50")
	fs.StringVar(&f.category, "category", "", "category, see 'expenses categories'")
	fs.StringVar(&f.date, "date", "", "date as YYYY-MM-DD (default today)")
	fs.StringVar(&f.description, "description", "", "optional note")
}

// apply copies the flags that were set onto d.
func (f *draftFlags) apply(fs *pflag.FlagSet, d *client.ExpenseDraft) error {
	if fs.Changed("title") {
		d.Title = f.title
	}
	if fs.Changed("amount") {
		amount, err := decimal.NewFromString(strings.TrimSpace(f.amount))
		if err != nil {
			return fmt.Errorf("invalid amount %q", f.amount)
		}
		d.Amount = amount
	}
	if fs.Changed("category") {
		d.Category = f.category
	}
	if fs.Changed("date") {
		date, err := models.ParseDate(f.date)
		if err != nil {
			return err
		}
		d.Date = date
	}
	if fs.Changed("description") {
		d.Description = f.description
	}
	return nil
}

func addCmd() *cobra.Command {
	var flags draftFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new expense",
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft := client.ExpenseDraft{Date: models.DateOf(time.Now())}
			if err := flags.apply(cmd.Flags(), &draft); err != nil {
				return err
			}

			cache, err := openCache(cmd.Context())
			if err != nil {
				return err
			}
			created, err := cache.Create(cmd.Context(), draft)
			if err != nil {
				return explain(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(fmt.Sprintf("Added %s (%s)", created.Title, created.ID)))
			return nil
		},
	}

	flags.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func editCmd() *cobra.Command {
	var flags draftFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache(cmd.Context())
			if err != nil {
				return err
			}
			current, ok := cache.Lookup(args[0])
			if !ok {
				return fmt.Errorf("expense %s not found", args[0])
			}

			draft := client.ExpenseDraft{
				Title:       current.Title,
				Amount:      current.Amount,
				Category:    current.Category,
				Date:        current.Date,
				Description: current.Description,
			}
			if err := flags.apply(cmd.Flags(), &draft); err != nil {
				return err
			}

			updated, err := cache.Update(cmd.Context(), args[0], draft)
			if err != nil {
				return explain(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Updated "+updated.Title))
			return nil
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an expense",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache(cmd.Context())
			if err != nil {
				return err
			}
			if err := cache.Remove(cmd.Context(), args[0]); err != nil {
				return explain(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Expense deleted"))
			return nil
		},
	}
}

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the available categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, err := openCache(cmd.Context())
			if err != nil {
				return err
			}
			categories := cache.Snapshot().Categories
			if len(categories) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), SubtleStyle.Render("No categories available"))
				return nil
			}
			for _, c := range categories {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}
