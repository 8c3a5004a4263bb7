package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"expensetracker/internal/expensecache"
	"expensetracker/internal/insights"
)

const clearScreen = "\033[H\033[2J"

func dashboardCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show spending totals, categories and the monthly trend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := insights.ParsePeriod(period)
			if err != nil {
				return err
			}
			cache, err := openCache(cmd.Context())
			if err != nil {
				return err
			}
			renderDashboard(cmd.OutOrStdout(), cache.Snapshot(), p, time.Now())
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "all", "all, month, or year")
	return cmd
}

func watchCmd() *cobra.Command {
	var (
		period   string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the dashboard on screen, refreshing periodically",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := insights.ParsePeriod(period)
			if err != nil {
				return err
			}
			if interval <= 0 {
				return fmt.Errorf("interval must be positive")
			}
			cache, err := openCache(cmd.Context())
			if err != nil {
				return err
			}
			return watch(cmd.Context(), cmd.OutOrStdout(), cache, p, interval)
		},
	}

	cmd.Flags().StringVar(&period, "period", "all", "all, month, or year")
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "refresh interval")
	return cmd
}

// watch re-renders on every cache change until ctx ends.
func watch(ctx context.Context, w io.Writer, cache *expensecache.Cache, period insights.Period, interval time.Duration) error {
	changes, unsubscribe := cache.Subscribe()
	defer unsubscribe()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	draw := func() {
		fmt.Fprint(w, clearScreen)
		renderDashboard(w, cache.Snapshot(), period, time.Now())
	}
	draw()

	var refresh *expensecache.Task[struct{}]
	for {
		select {
		case <-ctx.Done():
			if refresh != nil {
				refresh.Discard()
			}
			return nil
		case <-changes:
			draw()
		case <-ticker.C:
			if refresh != nil {
				select {
				case <-refresh.Done():
				default:
					continue
				}
			}
			refresh = expensecache.Go(ctx, func(ctx context.Context) (struct{}, error) {
				cache.FetchAll(ctx)
				cache.FetchCategories(ctx)
				return struct{}{}, nil
			})
		}
	}
}
