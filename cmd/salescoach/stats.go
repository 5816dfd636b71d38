package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/salescoach/salescoach/internal/cli"
	"github.com/salescoach/salescoach/internal/model"
	"github.com/salescoach/salescoach/internal/service"
	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show monthly and period sales statistics",
		Long: `Summarize recorded entries: monthly total, per-day average and target
attainment, or totals over an arbitrary date range.`,
		RunE: runStats,
	}

	// Flags
	cmd.Flags().StringP("month", "m", "", "Month to summarize (format: 2025-08, default: current month)")
	cmd.Flags().String("from", "", "Period start (YYYY-MM-DD), overrides --month")
	cmd.Flags().String("to", "", "Period end (YYYY-MM-DD, default: today)")

	return cmd
}

func runStats(cmd *cobra.Command, _ []string) error {
	monthFlag, _ := cmd.Flags().GetString("month")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if from != "" {
		window, rangeErr := resolveWindow(from, to, "", 0)
		if rangeErr != nil {
			return rangeErr
		}
		return runPeriodStats(cmd, store, window)
	}

	year, month := time.Now().UTC().Year(), time.Now().UTC().Month()
	if monthFlag != "" {
		parsed, parseErr := time.ParseInLocation("2006-01", monthFlag, time.UTC)
		if parseErr != nil {
			return fmt.Errorf("invalid month %q (expected YYYY-MM): %w", monthFlag, parseErr)
		}
		year, month = parsed.Year(), parsed.Month()
	}

	total, err := store.GetMonthlyTotal(ctx, year, month)
	if err != nil {
		return fmt.Errorf("failed to compute monthly total: %w", err)
	}

	dates, err := store.ListDatesInMonth(ctx, year, month)
	if err != nil {
		return fmt.Errorf("failed to list recorded dates: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Total sales: $%.2f\n", total)
	fmt.Fprintf(&b, "Recorded days: %d\n", len(dates))
	if len(dates) > 0 {
		fmt.Fprintf(&b, "Average per recorded day: $%.2f\n", total/float64(len(dates)))

		// The latest record carries the month's target.
		latest, recErr := store.GetDailyRecord(ctx, dates[len(dates)-1])
		if recErr == nil && latest.MonthlyTarget > 0 {
			fmt.Fprintf(&b, "Monthly target: $%.2f (%.1f%% attained)",
				latest.MonthlyTarget, total/latest.MonthlyTarget*100)
		}
	}

	slog.Info(cli.RenderBox(fmt.Sprintf("%s %d-%02d", cli.ChartIcon, year, month), strings.TrimRight(b.String(), "\n")))

	return nil
}

func runPeriodStats(cmd *cobra.Command, store service.HistoryStore, window service.DateRange) error {
	summary, err := store.GetPeriodSummary(cmd.Context(), window)
	if err != nil {
		return fmt.Errorf("failed to compute period summary: %w", err)
	}

	var b strings.Builder
	for _, day := range summary.Days {
		fmt.Fprintf(&b, "%s  $%.2f  (%d orders, %d visitors)\n",
			model.DateKey(day.Date), day.TotalSales, day.Orders, day.Visitors)
	}
	if len(summary.Days) > 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Total: $%.2f over %d days\n", summary.TotalSales, len(summary.Days))
	fmt.Fprintf(&b, "Orders: %d, visitors: %d", summary.TotalOrders, summary.TotalVisitors)

	title := fmt.Sprintf("%s %s to %s", cli.ChartIcon, model.DateKey(window.Start), model.DateKey(window.End))
	slog.Info(cli.RenderBox(title, b.String()))

	return nil
}
