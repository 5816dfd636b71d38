package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/jaswdr/faker"
	"github.com/salescoach/salescoach/internal/catalog"
	"github.com/salescoach/salescoach/internal/cli"
	"github.com/salescoach/salescoach/internal/entry"
	"github.com/salescoach/salescoach/internal/model"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate demo sales history",
		Long: `Fill the history store with plausible generated entries so every other
command is demonstrable on a fresh checkout. Existing entries for the
generated dates are overwritten.`,
		RunE: runSeed,
	}

	// Flags
	cmd.Flags().IntP("days", "n", 30, "Number of trailing days to generate")
	cmd.Flags().Int64("seed", 0, "Random seed for reproducible data (0: time-seeded)")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	days, _ := cmd.Flags().GetInt("days")
	seed, _ := cmd.Flags().GetInt64("seed")

	if days <= 0 {
		return fmt.Errorf("--days must be positive, got %d", days)
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	fake := faker.NewWithSeed(rand.NewSource(seed)) //nolint:gosec // demo data only

	cat, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	interrupt := cli.NewInterruptHandler(os.Stdout)
	ctx = interrupt.HandleInterrupts(ctx, true)

	slog.Info(cli.FormatTitle(fmt.Sprintf("Seeding %d days of demo history...", days)))

	bar := progressbar.NewOptions(days,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]Generating entries...[reset]"),
	)

	today := time.Now().UTC()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	for i := days - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		date := today.AddDate(0, 0, -i)
		record := generateRecord(fake, cat, date)

		if err := store.SaveDailyRecord(ctx, record); err != nil {
			return fmt.Errorf("failed to save entry for %s: %w", model.DateKey(date), err)
		}
		_ = bar.Add(1)
	}

	fmt.Fprintln(os.Stderr)
	slog.Info(cli.FormatSuccess(fmt.Sprintf("Seeded %d days ending %s", days, model.DateKey(today))))

	return nil
}

// generateRecord fabricates one plausible day: weekends run busier, a
// handful of menu items sell each day, and the POS figure drifts slightly
// off the menu total so reconciliation has something to grade.
func generateRecord(fake faker.Faker, cat *catalog.Catalog, date time.Time) *model.DailyRecord {
	busy := 1.0
	switch date.Weekday() {
	case time.Friday, time.Saturday:
		busy = 1.4
	case time.Sunday:
		busy = 1.2
	case time.Monday, time.Tuesday, time.Wednesday, time.Thursday:
	}

	quantities := make(map[string]int)
	for _, item := range cat.Items() {
		// Roughly two thirds of the menu sells on a given day.
		if fake.IntBetween(1, 3) == 1 {
			continue
		}
		qty := int(float64(fake.IntBetween(1, 8)) * busy)
		if qty <= 0 {
			continue
		}
		quantities[item.ID] = qty
	}

	record := &model.DailyRecord{
		Date:          date,
		Quantities:    quantities,
		MonthlyTarget: 30000,
	}

	var calc float64
	for id, qty := range quantities {
		if item, ok := cat.Item(id); ok {
			calc += item.Price * float64(qty)
		}
	}
	record.TotalSales = calc
	// Drift the register total by up to ±2%.
	record.POSSales = calc * (1 + fake.Float64(4, -200, 200)/10000)

	orders := int(calc / 18)
	if orders < 1 {
		orders = 1
	}
	record.Orders = orders + fake.IntBetween(0, 5)
	record.VisitCount = record.Orders + fake.IntBetween(2, 15)

	if fake.IntBetween(1, 5) == 1 {
		record.Note = fake.Lorem().Sentence(4)
	}

	// Keep the stored total consistent with the reconciliation layer.
	record.TotalSales = entry.Reconcile(record, cat).CalcSales

	return record
}
