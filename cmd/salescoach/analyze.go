package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/salescoach/salescoach/internal/cli"
	"github.com/salescoach/salescoach/internal/engine"
	"github.com/salescoach/salescoach/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Classify the menu and plan boosts",
		Long: `Aggregate sales history over a trailing window, classify every costed
item into the popularity x profitability matrix, and derive up to three
boost plans for tomorrow.`,
		RunE: runAnalyze,
	}

	// Flags
	cmd.Flags().String("from", "", "Window start (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Window end (YYYY-MM-DD, default: today)")
	cmd.Flags().StringP("month", "m", "", "Analyze a whole month (format: 2025-08)")
	cmd.Flags().Int("days", 7, "Trailing window length when --from is not given")
	cmd.Flags().Int64("seed", 0, "Random seed for deterministic planning (0: time-seeded)")
	cmd.Flags().Bool("debug", false, "Show aggregation audit counters")

	// Bind to viper
	_ = viper.BindPFlag("analyze.days", cmd.Flags().Lookup("days"))

	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	month, _ := cmd.Flags().GetString("month")
	days := viper.GetInt("analyze.days")
	seed, _ := cmd.Flags().GetInt64("seed")
	debug, _ := cmd.Flags().GetBool("debug")

	window, err := resolveWindow(from, to, month, days)
	if err != nil {
		return err
	}

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

	eng := engine.New(store)
	if seed != 0 {
		eng = engine.NewWithRand(store, rand.New(rand.NewSource(seed))) //nolint:gosec // planning variety, not security
	}

	slog.Info(cli.FormatTitle(fmt.Sprintf("Analyzing %s to %s...",
		model.DateKey(window.Start), model.DateKey(window.End))))

	result, err := eng.Classify(ctx, window, cat)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if result.AnalyzedDates < engine.MinAnalysisDays {
		slog.Warn(cli.FormatWarning(fmt.Sprintf(
			"Only %d recorded days in the window; %d are needed for analysis",
			result.AnalyzedDates, engine.MinAnalysisDays)))
		return nil
	}

	renderClassification(result)

	if debug {
		renderDebug(result.Debug)
	}

	plans := eng.PlanPromotions(result, cat)
	renderPlans(plans)

	return nil
}

func renderClassification(result *model.ClassificationResult) {
	header := fmt.Sprintf("Days analyzed: %d\nPopularity threshold: %.1f units\nProfitability threshold: $%.2f CM",
		result.AnalyzedDates, result.PopularityThreshold, result.ProfitabilityThreshold)
	slog.Info(cli.RenderBox(fmt.Sprintf("%s Menu Engineering", cli.ChartIcon), header))

	renderQuadrant(cli.StarIcon+" Stars", "popular and profitable", result.Stars)
	renderQuadrant(cli.CowIcon+" Cash Cows", "popular, thin margin", result.CashCows)
	renderQuadrant(cli.PuzzleIcon+" Puzzles", "profitable, overlooked", result.Puzzles)
	renderQuadrant(cli.DogIcon+" Dogs", "neither popular nor profitable", result.Dogs)

	if len(result.NoCostItems) > 0 {
		names := make([]string, 0, len(result.NoCostItems))
		for _, it := range result.NoCostItems {
			names = append(names, it.Name)
		}
		slog.Warn(cli.FormatWarning("Missing unit cost (excluded from the matrix): " + strings.Join(names, ", ")))
	}
}

func renderQuadrant(title, subtitle string, items []model.EngineeredItem) {
	if len(items) == 0 {
		slog.Info(cli.SubtleStyle.Render(title + ": none"))
		return
	}

	var b strings.Builder
	b.WriteString(cli.SubtitleStyle.Render(subtitle) + "\n")
	for _, it := range items {
		cm := "CM n/a"
		if it.ContributionMargin != nil {
			cm = fmt.Sprintf("CM $%.2f", *it.ContributionMargin)
		}
		fmt.Fprintf(&b, "%s  sold %d, revenue $%.2f, %s\n", it.Name, it.Quantity, it.Revenue, cm)
	}
	slog.Info(cli.RenderBox(title, strings.TrimRight(b.String(), "\n")))
}

func renderDebug(d model.DebugStats) {
	slog.Info("Aggregation audit",
		"dates_listed", d.DatesListed,
		"records_loaded", d.RecordsLoaded,
		"categories_seen", d.CategoriesSeen,
		"item_entries", d.ItemEntries,
		"positive_quantity", d.PositiveQuantityItems,
		"aggregated_items", d.AggregatedItems,
		"dropped_items", d.DroppedItems)
}

func renderPlans(plans []model.PromotionPlan) {
	if len(plans) == 0 {
		slog.Info(cli.FormatInfo("No boost plans could be generated for this window"))
		return
	}

	for i, p := range plans {
		var b strings.Builder
		fmt.Fprintf(&b, "Target: %s", p.TargetItemName)
		if p.CompanionName != "" {
			fmt.Fprintf(&b, " + %s", p.CompanionName)
		}
		b.WriteString("\n")
		if p.SetName != "" {
			fmt.Fprintf(&b, "Set: %s (%s)\n", p.SetName, p.Composition)
		}
		fmt.Fprintf(&b, "Offer: %s\n", p.Discount)
		fmt.Fprintf(&b, "Daily goal: +%d (%s)\n", p.DailyTargetQty, p.TargetReason)
		fmt.Fprintf(&b, "Why: %s\n", p.Rationale)
		fmt.Fprintf(&b, "Staff note: %s", p.StaffNote)
		slog.Info(cli.RenderBox(fmt.Sprintf("Boost %d: %s", i+1, p.Kind), b.String()))
	}
}
