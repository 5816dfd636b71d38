package main

import (
	"fmt"
	"log/slog"

	"github.com/salescoach/salescoach/internal/cli"
	"github.com/salescoach/salescoach/internal/engine"
	"github.com/salescoach/salescoach/internal/entry"
	"github.com/salescoach/salescoach/internal/llm"
	"github.com/salescoach/salescoach/internal/model"
	"github.com/salescoach/salescoach/internal/report"
	"github.com/salescoach/salescoach/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the daily coaching report",
		Long: `Build the coaching prompt from the day's entry, its reconciliation and
the trailing menu analysis, then send it to the configured LLM provider.
Use --dry-run to inspect the prompt without calling the provider.`,
		RunE: runReport,
	}

	// Flags
	cmd.Flags().StringP("date", "d", "", "Report date (YYYY-MM-DD, default: today)")
	cmd.Flags().Int("days", 7, "Trailing analysis window length")
	cmd.Flags().Bool("dry-run", false, "Print the prompt instead of calling the LLM")

	// Bind to viper
	_ = viper.BindPFlag("report.days", cmd.Flags().Lookup("days"))

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	dateFlag, _ := cmd.Flags().GetString("date")
	days := viper.GetInt("report.days")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	date, err := parseDate(dateFlag)
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

	record, err := store.GetDailyRecord(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to load entry for %s: %w", model.DateKey(date), err)
	}

	rc := entry.Reconcile(record, cat)

	if days <= 0 {
		days = 7
	}
	window := service.DateRange{Start: date.AddDate(0, 0, -(days - 1)), End: date}

	eng := engine.New(store)
	classification, err := eng.Classify(ctx, window, cat)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	input := report.Input{
		Date:           date,
		Record:         record,
		Reconciliation: rc,
	}

	if classification.AnalyzedDates >= engine.MinAnalysisDays {
		input.Classification = classification
		input.Plans = eng.PlanPromotions(classification, cat)
	} else {
		slog.Info("Not enough recorded days for menu analysis, reporting without it",
			"dates", classification.AnalyzedDates,
			"required", engine.MinAnalysisDays)
	}

	// Month-to-date sales up to and including the report date.
	mtd, err := store.GetMonthlyTotal(ctx, date.Year(), date.Month())
	if err != nil {
		return fmt.Errorf("failed to compute month-to-date total: %w", err)
	}
	input.MTDSales = mtd

	prompt := report.BuildPrompt(input)

	if dryRun {
		fmt.Println(prompt)
		return nil
	}

	client, err := llm.NewClient(llm.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      viper.GetString("llm.api_key"),
		Model:       viper.GetString("llm.model"),
		BaseURL:     viper.GetString("llm.base_url"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
	})
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	slog.Info(cli.FormatTitle("Generating coaching report..."))

	text, err := client.GenerateReport(ctx, prompt)
	if err != nil {
		return fmt.Errorf("report generation failed: %w", err)
	}

	fmt.Println(cli.RenderBox(fmt.Sprintf("%s Coaching Report %s", cli.CoachIcon, model.DateKey(date)), text))

	return nil
}
