package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/salescoach/salescoach/internal/catalog"
	"github.com/salescoach/salescoach/internal/cli"
	"github.com/salescoach/salescoach/internal/common"
	"github.com/salescoach/salescoach/internal/entry"
	"github.com/salescoach/salescoach/internal/model"
	"github.com/salescoach/salescoach/internal/resolve"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func entryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Record and inspect daily sales entries",
		Long: `Manage the daily sales tally: the POS register total, traffic counters
and per-item quantities. Saved entries feed the analysis window.`,
	}

	cmd.AddCommand(entrySaveCmd())
	cmd.AddCommand(entryShowCmd())
	cmd.AddCommand(entryDeleteCmd())
	cmd.AddCommand(entryImportCmd())

	return cmd
}

func entrySaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save one day's sales entry",
		Long: `Save (or overwrite) the entry for a date. Item quantities are given as
repeated --item id=qty flags using catalog item identifiers.`,
		RunE: runEntrySave,
	}

	cmd.Flags().StringP("date", "d", "", "Entry date (YYYY-MM-DD, default: today)")
	cmd.Flags().Float64P("pos", "p", 0, "POS register total for the day")
	cmd.Flags().IntP("orders", "o", 0, "Number of orders")
	cmd.Flags().IntP("visits", "v", 0, "Number of visitors")
	cmd.Flags().Float64P("target", "t", 0, "Monthly sales target")
	cmd.Flags().StringP("note", "n", "", "Free-form note for the day")
	cmd.Flags().StringArrayP("item", "i", nil, "Item quantity as id=qty (repeatable)")

	return cmd
}

func runEntrySave(cmd *cobra.Command, _ []string) error {
	dateFlag, _ := cmd.Flags().GetString("date")
	pos, _ := cmd.Flags().GetFloat64("pos")
	orders, _ := cmd.Flags().GetInt("orders")
	visits, _ := cmd.Flags().GetInt("visits")
	target, _ := cmd.Flags().GetFloat64("target")
	note, _ := cmd.Flags().GetString("note")
	itemFlags, _ := cmd.Flags().GetStringArray("item")

	date, err := parseDate(dateFlag)
	if err != nil {
		return err
	}

	cat, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	quantities, err := parseItemFlags(itemFlags, cat)
	if err != nil {
		return err
	}

	record := &model.DailyRecord{
		Date:          date,
		Quantities:    quantities,
		Note:          note,
		POSSales:      pos,
		MonthlyTarget: target,
		Orders:        orders,
		VisitCount:    visits,
	}

	rc := entry.Reconcile(record, cat)
	record.TotalSales = rc.CalcSales

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveDailyRecord(ctx, record); err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Saved entry for %s", model.DateKey(date))))
	slog.Info(cli.RenderBox("Reconciliation", formatReconciliation(record, rc)))

	return nil
}

// parseItemFlags converts repeated id=qty flags into a quantity map,
// validating identifiers against the catalog.
func parseItemFlags(flags []string, cat *catalog.Catalog) (map[string]int, error) {
	quantities := make(map[string]int, len(flags))
	for _, f := range flags {
		id, qtyStr, found := strings.Cut(f, "=")
		if !found {
			return nil, fmt.Errorf("invalid --item %q (expected id=qty)", f)
		}
		if _, ok := cat.Item(id); !ok {
			return nil, fmt.Errorf("%w: %q", common.ErrUnknownItem, id)
		}
		qty, err := strconv.Atoi(qtyStr)
		if err != nil || qty < 0 {
			return nil, fmt.Errorf("invalid quantity in --item %q", f)
		}
		quantities[id] = qty
	}
	return quantities, nil
}

func entryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one day's entry and its reconciliation",
		RunE:  runEntryShow,
	}

	cmd.Flags().StringP("date", "d", "", "Entry date (YYYY-MM-DD, default: today)")

	return cmd
}

func runEntryShow(cmd *cobra.Command, _ []string) error {
	dateFlag, _ := cmd.Flags().GetString("date")

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

	var b strings.Builder
	for _, item := range cat.Items() {
		qty := record.Quantity(item.ID)
		if qty == 0 {
			continue
		}
		fmt.Fprintf(&b, "%-6s %s x%d = $%.2f\n", item.ID, item.Name, qty, item.Price*float64(qty))
	}
	if record.Note != "" {
		fmt.Fprintf(&b, "\nNote: %s\n", record.Note)
	}
	b.WriteString("\n")
	b.WriteString(formatReconciliation(record, rc))

	slog.Info(cli.RenderBox(fmt.Sprintf("%s Entry %s", cli.ChartIcon, model.DateKey(date)), b.String()))

	return nil
}

func formatReconciliation(record *model.DailyRecord, rc entry.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Menu total: $%.2f | POS: $%.2f\n", rc.CalcSales, record.POSSales)
	fmt.Fprintf(&b, "Gap: $%.2f (%.2f%%) %s\n", rc.GapUSD, rc.GapRate, statusLabel(rc.Status))
	fmt.Fprintf(&b, "Orders: %d, visitors: %d\n", record.Orders, record.VisitCount)
	fmt.Fprintf(&b, "AOV: $%.2f | conversion: %.1f%% | add-ons/order: %.1f", rc.AOV, rc.ConversionRate, rc.AddonPerOrder)
	return b.String()
}

func statusLabel(s entry.Status) string {
	switch s {
	case entry.StatusAlert:
		return cli.StyleError(string(s))
	case entry.StatusWarn:
		return cli.StyleWarning(string(s))
	default:
		return cli.StyleSuccess(string(s))
	}
}

func entryDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete one day's entry",
		RunE:  runEntryDelete,
	}

	cmd.Flags().StringP("date", "d", "", "Entry date (YYYY-MM-DD, default: today)")

	return cmd
}

func runEntryDelete(cmd *cobra.Command, _ []string) error {
	dateFlag, _ := cmd.Flags().GetString("date")

	date, err := parseDate(dateFlag)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.DeleteDailyRecord(ctx, date); err != nil {
		return fmt.Errorf("failed to delete entry for %s: %w", model.DateKey(date), err)
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Deleted entry for %s", model.DateKey(date))))

	return nil
}

// extractedItem is one line item from an external extractor's JSON output.
type extractedItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
}

func entryImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import an extracted receipt tally",
		Long: `Import item quantities from an extractor's JSON file. Names are matched
against the catalog; confident matches are accepted automatically, the rest
are listed for manual review and skipped.`,
		RunE: runEntryImport,
	}

	cmd.Flags().StringP("date", "d", "", "Entry date (YYYY-MM-DD, default: today)")
	cmd.Flags().StringP("json", "j", "", "Path to the extracted items JSON file")
	cmd.Flags().Float64P("pos", "p", 0, "POS register total for the day")
	cmd.Flags().IntP("orders", "o", 0, "Number of orders")
	cmd.Flags().IntP("visits", "v", 0, "Number of visitors")
	_ = cmd.MarkFlagRequired("json")

	return cmd
}

func runEntryImport(cmd *cobra.Command, _ []string) error {
	dateFlag, _ := cmd.Flags().GetString("date")
	jsonPath, _ := cmd.Flags().GetString("json")
	pos, _ := cmd.Flags().GetFloat64("pos")
	orders, _ := cmd.Flags().GetInt("orders")
	visits, _ := cmd.Flags().GetInt("visits")

	date, err := parseDate(dateFlag)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(jsonPath) //nolint:gosec // user-supplied path by design of the command
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", jsonPath, err)
	}

	var extracted []extractedItem
	if err := json.Unmarshal(data, &extracted); err != nil {
		return fmt.Errorf("failed to parse %s: %w", jsonPath, err)
	}

	cat, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	resolver := resolve.NewResolver(cat, viper.GetStringMapString("resolver.mappings"))

	quantities := make(map[string]int)
	var review []string
	for _, ex := range extracted {
		res := resolver.Resolve(ex.Name, ex.Price)
		if res.NeedsReview || res.ItemID == "" {
			review = append(review, fmt.Sprintf("%s (best guess: %s, confidence %.2f)", ex.Name, res.CorrectedName, res.Confidence))
			continue
		}
		if res.CorrectedName != ex.Name {
			slog.Info("Corrected item name",
				"extracted", ex.Name,
				"matched", res.CorrectedName,
				"confidence", res.Confidence)
		}
		quantities[res.ItemID] += ex.Qty
	}

	record := &model.DailyRecord{
		Date:       date,
		Quantities: quantities,
		POSSales:   pos,
		Orders:     orders,
		VisitCount: visits,
	}

	rc := entry.Reconcile(record, cat)
	record.TotalSales = rc.CalcSales

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveDailyRecord(ctx, record); err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Imported %d items for %s", len(quantities), model.DateKey(date))))
	if len(review) > 0 {
		slog.Warn(cli.FormatWarning(fmt.Sprintf("%d items need manual review and were skipped:", len(review))))
		for _, line := range review {
			slog.Warn("  " + line)
		}
		slog.Info("Add resolver.mappings entries to the config file to accept these names")
	}
	slog.Info(cli.RenderBox("Reconciliation", formatReconciliation(record, rc)))

	return nil
}
