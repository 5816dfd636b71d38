// Package report builds the coaching prompt sent to the LLM. The prompt
// contract is fixed here; the quality of the generated text is the model's
// concern.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/salescoach/salescoach/internal/entry"
	"github.com/salescoach/salescoach/internal/model"
)

// topN is how many items per quadrant make it into the prompt.
const topN = 3

// Input collects everything the prompt needs for one day.
type Input struct {
	Date           time.Time
	Record         *model.DailyRecord
	Reconciliation entry.Result
	Classification *model.ClassificationResult // nil when the window was too short
	Plans          []model.PromotionPlan
	MTDSales       float64
}

// BuildPrompt renders the coaching prompt. Currency is formatted to two
// decimals and percentages to one, matching how the report consumer reads
// the numbers back.
func BuildPrompt(in Input) string {
	var b strings.Builder

	rec := in.Record
	rc := in.Reconciliation

	b.WriteString("You are a sales coach for a single Korean-Chinese restaurant (currency USD).\n")
	b.WriteString("Write a short, actionable daily coaching report from the data below.\n\n")

	b.WriteString("[Daily summary]\n")
	fmt.Fprintf(&b, "- Date: %s\n", model.DateKey(in.Date))
	fmt.Fprintf(&b, "- Menu sales total: %s\n", usd(rc.CalcSales))
	fmt.Fprintf(&b, "- POS entry: %s (gap %s, %.1f%%, status %s)\n", usd(rec.POSSales), usd(rc.GapUSD), rc.GapRate, rc.Status)
	fmt.Fprintf(&b, "- Orders: %d, visitors: %d, AOV %s, conversion %.1f%%\n", rec.Orders, rec.VisitCount, usd(rc.AOV), rc.ConversionRate)
	fmt.Fprintf(&b, "- Add-ons per order: %.1f\n", rc.AddonPerOrder)
	if rec.MonthlyTarget > 0 {
		remaining := rec.MonthlyTarget - in.MTDSales
		fmt.Fprintf(&b, "- Monthly target: %s, month-to-date: %s, remaining: %s\n", usd(rec.MonthlyTarget), usd(in.MTDSales), usd(remaining))
	}
	if rec.Note != "" {
		fmt.Fprintf(&b, "- Note: %s\n", rec.Note)
	}

	if in.Classification != nil {
		writeClassification(&b, in.Classification)
	}

	if len(in.Plans) > 0 {
		b.WriteString("\n[Boost plans already queued]\n")
		for _, p := range in.Plans {
			fmt.Fprintf(&b, "- %s: %s (%s)\n", p.Kind, p.TargetItemName, p.Discount)
		}
	}

	b.WriteString("\n[Rules]\n")
	b.WriteString("- Always state currency as USD.\n")
	b.WriteString("- Round numbers; keep every section to 2-3 lines.\n")
	b.WriteString("- No greetings or filler; lead with a number, follow with an action.\n")

	b.WriteString("\n[Output format]\n")
	b.WriteString("1) Today in brief (sales, AOV, conversion)\n")
	b.WriteString("2) Key points (one win, one miss, each with a number)\n")
	b.WriteString("3) Monthly target pace (one-line diagnosis)\n")
	b.WriteString("4) Tomorrow's action plan (named items with target quantities)\n")
	b.WriteString("5) Floor checklist (3 concrete lines)\n")

	return b.String()
}

// writeClassification appends the menu engineering summary. Each quadrant
// keeps its own presentation order.
func writeClassification(b *strings.Builder, cr *model.ClassificationResult) {
	b.WriteString("\n[Menu engineering, trailing window]\n")
	fmt.Fprintf(b, "- Popularity threshold: %.1f units\n", cr.PopularityThreshold)
	fmt.Fprintf(b, "- Profitability threshold: %s contribution margin\n", usd(cr.ProfitabilityThreshold))

	writeQuadrant(b, "Stars (popular, profitable)", topByRevenueDesc(cr.Stars))
	writeQuadrant(b, "Cash Cows (popular, low margin)", topByQuantityDesc(cr.CashCows))
	writeQuadrant(b, "Puzzles (unpopular, profitable)", topByMarginDesc(cr.Puzzles))
	writeQuadrant(b, "Dogs (unpopular, low margin)", topByRevenueAsc(cr.Dogs))

	if len(cr.NoCostItems) > 0 {
		names := make([]string, 0, len(cr.NoCostItems))
		for _, it := range cr.NoCostItems {
			names = append(names, it.Name)
		}
		fmt.Fprintf(b, "- Missing unit cost: %s\n", strings.Join(names, ", "))
	}
}

func writeQuadrant(b *strings.Builder, label string, items []model.EngineeredItem) {
	if len(items) == 0 {
		fmt.Fprintf(b, "- %s: none\n", label)
		return
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, formatItem(it))
	}
	fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(parts, ", "))
}

func formatItem(it model.EngineeredItem) string {
	cm := "N/A"
	if it.ContributionMargin != nil {
		cm = usd(*it.ContributionMargin)
	}
	return fmt.Sprintf("%s (sold %d, revenue %s, CM %s)", it.Name, it.Quantity, usd(it.Revenue), cm)
}

func topByRevenueDesc(items []model.EngineeredItem) []model.EngineeredItem {
	return top(items, func(a, b model.EngineeredItem) bool {
		return a.Revenue > b.Revenue
	})
}

func topByQuantityDesc(items []model.EngineeredItem) []model.EngineeredItem {
	return top(items, func(a, b model.EngineeredItem) bool {
		return a.Quantity > b.Quantity
	})
}

// topByMarginDesc orders by contribution margin, breaking ties on revenue.
func topByMarginDesc(items []model.EngineeredItem) []model.EngineeredItem {
	return top(items, func(a, b model.EngineeredItem) bool {
		am, bm := margin(a), margin(b)
		if am != bm {
			return am > bm
		}
		return a.Revenue > b.Revenue
	})
}

func topByRevenueAsc(items []model.EngineeredItem) []model.EngineeredItem {
	return top(items, func(a, b model.EngineeredItem) bool {
		return a.Revenue < b.Revenue
	})
}

func top(items []model.EngineeredItem, less func(a, b model.EngineeredItem) bool) []model.EngineeredItem {
	sorted := make([]model.EngineeredItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	if len(sorted) > topN {
		sorted = sorted[:topN]
	}
	return sorted
}

func margin(it model.EngineeredItem) float64 {
	if it.ContributionMargin == nil {
		return 0
	}
	return *it.ContributionMargin
}

func usd(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
