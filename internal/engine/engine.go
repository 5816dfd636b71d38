// Package engine implements the menu-engineering analysis pipeline:
// aggregation of sales history over a window, per-item metrics, quadrant
// classification, and promotion planning derived from the classification.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/salescoach/salescoach/internal/catalog"
	"github.com/salescoach/salescoach/internal/common"
	"github.com/salescoach/salescoach/internal/model"
	"github.com/salescoach/salescoach/internal/service"
)

// MinAnalysisDays is the fewest distinct recorded dates a window must
// contain before classification runs. Below this the result carries the
// true date count and empty quadrants so callers can report insufficient
// data. Fixed policy, not configurable per call.
const MinAnalysisDays = 7

// Engine runs the analysis pipeline against an injected history reader.
// Each invocation builds fresh intermediate state; an Engine is safe for
// concurrent use as long as the rand source is not shared.
type Engine struct {
	history HistoryReader
	rng     *rand.Rand
}

// New creates an engine with a time-seeded random source for the planner's
// target-quantity bump and drink selection.
func New(history HistoryReader) *Engine {
	return NewWithRand(history, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand creates an engine with an explicit random source. Tests pass a
// fixed seed to make planning deterministic.
func NewWithRand(history HistoryReader, rng *rand.Rand) *Engine {
	return &Engine{history: history, rng: rng}
}

// Classify aggregates history over the window, computes per-item metrics and
// assigns each costed item to a quadrant of the popularity x profitability
// matrix. Items on the catalog's exclusion list never enter the aggregate;
// items without a configured unit cost are routed to the no-cost collection
// and take no part in threshold computation.
func (e *Engine) Classify(ctx context.Context, window service.DateRange, cat *catalog.Catalog) (*model.ClassificationResult, error) {
	if window.End.Before(window.Start) {
		return nil, fmt.Errorf("%w: %s after %s", common.ErrInvalidDateRange,
			model.DateKey(window.Start), model.DateKey(window.End))
	}

	dates, err := e.history.ListDates(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list dates: %w", err)
	}

	debug := model.DebugStats{DatesListed: len(dates)}

	if len(dates) < MinAnalysisDays {
		slog.Info("Window has too few recorded dates for analysis",
			"dates", len(dates),
			"required", MinAnalysisDays)
		return &model.ClassificationResult{
			AnalyzedDates: len(dates),
			Debug:         debug,
		}, nil
	}

	aggregated, err := e.aggregate(ctx, dates, cat, &debug)
	if err != nil {
		return nil, err
	}
	debug.AggregatedItems = len(aggregated)

	return classify(aggregated, cat, len(dates), debug), nil
}

// aggregate sums per-item quantities across all recorded dates in the
// window. A missing record contributes nothing; zero-quantity entries are
// skipped; excluded items never appear in the aggregate.
func (e *Engine) aggregate(ctx context.Context, dates []time.Time, cat *catalog.Catalog, debug *model.DebugStats) (map[string]int, error) {
	aggregated := make(map[string]int)

	for _, date := range dates {
		record, err := e.history.GetDailyRecord(ctx, date)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load record for %s: %w", model.DateKey(date), err)
		}
		if record == nil {
			continue
		}
		debug.RecordsLoaded++

		seen := make(map[string]struct{})
		for itemID, qty := range record.Quantities {
			debug.ItemEntries++
			if name, ok := cat.CategoryOf(itemID); ok {
				if _, dup := seen[name]; !dup {
					seen[name] = struct{}{}
					debug.CategoriesSeen++
				}
			}
			if cat.IsExcluded(itemID) {
				continue
			}
			if qty <= 0 {
				continue
			}
			debug.PositiveQuantityItems++
			aggregated[itemID] += qty
		}
	}

	return aggregated, nil
}

// classify turns aggregated quantities into a full classification result.
// Iteration follows catalog order so identical inputs produce identical
// results.
func classify(aggregated map[string]int, cat *catalog.Catalog, analyzedDates int, debug model.DebugStats) *model.ClassificationResult {
	items := make([]model.EngineeredItem, 0, len(aggregated))
	matched := 0
	for _, item := range cat.Items() {
		qty, ok := aggregated[item.ID]
		if !ok || qty == 0 {
			continue
		}
		matched++
		items = append(items, computeMetrics(item, qty))
	}
	// Aggregated identifiers with no catalog entry are dropped; surfaced in
	// the audit counters rather than silently.
	debug.DroppedItems = len(aggregated) - matched

	result := &model.ClassificationResult{
		AnalyzedDates: analyzedDates,
		Debug:         debug,
	}
	if len(items) == 0 {
		return result
	}
	result.Items = items

	costed := make([]model.EngineeredItem, 0, len(items))
	for _, it := range items {
		if it.HasCost() {
			costed = append(costed, it)
		} else {
			result.NoCostItems = append(result.NoCostItems, it)
		}
	}
	if len(costed) == 0 {
		return result
	}

	var totalQty int
	var totalCM float64
	for _, it := range costed {
		totalQty += it.Quantity
		totalCM += *it.ContributionMargin
	}
	avgQty := float64(totalQty) / float64(len(costed))
	avgCM := totalCM / float64(len(costed))
	result.PopularityThreshold = avgQty
	result.ProfitabilityThreshold = avgCM

	for i := range costed {
		it := &costed[i]
		// Ties go high on both axes.
		if float64(it.Quantity) >= avgQty {
			it.Popularity = model.FlagHigh
		} else {
			it.Popularity = model.FlagLow
		}
		if *it.ContributionMargin >= avgCM {
			it.Profitability = model.FlagHigh
		} else {
			it.Profitability = model.FlagLow
		}

		switch {
		case it.Popularity == model.FlagHigh && it.Profitability == model.FlagHigh:
			it.Quadrant = model.QuadrantStars
			result.Stars = append(result.Stars, *it)
		case it.Popularity == model.FlagHigh:
			it.Quadrant = model.QuadrantCashCows
			result.CashCows = append(result.CashCows, *it)
		case it.Profitability == model.FlagHigh:
			it.Quadrant = model.QuadrantPuzzles
			result.Puzzles = append(result.Puzzles, *it)
		default:
			it.Quadrant = model.QuadrantDogs
			result.Dogs = append(result.Dogs, *it)
		}
	}

	// Reflect flags back onto the combined item list.
	flagged := make([]model.EngineeredItem, 0, len(items))
	byID := make(map[string]model.EngineeredItem, len(costed))
	for _, it := range costed {
		byID[it.ID] = it
	}
	for _, it := range items {
		if c, ok := byID[it.ID]; ok {
			flagged = append(flagged, c)
		} else {
			flagged = append(flagged, it)
		}
	}
	result.Items = flagged

	return result
}

// computeMetrics derives window metrics for one aggregated item. Cost-based
// fields stay nil when the unit cost is unknown; no fabricated costs.
func computeMetrics(item model.Item, qty int) model.EngineeredItem {
	ei := model.EngineeredItem{
		Item:     item,
		Quantity: qty,
		Revenue:  item.Price * float64(qty),
	}
	if cm, ok := item.UnitMargin(); ok {
		cogs := *item.UnitCost * float64(qty)
		gp := ei.Revenue - cogs
		ei.COGS = &cogs
		ei.ContributionMargin = &cm
		ei.GrossProfit = &gp
	}
	return ei
}
