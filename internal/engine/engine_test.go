package engine

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/salescoach/salescoach/internal/catalog"
	"github.com/salescoach/salescoach/internal/model"
	"github.com/salescoach/salescoach/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHistory serves canned records keyed by date.
type fakeHistory struct {
	records map[string]*model.DailyRecord
	order   []time.Time
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{records: make(map[string]*model.DailyRecord)}
}

func (f *fakeHistory) add(record *model.DailyRecord) {
	f.records[model.DateKey(record.Date)] = record
	f.order = append(f.order, record.Date)
}

func (f *fakeHistory) ListDates(_ context.Context, rng service.DateRange) ([]time.Time, error) {
	var dates []time.Time
	for _, d := range f.order {
		if !d.Before(rng.Start) && !d.After(rng.End) {
			dates = append(dates, d)
		}
	}
	return dates, nil
}

func (f *fakeHistory) GetDailyRecord(_ context.Context, date time.Time) (*model.DailyRecord, error) {
	return f.records[model.DateKey(date)], nil
}

func day(n int) time.Time {
	return time.Date(2025, 8, n, 0, 0, 0, 0, time.UTC)
}

func window(first, last int) service.DateRange {
	return service.DateRange{Start: day(first), End: day(last)}
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]model.Category{
		{Name: "Mains", Items: []model.Item{
			{ID: "a", Name: "Item A", Price: 10, UnitCost: model.Cost(4)},
			{ID: "b", Name: "Item B", Price: 10, UnitCost: model.Cost(8)},
			{ID: "c", Name: "Item C", Price: 12},
		}},
		{Name: "Drinks", Items: []model.Item{
			{ID: "beer", Name: "Beer", Price: 3, UnitCost: model.Cost(1)},
			{ID: "cola", Name: "Cola", Price: 1.5, UnitCost: model.Cost(0.3)},
		}},
	}, catalog.Rules{
		ExcludedNames: []string{"Beer", "Cola"},
		SoftDrinks:    []string{"Cola"},
	})
	require.NoError(t, err)
	return cat
}

// seedHistory records the standard scenario: A sells 5 a day and B sells 1 a
// day over ten days, with some excluded drink sales mixed in.
func seedHistory(h *fakeHistory, days int) {
	for i := 1; i <= days; i++ {
		h.add(&model.DailyRecord{
			Date: day(i),
			Quantities: map[string]int{
				"a":    5,
				"b":    1,
				"beer": 3,
			},
		})
	}
}

func TestClassifyScenario(t *testing.T) {
	cat := testCatalog(t)
	history := newFakeHistory()
	seedHistory(history, 10)

	eng := New(history)
	result, err := eng.Classify(context.Background(), window(1, 10), cat)
	require.NoError(t, err)

	assert.Equal(t, 10, result.AnalyzedDates)
	assert.InDelta(t, 30.0, result.PopularityThreshold, 1e-9)
	assert.InDelta(t, 4.0, result.ProfitabilityThreshold, 1e-9)

	require.Len(t, result.Stars, 1)
	assert.Equal(t, "a", result.Stars[0].ID)
	assert.Equal(t, 50, result.Stars[0].Quantity)
	assert.InDelta(t, 500.0, result.Stars[0].Revenue, 1e-9)

	require.Len(t, result.Dogs, 1)
	assert.Equal(t, "b", result.Dogs[0].ID)

	assert.Empty(t, result.CashCows)
	assert.Empty(t, result.Puzzles)
}

func TestClassifyInsufficientData(t *testing.T) {
	cat := testCatalog(t)
	history := newFakeHistory()
	seedHistory(history, 5)

	eng := New(history)
	result, err := eng.Classify(context.Background(), window(1, 31), cat)
	require.NoError(t, err)

	assert.Equal(t, 5, result.AnalyzedDates)
	assert.Empty(t, result.Stars)
	assert.Empty(t, result.CashCows)
	assert.Empty(t, result.Puzzles)
	assert.Empty(t, result.Dogs)
	assert.Zero(t, result.PopularityThreshold)
	assert.Zero(t, result.ProfitabilityThreshold)
}

func TestClassifyExclusionInvariant(t *testing.T) {
	cat := testCatalog(t)
	history := newFakeHistory()
	for i := 1; i <= 8; i++ {
		history.add(&model.DailyRecord{
			Date:       day(i),
			Quantities: map[string]int{"beer": 50, "cola": 20, "a": 2},
		})
	}

	eng := New(history)
	result, err := eng.Classify(context.Background(), window(1, 8), cat)
	require.NoError(t, err)

	for _, it := range result.Items {
		assert.NotEqual(t, "beer", it.ID)
		assert.NotEqual(t, "cola", it.ID)
	}
	require.Len(t, result.Items, 1)
	assert.Equal(t, "a", result.Items[0].ID)
}

func TestClassifyQuadrantDisjointness(t *testing.T) {
	cat := testCatalog(t)
	history := newFakeHistory()
	for i := 1; i <= 9; i++ {
		history.add(&model.DailyRecord{
			Date:       day(i),
			Quantities: map[string]int{"a": 4, "b": 2, "c": 7},
		})
	}

	eng := New(history)
	result, err := eng.Classify(context.Background(), window(1, 9), cat)
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, q := range [][]model.EngineeredItem{result.Stars, result.CashCows, result.Puzzles, result.Dogs} {
		for _, it := range q {
			seen[it.ID]++
		}
	}
	// Each costed item lands in exactly one quadrant.
	assert.Equal(t, map[string]int{"a": 1, "b": 1}, seen)

	// The uncosted item shows up only in the no-cost collection.
	require.Len(t, result.NoCostItems, 1)
	assert.Equal(t, "c", result.NoCostItems[0].ID)
	assert.False(t, result.NoCostItems[0].HasCost())
}

func TestClassifyTiesGoHigh(t *testing.T) {
	// Both items sell identical quantities with identical margins, so every
	// metric sits exactly on its threshold.
	cat, err := catalog.New([]model.Category{
		{Name: "Mains", Items: []model.Item{
			{ID: "x", Name: "Item X", Price: 10, UnitCost: model.Cost(5)},
			{ID: "y", Name: "Item Y", Price: 10, UnitCost: model.Cost(5)},
		}},
	}, catalog.Rules{})
	require.NoError(t, err)

	history := newFakeHistory()
	for i := 1; i <= 7; i++ {
		history.add(&model.DailyRecord{
			Date:       day(i),
			Quantities: map[string]int{"x": 3, "y": 3},
		})
	}

	eng := New(history)
	result, classifyErr := eng.Classify(context.Background(), window(1, 7), cat)
	require.NoError(t, classifyErr)

	assert.Len(t, result.Stars, 2)
	assert.Empty(t, result.Dogs)
	for _, it := range result.Stars {
		assert.Equal(t, model.FlagHigh, it.Popularity)
		assert.Equal(t, model.FlagHigh, it.Profitability)
	}
}

func TestClassifyAggregationCommutativity(t *testing.T) {
	cat := testCatalog(t)

	forward := newFakeHistory()
	backward := newFakeHistory()
	for i := 1; i <= 8; i++ {
		forward.add(&model.DailyRecord{Date: day(i), Quantities: map[string]int{"a": i, "b": 9 - i}})
	}
	for i := 8; i >= 1; i-- {
		backward.add(&model.DailyRecord{Date: day(i), Quantities: map[string]int{"a": i, "b": 9 - i}})
	}

	r1, err := New(forward).Classify(context.Background(), window(1, 8), cat)
	require.NoError(t, err)
	r2, err := New(backward).Classify(context.Background(), window(1, 8), cat)
	require.NoError(t, err)

	assert.Equal(t, r1.Items, r2.Items)
	assert.Equal(t, r1.PopularityThreshold, r2.PopularityThreshold)
	assert.Equal(t, r1.ProfitabilityThreshold, r2.ProfitabilityThreshold)
}

func TestClassifyIdempotence(t *testing.T) {
	cat := testCatalog(t)
	history := newFakeHistory()
	seedHistory(history, 10)

	run := func(seed int64) (*model.ClassificationResult, []model.PromotionPlan) {
		eng := NewWithRand(history, rand.New(rand.NewSource(seed)))
		result, err := eng.Classify(context.Background(), window(1, 10), cat)
		require.NoError(t, err)
		return result, eng.PlanPromotions(result, cat)
	}

	r1, p1 := run(42)
	r2, p2 := run(42)

	assert.Equal(t, r1, r2)
	assert.Equal(t, p1, p2)
}

func TestClassifyInvalidRange(t *testing.T) {
	cat := testCatalog(t)
	eng := New(newFakeHistory())

	_, err := eng.Classify(context.Background(), service.DateRange{Start: day(10), End: day(1)}, cat)
	assert.Error(t, err)
}

func TestClassifyDroppedItemsSurfaced(t *testing.T) {
	cat := testCatalog(t)
	history := newFakeHistory()
	for i := 1; i <= 7; i++ {
		history.add(&model.DailyRecord{
			Date:       day(i),
			Quantities: map[string]int{"a": 2, "ghost": 4},
		})
	}

	eng := New(history)
	result, err := eng.Classify(context.Background(), window(1, 7), cat)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Debug.DroppedItems)
	for _, it := range result.Items {
		assert.NotEqual(t, "ghost", it.ID)
	}
}
