package engine

import (
	"math/rand"
	"testing"

	"github.com/salescoach/salescoach/internal/catalog"
	"github.com/salescoach/salescoach/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededEngine() *Engine {
	return NewWithRand(newFakeHistory(), rand.New(rand.NewSource(1)))
}

func engineered(item model.Item, qty int) model.EngineeredItem {
	return computeMetrics(item, qty)
}

func plannerCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]model.Category{
		{Name: "Mains", Items: []model.Item{
			{ID: "star1", Name: "Top Star", Price: 12, UnitCost: model.Cost(4)},
			{ID: "star2", Name: "Second Star", Price: 10, UnitCost: model.Cost(4)},
			{ID: "cow1", Name: "Volume Dish", Price: 8, UnitCost: model.Cost(6)},
			{ID: "puz1", Name: "Hidden Gem", Price: 14, UnitCost: model.Cost(5)},
			{ID: "cheap", Name: "Small Side", Price: 4, UnitCost: model.Cost(1)},
		}},
		{Name: "Drinks", Items: []model.Item{
			{ID: "cola", Name: "Cola", Price: 1.5, UnitCost: model.Cost(0.3)},
			{ID: "cider", Name: "Cider", Price: 1.5, UnitCost: model.Cost(0.3)},
		}},
	}, catalog.Rules{
		SoftDrinks: []string{"Cola", "Cider"},
	})
	require.NoError(t, err)
	return cat
}

func plannerResult(cat *catalog.Catalog) *model.ClassificationResult {
	item := func(id string) model.Item {
		it, _ := cat.Item(id)
		return it
	}
	return &model.ClassificationResult{
		Stars: []model.EngineeredItem{
			engineered(item("star1"), 60),
			engineered(item("star2"), 40),
		},
		CashCows: []model.EngineeredItem{
			engineered(item("cow1"), 70),
		},
		Puzzles: []model.EngineeredItem{
			engineered(item("puz1"), 8),
		},
		AnalyzedDates: 10,
	}
}

func TestPlanPromotionsPriorities(t *testing.T) {
	cat := plannerCatalog(t)
	eng := seededEngine()

	plans := eng.PlanPromotions(plannerResult(cat), cat)
	require.Len(t, plans, 3)

	assert.Equal(t, model.PlanMenuBoard, plans[0].Kind)
	assert.Equal(t, "star1", plans[0].TargetItemID)
	assert.Equal(t, model.DiscountNone, plans[0].Discount.Kind)

	assert.Equal(t, model.PlanStaffUpsell, plans[1].Kind)
	assert.Equal(t, "star2", plans[1].TargetItemID)
	assert.Equal(t, model.DiscountFreeItem, plans[1].Discount.Kind)
	assert.NotEmpty(t, plans[1].Discount.FreeItem)

	assert.Equal(t, model.PlanSetDiscount, plans[2].Kind)
	assert.Equal(t, "puz1", plans[2].TargetItemID)
	assert.Equal(t, model.DiscountPercent, plans[2].Discount.Kind)
}

func TestPlanPromotionsNoItemReuse(t *testing.T) {
	cat := plannerCatalog(t)
	eng := seededEngine()

	plans := eng.PlanPromotions(plannerResult(cat), cat)

	targets := make(map[string]struct{})
	for _, p := range plans {
		_, dup := targets[p.TargetItemID]
		assert.False(t, dup, "item %s targeted twice", p.TargetItemID)
		targets[p.TargetItemID] = struct{}{}
		assert.NotEqual(t, p.TargetItemID, p.CompanionID)
	}
}

func TestPlanPromotionsMenuBoardFallsBackToCashCows(t *testing.T) {
	cat := plannerCatalog(t)
	result := plannerResult(cat)
	result.Stars = nil

	plans := seededEngine().PlanPromotions(result, cat)
	require.NotEmpty(t, plans)
	assert.Equal(t, model.PlanMenuBoard, plans[0].Kind)
	assert.Equal(t, "cow1", plans[0].TargetItemID)
}

func TestPlanPromotionsOmitsEmptySlots(t *testing.T) {
	cat := plannerCatalog(t)
	result := &model.ClassificationResult{
		Puzzles:       []model.EngineeredItem{plannerResult(cat).Puzzles[0]},
		AnalyzedDates: 10,
	}

	plans := seededEngine().PlanPromotions(result, cat)
	// No stars or cash cows: only the set-discount slot can fill.
	require.Len(t, plans, 1)
	assert.Equal(t, model.PlanSetDiscount, plans[0].Kind)
}

func TestPlanPromotionsUpsellOmittedWithoutSoftDrinks(t *testing.T) {
	cat, err := catalog.New([]model.Category{
		{Name: "Mains", Items: []model.Item{
			{ID: "star1", Name: "Top Star", Price: 12, UnitCost: model.Cost(4)},
			{ID: "star2", Name: "Second Star", Price: 10, UnitCost: model.Cost(4)},
		}},
	}, catalog.Rules{})
	require.NoError(t, err)

	result := &model.ClassificationResult{
		Stars: []model.EngineeredItem{
			engineered(mustItem(t, cat, "star1"), 60),
			engineered(mustItem(t, cat, "star2"), 40),
		},
		AnalyzedDates: 10,
	}

	plans := seededEngine().PlanPromotions(result, cat)
	for _, p := range plans {
		assert.NotEqual(t, model.PlanStaffUpsell, p.Kind)
	}
}

func TestPlanPromotionsUpsellCompanionNeverTarget(t *testing.T) {
	// Soft drinks kept off the exclusion list classify like any other item
	// and can become the upsell target themselves. The free drink must then
	// come from the remaining pool, never the target itself.
	cat, err := catalog.New([]model.Category{
		{Name: "Mains", Items: []model.Item{
			{ID: "noodles", Name: "Noodles", Price: 12, UnitCost: model.Cost(4)},
		}},
		{Name: "Drinks", Items: []model.Item{
			{ID: "cola", Name: "Cola", Price: 1.5, UnitCost: model.Cost(0.3)},
			{ID: "cider", Name: "Cider", Price: 1.5, UnitCost: model.Cost(0.3)},
		}},
	}, catalog.Rules{
		SoftDrinks: []string{"Cola", "Cider"},
	})
	require.NoError(t, err)

	result := &model.ClassificationResult{
		Stars: []model.EngineeredItem{
			engineered(mustItem(t, cat, "noodles"), 60),
			engineered(mustItem(t, cat, "cola"), 40),
		},
		AnalyzedDates: 10,
	}

	for seed := int64(1); seed <= 20; seed++ {
		eng := NewWithRand(newFakeHistory(), rand.New(rand.NewSource(seed)))
		for _, p := range eng.PlanPromotions(result, cat) {
			if p.Kind != model.PlanStaffUpsell {
				continue
			}
			// Menu board takes the noodles, leaving the cola as target.
			require.Equal(t, "cola", p.TargetItemID)
			assert.Equal(t, "cider", p.CompanionID, "seed %d", seed)
		}
	}
}

func TestPlanPromotionsUpsellOmittedWhenOnlyDrinkIsTarget(t *testing.T) {
	cat, err := catalog.New([]model.Category{
		{Name: "Mains", Items: []model.Item{
			{ID: "noodles", Name: "Noodles", Price: 12, UnitCost: model.Cost(4)},
		}},
		{Name: "Drinks", Items: []model.Item{
			{ID: "cola", Name: "Cola", Price: 1.5, UnitCost: model.Cost(0.3)},
		}},
	}, catalog.Rules{
		SoftDrinks: []string{"Cola"},
	})
	require.NoError(t, err)

	result := &model.ClassificationResult{
		Stars: []model.EngineeredItem{
			engineered(mustItem(t, cat, "noodles"), 60),
			engineered(mustItem(t, cat, "cola"), 40),
		},
		AnalyzedDates: 10,
	}

	plans := seededEngine().PlanPromotions(result, cat)
	require.NotEmpty(t, plans)
	for _, p := range plans {
		assert.NotEqual(t, model.PlanStaffUpsell, p.Kind,
			"upsell must be omitted when the only soft drink is its own target")
	}
}

func mustItem(t *testing.T, cat *catalog.Catalog, id string) model.Item {
	t.Helper()
	it, ok := cat.Item(id)
	require.True(t, ok)
	return it
}

func TestPlanPromotionsMarginFloor(t *testing.T) {
	cat := plannerCatalog(t)
	eng := seededEngine()

	plans := eng.PlanPromotions(plannerResult(cat), cat)
	for _, p := range plans {
		if p.Kind != model.PlanSetDiscount {
			continue
		}
		target := mustItem(t, cat, p.TargetItemID)
		companion := mustItem(t, cat, p.CompanionID)
		setPrice := target.Price + companion.Price
		setCost := *target.UnitCost + *companion.UnitCost
		discounted := setPrice - p.Discount.Amount
		require.Greater(t, discounted, 0.0)
		assert.GreaterOrEqual(t, (discounted-setCost)/discounted, 0.499999,
			"set discount breaks the margin floor")
	}
}

func TestPlanPromotionsNilInputs(t *testing.T) {
	cat := plannerCatalog(t)
	eng := seededEngine()

	assert.Nil(t, eng.PlanPromotions(nil, cat))
	assert.Nil(t, eng.PlanPromotions(plannerResult(cat), nil))
}

func TestSizeSetDiscount(t *testing.T) {
	tests := []struct {
		name        string
		setPrice    float64
		setCost     float64
		wantAmount  float64
		wantPercent int
		wantOK      bool
	}{
		{
			name:     "half-cost set allows a deep discount",
			setPrice: 20, setCost: 5,
			wantAmount: 10, wantPercent: 50, wantOK: true,
		},
		{
			name:     "thin headroom lands on the minimum discount",
			setPrice: 11.5, setCost: 5,
			wantAmount: 1.0, wantPercent: 10, wantOK: true,
		},
		{
			name:     "flat fallback kept when half the profit survives",
			setPrice: 10, setCost: 8,
			wantAmount: 1.0, wantPercent: 10, wantOK: true,
		},
		{
			name:     "flat fallback withdrawn when profit would collapse",
			setPrice: 10, setCost: 8.5,
			wantOK: false,
		},
		{
			name:     "zero set price",
			setPrice: 0, setCost: 1,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, percent, ok := sizeSetDiscount(tt.setPrice, tt.setCost)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.InDelta(t, tt.wantAmount, amount, 1e-9)
			assert.Equal(t, tt.wantPercent, percent)
			// The advertised percentage is always a multiple of 5, never
			// below ten percent.
			assert.Zero(t, percent%5)
			assert.GreaterOrEqual(t, percent, 10)
		})
	}
}

func TestCompanionRules(t *testing.T) {
	// Catalog without soft drinks so the generic companion path runs.
	cat, err := catalog.New([]model.Category{
		{Name: "Mains", Items: []model.Item{
			{ID: "fried", Name: "탕수육", Price: 14, UnitCost: model.Cost(5)},
			{ID: "plain", Name: "짜장면", Price: 7, UnitCost: model.Cost(2.5)},
		}},
		{Name: "토핑", Items: []model.Item{
			{ID: "top1", Name: "계란 토핑", Price: 1.5, UnitCost: model.Cost(0.4)},
		}},
		{Name: "Sides", Items: []model.Item{
			{ID: "side1", Name: "해물육교자", Price: 11, UnitCost: model.Cost(4)},
			{ID: "dear", Name: "Expensive Side", Price: 13, UnitCost: model.Cost(4)},
		}},
	}, catalog.Rules{
		FriedKeywords:    []string{"탕수육"},
		AlwaysCompatible: []string{"해물육교자"},
		AddonMarker:      "토핑",
	})
	require.NoError(t, err)

	eng := seededEngine()
	used := map[string]struct{}{}

	t.Run("fried main skips add-ons", func(t *testing.T) {
		companion, ok := eng.companionFor(mustItem(t, cat, "fried"), used, cat)
		require.True(t, ok)
		assert.NotEqual(t, "top1", companion.ID)
	})

	t.Run("plain main takes the cheapest companion", func(t *testing.T) {
		companion, ok := eng.companionFor(mustItem(t, cat, "plain"), used, cat)
		require.True(t, ok)
		assert.Equal(t, "top1", companion.ID)
	})

	t.Run("price cap passes designated sides only", func(t *testing.T) {
		taken := map[string]struct{}{"top1": {}, "plain": {}}
		companion, ok := eng.companionFor(mustItem(t, cat, "fried"), taken, cat)
		require.True(t, ok)
		// Expensive Side exceeds the cap; the designated side does not.
		assert.Equal(t, "side1", companion.ID)
	})
}

func TestDailyTargetBounds(t *testing.T) {
	eng := seededEngine()

	for i := 0; i < 20; i++ {
		target, reason := eng.dailyTarget(50, 10)
		// Baseline 5 plus a bump of one or two.
		assert.GreaterOrEqual(t, target, 6)
		assert.LessOrEqual(t, target, 7)
		assert.NotEmpty(t, reason)
	}

	target, _ := eng.dailyTarget(0, 10)
	assert.GreaterOrEqual(t, target, 2)
}
