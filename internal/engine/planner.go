package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/salescoach/salescoach/internal/catalog"
	"github.com/salescoach/salescoach/internal/model"
)

// Discount sizing policy for set plans.
const (
	// marginFloor is the minimum margin ratio of the discounted set price.
	marginFloor = 0.5
	// minDiscountRate is the smallest discount worth advertising.
	minDiscountRate = 0.1
)

// maxPromotionPlans caps the returned plan list.
const maxPromotionPlans = 3

// PlanPromotions derives up to three ranked boost plans from a
// classification result. Plan slots are filled in fixed priority order
// (menu-board feature, staff upsell, discounted set); a slot with no
// eligible target is omitted, never padded. No item is targeted by more
// than one plan in a single invocation.
func (e *Engine) PlanPromotions(result *model.ClassificationResult, cat *catalog.Catalog) []model.PromotionPlan {
	if result == nil || cat == nil || cat.Len() == 0 {
		return nil
	}

	stars := sortedByRevenue(costedOnly(result.Stars))
	cashCows := sortedByQuantity(costedOnly(result.CashCows))
	puzzles := sortedByMargin(costedOnly(result.Puzzles))

	analyzedDates := result.AnalyzedDates
	if analyzedDates <= 0 {
		analyzedDates = 1
	}

	used := make(map[string]struct{})
	plans := make([]model.PromotionPlan, 0, maxPromotionPlans)

	if plan, ok := e.menuBoardPlan(stars, cashCows, used, analyzedDates); ok {
		plans = append(plans, plan)
	}
	if plan, ok := e.staffUpsellPlan(stars, cashCows, used, cat, analyzedDates); ok {
		plans = append(plans, plan)
	}
	if plan, ok := e.setDiscountPlan(puzzles, used, cat, analyzedDates); ok {
		plans = append(plans, plan)
	}

	if len(plans) > maxPromotionPlans {
		plans = plans[:maxPromotionPlans]
	}
	return plans
}

// menuBoardPlan features the strongest seller: the highest-revenue Star,
// falling back to the highest-quantity Cash Cow. No discount.
func (e *Engine) menuBoardPlan(stars, cashCows []model.EngineeredItem, used map[string]struct{}, analyzedDates int) (model.PromotionPlan, bool) {
	target := firstUnused(stars, used)
	if target == nil {
		target = firstUnused(cashCows, used)
	}
	if target == nil {
		return model.PromotionPlan{}, false
	}
	used[target.ID] = struct{}{}

	targetQty, targetReason := e.dailyTarget(target.Quantity, analyzedDates)
	return model.PromotionPlan{
		Kind:           model.PlanMenuBoard,
		TargetItemID:   target.ID,
		TargetItemName: target.Name,
		SetName:        fmt.Sprintf("%s house special", target.Name),
		Composition:    "Top menu-board slot, POP signage, counter recommendation",
		Discount:       model.Discount{Kind: model.DiscountNone},
		DailyTargetQty: targetQty,
		TargetReason:   targetReason,
		StaffNote:      fmt.Sprintf("Put %s in the first menu-board slot and recommend it at the counter.", target.Name),
		Rationale: fmt.Sprintf("High-volume crowd favorite. Featuring it as the signature item pulls overall sales. %s",
			targetReason),
	}, true
}

// staffUpsellPlan attaches a complimentary soft drink to the next unused
// high-volume item.
func (e *Engine) staffUpsellPlan(stars, cashCows []model.EngineeredItem, used map[string]struct{}, cat *catalog.Catalog, analyzedDates int) (model.PromotionPlan, bool) {
	target := firstUnused(stars, used)
	if target == nil {
		target = firstUnused(cashCows, used)
	}
	if target == nil {
		return model.PromotionPlan{}, false
	}

	// A soft drink that classified as the target itself cannot be its own
	// free companion.
	var drinks []model.Item
	for _, d := range cat.SoftDrinks() {
		if d.ID == target.ID {
			continue
		}
		if _, taken := used[d.ID]; taken {
			continue
		}
		drinks = append(drinks, d)
	}
	if len(drinks) == 0 {
		return model.PromotionPlan{}, false
	}
	drink := drinks[e.rng.Intn(len(drinks))]
	used[target.ID] = struct{}{}

	targetQty, targetReason := e.dailyTarget(target.Quantity, analyzedDates)
	return model.PromotionPlan{
		Kind:           model.PlanStaffUpsell,
		TargetItemID:   target.ID,
		TargetItemName: target.Name,
		CompanionID:    drink.ID,
		CompanionName:  drink.Name,
		SetName:        fmt.Sprintf("With every %s order", target.Name),
		Composition:    fmt.Sprintf("%s + one free %s", target.Name, drink.Name),
		Discount:       model.Discount{Kind: model.DiscountFreeItem, FreeItem: drink.Name},
		DailyTargetQty: targetQty,
		TargetReason:   targetReason,
		StaffNote:      fmt.Sprintf("Offer a free %s whenever a guest orders %s.", drink.Name, target.Name),
		Rationale: fmt.Sprintf("A free %s on a high-volume item lifts ticket size and guest satisfaction. %s",
			drink.Name, targetReason),
	}, true
}

// setDiscountPlan bundles the most profitable under-selling item with a
// compatible companion at the largest discount that holds the margin floor.
func (e *Engine) setDiscountPlan(puzzles []model.EngineeredItem, used map[string]struct{}, cat *catalog.Catalog, analyzedDates int) (model.PromotionPlan, bool) {
	target := firstUnused(puzzles, used)
	if target == nil {
		return model.PromotionPlan{}, false
	}

	companion, ok := e.companionFor(target.Item, used, cat)
	if !ok {
		return model.PromotionPlan{}, false
	}

	setPrice := target.Price + companion.Price
	setCost := costOrZero(target.Item) + costOrZero(companion)

	amount, percent, ok := sizeSetDiscount(setPrice, setCost)
	if !ok {
		return model.PromotionPlan{}, false
	}
	used[target.ID] = struct{}{}

	targetQty, targetReason := e.dailyTarget(target.Quantity, analyzedDates)
	cm := 0.0
	if target.ContributionMargin != nil {
		cm = *target.ContributionMargin
	}
	return model.PromotionPlan{
		Kind:           model.PlanSetDiscount,
		TargetItemID:   target.ID,
		TargetItemName: target.Name,
		CompanionID:    companion.ID,
		CompanionName:  companion.Name,
		SetName:        fmt.Sprintf("%s + %s discount set", target.Name, companion.Name),
		Composition:    fmt.Sprintf("%s + %s", target.Name, companion.Name),
		Discount: model.Discount{
			Kind:    model.DiscountPercent,
			Percent: percent,
			Amount:  amount,
		},
		DailyTargetQty: targetQty,
		TargetReason:   targetReason,
		StaffNote: fmt.Sprintf("Set promotion: %s + %s at %d%% off. Confirm the margin floor before ringing it up.",
			target.Name, companion.Name, percent),
		Rationale: fmt.Sprintf("Profitable but under-selling: %s carries a $%.2f margin on %d sold in the window. A %d%% set discount trades margin for volume. %s",
			target.Name, cm, target.Quantity, percent, targetReason),
	}, true
}

// companionFor picks the second item of a discounted set. Soft drinks are
// preferred; otherwise the cheapest compatible item wins. Fried dishes never
// pair with add-ons, designated side dishes are always allowed, and generic
// companions must be cheap and costed.
func (e *Engine) companionFor(main model.Item, used map[string]struct{}, cat *catalog.Catalog) (model.Item, bool) {
	var drinks []model.Item
	for _, drink := range cat.SoftDrinks() {
		if drink.ID == main.ID {
			continue
		}
		if _, taken := used[drink.ID]; taken {
			continue
		}
		drinks = append(drinks, drink)
	}
	if len(drinks) > 0 {
		return drinks[e.rng.Intn(len(drinks))], true
	}

	var candidates []model.Item
	for _, item := range cat.Items() {
		if item.ID == main.ID || !item.HasCost() {
			continue
		}
		if _, taken := used[item.ID]; taken {
			continue
		}
		if cat.IsFried(main.Name) && cat.IsAddon(item) {
			continue
		}
		if !cat.IsAlwaysCompatible(item.Name) && item.Price >= cat.MaxCompanionPrice() {
			continue
		}
		candidates = append(candidates, item)
	}
	if len(candidates) == 0 {
		return model.Item{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Price < candidates[j].Price
	})
	return candidates[0], true
}

// sizeSetDiscount solves for the largest discount that keeps the margin of
// the discounted set price at or above the floor. When even the minimum
// discount breaks the floor, a flat 10% is offered only if it preserves at
// least half of the undiscounted set profit; otherwise no plan.
func sizeSetDiscount(setPrice, setCost float64) (amount float64, percent int, ok bool) {
	if setPrice <= 0 {
		return 0, 0, false
	}
	setProfit := setPrice - setCost
	maxDiscount := setPrice - setCost/marginFloor
	minDiscount := setPrice * minDiscountRate

	if maxDiscount > minDiscount {
		pct := int(math.Floor(maxDiscount/setPrice*100/5)) * 5
		if pct < 10 {
			pct = 10
		}
		amount = RoundToHalf(setPrice * float64(pct) / 100)
	} else {
		amount = RoundToHalf(minDiscount)
		if setPrice-setCost-amount < setProfit*0.5 {
			return 0, 0, false
		}
	}
	if amount <= 0 {
		return 0, 0, false
	}

	// The advertised percentage is recomputed from the rounded amount.
	percent = int(math.Round(amount/setPrice*100/5)) * 5
	return amount, percent, true
}

// dailyTarget converts a window quantity into a per-day sales target: the
// recent daily average plus a bump of one or two.
func (e *Engine) dailyTarget(windowQty, analyzedDates int) (int, string) {
	baseline := int(math.Round(float64(windowQty) / float64(analyzedDates)))
	if baseline < 1 {
		baseline = 1
	}
	target := baseline + 1 + e.rng.Intn(2)
	return target, fmt.Sprintf("Recent daily average %d, target %d.", baseline, target)
}

func firstUnused(items []model.EngineeredItem, used map[string]struct{}) *model.EngineeredItem {
	for i := range items {
		if _, taken := used[items[i].ID]; !taken {
			return &items[i]
		}
	}
	return nil
}

func costedOnly(items []model.EngineeredItem) []model.EngineeredItem {
	out := make([]model.EngineeredItem, 0, len(items))
	for _, it := range items {
		if it.HasCost() {
			out = append(out, it)
		}
	}
	return out
}

func costOrZero(item model.Item) float64 {
	if item.UnitCost == nil {
		return 0
	}
	return *item.UnitCost
}

func sortedByRevenue(items []model.EngineeredItem) []model.EngineeredItem {
	out := append([]model.EngineeredItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Revenue > out[j].Revenue
	})
	return out
}

func sortedByQuantity(items []model.EngineeredItem) []model.EngineeredItem {
	out := append([]model.EngineeredItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Quantity > out[j].Quantity
	})
	return out
}

// sortedByMargin orders by contribution margin, breaking ties on window
// revenue.
func sortedByMargin(items []model.EngineeredItem) []model.EngineeredItem {
	out := append([]model.EngineeredItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		mi, mj := *out[i].ContributionMargin, *out[j].ContributionMargin
		if mi != mj {
			return mi > mj
		}
		return out[i].Revenue > out[j].Revenue
	})
	return out
}
