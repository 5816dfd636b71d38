package model

import "fmt"

// PlanKind identifies the promotion mechanic a plan uses.
type PlanKind string

const (
	// PlanMenuBoard features an item prominently on the menu board.
	PlanMenuBoard PlanKind = "MENU_BOARD"
	// PlanStaffUpsell bundles a complimentary drink with an item.
	PlanStaffUpsell PlanKind = "STAFF_UPSELL"
	// PlanSetDiscount sells a two-item set at a margin-safe discount.
	PlanSetDiscount PlanKind = "SET_DISCOUNT"
)

// DiscountKind distinguishes the three discount descriptors a plan can carry.
type DiscountKind string

const (
	// DiscountNone means the plan offers no price concession.
	DiscountNone DiscountKind = "none"
	// DiscountFreeItem means a named item is added for free.
	DiscountFreeItem DiscountKind = "free_item"
	// DiscountPercent means a percentage off the set price.
	DiscountPercent DiscountKind = "percent"
)

// Discount describes the price concession attached to a promotion plan.
type Discount struct {
	Kind     DiscountKind
	FreeItem string  // set when Kind is DiscountFreeItem
	Percent  int     // set when Kind is DiscountPercent, multiple of 5
	Amount   float64 // currency amount for percent discounts
}

// String renders the customer-facing discount label.
func (d Discount) String() string {
	switch d.Kind {
	case DiscountFreeItem:
		return fmt.Sprintf("FREE %s", d.FreeItem)
	case DiscountPercent:
		return fmt.Sprintf("%d%% OFF", d.Percent)
	default:
		return "NO DISCOUNT"
	}
}

// PromotionPlan is one ranked boost recommendation produced by the planner.
type PromotionPlan struct {
	Kind           PlanKind
	TargetItemID   string
	TargetItemName string
	CompanionID    string // second item of a set or free add-on, if any
	CompanionName  string
	SetName        string
	Composition    string
	Discount       Discount
	DailyTargetQty int
	TargetReason   string
	StaffNote      string
	Rationale      string
}
