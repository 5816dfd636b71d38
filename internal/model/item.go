// Package model defines the core domain types shared across the application.
package model

// Item is a single sellable menu item. Items are static reference data:
// created at configuration time and never mutated by the analysis pipeline.
type Item struct {
	UnitCost *float64 // nil means the item has not been costed
	ID       string
	Name     string
	Price    float64
}

// HasCost reports whether the item has a configured unit cost.
func (i Item) HasCost() bool {
	return i.UnitCost != nil
}

// UnitMargin returns price minus unit cost. The second return value is
// false when the item has no configured unit cost.
func (i Item) UnitMargin() (float64, bool) {
	if i.UnitCost == nil {
		return 0, false
	}
	return i.Price - *i.UnitCost, true
}

// Category groups items under a named menu section.
type Category struct {
	Name  string
	Items []Item
}

// Cost is a convenience constructor for unit cost pointers in catalog
// definitions and tests.
func Cost(v float64) *float64 {
	return &v
}
