// Package catalog holds the static menu reference data: the sellable items,
// their prices and costs, and the name-based rules the analysis and the
// promotion planner consult. A Catalog is immutable after construction and
// safe for concurrent reads.
package catalog

import (
	"fmt"
	"strings"

	"github.com/salescoach/salescoach/internal/model"
)

// Rules carries the name-based policy knobs used by aggregation and the
// promotion planner. Zero values fall back to the defaults below.
type Rules struct {
	// ExcludedNames are item names skipped entirely by range-based
	// aggregation (alcohol and soft-drink SKUs by default).
	ExcludedNames []string
	// SoftDrinks are the complimentary-drink and preferred set-companion
	// candidates, by item name.
	SoftDrinks []string
	// FriedKeywords mark fried or breaded dishes, which never pair with
	// add-on items in a discounted set.
	FriedKeywords []string
	// AlwaysCompatible are side dishes allowed as a set companion
	// regardless of price.
	AlwaysCompatible []string
	// AddonMarker identifies add-on ("topping") categories and items by
	// substring match.
	AddonMarker string
	// MaxCompanionPrice caps the price of a generic set companion.
	MaxCompanionPrice float64
}

// Catalog is the full menu with lookup indexes.
type Catalog struct {
	byID       map[string]model.Item
	categoryOf map[string]string
	excluded   map[string]struct{}
	rules      Rules
	categories []model.Category
	items      []model.Item
}

// New builds a catalog from categories and rules. Item IDs must be unique.
func New(categories []model.Category, rules Rules) (*Catalog, error) {
	if rules.AddonMarker == "" {
		rules.AddonMarker = defaultAddonMarker
	}
	if rules.MaxCompanionPrice == 0 {
		rules.MaxCompanionPrice = defaultMaxCompanionPrice
	}

	c := &Catalog{
		categories: categories,
		byID:       make(map[string]model.Item),
		categoryOf: make(map[string]string),
		excluded:   make(map[string]struct{}),
		rules:      rules,
	}

	excludedNames := make(map[string]struct{}, len(rules.ExcludedNames))
	for _, name := range rules.ExcludedNames {
		excludedNames[name] = struct{}{}
	}

	for _, cat := range categories {
		for _, item := range cat.Items {
			if item.ID == "" {
				return nil, fmt.Errorf("item %q has no ID", item.Name)
			}
			if _, ok := c.byID[item.ID]; ok {
				return nil, fmt.Errorf("duplicate item ID %q", item.ID)
			}
			c.byID[item.ID] = item
			c.categoryOf[item.ID] = cat.Name
			c.items = append(c.items, item)
			if _, ok := excludedNames[item.Name]; ok {
				c.excluded[item.ID] = struct{}{}
			}
		}
	}

	return c, nil
}

// Categories returns the menu sections in definition order.
func (c *Catalog) Categories() []model.Category {
	return c.categories
}

// Items returns all items in definition order.
func (c *Catalog) Items() []model.Item {
	return c.items
}

// Len returns the number of items in the catalog.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Item looks up an item by ID.
func (c *Catalog) Item(id string) (model.Item, bool) {
	item, ok := c.byID[id]
	return item, ok
}

// CategoryOf returns the category name an item belongs to.
func (c *Catalog) CategoryOf(id string) (string, bool) {
	name, ok := c.categoryOf[id]
	return name, ok
}

// IsExcluded reports whether an item is on the range-analysis exclusion list.
func (c *Catalog) IsExcluded(id string) bool {
	_, ok := c.excluded[id]
	return ok
}

// SoftDrinks returns the catalog items on the soft-drink list, in list order.
func (c *Catalog) SoftDrinks() []model.Item {
	drinks := make([]model.Item, 0, len(c.rules.SoftDrinks))
	for _, name := range c.rules.SoftDrinks {
		for _, item := range c.items {
			if item.Name == name {
				drinks = append(drinks, item)
				break
			}
		}
	}
	return drinks
}

// IsSoftDrink reports whether an item name is on the soft-drink list.
func (c *Catalog) IsSoftDrink(name string) bool {
	for _, drink := range c.rules.SoftDrinks {
		if drink == name {
			return true
		}
	}
	return false
}

// IsFried reports whether an item name matches a fried-dish keyword.
func (c *Catalog) IsFried(name string) bool {
	for _, kw := range c.rules.FriedKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// IsAddon reports whether an item is an add-on, by name or category marker.
func (c *Catalog) IsAddon(item model.Item) bool {
	if strings.Contains(item.Name, c.rules.AddonMarker) {
		return true
	}
	if cat, ok := c.categoryOf[item.ID]; ok {
		return strings.Contains(cat, c.rules.AddonMarker)
	}
	return false
}

// IsAlwaysCompatible reports whether an item name is a side dish allowed as
// a set companion regardless of price.
func (c *Catalog) IsAlwaysCompatible(name string) bool {
	for _, side := range c.rules.AlwaysCompatible {
		if strings.Contains(name, side) {
			return true
		}
	}
	return false
}

// MaxCompanionPrice returns the price cap for generic set companions.
func (c *Catalog) MaxCompanionPrice() float64 {
	return c.rules.MaxCompanionPrice
}
