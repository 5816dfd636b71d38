package catalog

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/salescoach/salescoach/internal/common"
	"github.com/salescoach/salescoach/internal/model"
)

type fileItem struct {
	UnitCost *float64 `mapstructure:"unit_cost"`
	ID       string   `mapstructure:"id"`
	Name     string   `mapstructure:"name"`
	Price    float64  `mapstructure:"price"`
}

type fileCategory struct {
	Name  string     `mapstructure:"name"`
	Items []fileItem `mapstructure:"items"`
}

type fileCatalog struct {
	Categories        []fileCategory `mapstructure:"categories"`
	ExcludedNames     []string       `mapstructure:"excluded_names"`
	SoftDrinks        []string       `mapstructure:"soft_drinks"`
	FriedKeywords     []string       `mapstructure:"fried_keywords"`
	AlwaysCompatible  []string       `mapstructure:"always_compatible"`
	AddonMarker       string         `mapstructure:"addon_marker"`
	MaxCompanionPrice float64        `mapstructure:"max_companion_price"`
}

// Load reads a catalog definition file (yaml, json or toml as supported by
// viper). Rule lists absent from the file fall back to the defaults.
func Load(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var fc fileCatalog
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if len(fc.Categories) == 0 {
		return nil, fmt.Errorf("%w: catalog file %s defines no categories", common.ErrEmptyCatalog, path)
	}

	categories := make([]model.Category, 0, len(fc.Categories))
	for _, cat := range fc.Categories {
		items := make([]model.Item, 0, len(cat.Items))
		for _, it := range cat.Items {
			items = append(items, model.Item{
				ID:       it.ID,
				Name:     it.Name,
				Price:    it.Price,
				UnitCost: it.UnitCost,
			})
		}
		categories = append(categories, model.Category{Name: cat.Name, Items: items})
	}

	rules := DefaultRules()
	if len(fc.ExcludedNames) > 0 {
		rules.ExcludedNames = fc.ExcludedNames
	}
	if len(fc.SoftDrinks) > 0 {
		rules.SoftDrinks = fc.SoftDrinks
	}
	if len(fc.FriedKeywords) > 0 {
		rules.FriedKeywords = fc.FriedKeywords
	}
	if len(fc.AlwaysCompatible) > 0 {
		rules.AlwaysCompatible = fc.AlwaysCompatible
	}
	if fc.AddonMarker != "" {
		rules.AddonMarker = fc.AddonMarker
	}
	if fc.MaxCompanionPrice > 0 {
		rules.MaxCompanionPrice = fc.MaxCompanionPrice
	}

	return New(categories, rules)
}
