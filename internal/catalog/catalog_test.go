package catalog

import (
	"testing"

	"github.com/salescoach/salescoach/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsDuplicateIDs(t *testing.T) {
	_, err := New([]model.Category{
		{Name: "A", Items: []model.Item{{ID: "x", Name: "One", Price: 1}}},
		{Name: "B", Items: []model.Item{{ID: "x", Name: "Two", Price: 2}}},
	}, Rules{})
	assert.Error(t, err)
}

func TestNewRejectsMissingID(t *testing.T) {
	_, err := New([]model.Category{
		{Name: "A", Items: []model.Item{{Name: "No ID", Price: 1}}},
	}, Rules{})
	assert.Error(t, err)
}

func TestExclusionByName(t *testing.T) {
	cat, err := New([]model.Category{
		{Name: "Drinks", Items: []model.Item{
			{ID: "b1", Name: "Beer", Price: 3},
			{ID: "c1", Name: "Cola", Price: 1.5},
		}},
	}, Rules{ExcludedNames: []string{"Beer"}})
	require.NoError(t, err)

	assert.True(t, cat.IsExcluded("b1"))
	assert.False(t, cat.IsExcluded("c1"))
	assert.False(t, cat.IsExcluded("missing"))
}

func TestSoftDrinksKeepListOrder(t *testing.T) {
	cat, err := New([]model.Category{
		{Name: "Drinks", Items: []model.Item{
			{ID: "c1", Name: "Cola", Price: 1.5},
			{ID: "s1", Name: "Sprite", Price: 1.5},
		}},
	}, Rules{SoftDrinks: []string{"Sprite", "Cola", "Fanta"}})
	require.NoError(t, err)

	drinks := cat.SoftDrinks()
	// Fanta isn't in the catalog; the rest keep rule-list order.
	require.Len(t, drinks, 2)
	assert.Equal(t, "s1", drinks[0].ID)
	assert.Equal(t, "c1", drinks[1].ID)

	assert.True(t, cat.IsSoftDrink("Cola"))
	assert.False(t, cat.IsSoftDrink("Beer"))
}

func TestAddonDetection(t *testing.T) {
	cat, err := New([]model.Category{
		{Name: "토핑 추가", Items: []model.Item{
			{ID: "t1", Name: "계란", Price: 1},
		}},
		{Name: "Mains", Items: []model.Item{
			{ID: "m1", Name: "짜장면", Price: 7},
			{ID: "m2", Name: "치즈 토핑", Price: 2},
		}},
	}, Rules{})
	require.NoError(t, err)

	byCat, _ := cat.Item("t1")
	byName, _ := cat.Item("m2")
	plain, _ := cat.Item("m1")

	assert.True(t, cat.IsAddon(byCat), "addon by category marker")
	assert.True(t, cat.IsAddon(byName), "addon by name marker")
	assert.False(t, cat.IsAddon(plain))
}

func TestFriedKeywordMatch(t *testing.T) {
	cat := Default()

	assert.True(t, cat.IsFried("탕수육"))
	assert.True(t, cat.IsFried("소탕수육"))
	assert.True(t, cat.IsFried("양념치킨"))
	assert.False(t, cat.IsFried("짜장면"))
}

func TestDefaultCatalogConsistency(t *testing.T) {
	cat := Default()

	assert.Greater(t, cat.Len(), 40)

	// Every excluded name and soft drink must point at a real item so the
	// rules never drift from the menu.
	for _, name := range DefaultRules().ExcludedNames {
		assert.True(t, hasItemNamed(cat, name), "excluded name %q not in catalog", name)
	}
	for _, name := range DefaultRules().SoftDrinks {
		assert.True(t, hasItemNamed(cat, name), "soft drink %q not in catalog", name)
	}

	// Soft drinks are also excluded from range analysis.
	for _, drink := range cat.SoftDrinks() {
		assert.True(t, cat.IsExcluded(drink.ID), "soft drink %s should be excluded", drink.Name)
	}
}

func hasItemNamed(cat *Catalog, name string) bool {
	for _, item := range cat.Items() {
		if item.Name == name {
			return true
		}
	}
	return false
}
