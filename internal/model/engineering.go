package model

// Flag marks an item as above or below the window average on one axis.
type Flag string

const (
	// FlagHigh means at or above the window average (ties go high).
	FlagHigh Flag = "High"
	// FlagLow means below the window average.
	FlagLow Flag = "Low"
)

// Quadrant is one cell of the popularity x profitability matrix.
type Quadrant string

const (
	// QuadrantStars holds high-popularity, high-profitability items.
	QuadrantStars Quadrant = "Stars"
	// QuadrantCashCows holds high-popularity, low-profitability items.
	QuadrantCashCows Quadrant = "Cash Cows"
	// QuadrantPuzzles holds low-popularity, high-profitability items.
	QuadrantPuzzles Quadrant = "Puzzles"
	// QuadrantDogs holds low-popularity, low-profitability items.
	QuadrantDogs Quadrant = "Dogs"
)

// EngineeredItem extends Item with metrics computed over an analysis window.
// Money fields that depend on unit cost are nil when the cost is unknown.
type EngineeredItem struct {
	COGS               *float64
	ContributionMargin *float64
	GrossProfit        *float64
	Item
	Popularity    Flag
	Profitability Flag
	Quadrant      Quadrant
	Quantity      int
	Revenue       float64
}

// DebugStats carries audit counters from an aggregation pass.
type DebugStats struct {
	DatesListed           int // dates reported by the history store
	RecordsLoaded         int // records actually found and loaded
	CategoriesSeen        int // distinct catalog categories touched
	ItemEntries           int // item rows scanned across loaded records
	PositiveQuantityItems int // entries that incremented the aggregate
	AggregatedItems       int // distinct item IDs aggregated
	DroppedItems          int // aggregated IDs absent from the catalog
}

// ClassificationResult is the output of one analysis invocation. It is
// constructed fresh per call and never mutated afterwards.
type ClassificationResult struct {
	Items                  []EngineeredItem
	Stars                  []EngineeredItem
	CashCows               []EngineeredItem
	Puzzles                []EngineeredItem
	Dogs                   []EngineeredItem
	NoCostItems            []EngineeredItem
	Debug                  DebugStats
	PopularityThreshold    float64
	ProfitabilityThreshold float64
	AnalyzedDates          int
}
