// Package entry implements daily sales-entry reconciliation: checking the
// hand tally against the POS register total and deriving the day's
// operating indicators.
package entry

import (
	"math"

	"github.com/salescoach/salescoach/internal/catalog"
	"github.com/salescoach/salescoach/internal/model"
)

// Status grades the gap between the POS total and the menu-sum total.
type Status string

const (
	// StatusOK means the gap is within 1% of the POS figure.
	StatusOK Status = "OK"
	// StatusWarn means the gap exceeds 1% of the POS figure.
	StatusWarn Status = "WARN"
	// StatusAlert means the gap exceeds 3% of the POS figure.
	StatusAlert Status = "ALERT"
)

// Gap thresholds, as percentages of the POS figure.
const (
	warnGapPercent  = 1.0
	alertGapPercent = 3.0
)

// Result carries the reconciliation of one day's entry. Values are rounded
// for presentation: currency to 2 decimals, rates to their display
// precision.
type Result struct {
	Status         Status
	CalcSales      float64 // sum of price x quantity over the tally
	GapUSD         float64 // POS total minus CalcSales
	GapRate        float64 // gap as a percentage of the POS total
	AOV            float64 // average order value
	ConversionRate float64 // orders per visitor, percent, one decimal
	AddonPerOrder  float64 // add-on items per order, one decimal
}

// Reconcile computes the day's indicators from a record and the catalog.
// Pure function; unknown item identifiers in the tally are skipped.
func Reconcile(record *model.DailyRecord, cat *catalog.Catalog) Result {
	var calcSales float64
	var addonSum int

	for itemID, qty := range record.Quantities {
		item, ok := cat.Item(itemID)
		if !ok {
			continue
		}
		calcSales += item.Price * float64(qty)
		if cat.IsAddon(item) {
			addonSum += qty
		}
	}

	gap := record.POSSales - calcSales
	var gapRate float64
	if record.POSSales > 0 {
		gapRate = gap / record.POSSales * 100
	}

	status := StatusOK
	switch absRate := math.Abs(gapRate); {
	case absRate > alertGapPercent:
		status = StatusAlert
	case absRate > warnGapPercent:
		status = StatusWarn
	}

	result := Result{
		Status:    status,
		CalcSales: round2(calcSales),
		GapUSD:    round2(gap),
		GapRate:   round2(gapRate),
	}
	if record.Orders > 0 {
		result.AOV = round2(calcSales / float64(record.Orders))
		result.AddonPerOrder = round1(float64(addonSum) / float64(record.Orders))
	}
	if record.VisitCount > 0 {
		result.ConversionRate = round1(float64(record.Orders) / float64(record.VisitCount) * 100)
	}
	return result
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
