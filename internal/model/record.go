package model

import "time"

// DailyRecord is one day of point-of-sale entry: the POS register total,
// traffic counters and the per-item quantities tallied by hand.
type DailyRecord struct {
	Date          time.Time
	Quantities    map[string]int // item ID -> quantity sold
	Note          string
	POSSales      float64
	TotalSales    float64 // menu-sum total; falls back to POSSales when absent
	MonthlyTarget float64
	Orders        int
	VisitCount    int
}

// Quantity returns the recorded quantity for an item, zero when absent.
func (r *DailyRecord) Quantity(itemID string) int {
	if r.Quantities == nil {
		return 0
	}
	return r.Quantities[itemID]
}

// DateKey formats a date the way the history store keys records.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDateKey parses a YYYY-MM-DD date key into a UTC midnight time.
func ParseDateKey(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
