package engine

import (
	"context"
	"time"

	"github.com/salescoach/salescoach/internal/model"
	"github.com/salescoach/salescoach/internal/service"
)

// HistoryReader is the read-only slice of the history store the engine
// depends on. Reads for distinct dates are independent; aggregation does not
// depend on read order.
type HistoryReader interface {
	ListDates(ctx context.Context, rng service.DateRange) ([]time.Time, error)
	GetDailyRecord(ctx context.Context, date time.Time) (*model.DailyRecord, error)
}
