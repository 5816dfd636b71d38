// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/salescoach/salescoach/internal/model"
)

// DateRange represents an inclusive analysis window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// HistoryStore defines the contract for the sales-history persistence layer.
type HistoryStore interface {
	// Daily record operations
	SaveDailyRecord(ctx context.Context, record *model.DailyRecord) error
	GetDailyRecord(ctx context.Context, date time.Time) (*model.DailyRecord, error)
	DeleteDailyRecord(ctx context.Context, date time.Time) error

	// Date listing; range queries are index-backed, not key scans
	ListDates(ctx context.Context, rng DateRange) ([]time.Time, error)
	ListDatesInMonth(ctx context.Context, year int, month time.Month) ([]time.Time, error)

	// Aggregate statistics
	GetMonthlyTotal(ctx context.Context, year int, month time.Month) (float64, error)
	GetPeriodSummary(ctx context.Context, rng DateRange) (*PeriodSummary, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Tx, error)
	Close() error
}

// Tx represents a history-store transaction.
type Tx interface {
	Commit() error
	Rollback() error
	HistoryStore
}

// PeriodDay is a single day's totals inside a period summary.
type PeriodDay struct {
	Date       time.Time
	TotalSales float64
	Orders     int
	Visitors   int
}

// PeriodSummary aggregates entry totals over an arbitrary date range.
type PeriodSummary struct {
	Days          []PeriodDay
	TotalSales    float64
	TotalOrders   int
	TotalVisitors int
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
