// Package storage provides the sqlite-backed sales history store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/salescoach/salescoach/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidRecord    = errors.New("invalid daily record")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateDate ensures a date parameter is usable as a record key.
func validateDate(date time.Time, paramName string) error {
	if date.IsZero() {
		return fmt.Errorf("%w: %s date is zero", ErrNilParameter, paramName)
	}
	return nil
}

// validateRecord validates a daily record before persistence.
func validateRecord(record *model.DailyRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if record.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidRecord)
	}
	if record.POSSales < 0 {
		return fmt.Errorf("%w: negative POS sales", ErrInvalidRecord)
	}
	if record.Orders < 0 || record.VisitCount < 0 {
		return fmt.Errorf("%w: negative counters", ErrInvalidRecord)
	}
	for itemID, qty := range record.Quantities {
		if itemID == "" {
			return fmt.Errorf("%w: empty item ID", ErrInvalidRecord)
		}
		if qty < 0 {
			return fmt.Errorf("%w: negative quantity for %s", ErrInvalidRecord, itemID)
		}
	}
	return nil
}
