package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/salescoach/salescoach/internal/common"
	"github.com/salescoach/salescoach/internal/model"
	"github.com/salescoach/salescoach/internal/service"
)

// querier abstracts *sql.DB and *sql.Tx so record helpers work in both.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SaveDailyRecord upserts one day of sales entry together with its item
// quantities. TotalSales falls back to the POS figure when unset.
func (s *SQLiteStore) SaveDailyRecord(ctx context.Context, record *model.DailyRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(record); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveDailyRecordTx(ctx, tx, record); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) saveDailyRecordTx(ctx context.Context, tx *sql.Tx, record *model.DailyRecord) error {
	totalSales := record.TotalSales
	if totalSales == 0 {
		totalSales = record.POSSales
	}

	dateKey := model.DateKey(record.Date)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO daily_records (date, pos_sales, total_sales, orders, visit_count, note, monthly_target)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			pos_sales = excluded.pos_sales,
			total_sales = excluded.total_sales,
			orders = excluded.orders,
			visit_count = excluded.visit_count,
			note = excluded.note,
			monthly_target = excluded.monthly_target,
			updated_at = CURRENT_TIMESTAMP
	`, dateKey, record.POSSales, totalSales, record.Orders, record.VisitCount, record.Note, record.MonthlyTarget)
	if err != nil {
		return fmt.Errorf("failed to save daily record: %w", err)
	}

	// Rewrite the item rows wholesale; a day's tally is saved as a unit.
	if _, err := tx.ExecContext(ctx, `DELETE FROM record_items WHERE date = ?`, dateKey); err != nil {
		return fmt.Errorf("failed to clear item rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO record_items (date, item_id, quantity) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for itemID, qty := range record.Quantities {
		if qty <= 0 {
			continue
		}
		if _, err := stmt.ExecContext(ctx, dateKey, itemID, qty); err != nil {
			return fmt.Errorf("failed to save item quantity for %s: %w", itemID, err)
		}
	}

	return nil
}

// GetDailyRecord loads one day's record, or common.ErrNotFound when the day
// has no saved entry.
func (s *SQLiteStore) GetDailyRecord(ctx context.Context, date time.Time) (*model.DailyRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDate(date, "record"); err != nil {
		return nil, err
	}
	return s.getDailyRecord(ctx, s.db, date)
}

func (s *SQLiteStore) getDailyRecordTx(ctx context.Context, tx *sql.Tx, date time.Time) (*model.DailyRecord, error) {
	return s.getDailyRecord(ctx, tx, date)
}

func (s *SQLiteStore) getDailyRecord(ctx context.Context, q querier, date time.Time) (*model.DailyRecord, error) {
	dateKey := model.DateKey(date)

	record := &model.DailyRecord{Quantities: make(map[string]int)}
	var storedDate string
	var totalSales sql.NullFloat64
	err := q.QueryRowContext(ctx, `
		SELECT date, pos_sales, total_sales, orders, visit_count, note, monthly_target
		FROM daily_records WHERE date = ?
	`, dateKey).Scan(&storedDate, &record.POSSales, &totalSales, &record.Orders,
		&record.VisitCount, &record.Note, &record.MonthlyTarget)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no record for %s", common.ErrNotFound, dateKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load daily record: %w", err)
	}

	record.Date, err = model.ParseDateKey(storedDate)
	if err != nil {
		return nil, fmt.Errorf("corrupt date key %q: %w", storedDate, err)
	}
	if totalSales.Valid {
		record.TotalSales = totalSales.Float64
	} else {
		record.TotalSales = record.POSSales
	}

	rows, err := q.QueryContext(ctx, `
		SELECT item_id, quantity FROM record_items WHERE date = ?
	`, dateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load item quantities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var itemID string
		var qty int
		if err := rows.Scan(&itemID, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		record.Quantities[itemID] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return record, nil
}

// DeleteDailyRecord removes a day's record and its item rows.
func (s *SQLiteStore) DeleteDailyRecord(ctx context.Context, date time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDate(date, "record"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.deleteDailyRecordTx(ctx, tx, date); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) deleteDailyRecordTx(ctx context.Context, tx *sql.Tx, date time.Time) error {
	dateKey := model.DateKey(date)
	// record_items rows go with the parent via ON DELETE CASCADE.
	res, err := tx.ExecContext(ctx, `DELETE FROM daily_records WHERE date = ?`, dateKey)
	if err != nil {
		return fmt.Errorf("failed to delete daily record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: no record for %s", common.ErrNotFound, dateKey)
	}
	return nil
}

// ListDates returns the dates inside the range that have a saved record,
// ascending. The lookup rides the primary-key index.
func (s *SQLiteStore) ListDates(ctx context.Context, rng service.DateRange) ([]time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if rng.End.Before(rng.Start) {
		return nil, fmt.Errorf("%w: %v after %v", ErrInvalidDateRange, rng.Start, rng.End)
	}
	return s.listDates(ctx, s.db, rng)
}

func (s *SQLiteStore) listDatesTx(ctx context.Context, tx *sql.Tx, rng service.DateRange) ([]time.Time, error) {
	return s.listDates(ctx, tx, rng)
}

func (s *SQLiteStore) listDates(ctx context.Context, q querier, rng service.DateRange) ([]time.Time, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT date FROM daily_records WHERE date >= ? AND date <= ? ORDER BY date
	`, model.DateKey(rng.Start), model.DateKey(rng.End))
	if err != nil {
		return nil, fmt.Errorf("failed to list dates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var dates []time.Time
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan date: %w", err)
		}
		date, err := model.ParseDateKey(key)
		if err != nil {
			return nil, fmt.Errorf("corrupt date key %q: %w", key, err)
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dates: %w", err)
	}

	return dates, nil
}

// ListDatesInMonth returns the recorded dates of a calendar month, ascending.
func (s *SQLiteStore) ListDatesInMonth(ctx context.Context, year int, month time.Month) ([]time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listDates(ctx, s.db, monthRange(year, month))
}

// GetMonthlyTotal sums total_sales over a calendar month.
func (s *SQLiteStore) GetMonthlyTotal(ctx context.Context, year int, month time.Month) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return s.getMonthlyTotal(ctx, s.db, year, month)
}

func (s *SQLiteStore) getMonthlyTotalTx(ctx context.Context, tx *sql.Tx, year int, month time.Month) (float64, error) {
	return s.getMonthlyTotal(ctx, tx, year, month)
}

func (s *SQLiteStore) getMonthlyTotal(ctx context.Context, q querier, year int, month time.Month) (float64, error) {
	rng := monthRange(year, month)
	var total sql.NullFloat64
	err := q.QueryRowContext(ctx, `
		SELECT SUM(COALESCE(total_sales, pos_sales)) FROM daily_records
		WHERE date >= ? AND date <= ?
	`, model.DateKey(rng.Start), model.DateKey(rng.End)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to compute monthly total: %w", err)
	}
	if !total.Valid {
		return 0, nil
	}
	return total.Float64, nil
}

// GetPeriodSummary aggregates entry totals over an arbitrary range.
func (s *SQLiteStore) GetPeriodSummary(ctx context.Context, rng service.DateRange) (*service.PeriodSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if rng.End.Before(rng.Start) {
		return nil, fmt.Errorf("%w: %v after %v", ErrInvalidDateRange, rng.Start, rng.End)
	}
	return s.getPeriodSummary(ctx, s.db, rng)
}

func (s *SQLiteStore) getPeriodSummaryTx(ctx context.Context, tx *sql.Tx, rng service.DateRange) (*service.PeriodSummary, error) {
	return s.getPeriodSummary(ctx, tx, rng)
}

func (s *SQLiteStore) getPeriodSummary(ctx context.Context, q querier, rng service.DateRange) (*service.PeriodSummary, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT date, COALESCE(total_sales, pos_sales), orders, visit_count
		FROM daily_records WHERE date >= ? AND date <= ? ORDER BY date
	`, model.DateKey(rng.Start), model.DateKey(rng.End))
	if err != nil {
		return nil, fmt.Errorf("failed to query period: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summary := &service.PeriodSummary{}
	for rows.Next() {
		var key string
		var day service.PeriodDay
		if err := rows.Scan(&key, &day.TotalSales, &day.Orders, &day.Visitors); err != nil {
			return nil, fmt.Errorf("failed to scan period row: %w", err)
		}
		day.Date, err = model.ParseDateKey(key)
		if err != nil {
			return nil, fmt.Errorf("corrupt date key %q: %w", key, err)
		}
		summary.Days = append(summary.Days, day)
		summary.TotalSales += day.TotalSales
		summary.TotalOrders += day.Orders
		summary.TotalVisitors += day.Visitors
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating period rows: %w", err)
	}

	return summary, nil
}
