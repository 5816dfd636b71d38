package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/salescoach/salescoach/internal/model"
	"github.com/salescoach/salescoach/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the HistoryStore interface using SQLite. Dates are
// stored as YYYY-MM-DD text keys with an index-backed range lookup, so
// window queries touch only the rows inside the window.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite history store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("%w: dbPath", ErrNilParameter)
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStore) BeginTx(ctx context.Context) (service.Tx, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTx{
		tx:    tx,
		store: s,
	}, nil
}

// sqliteTx wraps sql.Tx to implement service.Tx.
type sqliteTx struct {
	tx    *sql.Tx
	store *SQLiteStore
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) SaveDailyRecord(ctx context.Context, record *model.DailyRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(record); err != nil {
		return err
	}
	return t.store.saveDailyRecordTx(ctx, t.tx, record)
}

func (t *sqliteTx) GetDailyRecord(ctx context.Context, date time.Time) (*model.DailyRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDate(date, "record"); err != nil {
		return nil, err
	}
	return t.store.getDailyRecordTx(ctx, t.tx, date)
}

func (t *sqliteTx) DeleteDailyRecord(ctx context.Context, date time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDate(date, "record"); err != nil {
		return err
	}
	return t.store.deleteDailyRecordTx(ctx, t.tx, date)
}

func (t *sqliteTx) ListDates(ctx context.Context, rng service.DateRange) ([]time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if rng.End.Before(rng.Start) {
		return nil, fmt.Errorf("%w: %v after %v", ErrInvalidDateRange, rng.Start, rng.End)
	}
	return t.store.listDatesTx(ctx, t.tx, rng)
}

func (t *sqliteTx) ListDatesInMonth(ctx context.Context, year int, month time.Month) ([]time.Time, error) {
	return t.store.listDatesTx(ctx, t.tx, monthRange(year, month))
}

func (t *sqliteTx) GetMonthlyTotal(ctx context.Context, year int, month time.Month) (float64, error) {
	return t.store.getMonthlyTotalTx(ctx, t.tx, year, month)
}

func (t *sqliteTx) GetPeriodSummary(ctx context.Context, rng service.DateRange) (*service.PeriodSummary, error) {
	return t.store.getPeriodSummaryTx(ctx, t.tx, rng)
}

func (t *sqliteTx) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTx) BeginTx(_ context.Context) (service.Tx, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTx) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}

// monthRange returns the inclusive date range covering a calendar month.
func monthRange(year int, month time.Month) service.DateRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return service.DateRange{
		Start: start,
		End:   start.AddDate(0, 1, -1),
	}
}
