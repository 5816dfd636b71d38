package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS daily_records (
					date TEXT PRIMARY KEY,
					pos_sales REAL NOT NULL DEFAULT 0,
					orders INTEGER NOT NULL DEFAULT 0,
					visit_count INTEGER NOT NULL DEFAULT 0,
					note TEXT NOT NULL DEFAULT '',
					monthly_target REAL NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS record_items (
					date TEXT NOT NULL,
					item_id TEXT NOT NULL,
					quantity INTEGER NOT NULL,
					PRIMARY KEY (date, item_id),
					FOREIGN KEY (date) REFERENCES daily_records(date) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_record_items_date ON record_items(date)`,
				`CREATE INDEX idx_record_items_item ON record_items(item_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Track menu-sum total separately from the POS figure",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`ALTER TABLE daily_records ADD COLUMN total_sales REAL`); err != nil {
				return fmt.Errorf("failed to add total_sales column: %w", err)
			}
			// Backfill: older records only carried the POS figure.
			if _, err := tx.Exec(`UPDATE daily_records SET total_sales = pos_sales WHERE total_sales IS NULL`); err != nil {
				return fmt.Errorf("failed to backfill total_sales: %w", err)
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Drop zero-quantity item rows",
		Up: func(tx *sql.Tx) error {
			// Early clients wrote every catalog item per day, zeros included.
			// Aggregation skips zeros anyway; delete the dead rows.
			res, err := tx.Exec(`DELETE FROM record_items WHERE quantity <= 0`)
			if err != nil {
				return fmt.Errorf("failed to delete zero-quantity rows: %w", err)
			}
			if n, err := res.RowsAffected(); err == nil && n > 0 {
				slog.Info("Removed zero-quantity item rows", "count", n)
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
