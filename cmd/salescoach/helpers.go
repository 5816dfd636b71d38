package main

import (
	"context"
	"fmt"
	"time"

	"github.com/salescoach/salescoach/internal/catalog"
	"github.com/salescoach/salescoach/internal/config"
	"github.com/salescoach/salescoach/internal/model"
	"github.com/salescoach/salescoach/internal/service"
	"github.com/salescoach/salescoach/internal/storage"
	"github.com/spf13/viper"
)

// initStorage initializes the history store with proper path expansion.
func initStorage(ctx context.Context) (service.HistoryStore, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/salescoach/salescoach.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadCatalog returns the configured menu catalog, falling back to the
// built-in one when no catalog file is configured.
func loadCatalog() (*catalog.Catalog, error) {
	path := viper.GetString("catalog.path")
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(config.ExpandPath(path))
}

// parseDate parses a YYYY-MM-DD flag value, defaulting to today when empty.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := model.ParseDateKey(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", value, err)
	}
	return date, nil
}

// resolveWindow turns the analyze flags into a concrete date range. Priority:
// explicit from/to, then month, then trailing days ending at the end date.
func resolveWindow(from, to, month string, days int) (service.DateRange, error) {
	if month != "" {
		start, err := time.ParseInLocation("2006-01", month, time.UTC)
		if err != nil {
			return service.DateRange{}, fmt.Errorf("invalid month %q (expected YYYY-MM): %w", month, err)
		}
		return service.DateRange{Start: start, End: start.AddDate(0, 1, -1)}, nil
	}

	end, err := parseDate(to)
	if err != nil {
		return service.DateRange{}, err
	}

	if from != "" {
		start, parseErr := model.ParseDateKey(from)
		if parseErr != nil {
			return service.DateRange{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", from, parseErr)
		}
		return service.DateRange{Start: start, End: end}, nil
	}

	if days <= 0 {
		days = 7
	}
	return service.DateRange{Start: end.AddDate(0, 0, -(days - 1)), End: end}, nil
}
