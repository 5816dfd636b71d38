package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/salescoach/salescoach/internal/common"
	"github.com/salescoach/salescoach/internal/model"
	"github.com/salescoach/salescoach/internal/service"
)

// Helper function to create test storage.
func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store
}

func testDate(day int) time.Time {
	return time.Date(2025, 8, day, 0, 0, 0, 0, time.UTC)
}

func testRecord(day int) *model.DailyRecord {
	return &model.DailyRecord{
		Date:          testDate(day),
		Quantities:    map[string]int{"f1": 5, "f2": 2},
		Note:          "steady day",
		POSSales:      100.50,
		TotalSales:    99.00,
		MonthlyTarget: 3000,
		Orders:        12,
		VisitCount:    20,
	}
}

func TestSaveAndGetDailyRecord(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	saved := testRecord(1)
	if err := store.SaveDailyRecord(ctx, saved); err != nil {
		t.Fatalf("SaveDailyRecord: %v", err)
	}

	got, err := store.GetDailyRecord(ctx, testDate(1))
	if err != nil {
		t.Fatalf("GetDailyRecord: %v", err)
	}

	if !got.Date.Equal(saved.Date) {
		t.Errorf("date = %v, want %v", got.Date, saved.Date)
	}
	if got.POSSales != saved.POSSales {
		t.Errorf("pos_sales = %v, want %v", got.POSSales, saved.POSSales)
	}
	if got.TotalSales != saved.TotalSales {
		t.Errorf("total_sales = %v, want %v", got.TotalSales, saved.TotalSales)
	}
	if got.Orders != saved.Orders || got.VisitCount != saved.VisitCount {
		t.Errorf("counters = (%d, %d), want (%d, %d)", got.Orders, got.VisitCount, saved.Orders, saved.VisitCount)
	}
	if got.Note != saved.Note {
		t.Errorf("note = %q, want %q", got.Note, saved.Note)
	}
	if len(got.Quantities) != 2 || got.Quantities["f1"] != 5 || got.Quantities["f2"] != 2 {
		t.Errorf("quantities = %v, want %v", got.Quantities, saved.Quantities)
	}
}

func TestSaveDailyRecordUpsert(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	if err := store.SaveDailyRecord(ctx, testRecord(1)); err != nil {
		t.Fatalf("first save: %v", err)
	}

	updated := testRecord(1)
	updated.POSSales = 200
	updated.Quantities = map[string]int{"f3": 7}
	if err := store.SaveDailyRecord(ctx, updated); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := store.GetDailyRecord(ctx, testDate(1))
	if err != nil {
		t.Fatalf("GetDailyRecord: %v", err)
	}
	if got.POSSales != 200 {
		t.Errorf("pos_sales = %v, want 200", got.POSSales)
	}
	// Item rows are rewritten wholesale, not merged.
	if len(got.Quantities) != 1 || got.Quantities["f3"] != 7 {
		t.Errorf("quantities = %v, want only f3=7", got.Quantities)
	}
}

func TestSaveDailyRecordSkipsZeroQuantities(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	record := testRecord(1)
	record.Quantities = map[string]int{"f1": 3, "f2": 0}
	if err := store.SaveDailyRecord(ctx, record); err != nil {
		t.Fatalf("SaveDailyRecord: %v", err)
	}

	got, err := store.GetDailyRecord(ctx, testDate(1))
	if err != nil {
		t.Fatalf("GetDailyRecord: %v", err)
	}
	if _, ok := got.Quantities["f2"]; ok {
		t.Error("zero-quantity row should not be stored")
	}
}

func TestSaveDailyRecordTotalSalesFallback(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	record := testRecord(1)
	record.TotalSales = 0
	if err := store.SaveDailyRecord(ctx, record); err != nil {
		t.Fatalf("SaveDailyRecord: %v", err)
	}

	got, err := store.GetDailyRecord(ctx, testDate(1))
	if err != nil {
		t.Fatalf("GetDailyRecord: %v", err)
	}
	if got.TotalSales != record.POSSales {
		t.Errorf("total_sales = %v, want POS fallback %v", got.TotalSales, record.POSSales)
	}
}

func TestGetDailyRecordNotFound(t *testing.T) {
	store := createTestStore(t)

	_, err := store.GetDailyRecord(context.Background(), testDate(15))
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteDailyRecord(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	if err := store.SaveDailyRecord(ctx, testRecord(1)); err != nil {
		t.Fatalf("SaveDailyRecord: %v", err)
	}
	if err := store.DeleteDailyRecord(ctx, testDate(1)); err != nil {
		t.Fatalf("DeleteDailyRecord: %v", err)
	}
	if _, err := store.GetDailyRecord(ctx, testDate(1)); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("after delete err = %v, want ErrNotFound", err)
	}

	if err := store.DeleteDailyRecord(ctx, testDate(1)); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("double delete err = %v, want ErrNotFound", err)
	}
}

func TestListDates(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	for _, day := range []int{3, 1, 5, 9} {
		if err := store.SaveDailyRecord(ctx, testRecord(day)); err != nil {
			t.Fatalf("SaveDailyRecord(%d): %v", day, err)
		}
	}

	dates, err := store.ListDates(ctx, service.DateRange{Start: testDate(1), End: testDate(5)})
	if err != nil {
		t.Fatalf("ListDates: %v", err)
	}
	if len(dates) != 3 {
		t.Fatalf("got %d dates, want 3", len(dates))
	}
	// Ascending order.
	for i, want := range []int{1, 3, 5} {
		if !dates[i].Equal(testDate(want)) {
			t.Errorf("dates[%d] = %v, want %v", i, dates[i], testDate(want))
		}
	}

	if _, err := store.ListDates(ctx, service.DateRange{Start: testDate(5), End: testDate(1)}); err == nil {
		t.Error("inverted range should fail")
	}
}

func TestListDatesInMonth(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	if err := store.SaveDailyRecord(ctx, testRecord(31)); err != nil {
		t.Fatalf("SaveDailyRecord: %v", err)
	}
	sept := testRecord(1)
	sept.Date = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	if err := store.SaveDailyRecord(ctx, sept); err != nil {
		t.Fatalf("SaveDailyRecord: %v", err)
	}

	dates, err := store.ListDatesInMonth(ctx, 2025, time.August)
	if err != nil {
		t.Fatalf("ListDatesInMonth: %v", err)
	}
	if len(dates) != 1 || !dates[0].Equal(testDate(31)) {
		t.Errorf("dates = %v, want just 2025-08-31", dates)
	}
}

func TestGetMonthlyTotal(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	r1 := testRecord(1)
	r1.TotalSales = 100
	r2 := testRecord(2)
	r2.TotalSales = 250.5
	for _, r := range []*model.DailyRecord{r1, r2} {
		if err := store.SaveDailyRecord(ctx, r); err != nil {
			t.Fatalf("SaveDailyRecord: %v", err)
		}
	}

	total, err := store.GetMonthlyTotal(ctx, 2025, time.August)
	if err != nil {
		t.Fatalf("GetMonthlyTotal: %v", err)
	}
	if total != 350.5 {
		t.Errorf("total = %v, want 350.5", total)
	}

	empty, err := store.GetMonthlyTotal(ctx, 2024, time.January)
	if err != nil {
		t.Fatalf("GetMonthlyTotal (empty): %v", err)
	}
	if empty != 0 {
		t.Errorf("empty month total = %v, want 0", empty)
	}
}

func TestGetPeriodSummary(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	for day := 1; day <= 3; day++ {
		r := testRecord(day)
		r.TotalSales = float64(day * 100)
		r.Orders = day
		r.VisitCount = day * 2
		if err := store.SaveDailyRecord(ctx, r); err != nil {
			t.Fatalf("SaveDailyRecord: %v", err)
		}
	}

	summary, err := store.GetPeriodSummary(ctx, service.DateRange{Start: testDate(1), End: testDate(3)})
	if err != nil {
		t.Fatalf("GetPeriodSummary: %v", err)
	}
	if len(summary.Days) != 3 {
		t.Fatalf("got %d days, want 3", len(summary.Days))
	}
	if summary.TotalSales != 600 {
		t.Errorf("TotalSales = %v, want 600", summary.TotalSales)
	}
	if summary.TotalOrders != 6 {
		t.Errorf("TotalOrders = %v, want 6", summary.TotalOrders)
	}
	if summary.TotalVisitors != 12 {
		t.Errorf("TotalVisitors = %v, want 12", summary.TotalVisitors)
	}
}

func TestTransactionCommitAndRollback(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if err := tx.SaveDailyRecord(ctx, testRecord(1)); err != nil {
		t.Fatalf("tx save: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, err := store.GetDailyRecord(ctx, testDate(1)); err != nil {
		t.Errorf("committed record missing: %v", err)
	}

	tx, err = store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if err := tx.SaveDailyRecord(ctx, testRecord(2)); err != nil {
		t.Fatalf("tx save: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if _, err := store.GetDailyRecord(ctx, testDate(2)); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("rolled-back record err = %v, want ErrNotFound", err)
	}
}

func TestValidation(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	if err := store.SaveDailyRecord(ctx, nil); err == nil {
		t.Error("nil record should fail")
	}

	bad := testRecord(1)
	bad.POSSales = -5
	if err := store.SaveDailyRecord(ctx, bad); err == nil {
		t.Error("negative POS sales should fail")
	}

	bad = testRecord(1)
	bad.Quantities = map[string]int{"f1": -1}
	if err := store.SaveDailyRecord(ctx, bad); err == nil {
		t.Error("negative quantity should fail")
	}

	//nolint:staticcheck // exercising the nil-context guard deliberately
	if err := store.SaveDailyRecord(nil, testRecord(1)); err == nil {
		t.Error("nil context should fail")
	}
}

func TestMigrateIdempotent(t *testing.T) {
	store := createTestStore(t)
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}
