//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hadirmu/hadirmu-server/internal/db"
	"github.com/hadirmu/hadirmu-server/internal/models"
	"github.com/hadirmu/hadirmu-server/internal/testutil/testdb"
)

func seedStudent(t *testing.T, h *testdb.DBHandle, nis, name string) string {
	t.Helper()
	var id string
	err := h.DB.QueryRow(`
INSERT INTO students (full_name, nis, password) VALUES ($1, $2, 'rahasia') RETURNING id`, name, nis).Scan(&id)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func countRecords(t *testing.T, h *testdb.DBHandle, studentID string) int {
	t.Helper()
	var n int
	if err := h.DB.QueryRow(`SELECT count(*) FROM attendance WHERE student_id = $1`, studentID).Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestRecordIfAbsentDedup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	studentID := seedStudent(t, h, "2024001", "Budi")
	day := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	recorded, err := db.RecordIfAbsent(ctx, h.DB, studentID, "Math-Mon", day, models.StatusPresent)
	if err != nil {
		t.Fatal(err)
	}
	if !recorded {
		t.Fatal("first scan must record")
	}

	recorded, err = db.RecordIfAbsent(ctx, h.DB, studentID, "Math-Mon", day, models.StatusPresent)
	if err != nil {
		t.Fatal(err)
	}
	if recorded {
		t.Fatal("second scan same day same session must not record")
	}
	if n := countRecords(t, h, studentID); n != 1 {
		t.Fatalf("want exactly 1 record, have %d", n)
	}

	// Different session or different day both record fresh rows.
	if rec, _ := db.RecordIfAbsent(ctx, h.DB, studentID, "Fisika-Mon", day, models.StatusPresent); !rec {
		t.Fatal("different session must record")
	}
	if rec, _ := db.RecordIfAbsent(ctx, h.DB, studentID, "Math-Mon", day.AddDate(0, 0, 1), models.StatusPresent); !rec {
		t.Fatal("next day must record")
	}
}

func TestRecordIfAbsentConcurrentDuplicates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	studentID := seedStudent(t, h, "2024002", "Siti")
	day := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recorded, err := db.RecordIfAbsent(ctx, h.DB, studentID, "Math-Mon", day, models.StatusPresent)
			if err != nil {
				t.Error(err)
				return
			}
			results <- recorded
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for r := range results {
		if r {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("exactly one concurrent scan may win, got %d", wins)
	}
	if n := countRecords(t, h, studentID); n != 1 {
		t.Fatalf("want exactly 1 record, have %d", n)
	}
}

func TestManualOverrideBypassesDedup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	studentID := seedStudent(t, h, "2024003", "Andi")
	day := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	if _, err := db.RecordIfAbsent(ctx, h.DB, studentID, "Math-Mon", day, models.StatusPresent); err != nil {
		t.Fatal(err)
	}
	// Teacher overrides to sick; the row is replaced, not duplicated.
	if err := db.SetStatus(ctx, h.DB, studentID, "Math-Mon", day, models.StatusSick); err != nil {
		t.Fatal(err)
	}
	records, err := db.ListForDay(ctx, h.DB, day, "Math-Mon")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Status != models.StatusSick {
		t.Fatalf("want single sick record, got %+v", records)
	}

	// Explicit delete removes it.
	if err := db.DeleteRecord(ctx, h.DB, studentID, "Math-Mon", day); err != nil {
		t.Fatal(err)
	}
	if n := countRecords(t, h, studentID); n != 0 {
		t.Fatalf("want 0 records after delete, have %d", n)
	}
}
