package history

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the value_history table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE value_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			device_id TEXT NOT NULL,
			node_id TEXT NOT NULL,
			property_id TEXT NOT NULL,
			value TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);
		CREATE INDEX idx_value_history_lookup
			ON value_history(device_id, node_id, property_id, recorded_at DESC);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// insertRow inserts a value history row with a specific timestamp.
func insertRow(t *testing.T, db *sql.DB, deviceID, nodeID, propertyID, value string, recordedAt time.Time) {
	t.Helper()

	_, err := db.Exec(
		"INSERT INTO value_history (device_id, node_id, property_id, value, recorded_at) VALUES (?, ?, ?, ?, ?)",
		deviceID,
		nodeID,
		propertyID,
		value,
		recordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("failed to insert value history row: %v", err)
	}
}

// TestRecord verifies value writes and retrieval.
func TestRecord(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if err := repo.Record(ctx, "kitchen-hub", "lamp", "brightness", "80"); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	records, err := repo.Recent(ctx, "kitchen-hub", "lamp", "brightness", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records length = %d, want 1", len(records))
	}

	rec := records[0]
	if rec.DeviceID != "kitchen-hub" || rec.NodeID != "lamp" || rec.PropertyID != "brightness" {
		t.Errorf("record ids = %q/%q/%q, want kitchen-hub/lamp/brightness",
			rec.DeviceID, rec.NodeID, rec.PropertyID)
	}
	if rec.Value != "80" {
		t.Errorf("Value = %q, want %q", rec.Value, "80")
	}
	if rec.RecordedAt.IsZero() {
		t.Error("RecordedAt is zero, want non-zero")
	}
}

// TestRecordValidation verifies required identifiers.
func TestRecordValidation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	tests := []struct {
		name       string
		deviceID   string
		nodeID     string
		propertyID string
	}{
		{"empty device", "", "lamp", "power"},
		{"empty node", "kitchen-hub", "", "power"},
		{"empty property", "kitchen-hub", "lamp", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Record(ctx, tt.deviceID, tt.nodeID, tt.propertyID, "on")
			if err == nil {
				t.Error("Record() expected error for missing id")
			}
		})
	}
}

// TestRecentOrdering verifies newest-first ordering and limit clamping.
func TestRecentOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	insertRow(t, db, "dev", "sensor", "temperature", "20.0", base)
	insertRow(t, db, "dev", "sensor", "temperature", "20.5", base.Add(time.Minute))
	insertRow(t, db, "dev", "sensor", "temperature", "21.0", base.Add(2*time.Minute))
	insertRow(t, db, "dev", "sensor", "humidity", "55", base.Add(3*time.Minute))

	records, err := repo.Recent(ctx, "dev", "sensor", "temperature", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records length = %d, want 3", len(records))
	}

	want := []string{"21.0", "20.5", "20.0"}
	for i, w := range want {
		if records[i].Value != w {
			t.Errorf("records[%d].Value = %q, want %q", i, records[i].Value, w)
		}
	}

	t.Run("limit applied", func(t *testing.T) {
		records, err := repo.Recent(ctx, "dev", "sensor", "temperature", 2)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("records length = %d, want 2", len(records))
		}
		if records[0].Value != "21.0" {
			t.Errorf("records[0].Value = %q, want %q", records[0].Value, "21.0")
		}
	})

	t.Run("zero limit uses default", func(t *testing.T) {
		records, err := repo.Recent(ctx, "dev", "sensor", "temperature", 0)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if len(records) != 3 {
			t.Errorf("records length = %d, want 3", len(records))
		}
	})
}

// TestRecentLimitClamp verifies the maximum limit is enforced.
func TestRecentLimitClamp(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-24 * time.Hour)
	for i := 0; i < maxRecentLimit+10; i++ {
		insertRow(t, db, "dev", "sensor", "temperature", "1", base.Add(time.Duration(i)*time.Second))
	}

	records, err := repo.Recent(ctx, "dev", "sensor", "temperature", maxRecentLimit+10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(records) != maxRecentLimit {
		t.Errorf("records length = %d, want %d", len(records), maxRecentLimit)
	}
}

// TestPrune verifies old entries are deleted.
func TestPrune(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	insertRow(t, db, "dev", "lamp", "power", "true", now.Add(-48*time.Hour))
	insertRow(t, db, "dev", "lamp", "power", "false", now.Add(-30*time.Minute))

	deleted, err := repo.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("Prune() deleted = %d, want 1", deleted)
	}

	records, err := repo.Recent(ctx, "dev", "lamp", "power", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records length = %d, want 1", len(records))
	}
	if records[0].Value != "false" {
		t.Errorf("surviving Value = %q, want %q", records[0].Value, "false")
	}

	t.Run("invalid duration", func(t *testing.T) {
		if _, err := repo.Prune(ctx, 0); err == nil {
			t.Error("Prune() expected error for non-positive duration")
		}
	})
}
