package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 200
)

// SQLiteRepository implements Repository using SQLite.
//
// It stores one row per published value in the value_history table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite value history repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteRepository: Repository instance ready for use
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Record inserts a new value history entry.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - deviceID: Homie device identifier
//   - nodeID: Node identifier within the device
//   - propertyID: Property identifier within the node
//   - value: Payload exactly as published
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
func (r *SQLiteRepository) Record(ctx context.Context, deviceID, nodeID, propertyID, value string) error {
	if deviceID == "" || nodeID == "" || propertyID == "" {
		return fmt.Errorf("device, node and property ids are required")
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO value_history (device_id, node_id, property_id, value, recorded_at) VALUES (?, ?, ?, ?, ?)",
		deviceID,
		nodeID,
		propertyID,
		value,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting value history: %w", err)
	}

	return nil
}

// Recent returns recent values for a property, ordered newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - deviceID: Homie device identifier
//   - nodeID: Node identifier within the device
//   - propertyID: Property identifier within the node
//   - limit: Maximum entries to return (default 50, max 200)
//
// Returns:
//   - []ValueRecord: Records ordered by recorded_at DESC
//   - error: nil on success, otherwise the underlying query error
func (r *SQLiteRepository) Recent(ctx context.Context, deviceID, nodeID, propertyID string, limit int) ([]ValueRecord, error) {
	if deviceID == "" || nodeID == "" || propertyID == "" {
		return nil, fmt.Errorf("device, node and property ids are required")
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device_id, node_id, property_id, value, recorded_at
		 FROM value_history
		 WHERE device_id = ? AND node_id = ? AND property_id = ?
		 ORDER BY recorded_at DESC, id DESC
		 LIMIT ?`,
		deviceID,
		nodeID,
		propertyID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying value history: %w", err)
	}
	defer rows.Close()

	records := make([]ValueRecord, 0, limit)
	for rows.Next() {
		var rec ValueRecord
		var recordedAt string

		if err := rows.Scan(&rec.ID, &rec.DeviceID, &rec.NodeID, &rec.PropertyID, &rec.Value, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning value history: %w", err)
		}

		timestamp, err := time.Parse(time.RFC3339, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing recorded_at: %w", err)
		}
		rec.RecordedAt = timestamp

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating value history: %w", err)
	}

	return records, nil
}

// Prune deletes history entries older than the given duration.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - olderThan: Duration to retain (entries older than now-olderThan are deleted)
//
// Returns:
//   - int64: Number of rows deleted
//   - error: nil on success, otherwise the underlying database error
func (r *SQLiteRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM value_history WHERE recorded_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting value history: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}
