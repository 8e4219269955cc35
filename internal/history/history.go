package history

import (
	"context"
	"time"
)

// ValueRecord represents a single published property value.
type ValueRecord struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// DeviceID is the Homie device identifier.
	DeviceID string `json:"device_id"`

	// NodeID is the node identifier within the device.
	NodeID string `json:"node_id"`

	// PropertyID is the property identifier within the node.
	PropertyID string `json:"property_id"`

	// Value is the payload exactly as published to the value topic.
	Value string `json:"value"`

	// RecordedAt is the timestamp of the publish (UTC).
	RecordedAt time.Time `json:"recorded_at"`
}

// Repository stores and retrieves published property values.
//
// Implementations must be thread-safe and use UTC timestamps.
type Repository interface {
	// Record stores a published property value.
	Record(ctx context.Context, deviceID, nodeID, propertyID, value string) error

	// Recent returns recent values for a property, ordered newest first.
	// Implementations may clamp the limit.
	Recent(ctx context.Context, deviceID, nodeID, propertyID string, limit int) ([]ValueRecord, error)

	// Prune deletes records older than the given duration and returns
	// the number of rows removed.
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}
