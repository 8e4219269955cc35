package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePropertyMetric writes a single numeric property value to InfluxDB.
//
// This is the primary method for recording property telemetry. The write
// is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - deviceID: Homie device identifier (e.g., "kitchen-hub")
//   - nodeID: Node identifier within the device (e.g., "sensor")
//   - propertyID: Property identifier within the node (e.g., "temperature")
//   - value: The numeric value to record
//
// Example:
//
//	client.WritePropertyMetric("kitchen-hub", "sensor", "temperature", 21.5)
//	client.WritePropertyMetric("kitchen-hub", "lamp", "brightness", 80)
func (c *Client) WritePropertyMetric(deviceID, nodeID, propertyID string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"property_values",
		map[string]string{
			"device_id":   deviceID,
			"node_id":     nodeID,
			"property_id": propertyID,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit WritePropertyMetric.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
