// Package influxdb provides time-series storage for property telemetry.
//
// It wraps the official influxdb-client-go v2 library with homiecast
// patterns for connection management, metric writing, and health
// monitoring.
//
// # Purpose
//
// Numeric property values published to the MQTT tree (temperatures,
// brightness levels, power readings) are mirrored here for graphing
// and long-term analysis. MQTT retained topics remain the source of
// truth for current state.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WritePropertyMetric("kitchen-hub", "sensor", "temperature", 21.5)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via
// a callback. Connection and health check errors are returned directly.
package influxdb
