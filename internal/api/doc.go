// Package api provides the HTTP status API for homiecast.
//
// It exposes read-only views of the published device tree and the local
// value history to dashboards and debugging tools. All writes to device
// state go through MQTT set topics; the API never mutates the tree.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
package api
