// Package database provides SQLite connection management and schema
// migrations for homiecast's local persistence.
//
// The database holds the published value history for device properties.
// It is a local cache for inspection and the status API, not the source
// of truth for device state. Current state always lives in the retained
// MQTT topics.
//
// # Connection Management
//
// SQLite supports a single writer. The connection pool is capped at one
// open connection, and WAL mode is enabled by default so readers do not
// block the writer.
//
// # Migrations
//
// Migrations are compiled into the binary as ordered SQL statements and
// tracked in a schema_migrations table. Each migration runs in its own
// transaction, so a failed migration leaves earlier ones committed and
// can be retried after a fix.
package database
