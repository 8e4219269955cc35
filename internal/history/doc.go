// Package history stores the published value history of device properties.
//
// Every value that reaches the MQTT tree can be mirrored here, giving a
// local audit trail that survives broker restarts and works offline.
// The retained MQTT topics remain the source of truth for current state;
// this package only answers "what was published, and when".
//
// The Repository interface allows swapping the SQLite implementation for
// a mock in tests.
package history
