// Package recorder mirrors published property values into local storage.
//
// Recorder wraps a homie.Transport. Every publish is forwarded to the
// underlying transport unchanged; publishes that land on a property
// value topic are additionally recorded in the value history, and
// numeric payloads are written to the time-series store when one is
// configured.
//
// Attribute topics ($state, $name and friends) and set command topics
// are never recorded. Recording failures are logged and do not affect
// the publish result, so a broken database cannot take the device
// offline.
package recorder
