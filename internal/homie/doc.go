// Package homie implements the Homie MQTT convention device model.
//
// This package manages:
//   - The device → node → property hierarchy with $-prefixed attributes
//   - Typed properties (string, integer, float, boolean, enum, color)
//   - Config broadcasting and deduplicated value publishing
//   - Inbound "set" command delivery to registered subscribers
//
// # Architecture
//
// The model is a thin mapping layer between in-memory objects and
// string-keyed MQTT topics. It never touches the network itself: all
// publishing goes through the Transport interface, implemented by the
// MQTT client wrapper (or a recording fake in tests).
//
//	Device → Node → Property → Publisher → Transport (MQTT)
//	Transport → Property.HandleSet → registered subscriber
//
// # Topic Structure
//
// Every entity's publisher is scoped by concatenating parent segments with
// its own id, separated by "/". Attribute sub-topics carry a "$" prefix:
//
//	homie/kitchen-hub/$state
//	homie/kitchen-hub/lamp/$properties
//	homie/kitchen-hub/lamp/brightness            (value topic)
//	homie/kitchen-hub/lamp/brightness/$settable
//	homie/kitchen-hub/lamp/brightness/set        (inbound commands)
//
// # Thread Safety
//
// Property value updates and inbound set delivery may run on different
// goroutines (paho invokes handlers on its own routines). Each property
// guards its last value and subscriber slot with a mutex. Tree
// construction (adding nodes and properties) is expected to happen from a
// single goroutine during device build.
package homie
