// Package mqtt provides MQTT client connectivity for homiecast.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament set to the Homie device's $state topic,
//     so the broker publishes "lost" on unexpected disconnect
//   - Connection health monitoring
//
// # Architecture
//
// The Homie domain model (internal/homie) is transport-agnostic: it
// publishes through the homie.Transport interface. The Adapter type in
// this package bridges that interface onto the connected Client.
//
//	homie.Device → homie.Publisher → mqtt.Adapter → mqtt.Client → broker
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, device.StateTopic())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	adapter := mqtt.NewAdapter(client)
//	device.PublishConfig()          // via adapter as homie.Transport
//	device.BindSetTopics(adapter)   // via adapter as homie.SetSubscriber
package mqtt
