// Package config loads and validates homiecast configuration.
//
// Configuration comes from three layers, later layers overriding earlier:
//
//  1. Hardcoded defaults
//  2. YAML file (configs/config.yaml)
//  3. Environment variables (HOMIECAST_SECTION_KEY)
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := mqtt.Connect(cfg.MQTT, willTopic)
package config
