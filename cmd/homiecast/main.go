// homiecast - Homie MQTT device publisher
//
// This is the main entry point for the homiecast application. It
// publishes a Homie 4.0 device tree to an MQTT broker, accepts set
// commands on settable properties, and mirrors published values into
// local history and an optional time-series store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/homiecast/core/internal/api"
	"github.com/homiecast/core/internal/history"
	"github.com/homiecast/core/internal/homie"
	"github.com/homiecast/core/internal/infrastructure/config"
	"github.com/homiecast/core/internal/infrastructure/database"
	"github.com/homiecast/core/internal/infrastructure/influxdb"
	"github.com/homiecast/core/internal/infrastructure/logging"
	"github.com/homiecast/core/internal/infrastructure/mqtt"
	"github.com/homiecast/core/internal/recorder"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting homiecast",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	historyRepo := history.NewSQLiteRepository(db.DB)

	// The Last Will topic must be known before the device exists, so
	// the id is validated here the same way NewDevice validates it.
	deviceID, err := homie.ValidateID(cfg.Device.ID)
	if err != nil {
		return fmt.Errorf("validating device id: %w", err)
	}
	baseTopic := cfg.Device.BaseTopic
	if baseTopic == "" {
		baseTopic = homie.DefaultBaseTopic
	}
	willTopic := fmt.Sprintf("%s/%s/$state", baseTopic, deviceID)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT, willTopic)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Connect to InfluxDB (optional)
	var metrics recorder.MetricWriter
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		metrics = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Build the device tree on a recording transport so every published
	// value lands in history (and the time-series store when enabled).
	adapter := mqtt.NewAdapter(mqttClient)
	transport := recorder.New(adapter, baseTopic, deviceID, historyRepo, metrics, log)

	device, err := buildDevice(transport, baseTopic, deviceID, cfg.Device.Name, log)
	if err != nil {
		return fmt.Errorf("building device: %w", err)
	}

	// Bind set topics before announcing the tree so no command window
	// is missed, then broadcast the full config (init -> ready).
	if err := device.BindSetTopics(adapter); err != nil {
		return fmt.Errorf("binding set topics: %w", err)
	}
	if err := device.PublishConfig(); err != nil {
		return fmt.Errorf("publishing device config: %w", err)
	}
	log.Info("device published",
		"device", device.ID(),
		"topic", willTopic,
		"nodes", len(device.Nodes()),
	)

	// Rebroadcast the tree after a broker reconnect. Retained topics
	// survive broker restarts, but a fresh broker needs the full tree.
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected, rebroadcasting device config")
		if pubErr := device.PublishConfig(); pubErr != nil {
			log.Error("rebroadcasting device config", "error", pubErr)
		}
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Start the status API (optional)
	if cfg.API.Enabled {
		apiServer, apiErr := api.New(api.Deps{
			Config:  cfg.API,
			Logger:  log,
			Device:  device,
			History: historyRepo,
			Version: version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("status API disabled")
	}

	log.Info("homiecast running, press Ctrl+C to stop")
	<-ctx.Done()

	// Publish a clean disconnect before the deferred transport teardown
	// so controllers see "disconnected" instead of the Last Will "lost".
	log.Info("shutting down")
	if err := device.Disconnect(); err != nil {
		log.Error("publishing disconnected state", "error", err)
	}

	return nil
}

// buildDevice constructs the published device tree.
//
// The tree is a reference layout: a dimmable colour lamp and an
// environment sensor. Settable properties confirm applied commands by
// republishing the new value, per the convention's settable workflow.
func buildDevice(transport homie.Transport, baseTopic, deviceID, deviceName string, log *logging.Logger) (*homie.Device, error) {
	device, err := homie.NewDevice(transport, baseTopic, deviceID, deviceName)
	if err != nil {
		return nil, err
	}

	lamp, err := device.AddNode("lamp", "Ceiling Lamp", "light")
	if err != nil {
		return nil, err
	}

	power, err := lamp.AddBoolean("power", homie.PropertyOptions{Name: "Power"})
	if err != nil {
		return nil, err
	}
	power.Subscribe(func(value bool) {
		log.Info("lamp power command", "value", value)
		if err := power.Update(value); err != nil {
			log.Error("confirming lamp power", "error", err)
		}
	})

	brightness, err := lamp.AddInteger("brightness", &homie.IntRange{Min: 0, Max: 100}, homie.PropertyOptions{
		Name: "Brightness",
		Unit: "%",
	})
	if err != nil {
		return nil, err
	}
	brightness.Subscribe(func(value int64) {
		log.Info("lamp brightness command", "value", value)
		if err := brightness.Update(value); err != nil {
			log.Error("confirming lamp brightness", "error", err)
		}
	})

	color, err := lamp.AddRGB("color", homie.PropertyOptions{Name: "Colour"})
	if err != nil {
		return nil, err
	}
	color.Subscribe(func(value homie.RGB) {
		log.Info("lamp colour command", "value", value.String())
		if err := color.Update(value); err != nil {
			log.Error("confirming lamp colour", "error", err)
		}
	})

	mode, err := lamp.AddEnum("mode", []string{"auto", "manual", "night"}, homie.PropertyOptions{Name: "Mode"})
	if err != nil {
		return nil, err
	}
	mode.Subscribe(func(value string) {
		log.Info("lamp mode command", "value", value)
		if err := mode.Update(value); err != nil {
			log.Error("confirming lamp mode", "error", err)
		}
	})

	sensor, err := device.AddNode("sensor", "Environment Sensor", "climate")
	if err != nil {
		return nil, err
	}
	if _, err := sensor.AddFloat("temperature", &homie.FloatRange{Min: -40, Max: 85}, homie.PropertyOptions{
		Name: "Temperature",
		Unit: "°C",
	}); err != nil {
		return nil, err
	}
	if _, err := sensor.AddInteger("humidity", &homie.IntRange{Min: 0, Max: 100}, homie.PropertyOptions{
		Name: "Humidity",
		Unit: "%",
	}); err != nil {
		return nil, err
	}

	return device, nil
}

// getConfigPath returns the configuration file path.
// Set via HOMIECAST_CONFIG, falling back to the default location.
func getConfigPath() string {
	if path := os.Getenv("HOMIECAST_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
