package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/felt-quakes/internal/geo"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// ReferencePoint is where felt distances are measured from (Los Angeles).
// It is fixed for this service and injected into the catalog at startup.
var ReferencePoint = geo.Point{Lat: 34.0522, Lon: -118.2437}

// ReferenceName labels the reference point in rendered output.
const ReferenceName = "LA"

// Config holds all service settings, populated from environment variables.
type Config struct {
	CSVPath         string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// ReloadInterval re-reads the CSV on a schedule. Zero loads once.
	ReloadInterval time.Duration

	// Kafka publishing of compiled events.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	reloadInterval, err := parseReloadInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		CSVPath:         sharedcfg.EnvOrDefault("QUAKE_CSV_PATH", "data/all_month.csv"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		ReloadInterval:  reloadInterval,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "felt-earthquakes"),
	}

	if cfg.CSVPath == "" {
		return nil, errors.New("QUAKE_CSV_PATH is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is empty")
	}

	return cfg, nil
}

func parseReloadInterval() (time.Duration, error) {
	s := sharedcfg.EnvOrDefault("RELOAD_INTERVAL", "0s")
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid RELOAD_INTERVAL %q", s)
	}
	return d, nil
}
