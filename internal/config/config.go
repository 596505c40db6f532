package config

import (
	"log"
	"os"
	"time"
)

// Config holds all service configuration, read from the environment.
type Config struct {
	PostgresDSN      string
	ElasticURL       string
	HTTPAddr         string
	TickInterval     time.Duration // formation worker polling cadence
	SyncInterval     time.Duration // search-index outbox polling cadence
	RetryInterval    time.Duration // DLQ retry cadence
	NotifyWebhookURL string        // empty = log-only notifier
}

func Load() Config {
	cfg := Config{
		PostgresDSN:      os.Getenv("POSTGRES_DSN"),
		ElasticURL:       getenv("ELASTIC_URL", "http://localhost:9200"),
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		TickInterval:     duration("TICK_INTERVAL", time.Minute),
		SyncInterval:     duration("SYNC_INTERVAL", time.Second),
		RetryInterval:    duration("RETRY_INTERVAL", 30*time.Second),
		NotifyWebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("❌ invalid %s=%q, using default %s", key, v, def)
		return def
	}
	return d
}
