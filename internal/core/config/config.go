// Package config provides configuration for the bulkmsg server and CLI.
package config

import (
	"time"
)

// ServerConfig controls the HTTP and gRPC listeners.
type ServerConfig struct {
	Host           string
	HTTPPort       int
	GRPCPort       int
	RequestTimeout time.Duration
	SessionIdle    time.Duration
}

// FeedConfig locates the customer feed. URL wins over Path when both are set.
type FeedConfig struct {
	URL     string
	Path    string
	Timeout time.Duration
	Retries int
}

// Storage backends for the list slot.
const (
	BackendMemory = "memory"
	BackendDB     = "db"
	BackendRedis  = "redis"
)

// StorageConfig selects and configures the list slot backend.
type StorageConfig struct {
	Backend       string
	DBURL         string
	RedisAddr     string
	RedisPassword string // environment only
	RedisDB       int
	RedisPoolSize int
	SlotKey       string
}

// MessagingConfig controls the simulated composer.
type MessagingConfig struct {
	SendDelay  time.Duration
	DraftDelay time.Duration
	DataDir    string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string
	Format string
}

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig
	Feed      FeedConfig
	Storage   StorageConfig
	Messaging MessagingConfig
	Log       LogConfig
}

// Default returns configuration with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			HTTPPort:       8080,
			GRPCPort:       50051,
			RequestTimeout: 30 * time.Second,
			SessionIdle:    2 * time.Hour,
		},
		Feed: FeedConfig{
			Timeout: 30 * time.Second,
			Retries: 3,
		},
		Storage: StorageConfig{
			Backend:       BackendMemory,
			RedisAddr:     "localhost:6379",
			RedisPoolSize: 10,
			SlotKey:       "customerLists",
		},
		Messaging: MessagingConfig{
			SendDelay:  2 * time.Second,
			DraftDelay: time.Second,
			DataDir:    "./data",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
