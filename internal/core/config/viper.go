package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps CLI flags onto configuration keys.
var flagKeys = map[string]string{
	"host":          "server.host",
	"http-port":     "server.http_port",
	"grpc-port":     "server.grpc_port",
	"feed-url":      "feed.url",
	"feed-path":     "feed.path",
	"storage":       "storage.backend",
	"db-url":        "storage.db_url",
	"redis-addr":    "storage.redis_addr",
	"data-dir":      "messaging.data_dir",
	"log-level":     "log.level",
	"log-format":    "log.format",
	"send-delay":    "messaging.send_delay",
	"draft-delay":   "messaging.draft_delay",
	"feed-retries":  "feed.retries",
	"feed-timeout":  "feed.timeout",
	"session-idle":  "server.session_idle",
	"slot-key":      "storage.slot_key",
	"redis-db":      "storage.redis_db",
	"request-timeout": "server.request_timeout",
}

// secretKeys may only come from the environment.
var secretKeys = []string{"storage.redis_password"}

// Load reads configuration with precedence flags > environment > file >
// defaults. Environment variables use the BULKMSG_ prefix with dots
// replaced by underscores (BULKMSG_SERVER_HTTP_PORT). flags may be nil;
// only flags the user changed override lower layers.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("BULKMSG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           v.GetString("server.host"),
			HTTPPort:       v.GetInt("server.http_port"),
			GRPCPort:       v.GetInt("server.grpc_port"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
			SessionIdle:    v.GetDuration("server.session_idle"),
		},
		Feed: FeedConfig{
			URL:     v.GetString("feed.url"),
			Path:    v.GetString("feed.path"),
			Timeout: v.GetDuration("feed.timeout"),
			Retries: v.GetInt("feed.retries"),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(v.GetString("storage.backend")),
			DBURL:         v.GetString("storage.db_url"),
			RedisAddr:     v.GetString("storage.redis_addr"),
			RedisPassword: v.GetString("storage.redis_password"),
			RedisDB:       v.GetInt("storage.redis_db"),
			RedisPoolSize: v.GetInt("storage.redis_pool_size"),
			SlotKey:       v.GetString("storage.slot_key"),
		},
		Messaging: MessagingConfig{
			SendDelay:  v.GetDuration("messaging.send_delay"),
			DraftDelay: v.GetDuration("messaging.draft_delay"),
			DataDir:    v.GetString("messaging.data_dir"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.grpc_port", d.Server.GRPCPort)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)
	v.SetDefault("server.session_idle", d.Server.SessionIdle)
	v.SetDefault("feed.url", d.Feed.URL)
	v.SetDefault("feed.path", d.Feed.Path)
	v.SetDefault("feed.timeout", d.Feed.Timeout)
	v.SetDefault("feed.retries", d.Feed.Retries)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.db_url", d.Storage.DBURL)
	v.SetDefault("storage.redis_addr", d.Storage.RedisAddr)
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", d.Storage.RedisDB)
	v.SetDefault("storage.redis_pool_size", d.Storage.RedisPoolSize)
	v.SetDefault("storage.slot_key", d.Storage.SlotKey)
	v.SetDefault("messaging.send_delay", d.Messaging.SendDelay)
	v.SetDefault("messaging.draft_delay", d.Messaging.DraftDelay)
	v.SetDefault("messaging.data_dir", d.Messaging.DataDir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// validateConfig checks ports, durations and backend settings.
func validateConfig(cfg *Config) error {
	for name, port := range map[string]int{"server.http_port": cfg.Server.HTTPPort, "server.grpc_port": cfg.Server.GRPCPort} {
		if port < 0 || port > 65535 {
			return fmt.Errorf("%s must be between 0 and 65535, got %d", name, port)
		}
	}
	if cfg.Server.HTTPPort != 0 && cfg.Server.HTTPPort == cfg.Server.GRPCPort {
		return fmt.Errorf("server.http_port and server.grpc_port must differ, both %d", cfg.Server.HTTPPort)
	}
	if cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Feed.Timeout <= 0 {
		return fmt.Errorf("feed.timeout must be positive, got %v", cfg.Feed.Timeout)
	}
	if cfg.Feed.Retries < 0 {
		return fmt.Errorf("feed.retries must not be negative, got %d", cfg.Feed.Retries)
	}
	if cfg.Messaging.SendDelay < 0 || cfg.Messaging.DraftDelay < 0 {
		return fmt.Errorf("messaging delays must not be negative")
	}

	switch cfg.Storage.Backend {
	case BackendMemory:
	case BackendDB:
		if cfg.Storage.DBURL == "" {
			return fmt.Errorf("storage.db_url required for the db backend")
		}
	case BackendRedis:
		if cfg.Storage.RedisAddr == "" {
			return fmt.Errorf("storage.redis_addr required for the redis backend")
		}
	default:
		return fmt.Errorf("storage.backend must be one of memory, db, redis, got %q", cfg.Storage.Backend)
	}

	switch cfg.Log.Format {
	case "json", "text", "console":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", cfg.Log.Format)
	}
	return nil
}

// validateNoSecretsInConfig keeps secrets out of config files.
func validateNoSecretsInConfig(v *viper.Viper) error {
	for _, key := range secretKeys {
		if v.InConfig(key) {
			return fmt.Errorf("%s not allowed in config files (use BULKMSG_%s)", key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
		}
	}
	return nil
}
