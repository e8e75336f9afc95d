package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port               string        `mapstructure:"PORT"`
	Env                string        `mapstructure:"ENV"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	DBMaxConns         int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32         `mapstructure:"DB_MIN_CONNS"`
	AutoMigrate        bool          `mapstructure:"AUTO_MIGRATE"`
	AuthMode           string        `mapstructure:"AUTH_MODE"`
	JWTSecret          string        `mapstructure:"JWT_SECRET"`
	RedisAddr          string        `mapstructure:"REDIS_ADDR"`
	RedisPassword      string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB            int           `mapstructure:"REDIS_DB"`
	StatusChannel      string        `mapstructure:"STATUS_CHANNEL"`
	MonitorInterval    time.Duration `mapstructure:"MONITOR_INTERVAL"`
	MonitorMetricsPort string        `mapstructure:"MONITOR_METRICS_PORT"`
	MQTTEnabled        bool          `mapstructure:"MQTT_ENABLED"`
	MQTTBrokerURL      string        `mapstructure:"MQTT_BROKER_URL"`
	MQTTClientID       string        `mapstructure:"MQTT_CLIENT_ID"`
	MQTTTopic          string        `mapstructure:"MQTT_TOPIC"`
	MQTTQoS            int           `mapstructure:"MQTT_QOS"`
	WebhookURLs        []string      `mapstructure:"WEBHOOK_URLS"`
	WebhookSecret      string        `mapstructure:"WEBHOOK_SECRET"`
	WebhookTimeout     time.Duration `mapstructure:"WEBHOOK_TIMEOUT"`
	WebhookMaxRetries  int           `mapstructure:"WEBHOOK_MAX_RETRIES"`
	CORSOrigins        []string      `mapstructure:"CORS_ORIGINS"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 16)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("AUTH_MODE", "") // auto-detect: "" -> inferred from ENV
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("STATUS_CHANNEL", "vitalwatch:status")
	v.SetDefault("MONITOR_INTERVAL", "10s")
	v.SetDefault("MONITOR_METRICS_PORT", "9091")
	v.SetDefault("MQTT_ENABLED", false)
	v.SetDefault("MQTT_BROKER_URL", "tcp://localhost:1883")
	v.SetDefault("MQTT_CLIENT_ID", "vitalwatch-ingest")
	v.SetDefault("MQTT_TOPIC", "vitalwatch/readings/+")
	v.SetDefault("MQTT_QOS", 1)
	v.SetDefault("WEBHOOK_TIMEOUT", "5s")
	v.SetDefault("WEBHOOK_MAX_RETRIES", 3)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("AUTO_MIGRATE")
	v.BindEnv("AUTH_MODE")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("REDIS_ADDR")
	v.BindEnv("REDIS_PASSWORD")
	v.BindEnv("REDIS_DB")
	v.BindEnv("STATUS_CHANNEL")
	v.BindEnv("MONITOR_INTERVAL")
	v.BindEnv("MONITOR_METRICS_PORT")
	v.BindEnv("MQTT_ENABLED")
	v.BindEnv("MQTT_BROKER_URL")
	v.BindEnv("MQTT_CLIENT_ID")
	v.BindEnv("MQTT_TOPIC")
	v.BindEnv("MQTT_QOS")
	v.BindEnv("WEBHOOK_URLS")
	v.BindEnv("WEBHOOK_SECRET")
	v.BindEnv("WEBHOOK_TIMEOUT")
	v.BindEnv("WEBHOOK_MAX_RETRIES")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("LOG_LEVEL")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	if cfg.WebhookURLs == nil {
		urls := v.GetString("WEBHOOK_URLS")
		if urls != "" {
			cfg.WebhookURLs = strings.Split(urls, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active — all requests get admin access.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: Set ENV=production and configure JWT_SECRET for production.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ResolvedAuthMode returns the effective auth mode. If AUTH_MODE is explicitly
// set, it is returned. Otherwise, the mode is inferred:
//   - ENV=development → "development" (no auth, all requests get admin)
//   - Otherwise       → "jwt" (HS256 bearer tokens signed with JWT_SECRET)
func (c *Config) ResolvedAuthMode() string {
	if c.AuthMode != "" {
		return c.AuthMode
	}
	if c.IsDev() {
		return "development"
	}
	return "jwt"
}

// Validate checks that the configuration is safe to run. In non-development
// modes JWT_SECRET must be set so that real token authentication is enforced.
func (c *Config) Validate() error {
	mode := c.ResolvedAuthMode()
	if mode != "development" && mode != "jwt" {
		return fmt.Errorf("AUTH_MODE must be \"development\" or \"jwt\", got %q", mode)
	}
	if mode == "jwt" && c.JWTSecret == "" {
		return fmt.Errorf(
			"JWT_SECRET must be set when AUTH_MODE is \"jwt\" (current ENV=%q). "+
				"Refusing to start without authentication configuration", c.Env)
	}

	if c.MonitorInterval <= 0 {
		return fmt.Errorf("MONITOR_INTERVAL must be positive, got %s", c.MonitorInterval)
	}

	if len(c.WebhookURLs) > 0 && c.WebhookSecret == "" {
		return fmt.Errorf("WEBHOOK_SECRET is required when WEBHOOK_URLS is set")
	}
	if c.WebhookMaxRetries < 0 {
		return fmt.Errorf("WEBHOOK_MAX_RETRIES must not be negative, got %d", c.WebhookMaxRetries)
	}

	if c.MQTTEnabled {
		if c.MQTTBrokerURL == "" {
			return fmt.Errorf("MQTT_BROKER_URL is required when MQTT_ENABLED is true")
		}
		if c.MQTTQoS < 0 || c.MQTTQoS > 2 {
			return fmt.Errorf("MQTT_QOS must be 0, 1, or 2, got %d", c.MQTTQoS)
		}
	}

	return nil
}
