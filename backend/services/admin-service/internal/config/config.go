package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "evadmin/backend/libs/config"
	"evadmin/backend/services/admin-service/internal/mockdata"
)

// Data modes.
const (
	ModeMemory   = "memory"
	ModePostgres = "postgres"
)

// Config represents admin service configuration loaded from YAML/env.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"ADMIN_HTTP_PORT"`
	} `yaml:"http"`
	Log struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"log"`
	Data      DataConfig      `yaml:"data"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Live      LiveConfig      `yaml:"live"`
	JWT       struct {
		Secret           string `yaml:"secret" env:"ADMIN_JWT_SECRET"`
		ExpiresInMinutes int    `yaml:"expiresInMinutes" env:"ADMIN_JWT_EXPIRES_MINUTES"`
	} `yaml:"jwt"`
	Admin AdminConfig `yaml:"admin"`
}

// DataConfig selects where records come from. Sizes and Seed only apply in
// memory mode.
type DataConfig struct {
	Mode  string         `yaml:"mode" env:"ADMIN_DATA_MODE"`
	Seed  uint64         `yaml:"seed" env:"ADMIN_DATA_SEED"`
	Sizes mockdata.Sizes `yaml:"sizes" env:"ADMIN_DATA_SIZES"`
}

// DatabaseConfig is the Postgres connection.
type DatabaseConfig struct {
	DSN          string `yaml:"dsn" env:"ADMIN_POSTGRES_DSN"`
	MaxOpenConns int    `yaml:"maxOpenConns" env:"ADMIN_POSTGRES_MAX_OPEN_CONNS"`
}

// RedisConfig enables the page cache, the settings store and the
// cross-instance update channel when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"ADMIN_REDIS_ADDR"`
	Password string        `yaml:"password" env:"ADMIN_REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"ADMIN_REDIS_DB"`
	CacheTTL time.Duration `yaml:"cacheTtl" env:"ADMIN_REDIS_CACHE_TTL"`
	Channel  string        `yaml:"channel" env:"ADMIN_REDIS_CHANNEL"`
}

// MQTTConfig enables the telemetry bridge when Broker is set.
type MQTTConfig struct {
	Broker      string `yaml:"broker" env:"ADMIN_MQTT_BROKER"`
	ClientID    string `yaml:"clientId" env:"ADMIN_MQTT_CLIENT_ID"`
	Username    string `yaml:"username" env:"ADMIN_MQTT_USERNAME"`
	Password    string `yaml:"password" env:"ADMIN_MQTT_PASSWORD"`
	TopicPrefix string `yaml:"topicPrefix" env:"ADMIN_MQTT_TOPIC_PREFIX"`
	QoS         uint8  `yaml:"qos" env:"ADMIN_MQTT_QOS"`
}

// SimulatorConfig drives random record churn in memory mode.
type SimulatorConfig struct {
	Enabled  bool          `yaml:"enabled" env:"ADMIN_SIMULATOR_ENABLED"`
	Interval time.Duration `yaml:"interval" env:"ADMIN_SIMULATOR_INTERVAL"`
	Batch    int           `yaml:"batch" env:"ADMIN_SIMULATOR_BATCH"`
	Entities []string      `yaml:"entities" env:"ADMIN_SIMULATOR_ENTITIES"`
}

// LiveConfig tunes the WebSocket list views.
type LiveConfig struct {
	PageSize            int           `yaml:"pageSize" env:"ADMIN_LIVE_PAGE_SIZE"`
	FlushInterval       time.Duration `yaml:"flushInterval" env:"ADMIN_LIVE_FLUSH_INTERVAL"`
	PingIntervalSeconds int           `yaml:"pingIntervalSeconds" env:"ADMIN_LIVE_PING_INTERVAL"`
	WriteTimeoutSeconds int           `yaml:"writeTimeoutSeconds" env:"ADMIN_LIVE_WRITE_TIMEOUT"`
}

// AdminConfig seeds the console account in memory mode. PasswordHash wins
// over Password when both are set.
type AdminConfig struct {
	Username     string `yaml:"username" env:"ADMIN_USERNAME"`
	Password     string `yaml:"password" env:"ADMIN_PASSWORD"`
	PasswordHash string `yaml:"passwordHash" env:"ADMIN_PASSWORD_HASH"`
	Role         string `yaml:"role" env:"ADMIN_ROLE"`
}

// Load reads configuration using the shared config loader.
func Load() (*Config, error) {
	cfg := defaults()

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{
		Data: DataConfig{
			Mode:  ModeMemory,
			Seed:  20240501,
			Sizes: mockdata.DefaultSizes,
		},
		Redis: RedisConfig{
			CacheTTL: 30 * time.Second,
		},
		MQTT: MQTTConfig{
			ClientID:    "evadmin-admin-service",
			TopicPrefix: "evadmin",
			QoS:         1,
		},
		Simulator: SimulatorConfig{
			Enabled:  true,
			Interval: 3 * time.Second,
			Batch:    5,
		},
		Live: LiveConfig{
			PageSize:            20,
			FlushInterval:       250 * time.Millisecond,
			PingIntervalSeconds: 30,
			WriteTimeoutSeconds: 10,
		},
		Admin: AdminConfig{
			Username: "admin",
			Role:     "admin",
		},
	}
	cfg.HTTP.Port = "8080"
	cfg.JWT.ExpiresInMinutes = 60
	return cfg
}

// Validate checks required fields and normalizes the data mode.
func (c *Config) Validate() error {
	c.Data.Mode = strings.ToLower(strings.TrimSpace(c.Data.Mode))
	switch c.Data.Mode {
	case "":
		c.Data.Mode = ModeMemory
	case ModeMemory, ModePostgres:
	default:
		return fmt.Errorf("config: unknown data mode %q", c.Data.Mode)
	}

	if c.Data.Mode == ModePostgres && strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("config: database DSN is required in postgres mode")
	}
	if c.JWT.Secret == "" {
		return errors.New("config: jwt secret is required")
	}
	if c.JWT.ExpiresInMinutes <= 0 {
		c.JWT.ExpiresInMinutes = 60
	}
	if c.Data.Mode == ModeMemory {
		if strings.TrimSpace(c.Admin.Username) == "" {
			return errors.New("config: admin username is required in memory mode")
		}
		if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
			return errors.New("config: admin password or password hash is required in memory mode")
		}
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("config: mqtt qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	return nil
}

// HTTPAddress ensures we always return host:port formatted string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// JWTExpiration converts configured expiry to duration.
func (c *Config) JWTExpiration() time.Duration {
	if c.JWT.ExpiresInMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.JWT.ExpiresInMinutes) * time.Minute
}

// PingInterval returns websocket ping interval.
func (c *Config) PingInterval() time.Duration {
	if c.Live.PingIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Live.PingIntervalSeconds) * time.Second
}

// WriteTimeout returns websocket write timeout.
func (c *Config) WriteTimeout() time.Duration {
	if c.Live.WriteTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Live.WriteTimeoutSeconds) * time.Second
}

// RedisEnabled reports whether a Redis address is configured.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}

// MQTTEnabled reports whether an MQTT broker is configured.
func (c *Config) MQTTEnabled() bool {
	return strings.TrimSpace(c.MQTT.Broker) != ""
}

// SimulatorEnabled reports whether the simulator should run. It never runs
// against Postgres.
func (c *Config) SimulatorEnabled() bool {
	return c.Simulator.Enabled && c.Data.Mode == ModeMemory
}
