package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "LOOKINGGLASS_CONFIG"

// DefaultPath is used when neither a flag nor EnvConfigPath names a file.
const DefaultPath = "configs/config.yaml"

// Config is the root configuration structure for the looking glass.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Inventory InventoryConfig `yaml:"inventory"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Engine    EngineConfig    `yaml:"engine"`
	Drivers   DriversConfig   `yaml:"drivers"`
}

// SiteConfig identifies this looking glass instance.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// InventoryConfig lists the inventory files (groups, devices, commands).
// Files are merged in order.
type InventoryConfig struct {
	Paths []string `yaml:"paths"`
}

// DatabaseConfig contains SQLite database settings for the audit trail.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
	Panel    PanelConfig      `yaml:"panel"`

	// RateLimit throttles execute requests per client address.
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig is a token bucket per client. A zero PerMinute disables
// limiting.
type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute"`
	Burst     int `yaml:"burst"`
}

// PanelConfig controls the bundled web form served at "/".
type PanelConfig struct {
	Enabled bool `yaml:"enabled"`

	// Dir serves the form from disk instead of the embedded copy.
	Dir string `yaml:"dir"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// InfluxDBConfig contains InfluxDB connection settings for execution metrics.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// EngineConfig contains execution limits.
type EngineConfig struct {
	// MaxConcurrentPerDevice caps simultaneous sessions to one device.
	// 0 means unlimited.
	MaxConcurrentPerDevice int `yaml:"max_concurrent_per_device"`

	// CommandTimeout bounds one command dispatch, in seconds. 0 disables it.
	CommandTimeout int `yaml:"command_timeout"`
}

// DriversConfig contains device driver settings.
type DriversConfig struct {
	SSH SSHDriverConfig `yaml:"ssh"`

	// Kinds lists the driver kinds served by the SSH driver
	// (e.g. ios, junos, eos). The kind "mock" is always available.
	Kinds []string `yaml:"kinds"`

	// MockResponses are canned outputs for the mock driver, keyed by the
	// rendered command.
	MockResponses map[string]string `yaml:"mock_responses"`
}

// SSHDriverConfig contains SSH transport settings.
type SSHDriverConfig struct {
	Port                  int    `yaml:"port"`
	ConnectTimeout        int    `yaml:"connect_timeout"`
	KnownHosts            string `yaml:"known_hosts"`
	InsecureIgnoreHostKey bool   `yaml:"insecure_ignore_host_key"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: LOOKINGGLASS_SECTION_KEY
// For example: LOOKINGGLASS_DATABASE_PATH, LOOKINGGLASS_API_PORT
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// ResolvePath picks the config file: the flag value, then EnvConfigPath,
// then DefaultPath.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(EnvConfigPath); v != "" {
		return v
	}
	return DefaultPath
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "lg-001",
			Name: "Looking Glass",
		},
		Inventory: InventoryConfig{
			Paths: []string{"configs/inventory.yaml"},
		},
		Database: DatabaseConfig{
			Path:        "./data/lookingglass.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "lookingglass",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 90,
				Idle:  60,
			},
			Panel:     PanelConfig{Enabled: true},
			RateLimit: RateLimitConfig{PerMinute: 30, Burst: 5},
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Engine: EngineConfig{
			MaxConcurrentPerDevice: 2,
			CommandTimeout:         60,
		},
		Drivers: DriversConfig{
			SSH: SSHDriverConfig{
				Port:           22,
				ConnectTimeout: 10,
			},
			Kinds: []string{"ios", "iosxr", "junos", "eos", "nxos"},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: LOOKINGGLASS_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Inventory (comma-separated)
	if v := os.Getenv("LOOKINGGLASS_INVENTORY_PATHS"); v != "" {
		cfg.Inventory.Paths = splitList(v)
	}

	// Database
	if v := os.Getenv("LOOKINGGLASS_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("LOOKINGGLASS_MQTT_ENABLED"); v != "" {
		cfg.MQTT.Enabled = parseBool(v, cfg.MQTT.Enabled)
	}
	if v := os.Getenv("LOOKINGGLASS_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("LOOKINGGLASS_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("LOOKINGGLASS_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("LOOKINGGLASS_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("LOOKINGGLASS_API_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = p
		}
	}

	// InfluxDB
	if v := os.Getenv("LOOKINGGLASS_INFLUXDB_ENABLED"); v != "" {
		cfg.InfluxDB.Enabled = parseBool(v, cfg.InfluxDB.Enabled)
	}
	if v := os.Getenv("LOOKINGGLASS_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("LOOKINGGLASS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Drivers
	if v := os.Getenv("LOOKINGGLASS_DRIVERS_SSH_KNOWN_HOSTS"); v != "" {
		cfg.Drivers.SSH.KnownHosts = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if len(c.Inventory.Paths) == 0 {
		errs = append(errs, "inventory.paths requires at least one file")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.API.RateLimit.PerMinute < 0 || c.API.RateLimit.Burst < 0 {
		errs = append(errs, "api.rate_limit values must not be negative")
	}

	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when influxdb is enabled")
	}

	if c.Engine.MaxConcurrentPerDevice < 0 {
		errs = append(errs, "engine.max_concurrent_per_device must not be negative")
	}
	if c.Engine.CommandTimeout < 0 {
		errs = append(errs, "engine.command_timeout must not be negative")
	}

	if c.Drivers.SSH.Port < 1 || c.Drivers.SSH.Port > 65535 {
		errs = append(errs, "drivers.ssh.port must be between 1 and 65535")
	}
	// Devices are only reachable with a host key policy. Skipping checks
	// must be an explicit choice.
	if len(c.Drivers.Kinds) > 0 && c.Drivers.SSH.KnownHosts == "" && !c.Drivers.SSH.InsecureIgnoreHostKey {
		errs = append(errs, "drivers.ssh.known_hosts is required unless drivers.ssh.insecure_ignore_host_key is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetCommandTimeout returns the engine command timeout as a Duration.
func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Engine.CommandTimeout) * time.Second
}

// GetConnectTimeout returns the SSH connect timeout as a Duration.
func (c *Config) GetConnectTimeout() time.Duration {
	return time.Duration(c.Drivers.SSH.ConnectTimeout) * time.Second
}
