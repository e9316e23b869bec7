package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "planewar.cfg.json"

// NetworkConfig holds how this peer reaches its opponent.
type NetworkConfig struct {
	Role      string `json:"role" mapstructure:"role"`
	Host      string `json:"host" mapstructure:"host"`
	Port      int    `json:"port" mapstructure:"port"`
	Transport string `json:"transport" mapstructure:"transport"`
}

// BoardConfig holds the grid dimensions and fleet size.
type BoardConfig struct {
	GridSize   int `json:"gridSize" mapstructure:"gridSize"`
	PlaneCount int `json:"planeCount" mapstructure:"planeCount"`
}

// StorageConfig selects the attack journal backend
type StorageConfig struct {
	Type string `json:"type" mapstructure:"type"` // "memory" or "sqlite"
}

// InfluxConfig holds the optional attack telemetry sink settings.
type InfluxConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	URL     string `json:"url" mapstructure:"url"`
	Token   string `json:"token" mapstructure:"token"`
	Org     string `json:"org" mapstructure:"org"`
	Bucket  string `json:"bucket" mapstructure:"bucket"`
}

// GraylogConfig holds the optional GELF log destination.
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./planewarlogs")

	viper.SetDefault("network.role", "host")
	viper.SetDefault("network.host", "localhost")
	viper.SetDefault("network.port", 12345)
	viper.SetDefault("network.transport", "tcp")

	viper.SetDefault("board.gridSize", 15)
	viper.SetDefault("board.planeCount", 3)

	viper.SetDefault("storage.type", "memory")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.url", "http://localhost:8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "planewar")
	viper.SetDefault("influx.bucket", "planewar_attacks")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "planewar")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file. Defaults stay in effect when the
// returned error is non-nil.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// BindFlags registers the command line flags on fs and binds them over the config keys.
// Unset flags leave the file or default value in place.
func BindFlags(fs *pflag.FlagSet) error {
	fs.String("config", ".", "directory containing "+FileName)
	fs.String("role", "host", "host (listen) or join (connect)")
	fs.String("host", "localhost", "host to connect to when joining")
	fs.Int("port", 12345, "port to listen on or connect to")
	fs.String("transport", "tcp", "stream kind: tcp or websocket")
	fs.String("log-level", "info", "log level: debug, info, warn, error")

	bindings := map[string]string{
		"network.role":      "role",
		"network.host":      "host",
		"network.port":      "port",
		"network.transport": "transport",
		"logLevel":          "log-level",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}
	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetNetworkConfig returns network settings.
func GetNetworkConfig() NetworkConfig {
	return NetworkConfig{
		Role:      viper.GetString("network.role"),
		Host:      viper.GetString("network.host"),
		Port:      viper.GetInt("network.port"),
		Transport: viper.GetString("network.transport"),
	}
}

// GetBoardConfig returns board settings.
func GetBoardConfig() BoardConfig {
	return BoardConfig{
		GridSize:   viper.GetInt("board.gridSize"),
		PlaneCount: viper.GetInt("board.planeCount"),
	}
}

// GetStorageConfig returns storage backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
	}
}

// GetInfluxConfig returns the InfluxDB sink configuration.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled: viper.GetBool("influx.enabled"),
		URL:     viper.GetString("influx.url"),
		Token:   viper.GetString("influx.token"),
		Org:     viper.GetString("influx.org"),
		Bucket:  viper.GetString("influx.bucket"),
	}
}

// GetGraylogConfig returns the Graylog destination.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetOTelConfig returns OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}
