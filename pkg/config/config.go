package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the bridge configuration loaded from bridge_config.yaml
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	Yamcs   YamcsConfig   `yaml:"yamcs"`
	Rover   RoverConfig   `yaml:"rover"`
	Video   VideoConfig   `yaml:"video"`
	Safety  SafetyConfig  `yaml:"safety"`
	Rates   RatesConfig   `yaml:"rates"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogPath string `yaml:"log_path,omitempty"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPPort int `yaml:"http_port"`
}

// YamcsConfig holds the remote command-and-telemetry service settings
type YamcsConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Instance string `yaml:"instance"`
	// Reconnect backoff bounds for the telemetry stream, in milliseconds
	ReconnectMinMs int `yaml:"reconnect_min_ms"`
	ReconnectMaxMs int `yaml:"reconnect_max_ms"`
}

// RoverConfig holds the low-latency UDP motion channel settings
type RoverConfig struct {
	Address string `yaml:"address"`
	TCPort  int    `yaml:"tc_port"`
}

// VideoConfig holds the frame-producer ingestion socket settings
type VideoConfig struct {
	TCPPort int `yaml:"tcp_port"`
}

// SafetyConfig holds the joystick safety envelope
type SafetyConfig struct {
	MaxLinear     float64 `yaml:"max_linear"`
	MaxAngular    float64 `yaml:"max_angular"`
	Deadzone      float64 `yaml:"deadzone"`
	JoystickMaxHz float64 `yaml:"joystick_max_hz"`
}

// RatesConfig holds the fixed publish/dispatch cadences in milliseconds
type RatesConfig struct {
	TelemetryPushMs int `yaml:"telemetry_push_ms"`
	DrivePeriodMs   int `yaml:"drive_period_ms"`
	VideoPushMs     int `yaml:"video_push_ms"`
}

// LoadConfig loads the bridge configuration from the specified file path,
// applies defaults and validates required fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file '%s': %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file '%s': %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills in defaults for fields that are optional in the file.
func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Yamcs.Port == 0 {
		c.Yamcs.Port = 8090
	}
	if c.Yamcs.Instance == "" {
		c.Yamcs.Instance = "leorover"
	}
	if c.Yamcs.ReconnectMinMs == 0 {
		c.Yamcs.ReconnectMinMs = 1000
	}
	if c.Yamcs.ReconnectMaxMs == 0 {
		c.Yamcs.ReconnectMaxMs = 30000
	}
	if c.Rover.TCPort == 0 {
		c.Rover.TCPort = 10051
	}
	if c.Video.TCPPort == 0 {
		c.Video.TCPPort = 9000
	}
	if c.Safety.MaxLinear == 0 {
		c.Safety.MaxLinear = 10.0
	}
	if c.Safety.MaxAngular == 0 {
		c.Safety.MaxAngular = 10.0
	}
	if c.Safety.Deadzone == 0 {
		c.Safety.Deadzone = 0.02
	}
	if c.Safety.JoystickMaxHz == 0 {
		c.Safety.JoystickMaxHz = 20.0
	}
	if c.Rates.TelemetryPushMs == 0 {
		c.Rates.TelemetryPushMs = 50
	}
	if c.Rates.DrivePeriodMs == 0 {
		c.Rates.DrivePeriodMs = 20
	}
	if c.Rates.VideoPushMs == 0 {
		c.Rates.VideoPushMs = 30
	}
}

// validate checks required fields that have no sensible default.
func (c *Config) validate() error {
	if c.Yamcs.Host == "" {
		return fmt.Errorf("missing required field in config: yamcs.host")
	}
	if c.Rover.Address == "" {
		return fmt.Errorf("missing required field in config: rover.address")
	}
	if c.Yamcs.ReconnectMinMs > c.Yamcs.ReconnectMaxMs {
		return fmt.Errorf("invalid config: yamcs.reconnect_min_ms (%d) exceeds yamcs.reconnect_max_ms (%d)",
			c.Yamcs.ReconnectMinMs, c.Yamcs.ReconnectMaxMs)
	}
	if c.Safety.MaxLinear < 0 || c.Safety.MaxAngular < 0 {
		return fmt.Errorf("invalid config: safety limits must be non-negative")
	}
	return nil
}
