package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bridge_config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}

func TestLoadConfig(t *testing.T) {
	configContent := `
logging:
  level: "debug"

server:
  http_port: 9090

yamcs:
  host: "10.0.0.186"
  port: 8090
  instance: "leorover"

rover:
  address: "10.0.0.1"
  tc_port: 10051

video:
  tcp_port: 9000

safety:
  max_linear: 10.0
  max_angular: 10.0
  deadzone: 0.02
  joystick_max_hz: 20
`

	cfg, err := LoadConfig(writeConfig(t, configContent))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Server.HTTPPort != 9090 {
		t.Errorf("Expected http_port 9090, got %d", cfg.Server.HTTPPort)
	}
	if cfg.Yamcs.Host != "10.0.0.186" {
		t.Errorf("Expected yamcs host 10.0.0.186, got %s", cfg.Yamcs.Host)
	}
	if cfg.Rover.Address != "10.0.0.1" {
		t.Errorf("Expected rover address 10.0.0.1, got %s", cfg.Rover.Address)
	}
	if cfg.Safety.Deadzone != 0.02 {
		t.Errorf("Expected deadzone 0.02, got %f", cfg.Safety.Deadzone)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	// Minimal config: only the required fields, everything else defaulted
	configContent := `
yamcs:
  host: "localhost"
rover:
  address: "10.0.0.1"
`

	cfg, err := LoadConfig(writeConfig(t, configContent))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.Logging.Level)
	}
	if cfg.Server.HTTPPort != 8080 {
		t.Errorf("Expected default http_port 8080, got %d", cfg.Server.HTTPPort)
	}
	if cfg.Yamcs.Port != 8090 {
		t.Errorf("Expected default yamcs port 8090, got %d", cfg.Yamcs.Port)
	}
	if cfg.Yamcs.Instance != "leorover" {
		t.Errorf("Expected default instance leorover, got %s", cfg.Yamcs.Instance)
	}
	if cfg.Video.TCPPort != 9000 {
		t.Errorf("Expected default video tcp_port 9000, got %d", cfg.Video.TCPPort)
	}
	if cfg.Rover.TCPort != 10051 {
		t.Errorf("Expected default rover tc_port 10051, got %d", cfg.Rover.TCPort)
	}
	if cfg.Safety.MaxLinear != 10.0 || cfg.Safety.MaxAngular != 10.0 {
		t.Errorf("Expected default safety limits 10.0/10.0, got %f/%f",
			cfg.Safety.MaxLinear, cfg.Safety.MaxAngular)
	}
	if cfg.Safety.JoystickMaxHz != 20.0 {
		t.Errorf("Expected default joystick_max_hz 20, got %f", cfg.Safety.JoystickMaxHz)
	}
	if cfg.Rates.TelemetryPushMs != 50 || cfg.Rates.DrivePeriodMs != 20 || cfg.Rates.VideoPushMs != 30 {
		t.Errorf("Unexpected default rates: %+v", cfg.Rates)
	}
}

func TestLoadConfigMissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing yamcs host",
			content: "rover:\n  address: \"10.0.0.1\"\n",
			wantErr: "yamcs.host",
		},
		{
			name:    "missing rover address",
			content: "yamcs:\n  host: \"localhost\"\n",
			wantErr: "rover.address",
		},
		{
			name: "inverted reconnect bounds",
			content: `
yamcs:
  host: "localhost"
  reconnect_min_ms: 60000
  reconnect_max_ms: 1000
rover:
  address: "10.0.0.1"
`,
			wantErr: "reconnect_min_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatalf("Expected error mentioning %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error mentioning %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadConfigBadFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/bridge_config.yaml"); err == nil {
		t.Error("Expected error for missing file, got nil")
	}

	if _, err := LoadConfig(writeConfig(t, "{\tnot yaml")); err == nil {
		t.Error("Expected error for malformed YAML, got nil")
	}
}
