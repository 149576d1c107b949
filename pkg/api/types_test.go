package api

import "testing"

func TestParseJoystickMsg(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantLinear  float64
		wantAngular float64
		wantErr     bool
	}{
		{"both fields", `{"linear": 0.5, "angular": -1.25}`, 0.5, -1.25, false},
		{"absent angular", `{"linear": 0.5}`, 0.5, 0.0, false},
		{"absent both", `{}`, 0.0, 0.0, false},
		{"malformed linear defaults", `{"linear": "fast", "angular": 2.0}`, 0.0, 2.0, false},
		{"extra fields ignored", `{"linear": 1.0, "angular": 1.0, "turbo": true}`, 1.0, 1.0, false},
		{"unreadable json", `{"linear": `, 0, 0, true},
		{"not an object", `[1, 2]`, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := parseJoystickMsg([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q, got nil", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseJoystickMsg(%q) failed: %v", tt.raw, err)
			}
			if msg.Linear != tt.wantLinear || msg.Angular != tt.wantAngular {
				t.Errorf("parseJoystickMsg(%q) = (%f, %f), want (%f, %f)",
					tt.raw, msg.Linear, msg.Angular, tt.wantLinear, tt.wantAngular)
			}
		})
	}
}
