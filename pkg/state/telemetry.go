package state

import "sync"

// Telemetry is the latest snapshot of named rover telemetry fields.
// Every field holds the most recently received value for its name, or the
// zero default; fields are independently stale-tolerant.
type Telemetry struct {
	X                  float64 `json:"x"`
	Y                  float64 `json:"y"`
	Yaw                float64 `json:"yaw"`
	LinearSpeed        float64 `json:"linear_speed"`
	AngularSpeed       float64 `json:"angular_speed"`
	DistanceTotal      float64 `json:"distance_total"`
	Battery            float64 `json:"battery"`
	LastPhotoURL       string  `json:"last_photo_url,omitempty"`
	LastPhotoTimeUnix  float64 `json:"last_photo_time_unix,omitempty"`
	LastTimedCSVBucket string  `json:"last_timed_csv_bucket,omitempty"`
	LastTimedCSVObject string  `json:"last_timed_csv_object,omitempty"`
	LastTimedCSVURL    string  `json:"last_timed_csv_url,omitempty"`
}

// TelemetryState is the process-wide telemetry slot. The ingestor is the
// only writer; publishers read copies. All access is synchronized.
type TelemetryState struct {
	mu   sync.RWMutex
	data Telemetry
}

// NewTelemetryState creates a telemetry slot with zero defaults.
func NewTelemetryState() *TelemetryState {
	return &TelemetryState{}
}

// Update applies fn to the telemetry under the write lock. fn must not
// retain the pointer past its return.
func (s *TelemetryState) Update(fn func(*Telemetry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.data)
}

// Snapshot returns a copy of the current telemetry.
func (s *TelemetryState) Snapshot() Telemetry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}
