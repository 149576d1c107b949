package status

import (
	"sync"

	"github.com/gofiber/fiber/v2"
)

// BridgeStatus represents the current link and client state of the bridge.
type BridgeStatus struct {
	TelemetryConnected     bool `json:"telemetry_connected"`
	VideoProducerConnected bool `json:"video_producer_connected"`
	JoystickSessions       int  `json:"joystick_sessions"`
	TelemetryClients       int  `json:"telemetry_clients"`
	VideoClients           int  `json:"video_clients"`
}

// Service tracks bridge status updated by the ingestors and the WebSocket
// endpoints.
type Service struct {
	mu     sync.RWMutex
	status BridgeStatus
}

// NewService creates a status service with everything disconnected.
func NewService() *Service {
	return &Service{}
}

// SetTelemetryConnected records the telemetry stream link state.
func (s *Service) SetTelemetryConnected(connected bool) {
	s.mu.Lock()
	s.status.TelemetryConnected = connected
	s.mu.Unlock()
}

// SetVideoProducerConnected records the frame producer link state.
func (s *Service) SetVideoProducerConnected(connected bool) {
	s.mu.Lock()
	s.status.VideoProducerConnected = connected
	s.mu.Unlock()
}

// AddJoystickSessions adjusts the active joystick session count.
func (s *Service) AddJoystickSessions(delta int) {
	s.mu.Lock()
	s.status.JoystickSessions += delta
	s.mu.Unlock()
}

// AddTelemetryClients adjusts the connected telemetry client count.
func (s *Service) AddTelemetryClients(delta int) {
	s.mu.Lock()
	s.status.TelemetryClients += delta
	s.mu.Unlock()
}

// AddVideoClients adjusts the connected video client count.
func (s *Service) AddVideoClients(delta int) {
	s.mu.Lock()
	s.status.VideoClients += delta
	s.mu.Unlock()
}

// Status returns a copy of the current bridge status.
func (s *Service) Status() BridgeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// GetStatusHandler handles API requests for the bridge status.
func (s *Service) GetStatusHandler(c *fiber.Ctx) error {
	return c.JSON(s.Status())
}
