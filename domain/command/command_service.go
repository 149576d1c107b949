package command

import (
	"github.com/gofiber/fiber/v2"

	customlog "github.com/leo-teleop/bridge/pkg/log"
	"github.com/leo-teleop/bridge/pkg/rover"
	"github.com/leo-teleop/bridge/pkg/yamcs"
)

// DriveBody is the request body for POST /api/drive
type DriveBody struct {
	DistanceM float64 `json:"distance_m"`
	SpeedMps  float64 `json:"speed_mps"`
}

// TurnBody is the request body for POST /api/turn
type TurnBody struct {
	AngleDeg  float64 `json:"angle_deg"`
	RateDegps float64 `json:"rate_degps"`
}

// TimedStartBody is the request body for POST /api/timed/start
type TimedStartBody struct {
	IntervalSec float64 `json:"interval_sec"`
	DurationSec float64 `json:"duration_sec"`
}

// Service forwards discrete UI commands to the remote command service, and
// the hard stop to the direct motion channel. Each handler is a single
// synchronous forward: relay the response, or propagate the failure as an
// HTTP error.
type Service struct {
	yamcs  *yamcs.CommandClient
	rover  rover.CommandSender
	logger customlog.Logger
}

// NewService creates a command forwarding service.
func NewService(client *yamcs.CommandClient, sender rover.CommandSender, logger customlog.Logger) *Service {
	return &Service{yamcs: client, rover: sender, logger: logger}
}

// DriveHandler forwards a drive-distance command.
func (s *Service) DriveHandler(c *fiber.Ctx) error {
	var body DriveBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	resp, err := s.yamcs.DriveDistance(c.Context(), body.DistanceM, body.SpeedMps)
	if err != nil {
		s.logger.Errorf("Drive command failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Type("json").Send(resp)
}

// TurnHandler forwards a turn-angle command. The rate defaults to 30 deg/s
// when not provided.
func (s *Service) TurnHandler(c *fiber.Ctx) error {
	var body TurnBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if body.RateDegps == 0 {
		body.RateDegps = 30.0
	}

	resp, err := s.yamcs.TurnAngle(c.Context(), body.AngleDeg, body.RateDegps)
	if err != nil {
		s.logger.Errorf("Turn command failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Type("json").Send(resp)
}

// PhotoHandler forwards a take-photo command.
func (s *Service) PhotoHandler(c *fiber.Ctx) error {
	resp, err := s.yamcs.TakePhoto(c.Context())
	if err != nil {
		s.logger.Errorf("Photo command failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Type("json").Send(resp)
}

// TimedStartHandler forwards a start-timed-capture command. Interval and
// duration must both be positive.
func (s *Service) TimedStartHandler(c *fiber.Ctx) error {
	var body TimedStartBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if body.IntervalSec <= 0 || body.DurationSec <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "interval_sec and duration_sec must be greater than zero",
		})
	}

	resp, err := s.yamcs.StartTimedCapture(c.Context(), body.IntervalSec, body.DurationSec)
	if err != nil {
		s.logger.Errorf("Timed capture start failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Type("json").Send(resp)
}

// TimedStopHandler forwards a stop-timed-capture command.
func (s *Service) TimedStopHandler(c *fiber.Ctx) error {
	resp, err := s.yamcs.StopTimedCapture(c.Context())
	if err != nil {
		s.logger.Errorf("Timed capture stop failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Type("json").Send(resp)
}

// StopHandler issues a hard stop through the direct motion channel.
func (s *Service) StopHandler(c *fiber.Ctx) error {
	if err := s.rover.Stop(); err != nil {
		s.logger.Errorf("Stop command failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "stopped"})
}
