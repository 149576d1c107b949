package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/leo-teleop/bridge/domain/command"
	"github.com/leo-teleop/bridge/domain/status"
	"github.com/leo-teleop/bridge/domain/teleop"
	wsapi "github.com/leo-teleop/bridge/pkg/api"
	"github.com/leo-teleop/bridge/pkg/config"
	customlog "github.com/leo-teleop/bridge/pkg/log"
	"github.com/leo-teleop/bridge/pkg/rover"
	"github.com/leo-teleop/bridge/pkg/state"
	"github.com/leo-teleop/bridge/pkg/video"
	"github.com/leo-teleop/bridge/pkg/yamcs"
)

func main() {
	configPath := os.Getenv("BRIDGE_CONFIG")
	if configPath == "" {
		configPath = "config/bridge_config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v\n", err)
	}

	logger, err := customlog.NewLogrusLogger(cfg.Logging.Level, cfg.Logging.LogPath)
	if err != nil {
		stdlog.Fatalf("Failed to create logger: %v\n", err)
	}

	// Shared state slots
	telemetry := state.NewTelemetryState()
	frames := state.NewFrameStore()
	statusService := status.NewService()

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Low-latency motion channel to the rover
	sender, err := rover.NewUDPSender(fmt.Sprintf("%s:%d", cfg.Rover.Address, cfg.Rover.TCPort))
	if err != nil {
		logger.Fatalf("Failed to open rover motion channel: %v", err)
	}
	defer sender.Close()

	// Telemetry ingestion from Yamcs
	ingestor := yamcs.NewIngestor(cfg.Yamcs, telemetry, logger)
	ingestor.OnConnectionChange = statusService.SetTelemetryConnected
	go ingestor.Run(rootCtx)

	// Frame ingestion from the video relay
	videoIngestor := video.NewIngestor(frames, logger)
	videoIngestor.OnProducerChange = statusService.SetVideoProducerConnected
	if err := videoIngestor.Listen(cfg.Video.TCPPort); err != nil {
		logger.Fatalf("Failed to start video ingestion: %v", err)
	}
	go videoIngestor.Run(rootCtx)

	// Command forwarding
	commandClient := yamcs.NewCommandClient(cfg.Yamcs.Host, cfg.Yamcs.Port, cfg.Yamcs.Instance)
	commandService := command.NewService(commandClient, sender, logger)

	app := fiber.New(fiber.Config{
		AppName:      "LeoRover Teleop Bridge",
		ErrorHandler: customErrorHandler,
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "online",
			"service": "leorover teleop bridge",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	apiGroup := app.Group("/api")
	apiGroup.Post("/drive", commandService.DriveHandler)
	apiGroup.Post("/turn", commandService.TurnHandler)
	apiGroup.Post("/photo", commandService.PhotoHandler)
	apiGroup.Post("/timed/start", commandService.TimedStartHandler)
	apiGroup.Post("/timed/stop", commandService.TimedStopHandler)
	apiGroup.Post("/stop", commandService.StopHandler)
	apiGroup.Get("/status", statusService.GetStatusHandler)

	telemetryInterval := time.Duration(cfg.Rates.TelemetryPushMs) * time.Millisecond
	drivePeriod := time.Duration(cfg.Rates.DrivePeriodMs) * time.Millisecond
	videoInterval := time.Duration(cfg.Rates.VideoPushMs) * time.Millisecond

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/telemetry", websocket.New(func(conn *websocket.Conn) {
		statusService.AddTelemetryClients(1)
		defer statusService.AddTelemetryClients(-1)
		wsapi.TelemetryWebSocketHandler(conn, logger, telemetry, telemetryInterval)
	}))
	app.Get("/ws/joystick", websocket.New(func(conn *websocket.Conn) {
		statusService.AddJoystickSessions(1)
		defer statusService.AddJoystickSessions(-1)
		session := teleop.NewSession(sender, cfg.Safety, drivePeriod, logger)
		wsapi.JoystickWebSocketHandler(conn, logger, session)
	}))
	app.Get("/ws/video", websocket.New(func(conn *websocket.Conn) {
		statusService.AddVideoClients(1)
		defer statusService.AddVideoClients(-1)
		wsapi.VideoWebSocketHandler(conn, logger, frames, videoInterval)
	}))

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
		logger.Infof("Server starting on %s", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("Shutting down...")

	// Stop the ingestors before the HTTP server
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Infof("Server exited properly")
}

// customErrorHandler returns errors as JSON with the appropriate status
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
