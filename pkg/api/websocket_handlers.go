package api

import (
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/leo-teleop/bridge/domain/teleop"
	customlog "github.com/leo-teleop/bridge/pkg/log"
	"github.com/leo-teleop/bridge/pkg/state"
)

// TelemetryWebSocketHandler pushes the current telemetry snapshot to one
// client at a fixed cadence. The loop ends on the first send failure.
func TelemetryWebSocketHandler(conn *websocket.Conn, logger customlog.Logger, telemetry *state.TelemetryState, interval time.Duration) {
	logger.Infof("Telemetry WebSocket connected: %s", conn.RemoteAddr())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.WriteJSON(telemetry.Snapshot()); err != nil {
			logger.Infof("Telemetry WS connection closed: %v", err)
			break
		}
	}
	logger.Infof("Telemetry WebSocket disconnected: %s", conn.RemoteAddr())
}

// VideoWebSocketHandler forwards the latest video frame to one client at a
// fixed cadence. Ticks with no frame present send nothing. The loop ends
// on the first send failure.
func VideoWebSocketHandler(conn *websocket.Conn, logger customlog.Logger, frames *state.FrameStore, interval time.Duration) {
	logger.Infof("Video WebSocket connected: %s", conn.RemoteAddr())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		frame, ok := frames.Latest()
		if !ok {
			continue
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			logger.Infof("Video WS connection closed: %v", err)
			break
		}
	}
	logger.Infof("Video WebSocket disconnected: %s", conn.RemoteAddr())
}

// JoystickWebSocketHandler runs the intake side of one joystick session.
// The session's dispatch loop is started here and the session is closed on
// the way out, which guarantees the stop command.
func JoystickWebSocketHandler(conn *websocket.Conn, logger customlog.Logger, session *teleop.Session) {
	logger.Infof("Joystick WebSocket connected: %s", conn.RemoteAddr())
	session.Start()
	defer session.Close()

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("Joystick WS read error: %v", err)
			} else {
				logger.Infof("Joystick WS connection closed: %v", err)
			}
			break
		}

		if mt != websocket.TextMessage {
			logger.Infof("Ignoring non-text joystick message type: %d", mt)
			continue
		}

		parsed, err := parseJoystickMsg(msg)
		if err != nil {
			logger.Warnf("Skipping malformed joystick message: %v. Message: %s", err, string(msg))
			continue
		}
		session.Handle(parsed.Linear, parsed.Angular)
	}
	logger.Infof("Joystick WebSocket disconnected: %s", conn.RemoteAddr())
}
