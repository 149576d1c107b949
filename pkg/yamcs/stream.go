package yamcs

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/leo-teleop/bridge/pkg/config"
	customlog "github.com/leo-teleop/bridge/pkg/log"
	"github.com/leo-teleop/bridge/pkg/state"
)

// ParameterPaths is the fixed set of telemetry parameters the bridge
// subscribes to.
var ParameterPaths = []string{
	"/leorover/ODOM/x",
	"/leorover/ODOM/y",
	"/leorover/ODOM/yaw",
	"/leorover/ODOM/linear_speed",
	"/leorover/ODOM/angular_speed",
	"/leorover/ODOM/distance_total",
	"/leorover/ODOM/battery",
	"/leorover/ODOM/last_photo_url",
	"/leorover/ODOM/last_photo_time_unix",
	"/leorover/ODOM/last_timed_csv_bucket",
	"/leorover/ODOM/last_timed_csv_object",
	"/leorover/ODOM/last_timed_csv_url",
}

// Ingestor maintains the long-lived parameter stream from Yamcs and writes
// resolved values into the shared telemetry state. It is the only writer
// of that slot.
type Ingestor struct {
	cfg       config.YamcsConfig
	telemetry *state.TelemetryState
	logger    customlog.Logger

	// OnConnectionChange, if set, is called when the stream connects or
	// drops. Used by the status service.
	OnConnectionChange func(connected bool)

	// numericId -> parameter path, valid for the current subscription only
	mapping map[int]string
}

// NewIngestor creates a telemetry ingestor. Run must be called to start it.
func NewIngestor(cfg config.YamcsConfig, telemetry *state.TelemetryState, logger customlog.Logger) *Ingestor {
	return &Ingestor{
		cfg:       cfg,
		telemetry: telemetry,
		logger:    logger,
		mapping:   make(map[int]string),
	}
}

// Run connects to the Yamcs WebSocket API and processes the parameter
// stream until ctx is cancelled. On connection loss it reconnects with
// exponential backoff; each reconnect resubscribes and clears the numeric
// id mapping, since a REPLACE subscription reassigns ids.
func (in *Ingestor) Run(ctx context.Context) {
	wsURL := fmt.Sprintf("ws://%s:%d/api/websocket", in.cfg.Host, in.cfg.Port)

	backoff := time.Duration(in.cfg.ReconnectMinMs) * time.Millisecond
	maxBackoff := time.Duration(in.cfg.ReconnectMaxMs) * time.Millisecond

	for {
		err := in.runConnection(ctx, wsURL)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			in.logger.Warnf("Telemetry stream disconnected: %v. Reconnecting in %s", err, backoff)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// runConnection performs one connect/subscribe/read cycle and returns when
// the connection drops or ctx is cancelled.
func (in *Ingestor) runConnection(ctx context.Context, wsURL string) error {
	in.logger.Infof("Connecting to telemetry stream: %s", wsURL)

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, wsURL, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()

	// Fresh subscription, fresh mapping: REPLACE reassigns numeric ids.
	in.mapping = make(map[int]string)

	if err := conn.WriteJSON(in.subscription()); err != nil {
		return fmt.Errorf("failed to send subscription: %w", err)
	}
	in.logger.Infof("Telemetry subscription sent (%d parameters)", len(ParameterPaths))

	if in.OnConnectionChange != nil {
		in.OnConnectionChange(true)
	}
	defer func() {
		if in.OnConnectionChange != nil {
			in.OnConnectionChange(false)
		}
	}()

	// Close the socket when ctx is cancelled to unblock ReadMessage.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		mt, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if mt != websocket.TextMessage {
			continue
		}
		in.handleMessage(raw)
	}
}

func (in *Ingestor) subscription() subscribeRequest {
	ids := make([]paramName, len(ParameterPaths))
	for i, p := range ParameterPaths {
		ids[i] = paramName{Name: p}
	}
	return subscribeRequest{
		Type: "parameters",
		ID:   1,
		Options: subscribeOptions{
			Instance:      in.cfg.Instance,
			Processor:     "realtime",
			Action:        "REPLACE",
			SendFromCache: true,
			ID:            ids,
		},
	}
}

// handleMessage processes one inbound stream message. Malformed messages
// are logged and skipped, never fatal to the loop.
func (in *Ingestor) handleMessage(raw []byte) {
	var msg streamMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		in.logger.Warnf("Skipping malformed telemetry message: %v", err)
		return
	}
	if msg.Type != "parameters" {
		return
	}

	if len(msg.Data.Mapping) > 0 {
		in.applyMapping(msg.Data.Mapping)
		return
	}
	if len(msg.Data.Values) > 0 {
		in.applyValues(msg.Data.Values)
	}
}

// applyMapping installs/overwrites numericId -> parameter path entries.
func (in *Ingestor) applyMapping(mapping map[string]mappingInfo) {
	for idStr, info := range mapping {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			in.logger.Warnf("Skipping mapping entry with non-numeric id %q", idStr)
			continue
		}
		in.mapping[id] = info.Name
	}
	in.logger.Infof("Parameter mapping updated: %d entries", len(in.mapping))
}

// applyValues resolves each value's numeric id and routes it into the
// telemetry snapshot. Unresolved ids and unextractable values are skipped
// silently.
func (in *Ingestor) applyValues(values []parameterValue) {
	in.telemetry.Update(func(t *state.Telemetry) {
		for _, pv := range values {
			if pv.NumericID == nil {
				continue
			}
			name, ok := in.mapping[*pv.NumericID]
			if !ok {
				continue
			}
			routeValue(t, name, pv.EngValue)
		}
	})
}

// routeValue assigns an engineering value to the snapshot field matching
// the parameter path's trailing component. Representation mismatches are
// skipped.
func routeValue(t *state.Telemetry, name string, eng engValue) {
	num, str, isText, ok := extractScalar(eng)
	if !ok {
		return
	}

	switch {
	case strings.HasSuffix(name, "/x"):
		if !isText {
			t.X = num
		}
	case strings.HasSuffix(name, "/y"):
		if !isText {
			t.Y = num
		}
	case strings.HasSuffix(name, "/yaw"):
		if !isText {
			t.Yaw = num
		}
	case strings.HasSuffix(name, "/linear_speed"):
		if !isText {
			t.LinearSpeed = num
		}
	case strings.HasSuffix(name, "/angular_speed"):
		if !isText {
			t.AngularSpeed = num
		}
	case strings.HasSuffix(name, "/distance_total"):
		if !isText {
			t.DistanceTotal = num
		}
	case strings.HasSuffix(name, "/battery"):
		if !isText {
			t.Battery = num
		}
	case strings.HasSuffix(name, "/last_photo_url"):
		if isText {
			t.LastPhotoURL = str
		}
	case strings.HasSuffix(name, "/last_photo_time_unix"):
		if !isText {
			t.LastPhotoTimeUnix = num
		}
	case strings.HasSuffix(name, "/last_timed_csv_bucket"):
		if isText {
			t.LastTimedCSVBucket = str
		}
	case strings.HasSuffix(name, "/last_timed_csv_object"):
		if isText {
			t.LastTimedCSVObject = str
		}
	case strings.HasSuffix(name, "/last_timed_csv_url"):
		if isText {
			t.LastTimedCSVURL = str
		}
	}
}

// extractScalar pulls a scalar out of the typed value representations:
// doubleValue, then floatValue, then stringValue. First match wins.
func extractScalar(eng engValue) (num float64, str string, isText bool, ok bool) {
	switch {
	case eng.DoubleValue != nil:
		return *eng.DoubleValue, "", false, true
	case eng.FloatValue != nil:
		return *eng.FloatValue, "", false, true
	case eng.StringValue != nil:
		return 0, *eng.StringValue, true, true
	default:
		return 0, "", false, false
	}
}
