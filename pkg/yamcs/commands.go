package yamcs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// CommandClient issues discrete commands through the Yamcs commanding API.
// Each command is a single synchronous forward: send request, return the
// response body or an error.
type CommandClient struct {
	baseURL  string
	instance string
	client   *http.Client
}

// NewCommandClient creates a commanding client for the given Yamcs host.
func NewCommandClient(host string, port int, instance string) *CommandClient {
	return &CommandClient{
		baseURL:  fmt.Sprintf("http://%s:%d", host, port),
		instance: instance,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Issue posts a command with the given arguments and returns the raw
// response body.
func (c *CommandClient) Issue(ctx context.Context, command string, args map[string]interface{}) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/api/commanding/instances/%s/commands/%s", c.baseURL, c.instance, command)

	if args == nil {
		args = map[string]interface{}{}
	}
	body, err := json.Marshal(map[string]interface{}{"arguments": args})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal command arguments: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build command request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("command %s failed: %w", command, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read command response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("command %s rejected with status %d: %s", command, resp.StatusCode, respBody)
	}
	return respBody, nil
}

// DriveDistance drives the rover a fixed distance at the given speed.
func (c *CommandClient) DriveDistance(ctx context.Context, distanceM, speedMps float64) (json.RawMessage, error) {
	return c.Issue(ctx, "CMD/DriveDistance", map[string]interface{}{
		"distance_m": distanceM,
		"speed_mps":  speedMps,
	})
}

// TurnAngle turns the rover by the given angle at the given rate.
func (c *CommandClient) TurnAngle(ctx context.Context, angleDeg, rateDegps float64) (json.RawMessage, error) {
	return c.Issue(ctx, "CMD/TurnAngle", map[string]interface{}{
		"angle_deg":  angleDeg,
		"rate_degps": rateDegps,
	})
}

// TakePhoto triggers a single photo capture.
func (c *CommandClient) TakePhoto(ctx context.Context) (json.RawMessage, error) {
	return c.Issue(ctx, "CMD/TakePhoto", nil)
}

// StartTimedCapture starts a timed capture series.
func (c *CommandClient) StartTimedCapture(ctx context.Context, intervalSec, durationSec float64) (json.RawMessage, error) {
	return c.Issue(ctx, "CMD/StartTimedCapture", map[string]interface{}{
		"interval_sec": intervalSec,
		"duration_sec": durationSec,
	})
}

// StopTimedCapture stops a running timed capture series.
func (c *CommandClient) StopTimedCapture(ctx context.Context) (json.RawMessage, error) {
	return c.Issue(ctx, "CMD/StopTimedCapture", nil)
}
