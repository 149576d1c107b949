package api

import "encoding/json"

// --- Data Structures for WebSocket Messages ---

// JoystickMsg represents one operator input sample.
type JoystickMsg struct {
	Linear  float64 `json:"linear"`
	Angular float64 `json:"angular"`
}

// parseJoystickMsg decodes a joystick message. Absent or malformed fields
// default to 0.0; an error is returned only when the JSON itself is
// unreadable.
func parseJoystickMsg(raw []byte) (JoystickMsg, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return JoystickMsg{}, err
	}

	var msg JoystickMsg
	if v, ok := fields["linear"]; ok {
		json.Unmarshal(v, &msg.Linear)
	}
	if v, ok := fields["angular"]; ok {
		json.Unmarshal(v, &msg.Angular)
	}
	return msg, nil
}
