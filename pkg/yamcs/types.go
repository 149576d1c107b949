package yamcs

// Wire types for the Yamcs WebSocket API (parameter subscription).

// subscribeRequest is the subscription sent once per connection. Action
// REPLACE drops any prior subscription; sendFromCache delivers current
// values immediately.
type subscribeRequest struct {
	Type    string           `json:"type"`
	ID      int              `json:"id"`
	Options subscribeOptions `json:"options"`
}

type subscribeOptions struct {
	Instance      string      `json:"instance"`
	Processor     string      `json:"processor"`
	Action        string      `json:"action"`
	SendFromCache bool        `json:"sendFromCache"`
	ID            []paramName `json:"id"`
}

type paramName struct {
	Name string `json:"name"`
}

// streamMessage is a single inbound message on the parameter stream. A
// message carries either a numericId mapping or a batch of values.
type streamMessage struct {
	Type string     `json:"type"`
	Data streamData `json:"data"`
}

type streamData struct {
	Mapping map[string]mappingInfo `json:"mapping"`
	Values  []parameterValue       `json:"values"`
}

type mappingInfo struct {
	Name string `json:"name"`
}

type parameterValue struct {
	NumericID *int     `json:"numericId"`
	EngValue  engValue `json:"engValue"`
}

// engValue is the engineering value in one of several typed
// representations. Extraction order: double, float, string — first match
// wins, anything else is skipped.
type engValue struct {
	DoubleValue *float64 `json:"doubleValue"`
	FloatValue  *float64 `json:"floatValue"`
	StringValue *string  `json:"stringValue"`
}
