package model

// WebSocket message types
const (
	WSMessageTypeState = "state"
	WSMessageTypeError = "error"
	WSMessageTypePing  = "ping"
	WSMessageTypePong  = "pong"
)

// WSStateMessage announces a pipeline state transition to subscribers.
type WSStateMessage struct {
	Type       string        `json:"type"`
	PipelineID string        `json:"pipelineId"`
	State      PipelineState `json:"state"`
	Error      *string       `json:"error,omitempty"`
}

// WSErrorMessage reports a subscription-level error.
type WSErrorMessage struct {
	Type       string  `json:"type"`
	PipelineID string  `json:"pipelineId"`
	Error      WSError `json:"error"`
}

// WSError carries error details.
type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
