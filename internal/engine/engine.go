package engine

import "time"

// State is the lifecycle state of an execution graph.
type State string

const (
	StateNull    State = "null"
	StateReady   State = "ready"
	StatePaused  State = "paused"
	StatePlaying State = "playing"
)

// MessageKind discriminates bus messages.
type MessageKind string

const (
	MessageEos          MessageKind = "eos"
	MessageError        MessageKind = "error"
	MessageWarning      MessageKind = "warning"
	MessageStateChanged MessageKind = "state-changed"
	MessageAsyncDone    MessageKind = "async-done"
)

// PipelineSource is the Source value a graph uses for bus messages that
// concern the graph as a whole rather than a single element.
const PipelineSource = "pipeline"

// BusMessage is an asynchronous notification emitted while a graph runs.
// Detail is set for error and warning messages; Old/New are set for
// state-changed messages.
type BusMessage struct {
	Kind   MessageKind
	Detail string
	Old    State
	New    State
	Source string
}

// Caps describes the negotiated capabilities of one endpoint. Width and
// Height are zero unless a video type was negotiated.
type Caps struct {
	MediaType string
	Width     int
	Height    int
}

// Endpoint is one stream endpoint of a graph element.
type Endpoint interface {
	// Name identifies the owning element, e.g. "typefind0".
	Name() string

	// NegotiatedCaps returns the caps negotiated on this endpoint, or nil
	// if negotiation has not produced any.
	NegotiatedCaps() *Caps
}

// Graph is the runnable form of a descriptor. A Graph is owned by a single
// caller and must not be shared across goroutines.
type Graph interface {
	SetState(target State) error
	CurrentState() State

	// PollBus waits up to timeout for the next bus message and returns nil
	// if none arrived.
	PollBus(timeout time.Duration) *BusMessage

	// QueryDuration reports the media duration when the graph can
	// determine it.
	QueryDuration() (time.Duration, bool)

	Endpoints() []Endpoint
}

// Engine builds execution graphs from launch descriptors. Parse performs a
// full syntactic validation without starting any processing.
type Engine interface {
	Parse(descriptor string) (Graph, error)
	Version() string
}
