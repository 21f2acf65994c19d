// Package enginetest provides a scripted Engine implementation for tests
// that need deterministic bus traffic.
package enginetest

import (
	"sync"
	"time"

	"github.com/mediaforge/api/internal/engine"
)

// FakeEndpoint returns fixed caps.
type FakeEndpoint struct {
	EndpointName string
	Caps         *engine.Caps
}

func (ep *FakeEndpoint) Name() string { return ep.EndpointName }

func (ep *FakeEndpoint) NegotiatedCaps() *engine.Caps {
	if ep.Caps == nil {
		return nil
	}
	c := *ep.Caps
	return &c
}

// FakeGraph replays a scripted message sequence and records every state it
// is set to, so tests can assert teardown happened.
type FakeGraph struct {
	Messages    []engine.BusMessage
	Duration    time.Duration
	HasDuration bool
	Eps         []engine.Endpoint

	mu          sync.Mutex
	next        int
	state       engine.State
	StateCalls  []engine.State
	SetStateErr error
}

func (g *FakeGraph) SetState(target engine.State) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.StateCalls = append(g.StateCalls, target)
	if g.SetStateErr != nil && target != engine.StateNull {
		return g.SetStateErr
	}
	g.state = target
	return nil
}

func (g *FakeGraph) CurrentState() engine.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *FakeGraph) PollBus(timeout time.Duration) *engine.BusMessage {
	g.mu.Lock()
	if g.next < len(g.Messages) {
		msg := g.Messages[g.next]
		g.next++
		g.mu.Unlock()
		return &msg
	}
	g.mu.Unlock()
	time.Sleep(timeout)
	return nil
}

func (g *FakeGraph) QueryDuration() (time.Duration, bool) {
	return g.Duration, g.HasDuration
}

func (g *FakeGraph) Endpoints() []engine.Endpoint { return g.Eps }

// FinalState returns the last state the graph was set to.
func (g *FakeGraph) FinalState() engine.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.StateCalls) == 0 {
		return engine.StateNull
	}
	return g.StateCalls[len(g.StateCalls)-1]
}

// FakeEngine hands out a prepared graph and remembers the descriptor it was
// asked to parse.
type FakeEngine struct {
	Graph    *FakeGraph
	ParseErr error

	mu             sync.Mutex
	LastDescriptor string
}

func (e *FakeEngine) Parse(descriptor string) (engine.Graph, error) {
	e.mu.Lock()
	e.LastDescriptor = descriptor
	e.mu.Unlock()
	if e.ParseErr != nil {
		return nil, e.ParseErr
	}
	return e.Graph, nil
}

func (e *FakeEngine) Version() string { return "fake-engine 0.0.0" }
