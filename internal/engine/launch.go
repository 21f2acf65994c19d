package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// launch descriptor syntax: elements separated by "!", each element a name
// followed by key=value properties. A stage whose first token contains "/"
// is a caps filter, e.g. "video/x-raw,width=320,height=240".

const engineVersion = "launch-engine 1.2.0"

// sniffLen is how many leading bytes the type-detection source fetches.
// mimetype needs at most 3072 bytes for all registered formats.
const sniffLen = 3072

var knownElements = map[string]bool{
	"src":           true,
	"sink":          true,
	"souphttpsrc":   true,
	"filesrc":       true,
	"fakesrc":       true,
	"videotestsrc":  true,
	"audiotestsrc":  true,
	"typefind":      true,
	"identity":      true,
	"queue":         true,
	"decodebin":     true,
	"videoconvert":  true,
	"audioconvert":  true,
	"videoscale":    true,
	"audioresample": true,
	"x264enc":       true,
	"vp8enc":        true,
	"vorbisenc":     true,
	"pngenc":        true,
	"jpegenc":       true,
	"webmmux":       true,
	"mp4mux":        true,
	"avimux":        true,
	"oggmux":        true,
	"mpegtsmux":     true,
	"hlssink":       true,
	"filesink":      true,
	"fakesink":      true,
	"autovideosink": true,
	"autoaudiosink": true,
}

type launchElement struct {
	kind  string // element name, or "capsfilter" for caps stages
	name  string // unique instance name, e.g. "typefind0"
	props map[string]string
	caps  string // raw caps string for capsfilter stages
}

// LaunchEngine is the in-process execution engine. Graphs built from
// descriptors with an HTTP source perform real type detection against the
// remote source; test sources negotiate synthetic caps.
type LaunchEngine struct {
	client *http.Client
}

func NewLaunchEngine() *LaunchEngine {
	return &LaunchEngine{client: &http.Client{}}
}

func (e *LaunchEngine) Version() string { return engineVersion }

// Parse validates the descriptor and builds an idle graph. No network or
// file activity happens until SetState.
func (e *LaunchEngine) Parse(descriptor string) (Graph, error) {
	elements, err := parseDescriptor(descriptor)
	if err != nil {
		return nil, err
	}

	g := &launchGraph{
		client:   e.client,
		elements: elements,
		bus:      make(chan BusMessage, 32),
		state:    StateNull,
	}
	for _, el := range elements {
		g.endpoints = append(g.endpoints, &launchEndpoint{name: el.name})
	}
	return g, nil
}

func parseDescriptor(descriptor string) ([]launchElement, error) {
	stages := strings.Split(descriptor, "!")
	counters := map[string]int{}

	var elements []launchElement
	for _, stage := range stages {
		fields := strings.Fields(stage)
		if len(fields) == 0 {
			return nil, fmt.Errorf("syntax error: empty element stage")
		}

		head := fields[0]
		if strings.Contains(head, "/") {
			if err := checkCapsSyntax(head); err != nil {
				return nil, err
			}
			el := launchElement{kind: "capsfilter", caps: head}
			el.name = instanceName("capsfilter", counters)
			elements = append(elements, el)
			continue
		}

		if !knownElements[head] {
			return nil, fmt.Errorf("no such element %q", head)
		}

		props := map[string]string{}
		for _, f := range fields[1:] {
			k, v, ok := strings.Cut(f, "=")
			if !ok || k == "" {
				return nil, fmt.Errorf("syntax error: %q is not a property assignment", f)
			}
			props[k] = v
		}

		el := launchElement{kind: head, props: props}
		el.name = instanceName(head, counters)
		elements = append(elements, el)
	}

	if len(elements) < 2 {
		return nil, fmt.Errorf("descriptor needs at least a source and a sink")
	}
	return elements, nil
}

func checkCapsSyntax(caps string) error {
	mediaType, _, _ := strings.Cut(caps, ",")
	parts := strings.Split(mediaType, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("syntax error: malformed caps %q", caps)
	}
	return nil
}

func instanceName(kind string, counters map[string]int) string {
	n := counters[kind]
	counters[kind]++
	return fmt.Sprintf("%s%d", kind, n)
}

type launchEndpoint struct {
	name string

	mu   sync.Mutex
	caps *Caps
}

func (ep *launchEndpoint) Name() string { return ep.name }

func (ep *launchEndpoint) NegotiatedCaps() *Caps {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	if ep.caps == nil {
		return nil
	}
	c := *ep.caps
	return &c
}

func (ep *launchEndpoint) setCaps(c Caps) {
	ep.mu.Lock()
	ep.caps = &c
	ep.mu.Unlock()
}

type launchGraph struct {
	client    *http.Client
	elements  []launchElement
	endpoints []*launchEndpoint
	bus       chan BusMessage

	mu          sync.Mutex
	state       State
	started     bool
	cancel      context.CancelFunc
	duration    time.Duration
	hasDuration bool
}

func (g *launchGraph) CurrentState() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *launchGraph) SetState(target State) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if target == StateNull {
		if g.cancel != nil {
			g.cancel()
			g.cancel = nil
		}
		g.state = StateNull
		return nil
	}

	prev := g.state
	g.state = target
	if prev == StateNull && !g.started {
		g.started = true
		ctx, cancel := context.WithCancel(context.Background())
		g.cancel = cancel
		go g.run(ctx, target)
	}
	return nil
}

func (g *launchGraph) PollBus(timeout time.Duration) *BusMessage {
	select {
	case msg := <-g.bus:
		return &msg
	case <-time.After(timeout):
		return nil
	}
}

func (g *launchGraph) QueryDuration() (time.Duration, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.duration, g.hasDuration
}

func (g *launchGraph) Endpoints() []Endpoint {
	eps := make([]Endpoint, len(g.endpoints))
	for i, ep := range g.endpoints {
		eps[i] = ep
	}
	return eps
}

func (g *launchGraph) post(msg BusMessage) {
	select {
	case g.bus <- msg:
	default:
		// Bus full; drop, matching lossy delivery of a polled bus.
	}
}

// run drives negotiation and, for playing graphs, consumes the source until
// end of stream. It is the only goroutine a graph ever starts.
func (g *launchGraph) run(ctx context.Context, target State) {
	g.post(BusMessage{Kind: MessageStateChanged, Old: StateNull, New: StateReady, Source: PipelineSource})

	src := g.elements[0]
	var body io.ReadCloser

	switch src.kind {
	case "souphttpsrc":
		loc := src.props["location"]
		if loc == "" {
			g.post(BusMessage{Kind: MessageError, Detail: "souphttpsrc: no location set", Source: src.name})
			return
		}
		resp, err := g.fetch(ctx, loc)
		if err != nil {
			g.post(BusMessage{Kind: MessageError, Detail: fmt.Sprintf("souphttpsrc: %v", err), Source: src.name})
			return
		}
		body = resp.Body

		head := make([]byte, sniffLen)
		n, _ := io.ReadFull(resp.Body, head)
		mt := mimetype.Detect(head[:n])
		g.setElementCaps("typefind", Caps{MediaType: mt.String()})

		if d := resp.Header.Get("X-Content-Duration"); d != "" {
			if secs, err := strconv.ParseFloat(d, 64); err == nil && secs >= 0 {
				g.mu.Lock()
				g.duration = time.Duration(secs * float64(time.Second))
				g.hasDuration = true
				g.mu.Unlock()
			}
		}

	case "videotestsrc":
		g.setElementCaps(src.kind, Caps{MediaType: "video/x-raw", Width: 320, Height: 240})
	case "audiotestsrc":
		g.setElementCaps(src.kind, Caps{MediaType: "audio/x-raw"})
	}

	// Caps filter stages fix the caps flowing through their endpoint.
	for i, el := range g.elements {
		if el.kind == "capsfilter" {
			g.endpoints[i].setCaps(parseCaps(el.caps))
		}
	}

	g.post(BusMessage{Kind: MessageStateChanged, Old: StateReady, New: StatePaused, Source: PipelineSource})
	if target == StatePlaying {
		g.post(BusMessage{Kind: MessageStateChanged, Old: StatePaused, New: StatePlaying, Source: PipelineSource})
	}
	g.post(BusMessage{Kind: MessageAsyncDone, Source: PipelineSource})

	if target != StatePlaying {
		if body != nil {
			body.Close()
		}
		return
	}

	// Playing: drain the source, then signal end of stream.
	if body != nil {
		defer body.Close()
		buf := make([]byte, 64*1024)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if _, err := body.Read(buf); err != nil {
				if err != io.EOF {
					g.post(BusMessage{Kind: MessageError, Detail: fmt.Sprintf("souphttpsrc: %v", err), Source: src.name})
					return
				}
				break
			}
		}
	}
	g.post(BusMessage{Kind: MessageEos, Source: PipelineSource})
}

func (g *launchGraph) fetch(ctx context.Context, location string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("server returned %s", resp.Status)
	}
	return resp, nil
}

func (g *launchGraph) setElementCaps(kind string, caps Caps) {
	for i, el := range g.elements {
		if el.kind == kind {
			g.endpoints[i].setCaps(caps)
			return
		}
	}
}

func parseCaps(raw string) Caps {
	mediaType, rest, _ := strings.Cut(raw, ",")
	c := Caps{MediaType: mediaType}
	for _, kv := range strings.Split(rest, ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		switch k {
		case "width":
			c.Width = n
		case "height":
			c.Height = n
		}
	}
	return c
}
