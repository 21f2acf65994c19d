// Package probe implements bounded-time media discovery: a minimal
// non-decoding inspection graph is driven to negotiation and whatever the
// engine learned about the source is extracted within a fixed budget.
package probe

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/mediaforge/api/internal/engine"
	"github.com/mediaforge/api/internal/model"
)

// EngineError is a fatal engine failure during negotiation. A budget
// timeout is not an EngineError; it yields a partial result instead.
type EngineError struct {
	Detail string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error: %s", e.Detail)
}

// suffixFormats maps common URL path suffixes to media type labels. Used as
// a last-resort guess when negotiation produced nothing.
var suffixFormats = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
}

// Config tunes a Prober. Zero values fall back to the defaults used by the
// service: 10s budget, 100ms poll interval, 4 concurrent probes.
type Config struct {
	Budget        time.Duration
	PollInterval  time.Duration
	MaxConcurrent int
}

// Prober runs discovery probes against an execution engine. Probes block
// for up to their full budget, so a slot semaphore keeps a slow source from
// occupying more than MaxConcurrent workers.
type Prober struct {
	eng    engine.Engine
	budget time.Duration
	poll   time.Duration
	slots  chan struct{}
}

func New(eng engine.Engine, cfg Config) *Prober {
	if cfg.Budget <= 0 {
		cfg.Budget = 10 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	return &Prober{
		eng:    eng,
		budget: cfg.Budget,
		poll:   cfg.PollInterval,
		slots:  make(chan struct{}, cfg.MaxConcurrent),
	}
}

// Probe inspects sourceURL without decoding it. Engine errors during
// negotiation are fatal; running out of budget is not, and returns whatever
// was negotiated by then. The inspection graph is torn down on every path.
func (p *Prober) Probe(ctx context.Context, sourceURL string) (*model.MediaInfo, error) {
	select {
	case p.slots <- struct{}{}:
		defer func() { <-p.slots }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	descriptor := fmt.Sprintf(
		"souphttpsrc location=%s ! typefind ! identity signal-handoffs=false ! fakesink sync=false",
		sourceURL,
	)

	g, err := p.eng.Parse(descriptor)
	if err != nil {
		return nil, &EngineError{Detail: err.Error()}
	}
	// Resource release must not be skippable, whatever the exit path.
	defer g.SetState(engine.StateNull)

	if err := g.SetState(engine.StatePaused); err != nil {
		return nil, &EngineError{Detail: err.Error()}
	}

	if err := p.waitNegotiated(ctx, g); err != nil {
		return nil, err
	}

	info := extract(g)
	applySuffixFallback(info, sourceURL)
	return info, nil
}

// waitNegotiated polls the bus until negotiation completes, an engine error
// arrives, the budget runs out, or ctx is canceled. Budget expiry is
// success: the caller extracts whatever is available.
func (p *Prober) waitNegotiated(ctx context.Context, g engine.Graph) error {
	deadline := time.Now().Add(p.budget)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg := g.PollBus(p.poll)
		if msg == nil {
			continue
		}
		switch msg.Kind {
		case engine.MessageError:
			return &EngineError{Detail: msg.Detail}
		case engine.MessageStateChanged:
			if msg.Source == engine.PipelineSource && msg.New == engine.StatePaused {
				return nil
			}
		case engine.MessageAsyncDone:
			return nil
		}
	}
	return nil
}

// extract pulls metadata out of the negotiated graph. The type-detection
// endpoint is consulted first; if it did not carry video dimensions, the
// first video-typed endpoint anywhere in the graph wins.
func extract(g engine.Graph) *model.MediaInfo {
	info := &model.MediaInfo{Format: model.FormatUnknown}

	if d, ok := g.QueryDuration(); ok {
		secs := int64(d / time.Second)
		info.Duration = &secs
	}

	for _, ep := range g.Endpoints() {
		if !strings.HasPrefix(ep.Name(), "typefind") {
			continue
		}
		if caps := ep.NegotiatedCaps(); caps != nil {
			info.Format = caps.MediaType
			if caps.Width > 0 {
				w := caps.Width
				info.Width = &w
			}
			if caps.Height > 0 {
				h := caps.Height
				info.Height = &h
			}
		}
		break
	}

	if info.Width == nil || info.Height == nil {
		for _, ep := range g.Endpoints() {
			caps := ep.NegotiatedCaps()
			if caps == nil || !strings.HasPrefix(caps.MediaType, "video/") {
				continue
			}
			if caps.Width > 0 {
				w := caps.Width
				info.Width = &w
			}
			if caps.Height > 0 {
				h := caps.Height
				info.Height = &h
			}
			break
		}
	}

	return info
}

func applySuffixFallback(info *model.MediaInfo, sourceURL string) {
	if info.Format != model.FormatUnknown {
		return
	}
	u, err := url.Parse(sourceURL)
	if err != nil {
		return
	}
	if format, ok := suffixFormats[strings.ToLower(path.Ext(u.Path))]; ok {
		info.Format = format
		info.FormatGuessed = true
	}
}
