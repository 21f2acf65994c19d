package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mediaforge/api/internal/engine"
	"github.com/mediaforge/api/internal/model"
	"github.com/mediaforge/api/internal/registry"
	"github.com/mediaforge/api/internal/service"
	"github.com/mediaforge/api/internal/websocket"
)

// busPollInterval is how long one bus wait lasts while a pipeline runs.
// Longer than the probe's interval: execution has no budget to respect,
// only cancellation.
const busPollInterval = 500 * time.Millisecond

// ExecuteWorker drives stored pipelines through the engine: parse the
// descriptor, play the graph, follow the bus to end-of-stream or error, and
// record the outcome in the registry.
type ExecuteWorker struct {
	registry *registry.Registry
	eng      engine.Engine
	hub      *websocket.Hub
}

func NewExecuteWorker(reg *registry.Registry, eng engine.Engine, hub *websocket.Hub) *ExecuteWorker {
	return &ExecuteWorker{registry: reg, eng: eng, hub: hub}
}

// ProcessTask handles one pipeline execution task.
func (w *ExecuteWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload service.ExecuteTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal execute payload: %w", err)
	}

	rec, ok := w.registry.Get(payload.PipelineID)
	if !ok {
		return fmt.Errorf("pipeline %s: %w", payload.PipelineID, registry.ErrNotFound)
	}
	if rec.State == model.PipelineStopped {
		// Stopped before the worker picked it up.
		return nil
	}

	log.Printf("Executing pipeline %s: %s", rec.ID, rec.Description)

	g, err := w.eng.Parse(rec.Descriptor)
	if err != nil {
		// The descriptor was validated at submission; a parse failure
		// here is a real engine fault, not worth retrying.
		w.fail(rec.ID, fmt.Sprintf("parse: %v", err))
		return nil
	}
	defer g.SetState(engine.StateNull)

	if err := g.SetState(engine.StatePlaying); err != nil {
		w.fail(rec.ID, fmt.Sprintf("start: %v", err))
		return nil
	}
	w.transition(rec.ID, model.PipelinePlaying)

	for {
		select {
		case <-ctx.Done():
			w.transition(rec.ID, model.PipelineStopped)
			return ctx.Err()
		default:
		}

		msg := g.PollBus(busPollInterval)
		if msg == nil {
			continue
		}
		switch msg.Kind {
		case engine.MessageEos:
			log.Printf("Pipeline %s completed", rec.ID)
			w.transition(rec.ID, model.PipelineStopped)
			return nil
		case engine.MessageError:
			log.Printf("Pipeline %s error from %s: %s", rec.ID, msg.Source, msg.Detail)
			w.fail(rec.ID, msg.Detail)
			return nil
		case engine.MessageWarning:
			log.Printf("Pipeline %s warning from %s: %s", rec.ID, msg.Source, msg.Detail)
		case engine.MessageStateChanged:
			if msg.Source == engine.PipelineSource {
				log.Printf("Pipeline %s state changed from %s to %s", rec.ID, msg.Old, msg.New)
			}
		}
	}
}

func (w *ExecuteWorker) transition(id string, state model.PipelineState) {
	if err := w.registry.Transition(id, state); err != nil {
		log.Printf("Failed to transition pipeline %s: %v", id, err)
		return
	}
	w.hub.BroadcastState(id, state, nil)
}

func (w *ExecuteWorker) fail(id, detail string) {
	if err := w.registry.Fail(id, detail); err != nil {
		log.Printf("Failed to mark pipeline %s failed: %v", id, err)
		return
	}
	w.hub.BroadcastState(id, model.PipelineError, &detail)
}
