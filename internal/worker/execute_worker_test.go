package worker

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mediaforge/api/internal/engine"
	"github.com/mediaforge/api/internal/engine/enginetest"
	"github.com/mediaforge/api/internal/model"
	"github.com/mediaforge/api/internal/registry"
	"github.com/mediaforge/api/internal/service"
	"github.com/mediaforge/api/internal/websocket"
)

func setup(t *testing.T, g *enginetest.FakeGraph) (*ExecuteWorker, *registry.Registry, *asynq.Task) {
	t.Helper()

	reg := registry.New()
	reg.Create(model.PipelineRecord{
		ID:          "p1",
		Description: "test run",
		State:       model.PipelineCreated,
		Descriptor:  "fakesrc ! fakesink",
		CreatedAt:   time.Now(),
	})

	hub := websocket.NewHub()
	go hub.Run()

	task, err := service.NewExecuteTask("p1")
	if err != nil {
		t.Fatalf("build task: %v", err)
	}

	return NewExecuteWorker(reg, &enginetest.FakeEngine{Graph: g}, hub), reg, task
}

func TestProcessTaskEosStopsPipeline(t *testing.T) {
	g := &enginetest.FakeGraph{
		Messages: []engine.BusMessage{
			{Kind: engine.MessageStateChanged, Old: engine.StateNull, New: engine.StatePlaying, Source: engine.PipelineSource},
			{Kind: engine.MessageEos, Source: engine.PipelineSource},
		},
	}
	w, reg, task := setup(t, g)

	if err := w.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("process: %v", err)
	}

	rec, _ := reg.Get("p1")
	if rec.State != model.PipelineStopped {
		t.Errorf("expected stopped, got %s", rec.State)
	}
	if g.FinalState() != engine.StateNull {
		t.Error("graph must be torn down after completion")
	}
}

func TestProcessTaskBusErrorFailsPipeline(t *testing.T) {
	g := &enginetest.FakeGraph{
		Messages: []engine.BusMessage{
			{Kind: engine.MessageWarning, Detail: "late buffers", Source: "fakesink0"},
			{Kind: engine.MessageError, Detail: "stream negotiation failed", Source: "fakesrc0"},
		},
	}
	w, reg, task := setup(t, g)

	if err := w.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("process: %v", err)
	}

	rec, _ := reg.Get("p1")
	if rec.State != model.PipelineError {
		t.Errorf("expected error state, got %s", rec.State)
	}
	if rec.Error == nil || *rec.Error != "stream negotiation failed" {
		t.Errorf("expected bus diagnostic, got %v", rec.Error)
	}
	if g.FinalState() != engine.StateNull {
		t.Error("graph must be torn down after an error")
	}
}

func TestProcessTaskSkipsStoppedPipeline(t *testing.T) {
	g := &enginetest.FakeGraph{}
	w, reg, task := setup(t, g)

	reg.Transition("p1", model.PipelineStopped)

	if err := w.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(g.StateCalls) != 0 {
		t.Error("stopped pipeline must not be started")
	}
}

func TestProcessTaskRespondsToCancellation(t *testing.T) {
	g := &enginetest.FakeGraph{} // no bus traffic: worker would wait forever
	w, reg, task := setup(t, g)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	if err := w.ProcessTask(ctx, task); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("cancellation took too long")
	}

	rec, _ := reg.Get("p1")
	if rec.State != model.PipelineStopped {
		t.Errorf("expected stopped after cancellation, got %s", rec.State)
	}
}
