package model

import "time"

// PipelineState is the lifecycle state of a tracked pipeline.
type PipelineState string

const (
	PipelineCreated PipelineState = "created"
	PipelinePlaying PipelineState = "playing"
	PipelinePaused  PipelineState = "paused"
	PipelineStopped PipelineState = "stopped"
	PipelineError   PipelineState = "error"
)

// PipelineRecord is one accepted job. Only State and Error ever change
// after creation; everything else is immutable. The registry owns all
// records and hands out copies.
type PipelineRecord struct {
	ID          string        `json:"id"`
	Description string        `json:"description"`
	State       PipelineState `json:"state"`
	Descriptor  string        `json:"descriptor"`
	Error       *string       `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	SourceURL   *string       `json:"sourceUrl,omitempty"`
}
