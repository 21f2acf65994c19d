package service

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// TaskTypeExecute runs a stored pipeline through the engine.
	TaskTypeExecute = "pipeline:execute"

	// QueuePipelines is the asynq queue execution tasks land on.
	QueuePipelines = "pipelines"
)

// ExecuteTaskPayload identifies the registry record to execute.
type ExecuteTaskPayload struct {
	PipelineID string `json:"pipelineId"`
}

// NewExecuteTask builds the asynq task for one pipeline execution.
func NewExecuteTask(pipelineID string) (*asynq.Task, error) {
	b, err := json.Marshal(ExecuteTaskPayload{PipelineID: pipelineID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeExecute, b), nil
}
