package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/mediaforge/api/internal/engine"
	"github.com/mediaforge/api/internal/model"
	"github.com/mediaforge/api/internal/registry"
)

// PipelineService is the lifecycle controller: it validates descriptors,
// records accepted jobs in the registry, and hands them to the execution
// queue. Invalid descriptors never reach the registry, even transiently.
type PipelineService struct {
	registry    *registry.Registry
	eng         engine.Engine
	asynqClient *asynq.Client // nil: record-only mode, no execution hand-off
	baseURL     string
}

func NewPipelineService(reg *registry.Registry, eng engine.Engine, asynqClient *asynq.Client, baseURL string) *PipelineService {
	return &PipelineService{
		registry:    reg,
		eng:         eng,
		asynqClient: asynqClient,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
	}
}

// Submit accepts a custom descriptor: fresh id, validation, a record in the
// created state, then the registry insert.
func (s *PipelineService) Submit(ctx context.Context, descriptor, description string, sourceURL *string) (model.PipelineRecord, error) {
	return s.submit(ctx, uuid.New().String(), descriptor, description, sourceURL)
}

func (s *PipelineService) submit(ctx context.Context, id, descriptor, description string, sourceURL *string) (model.PipelineRecord, error) {
	if err := ValidateDescriptor(s.eng, descriptor); err != nil {
		return model.PipelineRecord{}, err
	}

	rec := s.registry.Create(model.PipelineRecord{
		ID:          id,
		Description: description,
		State:       model.PipelineCreated,
		Descriptor:  descriptor,
		CreatedAt:   time.Now(),
		SourceURL:   sourceURL,
	})

	s.enqueueExecution(ctx, id)
	return rec, nil
}

// enqueueExecution hands the record to the worker queue. The record stands
// on its own, so an unreachable queue downgrades to record-only mode
// instead of failing the submission.
func (s *PipelineService) enqueueExecution(ctx context.Context, id string) {
	if s.asynqClient == nil {
		return
	}
	task, err := NewExecuteTask(id)
	if err != nil {
		log.Printf("Failed to build execute task for %s: %v", id, err)
		return
	}
	_, err = s.asynqClient.EnqueueContext(ctx, task,
		asynq.Queue(QueuePipelines),
		asynq.MaxRetry(0),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		log.Printf("Failed to enqueue execution for %s: %v", id, err)
	}
}

// Get returns a snapshot of one record.
func (s *PipelineService) Get(id string) (model.PipelineRecord, error) {
	rec, ok := s.registry.Get(id)
	if !ok {
		return model.PipelineRecord{}, registry.ErrNotFound
	}
	return rec, nil
}

// List returns a snapshot of all records.
func (s *PipelineService) List() []model.PipelineRecord {
	return s.registry.List()
}

// Stop forces the record to the stopped state. Stopping an already stopped
// pipeline succeeds again.
func (s *PipelineService) Stop(id string) error {
	if err := s.registry.Transition(id, model.PipelineStopped); err != nil {
		return err
	}
	log.Printf("Stopped pipeline: %s", id)
	return nil
}

// Convert builds and submits a conversion job for the source.
func (s *PipelineService) Convert(ctx context.Context, req *model.ConvertRequest) (*model.ConvertResponse, error) {
	id := uuid.New().String()
	outputPath := fmt.Sprintf("output_%s.%s", id, req.OutputFormat)

	descriptor, err := ConversionDescriptor(req.SourceURL, req.OutputFormat, outputPath)
	if err != nil {
		return nil, err
	}

	src := req.SourceURL
	if _, err := s.submit(ctx, id, descriptor, "Convert to "+req.OutputFormat, &src); err != nil {
		return nil, err
	}

	est := "2-5 minutes"
	return &model.ConvertResponse{
		PipelineID:        id,
		Status:            "created",
		Message:           fmt.Sprintf("Conversion to %s initiated", req.OutputFormat),
		EstimatedDuration: &est,
	}, nil
}

// Thumbnail builds and submits a thumbnail job. Missing dimensions default
// to 320x240, the timestamp to ten seconds in.
func (s *PipelineService) Thumbnail(ctx context.Context, req *model.ThumbnailRequest) (*model.ThumbnailResponse, error) {
	id := uuid.New().String()

	width, height := 320, 240
	if req.Width != nil {
		width = *req.Width
	}
	if req.Height != nil {
		height = *req.Height
	}
	timestamp := "00:00:10"
	if req.Timestamp != nil {
		timestamp = *req.Timestamp
	}

	outputPath := fmt.Sprintf("thumb_%s.png", id)
	descriptor := ThumbnailDescriptor(req.SourceURL, outputPath, width, height, timestamp)

	src := req.SourceURL
	if _, err := s.submit(ctx, id, descriptor, "Generate thumbnail", &src); err != nil {
		return nil, err
	}

	return &model.ThumbnailResponse{
		PipelineID: id,
		Status:     "created",
		Message:    "Thumbnail generation initiated",
		OutputInfo: &model.ThumbnailInfo{
			Width:     width,
			Height:    height,
			Format:    "PNG",
			Timestamp: timestamp,
		},
	}, nil
}

// Stream builds and submits a streaming job. Only HLS is supported.
func (s *PipelineService) Stream(ctx context.Context, req *model.StreamRequest) (*model.StreamResponse, error) {
	if req.StreamType != "hls" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStreamType, req.StreamType)
	}

	id := uuid.New().String()
	outputDir := fmt.Sprintf("stream_%s", id)
	descriptor := HLSDescriptor(req.SourceURL, outputDir)

	src := req.SourceURL
	if _, err := s.submit(ctx, id, descriptor, "HLS streaming", &src); err != nil {
		return nil, err
	}

	streamURL := fmt.Sprintf("%s/stream/%s/playlist.m3u8", s.baseURL, id)
	return &model.StreamResponse{
		PipelineID: id,
		Status:     "created",
		StreamURL:  &streamURL,
		Message:    "HLS stream created successfully",
	}, nil
}
