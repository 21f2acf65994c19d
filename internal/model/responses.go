package model

import "time"

// ConvertResponse acknowledges an accepted conversion job.
type ConvertResponse struct {
	PipelineID        string  `json:"pipelineId"`
	Status            string  `json:"status"`
	Message           string  `json:"message"`
	EstimatedDuration *string `json:"estimatedDuration,omitempty"`
}

// ThumbnailInfo describes the image a thumbnail job will produce.
type ThumbnailInfo struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	Timestamp string `json:"timestamp"`
}

// ThumbnailResponse acknowledges an accepted thumbnail job.
type ThumbnailResponse struct {
	PipelineID string         `json:"pipelineId"`
	Status     string         `json:"status"`
	Message    string         `json:"message"`
	OutputInfo *ThumbnailInfo `json:"outputInfo,omitempty"`
}

// StreamResponse acknowledges an accepted streaming job.
type StreamResponse struct {
	PipelineID string  `json:"pipelineId"`
	Status     string  `json:"status"`
	StreamURL  *string `json:"streamUrl,omitempty"`
	Message    string  `json:"message"`
}

// StopResponse confirms a stop operation.
type StopResponse struct {
	Message    string `json:"message"`
	PipelineID string `json:"pipelineId"`
}

// AnalyzeResponse carries the outcome of a discovery probe.
type AnalyzeResponse struct {
	URL           string    `json:"url"`
	Format        string    `json:"format"`
	FormatGuessed bool      `json:"formatGuessed"`
	Duration      *int64    `json:"duration"`
	Width         *int      `json:"width"`
	Height        *int      `json:"height"`
	Bitrate       *int      `json:"bitrate"`
	AnalyzedAt    time.Time `json:"analyzedAt"`
}

// SampleMedia is one entry of the curated test-media catalog.
type SampleMedia struct {
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	MediaType   string  `json:"mediaType"`
	Duration    *string `json:"duration,omitempty"`
	Description string  `json:"description"`
}
