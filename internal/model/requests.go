package model

// CreatePipelineRequest submits a custom launch descriptor.
type CreatePipelineRequest struct {
	Description string `json:"description" validate:"required"`
	Pipeline    string `json:"pipeline" validate:"required"`
}

// ConvertRequest starts a format conversion of a remote source.
type ConvertRequest struct {
	SourceURL    string `json:"sourceUrl" validate:"required"`
	OutputFormat string `json:"outputFormat" validate:"required"`
}

// ThumbnailRequest extracts a still image from a video source.
// Width and height default to 320x240, the timestamp to 00:00:10.
type ThumbnailRequest struct {
	SourceURL string  `json:"sourceUrl" validate:"required"`
	Timestamp *string `json:"timestamp" validate:"omitempty"`
	Width     *int    `json:"width" validate:"omitempty,min=1,max=7680"`
	Height    *int    `json:"height" validate:"omitempty,min=1,max=4320"`
}

// StreamRequest creates a streaming pipeline for a remote source.
type StreamRequest struct {
	SourceURL  string `json:"sourceUrl" validate:"required"`
	StreamType string `json:"streamType" validate:"required"`
}
