package handler

import (
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/mediaforge/api/internal/model"
	"github.com/mediaforge/api/internal/probe"
	"github.com/mediaforge/api/internal/service"
	"github.com/mediaforge/api/pkg/response"
)

// MediaHandler serves the canned media operations and the discovery probe.
type MediaHandler struct {
	service   *service.PipelineService
	prober    *probe.Prober
	validator *validator.Validate
}

func NewMediaHandler(svc *service.PipelineService, p *probe.Prober, v *validator.Validate) *MediaHandler {
	return &MediaHandler{
		service:   svc,
		prober:    p,
		validator: v,
	}
}

// Convert handles POST /convert
func (h *MediaHandler) Convert(c *fiber.Ctx) error {
	var req model.ConvertRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}
	if !strings.HasPrefix(req.SourceURL, "http") {
		return response.ValidationError(c, "Source URL must be a valid HTTP(S) URL", nil)
	}

	log.Printf("Converting media: %s -> %s", req.SourceURL, req.OutputFormat)
	h.inspectSource(c, req.SourceURL)

	resp, err := h.service.Convert(c.Context(), &req)
	if err != nil {
		return convertSubmitError(c, err)
	}
	return response.OK(c, resp)
}

// Thumbnail handles POST /thumbnail
func (h *MediaHandler) Thumbnail(c *fiber.Ctx) error {
	var req model.ThumbnailRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}
	if !strings.HasPrefix(req.SourceURL, "http") {
		return response.ValidationError(c, "Source URL must be a valid HTTP(S) URL", nil)
	}

	log.Printf("Generating thumbnail from: %s", req.SourceURL)
	if info := h.inspectSource(c, req.SourceURL); info != nil {
		if info.Width == nil || info.Height == nil {
			log.Printf("Source may not be video content - proceeding anyway")
		}
	}

	resp, err := h.service.Thumbnail(c.Context(), &req)
	if err != nil {
		return convertSubmitError(c, err)
	}
	return response.OK(c, resp)
}

// Stream handles POST /stream
func (h *MediaHandler) Stream(c *fiber.Ctx) error {
	var req model.StreamRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}
	if !strings.HasPrefix(req.SourceURL, "http") {
		return response.ValidationError(c, "Source URL must be a valid HTTP(S) URL", nil)
	}

	log.Printf("Creating %s stream from: %s", req.StreamType, req.SourceURL)

	resp, err := h.service.Stream(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedStreamType) {
			return response.ValidationError(c, "Unsupported stream type. Currently supported: hls", nil)
		}
		return convertSubmitError(c, err)
	}
	return response.OK(c, resp)
}

// Analyze handles GET /analyze/:url where :url is percent-encoded.
func (h *MediaHandler) Analyze(c *fiber.Ctx) error {
	decoded, err := url.QueryUnescape(c.Params("url"))
	if err != nil || decoded == "" {
		return response.ValidationError(c, "Invalid URL encoding", nil)
	}

	log.Printf("Analyzing media: %s", decoded)

	info, err := h.prober.Probe(c.Context(), decoded)
	if err != nil {
		log.Printf("Failed to analyze media %s: %v", decoded, err)
		var engErr *probe.EngineError
		if errors.As(err, &engErr) {
			return response.AnalysisFailed(c, "Failed to analyze media", engErr.Detail)
		}
		return response.AnalysisFailed(c, "Failed to analyze media", err.Error())
	}

	return response.OK(c, model.AnalyzeResponse{
		URL:           decoded,
		Format:        info.Format,
		FormatGuessed: info.FormatGuessed,
		Duration:      info.Duration,
		Width:         info.Width,
		Height:        info.Height,
		Bitrate:       info.Bitrate,
		AnalyzedAt:    time.Now(),
	})
}

// inspectSource probes the source before an expensive operation. Failure is
// only logged: the source might still be valid for streaming.
func (h *MediaHandler) inspectSource(c *fiber.Ctx, sourceURL string) *model.MediaInfo {
	info, err := h.prober.Probe(c.Context(), sourceURL)
	if err != nil {
		log.Printf("Could not analyze source media %s: %v", sourceURL, err)
		return nil
	}
	log.Printf("Source media format: %s", info.Format)
	return info
}

// convertSubmitError maps submission failures for generated descriptors.
// An engine rejection here is a server fault: the service built the
// descriptor itself.
func convertSubmitError(c *fiber.Ctx, err error) error {
	var rejected *service.EngineRejectedError
	switch {
	case errors.Is(err, service.ErrUnsupportedFormat):
		return response.ValidationError(c, "Unsupported format conversion", err.Error())
	case errors.As(err, &rejected):
		return response.EngineError(c, "Generated invalid pipeline", rejected.Detail)
	default:
		return response.ServiceError(c, err.Error())
	}
}
