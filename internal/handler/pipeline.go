package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/mediaforge/api/internal/model"
	"github.com/mediaforge/api/internal/registry"
	"github.com/mediaforge/api/internal/service"
	"github.com/mediaforge/api/pkg/response"
)

type PipelineHandler struct {
	service   *service.PipelineService
	validator *validator.Validate
}

func NewPipelineHandler(svc *service.PipelineService, v *validator.Validate) *PipelineHandler {
	return &PipelineHandler{
		service:   svc,
		validator: v,
	}
}

// Create handles POST /pipelines
func (h *PipelineHandler) Create(c *fiber.Ctx) error {
	var req model.CreatePipelineRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	rec, err := h.service.Submit(c.Context(), req.Pipeline, req.Description, nil)
	if err != nil {
		var rejected *service.EngineRejectedError
		switch {
		case errors.Is(err, service.ErrEmptyDescriptor),
			errors.Is(err, service.ErrMalformedDescriptor):
			return response.ValidationError(c, "Invalid pipeline configuration", err.Error())
		case errors.As(err, &rejected):
			return response.ValidationError(c, "Invalid pipeline configuration", rejected.Detail)
		default:
			return response.ServiceError(c, err.Error())
		}
	}

	return response.OK(c, rec)
}

// List handles GET /pipelines
func (h *PipelineHandler) List(c *fiber.Ctx) error {
	return response.OK(c, h.service.List())
}

// Get handles GET /pipelines/:id
func (h *PipelineHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return response.ValidationError(c, "Pipeline ID is required", nil)
	}

	rec, err := h.service.Get(id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return response.NotFound(c, "Pipeline not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, rec)
}

// Stop handles DELETE /pipelines/:id
func (h *PipelineHandler) Stop(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return response.ValidationError(c, "Pipeline ID is required", nil)
	}

	if err := h.service.Stop(id); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return response.NotFound(c, "Pipeline not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, model.StopResponse{
		Message:    "Pipeline stopped successfully",
		PipelineID: id,
	})
}
