package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mediaforge/api/internal/engine"
	"github.com/mediaforge/api/internal/model"
	"github.com/mediaforge/api/pkg/response"
)

// SystemHandler serves the health check and the sample media catalog.
type SystemHandler struct {
	eng engine.Engine
}

func NewSystemHandler(eng engine.Engine) *SystemHandler {
	return &SystemHandler{eng: eng}
}

var sampleCatalog = []model.SampleMedia{
	{
		Name:        "Big Buck Bunny",
		URL:         "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4",
		MediaType:   "video",
		Duration:    strPtr("10:34"),
		Description: "Blender Foundation's famous open-source short film",
	},
	{
		Name:        "Elephant's Dream",
		URL:         "https://archive.org/download/ElephantsDream/ed_hd.mp4",
		MediaType:   "video",
		Duration:    strPtr("10:53"),
		Description: "First open movie made entirely with Free Software",
	},
	{
		Name:        "Classical Music Sample",
		URL:         "https://archive.org/download/testmp3testfile/mpthreetest.mp3",
		MediaType:   "audio",
		Duration:    strPtr("0:30"),
		Description: "Public domain classical music sample",
	},
	{
		Name:        "Nature Documentary",
		URL:         "https://archive.org/download/night-15441/night-15441.mp4",
		MediaType:   "video",
		Duration:    strPtr("2:15"),
		Description: "Public domain nature footage",
	},
}

// Samples handles GET /samples
func (h *SystemHandler) Samples(c *fiber.Ctx) error {
	return response.OK(c, sampleCatalog)
}

// Health handles GET /health and GET /
func (h *SystemHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":         "healthy",
		"service":        "Media Pipeline Service",
		"engine_version": h.eng.Version(),
		"endpoints": []string{
			"GET /health - Health check",
			"GET /samples - List sample media",
			"GET /analyze/:url - Analyze media source",
			"POST /convert - Convert media format",
			"POST /thumbnail - Generate thumbnail",
			"POST /stream - Create streaming pipeline",
			"GET /pipelines - List active pipelines",
			"POST /pipelines - Create custom pipeline",
			"GET /pipelines/:id - Get pipeline status",
			"DELETE /pipelines/:id - Stop pipeline",
		},
	})
}

func strPtr(s string) *string { return &s }
