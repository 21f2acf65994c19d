package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/mediaforge/api/internal/engine"
	"github.com/mediaforge/api/internal/probe"
	"github.com/mediaforge/api/internal/registry"
	"github.com/mediaforge/api/internal/service"
)

// setupApp wires a Fiber app like main.go does, minus Redis: the service
// runs in record-only mode and no rate limiting is applied.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	eng := engine.NewLaunchEngine()
	reg := registry.New()
	prober := probe.New(eng, probe.Config{
		Budget:       2 * time.Second,
		PollInterval: 10 * time.Millisecond,
	})

	svc := service.NewPipelineService(reg, eng, nil, "http://localhost:8080")

	validate := validator.New()
	pipelineHandler := NewPipelineHandler(svc, validate)
	mediaHandler := NewMediaHandler(svc, prober, validate)
	systemHandler := NewSystemHandler(eng)

	app := fiber.New()

	app.Get("/", systemHandler.Health)
	app.Get("/health", systemHandler.Health)
	app.Get("/samples", systemHandler.Samples)

	app.Post("/pipelines", pipelineHandler.Create)
	app.Get("/pipelines", pipelineHandler.List)
	app.Get("/pipelines/:id", pipelineHandler.Get)
	app.Delete("/pipelines/:id", pipelineHandler.Stop)

	app.Post("/convert", mediaHandler.Convert)
	app.Post("/thumbnail", mediaHandler.Thumbnail)
	app.Post("/stream", mediaHandler.Stream)
	app.Get("/analyze/:url", mediaHandler.Analyze)

	return app
}

// doRequest performs one HTTP request against the test app.
func doRequest(app *fiber.App, method, path string, body string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return app.Test(req, -1)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses a response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// parseJSONList parses a response body into a slice of maps.
func parseJSONList(t *testing.T, resp *http.Response) []map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result []map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON list: %v\nbody: %s", err, body)
	}
	return result
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}
