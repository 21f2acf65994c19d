package handler

import (
	"net/http"
	"testing"
)

func TestHealth(t *testing.T) {
	app := setupApp(t)

	resp, err := doRequest(app, http.MethodGet, "/health", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["status"] != "healthy" {
		t.Errorf("expected status 'healthy', got %v", result["status"])
	}
	if result["engine_version"] == nil || result["engine_version"] == "" {
		t.Error("expected 'engine_version' in response")
	}
	endpoints, ok := result["endpoints"].([]interface{})
	if !ok || len(endpoints) == 0 {
		t.Error("expected non-empty 'endpoints' list")
	}
}

func TestSamples(t *testing.T) {
	app := setupApp(t)

	resp, err := doRequest(app, http.MethodGet, "/samples", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	samples := parseJSONList(t, resp)
	if len(samples) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(samples))
	}
	for _, s := range samples {
		if s["name"] == "" || s["url"] == "" {
			t.Errorf("sample missing name or url: %v", s)
		}
		mt, _ := s["mediaType"].(string)
		if mt != "video" && mt != "audio" {
			t.Errorf("unexpected media type %q", mt)
		}
	}
}
