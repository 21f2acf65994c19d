package handler

import (
	"fmt"
	"net/http"
	"testing"
)

func TestCreatePipeline_Success(t *testing.T) {
	app := setupApp(t)

	body := `{"description": "test pass-through", "pipeline": "src ! sink"}`
	resp, err := doRequest(app, http.MethodPost, "/pipelines", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["id"] == nil || result["id"] == "" {
		t.Error("expected 'id' in response")
	}
	if result["state"] != "created" {
		t.Errorf("expected state 'created', got %v", result["state"])
	}
	if result["description"] != "test pass-through" {
		t.Errorf("unexpected description: %v", result["description"])
	}
}

func TestCreatePipeline_EmptyDescriptor(t *testing.T) {
	app := setupApp(t)

	body := `{"description": "blank", "pipeline": "   "}`
	resp, err := doRequest(app, http.MethodPost, "/pipelines", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)

	// A rejected submission must leave no trace.
	resp, err = doRequest(app, http.MethodGet, "/pipelines", "")
	if err != nil {
		t.Fatalf("list request failed: %v", err)
	}
	if records := parseJSONList(t, resp); len(records) != 0 {
		t.Errorf("expected empty registry after rejection, got %d records", len(records))
	}
}

func TestCreatePipeline_UnknownElement(t *testing.T) {
	app := setupApp(t)

	body := `{"description": "bad", "pipeline": "nosuchelement ! fakesink"}`
	resp, err := doRequest(app, http.MethodPost, "/pipelines", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)

	result := parseJSON(t, resp)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error envelope, got %v", result)
	}
	if errObj["code"] != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %v", errObj["code"])
	}
}

func TestCreatePipeline_MissingFields(t *testing.T) {
	app := setupApp(t)

	resp, err := doRequest(app, http.MethodPost, "/pipelines", `{"description": "no descriptor"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestGetPipeline_NotFound(t *testing.T) {
	app := setupApp(t)

	resp, err := doRequest(app, http.MethodGet, "/pipelines/no-such-id", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)
}

func TestPipelineLifecycle(t *testing.T) {
	app := setupApp(t)

	resp, err := doRequest(app, http.MethodPost, "/pipelines",
		`{"description": "lifecycle", "pipeline": "videotestsrc ! fakesink"}`)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	id, _ := parseJSON(t, resp)["id"].(string)
	if id == "" {
		t.Fatal("no pipeline id returned")
	}

	resp, err = doRequest(app, http.MethodGet, "/pipelines/"+id, "")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	if got := parseJSON(t, resp)["id"]; got != id {
		t.Errorf("get returned wrong record: %v", got)
	}

	resp, err = doRequest(app, http.MethodGet, "/pipelines", "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if records := parseJSONList(t, resp); len(records) != 1 {
		t.Errorf("expected 1 record, got %d", len(records))
	}

	resp, err = doRequest(app, http.MethodDelete, "/pipelines/"+id, "")
	if err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	if got := parseJSON(t, resp)["pipelineId"]; got != id {
		t.Errorf("stop acknowledged wrong id: %v", got)
	}

	resp, err = doRequest(app, http.MethodGet, "/pipelines/"+id, "")
	if err != nil {
		t.Fatalf("get after stop failed: %v", err)
	}
	if got := parseJSON(t, resp)["state"]; got != "stopped" {
		t.Errorf("expected state 'stopped', got %v", got)
	}
}

func TestStopPipeline_Idempotent(t *testing.T) {
	app := setupApp(t)

	resp, err := doRequest(app, http.MethodPost, "/pipelines",
		`{"description": "stop twice", "pipeline": "src ! sink"}`)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	id, _ := parseJSON(t, resp)["id"].(string)

	for i := 0; i < 2; i++ {
		resp, err = doRequest(app, http.MethodDelete, "/pipelines/"+id, "")
		if err != nil {
			t.Fatalf("stop %d failed: %v", i+1, err)
		}
		assertStatus(t, resp, http.StatusOK)
	}
}

func TestStopPipeline_NotFound(t *testing.T) {
	app := setupApp(t)

	resp, err := doRequest(app, http.MethodDelete, "/pipelines/no-such-id", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)
}

func TestListPipelines_Multiple(t *testing.T) {
	app := setupApp(t)

	for i := 0; i < 3; i++ {
		body := fmt.Sprintf(`{"description": "job %d", "pipeline": "fakesrc ! fakesink"}`, i)
		resp, err := doRequest(app, http.MethodPost, "/pipelines", body)
		if err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
		assertStatus(t, resp, http.StatusOK)
	}

	resp, err := doRequest(app, http.MethodGet, "/pipelines", "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if records := parseJSONList(t, resp); len(records) != 3 {
		t.Errorf("expected 3 records, got %d", len(records))
	}
}
