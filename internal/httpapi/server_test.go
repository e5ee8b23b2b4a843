package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/emilianohg/waypoint/internal/models"
	"github.com/emilianohg/waypoint/internal/planner"
	"github.com/emilianohg/waypoint/internal/storage/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.Backend) {
	t.Helper()
	n := 0
	backend := memory.New("test")
	store := planner.New(backend, planner.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))
	return New(store, log.New(io.Discard)), backend
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
}

func TestProjectLifecycle(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/projects", `{"title":"Launch","description":"v1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d %s", rec.Code, rec.Body)
	}
	created := decodeBody[models.Project](t, rec)
	if created.ID != "id-1" || created.Title != "Launch" {
		t.Errorf("created: %+v", created)
	}

	rec = do(t, s, http.MethodGet, "/api/projects/id-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: got %d", rec.Code)
	}

	rec = do(t, s, http.MethodPut, "/api/projects/id-1", `{"title":"Relaunch"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: got %d %s", rec.Code, rec.Body)
	}
	if got := decodeBody[models.Project](t, rec); got.Title != "Relaunch" || got.Description != "v1" {
		t.Errorf("updated: %+v", got)
	}

	rec = do(t, s, http.MethodGet, "/api/projects", "")
	if list := decodeBody[[]models.Project](t, rec); len(list) != 1 {
		t.Errorf("list: got %d projects", len(list))
	}

	rec = do(t, s, http.MethodDelete, "/api/projects/id-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: got %d", rec.Code)
	}
	if got := decodeBody[map[string]bool](t, rec); !got["success"] {
		t.Errorf("delete body: %s", rec.Body)
	}

	rec = do(t, s, http.MethodDelete, "/api/projects/id-1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: got %d", rec.Code)
	}
}

func TestEmptyListIsArray(t *testing.T) {
	s, _ := newTestServer(t)
	for _, path := range []string{"/api/projects", "/api/milestones", "/api/tasks"} {
		rec := do(t, s, http.MethodGet, path, "")
		if strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Errorf("%s: got %s, want []", path, rec.Body)
		}
	}
}

func TestCreateValidation(t *testing.T) {
	s, backend := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty title", `{"title":""}`},
		{"missing title", `{}`},
		{"title not a string", `{"title":42}`},
		{"not json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/projects", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", rec.Code)
			}
			if _, ok := decodeBody[map[string]string](t, rec)["error"]; !ok {
				t.Errorf("body: %s", rec.Body)
			}
		})
	}
	if backend.Saves() != 0 {
		t.Errorf("rejected creates saved %d times", backend.Saves())
	}
}

func TestNestedNotFound(t *testing.T) {
	s, backend := newTestServer(t)

	tests := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/projects/nope", ""},
		{http.MethodPost, "/api/projects/nope/milestones", `{"title":"Beta"}`},
		{http.MethodPut, "/api/projects/nope/milestones/m", `{"title":"Beta"}`},
		{http.MethodDelete, "/api/projects/nope/milestones/m", ""},
		{http.MethodPost, "/api/projects/nope/milestones/m/tasks", `{"title":"x"}`},
		{http.MethodPut, "/api/projects/nope/milestones/m/tasks/t", `{"status":"completed"}`},
		{http.MethodDelete, "/api/projects/nope/milestones/m/tasks/t", ""},
	}
	for _, tt := range tests {
		rec := do(t, s, tt.method, tt.path, tt.body)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s: got %d, want 404", tt.method, tt.path, rec.Code)
		}
	}
	if backend.Saves() != 0 {
		t.Errorf("not-found requests saved %d times", backend.Saves())
	}
}

func TestTaskFlow(t *testing.T) {
	s, _ := newTestServer(t)

	steps := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/api/projects", `{"title":"Launch"}`, http.StatusCreated},
		{http.MethodPost, "/api/projects/id-1/milestones", `{"title":"Beta","priority":"high"}`, http.StatusCreated},
		{http.MethodPost, "/api/projects/id-1/milestones/id-2/tasks", `{"title":"Write docs","status":"completed"}`, http.StatusCreated},
		{http.MethodPut, "/api/projects/id-1/milestones/id-2/tasks/id-3", `{"status":"completed"}`, http.StatusOK},
	}
	for _, st := range steps {
		rec := do(t, s, st.method, st.path, st.body)
		if rec.Code != st.want {
			t.Fatalf("%s %s: got %d %s", st.method, st.path, rec.Code, rec.Body)
		}
	}

	rec := do(t, s, http.MethodGet, "/api/tasks", "")
	tasks := decodeBody[[]models.TaskView](t, rec)
	if len(tasks) != 1 {
		t.Fatalf("tasks: got %d", len(tasks))
	}
	v := tasks[0]
	if v.Project.Title != "Launch" || v.Milestone.Title != "Beta" || v.Status != models.StatusCompleted || v.CompletedDate == nil {
		t.Errorf("flat task: %+v", v)
	}

	rec = do(t, s, http.MethodGet, "/api/milestones", "")
	if ms := decodeBody[[]models.MilestoneView](t, rec); len(ms) != 1 || ms[0].Project.ID != "id-1" || ms[0].TaskCount != 1 {
		t.Errorf("flat milestones: %s", rec.Body)
	}
	raw := decodeBody[[]map[string]any](t, rec)
	if _, ok := raw[0]["tasks"]; ok {
		t.Errorf("flat milestone carries its tasks: %s", rec.Body)
	}

	rec = do(t, s, http.MethodGet, "/api/summary", "")
	sum := decodeBody[models.Summary](t, rec)
	if sum.Tasks != 1 || sum.ByStatus[models.StatusCompleted] != 1 {
		t.Errorf("summary: %+v", sum)
	}

	rec = do(t, s, http.MethodPut, "/api/projects/id-1/milestones/id-2/tasks/id-3", `{"status":"finished"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad status: got %d", rec.Code)
	}

	rec = do(t, s, http.MethodDelete, "/api/projects/id-1/milestones/id-2/tasks/id-3", "")
	if rec.Code != http.StatusOK {
		t.Errorf("delete task: got %d", rec.Code)
	}
	rec = do(t, s, http.MethodDelete, "/api/projects/id-1/milestones/id-2", "")
	if rec.Code != http.StatusOK {
		t.Errorf("delete milestone: got %d", rec.Code)
	}
	rec = do(t, s, http.MethodDelete, "/api/projects/id-1/milestones/id-2", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete missing milestone: got %d", rec.Code)
	}
}

func TestPersistenceFailureIsGeneric(t *testing.T) {
	s, backend := newTestServer(t)
	backend.LoadErr = errors.New("/secret/path: permission denied")

	rec := do(t, s, http.MethodGet, "/api/projects", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", rec.Code)
	}
	if got := decodeBody[map[string]string](t, rec)["error"]; got != "operation failed" {
		t.Errorf("error: got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodGet, "/api/projects", "")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "waypoint_store_operations_total") {
		t.Error("store counter not exported")
	}
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/nothing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d", rec.Code)
	}
}
