package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/photo-appendix/internal/config"
)

func newTestRouter(t *testing.T) (*chi.Mux, *JobManager) {
	t.Helper()
	jm := NewJobManager()
	h := NewAppendixHandler(config.Load(), jm)

	r := chi.NewRouter()
	r.Get("/api/v1/health", HealthCheck)
	r.Get("/api/v1/appendix", h.List)
	r.Post("/api/v1/appendix", h.Start)
	r.Get("/api/v1/appendix/{jobId}", h.Status)
	r.Delete("/api/v1/appendix/{jobId}", h.Cancel)
	return r, jm
}

func TestHealthCheck(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestStartValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", "{not json"},
		{"missing photos", `{"output": "out.pdf"}`},
		{"empty photos", `{"photos": []}`},
		{"bad images per page", `{"photos": ["a.jpg"], "images_per_page": 7}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/appendix", strings.NewReader(tc.body))
			r.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestStatusNotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/appendix/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestCancelNotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/appendix/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestStatusReturnsJob(t *testing.T) {
	r, jm := newTestRouter(t)
	job := jm.CreateJob("job-1", AppendixJobOptions{Photos: []string{"a.jpg"}, Output: "out.pdf"})
	job.TotalPhotos = 1

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/appendix/job-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got AppendixJob
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.ID != "job-1" || got.Status != JobStatusPending || got.TotalPhotos != 1 {
		t.Errorf("unexpected job %+v", &got)
	}
}

func TestJobManager(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob("id-1", AppendixJobOptions{Output: "x.pdf"})
	if jm.GetJob("id-1") != job {
		t.Error("GetJob should return the created job")
	}
	if jm.GetJob("missing") != nil {
		t.Error("GetJob should return nil for unknown IDs")
	}
	if len(jm.ListJobs()) != 1 {
		t.Errorf("expected one job, got %d", len(jm.ListJobs()))
	}

	jm.DeleteJob("id-1")
	if jm.GetJob("id-1") != nil {
		t.Error("job should be gone after DeleteJob")
	}
}

func TestEventBroadcaster(t *testing.T) {
	var b EventBroadcaster

	ch := b.AddListener()
	b.SendEvent(JobEvent{Type: "progress", Message: "hi"})

	select {
	case ev := <-ch:
		if ev.Type != "progress" || ev.Message != "hi" {
			t.Errorf("unexpected event %+v", ev)
		}
	default:
		t.Fatal("listener did not receive the event")
	}

	b.RemoveListener(ch)
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after RemoveListener")
	}

	// Sending with no listeners must not panic.
	b.SendEvent(JobEvent{Type: "noop"})
}
