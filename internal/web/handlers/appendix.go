package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kozaktomas/photo-appendix/internal/ai"
	"github.com/kozaktomas/photo-appendix/internal/appendix"
	"github.com/kozaktomas/photo-appendix/internal/config"
	"github.com/kozaktomas/photo-appendix/internal/exif"
	"github.com/kozaktomas/photo-appendix/internal/latex"
	"github.com/kozaktomas/photo-appendix/internal/render"
	"github.com/kozaktomas/photo-appendix/internal/staticmap"
)

// AppendixHandler handles appendix generation endpoints
type AppendixHandler struct {
	config     *config.Config
	jobManager *JobManager
}

// NewAppendixHandler creates a new appendix handler
func NewAppendixHandler(cfg *config.Config, jm *JobManager) *AppendixHandler {
	return &AppendixHandler{
		config:     cfg,
		jobManager: jm,
	}
}

// StartRequest represents an appendix start request
type StartRequest struct {
	Photos          []string `json:"photos"`
	Output          string   `json:"output"`
	ImagesPerPage   int      `json:"images_per_page"`
	IncludeLocation *bool    `json:"include_location"`
	AICaptions      bool     `json:"ai_captions"`
	Concurrency     int      `json:"concurrency"`
}

// Start starts a new appendix generation job
func (h *AppendixHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if len(req.Photos) == 0 {
		respondError(w, http.StatusBadRequest, "photos is required")
		return
	}

	if req.Output == "" {
		req.Output = "appendix.pdf"
	}

	// Per-job config overlay on top of the server defaults.
	cfg := *h.config
	if req.ImagesPerPage > 0 {
		cfg.Appendix.ImagesPerPage = req.ImagesPerPage
	}
	if req.IncludeLocation != nil {
		cfg.Appendix.IncludeLocationInCaption = *req.IncludeLocation
	}
	if req.Concurrency > 0 {
		cfg.Appendix.Concurrency = req.Concurrency
	}
	if err := cfg.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobID := uuid.New().String()
	options := AppendixJobOptions{
		Photos:          req.Photos,
		Output:          req.Output,
		ImagesPerPage:   cfg.Appendix.ImagesPerPage,
		IncludeLocation: cfg.Appendix.IncludeLocationInCaption,
		AICaptions:      req.AICaptions,
		Concurrency:     cfg.Appendix.Concurrency,
	}
	job := h.jobManager.CreateJob(jobID, options)
	job.TotalPhotos = len(req.Photos)

	// Start job in background
	go h.runAppendixJob(job, &cfg)

	respondJSON(w, http.StatusAccepted, map[string]any{
		"job_id":       jobID,
		"total_photos": len(req.Photos),
		"status":       string(JobStatusPending),
	})
}

// Status returns the status of an appendix job
func (h *AppendixHandler) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		respondError(w, http.StatusBadRequest, "missing job ID")
		return
	}

	job := h.jobManager.GetJob(jobID)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// Events streams job events via SSE
func (h *AppendixHandler) Events(w http.ResponseWriter, r *http.Request) {
	streamSSEEvents(w, r,
		func(id string) SSEJob {
			job := h.jobManager.GetJob(id)
			if job == nil {
				return nil
			}
			return job
		},
		func(job SSEJob) any {
			return job
		},
	)
}

// Cancel cancels an appendix job
func (h *AppendixHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		respondError(w, http.StatusBadRequest, "missing job ID")
		return
	}

	job := h.jobManager.GetJob(jobID)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}

	job.Cancel()
	respondJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

// List returns all appendix jobs
func (h *AppendixHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.jobManager.ListJobs())
}

// runAppendixJob runs the appendix job in the background
func (h *AppendixHandler) runAppendixJob(job *AppendixJob, cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	job.cancel = cancel
	defer cancel()

	job.mu.Lock()
	job.Status = JobStatusRunning
	job.mu.Unlock()
	job.SendEvent(JobEvent{Type: "started", Message: "Appendix job started"})

	extractor, err := exif.NewExtractor()
	if err != nil {
		h.failJob(job, fmt.Sprintf("failed to start metadata extractor: %v", err))
		return
	}
	defer extractor.Close()

	marker := &render.MarkerRenderer{Source: staticmap.New(cfg.Map)}
	compass := &render.CompassRenderer{}
	writer := latex.NewWriter(cfg.Appendix)

	asm := appendix.New(cfg, extractor, marker, compass, writer)
	if job.Options.AICaptions {
		provider, err := ai.NewProvider(ctx, cfg.AI)
		if err != nil {
			log.Printf("WARNING: AI captions disabled for job %s: %v", sanitizeForLog(job.ID), err)
			job.SendEvent(JobEvent{Type: "warning", Message: fmt.Sprintf("AI captions disabled: %v", err)})
		} else {
			asm.SetCaptioner(provider)
		}
	}

	asm.SetProgress(func(done, total int) {
		job.mu.Lock()
		job.ProcessedPhotos = done
		job.Progress = int(float64(done) / float64(total) * 100)
		job.mu.Unlock()
		job.SendEvent(JobEvent{
			Type: "progress",
			Data: map[string]int{
				"processed_photos": done,
				"total_photos":     total,
			},
		})
	})

	summary, err := asm.Assemble(ctx, job.Options.Photos, job.Options.Output)
	if err != nil {
		if ctx.Err() != nil {
			job.mu.Lock()
			job.Status = JobStatusCancelled
			job.mu.Unlock()
			job.SendEvent(JobEvent{Type: "cancelled", Message: "Job was cancelled"})
			return
		}
		h.failJob(job, fmt.Sprintf("appendix generation failed: %v", err))
		return
	}

	jobResult := &AppendixJobResult{
		Output:    job.Options.Output,
		Total:     summary.Total,
		Processed: summary.Processed,
		Skipped:   summary.Skipped,
		Pages:     summary.Pages,
		Warnings:  summary.Warnings,
	}

	now := time.Now()
	job.mu.Lock()
	job.Status = JobStatusCompleted
	job.CompletedAt = &now
	job.ProcessedPhotos = summary.Processed
	job.Progress = 100
	job.Result = jobResult
	job.mu.Unlock()

	job.SendEvent(JobEvent{Type: "completed", Data: jobResult})
}

func (h *AppendixHandler) failJob(job *AppendixJob, message string) {
	now := time.Now()
	job.mu.Lock()
	job.Status = JobStatusFailed
	job.Error = message
	job.CompletedAt = &now
	job.mu.Unlock()
	job.SendEvent(JobEvent{Type: "job_error", Message: message})
}
