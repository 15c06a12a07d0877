package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dgallion1/docrender/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleDeliver queues a document for rendering and page-by-page
// delivery to a Matrix room.
func (s *Server) handleDeliver(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.MatrixConfigured() {
		jsonError(w, "matrix delivery is not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	roomID := r.FormValue("room_id")
	if roomID == "" {
		jsonError(w, "room_id is required", http.StatusBadRequest)
		return
	}

	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	pageSize := s.cfg.DefaultPageSize
	if v := r.FormValue("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "page_size must be a positive integer", http.StatusBadRequest)
			return
		}
		pageSize = n
	}

	job := pipeline.NewJob(roomID, filename, data, pageSize)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/deliver/%s/status", job.ID),
	})
}

func (s *Server) handleDeliverStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}
