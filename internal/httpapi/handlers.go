package httpapi

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/raewoo0908/mp3Extractor/internal/jobs"
	"github.com/raewoo0908/mp3Extractor/pkg/file"
	"github.com/raewoo0908/mp3Extractor/pkg/log"
)

type extractRequest struct {
	URL string `json:"url"`
}

type extractResponse struct {
	TaskID     string      `json:"task_id"`
	Status     jobs.Status `json:"status"`
	Message    string      `json:"message"`
	TotalTasks int         `json:"total_tasks"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	job, err := s.store.Create(req.URL)
	if err != nil {
		if jobs.IsKind(err, jobs.KindCapacityExceeded) {
			writeError(w, http.StatusTooManyRequests, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.dispatch(job.ID, job.URL)

	writeJSON(w, http.StatusOK, extractResponse{
		TaskID:     job.ID,
		Status:     job.Status,
		Message:    "audio extraction started",
		TotalTasks: s.store.Count(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/status/")
	job, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "cannot find the task")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

type statusListResponse struct {
	TotalTasks int         `json:"total_tasks"`
	Tasks      []*jobs.Job `json:"tasks"`
}

func (s *Server) handleListStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	tasks := s.store.List()
	writeJSON(w, http.StatusOK, statusListResponse{
		TotalTasks: len(tasks),
		Tasks:      tasks,
	})
}

// handleDownload streams the artifact exactly once. The claim below is
// atomic, so a concurrent second request cannot win the same artifact;
// after the stream the file and the record are both gone.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/download/")
	job, err := s.store.ClaimDownload(id)
	if err != nil {
		switch {
		case jobs.IsKind(err, jobs.KindNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case jobs.IsKind(err, jobs.KindNotCompleted):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	f, err := os.Open(job.ArtifactPath)
	if err != nil {
		// Completed on record but absent on disk; leave the record for
		// the reaper rather than recovering silently.
		log.Error("Task %s: artifact missing at %s: %v", id, job.ArtifactPath, err)
		writeError(w, http.StatusNotFound, jobs.NewError(jobs.KindFileMissing, "cannot find the file").Error())
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		log.Error("Task %s: cannot stat artifact %s: %v", id, job.ArtifactPath, err)
		writeError(w, http.StatusInternalServerError, "server error occurred")
		return
	}

	title := job.Title
	if title == "" {
		title = "audio"
	}
	downloadName := file.SanitizeName(title) + ".mp3"
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", `attachment; filename="`+downloadName+`"`)
	http.ServeContent(w, r, downloadName, info.ModTime(), f)

	if err := os.Remove(job.ArtifactPath); err != nil {
		log.Warn("Task %s: failed to remove artifact %s: %v", id, job.ArtifactPath, err)
	}
	s.store.Delete(id)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}
