package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"devpulse-agent/src/provider"
	"devpulse-agent/src/report"
	"devpulse-agent/src/store"
)

const missingRepoMessage = "You must provide an owner and repo name."

// registerRoutes registers all API routes.
func (s *Server) registerRoutes() {
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /report", s.handleReport)

	if s.queue != nil {
		s.router.HandleFunc("POST /requests", s.handleSubmit)
		s.router.HandleFunc("GET /requests", s.handleList)
		s.router.HandleFunc("GET /requests/{id}", s.handleStatus)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

// handleReport builds a report synchronously and returns it as plain text.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	owner := strings.TrimSpace(q.Get("owner"))
	repo := strings.TrimSpace(q.Get("repo"))
	if owner == "" || repo == "" {
		writeText(w, http.StatusBadRequest, missingRepoMessage)
		return
	}

	rep, err := s.reporter.Weekly(r.Context(), owner, repo, strings.TrimSpace(q.Get("username")), q.Get("token"))
	if err != nil {
		s.logger.Error("[HTTP] Report for %s/%s failed: %v", owner, repo, err)
		writeText(w, statusFor(err), failureMessage(err))
		return
	}

	writeText(w, http.StatusOK, rep.Render())
}

type submitRequest struct {
	Owner    string `json:"owner"`
	Repo     string `json:"repo"`
	Username string `json:"username,omitempty"`
	Days     int    `json:"days,omitempty"`
}

// handleSubmit queues a report request and returns its ID.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body submitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeText(w, http.StatusBadRequest, "Request body must be JSON.")
		return
	}
	if strings.TrimSpace(body.Owner) == "" || strings.TrimSpace(body.Repo) == "" {
		writeText(w, http.StatusBadRequest, missingRepoMessage)
		return
	}
	if body.Days <= 0 {
		body.Days = s.days
	}

	id, err := s.queue.Submit(r.Context(), body.Owner, body.Repo, body.Username, body.Days)
	if err != nil {
		s.logger.Error("[HTTP] Submit failed: %v", err)
		writeText(w, http.StatusBadGateway, "The request could not be queued.")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"request_id": id})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.queue.Status(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrRequestNotFound) {
		writeText(w, http.StatusNotFound, "Unknown request.")
		return
	}
	if err != nil {
		s.logger.Error("[HTTP] Status failed: %v", err)
		writeText(w, http.StatusBadGateway, "Status is unavailable.")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}

	list, err := s.queue.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("[HTTP] List failed: %v", err)
		writeText(w, http.StatusBadGateway, "Requests are unavailable.")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// statusFor maps report failures to response codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, provider.ErrInvalidRepo), errors.Is(err, report.ErrNoActivity):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, provider.ErrInvalidRepo):
		return "The repository could not be found or is not accessible."
	case errors.Is(err, report.ErrNoActivity):
		return "No activity to report for this window."
	case errors.Is(err, provider.ErrRateLimited):
		return "GitHub rate limit reached, try again later."
	default:
		return "The report could not be generated."
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
