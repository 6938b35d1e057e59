// Package api exposes the audit queue over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"sitepulse/packages/audit"
	"sitepulse/packages/db"
	"sitepulse/packages/domain"
)

type Server struct {
	storage *db.Storage
	engine  *audit.Engine
}

func New(storage *db.Storage, engine *audit.Engine) *Server {
	return &Server{storage: storage, engine: engine}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Get("/healthz", s.handleHealthz)
	r.Post("/audits", s.handleCreateAudit)
	r.Get("/audits/{id}", s.handleGetAudit)
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("http request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createAuditRequest struct {
	URL      string `json:"url"`
	Category string `json:"business_category"`
}

// handleCreateAudit queues an audit. With ?wait=1 it runs the pipeline
// inline and returns the finished result instead of an id.
func (s *Server) handleCreateAudit(w http.ResponseWriter, r *http.Request) {
	var req createAuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	target, err := domain.NewAuditTarget(req.URL, domain.BusinessCategory(req.Category))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if r.URL.Query().Get("wait") == "1" {
		result, err := s.engine.Run(r.Context(), target)
		if err != nil {
			var auditErr *domain.AuditError
			if errors.As(err, &auditErr) {
				writeError(w, http.StatusBadGateway, auditErr.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	id, err := s.storage.EnqueueAudit(r.Context(), target.URL, target.Category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to enqueue audit")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"id": id, "status": domain.AuditPending})
}

func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid audit id")
		return
	}
	rec, err := s.storage.GetAudit(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "audit not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load audit")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
