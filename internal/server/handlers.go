package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/esgdash/esgdash/internal/filter"
	"github.com/esgdash/esgdash/internal/session"
)

// sessionResponse is the payload for every session endpoint.
type sessionResponse struct {
	SessionID string           `json:"session_id"`
	Baseline  filter.State     `json:"baseline"`
	Snapshot  session.Snapshot `json:"snapshot"`
	DataError string           `json:"data_error,omitempty"`
}

type errorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.Create()
	snap, err := sess.Snapshot()
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.respond(sess, snap))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snap, err := sess.Snapshot()
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.respond(sess, snap))
}

func (s *Server) handleUpdateFilters(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var patch filter.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	snap, err := sess.UpdateFilters(patch)
	switch {
	case errors.Is(err, filter.ErrInvalidRange):
		writeError(w, http.StatusUnprocessableEntity, "invalid_range", err.Error())
		return
	case errors.Is(err, filter.ErrUnknownRegion):
		writeError(w, http.StatusUnprocessableEntity, "unknown_region", err.Error())
		return
	case err != nil:
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.respond(sess, snap))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snap, err := sess.Reset()
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.respond(sess, snap))
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_session", "session not found")
		return nil, false
	}
	return sess, true
}

func (s *Server) respond(sess *session.Session, snap session.Snapshot) sessionResponse {
	return sessionResponse{
		SessionID: sess.ID,
		Baseline:  sess.Baseline(),
		Snapshot:  snap,
		DataError: s.dataErr,
	}
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	zap.L().Error("dashboard computation failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal", "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorResponse{Kind: kind, Error: msg})
}
