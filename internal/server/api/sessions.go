package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/gesturemagic/internal/app"
	"github.com/ayusman/gesturemagic/internal/store"
)

// Recorder starts and stops session recording.
type Recorder interface {
	StartRecording(name string) (string, error)
	StopRecording() error
	Recording() string
}

// SessionHandler handles HTTP requests for recorded sessions.
type SessionHandler struct {
	store    *store.Store
	recorder Recorder
}

// NewSessionHandler creates a SessionHandler. recorder may be nil, in which
// case sessions are read-only.
func NewSessionHandler(s *store.Store, recorder Recorder) *SessionHandler {
	return &SessionHandler{store: s, recorder: recorder}
}

// ServeHTTP routes /api/sessions, /api/sessions/stop and /api/sessions/{id}.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "":
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.start(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case path == "stop":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.stop(w, r)
	default:
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, path)
		case http.MethodDelete:
			h.delete(w, r, path)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

type sessionSummary struct {
	*store.Session
	Active bool `json:"active"`
}

type listSessionsResponse struct {
	Sessions  []sessionSummary `json:"sessions"`
	Recording string           `json:"recording,omitempty"`
}

type sessionResponse struct {
	*store.Session
	FrameData []store.Frame `json:"frameData"`
}

type startRequest struct {
	Name string `json:"name"`
}

type startResponse struct {
	ID string `json:"id"`
}

// list handles GET /api/sessions.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	// Sessions left unfinished by a crash stay active until deleted.
	resp := listSessionsResponse{Sessions: make([]sessionSummary, 0, len(sessions))}
	for _, sess := range sessions {
		resp.Sessions = append(resp.Sessions, sessionSummary{Session: sess, Active: sess.Active()})
	}
	if h.recorder != nil {
		resp.Recording = h.recorder.Recording()
	}
	writeJSON(w, http.StatusOK, resp)
}

// get handles GET /api/sessions/{id} and includes the recorded frames.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	frames, err := h.store.Frames().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get session frames")
		return
	}
	if frames == nil {
		frames = []store.Frame{}
	}

	writeJSON(w, http.StatusOK, sessionResponse{Session: sess, FrameData: frames})
}

// delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if h.recorder != nil && h.recorder.Recording() == id {
		writeError(w, http.StatusConflict, "Session is being recorded")
		return
	}

	if err := h.store.Sessions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// start handles POST /api/sessions and begins recording.
func (h *SessionHandler) start(w http.ResponseWriter, r *http.Request) {
	if h.recorder == nil {
		writeError(w, http.StatusServiceUnavailable, "Recording is not available")
		return
	}

	var req startRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	id, err := h.recorder.StartRecording(req.Name)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrAlreadyRecording):
			writeError(w, http.StatusConflict, "Already recording")
		case errors.Is(err, app.ErrRecordingUnavailable):
			writeError(w, http.StatusServiceUnavailable, "Recording is not available")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to start recording")
		}
		return
	}

	writeJSON(w, http.StatusCreated, startResponse{ID: id})
}

// stop handles POST /api/sessions/stop.
func (h *SessionHandler) stop(w http.ResponseWriter, r *http.Request) {
	if h.recorder == nil {
		writeError(w, http.StatusServiceUnavailable, "Recording is not available")
		return
	}

	if err := h.recorder.StopRecording(); err != nil {
		if errors.Is(err, app.ErrNotRecording) {
			writeError(w, http.StatusConflict, "Not recording")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to stop recording")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
