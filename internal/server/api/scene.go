package api

import (
	"errors"
	"net/http"

	"github.com/ayusman/gesturemagic/internal/app"
	"github.com/ayusman/gesturemagic/internal/palette"
	"github.com/ayusman/gesturemagic/internal/shape"
)

// Scene is the part of the app the scene endpoints drive.
type Scene interface {
	State() app.State
	SetShape(id shape.ID) error
	SetColor(hex string) error
}

// SceneHandler serves /api/state, /api/shapes, /api/shape and /api/color.
type SceneHandler struct {
	scene Scene
}

// NewSceneHandler creates a SceneHandler over scene.
func NewSceneHandler(scene Scene) *SceneHandler {
	return &SceneHandler{scene: scene}
}

// Register adds the scene routes to mux.
func (h *SceneHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/state", h.state)
	mux.HandleFunc("/api/shapes", h.shapes)
	mux.HandleFunc("/api/shape", h.setShape)
	mux.HandleFunc("/api/color", h.setColor)
}

type shapesResponse struct {
	Shapes  []shape.ID `json:"shapes"`
	Current shape.ID   `json:"current"`
}

type shapeRequest struct {
	Shape string `json:"shape"`
}

type colorRequest struct {
	Color string `json:"color"`
}

// state handles GET /api/state.
func (h *SceneHandler) state(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.scene.State())
}

// shapes handles GET /api/shapes.
func (h *SceneHandler) shapes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, shapesResponse{
		Shapes:  shape.All(),
		Current: h.scene.State().Shape,
	})
}

// setShape handles PUT /api/shape.
func (h *SceneHandler) setShape(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req shapeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	id, err := shape.ParseID(req.Shape)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown shape")
		return
	}

	if err := h.scene.SetShape(id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to set shape")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// setColor handles PUT /api/color.
func (h *SceneHandler) setColor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req colorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.scene.SetColor(req.Color); err != nil {
		if errors.Is(err, palette.ErrInvalidColor) {
			writeError(w, http.StatusBadRequest, "Invalid color")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to set color")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
