package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ayusman/gesturemagic/internal/app"
	"github.com/ayusman/gesturemagic/internal/gesture"
	"github.com/ayusman/gesturemagic/internal/palette"
	"github.com/ayusman/gesturemagic/internal/shape"
)

// fakeScene records setter calls.
type fakeScene struct {
	shape shape.ID
	color string
}

func (f *fakeScene) State() app.State {
	return app.State{
		Shape:     f.shape,
		Color:     f.color,
		Gesture:   gesture.Absent(),
		Label:     gesture.None.Label(),
		Expansion: 1,
	}
}

func (f *fakeScene) SetShape(id shape.ID) error {
	f.shape = id
	return nil
}

func (f *fakeScene) SetColor(hex string) error {
	c, err := palette.ParseHex(hex)
	if err != nil {
		return err
	}
	f.color = c.Hex()
	return nil
}

func newSceneMux() (*fakeScene, *http.ServeMux) {
	scene := &fakeScene{shape: shape.Tree, color: "#0b6623"}
	mux := http.NewServeMux()
	NewSceneHandler(scene).Register(mux)
	return scene, mux
}

func TestSceneHandler_State(t *testing.T) {
	_, mux := newSceneMux()

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got struct {
		Shape   string `json:"shape"`
		Color   string `json:"color"`
		Label   string `json:"label"`
		Gesture struct {
			Gesture   string `json:"gesture"`
			IsPresent bool   `json:"isPresent"`
		} `json:"gesture"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.Shape != "Tree" || got.Color != "#0b6623" || got.Label != "No Hand Detected" {
		t.Errorf("state = %+v", got)
	}
	if got.Gesture.Gesture != "None" || got.Gesture.IsPresent {
		t.Errorf("gesture = %+v, want absent", got.Gesture)
	}
}

func TestSceneHandler_Shapes(t *testing.T) {
	_, mux := newSceneMux()

	req := httptest.NewRequest(http.MethodGet, "/api/shapes", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var got shapesResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := shapesResponse{Shapes: shape.All(), Current: shape.Tree}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("shapes mismatch (-want +got):\n%s", diff)
	}
}

func TestSceneHandler_SetShape(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantShape shape.ID
	}{
		{"valid", `{"shape": "heart"}`, http.StatusNoContent, shape.Heart},
		{"canonical name", `{"shape": "Ring"}`, http.StatusNoContent, shape.Ring},
		{"unknown", `{"shape": "cube"}`, http.StatusBadRequest, shape.Tree},
		{"bad json", `{shape`, http.StatusBadRequest, shape.Tree},
		{"unknown field", `{"shape": "star", "speed": 2}`, http.StatusBadRequest, shape.Tree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene, mux := newSceneMux()

			req := httptest.NewRequest(http.MethodPut, "/api/shape", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if scene.shape != tt.wantShape {
				t.Errorf("shape = %s, want %s", scene.shape, tt.wantShape)
			}
		})
	}
}

func TestSceneHandler_SetColor(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantColor string
	}{
		{"valid", `{"color": "#D4AF37"}`, http.StatusNoContent, "#d4af37"},
		{"no hash", `{"color": "c41e3a"}`, http.StatusNoContent, "#c41e3a"},
		{"invalid", `{"color": "gold"}`, http.StatusBadRequest, "#0b6623"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene, mux := newSceneMux()

			req := httptest.NewRequest(http.MethodPut, "/api/color", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if scene.color != tt.wantColor {
				t.Errorf("color = %s, want %s", scene.color, tt.wantColor)
			}
		})
	}
}

func TestSceneHandler_MethodNotAllowed(t *testing.T) {
	_, mux := newSceneMux()

	cases := map[string]string{
		"/api/state":  http.MethodPost,
		"/api/shapes": http.MethodDelete,
		"/api/shape":  http.MethodGet,
		"/api/color":  http.MethodPost,
	}
	for path, method := range cases {
		req := httptest.NewRequest(method, path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: status = %d, want %d", method, path, rec.Code, http.StatusMethodNotAllowed)
		}
	}
}
