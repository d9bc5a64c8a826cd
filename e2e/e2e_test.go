package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/gesturemagic/internal/app"
	"github.com/ayusman/gesturemagic/internal/capture"
	"github.com/ayusman/gesturemagic/internal/detector"
	"github.com/ayusman/gesturemagic/internal/gesture"
	"github.com/ayusman/gesturemagic/internal/replay"
	"github.com/ayusman/gesturemagic/internal/server"
	"github.com/ayusman/gesturemagic/internal/store"
	"github.com/ayusman/gesturemagic/internal/vision"
)

func newFrames(t *testing.T, n int) []*gocv.Mat {
	t.Helper()
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := gocv.NewMatWithSize(capture.DefaultHeight, capture.DefaultWidth, gocv.MatTypeCV8UC3)
		frames[i] = &m
		t.Cleanup(func() { m.Close() })
	}
	return frames
}

func getState(t *testing.T, client *http.Client, url string) app.State {
	t.Helper()
	resp, err := client.Get(url + "/api/state")
	if err != nil {
		t.Fatalf("GET /api/state error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var st app.State
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return st
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	cam := capture.NewMockCamera(newFrames(t, 3), true)
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.ClosedFistLandmarks()})
	loop := vision.New(cam, det, vision.Config{FPS: 100, Preview: true})

	application := app.New(app.Config{Seed: 7, Source: loop, Store: s})
	defer application.Close()

	srv := server.New(server.Config{Scene: application, Store: s, Preview: loop})
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()
	var sessionID string

	t.Run("StartRecording", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/sessions", "application/json", strings.NewReader(`{"name": "fist"}`))
		if err != nil {
			t.Fatalf("start recording error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
		var body struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		sessionID = body.ID
	})

	t.Run("FistCollapsesScene", func(t *testing.T) {
		if err := application.Start(context.Background()); err != nil {
			t.Fatalf("Start() error = %v", err)
		}

		deadline := time.Now().Add(2 * time.Second)
		for application.Gesture().Gesture != gesture.ClosedFist {
			if time.Now().After(deadline) {
				t.Fatal("vision loop never reported a fist")
			}
			time.Sleep(5 * time.Millisecond)
		}

		for i := 0; i < 60; i++ {
			application.Tick(1.0 / 60)
		}

		st := getState(t, client, ts.URL)
		if st.Label != "Closed Fist" {
			t.Errorf("label = %q, want %q", st.Label, "Closed Fist")
		}
		if st.Expansion > 0.12 {
			t.Errorf("expansion = %f, want about 0.1", st.Expansion)
		}
	})

	t.Run("ChangeShapeAndColor", func(t *testing.T) {
		for _, req := range []struct{ path, body string }{
			{"/api/shape", `{"shape": "Heart"}`},
			{"/api/color", `{"color": "#C41E3A"}`},
		} {
			r, _ := http.NewRequest(http.MethodPut, ts.URL+req.path, strings.NewReader(req.body))
			resp, err := client.Do(r)
			if err != nil {
				t.Fatalf("PUT %s error = %v", req.path, err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusNoContent {
				t.Fatalf("PUT %s status = %d, want %d", req.path, resp.StatusCode, http.StatusNoContent)
			}
		}

		st := getState(t, client, ts.URL)
		if st.Shape != "Heart" || st.Color != "#c41e3a" {
			t.Errorf("state = %s %s, want Heart #c41e3a", st.Shape, st.Color)
		}
		if st.Ornament != nil {
			t.Error("ornament should only show on the tree")
		}
	})

	t.Run("StopAndReplay", func(t *testing.T) {
		application.Stop()

		resp, err := client.Post(ts.URL+"/api/sessions/stop", "application/json", nil)
		if err != nil {
			t.Fatalf("stop recording error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
		}

		player, err := replay.Load(s, sessionID)
		if err != nil {
			t.Fatalf("replay.Load() error = %v", err)
		}
		if player.Len() == 0 {
			t.Fatal("recorded session has no frames")
		}

		replayed := app.New(app.Config{Seed: 7, Source: player})
		defer replayed.Close()
		if err := replayed.Start(context.Background()); err != nil {
			t.Fatalf("Start() error = %v", err)
		}

		deadline := time.Now().Add(2 * time.Second)
		for replayed.Gesture().Gesture != gesture.ClosedFist {
			if time.Now().After(deadline) {
				t.Fatal("replay never reported the recorded fist")
			}
			time.Sleep(5 * time.Millisecond)
		}
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("health error = %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed after app operations")
		}
		resp.Body.Close()
	})
}

func TestE2E_CameraFailureKeepsRestPose(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	cam := capture.NewMockCamera(nil, false)
	cam.SetOpenError(capture.ErrCameraNotOpen)
	det := detector.NewMockDetector()
	loop := vision.New(cam, det, vision.DefaultConfig())

	application := app.New(app.Config{Seed: 1, Source: loop})
	defer application.Close()
	if err := application.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for loop.Err() == nil || loop.Running() {
		if time.Now().After(deadline) {
			t.Fatal("vision loop did not report the camera failure")
		}
		time.Sleep(5 * time.Millisecond)
	}

	for i := 0; i < 30; i++ {
		application.Tick(1.0 / 60)
	}

	st := application.State()
	if st.Gesture.Present {
		t.Error("gesture should stay absent after a camera failure")
	}
	if st.Expansion < 0.99 || st.Expansion > 1.01 {
		t.Errorf("expansion = %f, want rest pose 1", st.Expansion)
	}
	if !det.Closed() {
		t.Error("detector should be released after a camera failure")
	}
}
