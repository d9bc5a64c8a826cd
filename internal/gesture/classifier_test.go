package gesture

import (
	"math"
	"sync"
	"testing"

	"github.com/ayusman/gesturemagic/internal/detector"
)

const epsilon = 1e-9

// handWithTipDistance places the wrist at (wx, wy) and every fingertip at
// exactly dist from it, spread over different directions.
func handWithTipDistance(wx, wy, dist float64) detector.HandLandmarks {
	hand := detector.OpenPalmLandmarks()
	wrist := detector.Point3D{X: wx, Y: wy}
	hand.Points[detector.Wrist] = wrist

	dirs := [4]detector.Point3D{
		{X: 0, Y: -1, Z: 0},
		{X: 0.6, Y: -0.8, Z: 0},
		{X: -0.6, Y: -0.8, Z: 0},
		{X: 0, Y: -0.6, Z: 0.8},
	}
	for i, tip := range detector.FingerTips {
		d := dirs[i]
		hand.Points[tip] = detector.Point3D{
			X: wrist.X + d.X*dist,
			Y: wrist.Y + d.Y*dist,
			Z: wrist.Z + d.Z*dist,
		}
	}
	return hand
}

func TestClassify_Absent(t *testing.T) {
	got := Classify(nil)

	if got.Gesture != None {
		t.Errorf("Gesture = %q, want %q", got.Gesture, None)
	}
	if got.Present {
		t.Error("Present should be false for an absent hand")
	}
	if got.Rotation != (Rotation{}) {
		t.Errorf("Rotation = %+v, want zero", got.Rotation)
	}
	if got.PinchDistance != 1 {
		t.Errorf("PinchDistance = %f, want 1", got.PinchDistance)
	}
}

func TestClassify_Fixtures(t *testing.T) {
	tests := []struct {
		name string
		hand detector.HandLandmarks
		want Gesture
	}{
		{name: "closed fist", hand: detector.ClosedFistLandmarks(), want: ClosedFist},
		{name: "open palm", hand: detector.OpenPalmLandmarks(), want: OpenPalm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(&tt.hand)
			if got.Gesture != tt.want {
				t.Errorf("Gesture = %q, want %q", got.Gesture, tt.want)
			}
			if !got.Present {
				t.Error("Present should be true when a hand is observed")
			}
		})
	}
}

func TestClassify_Threshold(t *testing.T) {
	tests := []struct {
		dist float64
		want Gesture
	}{
		{dist: 0.05, want: ClosedFist},
		{dist: 0.2, want: ClosedFist},
		{dist: 0.2499, want: ClosedFist},
		{dist: 0.2501, want: OpenPalm},
		{dist: 0.3, want: OpenPalm},
		{dist: 0.45, want: OpenPalm},
	}

	for _, tt := range tests {
		hand := handWithTipDistance(0.5, 0.7, tt.dist)
		got := Classify(&hand)
		if got.Gesture != tt.want {
			t.Errorf("dist %.4f: Gesture = %q, want %q", tt.dist, got.Gesture, tt.want)
		}
	}
}

func TestClassify_Rotation(t *testing.T) {
	tests := []struct {
		name   string
		wx, wy float64
		want   Rotation
	}{
		{name: "center", wx: 0.5, wy: 0.5, want: Rotation{X: 0, Y: 0}},
		{name: "left edge", wx: 0, wy: 0.5, want: Rotation{X: -2, Y: 0}},
		{name: "right bottom", wx: 1, wy: 1, want: Rotation{X: 2, Y: 1}},
		{name: "quarter", wx: 0.75, wy: 0.25, want: Rotation{X: 1, Y: -0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hand := handWithTipDistance(tt.wx, tt.wy, 0.1)
			got := Classify(&hand).Rotation
			if math.Abs(got.X-tt.want.X) > epsilon || math.Abs(got.Y-tt.want.Y) > epsilon {
				t.Errorf("Rotation = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClassify_PinchIgnoresDepth(t *testing.T) {
	hand := detector.OpenPalmLandmarks()
	hand.Points[detector.ThumbTip] = detector.Point3D{X: 0.5, Y: 0.5, Z: 0.4}
	hand.Points[detector.IndexTip] = detector.Point3D{X: 0.53, Y: 0.54, Z: -0.4}

	got := Classify(&hand)

	if math.Abs(got.PinchDistance-0.05) > epsilon {
		t.Errorf("PinchDistance = %f, want 0.05", got.PinchDistance)
	}
}

func TestClassify_Malformed(t *testing.T) {
	t.Run("NaN degrades to absent", func(t *testing.T) {
		hand := detector.OpenPalmLandmarks()
		hand.Points[detector.MiddleTip].X = math.NaN()

		got := Classify(&hand)
		if got != Absent() {
			t.Errorf("Classify = %+v, want Absent", got)
		}
	})

	t.Run("out of range is clamped", func(t *testing.T) {
		hand := detector.OpenPalmLandmarks()
		hand.Points[detector.Wrist] = detector.Point3D{X: 7, Y: -3}

		got := Classify(&hand)
		if !got.Present {
			t.Fatal("finite landmarks should still count as a hand")
		}
		if got.Rotation.X != 2 || got.Rotation.Y != -1 {
			t.Errorf("Rotation = %+v, want clamped {2 -1}", got.Rotation)
		}
	})
}

func TestClassify_NeverPointing(t *testing.T) {
	for d := 0.0; d < 1; d += 0.01 {
		hand := handWithTipDistance(0.5, 0.9, d)
		if g := Classify(&hand).Gesture; g == Pointing || g == None {
			t.Fatalf("dist %.2f classified as %q", d, g)
		}
	}
}

func TestClassifyFirst(t *testing.T) {
	if got := ClassifyFirst(nil); got != Absent() {
		t.Errorf("ClassifyFirst(nil) = %+v, want Absent", got)
	}

	hands := []detector.HandLandmarks{detector.ClosedFistLandmarks(), detector.OpenPalmLandmarks()}
	if got := ClassifyFirst(hands); got.Gesture != ClosedFist {
		t.Errorf("ClassifyFirst = %q, want first hand's %q", got.Gesture, ClosedFist)
	}
}

func TestState_PresenceConsistency(t *testing.T) {
	samples := []*detector.HandLandmarks{nil}
	fist := detector.ClosedFistLandmarks()
	palm := detector.OpenPalmLandmarks()
	samples = append(samples, &fist, &palm)

	for _, s := range samples {
		st := Classify(s)
		if (st.Gesture == None) == st.Present {
			t.Errorf("inconsistent state %+v", st)
		}
	}
}

func TestGesture_Label(t *testing.T) {
	tests := []struct {
		g    Gesture
		want string
	}{
		{None, "No Hand Detected"},
		{"", "No Hand Detected"},
		{OpenPalm, "Open Palm"},
		{ClosedFist, "Closed Fist"},
	}
	for _, tt := range tests {
		if got := tt.g.Label(); got != tt.want {
			t.Errorf("%q.Label() = %q, want %q", tt.g, got, tt.want)
		}
	}
}

func TestSlot(t *testing.T) {
	var slot Slot

	if got := slot.Load(); got != Absent() {
		t.Errorf("empty slot Load() = %+v, want Absent", got)
	}

	st := State{Gesture: OpenPalm, Rotation: Rotation{X: 1, Y: 2}, PinchDistance: 0.3, Present: true}
	slot.Store(st)
	if got := slot.Load(); got != st {
		t.Errorf("Load() = %+v, want %+v", got, st)
	}
}

func TestSlot_NoTearing(t *testing.T) {
	var slot Slot
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 5000; i++ {
			v := float64(i)
			slot.Store(State{Gesture: OpenPalm, Rotation: Rotation{X: v, Y: v}, PinchDistance: v, Present: true})
		}
	}()

	for i := 0; i < 5000; i++ {
		st := slot.Load()
		if !st.Present {
			continue
		}
		if st.Rotation.X != st.Rotation.Y || st.Rotation.X != st.PinchDistance {
			t.Fatalf("torn read: %+v", st)
		}
	}
	wg.Wait()
}
