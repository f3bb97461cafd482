package pinchzoom

import (
	"math"
	"testing"
)

// --- TransformController ---

func TestTransformControllerNotifiesOnChange(t *testing.T) {
	c := NewTransformController()
	if c.Value() != Identity {
		t.Fatal("controller should start at identity")
	}
	var got []Affine
	c.AddListener(func(m Affine) { got = append(got, m) })

	c.SetValue(ScaleTranslate(2, 0, 0))
	c.SetValue(ScaleTranslate(2, 0, 0)) // unchanged
	c.Reset()
	if len(got) != 2 {
		t.Fatalf("notifications = %d, want 2", len(got))
	}
	if got[1] != Identity {
		t.Errorf("Reset notified %v, want identity", got[1])
	}
}

func TestTransformControllerListenerRemove(t *testing.T) {
	c := NewTransformController()
	var a, b int
	ha := c.AddListener(func(Affine) { a++ })
	c.AddListener(func(Affine) { b++ })
	ha.Remove()
	ha.Remove()
	if c.NumListeners() != 1 {
		t.Fatalf("NumListeners = %d, want 1", c.NumListeners())
	}
	c.SetValue(ScaleTranslate(3, 0, 0))
	if a != 0 || b != 1 {
		t.Errorf("a=%d b=%d, want 0 and 1", a, b)
	}
	var zero ListenerHandle
	zero.Remove()
}

// --- Viewer construction ---

func TestNewViewerDerivesSizeFromContent(t *testing.T) {
	content := NewRect("content", 120, 80, ColorWhite)
	v := NewViewer("v", content, ViewerConfig{})
	if v.Size() != (Vec2{X: 120, Y: 80}) {
		t.Errorf("Size = %+v, want 120x80", v.Size())
	}
	if hr, ok := v.Node().HitShape.(HitRect); !ok || hr.Width != 120 || hr.Height != 80 {
		t.Errorf("HitShape = %#v", v.Node().HitShape)
	}
	if content.Parent == nil || content.Parent.Parent != v.Node() {
		t.Error("content should sit under the transformed container")
	}
	if v.Content() != content {
		t.Error("Content() mismatch")
	}
	if v.cfg.MinScale != 0.8 || v.cfg.MaxScale != 2.5 {
		t.Errorf("default scale bounds = %v..%v", v.cfg.MinScale, v.cfg.MaxScale)
	}
}

func TestNewViewerHardEdgeClips(t *testing.T) {
	v := NewViewer("v", NewContainer("c"), ViewerConfig{Width: 50, Height: 60, Clip: ClipHardEdge})
	n := v.Node()
	if !n.ClipEnabled || n.ClipWidth != 50 || n.ClipHeight != 60 {
		t.Errorf("clip = %v %vx%v", n.ClipEnabled, n.ClipWidth, n.ClipHeight)
	}
	v2 := NewViewer("v2", NewContainer("c"), ViewerConfig{Width: 50, Height: 60})
	if v2.Node().ClipEnabled {
		t.Error("ClipNone should not clip")
	}
}

func TestNewViewerNilContentPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewViewer("v", nil, ViewerConfig{})
}

func TestViewersShareController(t *testing.T) {
	ctrl := NewTransformController()
	a := NewViewer("a", NewContainer("ca"), ViewerConfig{Width: 10, Height: 10, Controller: ctrl})
	b := NewViewer("b", NewContainer("cb"), ViewerConfig{Width: 10, Height: 10, Controller: ctrl})

	ctrl.SetValue(ScaleTranslate(2, -5, -5))
	for _, v := range []*Viewer{a, b} {
		tr := v.transformed
		if tr.ScaleX != 2 || tr.X != -5 {
			t.Errorf("%s transform = scale %v x %v", v.Node().Name, tr.ScaleX, tr.X)
		}
	}

	b.Dispose()
	if ctrl.NumListeners() != 1 {
		t.Errorf("NumListeners after Dispose = %d, want 1", ctrl.NumListeners())
	}
}

func TestViewerDisposeDetachesContent(t *testing.T) {
	content := NewContainer("content")
	v := NewViewer("v", content, ViewerConfig{Width: 10, Height: 10})
	v.Dispose()
	if content.Parent != nil || content.IsDisposed() {
		t.Error("content should be detached and left alive")
	}
	if !v.Node().IsDisposed() {
		t.Error("viewer root should be disposed")
	}
}

// --- Gesture handling ---

func viewerScene(cfg ViewerConfig) (*Scene, *Viewer) {
	s := newTestScene()
	v := NewViewer("v", NewRect("content", 200, 200, ColorWhite), cfg)
	s.Root().AddChild(v.Node())
	return s, v
}

func TestViewerZoomKeepsFocalPointFixed(t *testing.T) {
	s, v := viewerScene(ViewerConfig{MinScale: 0.5, MaxScale: 4, PanEnabled: false})

	// Pinch centred on (50, 100) spreading from 40 to 80.
	s.InjectPinch(50, 100, 40, 80, 2)
	step(s, 2)

	m := v.Controller().Value()
	assertNear(t, "scale", m.ScaleFactor(), 2)
	// The content point under the focus stays under it.
	x, y := m.Apply(50, 100)
	assertNear(t, "focal x", x, 50)
	assertNear(t, "focal y", y, 100)
}

func TestViewerScaleClamped(t *testing.T) {
	s, v := viewerScene(ViewerConfig{MinScale: 0.5, MaxScale: 1.5})
	s.InjectPinch(100, 100, 20, 200, 2)
	step(s, 2)
	assertNear(t, "max clamp", v.Controller().Value().ScaleFactor(), 1.5)

	step(s, 1) // release
	s.InjectPinch(100, 100, 200, 20, 2)
	step(s, 2)
	// A new gesture starts from 1.5; 1.5 * 0.1 clamps to 0.5.
	assertNear(t, "min clamp", v.Controller().Value().ScaleFactor(), 0.5)
}

func TestViewerInteractionHooks(t *testing.T) {
	s, v := viewerScene(ViewerConfig{})
	var starts, updates, ends int
	v.OnInteractionStart = func(GestureContext) { starts++ }
	v.OnInteractionUpdate = func(GestureContext) { updates++ }
	v.OnInteractionEnd = func(GestureContext) { ends++ }

	s.InjectPinch(100, 100, 40, 60, 3)
	step(s, 3)
	if !v.Interacting() {
		t.Error("viewer should be interacting mid-gesture")
	}
	step(s, 1)
	if v.Interacting() {
		t.Error("viewer should stop interacting after release")
	}
	if starts != 1 || updates != 2 || ends != 1 {
		t.Errorf("hooks start=%d update=%d end=%d, want 1/2/1", starts, updates, ends)
	}
}

func TestViewerPanFollowsFocal(t *testing.T) {
	s, v := viewerScene(ViewerConfig{PanEnabled: true, BoundaryMargin: math.Inf(1)})
	s.InjectTouches(TouchPoint{ID: 1, X: 80, Y: 100}, TouchPoint{ID: 2, X: 120, Y: 100})
	s.InjectTouches(TouchPoint{ID: 1, X: 110, Y: 100}, TouchPoint{ID: 2, X: 150, Y: 100})
	step(s, 2)
	m := v.Controller().Value()
	assertNear(t, "scale", m.ScaleFactor(), 1)
	tx, ty := m.Translation()
	assertNear(t, "tx", tx, 30)
	assertNear(t, "ty", ty, 0)
}

func TestViewerSingleTouchWithoutPan(t *testing.T) {
	s, v := viewerScene(ViewerConfig{})
	var starts int
	v.OnInteractionStart = func(GestureContext) { starts++ }
	v.Controller().SetValue(ScaleTranslate(2, -50, -50))

	s.InjectTouches(TouchPoint{ID: 1, X: 100, Y: 100})
	s.InjectTouches(TouchPoint{ID: 1, X: 110, Y: 100})
	s.InjectTouches(TouchPoint{ID: 1, X: 130, Y: 100})
	step(s, 3)

	if v.Interacting() || starts != 0 {
		t.Errorf("interacting=%v starts=%d, want a single touch ignored", v.Interacting(), starts)
	}
	if v.Controller().Value() != ScaleTranslate(2, -50, -50) {
		t.Errorf("transform = %v, want it untouched", v.Controller().Value())
	}
}

func TestViewerSingleTouchPans(t *testing.T) {
	s, v := viewerScene(ViewerConfig{PanEnabled: true, BoundaryMargin: math.Inf(1)})
	s.InjectTouches(TouchPoint{ID: 1, X: 100, Y: 100})
	s.InjectTouches(TouchPoint{ID: 1, X: 110, Y: 100}) // past the dead zone: start
	s.InjectTouches(TouchPoint{ID: 1, X: 130, Y: 100})
	step(s, 3)

	m := v.Controller().Value()
	assertNear(t, "scale", m.ScaleFactor(), 1)
	tx, _ := m.Translation()
	assertNear(t, "tx", tx, 20)
}

func TestViewerAcceptGesture(t *testing.T) {
	s, v := viewerScene(ViewerConfig{})
	var seen []int
	v.AcceptGesture = func(ctx GestureContext) bool {
		seen = append(seen, ctx.PointerCount)
		return false
	}
	s.InjectPinch(100, 100, 40, 80, 3)
	step(s, 4)

	if len(seen) != 1 || seen[0] != 2 {
		t.Errorf("AcceptGesture saw %v, want [2]", seen)
	}
	if v.Interacting() || v.Controller().Value() != Identity {
		t.Error("a rejected gesture must not move the content")
	}
}

func TestViewerIgnoresGesturesOutside(t *testing.T) {
	s, v := viewerScene(ViewerConfig{})
	s.InjectPinch(500, 400, 40, 80, 2)
	step(s, 3)
	if v.Controller().Value() != Identity {
		t.Error("gesture outside the viewport should not move the content")
	}
}

// --- clampAxis ---

func TestClampAxis(t *testing.T) {
	tests := []struct {
		name               string
		t, s, size, margin float64
		want               float64
	}{
		{"in range", -50, 2, 100, 0, -50},
		{"past left edge", 10, 2, 100, 0, 0},
		{"past right edge", -150, 2, 100, 0, -100},
		{"margin widens range", 15, 2, 100, 10, 15},
		{"smaller than viewport centres", 7, 0.5, 100, 0, 25},
		{"infinite margin free", 999, 2, 100, math.Inf(1), 999},
	}
	for _, tt := range tests {
		if got := clampAxis(tt.t, tt.s, tt.size, tt.margin); math.Abs(got-tt.want) > epsilon {
			t.Errorf("%s: clampAxis = %v, want %v", tt.name, got, tt.want)
		}
	}
}
