package pinchzoom

import "testing"

func TestInjectClick(t *testing.T) {
	s := newTestScene()
	box := interactiveBox("box", 0, 0, 100, 100)
	s.Root().AddChild(box)

	var downs, ups int
	box.OnPointerDown = func(ctx PointerContext) {
		downs++
		if ctx.PointerID != 0 {
			t.Errorf("PointerID = %d, want 0", ctx.PointerID)
		}
	}
	box.OnPointerUp = func(PointerContext) { ups++ }

	s.InjectClick(50, 50)
	if len(s.injectQueue) != 2 {
		t.Fatalf("expected 2 queued events, got %d", len(s.injectQueue))
	}

	// Frame 1: press
	step(s, 1)
	if len(s.injectQueue) != 1 {
		t.Fatalf("expected 1 remaining event after frame 1, got %d", len(s.injectQueue))
	}
	if downs != 1 || ups != 0 {
		t.Errorf("after press: downs=%d ups=%d, want 1 0", downs, ups)
	}

	// Frame 2: release
	step(s, 1)
	if len(s.injectQueue) != 0 {
		t.Fatalf("expected 0 remaining events after frame 2, got %d", len(s.injectQueue))
	}
	if ups != 1 {
		t.Errorf("ups = %d, want 1", ups)
	}
}

func TestInjectDrag(t *testing.T) {
	s := newTestScene()
	box := interactiveBox("box", 0, 0, 400, 400)
	s.Root().AddChild(box)

	var moves []float64
	box.OnPointerMove = func(ctx PointerContext) { moves = append(moves, ctx.GlobalX) }

	// press, 3 moves, release (the release frame reports no move)
	s.InjectDrag(10, 10, 210, 10, 5)
	if len(s.injectQueue) != 5 {
		t.Fatalf("queue = %d, want 5", len(s.injectQueue))
	}
	step(s, 5)

	want := []float64{60, 110, 160}
	if len(moves) != len(want) {
		t.Fatalf("moves = %v, want %v", moves, want)
	}
	for i := range want {
		if !approxEqual(moves[i], want[i], 1e-9) {
			t.Errorf("move %d at x=%v, want %v", i, moves[i], want[i])
		}
	}
	if s.pointers[0].down {
		t.Error("pointer should be released after the drag")
	}
}

func TestInjectDrag_MinFrames(t *testing.T) {
	s := NewScene()
	s.InjectDrag(0, 0, 100, 100, 1)
	if len(s.injectQueue) != 2 {
		t.Errorf("expected 2 events (press+release) for frames=1, got %d", len(s.injectQueue))
	}
}

func TestInjectQueueOrder(t *testing.T) {
	s := NewScene()
	s.InjectPress(10, 20)
	s.InjectMove(30, 40)
	s.InjectRelease(50, 60)

	want := []syntheticPointerEvent{
		{screenX: 10, screenY: 20, pressed: true},
		{screenX: 30, screenY: 40, pressed: true},
		{screenX: 50, screenY: 60, pressed: false},
	}
	if len(s.injectQueue) != len(want) {
		t.Fatalf("queue = %d, want %d", len(s.injectQueue), len(want))
	}
	for i, w := range want {
		if s.injectQueue[i] != w {
			t.Errorf("event %d = %+v, want %+v", i, s.injectQueue[i], w)
		}
	}
}

func TestProcessInjectedInput_EmptyQueue(t *testing.T) {
	s := NewScene()
	if s.processInjectedInput(nil, 0) {
		t.Error("empty queue should report no event consumed")
	}
}

func TestInjectedPressHoldsMouse(t *testing.T) {
	s := newTestScene()
	box := interactiveBox("box", 0, 0, 100, 100)
	s.Root().AddChild(box)

	s.InjectPress(20, 20)
	step(s, 3)
	if !s.pointers[0].down {
		t.Fatal("injected press should stay down with an empty queue")
	}
	if !s.mouseInjected {
		t.Error("mouseInjected should be set while held")
	}

	s.InjectRelease(20, 20)
	step(s, 1)
	if s.pointers[0].down || s.mouseInjected {
		t.Error("release should clear the injected hold")
	}
}

func TestInjectWithCamera(t *testing.T) {
	s := newTestScene()
	cam := s.NewCamera(Rect{Width: 640, Height: 480})
	cam.X, cam.Y = 320, 240

	box := interactiveBox("box", 100, 100, 50, 50)
	s.Root().AddChild(box)

	var gx, gy float64
	box.OnPointerDown = func(ctx PointerContext) { gx, gy = ctx.GlobalX, ctx.GlobalY }

	s.InjectClick(110, 120)
	step(s, 2)

	if gx != 110 || gy != 120 {
		t.Errorf("global = (%v,%v), want (110,120) through a centred camera", gx, gy)
	}
}

// --- Touch injection ---

func TestInjectTouchesHeldUntilEmptyFrame(t *testing.T) {
	s := newTestScene()
	s.Root().AddChild(interactiveBox("box", 0, 0, 400, 400))

	s.InjectTouches(TouchPoint{ID: 5, X: 10, Y: 10})
	step(s, 3)
	if !s.pointers[1].down {
		t.Fatal("touch should stay down across frames")
	}
	if s.touchMap[1] != 5 {
		t.Errorf("touchMap[1] = %d, want 5", s.touchMap[1])
	}

	s.InjectTouches()
	step(s, 1)
	if s.pointers[1].down || s.touchUsed[1] {
		t.Error("empty frame should lift every injected touch")
	}
	if s.touchInjected {
		t.Error("touchInjected should clear once the queue drains")
	}
}

func TestInjectTouchesCopiesPoints(t *testing.T) {
	s := NewScene()
	pts := []TouchPoint{{ID: 1, X: 1, Y: 1}}
	s.InjectTouches(pts...)
	pts[0].X = 99
	if s.touchFrames[0][0].X != 1 {
		t.Error("InjectTouches should copy the caller's points")
	}
}

func TestInjectPinchFrames(t *testing.T) {
	s := NewScene()
	s.InjectPinch(100, 50, 40, 120, 5)

	if len(s.touchFrames) != 6 {
		t.Fatalf("frames = %d, want 5 moves + 1 release", len(s.touchFrames))
	}
	wantHalf := []float64{20, 30, 40, 50, 60}
	for i, half := range wantHalf {
		f := s.touchFrames[i]
		if len(f) != 2 {
			t.Fatalf("frame %d has %d touches, want 2", i, len(f))
		}
		if f[0].X != 100-half || f[1].X != 100+half || f[0].Y != 50 || f[1].Y != 50 {
			t.Errorf("frame %d = %+v, want half-span %v around (100,50)", i, f, half)
		}
		if f[0].ID != pinchTouchIDs[0] || f[1].ID != pinchTouchIDs[1] {
			t.Errorf("frame %d IDs = %d,%d", i, f[0].ID, f[1].ID)
		}
	}
	if len(s.touchFrames[5]) != 0 {
		t.Error("last frame should lift both fingers")
	}
}

func TestInjectPinch_MinFrames(t *testing.T) {
	s := NewScene()
	s.InjectPinch(0, 0, 10, 20, 0)
	if len(s.touchFrames) != 3 {
		t.Errorf("frames = %d, want 2 moves + 1 release", len(s.touchFrames))
	}
}

func TestPendingInjections(t *testing.T) {
	s := newTestScene()
	if s.pendingInjections() {
		t.Error("fresh scene has nothing pending")
	}
	s.InjectTouches(TouchPoint{ID: 1})
	if !s.pendingInjections() {
		t.Error("queued touch frame should be pending")
	}
	step(s, 1)
	if s.pendingInjections() {
		t.Error("touch frame should be consumed after one update")
	}
	s.InjectClick(0, 0)
	if !s.pendingInjections() {
		t.Error("queued click should be pending")
	}
}
