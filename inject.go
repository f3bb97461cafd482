package pinchzoom

// syntheticPointerEvent represents a single injected mouse event.
// Screen coordinates are used and converted to world coordinates via the
// primary camera, identical to real mouse input.
type syntheticPointerEvent struct {
	screenX, screenY float64
	pressed          bool
	button           MouseButton
}

// InjectPress queues a pointer press event at the given screen coordinates
// (left button). The event is consumed on the next frame's processInput call.
func (s *Scene) InjectPress(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectMove queues a pointer move event at the given screen coordinates
// with the button held down.
func (s *Scene) InjectMove(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectRelease queues a pointer release event at the given screen coordinates.
func (s *Scene) InjectRelease(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: false,
		button:  MouseButtonLeft,
	})
}

// InjectClick is a convenience that queues a press followed by a release
// at the same screen coordinates. Consumes two frames.
func (s *Scene) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate frames, and
// release at (toX, toY). The total sequence consumes `frames` frames.
// Minimum frames is 2 (press + release).
func (s *Scene) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	s.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		s.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	s.InjectRelease(toX, toY)
}

// InjectTouches queues one frame of touch input in screen coordinates. The
// points stay held on following frames until another frame is injected;
// InjectTouches() with no points lifts every injected touch. While injected
// touches are held, device touches are ignored.
func (s *Scene) InjectTouches(points ...TouchPoint) {
	frame := make([]TouchPoint, len(points))
	copy(frame, points)
	s.touchFrames = append(s.touchFrames, frame)
}

// pinchTouchIDs are the touch IDs InjectPinch uses.
var pinchTouchIDs = [2]int{1001, 1002}

// InjectPinch queues a horizontal two-finger pinch centred on (cx, cy). The
// fingers start fromSpan apart and end toSpan apart after frames frames of
// movement, then lift on one extra frame. Minimum frames is 2.
func (s *Scene) InjectPinch(cx, cy, fromSpan, toSpan float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(frames-1)
		half := (fromSpan + (toSpan-fromSpan)*t) / 2
		s.InjectTouches(
			TouchPoint{ID: pinchTouchIDs[0], X: cx - half, Y: cy},
			TouchPoint{ID: pinchTouchIDs[1], X: cx + half, Y: cy},
		)
	}
	s.InjectTouches()
}

// pendingInjections reports whether injected input is still queued.
func (s *Scene) pendingInjections() bool {
	return len(s.injectQueue) > 0 || len(s.touchFrames) > 0
}

// processInjectedInput pops one event from the inject queue, converts
// screen→world via the primary camera, and feeds it through processPointer.
// Returns true if an event was consumed (real mouse input should be skipped).
// An injected press holds the mouse pointer until an injected release.
func (s *Scene) processInjectedInput(cam *Camera, mods KeyModifiers) bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	wx, wy := screenToWorld(cam, evt.screenX, evt.screenY)
	button := evt.button
	if s.pointers[0].down {
		button = s.pointers[0].button
	}
	s.processPointer(0, wx, wy, evt.pressed, button, mods)
	s.mouseInjected = evt.pressed
	return true
}
