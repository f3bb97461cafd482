package pinchzoom

import "math"

// --- Scale gesture state ---

// gestureState tracks the scale gesture recognized from the active pointers.
// One gesture exists per scene; its owner is fixed when it starts.
type gestureState struct {
	active       bool
	pointerCount int
	owner        *Node

	initialSpan  float64
	prevSpan     float64
	initialAngle float64
	prevAngle    float64
	prevFocalX   float64
	prevFocalY   float64
}

// activePointers collects the indices of pressed pointers (mouse and touch)
// into buf and returns it with the centroid of their last positions.
func (s *Scene) activePointers(buf []int) (ids []int, cx, cy float64) {
	ids = buf[:0]
	for i := 0; i < maxPointers; i++ {
		if s.pointers[i].down {
			ids = append(ids, i)
			cx += s.pointers[i].lastX
			cy += s.pointers[i].lastY
		}
	}
	if len(ids) > 0 {
		cx /= float64(len(ids))
		cy /= float64(len(ids))
	}
	return ids, cx, cy
}

// pointerSpan returns the mean distance of the pointers from (cx, cy).
func (s *Scene) pointerSpan(ids []int, cx, cy float64) float64 {
	if len(ids) < 2 {
		return 0
	}
	var sum float64
	for _, id := range ids {
		ps := &s.pointers[id]
		sum += math.Hypot(ps.lastX-cx, ps.lastY-cy)
	}
	return sum / float64(len(ids))
}

// pointerAngle returns the angle of the line from the first to the second
// pointer, or 0 with fewer than two pointers.
func (s *Scene) pointerAngle(ids []int) float64 {
	if len(ids) < 2 {
		return 0
	}
	p0 := &s.pointers[ids[0]]
	p1 := &s.pointers[ids[1]]
	return math.Atan2(p1.lastY-p0.lastY, p1.lastX-p0.lastX)
}

// gestureOwner returns the nearest node at or above n that has a gesture
// callback, or nil.
func gestureOwner(n *Node) *Node {
	for ; n != nil; n = n.Parent {
		if n.hasGestureHandler() {
			return n
		}
	}
	return nil
}

// pinchOwner returns the gesture owner under the earliest pressed pointer
// that has one, so a pointer held elsewhere does not steal the gesture.
func (s *Scene) pinchOwner(ids []int) *Node {
	var owner *Node
	var first uint64
	for _, id := range ids {
		ps := &s.pointers[id]
		o := gestureOwner(ps.hitNode)
		if o != nil && (owner == nil || ps.pressSeq < first) {
			owner, first = o, ps.pressSeq
		}
	}
	return owner
}

// recognizeGesture runs once per frame after pointer processing. A gesture
// starts when two or more pointers are down, or when a single pointer moves
// past the drag dead zone. A change in pointer count ends the gesture and
// starts a new one with a fresh baseline.
func (s *Scene) recognizeGesture(mods KeyModifiers) {
	ids, cx, cy := s.activePointers(s.gestureBuf[:0])
	s.gestureBuf = ids
	g := &s.gesture

	if len(ids) == 0 {
		if g.active {
			s.endGesture(mods)
		}
		return
	}

	if g.active && len(ids) != g.pointerCount {
		s.endGesture(mods)
		s.startGesture(ids, cx, cy, mods)
		return
	}

	if !g.active {
		if len(ids) >= 2 || s.pointers[ids[0]].travelled {
			s.startGesture(ids, cx, cy, mods)
		}
		return
	}

	span := s.pointerSpan(ids, cx, cy)
	angle := s.pointerAngle(ids)
	if span == g.prevSpan && angle == g.prevAngle && cx == g.prevFocalX && cy == g.prevFocalY {
		return
	}

	scale := 1.0
	if g.initialSpan > 0 {
		scale = span / g.initialSpan
	}
	scaleDelta := 0.0
	if g.prevSpan > 0 {
		scaleDelta = span/g.prevSpan - 1.0
	}

	ctx := GestureContext{
		Node:         g.owner,
		PointerCount: g.pointerCount,
		FocalX:       cx,
		FocalY:       cy,
		Scale:        scale,
		ScaleDelta:   scaleDelta,
		Rotation:     angle - g.initialAngle,
		Modifiers:    mods,
	}
	g.prevSpan = span
	g.prevAngle = angle
	g.prevFocalX, g.prevFocalY = cx, cy
	s.dispatchGesture(EventGestureUpdate, ctx)
}

func (s *Scene) startGesture(ids []int, cx, cy float64, mods KeyModifiers) {
	g := &s.gesture
	span := s.pointerSpan(ids, cx, cy)
	angle := s.pointerAngle(ids)
	*g = gestureState{
		active:       true,
		pointerCount: len(ids),
		owner:        s.pinchOwner(ids),
		initialSpan:  span,
		prevSpan:     span,
		initialAngle: angle,
		prevAngle:    angle,
		prevFocalX:   cx,
		prevFocalY:   cy,
	}
	s.dispatchGesture(EventGestureStart, GestureContext{
		Node:         g.owner,
		PointerCount: g.pointerCount,
		FocalX:       cx,
		FocalY:       cy,
		Scale:        1,
		Modifiers:    mods,
	})
}

func (s *Scene) endGesture(mods KeyModifiers) {
	g := &s.gesture
	ctx := GestureContext{
		Node:         g.owner,
		PointerCount: g.pointerCount,
		FocalX:       g.prevFocalX,
		FocalY:       g.prevFocalY,
		Scale:        1,
		Modifiers:    mods,
	}
	if g.initialSpan > 0 {
		ctx.Scale = g.prevSpan / g.initialSpan
	}
	*g = gestureState{}
	s.dispatchGesture(EventGestureEnd, ctx)
}

// dispatchGesture fires scene-level handlers, the owner's callback, then the
// ECS bridge.
func (s *Scene) dispatchGesture(kind EventType, ctx GestureContext) {
	var handlers []gestureHandler
	switch kind {
	case EventGestureStart:
		handlers = s.handlers.gestureStart
	case EventGestureUpdate:
		handlers = s.handlers.gestureUpdate
	case EventGestureEnd:
		handlers = s.handlers.gestureEnd
	}
	for _, h := range handlers {
		h.fn(ctx)
	}

	if owner := ctx.Node; owner != nil && !owner.IsDisposed() {
		var fn func(GestureContext)
		switch kind {
		case EventGestureStart:
			fn = owner.OnGestureStart
		case EventGestureUpdate:
			fn = owner.OnGestureUpdate
		case EventGestureEnd:
			fn = owner.OnGestureEnd
		}
		if fn != nil {
			fn(ctx)
		}
	}

	var lx, ly float64
	if ctx.Node != nil && !ctx.Node.IsDisposed() {
		lx, ly = ctx.Node.WorldToLocal(ctx.FocalX, ctx.FocalY)
	}
	s.emitInteractionEvent(kind, ctx.Node, ctx.FocalX, ctx.FocalY, lx, ly,
		MouseButtonLeft, 0, ctx.Modifiers, ctx)
}
