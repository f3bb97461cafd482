package pinchzoom

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertAffine(t *testing.T, name string, got, want Affine) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
			return
		}
	}
}

// --- Affine ---

func TestScaleTranslateApply(t *testing.T) {
	m := ScaleTranslate(2, 10, -5)
	x, y := m.Apply(3, 4)
	assertNear(t, "x", x, 16)
	assertNear(t, "y", y, 3)
	assertNear(t, "scale", m.ScaleFactor(), 2)
	tx, ty := m.Translation()
	assertNear(t, "tx", tx, 10)
	assertNear(t, "ty", ty, -5)
}

func TestAffineMulOrder(t *testing.T) {
	scale := ScaleTranslate(2, 0, 0)
	move := ScaleTranslate(1, 10, 0)
	// move applied first, then scale.
	x, _ := scale.Mul(move).Apply(1, 0)
	assertNear(t, "scale*move", x, 22)
	// scale applied first, then move.
	x, _ = move.Mul(scale).Apply(1, 0)
	assertNear(t, "move*scale", x, 12)
}

func TestAffineInvert(t *testing.T) {
	m := ScaleTranslate(4, 30, -12)
	assertAffine(t, "m*inv", m.Mul(m.Invert()), Identity)
	assertAffine(t, "singular", Affine{}.Invert(), Identity)
}

func TestAffineIsIdentity(t *testing.T) {
	if !Identity.IsIdentity() {
		t.Error("Identity.IsIdentity() = false")
	}
	if ScaleTranslate(1, 0.001, 0).IsIdentity() {
		t.Error("translated matrix reported as identity")
	}
	if !(Affine{1 + 1e-12, 0, 0, 1, 0, 0}).IsIdentity() {
		t.Error("tiny drift should still count as identity")
	}
}

func TestAffineLerp(t *testing.T) {
	from := ScaleTranslate(3, -100, -50)
	assertAffine(t, "t=0", from.Lerp(Identity, 0), from)
	assertAffine(t, "t=1", from.Lerp(Identity, 1), Identity)
	assertAffine(t, "t=0.5", from.Lerp(Identity, 0.5), ScaleTranslate(2, -50, -25))
}

// --- computeLocalTransform ---

func TestLocalTransformDefaults(t *testing.T) {
	n := NewContainer("n")
	assertAffine(t, "identity", Affine(computeLocalTransform(n)), Identity)
}

func TestLocalTransformScaleThenTranslate(t *testing.T) {
	n := NewContainer("n")
	n.SetScale(2, 3)
	n.SetPosition(5, 7)
	assertAffine(t, "local", Affine(computeLocalTransform(n)), Affine{2, 0, 0, 3, 5, 7})
}

func TestLocalTransformRotationAboutPivot(t *testing.T) {
	n := NewContainer("n")
	n.SetPivot(10, 0)
	n.SetRotation(math.Pi / 2)
	// The pivot maps to the node origin.
	x, y := transformPoint(computeLocalTransform(n), 10, 0)
	assertNear(t, "pivot x", x, 0)
	assertNear(t, "pivot y", y, 0)
	// A point right of the pivot turns downward.
	x, y = transformPoint(computeLocalTransform(n), 11, 0)
	assertNear(t, "x", x, 0)
	assertNear(t, "y", y, 1)
}

// --- World transforms ---

func TestWorldTransformComposesParents(t *testing.T) {
	root := NewContainer("root")
	parent := NewContainer("parent")
	child := NewContainer("child")
	root.AddChild(parent)
	parent.AddChild(child)

	parent.SetPosition(100, 50)
	parent.SetScale(2, 2)
	child.SetPosition(10, 10)

	updateWorldTransform(root, identityTransform, 1, false)
	assertAffine(t, "child world", child.WorldTransform(), Affine{2, 0, 0, 2, 120, 70})

	wx, wy := child.LocalToWorld(1, 1)
	assertNear(t, "wx", wx, 122)
	assertNear(t, "wy", wy, 72)
	lx, ly := child.WorldToLocal(wx, wy)
	assertNear(t, "lx", lx, 1)
	assertNear(t, "ly", ly, 1)
}

func TestWorldAlphaMultiplies(t *testing.T) {
	root := NewContainer("root")
	child := NewContainer("child")
	root.AddChild(child)
	root.SetAlpha(0.5)
	child.SetAlpha(0.5)
	updateWorldTransform(root, identityTransform, 1, false)
	assertNear(t, "worldAlpha", child.worldAlpha, 0.25)
}

func TestCleanSubtreeNotRecomputed(t *testing.T) {
	root := NewContainer("root")
	child := NewContainer("child")
	root.AddChild(child)
	updateWorldTransform(root, identityTransform, 1, false)

	// Write X without the setter: the cached matrix stays stale.
	child.X = 99
	updateWorldTransform(root, identityTransform, 1, false)
	if tx, _ := child.WorldTransform().Translation(); tx != 0 {
		t.Errorf("clean node recomputed: tx = %v", tx)
	}

	child.MarkDirty()
	updateWorldTransform(root, identityTransform, 1, false)
	if tx, _ := child.WorldTransform().Translation(); tx != 99 {
		t.Errorf("dirty node not recomputed: tx = %v", tx)
	}
}

func TestRefreshWorldTransformWalksFromRoot(t *testing.T) {
	root := NewContainer("root")
	mid := NewContainer("mid")
	leaf := NewContainer("leaf")
	root.AddChild(mid)
	mid.AddChild(leaf)
	root.SetPosition(5, 5)
	mid.SetPosition(5, 5)

	refreshWorldTransform(leaf)
	if tx, ty := leaf.WorldTransform().Translation(); tx != 10 || ty != 10 {
		t.Errorf("leaf translation = (%v, %v), want (10, 10)", tx, ty)
	}
}

func TestSetAffineResetsRotationAndPivot(t *testing.T) {
	n := NewContainer("n")
	n.SetRotation(1)
	n.SetPivot(3, 3)
	n.setAffine(ScaleTranslate(2, 4, 6))

	if n.Rotation != 0 || n.PivotX != 0 || n.PivotY != 0 {
		t.Errorf("rotation/pivot not cleared: %v %v %v", n.Rotation, n.PivotX, n.PivotY)
	}
	if !n.transformDirty {
		t.Error("setAffine should mark the node dirty")
	}
	assertAffine(t, "local", Affine(computeLocalTransform(n)), ScaleTranslate(2, 4, 6))
}

func TestSettersMarkDirty(t *testing.T) {
	setters := map[string]func(*Node){
		"SetPosition": func(n *Node) { n.SetPosition(1, 1) },
		"SetScale":    func(n *Node) { n.SetScale(2, 2) },
		"SetRotation": func(n *Node) { n.SetRotation(0.5) },
		"SetPivot":    func(n *Node) { n.SetPivot(1, 1) },
		"SetAlpha":    func(n *Node) { n.SetAlpha(0.5) },
	}
	for name, set := range setters {
		n := NewContainer("n")
		n.transformDirty = false
		set(n)
		if !n.transformDirty {
			t.Errorf("%s did not mark the node dirty", name)
		}
	}
}

func TestWorldToLocalZeroScaleFallsBack(t *testing.T) {
	n := NewContainer("n")
	n.SetScale(0, 0)
	updateWorldTransform(n, identityTransform, 1, false)
	lx, ly := n.WorldToLocal(7, 8)
	assertNear(t, "lx", lx, 7)
	assertNear(t, "ly", ly, 8)
}

func BenchmarkUpdateWorldTransform1k(b *testing.B) {
	root := NewContainer("root")
	for i := 0; i < 1000; i++ {
		c := NewContainer("c")
		c.SetPosition(float64(i), 0)
		root.AddChild(c)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		root.MarkDirty()
		updateWorldTransform(root, identityTransform, 1, false)
	}
}
