package pinchzoom

import "math"

// Affine is a 2D affine matrix stored as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// Identity is the identity affine matrix.
var Identity = Affine{1, 0, 0, 1, 0, 0}

// identityTransform is the identity matrix in the raw form used by traversal.
var identityTransform = [6]float64(Identity)

// ScaleTranslate returns a matrix that scales uniformly by s and then
// translates by (tx, ty).
func ScaleTranslate(s, tx, ty float64) Affine {
	return Affine{s, 0, 0, s, tx, ty}
}

// Mul returns m * o (o is applied first).
func (m Affine) Mul(o Affine) Affine {
	return Affine(multiplyAffine(m, o))
}

// Invert returns the inverse of m, or Identity if m is singular.
func (m Affine) Invert() Affine {
	return Affine(invertAffine(m))
}

// Apply transforms the point (x, y) by m.
func (m Affine) Apply(x, y float64) (float64, float64) {
	return transformPoint(m, x, y)
}

// ScaleFactor returns the uniform scale encoded in m (the length of its
// first basis vector).
func (m Affine) ScaleFactor() float64 {
	return math.Hypot(m[0], m[1])
}

// Translation returns the translation component of m.
func (m Affine) Translation() (tx, ty float64) {
	return m[4], m[5]
}

// IsIdentity reports whether m equals Identity within a small tolerance.
func (m Affine) IsIdentity() bool {
	for i := range m {
		if math.Abs(m[i]-Identity[i]) > 1e-9 {
			return false
		}
	}
	return true
}

// Lerp interpolates each matrix element from m toward to by t in [0, 1].
// Matrices produced by this package carry only scale and translation, for
// which element-wise interpolation is exact.
func (m Affine) Lerp(to Affine, t float64) Affine {
	var r Affine
	for i := range m {
		r[i] = m[i] + (to[i]-m[i])*t
	}
	return r
}

// computeLocalTransform computes the local affine matrix from the node's
// transform properties. Returns [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Translate(-PivotX, -PivotY) -> Scale -> Rotate -> Translate(X, Y)
func computeLocalTransform(n *Node) [6]float64 {
	sx := n.ScaleX
	sy := n.ScaleY

	sin, cos := math.Sincos(n.Rotation)

	px := n.PivotX
	py := n.PivotY
	preTx := -px * sx
	preTy := -py * sy

	ra := cos * sx
	rb := sin * sx
	rc := -sin * sy
	rd := cos * sy
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy

	return [6]float64{ra, rb, rc, rd, rtx + n.X, rty + n.Y}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ~ 0).
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// updateWorldTransform recomputes a node's worldTransform and worldAlpha.
// parentRecomputed indicates whether the parent was recomputed this frame,
// which forces recomputation of this node even if it's not dirty.
func updateWorldTransform(n *Node, parentTransform [6]float64, parentAlpha float64, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		local := computeLocalTransform(n)
		n.worldTransform = multiplyAffine(parentTransform, local)
		n.worldAlpha = parentAlpha * n.Alpha
		n.transformDirty = false
	}

	for _, child := range n.children {
		updateWorldTransform(child, n.worldTransform, n.worldAlpha, recompute)
	}
}

// refreshWorldTransform brings n's world transform up to date by walking
// from the tree root, so callbacks that run mid-frame see current values.
func refreshWorldTransform(n *Node) {
	root := n
	for root.Parent != nil {
		root = root.Parent
	}
	updateWorldTransform(root, identityTransform, 1.0, false)
}

// --- Transform property setters ---

// SetPosition sets the node's local X and Y and marks it dirty.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
	n.transformDirty = true
}

// SetScale sets the node's ScaleX and ScaleY and marks it dirty.
func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX = sx
	n.ScaleY = sy
	n.transformDirty = true
}

// SetRotation sets the node's rotation (in radians) and marks it dirty.
func (n *Node) SetRotation(r float64) {
	n.Rotation = r
	n.transformDirty = true
}

// SetPivot sets the node's PivotX and PivotY and marks it dirty.
func (n *Node) SetPivot(px, py float64) {
	n.PivotX = px
	n.PivotY = py
	n.transformDirty = true
}

// SetAlpha sets the node's alpha and marks it dirty.
func (n *Node) SetAlpha(a float64) {
	n.Alpha = a
	n.transformDirty = true
}

// setAffine writes a scale+translate matrix into the node's transform fields.
// Rotation and pivot are reset so the node's local transform equals m.
func (n *Node) setAffine(m Affine) {
	n.X, n.Y = m[4], m[5]
	n.ScaleX, n.ScaleY = m[0], m[3]
	n.Rotation = 0
	n.PivotX, n.PivotY = 0, 0
	n.transformDirty = true
}

// MarkDirty marks the node's transform as dirty, forcing recomputation
// on the next frame. Useful after bulk-setting fields directly.
func (n *Node) MarkDirty() {
	n.transformDirty = true
}

// --- Coordinate conversion ---

// WorldTransform returns the node's cached world matrix as of the last
// transform refresh.
func (n *Node) WorldTransform() Affine {
	return Affine(n.worldTransform)
}

// WorldToLocal converts a world-space point to this node's local coordinate space.
func (n *Node) WorldToLocal(wx, wy float64) (lx, ly float64) {
	inv := invertAffine(n.worldTransform)
	return transformPoint(inv, wx, wy)
}

// LocalToWorld converts a local-space point to world-space.
func (n *Node) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return transformPoint(n.worldTransform, lx, ly)
}
