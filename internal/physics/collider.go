package physics

import "math"

// ShapeKind is the closed set of collider shapes the engine understands.
type ShapeKind int

const (
	ShapeSphere ShapeKind = iota
	ShapeBox
	ShapePlane
)

// Collider binds a shape to a position in world space. The World keeps the
// position in sync with the owning body before every detection pass.
type Collider struct {
	Kind     ShapeKind
	Position Vec3

	// Sphere
	SphereRadius float64

	// Box, axis aligned
	HalfExtents Vec3

	// Plane, infinite. Normal must be unit length; the plane passes
	// through Position.
	Normal Vec3
}

// NewSphereCollider returns a sphere collider of the given radius.
func NewSphereCollider(radius float64) *Collider {
	return &Collider{Kind: ShapeSphere, SphereRadius: radius}
}

// NewBoxCollider returns an axis-aligned box collider with the given
// half extents.
func NewBoxCollider(half Vec3) *Collider {
	return &Collider{Kind: ShapeBox, HalfExtents: half}
}

// NewPlaneCollider returns an infinite plane collider with the given normal.
func NewPlaneCollider(normal Vec3) *Collider {
	return &Collider{Kind: ShapePlane, Normal: normal.Normalized()}
}

// Contact describes a detected intersection. Normal is unit length and
// points from B toward A; Depth is the penetration distance, never negative.
type Contact struct {
	Normal Vec3
	Depth  float64
}

// flipped returns the contact as seen from the other side.
func (c Contact) flipped() Contact {
	return Contact{Normal: c.Normal.Scale(-1), Depth: c.Depth}
}

// Intersect tests a against b and reports the contact, if any. The normal in
// the returned contact points from b toward a.
func Intersect(a, b *Collider) (Contact, bool) {
	if a == nil || b == nil {
		return Contact{}, false
	}
	switch {
	case a.Kind == ShapeSphere && b.Kind == ShapeSphere:
		return sphereSphere(a, b)
	case a.Kind == ShapeSphere && b.Kind == ShapeBox:
		return sphereBox(a, b)
	case a.Kind == ShapeBox && b.Kind == ShapeSphere:
		c, ok := sphereBox(b, a)
		return c.flipped(), ok
	case a.Kind == ShapeBox && b.Kind == ShapeBox:
		return boxBox(a, b)
	case a.Kind == ShapeSphere && b.Kind == ShapePlane:
		return spherePlane(a, b)
	case a.Kind == ShapePlane && b.Kind == ShapeSphere:
		c, ok := spherePlane(b, a)
		return c.flipped(), ok
	case a.Kind == ShapeBox && b.Kind == ShapePlane:
		return boxPlane(a, b)
	case a.Kind == ShapePlane && b.Kind == ShapeBox:
		c, ok := boxPlane(b, a)
		return c.flipped(), ok
	default:
		// plane vs plane has no meaningful contact
		return Contact{}, false
	}
}

func sphereSphere(a, b *Collider) (Contact, bool) {
	diff := a.Position.Sub(b.Position)
	dist := diff.Length()
	minDist := a.SphereRadius + b.SphereRadius
	if dist >= minDist {
		return Contact{}, false
	}
	normal := Vec3{Y: 1}
	if dist > vecEpsilon {
		normal = diff.Scale(1 / dist)
	}
	return Contact{Normal: normal, Depth: minDist - dist}, true
}

func sphereBox(sphere, box *Collider) (Contact, bool) {
	closest := Vec3{
		X: clamp(sphere.Position.X, box.Position.X-box.HalfExtents.X, box.Position.X+box.HalfExtents.X),
		Y: clamp(sphere.Position.Y, box.Position.Y-box.HalfExtents.Y, box.Position.Y+box.HalfExtents.Y),
		Z: clamp(sphere.Position.Z, box.Position.Z-box.HalfExtents.Z, box.Position.Z+box.HalfExtents.Z),
	}
	diff := sphere.Position.Sub(closest)
	dist := diff.Length()
	if dist >= sphere.SphereRadius {
		return Contact{}, false
	}
	if dist > vecEpsilon {
		return Contact{Normal: diff.Scale(1 / dist), Depth: sphere.SphereRadius - dist}, true
	}
	// Sphere center inside the box: push out along the face with the
	// smallest remaining distance.
	normal, depth := deepestFace(sphere.Position, box)
	return Contact{Normal: normal, Depth: depth + sphere.SphereRadius}, true
}

func boxBox(a, b *Collider) (Contact, bool) {
	overlapX := a.HalfExtents.X + b.HalfExtents.X - math.Abs(a.Position.X-b.Position.X)
	overlapY := a.HalfExtents.Y + b.HalfExtents.Y - math.Abs(a.Position.Y-b.Position.Y)
	overlapZ := a.HalfExtents.Z + b.HalfExtents.Z - math.Abs(a.Position.Z-b.Position.Z)
	if overlapX <= 0 || overlapY <= 0 || overlapZ <= 0 {
		return Contact{}, false
	}

	// Separate along the axis of minimum penetration.
	depth := overlapX
	normal := Vec3{X: sign(a.Position.X - b.Position.X)}
	if overlapY < depth {
		depth = overlapY
		normal = Vec3{Y: sign(a.Position.Y - b.Position.Y)}
	}
	if overlapZ < depth {
		depth = overlapZ
		normal = Vec3{Z: sign(a.Position.Z - b.Position.Z)}
	}
	return Contact{Normal: normal, Depth: depth}, true
}

func spherePlane(sphere, plane *Collider) (Contact, bool) {
	dist := sphere.Position.Sub(plane.Position).Dot(plane.Normal)
	if dist >= sphere.SphereRadius {
		return Contact{}, false
	}
	return Contact{Normal: plane.Normal, Depth: sphere.SphereRadius - dist}, true
}

func boxPlane(box, plane *Collider) (Contact, bool) {
	// Projection radius of the box onto the plane normal.
	n := plane.Normal
	reach := box.HalfExtents.X*math.Abs(n.X) +
		box.HalfExtents.Y*math.Abs(n.Y) +
		box.HalfExtents.Z*math.Abs(n.Z)
	dist := box.Position.Sub(plane.Position).Dot(n)
	if dist >= reach {
		return Contact{}, false
	}
	return Contact{Normal: n, Depth: reach - dist}, true
}

// deepestFace finds the nearest box face to an interior point. Returns the
// outward face normal and the distance from the point to that face.
func deepestFace(p Vec3, box *Collider) (Vec3, float64) {
	dxPos := box.Position.X + box.HalfExtents.X - p.X
	dxNeg := p.X - (box.Position.X - box.HalfExtents.X)
	dyPos := box.Position.Y + box.HalfExtents.Y - p.Y
	dyNeg := p.Y - (box.Position.Y - box.HalfExtents.Y)
	dzPos := box.Position.Z + box.HalfExtents.Z - p.Z
	dzNeg := p.Z - (box.Position.Z - box.HalfExtents.Z)

	normal := Vec3{X: 1}
	depth := dxPos
	if dxNeg < depth {
		depth = dxNeg
		normal = Vec3{X: -1}
	}
	if dyPos < depth {
		depth = dyPos
		normal = Vec3{Y: 1}
	}
	if dyNeg < depth {
		depth = dyNeg
		normal = Vec3{Y: -1}
	}
	if dzPos < depth {
		depth = dzPos
		normal = Vec3{Z: 1}
	}
	if dzNeg < depth {
		depth = dzNeg
		normal = Vec3{Z: -1}
	}
	return normal, depth
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
