package physics

import (
	"math"
	"testing"
)

func overlappingSpheres(restitution float64) (*Body, *Body) {
	a := NewDynamicBody(Vec3{X: -0.4}, 1)
	a.UsesGravity = false
	a.Restitution = restitution
	a.SetCollider(NewSphereCollider(0.5))
	b := NewDynamicBody(Vec3{X: 0.4}, 1)
	b.UsesGravity = false
	b.Restitution = restitution
	b.SetCollider(NewSphereCollider(0.5))
	syncCollider(a)
	syncCollider(b)
	return a, b
}

func TestResolver_ElasticHeadOnExchangesNormalVelocity(t *testing.T) {
	a, b := overlappingSpheres(1.0)
	a.Velocity = Vec3{X: 2, Z: 1} // tangential Z must survive untouched
	b.Velocity = Vec3{X: -2}

	contact, ok := contactBetween(a, b)
	if !ok {
		t.Fatalf("expected contact between overlapping spheres")
	}
	resolveContact(a, b, contact, false)

	approxEqual(t, a.Velocity.X, -2, 1e-9, "a.velocity.x")
	approxEqual(t, b.Velocity.X, 2, 1e-9, "b.velocity.x")
	approxEqual(t, a.Velocity.Z, 1, 1e-9, "a.velocity.z")
	approxEqual(t, b.Velocity.Z, 0, 1e-9, "b.velocity.z")
}

func TestResolver_InelasticHeadOnReachesCommonVelocity(t *testing.T) {
	a, b := overlappingSpheres(0.0)
	a.Velocity = Vec3{X: 3}
	b.Velocity = Vec3{X: -1}

	contact, ok := contactBetween(a, b)
	if !ok {
		t.Fatalf("expected contact between overlapping spheres")
	}
	resolveContact(a, b, contact, false)

	approxEqual(t, a.Velocity.X, 1, 1e-9, "a.velocity.x")
	approxEqual(t, b.Velocity.X, 1, 1e-9, "b.velocity.x")
}

func TestResolver_SeparatingPairIsLeftAlone(t *testing.T) {
	a, b := overlappingSpheres(1.0)
	a.Velocity = Vec3{X: -1} // a drifts left, b drifts right: already separating
	b.Velocity = Vec3{X: 1}
	posA, posB := a.Position, b.Position

	contact, ok := contactBetween(a, b)
	if !ok {
		t.Fatalf("expected contact between overlapping spheres")
	}
	resolveContact(a, b, contact, false)

	approxEqual(t, a.Velocity.X, -1, 1e-9, "a.velocity.x")
	approxEqual(t, b.Velocity.X, 1, 1e-9, "b.velocity.x")
	if a.Position != posA || b.Position != posB {
		t.Fatalf("separating pair was repositioned")
	}
}

func TestResolver_StaticBodyNeverMoves(t *testing.T) {
	a := NewDynamicBody(Vec3{Y: 1.3}, 1)
	a.Restitution = 0.5
	a.Velocity = Vec3{Y: -4}
	a.SetCollider(NewSphereCollider(0.5))
	syncCollider(a)

	wall := NewStaticBody(Vec3{Y: 0})
	wall.Restitution = 0.5
	wall.SetCollider(NewBoxCollider(Vec3{X: 5, Y: 1, Z: 5}))
	syncCollider(wall)

	contact, ok := contactBetween(a, wall)
	if !ok {
		t.Fatalf("expected sphere-box contact")
	}
	resolveContact(a, wall, contact, false)

	if wall.Position != (Vec3{Y: 0}) {
		t.Fatalf("static body was repositioned to %v", wall.Position)
	}
	if wall.Velocity != (Vec3{}) {
		t.Fatalf("static body gained velocity %v", wall.Velocity)
	}
	// restitution 0.5 both sides: bounce back at half speed
	approxEqual(t, a.Velocity.Y, 2, 1e-9, "a.velocity.y")
	if a.Position.Y <= 1.3 {
		t.Fatalf("dynamic body not pushed out: y = %v", a.Position.Y)
	}
}

func TestResolver_DegeneratePairIsSkipped(t *testing.T) {
	a := NewStaticBody(Vec3{})
	b := NewStaticBody(Vec3{X: 0.1})

	resolveContact(a, b, Contact{Normal: Vec3{X: 1}, Depth: 0.5}, false)

	if a.Position != (Vec3{}) || b.Position != (Vec3{X: 0.1}) {
		t.Fatalf("degenerate static pair was mutated")
	}
}

func TestResolver_RadiusFallbackWithoutColliders(t *testing.T) {
	a := NewDynamicBody(Vec3{X: -0.3}, 1)
	a.Radius = 0.5
	b := NewDynamicBody(Vec3{X: 0.3}, 1)
	b.Radius = 0.5

	contact, ok := contactBetween(a, b)
	if !ok {
		t.Fatalf("expected fallback sphere contact")
	}
	approxEqual(t, contact.Depth, 0.4, 1e-9, "depth")
	approxEqual(t, contact.Normal.X, -1, 1e-9, "normal.x")
}

func TestResolver_GroundFlagUpgrade(t *testing.T) {
	tests := []struct {
		name       string
		normal     Vec3
		controlled bool
		want       bool
	}{
		{"controlled_flat_ground", Vec3{Y: 1}, true, true},
		{"controlled_walkable_slope", Vec3{X: 0.6, Y: 0.8}.Normalized(), true, true},
		{"controlled_steep_wall", Vec3{X: 1}, true, false},
		{"not_controlled", Vec3{Y: 1}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewDynamicBody(Vec3{}, 1)
			a.Velocity = Vec3{Y: -1}
			b := NewStaticBody(Vec3{Y: -1})

			resolveContact(a, b, Contact{Normal: tt.normal, Depth: 0.01}, tt.controlled)

			if a.OnGround != tt.want {
				t.Fatalf("onGround = %v, want %v", a.OnGround, tt.want)
			}
		})
	}
}

func TestResolver_PositionalCorrectionSharesByInverseMass(t *testing.T) {
	a := NewDynamicBody(Vec3{X: -0.4}, 1) // invMass 1
	a.UsesGravity = false
	b := NewDynamicBody(Vec3{X: 0.4}, 3) // invMass 1/3
	b.UsesGravity = false
	a.Velocity = Vec3{X: 1}
	b.Velocity = Vec3{X: -1}

	depth := 0.2 + penetrationSlop
	resolveContact(a, b, Contact{Normal: Vec3{X: -1}, Depth: depth}, false)

	moveA := math.Abs(a.Position.X - (-0.4))
	moveB := math.Abs(b.Position.X - 0.4)
	approxEqual(t, moveA+moveB, 0.2, 1e-9, "total separation")
	approxEqual(t, moveA/moveB, 3, 1e-9, "inverse-mass share ratio")
}
