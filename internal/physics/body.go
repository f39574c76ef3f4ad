package physics

// Body is a rigid body simulated by the World. Dynamic bodies carry mass and
// are integrated each fixed step; static bodies never move and only ever act
// as the other party in a collision.
type Body struct {
	Position Vec3
	Velocity Vec3

	// InvMass is 0 for static bodies and 1/Mass for dynamic ones. The
	// resolver works exclusively in inverse mass so immovable bodies fall
	// out of the impulse math naturally.
	Mass    float64
	InvMass float64

	Restitution float64 // bounciness along the contact normal, [0, 1]
	Friction    float64 // [0, 1]

	UsesGravity bool
	IsStatic    bool
	OnGround    bool

	// Collider is optional. Bodies without one fall back to a sphere of
	// Radius for pairwise resolution.
	Collider *Collider
	Radius   float64

	force Vec3
}

// NewDynamicBody returns a gravity-affected dynamic body at pos.
// Non-positive mass is clamped to 1.
func NewDynamicBody(pos Vec3, mass float64) *Body {
	if mass <= 0 {
		mass = 1
	}
	return &Body{
		Position:    pos,
		Mass:        mass,
		InvMass:     1 / mass,
		Restitution: 0.3,
		Friction:    0.5,
		UsesGravity: true,
		Radius:      0.5,
	}
}

// NewStaticBody returns an immovable body at pos. Static bodies have
// InvMass 0 and ignore gravity regardless of UsesGravity.
func NewStaticBody(pos Vec3) *Body {
	return &Body{
		Position:    pos,
		InvMass:     0,
		Restitution: 0.3,
		Friction:    0.5,
		IsStatic:    true,
		Radius:      0.5,
	}
}

// SetCollider attaches a collider shape to the body.
func (b *Body) SetCollider(c *Collider) {
	b.Collider = c
}

// AddForce accumulates a force applied over the next fixed step.
func (b *Body) AddForce(f Vec3) {
	if b == nil || b.IsStatic {
		return
	}
	b.force = b.force.Add(f)
}

// integrateForces applies the accumulated force as acceleration over dt and
// clears it. Semi-implicit Euler: velocity first, position later in the step.
func (b *Body) integrateForces(dt float64) {
	if b.IsStatic {
		return
	}
	b.Velocity = b.Velocity.Add(b.force.Scale(b.InvMass * dt))
	b.force = Vec3{}
}

// valid reports whether the body satisfies the contract the World requires
// at insertion time.
func (b *Body) valid() bool {
	if b == nil {
		return false
	}
	if !b.IsStatic && (b.Mass <= 0 || b.InvMass <= 0) {
		return false
	}
	if b.IsStatic && b.InvMass != 0 {
		return false
	}
	if b.Restitution < 0 || b.Restitution > 1 {
		return false
	}
	return true
}
