package physics

import "math"

// groundNormalY is how vertical a contact normal has to be before the
// contact counts as standing ground for the controlled body.
const groundNormalY = 0.7

// correctionFactor is the fraction of the penetration removed by positional
// correction. Full correction keeps stacked bodies from sinking.
const correctionFactor = 1.0

// penetrationSlop is overlap left in place by positional correction so a
// resting contact persists across steps instead of flickering in and out.
const penetrationSlop = 0.005

// resolveContact applies an impulse exchange and positional correction to a
// colliding pair. The contact normal points from b toward a. controlled
// marks whether a is the player-controlled body; an upward-enough normal
// then upgrades its ground flag.
func resolveContact(a, b *Body, contact Contact, controlled bool) {
	relVel := a.Velocity.Sub(b.Velocity)
	velAlongNormal := relVel.Dot(contact.Normal)
	if velAlongNormal > 0 {
		// Already separating, leave the pair alone.
		return
	}

	invSum := a.InvMass + b.InvMass
	if invSum <= 0 {
		// Both effectively static. Detection never pairs two statics,
		// but a degenerate pair must not divide by zero.
		return
	}

	restitution := math.Min(a.Restitution, b.Restitution)
	j := -(1 + restitution) * velAlongNormal / invSum
	impulse := contact.Normal.Scale(j)
	a.Velocity = a.Velocity.Add(impulse.Scale(a.InvMass))
	b.Velocity = b.Velocity.Sub(impulse.Scale(b.InvMass))

	depth := math.Max(contact.Depth-penetrationSlop, 0)
	correction := contact.Normal.Scale(depth * correctionFactor / invSum)
	a.Position = a.Position.Add(correction.Scale(a.InvMass))
	b.Position = b.Position.Sub(correction.Scale(b.InvMass))
	syncCollider(a)
	syncCollider(b)

	if controlled && contact.Normal.Y > groundNormalY {
		a.OnGround = true
	}
}

// contactBetween computes the contact for a pair, using each body's explicit
// collider when present and a sphere of the body's radius otherwise.
func contactBetween(a, b *Body) (Contact, bool) {
	ca := a.Collider
	if ca == nil {
		ca = &Collider{Kind: ShapeSphere, Position: a.Position, SphereRadius: a.Radius}
	}
	cb := b.Collider
	if cb == nil {
		cb = &Collider{Kind: ShapeSphere, Position: b.Position, SphereRadius: b.Radius}
	}
	return Intersect(ca, cb)
}

func syncCollider(b *Body) {
	if b.Collider != nil {
		b.Collider.Position = b.Position
	}
}
