package event

const (
	EventLanding     = "body.landing"
	EventBodyRemoved = "body.removed"
	EventJump        = "avatar.jump"
)

// LandingEvent fires on the step where a body transitions from airborne to
// grounded.
type LandingEvent struct {
	Body      uint64
	ImpactVel float64
}

// BodyRemovedEvent fires when a deferred removal finally takes effect.
type BodyRemovedEvent struct {
	Body uint64
}

// JumpEvent fires on every successful jump. Count is the jump number within
// the current airtime, starting at 1.
type JumpEvent struct {
	Count int
}
