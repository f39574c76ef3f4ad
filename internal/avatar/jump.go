package avatar

import (
	"math"

	"github.com/Versifine/strafe/internal/event"
	"github.com/Versifine/strafe/internal/physics"
)

// JumpTuning holds the timing windows and forces for jumping.
type JumpTuning struct {
	// JumpForce is the vertical velocity set on a first jump. Air jumps
	// use JumpForce * AirJumpFactor.
	JumpForce     float64
	AirJumpFactor float64

	// MaxJumps is the total jumps allowed per airtime, 2 = double jump.
	MaxJumps int

	// BufferWindow keeps an early press pending, CoyoteWindow keeps a
	// late press grounded, Cooldown rejects spammed presses. Seconds.
	BufferWindow float64
	CoyoteWindow float64
	Cooldown     float64

	// ForwardBoost is added along the move direction on a grounded,
	// moving jump.
	ForwardBoost float64
}

// DefaultJumpTuning returns the shipped jump feel.
func DefaultJumpTuning() JumpTuning {
	return JumpTuning{
		JumpForce:     8,
		AirJumpFactor: 0.9,
		MaxJumps:      2,
		BufferWindow:  0.2,
		CoyoteWindow:  0.15,
		Cooldown:      0.1,
		ForwardBoost:  1.5,
	}
}

// JumpController tracks jump timing windows and writes vertical velocity on
// the controlled body. Jump count resets exactly on the airborne-to-grounded
// transition.
type JumpController struct {
	tuning JumpTuning
	bus    *event.Bus

	clock          float64
	jumpCount      int
	lastJumpAt     float64
	lastGroundedAt float64
	requestAt      float64
	requestPending bool
	wasGrounded    bool
}

// NewJumpController creates a controller. bus may be nil.
func NewJumpController(tuning JumpTuning, bus *event.Bus) *JumpController {
	return &JumpController{
		tuning:         tuning,
		bus:            bus,
		lastJumpAt:     math.Inf(-1),
		lastGroundedAt: math.Inf(-1),
		requestAt:      math.Inf(-1),
	}
}

// SetTuning swaps the jump parameters. Safe between updates only.
func (j *JumpController) SetTuning(tuning JumpTuning) {
	j.tuning = tuning
}

// RequestJump records a press. The request stays pending for the buffer
// window and is consumed by the first update that can honor it.
func (j *JumpController) RequestJump() {
	if j == nil {
		return
	}
	j.requestAt = j.clock
	j.requestPending = true
}

// JumpCount is the number of jumps used in the current airtime.
func (j *JumpController) JumpCount() int {
	return j.jumpCount
}

// Reset clears all timing state, e.g. on respawn.
func (j *JumpController) Reset() {
	j.clock = 0
	j.jumpCount = 0
	j.lastJumpAt = math.Inf(-1)
	j.lastGroundedAt = math.Inf(-1)
	j.requestAt = math.Inf(-1)
	j.requestPending = false
	j.wasGrounded = false
}

// Update advances the timing windows by dt and performs a jump when a
// pending request lines up with a permitting state. moveDir and moving come
// from the movement controller and feed the forward boost.
func (j *JumpController) Update(body *physics.Body, moveDir physics.Vec3, moving bool, dt float64) {
	if j == nil || body == nil || dt <= 0 {
		return
	}
	j.clock += dt

	grounded := body.OnGround
	if grounded {
		if !j.wasGrounded {
			// Landing transition, never mid-air or while resting.
			j.jumpCount = 0
		}
		j.lastGroundedAt = j.clock
	}
	j.wasGrounded = grounded

	if j.requestPending && j.clock-j.requestAt > j.tuning.BufferWindow {
		j.requestPending = false
	}
	if !j.requestPending {
		return
	}
	if j.clock-j.lastJumpAt < j.tuning.Cooldown {
		// Too soon after the last jump. The request stays buffered.
		return
	}

	coyote := !grounded && j.clock-j.lastGroundedAt <= j.tuning.CoyoteWindow
	switch {
	case grounded || coyote:
		body.Velocity.Y = j.tuning.JumpForce
		if grounded && moving && j.tuning.ForwardBoost > 0 {
			boost := moveDir.Horizontal().Scale(j.tuning.ForwardBoost)
			body.Velocity.X += boost.X
			body.Velocity.Z += boost.Z
		}
		j.jumpCount = 1
	case j.jumpCount < j.tuning.MaxJumps:
		body.Velocity.Y = j.tuning.JumpForce * j.tuning.AirJumpFactor
		j.jumpCount++
	default:
		return
	}

	j.lastJumpAt = j.clock
	// Consume the coyote window so a jump cannot double as a grounded
	// jump again moments after liftoff.
	j.lastGroundedAt = math.Inf(-1)
	j.requestPending = false
	body.OnGround = false
	if j.bus != nil {
		j.bus.Publish(event.EventJump, event.JumpEvent{Count: j.jumpCount})
	}
}
