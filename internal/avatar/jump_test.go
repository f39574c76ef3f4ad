package avatar

import (
	"testing"

	"github.com/Versifine/strafe/internal/event"
	"github.com/Versifine/strafe/internal/physics"
)

const jumpDt = 1.0 / 60

// airborneSteps advances the controller with the body off the ground.
func airborneSteps(j *JumpController, b *physics.Body, n int) {
	b.OnGround = false
	for i := 0; i < n; i++ {
		j.Update(b, physics.Vec3{}, false, jumpDt)
	}
}

func TestJump_GroundedJumpSetsForceAndCount(t *testing.T) {
	tuning := DefaultJumpTuning()
	j := NewJumpController(tuning, nil)
	b := groundedBody()

	j.RequestJump()
	j.Update(b, physics.Vec3{}, false, jumpDt)

	approxEqual(t, b.Velocity.Y, tuning.JumpForce, 1e-9, "velocity.y")
	if j.JumpCount() != 1 {
		t.Fatalf("jump count = %d, want 1", j.JumpCount())
	}
	if b.OnGround {
		t.Fatalf("body still flagged grounded right after liftoff")
	}
}

func TestJump_CooldownRejectsSpam(t *testing.T) {
	tuning := DefaultJumpTuning()
	j := NewJumpController(tuning, nil)
	b := groundedBody()

	j.RequestJump()
	j.Update(b, physics.Vec3{}, false, jumpDt)
	velAfterFirst := b.Velocity.Y

	// Immediate second press: inside the cooldown window, nothing fires.
	j.RequestJump()
	j.Update(b, physics.Vec3{}, false, jumpDt)

	approxEqual(t, b.Velocity.Y, velAfterFirst, 1e-9, "velocity.y")
	if j.JumpCount() != 1 {
		t.Fatalf("jump count = %d, want 1 after rejected spam", j.JumpCount())
	}
}

func TestJump_BufferedRequestFiresOnLanding(t *testing.T) {
	tuning := DefaultJumpTuning()
	j := NewJumpController(tuning, nil)
	b := groundedBody()
	b.OnGround = false
	b.Velocity = physics.Vec3{Y: -3}

	// Exhaust the air jumps so the buffered press can only fire grounded.
	j.jumpCount = tuning.MaxJumps

	j.RequestJump()
	airborneSteps(j, b, 6) // 100ms airborne, inside the 200ms buffer

	b.OnGround = true
	b.Velocity.Y = 0
	j.Update(b, physics.Vec3{}, false, jumpDt)

	approxEqual(t, b.Velocity.Y, tuning.JumpForce, 1e-9, "velocity.y")
	if j.JumpCount() != 1 {
		t.Fatalf("jump count = %d, want 1 (reset on landing, then one jump)", j.JumpCount())
	}
}

func TestJump_BufferExpires(t *testing.T) {
	tuning := DefaultJumpTuning()
	j := NewJumpController(tuning, nil)
	b := groundedBody()
	b.OnGround = false
	j.jumpCount = tuning.MaxJumps // no air jumps left

	j.RequestJump()
	airborneSteps(j, b, 15) // 250ms, past the 200ms buffer

	b.OnGround = true
	j.Update(b, physics.Vec3{}, false, jumpDt)

	approxEqual(t, b.Velocity.Y, 0, 1e-9, "velocity.y")
	if j.JumpCount() != 0 {
		t.Fatalf("jump count = %d, want 0 (landing reset, expired request)", j.JumpCount())
	}
}

func TestJump_CoyoteWindowAllowsLateFullJump(t *testing.T) {
	tuning := DefaultJumpTuning()
	j := NewJumpController(tuning, nil)
	b := groundedBody()

	// Establish grounded history, then walk off a ledge.
	j.Update(b, physics.Vec3{}, false, jumpDt)
	airborneSteps(j, b, 6) // 100ms airborne, inside the 150ms coyote window

	j.RequestJump()
	j.Update(b, physics.Vec3{}, false, jumpDt)

	approxEqual(t, b.Velocity.Y, tuning.JumpForce, 1e-9, "velocity.y: coyote jump is full force")
	if j.JumpCount() != 1 {
		t.Fatalf("jump count = %d, want 1", j.JumpCount())
	}
}

func TestJump_PastCoyoteWindowFallsBackToAirJump(t *testing.T) {
	tuning := DefaultJumpTuning()
	j := NewJumpController(tuning, nil)
	b := groundedBody()

	j.Update(b, physics.Vec3{}, false, jumpDt)
	airborneSteps(j, b, 12) // 200ms, past the 150ms coyote window

	j.RequestJump()
	j.Update(b, physics.Vec3{}, false, jumpDt)

	approxEqual(t, b.Velocity.Y, tuning.JumpForce*tuning.AirJumpFactor, 1e-9, "velocity.y: reduced air jump")
	if j.JumpCount() != 1 {
		t.Fatalf("jump count = %d, want 1", j.JumpCount())
	}
}

func TestJump_DoubleJumpThenRejected(t *testing.T) {
	tuning := DefaultJumpTuning()
	bus := event.NewBus()
	var counts []int
	bus.Subscribe(event.EventJump, func(evt any) {
		if e, ok := evt.(event.JumpEvent); ok {
			counts = append(counts, e.Count)
		}
	})

	j := NewJumpController(tuning, bus)
	b := groundedBody()

	j.RequestJump()
	j.Update(b, physics.Vec3{}, false, jumpDt)

	airborneSteps(j, b, 8) // clear the cooldown
	j.RequestJump()
	j.Update(b, physics.Vec3{}, false, jumpDt)
	approxEqual(t, b.Velocity.Y, tuning.JumpForce*tuning.AirJumpFactor, 1e-9, "velocity.y second jump")
	if j.JumpCount() != 2 {
		t.Fatalf("jump count = %d, want 2", j.JumpCount())
	}

	airborneSteps(j, b, 8)
	b.Velocity.Y = -1
	j.RequestJump()
	j.Update(b, physics.Vec3{}, false, jumpDt)
	approxEqual(t, b.Velocity.Y, -1, 1e-9, "velocity.y: third jump rejected")
	if j.JumpCount() != 2 {
		t.Fatalf("jump count = %d, want 2 after rejected third jump", j.JumpCount())
	}

	if len(counts) != 2 || counts[0] != 1 || counts[1] != 2 {
		t.Fatalf("jump events = %v, want [1 2]", counts)
	}
}

func TestJump_CountResetsExactlyOnLanding(t *testing.T) {
	j := NewJumpController(DefaultJumpTuning(), nil)
	b := groundedBody()

	j.jumpCount = 2
	airborneSteps(j, b, 3)
	if j.JumpCount() != 2 {
		t.Fatalf("jump count reset mid-air")
	}

	b.OnGround = true
	j.Update(b, physics.Vec3{}, false, jumpDt)
	if j.JumpCount() != 0 {
		t.Fatalf("jump count = %d, want 0 after landing", j.JumpCount())
	}

	// Staying grounded must not keep "resetting" anything observable;
	// a later grounded jump still works normally.
	j.Update(b, physics.Vec3{}, false, jumpDt)
	j.RequestJump()
	j.Update(b, physics.Vec3{}, false, jumpDt)
	if j.JumpCount() != 1 {
		t.Fatalf("jump count = %d, want 1", j.JumpCount())
	}
}

func TestJump_ForwardBoostOnlyWhenGroundedAndMoving(t *testing.T) {
	tuning := DefaultJumpTuning()
	forward := physics.Vec3{Z: 1}

	t.Run("grounded_moving", func(t *testing.T) {
		j := NewJumpController(tuning, nil)
		b := groundedBody()
		j.RequestJump()
		j.Update(b, forward, true, jumpDt)
		approxEqual(t, b.Velocity.Z, tuning.ForwardBoost, 1e-9, "velocity.z boost")
	})

	t.Run("grounded_idle", func(t *testing.T) {
		j := NewJumpController(tuning, nil)
		b := groundedBody()
		j.RequestJump()
		j.Update(b, forward, false, jumpDt)
		approxEqual(t, b.Velocity.Z, 0, 1e-9, "velocity.z without movement")
	})

	t.Run("airborne_coyote", func(t *testing.T) {
		j := NewJumpController(tuning, nil)
		b := groundedBody()
		j.Update(b, forward, true, jumpDt)
		airborneSteps(j, b, 3)
		j.RequestJump()
		j.Update(b, forward, true, jumpDt)
		approxEqual(t, b.Velocity.Y, tuning.JumpForce, 1e-9, "velocity.y")
		approxEqual(t, b.Velocity.Z, 0, 1e-9, "velocity.z: no boost off the ground")
	})
}
