package avatar

import (
	"math"

	"github.com/Versifine/strafe/internal/physics"
)

// MovementTuning holds the feel parameters for horizontal locomotion.
type MovementTuning struct {
	WalkSpeed float64
	RunSpeed  float64

	// Acceleration rates in 1/s: the fraction of the remaining velocity
	// delta closed per second, before boosts.
	GroundAccel float64
	AirAccel    float64

	// AirControl scales acceleration while airborne.
	AirControl float64

	// DirectionChangeBoost scales acceleration when starting from near
	// standstill or mid direction-change.
	DirectionChangeBoost float64

	// MomentumRetention is the fraction of current velocity kept when
	// blending through a sharp turn at speed.
	MomentumRetention float64

	MaxSpeed float64

	StopAccelGround float64
	StopAccelAir    float64

	// DirectionChangeCos is the dot-product threshold below which two
	// consecutive move directions count as a direction change.
	DirectionChangeCos float64

	// DirectionChangeHold is how long (seconds) the direction-change flag
	// stays active after the last qualifying change.
	DirectionChangeHold float64
}

// DefaultMovementTuning returns the shipped locomotion feel.
func DefaultMovementTuning() MovementTuning {
	return MovementTuning{
		WalkSpeed:            5,
		RunSpeed:             9,
		GroundAccel:          10,
		AirAccel:             4,
		AirControl:           0.6,
		DirectionChangeBoost: 2,
		MomentumRetention:    0.5,
		MaxSpeed:             12,
		StopAccelGround:      30,
		StopAccelAir:         6,
		DirectionChangeCos:   0.85,
		DirectionChangeHold:  0.1,
	}
}

const (
	// momentumSpeedFloor is the horizontal speed above which a sharp turn
	// blends through momentum retention instead of snapping.
	momentumSpeedFloor = 2.0

	// nearStandstill marks "starting from rest" for the accel boost.
	nearStandstill = 0.5

	// stopSnapSpeed is where the stop force snaps velocity to exact zero.
	stopSnapSpeed = 0.1
)

// MovementController converts move intent into horizontal velocity on the
// controlled body. It only ever writes the X and Z velocity components.
type MovementController struct {
	tuning MovementTuning

	clock        float64
	lastMoveDir  physics.Vec3
	dirChangedAt float64
	dirChanged   bool
	hasMoveDir   bool
}

// NewMovementController creates a controller with the given tuning.
func NewMovementController(tuning MovementTuning) *MovementController {
	return &MovementController{tuning: tuning, dirChangedAt: math.Inf(-1)}
}

// SetTuning swaps the feel parameters. Safe between updates only.
func (m *MovementController) SetTuning(tuning MovementTuning) {
	m.tuning = tuning
}

// MoveDirection is the last world-space move direction, unit length or zero.
func (m *MovementController) MoveDirection() physics.Vec3 {
	return m.lastMoveDir
}

// Moving reports whether the last update carried move intent.
func (m *MovementController) Moving() bool {
	return m.hasMoveDir
}

// Reset clears transient state, e.g. on respawn.
func (m *MovementController) Reset() {
	m.clock = 0
	m.lastMoveDir = physics.Vec3{}
	m.dirChangedAt = math.Inf(-1)
	m.dirChanged = false
	m.hasMoveDir = false
}

// Update blends the body's horizontal velocity toward the input's target
// velocity over dt seconds.
func (m *MovementController) Update(body *physics.Body, in Input, dt float64) {
	if m == nil || body == nil || dt <= 0 {
		return
	}
	m.clock += dt

	strafe, forward, hasIntent := in.moveIntent()
	if !hasIntent {
		m.hasMoveDir = false
		m.applyStopForce(body, dt)
		return
	}

	moveDir := yawToWorld(strafe, forward, in.Yaw)

	// A sharp enough turn raises the direction-change flag; it decays
	// DirectionChangeHold seconds after the last qualifying turn.
	if m.hasMoveDir && m.lastMoveDir.Dot(moveDir) < m.tuning.DirectionChangeCos {
		m.dirChanged = true
		m.dirChangedAt = m.clock
	} else if m.dirChanged && m.clock-m.dirChangedAt > m.tuning.DirectionChangeHold {
		m.dirChanged = false
	}

	speed := m.tuning.WalkSpeed
	if in.Sprint {
		speed = m.tuning.RunSpeed
	}
	target := moveDir.Scale(speed)

	current := body.Velocity.Horizontal()
	currentSpeed := current.HorizontalLength()

	var blended physics.Vec3
	if m.dirChanged && currentSpeed > momentumSpeedFloor {
		retention := m.tuning.MomentumRetention
		blended = current.Scale(retention).Add(target.Scale(1 - retention))
	} else {
		accel := m.tuning.GroundAccel
		if !body.OnGround {
			accel = m.tuning.AirAccel
		}
		if currentSpeed < nearStandstill || m.dirChanged {
			accel *= m.tuning.DirectionChangeBoost
		}
		if !body.OnGround {
			accel *= m.tuning.AirControl
		}
		t := math.Min(accel*dt, 1)
		blended = current.Add(target.Sub(current).Scale(t))
	}

	if limit := m.tuning.MaxSpeed; limit > 0 {
		if blendedSpeed := blended.HorizontalLength(); blendedSpeed > limit {
			blended = blended.Scale(limit / blendedSpeed)
		}
	}

	body.Velocity.X = blended.X
	body.Velocity.Z = blended.Z

	m.lastMoveDir = moveDir
	m.hasMoveDir = true
}

// applyStopForce decelerates horizontal velocity toward zero, weaker in air,
// snapping to exact zero below a small threshold.
func (m *MovementController) applyStopForce(body *physics.Body, dt float64) {
	current := body.Velocity.Horizontal()
	speed := current.HorizontalLength()
	if speed <= stopSnapSpeed {
		body.Velocity.X = 0
		body.Velocity.Z = 0
		return
	}

	stopAccel := m.tuning.StopAccelGround
	if !body.OnGround {
		stopAccel = m.tuning.StopAccelAir
	}
	drop := math.Min(speed, stopAccel*dt)
	scaled := current.Scale((speed - drop) / speed)
	body.Velocity.X = scaled.X
	body.Velocity.Z = scaled.Z
}

// yawToWorld rotates a horizontal intent into world space using only the
// view yaw. At yaw 0 forward intent points along +Z.
func yawToWorld(strafe, forward, yaw float64) physics.Vec3 {
	sin, cos := math.Sin(yaw), math.Cos(yaw)
	dir := physics.Vec3{
		X: forward*(-sin) + strafe*cos,
		Z: forward*cos + strafe*sin,
	}
	return dir.Normalized()
}
