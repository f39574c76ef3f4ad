package avatar

import (
	"fmt"

	"github.com/Versifine/strafe/internal/event"
	"github.com/Versifine/strafe/internal/physics"
)

// State is the read-only presentation view of the controlled body.
type State struct {
	Position physics.Vec3
	Velocity physics.Vec3
	OnGround bool
}

// Avatar binds the controlled body to its movement and jump controllers and
// drives them from abstract input. It writes only velocity; position is the
// World's business.
type Avatar struct {
	world    *physics.World
	handle   physics.Handle
	movement *MovementController
	jump     *JumpController
}

// New wires an avatar to the controlled body handle. The handle must have
// been issued by world and should also be set as the world's controlled
// body so upward contact normals keep the ground flag honest.
func New(world *physics.World, handle physics.Handle, movement MovementTuning, jump JumpTuning, bus *event.Bus) (*Avatar, error) {
	if world == nil {
		return nil, fmt.Errorf("avatar: world is nil")
	}
	if world.Body(handle) == nil {
		return nil, fmt.Errorf("avatar: handle %d does not resolve to a body", handle)
	}
	return &Avatar{
		world:    world,
		handle:   handle,
		movement: NewMovementController(movement),
		jump:     NewJumpController(jump, bus),
	}, nil
}

// Handle returns the controlled body's handle.
func (a *Avatar) Handle() physics.Handle {
	return a.handle
}

// Tick consumes one frame of input: movement blends horizontal velocity,
// then the jump controller handles the vertical axis. dt is the frame time
// in seconds, not the physics step.
func (a *Avatar) Tick(in Input, dt float64) error {
	if a == nil {
		return fmt.Errorf("avatar is nil")
	}
	body := a.world.Body(a.handle)
	if body == nil {
		return fmt.Errorf("avatar: controlled body was removed")
	}

	if in.Jump {
		a.jump.RequestJump()
	}
	a.movement.Update(body, in, dt)
	a.jump.Update(body, a.movement.MoveDirection(), a.movement.Moving(), dt)
	return nil
}

// Reset respawns the avatar at spawn with cleared velocity and controller
// state.
func (a *Avatar) Reset(spawn physics.Vec3) {
	if a == nil {
		return
	}
	if body := a.world.Body(a.handle); body != nil {
		body.Position = spawn
		body.Velocity = physics.Vec3{}
		body.OnGround = false
	}
	a.movement.Reset()
	a.jump.Reset()
}

// SetTuning swaps both controllers' parameters, e.g. after a config reload.
func (a *Avatar) SetTuning(movement MovementTuning, jump JumpTuning) {
	if a == nil {
		return
	}
	a.movement.SetTuning(movement)
	a.jump.SetTuning(jump)
}

// State reads back the controlled body for presentation.
func (a *Avatar) State() State {
	body := a.world.Body(a.handle)
	if body == nil {
		return State{}
	}
	return State{
		Position: body.Position,
		Velocity: body.Velocity,
		OnGround: body.OnGround,
	}
}

// JumpCount exposes the current airtime jump count.
func (a *Avatar) JumpCount() int {
	return a.jump.JumpCount()
}
