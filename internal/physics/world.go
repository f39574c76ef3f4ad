package physics

import (
	"log/slog"
	"math"

	"github.com/Versifine/strafe/internal/event"
)

// Handle identifies a body in a World. Handles are generational: the low 32
// bits index the slot, the high 32 bits hold the generation, so a handle to
// a removed body goes stale instead of aliasing its replacement.
type Handle uint64

const handleIDBits = 32

func makeHandle(id, gen uint32) Handle {
	return Handle(uint64(gen)<<handleIDBits | uint64(id))
}

func (h Handle) id() uint32 {
	return uint32(h)
}

func (h Handle) gen() uint32 {
	return uint32(uint64(h) >> handleIDBits)
}

// Valid reports whether h was ever issued by a World. It does not imply the
// body is still present.
func (h Handle) Valid() bool {
	return h.gen() != 0
}

// Settings are the world-level simulation parameters.
type Settings struct {
	Gravity Vec3

	// UpdateRateHz sets the fixed timestep: one step is 1/UpdateRateHz
	// seconds of simulated time.
	UpdateRateHz float64

	// MaxSubSteps caps how many fixed steps a single Update may run.
	// Excess accumulated time is discarded so a long frame stall cannot
	// trigger a runaway catch-up loop.
	MaxSubSteps int

	// GroundHeight is the world-bound height below which a slow-falling
	// body counts as grounded. GroundTolerance is the largest upward
	// velocity still treated as "not rising".
	GroundHeight    float64
	GroundTolerance float64

	// RestOffset is where a body sunk below y=0 is placed back.
	RestOffset float64
}

// DefaultSettings returns the tuning the engine ships with.
func DefaultSettings() Settings {
	return Settings{
		Gravity:         Vec3{Y: -20},
		UpdateRateHz:    60,
		MaxSubSteps:     5,
		GroundHeight:    0.15,
		GroundTolerance: 0.1,
		RestOffset:      0.01,
	}
}

type slot struct {
	body *Body
	gen  uint32
	live bool

	// index into the dynamic or static handle list, per body.IsStatic.
	index int

	pendingRemoval bool
	removeAt       float64

	wasOnGround bool
}

// World owns every simulated body and advances them on a fixed timestep.
// All mutation happens on the caller's goroutine; the World is not safe for
// concurrent use.
type World struct {
	settings Settings
	bus      *event.Bus

	step        float64
	accumulator float64
	simTime     float64

	slots   []slot
	free    []uint32
	dynamic []Handle
	static  []Handle

	controlled Handle
}

// NewWorld creates an empty world. bus may be nil when nobody listens.
func NewWorld(settings Settings, bus *event.Bus) *World {
	if settings.UpdateRateHz <= 0 {
		settings.UpdateRateHz = DefaultSettings().UpdateRateHz
	}
	if settings.MaxSubSteps <= 0 {
		settings.MaxSubSteps = DefaultSettings().MaxSubSteps
	}
	return &World{
		settings: settings,
		bus:      bus,
		step:     1 / settings.UpdateRateHz,
	}
}

// FixedTimestep returns the simulated seconds advanced per physics step.
func (w *World) FixedTimestep() float64 {
	return w.step
}

// SimTime returns total simulated time in seconds.
func (w *World) SimTime() float64 {
	return w.simTime
}

// SetControlled designates the player-controlled body. Pairwise contacts
// with an upward-facing normal upgrade its ground flag.
func (w *World) SetControlled(h Handle) {
	w.controlled = h
}

// AddBody inserts a body into the dynamic or static set per its IsStatic
// flag. Bodies violating the Body contract are rejected with a zero Handle.
func (w *World) AddBody(b *Body) Handle {
	if !b.valid() {
		slog.Warn("Rejected body violating contract", "static", b != nil && b.IsStatic)
		return 0
	}

	var id uint32
	if n := len(w.free); n > 0 {
		id = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		id = uint32(len(w.slots))
		w.slots = append(w.slots, slot{gen: 1})
	}

	s := &w.slots[id]
	h := makeHandle(id, s.gen)
	s.body = b
	s.live = true
	s.pendingRemoval = false
	s.wasOnGround = b.OnGround
	if b.IsStatic {
		s.index = len(w.static)
		w.static = append(w.static, h)
	} else {
		s.index = len(w.dynamic)
		w.dynamic = append(w.dynamic, h)
	}
	syncCollider(b)
	return h
}

// RemoveBody removes a body from the world. Stale or zero handles are a
// no-op.
func (w *World) RemoveBody(h Handle) {
	s := w.slot(h)
	if s == nil {
		return
	}
	list := &w.dynamic
	if s.body.IsStatic {
		list = &w.static
	}
	// Swap the last handle into the hole so removal stays O(1).
	last := len(*list) - 1
	moved := (*list)[last]
	(*list)[s.index] = moved
	*list = (*list)[:last]
	w.slots[moved.id()].index = s.index

	s.body = nil
	s.live = false
	s.gen++
	w.free = append(w.free, h.id())
}

// ScheduleRemoval marks a body for removal once delay seconds of simulated
// time have passed. The check runs once per fixed step, never on a timer.
func (w *World) ScheduleRemoval(h Handle, delay float64) {
	s := w.slot(h)
	if s == nil {
		return
	}
	if delay < 0 {
		delay = 0
	}
	s.pendingRemoval = true
	s.removeAt = w.simTime + delay
}

// Clear removes every body except keep. Passing a zero handle empties the
// world.
func (w *World) Clear(keep Handle) {
	for id := range w.slots {
		s := &w.slots[id]
		if !s.live {
			continue
		}
		h := makeHandle(uint32(id), s.gen)
		if h == keep {
			continue
		}
		w.RemoveBody(h)
	}
}

// Body returns the body behind h, or nil when the handle is stale.
func (w *World) Body(h Handle) *Body {
	s := w.slot(h)
	if s == nil {
		return nil
	}
	return s.body
}

// DynamicCount and StaticCount report collection sizes.
func (w *World) DynamicCount() int { return len(w.dynamic) }
func (w *World) StaticCount() int  { return len(w.static) }

// Update accumulates frame time and runs as many fixed steps as fit, capped
// at MaxSubSteps. The accumulator ends in [0, fixedTimestep).
func (w *World) Update(dt float64) {
	if w == nil || dt < 0 {
		return
	}
	w.accumulator += dt

	steps := 0
	for w.accumulator >= w.step && steps < w.settings.MaxSubSteps {
		w.fixedUpdate(w.step)
		w.accumulator -= w.step
		w.simTime += w.step
		steps++
	}
	if w.accumulator >= w.step {
		// Frame stall: drop the backlog instead of spiraling.
		discarded := w.accumulator - math.Mod(w.accumulator, w.step)
		w.accumulator = math.Mod(w.accumulator, w.step)
		slog.Debug("Discarded accumulated physics time", "seconds", discarded, "steps", steps)
	}
}

// fixedUpdate advances the simulation by exactly dt: deferred removals,
// gravity and force integration, world-bound ground handling, pairwise
// detection and resolution, then position integration.
func (w *World) fixedUpdate(dt float64) {
	w.processRemovals()

	for _, h := range w.dynamic {
		b := w.slots[h.id()].body
		if b.UsesGravity {
			b.AddForce(w.settings.Gravity.Scale(b.Mass))
		}
		b.integrateForces(dt)
	}

	for _, h := range w.dynamic {
		w.applyGroundBound(w.slots[h.id()].body)
	}

	for _, h := range w.dynamic {
		syncCollider(w.slots[h.id()].body)
	}

	for i, hi := range w.dynamic {
		a := w.slots[hi.id()].body
		for _, hj := range w.dynamic[i+1:] {
			b := w.slots[hj.id()].body
			contact, ok := contactBetween(a, b)
			if !ok {
				continue
			}
			if hj == w.controlled {
				resolveContact(b, a, contact.flipped(), true)
			} else {
				resolveContact(a, b, contact, hi == w.controlled)
			}
		}
		for _, hs := range w.static {
			s := w.slots[hs.id()].body
			contact, ok := contactBetween(a, s)
			if !ok {
				continue
			}
			resolveContact(a, s, contact, hi == w.controlled)
		}
	}

	for _, h := range w.dynamic {
		s := &w.slots[h.id()]
		b := s.body
		b.Position = b.Position.Add(b.Velocity.Scale(dt))
		syncCollider(b)

		if b.OnGround && !s.wasOnGround && w.bus != nil {
			w.bus.Publish(event.EventLanding, event.LandingEvent{
				Body:      uint64(h),
				ImpactVel: b.Velocity.Y,
			})
		}
		s.wasOnGround = b.OnGround
	}
}

// applyGroundBound is the world floor check. It runs before pairwise
// resolution; contacts found later may only upgrade OnGround to true.
func (w *World) applyGroundBound(b *Body) {
	if b.Position.Y < w.settings.GroundHeight && b.Velocity.Y <= w.settings.GroundTolerance {
		b.OnGround = true
		if b.Velocity.Y < 0 {
			b.Velocity.Y = 0
		}
		if b.Position.Y < 0 {
			b.Position.Y = w.settings.RestOffset
		}
		return
	}
	b.OnGround = false
}

func (w *World) processRemovals() {
	// Collect first: removal mutates the handle lists being iterated.
	var due []Handle
	for _, h := range w.dynamic {
		if s := &w.slots[h.id()]; s.pendingRemoval && w.simTime >= s.removeAt {
			due = append(due, h)
		}
	}
	for _, h := range w.static {
		if s := &w.slots[h.id()]; s.pendingRemoval && w.simTime >= s.removeAt {
			due = append(due, h)
		}
	}
	for _, h := range due {
		w.RemoveBody(h)
		if w.bus != nil {
			w.bus.Publish(event.EventBodyRemoved, event.BodyRemovedEvent{Body: uint64(h)})
		}
	}
}

func (w *World) slot(h Handle) *slot {
	if !h.Valid() {
		return nil
	}
	id := h.id()
	if int(id) >= len(w.slots) {
		return nil
	}
	s := &w.slots[id]
	if !s.live || s.gen != h.gen() {
		return nil
	}
	return s
}
