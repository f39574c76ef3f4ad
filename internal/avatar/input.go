package avatar

import "math"

// Input is the abstract per-tick control signal for an avatar. The input
// layer (keyboard, network, script) produces it; the avatar never sees
// device events.
type Input struct {
	// MoveX is strafe intent in [-1, 1], MoveZ forward/back intent in
	// [-1, 1]. Magnitudes above 1 are clamped.
	MoveX float64
	MoveZ float64

	Sprint bool

	// Jump is an edge-triggered press, not a held state.
	Jump bool

	// Yaw is the view heading in radians. Pitch and roll never affect
	// movement.
	Yaw float64
}

// moveIntent returns the clamped horizontal intent and whether there is any.
func (in Input) moveIntent() (x, z float64, ok bool) {
	x, z = in.MoveX, in.MoveZ
	length := math.Sqrt(x*x + z*z)
	if length < 1e-6 {
		return 0, 0, false
	}
	if length > 1 {
		x /= length
		z /= length
	}
	return x, z, true
}
