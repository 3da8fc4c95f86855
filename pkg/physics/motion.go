package physics

// MotionState tracks the translational state of a body
type MotionState struct {
	Position Vector3D
	Velocity Vector3D
}

// Integrate advances state by one semi-implicit Euler step.
// Velocity is updated first and the new velocity moves the position;
// swapping the order changes the energy drift of orbits.
func Integrate(state *MotionState, acceleration Vector3D, deltaTime float64) {
	state.Velocity = state.Velocity.Add(acceleration.Scale(deltaTime))
	state.Position = state.Position.Add(state.Velocity.Scale(deltaTime))
}
