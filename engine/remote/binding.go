package remote

// BindingKind selects how local and remote rendering are connected.
type BindingKind int

const (
	// BindingNone is the zero value and is not usable.
	BindingNone BindingKind = iota
	// BindingSimulation submits the local camera every frame and overrides it with the echo.
	BindingSimulation
	// BindingPassthrough forwards a coordinate system and blits without pose submission.
	BindingPassthrough
)

func (k BindingKind) String() string {
	switch k {
	case BindingSimulation:
		return "simulation"
	case BindingPassthrough:
		return "passthrough"
	default:
		return "none"
	}
}

// Binding is a closed variant over the two graphics bindings. It is chosen once when a
// session starts; the synchronizer dispatches on Kind instead of inspecting session types.
type Binding struct {
	kind BindingKind

	simulation SimulationSession
	convention Convention

	passthrough PassthroughSession
	coordinates CoordinateSystemSource
}

// NewSimulationBinding binds a simulation session using conv to translate matrices.
//
// Parameters:
//   - s: the simulation session
//   - conv: the engine <-> remote matrix convention
//
// Returns:
//   - Binding: the simulation binding
func NewSimulationBinding(s SimulationSession, conv Convention) Binding {
	return Binding{kind: BindingSimulation, simulation: s, convention: conv}
}

// NewPassthroughBinding binds a passthrough session fed by source each frame.
//
// Parameters:
//   - s: the passthrough session
//   - source: returns the platform's current coordinate system (may be nil)
//
// Returns:
//   - Binding: the passthrough binding
func NewPassthroughBinding(s PassthroughSession, source CoordinateSystemSource) Binding {
	return Binding{kind: BindingPassthrough, passthrough: s, coordinates: source}
}

// Kind returns the binding variant.
func (b Binding) Kind() BindingKind {
	return b.kind
}

// Convention returns the matrix convention of a simulation binding.
func (b Binding) Convention() Convention {
	return b.convention
}

// Session returns the bound session, or nil for an empty Binding.
func (b Binding) Session() Session {
	switch b.kind {
	case BindingSimulation:
		return b.simulation
	case BindingPassthrough:
		return b.passthrough
	default:
		return nil
	}
}

// Valid reports whether the binding carries a session of its kind.
func (b Binding) Valid() bool {
	switch b.kind {
	case BindingSimulation:
		return b.simulation != nil
	case BindingPassthrough:
		return b.passthrough != nil
	default:
		return false
	}
}

// coordinateSystem reads the platform's current coordinate system.
func (b Binding) coordinateSystem() *CoordinateSystem {
	if b.coordinates == nil {
		return nil
	}
	return b.coordinates()
}
