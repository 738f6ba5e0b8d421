package session

// Status is the connection state reported by a remote session handle.
type Status int

const (
	// StatusStarting means the remote worker is still being provisioned or connecting.
	StatusStarting Status = iota
	// StatusReady means frames can be submitted and composited.
	StatusReady
	// StatusError means the session failed and will not recover.
	StatusError
	// StatusStopped means the session was shut down.
	StatusStopped
	// StatusExpired means the session's lease ran out.
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusStarting:
		return "starting"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	case StatusStopped:
		return "stopped"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the session can never become ready again.
func (s Status) IsTerminal() bool {
	return s == StatusError || s == StatusStopped || s == StatusExpired
}
