package window

// Key is a platform-independent key identifier delivered to key callbacks.
type Key uint32

const (
	KeyUnknown Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyPageUp
	KeyPageDown
	KeySpace
	KeyR
	KeyP
)

func (k Key) String() string {
	switch k {
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyPageUp:
		return "pageup"
	case KeyPageDown:
		return "pagedown"
	case KeySpace:
		return "space"
	case KeyR:
		return "r"
	case KeyP:
		return "p"
	default:
		return "unknown"
	}
}
