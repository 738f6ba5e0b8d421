package camera

import "strings"

// ClearFlags selects which render targets are cleared when the next render pass begins.
type ClearFlags uint8

const (
	// ClearColor clears the color target to the renderer's clear color.
	ClearColor ClearFlags = 1 << iota
	// ClearDepth clears the depth target to the far plane.
	ClearDepth
)

const (
	// ClearNone loads both targets as they are.
	ClearNone ClearFlags = 0
	// ClearAll clears both color and depth. This is the camera default.
	ClearAll = ClearColor | ClearDepth
)

// Has reports whether every flag in f is set.
func (c ClearFlags) Has(f ClearFlags) bool {
	return c&f == f
}

func (c ClearFlags) String() string {
	if c == ClearNone {
		return "none"
	}
	var parts []string
	if c.Has(ClearColor) {
		parts = append(parts, "color")
	}
	if c.Has(ClearDepth) {
		parts = append(parts, "depth")
	}
	return strings.Join(parts, "|")
}
