package kernel

import "fmt"

// GeometryError reports a primitive that cannot be built: non-positive
// dimensions, bad face indices or a degenerate polyhedron.
type GeometryError struct {
	Op      string // primitive being built, e.g. "box"
	Message string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry: %s: %s", e.Op, e.Message)
}

// CSGError reports a boolean operation on degenerate input.
type CSGError struct {
	Op      string // "union", "difference", "carve"
	Message string
}

func (e *CSGError) Error() string {
	return fmt.Sprintf("csg: %s: %s", e.Op, e.Message)
}
