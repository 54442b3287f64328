package physics

import (
	"fmt"
	"math"

	"github.com/chazu/baize/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// Binder attaches physics bodies to kernel solids. It tessellates TriMesh
// bodies through its kernel.
type Binder struct {
	k kernel.Kernel
}

// NewBinder returns a binder that meshes through k.
func NewBinder(k kernel.Kernel) *Binder {
	return &Binder{k: k}
}

// Attach binds s to a new body of the given kind and material. The body
// starts at rest at the solid's bounding-box center.
func (b *Binder) Attach(id string, s kernel.Solid, kind Kind, m Material) (*Body, error) {
	fail := func(format string, args ...interface{}) (*Body, error) {
		return nil, &BindError{BodyID: id, Kind: kind, Message: fmt.Sprintf(format, args...)}
	}

	if s == nil {
		return fail("solid is nil")
	}
	if math.IsNaN(m.Mass) || m.Mass < 0 {
		return fail("mass is %g, must not be negative", m.Mass)
	}
	if math.IsNaN(m.Restitution) || m.Restitution < 0 || m.Restitution > 1 {
		return fail("restitution is %g, must be within [0,1]", m.Restitution)
	}
	if kernel.IsDegenerate(s) {
		return fail("solid has no volume")
	}

	body := &Body{
		ID:          id,
		Kind:        kind,
		Material:    m,
		Solid:       s,
		Orientation: mgl64.QuatIdent(),
		rest:        kernel.Center(s),
	}
	body.Position = body.rest
	size := kernel.Size(s)

	switch kind {
	case KindSphere:
		if s.Shape() != kernel.ShapeSphere {
			return fail("solid is a %s, want a sphere", s.Shape())
		}
		body.radius = size[0] / 2
	case KindBox:
		if s.Shape() != kernel.ShapeBox {
			return fail("solid is a %s, want a box", s.Shape())
		}
		if !m.Static() {
			return fail("box bodies must be static")
		}
		body.half = size.Mul(0.5)
	case KindTriMesh:
		if !m.Static() {
			return fail("triangle mesh bodies must be static, mass is %g", m.Mass)
		}
		mesh, err := b.k.ToMesh(s)
		if err != nil {
			return fail("tessellation failed: %v", err)
		}
		if mesh == nil || mesh.IsEmpty() {
			return fail("tessellation produced an empty mesh")
		}
		mesh.PartName = id
		body.Mesh = mesh
	default:
		return fail("unsupported body kind")
	}
	return body, nil
}
