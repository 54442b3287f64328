// Package physics binds kernel solids to rigid bodies and steps a small
// world of dynamic spheres against static boxes and triangle meshes.
package physics

import (
	"fmt"

	"github.com/chazu/baize/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// Kind selects the collision shape of a body.
type Kind int

const (
	KindSphere Kind = iota
	KindBox
	KindTriMesh
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindBox:
		return "box"
	case KindTriMesh:
		return "trimesh"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Restitution used for table objects.
const (
	BallRestitution   = 0.98
	StaticRestitution = 0.8
)

// Material holds the dynamics parameters of a body. A zero mass makes the
// body static.
type Material struct {
	Mass        float64
	Restitution float64
}

// Static reports whether the material describes an immovable body.
func (m Material) Static() bool {
	return m.Mass == 0
}

// Body is a rigid body bound to exactly one solid. The solid is never
// moved; Position and Orientation place it in the world relative to the
// solid's bind-time center.
type Body struct {
	ID          string
	Kind        Kind
	Material    Material
	Solid       kernel.Solid
	Position    mgl64.Vec3
	Orientation mgl64.Quat
	Velocity    mgl64.Vec3

	// Mesh is the tessellated collision surface of a TriMesh body.
	Mesh *kernel.Mesh

	radius float64
	half   mgl64.Vec3
	rest   mgl64.Vec3
}

// Static reports whether the body never moves.
func (b *Body) Static() bool {
	return b.Material.Static()
}

// Radius is the collision radius of a sphere body.
func (b *Body) Radius() float64 {
	return b.radius
}

// HalfExtents is the half size of a box body.
func (b *Body) HalfExtents() mgl64.Vec3 {
	return b.half
}

// SetPosition teleports the body and clears its velocity.
func (b *Body) SetPosition(p mgl64.Vec3) {
	b.Position = p
	b.Velocity = mgl64.Vec3{}
}

// WorldMatrix is the body frame: its center and orientation.
func (b *Body) WorldMatrix() mgl64.Mat4 {
	return mgl64.Translate3D(b.Position[0], b.Position[1], b.Position[2]).Mul4(b.Orientation.Mat4())
}

// MeshMatrix maps the solid's own coordinates to the current world pose.
// It is the identity until the body moves.
func (b *Body) MeshMatrix() mgl64.Mat4 {
	return b.WorldMatrix().Mul4(mgl64.Translate3D(-b.rest[0], -b.rest[1], -b.rest[2]))
}

// toLocal maps a world point into the solid's own coordinates.
func (b *Body) toLocal(p mgl64.Vec3) mgl64.Vec3 {
	d := p.Sub(b.Position)
	return b.Orientation.Conjugate().Rotate(d).Add(b.rest)
}

// BindError reports a solid that cannot be bound to the requested body.
type BindError struct {
	BodyID  string
	Kind    Kind
	Message string
}

func (e *BindError) Error() string {
	return fmt.Sprintf("physics: bind %s as %s: %s", e.BodyID, e.Kind, e.Message)
}
