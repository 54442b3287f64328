// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx) provide primitive solids and boolean
// operations behind this interface, so the scene pipeline never
// touches a concrete geometry library.
package kernel

import "github.com/go-gl/mathgl/mgl64"

// Shape names the primitive a solid was derived from. Boolean results keep
// the shape of their base operand; unions report ShapeComposite.
type Shape int

const (
	ShapeBox Shape = iota
	ShapeCylinder
	ShapeSphere
	ShapePolyhedron
	ShapeComposite
)

func (s Shape) String() string {
	switch s {
	case ShapeBox:
		return "box"
	case ShapeCylinder:
		return "cylinder"
	case ShapeSphere:
		return "sphere"
	case ShapePolyhedron:
		return "polyhedron"
	case ShapeComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max mgl64.Vec3)

	// Evaluate returns the signed distance from p to the surface.
	// Negative values are inside the solid.
	Evaluate(p mgl64.Vec3) float64

	// Shape is the primitive the solid was built from.
	Shape() Shape

	// Complexity is the number of primitive volumes combined into the solid.
	Complexity() int

	// Cuts is the number of volumes subtracted from the solid.
	Cuts() int
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Box(spec BoxSpec) (Solid, error)
	Cylinder(spec CylinderSpec) (Solid, error)
	Sphere(spec SphereSpec) (Solid, error)
	Polyhedron(vertices []mgl64.Vec3, faces [][]int) (Solid, error)

	// Boolean operations. Both return new solids; inputs are never modified.
	Union(solids ...Solid) (Solid, error)
	Difference(a, b Solid) (Solid, error)

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Exporter is implemented by kernels that can write solids to disk.
type Exporter interface {
	ExportSTL(s Solid, path string) error
}

// Contains reports whether p lies strictly inside s.
func Contains(s Solid, p mgl64.Vec3) bool {
	return s.Evaluate(p) < 0
}

// Size returns the extent of the solid's bounding box along each axis.
func Size(s Solid) mgl64.Vec3 {
	min, max := s.BoundingBox()
	return max.Sub(min)
}

// Center returns the center of the solid's bounding box.
func Center(s Solid) mgl64.Vec3 {
	min, max := s.BoundingBox()
	return min.Add(max).Mul(0.5)
}

// IsDegenerate reports whether s is nil or has a bounding box with no
// volume.
func IsDegenerate(s Solid) bool {
	if s == nil {
		return true
	}
	size := Size(s)
	return size[0] <= 0 || size[1] <= 0 || size[2] <= 0
}
