// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/chazu/baize/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
)

// Compile-time interface checks.
var (
	_ kernel.Kernel   = (*SdfxKernel)(nil)
	_ kernel.Exporter = (*SdfxKernel)(nil)
)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s          sdf.SDF3
	shape      kernel.Shape
	complexity int
	cuts       int
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max mgl64.Vec3) {
	bb := s.s.BoundingBox()
	min = mgl64.Vec3{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = mgl64.Vec3{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

func (s *sdfxSolid) Evaluate(p mgl64.Vec3) float64 {
	return s.s.Evaluate(toVec(p))
}

func (s *sdfxSolid) Shape() kernel.Shape { return s.shape }
func (s *sdfxSolid) Complexity() int     { return s.complexity }
func (s *sdfxSolid) Cuts() int           { return s.cuts }

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithMeshCells sets the marching cubes resolution along the longest axis.
// Values below 8 are ignored.
func WithMeshCells(cells int) Option {
	return func(k *SdfxKernel) {
		if cells >= 8 {
			k.meshCells = cells
		}
	}
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	meshCells int
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{meshCells: DefaultMeshCells}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// MeshCells returns the configured tessellation resolution.
func (k *SdfxKernel) MeshCells() int {
	return k.meshCells
}

// unwrap extracts the underlying sdfx solid from a kernel.Solid.
func unwrap(op string, s kernel.Solid) (*sdfxSolid, error) {
	if s == nil {
		return nil, &kernel.CSGError{Op: op, Message: "nil solid"}
	}
	ss, ok := s.(*sdfxSolid)
	if !ok {
		return nil, &kernel.CSGError{Op: op, Message: fmt.Sprintf("solid of type %T was not built by this kernel", s)}
	}
	return ss, nil
}

func toVec(p mgl64.Vec3) v3.Vec {
	return v3.Vec{X: p[0], Y: p[1], Z: p[2]}
}

func translate(s sdf.SDF3, c mgl64.Vec3) sdf.SDF3 {
	if c == (mgl64.Vec3{}) {
		return s
	}
	return sdf.Transform3D(s, sdf.Translate3d(toVec(c)))
}

// Box creates an axis-aligned box centered on spec.Center.
func (k *SdfxKernel) Box(spec kernel.BoxSpec) (kernel.Solid, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	s, err := sdf.Box3D(toVec(spec.Size), 0)
	if err != nil {
		return nil, &kernel.GeometryError{Op: "box", Message: err.Error()}
	}
	return &sdfxSolid{s: translate(s, spec.Center), shape: kernel.ShapeBox, complexity: 1}, nil
}

// Cylinder creates a cylinder, or a truncated cone when the diameters
// differ. sdfx builds along Z; the result is rotated so the axis runs
// along +Y with the bottom diameter at -Y.
func (k *SdfxKernel) Cylinder(spec kernel.CylinderSpec) (kernel.Solid, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	var (
		s   sdf.SDF3
		err error
	)
	if spec.Tapered() {
		s, err = sdf.Cone3D(spec.Height, spec.BottomDiameter/2, spec.TopDiameter/2, 0)
	} else {
		s, err = sdf.Cylinder3D(spec.Height, spec.TopDiameter/2, 0)
	}
	if err != nil {
		return nil, &kernel.GeometryError{Op: "cylinder", Message: err.Error()}
	}
	s = sdf.Transform3D(s, sdf.RotateX(-math.Pi/2))
	return &sdfxSolid{s: translate(s, spec.Center), shape: kernel.ShapeCylinder, complexity: 1}, nil
}

// Sphere creates a sphere centered on spec.Center.
func (k *SdfxKernel) Sphere(spec kernel.SphereSpec) (kernel.Solid, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	s, err := sdf.Sphere3D(spec.Diameter / 2)
	if err != nil {
		return nil, &kernel.GeometryError{Op: "sphere", Message: err.Error()}
	}
	return &sdfxSolid{s: translate(s, spec.Center), shape: kernel.ShapeSphere, complexity: 1}, nil
}

// Polyhedron creates a convex polyhedron from vertices and faces.
func (k *SdfxKernel) Polyhedron(vertices []mgl64.Vec3, faces [][]int) (kernel.Solid, error) {
	planes, err := kernel.FacePlanes(vertices, faces)
	if err != nil {
		return nil, err
	}
	return &sdfxSolid{s: newConvexSDF3(vertices, planes), shape: kernel.ShapePolyhedron, complexity: 1}, nil
}

// Union returns the union of the given solids.
func (k *SdfxKernel) Union(solids ...kernel.Solid) (kernel.Solid, error) {
	if len(solids) == 0 {
		return nil, &kernel.CSGError{Op: "union", Message: "no solids to merge"}
	}
	parts := make([]sdf.SDF3, 0, len(solids))
	out := &sdfxSolid{shape: kernel.ShapeComposite}
	for i, s := range solids {
		ss, err := unwrap("union", s)
		if err != nil {
			return nil, err
		}
		if kernel.IsDegenerate(ss) {
			return nil, &kernel.CSGError{Op: "union", Message: fmt.Sprintf("member %d is degenerate", i)}
		}
		parts = append(parts, ss.s)
		out.complexity += ss.complexity
		out.cuts += ss.cuts
	}
	if len(parts) == 1 {
		out.shape = solids[0].Shape()
	}
	out.s = sdf.Union3D(parts...)
	return out, nil
}

// Difference returns the difference a - b. Neither input is modified.
func (k *SdfxKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	sa, err := unwrap("difference", a)
	if err != nil {
		return nil, err
	}
	sb, err := unwrap("difference", b)
	if err != nil {
		return nil, err
	}
	if kernel.IsDegenerate(sa) {
		return nil, &kernel.CSGError{Op: "difference", Message: "base solid is degenerate"}
	}
	if kernel.IsDegenerate(sb) {
		return nil, &kernel.CSGError{Op: "difference", Message: "cutter solid is degenerate"}
	}
	return &sdfxSolid{
		s:          sdf.Difference3D(sa.s, sb.s),
		shape:      sa.shape,
		complexity: sa.complexity + sb.complexity,
		cuts:       sa.cuts + 1,
	}, nil
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ss, err := unwrap("mesh", s)
	if err != nil {
		return nil, err
	}

	renderer := render.NewMarchingCubesUniform(k.meshCells)
	triangles := render.ToTriangles(ss.s, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Flat shading: one face normal per vertex.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// ExportSTL renders s with marching cubes and writes it to path.
func (k *SdfxKernel) ExportSTL(s kernel.Solid, path string) error {
	ss, err := unwrap("export", s)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("sdfx: export %s: %w", path, err)
		}
	}
	render.ToSTL(ss.s, path, render.NewMarchingCubesUniform(k.meshCells))
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("sdfx: export %s: %w", path, err)
	}
	return nil
}
