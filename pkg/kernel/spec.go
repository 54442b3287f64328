package kernel

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PlanarTolerance is the largest distance a polyhedron face vertex may sit
// from the face plane before the face is rejected as non-planar.
const PlanarTolerance = 1e-6

// BoxSpec describes an axis-aligned box by its size and center.
type BoxSpec struct {
	Size   mgl64.Vec3 // width (x), height (y), depth (z)
	Center mgl64.Vec3
}

// Validate checks that every dimension is positive.
func (s BoxSpec) Validate() error {
	axes := [3]string{"width", "height", "depth"}
	for i, v := range s.Size {
		if !(v > 0) {
			return &GeometryError{Op: "box", Message: fmt.Sprintf("%s is %g, must be positive", axes[i], v)}
		}
	}
	return nil
}

// CylinderSpec describes a right circular cylinder (or truncated cone when
// the diameters differ) whose axis runs along +Y.
type CylinderSpec struct {
	TopDiameter    float64
	BottomDiameter float64
	Height         float64
	Center         mgl64.Vec3
}

// Validate checks height and diameters.
func (s CylinderSpec) Validate() error {
	if !(s.Height > 0) {
		return &GeometryError{Op: "cylinder", Message: fmt.Sprintf("height is %g, must be positive", s.Height)}
	}
	if s.TopDiameter < 0 || s.BottomDiameter < 0 {
		return &GeometryError{Op: "cylinder", Message: "diameters must not be negative"}
	}
	if s.TopDiameter == 0 && s.BottomDiameter == 0 {
		return &GeometryError{Op: "cylinder", Message: "top and bottom diameter are both zero"}
	}
	return nil
}

// Tapered reports whether the two ends have different diameters.
func (s CylinderSpec) Tapered() bool {
	return s.TopDiameter != s.BottomDiameter
}

// SphereSpec describes a sphere by diameter and center.
type SphereSpec struct {
	Diameter float64
	Center   mgl64.Vec3
}

// Validate checks the diameter.
func (s SphereSpec) Validate() error {
	if !(s.Diameter > 0) {
		return &GeometryError{Op: "sphere", Message: fmt.Sprintf("diameter is %g, must be positive", s.Diameter)}
	}
	return nil
}

// Plane is an oriented face plane: points p with Normal·p - Offset > 0 are
// outside.
type Plane struct {
	Normal mgl64.Vec3
	Offset float64
}

// Distance returns the signed distance from p to the plane.
func (pl Plane) Distance(p mgl64.Vec3) float64 {
	return pl.Normal.Dot(p) - pl.Offset
}

// FacePlanes validates a convex polyhedron description and returns one
// outward-facing plane per face. Face windings may be in either direction;
// normals are oriented away from the vertex centroid.
func FacePlanes(vertices []mgl64.Vec3, faces [][]int) ([]Plane, error) {
	if len(vertices) < 4 {
		return nil, &GeometryError{Op: "polyhedron", Message: fmt.Sprintf("need at least 4 vertices, got %d", len(vertices))}
	}
	if len(faces) < 4 {
		return nil, &GeometryError{Op: "polyhedron", Message: fmt.Sprintf("need at least 4 faces, got %d", len(faces))}
	}

	var centroid mgl64.Vec3
	for _, v := range vertices {
		centroid = centroid.Add(v)
	}
	centroid = centroid.Mul(1 / float64(len(vertices)))

	planes := make([]Plane, 0, len(faces))
	for fi, face := range faces {
		if len(face) < 3 {
			return nil, &GeometryError{Op: "polyhedron", Message: fmt.Sprintf("face %d has %d vertices, need at least 3", fi, len(face))}
		}
		for _, idx := range face {
			if idx < 0 || idx >= len(vertices) {
				return nil, &GeometryError{Op: "polyhedron", Message: fmt.Sprintf("face %d references vertex %d, valid range is 0..%d", fi, idx, len(vertices)-1)}
			}
		}

		// Newell's method tolerates the arbitrary winding of the input.
		var n, faceCenter mgl64.Vec3
		for i, idx := range face {
			cur := vertices[idx]
			next := vertices[face[(i+1)%len(face)]]
			n[0] += (cur[1] - next[1]) * (cur[2] + next[2])
			n[1] += (cur[2] - next[2]) * (cur[0] + next[0])
			n[2] += (cur[0] - next[0]) * (cur[1] + next[1])
			faceCenter = faceCenter.Add(cur)
		}
		faceCenter = faceCenter.Mul(1 / float64(len(face)))

		length := n.Len()
		if length < 1e-12 {
			return nil, &GeometryError{Op: "polyhedron", Message: fmt.Sprintf("face %d is degenerate", fi)}
		}
		n = n.Mul(1 / length)

		if n.Dot(centroid.Sub(faceCenter)) > 0 {
			n = n.Mul(-1)
		}
		pl := Plane{Normal: n, Offset: n.Dot(faceCenter)}

		for _, idx := range face {
			if d := math.Abs(pl.Distance(vertices[idx])); d > PlanarTolerance {
				return nil, &GeometryError{Op: "polyhedron", Message: fmt.Sprintf("face %d is not planar (vertex %d is %.3g off the plane)", fi, idx, d)}
			}
		}
		planes = append(planes, pl)
	}

	for fi, pl := range planes {
		for vi, v := range vertices {
			if d := pl.Distance(v); d > PlanarTolerance {
				return nil, &GeometryError{Op: "polyhedron", Message: fmt.Sprintf("vertex %d lies outside face %d by %.3g; polyhedron is not convex or faces are inconsistent", vi, fi, d)}
			}
		}
	}

	return planes, nil
}
