package sdfx

import (
	"math"

	"github.com/chazu/baize/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
)

// convexSDF3 is the intersection of the half-spaces behind each face
// plane. The max of plane distances is exact inside and a lower bound
// outside, which is enough for marching cubes and point classification.
type convexSDF3 struct {
	planes []kernel.Plane
	bb     sdf.Box3
}

func newConvexSDF3(vertices []mgl64.Vec3, planes []kernel.Plane) *convexSDF3 {
	min := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, v := range vertices {
		for i := 0; i < 3; i++ {
			min[i] = math.Min(min[i], v[i])
			max[i] = math.Max(max[i], v[i])
		}
	}
	return &convexSDF3{
		planes: planes,
		bb:     sdf.Box3{Min: toVec(min), Max: toVec(max)},
	}
}

func (c *convexSDF3) Evaluate(p v3.Vec) float64 {
	q := mgl64.Vec3{p.X, p.Y, p.Z}
	d := math.Inf(-1)
	for _, pl := range c.planes {
		d = math.Max(d, pl.Distance(q))
	}
	return d
}

func (c *convexSDF3) BoundingBox() sdf.Box3 {
	return c.bb
}
