package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// StandardGravity points down the Y axis.
var StandardGravity = mgl64.Vec3{0, -9.81, 0}

const (
	solverIterations = 4
	gradientStep     = 1e-4
)

// World owns every body and advances the dynamic ones.
type World struct {
	Gravity mgl64.Vec3

	bodies []*Body
	ids    map[string]*Body
}

// NewWorld returns an empty world with the given gravity.
func NewWorld(gravity mgl64.Vec3) *World {
	return &World{Gravity: gravity, ids: make(map[string]*Body)}
}

// Add registers a body. Ids must be unique within the world.
func (w *World) Add(b *Body) error {
	if b == nil {
		return fmt.Errorf("physics: add nil body")
	}
	if _, dup := w.ids[b.ID]; dup {
		return fmt.Errorf("physics: body %q already added", b.ID)
	}
	w.bodies = append(w.bodies, b)
	w.ids[b.ID] = b
	return nil
}

// Bodies returns the registered bodies in insertion order.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// Body looks a body up by id.
func (w *World) Body(id string) (*Body, bool) {
	b, ok := w.ids[id]
	return b, ok
}

// Clear drops every body.
func (w *World) Clear() {
	w.bodies = nil
	w.ids = make(map[string]*Body)
}

// Step advances the world by dt seconds with semi-implicit Euler and then
// resolves contacts.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	var dynamic, static []*Body
	for _, b := range w.bodies {
		if b.Static() {
			static = append(static, b)
			continue
		}
		b.Velocity = b.Velocity.Add(w.Gravity.Mul(dt))
		b.Position = b.Position.Add(b.Velocity.Mul(dt))
		dynamic = append(dynamic, b)
	}

	// Approach speeds below what gravity adds in two steps are resting
	// contacts and never bounce.
	resting := 2 * w.Gravity.Len() * dt

	for iter := 0; iter < solverIterations; iter++ {
		for _, s := range dynamic {
			for _, o := range static {
				n, pen, ok := staticContact(s, o)
				if ok {
					resolveStatic(s, o, n, pen, resting)
				}
			}
		}
		for i := 0; i < len(dynamic); i++ {
			for j := i + 1; j < len(dynamic); j++ {
				resolveSpheres(dynamic[i], dynamic[j], resting)
			}
		}
	}
}

// staticContact returns the contact normal (pointing toward the sphere)
// and penetration depth of sphere s against static body o.
func staticContact(s, o *Body) (mgl64.Vec3, float64, bool) {
	r := s.radius
	switch o.Kind {
	case KindBox:
		c := s.Position.Sub(o.Position)
		var closest mgl64.Vec3
		inside := true
		for i := 0; i < 3; i++ {
			closest[i] = mgl64.Clamp(c[i], -o.half[i], o.half[i])
			if closest[i] != c[i] {
				inside = false
			}
		}
		if inside {
			// Center inside the box: push out through the nearest face.
			axis, depth, sign := 0, math.Inf(1), 1.0
			for i := 0; i < 3; i++ {
				for _, sg := range []float64{1, -1} {
					d := o.half[i] - sg*c[i]
					if d < depth {
						axis, depth, sign = i, d, sg
					}
				}
			}
			var n mgl64.Vec3
			n[axis] = sign
			return n, depth + r, true
		}
		d := c.Sub(closest)
		dist := d.Len()
		if dist >= r {
			return mgl64.Vec3{}, 0, false
		}
		return d.Mul(1 / dist), r - dist, true

	case KindTriMesh, KindSphere:
		min, max := o.Solid.BoundingBox()
		p := o.toLocal(s.Position)
		for i := 0; i < 3; i++ {
			if p[i] < min[i]-r || p[i] > max[i]+r {
				return mgl64.Vec3{}, 0, false
			}
		}
		d := o.Solid.Evaluate(p)
		if d >= r {
			return mgl64.Vec3{}, 0, false
		}
		n := gradient(o, p)
		if n.Len() == 0 {
			return mgl64.Vec3{}, 0, false
		}
		return o.Orientation.Rotate(n), r - d, true
	}
	return mgl64.Vec3{}, 0, false
}

// gradient estimates the outward surface normal of o's solid at p by
// central differences.
func gradient(o *Body, p mgl64.Vec3) mgl64.Vec3 {
	var g mgl64.Vec3
	for i := 0; i < 3; i++ {
		var dp mgl64.Vec3
		dp[i] = gradientStep
		g[i] = o.Solid.Evaluate(p.Add(dp)) - o.Solid.Evaluate(p.Sub(dp))
	}
	if l := g.Len(); l > 0 {
		return g.Mul(1 / l)
	}
	return g
}

func resolveStatic(s, o *Body, n mgl64.Vec3, pen, resting float64) {
	s.Position = s.Position.Add(n.Mul(pen))
	vn := s.Velocity.Dot(n)
	if vn >= 0 {
		return
	}
	e := s.Material.Restitution * o.Material.Restitution
	if -vn < resting {
		e = 0
	}
	s.Velocity = s.Velocity.Sub(n.Mul((1 + e) * vn))
}

func resolveSpheres(a, b *Body, resting float64) {
	d := b.Position.Sub(a.Position)
	dist := d.Len()
	pen := a.radius + b.radius - dist
	if pen <= 0 || dist == 0 {
		return
	}
	n := d.Mul(1 / dist)
	ia, ib := 1/a.Material.Mass, 1/b.Material.Mass
	total := ia + ib

	a.Position = a.Position.Sub(n.Mul(pen * ia / total))
	b.Position = b.Position.Add(n.Mul(pen * ib / total))

	vn := b.Velocity.Sub(a.Velocity).Dot(n)
	if vn >= 0 {
		return
	}
	e := a.Material.Restitution * b.Material.Restitution
	if -vn < resting {
		e = 0
	}
	j := -(1 + e) * vn / total
	a.Velocity = a.Velocity.Sub(n.Mul(j * ia))
	b.Velocity = b.Velocity.Add(n.Mul(j * ib))
}
