package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Surface is the rendering viewport in pixels.
type Surface struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Aspect is width over height, or 1 for an empty surface.
func (s Surface) Aspect() float64 {
	if s.Width <= 0 || s.Height <= 0 {
		return 1
	}
	return float64(s.Width) / float64(s.Height)
}

// Camera orbits a target. Alpha is the longitude around Y and Beta the
// angle from the +Y axis.
type Camera struct {
	Alpha          float64    `json:"alpha"`
	Beta           float64    `json:"beta"`
	Radius         float64    `json:"radius"`
	Target         mgl64.Vec3 `json:"target"`
	LowerBetaLimit float64    `json:"lowerBetaLimit"`
	UpperBetaLimit float64    `json:"upperBetaLimit"`
	ZoomFactor     float64    `json:"zoomFactor"`
	FOV            float64    `json:"fov"`
	Aspect         float64    `json:"aspect"`
	Near           float64    `json:"near"`
	Far            float64    `json:"far"`
}

// DefaultCamera looks at the table from the -X side. The upper beta limit
// keeps it from orbiting below the table plane.
func DefaultCamera() Camera {
	return Camera{
		Alpha:          math.Pi,
		Beta:           3 * math.Pi / 8,
		Radius:         3,
		LowerBetaLimit: 0.01,
		UpperBetaLimit: math.Pi / 2,
		ZoomFactor:     0.1,
		FOV:            0.8,
		Aspect:         1,
		Near:           0.01,
		Far:            100,
	}
}

// Orbit rotates the camera around its target, clamping beta to the limits.
func (c *Camera) Orbit(dAlpha, dBeta float64) {
	c.Alpha += dAlpha
	c.Beta = mgl64.Clamp(c.Beta+dBeta, c.LowerBetaLimit, c.UpperBetaLimit)
}

// Zoom moves the camera toward (positive steps) or away from the target
// by ZoomFactor of the current radius per step.
func (c *Camera) Zoom(steps float64) {
	r := c.Radius * (1 - c.ZoomFactor*steps)
	if r > c.Near {
		c.Radius = r
	}
}

// Position is the camera eye in world space.
func (c Camera) Position() mgl64.Vec3 {
	sa, ca := math.Sincos(c.Alpha)
	sb, cb := math.Sincos(c.Beta)
	return c.Target.Add(mgl64.Vec3{ca * sb, cb, sa * sb}.Mul(c.Radius))
}

// View is the world-to-camera matrix.
func (c Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position(), c.Target, mgl64.Vec3{0, 1, 0})
}

// Projection is the perspective matrix for the current aspect.
func (c Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// Light is a hemispheric light. Direction points at the sky.
type Light struct {
	Direction mgl64.Vec3 `json:"direction"`
	Intensity float64    `json:"intensity"`
}

// DefaultLight shines from straight above.
func DefaultLight() Light {
	return Light{Direction: mgl64.Vec3{0, 1, 0}, Intensity: 1}
}
