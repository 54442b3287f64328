// Package table holds the declarative description of a billiards table:
// balls, pockets, rail segments, cushion borders and the cue. A Config is
// built once at load time and treated as read-only afterwards.
package table

import "github.com/go-gl/mathgl/mgl64"

// Planar is a position on the table plane. Y is up, so a planar position
// carries X and Z only.
type Planar struct {
	X float64 `yaml:"x" json:"x"`
	Z float64 `yaml:"z" json:"z"`
}

// Point is a position in table space.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// Vec converts p to a mathgl vector.
func (p Point) Vec() mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

// Ball is a sphere resting on (or placed above) the playing surface.
type Ball struct {
	ID       int     `yaml:"id" json:"id"`
	Role     Role    `yaml:"role" json:"role"`
	Color    Color   `yaml:"color" json:"color"`
	Radius   float64 `yaml:"radius" json:"radius"`
	Mass     float64 `yaml:"mass" json:"mass"`
	Position Planar  `yaml:"position" json:"position"`
	// Y overrides the derived height of the ball center. When nil the
	// ball sits on the surface and Y equals Radius.
	Y *float64 `yaml:"y,omitempty" json:"y,omitempty"`
}

// Height returns the Y coordinate of the ball center.
func (b Ball) Height() float64 {
	if b.Y != nil {
		return *b.Y
	}
	return b.Radius
}

// Center returns the ball center in table space.
func (b Ball) Center() mgl64.Vec3 {
	return mgl64.Vec3{b.Position.X, b.Height(), b.Position.Z}
}

// Hole is a circular pocket cut vertically through the ground and rail.
type Hole struct {
	ID       string  `yaml:"id" json:"id"`
	Position Planar  `yaml:"position" json:"position"`
	Radius   float64 `yaml:"radius" json:"radius"`
}

// RailSegment is one axis-aligned box of the rail, centered on Position.
type RailSegment struct {
	ID       string  `yaml:"id" json:"id"`
	Width    float64 `yaml:"width" json:"width"`
	Height   float64 `yaml:"height" json:"height"`
	Depth    float64 `yaml:"depth" json:"depth"`
	Position Point   `yaml:"position" json:"position"`
}

// BorderFaces is the fixed face table shared by every border prism.
// Vertices 0..2 form one triangular end cap and 3..5 the other.
var BorderFaces = [][]int{
	{0, 1, 2},
	{3, 4, 5},
	{0, 1, 4, 3},
	{0, 2, 5, 3},
	{1, 4, 5, 2},
}

// BorderVertexCount is the number of vertices in a border prism.
const BorderVertexCount = 6

// Border is a cushion prism along one side of the table.
type Border struct {
	ID       string  `yaml:"id" json:"id"`
	Vertices []Point `yaml:"vertices" json:"vertices"`
}

// Vecs returns the border vertices as mathgl vectors.
func (b Border) Vecs() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(b.Vertices))
	for i, v := range b.Vertices {
		out[i] = v.Vec()
	}
	return out
}

// CueSegment is one tapered section of the cue. Position is in cue-local
// space, where the cue axis runs along +Y.
type CueSegment struct {
	ID             string  `yaml:"id" json:"id"`
	TopDiameter    float64 `yaml:"top_diameter" json:"topDiameter"`
	BottomDiameter float64 `yaml:"bottom_diameter" json:"bottomDiameter"`
	Height         float64 `yaml:"height" json:"height"`
	Position       Point   `yaml:"position" json:"position"`
	Color          Color   `yaml:"color" json:"color"`
}

// Ground is the playing surface slab. Its top face sits at y=0.
type Ground struct {
	Width     float64 `yaml:"width" json:"width"`
	Depth     float64 `yaml:"depth" json:"depth"`
	Thickness float64 `yaml:"thickness" json:"thickness"`
	Color     Color   `yaml:"color" json:"color"`
}

// CueMount places the cue relative to the cue ball. Rotation holds Euler
// angles in degrees, applied X then Y then Z.
type CueMount struct {
	Offset   Point `yaml:"offset" json:"offset"`
	Rotation Point `yaml:"rotation" json:"rotation"`
}

// Config is the complete table description.
type Config struct {
	Ground   Ground        `yaml:"ground" json:"ground"`
	Balls    []Ball        `yaml:"balls" json:"balls"`
	Holes    []Hole        `yaml:"holes" json:"holes"`
	Rail     []RailSegment `yaml:"rail" json:"rail"`
	Borders  []Border      `yaml:"borders" json:"borders"`
	Cue      []CueSegment  `yaml:"cue" json:"cue"`
	// CueMount is nil until declared or defaulted; Mount resolves it.
	CueMount *CueMount `yaml:"cue_mount,omitempty" json:"cueMount,omitempty"`
	// BorderColor is the shared material of every border prism.
	BorderColor Color `yaml:"border_color" json:"borderColor"`
	// RailColor is the shared material of the carved rail.
	RailColor Color `yaml:"rail_color" json:"railColor"`
}

// Mount returns the declared cue mount, or the default one behind the cue
// ball when none was declared.
func (c *Config) Mount() CueMount {
	if c.CueMount != nil {
		return *c.CueMount
	}
	return DefaultCueMount(c.cueBallRadius())
}

func (c *Config) cueBallRadius() float64 {
	for _, b := range c.Balls {
		if b.Role.IsCue() && b.Radius > 0 {
			return b.Radius
		}
	}
	return BallRadius
}

// Ball returns the ball with the given id.
func (c *Config) Ball(id int) (Ball, bool) {
	for _, b := range c.Balls {
		if b.ID == id {
			return b, true
		}
	}
	return Ball{}, false
}

// Hole returns the hole with the given id.
func (c *Config) Hole(id string) (Hole, bool) {
	for _, h := range c.Holes {
		if h.ID == id {
			return h, true
		}
	}
	return Hole{}, false
}
