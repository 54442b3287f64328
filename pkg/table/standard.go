package table

// Dimensions of the standard table, in metres.
const (
	BallRadius = 0.0291
	BallMass   = 0.17
	HoleRadius = 0.047625347

	RailTop         = 0.04445
	railXInner      = 1.3282
	railXOuter      = 1.4782
	railZInner      = 0.6932
	railZOuter      = 0.8432
	noseHeight      = 2 * BallRadius * 0.65
	GroundWidth     = 2 * railXInner
	GroundDepth     = 2 * railZInner
	GroundThickness = RailTop

	// CueGap is the clearance between the cue tip and the cue ball.
	CueGap = 0.02
)

// DefaultCueMount puts the cue behind a ball of the given radius, lying
// along -X with its tip facing the ball.
func DefaultCueMount(ballRadius float64) CueMount {
	return CueMount{
		Offset:   Point{X: -(ballRadius + CueGap)},
		Rotation: Point{Z: 90},
	}
}

// ApplyDefaults fills unset colors and an absent cue mount. It is called by
// the loaders before validation.
func (c *Config) ApplyDefaults() {
	if c.Ground.Color == ColorUnset {
		c.Ground.Color = Gray
	}
	if c.BorderColor == ColorUnset {
		c.BorderColor = Blue
	}
	if c.RailColor == ColorUnset {
		c.RailColor = Green
	}
	if c.CueMount == nil {
		m := c.Mount()
		c.CueMount = &m
	}
}

func ball(id int, role Role, color Color, x, z float64) Ball {
	return Ball{
		ID:       id,
		Role:     role,
		Color:    color,
		Radius:   BallRadius,
		Mass:     BallMass,
		Position: Planar{X: x, Z: z},
	}
}

// StandardBalls returns the cue ball and the racked triangle of fifteen.
func StandardBalls() []Ball {
	const (
		row1 = 0.5321946429994914
		row2 = 0.5835973214997456
		row3 = 0.635
		row4 = 0.6864026785002544
		row5 = 0.7378053570005086
	)
	return []Ball{
		ball(1, CueBall(), White, -0.635, 0),
		ball(2, ObjectBall(2), Red, row1, 0),
		ball(3, ObjectBall(3), Yellow, row2, -0.0291),
		ball(4, ObjectBall(4), Red, row2, 0.0301),
		ball(5, ObjectBall(5), Red, row3, -0.0582),
		ball(6, EightBall(), Black, row3, 0.001),
		ball(7, ObjectBall(7), Yellow, row3, 0.0602),
		ball(8, ObjectBall(8), Yellow, row4, -0.0873),
		ball(9, ObjectBall(9), Red, row4, -0.0281),
		ball(10, ObjectBall(10), Yellow, row4, 0.0311),
		ball(11, ObjectBall(11), Red, row4, 0.0903),
		ball(12, ObjectBall(12), Yellow, row5, -0.1164),
		ball(13, ObjectBall(13), Red, row5, -0.0572),
		ball(14, ObjectBall(14), Yellow, row5, 0.002),
		ball(15, ObjectBall(15), Red, row5, 0.0612),
		ball(16, ObjectBall(16), Yellow, row5, 0.1204),
	}
}

// StandardHoles returns the six pockets. Consecutive holes are adjacent
// around the table, and the last is adjacent to the first.
func StandardHoles() []Hole {
	const centerX = -0.002645853
	return []Hole{
		{ID: "leftTop", Position: Planar{X: -1.2991, Z: -0.6641}, Radius: HoleRadius},
		{ID: "leftBottom", Position: Planar{X: -1.2991, Z: 0.6641}, Radius: HoleRadius},
		{ID: "centerBottom", Position: Planar{X: centerX, Z: 0.6932}, Radius: HoleRadius},
		{ID: "rightBottom", Position: Planar{X: 1.2991, Z: 0.6641}, Radius: HoleRadius},
		{ID: "rightTop", Position: Planar{X: 1.2991, Z: -0.6641}, Radius: HoleRadius},
		{ID: "centerTop", Position: Planar{X: centerX, Z: -0.6932}, Radius: HoleRadius},
	}
}

// StandardRail returns the four rail boxes framing the playing surface.
func StandardRail() []RailSegment {
	const (
		sideWidth = railXOuter - railXInner
		endDepth  = railZOuter - railZInner
		height    = 2 * RailTop
	)
	return []RailSegment{
		{ID: "left", Width: sideWidth, Height: height, Depth: 2 * railZOuter, Position: Point{X: railXOuter - sideWidth/2}},
		{ID: "right", Width: sideWidth, Height: height, Depth: 2 * railZOuter, Position: Point{X: -(railXOuter - sideWidth/2)}},
		{ID: "top", Width: 2 * railXOuter, Height: height, Depth: endDepth, Position: Point{Z: railZOuter - endDepth/2}},
		{ID: "bottom", Width: 2 * railXOuter, Height: height, Depth: endDepth, Position: Point{Z: -(railZOuter - endDepth/2)}},
	}
}

// StandardBorders returns the six cushion prisms. Every border lists its
// nose, base and top vertex for one end, then the same three for the
// other end, matching BorderFaces.
func StandardBorders() []Border {
	const (
		n = noseHeight
		h = RailTop

		sideX     = 1.27
		sideNoseZ = 0.560916126
		sideZ     = 0.624416589

		endNoseFar  = 1.187978569
		endFar      = 1.259416589
		endNoseNear = 0.066146316
		endNear     = 0.047625347
		endNoseZ    = 0.635
	)
	return []Border{
		{ID: "left", Vertices: []Point{
			{-sideX, n, -sideNoseZ}, {-railXInner, 0, -sideZ}, {-railXInner, h, -sideZ},
			{-sideX, n, sideNoseZ}, {-railXInner, 0, sideZ}, {-railXInner, h, sideZ},
		}},
		{ID: "leftTop", Vertices: []Point{
			{-endNoseFar, n, endNoseZ}, {-endFar, 0, railZInner}, {-endFar, h, railZInner},
			{-endNoseNear, n, endNoseZ}, {-endNear, 0, railZInner}, {-endNear, h, railZInner},
		}},
		{ID: "rightTop", Vertices: []Point{
			{endNoseNear, n, endNoseZ}, {endNear, 0, railZInner}, {endNear, h, railZInner},
			{endNoseFar, n, endNoseZ}, {endFar, 0, railZInner}, {endFar, h, railZInner},
		}},
		{ID: "right", Vertices: []Point{
			{railXInner, h, -sideZ}, {railXInner, 0, -sideZ}, {sideX, n, -sideNoseZ},
			{railXInner, h, sideZ}, {railXInner, 0, sideZ}, {sideX, n, sideNoseZ},
		}},
		{ID: "rightBottom", Vertices: []Point{
			{endNoseNear, n, -endNoseZ}, {endNear, 0, -railZInner}, {endNear, h, -railZInner},
			{endNoseFar, n, -endNoseZ}, {endFar, 0, -railZInner}, {endFar, h, -railZInner},
		}},
		{ID: "leftBottom", Vertices: []Point{
			{-endNoseNear, n, -endNoseZ}, {-endNear, 0, -railZInner}, {-endNear, h, -railZInner},
			{-endNoseFar, n, -endNoseZ}, {-endFar, 0, -railZInner}, {-endFar, h, -railZInner},
		}},
	}
}

// StandardCue returns a four-piece cue, tip first, stacked along local +Y
// from the origin.
func StandardCue() []CueSegment {
	return []CueSegment{
		{ID: "tip", TopDiameter: 0.013, BottomDiameter: 0.013, Height: 0.01, Position: Point{Y: 0.005}, Color: Blue},
		{ID: "ferrule", TopDiameter: 0.013, BottomDiameter: 0.013, Height: 0.025, Position: Point{Y: 0.0225}, Color: White},
		{ID: "shaft", TopDiameter: 0.022, BottomDiameter: 0.013, Height: 0.7, Position: Point{Y: 0.385}, Color: Yellow},
		{ID: "butt", TopDiameter: 0.03, BottomDiameter: 0.022, Height: 0.7, Position: Point{Y: 1.085}, Color: Black},
	}
}

// Standard returns the complete standard table.
func Standard() *Config {
	cfg := &Config{
		Ground: Ground{
			Width:     GroundWidth,
			Depth:     GroundDepth,
			Thickness: GroundThickness,
			Color:     Gray,
		},
		Balls:       StandardBalls(),
		Holes:       StandardHoles(),
		Rail:        StandardRail(),
		Borders:     StandardBorders(),
		Cue:         StandardCue(),
		BorderColor: Blue,
		RailColor:   Green,
	}
	cfg.ApplyDefaults()
	return cfg
}
