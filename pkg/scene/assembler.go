package scene

import (
	"fmt"

	"github.com/chazu/baize/pkg/csg"
	"github.com/chazu/baize/pkg/kernel"
	"github.com/chazu/baize/pkg/physics"
	"github.com/chazu/baize/pkg/rig"
	"github.com/chazu/baize/pkg/table"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Default viewport size.
const (
	DefaultWidth  = 1280
	DefaultHeight = 800
)

// Object ids of the singleton objects.
const (
	GroundID = "ground"
	RailID   = "rail"
)

// BallObjectID names the object of the ball with the given id.
func BallObjectID(id int) string { return fmt.Sprintf("ball-%d", id) }

// BorderObjectID names the object of a border prism.
func BorderObjectID(id string) string { return "border-" + id }

// CueObjectID names the object of a cue segment.
func CueObjectID(id string) string { return "cue-" + id }

// Option configures an Assembler.
type Option func(*Assembler)

// WithCutterMargin sets how far pocket cutters overshoot the carved solid.
func WithCutterMargin(m float64) Option {
	return func(a *Assembler) { a.margin = m }
}

// WithGravity overrides the world gravity.
func WithGravity(g mgl64.Vec3) Option {
	return func(a *Assembler) { a.gravity = g }
}

// WithSurface sets the initial viewport size.
func WithSurface(width, height int) Option {
	return func(a *Assembler) {
		if width > 0 && height > 0 {
			a.surface = Surface{Width: width, Height: height}
		}
	}
}

// WithLogger sets the log entry used during assembly and by the scene.
func WithLogger(l *log.Entry) Option {
	return func(a *Assembler) {
		if l != nil {
			a.log = l
		}
	}
}

// Assembler turns a table config into a Scene.
type Assembler struct {
	k       kernel.Kernel
	margin  float64
	gravity mgl64.Vec3
	surface Surface
	log     *log.Entry
}

// NewAssembler returns an assembler building through k.
func NewAssembler(k kernel.Kernel, opts ...Option) *Assembler {
	a := &Assembler{
		k:       k,
		margin:  csg.DefaultCutterMargin,
		gravity: physics.StandardGravity,
		surface: Surface{Width: DefaultWidth, Height: DefaultHeight},
		log:     log.WithField("component", "scene"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// buildContext carries everything the stages share. Stages receive it by
// value and never modify it.
type buildContext struct {
	cfg       *table.Config
	k         kernel.Kernel
	binder    *physics.Binder
	margin    float64
	materials *MaterialSet
	log       *log.Entry
}

type stage struct {
	name string
	run  func(ctx buildContext, sc *Scene) error
}

var stages = []stage{
	{"ground", buildGround},
	{"balls", buildBalls},
	{"borders", buildBorders},
	{"rail", buildRail},
	{"cue", buildCue},
}

// Build assembles cfg. On any failure everything created so far is torn
// down and the error names the failing step; no partial scene escapes.
func (a *Assembler) Build(cfg *table.Config) (*Scene, error) {
	sc := newScene(uuid.NewString(), a.log)
	logger := a.log.WithField("scene", sc.id)

	fail := func(step string, err error) (*Scene, error) {
		sc.Teardown()
		logger.WithField("step", step).WithError(err).Debug("assembly failed")
		return nil, fmt.Errorf("scene: %s: %w", step, err)
	}

	logger.WithField("step", "validate").Debug("building")
	if cfg == nil {
		return fail("validate", &table.ConfigError{Entity: "table", Message: "config is nil"})
	}
	res := table.Validate(cfg)
	for _, w := range res.Warnings {
		logger.Warn(w.String())
	}
	if err := res.Err(); err != nil {
		return fail("validate", err)
	}

	logger.WithField("step", "world").Debug("building")
	sc.surface = a.surface
	sc.world = physics.NewWorld(a.gravity)

	logger.WithField("step", "camera").Debug("building")
	sc.camera = DefaultCamera()
	sc.camera.Aspect = sc.surface.Aspect()
	sc.light = DefaultLight()

	logger.WithField("step", "materials").Debug("building")
	sc.materials = newMaterialSet()

	ctx := buildContext{
		cfg:       cfg,
		k:         a.k,
		binder:    physics.NewBinder(a.k),
		margin:    a.margin,
		materials: sc.materials,
		log:       logger,
	}
	for _, st := range stages {
		logger.WithField("step", st.name).Debug("building")
		if err := st.run(ctx, sc); err != nil {
			return fail(st.name, err)
		}
	}

	logger.WithFields(log.Fields{
		"objects": len(sc.objects),
		"bodies":  len(sc.world.Bodies()),
		"shadows": len(sc.shadows),
	}).Info("scene assembled")
	return sc, nil
}

// place binds solid to a body, registers both with the scene and returns
// the new object.
func place(ctx buildContext, sc *Scene, o *Object, kind physics.Kind, m physics.Material) error {
	mat, err := ctx.materials.Get(o.Color)
	if err != nil {
		return err
	}
	body, err := ctx.binder.Attach(o.ID, o.Solid, kind, m)
	if err != nil {
		return err
	}
	if err := sc.world.Add(body); err != nil {
		return err
	}
	o.Material = mat
	o.Body = body
	return sc.addObject(o)
}

func staticMaterial() physics.Material {
	return physics.Material{Mass: 0, Restitution: physics.StaticRestitution}
}

func buildGround(ctx buildContext, sc *Scene) error {
	g := ctx.cfg.Ground
	slab, err := ctx.k.Box(kernel.BoxSpec{
		Size:   mgl64.Vec3{g.Width, g.Thickness, g.Depth},
		Center: mgl64.Vec3{0, -g.Thickness / 2, 0},
	})
	if err != nil {
		return err
	}
	carved, err := csg.CarveHoles(ctx.k, slab, ctx.cfg.Holes, ctx.margin)
	if err != nil {
		return err
	}
	o := &Object{ID: GroundID, Kind: KindGround, Color: g.Color, Solid: carved}
	return place(ctx, sc, o, physics.KindBox, staticMaterial())
}

func buildBalls(ctx buildContext, sc *Scene) error {
	for _, b := range ctx.cfg.Balls {
		solid, err := ctx.k.Sphere(kernel.SphereSpec{Diameter: 2 * b.Radius, Center: b.Center()})
		if err != nil {
			return fmt.Errorf("ball %d: %w", b.ID, err)
		}
		o := &Object{
			ID:     BallObjectID(b.ID),
			Kind:   KindBall,
			Color:  b.Color,
			Solid:  solid,
			Role:   b.Role,
			BallID: b.ID,
		}
		m := physics.Material{Mass: b.Mass, Restitution: physics.BallRestitution}
		if err := place(ctx, sc, o, physics.KindSphere, m); err != nil {
			return fmt.Errorf("ball %d: %w", b.ID, err)
		}
		sc.registerShadowCaster(o)
	}
	return nil
}

func buildBorders(ctx buildContext, sc *Scene) error {
	for _, b := range ctx.cfg.Borders {
		solid, err := ctx.k.Polyhedron(b.Vecs(), table.BorderFaces)
		if err != nil {
			return fmt.Errorf("border %s: %w", b.ID, err)
		}
		o := &Object{ID: BorderObjectID(b.ID), Kind: KindBorder, Color: ctx.cfg.BorderColor, Solid: solid}
		if err := place(ctx, sc, o, physics.KindTriMesh, staticMaterial()); err != nil {
			return fmt.Errorf("border %s: %w", b.ID, err)
		}
		sc.registerShadowCaster(o)
	}
	return nil
}

func buildRail(ctx buildContext, sc *Scene) error {
	if len(ctx.cfg.Rail) == 0 {
		ctx.log.Debug("no rail segments, skipping rail")
		return nil
	}
	boxes := make([]kernel.Solid, 0, len(ctx.cfg.Rail))
	for _, r := range ctx.cfg.Rail {
		box, err := ctx.k.Box(kernel.BoxSpec{
			Size:   mgl64.Vec3{r.Width, r.Height, r.Depth},
			Center: r.Position.Vec(),
		})
		if err != nil {
			return fmt.Errorf("segment %s: %w", r.ID, err)
		}
		boxes = append(boxes, box)
	}
	merged, err := csg.Merge(ctx.k, boxes)
	if err != nil {
		return err
	}
	carved, err := csg.CarveHoles(ctx.k, merged, ctx.cfg.Holes, ctx.margin)
	if err != nil {
		return err
	}
	o := &Object{ID: RailID, Kind: KindRail, Color: ctx.cfg.RailColor, Solid: carved}
	return place(ctx, sc, o, physics.KindTriMesh, staticMaterial())
}

func buildCue(ctx buildContext, sc *Scene) error {
	ball, err := rig.Resolve(ctx.cfg.Balls)
	if err != nil {
		return err
	}
	cueBall, ok := sc.Object(BallObjectID(ball.ID))
	if !ok {
		return fmt.Errorf("cue ball %d has no object", ball.ID)
	}
	cue, err := rig.Build(ctx.k, ctx.cfg.Cue, cueBall.Body, ctx.cfg.Mount())
	if err != nil {
		return err
	}
	for _, seg := range cue.Segments {
		mat, err := ctx.materials.Get(seg.Color)
		if err != nil {
			return fmt.Errorf("segment %s: %w", seg.ID, err)
		}
		o := &Object{
			ID:       CueObjectID(seg.ID),
			Kind:     KindCueSegment,
			Color:    seg.Color,
			Material: mat,
			Solid:    seg.Solid,
			Node:     seg.Node,
		}
		if err := sc.addObject(o); err != nil {
			return err
		}
		sc.registerShadowCaster(o)
	}
	sc.cue = cue
	sc.cueBall = cueBall
	return nil
}
