// Package scene assembles a billiards table into a finished scene: carved
// solids bound to physics bodies, shared materials, a camera and a cue
// rig hanging off the cue ball. The Scene owns everything it creates and
// is the single teardown point.
package scene

import (
	"errors"
	"fmt"

	"github.com/chazu/baize/pkg/kernel"
	"github.com/chazu/baize/pkg/physics"
	"github.com/chazu/baize/pkg/rig"
	"github.com/chazu/baize/pkg/table"
	"github.com/go-gl/mathgl/mgl64"
	log "github.com/sirupsen/logrus"
)

// ErrTornDown is returned by frame operations on a released scene.
var ErrTornDown = errors.New("scene: torn down")

// ObjectKind classifies scene objects.
type ObjectKind int

const (
	KindGround ObjectKind = iota
	KindBall
	KindBorder
	KindRail
	KindCueSegment
)

func (k ObjectKind) String() string {
	switch k {
	case KindGround:
		return "ground"
	case KindBall:
		return "ball"
	case KindBorder:
		return "border"
	case KindRail:
		return "rail"
	case KindCueSegment:
		return "cue"
	default:
		return fmt.Sprintf("ObjectKind(%d)", int(k))
	}
}

// Object is one renderable solid in the scene. Balls, borders, the rail
// and the ground carry a physics body; cue segments hang off a rig node.
type Object struct {
	ID       string
	Kind     ObjectKind
	Color    table.Color
	Material *Material
	Solid    kernel.Solid
	Body     *physics.Body
	Node     *rig.Node

	// Role and BallID are set for balls only.
	Role   table.Role
	BallID int
}

// Pose maps the object's solid coordinates to world space. It is derived
// from the body or the rig chain on every call.
func (o *Object) Pose() mgl64.Mat4 {
	switch {
	case o.Body != nil:
		return o.Body.MeshMatrix()
	case o.Node != nil:
		return o.Node.WorldMatrix()
	default:
		return mgl64.Ident4()
	}
}

// Position is the world-space origin of the object's pose.
func (o *Object) Position() mgl64.Vec3 {
	if o.Body != nil {
		return o.Body.Position
	}
	return o.Pose().Col(3).Vec3()
}

// Pose is one object's snapshot in a frame.
type Pose struct {
	ID       string     `json:"id"`
	Matrix   mgl64.Mat4 `json:"matrix"`
	Position mgl64.Vec3 `json:"position"`
}

// Frame is the state of the scene after one update.
type Frame struct {
	Index int     `json:"index"`
	Time  float64 `json:"time"`
	Poses []Pose  `json:"poses"`
}

// Renderer draws a frame. The scene calls it once per Render.
type Renderer interface {
	Render(s *Scene, f Frame) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(s *Scene, f Frame) error

func (fn RendererFunc) Render(s *Scene, f Frame) error { return fn(s, f) }

// Scene is the finished table. It is not safe for concurrent use; the host
// drives it from a single update thread.
type Scene struct {
	id        string
	surface   Surface
	camera    Camera
	light     Light
	materials *MaterialSet
	world     *physics.World

	objects []*Object
	byID    map[string]*Object
	shadows []*Object

	cue     *rig.CueRig
	cueBall *Object

	frames int
	time   float64
	torn   bool

	log *log.Entry
}

func newScene(id string, logger *log.Entry) *Scene {
	return &Scene{
		id:   id,
		byID: make(map[string]*Object),
		log:  logger,
	}
}

// ID is a unique identifier of this assembly.
func (s *Scene) ID() string { return s.id }

// Surface returns the viewport.
func (s *Scene) Surface() Surface { return s.surface }

// Camera returns the camera for in-place changes such as Orbit.
func (s *Scene) Camera() *Camera { return &s.camera }

// Light returns the hemispheric light.
func (s *Scene) Light() Light { return s.light }

// Materials returns the shared material set.
func (s *Scene) Materials() *MaterialSet { return s.materials }

// World returns the physics world.
func (s *Scene) World() *physics.World { return s.world }

// Objects returns every object in creation order.
func (s *Scene) Objects() []*Object { return s.objects }

// Object looks an object up by id.
func (s *Scene) Object(id string) (*Object, bool) {
	o, ok := s.byID[id]
	return o, ok
}

// Balls returns the ball objects in configuration order.
func (s *Scene) Balls() []*Object {
	var out []*Object
	for _, o := range s.objects {
		if o.Kind == KindBall {
			out = append(out, o)
		}
	}
	return out
}

// CueBall returns the ball the cue is mounted on.
func (s *Scene) CueBall() *Object { return s.cueBall }

// Cue returns the cue rig.
func (s *Scene) Cue() *rig.CueRig { return s.cue }

// ShadowCasters returns the objects registered for shadow casting.
func (s *Scene) ShadowCasters() []*Object { return s.shadows }

// TornDown reports whether Teardown has run.
func (s *Scene) TornDown() bool { return s.torn }

func (s *Scene) addObject(o *Object) error {
	if _, dup := s.byID[o.ID]; dup {
		return fmt.Errorf("duplicate object id %q", o.ID)
	}
	s.objects = append(s.objects, o)
	s.byID[o.ID] = o
	return nil
}

func (s *Scene) registerShadowCaster(o *Object) {
	s.shadows = append(s.shadows, o)
}

// Frame advances physics by dt and snapshots every object's pose. Cue
// poses are read through the rig, so they reflect this frame's ball.
func (s *Scene) Frame(dt float64) (Frame, error) {
	if s.torn {
		return Frame{}, ErrTornDown
	}
	if dt > 0 {
		s.world.Step(dt)
		s.time += dt
	}
	s.frames++

	f := Frame{Index: s.frames, Time: s.time, Poses: make([]Pose, 0, len(s.objects))}
	for _, o := range s.objects {
		f.Poses = append(f.Poses, Pose{ID: o.ID, Matrix: o.Pose(), Position: o.Position()})
	}
	return f, nil
}

// Render is the per-frame callback: step, snapshot, then draw.
func (s *Scene) Render(dt float64, r Renderer) error {
	f, err := s.Frame(dt)
	if err != nil {
		return err
	}
	if r == nil {
		return nil
	}
	return r.Render(s, f)
}

// Resize updates the viewport and camera aspect. Non-positive sizes are
// ignored, and repeating a size changes nothing.
func (s *Scene) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if s.surface.Width == width && s.surface.Height == height {
		return
	}
	s.surface = Surface{Width: width, Height: height}
	s.camera.Aspect = s.surface.Aspect()
	s.log.WithFields(log.Fields{"width": width, "height": height}).Debug("surface resized")
}

// Teardown releases every body, object, material and shadow caster. It is
// safe to call more than once.
func (s *Scene) Teardown() {
	if s.torn {
		return
	}
	s.torn = true
	if s.world != nil {
		s.world.Clear()
	}
	if s.materials != nil {
		s.materials.clear()
	}
	s.objects = nil
	s.byID = make(map[string]*Object)
	s.shadows = nil
	s.cue = nil
	s.cueBall = nil
	s.log.Debug("scene torn down")
}
