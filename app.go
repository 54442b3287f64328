package main

import (
	"context"
	"sync"

	"github.com/chazu/baize/pkg/config"
	"github.com/chazu/baize/pkg/engine"
	"github.com/chazu/baize/pkg/kernel"
	"github.com/chazu/baize/pkg/kernel/sdfx"
	"github.com/chazu/baize/pkg/scene"
	"github.com/chazu/baize/pkg/table"
	"github.com/chazu/baize/pkg/tessellate"
	"github.com/go-gl/mathgl/mgl64"
	log "github.com/sirupsen/logrus"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Events emitted to the frontend.
const (
	EventSceneBuilt = "scene:built"
	EventSceneError = "scene:error"
)

// App is the Wails backend. It exposes methods to the frontend via bindings.
// Wails may call bindings from several goroutines, so every binding holds mu.
type App struct {
	ctx context.Context

	mu        sync.Mutex
	cfg       *config.Config
	engine    *engine.Engine
	kernel    kernel.Kernel
	assembler *scene.Assembler
	scene     *scene.Scene
	log       *log.Entry
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
// Vertices are in the object's own coordinates; Frame supplies the pose.
type MeshData struct {
	Vertices     []float32   `json:"vertices"`
	Normals      []float32   `json:"normals"`
	Indices      []uint32    `json:"indices"`
	PartName     string      `json:"partName"`
	Kind         string      `json:"kind"`
	Color        string      `json:"color"`
	Material     string      `json:"material"`
	ShadowCaster bool        `json:"shadowCaster"`
	Pose         [16]float64 `json:"pose"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// CameraData is the camera state the frontend renders with.
type CameraData struct {
	Eye        [3]float64  `json:"eye"`
	Target     [3]float64  `json:"target"`
	View       [16]float64 `json:"view"`
	Projection [16]float64 `json:"projection"`
	Light      [3]float64  `json:"light"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	SceneID  string          `json:"sceneId"`
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
	Camera   *CameraData     `json:"camera"`
}

// PoseData is one object's world transform in a frame.
type PoseData struct {
	PartName string      `json:"partName"`
	Matrix   [16]float64 `json:"matrix"`
}

// FrameData is the result of one Frame call.
type FrameData struct {
	Index int        `json:"index"`
	Time  float64    `json:"time"`
	Poses []PoseData `json:"poses"`
	Error string     `json:"error,omitempty"`
}

// NewApp creates an App that meshes with the sdfx kernel at the resolution
// and cutter margin from cfg.
func NewApp(cfg *config.Config) *App {
	k := sdfx.New(sdfx.WithMeshCells(cfg.MeshCells))
	logger := log.WithField("component", "app")
	return &App{
		cfg:    cfg,
		engine: engine.NewEngine(),
		kernel: k,
		assembler: scene.NewAssembler(k,
			scene.WithCutterMargin(cfg.CutterMargin),
			scene.WithSurface(cfg.Width, cfg.Height),
		),
		log: logger,
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can emit runtime events later.
func (a *App) startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ctx = ctx
}

// shutdown releases the current scene.
func (a *App) shutdown(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.scene != nil {
		a.scene.Teardown()
		a.scene = nil
	}
}

func newResult() EvalResult {
	return EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

// Evaluate takes table Lisp source and returns mesh data + errors.
// This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := newResult()

	cfg, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.log.WithError(err).Error("evaluate failed")
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, e := range evalErrs {
		result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
	}
	if len(result.Errors) > 0 {
		return result
	}

	// A program that declares nothing clears the view.
	if cfg.Ground.Width == 0 && len(cfg.Balls) == 0 {
		a.replaceScene(nil)
		return result
	}
	return a.build(cfg, result)
}

// LoadStandard builds the standard eight-ball table.
func (a *App) LoadStandard() EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.build(table.Standard(), newResult())
}

// LoadConfigured builds the table named by BAIZE_TABLE, or the standard
// table when none is set.
func (a *App) LoadConfigured() EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cfg.TablePath == "" {
		return a.build(table.Standard(), newResult())
	}
	result := newResult()
	cfg, err := engine.LoadTable(a.cfg.TablePath)
	if err != nil {
		a.log.WithError(err).WithField("path", a.cfg.TablePath).Error("load table failed")
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	return a.build(cfg, result)
}

// build assembles cfg and swaps it in for the current scene. On failure
// the current scene stays.
func (a *App) build(cfg *table.Config, result EvalResult) EvalResult {
	for _, w := range table.Validate(cfg).Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.String()})
	}

	sc, err := a.assembler.Build(cfg)
	if err != nil {
		a.log.WithError(err).Error("scene assembly failed")
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		a.emit(EventSceneError, err.Error())
		return result
	}

	meshes, err := tessellate.Tessellate(sc, a.kernel)
	if err != nil {
		sc.Teardown()
		a.log.WithError(err).Error("tessellation failed")
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return result
	}

	for _, m := range meshes {
		o, ok := sc.Object(m.PartName)
		if !ok {
			continue
		}
		md := MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Kind:     o.Kind.String(),
			Color:    o.Color.Hex(),
			Pose:     o.Pose(),
		}
		if o.Material != nil {
			md.Material = o.Material.Name
		}
		result.Meshes = append(result.Meshes, md)
	}
	for _, o := range sc.ShadowCasters() {
		for i := range result.Meshes {
			if result.Meshes[i].PartName == o.ID {
				result.Meshes[i].ShadowCaster = true
			}
		}
	}

	a.replaceScene(sc)
	result.SceneID = sc.ID()
	cam := cameraData(sc)
	result.Camera = &cam
	a.emit(EventSceneBuilt, sc.ID())
	return result
}

func (a *App) replaceScene(sc *scene.Scene) {
	if a.scene != nil {
		a.scene.Teardown()
	}
	a.scene = sc
}

// Frame advances the current scene by dt seconds and returns every pose.
func (a *App) Frame(dt float64) FrameData {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.scene == nil {
		return FrameData{Poses: []PoseData{}}
	}
	f, err := a.scene.Frame(dt)
	if err != nil {
		return FrameData{Poses: []PoseData{}, Error: err.Error()}
	}
	out := FrameData{Index: f.Index, Time: f.Time, Poses: make([]PoseData, len(f.Poses))}
	for i, p := range f.Poses {
		out.Poses[i] = PoseData{PartName: p.ID, Matrix: p.Matrix}
	}
	return out
}

// Resize tells the scene the viewport changed.
func (a *App) Resize(width, height int) CameraData {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.scene == nil {
		return CameraData{}
	}
	a.scene.Resize(width, height)
	return cameraData(a.scene)
}

// Orbit rotates the camera around the table.
func (a *App) Orbit(dAlpha, dBeta float64) CameraData {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.scene == nil {
		return CameraData{}
	}
	a.scene.Camera().Orbit(dAlpha, dBeta)
	return cameraData(a.scene)
}

// Zoom moves the camera toward or away from the table.
func (a *App) Zoom(steps float64) CameraData {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.scene == nil {
		return CameraData{}
	}
	a.scene.Camera().Zoom(steps)
	return cameraData(a.scene)
}

func cameraData(sc *scene.Scene) CameraData {
	cam := sc.Camera()
	return CameraData{
		Eye:        vec3(cam.Position()),
		Target:     vec3(cam.Target),
		View:       cam.View(),
		Projection: cam.Projection(),
		Light:      vec3(sc.Light().Direction),
	}
}

func vec3(v mgl64.Vec3) [3]float64 { return [3]float64(v) }

// emit sends a runtime event when running inside Wails.
func (a *App) emit(name string, data ...interface{}) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, name, data...)
}
