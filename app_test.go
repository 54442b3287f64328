package main

import (
	"os"
	"testing"

	"github.com/chazu/baize/pkg/config"
)

func newTestApp() *App {
	return NewApp(&config.Config{
		LogLevel:     "error",
		MeshCells:    32,
		CutterMargin: 0.01,
		Width:        1280,
		Height:       800,
	})
}

// minimalSource builds a ground, the cue ball and a one-segment cue.
const minimalSource = `
(ground :width 2 :depth 1 :thickness 0.04)
(ball :id 1 :role :cue :color :white :position (vec2 -0.5 0))
(cue-segment :id "tip" :top-diameter 0.013 :bottom-diameter 0.012
             :height 0.01 :position (vec3 0 0.005 0) :color :blue)
`

// TestE2EEightBallExample exercises the full pipeline: Lisp source -> engine
// -> table config -> scene -> meshes. This is the same path the Wails
// Evaluate binding takes, but without the Wails runtime.
func TestE2EEightBallExample(t *testing.T) {
	app := newTestApp()

	source, err := os.ReadFile("examples/eightball.baize")
	if err != nil {
		t.Fatalf("failed to read eightball.baize: %v", err)
	}

	result := app.Evaluate(string(source))

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	// ground, 16 balls, 6 borders, rail, 4 cue segments
	if len(result.Meshes) != 28 {
		t.Fatalf("expected 28 meshes, got %d", len(result.Meshes))
	}
	if result.SceneID == "" {
		t.Error("expected a scene id")
	}
	if result.Camera == nil {
		t.Fatal("expected camera data")
	}

	kinds := map[string]int{}
	shadows := 0
	for _, m := range result.Meshes {
		kinds[m.Kind]++
		if m.ShadowCaster {
			shadows++
		}
		if len(m.Vertices) == 0 {
			t.Errorf("part %q: no vertices", m.PartName)
		}
		if len(m.Normals) != len(m.Vertices) {
			t.Errorf("part %q: %d normals for %d vertex floats", m.PartName, len(m.Normals), len(m.Vertices))
		}
		if len(m.Indices) == 0 {
			t.Errorf("part %q: no indices", m.PartName)
		}
		if m.Color == "" || m.Material == "" {
			t.Errorf("part %q: missing color or material", m.PartName)
		}
	}

	want := map[string]int{"ground": 1, "ball": 16, "border": 6, "rail": 1, "cue": 4}
	for k, n := range want {
		if kinds[k] != n {
			t.Errorf("expected %d %s meshes, got %d", n, k, kinds[k])
		}
	}
	// Everything but the ground and the rail casts a shadow.
	if shadows != 26 {
		t.Errorf("expected 26 shadow casters, got %d", shadows)
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	app := newTestApp()
	result := app.Evaluate("")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
	if result.Camera != nil {
		t.Error("expected no camera without a scene")
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := newTestApp()
	result := app.Evaluate("(ground :width 2")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
}

// TestE2EMinimalTable ensures a small hand-written table renders.
func TestE2EMinimalTable(t *testing.T) {
	app := newTestApp()
	result := app.Evaluate(minimalSource)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}
	if len(result.Meshes) != 3 {
		t.Fatalf("expected 3 meshes, got %d", len(result.Meshes))
	}

	names := map[string]bool{}
	for _, m := range result.Meshes {
		names[m.PartName] = true
	}
	for _, want := range []string{"ground", "ball-1", "cue-tip"} {
		if !names[want] {
			t.Errorf("missing mesh %q", want)
		}
	}
}

func TestE2ELoadStandard(t *testing.T) {
	app := newTestApp()
	result := app.LoadStandard()

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 28 {
		t.Fatalf("expected 28 meshes, got %d", len(result.Meshes))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("standard table should not warn, got %v", result.Warnings)
	}
}

func TestE2ELoadConfigured(t *testing.T) {
	app := newTestApp()
	app.cfg.TablePath = "examples/eightball.yaml"

	result := app.LoadConfigured()
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 28 {
		t.Fatalf("expected 28 meshes, got %d", len(result.Meshes))
	}

	app.cfg.TablePath = "examples/missing.baize"
	result = app.LoadConfigured()
	if len(result.Errors) == 0 {
		t.Fatal("expected an error for a missing table file")
	}
}
