package engine

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/baize/pkg/table"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(ground :width 2)`,
			expect: `(ground "__kw_width" 2)`,
		},
		{
			name:   "keyword value",
			input:  `(ball :role :cue)`,
			expect: `(ball "__kw_role" "__kw_cue")`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"a \" :b" :c`,
			expect: `"a \" :b" "__kw_c"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(rail-segment :id "left")`,
			expect: `(rail_segment "__kw_id" "left")`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `(vec2 -0.635 0)`,
			expect: `(vec2 -0.635 0)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:top-diameter`,
			expect: `"__kw_top-diameter"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------------

const minimalTable = `
(ground :width 2 :depth 1 :thickness 0.04 :color :gray)
(ball :id 1 :role :cue :color :white :position (vec2 -0.5 0))
`

func mustEvaluate(t *testing.T, source string) *table.Config {
	t.Helper()
	cfg, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	return cfg
}

func TestMinimalTable(t *testing.T) {
	cfg := mustEvaluate(t, minimalTable)

	if cfg.Ground.Width != 2 || cfg.Ground.Depth != 1 || cfg.Ground.Thickness != 0.04 {
		t.Errorf("unexpected ground %+v", cfg.Ground)
	}
	if cfg.Ground.Color != table.Gray {
		t.Errorf("expected gray ground, got %s", cfg.Ground.Color)
	}
	if len(cfg.Balls) != 1 {
		t.Fatalf("expected 1 ball, got %d", len(cfg.Balls))
	}

	b := cfg.Balls[0]
	if !b.Role.IsCue() {
		t.Errorf("expected cue ball, got role %s", b.Role)
	}
	if b.Radius != table.BallRadius || b.Mass != table.BallMass {
		t.Errorf("expected standard radius and mass, got %g and %g", b.Radius, b.Mass)
	}
	if b.Position.X != -0.5 || b.Position.Z != 0 {
		t.Errorf("unexpected position %+v", b.Position)
	}

	// Defaults fill what the program left out.
	if cfg.BorderColor != table.Blue || cfg.RailColor != table.Green {
		t.Errorf("expected default border and rail colors, got %s and %s", cfg.BorderColor, cfg.RailColor)
	}
	want := table.DefaultCueMount(table.BallRadius)
	if cfg.CueMount == nil || *cfg.CueMount != want {
		t.Errorf("cue mount = %+v, want %+v", cfg.CueMount, want)
	}
}

func TestVariableReference(t *testing.T) {
	source := `
(def r 0.03)
(ground :width 2 :depth 1 :thickness 0.04)
(ball :id 3 :color :red :radius r :position (vec2 0 0) :y 0.5)
`
	cfg := mustEvaluate(t, source)
	b, ok := cfg.Ball(3)
	if !ok {
		t.Fatal("expected ball 3")
	}
	if b.Radius != 0.03 {
		t.Errorf("expected radius=0.03 (from variable), got %g", b.Radius)
	}
	if b.Role.Kind != table.RoleObjectBall || b.Role.Number != 3 {
		t.Errorf("expected object ball 3 by default, got %s", b.Role)
	}
	if b.Y == nil || *b.Y != 0.5 {
		t.Errorf("expected y override 0.5, got %v", b.Y)
	}
}

func TestEveryBuiltin(t *testing.T) {
	source := minimalTable + `
(hole :id "corner" :position (vec2 0.9 0.4) :radius 0.05)
(hole :id 2 :position (vec2 -0.9 0.4))
(rail-segment :id "side" :width 0.1 :height 0.08 :depth 1.2 :position (vec3 1.05 0 0))
(border :id "b1" :vertices (list
  (vec3 0 0.03 0) (vec3 0.1 0 0) (vec3 0.1 0.04 0)
  (vec3 0 0.03 1) (vec3 0.1 0 1) (vec3 0.1 0.04 1)))
(cue-segment :id "tip" :top-diameter 0.013 :bottom-diameter 0.012
             :height 0.01 :position (vec3 0 0.005 0) :color :blue)
(cue-mount :offset (vec3 -0.1 0 0) :rotation (vec3 0 0 90))
`
	cfg := mustEvaluate(t, source)

	if len(cfg.Holes) != 2 {
		t.Fatalf("expected 2 holes, got %d", len(cfg.Holes))
	}
	corner, ok := cfg.Hole("corner")
	if !ok || corner.Radius != 0.05 {
		t.Errorf("unexpected corner hole %+v", corner)
	}
	numbered, ok := cfg.Hole("2")
	if !ok || numbered.Radius != table.HoleRadius {
		t.Errorf("expected hole \"2\" with the standard radius, got %+v", numbered)
	}

	if len(cfg.Rail) != 1 || cfg.Rail[0].Position.X != 1.05 || cfg.Rail[0].Depth != 1.2 {
		t.Errorf("unexpected rail %+v", cfg.Rail)
	}
	if len(cfg.Borders) != 1 || len(cfg.Borders[0].Vertices) != 6 {
		t.Fatalf("unexpected borders %+v", cfg.Borders)
	}
	if cfg.Borders[0].Vertices[3].Z != 1 {
		t.Errorf("vertex 3 = %+v", cfg.Borders[0].Vertices[3])
	}

	if len(cfg.Cue) != 1 {
		t.Fatalf("expected 1 cue segment, got %d", len(cfg.Cue))
	}
	tip := cfg.Cue[0]
	if tip.TopDiameter != 0.013 || tip.BottomDiameter != 0.012 || tip.Color != table.Blue {
		t.Errorf("unexpected tip %+v", tip)
	}
	if cfg.CueMount.Offset.X != -0.1 || cfg.CueMount.Rotation.Z != 90 {
		t.Errorf("explicit cue mount was overridden: %+v", cfg.CueMount)
	}
}

func TestExplicitZeroCueMount(t *testing.T) {
	cfg := mustEvaluate(t, minimalTable+`(cue-mount :offset (vec3 0 0 0) :rotation (vec3 0 0 0))`)
	if cfg.CueMount == nil {
		t.Fatal("expected the declared cue mount")
	}
	if *cfg.CueMount != (table.CueMount{}) {
		t.Errorf("explicit zero cue mount was replaced: %+v", *cfg.CueMount)
	}
}

func TestStandardTable(t *testing.T) {
	cfg := mustEvaluate(t, `(standard-table)`)
	std := table.Standard()
	if len(cfg.Balls) != len(std.Balls) || len(cfg.Holes) != len(std.Holes) ||
		len(cfg.Rail) != len(std.Rail) || len(cfg.Borders) != len(std.Borders) ||
		len(cfg.Cue) != len(std.Cue) {
		t.Errorf("standard-table does not match table.Standard()")
	}

	// Declarations after it add to the standard layout.
	cfg = mustEvaluate(t, `(standard-table)
(ball :id 17 :color :red :position (vec2 0 0.3))`)
	if len(cfg.Balls) != len(std.Balls)+1 {
		t.Errorf("expected %d balls, got %d", len(std.Balls)+1, len(cfg.Balls))
	}
}

func TestExampleProgram(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("..", "..", "examples", "eightball.baize"))
	if err != nil {
		t.Fatalf("read example: %v", err)
	}
	cfg := mustEvaluate(t, string(src))
	std := table.Standard()

	if len(cfg.Balls) != 16 || len(cfg.Holes) != 6 || len(cfg.Rail) != 4 ||
		len(cfg.Borders) != 6 || len(cfg.Cue) != 4 {
		t.Fatalf("unexpected entity counts in example")
	}
	for i, b := range std.Balls {
		got := cfg.Balls[i]
		if got.ID != b.ID || got.Role != b.Role || got.Color != b.Color {
			t.Errorf("ball %d: got %+v, want %+v", b.ID, got, b)
		}
		if math.Abs(got.Position.X-b.Position.X) > 1e-9 || math.Abs(got.Position.Z-b.Position.Z) > 1e-9 {
			t.Errorf("ball %d at %+v, want %+v", b.ID, got.Position, b.Position)
		}
	}
	for i, h := range std.Holes {
		if cfg.Holes[i].ID != h.ID {
			t.Errorf("hole %d: got %q, want %q", i, cfg.Holes[i].ID, h.ID)
		}
	}
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unknown color", `(ground :width 1 :depth 1 :thickness 0.1 :color :purple)`},
		{"ground twice", `(ground :width 1 :depth 1 :thickness 0.1) (ground :width 1 :depth 1 :thickness 0.1)`},
		{"ball without id", `(ball :color :red)`},
		{"ball with string id", `(ball :id "one")`},
		{"bad role", `(ball :id 1 :role :striped)`},
		{"position not a vec2", `(ball :id 1 :position (vec3 0 0 0))`},
		{"hole without id", `(hole :position (vec2 0 0))`},
		{"border vertex not a vec3", `(border :id "b" :vertices (list 1 2 3))`},
		{"border without vertices", `(border :id "b")`},
		{"vec3 arity", `(vec3 1 2)`},
		{"vec2 non-number", `(vec2 "a" 1)`},
		{"standard-table late", `(hole :id "x" :position (vec2 0 0)) (standard-table)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, evalErrs, err := NewEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if cfg != nil {
				t.Fatal("expected nil config on error")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected at least one eval error")
			}
			t.Logf("%s: %v", tt.name, evalErrs[0])
		})
	}
}

func TestValidationErrorsBecomeEvalErrors(t *testing.T) {
	source := `
(ground :width -2 :depth 1 :thickness 0.04)
(ball :id 1 :role :cue :color :white :position (vec2 0 0) :mass 0)
`
	cfg, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if cfg != nil {
		t.Fatal("expected nil config for an invalid table")
	}
	if len(evalErrs) < 2 {
		t.Fatalf("expected one error per problem, got %v", evalErrs)
	}

	var sawGround, sawBall bool
	for _, e := range evalErrs {
		sawGround = sawGround || strings.Contains(e.Message, "ground")
		sawBall = sawBall || strings.Contains(e.Message, "ball 1")
	}
	if !sawGround || !sawBall {
		t.Errorf("expected ground and ball errors, got %v", evalErrs)
	}
}

func TestEvalErrorsJoin(t *testing.T) {
	err := EvalErrors{{Line: 2, Message: "first"}, {Message: "second"}}
	if got := err.Error(); got != "line 2: first; second" {
		t.Errorf("Error() = %q", got)
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

func TestLoadTable(t *testing.T) {
	dir := t.TempDir()

	lisp := filepath.Join(dir, "table.baize")
	if err := os.WriteFile(lisp, []byte(minimalTable), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadTable(lisp)
	if err != nil {
		t.Fatalf("LoadTable(lisp): %v", err)
	}
	if len(cfg.Balls) != 1 {
		t.Errorf("expected 1 ball, got %d", len(cfg.Balls))
	}

	cfg, err = LoadTable(filepath.Join("..", "..", "examples", "eightball.yaml"))
	if err != nil {
		t.Fatalf("LoadTable(yaml): %v", err)
	}
	if len(cfg.Balls) != 16 {
		t.Errorf("expected 16 balls, got %d", len(cfg.Balls))
	}

	empty := filepath.Join(dir, "empty.baize")
	if err := os.WriteFile(empty, []byte("(+ 1 2)"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTable(empty); !errors.Is(err, errEmptyTable) {
		t.Errorf("expected errEmptyTable, got %v", err)
	}

	bad := filepath.Join(dir, "bad.baize")
	if err := os.WriteFile(bad, []byte("(ground :width"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = LoadTable(bad)
	var evalErrs EvalErrors
	if !errors.As(err, &evalErrs) {
		t.Errorf("expected EvalErrors, got %v", err)
	}

	if _, err := LoadTable(filepath.Join(dir, "missing.baize")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Regressions
// ---------------------------------------------------------------------------

func TestArithmeticStillWorks(t *testing.T) {
	cfg, evalErrs, err := NewEngine().Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
}
