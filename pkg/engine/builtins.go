package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/baize/pkg/table"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms table Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: rail-segment -> rail_segment
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator).
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := skipQuoted(b, i)
			result = append(result, b[i:j]...)
			i = j

		case b[i] == '`':
			j := i + 1
			for j < len(b) && b[j] != '`' {
				j++
			}
			if j < len(b) {
				j++
			}
			result = append(result, b[i:j]...)
			i = j

		case b[i] == ';':
			// zygomys uses // for line comments, not the traditional Lisp ;.
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}

		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			result = append(result, b[i], b[i+1])
			i += 2

		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j

		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			// Only a hyphen between identifier characters; a minus stays.
			result = append(result, '_')
			i++

		default:
			result = append(result, b[i])
			i++
		}
	}
	return string(result)
}

// skipQuoted returns the index just past the double-quoted literal that
// starts at i, honoring backslash escapes.
func skipQuoted(b []byte, i int) int {
	j := i + 1
	for j < len(b) && b[j] != '"' {
		if b[j] == '\\' && j+1 < len(b) {
			j++
		}
		j++
	}
	if j < len(b) {
		j++
	}
	return j
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec2 is a point on the table plane, returned by `vec2`.
type sexpVec2 struct {
	p table.Planar
}

func (v *sexpVec2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec2 %g %g)", v.p.X, v.p.Z)
}
func (v *sexpVec2) Type() *zygo.RegisteredType { return nil }

// sexpVec3 is a point in table space, returned by `vec3`.
type sexpVec3 struct {
	p table.Point
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.p.X, v.p.Y, v.p.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpEntity is what every declaring builtin returns, so programs can
// print what they built.
type sexpEntity struct {
	kind string
	id   string
}

func (e *sexpEntity) SexpString(ps *zygo.PrintState) string {
	if e.id == "" {
		return fmt.Sprintf("(%s)", e.kind)
	}
	return fmt.Sprintf("(%s %q)", e.kind, e.id)
}
func (e *sexpEntity) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string and returns the
// keyword name without its prefix.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	fn         string
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(fn string, args []zygo.Sexp) kwArgs {
	result := kwArgs{fn: fn, kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// float reads an optional numeric keyword into dst.
func (a kwArgs) float(key string, dst *float64) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", a.fn, key, err)
	}
	*dst = f
	return nil
}

// str reads an optional string or keyword value into dst.
func (a kwArgs) str(key string, dst *string) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	s, err := toKeywordString(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", a.fn, key, err)
	}
	*dst = s
	return nil
}

func (a kwArgs) color(key string, dst *table.Color) error {
	var name string
	if err := a.str(key, &name); err != nil || name == "" {
		return err
	}
	c, err := table.ParseColor(name)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", a.fn, key, err)
	}
	*dst = c
	return nil
}

func (a kwArgs) planar(key string, dst *table.Planar) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	p, ok := v.(*sexpVec2)
	if !ok {
		return fmt.Errorf("%s: %s: expected vec2, got %s", a.fn, key, v.SexpString(nil))
	}
	*dst = p.p
	return nil
}

func (a kwArgs) point(key string, dst *table.Point) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	p, ok := v.(*sexpVec3)
	if !ok {
		return fmt.Errorf("%s: %s: expected vec3, got %s", a.fn, key, v.SexpString(nil))
	}
	*dst = p.p
	return nil
}

// id reads the required :id keyword as a string. Integers are accepted
// and printed in decimal.
func (a kwArgs) id() (string, error) {
	v, ok := a.kw["id"]
	if !ok {
		return "", fmt.Errorf("%s: :id is required", a.fn)
	}
	if n, ok := v.(*zygo.SexpInt); ok {
		return fmt.Sprint(n.Val), nil
	}
	s, err := toKeywordString(v)
	if err != nil {
		return "", fmt.Errorf("%s: id: %w", a.fn, err)
	}
	return s, nil
}

// all runs every reader and returns the first error.
func all(readers ...error) error {
	for _, err := range readers {
		if err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_cue) and plain strings ("cue").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// tableBuilder collects the entities declared by one program.
type tableBuilder struct {
	cfg      table.Config
	declared bool
	ground   bool
	mount    bool
}

func newTableBuilder() *tableBuilder {
	return &tableBuilder{}
}

type builtin func(b *tableBuilder, a kwArgs) (zygo.Sexp, error)

var builtins = map[string]builtin{
	"ground":         groundFn,
	"ball":           ballFn,
	"hole":           holeFn,
	"rail_segment":   railSegmentFn,
	"border":         borderFn,
	"cue_segment":    cueSegmentFn,
	"cue_mount":      cueMountFn,
	"standard_table": standardTableFn,
}

// registerBuiltins installs the table DSL into a zygomys environment. The
// declaring builtins append to b as the program runs.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *tableBuilder) {
	for name, fn := range builtins {
		fn := fn
		display := strings.ReplaceAll(name, "_", "-")
		env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			return fn(b, parseArgs(display, args))
		})
	}

	// (vec2 x z)
	env.AddFunction("vec2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := numbers("vec2", args, 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec2{p: table.Planar{X: f[0], Z: f[1]}}, nil
	})

	// (vec3 x y z)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := numbers("vec3", args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec3{p: table.Point{X: f[0], Y: f[1], Z: f[2]}}, nil
	})
}

func numbers(fn string, args []zygo.Sexp, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires exactly %d arguments, got %d", fn, n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// (ground :width 2.6564 :depth 1.3864 :thickness 0.04445 :color :gray
//
//	:border-color :blue :rail-color :green)
func groundFn(b *tableBuilder, a kwArgs) (zygo.Sexp, error) {
	if b.ground {
		return zygo.SexpNull, fmt.Errorf("ground: declared twice")
	}
	g := &b.cfg.Ground
	if err := all(
		a.float("width", &g.Width),
		a.float("depth", &g.Depth),
		a.float("thickness", &g.Thickness),
		a.color("color", &g.Color),
		a.color("border-color", &b.cfg.BorderColor),
		a.color("rail-color", &b.cfg.RailColor),
	); err != nil {
		return zygo.SexpNull, err
	}
	b.ground, b.declared = true, true
	return &sexpEntity{kind: "ground"}, nil
}

// (ball :id 1 :role :cue :color :white :position (vec2 -0.635 0)
//
//	:radius 0.0291 :mass 0.17 :y 0.1)
//
// Radius and mass default to the standard ball.
func ballFn(b *tableBuilder, a kwArgs) (zygo.Sexp, error) {
	v, ok := a.kw["id"]
	if !ok {
		return zygo.SexpNull, fmt.Errorf("ball: :id is required")
	}
	n, ok := v.(*zygo.SexpInt)
	if !ok {
		return zygo.SexpNull, fmt.Errorf("ball: id: expected integer, got %s", v.SexpString(nil))
	}

	ball := table.Ball{ID: int(n.Val), Radius: table.BallRadius, Mass: table.BallMass}
	role := "object"
	if err := all(
		a.str("role", &role),
		a.color("color", &ball.Color),
		a.planar("position", &ball.Position),
		a.float("radius", &ball.Radius),
		a.float("mass", &ball.Mass),
	); err != nil {
		return zygo.SexpNull, err
	}
	if _, ok := a.kw["y"]; ok {
		var y float64
		if err := a.float("y", &y); err != nil {
			return zygo.SexpNull, err
		}
		ball.Y = &y
	}
	r, err := table.ParseRole(role, ball.ID)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("ball %d: %w", ball.ID, err)
	}
	ball.Role = r

	b.cfg.Balls = append(b.cfg.Balls, ball)
	b.declared = true
	return &sexpEntity{kind: "ball", id: fmt.Sprint(ball.ID)}, nil
}

// (hole :id "leftTop" :position (vec2 -1.2991 -0.6641) :radius 0.047625347)
func holeFn(b *tableBuilder, a kwArgs) (zygo.Sexp, error) {
	id, err := a.id()
	if err != nil {
		return zygo.SexpNull, err
	}
	h := table.Hole{ID: id, Radius: table.HoleRadius}
	if err := all(
		a.planar("position", &h.Position),
		a.float("radius", &h.Radius),
	); err != nil {
		return zygo.SexpNull, err
	}
	b.cfg.Holes = append(b.cfg.Holes, h)
	b.declared = true
	return &sexpEntity{kind: "hole", id: id}, nil
}

// (rail-segment :id "left" :width 0.15 :height 0.0889 :depth 1.6864
//
//	:position (vec3 1.4032 0 0))
func railSegmentFn(b *tableBuilder, a kwArgs) (zygo.Sexp, error) {
	id, err := a.id()
	if err != nil {
		return zygo.SexpNull, err
	}
	r := table.RailSegment{ID: id}
	if err := all(
		a.float("width", &r.Width),
		a.float("height", &r.Height),
		a.float("depth", &r.Depth),
		a.point("position", &r.Position),
	); err != nil {
		return zygo.SexpNull, err
	}
	b.cfg.Rail = append(b.cfg.Rail, r)
	b.declared = true
	return &sexpEntity{kind: "rail-segment", id: id}, nil
}

// (border :id "left" :vertices (list (vec3 ...) ... ))
func borderFn(b *tableBuilder, a kwArgs) (zygo.Sexp, error) {
	id, err := a.id()
	if err != nil {
		return zygo.SexpNull, err
	}
	v, ok := a.kw["vertices"]
	if !ok {
		return zygo.SexpNull, fmt.Errorf("border %s: :vertices is required", id)
	}
	items, err := sexpListToSlice(v)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("border %s: vertices: %w", id, err)
	}
	border := table.Border{ID: id}
	for i, item := range items {
		p, ok := item.(*sexpVec3)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("border %s: vertex %d: expected vec3, got %s", id, i, item.SexpString(nil))
		}
		border.Vertices = append(border.Vertices, p.p)
	}
	b.cfg.Borders = append(b.cfg.Borders, border)
	b.declared = true
	return &sexpEntity{kind: "border", id: id}, nil
}

// (cue-segment :id "tip" :top-diameter 0.013 :bottom-diameter 0.013
//
//	:height 0.01 :position (vec3 0 0.005 0) :color :blue)
func cueSegmentFn(b *tableBuilder, a kwArgs) (zygo.Sexp, error) {
	id, err := a.id()
	if err != nil {
		return zygo.SexpNull, err
	}
	s := table.CueSegment{ID: id}
	if err := all(
		a.float("top-diameter", &s.TopDiameter),
		a.float("bottom-diameter", &s.BottomDiameter),
		a.float("height", &s.Height),
		a.point("position", &s.Position),
		a.color("color", &s.Color),
	); err != nil {
		return zygo.SexpNull, err
	}
	b.cfg.Cue = append(b.cfg.Cue, s)
	b.declared = true
	return &sexpEntity{kind: "cue-segment", id: id}, nil
}

// (cue-mount :offset (vec3 -0.0491 0 0) :rotation (vec3 0 0 90))
func cueMountFn(b *tableBuilder, a kwArgs) (zygo.Sexp, error) {
	if b.mount {
		return zygo.SexpNull, fmt.Errorf("cue-mount: declared twice")
	}
	m := &table.CueMount{}
	if err := all(
		a.point("offset", &m.Offset),
		a.point("rotation", &m.Rotation),
	); err != nil {
		return zygo.SexpNull, err
	}
	b.cfg.CueMount = m
	b.mount, b.declared = true, true
	return &sexpEntity{kind: "cue-mount"}, nil
}

// (standard-table) declares the full standard eight-ball table. Later
// declarations add to it.
func standardTableFn(b *tableBuilder, a kwArgs) (zygo.Sexp, error) {
	if b.declared {
		return zygo.SexpNull, fmt.Errorf("standard-table: must come before any other declaration")
	}
	b.cfg = *table.Standard()
	b.ground, b.mount, b.declared = true, true, true
	return &sexpEntity{kind: "standard-table"}, nil
}
