package table

import (
	"fmt"
	"math"
	"strings"
)

// ConfigError reports an invalid entity in a table description.
type ConfigError struct {
	Entity  string // "ball", "hole", "rail", "border", "cue", "ground"
	ID      string // entity id, empty for singletons
	Message string
}

func (e *ConfigError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("config: %s: %s", e.Entity, e.Message)
	}
	return fmt.Sprintf("config: %s %s: %s", e.Entity, e.ID, e.Message)
}

// ConfigErrors aggregates every problem found in one validation pass.
type ConfigErrors []*ConfigError

func (es ConfigErrors) Error() string {
	switch len(es) {
	case 0:
		return "config: no errors"
	case 1:
		return es[0].Error()
	}
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d config errors: %s", len(es), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual errors to errors.As and errors.Is.
func (es ConfigErrors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// Warning is an advisory finding that does not block assembly.
type Warning struct {
	Entity  string
	ID      string
	Message string
}

func (w Warning) String() string {
	if w.ID == "" {
		return fmt.Sprintf("%s: %s", w.Entity, w.Message)
	}
	return fmt.Sprintf("%s %s: %s", w.Entity, w.ID, w.Message)
}

// ValidationResult bundles blocking errors and advisory warnings.
type ValidationResult struct {
	Errors   ConfigErrors
	Warnings []Warning
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Err returns the aggregated errors, or nil.
func (r ValidationResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors
}

// Validate runs every structural check on cfg. It never mutates cfg.
func Validate(cfg *Config) ValidationResult {
	var res ValidationResult
	res.Errors = append(res.Errors, validateGround(cfg)...)
	res.Errors = append(res.Errors, validateBalls(cfg)...)
	res.Errors = append(res.Errors, validateHoles(cfg)...)
	res.Errors = append(res.Errors, validateRail(cfg)...)
	res.Errors = append(res.Errors, validateBorders(cfg)...)
	res.Errors = append(res.Errors, validateCue(cfg)...)
	res.Warnings = append(res.Warnings, layoutWarnings(cfg)...)
	return res
}

// Check returns the validation errors of cfg as a single error, or nil.
func (c *Config) Check() error {
	return Validate(c).Err()
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// pointsFinite reports whether every coordinate of ps is finite.
func pointsFinite(ps ...Point) bool {
	for _, p := range ps {
		if !finite(p.X, p.Y, p.Z) {
			return false
		}
	}
	return true
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func dimensionErrors(entity, id string, dims map[string]float64) []*ConfigError {
	var errs []*ConfigError
	for _, name := range []string{"width", "height", "depth", "thickness", "radius", "mass"} {
		v, ok := dims[name]
		if !ok {
			continue
		}
		if !positive(v) {
			errs = append(errs, &ConfigError{Entity: entity, ID: id, Message: fmt.Sprintf("%s is %g, must be positive", name, v)})
		}
	}
	return errs
}

func validateGround(cfg *Config) []*ConfigError {
	g := cfg.Ground
	errs := dimensionErrors("ground", "", map[string]float64{
		"width": g.Width, "depth": g.Depth, "thickness": g.Thickness,
	})
	if !g.Color.Valid() {
		errs = append(errs, &ConfigError{Entity: "ground", Message: "color is not set"})
	}
	if !cfg.BorderColor.Valid() {
		errs = append(errs, &ConfigError{Entity: "border", Message: "border color is not set"})
	}
	if !cfg.RailColor.Valid() {
		errs = append(errs, &ConfigError{Entity: "rail", Message: "rail color is not set"})
	}
	return errs
}

func validateBalls(cfg *Config) []*ConfigError {
	var errs []*ConfigError
	seen := make(map[int]bool)
	for _, b := range cfg.Balls {
		id := fmt.Sprint(b.ID)
		if b.ID <= 0 {
			errs = append(errs, &ConfigError{Entity: "ball", ID: id, Message: "id must be positive"})
		}
		if seen[b.ID] {
			errs = append(errs, &ConfigError{Entity: "ball", ID: id, Message: "duplicate id"})
		}
		seen[b.ID] = true
		errs = append(errs, dimensionErrors("ball", id, map[string]float64{"radius": b.Radius, "mass": b.Mass})...)
		if !b.Color.Valid() {
			errs = append(errs, &ConfigError{Entity: "ball", ID: id, Message: "color is not set"})
		}
		if !b.Role.Valid() {
			errs = append(errs, &ConfigError{Entity: "ball", ID: id, Message: fmt.Sprintf("invalid role %s", b.Role)})
		}
		if !finite(b.Position.X, b.Position.Z) || (b.Y != nil && !finite(*b.Y)) {
			errs = append(errs, &ConfigError{Entity: "ball", ID: id, Message: "position is not finite"})
		}
	}
	return errs
}

func validateHoles(cfg *Config) []*ConfigError {
	var errs []*ConfigError
	seen := make(map[string]bool)
	for _, h := range cfg.Holes {
		if h.ID == "" {
			errs = append(errs, &ConfigError{Entity: "hole", Message: "id is empty"})
		} else if seen[h.ID] {
			errs = append(errs, &ConfigError{Entity: "hole", ID: h.ID, Message: "duplicate id"})
		}
		seen[h.ID] = true
		errs = append(errs, dimensionErrors("hole", h.ID, map[string]float64{"radius": h.Radius})...)
		if !finite(h.Position.X, h.Position.Z) {
			errs = append(errs, &ConfigError{Entity: "hole", ID: h.ID, Message: "position is not finite"})
		}
	}

	// Overlapping cutters would make the carve order observable.
	for i := 0; i < len(cfg.Holes); i++ {
		for j := i + 1; j < len(cfg.Holes); j++ {
			a, b := cfg.Holes[i], cfg.Holes[j]
			if !finite(a.Position.X, a.Position.Z, b.Position.X, b.Position.Z) {
				continue
			}
			d := math.Hypot(a.Position.X-b.Position.X, a.Position.Z-b.Position.Z)
			if d < a.Radius+b.Radius {
				errs = append(errs, &ConfigError{
					Entity:  "hole",
					ID:      b.ID,
					Message: fmt.Sprintf("overlaps hole %s (center distance %.4g < %.4g)", a.ID, d, a.Radius+b.Radius),
				})
			}
		}
	}
	return errs
}

func validateRail(cfg *Config) []*ConfigError {
	var errs []*ConfigError
	seen := make(map[string]bool)
	for _, r := range cfg.Rail {
		if r.ID == "" {
			errs = append(errs, &ConfigError{Entity: "rail", Message: "segment id is empty"})
		} else if seen[r.ID] {
			errs = append(errs, &ConfigError{Entity: "rail", ID: r.ID, Message: "duplicate id"})
		}
		seen[r.ID] = true
		errs = append(errs, dimensionErrors("rail", r.ID, map[string]float64{
			"width": r.Width, "height": r.Height, "depth": r.Depth,
		})...)
		if !pointsFinite(r.Position) {
			errs = append(errs, &ConfigError{Entity: "rail", ID: r.ID, Message: "position is not finite"})
		}
	}
	return errs
}

func validateBorders(cfg *Config) []*ConfigError {
	var errs []*ConfigError
	seen := make(map[string]bool)
	for _, b := range cfg.Borders {
		if b.ID == "" {
			errs = append(errs, &ConfigError{Entity: "border", Message: "id is empty"})
		} else if seen[b.ID] {
			errs = append(errs, &ConfigError{Entity: "border", ID: b.ID, Message: "duplicate id"})
		}
		seen[b.ID] = true
		if len(b.Vertices) != BorderVertexCount {
			errs = append(errs, &ConfigError{
				Entity:  "border",
				ID:      b.ID,
				Message: fmt.Sprintf("has %d vertices, want %d", len(b.Vertices), BorderVertexCount),
			})
			continue
		}
		if !pointsFinite(b.Vertices...) {
			errs = append(errs, &ConfigError{Entity: "border", ID: b.ID, Message: "vertices are not finite"})
		}
		for _, face := range BorderFaces {
			for _, idx := range face {
				if idx < 0 || idx >= len(b.Vertices) {
					errs = append(errs, &ConfigError{Entity: "border", ID: b.ID, Message: fmt.Sprintf("face index %d out of range", idx)})
				}
			}
		}
	}
	return errs
}

func validateCue(cfg *Config) []*ConfigError {
	var errs []*ConfigError
	seen := make(map[string]bool)
	for _, s := range cfg.Cue {
		if s.ID == "" {
			errs = append(errs, &ConfigError{Entity: "cue", Message: "segment id is empty"})
		} else if seen[s.ID] {
			errs = append(errs, &ConfigError{Entity: "cue", ID: s.ID, Message: "duplicate id"})
		}
		seen[s.ID] = true
		errs = append(errs, dimensionErrors("cue", s.ID, map[string]float64{"height": s.Height})...)
		if !finite(s.TopDiameter, s.BottomDiameter) {
			errs = append(errs, &ConfigError{Entity: "cue", ID: s.ID, Message: "diameters are not finite"})
		} else if s.TopDiameter < 0 || s.BottomDiameter < 0 {
			errs = append(errs, &ConfigError{Entity: "cue", ID: s.ID, Message: "diameters must not be negative"})
		} else if s.TopDiameter == 0 && s.BottomDiameter == 0 {
			errs = append(errs, &ConfigError{Entity: "cue", ID: s.ID, Message: "top and bottom diameter are both zero"})
		}
		if !pointsFinite(s.Position) {
			errs = append(errs, &ConfigError{Entity: "cue", ID: s.ID, Message: "position is not finite"})
		}
		if !s.Color.Valid() {
			errs = append(errs, &ConfigError{Entity: "cue", ID: s.ID, Message: "color is not set"})
		}
	}
	if m := cfg.CueMount; m != nil && !pointsFinite(m.Offset, m.Rotation) {
		errs = append(errs, &ConfigError{Entity: "cue", Message: "mount is not finite"})
	}
	return errs
}

// layoutWarnings flags placements that are legal but probably unintended.
func layoutWarnings(cfg *Config) []Warning {
	var warns []Warning
	halfW, halfD := cfg.Ground.Width/2, cfg.Ground.Depth/2

	cueBalls := 0
	for _, b := range cfg.Balls {
		if b.Role.IsCue() {
			cueBalls++
		}
		if math.Abs(b.Position.X) > halfW || math.Abs(b.Position.Z) > halfD {
			warns = append(warns, Warning{Entity: "ball", ID: fmt.Sprint(b.ID), Message: "lies outside the ground"})
		}
	}
	if cueBalls != 1 {
		warns = append(warns, Warning{Entity: "ball", Message: fmt.Sprintf("%d cue balls, assembly needs exactly one", cueBalls)})
	}

	for i := 0; i < len(cfg.Balls); i++ {
		for j := i + 1; j < len(cfg.Balls); j++ {
			a, b := cfg.Balls[i], cfg.Balls[j]
			if a.Center().Sub(b.Center()).Len() < a.Radius+b.Radius {
				warns = append(warns, Warning{
					Entity:  "ball",
					ID:      fmt.Sprint(b.ID),
					Message: fmt.Sprintf("overlaps ball %d", a.ID),
				})
			}
		}
	}

	if len(cfg.Cue) == 0 {
		warns = append(warns, Warning{Entity: "cue", Message: "no cue segments"})
	}
	return warns
}
