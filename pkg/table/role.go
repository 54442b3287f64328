package table

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// RoleKind distinguishes the cue ball, the eight ball and numbered object
// balls.
type RoleKind int

const (
	RoleUnset RoleKind = iota
	RoleCueBall
	RoleObjectBall
	RoleEightBall
)

func (k RoleKind) String() string {
	switch k {
	case RoleCueBall:
		return "cue"
	case RoleObjectBall:
		return "object"
	case RoleEightBall:
		return "eight"
	default:
		return fmt.Sprintf("RoleKind(%d)", int(k))
	}
}

// Role is a ball's part in the game. Number is meaningful for object balls
// only.
type Role struct {
	Kind   RoleKind
	Number int
}

// CueBall, EightBall and ObjectBall build roles.
func CueBall() Role { return Role{Kind: RoleCueBall} }

func EightBall() Role { return Role{Kind: RoleEightBall} }

func ObjectBall(n int) Role { return Role{Kind: RoleObjectBall, Number: n} }

// IsCue reports whether r marks the cue ball.
func (r Role) IsCue() bool { return r.Kind == RoleCueBall }

// Valid reports whether the role is fully specified.
func (r Role) Valid() bool {
	switch r.Kind {
	case RoleCueBall, RoleEightBall:
		return true
	case RoleObjectBall:
		return r.Number > 0
	default:
		return false
	}
}

func (r Role) String() string {
	if r.Kind == RoleObjectBall {
		return fmt.Sprintf("object:%d", r.Number)
	}
	return r.Kind.String()
}

// ParseRole parses a role name. Accepted forms are "cue" (or "breakball"),
// "eight" (or "8ball") and "object:<n>". A bare "object" or "playball"
// takes its number from ballID.
func ParseRole(s string, ballID int) (Role, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "cue", "breakball":
		return CueBall(), nil
	case "eight", "8ball":
		return EightBall(), nil
	case "object", "playball":
		if ballID <= 0 {
			return Role{}, fmt.Errorf("role %q needs a positive ball id, got %d", s, ballID)
		}
		return ObjectBall(ballID), nil
	}
	if rest, ok := strings.CutPrefix(name, "object:"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n <= 0 {
			return Role{}, fmt.Errorf("role %q: object number must be a positive integer", s)
		}
		return ObjectBall(n), nil
	}
	return Role{}, fmt.Errorf("unknown role %q", s)
}

// MarshalYAML encodes the role in its canonical text form.
func (r Role) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}

// MarshalText lets roles appear in JSON sent to the frontend.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ballYAML mirrors Ball with the role kept as text, since bare object
// roles need the ball id to resolve.
type ballYAML struct {
	ID       int      `yaml:"id"`
	Role     string   `yaml:"role"`
	Color    Color    `yaml:"color"`
	Radius   float64  `yaml:"radius"`
	Mass     float64  `yaml:"mass"`
	Position Planar   `yaml:"position"`
	Y        *float64 `yaml:"y,omitempty"`
}

// UnmarshalYAML decodes a ball and resolves its role.
func (b *Ball) UnmarshalYAML(node *yaml.Node) error {
	var raw ballYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}
	role, err := ParseRole(raw.Role, raw.ID)
	if err != nil {
		return fmt.Errorf("line %d: ball %d: %w", node.Line, raw.ID, err)
	}
	*b = Ball{
		ID:       raw.ID,
		Role:     role,
		Color:    raw.Color,
		Radius:   raw.Radius,
		Mass:     raw.Mass,
		Position: raw.Position,
		Y:        raw.Y,
	}
	return nil
}
