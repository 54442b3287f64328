// Package rig finds the cue ball and hangs the cue from it as a small
// transform hierarchy. World poses are derived from the parent chain on
// every read, so the cue follows the ball without any per-frame update.
package rig

import (
	"fmt"
	"strings"

	"github.com/chazu/baize/pkg/kernel"
	"github.com/chazu/baize/pkg/table"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

// Transform is anything with a world pose.
type Transform interface {
	WorldMatrix() mgl64.Mat4
}

type identity struct{}

func (identity) WorldMatrix() mgl64.Mat4 { return mgl64.Ident4() }

// Identity is the world origin.
var Identity Transform = identity{}

// Node is a transform with a fixed local matrix under a parent.
type Node struct {
	Name   string
	parent Transform
	local  mgl64.Mat4
}

// NewNode returns a node with the given local matrix. A nil parent means
// the world origin.
func NewNode(name string, parent Transform, local mgl64.Mat4) *Node {
	if parent == nil {
		parent = Identity
	}
	return &Node{Name: name, parent: parent, local: local}
}

// Local returns the node's matrix relative to its parent.
func (n *Node) Local() mgl64.Mat4 {
	return n.local
}

// Parent returns the node's parent transform.
func (n *Node) Parent() Transform {
	return n.parent
}

// WorldMatrix composes the parent chain with the local matrix.
func (n *Node) WorldMatrix() mgl64.Mat4 {
	return n.parent.WorldMatrix().Mul4(n.local)
}

// WorldPosition is the node origin in world space.
func (n *Node) WorldPosition() mgl64.Vec3 {
	return n.WorldMatrix().Col(3).Vec3()
}

// ResolutionError reports that the balls do not contain exactly one cue
// ball.
type ResolutionError struct {
	Count int
	IDs   []int
}

func (e *ResolutionError) Error() string {
	if e.Count == 0 {
		return "rig: no cue ball found"
	}
	ids := lo.Map(e.IDs, func(id int, _ int) string { return fmt.Sprint(id) })
	return fmt.Sprintf("rig: %d cue balls found (ids %s), want exactly one", e.Count, strings.Join(ids, ", "))
}

// Resolve returns the single ball whose role is the cue ball.
func Resolve(balls []table.Ball) (table.Ball, error) {
	cues := lo.Filter(balls, func(b table.Ball, _ int) bool {
		return b.Role.Kind == table.RoleCueBall
	})
	if len(cues) != 1 {
		return table.Ball{}, &ResolutionError{
			Count: len(cues),
			IDs:   lo.Map(cues, func(b table.Ball, _ int) int { return b.ID }),
		}
	}
	return cues[0], nil
}

// Segment is one cue piece: its node and its origin-centered solid.
type Segment struct {
	ID    string
	Color table.Color
	Node  *Node
	Solid kernel.Solid
}

// CueRig is the cue hierarchy. Root is parented to the cue ball body.
type CueRig struct {
	Root     *Node
	Segments []*Segment
}

// Segment looks a segment up by id.
func (r *CueRig) Segment(id string) (*Segment, bool) {
	return lo.Find(r.Segments, func(s *Segment) bool { return s.ID == id })
}

// MountMatrix is T(offset)·Rz·Ry·Rx for the mount's Euler angles in
// degrees.
func MountMatrix(m table.CueMount) mgl64.Mat4 {
	rx := mgl64.HomogRotate3DX(mgl64.DegToRad(m.Rotation.X))
	ry := mgl64.HomogRotate3DY(mgl64.DegToRad(m.Rotation.Y))
	rz := mgl64.HomogRotate3DZ(mgl64.DegToRad(m.Rotation.Z))
	t := mgl64.Translate3D(m.Offset.X, m.Offset.Y, m.Offset.Z)
	return t.Mul4(rz).Mul4(ry).Mul4(rx)
}

// Build creates one solid per cue segment and arranges them under a root
// node mounted on parent.
func Build(k kernel.Kernel, segments []table.CueSegment, parent Transform, mount table.CueMount) (*CueRig, error) {
	if len(segments) == 0 {
		return nil, &kernel.GeometryError{Op: "cue", Message: "no cue segments"}
	}
	root := NewNode("cue", parent, MountMatrix(mount))
	rig := &CueRig{Root: root, Segments: make([]*Segment, 0, len(segments))}
	for _, seg := range segments {
		solid, err := k.Cylinder(kernel.CylinderSpec{
			TopDiameter:    seg.TopDiameter,
			BottomDiameter: seg.BottomDiameter,
			Height:         seg.Height,
		})
		if err != nil {
			return nil, fmt.Errorf("cue segment %s: %w", seg.ID, err)
		}
		p := seg.Position
		rig.Segments = append(rig.Segments, &Segment{
			ID:    seg.ID,
			Color: seg.Color,
			Node:  NewNode("cue-"+seg.ID, root, mgl64.Translate3D(p.X, p.Y, p.Z)),
			Solid: solid,
		})
	}
	return rig, nil
}
