// Package csg carves pockets out of table solids. Every operation returns a
// new solid and leaves its inputs untouched, so a carve is a left fold of
// single subtractions over the hole list.
package csg

import (
	"fmt"

	"github.com/chazu/baize/pkg/kernel"
	"github.com/chazu/baize/pkg/table"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultCutterMargin is how far a pocket cutter extends past the top and
// bottom faces of the solid it carves, in metres.
const DefaultCutterMargin = 0.01

// Merge joins solids into one connected solid.
func Merge(k kernel.Kernel, solids []kernel.Solid) (kernel.Solid, error) {
	if len(solids) == 0 {
		return nil, &kernel.CSGError{Op: "union", Message: "no solids to merge"}
	}
	for i, s := range solids {
		if kernel.IsDegenerate(s) {
			return nil, &kernel.CSGError{Op: "union", Message: fmt.Sprintf("member %d is degenerate", i)}
		}
	}
	return k.Union(solids...)
}

// Subtract returns base minus cutter.
func Subtract(k kernel.Kernel, base, cutter kernel.Solid) (kernel.Solid, error) {
	if kernel.IsDegenerate(base) {
		return nil, &kernel.CSGError{Op: "difference", Message: "base solid is degenerate"}
	}
	if kernel.IsDegenerate(cutter) {
		return nil, &kernel.CSGError{Op: "difference", Message: "cutter solid is degenerate"}
	}
	return k.Difference(base, cutter)
}

// PocketCutter builds the vertical cylinder that removes hole from base.
// It spans the full height of base plus margin on each side.
func PocketCutter(k kernel.Kernel, base kernel.Solid, hole table.Hole, margin float64) (kernel.Solid, error) {
	if !(margin > 0) {
		return nil, &kernel.CSGError{Op: "carve", Message: fmt.Sprintf("cutter margin is %g, must be positive", margin)}
	}
	if kernel.IsDegenerate(base) {
		return nil, &kernel.CSGError{Op: "carve", Message: "base solid is degenerate"}
	}
	min, max := base.BoundingBox()
	thickness := max[1] - min[1]
	return k.Cylinder(kernel.CylinderSpec{
		TopDiameter:    2 * hole.Radius,
		BottomDiameter: 2 * hole.Radius,
		Height:         thickness + 2*margin,
		Center:         mgl64.Vec3{hole.Position.X, (min[1] + max[1]) / 2, hole.Position.Z},
	})
}

// CarveHoles subtracts one pocket cutter per hole from base, in order.
// The result's Cuts grows by exactly len(holes).
func CarveHoles(k kernel.Kernel, base kernel.Solid, holes []table.Hole, margin float64) (kernel.Solid, error) {
	acc := base
	for _, h := range holes {
		cutter, err := PocketCutter(k, base, h, margin)
		if err != nil {
			return nil, fmt.Errorf("hole %s: %w", h.ID, err)
		}
		next, err := Subtract(k, acc, cutter)
		if err != nil {
			return nil, fmt.Errorf("hole %s: %w", h.ID, err)
		}
		acc = next
	}
	return acc, nil
}
