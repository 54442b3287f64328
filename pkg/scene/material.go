package scene

import (
	"fmt"

	"github.com/chazu/baize/pkg/table"
)

// Material is a flat diffuse surface shared by every object of one color.
type Material struct {
	Name            string      `json:"name"`
	Color           table.Color `json:"color"`
	Diffuse         [3]float64  `json:"diffuse"`
	BackFaceCulling bool        `json:"backFaceCulling"`
}

// MaterialSet holds exactly one material per color.
type MaterialSet struct {
	byColor map[table.Color]*Material
}

func newMaterialSet() *MaterialSet {
	ms := &MaterialSet{byColor: make(map[table.Color]*Material, len(table.Colors))}
	for _, c := range table.Colors {
		ms.byColor[c] = &Material{
			Name:    c.String(),
			Color:   c,
			Diffuse: c.RGB(),
		}
	}
	return ms
}

// Get returns the shared material for c.
func (ms *MaterialSet) Get(c table.Color) (*Material, error) {
	m, ok := ms.byColor[c]
	if !ok {
		return nil, fmt.Errorf("no material for color %s", c)
	}
	return m, nil
}

// All returns the materials in palette order.
func (ms *MaterialSet) All() []*Material {
	out := make([]*Material, 0, len(ms.byColor))
	for _, c := range table.Colors {
		if m, ok := ms.byColor[c]; ok {
			out = append(out, m)
		}
	}
	return out
}

// Len is the number of materials.
func (ms *MaterialSet) Len() int {
	return len(ms.byColor)
}

func (ms *MaterialSet) clear() {
	ms.byColor = make(map[table.Color]*Material)
}
