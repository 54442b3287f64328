// Package tessellate produces triangle meshes for a scene using a geometry
// kernel. One mesh is produced per scene object.
package tessellate

import (
	"fmt"

	"github.com/chazu/baize/pkg/kernel"
	"github.com/chazu/baize/pkg/scene"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

// Tessellate meshes every object of sc in its own solid coordinates. Mesh
// PartName is the object id. Objects whose physics body already carries a
// mesh reuse it instead of meshing again. The scene is never mutated.
func Tessellate(sc *scene.Scene, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if sc == nil {
		return nil, nil
	}
	if sc.TornDown() {
		return nil, scene.ErrTornDown
	}

	meshes := make([]*kernel.Mesh, 0, len(sc.Objects()))
	for _, o := range sc.Objects() {
		mesh, err := meshObject(k, o)
		if err != nil {
			return nil, fmt.Errorf("tessellate: object %s: %w", o.ID, err)
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

func meshObject(k kernel.Kernel, o *scene.Object) (*kernel.Mesh, error) {
	if o.Body != nil && o.Body.Mesh != nil {
		return o.Body.Mesh, nil
	}
	mesh, err := k.ToMesh(o.Solid)
	if err != nil {
		return nil, err
	}
	mesh.PartName = o.ID
	return mesh, nil
}

// Bake returns copies of meshes moved to the current world pose of the
// object each one is named after. Meshes with no matching object are
// copied unchanged.
func Bake(sc *scene.Scene, meshes []*kernel.Mesh) []*kernel.Mesh {
	return lo.Map(meshes, func(m *kernel.Mesh, _ int) *kernel.Mesh {
		o, ok := sc.Object(m.PartName)
		if !ok {
			return m.Transformed(identity)
		}
		return m.Transformed(o.Pose())
	})
}

var identity = mgl64.Ident4()
