package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/baize/pkg/kernel"
	"github.com/chazu/baize/pkg/kernel/sdfx"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ballRadius = 0.0291

var ballMaterial = Material{Mass: 0.17, Restitution: BallRestitution}

func newKernel() kernel.Kernel {
	return sdfx.New(sdfx.WithMeshCells(32))
}

func sphere(t *testing.T, k kernel.Kernel, center mgl64.Vec3) kernel.Solid {
	t.Helper()
	s, err := k.Sphere(kernel.SphereSpec{Diameter: 2 * ballRadius, Center: center})
	require.NoError(t, err)
	return s
}

func box(t *testing.T, k kernel.Kernel, size, center mgl64.Vec3) kernel.Solid {
	t.Helper()
	s, err := k.Box(kernel.BoxSpec{Size: size, Center: center})
	require.NoError(t, err)
	return s
}

func TestAttachBallRoundTrip(t *testing.T) {
	k := newKernel()
	b := NewBinder(k)
	center := mgl64.Vec3{-0.635, ballRadius, 0}

	body, err := b.Attach("ball-1", sphere(t, k, center), KindSphere, ballMaterial)
	require.NoError(t, err)

	assert.Equal(t, "ball-1", body.ID)
	assert.Equal(t, KindSphere, body.Kind)
	assert.Equal(t, 0.17, body.Material.Mass)
	assert.Equal(t, 0.98, body.Material.Restitution)
	assert.False(t, body.Static())
	assert.InDelta(t, ballRadius, body.Radius(), 1e-12)
	assert.True(t, body.Position.ApproxEqualThreshold(center, 1e-12))
	assert.Equal(t, mgl64.Vec3{}, body.Velocity)
}

func TestAttachStaticBox(t *testing.T) {
	k := newKernel()
	b := NewBinder(k)
	body, err := b.Attach("ground", box(t, k, mgl64.Vec3{2, 0.05, 1}, mgl64.Vec3{0, -0.025, 0}), KindBox, Material{Restitution: StaticRestitution})
	require.NoError(t, err)
	assert.True(t, body.Static())
	assert.True(t, body.HalfExtents().ApproxEqualThreshold(mgl64.Vec3{1, 0.025, 0.5}, 1e-12))
}

func TestAttachTriMesh(t *testing.T) {
	k := newKernel()
	b := NewBinder(k)
	poly, err := k.Polyhedron(
		[]mgl64.Vec3{{0, 0, 0}, {0.1, 0, 0}, {0, 0.1, 0}, {0, 0, 0.1}},
		[][]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}},
	)
	require.NoError(t, err)

	body, err := b.Attach("border-left", poly, KindTriMesh, Material{Restitution: StaticRestitution})
	require.NoError(t, err)
	require.NotNil(t, body.Mesh)
	assert.False(t, body.Mesh.IsEmpty())
	assert.Equal(t, "border-left", body.Mesh.PartName)
}

// emptyMeshKernel tessellates everything to nothing.
type emptyMeshKernel struct {
	kernel.Kernel
}

func (emptyMeshKernel) ToMesh(kernel.Solid) (*kernel.Mesh, error) {
	return &kernel.Mesh{}, nil
}

func TestAttachErrors(t *testing.T) {
	k := newKernel()
	ball := sphere(t, k, mgl64.Vec3{})
	slab := box(t, k, mgl64.Vec3{1, 0.1, 1}, mgl64.Vec3{})
	static := Material{Restitution: StaticRestitution}

	tests := []struct {
		name   string
		binder *Binder
		solid  kernel.Solid
		kind   Kind
		mat    Material
	}{
		{"negative mass", NewBinder(k), ball, KindSphere, Material{Mass: -1, Restitution: 0.5}},
		{"restitution above one", NewBinder(k), ball, KindSphere, Material{Mass: 1, Restitution: 1.5}},
		{"negative restitution", NewBinder(k), ball, KindSphere, Material{Mass: 1, Restitution: -0.1}},
		{"NaN mass", NewBinder(k), ball, KindSphere, Material{Mass: math.NaN(), Restitution: 0.5}},
		{"box as sphere", NewBinder(k), slab, KindSphere, ballMaterial},
		{"sphere as box", NewBinder(k), ball, KindBox, static},
		{"dynamic box", NewBinder(k), slab, KindBox, ballMaterial},
		{"dynamic trimesh", NewBinder(k), slab, KindTriMesh, ballMaterial},
		{"unsupported kind", NewBinder(k), slab, Kind(42), static},
		{"nil solid", NewBinder(k), nil, KindBox, static},
		{"empty mesh", NewBinder(emptyMeshKernel{k}), slab, KindTriMesh, static},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.binder.Attach("x", tt.solid, tt.kind, tt.mat)
			var be *BindError
			require.True(t, errors.As(err, &be), "got %v", err)
			assert.Equal(t, "x", be.BodyID)
			assert.Equal(t, tt.kind, be.Kind)
		})
	}
}

func TestBodyMatrices(t *testing.T) {
	k := newKernel()
	center := mgl64.Vec3{0.5, ballRadius, -0.2}
	body, err := NewBinder(k).Attach("ball-2", sphere(t, k, center), KindSphere, ballMaterial)
	require.NoError(t, err)

	assert.True(t, body.MeshMatrix().ApproxEqualThreshold(mgl64.Ident4(), 1e-12))
	assert.True(t, body.WorldMatrix().Col(3).Vec3().ApproxEqualThreshold(center, 1e-12))

	body.Velocity = mgl64.Vec3{1, 0, 0}
	body.SetPosition(center.Add(mgl64.Vec3{1, 0, 0}))
	assert.Equal(t, mgl64.Vec3{}, body.Velocity)
	assert.True(t, body.MeshMatrix().Col(3).Vec3().ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-12))
}

func TestWorldAddAndClear(t *testing.T) {
	k := newKernel()
	w := NewWorld(StandardGravity)
	body, err := NewBinder(k).Attach("ball-1", sphere(t, k, mgl64.Vec3{}), KindSphere, ballMaterial)
	require.NoError(t, err)

	require.NoError(t, w.Add(body))
	assert.Error(t, w.Add(body))
	assert.Error(t, w.Add(nil))

	got, ok := w.Body("ball-1")
	require.True(t, ok)
	assert.Same(t, body, got)

	w.Clear()
	assert.Empty(t, w.Bodies())
	_, ok = w.Body("ball-1")
	assert.False(t, ok)
}

func TestBallComesToRestOnGround(t *testing.T) {
	k := newKernel()
	b := NewBinder(k)
	w := NewWorld(StandardGravity)

	ground, err := b.Attach("ground", box(t, k, mgl64.Vec3{2, 0.05, 2}, mgl64.Vec3{0, -0.025, 0}), KindBox, Material{Restitution: StaticRestitution})
	require.NoError(t, err)
	ball, err := b.Attach("ball-1", sphere(t, k, mgl64.Vec3{0, 0.5, 0}), KindSphere, ballMaterial)
	require.NoError(t, err)
	require.NoError(t, w.Add(ground))
	require.NoError(t, w.Add(ball))

	const dt = 1.0 / 120
	bounced := false
	for i := 0; i < 6*120; i++ {
		w.Step(dt)
		if ball.Velocity[1] > 0 {
			bounced = true
		}
		require.GreaterOrEqual(t, ball.Position[1], ballRadius-1e-6, "ball sank into the ground at step %d", i)
	}
	assert.True(t, bounced, "ball never bounced")
	assert.InDelta(t, ballRadius, ball.Position[1], 1e-3)
	assert.Less(t, ball.Velocity.Len(), 0.1)
	assert.True(t, ground.Position.ApproxEqualThreshold(mgl64.Vec3{0, -0.025, 0}, 1e-12), "static ground moved")
}

func TestBallBouncesOffTriMeshWall(t *testing.T) {
	k := newKernel()
	b := NewBinder(k)
	w := NewWorld(mgl64.Vec3{})

	wall, err := b.Attach("wall", box(t, k, mgl64.Vec3{0.1, 0.5, 0.5}, mgl64.Vec3{0.5, 0, 0}), KindTriMesh, Material{Restitution: StaticRestitution})
	require.NoError(t, err)
	ball, err := b.Attach("ball-1", sphere(t, k, mgl64.Vec3{}), KindSphere, ballMaterial)
	require.NoError(t, err)
	require.NoError(t, w.Add(wall))
	require.NoError(t, w.Add(ball))

	ball.Velocity = mgl64.Vec3{1, 0, 0}
	for i := 0; i < 1000; i++ {
		w.Step(0.001)
	}
	assert.InDelta(t, -BallRestitution*StaticRestitution, ball.Velocity[0], 0.02)
	assert.InDelta(t, 0, ball.Velocity[1], 1e-6)
	assert.Less(t, ball.Position[0], 0.45-ballRadius)
}

func TestSpheresCollide(t *testing.T) {
	k := newKernel()
	b := NewBinder(k)
	w := NewWorld(mgl64.Vec3{})

	a, err := b.Attach("ball-1", sphere(t, k, mgl64.Vec3{-0.1, 0, 0}), KindSphere, ballMaterial)
	require.NoError(t, err)
	c, err := b.Attach("ball-2", sphere(t, k, mgl64.Vec3{0.1, 0, 0}), KindSphere, ballMaterial)
	require.NoError(t, err)
	require.NoError(t, w.Add(a))
	require.NoError(t, w.Add(c))

	a.Velocity = mgl64.Vec3{1, 0, 0}
	c.Velocity = mgl64.Vec3{-1, 0, 0}
	for i := 0; i < 200; i++ {
		w.Step(0.001)
	}

	e := BallRestitution * BallRestitution
	assert.InDelta(t, -e, a.Velocity[0], 1e-9)
	assert.InDelta(t, e, c.Velocity[0], 1e-9)
	assert.InDelta(t, 0, a.Velocity[0]+c.Velocity[0], 1e-12)
	assert.GreaterOrEqual(t, c.Position[0]-a.Position[0], 2*ballRadius-1e-9)
}

func TestStepIgnoresNonPositiveDt(t *testing.T) {
	k := newKernel()
	w := NewWorld(StandardGravity)
	ball, err := NewBinder(k).Attach("ball-1", sphere(t, k, mgl64.Vec3{0, 1, 0}), KindSphere, ballMaterial)
	require.NoError(t, err)
	require.NoError(t, w.Add(ball))

	w.Step(0)
	w.Step(-1)
	assert.Equal(t, mgl64.Vec3{}, ball.Velocity)
}
