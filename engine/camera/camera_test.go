package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-remote/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCamera_Defaults(t *testing.T) {
	c := NewCamera()

	assert.InDelta(t, 0.785398, c.Fov(), 1e-5)
	assert.Equal(t, float32(1), c.Aspect())
	assert.Equal(t, float32(0.1), c.Near())
	assert.Equal(t, float32(100), c.Far())
	assert.Equal(t, common.IdentityMatrix, c.WorldTransform())
	assert.Equal(t, common.IdentityMatrix, c.ViewMatrix())
	assert.Equal(t, ClearAll, c.ClearFlags())
	assert.False(t, c.CustomProjection())
	assert.Nil(t, c.Controller())

	var expected [16]float32
	common.Perspective(expected[:], c.Fov(), 1, 0.1, 100)
	assert.Equal(t, expected, c.ProjectionMatrix())
}

func TestCamera_LookAtKeepsWorldAndViewInverse(t *testing.T) {
	c := NewCamera()
	c.LookAt([3]float32{2, 3, 8}, [3]float32{0, 0, 0})

	x, y, z := c.Position()
	assert.InDelta(t, 2, x, 1e-5)
	assert.InDelta(t, 3, y, 1e-5)
	assert.InDelta(t, 8, z, 1e-5)

	world, view := c.WorldTransform(), c.ViewMatrix()
	var product [16]float32
	common.Mul4(product[:], world[:], view[:])
	for i := range product {
		assert.InDelta(t, common.IdentityMatrix[i], product[i], 1e-5)
	}

	proj := c.ProjectionMatrix()
	var vp [16]float32
	common.Mul4(vp[:], proj[:], view[:])
	assert.Equal(t, vp, c.ViewProjectionMatrix())
}

func TestCamera_SetWorldTransformRejectsSingular(t *testing.T) {
	c := NewCamera(WithLookAt([3]float32{0, 0, 5}, [3]float32{0, 0, 0}))
	before := c.State()

	var zero [16]float32
	assert.False(t, c.SetWorldTransform(zero))
	assert.Equal(t, before, c.State())

	world := common.IdentityMatrix
	world[12], world[13], world[14] = 1, 2, 3
	require.True(t, c.SetWorldTransform(world))
	assert.Equal(t, world, c.WorldTransform())
	view := c.ViewMatrix()
	assert.Equal(t, float32(-1), view[12])
	assert.Equal(t, float32(-2), view[13])
	assert.Equal(t, float32(-3), view[14])
}

func TestCamera_CustomProjection(t *testing.T) {
	c := NewCamera(WithAspect(2))
	computed := c.ProjectionMatrix()

	var custom [16]float32
	common.Perspective(custom[:], 1.2, 1.5, 3, 30)
	c.SetCustomProjection(custom)
	assert.True(t, c.CustomProjection())
	assert.Equal(t, custom, c.ProjectionMatrix())

	// Plane and aspect changes do not touch a custom projection.
	c.SetClipPlanes(1, 2)
	c.SetAspect(3)
	assert.Equal(t, custom, c.ProjectionMatrix())

	var inv, product [16]float32
	inv = c.InverseProjectionMatrix()
	common.Mul4(product[:], custom[:], inv[:])
	for i := range product {
		assert.InDelta(t, common.IdentityMatrix[i], product[i], 1e-4)
	}

	c.SetClipPlanes(0.1, 100)
	c.SetAspect(2)
	c.ResetProjection()
	assert.False(t, c.CustomProjection())
	assert.Equal(t, computed, c.ProjectionMatrix())
}

func TestCamera_RestorePoseIsExact(t *testing.T) {
	c := NewCamera(WithLookAt([3]float32{1, 7, -3}, [3]float32{0, 1, 0}))
	before := c.State()
	pose := c.Pose()

	c.LookAt([3]float32{9, 9, 9}, [3]float32{0, 0, 0})
	c.SetClipPlanes(4, 8)
	c.RestorePose(pose)

	assert.Equal(t, before, c.State())
}

func TestCamera_ClearFlags(t *testing.T) {
	c := NewCamera(WithClearFlags(ClearDepth))
	assert.Equal(t, ClearDepth, c.ClearFlags())

	c.SetClearFlags(ClearNone)
	assert.Equal(t, ClearNone, c.ClearFlags())

	c.ResetClearFlags()
	assert.Equal(t, ClearDepth, c.ClearFlags())
}

func TestClearFlags_String(t *testing.T) {
	assert.Equal(t, "none", ClearNone.String())
	assert.Equal(t, "color", ClearColor.String())
	assert.Equal(t, "color|depth", ClearAll.String())
	assert.True(t, ClearAll.Has(ClearDepth))
	assert.False(t, ClearColor.Has(ClearAll))
}

func TestCamera_UpdateFollowsController(t *testing.T) {
	ctrl := NewOrbitController(WithTarget(0, 1, 0), WithRadius(5), WithAngles(0, 0))
	c := NewCamera(WithController(ctrl))

	x, y, z := c.Position()
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 1, y, 1e-5)
	assert.InDelta(t, 5, z, 1e-5)

	ctrl.Zoom(2)
	c.Update()
	_, _, z = c.Position()
	assert.InDelta(t, 3, z, 1e-4)
}
