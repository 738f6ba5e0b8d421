package remote

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertMatrixInDelta(t *testing.T, expected, actual [16]float32, delta float64) {
	t.Helper()
	for i := range expected {
		assert.InDelta(t, expected[i], actual[i], delta, "element %d", i)
	}
}

func TestConvention_ZeroValueIsIdentity(t *testing.T) {
	var conv Convention
	v, p := remoteView(), remoteProjection()

	assert.Equal(t, v, conv.ViewToRemote(v))
	assert.Equal(t, v, conv.ViewFromRemote(v))
	assert.Equal(t, p, conv.ProjectionToRemote(p))
	assert.Equal(t, p, IdentityConvention.ProjectionFromRemote(p))
	assert.False(t, conv.RowMajor())
}

func TestConvention_FlipZRoundTripsExactly(t *testing.T) {
	for _, rowMajor := range []bool{false, true} {
		conv := FlipZConvention(rowMajor)
		v, p := remoteView(), remoteProjection()

		assert.Equal(t, v, conv.ViewFromRemote(conv.ViewToRemote(v)))
		assert.Equal(t, p, conv.ProjectionFromRemote(conv.ProjectionToRemote(p)))
		assert.Equal(t, rowMajor, conv.RowMajor())
	}
}

func TestConvention_FlipZMirrorsTranslation(t *testing.T) {
	view := mgl32.Translate3D(1, 2, 3)
	remote := FlipZConvention(false).ViewToRemote([16]float32(view))

	x, y, z := remote[12], remote[13], remote[14]
	assert.Equal(t, float32(1), x)
	assert.Equal(t, float32(2), y)
	assert.Equal(t, float32(-3), z)
}

func TestConvention_RowMajorTransposes(t *testing.T) {
	conv, err := NewConvention(mgl32.Ident4(), true)
	require.NoError(t, err)

	view := mgl32.Translate3D(4, 5, 6)
	remote := conv.ViewToRemote([16]float32(view))
	assert.Equal(t, [16]float32(view.Transpose()), remote)
}

func TestConvention_GeneralBasisRoundTrip(t *testing.T) {
	basis := mgl32.HomogRotate3DX(float32(math.Pi / 2)).Mul4(mgl32.Scale3D(1, 1, -1))
	conv, err := NewConvention(basis, true)
	require.NoError(t, err)

	v, p := remoteView(), remoteProjection()
	assertMatrixInDelta(t, v, conv.ViewFromRemote(conv.ViewToRemote(v)), 1e-5)
	assertMatrixInDelta(t, p, conv.ProjectionFromRemote(conv.ProjectionToRemote(p)), 1e-5)
}

func TestNewConvention_SingularBasis(t *testing.T) {
	_, err := NewConvention(mgl32.Scale3D(1, 0, 1), false)
	assert.ErrorIs(t, err, ErrSingularBasis)
}
