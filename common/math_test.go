package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertNearIdentity(t *testing.T, m [16]float32) {
	t.Helper()
	for i := range m {
		assert.InDelta(t, IdentityMatrix[i], m[i], 1e-5, "element %d", i)
	}
}

func TestMul4_Aliasing(t *testing.T) {
	var a [16]float32
	LookAt(a[:], 1, 2, 3, 0, 0, 0, 0, 1, 0)

	var expected [16]float32
	Mul4(expected[:], a[:], a[:])

	b := a
	Mul4(b[:], b[:], b[:])
	assert.Equal(t, expected, b)
}

func TestInvert4(t *testing.T) {
	var view, inv, product [16]float32
	LookAt(view[:], 3, 4, -5, 1, 0, 0, 0, 1, 0)

	require.True(t, Invert4(inv[:], view[:]))
	Mul4(product[:], view[:], inv[:])
	assertNearIdentity(t, product)

	x, y, z := Translation(inv[:])
	assert.InDelta(t, 3, x, 1e-5)
	assert.InDelta(t, 4, y, 1e-5)
	assert.InDelta(t, -5, z, 1e-5)
}

func TestInvert4_SingularLeavesOutUntouched(t *testing.T) {
	out := IdentityMatrix
	var zero [16]float32
	assert.False(t, Invert4(out[:], zero[:]))
	assert.Equal(t, IdentityMatrix, out)
}

func TestTranspose4(t *testing.T) {
	var m [16]float32
	for i := range m {
		m[i] = float32(i)
	}
	var tr [16]float32
	Transpose4(tr[:], m[:])
	assert.Equal(t, float32(4), tr[1])
	assert.Equal(t, float32(1), tr[4])

	Transpose4(tr[:], tr[:])
	assert.Equal(t, m, tr)
}

func TestPerspective_DepthRange(t *testing.T) {
	var p [16]float32
	Perspective(p[:], 1, 1, 0.5, 50)

	depth := func(z float32) float32 {
		clipZ := p[10]*z + p[14]
		clipW := p[11]*z + p[15]
		return clipZ / clipW
	}
	assert.InDelta(t, 0, depth(-0.5), 1e-5)
	assert.InDelta(t, 1, depth(-50), 1e-5)
}
