package remote

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Convention converts camera matrices between the engine's axes and the remote SDK's.
//
// The engine stores column-major matrices in a right-handed, Y-up space. A remote SDK may
// use different axes or handedness (a basis change B mapping engine coordinates to remote
// ones) and may expect row-major storage. Views are conjugated, V' = B * V * B^-1, because
// both world and camera space change; projections only see the camera-space change,
// P' = P * B^-1. The From functions are the exact inverses of the To functions.
//
// The zero value is the identity convention.
type Convention struct {
	basis    mgl32.Mat4
	inverse  mgl32.Mat4
	rowMajor bool
}

// IdentityConvention leaves matrices untouched.
var IdentityConvention = Convention{basis: mgl32.Ident4(), inverse: mgl32.Ident4()}

// NewConvention builds a convention from a basis change and a storage order.
//
// Parameters:
//   - basis: maps engine coordinates to remote coordinates (column-major)
//   - rowMajor: true if the remote side stores matrices row-major
//
// Returns:
//   - Convention: the convention
//   - error: ErrSingularBasis if basis has no inverse
func NewConvention(basis mgl32.Mat4, rowMajor bool) (Convention, error) {
	if basis.Det() == 0 {
		return Convention{}, ErrSingularBasis
	}
	return Convention{basis: basis, inverse: basis.Inv(), rowMajor: rowMajor}, nil
}

// FlipZConvention converts between right- and left-handed spaces by mirroring Z.
// The mirror is its own inverse, so conversions round-trip exactly.
//
// Parameters:
//   - rowMajor: true if the remote side stores matrices row-major
//
// Returns:
//   - Convention: the mirrored convention
func FlipZConvention(rowMajor bool) Convention {
	flip := mgl32.Scale3D(1, 1, -1)
	return Convention{basis: flip, inverse: flip, rowMajor: rowMajor}
}

// RowMajor reports whether remote matrices are stored row-major.
func (c Convention) RowMajor() bool {
	return c.rowMajor
}

// ViewToRemote converts an engine view matrix into the remote convention.
func (c Convention) ViewToRemote(view [16]float32) [16]float32 {
	b, inv := c.pair()
	return c.store(b.Mul4(mgl32.Mat4(view)).Mul4(inv))
}

// ViewFromRemote converts a remote view matrix back into the engine convention.
func (c Convention) ViewFromRemote(view [16]float32) [16]float32 {
	b, inv := c.pair()
	return [16]float32(inv.Mul4(c.load(view)).Mul4(b))
}

// ProjectionToRemote converts an engine projection matrix into the remote convention.
func (c Convention) ProjectionToRemote(projection [16]float32) [16]float32 {
	_, inv := c.pair()
	return c.store(mgl32.Mat4(projection).Mul4(inv))
}

// ProjectionFromRemote converts a remote projection matrix back into the engine convention.
func (c Convention) ProjectionFromRemote(projection [16]float32) [16]float32 {
	b, _ := c.pair()
	return [16]float32(c.load(projection).Mul4(b))
}

// pair returns the basis and its inverse, substituting the identity for the zero value.
func (c Convention) pair() (mgl32.Mat4, mgl32.Mat4) {
	if c.basis == (mgl32.Mat4{}) {
		return mgl32.Ident4(), mgl32.Ident4()
	}
	return c.basis, c.inverse
}

func (c Convention) store(m mgl32.Mat4) [16]float32 {
	if c.rowMajor {
		m = m.Transpose()
	}
	return [16]float32(m)
}

func (c Convention) load(m [16]float32) mgl32.Mat4 {
	mat := mgl32.Mat4(m)
	if c.rowMajor {
		mat = mat.Transpose()
	}
	return mat
}
