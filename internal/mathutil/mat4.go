package mathutil

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats"
)

// Compose returns the transform that applies inner first, then outer.
// mgl64 matrices are column-major, so this is the product outer × inner.
func Compose(outer, inner mgl64.Mat4) mgl64.Mat4 {
	return outer.Mul4(inner)
}

// FromQuatTranslation builds a rigid 4×4 transform from a rotation and translation.
func FromQuatTranslation(q mgl64.Quat, t mgl64.Vec3) mgl64.Mat4 {
	m := q.Normalize().Mat4()
	m[12], m[13], m[14] = t[0], t[1], t[2]
	return m
}

// TRS builds translation × rotation × scale.
func TRS(t mgl64.Vec3, q mgl64.Quat, s mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(t[0], t[1], t[2]).
		Mul4(q.Normalize().Mat4()).
		Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
}

// Translation returns the translation column of m.
func Translation(m mgl64.Mat4) mgl64.Vec3 {
	return mgl64.Vec3{m[12], m[13], m[14]}
}

// Decompose splits a rigid transform into translation and orientation.
// Scale and shear in m are not recovered; the upper 3×3 is orthonormalised
// column by column before conversion so a slightly drifted sensor matrix
// still yields a unit quaternion.
func Decompose(m mgl64.Mat4) (mgl64.Vec3, mgl64.Quat) {
	x := mgl64.Vec3{m[0], m[1], m[2]}
	y := mgl64.Vec3{m[4], m[5], m[6]}
	if x.Len() < 1e-12 || y.Len() < 1e-12 {
		return Translation(m), mgl64.QuatIdent()
	}
	x = x.Normalize()
	y = y.Sub(x.Mul(x.Dot(y)))
	if y.Len() < 1e-12 {
		return Translation(m), mgl64.QuatIdent()
	}
	y = y.Normalize()
	z := x.Cross(y)

	r := mgl64.Mat4FromCols(x.Vec4(0), y.Vec4(0), z.Vec4(0), mgl64.Vec4{0, 0, 0, 1})
	return Translation(m), mgl64.Mat4ToQuat(r).Normalize()
}

// ApproxEqual reports whether every element of a and b differs by at most tol.
func ApproxEqual(a, b mgl64.Mat4, tol float64) bool {
	return floats.EqualApprox(a[:], b[:], tol)
}

// IsIdentity checks if the matrix is approximately identity.
func IsIdentity(m mgl64.Mat4) bool {
	return ApproxEqual(m, mgl64.Ident4(), 1e-8)
}
