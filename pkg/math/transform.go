package math

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Compose builds an object's model matrix from its transform stack.
// Result = Translate * Rotate * Scale * Shear, so shear acts in object-local
// space before the rigid transform. Angles are in degrees.
//
// Shear angles of exactly 0 or 180 degrees are not rejected: the cotangent
// term becomes infinite (0) or enormous (180) and the matrix carries
// non-finite or meaningless entries.
func Compose(scale, rotationDeg, shearDeg, translation mgl32.Vec3) mgl32.Mat4 {
	srt := FromScaleRotationTranslation(scale, EulerXYZ(rotationDeg), translation)
	return srt.Mul4(Shear(shearDeg))
}

// FromScaleRotationTranslation returns T * R * S.
func FromScaleRotationTranslation(scale mgl32.Vec3, rotation mgl32.Quat, translation mgl32.Vec3) mgl32.Mat4 {
	m := rotation.Normalize().Mat4()

	// Scale the rotation columns, then drop translation into column 3.
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			m[col*4+row] *= scale[col]
		}
	}
	m[12] = translation[0]
	m[13] = translation[1]
	m[14] = translation[2]
	return m
}

// EulerXYZ returns the rotation applying X, then Y, then Z (degrees).
// Composed as Rz * Ry * Rx.
func EulerXYZ(deg mgl32.Vec3) mgl32.Quat {
	qx := mgl32.QuatRotate(mgl32.DegToRad(deg[0]), mgl32.Vec3{1, 0, 0})
	qy := mgl32.QuatRotate(mgl32.DegToRad(deg[1]), mgl32.Vec3{0, 1, 0})
	qz := mgl32.QuatRotate(mgl32.DegToRad(deg[2]), mgl32.Vec3{0, 0, 1})
	return qz.Mul(qy).Mul(qx)
}

// Shear returns the shear matrix for the given angles (degrees).
//
//	x couples row 1, column 0
//	y couples row 2, column 1
//	z couples row 0, column 2
//
// Each coupling term is cot(angle).
func Shear(deg mgl32.Vec3) mgl32.Mat4 {
	m := mgl32.Ident4()
	m.Set(1, 0, Cot(deg[0]))
	m.Set(2, 1, Cot(deg[1]))
	m.Set(0, 2, Cot(deg[2]))
	return m
}

// Cot returns 1/tan of an angle in degrees. Not guarded against tan == 0.
func Cot(deg float32) float32 {
	t := gomath.Tan(float64(deg) * gomath.Pi / 180)
	return float32(1 / t)
}
