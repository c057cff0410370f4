// Package math provides the transform math used by the viewer, built on mathgl.
package math

import "github.com/go-gl/mathgl/mgl32"

// WrapDegrees brings an angle back into (-180, 180] with a single step of
// 360. Callers keep per-tick deltas within 360 degrees so one step suffices.
func WrapDegrees(a float32) float32 {
	if a > 180 {
		return a - 360
	}
	if a <= -180 {
		return a + 360
	}
	return a
}

// WrapEuler applies WrapDegrees to every component.
func WrapEuler(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{WrapDegrees(v[0]), WrapDegrees(v[1]), WrapDegrees(v[2])}
}

// ToVec3 converts a plain array, as found in config files, to a mathgl vector.
func ToVec3(a [3]float32) mgl32.Vec3 {
	return mgl32.Vec3{a[0], a[1], a[2]}
}
