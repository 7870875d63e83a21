package vkbase

import (
	"math"

	lin "github.com/xlab/linmath"
)

// clipCorrection maps OpenGL clip space to Vulkan clip space: Y flipped,
// depth squeezed from [-1,1] into [0,1]. Column-major.
var clipCorrection = lin.Mat4x4{
	{1, 0, 0, 0},
	{0, -1, 0, 0},
	{0, 0, 0.5, 0},
	{0, 0, 0.5, 1},
}

// PerspectiveVk builds a perspective projection already corrected for
// Vulkan clip-space conventions.
func PerspectiveVk(fovyRad, aspect, near, far float32) lin.Mat4x4 {
	var proj lin.Mat4x4
	proj.Perspective(fovyRad, aspect, near, far)
	var out lin.Mat4x4
	out.Mult(&clipCorrection, &proj)
	return out
}

// LookAtVk wraps linmath's LookAt with value semantics.
func LookAtVk(eye, center, up lin.Vec3) lin.Mat4x4 {
	var view lin.Mat4x4
	view.LookAt(&eye, &center, &up)
	return view
}

// IdentityMat returns a fresh identity matrix.
func IdentityMat() lin.Mat4x4 {
	var m lin.Mat4x4
	m.Identity()
	return m
}

// DegToRad converts degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * math.Pi / 180
}
