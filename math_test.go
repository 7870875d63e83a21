package vkbase

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	lin "github.com/xlab/linmath"
)

func TestPerspectiveVkFlipsY(t *testing.T) {
	var gl lin.Mat4x4
	gl.Perspective(DegToRad(60), 16.0/9.0, 0.1, 64)

	vkProj := PerspectiveVk(DegToRad(60), 16.0/9.0, 0.1, 64)

	// Vulkan clip space has Y pointing down.
	assert.InDelta(t, float64(-gl[1][1]), float64(vkProj[1][1]), 1e-5)
	assert.Equal(t, gl[0][0], vkProj[0][0])
}

func TestClipCorrectionDepthRange(t *testing.T) {
	// GL clip depth -1 maps to 0, +1 maps to 1 (after perspective divide
	// with w = 1 here).
	mulVec := func(m *lin.Mat4x4, v [4]float32) [4]float32 {
		var out [4]float32
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				out[i] += m[j][i] * v[j]
			}
		}
		return out
	}

	nearOut := mulVec(&clipCorrection, [4]float32{0, 0, -1, 1})
	farOut := mulVec(&clipCorrection, [4]float32{0, 0, 1, 1})

	assert.InDelta(t, 0, float64(nearOut[2]), 1e-6)
	assert.InDelta(t, 1, float64(farOut[2]), 1e-6)
}

func TestDegToRad(t *testing.T) {
	assert.InDelta(t, math.Pi, float64(DegToRad(180)), 1e-6)
	assert.InDelta(t, math.Pi/2, float64(DegToRad(90)), 1e-6)
}

func TestIdentityMat(t *testing.T) {
	m := IdentityMat()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i == j {
				assert.Equal(t, float32(1), m[i][j])
			} else {
				assert.Equal(t, float32(0), m[i][j])
			}
		}
	}
}
