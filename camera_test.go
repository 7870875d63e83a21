package vkbase

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	lin "github.com/xlab/linmath"
)

func TestFlightCameraPitchClamped(t *testing.T) {
	c := NewFlightCamera(lin.Vec3{0, 0, 0})
	c.Look(0, -1e6)
	assert.Less(t, c.Pitch, float32(math.Pi/2))

	c.Look(0, 1e6)
	assert.Greater(t, c.Pitch, float32(-math.Pi/2))
}

func TestFlightCameraMoveForward(t *testing.T) {
	c := NewFlightCamera(lin.Vec3{0, 0, 3})
	// Default yaw of -pi/2 looks down negative Z.
	c.Move(0, 1, 1)
	assert.Less(t, c.Position[2], float32(3))
	assert.InDelta(t, 0, float64(c.Position[0]), 1e-3)
}

func TestFlightCameraStrafeIsPerpendicular(t *testing.T) {
	c := NewFlightCamera(lin.Vec3{0, 0, 0})
	c.Move(1, 0, 1)
	assert.NotZero(t, c.Position[0])
	assert.InDelta(t, 0, float64(c.Position[2]), 1e-3)
	assert.InDelta(t, 0, float64(c.Position[1]), 1e-3)
}

func TestOrbitCameraAdvances(t *testing.T) {
	c := NewOrbitCamera(lin.Vec3{0, 0, 0}, 5, 2)
	first := c.Advance(0.1)
	second := c.Advance(0.1)
	assert.NotEqual(t, first, second)
}
