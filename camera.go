package vkbase

import (
	"math"

	lin "github.com/xlab/linmath"
)

// FlightCamera is a free-look camera driven by key and cursor input. Yaw
// and pitch are in radians; pitch is clamped short of the poles.
type FlightCamera struct {
	Position lin.Vec3
	Yaw      float32
	Pitch    float32
	Speed    float32
	LookRate float32
}

func NewFlightCamera(position lin.Vec3) *FlightCamera {
	return &FlightCamera{
		Position: position,
		Yaw:      -float32(math.Pi) / 2,
		Speed:    2.5,
		LookRate: 0.002,
	}
}

func (c *FlightCamera) forward() lin.Vec3 {
	cy := float32(math.Cos(float64(c.Yaw)))
	sy := float32(math.Sin(float64(c.Yaw)))
	cp := float32(math.Cos(float64(c.Pitch)))
	sp := float32(math.Sin(float64(c.Pitch)))
	return lin.Vec3{cy * cp, sp, sy * cp}
}

func (c *FlightCamera) right() lin.Vec3 {
	fwd := c.forward()
	var r lin.Vec3
	r.MultCross(&fwd, &lin.Vec3{0, 1, 0})
	var n lin.Vec3
	n.Norm(&r)
	return n
}

// Move translates along the view axes. dx is strafe, dz is forward, both
// scaled by Speed and the frame delta.
func (c *FlightCamera) Move(dx, dz, delta float32) {
	fwd := c.forward()
	right := c.right()
	step := c.Speed * delta
	for i := 0; i < 3; i++ {
		c.Position[i] += fwd[i]*dz*step + right[i]*dx*step
	}
}

// Look applies a cursor delta to yaw and pitch.
func (c *FlightCamera) Look(dx, dy float32) {
	c.Yaw += dx * c.LookRate
	c.Pitch -= dy * c.LookRate
	limit := float32(math.Pi)/2 - 0.01
	if c.Pitch > limit {
		c.Pitch = limit
	}
	if c.Pitch < -limit {
		c.Pitch = -limit
	}
}

// View returns the camera's view matrix.
func (c *FlightCamera) View() lin.Mat4x4 {
	fwd := c.forward()
	var center lin.Vec3
	for i := 0; i < 3; i++ {
		center[i] = c.Position[i] + fwd[i]
	}
	return LookAtVk(c.Position, center, lin.Vec3{0, 1, 0})
}

// OrbitCamera circles a fixed target, for examples that want motion
// without input handling.
type OrbitCamera struct {
	Target   lin.Vec3
	Distance float32
	Height   float32
	angle    float32
	Rate     float32
}

func NewOrbitCamera(target lin.Vec3, distance, height float32) *OrbitCamera {
	return &OrbitCamera{
		Target:   target,
		Distance: distance,
		Height:   height,
		Rate:     0.5,
	}
}

// Advance rotates the orbit by the frame delta and returns the view matrix.
func (c *OrbitCamera) Advance(delta float32) lin.Mat4x4 {
	c.angle += c.Rate * delta
	eye := lin.Vec3{
		c.Target[0] + c.Distance*float32(math.Cos(float64(c.angle))),
		c.Target[1] + c.Height,
		c.Target[2] + c.Distance*float32(math.Sin(float64(c.angle))),
	}
	return LookAtVk(eye, c.Target, lin.Vec3{0, 1, 0})
}
