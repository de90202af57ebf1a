package orientation

import (
	"math"
	"time"
)

// Sample is one raw accelerometer reading in sensor LSB units.
type Sample struct {
	X, Y, Z int16
	Time    time.Time
}

// Pose is the canonical representation of orientation for your app.
type Pose struct {
	Pitch float64   `json:"pitch"`
	Roll  float64   `json:"roll"`
	Mag   float64   `json:"mag"`
	Time  time.Time `json:"time"`
}

// Angles computes pitch and roll in degrees from accelerometer
// components in any unit. Only the ratios matter.
//
// Uses simple tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func Angles(ax, ay, az float64) (pitch, roll float64) {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return pitchRad * 180.0 / math.Pi, rollRad * 180.0 / math.Pi
}

// Filter smooths raw samples with a per-axis exponential moving average
// and projects the smoothed gravity vector to pitch and roll.
type Filter struct {
	alpha float64
	scale float64

	x, y, z float64
	primed  bool

	last Pose
}

// NewFilter creates a filter. alpha is the smoothing factor (0 < alpha
// <= 1, higher reacts faster), scale the accelerometer sensitivity in
// LSB per g.
func NewFilter(alpha, scale float64) *Filter {
	return &Filter{alpha: alpha, scale: scale}
}

// Update folds one raw sample into the estimate and returns the pose.
// The first sample seeds the average. If the smoothed vector collapses
// to zero the previous angles are held, since there is no direction to
// project.
func (f *Filter) Update(s Sample) Pose {
	fx := float64(s.X) / f.scale
	fy := float64(s.Y) / f.scale
	fz := float64(s.Z) / f.scale

	if !f.primed {
		f.x, f.y, f.z = fx, fy, fz
		f.primed = true
	} else {
		f.x += f.alpha * (fx - f.x)
		f.y += f.alpha * (fy - f.y)
		f.z += f.alpha * (fz - f.z)
	}

	mag := math.Sqrt(f.x*f.x + f.y*f.y + f.z*f.z)
	if mag == 0 {
		p := f.last
		p.Mag = 0
		p.Time = s.Time
		f.last = p
		return p
	}

	pitch, roll := Angles(f.x, f.y, f.z)

	p := Pose{
		Pitch: pitch,
		Roll:  roll,
		Mag:   mag,
		Time:  s.Time,
	}
	f.last = p
	return p
}
