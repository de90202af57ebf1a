package orientation

import (
	"math"
	"testing"
	"time"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-3
}

func TestAngles(t *testing.T) {
	testCases := []struct {
		ax, ay, az  float64
		pitch, roll float64
	}{
		{0, 0, 1, 0, 0},            // flat
		{-1, 0, 0, 90, 0},          // nose up
		{1, 0, 0, -90, 0},          // nose down
		{0, 1, 0, 0, 90},           // on its right side
		{0, -1, 0, 0, -90},         // on its left side
		{-0.707107, 0, 0.707107, 45, 0},
		{0, 0.5, 0.866025, 0, 30},
	}

	for _, tc := range testCases {
		pitch, roll := Angles(tc.ax, tc.ay, tc.az)
		if !approx(pitch, tc.pitch) {
			t.Errorf("Angles(%v, %v, %v): expected pitch %.3f, got %.3f", tc.ax, tc.ay, tc.az, tc.pitch, pitch)
		}
		if !approx(roll, tc.roll) {
			t.Errorf("Angles(%v, %v, %v): expected roll %.3f, got %.3f", tc.ax, tc.ay, tc.az, tc.roll, roll)
		}
	}
}

func TestFilterPrimesOnFirstSample(t *testing.T) {
	f := NewFilter(0.35, 16384)
	now := time.Now()

	p := f.Update(Sample{X: 0, Y: 0, Z: 16384, Time: now})

	if !approx(p.Pitch, 0) || !approx(p.Roll, 0) {
		t.Errorf("Expected level pose, got pitch=%.3f roll=%.3f", p.Pitch, p.Roll)
	}
	if !approx(p.Mag, 1.0) {
		t.Errorf("Expected magnitude 1.0, got %.3f", p.Mag)
	}
	if !p.Time.Equal(now) {
		t.Errorf("Expected pose time %v, got %v", now, p.Time)
	}
}

func TestFilterSmoothing(t *testing.T) {
	f := NewFilter(0.5, 16384)

	f.Update(Sample{X: 0, Y: 0, Z: 16384})
	p := f.Update(Sample{X: 16384, Y: 0, Z: 16384})

	// With alpha 0.5 the smoothed vector is (0.5, 0, 1):
	// pitch = atan2(-0.5, 1) = -26.565 degrees.
	if !approx(p.Pitch, -26.565) {
		t.Errorf("Expected pitch -26.565, got %.3f", p.Pitch)
	}
	if !approx(p.Roll, 0) {
		t.Errorf("Expected roll 0, got %.3f", p.Roll)
	}
	if !approx(p.Mag, 1.118) {
		t.Errorf("Expected magnitude 1.118, got %.3f", p.Mag)
	}
}

func TestFilterHoldsAnglesOnZeroVector(t *testing.T) {
	f := NewFilter(1.0, 16384)

	first := f.Update(Sample{X: 0, Y: 16384, Z: 16384})
	if !approx(first.Roll, 45) {
		t.Fatalf("Expected roll 45, got %.3f", first.Roll)
	}

	now := time.Now()
	p := f.Update(Sample{X: 0, Y: 0, Z: 0, Time: now})

	if !approx(p.Roll, 45) || !approx(p.Pitch, 0) {
		t.Errorf("Expected held angles (pitch=0 roll=45), got pitch=%.3f roll=%.3f", p.Pitch, p.Roll)
	}
	if p.Mag != 0 {
		t.Errorf("Expected magnitude 0, got %.3f", p.Mag)
	}
	if !p.Time.Equal(now) {
		t.Errorf("Expected pose time %v, got %v", now, p.Time)
	}
}

func TestFilterMagnitudeTracksLift(t *testing.T) {
	f := NewFilter(1.0, 16384)

	p := f.Update(Sample{X: 0, Y: 0, Z: 24576})

	if !approx(p.Mag, 1.5) {
		t.Errorf("Expected magnitude 1.5, got %.3f", p.Mag)
	}
	if !approx(p.Pitch, 0) || !approx(p.Roll, 0) {
		t.Errorf("Expected level pose, got pitch=%.3f roll=%.3f", p.Pitch, p.Roll)
	}
}
