// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package sensors

import (
	"math"
	"time"
)

// MockReader synthesizes a slow wobble whose pitch and roll sweep past
// the stock gesture thresholds, for development without the IMU
// attached. The magnitude stays at 1g, so it tilts but never lifts.
type MockReader struct {
	start time.Time
	scale float64
}

// NewMockReader creates a mock accelerometer with the given sensitivity
// in LSB per g.
func NewMockReader(scale float64) *MockReader {
	return &MockReader{start: time.Now(), scale: scale}
}

func (m *MockReader) ReadAccel() (int16, int16, int16, error) {
	elapsed := time.Since(m.start).Seconds()

	pitch := 24 * math.Cos(elapsed*0.7) * math.Pi / 180
	roll := 28 * math.Sin(elapsed) * math.Pi / 180

	// Project the angles back onto gravity so the filter reproduces
	// them exactly.
	ax := -math.Sin(pitch) * m.scale
	ay := math.Cos(pitch) * math.Sin(roll) * m.scale
	az := math.Cos(pitch) * math.Cos(roll) * m.scale

	return int16(ax), int16(ay), int16(az), nil
}
