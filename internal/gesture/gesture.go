package gesture

import (
	"fmt"
	"time"
)

// Kind identifies a recognized gesture.
type Kind string

const (
	TiltLeft  Kind = "tilt_left"
	TiltRight Kind = "tilt_right"
	TiltUp    Kind = "tilt_up"
	TiltDown  Kind = "tilt_down"
	Lift      Kind = "lift"
	Level     Kind = "level"
)

// Event is one confirmed gesture with the pose that triggered it.
type Event struct {
	Kind        Kind      `json:"kind"`
	Pitch       float64   `json:"pitch"`
	Roll        float64   `json:"roll"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// Config holds the detection thresholds and timing.
//
// A tilt starts a candidate once the angle passes the on-threshold and
// confirms after it held for Hold. The axis only re-arms after the
// angle drops back inside ReleaseFraction of the on-threshold, so a
// confirmed gesture cannot repeat while the excursion continues.
type Config struct {
	PitchOnDeg      float64
	RollOnDeg       float64
	LiftOnG         float64
	ReleaseFraction float64
	Hold            time.Duration
	Cooldown        time.Duration
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		PitchOnDeg:      20,
		RollOnDeg:       20,
		LiftOnG:         1.35,
		ReleaseFraction: 0.75,
		Hold:            150 * time.Millisecond,
		Cooldown:        300 * time.Millisecond,
	}
}

// Validate checks the thresholds for values the classifier can work with.
func (c Config) Validate() error {
	if c.PitchOnDeg <= 0 || c.RollOnDeg <= 0 {
		return fmt.Errorf("tilt thresholds must be positive (pitch=%.1f roll=%.1f)", c.PitchOnDeg, c.RollOnDeg)
	}
	if c.LiftOnG <= 1 {
		return fmt.Errorf("lift threshold must be above 1g, got %.2f", c.LiftOnG)
	}
	if c.ReleaseFraction <= 0 || c.ReleaseFraction >= 1 {
		return fmt.Errorf("release fraction must be between 0 and 1, got %.2f", c.ReleaseFraction)
	}
	if c.Hold <= 0 {
		return fmt.Errorf("hold duration must be positive, got %v", c.Hold)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative, got %v", c.Cooldown)
	}
	return nil
}
