package gesture

import (
	"math"
	"time"

	"github.com/relabs-tech/gesture_companion/internal/orientation"
)

type state int

const (
	stateIdle state = iota
	stateCandidate
	stateCooldown
)

// Classifier turns a stream of poses into confirmed gesture events.
//
// It tracks at most one candidate at a time. A candidate that changes
// direction or axis restarts the hold timer, and a confirmed gesture
// starts the cooldown during which nothing new can confirm. The pose
// timestamps drive all timing, so the classifier itself never looks at
// the wall clock.
type Classifier struct {
	cfg Config

	st             state
	candidate      Kind
	candidateSince time.Time
	cooldownUntil  time.Time

	// Per-axis re-arm latches. An axis that just confirmed stays
	// disarmed until the angle returns inside its release band.
	pitchArmed bool
	rollArmed  bool
	liftArmed  bool

	pendingLevel bool
}

// NewClassifier creates a classifier with all axes armed.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{
		cfg:        cfg,
		pitchArmed: true,
		rollArmed:  true,
		liftArmed:  true,
	}
}

// Update folds one pose into the state machine. It returns a confirmed
// event and true at most once per excursion. Poses with NaN components
// leave the state untouched.
func (c *Classifier) Update(p orientation.Pose) (Event, bool) {
	if math.IsNaN(p.Pitch) || math.IsNaN(p.Roll) || math.IsNaN(p.Mag) {
		return Event{}, false
	}

	now := p.Time

	// Re-arm each axis once its value is back inside the release band.
	if math.Abs(p.Pitch) < c.pitchRelease() {
		c.pitchArmed = true
	}
	if math.Abs(p.Roll) < c.rollRelease() {
		c.rollArmed = true
	}
	if p.Mag < c.liftRelease() {
		c.liftArmed = true
	}

	if c.st == stateCooldown && !now.Before(c.cooldownUntil) {
		c.st = stateIdle
	}

	want, active := c.detect(p)

	switch c.st {
	case stateIdle:
		if active {
			c.st = stateCandidate
			c.candidate = want
			c.candidateSince = now
		}

	case stateCandidate:
		switch {
		case !active:
			c.st = stateIdle
		case want != c.candidate:
			// Direction or axis changed: restart the hold timer.
			c.candidate = want
			c.candidateSince = now
		case now.Sub(c.candidateSince) >= c.cfg.Hold:
			ev := Event{Kind: c.candidate, Pitch: p.Pitch, Roll: p.Roll, ConfirmedAt: now}
			c.disarm(c.candidate)
			c.pendingLevel = true
			c.st = stateCooldown
			c.cooldownUntil = now.Add(c.cfg.Cooldown)
			return ev, true
		}

	case stateCooldown:
		// Excursions during cooldown never confirm.
	}

	// Level fires once after a confirmed gesture, as soon as the pose
	// settles. It has no cooldown of its own.
	if c.pendingLevel && c.level(p) {
		c.pendingLevel = false
		return Event{Kind: Level, Pitch: p.Pitch, Roll: p.Roll, ConfirmedAt: now}, true
	}

	return Event{}, false
}

// detect picks the strongest active gesture. Lift beats pitch beats
// roll, so holding the companion up never reads as a tilt.
func (c *Classifier) detect(p orientation.Pose) (Kind, bool) {
	if c.liftArmed && p.Mag >= c.cfg.LiftOnG {
		return Lift, true
	}
	if c.pitchArmed {
		if p.Pitch >= c.cfg.PitchOnDeg {
			return TiltUp, true
		}
		if p.Pitch <= -c.cfg.PitchOnDeg {
			return TiltDown, true
		}
	}
	if c.rollArmed {
		if p.Roll >= c.cfg.RollOnDeg {
			return TiltRight, true
		}
		if p.Roll <= -c.cfg.RollOnDeg {
			return TiltLeft, true
		}
	}
	return "", false
}

func (c *Classifier) disarm(k Kind) {
	switch k {
	case TiltUp, TiltDown:
		c.pitchArmed = false
	case TiltLeft, TiltRight:
		c.rollArmed = false
	case Lift:
		c.liftArmed = false
	}
}

func (c *Classifier) pitchRelease() float64 { return c.cfg.PitchOnDeg * c.cfg.ReleaseFraction }
func (c *Classifier) rollRelease() float64  { return c.cfg.RollOnDeg * c.cfg.ReleaseFraction }

// liftRelease scales the hysteresis band relative to rest magnitude (1g).
func (c *Classifier) liftRelease() float64 {
	return 1 + (c.cfg.LiftOnG-1)*c.cfg.ReleaseFraction
}

// level reports whether every axis is inside its release band.
func (c *Classifier) level(p orientation.Pose) bool {
	return math.Abs(p.Pitch) < c.pitchRelease() &&
		math.Abs(p.Roll) < c.rollRelease() &&
		p.Mag < c.liftRelease()
}
