package expression

import (
	"math"

	"github.com/relabs-tech/gesture_companion/internal/gesture"
	"github.com/relabs-tech/gesture_companion/internal/orientation"
)

// State is the face the companion shows.
type State string

const (
	Normal State = "normal"
	Smile  State = "smile"
	Sad    State = "sad"
)

// FromPose picks the face for the current orientation: sad while being
// carried off, a smile while tilted far enough to gesture, normal
// otherwise. Lift wins over tilt, matching the gesture priority.
func FromPose(p orientation.Pose, cfg gesture.Config) State {
	if p.Mag >= cfg.LiftOnG {
		return Sad
	}
	if math.Abs(p.Pitch) >= cfg.PitchOnDeg || math.Abs(p.Roll) >= cfg.RollOnDeg {
		return Smile
	}
	return Normal
}
