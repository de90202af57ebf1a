package expression

import (
	"testing"

	"github.com/relabs-tech/gesture_companion/internal/gesture"
	"github.com/relabs-tech/gesture_companion/internal/orientation"
)

func TestFromPose(t *testing.T) {
	cfg := gesture.DefaultConfig()

	testCases := []struct {
		name     string
		pose     orientation.Pose
		expected State
	}{
		{"flat", orientation.Pose{Pitch: 0, Roll: 0, Mag: 1.0}, Normal},
		{"below threshold", orientation.Pose{Pitch: 12, Roll: -15, Mag: 1.0}, Normal},
		{"pitched past threshold", orientation.Pose{Pitch: 25, Mag: 1.0}, Smile},
		{"rolled past threshold", orientation.Pose{Roll: -30, Mag: 1.0}, Smile},
		{"lifted", orientation.Pose{Mag: 1.4}, Sad},
		{"lift wins over tilt", orientation.Pose{Pitch: 40, Mag: 1.5}, Sad},
	}

	for _, tc := range testCases {
		if got := FromPose(tc.pose, cfg); got != tc.expected {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.expected, got)
		}
	}
}
