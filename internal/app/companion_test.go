package app

import (
	"testing"
	"time"

	"github.com/relabs-tech/gesture_companion/internal/command"
	"github.com/relabs-tech/gesture_companion/internal/config"
	"github.com/relabs-tech/gesture_companion/internal/gesture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifierConfigFromFile(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		PitchOnDeg:      25,
		RollOnDeg:       18,
		LiftThresholdG:  1.5,
		ReleaseFraction: 0.6,
		HoldMS:          200,
		CooldownMS:      400,
	}

	gc := classifierConfig(cfg)

	assert.InDelta(t, 25, gc.PitchOnDeg, 0.001)
	assert.InDelta(t, 18, gc.RollOnDeg, 0.001)
	assert.InDelta(t, 1.5, gc.LiftOnG, 0.001)
	assert.InDelta(t, 0.6, gc.ReleaseFraction, 0.001)
	assert.Equal(t, 200*time.Millisecond, gc.Hold)
	assert.Equal(t, 400*time.Millisecond, gc.Cooldown)
	require.NoError(t, gc.Validate())
}

func TestCommandMappingFromFile(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		MapTiltLeft:  "prev_track",
		MapTiltRight: "next_track",
		MapTiltUp:    "volume_up",
		MapTiltDown:  "volume_down",
		MapLift:      "none",
	}

	m, err := commandMapping(cfg)
	require.NoError(t, err)

	assert.Equal(t, command.PrevTrack, m[gesture.TiltLeft])
	assert.Equal(t, command.NextTrack, m[gesture.TiltRight])
	assert.Equal(t, command.VolumeUp, m[gesture.TiltUp])
	assert.Equal(t, command.VolumeDown, m[gesture.TiltDown])

	_, ok := m[gesture.Lift]
	assert.False(t, ok, "a gesture mapped to none must stay unassigned")
}

func TestCommandMappingRejectsUnknownName(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		MapTiltLeft:  "scream",
		MapTiltRight: "none",
		MapTiltUp:    "none",
		MapTiltDown:  "none",
		MapLift:      "none",
	}

	_, err := commandMapping(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tilt_left")
}
