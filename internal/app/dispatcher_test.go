package app

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/relabs-tech/gesture_companion/internal/command"
	"github.com/relabs-tech/gesture_companion/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keyRecorder captures the media actions a stream triggered.
type keyRecorder struct {
	actions []string
	err     error
}

func (k *keyRecorder) PlayPause() error  { k.actions = append(k.actions, "play_pause"); return k.err }
func (k *keyRecorder) NextTrack() error  { k.actions = append(k.actions, "next_track"); return k.err }
func (k *keyRecorder) PrevTrack() error  { k.actions = append(k.actions, "prev_track"); return k.err }
func (k *keyRecorder) VolumeUp() error   { k.actions = append(k.actions, "volume_up"); return k.err }
func (k *keyRecorder) VolumeDown() error { k.actions = append(k.actions, "volume_down"); return k.err }
func (k *keyRecorder) Describe() string  { return "recorder" }

// ---------------------------------------------------------------------------
// seqTracker
// ---------------------------------------------------------------------------

func TestSeqTracker(t *testing.T) {
	t.Parallel()

	t.Run("first sequence primes without a gap", func(t *testing.T) {
		t.Parallel()
		var s seqTracker
		assert.Equal(t, 0, s.gap(5))
	})

	t.Run("consecutive sequences report no gap", func(t *testing.T) {
		t.Parallel()
		var s seqTracker
		s.gap(5)
		assert.Equal(t, 0, s.gap(6))
		assert.Equal(t, 0, s.gap(7))
	})

	t.Run("skipped sequences are counted", func(t *testing.T) {
		t.Parallel()
		var s seqTracker
		s.gap(6)
		assert.Equal(t, 2, s.gap(9))
	})

	t.Run("duplicate sequence reports no gap", func(t *testing.T) {
		t.Parallel()
		var s seqTracker
		s.gap(9)
		assert.Equal(t, 0, s.gap(9))
	})

	t.Run("wrap at 65535 is seamless", func(t *testing.T) {
		t.Parallel()
		var s seqTracker
		s.gap(65535)
		assert.Equal(t, 0, s.gap(0))
	})

	t.Run("gap across the wrap is counted", func(t *testing.T) {
		t.Parallel()
		var s seqTracker
		s.gap(65534)
		assert.Equal(t, 2, s.gap(1))
	})
}

// ---------------------------------------------------------------------------
// dispatch
// ---------------------------------------------------------------------------

func TestDispatchRoutesCommands(t *testing.T) {
	t.Parallel()

	rec := &keyRecorder{}

	testCases := []struct {
		code     command.Code
		expected string
	}{
		{command.PlayPause, "play_pause"},
		{command.NextTrack, "next_track"},
		{command.PrevTrack, "prev_track"},
		{command.VolumeUp, "volume_up"},
		{command.VolumeDown, "volume_down"},
	}

	for i, tc := range testCases {
		dispatch(rec, command.Command{Code: tc.code, Seq: uint16(i + 1)})
		require.Len(t, rec.actions, i+1)
		assert.Equal(t, tc.expected, rec.actions[i])
	}
}

func TestDispatchIgnoresUnknownCode(t *testing.T) {
	t.Parallel()

	rec := &keyRecorder{}
	dispatch(rec, command.Command{Code: 0x7F, Seq: 1})
	assert.Empty(t, rec.actions)
}

// ---------------------------------------------------------------------------
// readLegacy
// ---------------------------------------------------------------------------

func TestReadLegacy(t *testing.T) {
	t.Parallel()

	rec := &keyRecorder{}
	r := strings.NewReader("PLAY_PAUSE\nVOL_UP\nX\n\nWHAT_EVER\nNEXT\n")

	err := readLegacy(r, rec)

	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"play_pause", "volume_up", "next_track"}, rec.actions)
}

// ---------------------------------------------------------------------------
// readFrames
// ---------------------------------------------------------------------------

func TestReadFramesDispatchesDecodedCommands(t *testing.T) {
	t.Parallel()

	var stream []byte
	stream = append(stream, 0x13, 0x37) // line noise before the first frame
	stream = append(stream, frame.Marshal(command.Command{Code: command.VolumeUp, Seq: 1})...)
	stream = append(stream, frame.Marshal(command.Command{Code: command.PlayPause, Seq: 2})...)

	rec := &keyRecorder{}
	err := readFrames(bytes.NewReader(stream), rec, nil, "")

	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"volume_up", "play_pause"}, rec.actions)
}

func TestReadFramesSurvivesCorruptFrame(t *testing.T) {
	t.Parallel()

	corrupt := frame.Marshal(command.Command{Code: command.NextTrack, Seq: 1})
	corrupt[5] = 0x30

	var stream []byte
	stream = append(stream, corrupt...)
	stream = append(stream, frame.Marshal(command.Command{Code: command.PrevTrack, Seq: 2})...)

	rec := &keyRecorder{}
	err := readFrames(bytes.NewReader(stream), rec, nil, "")

	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"prev_track"}, rec.actions)
}
