package command

import (
	"testing"

	"github.com/relabs-tech/gesture_companion/internal/gesture"
)

func TestParseCode(t *testing.T) {
	testCases := []struct {
		name     string
		expected Code
	}{
		{"volume_up", VolumeUp},
		{"volume_down", VolumeDown},
		{"next_track", NextTrack},
		{"prev_track", PrevTrack},
		{"play_pause", PlayPause},
	}

	for _, tc := range testCases {
		code, err := ParseCode(tc.name)
		if err != nil {
			t.Errorf("ParseCode(%q) failed: %v", tc.name, err)
			continue
		}
		if code != tc.expected {
			t.Errorf("ParseCode(%q): expected 0x%02X, got 0x%02X", tc.name, byte(tc.expected), byte(code))
		}
	}

	if _, err := ParseCode("louder"); err == nil {
		t.Error("Expected error for unknown command name")
	}
}

func TestCodeStringRoundTrip(t *testing.T) {
	for code := VolumeUp; code <= PlayPause; code++ {
		parsed, err := ParseCode(code.String())
		if err != nil {
			t.Errorf("ParseCode(%q) failed: %v", code.String(), err)
			continue
		}
		if parsed != code {
			t.Errorf("Round trip of 0x%02X gave 0x%02X", byte(code), byte(parsed))
		}
	}
}

func TestCodeValid(t *testing.T) {
	for code := VolumeUp; code <= PlayPause; code++ {
		if !code.Valid() {
			t.Errorf("Expected 0x%02X to be valid", byte(code))
		}
	}
	if Code(0x00).Valid() {
		t.Error("Expected 0x00 to be invalid")
	}
	if Code(0x06).Valid() {
		t.Error("Expected 0x06 to be invalid")
	}
}

func TestUnknownCodeString(t *testing.T) {
	got := Code(0x7F).String()
	if got != "unknown(0x7F)" {
		t.Errorf("Expected unknown(0x7F), got %s", got)
	}
}

func TestDefaultMappingLeavesLevelUnassigned(t *testing.T) {
	m := DefaultMapping()

	if len(m) != 5 {
		t.Errorf("Expected 5 mapped gestures, got %d", len(m))
	}
	if _, ok := m[gesture.Level]; ok {
		t.Error("Level must not map to a command")
	}
	if m[gesture.Lift] != PlayPause {
		t.Errorf("Expected lift to map to play_pause, got %s", m[gesture.Lift])
	}
}

func TestParseMapping(t *testing.T) {
	m, err := ParseMapping(map[gesture.Kind]string{
		gesture.TiltUp:   "next_track",
		gesture.TiltDown: "none",
	})
	if err != nil {
		t.Fatalf("ParseMapping failed: %v", err)
	}

	if m[gesture.TiltUp] != NextTrack {
		t.Errorf("Expected next_track, got %s", m[gesture.TiltUp])
	}
	if _, ok := m[gesture.TiltDown]; ok {
		t.Error("A gesture mapped to none must stay unassigned")
	}

	if _, err := ParseMapping(map[gesture.Kind]string{gesture.Lift: "scream"}); err == nil {
		t.Error("Expected error for unknown command name in mapping")
	}
}

func TestEncoderSequenceNumbers(t *testing.T) {
	enc := NewEncoder(DefaultMapping())

	cmd, ok := enc.Encode(gesture.Event{Kind: gesture.TiltUp})
	if !ok {
		t.Fatal("Expected a command for tilt_up")
	}
	if cmd.Code != VolumeUp || cmd.Seq != 1 {
		t.Errorf("Expected volume_up seq=1, got %s seq=%d", cmd.Code, cmd.Seq)
	}

	cmd, ok = enc.Encode(gesture.Event{Kind: gesture.Lift})
	if !ok {
		t.Fatal("Expected a command for lift")
	}
	if cmd.Seq != 2 {
		t.Errorf("Expected seq=2, got %d", cmd.Seq)
	}
}

func TestEncoderSkipsUnmappedGestures(t *testing.T) {
	enc := NewEncoder(DefaultMapping())

	if _, ok := enc.Encode(gesture.Event{Kind: gesture.Level}); ok {
		t.Fatal("Expected no command for level")
	}

	// The skipped gesture must not burn a sequence number.
	cmd, ok := enc.Encode(gesture.Event{Kind: gesture.TiltLeft})
	if !ok {
		t.Fatal("Expected a command for tilt_left")
	}
	if cmd.Seq != 1 {
		t.Errorf("Expected seq=1 after a skipped gesture, got %d", cmd.Seq)
	}
}

func TestEncoderSequenceWraps(t *testing.T) {
	enc := NewEncoder(DefaultMapping())

	var last Command
	for i := 0; i < 65536; i++ {
		last, _ = enc.Encode(gesture.Event{Kind: gesture.TiltUp})
	}

	// 65535 increments take the counter to its maximum, one more wraps
	// the uint16 to zero.
	if last.Seq != 0 {
		t.Errorf("Expected seq to wrap to 0, got %d", last.Seq)
	}
}
