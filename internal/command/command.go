package command

import (
	"fmt"

	"github.com/relabs-tech/gesture_companion/internal/gesture"
)

// Code is the single-byte media action carried in a frame payload.
type Code byte

const (
	VolumeUp   Code = 0x01
	VolumeDown Code = 0x02
	NextTrack  Code = 0x03
	PrevTrack  Code = 0x04
	PlayPause  Code = 0x05
)

// Valid reports whether the code is one of the known media actions.
func (c Code) Valid() bool {
	return c >= VolumeUp && c <= PlayPause
}

func (c Code) String() string {
	switch c {
	case VolumeUp:
		return "volume_up"
	case VolumeDown:
		return "volume_down"
	case NextTrack:
		return "next_track"
	case PrevTrack:
		return "prev_track"
	case PlayPause:
		return "play_pause"
	default:
		return fmt.Sprintf("unknown(0x%02X)", byte(c))
	}
}

// ParseCode maps a command name from the config file to its wire code.
func ParseCode(name string) (Code, error) {
	switch name {
	case "volume_up":
		return VolumeUp, nil
	case "volume_down":
		return VolumeDown, nil
	case "next_track":
		return NextTrack, nil
	case "prev_track":
		return PrevTrack, nil
	case "play_pause":
		return PlayPause, nil
	default:
		return 0, fmt.Errorf("unknown command name: %q", name)
	}
}

// Command is one media action with its sequence number.
type Command struct {
	Code Code
	Seq  uint16
}

// Mapping assigns a media action to each gesture kind that should act.
// Kinds without an entry produce no command.
type Mapping map[gesture.Kind]Code

// DefaultMapping is the stock gesture-to-command assignment. Level is
// deliberately absent: it only marks the end of an excursion.
func DefaultMapping() Mapping {
	return Mapping{
		gesture.TiltUp:    VolumeUp,
		gesture.TiltDown:  VolumeDown,
		gesture.TiltRight: NextTrack,
		gesture.TiltLeft:  PrevTrack,
		gesture.Lift:      PlayPause,
	}
}

// ParseMapping builds a Mapping from config-file command names. The
// name "none" leaves that gesture unassigned.
func ParseMapping(names map[gesture.Kind]string) (Mapping, error) {
	m := Mapping{}
	for kind, name := range names {
		if name == "none" {
			continue
		}
		code, err := ParseCode(name)
		if err != nil {
			return nil, fmt.Errorf("gesture %s: %w", kind, err)
		}
		m[kind] = code
	}
	return m, nil
}

// Encoder assigns sequence numbers to outgoing commands. The sequence
// starts at 1 and wraps with uint16 arithmetic.
type Encoder struct {
	mapping Mapping
	seq     uint16
}

func NewEncoder(m Mapping) *Encoder {
	return &Encoder{mapping: m}
}

// Encode translates a confirmed gesture into a numbered command.
// Gestures without a mapping produce nothing and consume no sequence
// number.
func (e *Encoder) Encode(ev gesture.Event) (Command, bool) {
	code, ok := e.mapping[ev.Kind]
	if !ok {
		return Command{}, false
	}
	e.seq++
	return Command{Code: code, Seq: e.seq}, true
}
