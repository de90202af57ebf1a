// Package mediakeys invokes media actions on the machine the
// dispatcher runs on. On Linux it shells out to playerctl (or raw
// MPRIS dbus-send as a fallback) for transport control and pactl or
// amixer for volume. On macOS everything goes through osascript.
package mediakeys

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"runtime"
)

// Controller invokes one media action at a time.
type Controller interface {
	PlayPause() error
	NextTrack() error
	PrevTrack() error
	VolumeUp() error
	VolumeDown() error

	// Describe names the tools behind the controller, for startup logs.
	Describe() string
}

type controller struct {
	goos string

	hasPlayerctl bool
	hasPactl     bool
	hasAmixer    bool

	run func(name string, arg ...string) error
}

// NewController probes the host for media tooling and returns a
// controller for the current OS. Windows is not supported.
func NewController() (Controller, error) {
	return newController(runtime.GOOS, exec.LookPath, runCommand)
}

// newController is split out so tests can substitute the tool probe
// and the command runner.
func newController(goos string, look func(string) (string, error), run func(string, ...string) error) (Controller, error) {
	switch goos {
	case "linux":
		c := &controller{goos: goos, run: run}
		c.hasPlayerctl = found(look, "playerctl")
		c.hasPactl = found(look, "pactl")
		c.hasAmixer = found(look, "amixer")
		if !c.hasPlayerctl {
			log.Println("mediakeys: playerctl not found, falling back to dbus (install playerctl for broader player support)")
		}
		return c, nil
	case "darwin":
		return &controller{goos: goos, run: run}, nil
	default:
		return nil, fmt.Errorf("no media key support on %s", goos)
	}
}

func found(look func(string) (string, error), name string) bool {
	_, err := look(name)
	return err == nil
}

func runCommand(name string, arg ...string) error {
	cmd := exec.Command(name, arg...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run()
}

func (c *controller) PlayPause() error { return c.media("play-pause", "PlayPause", "playpause") }
func (c *controller) NextTrack() error { return c.media("next", "Next", "next track") }
func (c *controller) PrevTrack() error { return c.media("previous", "Previous", "previous track") }

// media runs one transport action, given its spelling for each tool.
func (c *controller) media(playerctlArg, mprisMethod, appleVerb string) error {
	if c.goos == "darwin" {
		return c.run("osascript", "-e", appleScript(appleVerb))
	}
	if c.hasPlayerctl {
		return c.run("playerctl", playerctlArg)
	}
	return c.run("dbus-send", "--print-reply", "--dest=org.mpris.MediaPlayer2.spotify",
		"/org/mpris/MediaPlayer2", "org.mpris.MediaPlayer2.Player."+mprisMethod)
}

// appleScript targets whichever of Music or Spotify is running, like
// the original host script did.
func appleScript(verb string) string {
	return fmt.Sprintf(`if application "Music" is running then
	tell application "Music" to %s
else if application "Spotify" is running then
	tell application "Spotify" to %s
end if`, verb, verb)
}

func (c *controller) VolumeUp() error   { return c.volume("+") }
func (c *controller) VolumeDown() error { return c.volume("-") }

func (c *controller) volume(sign string) error {
	if c.goos == "darwin" {
		return c.run("osascript", "-e",
			fmt.Sprintf("set volume output volume ((output volume of (get volume settings)) %s 6.25)", sign))
	}
	if c.hasPactl {
		return c.run("pactl", "set-sink-volume", "@DEFAULT_SINK@", sign+"5%")
	}
	if c.hasAmixer {
		return c.run("amixer", "set", "Master", "5%"+sign)
	}
	return errors.New("no volume control tool found (install pactl or amixer)")
}

func (c *controller) Describe() string {
	if c.goos == "darwin" {
		return "osascript"
	}
	media := "dbus (fallback)"
	if c.hasPlayerctl {
		media = "playerctl"
	}
	volume := "none"
	if c.hasPactl {
		volume = "pactl"
	} else if c.hasAmixer {
		volume = "amixer"
	}
	return fmt.Sprintf("media=%s volume=%s", media, volume)
}

// Nop logs every action instead of invoking it, for --dry-run.
type Nop struct{}

func (Nop) PlayPause() error  { log.Println("mediakeys: play/pause"); return nil }
func (Nop) NextTrack() error  { log.Println("mediakeys: next track"); return nil }
func (Nop) PrevTrack() error  { log.Println("mediakeys: previous track"); return nil }
func (Nop) VolumeUp() error   { log.Println("mediakeys: volume up"); return nil }
func (Nop) VolumeDown() error { log.Println("mediakeys: volume down"); return nil }

func (Nop) Describe() string { return "dry-run (logging only)" }
