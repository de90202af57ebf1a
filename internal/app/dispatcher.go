package app

import (
	"bufio"
	"encoding/json"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gesture_companion/internal/command"
	"github.com/relabs-tech/gesture_companion/internal/frame"
	"github.com/relabs-tech/gesture_companion/internal/mediakeys"
	"github.com/relabs-tech/gesture_companion/internal/serialport"
)

// DispatcherOptions configure the host-side dispatcher.
type DispatcherOptions struct {
	Port       string // empty auto-detects
	Baud       uint
	DryRun     bool
	LegacyText bool

	// Optional mirroring of received commands to MQTT. Empty Broker
	// disables it.
	Broker   string
	ClientID string
	Topic    string
}

const reconnectDelay = 2 * time.Second

// RunDispatcher is the host half: it reads command frames from the
// companion's serial link and presses the matching media keys. The
// link reconnects forever, so the companion can be unplugged and
// plugged back in at any time.
func RunDispatcher(opts DispatcherOptions) error {
	var keys mediakeys.Controller
	if opts.DryRun {
		keys = mediakeys.Nop{}
	} else {
		var err error
		keys, err = mediakeys.NewController()
		if err != nil {
			return err
		}
	}
	log.Printf("dispatcher: media control via %s", keys.Describe())

	var client mqtt.Client
	if opts.Broker != "" {
		mq := mqtt.NewClientOptions().
			AddBroker(opts.Broker).
			SetClientID(opts.ClientID)
		client = mqtt.NewClient(mq)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			return token.Error()
		}
		defer client.Disconnect(250)
		log.Printf("dispatcher: mirroring commands to %s on %s", opts.Topic, opts.Broker)
	}

	// A signal closes the open port so the blocking read returns.
	var (
		mu     sync.Mutex
		port   io.ReadWriteCloser
		closed bool
	)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		mu.Lock()
		closed = true
		if port != nil {
			port.Close()
		}
		mu.Unlock()
	}()

	for {
		mu.Lock()
		stop := closed
		mu.Unlock()
		if stop {
			log.Println("dispatcher: shutting down")
			return nil
		}

		name := opts.Port
		if name == "" {
			detected, err := serialport.Detect()
			if err != nil {
				log.Printf("dispatcher: %v, retrying in %s", err, reconnectDelay)
				time.Sleep(reconnectDelay)
				continue
			}
			name = detected
		}

		p, err := serialport.Open(name, opts.Baud)
		if err != nil {
			log.Printf("dispatcher: open %s: %v, retrying in %s", name, err, reconnectDelay)
			time.Sleep(reconnectDelay)
			continue
		}
		log.Printf("dispatcher: connected to %s at %d baud", name, opts.Baud)

		mu.Lock()
		if closed {
			mu.Unlock()
			p.Close()
			log.Println("dispatcher: shutting down")
			return nil
		}
		port = p
		mu.Unlock()

		if opts.LegacyText {
			err = readLegacy(p, keys)
		} else {
			err = readFrames(p, keys, client, opts.Topic)
		}

		mu.Lock()
		port = nil
		stop = closed
		mu.Unlock()
		p.Close()

		if stop {
			log.Println("dispatcher: shutting down")
			return nil
		}
		log.Printf("dispatcher: link lost (%v), reconnecting in %s", err, reconnectDelay)
		time.Sleep(reconnectDelay)
	}
}

// readFrames decodes the binary framing and dispatches each command
// until the link drops.
func readFrames(r io.Reader, keys mediakeys.Controller, client mqtt.Client, topic string) error {
	var dec frame.Decoder
	var seq seqTracker
	buf := make([]byte, 256)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			before := dec.Corrupted()
			cmds := dec.Feed(buf[:n])
			if dropped := dec.Corrupted() - before; dropped > 0 {
				log.Printf("dispatcher: %d corrupt frame(s) dropped (%d bytes skipped so far)", dropped, dec.Discarded())
			}
			for _, cmd := range cmds {
				if gap := seq.gap(cmd.Seq); gap > 0 {
					log.Printf("dispatcher: sequence gap, %d command(s) lost before seq=%d", gap, cmd.Seq)
				}
				dispatch(keys, cmd)
				mirror(client, topic, cmd)
			}
		}
		if err != nil {
			return err
		}
	}
}

// readLegacy handles the original newline-delimited text protocol
// (PLAY_PAUSE, NEXT, PREV, VOL_UP, VOL_DOWN).
func readLegacy(r io.Reader, keys mediakeys.Controller) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) < 2 {
			continue
		}
		code, ok := legacyCommands[line]
		if !ok {
			log.Printf("dispatcher: unknown text command %q", line)
			continue
		}
		dispatch(keys, command.Command{Code: code})
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}

var legacyCommands = map[string]command.Code{
	"PLAY_PAUSE": command.PlayPause,
	"NEXT":       command.NextTrack,
	"PREV":       command.PrevTrack,
	"VOL_UP":     command.VolumeUp,
	"VOL_DOWN":   command.VolumeDown,
}

// seqTracker spots gaps in the companion's sequence numbers. Lost
// commands are only logged, there is no retransmission.
type seqTracker struct {
	last   uint16
	primed bool
}

// gap returns how many commands went missing before seq.
func (s *seqTracker) gap(seq uint16) int {
	if !s.primed {
		s.primed = true
		s.last = seq
		return 0
	}
	// uint16 arithmetic handles the wrap at 65535.
	d := seq - s.last
	s.last = seq
	if d == 0 {
		return 0
	}
	return int(d) - 1
}

// dispatch invokes the media action for one received command.
func dispatch(keys mediakeys.Controller, cmd command.Command) {
	log.Printf("dispatcher: %s seq=%d", cmd.Code, cmd.Seq)

	var err error
	switch cmd.Code {
	case command.PlayPause:
		err = keys.PlayPause()
	case command.NextTrack:
		err = keys.NextTrack()
	case command.PrevTrack:
		err = keys.PrevTrack()
	case command.VolumeUp:
		err = keys.VolumeUp()
	case command.VolumeDown:
		err = keys.VolumeDown()
	default:
		log.Printf("dispatcher: unknown command code 0x%02X ignored", byte(cmd.Code))
		return
	}
	if err != nil {
		log.Printf("dispatcher: %s failed: %v", cmd.Code, err)
	}
}

// mirror republishes a received command for the observers, when MQTT
// is configured.
func mirror(client mqtt.Client, topic string, cmd command.Command) {
	if client == nil {
		return
	}
	msg := commandMsg{Code: cmd.Code.String(), Seq: cmd.Seq, Time: time.Now()}
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("dispatcher: json marshal error: %v", err)
		return
	}
	client.Publish(topic, 0, false, payload)
}
