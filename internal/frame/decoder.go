// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package frame

import (
	"bytes"

	"github.com/relabs-tech/gesture_companion/internal/command"
)

// Decoder reassembles frames from an arbitrarily chunked byte stream.
// After corruption it resynchronizes by scanning for the next start
// marker, one byte at a time.
type Decoder struct {
	buf       []byte
	corrupted int
	discarded int
}

// Feed appends received bytes and returns every complete frame decoded
// so far. A trailing partial frame stays buffered for the next call.
func (d *Decoder) Feed(p []byte) []command.Command {
	d.buf = append(d.buf, p...)

	var out []command.Command
	for {
		// Drop everything ahead of the next start marker.
		i := bytes.IndexByte(d.buf, StartMarker)
		if i < 0 {
			d.discarded += len(d.buf)
			d.buf = d.buf[:0]
			break
		}
		if i > 0 {
			d.discarded += i
			d.buf = d.buf[i:]
		}

		// Wait for the whole frame.
		if len(d.buf) < FrameLen {
			break
		}

		cmd, err := Unmarshal(d.buf[:FrameLen])
		if err != nil {
			// Treat this marker as noise and rescan one byte later.
			d.corrupted++
			d.discarded++
			d.buf = d.buf[1:]
			continue
		}

		out = append(out, cmd)
		d.buf = d.buf[FrameLen:]
	}
	return out
}

// Corrupted returns how many frame starts failed validation.
func (d *Decoder) Corrupted() int { return d.corrupted }

// Discarded returns how many bytes were skipped while resynchronizing.
func (d *Decoder) Discarded() int { return d.discarded }
