// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package serialport

import (
	"fmt"
	"io"
	"path/filepath"

	serial "github.com/jacobsa/go-serial/serial"
)

// globs matched when auto-detecting the companion's serial port, in
// preference order. They cover the usual USB-serial names on Linux and
// macOS.
var globs = []string{
	"/dev/ttyUSB*",
	"/dev/ttyACM*",
	"/dev/tty.usbserial*",
	"/dev/tty.usbmodem*",
}

// Open opens a serial port in the 8N1 framing the companion link uses.
func Open(port string, baud uint) (io.ReadWriteCloser, error) {
	opts := serial.OpenOptions{
		PortName:              port,
		BaudRate:              baud,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	return serial.Open(opts)
}

// Candidates lists serial devices that look like the companion.
func Candidates() []string {
	var found []string
	for _, g := range globs {
		matches, err := filepath.Glob(g)
		if err != nil {
			continue
		}
		found = append(found, matches...)
	}
	return found
}

// Detect picks the first plausible serial device.
func Detect() (string, error) {
	found := Candidates()
	if len(found) == 0 {
		return "", fmt.Errorf("no serial device found (tried %v)", globs)
	}
	return found[0], nil
}
