// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"fmt"
	"time"

	"github.com/relabs-tech/gesture_companion/internal/command"
	"github.com/relabs-tech/gesture_companion/internal/gesture"
	"github.com/relabs-tech/gesture_companion/internal/orientation"
	"github.com/relabs-tech/gesture_companion/internal/sensors"
)

// RunMockConsole runs the full gesture pipeline against the synthetic
// accelerometer and prints what it sees. No broker or hardware needed.
func RunMockConsole() error {
	const scale = 16384

	src := sensors.NewMockReader(scale)
	filter := orientation.NewFilter(0.35, scale)
	classifier := gesture.NewClassifier(gesture.DefaultConfig())
	encoder := command.NewEncoder(command.DefaultMapping())

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	tick := 0
	for range ticker.C {
		x, y, z, err := src.ReadAccel()
		if err != nil {
			return err
		}

		pose := filter.Update(orientation.Sample{X: x, Y: y, Z: z, Time: time.Now()})

		tick++
		if tick%10 == 0 {
			fmt.Printf(
				"PITCH=%6.2f  ROLL=%6.2f  |g|=%4.2f\n",
				pose.Pitch,
				pose.Roll,
				pose.Mag,
			)
		}

		ev, ok := classifier.Update(pose)
		if !ok {
			continue
		}
		fmt.Printf(">>> %s\n", ev.Kind)
		if cmd, ok := encoder.Encode(ev); ok {
			fmt.Printf("    ->  %s seq=%d\n", cmd.Code, cmd.Seq)
		}
	}
	return nil
}
