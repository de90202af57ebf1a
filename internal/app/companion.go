package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gesture_companion/internal/command"
	"github.com/relabs-tech/gesture_companion/internal/config"
	"github.com/relabs-tech/gesture_companion/internal/expression"
	"github.com/relabs-tech/gesture_companion/internal/frame"
	"github.com/relabs-tech/gesture_companion/internal/gesture"
	"github.com/relabs-tech/gesture_companion/internal/orientation"
	"github.com/relabs-tech/gesture_companion/internal/sensors"
	"github.com/relabs-tech/gesture_companion/internal/serialport"
)

// classifierConfig assembles the gesture thresholds from the loaded config.
func classifierConfig(cfg *config.Config) gesture.Config {
	return gesture.Config{
		PitchOnDeg:      cfg.PitchOnDeg,
		RollOnDeg:       cfg.RollOnDeg,
		LiftOnG:         cfg.LiftThresholdG,
		ReleaseFraction: cfg.ReleaseFraction,
		Hold:            time.Duration(cfg.HoldMS) * time.Millisecond,
		Cooldown:        time.Duration(cfg.CooldownMS) * time.Millisecond,
	}
}

// commandMapping assembles the gesture-to-command table from the loaded config.
func commandMapping(cfg *config.Config) (command.Mapping, error) {
	return command.ParseMapping(map[gesture.Kind]string{
		gesture.TiltLeft:  cfg.MapTiltLeft,
		gesture.TiltRight: cfg.MapTiltRight,
		gesture.TiltUp:    cfg.MapTiltUp,
		gesture.TiltDown:  cfg.MapTiltDown,
		gesture.Lift:      cfg.MapLift,
	})
}

// RunCompanion is the device half: it samples the accelerometer on a
// fixed tick, publishes pose/gesture/expression telemetry over MQTT and
// writes command frames down the serial link to the host.
func RunCompanion(useMock bool) error {
	log.Println("starting gesture-companion producer")

	cfg := config.Get()

	gcfg := classifierConfig(cfg)
	if err := gcfg.Validate(); err != nil {
		return fmt.Errorf("gesture thresholds: %w", err)
	}
	mapping, err := commandMapping(cfg)
	if err != nil {
		return err
	}

	// --- Choose accelerometer source (mock vs real IMU) ---
	var reader sensors.AccelReader
	if useMock {
		log.Println("using mock accelerometer")
		reader = sensors.NewMockReader(float64(cfg.IMUAccelScale))
	} else {
		mpu, err := sensors.NewMPU(cfg.IMUI2CBus, cfg.IMUI2CAddr)
		if err != nil {
			return fmt.Errorf("IMU init: %w", err)
		}
		defer mpu.Close()
		reader = mpu
	}
	held := sensors.NewHoldLast(reader)

	// --- Open the serial link to the host (optional) ---
	var link io.Writer
	if cfg.SerialPort == "" {
		log.Println("no serial port configured, telemetry only")
	} else {
		port, err := serialport.Open(cfg.SerialPort, uint(cfg.SerialBaud))
		if err != nil {
			return fmt.Errorf("serial open %s: %w", cfg.SerialPort, err)
		}
		defer port.Close()
		link = port
		log.Printf("serial link open on %s at %d baud", cfg.SerialPort, cfg.SerialBaud)
	}

	// --- Connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDCompanion)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)

	log.Println("connected to MQTT, starting tick loop")

	filter := orientation.NewFilter(cfg.FilterAlpha, float64(cfg.IMUAccelScale))
	classifier := gesture.NewClassifier(gcfg)
	encoder := command.NewEncoder(mapping)

	var lastFace expression.State

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(cfg.SampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			log.Println("shutting down")
			return nil

		case t := <-ticker.C:
			// 1) Read the accelerometer. Transient failures reuse the
			// held sample; a sensor that never produced data skips the
			// tick.
			x, y, z, err := held.ReadAccel()
			if err != nil {
				log.Printf("accel read error: %v", err)
				continue
			}

			// 2) Orientation
			pose := filter.Update(orientation.Sample{X: x, Y: y, Z: z, Time: t})

			if payload, err := json.Marshal(pose); err != nil {
				log.Printf("json marshal error (pose): %v", err)
			} else if token := client.Publish(cfg.TopicPose, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (pose): %v", token.Error())
			}

			// 3) Gesture detection and the command it triggers
			if ev, ok := classifier.Update(pose); ok {
				log.Printf("gesture confirmed: %s (pitch=%.1f roll=%.1f)", ev.Kind, ev.Pitch, ev.Roll)

				if payload, err := json.Marshal(ev); err != nil {
					log.Printf("json marshal error (gesture): %v", err)
				} else if token := client.Publish(cfg.TopicGesture, 0, false, payload); token.Wait() && token.Error() != nil {
					log.Printf("MQTT publish error (gesture): %v", token.Error())
				}

				if cmd, ok := encoder.Encode(ev); ok {
					sendCommand(client, cfg.TopicCommand, link, cmd, t)
				}
			}

			// 4) Expression follows the pose; publish retained on change
			if face := expression.FromPose(pose, gcfg); face != lastFace {
				lastFace = face
				msg := expressionMsg{State: face, Time: t}
				if payload, err := json.Marshal(msg); err != nil {
					log.Printf("json marshal error (expression): %v", err)
				} else if token := client.Publish(cfg.TopicExpression, 0, true, payload); token.Wait() && token.Error() != nil {
					log.Printf("MQTT publish error (expression): %v", token.Error())
				}
			}
		}
	}
}

// sendCommand publishes the command for observers and writes its frame
// down the serial link. The link is fire and forget: write failures are
// logged and the frame dropped, never retried.
func sendCommand(client mqtt.Client, topic string, link io.Writer, cmd command.Command, t time.Time) {
	log.Printf("command %s seq=%d", cmd.Code, cmd.Seq)

	msg := commandMsg{Code: cmd.Code.String(), Seq: cmd.Seq, Time: t}
	if payload, err := json.Marshal(msg); err != nil {
		log.Printf("json marshal error (command): %v", err)
	} else if token := client.Publish(topic, 0, false, payload); token.Wait() && token.Error() != nil {
		log.Printf("MQTT publish error (command): %v", token.Error())
	}

	if link == nil {
		return
	}
	if _, err := link.Write(frame.Marshal(cmd)); err != nil {
		log.Printf("serial write error (dropping frame): %v", err)
	}
}
