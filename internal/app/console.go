package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gesture_companion/internal/config"
	"github.com/relabs-tech/gesture_companion/internal/gesture"
	"github.com/relabs-tech/gesture_companion/internal/orientation"
)

// RunConsole subscribes to everything the companion publishes and
// prints one aligned line per message.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to orientation
	poseToken := client.Subscribe(cfg.TopicPose, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("console: pose unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[POSE]  PITCH=%6.2f  ROLL=%6.2f  |g|=%4.2f\n",
			p.Pitch, p.Roll, p.Mag,
		)
	})
	poseToken.Wait()
	if poseToken.Error() != nil {
		return poseToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicPose)

	// Subscribe to confirmed gestures
	gestureToken := client.Subscribe(cfg.TopicGesture, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev gesture.Event
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Printf("console: gesture unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[GEST]  %-10s  pitch=%6.2f  roll=%6.2f\n",
			ev.Kind, ev.Pitch, ev.Roll,
		)
	})
	gestureToken.Wait()
	if gestureToken.Error() != nil {
		return gestureToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicGesture)

	// Subscribe to commands going down the serial link
	commandToken := client.Subscribe(cfg.TopicCommand, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var cm commandMsg
		if err := json.Unmarshal(msg.Payload(), &cm); err != nil {
			log.Printf("console: command unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[CMD ]  %-11s  seq=%d\n",
			cm.Code, cm.Seq,
		)
	})
	commandToken.Wait()
	if commandToken.Error() != nil {
		return commandToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicCommand)

	// Subscribe to the face
	faceToken := client.Subscribe(cfg.TopicExpression, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var em expressionMsg
		if err := json.Unmarshal(msg.Payload(), &em); err != nil {
			log.Printf("console: expression unmarshal error: %v", err)
			return
		}

		fmt.Printf("[FACE]  %s\n", em.State)
	})
	faceToken.Wait()
	if faceToken.Error() != nil {
		return faceToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicExpression)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
