package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/gesture_companion/internal/config"
	"github.com/relabs-tech/gesture_companion/internal/expression"
	"github.com/relabs-tech/gesture_companion/internal/orientation"
)

// displayData holds the latest data for the face display
type displayData struct {
	mu sync.RWMutex

	face     expression.State
	haveFace bool

	pose     orientation.Pose
	havePose bool
}

// RunDisplay drives the companion's SSD1306 face: it follows the
// expression topic and keeps the current pose on the bottom line.
func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: initialized")

	if err := showSplash(dev); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &displayData{}

	// Connect to MQTT
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	faceToken := client.Subscribe(cfg.TopicExpression, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var em expressionMsg
		if err := json.Unmarshal(msg.Payload(), &em); err != nil {
			log.Printf("display: expression unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.face = em.State
		data.haveFace = true
		data.mu.Unlock()
	})
	faceToken.Wait()
	if faceToken.Error() != nil {
		return faceToken.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicExpression)

	poseToken := client.Subscribe(cfg.TopicPose, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("display: pose unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.pose = p
		data.havePose = true
		data.mu.Unlock()
	})
	poseToken.Wait()
	if poseToken.Error() != nil {
		return poseToken.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicPose)

	// Display update loop
	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		data.mu.RLock()
		face := data.face
		haveFace := data.haveFace
		pose := data.pose
		havePose := data.havePose
		data.mu.RUnlock()

		if err := drawFace(dev, face, haveFace, pose, havePose); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

// drawFace renders the current expression with the pose on the bottom
// line.
func drawFace(dev *ssd1306.Dev, face expression.State, haveFace bool, pose orientation.Pose, havePose bool) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	// Blank image
	for i := 0; i < 1024; i++ {
		img.Pix[i] = 0
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	if !haveFace {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Companion"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
		return dev.Draw(dev.Bounds(), img, image.Point{})
	}

	var eyes, mouth string
	switch face {
	case expression.Smile:
		eyes, mouth = "^   ^", "\\___/"
	case expression.Sad:
		eyes, mouth = "T   T", "/---\\"
	default:
		eyes, mouth = "o   o", "-----"
	}

	drawer.Dot = fixed.P(46, 22)
	drawer.DrawBytes([]byte(eyes))
	drawer.Dot = fixed.P(46, 40)
	drawer.DrawBytes([]byte(mouth))

	if havePose {
		drawer.Dot = fixed.P(0, 62)
		drawer.DrawBytes([]byte(fmt.Sprintf("P:%6.1f R:%6.1f", pose.Pitch, pose.Roll)))
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func showSplash(dev *ssd1306.Dev) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	// Blank image
	for i := 0; i < 1024; i++ {
		img.Pix[i] = 0
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("Gesture"))

	drawer.Dot = fixed.P(10, 43)
	drawer.DrawBytes([]byte("Companion"))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}
