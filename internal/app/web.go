package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/gesture_companion/internal/config"
	"github.com/relabs-tech/gesture_companion/internal/gesture"
	"github.com/relabs-tech/gesture_companion/internal/orientation"
)

// webState is the latest snapshot of everything the companion publishes.
type webState struct {
	mu sync.RWMutex

	pose     orientation.Pose
	havePose bool

	lastGesture gesture.Event
	haveGesture bool

	lastCommand commandMsg
	haveCommand bool

	face     expressionMsg
	haveFace bool
}

// stateDoc is the JSON document served over /api/state and pushed on
// the websocket. Sections the companion has not reported yet are
// omitted.
type stateDoc struct {
	Pose       *orientation.Pose `json:"pose,omitempty"`
	Gesture    *gesture.Event    `json:"gesture,omitempty"`
	Command    *commandMsg       `json:"command,omitempty"`
	Expression *expressionMsg    `json:"expression,omitempty"`
}

func (s *webState) snapshot() stateDoc {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc stateDoc
	if s.havePose {
		p := s.pose
		doc.Pose = &p
	}
	if s.haveGesture {
		g := s.lastGesture
		doc.Gesture = &g
	}
	if s.haveCommand {
		c := s.lastCommand
		doc.Command = &c
	}
	if s.haveFace {
		f := s.face
		doc.Expression = &f
	}
	return doc
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func RunWeb() error {
	cfg := config.Get()

	state := &webState{}

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to the companion topics and keep the latest of each
	poseToken := client.Subscribe(cfg.TopicPose, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("web: pose unmarshal error: %v", err)
			return
		}
		state.mu.Lock()
		state.pose = p
		state.havePose = true
		state.mu.Unlock()
	})
	poseToken.Wait()
	if poseToken.Error() != nil {
		return poseToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicPose)

	gestureToken := client.Subscribe(cfg.TopicGesture, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev gesture.Event
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Printf("web: gesture unmarshal error: %v", err)
			return
		}
		state.mu.Lock()
		state.lastGesture = ev
		state.haveGesture = true
		state.mu.Unlock()
	})
	gestureToken.Wait()
	if gestureToken.Error() != nil {
		return gestureToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicGesture)

	commandToken := client.Subscribe(cfg.TopicCommand, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var cm commandMsg
		if err := json.Unmarshal(msg.Payload(), &cm); err != nil {
			log.Printf("web: command unmarshal error: %v", err)
			return
		}
		state.mu.Lock()
		state.lastCommand = cm
		state.haveCommand = true
		state.mu.Unlock()
	})
	commandToken.Wait()
	if commandToken.Error() != nil {
		return commandToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicCommand)

	faceToken := client.Subscribe(cfg.TopicExpression, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var em expressionMsg
		if err := json.Unmarshal(msg.Payload(), &em); err != nil {
			log.Printf("web: expression unmarshal error: %v", err)
			return
		}
		state.mu.Lock()
		state.face = em
		state.haveFace = true
		state.mu.Unlock()
	})
	faceToken.Wait()
	if faceToken.Error() != nil {
		return faceToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicExpression)

	// 3) JSON API endpoint: latest pose
	http.HandleFunc("/api/orientation", func(w http.ResponseWriter, r *http.Request) {
		state.mu.RLock()
		defer state.mu.RUnlock()

		if !state.havePose {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(state.pose); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// 4) JSON API endpoint: the combined snapshot
	http.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(state.snapshot()); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// 5) WebSocket push of the combined snapshot
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		go pushState(conn, state)
	})

	// 6) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}

// pushState streams the combined snapshot every 200ms until the client
// goes away.
func pushState(conn *websocket.Conn, state *webState) {
	defer conn.Close()

	// Drain client frames so close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.WriteJSON(state.snapshot()); err != nil {
			return
		}
	}
}
