package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gesture_companion/internal/config"
	"github.com/relabs-tech/gesture_companion/internal/gesture"
	"github.com/relabs-tech/gesture_companion/internal/orientation"
)

// Messages delivered to the monitor model. The MQTT callbacks decode
// payloads into these and hand them over with Send.
type (
	poseMsg        orientation.Pose
	gestureMsg     gesture.Event
	commandSeenMsg commandMsg
	faceMsg        expressionMsg
	tickMsg        time.Time
)

// maxEvents bounds the gesture/command history shown on screen.
const maxEvents = 12

// Pre-built styles
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	styleLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	styleValue = lipgloss.NewStyle().
			Bold(true)

	styleEvent = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

	styleHelp = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// monitorModel is the root Bubble Tea model for the live monitor.
type monitorModel struct {
	width  int
	height int

	pose     orientation.Pose
	havePose bool

	face     expressionMsg
	haveFace bool

	events []string
}

func (m monitorModel) Init() tea.Cmd {
	return tickCmd()
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		return m, tickCmd()

	case poseMsg:
		m.pose = orientation.Pose(msg)
		m.havePose = true
		return m, nil

	case faceMsg:
		m.face = expressionMsg(msg)
		m.haveFace = true
		return m, nil

	case gestureMsg:
		line := fmt.Sprintf("%s  gesture %-10s pitch=%6.1f roll=%6.1f",
			msg.ConfirmedAt.Format("15:04:05"), msg.Kind, msg.Pitch, msg.Roll)
		m.events = appendEvent(m.events, line)
		return m, nil

	case commandSeenMsg:
		line := fmt.Sprintf("%s  command %-11s seq=%d",
			msg.Time.Format("15:04:05"), msg.Code, msg.Seq)
		m.events = appendEvent(m.events, line)
		return m, nil
	}

	return m, nil
}

func (m monitorModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("gesture companion monitor"))
	b.WriteString("\n\n")

	if m.havePose {
		b.WriteString(fmt.Sprintf("%s %7.2f  %s\n",
			styleLabel.Render("pitch"), m.pose.Pitch, gauge(m.pose.Pitch, 45, 41)))
		b.WriteString(fmt.Sprintf("%s %7.2f  %s\n",
			styleLabel.Render(" roll"), m.pose.Roll, gauge(m.pose.Roll, 45, 41)))
		b.WriteString(fmt.Sprintf("%s %7.2f\n",
			styleLabel.Render("  |g|"), m.pose.Mag))
	} else {
		b.WriteString(styleLabel.Render("waiting for pose data..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	face := "unknown"
	if m.haveFace {
		face = string(m.face.State)
	}
	b.WriteString(fmt.Sprintf("%s %s\n", styleLabel.Render(" face"), styleValue.Render(face)))

	b.WriteString("\n")
	b.WriteString(styleLabel.Render("events"))
	b.WriteString("\n")
	if len(m.events) == 0 {
		b.WriteString(styleLabel.Render("  none yet"))
		b.WriteString("\n")
	} else {
		for _, ev := range m.events {
			b.WriteString(styleEvent.Render("  " + ev))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styleHelp.Render("q to quit"))

	return stylePanel.Render(b.String())
}

// appendEvent prepends line so the newest event shows on top.
func appendEvent(events []string, line string) []string {
	events = append([]string{line}, events...)
	if len(events) > maxEvents {
		events = events[:maxEvents]
	}
	return events
}

// gauge renders value as a horizontal bar centered on zero: '|' marks
// the middle and the fill grows toward the sign of value, clamped at
// +-limit.
func gauge(value, limit float64, width int) string {
	if width < 3 {
		width = 3
	}
	cells := make([]rune, width)
	for i := range cells {
		cells[i] = '·'
	}
	mid := width / 2
	cells[mid] = '|'

	frac := value / limit
	if frac > 1 {
		frac = 1
	}
	if frac < -1 {
		frac = -1
	}
	fill := int(frac * float64(mid))
	if fill > 0 {
		for i := mid + 1; i <= mid+fill && i < width; i++ {
			cells[i] = '█'
		}
	} else if fill < 0 {
		for i := mid - 1; i >= mid+fill && i >= 0; i-- {
			cells[i] = '█'
		}
	}
	return string(cells)
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// RunMonitor shows live pose, expression and event telemetry from the
// broker in an interactive terminal view.
func RunMonitor() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDMonitor)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)

	p := tea.NewProgram(monitorModel{}, tea.WithAltScreen())

	// Subscriptions feed the model through p.Send, which is safe to
	// call from the MQTT callback goroutines.
	poseToken := client.Subscribe(cfg.TopicPose, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var pose orientation.Pose
		if err := json.Unmarshal(msg.Payload(), &pose); err != nil {
			return
		}
		p.Send(poseMsg(pose))
	})
	poseToken.Wait()
	if poseToken.Error() != nil {
		return poseToken.Error()
	}

	gestureToken := client.Subscribe(cfg.TopicGesture, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev gesture.Event
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			return
		}
		p.Send(gestureMsg(ev))
	})
	gestureToken.Wait()
	if gestureToken.Error() != nil {
		return gestureToken.Error()
	}

	commandToken := client.Subscribe(cfg.TopicCommand, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var cm commandMsg
		if err := json.Unmarshal(msg.Payload(), &cm); err != nil {
			return
		}
		p.Send(commandSeenMsg(cm))
	})
	commandToken.Wait()
	if commandToken.Error() != nil {
		return commandToken.Error()
	}

	faceToken := client.Subscribe(cfg.TopicExpression, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var em expressionMsg
		if err := json.Unmarshal(msg.Payload(), &em); err != nil {
			return
		}
		p.Send(faceMsg(em))
	})
	faceToken.Wait()
	if faceToken.Error() != nil {
		return faceToken.Error()
	}

	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
