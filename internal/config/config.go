package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker             string
	MQTTClientIDCompanion  string
	MQTTClientIDDispatcher string
	MQTTClientIDConsole    string
	MQTTClientIDWeb        string
	MQTTClientIDDisplay    string
	MQTTClientIDMonitor    string

	// Topics
	TopicPose       string
	TopicGesture    string
	TopicCommand    string
	TopicExpression string

	// IMU Hardware
	IMUI2CBus     string // empty = first available bus
	IMUI2CAddr    uint16
	IMUAccelScale int // LSB per g

	// Orientation filtering
	FilterAlpha float64

	// Gesture detection
	PitchOnDeg      float64
	RollOnDeg       float64
	LiftThresholdG  float64
	ReleaseFraction float64
	HoldMS          int
	CooldownMS      int

	// Gesture to command assignment. Each value is a command name or
	// "none" to leave the gesture unassigned.
	MapTiltLeft  string
	MapTiltRight string
	MapTiltUp    string
	MapTiltDown  string
	MapLift      string

	// Serial link to the host
	SerialPort string // empty disables the link
	SerialBaud int

	// Timing
	SampleInterval int // milliseconds

	// Web Server
	WebServerPort int

	// Display
	DisplayUpdateInterval int // milliseconds
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported (lowercase) so other packages cannot access it directly.
//     This enforces encapsulation and prevents external code from modifying config without proper locking.
//     Has package-level scope (visible to all functions in this package, persists for program lifetime).
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access. Write lock (Lock) for initialization,
//     read lock (RLock) for Get() allows multiple concurrent readers without blocking each other.
//
// External code must use InitGlobal() to set and Get() to read, ensuring thread safety.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// defaultConfig returns the built-in defaults. The config file only
// needs to override what differs; MQTT_BROKER is the one key every
// deployment must provide.
func defaultConfig() *Config {
	return &Config{
		MQTTClientIDCompanion:  "companion-producer",
		MQTTClientIDDispatcher: "companion-dispatcher",
		MQTTClientIDConsole:    "companion-console",
		MQTTClientIDWeb:        "companion-web",
		MQTTClientIDDisplay:    "companion-display",
		MQTTClientIDMonitor:    "companion-monitor",

		TopicPose:       "companion/pose",
		TopicGesture:    "companion/gesture",
		TopicCommand:    "companion/command",
		TopicExpression: "companion/expression",

		IMUI2CAddr:    0x68,
		IMUAccelScale: 16384,

		FilterAlpha: 0.35,

		PitchOnDeg:      20,
		RollOnDeg:       20,
		LiftThresholdG:  1.35,
		ReleaseFraction: 0.75,
		HoldMS:          150,
		CooldownMS:      300,

		MapTiltLeft:  "prev_track",
		MapTiltRight: "next_track",
		MapTiltUp:    "volume_up",
		MapTiltDown:  "volume_down",
		MapLift:      "play_pause",

		SerialBaud: 115200,

		SampleInterval: 20,

		WebServerPort: 8080,

		DisplayUpdateInterval: 100,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaultConfig()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validCommandName reports whether value names a dispatchable command.
func validCommandName(value string) bool {
	switch value {
	case "play_pause", "next_track", "prev_track", "volume_up", "volume_down", "none":
		return true
	}
	return false
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_COMPANION":
		c.MQTTClientIDCompanion = value
	case "MQTT_CLIENT_ID_DISPATCHER":
		c.MQTTClientIDDispatcher = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "MQTT_CLIENT_ID_MONITOR":
		c.MQTTClientIDMonitor = value

	// Topics
	case "TOPIC_POSE":
		c.TopicPose = value
	case "TOPIC_GESTURE":
		c.TopicGesture = value
	case "TOPIC_COMMAND":
		c.TopicCommand = value
	case "TOPIC_EXPRESSION":
		c.TopicExpression = value

	// IMU Hardware
	case "IMU_I2C_BUS":
		c.IMUI2CBus = value
	case "IMU_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid IMU_I2C_ADDR %q: %w", value, err)
		}
		c.IMUI2CAddr = uint16(addr)
	case "IMU_ACCEL_SCALE":
		scale, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_SCALE %q: %w", value, err)
		}
		if scale <= 0 {
			return fmt.Errorf("IMU_ACCEL_SCALE must be positive, got %d", scale)
		}
		c.IMUAccelScale = scale

	// Orientation filtering
	case "FILTER_ALPHA":
		alpha, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid FILTER_ALPHA %q: %w", value, err)
		}
		if alpha <= 0 || alpha > 1 {
			return fmt.Errorf("FILTER_ALPHA must be in (0, 1], got %g", alpha)
		}
		c.FilterAlpha = alpha

	// Gesture detection
	case "PITCH_ON_DEG":
		deg, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid PITCH_ON_DEG %q: %w", value, err)
		}
		if deg <= 0 {
			return fmt.Errorf("PITCH_ON_DEG must be positive, got %g", deg)
		}
		c.PitchOnDeg = deg
	case "ROLL_ON_DEG":
		deg, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid ROLL_ON_DEG %q: %w", value, err)
		}
		if deg <= 0 {
			return fmt.Errorf("ROLL_ON_DEG must be positive, got %g", deg)
		}
		c.RollOnDeg = deg
	case "LIFT_THRESHOLD_G":
		g, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid LIFT_THRESHOLD_G %q: %w", value, err)
		}
		if g <= 1 {
			return fmt.Errorf("LIFT_THRESHOLD_G must be above 1 (rest gravity), got %g", g)
		}
		c.LiftThresholdG = g
	case "RELEASE_FRACTION":
		frac, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid RELEASE_FRACTION %q: %w", value, err)
		}
		if frac <= 0 || frac >= 1 {
			return fmt.Errorf("RELEASE_FRACTION must be between 0 and 1, got %g", frac)
		}
		c.ReleaseFraction = frac
	case "HOLD_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid HOLD_MS %q: %w", value, err)
		}
		if ms <= 0 {
			return fmt.Errorf("HOLD_MS must be positive, got %d", ms)
		}
		c.HoldMS = ms
	case "COOLDOWN_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid COOLDOWN_MS %q: %w", value, err)
		}
		if ms < 0 {
			return fmt.Errorf("COOLDOWN_MS must not be negative, got %d", ms)
		}
		c.CooldownMS = ms

	// Gesture to command assignment
	case "GESTURE_MAP_TILT_LEFT":
		if !validCommandName(value) {
			return fmt.Errorf("GESTURE_MAP_TILT_LEFT: unknown command %q", value)
		}
		c.MapTiltLeft = value
	case "GESTURE_MAP_TILT_RIGHT":
		if !validCommandName(value) {
			return fmt.Errorf("GESTURE_MAP_TILT_RIGHT: unknown command %q", value)
		}
		c.MapTiltRight = value
	case "GESTURE_MAP_TILT_UP":
		if !validCommandName(value) {
			return fmt.Errorf("GESTURE_MAP_TILT_UP: unknown command %q", value)
		}
		c.MapTiltUp = value
	case "GESTURE_MAP_TILT_DOWN":
		if !validCommandName(value) {
			return fmt.Errorf("GESTURE_MAP_TILT_DOWN: unknown command %q", value)
		}
		c.MapTiltDown = value
	case "GESTURE_MAP_LIFT":
		if !validCommandName(value) {
			return fmt.Errorf("GESTURE_MAP_LIFT: unknown command %q", value)
		}
		c.MapLift = value

	// Serial link
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD":
		baud, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD %q: %w", value, err)
		}
		if baud <= 0 {
			return fmt.Errorf("SERIAL_BAUD must be positive, got %d", baud)
		}
		c.SerialBaud = baud

	// Timing
	case "SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_INTERVAL %q: %w", value, err)
		}
		if interval <= 0 {
			return fmt.Errorf("SAMPLE_INTERVAL must be positive, got %d", interval)
		}
		c.SampleInterval = interval

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		if interval <= 0 {
			return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive, got %d", interval)
		}
		c.DisplayUpdateInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
// Acquires write lock (configMu.Lock) during initialization to prevent concurrent access.
// This is the only function that can set globalConfig.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
// Uses read lock (configMu.RLock) to allow multiple concurrent readers without blocking.
// This is thread-safe and efficient for concurrent access across goroutines.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
