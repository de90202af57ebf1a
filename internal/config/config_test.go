package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig drops a config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "companion_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ---------------------------------------------------------------------------
// Defaults and overrides
// ---------------------------------------------------------------------------

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "MQTT_BROKER=tcp://localhost:1883\n"))
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "companion-producer", cfg.MQTTClientIDCompanion)
	assert.Equal(t, "companion/pose", cfg.TopicPose)
	assert.Equal(t, "companion/gesture", cfg.TopicGesture)
	assert.Equal(t, "companion/command", cfg.TopicCommand)
	assert.Equal(t, "companion/expression", cfg.TopicExpression)
	assert.Equal(t, uint16(0x68), cfg.IMUI2CAddr)
	assert.Equal(t, 16384, cfg.IMUAccelScale)
	assert.InDelta(t, 0.35, cfg.FilterAlpha, 0.001)
	assert.InDelta(t, 20, cfg.PitchOnDeg, 0.001)
	assert.InDelta(t, 1.35, cfg.LiftThresholdG, 0.001)
	assert.InDelta(t, 0.75, cfg.ReleaseFraction, 0.001)
	assert.Equal(t, 150, cfg.HoldMS)
	assert.Equal(t, 300, cfg.CooldownMS)
	assert.Equal(t, "prev_track", cfg.MapTiltLeft)
	assert.Equal(t, "play_pause", cfg.MapLift)
	assert.Equal(t, "", cfg.SerialPort)
	assert.Equal(t, 115200, cfg.SerialBaud)
	assert.Equal(t, 20, cfg.SampleInterval)
	assert.Equal(t, 8080, cfg.WebServerPort)
	assert.Equal(t, 100, cfg.DisplayUpdateInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Parallel()

	content := `# Companion configuration
MQTT_BROKER=tcp://10.0.0.5:1883
MQTT_CLIENT_ID_COMPANION=bench-producer

TOPIC_POSE=bench/pose
IMU_I2C_BUS=/dev/i2c-1
IMU_I2C_ADDR=0x69
IMU_ACCEL_SCALE=8192
FILTER_ALPHA=0.5
PITCH_ON_DEG=25
ROLL_ON_DEG=18
LIFT_THRESHOLD_G=1.5
RELEASE_FRACTION=0.6
HOLD_MS=200
COOLDOWN_MS=0
GESTURE_MAP_TILT_UP=play_pause
GESTURE_MAP_LIFT=none
SERIAL_PORT=/dev/ttyUSB0
SERIAL_BAUD=57600
SAMPLE_INTERVAL=10
WEB_SERVER_PORT=9090
DISPLAY_UPDATE_INTERVAL=250
`
	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)

	assert.Equal(t, "tcp://10.0.0.5:1883", cfg.MQTTBroker)
	assert.Equal(t, "bench-producer", cfg.MQTTClientIDCompanion)
	assert.Equal(t, "bench/pose", cfg.TopicPose)
	assert.Equal(t, "/dev/i2c-1", cfg.IMUI2CBus)
	assert.Equal(t, uint16(0x69), cfg.IMUI2CAddr)
	assert.Equal(t, 8192, cfg.IMUAccelScale)
	assert.InDelta(t, 0.5, cfg.FilterAlpha, 0.001)
	assert.InDelta(t, 25, cfg.PitchOnDeg, 0.001)
	assert.InDelta(t, 18, cfg.RollOnDeg, 0.001)
	assert.InDelta(t, 1.5, cfg.LiftThresholdG, 0.001)
	assert.InDelta(t, 0.6, cfg.ReleaseFraction, 0.001)
	assert.Equal(t, 200, cfg.HoldMS)
	assert.Equal(t, 0, cfg.CooldownMS)
	assert.Equal(t, "play_pause", cfg.MapTiltUp)
	assert.Equal(t, "none", cfg.MapLift)
	assert.Equal(t, "/dev/ttyUSB0", cfg.SerialPort)
	assert.Equal(t, 57600, cfg.SerialBaud)
	assert.Equal(t, 10, cfg.SampleInterval)
	assert.Equal(t, 9090, cfg.WebServerPort)
	assert.Equal(t, 250, cfg.DisplayUpdateInterval)

	// Untouched keys keep their defaults.
	assert.Equal(t, "companion/command", cfg.TopicCommand)
	assert.Equal(t, "volume_down", cfg.MapTiltDown)
}

func TestLoadTrimsWhitespace(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "  MQTT_BROKER = tcp://host:1883  \n"))
	require.NoError(t, err)
	assert.Equal(t, "tcp://host:1883", cfg.MQTTBroker)
}

// ---------------------------------------------------------------------------
// Rejections
// ---------------------------------------------------------------------------

func TestLoadRejectsMissingBroker(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, "SERIAL_BAUD=9600\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MQTT_BROKER")
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, "MQTT_BROKER=tcp://localhost:1883\nBOGUS_KEY=1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestLoadRejectsInvalidLine(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, "MQTT_BROKER=tcp://localhost:1883\nnot a key value pair\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config line")
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		line     string
		expected string
	}{
		{"IMU_I2C_ADDR=zz", "IMU_I2C_ADDR"},
		{"IMU_ACCEL_SCALE=0", "IMU_ACCEL_SCALE"},
		{"FILTER_ALPHA=0", "FILTER_ALPHA"},
		{"FILTER_ALPHA=1.2", "FILTER_ALPHA"},
		{"PITCH_ON_DEG=-5", "PITCH_ON_DEG"},
		{"ROLL_ON_DEG=0", "ROLL_ON_DEG"},
		{"LIFT_THRESHOLD_G=1.0", "LIFT_THRESHOLD_G"},
		{"RELEASE_FRACTION=1", "RELEASE_FRACTION"},
		{"HOLD_MS=0", "HOLD_MS"},
		{"COOLDOWN_MS=-1", "COOLDOWN_MS"},
		{"GESTURE_MAP_TILT_LEFT=scream", "GESTURE_MAP_TILT_LEFT"},
		{"SERIAL_BAUD=0", "SERIAL_BAUD"},
		{"SAMPLE_INTERVAL=0", "SAMPLE_INTERVAL"},
		{"DISPLAY_UPDATE_INTERVAL=0", "DISPLAY_UPDATE_INTERVAL"},
	}

	for _, tc := range testCases {
		content := "MQTT_BROKER=tcp://localhost:1883\n" + tc.line + "\n"
		_, err := Load(writeConfig(t, content))
		require.Error(t, err, tc.line)
		assert.Contains(t, err.Error(), tc.expected, tc.line)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open config file")
}
