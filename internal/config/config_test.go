package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func validConfig() Config {
	return Config{
		Device: DeviceConfig{
			Address:           "AA:BB:CC:DD:EE:FF",
			Name:              "Living room radar",
			SerialPort:        "/dev/ttyUSB0",
			BaudRate:          256000,
			ReadTimeoutMillis: 1000,
		},
		Coordinator: CoordinatorConfig{
			UpdateIntervalMillis: 500,
			MaxFailures:          3,
		},
		MQTT: MQTTConfig{
			Host:             "localhost",
			Port:             1883,
			BaseTopic:        "LD2450",
			HADiscoveryTopic: "homeassistant",
		},
		Port: 8080,
	}
}

func TestValidateNormalizesTopics(t *testing.T) {

	cfg := validConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "ld2450", cfg.MQTT.BaseTopic)
	assert.Equal(t, "homeassistant", cfg.MQTT.HADiscoveryTopic)
}

func TestValidateBounds(t *testing.T) {

	cfg := validConfig()
	cfg.Coordinator.UpdateIntervalMillis = 10
	assert.ErrorContains(t, cfg.Validate(), "UpdateIntervalMillis")

	cfg = validConfig()
	cfg.Device.SerialPort = ""
	assert.ErrorContains(t, cfg.Validate(), "SerialPort")

	cfg.Device.Mock = true
	assert.NoError(t, cfg.Validate(), "serial port not needed when mocked")

	cfg = validConfig()
	cfg.History.Enable = true
	assert.ErrorContains(t, cfg.Validate(), "Path")

	cfg = validConfig()
	cfg.MQTT.BaseTopic = "ld2450/radar"
	assert.Error(t, cfg.Validate())
}

func TestCheckMQTTTopic(t *testing.T) {

	topic, err := CheckMQTTTopic("Radar_01")
	require.NoError(t, err)
	assert.Equal(t, "radar_01", topic)

	_, err = CheckMQTTTopic("radar#")
	assert.Error(t, err)

	_, err = CheckMQTTTopic("")
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {

	assert.Equal(t, zapcore.DebugLevel, ParseLogLevel("trace"))
	assert.Equal(t, zapcore.WarnLevel, ParseLogLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, ParseLogLevel("verbose"))
}
