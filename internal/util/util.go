package util

import (
	"github.com/berfenger/ld2450ble2mqtt/internal/config"
	"github.com/berfenger/ld2450ble2mqtt/pkg/ld2450"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		Device: config.DeviceConfig{
			Address:           ld2450.TestReaderAddress,
			Name:              "Test radar",
			Mock:              true,
			BaudRate:          ld2450.DefaultBaudRate,
			ReadTimeoutMillis: 500,
		},
		Coordinator: config.CoordinatorConfig{
			UpdateIntervalMillis: 100,
			MaxFailures:          2,
		},
		MQTT: config.MQTTConfig{
			Host:              "localhost",
			Port:              1883,
			BaseTopic:         "ld2450",
			HADiscoveryEnable: true,
			HADiscoveryTopic:  "homeassistant",
		},
		Port: 8080,
	}
}
