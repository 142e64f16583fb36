package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel    zapcore.Level
	Device      DeviceConfig      `mapstructure:"device"`
	Coordinator CoordinatorConfig `mapstructure:"coordinator"`
	MQTT        MQTTConfig        `mapstructure:"mqtt"`
	History     HistoryConfig     `mapstructure:"history"`
	Port        uint              `mapstructure:"port" validate:"required,lte=65535"`
	HttpLog     bool              `mapstructure:"http_log"`
}

type DeviceConfig struct {
	// Address identifies the radar (its BLE MAC). It keys entity unique ids.
	Address           string `validate:"required"`
	Name              string `validate:"required"`
	Mock              bool
	SerialPort        string `mapstructure:"serial_port" validate:"required_unless=Mock true"`
	BaudRate          int    `mapstructure:"baud_rate" validate:"gte=9600"`
	ReadTimeoutMillis uint32 `mapstructure:"read_timeout_millis" validate:"gte=100"`
}

type CoordinatorConfig struct {
	UpdateIntervalMillis uint32 `mapstructure:"update_interval_millis" validate:"gte=100"`
	MaxFailures          uint32 `mapstructure:"max_failures" validate:"gte=1"`
}

type MQTTConfig struct {
	Host              string `validate:"required"`
	Port              int    `validate:"gt=0,lte=65535"`
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

type HistoryConfig struct {
	Enable bool
	Path   string `validate:"required_if=Enable true"`

	// MaxAgeHours is how long readings are kept. 0 keeps them forever.
	MaxAgeHours uint32 `mapstructure:"max_age_hours"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks config bounds and normalizes the MQTT topics.
func (cfg *Config) Validate() error {
	if err := getValidator().Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			e := validationErrors[0]
			return fmt.Errorf("config param %s failed on the '%s' tag", e.Namespace(), e.Tag())
		}
		return err
	}

	baseTopic, err := CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	hadBaseTopic, err := CheckMQTTTopic(cfg.MQTT.HADiscoveryTopic)
	if err != nil {
		return errors.New("invalid homeassistant discovery topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.HADiscoveryTopic = hadBaseTopic

	return nil
}

var topicRegexp = regexp.MustCompile("^[a-z0-9_]+$")

func CheckMQTTTopic(baseTopic string) (string, error) {
	lowerBaseTopic := strings.ToLower(baseTopic)
	if !topicRegexp.MatchString(lowerBaseTopic) {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}

// ParseLogLevel maps the log_level setting to a zap level. Unknown values
// fall back to info.
func ParseLogLevel(level string) zapcore.Level {
	switch level {
	case "trace", "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
