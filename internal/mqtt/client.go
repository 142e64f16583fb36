package mqtt

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/berfenger/ld2450ble2mqtt/internal/config"
	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	MQTT_PAYLOAD_ONLINE  = "online"
	MQTT_PAYLOAD_OFFLINE = "offline"
	MQTT_PAYLOAD_ON      = "on"
	MQTT_PAYLOAD_OFF     = "off"
)

func OptsFromConfig(cfg *config.Config) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTT.Host, cfg.MQTT.Port))
	opts.SetClientID(fmt.Sprintf("ld2450_%d", rand.Intn(1000)))
	if cfg.MQTT.Username != "" && cfg.MQTT.Password != "" {
		opts.SetUsername(cfg.MQTT.Username)
		opts.SetPassword(cfg.MQTT.Password)
	}
	opts.WillEnabled = true
	opts.WillPayload = []byte(MQTT_PAYLOAD_OFFLINE)
	opts.WillRetained = true
	opts.WillTopic = bridgeStateTopic(cfg.MQTT.BaseTopic)
	opts.WillQos = 0

	return opts
}

func CreateMQTTClient(cfg *config.Config, opts *mqtt.ClientOptions, onConnectHandler func(client mqtt.Client),
	onConnectionLostHandler func(mqtt.Client, error)) *MQTTClient {
	if onConnectHandler != nil {
		opts.OnConnect = onConnectHandler
	}
	if onConnectionLostHandler != nil {
		opts.OnConnectionLost = onConnectionLostHandler
	}
	return &MQTTClient{
		client: mqtt.NewClient(opts),
		cfg:    cfg.MQTT,
	}
}

type MQTTClient struct {
	client mqtt.Client
	cfg    config.MQTTConfig
}

func (c *MQTTClient) baseTopic() string {
	return c.cfg.BaseTopic
}

func (c *MQTTClient) DiscoveryTopic() string {
	return c.cfg.HADiscoveryTopic
}

func (c *MQTTClient) BridgeStateTopic() string {
	return bridgeStateTopic(c.baseTopic())
}

// HAStatusTopic carries the Home Assistant birth and last will messages.
func (c *MQTTClient) HAStatusTopic() string {
	return fmt.Sprintf("%s/status", c.DiscoveryTopic())
}

func (c *MQTTClient) DeviceAvailabilityTopic(deviceId string) string {
	return fmt.Sprintf("%s/%s/availability", c.baseTopic(), deviceId)
}

func (c *MQTTClient) SensorStateTopic(deviceId, sensorId string) string {
	return fmt.Sprintf("%s/%s/%s/state", c.baseTopic(), deviceId, sensorId)
}

func (c *MQTTClient) BinarySensorStateTopic(deviceId, sensorId string) string {
	return fmt.Sprintf("%s/%s/binary_sensor/%s/state", c.baseTopic(), deviceId, sensorId)
}

func (c *MQTTClient) Publish(topic string, payload any, qos byte, retain bool, continuation func(error), timeout time.Duration) {
	token := c.client.Publish(topic, qos, retain, payload)
	go waitToken(token, "publish", continuation, timeout)
}

func (c *MQTTClient) Subscribe(topic string, qos byte, handler mqtt.MessageHandler, continuation func(error), timeout time.Duration) {
	token := c.client.Subscribe(topic, qos, handler)
	go waitToken(token, "subscribe", continuation, timeout)
}

func (c *MQTTClient) SubscribeToHAStatusTopic(handler mqtt.MessageHandler, continuation func(error), timeout time.Duration) {
	c.Subscribe(c.HAStatusTopic(), 1, handler, continuation, timeout)
}

func (c *MQTTClient) Connect(continuation func(error), timeout time.Duration) {
	token := c.client.Connect()
	go waitToken(token, "connect", continuation, timeout)
}

func (c *MQTTClient) Disconnect(timeout time.Duration) {
	c.client.Disconnect(uint(timeout.Milliseconds()))
}

func waitToken(token mqtt.Token, op string, continuation func(error), timeout time.Duration) {
	if !token.WaitTimeout(timeout) {
		continuation(fmt.Errorf("MQTT %s timed out", op))
		return
	}
	continuation(token.Error())
}

func bridgeStateTopic(baseTopic string) string {
	return fmt.Sprintf("%s/bridge/state", baseTopic)
}

var ErrUnknownEvent = errors.New("mqtt: unknown sensor update event")

type RawMessage struct {
	Topic   string
	Payload string
	Retain  bool
}

// EventToMessage maps a sensor update to the MQTT message carrying it.
// Entity values are published as plain integers.
func (c *MQTTClient) EventToMessage(event domain.SensorUpdateEvent) ([]RawMessage, error) {
	switch ev := event.(type) {
	case domain.EntityStateUpdateEvent:
		return []RawMessage{{
			Topic:   c.SensorStateTopic(ev.DeviceId, string(ev.Key)),
			Payload: fmt.Sprintf("%d", ev.Value),
		}}, nil
	case domain.DeviceAvailabilityUpdateEvent:
		return []RawMessage{
			{
				Topic:   c.DeviceAvailabilityTopic(ev.DeviceId),
				Payload: onlineOffline(ev.Connected),
				Retain:  true,
			},
			{
				Topic:   c.BinarySensorStateTopic(ev.DeviceId, SENSOR_ID_CONNECTIVITY),
				Payload: onOff(ev.Connected),
				Retain:  true,
			},
		}, nil
	case domain.BridgeStateUpdateEvent:
		return []RawMessage{{
			Topic:   c.BridgeStateTopic(),
			Payload: onlineOffline(ev.Value),
			Retain:  true,
		}}, nil
	default:
		return nil, ErrUnknownEvent
	}
}

func onlineOffline(value bool) string {
	if value {
		return MQTT_PAYLOAD_ONLINE
	}
	return MQTT_PAYLOAD_OFFLINE
}

func onOff(value bool) string {
	if value {
		return MQTT_PAYLOAD_ON
	}
	return MQTT_PAYLOAD_OFF
}
