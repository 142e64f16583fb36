package mqtt

import (
	"encoding/json"
	"testing"

	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"
	"github.com/berfenger/ld2450ble2mqtt/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *MQTTClient {
	cfg := util.LoadTestConfig()
	return CreateMQTTClient(&cfg, OptsFromConfig(&cfg), nil, nil)
}

func TestTopics(t *testing.T) {

	assert := assert.New(t)
	c := testClient()

	assert.Equal("ld2450/bridge/state", c.BridgeStateTopic())
	assert.Equal("homeassistant/status", c.HAStatusTopic())
	assert.Equal("ld2450/ld2450_aabbccddeeff/availability", c.DeviceAvailabilityTopic("ld2450_aabbccddeeff"))
	assert.Equal("ld2450/ld2450_aabbccddeeff/target_one_x/state", c.SensorStateTopic("ld2450_aabbccddeeff", "target_one_x"))
}

func TestEntityEventToMessage(t *testing.T) {

	c := testClient()
	msgs, err := c.EventToMessage(domain.EntityStateUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: "AA:BB:CC:DD:EE:FF_target_two_speed"},
		DeviceId:               "ld2450_aabbccddeeff",
		Key:                    domain.TargetTwoSpeed,
		Value:                  -16,
		Available:              true,
	})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "ld2450/ld2450_aabbccddeeff/target_two_speed/state", msgs[0].Topic)
	assert.Equal(t, "-16", msgs[0].Payload)
	assert.False(t, msgs[0].Retain)
}

func TestAvailabilityEventToMessage(t *testing.T) {

	c := testClient()
	msgs, err := c.EventToMessage(domain.DeviceAvailabilityUpdateEvent{
		DeviceId:  "ld2450_aabbccddeeff",
		Connected: false,
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, MQTT_PAYLOAD_OFFLINE, msgs[0].Payload)
	assert.True(t, msgs[0].Retain)
	assert.Equal(t, "ld2450/ld2450_aabbccddeeff/binary_sensor/connectivity/state", msgs[1].Topic)
	assert.Equal(t, MQTT_PAYLOAD_OFF, msgs[1].Payload)

	_, err = c.EventToMessage(nil)
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestSensorDiscoveryMessage(t *testing.T) {

	c := testClient()
	enabled := true
	sensor := domain.GenericSensor{
		Device: domain.Device{
			Id:          "ld2450_aabbccddeeff",
			Name:        "Hallway",
			Connections: []domain.Connection{{domain.CONNECTION_BLUETOOTH, "AA:BB:CC:DD:EE:FF"}},
		},
		Id:                "target_one_x",
		SensorType:        domain.SENSOR_TYPE_SENSOR,
		Name:              "Target 1 X",
		UniqueId:          "AA:BB:CC:DD:EE:FF_target_one_x",
		UnitOfMeasurement: domain.UNIT_MILLIMETERS,
		StateClass:        domain.STATE_CLASS_MEASUREMENT,
		DeviceClass:       domain.DEVICE_CLASS_DISTANCE,
		EnabledByDefault:  &enabled,
	}

	assert.Equal(t, "homeassistant/sensor/ld2450_aabbccddeeff/target_one_x/config", c.HADiscoverySensorTopic(sensor))

	msg := GenericSensorToHADiscoveryMessage(c, sensor)
	payload, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "ld2450/ld2450_aabbccddeeff/target_one_x/state", decoded["state_topic"])
	assert.Equal(t, "AA:BB:CC:DD:EE:FF_target_one_x", decoded["unique_id"])
	assert.Equal(t, "all", decoded["availability_mode"])
	assert.Len(t, decoded["availability"], 2)

	dev := decoded["device"].(map[string]any)
	assert.Equal(t, []any{[]any{"bluetooth", "AA:BB:CC:DD:EE:FF"}}, dev["connections"])
}

func TestBinarySensorDiscoveryMessage(t *testing.T) {

	c := testClient()
	msg := GenericSensorToHADiscoveryMessage(c, domain.GenericSensor{
		Device:     domain.Device{Id: "ld2450_aabbccddeeff"},
		Id:         SENSOR_ID_CONNECTIVITY,
		SensorType: domain.SENSOR_TYPE_BINARY,
	})
	assert.Equal(t, "ld2450/ld2450_aabbccddeeff/binary_sensor/connectivity/state", msg.StateTopic)
	assert.Equal(t, MQTT_PAYLOAD_ON, msg.PayloadOn)
	assert.Len(t, msg.Availability, 1)
	assert.Empty(t, msg.AvailabilityMode)
}

func TestBridgeOrigin(t *testing.T) {

	assert.Nil(t, BridgeOrigin(nil))

	c := testClient()
	msg := GenericSensorToHADiscoveryMessage(c, domain.GenericSensor{
		Device:     domain.Device{Id: "ld2450_aabbccddeeff"},
		Id:         "target_one_y",
		SensorType: domain.SENSOR_TYPE_SENSOR,
	})
	msg.Origin = BridgeOrigin(&domain.Device{Model: "ld2450ble2mqtt", Version: "v1.0.0"})

	payload, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"origin":{"name":"ld2450ble2mqtt","sw_version":"v1.0.0"}`)
}
