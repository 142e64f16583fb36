package events

import (
	"testing"

	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"
	"github.com/berfenger/ld2450ble2mqtt/pkg/ld2450"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityStateToUpdateEvent(t *testing.T) {

	ev := EntityStateToUpdateEvent(domain.EntityState{
		UniqueId:  "AA:BB:CC:DD:EE:FF_target_one_x",
		DeviceId:  "ld2450_aabbccddeeff",
		Key:       domain.TargetOneX,
		Value:     -782,
		Available: true,
	})
	assert.Equal(t, "AA:BB:CC:DD:EE:FF_target_one_x", ev.SensorId())
	assert.Equal(t, domain.TargetOneX, ev.Key)
	assert.Equal(t, -782, ev.Value)
	assert.True(t, ev.Available)
}

func TestEntitySensors(t *testing.T) {

	device := domain.NewLD2450BLE(&ld2450.DeviceInfo{
		Address:      "AA:BB:CC:DD:EE:FF",
		Manufacturer: ld2450.Manufacturer,
		Model:        ld2450.Model,
	}, "Hallway")
	radar := RadarDevice(device, "Hallway")
	assert.Equal(t, "ld2450_aabbccddeeff", radar.Id)

	var states []domain.EntityState
	for _, d := range domain.SensorDescriptions() {
		states = append(states, domain.EntityState{
			UniqueId:    domain.UniqueId(device.Address, d.Key),
			Key:         d.Key,
			Name:        domain.Translate(d.TranslationKey),
			Description: d,
		})
	}

	sensors := EntitySensors(radar, states)
	require.Len(t, sensors, 12)

	speed := sensors[2]
	assert.Equal(t, "target_one_speed", speed.Id)
	assert.Equal(t, domain.UNIT_CENTIMETERS_PER_SEC, speed.UnitOfMeasurement)
	assert.Equal(t, "mdi:speedometer", speed.Icon)
	require.NotNil(t, speed.EnabledByDefault)
	assert.True(t, *speed.EnabledByDefault)

	resolution := sensors[3]
	assert.Equal(t, domain.ENTITY_CATEGORY_DIAGNOSTIC, resolution.EntityCategory)
	assert.Empty(t, resolution.StateClass)

	conn := ConnectivitySensor(radar, device.Address)
	assert.Equal(t, domain.SENSOR_TYPE_BINARY, conn.SensorType)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF_connectivity", conn.UniqueId)

	ev := DeviceAvailabilityToUpdateEvent(device, true)
	assert.Equal(t, radar.Id, ev.DeviceId)
	assert.True(t, ev.Connected)
}

func TestBridgeDevice(t *testing.T) {

	a := BridgeDevice("ld2450")
	b := BridgeDevice("other")
	assert.NotEqual(t, a.Id, b.Id)
	assert.Equal(t, "ld2450ble2mqtt", a.Model)
	assert.NotEmpty(t, a.Version)
}
