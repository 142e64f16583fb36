package events

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	. "github.com/berfenger/ld2450ble2mqtt/internal/core/domain"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_CONNECTIVITY = "connectivity"
)

func EntityStateToUpdateEvent(state EntityState) EntityStateUpdateEvent {
	return EntityStateUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: state.UniqueId,
		},
		DeviceId:  state.DeviceId,
		Key:       state.Key,
		Value:     state.Value,
		Available: state.Available,
	}
}

func DeviceAvailabilityToUpdateEvent(device *LD2450BLE, connected bool) DeviceAvailabilityUpdateEvent {
	return DeviceAvailabilityUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: UniqueId(device.Address, SENSOR_ID_CONNECTIVITY),
		},
		DeviceId:  DeviceSlug(device.Address),
		Connected: connected,
	}
}

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("ld2450_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "ACasal",
		Model:        "ld2450ble2mqtt",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("LD2450 bridge %s", md5HashShort(baseTopic)),
	}
}

// RadarDevice is the device registry record of the radar, matched by its
// bluetooth connection.
func RadarDevice(device *LD2450BLE, title string) Device {
	return Device{
		Id:           DeviceSlug(device.Address),
		Name:         title,
		Manufacturer: device.Manufacturer,
		Model:        device.Model,
		Version:      device.Version,
		Connections:  []Connection{{CONNECTION_BLUETOOTH, device.Address}},
	}
}

// EntitySensors maps entity states to discovery components, one per entity.
func EntitySensors(radarDevice Device, states []EntityState) []GenericSensor {
	sensors := make([]GenericSensor, 0, len(states))
	for _, state := range states {
		d := state.Description
		enabled := d.EntityRegistryEnabledDefault
		sensors = append(sensors, GenericSensor{
			Device:            radarDevice,
			Id:                string(state.Key),
			SensorType:        SENSOR_TYPE_SENSOR,
			Name:              state.Name,
			UniqueId:          state.UniqueId,
			UnitOfMeasurement: d.NativeUnitOfMeasurement,
			StateClass:        d.StateClass,
			DeviceClass:       d.DeviceClass,
			EntityCategory:    d.EntityCategory,
			EnabledByDefault:  &enabled,
			Icon:              icon(d),
		})
	}
	return sensors
}

func ConnectivitySensor(radarDevice Device, address string) GenericSensor {
	return GenericSensor{
		Device:         radarDevice,
		Id:             SENSOR_ID_CONNECTIVITY,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Connectivity",
		UniqueId:       UniqueId(address, SENSOR_ID_CONNECTIVITY),
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CATEGORY_DIAGNOSTIC,
	}
}

func icon(d SensorEntityDescription) string {
	switch d.NativeUnitOfMeasurement {
	case UNIT_CENTIMETERS_PER_SEC:
		return "mdi:speedometer"
	}
	if d.EntityCategory == ENTITY_CATEGORY_DIAGNOSTIC {
		return "mdi:grid"
	}
	return ""
}

func md5HashShort(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])[:8]
}
