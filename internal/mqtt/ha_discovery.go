package mqtt

import (
	"fmt"

	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"
)

const (
	SENSOR_ID_CONNECTIVITY = "connectivity"
	AVAILABILITY_MODE_ALL  = "all"
)

type HADiscoveryConfig struct {
	Device            HADiscoveryDevice         `json:"device"`
	StateTopic        string                    `json:"state_topic"`
	StateClass        string                    `json:"state_class,omitempty"`
	DeviceClass       string                    `json:"device_class,omitempty"`
	UnitOfMeasurement string                    `json:"unit_of_measurement,omitempty"`
	Availability      []HADiscoveryAvailability `json:"availability,omitempty"`
	AvailabilityMode  string                    `json:"availability_mode,omitempty"`
	EntityCategory    string                    `json:"entity_category,omitempty"`
	Name              string                    `json:"name"`
	ObjectId          string                    `json:"object_id,omitempty"`
	UniqueId          string                    `json:"unique_id"`
	Platform          string                    `json:"platform"`
	EnabledByDefault  *bool                     `json:"enabled_by_default,omitempty"`
	PayloadOn         string                    `json:"payload_on,omitempty"`
	PayloadOff        string                    `json:"payload_off,omitempty"`
	Icon              string                    `json:"icon,omitempty"`
	Origin            *HADiscoveryOrigin        `json:"origin,omitempty"`
}

type HADiscoveryOrigin struct {
	Name      string `json:"name"`
	SwVersion string `json:"sw_version,omitempty"`
}

type HADiscoveryAvailability struct {
	Topic string `json:"topic"`
}

type HADiscoveryDevice struct {
	Id           []string    `json:"identifiers"`
	Connections  [][2]string `json:"connections,omitempty"`
	Manufacturer string      `json:"manufacturer,omitempty"`
	Version      string      `json:"sw_version,omitempty"`
	Model        string      `json:"model,omitempty"`
	Name         string      `json:"name,omitempty"`
	ViaDevice    string      `json:"via_device,omitempty"`
}

func (c *MQTTClient) HADiscoverySensorTopic(sensor domain.GenericSensor) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", c.DiscoveryTopic(), sensor.SensorType, sensor.Device.Id, sensor.Id)
}

// GenericSensorToHADiscoveryMessage builds the discovery payload of a sensor.
// Radar sensors are available only when both the bridge and the device are
// online. The connectivity sensor depends on the bridge alone.
func GenericSensorToHADiscoveryMessage(client *MQTTClient, sensor domain.GenericSensor) HADiscoveryConfig {
	disConfig := HADiscoveryConfig{
		Device:            device(sensor.Device),
		StateClass:        sensor.StateClass,
		DeviceClass:       sensor.DeviceClass,
		UnitOfMeasurement: sensor.UnitOfMeasurement,
		EntityCategory:    sensor.EntityCategory,
		Name:              sensor.Name,
		ObjectId:          fmt.Sprintf("%s_%s", sensor.Device.Id, sensor.Id),
		UniqueId:          sensor.UniqueId,
		Icon:              sensor.Icon,
		EnabledByDefault:  sensor.EnabledByDefault,
		Platform:          "mqtt",
		Availability: []HADiscoveryAvailability{
			{Topic: client.BridgeStateTopic()},
		},
	}
	switch sensor.SensorType {
	case domain.SENSOR_TYPE_BINARY:
		disConfig.StateTopic = client.BinarySensorStateTopic(sensor.Device.Id, sensor.Id)
		disConfig.PayloadOn = MQTT_PAYLOAD_ON
		disConfig.PayloadOff = MQTT_PAYLOAD_OFF
	default:
		disConfig.StateTopic = client.SensorStateTopic(sensor.Device.Id, sensor.Id)
		disConfig.Availability = append(disConfig.Availability, HADiscoveryAvailability{
			Topic: client.DeviceAvailabilityTopic(sensor.Device.Id),
		})
		disConfig.AvailabilityMode = AVAILABILITY_MODE_ALL
	}
	return disConfig
}

// BridgeOrigin describes the bridge process in discovery payloads.
func BridgeOrigin(bridge *domain.Device) *HADiscoveryOrigin {
	if bridge == nil {
		return nil
	}
	return &HADiscoveryOrigin{
		Name:      bridge.Model,
		SwVersion: bridge.Version,
	}
}

func device(d domain.Device) HADiscoveryDevice {
	var connections [][2]string
	for _, c := range d.Connections {
		connections = append(connections, [2]string(c))
	}
	return HADiscoveryDevice{
		Id:           []string{d.Id},
		Connections:  connections,
		Manufacturer: d.Manufacturer,
		Version:      d.Version,
		Model:        d.Model,
		Name:         d.Name,
		ViaDevice:    d.ViaDevice,
	}
}
