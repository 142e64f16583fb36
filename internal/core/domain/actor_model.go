package domain

import "github.com/berfenger/ld2450ble2mqtt/pkg/ld2450"

const (
	ACTOR_ID_MASTER       = "master"
	ACTOR_ID_DEVICE       = "device"
	ACTOR_ID_COORDINATOR  = "coordinator"
	ACTOR_ID_MQTT         = "mqtt"
	ACTOR_ID_HA_DISCOVERY = "hadiscovery"
	ACTOR_ID_HISTORY      = "history"
)

type GetDeviceInfoRequest struct {
	ActorRequestMixIn
}

type GetDeviceInfoResponse struct {
	ActorResponseMixIn
	Info *ld2450.DeviceInfo
}

type ReadFrameRequest struct {
	ActorRequestMixIn
}

type ReadFrameResponse struct {
	ActorResponseMixIn
	Frame *ld2450.Frame
}

type GetEntitiesRequest struct {
	ActorRequestMixIn
}

type GetEntitiesResponse struct {
	ActorResponseMixIn
	EntryId   string
	Device    Device
	Connected bool
	Entities  []EntityState
}

type GetHistoryRequest struct {
	ActorRequestMixIn
	UniqueId string
	Limit    int
}

type GetHistoryResponse struct {
	ActorResponseMixIn
	Readings []HistoryReading
}

type PublishSensorUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  SensorUpdateEvent
}

type PublishSensorUpdateResponse struct {
	ActorResponseMixIn
}

// PublishDiscoveryRequest carries the discovery components. Bridge, when
// set, is advertised as the origin of every component.
type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Bridge  *Device
	Sensors []GenericSensor
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
