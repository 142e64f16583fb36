package domain

import "fmt"

type SensorUpdateEventMixIn struct {
	Id string
}

type SensorUpdateEvent interface {
	SensorUpdateEvent() string
	SensorId() string
}

func (e SensorUpdateEventMixIn) SensorUpdateEvent() string {
	return fmt.Sprintf("%T", e)
}

func (e SensorUpdateEventMixIn) SensorId() string {
	return e.Id
}

// EntityStateUpdateEvent is written by an entity each time the coordinator
// notifies it. Id is the entity unique id.
type EntityStateUpdateEvent struct {
	SensorUpdateEventMixIn
	DeviceId  string
	Key       SensorKey
	Value     int
	Available bool
}

// DeviceAvailabilityUpdateEvent mirrors the coordinator connectivity flag.
type DeviceAvailabilityUpdateEvent struct {
	SensorUpdateEventMixIn
	DeviceId  string
	Connected bool
}

type BridgeStateUpdateEvent struct {
	SensorUpdateEventMixIn
	Value bool
}
