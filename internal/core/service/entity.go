package service

import (
	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"
	"github.com/berfenger/ld2450ble2mqtt/internal/core/port"
)

type DeviceInfo struct {
	Name        string
	Connections []domain.Connection
}

// LD2450BLESensor mirrors one attribute of the device object.
type LD2450BLESensor struct {
	coordinator       port.UpdateCoordinator
	device            *domain.LD2450BLE
	writer            port.StateWriter
	key               domain.SensorKey
	EntityDescription domain.SensorEntityDescription
	HasEntityName     bool
	UniqueId          string
	DeviceInfo        DeviceInfo
	NativeValue       int
	added             bool
	removeListener    func()
}

func NewLD2450BLESensor(coordinator port.UpdateCoordinator, device *domain.LD2450BLE, name string,
	description domain.SensorEntityDescription, writer port.StateWriter) *LD2450BLESensor {
	return &LD2450BLESensor{
		coordinator:       coordinator,
		device:            device,
		writer:            writer,
		key:               description.Key,
		EntityDescription: description,
		HasEntityName:     true,
		UniqueId:          domain.UniqueId(device.Address, description.Key),
		DeviceInfo: DeviceInfo{
			Name:        name,
			Connections: []domain.Connection{{domain.CONNECTION_BLUETOOTH, device.Address}},
		},
		NativeValue: device.Value(description.Key),
	}
}

func (s *LD2450BLESensor) Key() domain.SensorKey {
	return s.key
}

func (s *LD2450BLESensor) Name() string {
	return domain.Translate(s.EntityDescription.TranslationKey)
}

// Available is false while the coordinator is disconnected, otherwise true
// as long as the entity is registered.
func (s *LD2450BLESensor) Available() bool {
	return s.coordinator.Connected() && s.added
}

func (s *LD2450BLESensor) AsyncAddedToHass() {
	s.added = true
	s.removeListener = s.coordinator.AsyncAddListener(s.HandleCoordinatorUpdate)
}

func (s *LD2450BLESensor) AsyncWillRemoveFromHass() {
	if s.removeListener != nil {
		s.removeListener()
		s.removeListener = nil
	}
	s.added = false
}

func (s *LD2450BLESensor) HandleCoordinatorUpdate() {
	s.NativeValue = s.device.Value(s.key)
	s.AsyncWriteHaState()
}

func (s *LD2450BLESensor) AsyncWriteHaState() {
	if s.writer != nil {
		s.writer.WriteState(s.State())
	}
}

func (s *LD2450BLESensor) State() domain.EntityState {
	return domain.EntityState{
		UniqueId:    s.UniqueId,
		DeviceId:    domain.DeviceSlug(s.device.Address),
		Key:         s.key,
		Name:        s.Name(),
		Value:       s.NativeValue,
		Available:   s.Available(),
		Description: s.EntityDescription,
	}
}
