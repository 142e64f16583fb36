package port

import "github.com/berfenger/ld2450ble2mqtt/internal/core/domain"

// StateWriter receives entity state each time an entity refreshes.
type StateWriter interface {
	WriteState(state domain.EntityState)
}

type StateWriterFunc func(state domain.EntityState)

func (f StateWriterFunc) WriteState(state domain.EntityState) {
	f(state)
}

// UpdateCoordinator is what entities need from the coordinator.
type UpdateCoordinator interface {
	Connected() bool
	AsyncAddListener(listener func()) (remove func())
}
