package service

import (
	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"
	"github.com/berfenger/ld2450ble2mqtt/internal/core/port"

	"github.com/google/uuid"
)

// ConfigEntry is one configured radar.
type ConfigEntry struct {
	EntryId string
	Title   string
}

func NewConfigEntry(title string) ConfigEntry {
	return ConfigEntry{
		EntryId: uuid.NewString(),
		Title:   title,
	}
}

// LD2450BLEData is the per entry bundle built before the sensor platform
// is set up.
type LD2450BLEData struct {
	Title       string
	Device      *domain.LD2450BLE
	Coordinator *LD2450BLECoordinator
}

// EntryStore maps config entry ids to their data bundle.
type EntryStore map[string]*LD2450BLEData

type AddEntitiesCallback func(entities []*LD2450BLESensor)

// AsyncSetupEntry creates one sensor per description and hands all of them
// to addEntities in a single call.
func AsyncSetupEntry(store EntryStore, entry ConfigEntry, addEntities AddEntitiesCallback, writer port.StateWriter) {
	data := store[entry.EntryId]
	descriptions := domain.SensorDescriptions()
	entities := make([]*LD2450BLESensor, 0, len(descriptions))
	for _, description := range descriptions {
		entities = append(entities, NewLD2450BLESensor(data.Coordinator, data.Device, entry.Title, description, writer))
	}
	addEntities(entities)
}
