package service

import (
	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"

	"go.uber.org/zap"
)

// SensorPlatform keeps the entities registered for one config entry.
type SensorPlatform struct {
	entry    ConfigEntry
	entities []*LD2450BLESensor
	byId     map[string]*LD2450BLESensor
	logger   *zap.Logger
}

func NewSensorPlatform(entry ConfigEntry, logger *zap.Logger) *SensorPlatform {
	return &SensorPlatform{
		entry:  entry,
		byId:   map[string]*LD2450BLESensor{},
		logger: logger,
	}
}

// AddEntities is the AddEntitiesCallback of the platform. Entities with a
// unique id that is already registered are ignored.
func (p *SensorPlatform) AddEntities(entities []*LD2450BLESensor) {
	for _, entity := range entities {
		if _, ok := p.byId[entity.UniqueId]; ok {
			p.logger.Warn("platform: duplicated unique id", zap.String("unique_id", entity.UniqueId))
			continue
		}
		p.byId[entity.UniqueId] = entity
		p.entities = append(p.entities, entity)
		entity.AsyncAddedToHass()
		entity.AsyncWriteHaState()
	}
	p.logger.Debug("platform: entities added", zap.String("entry", p.entry.EntryId), zap.Int("count", len(p.entities)))
}

func (p *SensorPlatform) Entities() []*LD2450BLESensor {
	return p.entities
}

func (p *SensorPlatform) Entity(uniqueId string) (*LD2450BLESensor, bool) {
	e, ok := p.byId[uniqueId]
	return e, ok
}

func (p *SensorPlatform) States() []domain.EntityState {
	states := make([]domain.EntityState, 0, len(p.entities))
	for _, e := range p.entities {
		states = append(states, e.State())
	}
	return states
}

// Unload removes every entity. Removed entities report unavailable and
// stop receiving coordinator updates.
func (p *SensorPlatform) Unload() {
	for _, e := range p.entities {
		e.AsyncWillRemoveFromHass()
	}
	p.entities = nil
	p.byId = map[string]*LD2450BLESensor{}
}
