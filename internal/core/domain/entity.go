package domain

import (
	"fmt"
	"strings"
	"time"
)

// EntityState is a point-in-time view of one sensor entity.
type EntityState struct {
	UniqueId    string                  `json:"unique_id"`
	DeviceId    string                  `json:"device_id"`
	Key         SensorKey               `json:"key"`
	Name        string                  `json:"name"`
	Value       int                     `json:"value"`
	Available   bool                    `json:"available"`
	Description SensorEntityDescription `json:"-"`
}

type HistoryReading struct {
	Timestamp time.Time `json:"ts"`
	UniqueId  string    `json:"unique_id"`
	Key       SensorKey `json:"key"`
	Value     int       `json:"value"`
	Available bool      `json:"available"`
}

// UniqueId builds the entity unique id, {address}_{key}.
func UniqueId(address string, key SensorKey) string {
	return fmt.Sprintf("%s_%s", address, key)
}

// DeviceSlug turns a device address into an identifier that is safe to use
// in MQTT topics and Home Assistant object ids.
func DeviceSlug(address string) string {
	slug := strings.ToLower(address)
	slug = strings.NewReplacer(":", "", "-", "", " ", "_").Replace(slug)
	return fmt.Sprintf("ld2450_%s", slug)
}
