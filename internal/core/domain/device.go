package domain

import (
	"fmt"

	"github.com/berfenger/ld2450ble2mqtt/pkg/ld2450"
)

// LD2450BLE is the shared device object. Entities read their values from it,
// the coordinator writes to it.
type LD2450BLE struct {
	Address      string
	Name         string
	Manufacturer string
	Model        string
	Version      string
	targets      [ld2450.TargetCount]ld2450.Target
}

func NewLD2450BLE(info *ld2450.DeviceInfo, name string) *LD2450BLE {
	return &LD2450BLE{
		Address:      info.Address,
		Name:         name,
		Manufacturer: info.Manufacturer,
		Model:        info.Model,
		Version:      info.Version,
	}
}

func (d *LD2450BLE) ApplyFrame(frame ld2450.Frame) {
	d.targets = frame.Targets
}

func (d *LD2450BLE) TargetOneX() int          { return d.targets[0].X }
func (d *LD2450BLE) TargetOneY() int          { return d.targets[0].Y }
func (d *LD2450BLE) TargetOneSpeed() int      { return d.targets[0].Speed }
func (d *LD2450BLE) TargetOneResolution() int { return d.targets[0].Resolution }

func (d *LD2450BLE) TargetTwoX() int          { return d.targets[1].X }
func (d *LD2450BLE) TargetTwoY() int          { return d.targets[1].Y }
func (d *LD2450BLE) TargetTwoSpeed() int      { return d.targets[1].Speed }
func (d *LD2450BLE) TargetTwoResolution() int { return d.targets[1].Resolution }

func (d *LD2450BLE) TargetThreeX() int          { return d.targets[2].X }
func (d *LD2450BLE) TargetThreeY() int          { return d.targets[2].Y }
func (d *LD2450BLE) TargetThreeSpeed() int      { return d.targets[2].Speed }
func (d *LD2450BLE) TargetThreeResolution() int { return d.targets[2].Resolution }

var sensorValueFns = map[SensorKey]func(*LD2450BLE) int{
	TargetOneX:            (*LD2450BLE).TargetOneX,
	TargetOneY:            (*LD2450BLE).TargetOneY,
	TargetOneSpeed:        (*LD2450BLE).TargetOneSpeed,
	TargetOneResolution:   (*LD2450BLE).TargetOneResolution,
	TargetTwoX:            (*LD2450BLE).TargetTwoX,
	TargetTwoY:            (*LD2450BLE).TargetTwoY,
	TargetTwoSpeed:        (*LD2450BLE).TargetTwoSpeed,
	TargetTwoResolution:   (*LD2450BLE).TargetTwoResolution,
	TargetThreeX:          (*LD2450BLE).TargetThreeX,
	TargetThreeY:          (*LD2450BLE).TargetThreeY,
	TargetThreeSpeed:      (*LD2450BLE).TargetThreeSpeed,
	TargetThreeResolution: (*LD2450BLE).TargetThreeResolution,
}

// Value returns the attribute named by key. Keys only come from the static
// description table, so an unknown key is a programming error.
func (d *LD2450BLE) Value(key SensorKey) int {
	fn, ok := sensorValueFns[key]
	if !ok {
		panic(fmt.Sprintf("ld2450: unknown sensor key %q", key))
	}
	return fn(d)
}
