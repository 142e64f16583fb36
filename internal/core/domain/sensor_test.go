package domain

import (
	"testing"

	"github.com/berfenger/ld2450ble2mqtt/pkg/ld2450"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSensorDescriptionsTable(t *testing.T) {

	descriptions := SensorDescriptions()
	require.Len(t, descriptions, 12)

	seen := map[SensorKey]bool{}
	for _, d := range descriptions {
		assert.False(t, seen[d.Key], "duplicated key %s", d.Key)
		seen[d.Key] = true
		assert.True(t, d.Key.Valid())
		assert.Equal(t, string(d.Key), d.TranslationKey)
		assert.True(t, d.EntityRegistryEnabledDefault)
		assert.True(t, d.EntityRegistryVisibleDefault)
		assert.NotEqual(t, d.TranslationKey, Translate(d.TranslationKey), "missing translation")
	}

	// one block of four per target
	assert.Equal(t, TargetOneX, descriptions[0].Key)
	assert.Equal(t, TargetTwoX, descriptions[4].Key)
	assert.Equal(t, TargetThreeResolution, descriptions[11].Key)
}

func TestSensorDescriptionKinds(t *testing.T) {

	byKey := map[SensorKey]SensorEntityDescription{}
	for _, d := range SensorDescriptions() {
		byKey[d.Key] = d
	}

	x := byKey[TargetTwoX]
	assert.Equal(t, DEVICE_CLASS_DISTANCE, x.DeviceClass)
	assert.Equal(t, STATE_CLASS_MEASUREMENT, x.StateClass)
	assert.Equal(t, UNIT_MILLIMETERS, x.NativeUnitOfMeasurement)
	assert.Empty(t, x.EntityCategory)

	speed := byKey[TargetOneSpeed]
	assert.Empty(t, speed.DeviceClass)
	assert.Equal(t, STATE_CLASS_MEASUREMENT, speed.StateClass)
	assert.Equal(t, UNIT_CENTIMETERS_PER_SEC, speed.NativeUnitOfMeasurement)

	res := byKey[TargetThreeResolution]
	assert.Equal(t, ENTITY_CATEGORY_DIAGNOSTIC, res.EntityCategory)
	assert.Empty(t, res.StateClass)
	assert.Equal(t, UNIT_MILLIMETERS, res.NativeUnitOfMeasurement)
}

func TestSensorDescriptionsIsACopy(t *testing.T) {

	d := SensorDescriptions()
	d[0].Key = "changed"
	assert.Equal(t, TargetOneX, SensorDescriptions()[0].Key)
}

func TestDeviceValueLookup(t *testing.T) {

	dev := NewLD2450BLE(&ld2450.DeviceInfo{Address: ld2450.TestReaderAddress}, "Living room")
	dev.ApplyFrame(ld2450.Frame{Targets: [ld2450.TargetCount]ld2450.Target{
		{X: 1, Y: 2, Speed: 3, Resolution: 4},
		{X: -5, Y: 6, Speed: -7, Resolution: 8},
		{X: 9, Y: 10, Speed: 11, Resolution: 12},
	}})

	expected := map[SensorKey]int{
		TargetOneX: 1, TargetOneY: 2, TargetOneSpeed: 3, TargetOneResolution: 4,
		TargetTwoX: -5, TargetTwoY: 6, TargetTwoSpeed: -7, TargetTwoResolution: 8,
		TargetThreeX: 9, TargetThreeY: 10, TargetThreeSpeed: 11, TargetThreeResolution: 12,
	}
	for key, value := range expected {
		assert.Equal(t, value, dev.Value(key), "key %s", key)
	}

	assert.Panics(t, func() { dev.Value("target_four_x") })
	assert.False(t, SensorKey("target_four_x").Valid())
}

func TestIdentifiers(t *testing.T) {

	assert.Equal(t, "AA:BB:CC:DD:EE:FF_target_one_x", UniqueId("AA:BB:CC:DD:EE:FF", TargetOneX))
	assert.Equal(t, "ld2450_aabbccddeeff", DeviceSlug("AA:BB:CC:DD:EE:FF"))
}
