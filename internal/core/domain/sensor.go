package domain

const (
	DEVICE_CLASS_DISTANCE      = "distance"
	DEVICE_CLASS_CONNECTIVITY  = "connectivity"
	STATE_CLASS_MEASUREMENT    = "measurement"
	ENTITY_CATEGORY_DIAGNOSTIC = "diagnostic"
	UNIT_MILLIMETERS           = "mm"
	UNIT_CENTIMETERS_PER_SEC   = "cm/s"
	SENSOR_TYPE_SENSOR         = "sensor"
	SENSOR_TYPE_BINARY         = "binary_sensor"
)

// SensorKey names one measurement channel of the radar. The value doubles
// as the attribute name on the device and the translation key.
type SensorKey string

const (
	TargetOneX            SensorKey = "target_one_x"
	TargetOneY            SensorKey = "target_one_y"
	TargetOneSpeed        SensorKey = "target_one_speed"
	TargetOneResolution   SensorKey = "target_one_resolution"
	TargetTwoX            SensorKey = "target_two_x"
	TargetTwoY            SensorKey = "target_two_y"
	TargetTwoSpeed        SensorKey = "target_two_speed"
	TargetTwoResolution   SensorKey = "target_two_resolution"
	TargetThreeX          SensorKey = "target_three_x"
	TargetThreeY          SensorKey = "target_three_y"
	TargetThreeSpeed      SensorKey = "target_three_speed"
	TargetThreeResolution SensorKey = "target_three_resolution"
)

func (k SensorKey) Valid() bool {
	_, ok := sensorValueFns[k]
	return ok
}

func (k SensorKey) String() string {
	return string(k)
}

type SensorEntityDescription struct {
	Key                          SensorKey
	TranslationKey               string
	DeviceClass                  string
	StateClass                   string
	NativeUnitOfMeasurement      string
	EntityCategory               string
	EntityRegistryEnabledDefault bool
	EntityRegistryVisibleDefault bool
}

var sensorDescriptions = []SensorEntityDescription{
	positionDescription(TargetOneX),
	positionDescription(TargetOneY),
	speedDescription(TargetOneSpeed),
	resolutionDescription(TargetOneResolution),

	positionDescription(TargetTwoX),
	positionDescription(TargetTwoY),
	speedDescription(TargetTwoSpeed),
	resolutionDescription(TargetTwoResolution),

	positionDescription(TargetThreeX),
	positionDescription(TargetThreeY),
	speedDescription(TargetThreeSpeed),
	resolutionDescription(TargetThreeResolution),
}

// SensorDescriptions returns a copy of the ordered description table.
func SensorDescriptions() []SensorEntityDescription {
	out := make([]SensorEntityDescription, len(sensorDescriptions))
	copy(out, sensorDescriptions)
	return out
}

func positionDescription(key SensorKey) SensorEntityDescription {
	return SensorEntityDescription{
		Key:                          key,
		TranslationKey:               string(key),
		DeviceClass:                  DEVICE_CLASS_DISTANCE,
		StateClass:                   STATE_CLASS_MEASUREMENT,
		NativeUnitOfMeasurement:      UNIT_MILLIMETERS,
		EntityRegistryEnabledDefault: true,
		EntityRegistryVisibleDefault: true,
	}
}

func speedDescription(key SensorKey) SensorEntityDescription {
	return SensorEntityDescription{
		Key:                          key,
		TranslationKey:               string(key),
		StateClass:                   STATE_CLASS_MEASUREMENT,
		NativeUnitOfMeasurement:      UNIT_CENTIMETERS_PER_SEC,
		EntityRegistryEnabledDefault: true,
		EntityRegistryVisibleDefault: true,
	}
}

// resolution has no state class: it is a diagnostic of the tracker
func resolutionDescription(key SensorKey) SensorEntityDescription {
	return SensorEntityDescription{
		Key:                          key,
		TranslationKey:               string(key),
		NativeUnitOfMeasurement:      UNIT_MILLIMETERS,
		EntityCategory:               ENTITY_CATEGORY_DIAGNOSTIC,
		EntityRegistryEnabledDefault: true,
		EntityRegistryVisibleDefault: true,
	}
}

var translations = map[string]string{
	"target_one_x":            "Target 1 X",
	"target_one_y":            "Target 1 Y",
	"target_one_speed":        "Target 1 speed",
	"target_one_resolution":   "Target 1 resolution",
	"target_two_x":            "Target 2 X",
	"target_two_y":            "Target 2 Y",
	"target_two_speed":        "Target 2 speed",
	"target_two_resolution":   "Target 2 resolution",
	"target_three_x":          "Target 3 X",
	"target_three_y":          "Target 3 Y",
	"target_three_speed":      "Target 3 speed",
	"target_three_resolution": "Target 3 resolution",
}

// Translate returns the english display name for a translation key,
// or the key itself when there is none.
func Translate(translationKey string) string {
	if name, ok := translations[translationKey]; ok {
		return name
	}
	return translationKey
}
