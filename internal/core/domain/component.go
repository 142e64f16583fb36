package domain

const (
	CONNECTION_BLUETOOTH = "bluetooth"
)

// Connection is a (type, identifier) pair used to match a device across
// integrations, e.g. ("bluetooth", "AA:BB:CC:DD:EE:FF").
type Connection [2]string

type Device struct {
	Id           string
	Name         string
	Version      string
	Model        string
	Manufacturer string
	ViaDevice    string
	Connections  []Connection
}

type GenericSensor struct {
	Device            Device
	Id                string
	SensorType        string
	Name              string
	UniqueId          string
	UnitOfMeasurement string
	StateClass        string // measurement or empty
	DeviceClass       string // distance, connectivity
	EntityCategory    string // diagnostic or empty
	EnabledByDefault  *bool
	Icon              string
}
