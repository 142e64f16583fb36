package ld2450

const (
	Manufacturer = "Hi-Link"
	Model        = "HLK-LD2450"
)

type DeviceInfo struct {
	Address      string
	Manufacturer string
	Model        string
	Version      string
}

// Reader is a connection to a single LD2450 radar.
type Reader interface {
	Open() error
	Close() error
	// ReadFrame returns the most recent reporting frame.
	ReadFrame() (*Frame, error)
	GetInfo() (*DeviceInfo, error)
}
