package ld2450

import (
	"errors"
	"sync"
)

const TestReaderAddress = "AA:BB:CC:DD:EE:FF"

var ErrTestReaderOffline = errors.New("ld2450: test reader offline")

func CreateTestReader() (Reader, error) {
	return NewTestReader(TestReaderAddress), nil
}

// TestReader replays a fixed list of frames in a loop.
type TestReader struct {
	mu      sync.Mutex
	address string
	frames  []Frame
	next    int
	offline bool
}

func NewTestReader(address string, frames ...Frame) *TestReader {
	if len(frames) == 0 {
		frames = DefaultTestFrames()
	}
	return &TestReader{
		address: address,
		frames:  frames,
	}
}

func DefaultTestFrames() []Frame {
	return []Frame{
		{Targets: [TargetCount]Target{
			{X: -782, Y: 1713, Speed: -16, Resolution: 360},
		}},
		{Targets: [TargetCount]Target{
			{X: -760, Y: 1650, Speed: -12, Resolution: 360},
			{X: 410, Y: 2980, Speed: 0, Resolution: 320},
		}},
		{Targets: [TargetCount]Target{
			{X: -731, Y: 1598, Speed: 8, Resolution: 360},
			{X: 415, Y: 2975, Speed: 0, Resolution: 320},
			{X: 1200, Y: 4500, Speed: 35, Resolution: 240},
		}},
	}
}

// SetOffline makes subsequent reads fail until it is called with false.
func (r *TestReader) SetOffline(offline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offline = offline
}

func (r *TestReader) Open() error {
	return nil
}

func (r *TestReader) Close() error {
	return nil
}

func (r *TestReader) ReadFrame() (*Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.offline {
		return nil, ErrTestReaderOffline
	}
	frame := r.frames[r.next]
	r.next = (r.next + 1) % len(r.frames)
	return &frame, nil
}

func (r *TestReader) GetInfo() (*DeviceInfo, error) {
	return &DeviceInfo{
		Address:      r.address,
		Manufacturer: Manufacturer,
		Model:        Model,
		Version:      "V2.02.23090617",
	}, nil
}
