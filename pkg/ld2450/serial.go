package ld2450

import (
	"errors"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

const DefaultBaudRate = 256000

type SerialReader struct {
	mu          sync.Mutex
	portName    string
	baudRate    int
	readTimeout time.Duration
	address     string
	port        serial.Port
	scanner     *FrameScanner
	logger      *zap.Logger
}

func CreateSerialReader(portName string, baudRate int, address string, readTimeout time.Duration, logger *zap.Logger) (*SerialReader, error) {
	if portName == "" {
		return nil, errors.New("ld2450: serial port name is empty")
	}
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	return &SerialReader{
		portName:    portName,
		baudRate:    baudRate,
		readTimeout: readTimeout,
		address:     address,
		logger:      logger,
	}, nil
}

func (r *SerialReader) Open() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mode := &serial.Mode{
		BaudRate: r.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(r.portName, mode)
	if err != nil {
		return err
	}
	if err := port.SetReadTimeout(r.readTimeout); err != nil {
		port.Close()
		return err
	}
	r.port = port
	r.scanner = NewFrameScanner(timeoutReader{port})
	r.logger.Debug("ld2450 serial port opened", zap.String("port", r.portName), zap.Int("baud", r.baudRate))
	return nil
}

func (r *SerialReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.port == nil {
		return nil
	}
	err := r.port.Close()
	r.port = nil
	r.scanner = nil
	return err
}

// ReadFrame drops whatever the radar streamed since the last call and
// waits for the next complete frame, at most readTimeout in total.
func (r *SerialReader) ReadFrame() (*Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.port == nil {
		return nil, errors.New("ld2450: serial port is not open")
	}
	if err := r.port.ResetInputBuffer(); err != nil {
		return nil, err
	}
	r.scanner.Reset()
	if r.readTimeout > 0 {
		r.scanner.SetDeadline(time.Now().Add(r.readTimeout))
	}
	frame, err := r.scanner.Next()
	if err != nil {
		return nil, err
	}
	return &frame, nil
}

func (r *SerialReader) GetInfo() (*DeviceInfo, error) {
	return &DeviceInfo{
		Address:      r.address,
		Manufacturer: Manufacturer,
		Model:        Model,
	}, nil
}

// serial.Port returns (0, nil) when the read timeout expires
type timeoutReader struct {
	port serial.Port
}

func (t timeoutReader) Read(p []byte) (int, error) {
	n, err := t.port.Read(p)
	if n == 0 && err == nil {
		return 0, ErrReadTimeout
	}
	return n, err
}
