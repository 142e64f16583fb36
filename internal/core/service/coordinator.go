package service

import (
	"time"

	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"
	"github.com/berfenger/ld2450ble2mqtt/internal/core/port"
	"github.com/berfenger/ld2450ble2mqtt/pkg/ld2450"

	"go.uber.org/zap"
)

// LD2450BLECoordinator holds the connectivity flag of one device and fans out
// update notifications to its listeners. It is not safe for concurrent use:
// the owning actor serializes every call.
type LD2450BLECoordinator struct {
	device            *domain.LD2450BLE
	connected         bool
	listeners         map[int]func()
	nextListenerId    int
	lastUpdate        time.Time
	lastUpdateSuccess bool
	now               func() time.Time
	logger            *zap.Logger
}

func NewLD2450BLECoordinator(device *domain.LD2450BLE, logger *zap.Logger) *LD2450BLECoordinator {
	return &LD2450BLECoordinator{
		device:    device,
		listeners: map[int]func(){},
		now:       time.Now,
		logger:    logger,
	}
}

func (c *LD2450BLECoordinator) Device() *domain.LD2450BLE {
	return c.device
}

func (c *LD2450BLECoordinator) Connected() bool {
	return c.connected
}

func (c *LD2450BLECoordinator) LastUpdate() time.Time {
	return c.lastUpdate
}

func (c *LD2450BLECoordinator) LastUpdateSuccess() bool {
	return c.lastUpdateSuccess
}

func (c *LD2450BLECoordinator) ListenerCount() int {
	return len(c.listeners)
}

// AsyncAddListener registers a zero argument callback invoked on every
// update. The returned function removes it.
func (c *LD2450BLECoordinator) AsyncAddListener(listener func()) func() {
	id := c.nextListenerId
	c.nextListenerId++
	c.listeners[id] = listener
	return func() {
		delete(c.listeners, id)
	}
}

// AsyncUpdateListeners notifies listeners in registration order.
func (c *LD2450BLECoordinator) AsyncUpdateListeners() {
	for id := 0; id < c.nextListenerId; id++ {
		if listener, ok := c.listeners[id]; ok {
			listener()
		}
	}
}

func (c *LD2450BLECoordinator) UpdateFromFrame(frame ld2450.Frame) {
	c.device.ApplyFrame(frame)
	c.lastUpdate = c.now()
	c.lastUpdateSuccess = true
	if !c.connected {
		c.logger.Info("coordinator: device connected", zap.String("address", c.device.Address))
	}
	c.connected = true
	c.AsyncUpdateListeners()
}

// SetConnected notifies listeners only when the flag flips.
func (c *LD2450BLECoordinator) SetConnected(connected bool) {
	if !connected {
		c.lastUpdateSuccess = false
	}
	if c.connected == connected {
		return
	}
	c.connected = connected
	if connected {
		c.logger.Info("coordinator: device connected", zap.String("address", c.device.Address))
	} else {
		c.logger.Warn("coordinator: device disconnected", zap.String("address", c.device.Address))
	}
	c.AsyncUpdateListeners()
}

// ensure interface compliance
var _ port.UpdateCoordinator = (*LD2450BLECoordinator)(nil)
