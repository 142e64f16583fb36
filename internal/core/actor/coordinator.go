package actor

import (
	"fmt"
	"time"

	"github.com/berfenger/ld2450ble2mqtt/internal/config"
	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"
	"github.com/berfenger/ld2450ble2mqtt/internal/core/events"
	"github.com/berfenger/ld2450ble2mqtt/internal/core/port"
	"github.com/berfenger/ld2450ble2mqtt/internal/core/service"
	. "github.com/berfenger/ld2450ble2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

// CoordinatorActor owns the config entry of the radar: the device object,
// its update coordinator and the sensor platform. Every call into them
// happens inside Receive.
type CoordinatorActor struct {
	behavior   actor.Behavior
	stash      *Stash
	scheduler  *scheduler.TimerScheduler
	cancelTick scheduler.CancelFunc

	config      *config.Config
	deviceActor *actor.PID
	eventStream *eventstream.EventStream

	store       service.EntryStore
	entry       service.ConfigEntry
	platform    *service.SensorPlatform
	coordinator *service.LD2450BLECoordinator
	radarDevice domain.Device
	failures    uint32

	logger *zap.Logger
}

type coordinatorTick struct {
}

func NewCoordinatorActor(config *config.Config, deviceActor *actor.PID, eventStream *eventstream.EventStream, logger *zap.Logger) *CoordinatorActor {
	act := &CoordinatorActor{
		config:      config,
		deviceActor: deviceActor,
		eventStream: eventStream,
		behavior:    actor.NewBehavior(),
		stash:       &Stash{},
		store:       service.EntryStore{},
		logger:      ActorLogger(domain.ACTOR_ID_COORDINATOR, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *CoordinatorActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *CoordinatorActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("coordinator@starting started")
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.deviceActor, domain.GetDeviceInfoRequest{}, state.requestTimeout()), func(err error) any {
			return domain.GetDeviceInfoResponse{
				ActorResponseMixIn: domain.ErrorResponse(err),
			}
		})
		state.behavior.Become(state.WaitingInfoReceive)
	case *actor.Restarting:
	default:
		state.logger.Debug("coordinator@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *CoordinatorActor) WaitingInfoReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetDeviceInfoResponse:
		if msg.HasResponseError() || msg.Info == nil {
			// let the supervisor retry the setup
			state.logger.Error("coordinator@waitingInfo GetDeviceInfoResponse", zap.Error(msg.GetResponseError()))
			panic(fmt.Errorf("device info unavailable: %w", msg.GetResponseError()))
		}
		state.logger.Debug("coordinator@waitingInfo GetDeviceInfoResponse", zap.Any("info", msg.Info))
		state.setupEntry(msg)

		state.scheduler = scheduler.NewTimerScheduler(ctx)
		state.scheduleTick(ctx)

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Stopping:
	default:
		state.logger.Debug("coordinator@waitingInfo stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *CoordinatorActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("coordinator@default ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_COORDINATOR,
			Healthy: true,
			State:   state.connectionState(),
		})
	case coordinatorTick:
		state.logger.Debug("coordinator@default tick")
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.deviceActor, domain.ReadFrameRequest{}, state.requestTimeout()), func(err error) any {
			return domain.ReadFrameResponse{
				ActorResponseMixIn: domain.ErrorResponse(err),
			}
		})
		state.behavior.BecomeStacked(state.WaitingFrameReceive)
	case domain.GetEntitiesRequest:
		state.logger.Debug("coordinator@default GetEntitiesRequest")
		ForRequest(msg).Respond(ctx, domain.GetEntitiesResponse{
			EntryId:   state.entry.EntryId,
			Device:    state.radarDevice,
			Connected: state.coordinator.Connected(),
			Entities:  state.platform.States(),
		})
	case *actor.Restarting:
		state.unload()
	case *actor.Stopping:
		state.unload()
	default:
		state.logger.Debug("coordinator@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *CoordinatorActor) WaitingFrameReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ReadFrameResponse:
		if msg.HasResponseError() || msg.Frame == nil {
			state.failures++
			state.logger.Debug("coordinator@waitingFrame read failed", zap.Uint32("failures", state.failures), zap.Error(msg.GetResponseError()))
			if state.failures >= state.config.Coordinator.MaxFailures {
				state.coordinator.SetConnected(false)
			}
		} else {
			state.failures = 0
			state.coordinator.UpdateFromFrame(*msg.Frame)
		}
		state.scheduleTick(ctx)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.unload()
	case *actor.Stopping:
		state.unload()
	default:
		state.logger.Debug("coordinator@waitingFrame stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *CoordinatorActor) setupEntry(msg domain.GetDeviceInfoResponse) {
	name := state.config.Device.Name
	device := domain.NewLD2450BLE(msg.Info, name)
	state.coordinator = service.NewLD2450BLECoordinator(device, state.logger)
	state.entry = service.NewConfigEntry(name)
	state.store[state.entry.EntryId] = &service.LD2450BLEData{
		Title:       name,
		Device:      device,
		Coordinator: state.coordinator,
	}
	state.radarDevice = events.RadarDevice(device, name)

	// registered before the entities so availability is published ahead of their values
	connected := state.coordinator.Connected()
	state.coordinator.AsyncAddListener(func() {
		if state.coordinator.Connected() != connected {
			connected = state.coordinator.Connected()
			state.eventStream.Publish(events.DeviceAvailabilityToUpdateEvent(device, connected))
		}
	})
	state.eventStream.Publish(events.DeviceAvailabilityToUpdateEvent(device, connected))

	state.platform = service.NewSensorPlatform(state.entry, state.logger)
	service.AsyncSetupEntry(state.store, state.entry, state.platform.AddEntities, port.StateWriterFunc(func(s domain.EntityState) {
		state.eventStream.Publish(events.EntityStateToUpdateEvent(s))
	}))
	state.logger.Info("coordinator: entry set up", zap.String("entry", state.entry.EntryId),
		zap.String("address", device.Address), zap.Int("entities", len(state.platform.Entities())))
}

func (state *CoordinatorActor) scheduleTick(ctx actor.Context) {
	interval := time.Duration(state.config.Coordinator.UpdateIntervalMillis) * time.Millisecond
	state.cancelTick = state.scheduler.RequestOnce(interval, ctx.Self(), coordinatorTick{})
}

func (state *CoordinatorActor) unload() {
	if state.cancelTick != nil {
		state.cancelTick()
		state.cancelTick = nil
	}
	if state.platform != nil {
		state.platform.Unload()
		delete(state.store, state.entry.EntryId)
		state.platform = nil
	}
}

func (state *CoordinatorActor) requestTimeout() time.Duration {
	return 3 * time.Duration(state.config.Device.ReadTimeoutMillis) * time.Millisecond
}

func (state *CoordinatorActor) connectionState() string {
	if state.coordinator.Connected() {
		return "connected"
	}
	return "disconnected"
}
