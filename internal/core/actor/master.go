package actor

import (
	"errors"
	"fmt"
	"time"

	adactor "github.com/berfenger/ld2450ble2mqtt/internal/adapter/actor"
	"github.com/berfenger/ld2450ble2mqtt/internal/config"
	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"
	. "github.com/berfenger/ld2450ble2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

var ErrHistoryDisabled = errors.New("history is disabled")

type MQTTActorProvider func(*eventstream.EventStream) *adactor.MQTTActor

type DeviceActorProvider func() *adactor.DeviceActor

type HistoryActorProvider func(*eventstream.EventStream) *adactor.HistoryActor

type MasterActor struct {
	config   config.Config
	behavior actor.Behavior
	stash    *Stash

	currentHealthCheck   healthCheckResult
	eventStream          *eventstream.EventStream
	deviceActor          *actor.PID
	mqttActor            *actor.PID
	coordinatorActor     *actor.PID
	historyActor         *actor.PID
	deviceActorProvider  DeviceActorProvider
	mqttActorProvider    MQTTActorProvider
	historyActorProvider HistoryActorProvider
	logger               *zap.Logger
}

type healthCheckResult struct {
	expected  map[string]bool
	received  int
	respondTo *actor.PID
}

func NewMasterActor(config config.Config, deviceActorProvider DeviceActorProvider, mqttActorProvider MQTTActorProvider,
	historyActorProvider HistoryActorProvider, logger *zap.Logger) *MasterActor {
	act := &MasterActor{
		config:               config,
		behavior:             actor.NewBehavior(),
		stash:                &Stash{},
		logger:               ActorLogger(domain.ACTOR_ID_MASTER, logger),
		eventStream:          &eventstream.EventStream{},
		deviceActorProvider:  deviceActorProvider,
		mqttActorProvider:    mqttActorProvider,
		historyActorProvider: historyActorProvider,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MasterActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MasterActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("master@starting started")

		// start device child
		deviceActorPID, err := state.startDeviceActor(ctx)
		if err != nil {
			panic(err)
		}
		state.deviceActor = deviceActorPID

		// start MQTT child
		mqttActorPID, err := state.startMQTTActor(ctx)
		if err != nil {
			panic(err)
		}
		state.mqttActor = mqttActorPID

		// start history child before the coordinator so it sees the first states
		if state.config.History.Enable && state.historyActorProvider != nil {
			historyActorPID, err := state.startHistoryActor(ctx)
			if err != nil {
				panic(err)
			}
			state.historyActor = historyActorPID
		}

		// start coordinator child
		coordinatorActorPID, err := state.startCoordinatorActor(ctx)
		if err != nil {
			panic(err)
		}
		state.coordinatorActor = coordinatorActorPID

		// start HA Discovery
		if state.config.MQTT.HADiscoveryEnable {
			_, err := state.startHADiscoveryActor(ctx)
			if err != nil {
				panic(err)
			}
		}

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("master@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("master@default ActorHealthRequest")
		state.currentHealthCheck.reset(state.children())
		state.currentHealthCheck.respondTo = ctx.Sender()
		for id, pid := range state.children() {
			RequestHealth(ctx, pid, id, 500*time.Millisecond)
		}
		ctx.SetReceiveTimeout(1 * time.Second)
		state.behavior.BecomeStacked(state.HealthCheckReceive)
	case domain.GetEntitiesRequest:
		state.logger.Debug("master@default GetEntitiesRequest")
		ctx.Forward(state.coordinatorActor)
	case domain.GetHistoryRequest:
		state.logger.Debug("master@default GetHistoryRequest")
		if state.historyActor == nil {
			ForRequest(msg).Respond(ctx, domain.GetHistoryResponse{
				ActorResponseMixIn: domain.ErrorResponse(ErrHistoryDisabled),
			})
			return
		}
		ctx.Forward(state.historyActor)
	case *actor.Terminated:
		// the device is required, give up when its supervisor does
		if msg.Who.Equal(state.deviceActor) {
			state.logger.Error("master@default device terminated")
			panic(errors.New("device terminated"))
		}
	default:
		state.logger.Debug("master@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *MasterActor) HealthCheckReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		// if some actor does not respond to healthCheck, assume not healthy
		ctx.CancelReceiveTimeout()
		state.currentHealthCheck.respond(ctx)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthResponse:
		state.logger.Debug("master@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.currentHealthCheck.record(msg)
		if state.currentHealthCheck.allReceived() {
			ctx.CancelReceiveTimeout()
			state.currentHealthCheck.respond(ctx)
			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		}
	default:
		state.logger.Debug("master@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) children() map[string]*actor.PID {
	children := map[string]*actor.PID{
		domain.ACTOR_ID_DEVICE:      state.deviceActor,
		domain.ACTOR_ID_MQTT:        state.mqttActor,
		domain.ACTOR_ID_COORDINATOR: state.coordinatorActor,
	}
	if state.historyActor != nil {
		children[domain.ACTOR_ID_HISTORY] = state.historyActor
	}
	return children
}

func (state *MasterActor) startDeviceActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	deviceProps := actor.PropsFromProducer(func() actor.Actor {
		return state.deviceActorProvider()
	}, actor.WithSupervisor(supervisor))
	return ctx.SpawnNamed(deviceProps, domain.ACTOR_ID_DEVICE)
}

func (state *MasterActor) startMQTTActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	mqttProps := actor.PropsFromProducer(func() actor.Actor {
		return state.mqttActorProvider(state.eventStream)
	}, actor.WithSupervisor(supervisor))
	return ctx.SpawnNamed(mqttProps, domain.ACTOR_ID_MQTT)
}

func (state *MasterActor) startHistoryActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewOneForOneStrategy(3, 10*time.Second, state.restartDecider)

	historyProps := actor.PropsFromProducer(func() actor.Actor {
		return state.historyActorProvider(state.eventStream)
	}, actor.WithSupervisor(supervisor))
	return ctx.SpawnNamed(historyProps, domain.ACTOR_ID_HISTORY)
}

func (state *MasterActor) startCoordinatorActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewOneForOneStrategy(10, 1*time.Minute, state.restartDecider)

	coordinatorProps := actor.PropsFromProducer(func() actor.Actor {
		return NewCoordinatorActor(&state.config, state.deviceActor, state.eventStream, state.logger)
	}, actor.WithSupervisor(supervisor))
	return ctx.SpawnNamed(coordinatorProps, domain.ACTOR_ID_COORDINATOR)
}

func (state *MasterActor) startHADiscoveryActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewOneForOneStrategy(3, 10*time.Second, state.restartDecider)

	haDiscProps := actor.PropsFromProducer(func() actor.Actor {
		return NewHADiscoveryActor(&state.config, state.coordinatorActor, state.mqttActor, state.logger)
	}, actor.WithSupervisor(supervisor))
	return ctx.SpawnNamed(haDiscProps, domain.ACTOR_ID_HA_DISCOVERY)
}

func (state *MasterActor) restartDecider(reason any) actor.Directive {
	state.logger.Warn("master: handling failure for child", zap.Any("reason", reason))
	return actor.RestartDirective
}

func (state *healthCheckResult) reset(children map[string]*actor.PID) {
	state.expected = map[string]bool{}
	for id := range children {
		state.expected[id] = false
	}
	state.received = 0
}

func (state *healthCheckResult) record(resp domain.ActorHealthResponse) {
	if _, ok := state.expected[resp.Id]; !ok {
		return
	}
	state.received++
	state.expected[resp.Id] = resp.Healthy
}

func (state *healthCheckResult) allReceived() bool {
	return state.received == len(state.expected)
}

func (state *healthCheckResult) allHealthy() bool {
	for _, healthy := range state.expected {
		if !healthy {
			return false
		}
	}
	return true
}

func (state *healthCheckResult) respond(ctx actor.Context) {
	resp := domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_MASTER,
		Healthy: state.allHealthy() && state.allReceived(),
	}
	if state.respondTo != nil {
		ctx.Send(state.respondTo, resp)
	}
}
