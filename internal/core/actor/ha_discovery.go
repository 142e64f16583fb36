package actor

import (
	"errors"
	"fmt"
	"time"

	"github.com/berfenger/ld2450ble2mqtt/internal/config"
	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"
	"github.com/berfenger/ld2450ble2mqtt/internal/core/events"
	"github.com/berfenger/ld2450ble2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type HADiscoveryActor struct {
	config                  *config.Config
	behavior                actor.Behavior
	stash                   *actorutil.Stash
	coordinatorActor        *actor.PID
	mqttActor               *actor.PID
	coordinatorActorHealthy bool
	mqttActorHealthy        bool
	healthyRecv             int

	logger *zap.Logger
}

func NewHADiscoveryActor(config *config.Config, coordinatorActor *actor.PID, mqttActor *actor.PID, logger *zap.Logger) *HADiscoveryActor {
	act := &HADiscoveryActor{
		config:           config,
		coordinatorActor: coordinatorActor,
		mqttActor:        mqttActor,
		behavior:         actor.NewBehavior(),
		stash:            &actorutil.Stash{},
		logger:           actorutil.ActorLogger(domain.ACTOR_ID_HA_DISCOVERY, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *HADiscoveryActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *HADiscoveryActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("hadiscovery@starting started")

		// check coordinator and MQTT actors are healthy
		state.healthyRecv = 0
		state.coordinatorActorHealthy = false
		state.mqttActorHealthy = false
		actorutil.RequestHealth(ctx, state.coordinatorActor, domain.ACTOR_ID_COORDINATOR, 5*time.Second)
		actorutil.RequestHealth(ctx, state.mqttActor, domain.ACTOR_ID_MQTT, 5*time.Second)
		state.behavior.Become(state.WaitingHealthyReceive)
	case *actor.Restarting:
	default:
		state.logger.Debug("hadiscovery@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) WaitingHealthyReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthResponse:
		state.logger.Debug("hadiscovery@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.healthyRecv++
		if msg.Healthy {
			switch msg.Id {
			case domain.ACTOR_ID_COORDINATOR:
				state.coordinatorActorHealthy = true
			case domain.ACTOR_ID_MQTT:
				state.mqttActorHealthy = true
			}
		}
		if state.healthyRecv == 2 {
			if !state.coordinatorActorHealthy || !state.mqttActorHealthy {
				panic(errors.New("MQTT actor or coordinator actor are not healthy"))
			}
			actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.coordinatorActor, domain.GetEntitiesRequest{}, 2*time.Second), func(err error) any {
				return domain.GetEntitiesResponse{
					ActorResponseMixIn: domain.ErrorResponse(err),
				}
			})
			state.behavior.Become(state.WaitingEntitiesReceive)
			state.stash.UnstashAll(ctx)
		}
	default:
		state.logger.Debug("hadiscovery@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) WaitingEntitiesReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetEntitiesResponse:
		if msg.HasResponseError() {
			panic(msg.GetResponseError())
		}
		state.logger.Debug("hadiscovery@entities GetEntitiesResponse", zap.Int("entities", len(msg.Entities)))

		bridge := events.BridgeDevice(state.config.MQTT.BaseTopic)
		sensors := events.EntitySensors(msg.Device, msg.Entities)
		sensors = append(sensors, events.ConnectivitySensor(msg.Device, state.config.Device.Address))

		ctx.Send(state.mqttActor, domain.PublishDiscoveryRequest{
			Bridge:  &bridge,
			Sensors: sensors,
		})
		state.behavior.Become(state.Done)
	default:
		state.logger.Debug("hadiscovery@entities default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *HADiscoveryActor) Done(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_HA_DISCOVERY,
			Healthy: true,
			State:   "done",
		})
	case domain.PublishDiscoveryResponse:
		if msg.HasResponseError() {
			state.logger.Error("hadiscovery@done discovery not published", zap.Error(msg.GetResponseError()))
		}
	}
}
