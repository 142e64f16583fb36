package actor

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/berfenger/ld2450ble2mqtt/internal/config"
	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"
	"github.com/berfenger/ld2450ble2mqtt/internal/mqtt"
	"github.com/berfenger/ld2450ble2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

type MQTTActor struct {
	config         *config.Config
	behavior       actor.Behavior
	stash          *actorutil.Stash
	client         *mqtt.MQTTClient
	eventStream    *eventstream.EventStream
	eventStreamSub *eventstream.Subscription
	discovery      []discoveryMessage
	pending        int
	logger         *zap.Logger
}

type MQTTConnected struct {
}

type MQTTSubscribed struct {
}

type MQTTConnectionLost struct {
	Error error
}

// HAStatusOnline is received when Home Assistant (re)starts and asks for
// discovery to be sent again.
type HAStatusOnline struct {
}

type publishResult struct {
	Error error
}

type discoveryMessage struct {
	topic   string
	payload []byte
}

func NewMQTTActor(config *config.Config, eventStream *eventstream.EventStream, logger *zap.Logger) *MQTTActor {
	act := &MQTTActor{
		config:      config,
		eventStream: eventStream,
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_MQTT, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MQTTActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MQTTActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("mqtt@starting started")
		root, self := ctx.ActorSystem().Root, ctx.Self()

		// create MQTT client
		state.client = mqtt.CreateMQTTClient(state.config, mqtt.OptsFromConfig(state.config), func(_ pahomqtt.Client) {
		}, func(_ pahomqtt.Client, err error) {
			root.Send(self, MQTTConnectionLost{Error: err})
		})

		// connect to MQTT server
		state.client.Connect(func(err error) {
			if err != nil {
				root.Send(self, MQTTConnectionLost{Error: err})
			} else {
				root.Send(self, MQTTConnected{})
			}
		}, 10*time.Second)

	case MQTTConnected:
		state.logger.Debug("mqtt@starting connected")
		root, self := ctx.ActorSystem().Root, ctx.Self()

		state.client.Publish(state.client.BridgeStateTopic(), mqtt.MQTT_PAYLOAD_ONLINE, 0, true, func(error) {}, 500*time.Millisecond)

		state.subscribeEventStream(ctx)

		// republish discovery on Home Assistant birth message
		state.client.SubscribeToHAStatusTopic(func(_ pahomqtt.Client, m pahomqtt.Message) {
			if string(m.Payload()) == mqtt.MQTT_PAYLOAD_ONLINE {
				root.Send(self, HAStatusOnline{})
			}
		}, func(err error) {
			if err != nil {
				root.Send(self, MQTTConnectionLost{Error: err})
			} else {
				root.Send(self, MQTTSubscribed{})
			}
		}, 1*time.Second)
	case MQTTSubscribed:
		// init completed, transition to default state
		state.logger.Debug("mqtt@starting subscribed")
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case MQTTConnectionLost:
		// if connection lost, stop actor and let supervisor decide
		state.logger.Error("mqtt@starting connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	case *actor.Restarting:
		state.stop()
	default:
		state.logger.Debug("mqtt@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MQTTActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Restarting:
		state.stop()
	case *actor.Stopping:
		state.stop()
	case domain.ActorHealthRequest:
		state.logger.Debug("mqtt@default ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: true,
			State:   "idle",
		})
	case domain.PublishSensorUpdateRequest:
		state.logger.Debug("mqtt@default PublishSensorUpdateRequest", zap.String("type", fmt.Sprintf("%T", msg.Event)))
		state.publishSensorValue(ctx, msg.Event, msg.Retain)
	case domain.PublishDiscoveryRequest:
		state.logger.Debug("mqtt@default PublishDiscoveryRequest", zap.Int("sensors", len(msg.Sensors)))
		err := state.publishHomeAssistantDiscovery(msg.Sensors, msg.Bridge)
		if err != nil {
			state.logger.Error("mqtt@default PublishDiscoveryRequest error", zap.Error(err))
		}
		actorutil.ForRequest(msg).Respond(ctx, domain.PublishDiscoveryResponse{
			ActorResponseMixIn: domain.ErrorResponse(err),
		})
	case HAStatusOnline:
		state.logger.Info("mqtt@default homeassistant online, republishing discovery", zap.Int("messages", len(state.discovery)))
		state.republishDiscovery()
	case MQTTConnectionLost:
		// if connection lost, stop actor and let supervisor decide
		state.logger.Error("mqtt@default connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	default:
		state.logger.Debug("mqtt@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *MQTTActor) subscribeEventStream(ctx actor.Context) {
	if state.eventStream == nil || state.eventStreamSub != nil {
		return
	}
	root, self := ctx.ActorSystem().Root, ctx.Self()
	state.eventStreamSub = state.eventStream.SubscribeWithPredicate(func(value any) {
		root.Send(self, domain.PublishSensorUpdateRequest{
			Event: value.(domain.SensorUpdateEvent),
		})
	}, func(value any) bool {
		_, ok := value.(domain.SensorUpdateEvent)
		return ok
	})
}

func (state *MQTTActor) publishSensorValue(ctx actor.Context, event domain.SensorUpdateEvent, retain bool) {
	msgs, err := state.client.EventToMessage(event)
	if err != nil {
		state.logger.Warn("mqtt@publish unsupported event", zap.String("type", fmt.Sprintf("%T", event)))
		return
	}
	root, self := ctx.ActorSystem().Root, ctx.Self()
	for _, msg := range msgs {
		state.logger.Sugar().Debugf("mqtt@publish sensor publish %s => %s", msg.Topic, msg.Payload)
		state.client.Publish(msg.Topic, msg.Payload, 1, msg.Retain || retain, func(err error) {
			root.Send(self, publishResult{Error: err})
		}, 5*time.Second)
	}
	state.pending = len(msgs)
	if state.pending > 0 {
		state.behavior.BecomeStacked(state.EventPublishResultReceive)
	}
}

func (state *MQTTActor) EventPublishResultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case publishResult:
		if msg.Error != nil {
			state.logger.Error("mqtt@publishing could not publish a message", zap.Error(msg.Error))
		}
		state.pending--
		if state.pending <= 0 {
			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		}
	case MQTTConnectionLost:
		state.logger.Error("mqtt@publishing connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	case *actor.Stopping:
		state.stop()
	default:
		state.logger.Debug("mqtt@publishing stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MQTTActor) publishHomeAssistantDiscovery(sensors []domain.GenericSensor, bridge *domain.Device) error {
	origin := mqtt.BridgeOrigin(bridge)
	messages := make([]discoveryMessage, 0, len(sensors))
	for i := range sensors {
		msg := mqtt.GenericSensorToHADiscoveryMessage(state.client, sensors[i])
		msg.Origin = origin
		payload, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		messages = append(messages, discoveryMessage{
			topic:   state.client.HADiscoverySensorTopic(sensors[i]),
			payload: payload,
		})
	}
	state.discovery = messages
	state.republishDiscovery()
	return nil
}

func (state *MQTTActor) republishDiscovery() {
	for _, msg := range state.discovery {
		state.client.Publish(msg.topic, msg.payload, 0, true, func(error) {}, 1*time.Second)
	}
}

func (state *MQTTActor) stop() {
	state.logger.Debug("mqtt: disconnect")
	if state.eventStreamSub != nil {
		state.eventStream.Unsubscribe(state.eventStreamSub)
		state.eventStreamSub = nil
	}
	if state.client != nil {
		state.client.Publish(state.client.BridgeStateTopic(), mqtt.MQTT_PAYLOAD_OFFLINE, 0, true, func(error) {}, 500*time.Millisecond)
		state.client.Disconnect(500 * time.Millisecond)
	}
}

// Dummy actor, maps events to messages without a broker.
func NewTestMQTTActor(config *config.Config, eventStream *eventstream.EventStream, logger *zap.Logger) *MQTTActor {
	act := &MQTTActor{
		config:      config,
		eventStream: eventStream,
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_MQTT, logger),
	}
	act.behavior.Become(act.DummyReceive)
	return act
}

func (state *MQTTActor) DummyReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.client = mqtt.CreateMQTTClient(state.config, mqtt.OptsFromConfig(state.config), nil, nil)
		state.subscribeEventStream(ctx)
	case *actor.Stopping:
		if state.eventStreamSub != nil {
			state.eventStream.Unsubscribe(state.eventStreamSub)
			state.eventStreamSub = nil
		}
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: true,
			State:   "idle",
		})
	case domain.PublishSensorUpdateRequest:
		msgs, err := state.client.EventToMessage(msg.Event)
		if err == nil {
			for _, m := range msgs {
				state.logger.Sugar().Debugf("mqtt@dummy %s => %s", m.Topic, m.Payload)
			}
		}
		if msg.ReplyToRef != nil {
			actorutil.ForRequest(msg).Respond(ctx, domain.PublishSensorUpdateResponse{
				ActorResponseMixIn: domain.ErrorResponse(err),
			})
		}
	case domain.PublishDiscoveryRequest:
		state.logger.Debug("mqtt@dummy PublishDiscoveryRequest", zap.Int("sensors", len(msg.Sensors)))
		actorutil.ForRequest(msg).Respond(ctx, domain.PublishDiscoveryResponse{})
	}
}
