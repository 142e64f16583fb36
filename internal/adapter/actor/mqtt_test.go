package actor

import (
	"testing"
	"time"

	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"
	"github.com/berfenger/ld2450ble2mqtt/internal/util"
	"github.com/berfenger/ld2450ble2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMQTTActor(t *testing.T) {

	cfg := util.LoadTestConfig()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)

	context := as.Root

	es := eventstream.EventStream{}

	props := actor.PropsFromProducer(func() actor.Actor { return NewTestMQTTActor(&cfg, &es, logger) })
	pid := context.Spawn(props)

	result, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 2*time.Second).Result()
	require.NoError(t, err)
	resp, ok := result.(domain.ActorHealthResponse)
	assert.True(t, ok)
	assert.True(t, resp.Healthy)
	assert.Equal(t, domain.ACTOR_ID_MQTT, resp.Id)

	es.Publish(domain.EntityStateUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{
			Id: domain.UniqueId(cfg.Device.Address, domain.TargetOneX),
		},
		DeviceId:  domain.DeviceSlug(cfg.Device.Address),
		Key:       domain.TargetOneX,
		Value:     -782,
		Available: true,
	})
	es.Publish(domain.DeviceAvailabilityUpdateEvent{
		DeviceId:  domain.DeviceSlug(cfg.Device.Address),
		Connected: true,
	})

	// the response goes to the explicit reply address
	future := actor.NewFuture(as, time.Second)
	context.Send(pid, domain.PublishSensorUpdateRequest{
		ActorRequestMixIn: domain.ActorRequestMixIn{ReplyToRef: (*domain.ActorRef)(future.PID())},
		Event:             domain.BridgeStateUpdateEvent{Value: true},
	})
	publish, err := future.Result()
	require.NoError(t, err)
	publishResp, ok := publish.(domain.PublishSensorUpdateResponse)
	require.True(t, ok)
	assert.False(t, publishResp.HasResponseError())

	disc, err := context.RequestFuture(pid, domain.PublishDiscoveryRequest{}, time.Second).Result()
	require.NoError(t, err)
	assert.IsType(t, domain.PublishDiscoveryResponse{}, disc)

	context.Stop(pid)

	time.Sleep(100 * time.Millisecond)

	as.Shutdown()
}
