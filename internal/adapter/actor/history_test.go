package actor

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/berfenger/ld2450ble2mqtt/internal/adapter/history"
	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"
	"github.com/berfenger/ld2450ble2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHistoryActor(t *testing.T) {

	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	es := eventstream.EventStream{}
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewHistoryActor(func() (*history.Store, error) {
			return history.NewStore(":memory:")
		}, 0, &es, logger)
	})
	pid := context.Spawn(props)

	health, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, time.Second).Result()
	require.NoError(t, err)
	assert.True(t, health.(domain.ActorHealthResponse).Healthy)

	uniqueId := domain.UniqueId("AA:BB:CC:DD:EE:FF", domain.TargetTwoY)
	for _, v := range []int{1650, 2980, 0} {
		es.Publish(domain.EntityStateUpdateEvent{
			SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: uniqueId},
			Key:                    domain.TargetTwoY,
			Value:                  v,
			Available:              true,
		})
	}
	// ignored
	es.Publish(domain.BridgeStateUpdateEvent{Value: true})

	assert.Eventually(t, func() bool {
		res, err := context.RequestFuture(pid, domain.GetHistoryRequest{UniqueId: uniqueId, Limit: 10}, time.Second).Result()
		if err != nil {
			return false
		}
		return len(res.(domain.GetHistoryResponse).Readings) == 3
	}, 3*time.Second, 50*time.Millisecond)

	res, err := context.RequestFuture(pid, domain.GetHistoryRequest{UniqueId: uniqueId, Limit: 1}, time.Second).Result()
	require.NoError(t, err)
	resp := res.(domain.GetHistoryResponse)
	require.False(t, resp.HasResponseError())
	require.Len(t, resp.Readings, 1)
	assert.Equal(t, domain.TargetTwoY, resp.Readings[0].Key)

	context.Stop(pid)
	as.Shutdown()
}

func TestHistoryActorPrunesOldReadings(t *testing.T) {

	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	var offset atomic.Int64
	offset.Store(int64(-2 * time.Hour))

	es := eventstream.EventStream{}
	props := actor.PropsFromProducer(func() actor.Actor {
		act := NewHistoryActor(func() (*history.Store, error) {
			return history.NewStore(":memory:")
		}, time.Hour, &es, logger)
		act.now = func() time.Time { return time.Now().Add(time.Duration(offset.Load())) }
		return act
	})
	pid := context.Spawn(props)

	uniqueId := domain.UniqueId("AA:BB:CC:DD:EE:FF", domain.TargetOneX)
	publish := func(v int) {
		es.Publish(domain.EntityStateUpdateEvent{
			SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: uniqueId},
			Key:                    domain.TargetOneX,
			Value:                  v,
			Available:              true,
		})
	}
	readings := func() []domain.HistoryReading {
		res, err := context.RequestFuture(pid, domain.GetHistoryRequest{UniqueId: uniqueId}, time.Second).Result()
		if err != nil {
			return nil
		}
		return res.(domain.GetHistoryResponse).Readings
	}

	// wait for the actor to subscribe
	_, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, time.Second).Result()
	require.NoError(t, err)

	publish(1)
	publish(2)
	assert.Eventually(t, func() bool { return len(readings()) == 2 }, 3*time.Second, 50*time.Millisecond)

	offset.Store(0)
	publish(3)
	assert.Eventually(t, func() bool { return len(readings()) == 3 }, 3*time.Second, 50*time.Millisecond)

	context.Send(pid, pruneReadings{})
	assert.Eventually(t, func() bool {
		r := readings()
		return len(r) == 1 && r[0].Value == 3
	}, 3*time.Second, 50*time.Millisecond)

	context.Stop(pid)
	as.Shutdown()
}
