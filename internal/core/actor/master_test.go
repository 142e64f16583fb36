package actor

import (
	"testing"
	"time"

	adactor "github.com/berfenger/ld2450ble2mqtt/internal/adapter/actor"
	"github.com/berfenger/ld2450ble2mqtt/internal/adapter/history"
	"github.com/berfenger/ld2450ble2mqtt/internal/config"
	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"
	"github.com/berfenger/ld2450ble2mqtt/internal/util"
	"github.com/berfenger/ld2450ble2mqtt/pkg/ld2450"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger(cfg config.Config) *zap.Logger {
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	return zap.Must(logCfg.Build())
}

func spawnMaster(t *testing.T, as *actor.ActorSystem, cfg config.Config) *actor.PID {
	logger := testLogger(cfg)
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterActor(cfg, func() *adactor.DeviceActor {
			return adactor.NewDeviceActor(ld2450.NewTestReader(ld2450.TestReaderAddress), time.Second, logger)
		}, func(es *eventstream.EventStream) *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, es, logger)
		}, func(es *eventstream.EventStream) *adactor.HistoryActor {
			return adactor.NewHistoryActor(func() (*history.Store, error) {
				return history.NewStore(":memory:")
			}, time.Hour, es, logger)
		}, logger)
	})
	pid, err := as.Root.SpawnNamed(props, domain.ACTOR_ID_MASTER)
	require.NoError(t, err)
	return pid
}

func TestMasterActor(t *testing.T) {

	as := actor.NewActorSystem()
	context := as.Root

	cfg := util.LoadTestConfig()
	pid := spawnMaster(t, as, cfg)

	assert.Eventually(t, func() bool {
		res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 5*time.Second).Result()
		if err != nil {
			return false
		}
		healthResp, ok := res.(domain.ActorHealthResponse)
		return ok && healthResp.Healthy
	}, 5*time.Second, 200*time.Millisecond, "healthy is true")

	// history is disabled in the test config
	res, err := context.RequestFuture(pid, domain.GetHistoryRequest{UniqueId: "x"}, time.Second).Result()
	require.NoError(t, err)
	assert.ErrorIs(t, res.(domain.GetHistoryResponse).GetResponseError(), ErrHistoryDisabled)

	context.Stop(pid)

	as.Shutdown()
}

func TestMasterActorEntities(t *testing.T) {

	as := actor.NewActorSystem()
	context := as.Root

	cfg := util.LoadTestConfig()
	cfg.History = config.HistoryConfig{Enable: true, Path: ":memory:"}
	pid := spawnMaster(t, as, cfg)

	var entities domain.GetEntitiesResponse
	assert.Eventually(t, func() bool {
		res, err := context.RequestFuture(pid, domain.GetEntitiesRequest{}, time.Second).Result()
		if err != nil {
			return false
		}
		entities = res.(domain.GetEntitiesResponse)
		return entities.Connected
	}, 5*time.Second, 100*time.Millisecond)

	require.Len(t, entities.Entities, 12)
	assert.NotEmpty(t, entities.EntryId)
	assert.Equal(t, domain.DeviceSlug(ld2450.TestReaderAddress), entities.Device.Id)
	for _, e := range entities.Entities {
		assert.True(t, e.Available, e.UniqueId)
	}

	uniqueId := domain.UniqueId(ld2450.TestReaderAddress, domain.TargetOneY)
	assert.Eventually(t, func() bool {
		res, err := context.RequestFuture(pid, domain.GetHistoryRequest{UniqueId: uniqueId, Limit: 5}, time.Second).Result()
		if err != nil {
			return false
		}
		resp := res.(domain.GetHistoryResponse)
		return !resp.HasResponseError() && len(resp.Readings) > 0
	}, 5*time.Second, 100*time.Millisecond)

	context.Stop(pid)

	as.Shutdown()
}
