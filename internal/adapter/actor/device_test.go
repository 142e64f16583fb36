package actor

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"
	"github.com/berfenger/ld2450ble2mqtt/internal/util/actorutil"
	"github.com/berfenger/ld2450ble2mqtt/pkg/ld2450"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetDeviceInfoDeviceActor(t *testing.T) {

	assert := assert.New(t)

	reader, err := ld2450.CreateTestReader()
	require.NoError(t, err)

	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewDeviceActor(reader, time.Second, logger) })
	pid := context.Spawn(props)

	result, err := context.RequestFuture(pid, domain.GetDeviceInfoRequest{}, 5*time.Second).Result()
	require.NoError(t, err)
	resp, ok := result.(domain.GetDeviceInfoResponse)
	require.True(t, ok)
	require.False(t, resp.HasResponseError())

	assert.Equal(ld2450.TestReaderAddress, resp.Info.Address)
	assert.Equal(ld2450.Manufacturer, resp.Info.Manufacturer)
	assert.Equal(ld2450.Model, resp.Info.Model)
	assert.Equal("V2.02.23090617", resp.Info.Version)

	context.Stop(pid)
	as.Shutdown()
}

func TestReadFrameDeviceActor(t *testing.T) {

	reader := ld2450.NewTestReader(ld2450.TestReaderAddress)

	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewDeviceActor(reader, time.Second, logger) })
	pid := context.Spawn(props)

	// requests sent back to back are served in order
	f1 := context.RequestFuture(pid, domain.ReadFrameRequest{}, 5*time.Second)
	f2 := context.RequestFuture(pid, domain.ReadFrameRequest{}, 5*time.Second)

	r1, err := f1.Result()
	require.NoError(t, err)
	r2, err := f2.Result()
	require.NoError(t, err)

	frames := ld2450.DefaultTestFrames()
	resp1 := r1.(domain.ReadFrameResponse)
	resp2 := r2.(domain.ReadFrameResponse)
	require.NotNil(t, resp1.Frame)
	require.NotNil(t, resp2.Frame)
	assert.Equal(t, frames[0], *resp1.Frame)
	assert.Equal(t, frames[1], *resp2.Frame)

	reader.SetOffline(true)
	r3, err := context.RequestFuture(pid, domain.ReadFrameRequest{}, 5*time.Second).Result()
	require.NoError(t, err)
	resp3 := r3.(domain.ReadFrameResponse)
	assert.True(t, resp3.HasResponseError())
	assert.Nil(t, resp3.Frame)

	health, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, time.Second).Result()
	require.NoError(t, err)
	assert.True(t, health.(domain.ActorHealthResponse).Healthy)

	context.Stop(pid)
	as.Shutdown()
}

// slowReader takes longer than the actor's read timeout on every frame
type slowReader struct {
	*ld2450.TestReader
	delay   time.Duration
	calls   atomic.Int32
	active  atomic.Int32
	overlap atomic.Int32
}

func (r *slowReader) ReadFrame() (*ld2450.Frame, error) {
	r.calls.Add(1)
	if n := r.active.Add(1); n > r.overlap.Load() {
		r.overlap.Store(n)
	}
	defer r.active.Add(-1)
	time.Sleep(r.delay)
	return r.TestReader.ReadFrame()
}

func TestTimedOutReadsDoNotOverlap(t *testing.T) {

	reader := &slowReader{
		TestReader: ld2450.NewTestReader(ld2450.TestReaderAddress),
		delay:      200 * time.Millisecond,
	}

	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewDeviceActor(reader, 25*time.Millisecond, logger) })
	pid := context.Spawn(props)

	var futures []*actor.Future
	for i := 0; i < 5; i++ {
		futures = append(futures, context.RequestFuture(pid, domain.ReadFrameRequest{}, 5*time.Second))
	}
	for _, f := range futures {
		r, err := f.Result()
		require.NoError(t, err)
		assert.True(t, r.(domain.ReadFrameResponse).HasResponseError(), "read times out")
	}

	assert.Equal(t, int32(5), reader.calls.Load())
	assert.Equal(t, int32(1), reader.overlap.Load(), "one reader call at a time")

	// still answers health while a read holds the reader
	health, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, time.Second).Result()
	require.NoError(t, err)
	assert.True(t, health.(domain.ActorHealthResponse).Healthy)

	context.Stop(pid)
	as.Shutdown()
}
