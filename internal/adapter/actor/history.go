package actor

import (
	"fmt"
	"time"

	"github.com/berfenger/ld2450ble2mqtt/internal/adapter/history"
	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"
	"github.com/berfenger/ld2450ble2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

const historyPruneInterval = 10 * time.Minute

type HistoryStoreProvider func() (*history.Store, error)

// HistoryActor records every entity state written to the event stream and
// drops readings older than maxAge.
type HistoryActor struct {
	behavior       actor.Behavior
	storeProvider  HistoryStoreProvider
	store          *history.Store
	maxAge         time.Duration
	cancelPrune    scheduler.CancelFunc
	eventStream    *eventstream.EventStream
	eventStreamSub *eventstream.Subscription
	now            func() time.Time
	logger         *zap.Logger
}

type pruneReadings struct{}

type recordReading struct {
	event domain.EntityStateUpdateEvent
	at    time.Time
}

func NewHistoryActor(storeProvider HistoryStoreProvider, maxAge time.Duration, eventStream *eventstream.EventStream, logger *zap.Logger) *HistoryActor {
	act := &HistoryActor{
		storeProvider: storeProvider,
		maxAge:        maxAge,
		eventStream:   eventStream,
		behavior:      actor.NewBehavior(),
		now:           time.Now,
		logger:        actorutil.ActorLogger(domain.ACTOR_ID_HISTORY, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *HistoryActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *HistoryActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("history@starting started")
		store, err := state.storeProvider()
		if err != nil {
			state.logger.Error("history@starting could not open store", zap.Error(err))
			panic(err)
		}
		state.store = store

		root, self, now := ctx.ActorSystem().Root, ctx.Self(), state.now
		state.eventStreamSub = state.eventStream.SubscribeWithPredicate(func(value any) {
			root.Send(self, recordReading{event: value.(domain.EntityStateUpdateEvent), at: now()})
		}, func(value any) bool {
			_, ok := value.(domain.EntityStateUpdateEvent)
			return ok
		})
		if state.maxAge > 0 {
			ctx.Send(self, pruneReadings{})
			state.cancelPrune = scheduler.NewTimerScheduler(ctx).SendRepeatedly(historyPruneInterval, historyPruneInterval, self, pruneReadings{})
		}
		state.behavior.Become(state.DefaultReceive)
	default:
		state.logger.Debug("history@starting default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *HistoryActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("history@default ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_HISTORY,
			Healthy: state.store.Ping() == nil,
			State:   "idle",
		})
	case recordReading:
		err := state.store.Record(domain.HistoryReading{
			Timestamp: msg.at,
			UniqueId:  msg.event.SensorId(),
			Key:       msg.event.Key,
			Value:     msg.event.Value,
			Available: msg.event.Available,
		})
		if err != nil {
			state.logger.Error("history@default could not record reading", zap.Error(err))
		}
	case pruneReadings:
		if state.maxAge <= 0 {
			return
		}
		n, err := state.store.Prune(state.now().Add(-state.maxAge))
		if err != nil {
			state.logger.Error("history@default could not prune readings", zap.Error(err))
			return
		}
		state.logger.Debug("history@default pruned readings", zap.Int64("count", n))
	case domain.GetHistoryRequest:
		state.logger.Debug("history@default GetHistoryRequest", zap.String("unique_id", msg.UniqueId))
		readings, err := state.store.Readings(msg.UniqueId, msg.Limit)
		actorutil.ForRequest(msg).Respond(ctx, domain.GetHistoryResponse{
			ActorResponseMixIn: domain.ErrorResponse(err),
			Readings:           readings,
		})
	case *actor.Restarting:
		state.stop()
	case *actor.Stopping:
		state.stop()
	default:
		state.logger.Debug("history@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *HistoryActor) stop() {
	if state.cancelPrune != nil {
		state.cancelPrune()
		state.cancelPrune = nil
	}
	if state.eventStreamSub != nil {
		state.eventStream.Unsubscribe(state.eventStreamSub)
		state.eventStreamSub = nil
	}
	if state.store != nil {
		state.store.Close()
		state.store = nil
	}
}
