package actor

import (
	"fmt"
	"time"

	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"
	"github.com/berfenger/ld2450ble2mqtt/internal/util/actorutil"
	"github.com/berfenger/ld2450ble2mqtt/pkg/ld2450"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// DeviceActor owns the radar reader. Reads run as background tasks and the
// actor stashes every other request until the pending call has returned,
// so the reader is never used concurrently. A call that outlives its
// timeout is answered with an error but still holds the reader.
type DeviceActor struct {
	behavior     actor.Behavior
	stash        *actorutil.Stash
	reader       ld2450.Reader
	readTimeout  time.Duration
	readerBusy   bool
	replyPending bool
	logger       *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

// sent when a reader call returns, whether or not it timed out
type readerReleased struct{}

func NewDeviceActor(reader ld2450.Reader, readTimeout time.Duration, logger *zap.Logger) *DeviceActor {
	act := &DeviceActor{
		reader:      reader,
		readTimeout: readTimeout,
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_DEVICE, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *DeviceActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *DeviceActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("device@starting started")
		if err := state.reader.Open(); err != nil {
			state.logger.Error("device@starting could not open reader", zap.Error(err))
			panic(err)
		}
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.close()
	default:
		state.logger.Debug("device@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *DeviceActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("device@default ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_DEVICE,
			Healthy: true,
			State:   "idle",
		})
	case domain.GetDeviceInfoRequest:
		state.logger.Debug("device@default GetDeviceInfoRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, releasing(ctx, state.getDeviceInfo)),
			mapTaskResult[domain.GetDeviceInfoResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetDeviceInfoResponse{
					ActorResponseMixIn: domain.ErrorResponse(err),
				},
				replyTo: sender,
			}
		}).WithTimeout(state.readTimeout * 2).PipeTo(ctx.Self())
		state.waitDevice()
	case domain.ReadFrameRequest:
		state.logger.Debug("device@default ReadFrameRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, releasing(ctx, state.readFrame)),
			mapTaskResult[domain.ReadFrameResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.ReadFrameResponse{
					ActorResponseMixIn: domain.ErrorResponse(err),
				},
				replyTo: sender,
			}
		}).WithTimeout(state.readTimeout * 2).PipeTo(ctx.Self())
		state.waitDevice()
	case *actor.Restarting:
		state.close()
	case *actor.Stopping:
		state.close()
	default:
		state.logger.Debug("device@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *DeviceActor) WaitingDevice(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("device@waiting backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		if msg.replyTo != nil {
			ctx.Send(msg.replyTo, msg.message)
		}
		state.replyPending = false
		state.releaseDevice(ctx)
	case readerReleased:
		if state.replyPending {
			state.logger.Debug("device@waiting reader released")
		} else {
			state.logger.Warn("device@waiting reader released after timeout")
		}
		state.readerBusy = false
		state.releaseDevice(ctx)
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_DEVICE,
			Healthy: true,
			State:   "reading",
		})
	case *actor.Restarting:
		state.close()
	case *actor.Stopping:
		state.close()
	default:
		state.logger.Debug("device@waiting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *DeviceActor) waitDevice() {
	state.readerBusy = true
	state.replyPending = true
	state.behavior.BecomeStacked(state.WaitingDevice)
}

// releaseDevice leaves the waiting state once the caller was answered and
// the reader call has returned.
func (state *DeviceActor) releaseDevice(ctx actor.Context) {
	if state.readerBusy || state.replyPending {
		return
	}
	state.behavior.UnbecomeStacked()
	state.stash.UnstashAll(ctx)
}

func (state *DeviceActor) getDeviceInfo() (*domain.GetDeviceInfoResponse, error) {
	info, err := state.reader.GetInfo()
	if err != nil {
		state.logger.Warn("device: could not read device info", zap.Error(err))
		return nil, err
	}
	return &domain.GetDeviceInfoResponse{Info: info}, nil
}

func (state *DeviceActor) readFrame() (*domain.ReadFrameResponse, error) {
	frame, err := state.reader.ReadFrame()
	if err != nil {
		state.logger.Debug("device: could not read frame", zap.Error(err))
		return nil, err
	}
	return &domain.ReadFrameResponse{Frame: frame}, nil
}

func (state *DeviceActor) close() {
	if err := state.reader.Close(); err != nil {
		state.logger.Warn("device: close error", zap.Error(err))
	}
}

func releasing[T any](ctx actor.Context, fn func() (*T, error)) func() (*T, error) {
	root, self := ctx.ActorSystem().Root, ctx.Self()
	return func() (*T, error) {
		defer root.Send(self, readerReleased{})
		return fn()
	}
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
