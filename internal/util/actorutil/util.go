package actorutil

import (
	"log/slog"
	"time"

	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// PipeToSelfWithRecover delivers the future result to the actor itself.
// On failure (usually a timeout) mapFn builds the message to deliver instead.
func PipeToSelfWithRecover(ctx actor.Context, future *actor.Future, mapFn func(error) any) {
	ctx.ReenterAfter(future, func(msg any, err error) {
		if err != nil {
			ctx.Send(ctx.Self(), mapFn(err))
			return
		}
		ctx.Send(ctx.Self(), msg)
	})
}

// RequestHealth asks pid for its health and pipes the answer to self.
// A missing answer is turned into an unhealthy response for id.
func RequestHealth(ctx actor.Context, pid *actor.PID, id string, timeout time.Duration) {
	PipeToSelfWithRecover(ctx, ctx.RequestFuture(pid, domain.ActorHealthRequest{}, timeout), func(err error) any {
		return domain.ActorHealthResponse{
			ActorResponseMixIn: domain.ErrorResponse(err),
			Id:                 id,
			Healthy:            false,
		}
	})
}

type ExtendedRequest interface {
	Respond(ctx actor.Context, resp any)
	ReplyTo(ctx actor.Context) *actor.PID
}

type forRequest struct {
	req domain.ActorRequest
}

func ForRequest(r domain.ActorRequest) ExtendedRequest {
	return forRequest{req: r}
}

func (r forRequest) Respond(ctx actor.Context, resp any) {
	if pid := r.ReplyTo(ctx); pid != nil {
		ctx.Send(pid, resp)
	}
}

// ReplyTo prefers the explicit reply address over the message sender.
func (r forRequest) ReplyTo(ctx actor.Context) *actor.PID {
	if r.req.ReplyTo() != nil {
		return (*actor.PID)(r.req.ReplyTo())
	}
	return ctx.Sender()
}

func NewActorSystemWithZapLogger(logger *zap.Logger) *actor.ActorSystem {
	stdOutLogger := zap.NewStdLog(logger)
	slogLevel := slogLevel(logger.Level())

	return actor.NewActorSystem(actor.WithLoggerFactory(func(system *actor.ActorSystem) *slog.Logger {
		return slog.New(tint.NewHandler(stdOutLogger.Writer(), &tint.Options{
			Level:      slogLevel,
			TimeFormat: time.DateTime,
		}))
	}))
}

func slogLevel(level zapcore.Level) slog.Level {
	switch level {
	case zap.DebugLevel:
		return slog.LevelDebug
	case zap.WarnLevel:
		return slog.LevelWarn
	case zap.ErrorLevel, zap.DPanicLevel, zap.PanicLevel, zap.FatalLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ActorLogger(actorName string, logger *zap.Logger) *zap.Logger {
	return logger.With(zap.String("actor", actorName))
}
