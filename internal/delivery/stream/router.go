package stream

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"bugout/internal/bus"
	errs "bugout/internal/errors"
)

type HandlerFunc func(ctx context.Context, msg bus.Message) error

// Source is the consumer side of the bus.
type Source interface {
	Read(ctx context.Context) ([]bus.Message, error)
	Ack(ctx context.Context, msgs []bus.Message) error
}

// Router dispatches every entry of a batch to the handler registered for
// its topic, in the order the source returned them.
type Router struct {
	log         *zap.SugaredLogger
	handlers    map[string]HandlerFunc
	readBackoff []time.Duration
	skipped     atomic.Int64
}

func NewRouter(log *zap.SugaredLogger) *Router {
	return &Router{
		log:         log,
		handlers:    make(map[string]HandlerFunc),
		readBackoff: bus.Backoff,
	}
}

func (r *Router) Handle(topic string, h HandlerFunc) {
	r.handlers[topic] = h
}

// WithReadBackoff replaces the retry schedule for failed reads.
func (r *Router) WithReadBackoff(schedule []time.Duration) *Router {
	r.readBackoff = schedule
	return r
}

func (r *Router) Topics() []string {
	topics := lo.Keys(r.handlers)
	sort.Strings(topics)
	return topics
}

// Skipped counts entries dropped as poison pills.
func (r *Router) Skipped() int64 {
	return r.skipped.Load()
}

// Run reads and dispatches until ctx is done or a fatal error occurs.
// Entries handled before a fatal error are acknowledged; the failing one is
// left pending so a restart sees it again.
func (r *Router) Run(ctx context.Context, src Source) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		var msgs []bus.Message
		err := bus.Retry(ctx, r.readBackoff, func() error {
			var err error
			msgs, err = src.Read(ctx)
			if err != nil && ctx.Err() == nil {
				r.log.Warnw("read failed", "error", err)
			}
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		done, err := r.handleBatch(ctx, msgs)
		if ackErr := src.Ack(context.WithoutCancel(ctx), done); ackErr != nil {
			return errors.Join(err, ackErr)
		}
		if err != nil {
			return err
		}
	}
}

func (r *Router) handleBatch(ctx context.Context, msgs []bus.Message) ([]bus.Message, error) {
	for i, msg := range msgs {
		err := r.Dispatch(ctx, msg)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return msgs[:i], nil
		case errs.IsFatal(err):
			r.log.Errorw("fatal error while handling entry", "topic", msg.Topic, "entry", msg.ID.String(), "error", err)
			return msgs[:i], err
		default:
			r.skipped.Add(1)
			r.log.Warnw("skipping entry", "topic", msg.Topic, "entry", msg.ID.String(), "error", err)
		}
	}
	return msgs, nil
}

// Dispatch runs the handler for one entry, turning a panic into an error.
func (r *Router) Dispatch(ctx context.Context, msg bus.Message) (err error) {
	h, ok := r.handlers[msg.Topic]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrUnknownTopic, msg.Topic)
	}
	defer func() {
		if p := recover(); p != nil {
			r.log.Errorw("handler panicked", "topic", msg.Topic, "entry", msg.ID.String(), "panic", p, "stack", string(debug.Stack()))
			err = fmt.Errorf("handler panic on %s: %v", msg.Topic, p)
		}
	}()
	return h(ctx, msg)
}
