// Package outbox is the in-process event bus placement events are published on after commit.
// It is not durable: events still queued when the process exits are lost.
package outbox

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	domoutbox "github.com/Zhima-Mochi/minishop-bookshop/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability"
	"github.com/Zhima-Mochi/minishop-bookshop/internal/observability/logctx"
)

const componentOutbox = "outbox"

var ErrBusStopped = errors.New("outbox: bus stopped")

type Option func(*Bus)

// WithQueueSize sets the publish buffer; Publish blocks once it is full.
func WithQueueSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.queueSize = n
		}
	}
}

// WithConcurrency caps how many handlers run at once for one event.
func WithConcurrency(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

func WithHandlerTimeout(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.handlerTimeout = d
		}
	}
}

type Bus struct {
	mu   sync.RWMutex
	subs map[string][]domoutbox.Handler

	// stateMu guards stopped and closing queue; held for reading across a send.
	stateMu sync.RWMutex
	queue   chan envelope
	stopped bool

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}

	queueSize      int
	concurrency    int
	handlerTimeout time.Duration
	log            observability.Logger
}

type envelope struct {
	id    string
	event domoutbox.Event
}

func NewBus(logger observability.Logger, opts ...Option) *Bus {
	if logger == nil {
		logger = observability.NopLogger()
	}
	b := &Bus{
		subs:           make(map[string][]domoutbox.Handler),
		queueSize:      1024,
		concurrency:    8,
		handlerTimeout: 30 * time.Second,
		done:           make(chan struct{}),
		log:            logger.With(observability.F("component", componentOutbox)),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.queue = make(chan envelope, b.queueSize)
	return b
}

func (b *Bus) Subscribe(eventName string, h domoutbox.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], h)
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
		b.cancel = cancel
		go b.dispatchLoop(bg)
		logctx.FromOr(ctx, b.log).Info("event_bus_started")
	})
}

// Stop rejects further publishes and waits for already queued events to be handled,
// or for ctx to expire, whichever comes first.
func (b *Bus) Stop(ctx context.Context) {
	b.stopOnce.Do(func() {
		b.stateMu.Lock()
		b.stopped = true
		close(b.queue)
		b.stateMu.Unlock()

		logger := logctx.FromOr(ctx, b.log)
		if b.cancel == nil {
			logger.Info("event_bus_stopped")
			return
		}
		select {
		case <-b.done:
		case <-ctx.Done():
			logger.Warn("event_bus_drain_aborted", observability.F("error", ctx.Err()))
		}
		b.cancel()
		logger.Info("event_bus_stopped")
	})
}

func (b *Bus) Publish(ctx context.Context, e domoutbox.Event) error {
	if e == nil {
		return nil
	}
	env := envelope{id: uuid.NewString(), event: e}
	logger := logctx.FromOr(ctx, b.log).With(
		observability.F("event", e.EventName()),
		observability.F("event_id", env.id),
	)

	b.stateMu.RLock()
	defer b.stateMu.RUnlock()
	if b.stopped {
		return ErrBusStopped
	}

	select {
	case b.queue <- env:
		logger.Debug("event_enqueued")
		return nil
	case <-ctx.Done():
		logger.Warn("event_enqueue_aborted", observability.F("error", ctx.Err()))
		return ctx.Err()
	}
}

func (b *Bus) dispatchLoop(ctx context.Context) {
	defer close(b.done)
	for env := range b.queue {
		if ctx.Err() != nil {
			return
		}
		b.fanout(ctx, env)
	}
}

func (b *Bus) fanout(ctx context.Context, env envelope) {
	name := env.event.EventName()
	logger := b.log.With(
		observability.F("event", name),
		observability.F("event_id", env.id),
	)

	b.mu.RLock()
	handlers := append([]domoutbox.Handler(nil), b.subs[name]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		logger.Debug("event_dropped_no_subscriber")
		return
	}

	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup

	for _, h := range handlers {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event_handler_panic",
						observability.F("panic", r),
						observability.F("stack", string(debug.Stack())),
					)
				}
				<-sem
				wg.Done()
			}()

			hctx, cancel := context.WithTimeout(ctx, b.handlerTimeout)
			defer cancel()
			if err := h(logctx.With(hctx, logger), env.event); err != nil {
				logger.Warn("event_handler_error", observability.F("error", err))
			}
		}()
	}

	wg.Wait()
	logger.Debug("event_fanned_out", observability.F("handlers", len(handlers)))
}
