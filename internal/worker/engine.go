package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/campuswash/laundry/internal/config"
	"github.com/campuswash/laundry/internal/messaging"
)

// HandlerRegistration binds a message topic to its handler. Later registrations
// for the same topic replace earlier ones.
type HandlerRegistration struct {
	Topic   string
	Handler messaging.Handler
}

// Params collects dependencies via Fx.
type Params struct {
	fx.In

	Client        messaging.Client
	Logger        *zap.Logger
	Config        config.Config
	Registrations []HandlerRegistration `group:"worker.handlers"`
}

const maxBackoff = 30 * time.Second

// Engine orchestrates background message consumption.
type Engine struct {
	client        messaging.Client
	logger        *zap.Logger
	cfg           config.Config
	registrations map[string]messaging.Handler
	cancel        context.CancelFunc
	group         *errgroup.Group
}

// NewEngine constructs the worker Engine.
func NewEngine(p Params) *Engine {
	reg := make(map[string]messaging.Handler, len(p.Registrations))
	for _, r := range p.Registrations {
		if r.Topic == "" || r.Handler == nil {
			continue
		}
		if _, dup := reg[r.Topic]; dup {
			p.Logger.Warn("replacing worker handler", zap.String("topic", r.Topic))
		}
		reg[r.Topic] = r.Handler
	}

	return &Engine{
		client:        p.Client,
		logger:        p.Logger,
		cfg:           p.Config,
		registrations: reg,
	}
}

// Module wires the engine into Fx lifecycle.
var Module = fx.Options(
	fx.Provide(NewEngine),
	fx.Invoke(func(lc fx.Lifecycle, engine *Engine) {
		lc.Append(fx.Hook{
			OnStart: engine.Start,
			OnStop:  engine.Stop,
		})
	}),
)

// Start launches the configured number of consumers. It is a no-op when
// messaging or workers are disabled.
func (e *Engine) Start(ctx context.Context) error {
	if !e.cfg.Messaging.Enabled || !e.cfg.Messaging.Workers.Enabled {
		e.logger.Info("worker engine disabled")

		return nil
	}
	if len(e.registrations) == 0 {
		e.logger.Info("worker engine has no handlers; skipping")

		return nil
	}

	concurrency := e.cfg.Messaging.Workers.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	runCtx, cancel := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(runCtx)
	e.cancel = cancel
	e.group = group

	for i := 0; i < concurrency; i++ {
		i := i
		group.Go(func() error {
			return e.consumeLoop(groupCtx, i)
		})
	}

	e.logger.Info("worker engine started", zap.Int("workers", concurrency))

	return nil
}

// Stop cancels the consumers and waits for in-flight messages. It returns the
// error that ended a consumer early, if any.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel == nil {
		return nil
	}
	e.cancel()
	done := make(chan error, 1)
	go func() {
		done <- e.group.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			e.logger.Error("worker engine stopped after consumer failure", zap.Error(err))

			return err
		}
		e.logger.Info("worker engine stopped")

		return nil
	}
}

// Dispatch routes msg to the handler registered for its topic. Messages for
// unknown topics are acknowledged and dropped.
func (e *Engine) Dispatch(ctx context.Context, msg messaging.Message) error {
	handler, ok := e.registrations[msg.Topic]
	if !ok {
		e.logger.Warn("no handler for topic", zap.String("topic", msg.Topic))

		return nil
	}
	return handler(ctx, msg)
}

// consumeLoop retries transient consume errors with backoff. It returns nil once
// ctx ends and the error when the client reports it is closed.
func (e *Engine) consumeLoop(ctx context.Context, workerID int) error {
	initial := e.cfg.Messaging.Workers.PollInterval
	if initial <= 0 {
		initial = time.Second
	}
	backoff := initial
	for {
		if ctx.Err() != nil {
			return nil
		}

		err := e.client.Consume(ctx, func(msgCtx context.Context, msg messaging.Message) error {
			e.logger.Debug("processing message", zap.String("topic", msg.Topic), zap.Int("worker", workerID))

			backoff = initial
			return e.Dispatch(msgCtx, msg)
		})

		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		if errors.Is(err, messaging.ErrClosed) {
			return fmt.Errorf("worker %d: %w", workerID, err)
		}

		e.logger.Error("consume loop error", zap.Int("worker", workerID), zap.Error(err))

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil
		}

		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}
