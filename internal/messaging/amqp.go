package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/campuswash/laundry/internal/config"
)

const amqpKeyHeader = "message-key"

// amqpClient publishes to a topic exchange and consumes from a queue bound to it.
type amqpClient struct {
	cfg       config.AMQP
	clientID  string
	prefetch  int
	logger    *zap.Logger
	consumers atomic.Int64

	mu      sync.Mutex
	conn    *amqp.Connection
	publish *amqp.Channel
	consume *amqp.Channel
}

func newAMQPClient(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (Client, error) {
	client := &amqpClient{
		cfg:      cfg.Messaging.AMQP,
		clientID: cfg.Messaging.Kafka.ClientID,
		prefetch: cfg.Messaging.Workers.Concurrency,
		logger:   logger,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.connect()
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("closing amqp client")
			return client.close()
		},
	})

	return client, nil
}

func (a *amqpClient) connect() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	conn, err := amqp.Dial(a.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}
	fail := func(err error) error {
		_ = conn.Close()
		return err
	}

	publish, err := conn.Channel()
	if err != nil {
		return fail(fmt.Errorf("open publish channel: %w", err))
	}
	if err := publish.ExchangeDeclare(a.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fail(fmt.Errorf("declare exchange: %w", err))
	}

	consume, err := conn.Channel()
	if err != nil {
		return fail(fmt.Errorf("open consume channel: %w", err))
	}
	q, err := consume.QueueDeclare(a.cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return fail(fmt.Errorf("declare queue: %w", err))
	}
	if err := consume.QueueBind(q.Name, a.Topic(), a.cfg.Exchange, false, nil); err != nil {
		return fail(fmt.Errorf("bind queue: %w", err))
	}
	if a.prefetch > 0 {
		if err := consume.Qos(a.prefetch, 0, false); err != nil {
			return fail(fmt.Errorf("set qos: %w", err))
		}
	}

	a.conn, a.publish, a.consume = conn, publish, consume
	a.logger.Info("amqp connected", zap.String("exchange", a.cfg.Exchange), zap.String("queue", q.Name))
	return nil
}

func (a *amqpClient) close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.conn == nil {
		return nil
	}
	err := a.conn.Close()
	a.conn, a.publish, a.consume = nil, nil, nil
	if errors.Is(err, amqp.ErrClosed) {
		return nil
	}
	return err
}

func (a *amqpClient) channels() (*amqp.Channel, *amqp.Channel, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.conn == nil {
		return nil, nil, fmt.Errorf("amqp client is not connected: %w", ErrClosed)
	}
	return a.publish, a.consume, nil
}

func (a *amqpClient) Publish(ctx context.Context, key []byte, value []byte) error {
	ch, _, err := a.channels()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return ch.Publish(a.cfg.Exchange, a.Topic(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Headers:      amqp.Table{amqpKeyHeader: string(key)},
		Body:         value,
	})
}

func (a *amqpClient) Consume(ctx context.Context, handler Handler) error {
	_, ch, err := a.channels()
	if err != nil {
		return err
	}

	tag := fmt.Sprintf("%s-%d", a.clientID, a.consumers.Add(1))
	deliveries, err := ch.Consume(a.cfg.Queue, tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", a.cfg.Queue, err)
	}
	defer func() {
		if err := ch.Cancel(tag, false); err != nil && !errors.Is(err, amqp.ErrClosed) {
			a.logger.Warn("cancel amqp consumer", zap.String("tag", tag), zap.Error(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("amqp delivery channel: %w", ErrClosed)
			}
			if err := handler(ctx, fromDelivery(d)); err != nil {
				a.logger.Error("message handler failed", zap.Error(err), zap.Uint64("delivery_tag", d.DeliveryTag))
				if nackErr := d.Nack(false, true); nackErr != nil {
					a.logger.Warn("nack failed", zap.Error(nackErr))
				}
				continue
			}
			if err := d.Ack(false); err != nil {
				a.logger.Warn("ack failed", zap.Error(err))
			}
		}
	}
}

// Topic is the routing key messages are published with.
func (a *amqpClient) Topic() string {
	if a.cfg.RoutingKey != "" {
		return a.cfg.RoutingKey
	}
	return a.cfg.Queue
}

func fromDelivery(d amqp.Delivery) Message {
	msg := Message{
		Topic:  d.RoutingKey,
		Value:  append([]byte(nil), d.Body...),
		Offset: int64(d.DeliveryTag),
		Time:   d.Timestamp,
	}
	if len(d.Headers) > 0 {
		msg.Headers = make(map[string]string, len(d.Headers))
		for k, v := range d.Headers {
			msg.Headers[k] = fmt.Sprint(v)
		}
		if key, ok := d.Headers[amqpKeyHeader].(string); ok {
			msg.Key = []byte(key)
		}
	}
	return msg
}
