// Package publish announces committed orders to the message fabric.
//
// The workflow hands an order over only after its transaction has committed;
// the handoff is a non-blocking enqueue and actual delivery happens on a
// worker goroutine, so the API caller never waits on broker latency and
// never sees a publish failure.
//
// Delivery is attempted once per order. A broker failure after commit is
// logged for operator follow-up but not redelivered: there is no durable
// outbox table backing this publisher, so "send is attempted after commit"
// is the whole guarantee. Closing that gap needs the pending event written
// in the same transaction as the order plus a poller that retries until
// acknowledged.
package publish

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kidfavor/order-service/internal/order/domain"
	"github.com/kidfavor/order-service/pkg/tracing"
)

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Config struct {
	Topic       string
	QueueSize   int
	SendTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 10 * time.Second
	}
	return c
}

type pending struct {
	event       domain.OrderPlacedEvent
	traceparent string
}

// Publisher queues order-placed events and delivers them asynchronously,
// keyed by order number so the fabric preserves per-order ordering.
type Publisher struct {
	log      *slog.Logger
	producer Producer
	cfg      Config
	queue    chan pending
	done     chan struct{}
}

func New(log *slog.Logger, producer Producer, cfg Config) *Publisher {
	cfg = cfg.withDefaults()
	p := &Publisher{
		log:      log,
		producer: producer,
		cfg:      cfg,
		queue:    make(chan pending, cfg.QueueSize),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// OrderPlaced enqueues the announcement for a freshly committed order. It
// never blocks: when the queue is full the event is dropped and logged,
// consistent with the best-effort delivery documented above. The trace
// context is captured here, before the request span ends.
func (p *Publisher) OrderPlaced(ctx context.Context, o *domain.Order, user *domain.UserSnapshot) {
	ev := pending{
		event:       domain.NewOrderPlacedEvent(o, user),
		traceparent: tracing.Traceparent(ctx),
	}
	select {
	case p.queue <- ev:
	default:
		p.log.ErrorContext(ctx, "publish queue full, dropping order placed event",
			"order_number", o.OrderNumber)
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	for ev := range p.queue {
		p.send(ev)
	}
}

func (p *Publisher) send(ev pending) {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.SendTimeout)
	defer cancel()

	payload, err := json.Marshal(ev.event)
	if err != nil {
		p.log.Error("order placed event serialization failed",
			"order_number", ev.event.OrderNumber, "err", err)
		return
	}

	headers := []kafka.Header{{Key: "event_type", Value: []byte("OrderPlaced")}}
	if ev.traceparent != "" {
		headers = append(headers, kafka.Header{
			Key:   tracing.TraceparentHeader,
			Value: []byte(ev.traceparent),
		})
	}

	msg := kafka.Message{
		Topic:   p.cfg.Topic,
		Key:     []byte(ev.event.OrderNumber),
		Value:   payload,
		Headers: headers,
	}
	if err := p.producer.WriteMessages(ctx, msg); err != nil {
		// The order is already committed; the caller has long since
		// returned. Surface the loss to operators and move on.
		p.log.Error("order placed publish failed",
			"order_number", ev.event.OrderNumber, "topic", p.cfg.Topic, "err", err)
		return
	}
	p.log.Info("order placed event published",
		"order_number", ev.event.OrderNumber, "topic", p.cfg.Topic)
}

// Close stops accepting events and waits for queued ones to be attempted.
func (p *Publisher) Close() {
	close(p.queue)
	<-p.done
}
