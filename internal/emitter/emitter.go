package emitter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/handfusion/internal/fusion"
)

// DefaultQueueSize bounds the number of events waiting to be published.
const DefaultQueueSize = 64

// Sink delivers an encoded event to a topic.
type Sink interface {
	Send(topic string, payload []byte) error
}

// Emitter turns per-tick summaries into hand events and publishes them on
// {prefix}/{session}/hands. Observe never blocks the tick loop; events that do
// not fit in the queue are dropped and counted.
type Emitter struct {
	sink    Sink
	topic   string
	session string
	logger  *slog.Logger

	queue chan HandEvent

	mu        sync.Mutex
	last      [2]handState
	published uint64
	dropped   uint64
	failed    uint64
}

// New creates an emitter publishing session events through sink.
func New(sink Sink, prefix, session string, logger *slog.Logger) *Emitter {
	return &Emitter{
		sink:    sink,
		topic:   fmt.Sprintf("%s/%s/hands", prefix, session),
		session: session,
		logger:  logger.With("component", "emitter"),
		queue:   make(chan HandEvent, DefaultQueueSize),
	}
}

// Topic returns the topic events are published on.
func (e *Emitter) Topic() string {
	return e.topic
}

// Observe queues the events implied by s relative to the previous summary.
func (e *Emitter) Observe(s fusion.Summary) {
	e.mu.Lock()
	events, next := diff(e.last, s, time.Now())
	e.last = next
	e.mu.Unlock()

	for _, ev := range events {
		ev.Session = e.session
		select {
		case e.queue <- ev:
		default:
			e.mu.Lock()
			e.dropped++
			e.mu.Unlock()
		}
	}
}

// Run publishes queued events until ctx is cancelled.
func (e *Emitter) Run(ctx context.Context) {
	e.logger.Info("emitter started", "topic", e.topic)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("emitter stopped")
			return
		case ev := <-e.queue:
			if err := e.publish(ev); err != nil {
				e.logger.Warn("publish failed", "type", ev.Type, "side", ev.Side, "error", err)
			}
		}
	}
}

func (e *Emitter) publish(ev HandEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := e.sink.Send(e.topic, payload); err != nil {
		e.mu.Lock()
		e.failed++
		e.mu.Unlock()
		return err
	}

	e.mu.Lock()
	e.published++
	e.mu.Unlock()

	e.logger.Debug("event published", "type", ev.Type, "side", ev.Side, "tick", ev.Tick)
	return nil
}

// Stats returns the published, dropped and failed event counts.
func (e *Emitter) Stats() (published, dropped, failed uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.published, e.dropped, e.failed
}
