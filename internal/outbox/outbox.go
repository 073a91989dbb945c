package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/abhisek/tutor/internal/logger"
)

// Sink applies events to durable storage.
type Sink interface {
	Apply(ctx context.Context, e Event) error
}

// Enqueuer is the write side used by lesson and quiz runs.
type Enqueuer interface {
	Enqueue(e Event)
}

// Config controls delivery retries.
type Config struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// SpoolPath, when set, receives events still undelivered at Close and
	// is replayed by New.
	SpoolPath string
}

func DefaultConfig() Config {
	return Config{
		MaxTries:        5,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// Outbox is an in-process FIFO of pending events. Enqueue never blocks on
// the sink; delivery happens in Flush, either called directly or from Run.
type Outbox struct {
	sink Sink
	cfg  Config
	log  *logger.Logger

	mu    sync.Mutex
	queue []Event
	dead  []Event

	// flushMu serializes deliveries so events reach the sink in order.
	flushMu sync.Mutex
	wake    chan struct{}
}

// New creates an outbox delivering to sink. Events spooled by a previous
// Close are loaded back into the queue.
func New(sink Sink, cfg Config, log *logger.Logger) *Outbox {
	if cfg.MaxTries == 0 {
		cfg.MaxTries = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	o := &Outbox{
		sink: sink,
		cfg:  cfg,
		log:  log.With("component", "outbox"),
		wake: make(chan struct{}, 1),
	}
	if cfg.SpoolPath != "" {
		restored, err := readSpool(cfg.SpoolPath)
		if err != nil {
			o.log.Warn("could not restore spooled events", "path", cfg.SpoolPath, "error", err)
		}
		o.queue = append(o.queue, restored...)
	}
	return o
}

// Enqueue appends e to the queue. A missing ID or timestamp is filled in.
func (o *Outbox) Enqueue(e Event) {
	if e.ID == "" {
		e.ID = NewEvent(e.Kind, e.StudentID).ID
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	o.mu.Lock()
	o.queue = append(o.queue, e)
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// Flush delivers queued events in order. An event the sink keeps rejecting
// stays at the head of the queue and Flush returns the error; invalid events
// are moved to the dead-letter list and skipped.
func (o *Outbox) Flush(ctx context.Context) error {
	o.flushMu.Lock()
	defer o.flushMu.Unlock()

	for {
		e, ok := o.head()
		if !ok {
			return nil
		}

		err := o.deliver(ctx, e)
		switch {
		case err == nil:
			o.pop(e.ID)
		case errors.Is(err, ErrInvalidEvent):
			o.log.Error("dropping invalid event", "event_id", e.ID, "kind", e.Kind, "error", err)
			o.mu.Lock()
			o.dead = append(o.dead, e)
			o.mu.Unlock()
			o.pop(e.ID)
		default:
			o.log.Warn("outbox delivery failed, event kept", "event_id", e.ID, "kind", e.Kind, "pending", o.Pending(), "error", err)
			return fmt.Errorf("deliver %s event %s: %w", e.Kind, e.ID, err)
		}
	}
}

func (o *Outbox) deliver(ctx context.Context, e Event) error {
	if err := e.Validate(); err != nil {
		return err
	}

	b := backoff.NewExponentialBackOff()
	if o.cfg.InitialInterval > 0 {
		b.InitialInterval = o.cfg.InitialInterval
	}
	if o.cfg.MaxInterval > 0 {
		b.MaxInterval = o.cfg.MaxInterval
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := o.sink.Apply(ctx, e)
		if errors.Is(err, ErrInvalidEvent) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(o.cfg.MaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			o.log.Debug("retrying event", "event_id", e.ID, "kind", e.Kind, "next", next, "error", err)
		}),
	)
	return err
}

func (o *Outbox) head() (Event, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.queue) == 0 {
		return Event{}, false
	}
	return o.queue[0], true
}

func (o *Outbox) pop(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.queue) > 0 && o.queue[0].ID == id {
		o.queue = o.queue[1:]
	}
}

// Run flushes whenever an event is enqueued and on every interval tick
// until ctx is cancelled.
func (o *Outbox) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-o.wake:
		case <-ticker.C:
		}
		// Errors are logged by Flush; the next tick retries.
		_ = o.Flush(ctx)
	}
}

// Close makes a final delivery attempt. Anything still pending is written to
// the spool file when one is configured.
func (o *Outbox) Close(ctx context.Context) error {
	err := o.Flush(ctx)
	if o.cfg.SpoolPath == "" {
		return err
	}

	o.mu.Lock()
	pending := append([]Event(nil), o.queue...)
	o.mu.Unlock()

	if spoolErr := writeSpool(o.cfg.SpoolPath, pending); spoolErr != nil {
		return errors.Join(err, spoolErr)
	}
	if len(pending) > 0 {
		o.log.Info("spooled undelivered events", "count", len(pending), "path", o.cfg.SpoolPath)
		return nil
	}
	return err
}

// Pending returns the number of queued events.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

// PendingFor returns the number of queued events for one student.
func (o *Outbox) PendingFor(studentID string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, e := range o.queue {
		if e.StudentID == studentID {
			n++
		}
	}
	return n
}

// Dead returns events dropped as invalid.
func (o *Outbox) Dead() []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Event(nil), o.dead...)
}

// Reconcile flushes and, once nothing for studentID remains queued, calls
// reload so the caller can replace its in-memory view with persisted state.
// It returns the student's pending count; reload is skipped when non-zero.
func (o *Outbox) Reconcile(ctx context.Context, studentID string, reload func(context.Context) error) (int, error) {
	flushErr := o.Flush(ctx)
	if n := o.PendingFor(studentID); n > 0 {
		return n, flushErr
	}
	if reload == nil {
		return 0, nil
	}
	if err := reload(ctx); err != nil {
		return 0, fmt.Errorf("reload after reconcile: %w", err)
	}
	return 0, nil
}
