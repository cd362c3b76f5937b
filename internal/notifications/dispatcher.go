package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/leafcart/nursery-backend/pkg/logger"
)

const defaultTimeout = 10 * time.Second

// Dispatcher sends events in the background. Delivery failures are logged
// and dropped; there is no retry queue.
type Dispatcher struct {
	notifier Notifier
	logg     *logger.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewDispatcher(notifier Notifier, timeout time.Duration, logg *logger.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Dispatcher{notifier: notifier, logg: logg, timeout: timeout}
}

// Dispatch returns immediately. Each event is delivered on its own
// goroutine with a context detached from the caller's cancellation.
func (d *Dispatcher) Dispatch(ctx context.Context, events ...Event) {
	if d == nil || d.notifier == nil {
		return
	}
	base := context.WithoutCancel(ctx)
	for _, ev := range events {
		d.wg.Add(1)
		go func(ev Event) {
			defer d.wg.Done()
			sendCtx, cancel := context.WithTimeout(base, d.timeout)
			defer cancel()
			if err := d.notifier.Notify(sendCtx, ev); err != nil {
				logCtx := d.logg.WithFields(base, map[string]any{
					"event_id": ev.ID.String(),
					"kind":     ev.Kind.String(),
				})
				d.logg.Error(logCtx, "notification.failed", err)
			}
		}(ev)
	}
}

// Wait blocks until in-flight deliveries finish or ctx ends.
func (d *Dispatcher) Wait(ctx context.Context) error {
	if d == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
