package notify

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Queue is the outbox side the dispatcher drains.
type Queue interface {
	Due(ctx context.Context, at time.Time) ([]Notification, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
}

// Dispatcher periodically delivers due notifications.
type Dispatcher struct {
	queue    Queue
	sender   Sender
	interval time.Duration
	now      func() time.Time
}

// NewDispatcher creates a dispatcher polling queue every interval.
func NewDispatcher(queue Queue, sender Sender, interval time.Duration) *Dispatcher {
	return &Dispatcher{
		queue:    queue,
		sender:   sender,
		interval: interval,
		now:      time.Now,
	}
}

// Run blocks and runs Tick on interval + immediately on start.
// It exits when ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	if d.interval <= 0 {
		return fmt.Errorf("dispatcher interval must be positive, got %s", d.interval)
	}

	log.Printf("[dispatcher] Started. Interval: %s", d.interval)

	// Run immediately on start
	d.Tick(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[dispatcher] Shutting down...")
			return nil
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick delivers every due notification once and returns how many were
// sent. A failed delivery stays pending for the next tick.
func (d *Dispatcher) Tick(ctx context.Context) int {
	due, err := d.queue.Due(ctx, d.now())
	if err != nil {
		log.Printf("[dispatcher] Error: failed to load due notifications: %v", err)
		return 0
	}
	if len(due) == 0 {
		return 0
	}

	sent := 0
	for _, n := range due {
		if err := d.sender.Send(ctx, n); err != nil {
			log.Printf("[dispatcher] Error: delivery of %s failed: %v", n.ID, err)
			continue
		}
		if err := d.queue.MarkSent(ctx, n.ID, d.now()); err != nil {
			log.Printf("[dispatcher] Error: %v", err)
			continue
		}
		sent++
	}

	log.Printf("[dispatcher] Sent %d of %d due notifications.", sent, len(due))
	return sent
}
