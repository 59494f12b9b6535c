package notify

import (
	"context"
	"errors"
	"time"

	"github.com/lojasmm/tilebot/internal/logging"
	"github.com/lojasmm/tilebot/internal/store"
)

const (
	defaultBatchSize    = 20
	maxDeliveryAttempts = 5
	sendTimeout         = 15 * time.Second
)

// DeliveryObserver is told the result of every attempt.
type DeliveryObserver interface {
	ObserveDelivery(status string)
}

// Dispatcher drains the outbox into an EmailSender.
type Dispatcher struct {
	store    store.Store
	sender   EmailSender
	interval time.Duration
	logger   *logging.Logger
	observer DeliveryObserver
}

func NewDispatcher(s store.Store, sender EmailSender, interval time.Duration, observer DeliveryObserver, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Dispatcher{store: s, sender: sender, interval: interval, logger: logger, observer: observer}
}

// Run polls until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if _, err := d.DispatchOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("notify: dispatch pass failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// DispatchOnce sends one batch and returns how many were delivered.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	pending, err := d.store.Pending(defaultBatchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, del := range pending {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		sendErr := d.sender.Send(sendCtx, ComposeEstimate(del))
		cancel()

		if sendErr != nil {
			dead, err := d.store.MarkFailed(del.ID, sendErr, maxDeliveryAttempts)
			if err != nil {
				return sent, err
			}
			status := "retry"
			if dead {
				status = "dead"
			}
			d.observe(status)
			d.logger.Warn("notify: delivery failed", "delivery_id", del.ID, "attempt", del.Attempts+1, "dead", dead, "error", sendErr)
			continue
		}

		if err := d.store.MarkDelivered(del.ID); err != nil {
			return sent, err
		}
		sent++
		d.observe("sent")
		d.logger.Info("notify: estimate delivered", "delivery_id", del.ID, "session_id", del.SessionID)
	}
	return sent, nil
}

func (d *Dispatcher) observe(status string) {
	if d.observer != nil {
		d.observer.ObserveDelivery(status)
	}
}
