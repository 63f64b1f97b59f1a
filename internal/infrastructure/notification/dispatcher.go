package notification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pos/backend/internal/domain/notification"
)

// DispatcherConfig holds configuration for the dispatcher
type DispatcherConfig struct {
	BatchSize    int
	PollInterval time.Duration
}

// DefaultDispatcherConfig returns default configuration
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		BatchSize:    50,
		PollInterval: 5 * time.Second,
	}
}

// Dispatcher delivers queued notifications in the background.
// Delivery failures never touch commerce state: a notification retries
// with exponential backoff until it is sent or parked as dead.
type Dispatcher struct {
	repo   notification.Repository
	sender Sender
	config DispatcherConfig
	logger *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(repo notification.Repository, sender Sender, config DispatcherConfig, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		repo:   repo,
		sender: sender,
		config: config,
		logger: logger,
	}
}

// Start starts the background delivery loop
func (d *Dispatcher) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go d.deliverLoop(ctx)

	d.logger.Info("notification dispatcher started",
		zap.Int("batch_size", d.config.BatchSize),
		zap.Duration("poll_interval", d.config.PollInterval),
	)

	return nil
}

// Stop gracefully stops the dispatcher
func (d *Dispatcher) Stop(ctx context.Context) error {
	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) deliverLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.deliverBatch(ctx)
		}
	}
}

// deliverBatch delivers queued notifications plus failed ones due a retry
func (d *Dispatcher) deliverBatch(ctx context.Context) {
	deliverable, err := d.repo.FindDeliverable(ctx, d.config.BatchSize)
	if err != nil {
		d.logger.Error("failed to find deliverable notifications", zap.Error(err))
		return
	}

	for _, n := range deliverable {
		d.deliver(ctx, n)
	}
}

// deliver attempts one notification and records the outcome
func (d *Dispatcher) deliver(ctx context.Context, n *notification.Notification) {
	if err := n.MarkSending(); err != nil {
		d.logger.Warn("skipping notification in unexpected status",
			zap.String("id", n.ID.String()),
			zap.String("status", string(n.Status)),
		)
		return
	}
	if err := d.repo.Update(ctx, n); err != nil {
		d.logger.Error("failed to claim notification", zap.Error(err))
		return
	}

	if err := d.sender.Send(ctx, n); err != nil {
		n.MarkFailed(err.Error())
		if n.IsDead() {
			d.logger.Warn("notification parked as dead after exhausting retries",
				zap.String("id", n.ID.String()),
				zap.String("kind", string(n.Kind)),
				zap.String("recipient", n.Recipient),
				zap.Int("retry_count", n.RetryCount),
				zap.String("last_error", n.LastError),
			)
		}
		if updateErr := d.repo.Update(ctx, n); updateErr != nil {
			d.logger.Error("failed to record delivery failure", zap.Error(updateErr))
		}
		return
	}

	n.MarkSent()
	if err := d.repo.Update(ctx, n); err != nil {
		d.logger.Error("failed to mark notification as sent",
			zap.String("id", n.ID.String()),
			zap.Error(err),
		)
		return
	}
	d.logger.Debug("notification delivered",
		zap.String("id", n.ID.String()),
		zap.String("kind", string(n.Kind)),
	)
}
