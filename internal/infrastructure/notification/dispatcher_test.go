package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pos/backend/internal/domain/notification"
	"github.com/pos/backend/internal/domain/shared"
)

// memoryRepository is an in-memory notification.Repository for dispatcher tests
type memoryRepository struct {
	mu    sync.Mutex
	items map[uuid.UUID]*notification.Notification
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{items: make(map[uuid.UUID]*notification.Notification)}
}

func (r *memoryRepository) Create(ctx context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *n
	r.items[n.ID] = &copied
	return nil
}

func (r *memoryRepository) Update(ctx context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[n.ID]; !ok {
		return shared.ErrNotFound
	}
	copied := *n
	r.items[n.ID] = &copied
	return nil
}

func (r *memoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *found
	return &copied, nil
}

func (r *memoryRepository) FindDeliverable(ctx context.Context, limit int) ([]*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	deliverable := make([]*notification.Notification, 0)
	for _, n := range r.items {
		if len(deliverable) >= limit {
			break
		}
		switch n.Status {
		case notification.StatusQueued:
		case notification.StatusFailed:
			if n.NextRetryAt != nil && n.NextRetryAt.After(now) {
				continue
			}
		default:
			continue
		}
		copied := *n
		deliverable = append(deliverable, &copied)
	}
	return deliverable, nil
}

func (r *memoryRepository) FindByStatus(ctx context.Context, status notification.Status, limit int) ([]*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := make([]*notification.Notification, 0)
	for _, n := range r.items {
		if n.Status == status && len(found) < limit {
			copied := *n
			found = append(found, &copied)
		}
	}
	return found, nil
}

func (r *memoryRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := make([]*notification.Notification, 0)
	for _, n := range r.items {
		if n.SaleID != nil && *n.SaleID == saleID {
			copied := *n
			found = append(found, &copied)
		}
	}
	return found, nil
}

func (r *memoryRepository) statusOf(t *testing.T, id uuid.UUID) notification.Status {
	t.Helper()
	found, err := r.FindByID(context.Background(), id)
	require.NoError(t, err)
	return found.Status
}

// flakySender fails the first failures calls, then succeeds
type flakySender struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (s *flakySender) Send(ctx context.Context, n *notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return errors.New("smtp timeout")
	}
	return nil
}

func enqueue(t *testing.T, repo *memoryRepository) *notification.Notification {
	t.Helper()
	saleID := uuid.New()
	n := notification.New(notification.KindReceipt, "customer@example.com", &saleID, []byte(`{}`))
	require.NoError(t, repo.Create(context.Background(), n))
	return n
}

func TestDispatcher_DeliverBatch_Success(t *testing.T) {
	repo := newMemoryRepository()
	queued := enqueue(t, repo)

	d := NewDispatcher(repo, &flakySender{}, DefaultDispatcherConfig(), zap.NewNop())
	d.deliverBatch(context.Background())

	assert.Equal(t, notification.StatusSent, repo.statusOf(t, queued.ID))
}

func TestDispatcher_DeliverBatch_FailureSchedulesRetry(t *testing.T) {
	repo := newMemoryRepository()
	queued := enqueue(t, repo)
	sender := &flakySender{failures: 1}

	d := NewDispatcher(repo, sender, DefaultDispatcherConfig(), zap.NewNop())
	d.deliverBatch(context.Background())

	failed, err := repo.FindByID(context.Background(), queued.ID)
	require.NoError(t, err)
	assert.Equal(t, notification.StatusFailed, failed.Status)
	assert.Equal(t, 1, failed.RetryCount)
	assert.Equal(t, "smtp timeout", failed.LastError)
	require.NotNil(t, failed.NextRetryAt)
	assert.True(t, failed.NextRetryAt.After(time.Now()))

	// backoff has not elapsed, the next batch must skip it
	d.deliverBatch(context.Background())
	assert.Equal(t, 1, sender.calls)
}

func TestDispatcher_DeliverBatch_RetriesAfterBackoff(t *testing.T) {
	repo := newMemoryRepository()
	queued := enqueue(t, repo)
	sender := &flakySender{failures: 1}

	d := NewDispatcher(repo, sender, DefaultDispatcherConfig(), zap.NewNop())
	d.deliverBatch(context.Background())

	// force the retry window open
	failed, err := repo.FindByID(context.Background(), queued.ID)
	require.NoError(t, err)
	past := time.Now().Add(-time.Second)
	failed.NextRetryAt = &past
	require.NoError(t, repo.Update(context.Background(), failed))

	d.deliverBatch(context.Background())
	assert.Equal(t, notification.StatusSent, repo.statusOf(t, queued.ID))
}

func TestDispatcher_DeliverBatch_ParksDeadAfterMaxRetries(t *testing.T) {
	repo := newMemoryRepository()
	queued := enqueue(t, repo)
	sender := &flakySender{failures: notification.DefaultMaxRetries + 1}

	d := NewDispatcher(repo, sender, DefaultDispatcherConfig(), zap.NewNop())
	for i := 0; i < notification.DefaultMaxRetries; i++ {
		d.deliverBatch(context.Background())

		failed, err := repo.FindByID(context.Background(), queued.ID)
		require.NoError(t, err)
		if failed.Status == notification.StatusFailed {
			past := time.Now().Add(-time.Second)
			failed.NextRetryAt = &past
			require.NoError(t, repo.Update(context.Background(), failed))
		}
	}

	dead, err := repo.FindByID(context.Background(), queued.ID)
	require.NoError(t, err)
	assert.Equal(t, notification.StatusDead, dead.Status)
	assert.Equal(t, notification.DefaultMaxRetries, dead.RetryCount)

	// dead notifications are never picked up again
	d.deliverBatch(context.Background())
	assert.Equal(t, notification.DefaultMaxRetries, sender.calls)
}

func TestDispatcher_StartStop(t *testing.T) {
	repo := newMemoryRepository()
	queued := enqueue(t, repo)

	config := DispatcherConfig{BatchSize: 10, PollInterval: 10 * time.Millisecond}
	d := NewDispatcher(repo, &flakySender{}, config, zap.NewNop())

	require.NoError(t, d.Start(context.Background()))
	require.Eventually(t, func() bool {
		found, err := repo.FindByID(context.Background(), queued.ID)
		return err == nil && found.Status == notification.StatusSent
	}, 2*time.Second, 10*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Stop(stopCtx))
}

func TestDispatcher_ResendReentersQueue(t *testing.T) {
	repo := newMemoryRepository()
	queued := enqueue(t, repo)
	sender := &flakySender{failures: 1}

	d := NewDispatcher(repo, sender, DefaultDispatcherConfig(), zap.NewNop())
	d.deliverBatch(context.Background())

	failed, err := repo.FindByID(context.Background(), queued.ID)
	require.NoError(t, err)
	require.NoError(t, failed.Resend())
	require.NoError(t, repo.Update(context.Background(), failed))

	d.deliverBatch(context.Background())
	assert.Equal(t, notification.StatusSent, repo.statusOf(t, queued.ID))
}

func TestLogSender_Send(t *testing.T) {
	sender := NewLogSender(zap.NewNop())
	saleID := uuid.New()
	n := notification.New(notification.KindReceipt, "customer@example.com", &saleID, []byte(`{}`))
	assert.NoError(t, sender.Send(context.Background(), n))
}
