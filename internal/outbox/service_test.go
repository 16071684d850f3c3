package outbox

import (
	"context"
	"sync"
	"testing"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
	"github.com/elifnazdmn/HomeStock-Web/internal/inventory"
)

type memOutboxRepo struct {
	mu     sync.Mutex
	orders map[int64]*domain.PurchaseOrder
}

func newMemOutboxRepo() *memOutboxRepo {
	return &memOutboxRepo{orders: make(map[int64]*domain.PurchaseOrder)}
}

func (m *memOutboxRepo) Create(_ context.Context, order *domain.PurchaseOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *memOutboxRepo) GetByID(_ context.Context, id int64) (*domain.PurchaseOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *memOutboxRepo) byStatus(status string, maxRetry int, limit int) []*domain.PurchaseOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.PurchaseOrder
	for _, order := range m.orders {
		if order.Status != status {
			continue
		}
		if maxRetry > 0 && order.RetryCount >= maxRetry {
			continue
		}
		copied := *order
		out = append(out, &copied)
		if len(out) == limit {
			break
		}
	}
	return out
}

func (m *memOutboxRepo) GetPending(_ context.Context, limit int) ([]*domain.PurchaseOrder, error) {
	return m.byStatus(domain.PurchaseStatusPending, 0, limit), nil
}

func (m *memOutboxRepo) GetRetryable(_ context.Context, limit int) ([]*domain.PurchaseOrder, error) {
	return m.byStatus(domain.PurchaseStatusFailed, MaxDeliveryAttempts, limit), nil
}

func (m *memOutboxRepo) MarkDelivered(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	m.orders[id].Status = domain.PurchaseStatusDelivered
	m.orders[id].DeliveredAt = &now
	return nil
}

func (m *memOutboxRepo) MarkFailed(_ context.Context, id int64, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[id].Status = domain.PurchaseStatusFailed
	m.orders[id].LastError = errMsg
	m.orders[id].RetryCount++
	return nil
}

func (m *memOutboxRepo) DeleteDeliveredBefore(_ context.Context, cutoff time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, order := range m.orders {
		if order.Status == domain.PurchaseStatusDelivered && order.DeliveredAt != nil && order.DeliveredAt.Before(cutoff) {
			delete(m.orders, id)
		}
	}
	return nil
}

type fakeSender struct {
	mu    sync.Mutex
	fail  bool
	calls int
}

func (f *fakeSender) Send(_ context.Context, _ *domain.PurchaseOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return errors.New("upstream unreachable")
	}
	return nil
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func sampleEvent() inventory.PurchaseEvent {
	return inventory.PurchaseEvent{
		UserID:       1,
		StoreName:    "Migros",
		PurchaseDate: "2025-11-20",
		Items: []inventory.NormalizedLine{
			{ProductID: 5, Quantity: 1.5, UnitType: "kg", ExpiryDate: "2025-11-26"},
		},
	}
}

func waitForWorkers() { time.Sleep(50 * time.Millisecond) }

func TestEnqueueFromBusEvent(t *testing.T) {
	repo := newMemOutboxRepo()
	svc, err := NewService(repo, &fakeSender{})
	require.NoError(t, err)
	defer svc.Stop()

	bus := evbus.New()
	require.NoError(t, svc.SubscribeBus(bus))
	bus.Publish(inventory.TopicPurchaseApplied, sampleEvent())

	pending, err := repo.GetPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Migros", pending[0].StoreName)
	assert.Contains(t, pending[0].Payload, `"quantity":1.5`)
}

func TestSweepDeliversPending(t *testing.T) {
	repo := newMemOutboxRepo()
	sender := &fakeSender{}
	svc, err := NewService(repo, sender)
	require.NoError(t, err)
	defer svc.Stop()

	svc.Enqueue(sampleEvent())
	svc.Sweep(context.Background())
	waitForWorkers()

	assert.Equal(t, 1, sender.callCount())
	pending, _ := repo.GetPending(context.Background(), 10)
	assert.Empty(t, pending)
}

func TestSweepMarksFailureAndRetries(t *testing.T) {
	repo := newMemOutboxRepo()
	sender := &fakeSender{fail: true}
	svc, err := NewService(repo, sender)
	require.NoError(t, err)
	defer svc.Stop()

	svc.Enqueue(sampleEvent())

	// first sweep fails the row, later sweeps retry it
	svc.Sweep(context.Background())
	waitForWorkers()
	svc.Sweep(context.Background())
	waitForWorkers()

	retryable, _ := repo.GetRetryable(context.Background(), 10)
	require.Len(t, retryable, 1)
	assert.Equal(t, 2, retryable[0].RetryCount)
	assert.Equal(t, "upstream unreachable", retryable[0].LastError)
}

func TestSweepStopsRetryingAfterBudget(t *testing.T) {
	repo := newMemOutboxRepo()
	sender := &fakeSender{fail: true}
	svc, err := NewService(repo, sender)
	require.NoError(t, err)
	defer svc.Stop()

	svc.Enqueue(sampleEvent())
	for i := 0; i < MaxDeliveryAttempts+2; i++ {
		svc.Sweep(context.Background())
		waitForWorkers()
	}

	assert.Equal(t, MaxDeliveryAttempts, sender.callCount(), "exhausted rows are not retried")
	retryable, _ := repo.GetRetryable(context.Background(), 10)
	assert.Empty(t, retryable)
}

func TestCleanupRemovesOldDeliveredRows(t *testing.T) {
	repo := newMemOutboxRepo()
	svc, err := NewService(repo, &fakeSender{})
	require.NoError(t, err)
	defer svc.Stop()

	svc.Enqueue(sampleEvent())
	svc.Sweep(context.Background())
	waitForWorkers()

	svc.Cleanup(context.Background(), -time.Minute) // cutoff in the future, everything qualifies
	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Empty(t, repo.orders)
}
