// Package outbox delivers reconciled purchases to the optional upstream
// pantry service. Local pantry state is authoritative: purchases are
// merged locally first and enqueued here; delivery is best effort with a
// bounded retry budget and never rolls a merge back.
package outbox

import (
	"context"
	"time"

	evbus "github.com/asaskevich/EventBus"
	jsoniter "github.com/json-iterator/go"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
	"github.com/elifnazdmn/HomeStock-Web/internal/inventory"
	"github.com/elifnazdmn/HomeStock-Web/pkg/common"
	"github.com/elifnazdmn/HomeStock-Web/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// UpstreamSender delivers a single purchase order to the remote service.
type UpstreamSender interface {
	Send(ctx context.Context, order *domain.PurchaseOrder) error
}

// Service owns the purchase outbox: it subscribes to purchase-applied
// events, persists them as pending rows and sweeps them to the upstream
// sender on a fixed interval.
type Service struct {
	repo       PurchaseOutboxRepository
	sender     UpstreamSender
	pool       *ants.Pool
	syncTicker *time.Ticker
	stopChan   chan struct{}
}

func NewService(repo PurchaseOutboxRepository, sender UpstreamSender) (*Service, error) {
	pool, err := ants.NewPool(4)
	if err != nil {
		return nil, err
	}
	return &Service{
		repo:     repo,
		sender:   sender,
		pool:     pool,
		stopChan: make(chan struct{}),
	}, nil
}

// SubscribeBus registers the enqueue handler for purchase-applied events.
func (s *Service) SubscribeBus(bus evbus.Bus) error {
	return bus.Subscribe(inventory.TopicPurchaseApplied, s.Enqueue)
}

// Enqueue persists an applied purchase as a pending outbox row. Failures
// are logged only: the local merge already happened and stands.
func (s *Service) Enqueue(event inventory.PurchaseEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("failed to encode purchase event", zap.Error(err))
		return
	}

	order := &domain.PurchaseOrder{
		ID:           common.UUIDint64(),
		UserID:       event.UserID,
		StoreName:    event.StoreName,
		PurchaseDate: event.PurchaseDate,
		Payload:      string(payload),
		Status:       domain.PurchaseStatusPending,
	}
	if err := s.repo.Create(context.Background(), order); err != nil {
		zap.L().Error("failed to enqueue purchase for upstream sync",
			zap.Int64("user_id", event.UserID),
			zap.Error(err))
		return
	}

	metrics.IncrCounter("purchase_enqueued", 1)
	zap.L().Debug("purchase enqueued for upstream sync", zap.Int64("order_id", order.ID))
}

// Start begins the periodic delivery sweep.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 1 * time.Minute
	}
	s.syncTicker = time.NewTicker(interval)
	go s.syncLoop(ctx)

	zap.L().Info("purchase outbox service started", zap.Duration("sync_interval", interval))
}

// Stop gracefully stops the delivery sweep.
func (s *Service) Stop() {
	if s.syncTicker != nil {
		s.syncTicker.Stop()
	}
	s.pool.Release()
	close(s.stopChan)

	zap.L().Info("purchase outbox service stopped")
}

func (s *Service) syncLoop(ctx context.Context) {
	for {
		select {
		case <-s.syncTicker.C:
			s.Sweep(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Sweep delivers pending rows, then retries failed ones still under the
// retry budget. Batches are capped so a backlog cannot stall the ticker.
func (s *Service) Sweep(ctx context.Context) {
	pending, err := s.repo.GetPending(ctx, 100)
	if err != nil {
		zap.L().Error("failed to load pending purchases", zap.Error(err))
		return
	}
	s.dispatchBatch(ctx, pending)

	retryable, err := s.repo.GetRetryable(ctx, 50)
	if err == nil && len(retryable) > 0 {
		zap.L().Debug("retrying failed purchase deliveries", zap.Int("count", len(retryable)))
		s.dispatchBatch(ctx, retryable)
	}
}

func (s *Service) dispatchBatch(ctx context.Context, orders []*domain.PurchaseOrder) {
	for _, order := range orders {
		order := order
		err := s.pool.Submit(func() {
			s.deliver(ctx, order)
		})
		if err != nil {
			// pool released or saturated; pick the row up on the next sweep
			zap.L().Warn("outbox dispatch skipped", zap.Int64("order_id", order.ID), zap.Error(err))
			return
		}
	}
}

func (s *Service) deliver(ctx context.Context, order *domain.PurchaseOrder) {
	if err := s.sender.Send(ctx, order); err != nil {
		zap.L().Warn("upstream purchase delivery failed",
			zap.Int64("order_id", order.ID),
			zap.Int("retry_count", order.RetryCount),
			zap.Error(err))
		if err := s.repo.MarkFailed(ctx, order.ID, err.Error()); err != nil {
			zap.L().Error("failed to mark purchase delivery failure", zap.Int64("order_id", order.ID), zap.Error(err))
		}
		metrics.IncrCounter("purchase_delivery_failed", 1)
		return
	}

	if err := s.repo.MarkDelivered(ctx, order.ID); err != nil {
		zap.L().Error("failed to mark purchase delivered", zap.Int64("order_id", order.ID), zap.Error(err))
		return
	}
	metrics.IncrCounter("purchase_delivered", 1)
}

// Cleanup removes delivered rows older than the retention window.
func (s *Service) Cleanup(ctx context.Context, retention time.Duration) {
	cutoff := time.Now().Add(-retention)
	if err := s.repo.DeleteDeliveredBefore(ctx, cutoff); err != nil {
		zap.L().Error("outbox cleanup failed", zap.Error(err))
	}
}
