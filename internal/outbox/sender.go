package outbox

import (
	"context"
	"time"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/elifnazdmn/HomeStock-Web/internal/domain"
)

// HTTPSender posts purchase payloads to the upstream pantry service. The
// endpoint is resolved per call so the settings table can change it at
// runtime; an empty endpoint means no upstream is configured and delivery
// is a silent no-op.
type HTTPSender struct {
	endpoint func() string
	timeout  time.Duration
}

func NewHTTPSender(endpoint func() string) *HTTPSender {
	return &HTTPSender{endpoint: endpoint, timeout: 10 * time.Second}
}

func (s *HTTPSender) Send(ctx context.Context, order *domain.PurchaseOrder) error {
	url := s.endpoint()
	if url == "" {
		zap.L().Debug("no upstream purchase endpoint configured, skipping delivery",
			zap.Int64("order_id", order.ID))
		return nil
	}

	var code int
	err := gout.POST(url).
		WithContext(ctx).
		SetTimeout(s.timeout).
		SetHeader(gout.H{"Content-Type": "application/json"}).
		SetBody(order.Payload).
		Code(&code).
		Do()
	if err != nil {
		return errors.Wrap(err, "upstream purchase post failed")
	}
	if code < 200 || code >= 300 {
		return errors.Errorf("upstream purchase post returned status %d", code)
	}
	return nil
}
