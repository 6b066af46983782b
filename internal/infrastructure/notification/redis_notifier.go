package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ispnet/backend/internal/domain/shared"
)

// Job kinds, one redis list queue per kind
const (
	KindInvoiceIssued      = "invoice_issued"
	KindPaymentReceived    = "payment_received"
	KindPaymentReminder    = "payment_reminder"
	KindOverdueAlert       = "overdue_alert"
	KindServiceIsolated    = "service_isolated"
	KindServiceReactivated = "service_reactivated"
)

// Config controls queue naming and delivery retries
type Config struct {
	// QueuePrefix prefixes every queue name, e.g. "notifications"
	QueuePrefix string
	// MaxRetries bounds LPUSH attempts per job
	MaxRetries int
	// RetryDelay is the initial backoff; it doubles per attempt
	RetryDelay time.Duration
}

// job is the envelope consumed by the notification workers
type job struct {
	ID       uuid.UUID   `json:"id"`
	Kind     string      `json:"kind"`
	QueuedAt time.Time   `json:"queued_at"`
	Payload  interface{} `json:"payload"`
}

// RedisNotifier publishes notification jobs to redis list queues. Delivery
// is best-effort: after retries are exhausted the job is logged and dropped
// rather than failing the calling operation.
type RedisNotifier struct {
	client *redis.Client
	config Config
	logger *zap.Logger
	now    func() time.Time
}

// NewRedisNotifier creates a notifier publishing to redis list queues
func NewRedisNotifier(client *redis.Client, config Config, logger *zap.Logger) *RedisNotifier {
	if config.QueuePrefix == "" {
		config.QueuePrefix = "notifications"
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}
	return &RedisNotifier{
		client: client,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// InvoiceIssued announces a freshly generated invoice
func (n *RedisNotifier) InvoiceIssued(ctx context.Context, notice shared.InvoiceNotice) error {
	return n.enqueue(ctx, KindInvoiceIssued, notice)
}

// PaymentReceived confirms a settled payment
func (n *RedisNotifier) PaymentReceived(ctx context.Context, notice shared.PaymentNotice) error {
	return n.enqueue(ctx, KindPaymentReceived, notice)
}

// PaymentReminder nudges the customer before the due date
func (n *RedisNotifier) PaymentReminder(ctx context.Context, notice shared.ReminderNotice) error {
	return n.enqueue(ctx, KindPaymentReminder, notice)
}

// OverdueAlert warns the customer after the due date has passed
func (n *RedisNotifier) OverdueAlert(ctx context.Context, notice shared.ReminderNotice) error {
	return n.enqueue(ctx, KindOverdueAlert, notice)
}

// ServiceIsolated informs the customer their service was suspended
func (n *RedisNotifier) ServiceIsolated(ctx context.Context, notice shared.ServiceNotice) error {
	return n.enqueue(ctx, KindServiceIsolated, notice)
}

// ServiceReactivated informs the customer their service was restored
func (n *RedisNotifier) ServiceReactivated(ctx context.Context, notice shared.ServiceNotice) error {
	return n.enqueue(ctx, KindServiceReactivated, notice)
}

// QueueName returns the redis list key for a job kind
func (n *RedisNotifier) QueueName(kind string) string {
	return n.config.QueuePrefix + ":" + kind
}

func (n *RedisNotifier) enqueue(ctx context.Context, kind string, payload interface{}) error {
	data, err := json.Marshal(job{
		ID:       uuid.New(),
		Kind:     kind,
		QueuedAt: n.now(),
		Payload:  payload,
	})
	if err != nil {
		return fmt.Errorf("notification: failed to marshal %s job: %w", kind, err)
	}

	queue := n.QueueName(kind)
	delay := n.config.RetryDelay

	var lastErr error
	for attempt := 1; ; attempt++ {
		lastErr = n.client.LPush(ctx, queue, data).Err()
		if lastErr == nil {
			return nil
		}
		if attempt >= n.config.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
		case <-time.After(delay):
			delay *= 2
			continue
		}
		break
	}

	// Notifications are best-effort: log and drop, never fail the caller
	n.logger.Error("dropping notification after retries exhausted",
		zap.String("queue", queue),
		zap.String("kind", kind),
		zap.Int("attempts", n.config.MaxRetries),
		zap.Error(lastErr))
	return nil
}

// Ensure RedisNotifier implements Notifier
var _ shared.Notifier = (*RedisNotifier)(nil)
