package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ispnet/backend/internal/domain/billing"
	"github.com/ispnet/backend/internal/domain/shared"
	"github.com/ispnet/backend/internal/domain/subscription"
)

// EnforcementReport summarizes one overdue enforcement sweep
type EnforcementReport struct {
	Cutoff   time.Time `json:"cutoff"`
	Overdue  int       `json:"overdue"`
	Isolated int       `json:"isolated"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
}

// EnforcementService isolates subscriptions with overdue unpaid invoices.
// It runs daily after the reminder sweep.
type EnforcementService struct {
	invoices      billing.InvoiceRepository
	subscriptions subscription.Repository
	logger        *zap.Logger
	location      *time.Location
	now           func() time.Time
}

// NewEnforcementService creates a new EnforcementService
func NewEnforcementService(
	invoices billing.InvoiceRepository,
	subscriptions subscription.Repository,
	location *time.Location,
	logger *zap.Logger,
) *EnforcementService {
	if location == nil {
		location = time.UTC
	}
	return &EnforcementService{
		invoices:      invoices,
		subscriptions: subscriptions,
		logger:        logger,
		location:      location,
		now:           time.Now,
	}
}

// EnforceOverdue runs one enforcement sweep: every ACTIVE subscription
// holding at least one UNPAID invoice due before today is isolated.
// Subscriptions are deduplicated first, so several overdue invoices cause
// a single transition. Non-active subscriptions are skipped: they were
// already isolated, terminated, or never installed. Per-subscription
// failures are counted and logged without aborting the sweep.
func (s *EnforcementService) EnforceOverdue(ctx context.Context) (*EnforcementReport, error) {
	cutoff := billing.StartOfDay(s.now().In(s.location))

	overdue, err := s.invoices.FindOverdue(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(overdue))
	var targets []uuid.UUID
	for i := range overdue {
		id := overdue[i].SubscriptionID
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		targets = append(targets, id)
	}

	report := &EnforcementReport{
		Cutoff:  cutoff,
		Overdue: len(targets),
	}

	for _, id := range targets {
		switch err := s.isolate(ctx, id); {
		case err == nil:
			report.Isolated++
		case errors.Is(err, errSkipEnforcement):
			report.Skipped++
		default:
			report.Failed++
			s.logger.Error("Failed to isolate overdue subscription",
				zap.String("subscription_id", id.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Overdue enforcement finished",
		zap.Time("cutoff", cutoff),
		zap.Int("overdue", report.Overdue),
		zap.Int("isolated", report.Isolated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// errSkipEnforcement marks a subscription the sweep leaves alone
var errSkipEnforcement = errors.New("subscription not enforceable")

func (s *EnforcementService) isolate(ctx context.Context, id uuid.UUID) error {
	sub, err := s.subscriptions.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if sub.Status != subscription.StatusActive {
		return errSkipEnforcement
	}

	if err := sub.Isolate(); err != nil {
		return err
	}

	if err := s.subscriptions.SaveWithLock(ctx, sub); err != nil {
		// A transition raced by another writer resolves itself on the
		// next sweep
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return errSkipEnforcement
		}
		return err
	}

	// The isolation event rides the outbox with the status write; the
	// relay turns it into the customer notice.
	s.logger.Info("Subscription isolated for non-payment",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("service_number", sub.ServiceNumber),
	)
	return nil
}
