package billing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ispnet/backend/internal/domain/billing"
	"github.com/ispnet/backend/internal/domain/catalog"
	"github.com/ispnet/backend/internal/domain/shared"
	"github.com/ispnet/backend/internal/domain/subscription"
)

// GenerationReport summarizes one run of the monthly generation job.
// Failures are isolated per subscription: one bad row never aborts the batch.
type GenerationReport struct {
	BillingDate time.Time `json:"billing_date"`
	Eligible    int       `json:"eligible"`
	Generated   int       `json:"generated"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
}

// InvoiceService generates and queries invoices
type InvoiceService struct {
	invoices      billing.InvoiceRepository
	payments      billing.PaymentRepository
	subscriptions subscription.Repository
	packages      catalog.PackageRepository
	logger        *zap.Logger

	location      *time.Location
	maxConcurrent int
	now           func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoices billing.InvoiceRepository,
	payments billing.PaymentRepository,
	subscriptions subscription.Repository,
	packages catalog.PackageRepository,
	location *time.Location,
	maxConcurrent int,
	logger *zap.Logger,
) *InvoiceService {
	if location == nil {
		location = time.UTC
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &InvoiceService{
		invoices:      invoices,
		payments:      payments,
		subscriptions: subscriptions,
		packages:      packages,
		logger:        logger,
		location:      location,
		maxConcurrent: maxConcurrent,
		now:           time.Now,
	}
}

// Generate creates the invoice for one subscription and billing date.
// At most one non-cancelled invoice exists per subscription and calendar
// month: a second call for the same month returns ErrDuplicateInvoice.
func (s *InvoiceService) Generate(ctx context.Context, subscriptionID uuid.UUID, billingDate time.Time) (*billing.Invoice, error) {
	sub, err := s.subscriptions.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	// PENDING_INSTALL is billable too: the first invoice precedes
	// activation, and its payment triggers the installation work order.
	if sub.Status != subscription.StatusActive && sub.Status != subscription.StatusPendingInstall {
		return nil, shared.NewDomainError("INVALID_STATE",
			"Invoices are only generated for active or pending-install subscriptions")
	}

	periodStart := billing.StartOfMonth(billingDate)
	periodEnd := billing.EndOfMonth(billingDate)

	_, err = s.invoices.FindForPeriod(ctx, subscriptionID, periodStart, periodEnd)
	if err == nil {
		return nil, shared.ErrDuplicateInvoice
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	pkg, err := s.packages.FindByID(ctx, sub.PackageID)
	if err != nil {
		return nil, err
	}

	prefix := billing.InvoiceNumberPrefix(billingDate)
	latest, err := s.invoices.LatestInvoiceNumber(ctx, prefix)
	if err != nil {
		return nil, err
	}
	number := billing.NextInvoiceNumber(latest, billingDate)

	inv, err := billing.NewInvoice(subscriptionID, number, billingDate, pkg.MonthlyPrice)
	if err != nil {
		return nil, err
	}

	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("Invoice generated",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("subscription_id", subscriptionID.String()),
		zap.String("total_amount", inv.TotalAmount.String()),
		zap.Time("due_date", inv.DueDate),
	)
	return inv, nil
}

// GenerateMonthly runs the scheduled generation pass: it resolves the
// billing target seven days out, selects subscriptions anchored on that
// day and fans the per-subscription generation out on a bounded worker
// pool. Re-runs are safe: subscriptions billed earlier the same month are
// counted as skipped.
func (s *InvoiceService) GenerateMonthly(ctx context.Context) (*GenerationReport, error) {
	today := billing.StartOfDay(s.now().In(s.location))
	target := billing.TargetFor(today)

	subs, err := s.subscriptions.FindDueForBilling(ctx, target.DayToBill, target.LastDayOfMonth)
	if err != nil {
		return nil, err
	}

	report := &GenerationReport{
		BillingDate: target.Date,
		Eligible:    len(subs),
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.maxConcurrent)
	)

	for i := range subs {
		sub := subs[i]
		if !target.Eligible(sub.AnchorDay()) {
			mu.Lock()
			report.Skipped++
			mu.Unlock()
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			_, err := s.Generate(ctx, sub.ID, target.Date)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				report.Generated++
			case errors.Is(err, shared.ErrDuplicateInvoice):
				report.Skipped++
			default:
				report.Failed++
				s.logger.Error("Invoice generation failed",
					zap.String("subscription_id", sub.ID.String()),
					zap.Error(err),
				)
			}
		}()
	}

	wg.Wait()

	s.logger.Info("Invoice generation run finished",
		zap.Time("billing_date", target.Date),
		zap.Int("eligible", report.Eligible),
		zap.Int("generated", report.Generated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// GetByID returns an invoice with its payments
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, []billing.Payment, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	pays, err := s.payments.FindByInvoice(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return inv, pays, nil
}

// ListByCustomer lists a customer's invoices, newest first
func (s *InvoiceService) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	return s.invoices.FindByCustomer(ctx, customerID, filter)
}

// CurrentUnpaid returns the customer's unpaid invoice due soonest
func (s *InvoiceService) CurrentUnpaid(ctx context.Context, customerID uuid.UUID) (*billing.Invoice, error) {
	return s.invoices.FindCurrentUnpaid(ctx, customerID)
}
