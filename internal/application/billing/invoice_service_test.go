package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ispnet/backend/internal/domain/billing"
	"github.com/ispnet/backend/internal/domain/catalog"
	"github.com/ispnet/backend/internal/domain/shared"
	"github.com/ispnet/backend/internal/domain/subscription"
)

func newActiveSubscription(t *testing.T, activatedAt time.Time) *subscription.Subscription {
	t.Helper()
	sub, err := subscription.New(uuid.New(), uuid.New(), "SB-251201-0001", "Jl. Gatot Subroto 10")
	require.NoError(t, err)
	require.NoError(t, sub.Activate(activatedAt, 12))
	sub.ClearDomainEvents()
	return sub
}

func newHomePackage() *catalog.Package {
	return &catalog.Package{
		BaseEntity:             shared.NewBaseEntity(),
		Name:                   "Home 50",
		DownloadSpeedMbps:      50,
		UploadSpeedMbps:        25,
		MonthlyPrice:           decimal.NewFromInt(250000),
		ContractDurationMonths: 12,
		IsActive:               true,
	}
}

func newInvoiceService(invoices *MockInvoiceRepository, payments *MockPaymentRepository, subs *MockSubscriptionRepository, packages *MockPackageRepository) *InvoiceService {
	return NewInvoiceService(invoices, payments, subs, packages, time.UTC, 4, zap.NewNop())
}

func TestInvoiceService_Generate(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	subs := new(MockSubscriptionRepository)
	packages := new(MockPackageRepository)

	activated := time.Date(2025, 12, 15, 9, 0, 0, 0, time.UTC)
	sub := newActiveSubscription(t, activated)
	pkg := newHomePackage()
	sub.PackageID = pkg.ID

	billingDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	subs.On("FindByID", mock.Anything, sub.ID).Return(sub, nil)
	invoices.On("FindForPeriod", mock.Anything, sub.ID,
		billing.StartOfMonth(billingDate), billing.EndOfMonth(billingDate)).Return(nil, shared.ErrNotFound)
	packages.On("FindByID", mock.Anything, pkg.ID).Return(pkg, nil)
	invoices.On("LatestInvoiceNumber", mock.Anything, "INV-202601").Return("INV-202601-0041-ZZ19", nil)
	invoices.On("Create", mock.Anything, mock.MatchedBy(func(inv *billing.Invoice) bool {
		return inv.SubscriptionID == sub.ID &&
			inv.Status == billing.InvoiceStatusUnpaid &&
			inv.TotalAmount.GreaterThan(decimal.Zero)
	})).Return(nil)

	svc := newInvoiceService(invoices, new(MockPaymentRepository), subs, packages)
	inv, err := svc.Generate(context.Background(), sub.ID, billingDate)

	require.NoError(t, err)
	assert.Contains(t, inv.InvoiceNumber, "INV-202601-0042")
	assert.Equal(t, billingDate.Add(billing.DueDateOffset), inv.DueDate)
	invoices.AssertExpectations(t)
}

func TestInvoiceService_GenerateFirstInvoiceForPendingInstall(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	subs := new(MockSubscriptionRepository)
	packages := new(MockPackageRepository)

	// Not yet activated: the first invoice is generated before the
	// installation, and paying it schedules the work order.
	sub, err := subscription.New(uuid.New(), uuid.New(), "SB-251201-0002", "Jl. Gatot Subroto 11")
	require.NoError(t, err)
	require.Equal(t, subscription.StatusPendingInstall, sub.Status)
	pkg := newHomePackage()
	sub.PackageID = pkg.ID

	billingDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	subs.On("FindByID", mock.Anything, sub.ID).Return(sub, nil)
	invoices.On("FindForPeriod", mock.Anything, sub.ID, mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	packages.On("FindByID", mock.Anything, pkg.ID).Return(pkg, nil)
	invoices.On("LatestInvoiceNumber", mock.Anything, "INV-202601").Return("", nil)
	invoices.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newInvoiceService(invoices, new(MockPaymentRepository), subs, packages)
	inv, err := svc.Generate(context.Background(), sub.ID, billingDate)

	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusUnpaid, inv.Status)
	invoices.AssertExpectations(t)
}

func TestInvoiceService_GenerateRejectsInactiveSubscription(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	subs := new(MockSubscriptionRepository)

	sub, err := subscription.New(uuid.New(), uuid.New(), "SB-251201-0003", "Jl. Gatot Subroto 12")
	require.NoError(t, err)
	require.NoError(t, sub.Terminate())
	subs.On("FindByID", mock.Anything, sub.ID).Return(sub, nil)

	svc := newInvoiceService(invoices, new(MockPaymentRepository), subs, new(MockPackageRepository))
	_, err = svc.Generate(context.Background(), sub.ID, time.Now())

	require.Error(t, err)
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "INVALID_STATE", derr.Code)
	invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceService_GenerateIsIdempotentPerMonth(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	subs := new(MockSubscriptionRepository)

	activated := time.Date(2025, 12, 15, 9, 0, 0, 0, time.UTC)
	sub := newActiveSubscription(t, activated)
	billingDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	existing, err := billing.NewInvoice(sub.ID, "INV-202601-0001-AB12", billingDate, decimal.NewFromInt(250000))
	require.NoError(t, err)

	subs.On("FindByID", mock.Anything, sub.ID).Return(sub, nil)
	invoices.On("FindForPeriod", mock.Anything, sub.ID, mock.Anything, mock.Anything).Return(existing, nil)

	svc := newInvoiceService(invoices, new(MockPaymentRepository), subs, new(MockPackageRepository))
	_, err = svc.Generate(context.Background(), sub.ID, billingDate)

	assert.ErrorIs(t, err, shared.ErrDuplicateInvoice)
	invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceService_GenerateMonthly(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	subs := new(MockSubscriptionRepository)
	packages := new(MockPackageRepository)

	// today 2026-01-08, billing date 2026-01-15, anchor day 15
	today := time.Date(2026, 1, 8, 6, 0, 0, 0, time.UTC)
	billingDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	pkg := newHomePackage()

	fresh := newActiveSubscription(t, time.Date(2025, 12, 15, 9, 0, 0, 0, time.UTC))
	fresh.PackageID = pkg.ID
	billed := newActiveSubscription(t, time.Date(2025, 11, 15, 9, 0, 0, 0, time.UTC))
	billed.PackageID = pkg.ID

	subs.On("FindDueForBilling", mock.Anything, 15, false).Return(
		[]subscription.Subscription{*fresh, *billed}, nil)

	subs.On("FindByID", mock.Anything, fresh.ID).Return(fresh, nil)
	subs.On("FindByID", mock.Anything, billed.ID).Return(billed, nil)

	invoices.On("FindForPeriod", mock.Anything, fresh.ID, mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	existing, err := billing.NewInvoice(billed.ID, "INV-202601-0001-AB12", billingDate, pkg.MonthlyPrice)
	require.NoError(t, err)
	invoices.On("FindForPeriod", mock.Anything, billed.ID, mock.Anything, mock.Anything).Return(existing, nil)

	packages.On("FindByID", mock.Anything, pkg.ID).Return(pkg, nil)
	invoices.On("LatestInvoiceNumber", mock.Anything, "INV-202601").Return("", nil)
	invoices.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newInvoiceService(invoices, new(MockPaymentRepository), subs, packages)
	svc.now = func() time.Time { return today }

	report, err := svc.GenerateMonthly(context.Background())

	require.NoError(t, err)
	assert.Equal(t, billingDate, report.BillingDate)
	assert.Equal(t, 2, report.Eligible)
	assert.Equal(t, 1, report.Generated)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)
}

func TestInvoiceService_GenerateMonthlyIsolatesFailures(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	subs := new(MockSubscriptionRepository)
	packages := new(MockPackageRepository)

	today := time.Date(2026, 1, 8, 6, 0, 0, 0, time.UTC)
	pkg := newHomePackage()

	good := newActiveSubscription(t, time.Date(2025, 12, 15, 9, 0, 0, 0, time.UTC))
	good.PackageID = pkg.ID
	broken := newActiveSubscription(t, time.Date(2025, 10, 15, 9, 0, 0, 0, time.UTC))
	broken.PackageID = pkg.ID

	subs.On("FindDueForBilling", mock.Anything, 15, false).Return(
		[]subscription.Subscription{*good, *broken}, nil)
	subs.On("FindByID", mock.Anything, good.ID).Return(good, nil)
	subs.On("FindByID", mock.Anything, broken.ID).Return(nil, errors.New("connection reset"))

	invoices.On("FindForPeriod", mock.Anything, good.ID, mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	packages.On("FindByID", mock.Anything, pkg.ID).Return(pkg, nil)
	invoices.On("LatestInvoiceNumber", mock.Anything, "INV-202601").Return("", nil)
	invoices.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newInvoiceService(invoices, new(MockPaymentRepository), subs, packages)
	svc.now = func() time.Time { return today }

	report, err := svc.GenerateMonthly(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Generated)
	assert.Equal(t, 1, report.Failed)
}

func TestInvoiceService_GenerateMonthlySkipsWrongAnchor(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	subs := new(MockSubscriptionRepository)

	today := time.Date(2026, 1, 8, 6, 0, 0, 0, time.UTC)

	// Anchored on the 20th: returned by the day-of-month query only in a
	// mismatch scenario, and must be filtered out before generation.
	offAnchor := newActiveSubscription(t, time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC))
	subs.On("FindDueForBilling", mock.Anything, 15, false).Return(
		[]subscription.Subscription{*offAnchor}, nil)

	svc := newInvoiceService(invoices, new(MockPaymentRepository), subs, new(MockPackageRepository))
	svc.now = func() time.Time { return today }

	report, err := svc.GenerateMonthly(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, report.Generated)
	assert.Equal(t, 1, report.Skipped)
	invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceService_GetByID(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	payments := new(MockPaymentRepository)

	inv := newTestInvoice(t)
	pay, err := billing.NewPayment(inv.ID, inv.TotalAmount, "bank_transfer", "trx-1", time.Now())
	require.NoError(t, err)

	invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	payments.On("FindByInvoice", mock.Anything, inv.ID).Return([]billing.Payment{*pay}, nil)

	svc := newInvoiceService(invoices, payments, new(MockSubscriptionRepository), new(MockPackageRepository))
	got, pays, err := svc.GetByID(context.Background(), inv.ID)

	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, got.InvoiceNumber)
	assert.Len(t, pays, 1)
}
