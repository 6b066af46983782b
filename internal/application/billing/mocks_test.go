package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ispnet/backend/internal/domain/billing"
	"github.com/ispnet/backend/internal/domain/catalog"
	"github.com/ispnet/backend/internal/domain/shared"
	"github.com/ispnet/backend/internal/domain/subscription"
	"github.com/ispnet/backend/internal/domain/workorder"
)

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindForPeriod(ctx context.Context, subscriptionID uuid.UUID, periodStart, periodEnd time.Time) (*billing.Invoice, error) {
	args := m.Called(ctx, subscriptionID, periodStart, periodEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, customerID, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindCurrentUnpaid(ctx context.Context, customerID uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOverdue(ctx context.Context, before time.Time) ([]billing.Invoice, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindUnpaidDueBetween(ctx context.Context, from, to time.Time) ([]billing.Invoice, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) LatestInvoiceNumber(ctx context.Context, prefix string) (string, error) {
	args := m.Called(ctx, prefix)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, inv *billing.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SettlePayment(ctx context.Context, invoiceID uuid.UUID, observedVersion int, target billing.InvoiceStatus, payment *billing.Payment, events ...shared.DomainEvent) (*billing.Invoice, bool, error) {
	args := m.Called(ctx, invoiceID, observedVersion, target, payment, events)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*billing.Invoice), args.Bool(1), args.Error(2)
}

// MockPaymentRepository is a mock implementation of billing.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

// MockSubscriptionRepository is a mock implementation of subscription.Repository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindByServiceNumber(ctx context.Context, serviceNumber string) (*subscription.Subscription, error) {
	args := m.Called(ctx, serviceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindAll(ctx context.Context, filter subscription.Filter) ([]subscription.Subscription, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]subscription.Subscription), args.Get(1).(int64), args.Error(2)
}

func (m *MockSubscriptionRepository) FindDueForBilling(ctx context.Context, dayToBill int, isLastDayOfMonth bool) ([]subscription.Subscription, error) {
	args := m.Called(ctx, dayToBill, isLastDayOfMonth)
	return args.Get(0).([]subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) LatestServiceNumber(ctx context.Context, prefix string) (string, error) {
	args := m.Called(ctx, prefix)
	return args.String(0), args.Error(1)
}

func (m *MockSubscriptionRepository) Save(ctx context.Context, sub *subscription.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) SaveWithLock(ctx context.Context, sub *subscription.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

// MockPackageRepository is a mock implementation of catalog.PackageRepository
type MockPackageRepository struct {
	mock.Mock
}

func (m *MockPackageRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Package), args.Error(1)
}

func (m *MockPackageRepository) FindActive(ctx context.Context) ([]catalog.Package, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Package), args.Error(1)
}

// MockWorkOrderRepository is a mock implementation of workorder.Repository
type MockWorkOrderRepository struct {
	mock.Mock
}

func (m *MockWorkOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*workorder.WorkOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workorder.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderRepository) FindBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]*workorder.WorkOrder, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Get(0).([]*workorder.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderRepository) FindByStatus(ctx context.Context, status workorder.WorkOrderStatus, limit int) ([]*workorder.WorkOrder, error) {
	args := m.Called(ctx, status, limit)
	return args.Get(0).([]*workorder.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderRepository) Save(ctx context.Context, wo *workorder.WorkOrder) error {
	args := m.Called(ctx, wo)
	return args.Error(0)
}

// MockPaymentGateway is a mock implementation of billing.PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateTransaction(ctx context.Context, req billing.CheckoutRequest) (*billing.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CheckoutSession), args.Error(1)
}

func (m *MockPaymentGateway) FetchStatus(ctx context.Context, orderID string) (*billing.GatewayNotification, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.GatewayNotification), args.Error(1)
}

func (m *MockPaymentGateway) VerifySignature(n *billing.GatewayNotification) bool {
	args := m.Called(n)
	return args.Bool(0)
}

func (m *MockPaymentGateway) ComputeSignature(n *billing.GatewayNotification) string {
	args := m.Called(n)
	return args.String(0)
}

// MockNotifier is a mock implementation of shared.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) InvoiceIssued(ctx context.Context, notice shared.InvoiceNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func (m *MockNotifier) PaymentReceived(ctx context.Context, notice shared.PaymentNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func (m *MockNotifier) PaymentReminder(ctx context.Context, notice shared.ReminderNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func (m *MockNotifier) OverdueAlert(ctx context.Context, notice shared.ReminderNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func (m *MockNotifier) ServiceIsolated(ctx context.Context, notice shared.ServiceNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func (m *MockNotifier) ServiceReactivated(ctx context.Context, notice shared.ServiceNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
