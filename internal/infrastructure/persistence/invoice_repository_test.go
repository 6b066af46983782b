package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ispnet/backend/internal/domain/billing"
	"github.com/ispnet/backend/internal/domain/shared"
	"github.com/ispnet/backend/internal/infrastructure/persistence/models"
)

// recordingEventSaver captures the events handed to the settlement and
// create transactions.
type recordingEventSaver struct {
	mu    sync.Mutex
	saved []shared.DomainEvent
}

func (s *recordingEventSaver) SaveEvents(_ context.Context, txProvider interface{}, events ...shared.DomainEvent) error {
	if _, ok := txProvider.(*gorm.DB); !ok {
		panic("txProvider must be a *gorm.DB")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, events...)
	return nil
}

func setupInvoiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.InvoiceModel{}, &models.PaymentModel{}, &models.SubscriptionModel{})
	require.NoError(t, err)

	return db
}

func newTestInvoice(t *testing.T, number string, period time.Time) *billing.Invoice {
	inv, err := billing.NewInvoice(uuid.New(), number, period, decimal.NewFromInt(250000))
	require.NoError(t, err)
	return inv
}

func TestGormInvoiceRepository_Create(t *testing.T) {
	db := setupInvoiceTestDB(t)
	saver := &recordingEventSaver{}
	repo := NewGormInvoiceRepository(db, saver)
	ctx := context.Background()

	period := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)
	inv := newTestInvoice(t, "INV-202601-0001-A1B2", period)

	require.NoError(t, repo.Create(ctx, inv))

	t.Run("persists the invoice", func(t *testing.T) {
		found, err := repo.FindByNumber(ctx, "INV-202601-0001-A1B2")
		require.NoError(t, err)
		assert.Equal(t, inv.ID, found.ID)
		assert.Equal(t, billing.InvoiceStatusUnpaid, found.Status)
		assert.Equal(t, 0, found.Version)
		assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(250000)))
	})

	t.Run("stages the issued event and clears it from the aggregate", func(t *testing.T) {
		require.Len(t, saver.saved, 1)
		assert.Equal(t, billing.EventTypeInvoiceIssued, saver.saved[0].EventType())
		assert.Empty(t, inv.GetDomainEvents())
	})

	t.Run("rejects a duplicate invoice number", func(t *testing.T) {
		dup := newTestInvoice(t, "INV-202601-0001-A1B2", period)
		assert.Error(t, repo.Create(ctx, dup))
	})
}

func TestGormInvoiceRepository_FindForPeriod(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db, &recordingEventSaver{})
	ctx := context.Background()

	subID := uuid.New()
	period := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)
	inv, err := billing.NewInvoice(subID, "INV-202601-0002-C3D4", period, decimal.NewFromInt(100000))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, inv))

	monthStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)

	t.Run("finds the invoice inside the window", func(t *testing.T) {
		found, err := repo.FindForPeriod(ctx, subID, monthStart, monthEnd)
		require.NoError(t, err)
		assert.Equal(t, inv.ID, found.ID)
	})

	t.Run("other subscriptions do not match", func(t *testing.T) {
		_, err := repo.FindForPeriod(ctx, uuid.New(), monthStart, monthEnd)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("other months do not match", func(t *testing.T) {
		febStart := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		febEnd := time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC)
		_, err := repo.FindForPeriod(ctx, subID, febStart, febEnd)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("cancelled invoices do not block the window", func(t *testing.T) {
		require.NoError(t, inv.Cancel())
		model := models.InvoiceModelFromDomain(inv)
		require.NoError(t, db.Save(model).Error)

		_, err := repo.FindForPeriod(ctx, subID, monthStart, monthEnd)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormInvoiceRepository_SettlePayment(t *testing.T) {
	ctx := context.Background()
	period := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)

	t.Run("transitions to PAID and records the payment atomically", func(t *testing.T) {
		db := setupInvoiceTestDB(t)
		saver := &recordingEventSaver{}
		repo := NewGormInvoiceRepository(db, saver)
		payments := NewGormPaymentRepository(db)

		inv := newTestInvoice(t, "INV-202601-0010-AAAA", period)
		require.NoError(t, repo.Create(ctx, inv))
		saver.saved = nil

		payment, err := billing.NewPayment(inv.ID, inv.TotalAmount, "bank_transfer", "trx-1", time.Now())
		require.NoError(t, err)

		settled, raced, err := repo.SettlePayment(ctx, inv.ID, 0, billing.InvoiceStatusPaid, payment,
			billing.NewInvoicePaidEvent(inv, payment))
		require.NoError(t, err)
		assert.False(t, raced)
		assert.Equal(t, billing.InvoiceStatusPaid, settled.Status)
		assert.Equal(t, 1, settled.Version)

		rows, err := payments.FindByInvoice(ctx, inv.ID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "trx-1", rows[0].GatewayTrxID)

		require.Len(t, saver.saved, 1)
		assert.Equal(t, billing.EventTypeInvoicePaid, saver.saved[0].EventType())
	})

	t.Run("second delivery with the same observed version races out", func(t *testing.T) {
		db := setupInvoiceTestDB(t)
		saver := &recordingEventSaver{}
		repo := NewGormInvoiceRepository(db, saver)
		payments := NewGormPaymentRepository(db)

		inv := newTestInvoice(t, "INV-202601-0011-BBBB", period)
		require.NoError(t, repo.Create(ctx, inv))
		saver.saved = nil

		payment, err := billing.NewPayment(inv.ID, inv.TotalAmount, "gopay", "trx-2", time.Now())
		require.NoError(t, err)

		_, raced, err := repo.SettlePayment(ctx, inv.ID, 0, billing.InvoiceStatusPaid, payment, billing.NewInvoicePaidEvent(inv, payment))
		require.NoError(t, err)
		require.False(t, raced)

		dupPayment, err := billing.NewPayment(inv.ID, inv.TotalAmount, "gopay", "trx-2", time.Now())
		require.NoError(t, err)

		settled, raced, err := repo.SettlePayment(ctx, inv.ID, 0, billing.InvoiceStatusPaid, dupPayment, billing.NewInvoicePaidEvent(inv, dupPayment))
		require.NoError(t, err)
		assert.True(t, raced)
		assert.Nil(t, settled)

		// no duplicate payment row, no duplicate event
		rows, err := payments.FindByInvoice(ctx, inv.ID)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.Len(t, saver.saved, 1)
	})

	t.Run("concurrent deliveries settle exactly once", func(t *testing.T) {
		db := setupInvoiceTestDB(t)
		// A single pooled connection keeps both goroutines on the same
		// in-memory database.
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.SetMaxOpenConns(1)

		saver := &recordingEventSaver{}
		repo := NewGormInvoiceRepository(db, saver)
		payments := NewGormPaymentRepository(db)

		inv := newTestInvoice(t, "INV-202601-0013-DDDD", period)
		require.NoError(t, repo.Create(ctx, inv))
		saver.saved = nil

		// Two webhook deliveries for the same order, both acting on the
		// version they observed before either wrote.
		results := make(chan bool, 2)
		errs := make(chan error, 2)
		for _, trxID := range []string{"trx-3a", "trx-3b"} {
			go func(trxID string) {
				payment, err := billing.NewPayment(inv.ID, inv.TotalAmount, "qris", trxID, time.Now())
				if err != nil {
					errs <- err
					return
				}
				_, raced, err := repo.SettlePayment(ctx, inv.ID, 0, billing.InvoiceStatusPaid, payment,
					billing.NewInvoicePaidEvent(inv, payment))
				if err != nil {
					errs <- err
					return
				}
				results <- raced
			}(trxID)
		}

		won, lost := 0, 0
		for i := 0; i < 2; i++ {
			select {
			case err := <-errs:
				t.Fatalf("settlement returned an error: %v", err)
			case raced := <-results:
				if raced {
					lost++
				} else {
					won++
				}
			}
		}
		assert.Equal(t, 1, won, "exactly one delivery should settle the invoice")
		assert.Equal(t, 1, lost, "the other delivery should race out")

		settled, err := repo.FindByID(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusPaid, settled.Status)
		assert.Equal(t, 1, settled.Version)

		rows, err := payments.FindByInvoice(ctx, inv.ID)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.Len(t, saver.saved, 1)
	})

	t.Run("cancellation writes no payment row", func(t *testing.T) {
		db := setupInvoiceTestDB(t)
		repo := NewGormInvoiceRepository(db, &recordingEventSaver{})
		payments := NewGormPaymentRepository(db)

		inv := newTestInvoice(t, "INV-202601-0012-CCCC", period)
		require.NoError(t, repo.Create(ctx, inv))

		settled, raced, err := repo.SettlePayment(ctx, inv.ID, 0, billing.InvoiceStatusCancelled, nil,
			billing.NewInvoiceCancelledEvent(inv, "expired"))
		require.NoError(t, err)
		assert.False(t, raced)
		assert.Equal(t, billing.InvoiceStatusCancelled, settled.Status)

		rows, err := payments.FindByInvoice(ctx, inv.ID)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestGormInvoiceRepository_OverdueAndDueWindows(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db, &recordingEventSaver{})
	ctx := context.Background()

	// due dates: period + 7d
	mkInvoice := func(number string, period time.Time) *billing.Invoice {
		inv := newTestInvoice(t, number, period)
		require.NoError(t, repo.Create(ctx, inv))
		return inv
	}

	overdue := mkInvoice("INV-202512-0001-AAAA", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)) // due 2025-12-08
	dueSoon := mkInvoice("INV-202601-0020-BBBB", time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC))  // due 2026-01-11
	// outside every window
	mkInvoice("INV-202602-0001-CCCC", time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))

	now := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)

	t.Run("FindOverdue returns only past-due unpaid invoices", func(t *testing.T) {
		invoices, err := repo.FindOverdue(ctx, now)
		require.NoError(t, err)
		require.Len(t, invoices, 1)
		assert.Equal(t, overdue.ID, invoices[0].ID)
	})

	t.Run("FindUnpaidDueBetween scans the reminder window", func(t *testing.T) {
		from := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
		invoices, err := repo.FindUnpaidDueBetween(ctx, from, to)
		require.NoError(t, err)
		require.Len(t, invoices, 1)
		assert.Equal(t, dueSoon.ID, invoices[0].ID)
	})

	t.Run("paid invoices drop out of both scans", func(t *testing.T) {
		payment, err := billing.NewPayment(overdue.ID, overdue.TotalAmount, "va", "trx-9", now)
		require.NoError(t, err)
		_, raced, err := repo.SettlePayment(ctx, overdue.ID, 0, billing.InvoiceStatusPaid, payment)
		require.NoError(t, err)
		require.False(t, raced)

		invoices, err := repo.FindOverdue(ctx, now)
		require.NoError(t, err)
		assert.Empty(t, invoices)
	})

}

func TestGormInvoiceRepository_LatestInvoiceNumber(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormInvoiceRepository(db, &recordingEventSaver{})
	ctx := context.Background()

	t.Run("empty when no rows match", func(t *testing.T) {
		latest, err := repo.LatestInvoiceNumber(ctx, "INV-202601")
		require.NoError(t, err)
		assert.Equal(t, "", latest)
	})

	t.Run("returns the highest matching number", func(t *testing.T) {
		period := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)
		for _, n := range []string{"INV-202601-0001-AAAA", "INV-202601-0031-ZZZZ", "INV-202512-0099-AAAA"} {
			require.NoError(t, repo.Create(ctx, newTestInvoice(t, n, period)))
		}

		latest, err := repo.LatestInvoiceNumber(ctx, "INV-202601")
		require.NoError(t, err)
		assert.Equal(t, "INV-202601-0031-ZZZZ", latest)
	})
}
