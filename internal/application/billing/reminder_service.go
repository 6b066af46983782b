package billing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ispnet/backend/internal/domain/billing"
	"github.com/ispnet/backend/internal/domain/shared"
)

// Reminder cadence relative to the due date. A reminder goes out three days
// and one day before the due date, and an overdue alert the day after.
var reminderOffsets = []int{3, 1, -1}

// reminderTTL keeps the sent-marker alive long enough to survive scheduler
// restarts and a manually re-run job on the same day.
const reminderTTL = 48 * time.Hour

// ReminderReport summarizes one reminder sweep
type ReminderReport struct {
	Date      time.Time `json:"date"`
	Reminders int       `json:"reminders"`
	Alerts    int       `json:"alerts"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
}

// ReminderService sends payment reminders for unpaid invoices around their
// due date. The idempotency store dedupes per invoice, offset and calendar
// day, so re-running the sweep never doubles a notification.
type ReminderService struct {
	invoices    billing.InvoiceRepository
	notifier    shared.Notifier
	idempotency shared.IdempotencyStore
	logger      *zap.Logger
	location    *time.Location
	now         func() time.Time
}

// NewReminderService creates a new ReminderService
func NewReminderService(
	invoices billing.InvoiceRepository,
	notifier shared.Notifier,
	idempotency shared.IdempotencyStore,
	location *time.Location,
	logger *zap.Logger,
) *ReminderService {
	if location == nil {
		location = time.UTC
	}
	return &ReminderService{
		invoices:    invoices,
		notifier:    notifier,
		idempotency: idempotency,
		logger:      logger,
		location:    location,
		now:         time.Now,
	}
}

// SendReminders runs one daily reminder sweep. It loads every unpaid
// invoice whose due date falls on one of the reminder offsets relative to
// today and sends the matching notice, deduplicated through the
// idempotency store.
func (s *ReminderService) SendReminders(ctx context.Context) (*ReminderReport, error) {
	today := billing.StartOfDay(s.now().In(s.location))

	// Window covering all offsets: due dates from yesterday (overdue
	// alert) up to three days out (earliest reminder).
	from := today.AddDate(0, 0, -1)
	to := today.AddDate(0, 0, reminderOffsets[0])

	invoices, err := s.invoices.FindUnpaidDueBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load unpaid invoices due between %s and %s: %w",
			from.Format("2006-01-02"), to.Format("2006-01-02"), err)
	}

	report := &ReminderReport{Date: today}
	for i := range invoices {
		inv := &invoices[i]
		delta := billing.DaysUntil(today, billing.StartOfDay(inv.DueDate.In(s.location)))

		if !reminderDue(delta) {
			continue
		}

		key := fmt.Sprintf("%s:due%+d:%s", inv.ID, delta, today.Format("2006-01-02"))
		fresh, err := s.idempotency.MarkProcessed(ctx, key, reminderTTL)
		if err != nil {
			report.Failed++
			s.logger.Error("Failed to mark reminder as sent",
				zap.String("invoice_number", inv.InvoiceNumber),
				zap.Error(err),
			)
			continue
		}
		if !fresh {
			report.Skipped++
			continue
		}

		notice := shared.ReminderNotice{
			InvoiceID:      inv.ID,
			InvoiceNumber:  inv.InvoiceNumber,
			SubscriptionID: inv.SubscriptionID,
			TotalAmount:    inv.TotalAmount,
			DueDate:        inv.DueDate,
			DaysUntilDue:   delta,
		}

		if delta < 0 {
			err = s.notifier.OverdueAlert(ctx, notice)
		} else {
			err = s.notifier.PaymentReminder(ctx, notice)
		}
		if err != nil {
			report.Failed++
			s.logger.Error("Failed to send payment reminder",
				zap.String("invoice_number", inv.InvoiceNumber),
				zap.Int("days_until_due", delta),
				zap.Error(err),
			)
			// Back out the mark so the next sweep retries this notice.
			if relErr := s.idempotency.Release(ctx, key); relErr != nil {
				s.logger.Error("Failed to release reminder mark",
					zap.String("invoice_number", inv.InvoiceNumber),
					zap.Error(relErr),
				)
			}
			continue
		}

		if delta < 0 {
			report.Alerts++
		} else {
			report.Reminders++
		}
	}

	s.logger.Info("Reminder sweep finished",
		zap.Time("date", today),
		zap.Int("reminders", report.Reminders),
		zap.Int("alerts", report.Alerts),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func reminderDue(delta int) bool {
	for _, offset := range reminderOffsets {
		if delta == offset {
			return true
		}
	}
	return false
}
