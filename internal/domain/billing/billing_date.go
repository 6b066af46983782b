package billing

import "time"

// BillingLeadDays is how far ahead of the billing anchor invoices are
// generated, and equals the grace window before the due date.
const BillingLeadDays = 7

// BillingTarget is the resolved billing date the generation job works
// against: seven days ahead of "today" on the business calendar.
type BillingTarget struct {
	Date           time.Time
	DayToBill      int
	LastDayOfMonth bool
}

// TargetFor resolves the billing target for a given business-calendar day
func TargetFor(today time.Time) BillingTarget {
	target := today.AddDate(0, 0, BillingLeadDays)
	day := target.Day()
	return BillingTarget{
		Date:           target,
		DayToBill:      day,
		LastDayOfMonth: EndOfMonth(target).Day() == day,
	}
}

// Eligible reports whether a subscription anchored on anchorDay is billed
// on this target date. An anchor matching the day is billed directly; when
// the target is the last day of a shorter month, anchors past it roll
// forward onto that last day (day 31 anchors billed on day 30 of a 30-day
// month).
//
// Known gap, kept on purpose: an anchor that falls strictly between
// DayToBill and the last day of a short month is NOT picked up when
// DayToBill itself is not the last day. TestTargetEligible_ShortMonthGap
// pins this behavior until product decides otherwise.
func (t BillingTarget) Eligible(anchorDay int) bool {
	if anchorDay < 1 {
		return false
	}
	if anchorDay == t.DayToBill {
		return true
	}
	return t.LastDayOfMonth && anchorDay > t.DayToBill
}

// StartOfMonth truncates a date to the first instant of its month
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last instant of the month containing t
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// StartOfDay truncates a time to midnight in its location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysUntil returns the whole-day delta from today to the given date,
// both truncated to midnight. Positive means the date is in the future,
// -1 means exactly one day past (H+1).
func DaysUntil(today, date time.Time) int {
	from := StartOfDay(today)
	to := StartOfDay(date.In(today.Location()))
	return int(to.Sub(from).Hours() / 24)
}
