package workorder

import "time"

// Operating hours for field dispatch, in the business timezone.
const (
	OperatingHourStart = 9
	OperatingHourEnd   = 17
)

// InstallationSlot picks the scheduled time for a new installation created
// right after payment. Inside operating hours the crew goes out one hour
// from now; otherwise the order waits for the next morning's opening.
func InstallationSlot(now time.Time) time.Time {
	hour := now.Hour()
	if hour >= OperatingHourStart && hour < OperatingHourEnd {
		return time.Date(now.Year(), now.Month(), now.Day(), hour+1, 0, 0, 0, now.Location())
	}
	next := now.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), OperatingHourStart, 0, 0, 0, now.Location())
}
