package subscription

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ServiceNumberPrefix returns the monthly prefix for service numbers,
// e.g. "ISP-202601".
func ServiceNumberPrefix(t time.Time) string {
	return fmt.Sprintf("ISP-%04d%02d", t.Year(), int(t.Month()))
}

// NextServiceNumber produces the next service number in the
// ISP-YYYYMM-NNNN sequence. latest is the highest existing number with the
// current prefix; an empty or unparsable latest restarts the sequence at 1.
func NextServiceNumber(latest string, now time.Time) string {
	next := 1
	if parts := strings.Split(latest, "-"); len(parts) >= 3 {
		if n, err := strconv.Atoi(parts[2]); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s-%04d", ServiceNumberPrefix(now), next)
}
