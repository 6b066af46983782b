package billing

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// InvoiceNumberPrefix returns the monthly prefix for invoice numbers,
// e.g. "INV-202601".
func InvoiceNumberPrefix(t time.Time) string {
	return fmt.Sprintf("INV-%04d%02d", t.Year(), int(t.Month()))
}

// NextInvoiceNumber produces the next invoice number in the
// INV-YYYYMM-NNNN-RRRR sequence. latest is the highest existing number with
// the current prefix; an empty or unparsable latest restarts the sequence.
// The random hex suffix keeps numbers unique even if earlier rows were
// purged and the sequence restarts.
func NextInvoiceNumber(latest string, now time.Time) string {
	next := 1
	if parts := strings.Split(latest, "-"); len(parts) >= 3 {
		if n, err := strconv.Atoi(parts[2]); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s-%04d-%s", InvoiceNumberPrefix(now), next, randomSuffix())
}

func randomSuffix() string {
	buf := make([]byte, 2)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; fall back to
		// a time-derived suffix rather than aborting invoice creation.
		return fmt.Sprintf("%04X", time.Now().UnixNano()&0xFFFF)
	}
	return strings.ToUpper(hex.EncodeToString(buf))
}
