package checkout

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	transactionIDPrefix = "TRX"
	parentIDPrefix      = "PRT"
)

// newID builds an opaque id: prefix + yyyymmdd + 8 uppercase hex chars.
func newID(prefix string, now time.Time) string {
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return prefix + now.Format("20060102") + random
}

func newTransactionID(now time.Time) string {
	return newID(transactionIDPrefix, now)
}

func newParentID(now time.Time) string {
	return newID(parentIDPrefix, now)
}
