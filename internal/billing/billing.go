package billing

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"solpass.app/cloud/models"
)

// NextBillingDate adds one calendar month to a unix-millisecond timestamp.
// The day-of-month is clamped to the length of the target month, so a cycle
// anchored on Jan 31 bills on Feb 28 (or 29) rather than spilling into March.
// Only the "month" interval exists; any other value is treated as a month.
func NextBillingDate(from int64, interval string) int64 {
	t := time.UnixMilli(from).UTC()
	year, month, day := t.Date()

	targetYear, targetMonth := year, month+1
	if targetMonth > time.December {
		targetYear++
		targetMonth = time.January
	}

	if max := daysIn(targetYear, targetMonth); day > max {
		day = max
	}

	next := time.Date(targetYear, targetMonth, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	return next.UnixMilli()
}

func daysIn(year int, month time.Month) int {
	// day 0 of the following month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsBillingDue reports whether an active subscription's next billing date has
// arrived. Paused and terminal subscriptions are never due.
func IsBillingDue(sub models.Subscription, now int64) bool {
	return sub.Status == models.StatusActive && now >= sub.NextBillingDate
}

// FormatDate renders a unix-millisecond timestamp for list views.
func FormatDate(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("Jan 2, 2006")
}

// FormatDateTime renders a unix-millisecond timestamp for detail views.
func FormatDateTime(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("Jan 2, 2006 3:04 PM")
}

// NewSubscriptionID returns a probabilistically unique subscription id.
// Uniqueness is timestamp + random suffix, good enough for demo-scale record
// counts within a single wallet partition.
func NewSubscriptionID() string {
	return newID("sub")
}

// NewPaymentID returns a probabilistically unique payment record id.
func NewPaymentID() string {
	return newID("pay")
}

func newID(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), randomSuffix())
}

func randomSuffix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// fall back to a clock-derived suffix; ids stay usable
		return fmt.Sprintf("%08x", time.Now().UnixNano()&0xffffffff)
	}
	return hex.EncodeToString(buf)
}
