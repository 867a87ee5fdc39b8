package billing

import (
	"strings"
	"testing"
	"time"

	"solpass.app/cloud/models"
)

func msUTC(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC).UnixMilli()
}

func TestNextBillingDate_SameDayNextMonth(t *testing.T) {
	from := msUTC(2025, time.January, 15)
	next := NextBillingDate(from, models.IntervalMonth)

	got := time.UnixMilli(next).UTC()
	if got.Year() != 2025 || got.Month() != time.February || got.Day() != 15 {
		t.Errorf("Expected Feb 15 2025, got %v", got)
	}
}

func TestNextBillingDate_ClampsToShorterMonth(t *testing.T) {
	tests := []struct {
		name      string
		from      int64
		wantYear  int
		wantMonth time.Month
		wantDay   int
	}{
		{"Jan 31 to Feb 28", msUTC(2025, time.January, 31), 2025, time.February, 28},
		{"Jan 31 to Feb 29 leap year", msUTC(2024, time.January, 31), 2024, time.February, 29},
		{"Mar 31 to Apr 30", msUTC(2025, time.March, 31), 2025, time.April, 30},
		{"Oct 31 to Nov 30", msUTC(2025, time.October, 31), 2025, time.November, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := time.UnixMilli(NextBillingDate(tt.from, models.IntervalMonth)).UTC()
			if got.Year() != tt.wantYear || got.Month() != tt.wantMonth || got.Day() != tt.wantDay {
				t.Errorf("Expected %v %d %d, got %v", tt.wantMonth, tt.wantDay, tt.wantYear, got)
			}
		})
	}
}

func TestNextBillingDate_YearBoundary(t *testing.T) {
	from := msUTC(2024, time.December, 31)
	got := time.UnixMilli(NextBillingDate(from, models.IntervalMonth)).UTC()

	if got.Year() != 2025 || got.Month() != time.January || got.Day() != 31 {
		t.Errorf("Expected Jan 31 2025, got %v", got)
	}
}

func TestNextBillingDate_PreservesTimeOfDay(t *testing.T) {
	from := time.Date(2025, time.May, 10, 9, 30, 45, 0, time.UTC).UnixMilli()
	got := time.UnixMilli(NextBillingDate(from, models.IntervalMonth)).UTC()

	if got.Hour() != 9 || got.Minute() != 30 || got.Second() != 45 {
		t.Errorf("Expected 09:30:45, got %v", got)
	}
}

func TestIsBillingDue(t *testing.T) {
	now := msUTC(2025, time.June, 1)

	tests := []struct {
		name string
		sub  models.Subscription
		want bool
	}{
		{"active and past due date", models.Subscription{Status: models.StatusActive, NextBillingDate: now - 1000}, true},
		{"active exactly at due date", models.Subscription{Status: models.StatusActive, NextBillingDate: now}, true},
		{"active before due date", models.Subscription{Status: models.StatusActive, NextBillingDate: now + 1000}, false},
		{"paused past due date", models.Subscription{Status: models.StatusPaused, NextBillingDate: now - 1000}, false},
		{"cancelled past due date", models.Subscription{Status: models.StatusCancelled, NextBillingDate: now - 1000}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBillingDue(tt.sub, now); got != tt.want {
				t.Errorf("IsBillingDue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatDate(t *testing.T) {
	ms := time.Date(2025, time.March, 7, 15, 4, 0, 0, time.UTC).UnixMilli()

	if got := FormatDate(ms); got != "Mar 7, 2025" {
		t.Errorf("Expected 'Mar 7, 2025', got %q", got)
	}
	if got := FormatDateTime(ms); got != "Mar 7, 2025 3:04 PM" {
		t.Errorf("Expected 'Mar 7, 2025 3:04 PM', got %q", got)
	}
}

func TestNewSubscriptionID_Format(t *testing.T) {
	id := NewSubscriptionID()

	if !strings.HasPrefix(id, "sub_") {
		t.Errorf("Expected sub_ prefix, got %q", id)
	}
	if parts := strings.Split(id, "_"); len(parts) != 3 {
		t.Errorf("Expected prefix_timestamp_suffix shape, got %q", id)
	}
}

func TestNewPaymentID_Format(t *testing.T) {
	id := NewPaymentID()

	if !strings.HasPrefix(id, "pay_") {
		t.Errorf("Expected pay_ prefix, got %q", id)
	}
}

func TestNewSubscriptionID_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewSubscriptionID()
		if seen[id] {
			t.Fatalf("Generated duplicate id %q", id)
		}
		seen[id] = true
	}
}
