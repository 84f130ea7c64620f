package report

import (
	"testing"
	"time"
)

func TestPeriodRange(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 30, 0, 0, time.UTC)

	start, end, err := PeriodRange("7", now)
	if err != nil {
		t.Fatalf("period 7: %v", err)
	}
	if !end.Equal(now) || !start.Equal(now.AddDate(0, 0, -7)) {
		t.Errorf("period 7 = [%s, %s]", start, end)
	}

	start, _, err = PeriodRange("30", now)
	if err != nil {
		t.Fatalf("period 30: %v", err)
	}
	if !start.Equal(now.AddDate(0, 0, -30)) {
		t.Errorf("period 30 start = %s", start)
	}

	start, end, err = PeriodRange("month", now)
	if err != nil {
		t.Fatalf("period month: %v", err)
	}
	wantStart := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) || !end.Equal(now) {
		t.Errorf("period month = [%s, %s], want start %s", start, end, wantStart)
	}

	if _, _, err := PeriodRange("365", now); err == nil {
		t.Error("unknown period key must error")
	}
}
