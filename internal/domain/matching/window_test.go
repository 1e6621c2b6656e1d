package matching

import (
	"testing"
	"time"
)

func TestWindowFor(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		urgency   string
		wantEnd   time.Time
		earlyExit bool
	}{
		{UrgencyEmergency, now.Add(2 * time.Hour), true},
		{UrgencyUrgent, now.AddDate(0, 0, 1), false},
		{UrgencyRoutine, now.AddDate(0, 0, 7), false},
	}
	for _, tt := range tests {
		t.Run(tt.urgency, func(t *testing.T) {
			w := WindowFor(tt.urgency, now)
			if !w.Start.Equal(now) {
				t.Errorf("window start = %v, want %v", w.Start, now)
			}
			if !w.End.Equal(tt.wantEnd) {
				t.Errorf("window end = %v, want %v", w.End, tt.wantEnd)
			}
			if w.EarlyExit != tt.earlyExit {
				t.Errorf("earlyExit = %v, want %v", w.EarlyExit, tt.earlyExit)
			}
		})
	}
}

func TestWindowFor_UnknownFallsBackToRoutine(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	w := WindowFor("someday", now)
	if !w.End.Equal(now.AddDate(0, 0, 7)) || w.EarlyExit {
		t.Errorf("unknown urgency should get the routine window, got %+v", w)
	}
}

func TestUrgencyRank(t *testing.T) {
	if !(UrgencyRank(UrgencyEmergency) < UrgencyRank(UrgencyUrgent) &&
		UrgencyRank(UrgencyUrgent) < UrgencyRank(UrgencyRoutine) &&
		UrgencyRank(UrgencyRoutine) < UrgencyRank("other")) {
		t.Error("urgency ranks must order emergency < urgent < routine < unknown")
	}
}
