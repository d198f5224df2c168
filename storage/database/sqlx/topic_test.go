package sqlxrepos

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/uzimahq/uzima/core/status"
)

func TestScannedStatusIsNormalized(t *testing.T) {
	tests := []struct {
		stored string
		want   status.Status
	}{
		{stored: "on_track", want: status.StatusOnTrack},
		{stored: "done", want: status.StatusDone},
		{stored: "Critical", want: status.StatusOverdue},
		{stored: "Warning", want: status.StatusDueSoon},
		{stored: "Completed", want: status.StatusDone},
		{stored: "Plan", want: status.StatusOnTrack},
		{stored: "garbage", want: status.StatusOnTrack},
	}
	for _, tt := range tests {
		t.Run(tt.stored, func(t *testing.T) {
			top := topicRow{ID: "t1", Status: tt.stored}.toTopic()
			if top.Status != tt.want {
				t.Errorf("toTopic().Status = %q, want %q", top.Status, tt.want)
			}
			m := measureRow{ID: "m1", TopicID: "t1", Status: tt.stored}.toMeasure()
			if m.Status != tt.want {
				t.Errorf("toMeasure().Status = %q, want %q", m.Status, tt.want)
			}
		})
	}
}

// A legacy-cased escalation must keep its severity through a scan: a row
// holding "Critical" with a far-off due date still reconciles to overdue.
func TestScannedLegacyEscalationKeepsSeverity(t *testing.T) {
	row := topicRow{
		ID:      "t1",
		Status:  "Critical",
		DueDate: null.TimeFrom(time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)),
	}
	now := time.Date(2026, time.March, 28, 9, 0, 0, 0, time.UTC)
	rules := status.Rules{DueSoonThresholdDays: 7}

	got := row.toTopic().EffectiveStatus(now, rules)
	if got != status.StatusOverdue {
		t.Errorf("EffectiveStatus() = %q, want %q", got, status.StatusOverdue)
	}
}
