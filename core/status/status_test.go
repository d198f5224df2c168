package status

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Status
		ok   bool
	}{
		{in: "done", want: StatusDone, ok: true},
		{in: "Completed", want: StatusDone, ok: true},
		{in: "CRITICAL", want: StatusOverdue, ok: true},
		{in: "overdue", want: StatusOverdue, ok: true},
		{in: "Warning", want: StatusDueSoon, ok: true},
		{in: "due soon", want: StatusDueSoon, ok: true},
		{in: "Monitoring", want: StatusOnTrack, ok: true},
		{in: " on_track ", want: StatusOnTrack, ok: true},
		// PDCA step names found in legacy status columns
		{in: "Plan", want: StatusOnTrack, ok: true},
		{in: "Do", want: StatusOnTrack, ok: true},
		{in: "Check", want: StatusOnTrack, ok: true},
		{in: "Act", want: StatusOnTrack, ok: true},
		// corrupt values never escalate nor suppress
		{in: "", want: StatusOnTrack},
		{in: "garbage", want: StatusOnTrack},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Parse(tt.in)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.ok, ok)
		})
	}
}

func TestStatus_Rank(t *testing.T) {
	require.Greater(t, StatusOverdue.Rank(), StatusDueSoon.Rank())
	require.Greater(t, StatusDueSoon.Rank(), StatusOnTrack.Rank())
	require.Equal(t, 0, Status("lol").Rank())
}

func TestStatus_Display(t *testing.T) {
	tests := []struct {
		status     Status
		label      string
		colorClass string
	}{
		{StatusDone, "Done", "status-done"},
		{StatusOverdue, "Overdue", "status-critical"},
		{StatusDueSoon, "Due Soon", "status-warning"},
		{StatusOnTrack, "On Track", "status-ontrack"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.label, tt.status.Label())
		require.Equal(t, tt.colorClass, tt.status.ColorClass())
	}
}
