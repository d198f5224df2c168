// Package status implements the traffic-light status derivation for trackable
// work items (topics, measures): classification of an item from its due date
// and the governance due-soon threshold, and reconciliation of that
// classification with a manually recorded status.
package status

import "strings"

// Status is the effective severity classification of a trackable item.
type Status string

const (
	StatusDone    Status = "done"
	StatusOverdue Status = "overdue"
	StatusDueSoon Status = "due_soon"
	StatusOnTrack Status = "on_track"
)

// severity ranks for open items. StatusDone is terminal and never compared.
var ranks = map[Status]int{
	StatusOverdue: 2,
	StatusDueSoon: 1,
	StatusOnTrack: 0,
}

// legacy maps status values found in pre-existing data to the closed set.
// PDCA step names used to be written into the status column; they carry no
// severity signal and map to on-track.
var legacy = map[string]Status{
	"done":      StatusDone,
	"completed": StatusDone,
	"closed":    StatusDone,

	"overdue":  StatusOverdue,
	"critical": StatusOverdue,

	"due_soon": StatusDueSoon,
	"due soon": StatusDueSoon,
	"duesoon":  StatusDueSoon,
	"warning":  StatusDueSoon,

	"on_track":   StatusOnTrack,
	"on track":   StatusOnTrack,
	"ontrack":    StatusOnTrack,
	"monitoring": StatusOnTrack,
	"plan":       StatusOnTrack,
	"do":         StatusOnTrack,
	"check":      StatusOnTrack,
	"act":        StatusOnTrack,
}

// Parse normalizes a stored status value into the closed Status set.
// Unrecognized values map to StatusOnTrack (the lowest severity, so corrupt
// data can never suppress a date-driven escalation) with ok=false, letting
// callers surface a data-quality warning.
func Parse(s string) (status Status, ok bool) {
	if st, found := legacy[strings.ToLower(strings.TrimSpace(s))]; found {
		return st, true
	}
	return StatusOnTrack, false
}

func (s Status) String() string { return string(s) }

// Rank returns the severity rank of an open status (Overdue 2 > DueSoon 1 >
// OnTrack 0). Unknown values rank lowest.
func (s Status) Rank() int { return ranks[s] }

func (s Status) IsDone() bool { return s == StatusDone }

// Label returns the display label for the status badge.
func (s Status) Label() string {
	switch s {
	case StatusDone:
		return "Done"
	case StatusOverdue:
		return "Overdue"
	case StatusDueSoon:
		return "Due Soon"
	default:
		return "On Track"
	}
}

// ColorClass returns the style-class key the UI uses for color-coded badges.
func (s Status) ColorClass() string {
	switch s {
	case StatusDone:
		return "status-done"
	case StatusOverdue:
		return "status-critical"
	case StatusDueSoon:
		return "status-warning"
	default:
		return "status-ontrack"
	}
}
