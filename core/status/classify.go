package status

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
)

// DefaultDueSoonThresholdDays is used when no governance rules are configured.
const DefaultDueSoonThresholdDays = 7

// Rules holds the organization-wide governance thresholds.
type Rules struct {
	DueSoonThresholdDays int `json:"due_soon_threshold_days"`
}

// DefaultRules returns the governance rules used before an admin ever
// configured any.
func DefaultRules() Rules {
	return Rules{DueSoonThresholdDays: DefaultDueSoonThresholdDays}
}

// Threshold returns the due-soon threshold in days, clamping negative values
// to 0 so classification stays total on any stored input.
func (r Rules) Threshold() int {
	if r.DueSoonThresholdDays < 0 {
		return 0
	}
	return r.DueSoonThresholdDays
}

// Classify derives the status of a trackable item from its due date.
//
// A done item is always StatusDone, whatever its dates. An item without a due
// date is never at risk. The due date is treated as end-of-day: an item due
// today is not overdue until the day has fully elapsed. The due-soon horizon
// uses calendar-day arithmetic (AddDate, not a 24h multiple) so a DST
// transition cannot shift an item across the boundary; a due date exactly
// Threshold() days from now classifies as due soon.
func Classify(due null.Time, now time.Time, rules Rules, done bool) Status {
	if done {
		return StatusDone
	}
	if !due.Valid {
		return StatusOnTrack
	}

	dueEnd := endOfDay(due.Time, now.Location())
	if dueEnd.Before(now) {
		return StatusOverdue
	}
	horizon := endOfDay(now.AddDate(0, 0, rules.Threshold()), now.Location())
	if !dueEnd.After(horizon) {
		return StatusDueSoon
	}
	return StatusOnTrack
}

// Reconcile computes the effective status of an item from its stored status
// and its dates. Done is absorbing: once an item is marked done, dates no
// longer matter. For open items the result is the more severe of the manually
// stored status and the date-driven classification, so a manual escalation is
// never silently downgraded and a slipped deadline still escalates untouched
// items.
func Reconcile(stored Status, done bool, due null.Time, now time.Time, rules Rules) Status {
	if done || stored.IsDone() {
		return StatusDone
	}
	calculated := Classify(due, now, rules, false)
	if stored.Rank() > calculated.Rank() {
		return stored
	}
	return calculated
}

// ParseDueDate parses a due date string coming from persistence. It accepts
// RFC 3339 timestamps and plain ISO dates and fails open: a malformed value
// yields "no due date" (and so classifies as on-track) rather than an error,
// leaving data-quality reporting to the caller.
func ParseDueDate(s string) null.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return null.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return null.TimeFrom(t)
		}
	}
	return null.Time{}
}

// endOfDay returns the last instant of t's calendar day in loc.
func endOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc).
		AddDate(0, 0, 1).Add(-time.Nanosecond)
}
