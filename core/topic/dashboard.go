package topic

import (
	"sort"

	"github.com/uzimahq/uzima/core/status"
)

type StatusCounts struct {
	Done    int `json:"done"`
	Overdue int `json:"overdue"`
	DueSoon int `json:"due_soon"`
	OnTrack int `json:"on_track"`
}

func (c *StatusCounts) add(s status.Status) {
	switch s {
	case status.StatusDone:
		c.Done++
	case status.StatusOverdue:
		c.Overdue++
	case status.StatusDueSoon:
		c.DueSoon++
	default:
		c.OnTrack++
	}
}

type DepartmentCounts struct {
	DepartmentID int          `json:"department_id"`
	Counts       StatusCounts `json:"counts"`
}

type Dashboard struct {
	Totals      StatusCounts       `json:"totals"`
	Departments []DepartmentCounts `json:"departments"`
	Overdue     []View             `json:"overdue"`
	DueSoon     []View             `json:"due_soon"`
}

// Dashboard classifies every topic and aggregates the results: totals, counts
// per department and the at-risk lists, ordered most urgent first.
func (svc *Service) Dashboard() (Dashboard, error) {
	topics, err := svc.repo.QueryAllTopics()
	if err != nil {
		return Dashboard{}, err
	}

	now := svc.nowFunc()
	rules := svc.rules.Rules()

	var dash Dashboard
	perDept := make(map[int]*StatusCounts)
	for _, t := range topics {
		v := newView(t, now, rules)
		dash.Totals.add(v.EffectiveStatus)

		counts, ok := perDept[t.DepartmentID]
		if !ok {
			counts = new(StatusCounts)
			perDept[t.DepartmentID] = counts
		}
		counts.add(v.EffectiveStatus)

		switch v.EffectiveStatus {
		case status.StatusOverdue:
			dash.Overdue = append(dash.Overdue, v)
		case status.StatusDueSoon:
			dash.DueSoon = append(dash.DueSoon, v)
		}
	}

	dash.Departments = make([]DepartmentCounts, 0, len(perDept))
	for id, counts := range perDept {
		dash.Departments = append(dash.Departments, DepartmentCounts{DepartmentID: id, Counts: *counts})
	}
	sort.Slice(dash.Departments, func(i, j int) bool {
		return dash.Departments[i].DepartmentID < dash.Departments[j].DepartmentID
	})
	byDueDate := func(views []View) func(i, j int) bool {
		return func(i, j int) bool {
			vi, vj := views[i], views[j]
			if vi.DueDate.Valid != vj.DueDate.Valid {
				return vi.DueDate.Valid
			}
			return vi.DueDate.Time.Before(vj.DueDate.Time)
		}
	}
	sort.Slice(dash.Overdue, byDueDate(dash.Overdue))
	sort.Slice(dash.DueSoon, byDueDate(dash.DueSoon))

	return dash, nil
}
