package topic

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/uzimahq/uzima/core"
	"github.com/uzimahq/uzima/core/status"
)

// PDCA steps
const (
	StepPlan  = "plan"
	StepDo    = "do"
	StepCheck = "check"
	StepAct   = "act"
)

var Steps = []string{StepPlan, StepDo, StepCheck, StepAct}

// Topic is a tracked quality topic of a department, moving through the PDCA
// cycle. Status holds the last recorded severity; the displayed classification
// is derived on read via EffectiveStatus and never persisted.
type Topic struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Step         string        `json:"step"`
	Status       status.Status `json:"status"`
	DueDate      null.Time     `json:"due_date"`
	DoneAt       null.Time     `json:"done_at"`
	OwnerID      null.Int      `json:"owner_id"`
	DepartmentID int           `json:"department_id"`
	CreatedAt    time.Time     `json:"created_at"` // UTC
	UpdatedAt    time.Time     `json:"updated_at"` // UTC
}

func (t Topic) Done() bool {
	return t.DoneAt.Valid || t.Status.IsDone()
}

// EffectiveStatus reconciles the stored status with the date-driven
// classification.
func (t Topic) EffectiveStatus(now time.Time, rules status.Rules) status.Status {
	return status.Reconcile(t.Status, t.Done(), t.DueDate, now, rules)
}

// Measure is a corrective action under a Topic, a trackable item of its own.
type Measure struct {
	ID         string        `json:"id"`
	TopicID    string        `json:"topic_id"`
	Title      string        `json:"title"`
	Status     status.Status `json:"status"`
	DueDate    null.Time     `json:"due_date"`
	DoneAt     null.Time     `json:"done_at"`
	AssigneeID null.Int      `json:"assignee_id"`
	CreatedAt  time.Time     `json:"created_at"` // UTC
	UpdatedAt  time.Time     `json:"updated_at"` // UTC
}

func (m Measure) Done() bool {
	return m.DoneAt.Valid || m.Status.IsDone()
}

func (m Measure) EffectiveStatus(now time.Time, rules status.Rules) status.Status {
	return status.Reconcile(m.Status, m.Done(), m.DueDate, now, rules)
}

// NewTopic contains information needed to create a new Topic.
type NewTopic struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	Step         string `json:"step" validate:"omitempty,pdcastep"`
	Status       string `json:"status"`
	DueDate      string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	OwnerID      int    `json:"owner_id"`
	DepartmentID int    `json:"department_id" validate:"required"`
}

func (nt *NewTopic) Validate(svc *Service) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	nt.Step = core.CleanString(nt.Step, true /* lower */)
	nt.Status = core.CleanString(nt.Status, true /* lower */)

	if err := core.Validate.Struct(nt); err != nil {
		return err
	}
	return svc.checkReferences(nt.DepartmentID, nt.OwnerID, "owner_id")
}

// UpdateTopic defines what information may be provided to modify an existing Topic.
// Zero-valued fields keep their current value.
type UpdateTopic struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Step         string `json:"step" validate:"omitempty,pdcastep"`
	Status       string `json:"status"`
	DueDate      string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	OwnerID      int    `json:"owner_id"`
	DepartmentID int    `json:"department_id"`
}

func (ut *UpdateTopic) Validate(orig Topic, svc *Service) error {
	if title := core.CleanString(ut.Title); title != "" {
		ut.Title = title
	} else {
		ut.Title = orig.Title
	}
	if desc := core.CleanString(ut.Description); desc != "" {
		ut.Description = desc
	} else {
		ut.Description = orig.Description
	}
	if step := core.CleanString(ut.Step, true /* lower */); step != "" {
		ut.Step = step
	} else {
		ut.Step = orig.Step
	}
	ut.Status = core.CleanString(ut.Status, true /* lower */)
	if ut.DepartmentID == 0 {
		ut.DepartmentID = orig.DepartmentID
	}

	if err := core.Validate.Struct(ut); err != nil {
		return err
	}
	return svc.checkReferences(ut.DepartmentID, ut.OwnerID, "owner_id")
}

// NewMeasure contains information needed to create a new Measure under a Topic.
type NewMeasure struct {
	Title      string `json:"title" validate:"required"`
	Status     string `json:"status"`
	DueDate    string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	AssigneeID int    `json:"assignee_id"`
}

func (nm *NewMeasure) Validate(svc *Service) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Status = core.CleanString(nm.Status, true /* lower */)

	if err := core.Validate.Struct(nm); err != nil {
		return err
	}
	return svc.checkReferences(0, nm.AssigneeID, "assignee_id")
}

// UpdateMeasure defines what information may be provided to modify an existing Measure.
type UpdateMeasure struct {
	Title      string `json:"title"`
	Status     string `json:"status"`
	DueDate    string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	AssigneeID int    `json:"assignee_id"`
}

func (um *UpdateMeasure) Validate(orig Measure, svc *Service) error {
	if title := core.CleanString(um.Title); title != "" {
		um.Title = title
	} else {
		um.Title = orig.Title
	}
	um.Status = core.CleanString(um.Status, true /* lower */)

	if err := core.Validate.Struct(um); err != nil {
		return err
	}
	return svc.checkReferences(0, um.AssigneeID, "assignee_id")
}

type QueryFilter struct {
	Search       string    `query:"search"`
	DepartmentID int       `query:"department_id"`
	Step         string    `query:"step"`
	IsDone       *bool     `query:"is_done"`
	DueFrom      time.Time `query:"due_from"`
	DueTo        time.Time `query:"due_to"`

	// EffectiveStatus filters on the derived classification; it is applied by
	// the service after the repository query since the classification is a
	// view, not a stored fact.
	EffectiveStatus string `query:"effective_status"`
}

func (filter *QueryFilter) Clean() {
	filter.Search = core.CleanString(filter.Search)
	filter.Step = core.CleanString(filter.Step, true /* lower */)
	filter.EffectiveStatus = core.CleanString(filter.EffectiveStatus, true /* lower */)
}
