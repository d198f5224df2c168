// Package topic implements the PDCA topic and measure tracking: CRUD over a
// repository, derived (never persisted) status classification, the dashboard
// aggregation and the deadline reminder scan.
package topic

import (
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/uzimahq/uzima/core"
	"github.com/uzimahq/uzima/core/audit"
	"github.com/uzimahq/uzima/core/org"
	"github.com/uzimahq/uzima/core/status"
	"github.com/uzimahq/uzima/core/user"
)

var (
	// errors
	ErrTopicNotFound   = errors.New("topic not found")
	ErrMeasureNotFound = errors.New("measure not found")

	errTopicDone   = errors.New("a completed topic cannot be reopened")
	errMeasureDone = errors.New("a completed measure cannot be reopened")
)

type (
	Repository interface {
		CreateTopic(t Topic) (Topic, error)
		QueryAllTopics() ([]Topic, error)
		// FilterTopics applies AND operation on available QueryFilter fields
		// except EffectiveStatus, which only the service can derive.
		FilterTopics(filter QueryFilter) ([]Topic, error)
		GetTopicByID(id string) (Topic, error)
		UpdateTopic(t Topic) (Topic, error)
		DeleteTopicsByID(ids ...string) error

		CreateMeasure(m Measure) (Measure, error)
		QueryAllMeasures() ([]Measure, error)
		QueryMeasuresByTopic(topicID string) ([]Measure, error)
		GetMeasureByID(id string) (Measure, error)
		UpdateMeasure(m Measure) (Measure, error)
		DeleteMeasure(id string) error
	}

	// RuleProvider supplies the current governance rules; reads go through it
	// on every classification so admin changes apply immediately.
	RuleProvider interface {
		Rules() status.Rules
	}

	// UserDirectory resolves owners and assignees.
	UserDirectory interface {
		GetByID(id int) (user.User, error)
	}

	// DepartmentDirectory resolves departments.
	DepartmentDirectory interface {
		GetDepartmentByID(id int) (org.Department, error)
	}

	Service struct {
		repo    Repository
		rules   RuleProvider
		users   UserDirectory
		depts   DepartmentDirectory
		mailSvc core.EmailService
		audit   audit.Recorder
		nowFunc func() time.Time // mockable
	}
)

func NewService(
	repo Repository,
	rules RuleProvider,
	users UserDirectory,
	depts DepartmentDirectory,
	mailSvc core.EmailService,
	rec audit.Recorder,
) *Service {
	return &Service{
		repo:    repo,
		rules:   rules,
		users:   users,
		depts:   depts,
		mailSvc: mailSvc,
		audit:   rec,
		nowFunc: time.Now,
	}
}

// View is a Topic together with its derived classification, ready for display.
type View struct {
	Topic
	EffectiveStatus status.Status `json:"effective_status"`
	StatusLabel     string        `json:"status_label"`
	StatusClass     string        `json:"status_class"`
	Measures        []MeasureView `json:"measures,omitempty"`
}

type MeasureView struct {
	Measure
	EffectiveStatus status.Status `json:"effective_status"`
	StatusLabel     string        `json:"status_label"`
	StatusClass     string        `json:"status_class"`
}

func newView(t Topic, now time.Time, rules status.Rules) View {
	eff := t.EffectiveStatus(now, rules)
	return View{Topic: t, EffectiveStatus: eff, StatusLabel: eff.Label(), StatusClass: eff.ColorClass()}
}

func newMeasureView(m Measure, now time.Time, rules status.Rules) MeasureView {
	eff := m.EffectiveStatus(now, rules)
	return MeasureView{Measure: m, EffectiveStatus: eff, StatusLabel: eff.Label(), StatusClass: eff.ColorClass()}
}

// checkReferences validates that the referenced department and user exist.
// Zero IDs mean "not set" and are skipped. userField names the user reference
// in errors ("owner_id" for topics, "assignee_id" for measures).
func (svc *Service) checkReferences(departmentID, userID int, userField string) error {
	if departmentID > 0 {
		if _, err := svc.depts.GetDepartmentByID(departmentID); err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "department_id", Error: err.Error()})
		}
	}
	if userID > 0 {
		if _, err := svc.users.GetByID(userID); err != nil {
			return core.NewValidationError(err, core.FieldError{Field: userField, Error: err.Error()})
		}
	}
	return nil
}

// Topics

func (svc *Service) Create(actorID int, nt NewTopic) (View, error) {
	now := svc.nowFunc()
	step := nt.Step
	if step == "" {
		step = StepPlan
	}
	stored, _ := status.Parse(nt.Status)

	t := Topic{
		ID:           uuid.New().String(),
		Title:        nt.Title,
		Description:  nt.Description,
		Step:         step,
		Status:       stored,
		DueDate:      status.ParseDueDate(nt.DueDate),
		DepartmentID: nt.DepartmentID,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}
	if nt.OwnerID > 0 {
		t.OwnerID = null.IntFrom(nt.OwnerID)
	}

	t, err := svc.repo.CreateTopic(t)
	if err != nil {
		return View{}, err
	}
	svc.audit.Record(actorID, audit.ActionCreated, audit.KindTopic, t.ID, t.Title)
	svc.notifyAssignment(t.OwnerID, t.Title, t.ID, t.DueDate)
	return newView(t, now, svc.rules.Rules()), nil
}

func (svc *Service) Query(filter QueryFilter) ([]View, error) {
	topics, err := svc.repo.FilterTopics(filter)
	if err != nil {
		return nil, err
	}

	now := svc.nowFunc()
	rules := svc.rules.Rules()
	views := make([]View, 0, len(topics))
	for _, t := range topics {
		v := newView(t, now, rules)
		if filter.EffectiveStatus != "" && string(v.EffectiveStatus) != filter.EffectiveStatus {
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

func (svc *Service) GetByID(id string) (View, error) {
	t, err := svc.repo.GetTopicByID(id)
	if err != nil {
		return View{}, err
	}
	measures, err := svc.repo.QueryMeasuresByTopic(t.ID)
	if err != nil {
		return View{}, err
	}

	now := svc.nowFunc()
	rules := svc.rules.Rules()
	v := newView(t, now, rules)
	for _, m := range measures {
		v.Measures = append(v.Measures, newMeasureView(m, now, rules))
	}
	return v, nil
}

func (svc *Service) Update(actorID int, orig Topic, ut UpdateTopic) (View, error) {
	stored := orig.Status
	if ut.Status != "" {
		parsed, _ := status.Parse(ut.Status)
		if orig.Done() && !parsed.IsDone() {
			return View{}, core.NewValidationError(errTopicDone, core.FieldError{Field: "status", Error: errTopicDone.Error()})
		}
		stored = parsed
	}

	now := svc.nowFunc()
	t := Topic{
		ID:           orig.ID,
		Title:        ut.Title,
		Description:  ut.Description,
		Step:         ut.Step,
		Status:       stored,
		DueDate:      orig.DueDate,
		DoneAt:       orig.DoneAt,
		OwnerID:      orig.OwnerID,
		DepartmentID: ut.DepartmentID,
		CreatedAt:    orig.CreatedAt,
		UpdatedAt:    now.UTC(),
	}
	if ut.DueDate != "" {
		t.DueDate = status.ParseDueDate(ut.DueDate)
	}
	if ut.OwnerID > 0 {
		t.OwnerID = null.IntFrom(ut.OwnerID)
	}

	t, err := svc.repo.UpdateTopic(t)
	if err != nil {
		return View{}, err
	}
	svc.audit.Record(actorID, audit.ActionUpdated, audit.KindTopic, t.ID, t.Title)
	if ut.OwnerID > 0 && ut.OwnerID != orig.OwnerID.Int {
		svc.notifyAssignment(t.OwnerID, t.Title, t.ID, t.DueDate)
	}
	return newView(t, now, svc.rules.Rules()), nil
}

// MarkDone completes a topic. Done is absorbing: dates no longer affect the
// classification and the call is idempotent.
func (svc *Service) MarkDone(actorID int, id string) (View, error) {
	t, err := svc.repo.GetTopicByID(id)
	if err != nil {
		return View{}, err
	}
	now := svc.nowFunc()
	if !t.Done() {
		t.Status = status.StatusDone
		t.DoneAt = null.TimeFrom(now.UTC())
		t.UpdatedAt = now.UTC()
		if t, err = svc.repo.UpdateTopic(t); err != nil {
			return View{}, err
		}
		svc.audit.Record(actorID, audit.ActionMarkedDone, audit.KindTopic, t.ID, t.Title)
	}
	return newView(t, now, svc.rules.Rules()), nil
}

func (svc *Service) Delete(actorID int, ids ...string) error {
	if err := svc.repo.DeleteTopicsByID(ids...); err != nil {
		return err
	}
	for _, id := range ids {
		svc.audit.Record(actorID, audit.ActionDeleted, audit.KindTopic, id, "")
	}
	return nil
}

// Measures

func (svc *Service) AddMeasure(actorID int, topicID string, nm NewMeasure) (MeasureView, error) {
	t, err := svc.repo.GetTopicByID(topicID)
	if err != nil {
		return MeasureView{}, err
	}

	now := svc.nowFunc()
	stored, _ := status.Parse(nm.Status)
	m := Measure{
		ID:        uuid.New().String(),
		TopicID:   t.ID,
		Title:     nm.Title,
		Status:    stored,
		DueDate:   status.ParseDueDate(nm.DueDate),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	if nm.AssigneeID > 0 {
		m.AssigneeID = null.IntFrom(nm.AssigneeID)
	}

	if m, err = svc.repo.CreateMeasure(m); err != nil {
		return MeasureView{}, err
	}
	svc.audit.Record(actorID, audit.ActionCreated, audit.KindMeasure, m.ID, m.Title)
	svc.notifyAssignment(m.AssigneeID, m.Title, m.TopicID, m.DueDate)
	return newMeasureView(m, now, svc.rules.Rules()), nil
}

func (svc *Service) GetMeasureByID(id string) (Measure, error) {
	return svc.repo.GetMeasureByID(id)
}

func (svc *Service) UpdateMeasure(actorID int, orig Measure, um UpdateMeasure) (MeasureView, error) {
	stored := orig.Status
	if um.Status != "" {
		parsed, _ := status.Parse(um.Status)
		if orig.Done() && !parsed.IsDone() {
			return MeasureView{}, core.NewValidationError(errMeasureDone, core.FieldError{Field: "status", Error: errMeasureDone.Error()})
		}
		stored = parsed
	}

	now := svc.nowFunc()
	m := Measure{
		ID:         orig.ID,
		TopicID:    orig.TopicID,
		Title:      um.Title,
		Status:     stored,
		DueDate:    orig.DueDate,
		DoneAt:     orig.DoneAt,
		AssigneeID: orig.AssigneeID,
		CreatedAt:  orig.CreatedAt,
		UpdatedAt:  now.UTC(),
	}
	if um.DueDate != "" {
		m.DueDate = status.ParseDueDate(um.DueDate)
	}
	if um.AssigneeID > 0 {
		m.AssigneeID = null.IntFrom(um.AssigneeID)
	}

	m, err := svc.repo.UpdateMeasure(m)
	if err != nil {
		return MeasureView{}, err
	}
	svc.audit.Record(actorID, audit.ActionUpdated, audit.KindMeasure, m.ID, m.Title)
	if um.AssigneeID > 0 && um.AssigneeID != orig.AssigneeID.Int {
		svc.notifyAssignment(m.AssigneeID, m.Title, m.TopicID, m.DueDate)
	}
	return newMeasureView(m, now, svc.rules.Rules()), nil
}

func (svc *Service) MarkMeasureDone(actorID int, id string) (MeasureView, error) {
	m, err := svc.repo.GetMeasureByID(id)
	if err != nil {
		return MeasureView{}, err
	}
	now := svc.nowFunc()
	if !m.Done() {
		m.Status = status.StatusDone
		m.DoneAt = null.TimeFrom(now.UTC())
		m.UpdatedAt = now.UTC()
		if m, err = svc.repo.UpdateMeasure(m); err != nil {
			return MeasureView{}, err
		}
		svc.audit.Record(actorID, audit.ActionMarkedDone, audit.KindMeasure, m.ID, m.Title)
	}
	return newMeasureView(m, now, svc.rules.Rules()), nil
}

func (svc *Service) DeleteMeasure(actorID int, id string) error {
	if err := svc.repo.DeleteMeasure(id); err != nil {
		return err
	}
	svc.audit.Record(actorID, audit.ActionDeleted, audit.KindMeasure, id, "")
	return nil
}

// notifyAssignment emails the owner/assignee of an item, if any.
func (svc *Service) notifyAssignment(userID null.Int, title, topicID string, due null.Time) {
	if !userID.Valid {
		return
	}
	usr, err := svc.users.GetByID(userID.Int)
	if err != nil || usr.Email == "" {
		return
	}

	data := struct {
		OwnerName string
		Title     string
		TopicID   string
		DueDate   string
	}{OwnerName: usr.Name, Title: title, TopicID: topicID}
	if due.Valid {
		data.DueDate = due.Time.Format("Jan 2, 2006")
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      fmt.Sprintf("New assignment: %s", title),
		TemplateName: "topic-assigned",
		TemplateData: data,
	})
}
