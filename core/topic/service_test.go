package topic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uzimahq/uzima/core"
	"github.com/uzimahq/uzima/core/audit"
	"github.com/uzimahq/uzima/core/governance"
	"github.com/uzimahq/uzima/core/org"
	"github.com/uzimahq/uzima/core/status"
	"github.com/uzimahq/uzima/core/topic"
	"github.com/uzimahq/uzima/core/user"
	emailsvc "github.com/uzimahq/uzima/services/email"
	inmemdb "github.com/uzimahq/uzima/storage/database/inmem"
	testutil "github.com/uzimahq/uzima/tests"
)

type testEnv struct {
	svc       *topic.Service
	topicRepo topic.Repository
	userRepo  user.Repository
	orgRepo   org.Repository
	auditSvc  *audit.Service
	govSvc    *governance.Service
}

func setup(t *testing.T) testEnv {
	db := inmemdb.NewDB()
	topicRepo := inmemdb.NewTopicRepository(db)
	userRepo := inmemdb.NewUserRepository(db)
	orgRepo := inmemdb.NewOrgRepository(db)

	auditSvc := audit.NewService(inmemdb.NewAuditRepository(db), nil)
	govSvc, err := governance.NewService(inmemdb.NewGovernanceRepository(db), status.DefaultRules())
	require.NoError(t, err)

	mailSvc := emailsvc.NewConsoleServiceMock()
	emailsvc.ClearSentMessages()

	usrSvc := user.NewService(userRepo, mailSvc, auditSvc)
	orgSvc := org.NewService(orgRepo, auditSvc)
	svc := topic.NewService(topicRepo, govSvc, usrSvc, orgSvc, mailSvc, auditSvc)

	return testEnv{
		svc:       svc,
		topicRepo: topicRepo,
		userRepo:  userRepo,
		orgRepo:   orgRepo,
		auditSvc:  auditSvc,
		govSvc:    govSvc,
	}
}

func dueIn(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func TestService_Create_classification(t *testing.T) {
	env := setup(t)
	loc := testutil.CreateLocation(t, env.orgRepo, "HQ", "Kinshasa")
	dept := testutil.CreateDepartment(t, env.orgRepo, "Surgery", loc.ID)

	tests := []struct {
		name   string
		due    string
		stored string
		want   status.Status
	}{
		{name: "no due date", want: status.StatusOnTrack},
		{name: "far due date", due: dueIn(30), want: status.StatusOnTrack},
		{name: "due within threshold", due: dueIn(2), want: status.StatusDueSoon},
		{name: "past due date", due: dueIn(-1), want: status.StatusOverdue},
		{name: "manual severity kept when dates are fine", due: dueIn(30), stored: "due_soon", want: status.StatusDueSoon},
		{name: "dates override milder manual status", due: dueIn(-1), stored: "on_track", want: status.StatusOverdue},
		{name: "done ignores dates", due: dueIn(-10), stored: "done", want: status.StatusDone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := env.svc.Create(1, topic.NewTopic{
				Title:        "Hand hygiene audit",
				Status:       tt.stored,
				DueDate:      tt.due,
				DepartmentID: dept.ID,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.EffectiveStatus)
			assert.Equal(t, tt.want.Label(), v.StatusLabel)
			assert.Equal(t, topic.StepPlan, v.Step)
		})
	}
}

func TestService_Create_notifiesOwner(t *testing.T) {
	env := setup(t)
	loc := testutil.CreateLocation(t, env.orgRepo, "HQ", "Kinshasa")
	dept := testutil.CreateDepartment(t, env.orgRepo, "Surgery", loc.ID)
	owner := testutil.CreateUser(t, env.userRepo, "Awa", "awanana", "awa@test.cd", "", nil, true)

	_, err := env.svc.Create(1, topic.NewTopic{
		Title:        "Fall prevention",
		DueDate:      dueIn(5),
		OwnerID:      owner.ID,
		DepartmentID: dept.ID,
	})
	require.NoError(t, err)

	require.Len(t, emailsvc.SentMessages, 1)
	msg := emailsvc.SentMessages[0]
	assert.Equal(t, owner.Email, msg.To[0].Address)
	assert.Contains(t, msg.Subject, "Fall prevention")
}

func TestService_Query_effectiveStatusFilter(t *testing.T) {
	env := setup(t)
	loc := testutil.CreateLocation(t, env.orgRepo, "HQ", "Kinshasa")
	dept := testutil.CreateDepartment(t, env.orgRepo, "Surgery", loc.ID)

	mustCreate := func(title, due string) {
		_, err := env.svc.Create(1, topic.NewTopic{Title: title, DueDate: due, DepartmentID: dept.ID})
		require.NoError(t, err)
	}
	mustCreate("late", dueIn(-2))
	mustCreate("soon", dueIn(3))
	mustCreate("fine", dueIn(30))

	views, err := env.svc.Query(topic.QueryFilter{EffectiveStatus: "overdue"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "late", views[0].Title)

	views, err = env.svc.Query(topic.QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, views, 3)
}

func TestService_MarkDone(t *testing.T) {
	env := setup(t)
	loc := testutil.CreateLocation(t, env.orgRepo, "HQ", "Kinshasa")
	dept := testutil.CreateDepartment(t, env.orgRepo, "Surgery", loc.ID)

	v, err := env.svc.Create(1, topic.NewTopic{Title: "Medication errors", DueDate: dueIn(-5), DepartmentID: dept.ID})
	require.NoError(t, err)
	assert.Equal(t, status.StatusOverdue, v.EffectiveStatus)

	// completion absorbs the overdue classification
	v, err = env.svc.MarkDone(1, v.ID)
	require.NoError(t, err)
	assert.Equal(t, status.StatusDone, v.EffectiveStatus)
	assert.True(t, v.DoneAt.Valid)
	doneAt := v.DoneAt.Time

	// idempotent
	v, err = env.svc.MarkDone(1, v.ID)
	require.NoError(t, err)
	assert.Equal(t, status.StatusDone, v.EffectiveStatus)
	assert.Equal(t, doneAt, v.DoneAt.Time)

	entries, err := env.auditSvc.Filter(audit.QueryFilter{ObjectKind: audit.KindTopic})
	require.NoError(t, err)
	var markedDone int
	for _, entry := range entries {
		if entry.Action == audit.ActionMarkedDone {
			markedDone++
		}
	}
	assert.Equal(t, 1, markedDone)
}

func TestService_Update_rejectsReopening(t *testing.T) {
	env := setup(t)
	loc := testutil.CreateLocation(t, env.orgRepo, "HQ", "Kinshasa")
	dept := testutil.CreateDepartment(t, env.orgRepo, "Surgery", loc.ID)

	v, err := env.svc.Create(1, topic.NewTopic{Title: "Readmissions", DepartmentID: dept.ID})
	require.NoError(t, err)
	v, err = env.svc.MarkDone(1, v.ID)
	require.NoError(t, err)

	orig, err := env.svc.GetByID(v.ID)
	require.NoError(t, err)

	_, err = env.svc.Update(1, orig.Topic, topic.UpdateTopic{Title: "Readmissions", Step: orig.Step, Status: "on_track", DepartmentID: dept.ID})
	require.Error(t, err)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)

	// restating done is fine
	_, err = env.svc.Update(1, orig.Topic, topic.UpdateTopic{Title: "Readmissions", Step: orig.Step, Status: "done", DepartmentID: dept.ID})
	require.NoError(t, err)
}

func TestService_Update_keepsUnsetFields(t *testing.T) {
	env := setup(t)
	loc := testutil.CreateLocation(t, env.orgRepo, "HQ", "Kinshasa")
	dept := testutil.CreateDepartment(t, env.orgRepo, "Surgery", loc.ID)

	v, err := env.svc.Create(1, topic.NewTopic{Title: "Sepsis bundle", DueDate: dueIn(10), DepartmentID: dept.ID})
	require.NoError(t, err)

	data := topic.UpdateTopic{Step: topic.StepDo}
	require.NoError(t, data.Validate(v.Topic, env.svc))

	updated, err := env.svc.Update(1, v.Topic, data)
	require.NoError(t, err)
	assert.Equal(t, "Sepsis bundle", updated.Title)
	assert.Equal(t, topic.StepDo, updated.Step)
	assert.Equal(t, v.DueDate, updated.DueDate)
}

func TestService_Measures(t *testing.T) {
	env := setup(t)
	loc := testutil.CreateLocation(t, env.orgRepo, "HQ", "Kinshasa")
	dept := testutil.CreateDepartment(t, env.orgRepo, "Surgery", loc.ID)
	assignee := testutil.CreateUser(t, env.userRepo, "Ken", "kenshiro", "ken@test.cd", "", nil, true)

	v, err := env.svc.Create(1, topic.NewTopic{Title: "Hand hygiene", DepartmentID: dept.ID})
	require.NoError(t, err)

	emailsvc.ClearSentMessages()
	mv, err := env.svc.AddMeasure(1, v.ID, topic.NewMeasure{
		Title:      "Install dispensers",
		DueDate:    dueIn(-3),
		AssigneeID: assignee.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, status.StatusOverdue, mv.EffectiveStatus)
	require.Len(t, emailsvc.SentMessages, 1)

	// measure completion is independent of the topic
	mv, err = env.svc.MarkMeasureDone(assignee.ID, mv.ID)
	require.NoError(t, err)
	assert.Equal(t, status.StatusDone, mv.EffectiveStatus)

	tv, err := env.svc.GetByID(v.ID)
	require.NoError(t, err)
	assert.NotEqual(t, status.StatusDone, tv.EffectiveStatus)
	require.Len(t, tv.Measures, 1)
	assert.Equal(t, status.StatusDone, tv.Measures[0].EffectiveStatus)

	// reopening a done measure is rejected
	m, err := env.svc.GetMeasureByID(mv.ID)
	require.NoError(t, err)
	_, err = env.svc.UpdateMeasure(1, m, topic.UpdateMeasure{Title: m.Title, Status: "on_track"})
	require.Error(t, err)

	require.NoError(t, env.svc.DeleteMeasure(1, mv.ID))
	_, err = env.svc.GetMeasureByID(mv.ID)
	assert.Equal(t, topic.ErrMeasureNotFound, err)
}

func TestService_validation_namesUserField(t *testing.T) {
	env := setup(t)
	loc := testutil.CreateLocation(t, env.orgRepo, "HQ", "Kinshasa")
	dept := testutil.CreateDepartment(t, env.orgRepo, "Surgery", loc.ID)

	fieldOf := func(err error) string {
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		require.Len(t, vErr.Fields, 1)
		return vErr.Fields[0].Field
	}

	nt := topic.NewTopic{Title: "Triage times", DepartmentID: dept.ID, OwnerID: 999}
	assert.Equal(t, "owner_id", fieldOf(nt.Validate(env.svc)))

	nm := topic.NewMeasure{Title: "Extra triage nurse", AssigneeID: 999}
	assert.Equal(t, "assignee_id", fieldOf(nm.Validate(env.svc)))
}

func TestService_Delete_cascadesMeasures(t *testing.T) {
	env := setup(t)
	loc := testutil.CreateLocation(t, env.orgRepo, "HQ", "Kinshasa")
	dept := testutil.CreateDepartment(t, env.orgRepo, "Surgery", loc.ID)

	v, err := env.svc.Create(1, topic.NewTopic{Title: "Pressure ulcers", DepartmentID: dept.ID})
	require.NoError(t, err)
	mv, err := env.svc.AddMeasure(1, v.ID, topic.NewMeasure{Title: "Reposition schedule"})
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(1, v.ID))
	_, err = env.svc.GetByID(v.ID)
	assert.Equal(t, topic.ErrTopicNotFound, err)
	_, err = env.svc.GetMeasureByID(mv.ID)
	assert.Equal(t, topic.ErrMeasureNotFound, err)
}

func TestService_thresholdChangeAppliesImmediately(t *testing.T) {
	env := setup(t)
	loc := testutil.CreateLocation(t, env.orgRepo, "HQ", "Kinshasa")
	dept := testutil.CreateDepartment(t, env.orgRepo, "Surgery", loc.ID)

	v, err := env.svc.Create(1, topic.NewTopic{Title: "Discharge delays", DueDate: dueIn(10), DepartmentID: dept.ID})
	require.NoError(t, err)
	assert.Equal(t, status.StatusOnTrack, v.EffectiveStatus)

	_, err = env.govSvc.SetThresholdDays(14)
	require.NoError(t, err)

	v, err = env.svc.GetByID(v.ID)
	require.NoError(t, err)
	assert.Equal(t, status.StatusDueSoon, v.EffectiveStatus)
}
