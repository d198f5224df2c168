package org_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/uzimahq/uzima/core"
	"github.com/uzimahq/uzima/core/audit"
	"github.com/uzimahq/uzima/core/org"
	"github.com/uzimahq/uzima/core/topic"
	inmemdb "github.com/uzimahq/uzima/storage/database/inmem"
	testutil "github.com/uzimahq/uzima/tests"
)

type testEnv struct {
	svc       *org.Service
	orgRepo   org.Repository
	topicRepo topic.Repository
	auditSvc  *audit.Service
}

func setup(t *testing.T) testEnv {
	db := inmemdb.NewDB()
	orgRepo := inmemdb.NewOrgRepository(db)
	auditSvc := audit.NewService(inmemdb.NewAuditRepository(db), nil)
	return testEnv{
		svc:       org.NewService(orgRepo, auditSvc),
		orgRepo:   orgRepo,
		topicRepo: inmemdb.NewTopicRepository(db),
		auditSvc:  auditSvc,
	}
}

func TestService_Locations(t *testing.T) {
	env := setup(t)

	loc, err := env.svc.CreateLocation(1, org.NewLocation{Name: "Saint Luc", City: "Kinshasa"})
	require.NoError(t, err)
	assert.NotZero(t, loc.ID)

	// name uniqueness
	nl := org.NewLocation{Name: "saint luc"}
	err = nl.Validate(env.svc)
	require.Error(t, err)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "name", vErr.Fields[0].Field)

	// the original is excluded from its own uniqueness check
	ul := org.UpdateLocation{City: "Lubumbashi"}
	require.NoError(t, ul.Validate(loc, env.svc))
	updated, err := env.svc.UpdateLocation(1, loc.ID, ul)
	require.NoError(t, err)
	assert.Equal(t, "Saint Luc", updated.Name)
	assert.Equal(t, "Lubumbashi", updated.City)

	locs, err := env.svc.QueryAllLocations()
	require.NoError(t, err)
	assert.Len(t, locs, 1)

	_, err = env.svc.GetLocationByID(404)
	assert.Equal(t, org.ErrLocationNotFound, err)
}

func TestService_DeleteLocation_inUse(t *testing.T) {
	env := setup(t)

	loc, err := env.svc.CreateLocation(1, org.NewLocation{Name: "Saint Luc", City: "Kinshasa"})
	require.NoError(t, err)
	dept, err := env.svc.CreateDepartment(1, org.NewDepartment{Name: "Surgery", LocationID: loc.ID})
	require.NoError(t, err)

	err = env.svc.DeleteLocation(1, loc.ID)
	require.Error(t, err)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)

	require.NoError(t, env.svc.DeleteDepartment(1, dept.ID))
	require.NoError(t, env.svc.DeleteLocation(1, loc.ID))
	_, err = env.svc.GetLocationByID(loc.ID)
	assert.Equal(t, org.ErrLocationNotFound, err)
}

func TestService_Departments(t *testing.T) {
	env := setup(t)

	loc, err := env.svc.CreateLocation(1, org.NewLocation{Name: "Saint Luc", City: "Kinshasa"})
	require.NoError(t, err)
	other, err := env.svc.CreateLocation(1, org.NewLocation{Name: "Monkole", City: "Kinshasa"})
	require.NoError(t, err)

	dept, err := env.svc.CreateDepartment(1, org.NewDepartment{Name: "Surgery", Email: "surgery@test.cd", LocationID: loc.ID})
	require.NoError(t, err)

	// uniqueness is scoped per location
	nd := org.NewDepartment{Name: "Surgery", LocationID: loc.ID}
	require.Error(t, nd.Validate(env.svc))
	nd = org.NewDepartment{Name: "Surgery", LocationID: other.ID}
	require.NoError(t, nd.Validate(env.svc))

	// unknown location is rejected
	nd = org.NewDepartment{Name: "Cardiology", LocationID: 404}
	err = nd.Validate(env.svc)
	require.Error(t, err)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "location_id", vErr.Fields[0].Field)

	ud := org.UpdateDepartment{Email: "chirurgie@test.cd"}
	require.NoError(t, ud.Validate(dept, env.svc))
	updated, err := env.svc.UpdateDepartment(1, dept.ID, ud)
	require.NoError(t, err)
	assert.Equal(t, "Surgery", updated.Name)
	assert.Equal(t, "chirurgie@test.cd", updated.Email)

	depts, err := env.svc.QueryDepartmentsByLocation(loc.ID)
	require.NoError(t, err)
	require.Len(t, depts, 1)
	assert.Equal(t, dept.ID, depts[0].ID)

	depts, err = env.svc.QueryDepartmentsByLocation(other.ID)
	require.NoError(t, err)
	assert.Empty(t, depts)
}

func TestService_DeleteDepartment_inUse(t *testing.T) {
	env := setup(t)

	loc, err := env.svc.CreateLocation(1, org.NewLocation{Name: "Saint Luc", City: "Kinshasa"})
	require.NoError(t, err)
	dept, err := env.svc.CreateDepartment(1, org.NewDepartment{Name: "Surgery", LocationID: loc.ID})
	require.NoError(t, err)
	tpc := testutil.CreateTopic(t, env.topicRepo, "Hand hygiene", dept.ID, "", null.Time{})

	err = env.svc.DeleteDepartment(1, dept.ID)
	require.Error(t, err)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)

	require.NoError(t, env.topicRepo.DeleteTopicsByID(tpc.ID))
	require.NoError(t, env.svc.DeleteDepartment(1, dept.ID))
	_, err = env.svc.GetDepartmentByID(dept.ID)
	assert.Equal(t, org.ErrDepartmentNotFound, err)
}

func TestService_auditTrail(t *testing.T) {
	env := setup(t)

	loc, err := env.svc.CreateLocation(7, org.NewLocation{Name: "Saint Luc", City: "Kinshasa"})
	require.NoError(t, err)
	_, err = env.svc.CreateDepartment(7, org.NewDepartment{Name: "Surgery", LocationID: loc.ID})
	require.NoError(t, err)

	entries, err := env.auditSvc.Filter(audit.QueryFilter{ActorID: 7})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	kinds := []string{entries[0].ObjectKind, entries[1].ObjectKind}
	assert.ElementsMatch(t, []string{audit.KindLocation, audit.KindDepartment}, kinds)
}
