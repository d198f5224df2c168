package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/uzimahq/uzima/core/org"
	"github.com/uzimahq/uzima/core/status"
	"github.com/uzimahq/uzima/core/topic"
	"github.com/uzimahq/uzima/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateLocation(t *testing.T, repo org.Repository, name, city string) org.Location {
	now := time.Now().UTC()
	loc, err := repo.CreateLocation(org.Location{Name: name, City: city, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateLocation() failed: %v", err)
	}
	return loc
}

func CreateDepartment(t *testing.T, repo org.Repository, name string, locationID int) org.Department {
	now := time.Now().UTC()
	dept, err := repo.CreateDepartment(org.Department{Name: name, LocationID: locationID, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateDepartment() failed: %v", err)
	}
	return dept
}

func CreateTopic(
	t *testing.T,
	repo topic.Repository,
	title string,
	departmentID int,
	stored status.Status,
	due null.Time,
	ownerID ...int,
) topic.Topic {
	now := time.Now().UTC()
	tpc := topic.Topic{
		ID:           uuid.New().String(),
		Title:        title,
		Step:         topic.StepPlan,
		Status:       stored,
		DueDate:      due,
		DepartmentID: departmentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if len(ownerID) > 0 {
		tpc.OwnerID = null.IntFrom(ownerID[0])
	}
	tpc, err := repo.CreateTopic(tpc)
	if err != nil {
		t.Fatalf("CreateTopic() failed: %v", err)
	}
	return tpc
}

func CreateMeasure(
	t *testing.T,
	repo topic.Repository,
	topicID, title string,
	stored status.Status,
	due null.Time,
	assigneeID ...int,
) topic.Measure {
	now := time.Now().UTC()
	m := topic.Measure{
		ID:        uuid.New().String(),
		TopicID:   topicID,
		Title:     title,
		Status:    stored,
		DueDate:   due,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(assigneeID) > 0 {
		m.AssigneeID = null.IntFrom(assigneeID[0])
	}
	m, err := repo.CreateMeasure(m)
	if err != nil {
		t.Fatalf("CreateMeasure() failed: %v", err)
	}
	return m
}
