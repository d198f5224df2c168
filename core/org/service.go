// Package org manages the hospital network structure: locations and their
// departments.
package org

import (
	"errors"
	"strconv"
	"time"

	"github.com/uzimahq/uzima/core"
	"github.com/uzimahq/uzima/core/audit"
)

var (
	// errors
	ErrLocationNotFound   = errors.New("location not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrLocationExists     = errors.New("a location with this name already exists")
	ErrDepartmentExists   = errors.New("a department with this name already exists at this location")
	ErrLocationInUse      = errors.New("location still has departments")
	ErrDepartmentInUse    = errors.New("department still has topics")
)

type (
	Repository interface {
		CheckLocationNameUniqueness(name string, excluded ...Location) error
		CreateLocation(loc Location) (Location, error)
		QueryAllLocations() ([]Location, error)
		GetLocationByID(id int) (Location, error)
		UpdateLocation(loc Location) (Location, error)
		// DeleteLocation fails with ErrLocationInUse while departments reference the location.
		DeleteLocation(id int) error

		CheckDepartmentNameUniqueness(name string, locationID int, excluded ...Department) error
		CreateDepartment(dept Department) (Department, error)
		QueryAllDepartments() ([]Department, error)
		QueryDepartmentsByLocation(locationID int) ([]Department, error)
		GetDepartmentByID(id int) (Department, error)
		UpdateDepartment(dept Department) (Department, error)
		// DeleteDepartment fails with ErrDepartmentInUse while topics reference the department.
		DeleteDepartment(id int) error
	}

	Service struct {
		repo    Repository
		audit   audit.Recorder
		nowFunc func() time.Time // mockable
	}
)

func NewService(repo Repository, rec audit.Recorder) *Service {
	return &Service{repo: repo, audit: rec, nowFunc: time.Now}
}

func (svc *Service) checkLocationUniqueness(name string, excl ...Location) error {
	if err := svc.repo.CheckLocationNameUniqueness(name, excl...); err != nil {
		if err == ErrLocationExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) checkDepartmentUniqueness(name string, locationID int, excl ...Department) error {
	if err := svc.repo.CheckDepartmentNameUniqueness(name, locationID, excl...); err != nil {
		if err == ErrDepartmentExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Locations

func (svc *Service) CreateLocation(actorID int, nl NewLocation) (Location, error) {
	now := svc.nowFunc().UTC()
	loc, err := svc.repo.CreateLocation(Location{
		Name:      nl.Name,
		City:      nl.City,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Location{}, err
	}
	svc.audit.Record(actorID, audit.ActionCreated, audit.KindLocation, strconv.Itoa(loc.ID), loc.Name)
	return loc, nil
}

func (svc *Service) QueryAllLocations() ([]Location, error) {
	return svc.repo.QueryAllLocations()
}

func (svc *Service) GetLocationByID(id int) (Location, error) {
	return svc.repo.GetLocationByID(id)
}

func (svc *Service) UpdateLocation(actorID, id int, ul UpdateLocation) (Location, error) {
	loc, err := svc.repo.UpdateLocation(Location{
		ID:        id,
		Name:      ul.Name,
		City:      ul.City,
		UpdatedAt: svc.nowFunc().UTC(),
	})
	if err != nil {
		return Location{}, err
	}
	svc.audit.Record(actorID, audit.ActionUpdated, audit.KindLocation, strconv.Itoa(loc.ID), loc.Name)
	return loc, nil
}

func (svc *Service) DeleteLocation(actorID, id int) error {
	if err := svc.repo.DeleteLocation(id); err != nil {
		if err == ErrLocationInUse {
			return core.NewValidationError(err)
		}
		return err
	}
	svc.audit.Record(actorID, audit.ActionDeleted, audit.KindLocation, strconv.Itoa(id), "")
	return nil
}

// Departments

func (svc *Service) CreateDepartment(actorID int, nd NewDepartment) (Department, error) {
	now := svc.nowFunc().UTC()
	dept, err := svc.repo.CreateDepartment(Department{
		Name:       nd.Name,
		Email:      nd.Email,
		LocationID: nd.LocationID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return Department{}, err
	}
	svc.audit.Record(actorID, audit.ActionCreated, audit.KindDepartment, strconv.Itoa(dept.ID), dept.Name)
	return dept, nil
}

func (svc *Service) QueryAllDepartments() ([]Department, error) {
	return svc.repo.QueryAllDepartments()
}

func (svc *Service) QueryDepartmentsByLocation(locationID int) ([]Department, error) {
	return svc.repo.QueryDepartmentsByLocation(locationID)
}

func (svc *Service) GetDepartmentByID(id int) (Department, error) {
	return svc.repo.GetDepartmentByID(id)
}

func (svc *Service) UpdateDepartment(actorID, id int, ud UpdateDepartment) (Department, error) {
	dept, err := svc.repo.UpdateDepartment(Department{
		ID:        id,
		Name:      ud.Name,
		Email:     ud.Email,
		UpdatedAt: svc.nowFunc().UTC(),
	})
	if err != nil {
		return Department{}, err
	}
	svc.audit.Record(actorID, audit.ActionUpdated, audit.KindDepartment, strconv.Itoa(dept.ID), dept.Name)
	return dept, nil
}

func (svc *Service) DeleteDepartment(actorID, id int) error {
	if err := svc.repo.DeleteDepartment(id); err != nil {
		if err == ErrDepartmentInUse {
			return core.NewValidationError(err)
		}
		return err
	}
	svc.audit.Record(actorID, audit.ActionDeleted, audit.KindDepartment, strconv.Itoa(id), "")
	return nil
}
