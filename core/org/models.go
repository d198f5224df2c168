package org

import (
	"time"

	"github.com/uzimahq/uzima/core"
)

// Location is one hospital site of the network.
type Location struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Department belongs to a Location; topics are tracked per department.
type Department struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	LocationID int       `json:"location_id"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// NewLocation contains information needed to create a new Location.
type NewLocation struct {
	Name string `json:"name" validate:"required"`
	City string `json:"city"`
}

func (nl *NewLocation) Validate(svc *Service) error {
	nl.Name = core.CleanString(nl.Name)
	nl.City = core.CleanString(nl.City)

	if err := core.Validate.Struct(nl); err != nil {
		return err
	}
	return svc.checkLocationUniqueness(nl.Name)
}

// UpdateLocation defines what information may be provided to modify an existing Location.
type UpdateLocation struct {
	Name string `json:"name"`
	City string `json:"city"`
}

func (ul *UpdateLocation) Validate(orig Location, svc *Service) error {
	if name := core.CleanString(ul.Name); name != "" {
		ul.Name = name
	} else {
		ul.Name = orig.Name
	}
	if city := core.CleanString(ul.City); city != "" {
		ul.City = city
	} else {
		ul.City = orig.City
	}

	if err := core.Validate.Struct(ul); err != nil {
		return err
	}
	return svc.checkLocationUniqueness(ul.Name, orig)
}

// NewDepartment contains information needed to create a new Department.
type NewDepartment struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	LocationID int    `json:"location_id" validate:"required"`
}

func (nd *NewDepartment) Validate(svc *Service) error {
	nd.Name = core.CleanString(nd.Name)
	nd.Email = core.CleanString(nd.Email, true /* lower */)

	if err := core.Validate.Struct(nd); err != nil {
		return err
	}
	if _, err := svc.GetLocationByID(nd.LocationID); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "location_id", Error: err.Error()})
	}
	return svc.checkDepartmentUniqueness(nd.Name, nd.LocationID)
}

// UpdateDepartment defines what information may be provided to modify an existing Department.
type UpdateDepartment struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
}

func (ud *UpdateDepartment) Validate(orig Department, svc *Service) error {
	if name := core.CleanString(ud.Name); name != "" {
		ud.Name = name
	} else {
		ud.Name = orig.Name
	}
	if email := core.CleanString(ud.Email, true /* lower */); email != "" {
		ud.Email = email
	} else {
		ud.Email = orig.Email
	}

	if err := core.Validate.Struct(ud); err != nil {
		return err
	}
	return svc.checkDepartmentUniqueness(ud.Name, orig.LocationID, orig)
}
