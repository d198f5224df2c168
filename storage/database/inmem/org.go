package inmemdb

import (
	"strings"

	"github.com/uzimahq/uzima/core/org"
)

type orgRepository struct {
	locations   *locationTable
	departments *departmentTable
	topics      *topicTable
}

var _ org.Repository = (*orgRepository)(nil) // interface compliance check

func NewOrgRepository(db *DB) org.Repository {
	return &orgRepository{locations: db.location, departments: db.department, topics: db.topic}
}

// Locations

func (repo *orgRepository) CheckLocationNameUniqueness(name string, excluded ...org.Location) error {
	repo.locations.RLock()
	defer repo.locations.RUnlock()

loop:
	for _, loc := range repo.locations.table {
		for _, excl := range excluded {
			if loc.ID == excl.ID {
				continue loop
			}
		}
		if strings.EqualFold(loc.Name, name) {
			return org.ErrLocationExists
		}
	}
	return nil
}

func (repo *orgRepository) CreateLocation(loc org.Location) (org.Location, error) {
	repo.locations.Lock()
	defer repo.locations.Unlock()

	repo.locations.pkCount++
	loc.ID = repo.locations.pkCount
	repo.locations.table[loc.ID] = &loc
	return loc, nil
}

func (repo *orgRepository) QueryAllLocations() ([]org.Location, error) {
	repo.locations.RLock()
	defer repo.locations.RUnlock()

	locations := make([]org.Location, 0, len(repo.locations.table))
	for _, loc := range repo.locations.table {
		locations = append(locations, *loc)
	}
	return locations, nil
}

func (repo *orgRepository) GetLocationByID(id int) (org.Location, error) {
	repo.locations.RLock()
	defer repo.locations.RUnlock()

	if loc, ok := repo.locations.table[id]; ok {
		return *loc, nil
	}
	return org.Location{}, org.ErrLocationNotFound
}

func (repo *orgRepository) UpdateLocation(loc org.Location) (org.Location, error) {
	repo.locations.Lock()
	defer repo.locations.Unlock()

	orig, ok := repo.locations.table[loc.ID]
	if !ok {
		return org.Location{}, org.ErrLocationNotFound
	}
	if loc.Name != "" {
		orig.Name = loc.Name
	}
	if loc.City != "" {
		orig.City = loc.City
	}
	orig.UpdatedAt = loc.UpdatedAt
	return *orig, nil
}

func (repo *orgRepository) DeleteLocation(id int) error {
	repo.locations.Lock()
	defer repo.locations.Unlock()
	repo.departments.RLock()
	defer repo.departments.RUnlock()

	for _, dept := range repo.departments.table {
		if dept.LocationID == id {
			return org.ErrLocationInUse
		}
	}
	delete(repo.locations.table, id)
	return nil
}

// Departments

func (repo *orgRepository) CheckDepartmentNameUniqueness(name string, locationID int, excluded ...org.Department) error {
	repo.departments.RLock()
	defer repo.departments.RUnlock()

loop:
	for _, dept := range repo.departments.table {
		for _, excl := range excluded {
			if dept.ID == excl.ID {
				continue loop
			}
		}
		if strings.EqualFold(dept.Name, name) && dept.LocationID == locationID {
			return org.ErrDepartmentExists
		}
	}
	return nil
}

func (repo *orgRepository) CreateDepartment(dept org.Department) (org.Department, error) {
	repo.departments.Lock()
	defer repo.departments.Unlock()

	repo.departments.pkCount++
	dept.ID = repo.departments.pkCount
	repo.departments.table[dept.ID] = &dept
	return dept, nil
}

func (repo *orgRepository) QueryAllDepartments() ([]org.Department, error) {
	repo.departments.RLock()
	defer repo.departments.RUnlock()

	departments := make([]org.Department, 0, len(repo.departments.table))
	for _, dept := range repo.departments.table {
		departments = append(departments, *dept)
	}
	return departments, nil
}

func (repo *orgRepository) QueryDepartmentsByLocation(locationID int) ([]org.Department, error) {
	repo.departments.RLock()
	defer repo.departments.RUnlock()

	var departments []org.Department
	for _, dept := range repo.departments.table {
		if dept.LocationID == locationID {
			departments = append(departments, *dept)
		}
	}
	return departments, nil
}

func (repo *orgRepository) GetDepartmentByID(id int) (org.Department, error) {
	repo.departments.RLock()
	defer repo.departments.RUnlock()

	if dept, ok := repo.departments.table[id]; ok {
		return *dept, nil
	}
	return org.Department{}, org.ErrDepartmentNotFound
}

func (repo *orgRepository) UpdateDepartment(dept org.Department) (org.Department, error) {
	repo.departments.Lock()
	defer repo.departments.Unlock()

	orig, ok := repo.departments.table[dept.ID]
	if !ok {
		return org.Department{}, org.ErrDepartmentNotFound
	}
	if dept.Name != "" {
		orig.Name = dept.Name
	}
	if dept.Email != "" {
		orig.Email = dept.Email
	}
	orig.UpdatedAt = dept.UpdatedAt
	return *orig, nil
}

func (repo *orgRepository) DeleteDepartment(id int) error {
	repo.departments.Lock()
	defer repo.departments.Unlock()
	repo.topics.RLock()
	defer repo.topics.RUnlock()

	for _, t := range repo.topics.table {
		if t.DepartmentID == id {
			return org.ErrDepartmentInUse
		}
	}
	delete(repo.departments.table, id)
	return nil
}
