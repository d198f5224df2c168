package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/uzimahq/uzima/core/org"
)

type locationRow struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	City      string    `db:"city"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row locationRow) toLocation() org.Location {
	return org.Location{ID: row.ID, Name: row.Name, City: row.City, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt}
}

type departmentRow struct {
	ID         int       `db:"id"`
	Name       string    `db:"name"`
	Email      string    `db:"email"`
	LocationID int       `db:"location_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (row departmentRow) toDepartment() org.Department {
	return org.Department{ID: row.ID, Name: row.Name, Email: row.Email, LocationID: row.LocationID, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt}
}

const (
	locationColumns   = `id, name, city, created_at, updated_at`
	departmentColumns = `id, name, email, location_id, created_at, updated_at`
)

type orgRepository struct {
	db *sqlx.DB
}

var _ org.Repository = (*orgRepository)(nil) // interface compliance check

func NewOrgRepository(db *sqlx.DB) org.Repository {
	return &orgRepository{db: db}
}

// Locations

func (repo *orgRepository) CheckLocationNameUniqueness(name string, excluded ...org.Location) error {
	exclIDs := make([]int, 0, len(excluded))
	for _, loc := range excluded {
		exclIDs = append(exclIDs, loc.ID)
	}

	var exists bool
	err := repo.db.Get(&exists, `
		SELECT EXISTS (SELECT 1 FROM "location" WHERE LOWER(name) = LOWER($1) AND NOT (id = ANY ($2)))`,
		name, pq.Array(exclIDs),
	)
	if err != nil {
		return err
	}
	if exists {
		return org.ErrLocationExists
	}
	return nil
}

func (repo *orgRepository) CreateLocation(loc org.Location) (org.Location, error) {
	err := repo.db.Get(&loc.ID, `
		INSERT INTO "location" (name, city, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		loc.Name, loc.City, loc.CreatedAt, loc.UpdatedAt,
	)
	return loc, err
}

func (repo *orgRepository) QueryAllLocations() ([]org.Location, error) {
	var rows []locationRow
	if err := repo.db.Select(&rows, `SELECT `+locationColumns+` FROM "location"`); err != nil {
		return nil, err
	}
	locations := make([]org.Location, 0, len(rows))
	for _, row := range rows {
		locations = append(locations, row.toLocation())
	}
	return locations, nil
}

func (repo *orgRepository) GetLocationByID(id int) (org.Location, error) {
	var row locationRow
	err := repo.db.Get(&row, `SELECT `+locationColumns+` FROM "location" WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return org.Location{}, org.ErrLocationNotFound
		}
		return org.Location{}, err
	}
	return row.toLocation(), nil
}

func (repo *orgRepository) UpdateLocation(loc org.Location) (org.Location, error) {
	var row locationRow
	err := repo.db.Get(&row, `
		UPDATE "location"
		SET name       = COALESCE(NULLIF($2, ''), name),
		    city       = COALESCE(NULLIF($3, ''), city),
		    updated_at = $4
		WHERE id = $1
		RETURNING `+locationColumns,
		loc.ID, loc.Name, loc.City, loc.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return org.Location{}, org.ErrLocationNotFound
		}
		return org.Location{}, err
	}
	return row.toLocation(), nil
}

func (repo *orgRepository) DeleteLocation(id int) error {
	var inUse bool
	err := repo.db.Get(&inUse, `SELECT EXISTS (SELECT 1 FROM department WHERE location_id = $1)`, id)
	if err != nil {
		return err
	}
	if inUse {
		return org.ErrLocationInUse
	}
	_, err = repo.db.Exec(`DELETE FROM "location" WHERE id = $1`, id)
	return err
}

// Departments

func (repo *orgRepository) CheckDepartmentNameUniqueness(name string, locationID int, excluded ...org.Department) error {
	exclIDs := make([]int, 0, len(excluded))
	for _, dept := range excluded {
		exclIDs = append(exclIDs, dept.ID)
	}

	var exists bool
	err := repo.db.Get(&exists, `
		SELECT EXISTS (SELECT 1 FROM department WHERE LOWER(name) = LOWER($1) AND location_id = $2 AND NOT (id = ANY ($3)))`,
		name, locationID, pq.Array(exclIDs),
	)
	if err != nil {
		return err
	}
	if exists {
		return org.ErrDepartmentExists
	}
	return nil
}

func (repo *orgRepository) CreateDepartment(dept org.Department) (org.Department, error) {
	err := repo.db.Get(&dept.ID, `
		INSERT INTO department (name, email, location_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		dept.Name, dept.Email, dept.LocationID, dept.CreatedAt, dept.UpdatedAt,
	)
	return dept, err
}

func (repo *orgRepository) QueryAllDepartments() ([]org.Department, error) {
	return repo.selectDepartments(`SELECT ` + departmentColumns + ` FROM department`)
}

func (repo *orgRepository) QueryDepartmentsByLocation(locationID int) ([]org.Department, error) {
	return repo.selectDepartments(`SELECT `+departmentColumns+` FROM department WHERE location_id = $1`, locationID)
}

func (repo *orgRepository) selectDepartments(query string, args ...interface{}) ([]org.Department, error) {
	var rows []departmentRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	departments := make([]org.Department, 0, len(rows))
	for _, row := range rows {
		departments = append(departments, row.toDepartment())
	}
	return departments, nil
}

func (repo *orgRepository) GetDepartmentByID(id int) (org.Department, error) {
	var row departmentRow
	err := repo.db.Get(&row, `SELECT `+departmentColumns+` FROM department WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return org.Department{}, org.ErrDepartmentNotFound
		}
		return org.Department{}, err
	}
	return row.toDepartment(), nil
}

func (repo *orgRepository) UpdateDepartment(dept org.Department) (org.Department, error) {
	var row departmentRow
	err := repo.db.Get(&row, `
		UPDATE department
		SET name       = COALESCE(NULLIF($2, ''), name),
		    email      = COALESCE(NULLIF($3, ''), email),
		    updated_at = $4
		WHERE id = $1
		RETURNING `+departmentColumns,
		dept.ID, dept.Name, dept.Email, dept.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return org.Department{}, org.ErrDepartmentNotFound
		}
		return org.Department{}, err
	}
	return row.toDepartment(), nil
}

func (repo *orgRepository) DeleteDepartment(id int) error {
	var inUse bool
	err := repo.db.Get(&inUse, `SELECT EXISTS (SELECT 1 FROM topic WHERE department_id = $1)`, id)
	if err != nil {
		return err
	}
	if inUse {
		return org.ErrDepartmentInUse
	}
	_, err = repo.db.Exec(`DELETE FROM department WHERE id = $1`, id)
	return err
}
