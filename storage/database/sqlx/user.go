// Package sqlxrepos implements the domain repositories on PostgreSQL via sqlx.
package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/uzimahq/uzima/core/user"
)

type userRow struct {
	ID           int            `db:"id"`
	Name         string         `db:"name"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	DepartmentID null.Int       `db:"department_id"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func (row userRow) toUser() user.User {
	usr := user.User{
		ID:           row.ID,
		Name:         row.Name,
		Username:     row.Username,
		Email:        row.Email,
		IsActive:     row.IsActive,
		Roles:        row.Roles,
		DepartmentID: row.DepartmentID,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.LastLogin.Valid {
		usr.LastLogin = row.LastLogin.Time
	}
	return usr
}

func toUsers(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users
}

const userColumns = `id, name, username, email, is_active, roles, password_hash, department_id, created_at, updated_at, last_login`

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(username, email string, excludedUsers ...user.User) error {
	exclIDs := make([]int, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		exclIDs = append(exclIDs, usr.ID)
	}

	var clash struct {
		Username bool `db:"username_clash"`
		Email    bool `db:"email_clash"`
	}
	err := repo.db.Get(&clash, `
		SELECT bool_or(username = $1 AND $1 <> '') AS username_clash,
		       bool_or(email = $2 AND $2 <> '')    AS email_clash
		FROM "user"
		WHERE NOT (id = ANY ($3))`,
		username, email, pq.Array(exclIDs),
	)
	if err != nil {
		return err
	}
	if clash.Username {
		return user.ErrUsernameExists
	}
	if clash.Email {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	err := repo.db.Get(&usr.ID, `
		INSERT INTO "user" (name, username, email, is_active, roles, password_hash, department_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		usr.Name, usr.Username, usr.Email, usr.IsActive, pq.Array(usr.Roles),
		usr.PasswordHash, usr.DepartmentID, usr.CreatedAt, usr.UpdatedAt,
	)
	return usr, err
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	var rows []userRow
	if err := repo.db.Select(&rows, `SELECT `+userColumns+` FROM "user"`); err != nil {
		return nil, err
	}
	return toUsers(rows), nil
}

func (repo *userRepository) getBy(where string, args ...interface{}) (user.User, error) {
	var row userRow
	err := repo.db.Get(&row, `SELECT `+userColumns+` FROM "user" WHERE `+where, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUserByID(id int) (user.User, error) {
	return repo.getBy(`id = $1`, id)
}

func (repo *userRepository) GetUserByUsername(username string) (user.User, error) {
	return repo.getBy(`username = $1`, username)
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	return repo.getBy(`email = $1`, email)
}

func (repo *userRepository) GetUserByUsernameOrEmail(username string) (user.User, error) {
	return repo.getBy(`username = $1 OR email = $1`, username)
}

func (repo *userRepository) FilterUsers(filter user.QueryFilter) ([]user.User, error) {
	query := `SELECT ` + userColumns + ` FROM "user" WHERE true`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		query += ` AND (name ILIKE ` + p + ` OR username ILIKE ` + p + ` OR email ILIKE ` + p + `)`
	}
	if len(filter.Roles) > 0 {
		patterns := make([]string, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			patterns = append(patterns, role+"%")
		}
		query += ` AND EXISTS (SELECT 1 FROM unnest(roles) AS r WHERE r LIKE ANY (` + arg(pq.Array(patterns)) + `))`
	}
	if filter.IsActive != nil {
		query += ` AND is_active = ` + arg(*filter.IsActive)
	}
	if filter.DepartmentID > 0 {
		query += ` AND department_id = ` + arg(filter.DepartmentID)
	}
	if !filter.CreatedFrom.IsZero() {
		query += ` AND created_at >= ` + arg(filter.CreatedFrom)
	}
	if !filter.CreatedTo.IsZero() {
		query += ` AND created_at <= ` + arg(filter.CreatedTo)
	}

	var rows []userRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	return toUsers(rows), nil
}

func (repo *userRepository) UpdateUser(usr user.User, isActive *bool) (user.User, error) {
	var row userRow
	err := repo.db.Get(&row, `
		UPDATE "user"
		SET name          = COALESCE(NULLIF($2, ''), name),
		    username      = COALESCE(NULLIF($3, ''), username),
		    email         = COALESCE(NULLIF($4, ''), email),
		    roles         = COALESCE($5, roles),
		    department_id = COALESCE($6, department_id),
		    password_hash = COALESCE($7, password_hash),
		    is_active     = COALESCE($8, is_active),
		    updated_at    = $9
		WHERE id = $1
		RETURNING `+userColumns,
		usr.ID, usr.Name, usr.Username, usr.Email, rolesOrNil(usr.Roles),
		usr.DepartmentID, usr.PasswordHash, boolOrNil(isActive), usr.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return row.toUser(), nil
}

func (repo *userRepository) UpdateLastLogin(id int, t time.Time) (user.User, error) {
	var row userRow
	err := repo.db.Get(&row, `
		UPDATE "user" SET last_login = $2 WHERE id = $1
		RETURNING `+userColumns,
		id, t,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return row.toUser(), nil
}

func (repo *userRepository) DeleteUsersByID(ids ...int) error {
	_, err := repo.db.Exec(`DELETE FROM "user" WHERE id = ANY ($1)`, pq.Array(ids))
	return err
}

func rolesOrNil(roles []string) interface{} {
	if roles == nil {
		return nil
	}
	return pq.Array(roles)
}

func boolOrNil(b *bool) interface{} {
	if b == nil {
		return nil
	}
	return *b
}
