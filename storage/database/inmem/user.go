package inmemdb

import (
	"sort"
	"strings"
	"time"

	"github.com/uzimahq/uzima/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.table))
	for _, u := range repo.db.table {
		users = append(users, *u)
	}
	return users
}

func isExcluded(usr user.User, excluded []user.User, exclLen int) bool {
	if exclLen == 0 {
		return false
	}
	idx := sort.Search(exclLen, func(i int) bool { return excluded[i].ID >= usr.ID })
	return idx < exclLen && excluded[idx].ID == usr.ID
}

func (repo *userRepository) CheckUsernameUniqueness(username, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	exclUsrsLen := len(excludedUsers)
	if exclUsrsLen > 1 {
		sort.Slice(excludedUsers, func(i, j int) bool { return excludedUsers[i].ID < excludedUsers[j].ID })
	}

	for _, usr := range repo.query() {
		if isExcluded(usr, excludedUsers, exclUsrsLen) {
			continue
		}
		if username != "" && usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	usr.ID = repo.db.pkCount
	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *userRepository) GetUserByID(id int) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsername(username string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.query() {
		if usr.Username == username {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.query() {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsernameOrEmail(username string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.query() {
		if (usr.Username == username) || (usr.Email == username) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) FilterUsers(filter user.QueryFilter) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := repo.query()

	// users with search keyword matching any of Name, Username or Email ?
	if filter.Search != "" {
		var filtered []user.User
		search := strings.ToLower(filter.Search)
		for _, usr := range users {
			if strings.Contains(strings.ToLower(usr.Name), search) ||
				strings.Contains(strings.ToLower(usr.Username), search) ||
				strings.Contains(strings.ToLower(usr.Email), search) {
				filtered = append(filtered, usr)
			}
		}
		users = filtered
	}

	if len(filter.Roles) > 0 {
		var filtered []user.User
		for _, usr := range users {
			for _, role := range filter.Roles {
				if usr.RoleStartsWith(role) {
					filtered = append(filtered, usr)
					break
				}
			}
		}
		users = filtered
	}

	if filter.IsActive != nil {
		var filtered []user.User
		for _, usr := range users {
			if usr.IsActive == *filter.IsActive {
				filtered = append(filtered, usr)
			}
		}
		users = filtered
	}

	if filter.DepartmentID > 0 {
		var filtered []user.User
		for _, usr := range users {
			if usr.DepartmentID.Valid && usr.DepartmentID.Int == filter.DepartmentID {
				filtered = append(filtered, usr)
			}
		}
		users = filtered
	}

	if !filter.CreatedFrom.IsZero() {
		var filtered []user.User
		for _, usr := range users {
			if !usr.CreatedAt.Before(filter.CreatedFrom) {
				filtered = append(filtered, usr)
			}
		}
		users = filtered
	}
	if !filter.CreatedTo.IsZero() {
		var filtered []user.User
		for _, usr := range users {
			if !usr.CreatedAt.After(filter.CreatedTo) {
				filtered = append(filtered, usr)
			}
		}
		users = filtered
	}

	return users, nil
}

func (repo *userRepository) UpdateUser(usr user.User, isActive *bool) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if usr.Name != "" {
		orig.Name = usr.Name
	}
	if usr.Username != "" {
		orig.Username = usr.Username
	}
	if usr.Email != "" {
		orig.Email = usr.Email
	}
	if usr.Roles != nil {
		orig.Roles = usr.Roles
	}
	if usr.DepartmentID.Valid {
		orig.DepartmentID = usr.DepartmentID
	}
	if usr.PasswordHash != nil {
		orig.PasswordHash = usr.PasswordHash
	}
	if isActive != nil {
		orig.IsActive = *isActive
	}
	orig.UpdatedAt = usr.UpdatedAt
	return *orig, nil
}

func (repo *userRepository) UpdateLastLogin(id int, t time.Time) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	orig.LastLogin = t
	return *orig, nil
}

func (repo *userRepository) DeleteUsersByID(ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
