package main

import (
	"time"

	"github.com/uzimahq/uzima/core"
	"github.com/uzimahq/uzima/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	now := time.Now().UTC()
	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(uname)
	if err == user.ErrNotFound && email != "" {
		usr, err = cli.usrRepo.GetUserByUsernameOrEmail(email)
	}
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Username:  uname,
			Email:     email,
			IsActive:  true,
			CreatedAt: now,
		}
		if isAdmin {
			usr.Roles = user.AllRoles
		}
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		usr.UpdatedAt = now
		_, err = cli.usrRepo.CreateUser(usr)
		return err
	}

	if isAdmin {
		usr.Roles = user.AllRoles
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = now
	isActive := true
	_, err = cli.usrRepo.UpdateUser(usr, &isActive)
	return err
}
