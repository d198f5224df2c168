package main

import (
	"time"

	"github.com/uzimahq/uzima/core"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(core.CleanString(uname, true /* lower */))
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = cli.usrRepo.UpdateUser(usr, nil)
	return err
}
