package main

import (
	"github.com/mwalimu/darasa/core"
	"github.com/mwalimu/darasa/core/account"
)

// addUser updates or creates an account.Account
func (cli *commandLine) addUser(uname, email, role, pwd string) error {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if _, err := cli.acctSvc.GetByUsername(uname); err != nil {
		if err != account.ErrNotFound {
			return err
		}
		_, err = cli.acctSvc.Register(account.NewAccount{
			Username:        uname,
			Email:           email,
			Role:            role,
			Password:        pwd,
			PasswordConfirm: pwd,
		})
		return err
	}
	if err := cli.acctSvc.SetPassword(uname, pwd); err != nil {
		return err
	}
	return cli.acctSvc.SetActive(uname, true)
}
