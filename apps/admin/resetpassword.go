package main

import (
	"github.com/mwalimu/darasa/core"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	uname = core.CleanString(uname, true /* lower */)
	return cli.acctSvc.SetPassword(uname, pwd)
}
