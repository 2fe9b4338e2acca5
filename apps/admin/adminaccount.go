package main

import (
	"context"
	"fmt"

	"github.com/trezcool/shule/core/admin"
)

// createAdmin creates a deactivated admin account; it must be activated
// with `activateadmin` before it can be used.
func (cli *commandLine) createAdmin(uname, pwd string) error {
	data := admin.NewAdmin{Username: uname, Password: pwd}
	if err := data.Validate(cli.validate); err != nil {
		return err
	}
	adm, err := cli.admSvc.Create(context.Background(), data)
	if err != nil {
		return err
	}
	fmt.Printf("admin %q created (deactivated)\n", adm.Username)
	return nil
}

func (cli *commandLine) setAdminActive(uname string, active bool) error {
	adm, err := cli.admSvc.SetActive(context.Background(), uname, active)
	if err != nil {
		return err
	}
	state := "deactivated"
	if adm.IsActive {
		state = "activated"
	}
	fmt.Printf("admin %q %s\n", adm.Username, state)
	return nil
}

func (cli *commandLine) deleteAdmin(uname string) error {
	if err := cli.admSvc.Delete(context.Background(), uname); err != nil {
		return err
	}
	fmt.Printf("admin %q deleted\n", uname)
	return nil
}
