package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/shule/core/admin"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sqlx.DB
	admSvc   *admin.Service
	validate *validator.Validate
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createadmin -username USERNAME     - create a new admin account (deactivated; the password is prompted next)")
	fmt.Println("  activateadmin -username USERNAME   - activate an admin account")
	fmt.Println("  deactivateadmin -username USERNAME - deactivate an admin account")
	fmt.Println("  deleteadmin -username USERNAME     - delete an admin account")
	fmt.Println("  migrate COMMAND [args]             - run a database migration command")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createCmd := flag.NewFlagSet("createadmin", flag.ExitOnError)
	createUname := createCmd.String("username", "", "The admin's username. The password will be prompted next.")

	activateCmd := flag.NewFlagSet("activateadmin", flag.ExitOnError)
	activateUname := activateCmd.String("username", "", "The admin's username.")

	deactivateCmd := flag.NewFlagSet("deactivateadmin", flag.ExitOnError)
	deactivateUname := deactivateCmd.String("username", "", "The admin's username.")

	deleteCmd := flag.NewFlagSet("deleteadmin", flag.ExitOnError)
	deleteUname := deleteCmd.String("username", "", "The admin's username.")

	switch args[1] {
	case "createadmin":
		if err := createCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createUname == "" {
			createCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			createCmd.Usage()
			return errHelp
		}
		return cli.createAdmin(*createUname, string(pwd))
	case "activateadmin":
		if err := activateCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *activateUname == "" {
			activateCmd.Usage()
			return errHelp
		}
		return cli.setAdminActive(*activateUname, true)
	case "deactivateadmin":
		if err := deactivateCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *deactivateUname == "" {
			deactivateCmd.Usage()
			return errHelp
		}
		return cli.setAdminActive(*deactivateUname, false)
	case "deleteadmin":
		if err := deleteCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *deleteUname == "" {
			deleteCmd.Usage()
			return errHelp
		}
		return cli.deleteAdmin(*deleteUname)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
