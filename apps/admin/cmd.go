package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/kymoja/darasa/core/activity"
	"github.com/kymoja/darasa/storage/localstore"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	backend  *localstore.Backend
	activity *activity.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  addadmin -email EMAIL -name NAME -nric NRIC - create an admin account")
	fmt.Println("  resetcredential -email EMAIL - reset an account's password")
	fmt.Println("  clearlog - wipe the activity log")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addAdminCmd := flag.NewFlagSet("addadmin", flag.ExitOnError)
	addAdminEmail := addAdminCmd.String("email", "", "The admin's email. The password will be prompted next.")
	addAdminName := addAdminCmd.String("name", "", "The admin's full name.")
	addAdminNRIC := addAdminCmd.String("nric", "", "The admin's national identifier; only a masked form is stored.")

	resetCredCmd := flag.NewFlagSet("resetcredential", flag.ExitOnError)
	resetCredEmail := resetCredCmd.String("email", "", "The account's email. The password will be prompted next.")

	switch args[1] {
	case "addadmin":
		if err := addAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addAdminEmail == "" || *addAdminName == "" || *addAdminNRIC == "" {
			addAdminCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addAdminCmd.Usage()
			return errHelp
		}
		return cli.addAdmin(*addAdminEmail, *addAdminName, *addAdminNRIC, pwd)

	case "resetcredential":
		if err := resetCredCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetCredEmail == "" {
			resetCredCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetCredCmd.Usage()
			return errHelp
		}
		return cli.resetCredential(*resetCredEmail, pwd)

	case "clearlog":
		return cli.clearLog()

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
