package main

import (
	"fmt"

	"github.com/kymoja/darasa/core"
	"github.com/kymoja/darasa/core/activity"
)

func (cli *commandLine) resetCredential(email, pwd string) error {
	email = core.CleanString(email, true /* lower */)

	if err := cli.backend.SetCredential(email, pwd); err != nil {
		return err
	}

	cli.activity.Record("credential reset from console: "+email, "console", activity.KindSecurity)
	fmt.Printf("credential reset for %s\n", email)
	return nil
}

func (cli *commandLine) clearLog() error {
	if err := cli.activity.Clear(); err != nil {
		return err
	}
	fmt.Println("activity log cleared")
	return nil
}
