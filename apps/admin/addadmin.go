package main

import (
	"fmt"

	"github.com/kymoja/darasa/core"
	"github.com/kymoja/darasa/core/account"
	"github.com/kymoja/darasa/core/activity"
)

// addAdmin creates a verified admin account in the local store. The raw
// identifier is masked and hashed here; it is never persisted.
func (cli *commandLine) addAdmin(email, name, nric, pwd string) error {
	email = core.CleanString(email, true /* lower */)
	name = core.CleanString(name)
	nric = core.CleanString(nric)

	na := account.NewAccount{
		Email:      email,
		Role:       account.RoleAdmin,
		Name:       name,
		MaskedNRIC: account.Mask(nric),
		NRICHash:   account.HashIdentifier(nric),
		AdminNo:    account.NewAdminNo(),
	}

	acct, err := cli.backend.CreateAccount(na, pwd)
	if err != nil {
		return err
	}
	if err = cli.backend.ReserveIdentifierHash(na.NRICHash, acct.ID); err != nil {
		return err
	}
	// console-created admins skip the email challenge
	verified := true
	if _, err = cli.backend.UpdateProfile(acct.ID, account.ProfileUpdate{Verified: &verified}); err != nil {
		return err
	}
	// creation leaves a backend session behind; this is a console, not a login
	if err = cli.backend.SignOut(); err != nil {
		return err
	}

	cli.activity.Record("admin account created: "+email, "console", activity.KindSecurity)
	fmt.Printf("admin %s created; admin code: %s\n", email, acct.AdminNo[len(acct.AdminNo)-4:])
	return nil
}
