package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kymoja/darasa/core"
	"github.com/kymoja/darasa/core/account"
	"github.com/kymoja/darasa/core/activity"
	"github.com/kymoja/darasa/storage/localstore"
)

func setup(t *testing.T) *commandLine {
	t.Helper()

	db, err := localstore.Open(filepath.Join(t.TempDir(), "store.json"))
	if err != nil {
		t.Fatalf("localstore.Open(): %v", err)
	}
	cfg := &core.Config{
		AppName:                   "Darasa",
		Backend:                   core.BackendLocal,
		SecretKey:                 []byte("secret"),
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}

	return &commandLine{
		backend:  localstore.NewBackend(db, cfg, nil),
		activity: activity.NewService(localstore.NewActivityStore(db), nil),
	}
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func Test_commandLine_addAdmin(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"addadmin"}, wantErr: errHelp},
		{name: "flags but no password", args: []string{"addadmin", "-email", "boss@test.cm", "-name", "Boss", "-nric", "900101-14-5523"}, wantErr: errHelp},
		{name: "ok", args: []string{"addadmin", "-email", "boss@test.cm", "-name", "Boss", "-nric", "900101-14-5523"}, pwd: "S3cret#!"},
		{name: "duplicate email", args: []string{"addadmin", "-email", "boss@test.cm", "-name", "Boss", "-nric", "910101-14-5524"}, pwd: "S3cret#!", wantErr: account.ErrEmailExists},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) { return []byte(tt.pwd), nil }

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Fatalf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	admins, err := cli.backend.Accounts(account.RoleAdmin)
	if err != nil {
		t.Fatalf("Accounts(): %v", err)
	}
	if len(admins) != 1 {
		t.Fatalf("expected 1 admin, got %d", len(admins))
	}
	admin := admins[0]
	if !admin.Verified {
		t.Error("console-created admin must be verified")
	}
	if admin.MaskedNRIC != "90**********23" {
		t.Errorf("expected masked identifier, got %q", admin.MaskedNRIC)
	}
	if admin.AdminNo == "" {
		t.Error("expected an admin number")
	}
	// the console must not leave a backend session behind
	if ok, _ := cli.backend.ConfirmSession(admin.ID); ok {
		t.Error("expected no session after addadmin")
	}
}

func Test_commandLine_resetCredential(t *testing.T) {
	cli := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("S3cret#!"), nil }
	if err := cli.run([]string{"admin", "addadmin", "-email", "boss@test.cm", "-name", "Boss", "-nric", "900101-14-5523"}); err != nil {
		t.Fatalf("addadmin: %v", err)
	}

	tests := []cliTest{
		{name: "no args", args: []string{"resetcredential"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetcredential", "-email", "boss@test.cm"}, wantErr: errHelp},
		{name: "account not found", args: []string{"resetcredential", "-email", "ghost@test.cm"}, pwd: "NewS3cret#!", wantErr: account.ErrNotFound},
		{name: "ok", args: []string{"resetcredential", "-email", "boss@test.cm"}, pwd: "NewS3cret#!"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) { return []byte(tt.pwd), nil }

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Fatalf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if _, err := cli.backend.SignIn("boss@test.cm", "NewS3cret#!"); err != nil {
		t.Errorf("new credential must work, got %v", err)
	}
}

func Test_commandLine_clearLog(t *testing.T) {
	cli := setup(t)
	cli.activity.Record("something happened", "console", activity.KindInfo)

	if err := cli.run([]string{"admin", "clearlog"}); err != nil {
		t.Fatalf("cli.run() error = %v", err)
	}
	entries, err := cli.activity.Entries()
	if err != nil {
		t.Fatalf("Entries(): %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty log, got %d entries", len(entries))
	}
}
