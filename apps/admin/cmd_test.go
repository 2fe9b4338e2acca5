package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/shule/core/admin"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
)

var admRepo admin.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()

	db := dummydb.Open()
	admRepo = dummydb.NewAdminRepository(db)

	// start CLI; the real DB handle is only touched by `migrate`, which
	// tests stub out
	return &commandLine{
		db:       &sqlx.DB{},
		admSvc:   admin.NewService(admRepo),
		validate: newValidator(),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "enrollment", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_createAdmin(t *testing.T) {
	cli := setup(t)

	type extra struct {
		pwd         string
		wantInvalid bool
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"createadmin"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"createadmin", "-username", "boss"}, wantErr: errHelp},
		{name: "username too short", args: []string{"createadmin", "-username", "ab"}, extra: extra{pwd: "Str0ngPa$$", wantInvalid: true}},
		{name: "username with forbidden characters", args: []string{"createadmin", "-username", "big boss!"}, extra: extra{pwd: "Str0ngPa$$", wantInvalid: true}},
		{name: "password too short", args: []string{"createadmin", "-username", "mngr"}, extra: extra{pwd: "short", wantInvalid: true}},
		{name: "create", args: []string{"createadmin", "-username", "boss"}, extra: extra{pwd: "Str0ngPa$$"}},
		{name: "duplicate username", args: []string{"createadmin", "-username", "boss"}, extra: extra{pwd: "Str0ngPa$$"}, wantErr: admin.ErrUsernameExists},
		{name: "username is lowered", args: []string{"createadmin", "-username", "BOSS"}, extra: extra{pwd: "Str0ngPa$$"}, wantErr: admin.ErrUsernameExists},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if ex, ok := tt.extra.(extra); ok && ex.wantInvalid {
				if _, ok := err.(validator.ValidationErrors); !ok {
					t.Fatalf("cli.run() error = %v, want a validation error", err)
				}
				if _, err := admRepo.GetAdminByUsername(context.Background(), tt.args[2]); err != admin.ErrNotFound {
					t.Errorf("rejected admin %q must not be stored", tt.args[2])
				}
				return
			}
			if err != tt.wantErr {
				t.Fatalf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.name == "create" {
				adm, err := admRepo.GetAdminByUsername(context.Background(), "boss")
				if err != nil {
					t.Fatalf("GetAdminByUsername(): %v", err)
				}
				if adm.IsActive {
					t.Error("new admin must start deactivated")
				}
				if err = adm.CheckPassword("Str0ngPa$$"); err != nil {
					t.Error("stored password hash does not match")
				}
			}
		})
	}
}

func Test_commandLine_setAdminActive(t *testing.T) {
	cli := setup(t)

	adm, err := cli.admSvc.Create(context.Background(), admin.NewAdmin{Username: "boss", Password: "Str0ngPa$$"})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	tests := []cliTest{
		{name: "activate: no args", args: []string{"activateadmin"}, wantErr: errHelp},
		{name: "activate: unknown username", args: []string{"activateadmin", "-username", "ghost"}, wantErr: admin.ErrNotFound},
		{name: "activate", args: []string{"activateadmin", "-username", "boss"}, extra: true},
		{name: "deactivate", args: []string{"deactivateadmin", "-username", "boss"}, extra: false},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != tt.wantErr {
				t.Fatalf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if wantActive, ok := tt.extra.(bool); ok {
				refreshed, err := admRepo.GetAdminByID(context.Background(), adm.ID)
				if err != nil {
					t.Fatalf("GetAdminByID(): %v", err)
				}
				if refreshed.IsActive != wantActive {
					t.Errorf("IsActive = %v; want %v", refreshed.IsActive, wantActive)
				}
			}
		})
	}
}

func Test_commandLine_deleteAdmin(t *testing.T) {
	cli := setup(t)

	if _, err := cli.admSvc.Create(context.Background(), admin.NewAdmin{Username: "boss", Password: "Str0ngPa$$"}); err != nil {
		t.Fatalf("Create(): %v", err)
	}

	tests := []cliTest{
		{name: "no args", args: []string{"deleteadmin"}, wantErr: errHelp},
		{name: "unknown username", args: []string{"deleteadmin", "-username", "ghost"}, wantErr: admin.ErrNotFound},
		{name: "delete", args: []string{"deleteadmin", "-username", "boss"}},
		{name: "already gone", args: []string{"deleteadmin", "-username", "boss"}, wantErr: admin.ErrNotFound},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Fatalf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
