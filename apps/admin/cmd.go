package main

import (
	"database/sql"
	"fmt"
	"io"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/nacos/core"
	"github.com/trezcool/nacos/core/user"
	"github.com/trezcool/nacos/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	migrateFunc      = database.Migrate
	rollbackFunc     = database.Rollback
	versionFunc      = database.Version
	createDBFunc     = database.CreateIfNotExist

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf    *core.Config
	db      *sql.DB
	usrRepo user.Repository
	usrSvc  user.Service
	out     io.Writer
}

type adminCLI struct {
	CreateDB      createDBCmd      `cmd:"" name:"createdb" help:"Create the app database & role if missing."`
	Migrate       migrateCmd       `cmd:"" help:"Apply or revert database migrations."`
	AddUser       addUserCmd       `cmd:"" name:"adduser" help:"Create a user, or update the one holding USERNAME or EMAIL. The password is prompted."`
	ResetPassword resetPasswordCmd `cmd:"" name:"resetpassword" help:"Reset a user's password. The password is prompted."`
}

type createDBCmd struct{}

func (createDBCmd) Run(cli *commandLine) error {
	if err := createDBFunc(cli.conf); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "database ready")
	return nil
}

type migrateCmd struct {
	Direction string `arg:"" optional:"" enum:"up,down,version" default:"up" help:"One of: up, down, version."`
	Steps     int    `short:"n" default:"1" help:"Number of migrations to revert (down only)."`
}

func (cmd migrateCmd) Run(cli *commandLine) error {
	return cli.migrate(cmd.Direction, cmd.Steps)
}

type addUserCmd struct {
	Username string `required:"" help:"Login username."`
	Email    string `help:"Email address."`
	Name     string `help:"Display name. Defaults to the username."`
	Admin    bool   `help:"Grant every admin role."`
}

func (cmd addUserCmd) Run(cli *commandLine) error {
	pwd, err := cli.promptPassword()
	if err != nil {
		return err
	}
	return cli.addUser(cmd.Name, cmd.Username, cmd.Email, pwd, cmd.Admin)
}

type resetPasswordCmd struct {
	Username string `required:"" help:"The user's username or email."`
}

func (cmd resetPasswordCmd) Run(cli *commandLine) error {
	pwd, err := cli.promptPassword()
	if err != nil {
		return err
	}
	return cli.resetPassword(cmd.Username, pwd)
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	if len(pwd) == 0 {
		return "", errHelp
	}
	return string(pwd), nil
}

// run parses args (program name first) and runs the selected command.
func (cli *commandLine) run(args []string) error {
	var (
		root   adminCLI
		exited bool
	)
	parser, err := kong.New(&root,
		kong.Name("nacos-admin"),
		kong.Description("NACOS Complaint System administration."),
		kong.Writers(cli.out, cli.out),
		kong.Exit(func(int) { exited = true }),
	)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		_, _ = parser.Parse([]string{"--help"})
		return errHelp
	}

	kctx, err := parser.Parse(args[1:])
	if exited {
		return errHelp
	}
	if err != nil {
		return err
	}
	return kctx.Run(cli)
}
