package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/notification"
	"github.com/trezcool/edusite/core/user"
	"github.com/trezcool/edusite/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword       // mockable
	migrateFunc      = database.RunMigrations // mockable

	errHelp        = errors.New("help provided")
	errNoDatabase  = errors.New("migrate requires the postgres store backend")
	errNoDirectory = errors.New("account management requires the firestore store backend")
	errNoTokens    = errors.New("dev tokens are only issued with the memory or postgres store backends")
)

type tokenIssuer interface {
	Issue(usr user.User) (string, error)
}

type commandLine struct {
	db         *sql.DB        // postgres only
	users      user.Directory // firestore only
	tokens     tokenIssuer    // memory and postgres only
	notifier   *notification.Service
	validate   *validator.Validate
	translator ut.Translator
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                        - run a goose command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL -name NAME [-admin]      - create or update an account")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL                    - reset an account's password")
	fmt.Fprintln(cli.out, "  notify -student ID -title TITLE -message MSG  - push a notification to a student")
	fmt.Fprintln(cli.out, "  devtoken -id ID [-name NAME] [-email EMAIL] [-admin] - print a locally signed ID token")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserCmd.SetOutput(cli.out)
	addUserEmail := addUserCmd.String("email", "", "The account's email. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The account's display name.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant the admin role.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordCmd.SetOutput(cli.out)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The account's email. The password will be prompted next.")

	notifyCmd := flag.NewFlagSet("notify", flag.ContinueOnError)
	notifyCmd.SetOutput(cli.out)
	notifyStudent := notifyCmd.String("student", "", "The student's exam registration ID.")
	notifyTitle := notifyCmd.String("title", "", "The notification title.")
	notifyMessage := notifyCmd.String("message", "", "The notification message.")

	devTokenCmd := flag.NewFlagSet("devtoken", flag.ContinueOnError)
	devTokenCmd.SetOutput(cli.out)
	devTokenID := devTokenCmd.String("id", "", "The user ID the token stands for.")
	devTokenName := devTokenCmd.String("name", "", "The user's display name.")
	devTokenEmail := devTokenCmd.String("email", "", "The user's email.")
	devTokenAdmin := devTokenCmd.Bool("admin", false, "Grant the admin role.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addUserEmail == "" || *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserEmail, pwd, *addUserAdmin)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)

	case "notify":
		if err := notifyCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.notify(notification.Request{StudentID: *notifyStudent, Title: *notifyTitle, Message: *notifyMessage})

	case "devtoken":
		if err := devTokenCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if core.CleanString(*devTokenID) == "" {
			devTokenCmd.Usage()
			return errHelp
		}
		return cli.devToken(*devTokenID, *devTokenName, *devTokenEmail, *devTokenAdmin)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(pwd), "\r\n"), nil
}

// describe renders validation failures as "field: message" lines.
func (cli *commandLine) describe(err error) error {
	issues := core.ValidationIssues(err, cli.translator)
	if issues == nil {
		return err
	}
	lines := make([]string, 0, len(issues))
	for field, msg := range issues {
		if field == "" {
			lines = append(lines, msg)
			continue
		}
		lines = append(lines, field+": "+msg)
	}
	sort.Strings(lines)
	return errors.New(strings.Join(lines, "\n"))
}
