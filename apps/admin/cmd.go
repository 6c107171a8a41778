package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/kozi/core"
	"github.com/trezcool/kozi/core/staff"
	"github.com/trezcool/kozi/storage/database"
	"github.com/trezcool/kozi/storage/database/gormdb"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	createDBFunc     = database.CreateIfNotExist
	migrateFunc      = migrate
	seedFunc         = seed
	openRepoFunc     = openRepo

	errHelp = errors.New("help provided")
)

func migrate(conf *core.Config) error {
	db, err := database.Open(conf)
	if err != nil {
		return err
	}
	return database.Migrate(db)
}

func openRepo(conf *core.Config) (staff.Repository, error) {
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	return gormdb.NewStaffRepository(db), nil
}

type commandLine struct {
	conf *core.Config
	repo staff.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createdb - create the application database and user if missing")
	fmt.Println("  migrate - bring the database schema up to date")
	fmt.Println("  seed - populate a fresh database with a demo dataset")
	fmt.Println("  addmanager -email EMAIL -first FIRSTNAME -last LASTNAME - add or update a manager account")
	fmt.Println("  resetpassword -email EMAIL - reset a staff account's password")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addManagerCmd := flag.NewFlagSet("addmanager", flag.ExitOnError)
	addManagerEmail := addManagerCmd.String("email", "", "The manager's email. The password will be prompted next.")
	addManagerFirst := addManagerCmd.String("first", "", "The manager's first name.")
	addManagerLast := addManagerCmd.String("last", "", "The manager's last name.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The account's email. The password will be prompted next.")

	switch args[1] {
	case "createdb":
		return createDBFunc(cli.conf)
	case "migrate":
		return migrateFunc(cli.conf)
	case "seed":
		return seedFunc(cli.conf)
	case "addmanager":
		if err := addManagerCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addManagerEmail == "" || *addManagerFirst == "" || *addManagerLast == "" {
			addManagerCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addManagerCmd.Usage()
			return errHelp
		}
		return cli.addManager(*addManagerEmail, *addManagerFirst, *addManagerLast, pwd)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
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

func (cli *commandLine) getRepo() (staff.Repository, error) {
	if cli.repo != nil {
		return cli.repo, nil
	}
	repo, err := openRepoFunc(cli.conf)
	if err != nil {
		return nil, err
	}
	cli.repo = repo
	return repo, nil
}
