package main

import (
	"context"
	"fmt"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/user"
)

// addUser creates the account, or updates the password of an existing one. The admin role is set either way.
func (cli *commandLine) addUser(name, email, pwd string, isAdmin bool) error {
	if cli.users == nil {
		return errNoDirectory
	}
	ctx := context.Background()
	nu := user.NewUser{Name: name, Email: email, Password: pwd, IsAdmin: isAdmin}
	if err := nu.Validate(cli.validate); err != nil {
		return cli.describe(err)
	}

	usr, err := cli.users.GetByEmail(ctx, nu.Email)
	switch {
	case err == user.ErrNotFound:
		if usr, err = cli.users.Create(ctx, nu); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "created %s (%s)\n", usr.Email, usr.ID)
	case err != nil:
		return err
	default:
		if err = cli.users.UpdatePassword(ctx, usr.ID, nu.Password); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "updated %s (%s)\n", usr.Email, usr.ID)
	}
	return cli.users.SetAdmin(ctx, usr.ID, nu.IsAdmin)
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	if cli.users == nil {
		return errNoDirectory
	}
	ctx := context.Background()
	if err := user.ValidatePassword(cli.validate, pwd); err != nil {
		return cli.describe(err)
	}
	usr, err := cli.users.GetByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	return cli.users.UpdatePassword(ctx, usr.ID, pwd)
}

func (cli *commandLine) devToken(id, name, email string, isAdmin bool) error {
	if cli.tokens == nil {
		return errNoTokens
	}
	usr := user.User{
		ID:    core.CleanString(id),
		Name:  core.CleanString(name),
		Email: core.CleanString(email, true /* lower */),
		Roles: []string{user.RoleStudent},
	}
	if isAdmin {
		usr.Roles = append(usr.Roles, user.RoleAdmin)
	}
	token, err := cli.tokens.Issue(usr)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, token)
	return nil
}
