package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core/api"
	"github.com/trezcool/masomo-admin/core/controller"
	"github.com/trezcool/masomo-admin/core/user"
)

var errNoDashboardAccess = errors.New("your role cannot use the admin dashboard")

func (cli *commandLine) login(ctx context.Context, login, pwd string) error {
	res, err := cli.usrSvc.Login(ctx, user.LoginRequest{Username: login, Password: pwd})
	if err != nil {
		msg := api.Message(err, "Could not sign in")
		cli.store.SetError(msg)
		cli.notifier.Error(msg)
		return err
	}
	if !hasAnyRole(res.User, user.DashboardRoles) {
		cli.store.SetError(errNoDashboardAccess.Error())
		return errNoDashboardAccess
	}
	cli.store.SetAuth(res.User, res.AccessToken, res.RefreshToken)
	cli.cache.Clear()
	cli.logger.Info("signed in", res.User)
	cli.notifier.Success(fmt.Sprintf("Signed in as %s (%s)", res.User.DisplayName(), res.User.Role))
	return nil
}

func (cli *commandLine) logout(ctx context.Context) error {
	if !cli.store.IsValidAuth() {
		fmt.Fprintln(cli.out, "Not signed in.")
		return nil
	}
	// the local session ends even when the server call fails
	if err := cli.usrSvc.Logout(ctx); err != nil && !api.IsUnauthorized(err) {
		cli.logger.Warn("logging out", err)
	}
	cli.store.ClearAuth()
	cli.cache.Clear()
	cli.notifier.Success("Signed out")
	return nil
}

// refresh rotates the session's tokens. A rejected refresh token ends the session through the Guard.
func (cli *commandLine) refresh(ctx context.Context) error {
	if !cli.store.IsValidAuth() {
		return controller.ErrNotAuthorized
	}
	pair, err := cli.usrSvc.RefreshToken(ctx, cli.store.Snapshot().RefreshToken)
	if err != nil {
		cli.notifier.Error(api.Message(err, "Could not refresh the session"))
		return err
	}
	if !cli.store.SetTokens(pair.AccessToken, pair.RefreshToken, true) {
		return errors.New("session tokens were not replaced")
	}
	cli.logger.Info("session tokens rotated")
	cli.notifier.Success("Session refreshed")
	return nil
}

func (cli *commandLine) whoami(ctx context.Context, refresh bool) error {
	if !cli.store.IsValidAuth() {
		return controller.ErrNotAuthorized
	}
	if refresh {
		if err := cli.store.RefreshUserData(ctx); err != nil {
			return err
		}
	}
	usr := cli.store.User()
	if usr == nil {
		return controller.ErrNotAuthorized
	}
	fmt.Fprintf(cli.out, "%s (@%s)\n", usr.Name, usr.Username)
	fmt.Fprintf(cli.out, "  role:  %s\n", usr.Role)
	fmt.Fprintf(cli.out, "  email: %s\n", usr.Email)
	if !usr.LastLogin.IsZero() {
		fmt.Fprintf(cli.out, "  last login: %s\n", usr.LastLogin.Local().Format(timeLayout))
	}
	return nil
}

func hasAnyRole(usr user.User, roles []string) bool {
	for _, role := range roles {
		if usr.HasRole(role) {
			return true
		}
	}
	return false
}
