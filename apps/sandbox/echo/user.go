package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/activity"
	"github.com/trezcool/masomo-admin/core/user"
	"github.com/trezcool/masomo-admin/storage/database/inmem"
)

var (
	errUsernameTaken   = core.FieldError{Field: "username", Error: "username already taken"}
	errEmailTaken      = core.FieldError{Field: "email", Error: "email already taken"}
	errWrongPassword   = core.FieldError{Field: "currentPassword", Error: "current password is incorrect"}
	errNoRefreshToken  = echo.NewHTTPError(http.StatusBadRequest, "refresh token is required")
	errRefreshNotValid = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired refresh token")
)

type authApi struct {
	db        *inmemdb.DB
	auth      *authenticator
	validator *core.Validator
}

func registerAuthAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps, auth *authenticator) {
	api := authApi{db: deps.DB, auth: auth, validator: deps.Validator}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/login", api.login)
	ag.POST("/refresh", api.refresh)

	// authed endpoints
	ag.GET("/me", api.me, authed)
	ag.PUT("/me", api.updateMe, authed)
	ag.PUT("/me/password", api.changePassword, authed)
	ag.POST("/logout", api.logout, authed)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (api *authApi) login(ctx echo.Context) error {
	var data user.LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	data.Clean()
	if err := api.validator.Struct(data); err != nil {
		return err
	}

	acc, err := authenticate(api.db, data.Username, data.Password)
	if err != nil {
		return err
	}
	acc, err = api.db.Accounts.Update(acc.ID, func(a *inmemdb.Account) error {
		a.LastLogin = inmemdb.NowFunc()
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "setting lastLogin")
	}
	pair, err := api.auth.tokenPair(acc.User)
	if err != nil {
		return errors.Wrap(err, "generating tokens")
	}
	api.db.Log(acc.User, activity.ActionLogin, "auth", acc.ID, "logged in", ctx.RealIP())

	return respondOK(ctx, user.LoginResult{
		User:         acc.User,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "Login successful")
}

func (api *authApi) refresh(ctx echo.Context) error {
	var data refreshRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to refreshRequest")
	}
	if data.RefreshToken == "" {
		return errNoRefreshToken
	}

	claims, err := api.auth.parse(data.RefreshToken)
	if err != nil || claims.TokenType != tokenTypeRefresh {
		return errRefreshNotValid
	}
	acc, err := api.db.Accounts.Get(claims.Subject)
	if err != nil {
		return errRefreshNotValid
	}
	if !acc.IsActive {
		return errAccountDeactivated
	}

	// refresh tokens are single use
	api.auth.revoke(*claims)
	pair, err := api.auth.tokenPair(acc.User)
	if err != nil {
		return errors.Wrap(err, "generating tokens")
	}
	return respondOK(ctx, pair)
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return respondOK(ctx, usr)
}

func (api *authApi) updateMe(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	var data user.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	data.Clean()
	if err := api.validator.Struct(data); err != nil {
		return err
	}

	var taken []core.FieldError
	for _, other := range api.db.Users(func(u user.User) bool { return u.ID != usr.ID }) {
		if data.Username != "" && other.Username == data.Username {
			taken = append(taken, errUsernameTaken)
		}
		if data.Email != "" && other.Email == data.Email {
			taken = append(taken, errEmailTaken)
		}
	}
	if len(taken) > 0 {
		return core.NewValidationError(nil, taken...)
	}

	acc, err := api.db.Accounts.Update(usr.ID, func(a *inmemdb.Account) error {
		a.User = user.Patch(a.User, data)
		a.UpdatedAt = inmemdb.NowFunc()
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	api.db.Log(acc.User, activity.ActionUpdate, "auth", acc.ID, "updated own profile", ctx.RealIP())
	return respondOK(ctx, acc.User, "Profile updated")
}

func (api *authApi) changePassword(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	var data user.ChangePassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	data = user.NewChangePassword(usr, data.CurrentPassword, data.Password, data.PasswordConfirm)
	if err := api.validator.Struct(data); err != nil {
		return err
	}

	_, err = api.db.Accounts.Update(usr.ID, func(a *inmemdb.Account) error {
		if a.CheckPassword(data.CurrentPassword) != nil {
			return core.NewValidationError(nil, errWrongPassword)
		}
		a.UpdatedAt = inmemdb.NowFunc()
		return a.SetPassword(data.Password)
	})
	if err != nil {
		return err
	}
	return respondOK(ctx, nil, "Password changed")
}

func (api *authApi) logout(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	api.auth.revoke(claims)
	api.db.Log(usr, activity.ActionLogout, "auth", usr.ID, "logged out", ctx.RealIP())
	return respondOK(ctx, nil, "Logout successful")
}

type userApi struct {
	db *inmemdb.DB
}

func registerUserAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := userApi{db: deps.DB}

	ug := g.Group("/users", authed, roleMiddleware(user.RoleAdmin))
	ug.GET("", api.query)
	ug.GET("/roles", api.queryRoles)
	ug.GET("/:id", api.retrieve)
}

var userSorts = sortFuncs[user.User]{
	"name":      byString(func(u user.User) string { return u.Name }),
	"username":  byString(func(u user.User) string { return u.Username }),
	"totalXp":   byInt(func(u user.User) int { return u.TotalXP }),
	"createdAt": byTime(func(u user.User) time.Time { return u.CreatedAt }),
}

func (api *userApi) query(ctx echo.Context) error {
	lp := bindList(ctx)
	role, classID := ctx.QueryParam("role"), ctx.QueryParam("classId")
	users := api.db.Users(func(u user.User) bool {
		return (role == "" || u.HasRole(role)) &&
			(classID == "" || u.ClassID == classID) &&
			contains(lp.Search, u.Name, u.Username, u.Email)
	})
	userSorts.apply(users, lp)
	page, p := paginate(users, lp)
	return respondPage(ctx, page, p)
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return respondOK(ctx, user.Roles)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	acc, err := api.db.Accounts.Get(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	return respondOK(ctx, acc.User)
}
