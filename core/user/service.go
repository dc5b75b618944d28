package user

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/api"
)

// backend endpoints
const (
	loginPath    = "/auth/login"
	refreshPath  = "/auth/refresh"
	mePath       = "/auth/me"
	passwordPath = "/auth/me/password"
	logoutPath   = "/auth/logout"
	usersPath    = "/users"
)

var ErrNotFound = errors.New("user not found")

// Service is the gateway of the authentication and user endpoints.
type Service struct {
	client    *api.Client
	users     *api.Resource[User]
	validator *core.Validator
}

func NewService(client *api.Client, validator *core.Validator) *Service {
	return &Service{
		client:    client,
		users:     api.NewResource[User](client, usersPath),
		validator: validator,
	}
}

// Users returns the gateway of the user directory.
func (svc *Service) Users() *api.Resource[User] {
	return svc.users
}

// Login exchanges credentials for a session. The request is anonymous.
func (svc *Service) Login(ctx context.Context, data LoginRequest) (LoginResult, error) {
	data.Clean()
	if err := svc.validator.Struct(data); err != nil {
		return LoginResult{}, err
	}
	res, err := api.Call[LoginResult](ctx, svc.client, api.Request{
		Method:    http.MethodPost,
		Path:      loginPath,
		Body:      data,
		Anonymous: true,
	})
	if err != nil {
		return LoginResult{}, err
	}
	if res.AccessToken == "" {
		return LoginResult{}, errors.Wrap(api.ErrMissingData, "login response has no access token")
	}
	return res, nil
}

// RefreshToken mints a new token pair out of `refreshToken`.
func (svc *Service) RefreshToken(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, errors.New("no refresh token")
	}
	return api.Call[TokenPair](ctx, svc.client, api.Request{
		Method:    http.MethodPost,
		Path:      refreshPath,
		Body:      map[string]string{"refreshToken": refreshToken},
		Anonymous: true,
	})
}

// Me reads the logged in User's own profile.
func (svc *Service) Me(ctx context.Context) (User, error) {
	return api.Call[User](ctx, svc.client, api.Request{Method: http.MethodGet, Path: mePath})
}

// FetchProfile reads the profile of the User `accessToken` belongs to.
func (svc *Service) FetchProfile(ctx context.Context, accessToken string) (User, error) {
	return api.Call[User](ctx, svc.client, api.Request{Method: http.MethodGet, Path: mePath, Token: accessToken})
}

func (svc *Service) Logout(ctx context.Context) error {
	_, err := svc.client.Do(ctx, api.Request{Method: http.MethodPost, Path: logoutPath}, nil)
	return err
}

func (svc *Service) UpdateProfile(ctx context.Context, data UpdateProfile) (User, error) {
	data.Clean()
	if err := svc.validator.Struct(data); err != nil {
		return User{}, err
	}
	return api.Call[User](ctx, svc.client, api.Request{Method: http.MethodPut, Path: mePath, Body: data})
}

func (svc *Service) ChangePassword(ctx context.Context, data ChangePassword) error {
	if err := svc.validator.Struct(data); err != nil {
		return err
	}
	_, err := svc.client.Do(ctx, api.Request{Method: http.MethodPut, Path: passwordPath, Body: data}, nil)
	return err
}

// GetUser returns the User `id` from the directory.
func (svc *Service) GetUser(ctx context.Context, id string) (User, error) {
	usr, err := svc.users.Get(ctx, id)
	if api.IsNotFound(err) {
		return User{}, ErrNotFound
	}
	return usr, err
}
