package echoapi

import (
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/user"
	"github.com/trezcool/masomo-admin/storage/database/inmem"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	contextTokenKey = "userToken"
	contextUserKey  = "user"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Username  string `json:"username,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"typ"`
}

type authenticator struct {
	issuer       string
	secret       []byte
	expDelta     time.Duration
	refreshDelta time.Duration
	nowFunc      func() time.Time

	revoked sync.Map // token id -> expiry
}

func newAuthenticator(conf *core.Config) *authenticator {
	return &authenticator{
		issuer:       conf.AppName,
		secret:       []byte(conf.Sandbox.SecretKey),
		expDelta:     conf.Sandbox.JWTExpirationDelta,
		refreshDelta: conf.Sandbox.JWTRefreshExpirationDelta,
		nowFunc:      time.Now,
	}
}

func (a *authenticator) claims(usr user.User, tokenType string) *Claims {
	now := a.nowFunc()
	delta := a.expDelta
	if tokenType == tokenTypeRefresh {
		delta = a.refreshDelta
	}
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    a.issuer,
			Subject:   usr.ID,
			Audience:  "Masomo Admin",
			ExpiresAt: now.Add(delta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username:  usr.Username,
		Role:      usr.Role,
		TokenType: tokenType,
	}
}

// generateToken generates a signed JWT token string representing the user Claims.
func (a *authenticator) generateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(a.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// tokenPair mints a new access and refresh token for `usr`.
func (a *authenticator) tokenPair(usr user.User) (user.TokenPair, error) {
	access, err := a.generateToken(a.claims(usr, tokenTypeAccess))
	if err != nil {
		return user.TokenPair{}, err
	}
	refresh, err := a.generateToken(a.claims(usr, tokenTypeRefresh))
	if err != nil {
		return user.TokenPair{}, err
	}
	return user.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (a *authenticator) parse(tokenString string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != middleware.AlgorithmHS256 {
			return nil, errors.Errorf("unexpected jwt signing method=%v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	if a.isRevoked(claims.Id) {
		return nil, errInvalidToken
	}
	return claims, nil
}

func (a *authenticator) revoke(claims Claims) {
	a.revoked.Store(claims.Id, claims.ExpiresAt)
	// forget revocations of tokens that expired on their own
	now := a.nowFunc().Unix()
	a.revoked.Range(func(key, value interface{}) bool {
		if exp, ok := value.(int64); ok && exp < now {
			a.revoked.Delete(key)
		}
		return true
	})
}

func (a *authenticator) isRevoked(id string) bool {
	_, ok := a.revoked.Load(id)
	return ok
}

// middleware authenticates a request with its bearer access token and loads its active account.
func (a *authenticator) middleware(db *inmemdb.DB) echo.MiddlewareFunc {
	jwtMW := middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    a.secret,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return jwtMW(func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.TokenType != tokenTypeAccess || a.isRevoked(claims.Id) {
				return errInvalidToken
			}
			acc, err := db.Accounts.Get(claims.Subject)
			if err != nil {
				return errInvalidToken
			}
			if !acc.IsActive {
				return errInvalidToken
			}
			ctx.Set(contextUserKey, acc.User)
			return next(ctx)
		})
	}
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUnauthorized
}

func authenticate(db *inmemdb.DB, login, pwd string) (inmemdb.Account, error) {
	acc, err := db.AccountByLogin(login)
	if err != nil {
		if err == inmemdb.ErrNotFound {
			return inmemdb.Account{}, errAuthenticationFailed
		}
		return inmemdb.Account{}, errors.Wrap(err, "finding account by username or email")
	}
	if err = acc.CheckPassword(pwd); err != nil {
		return inmemdb.Account{}, errAuthenticationFailed
	}
	if !acc.IsActive {
		return inmemdb.Account{}, errAccountDeactivated
	}
	return acc, nil
}
