package controller

import (
	"context"

	"github.com/trezcool/masomo-admin/core/api"
	"github.com/trezcool/masomo-admin/core/session"
)

type (
	// Notifier shows transient toasts.
	Notifier interface {
		Success(msg string)
		Error(msg string)
	}

	// Navigator moves the operator to another view.
	Navigator interface {
		Redirect(path string)
	}

	// Confirmer asks the operator to confirm a destructive action.
	Confirmer interface {
		Confirm(ctx context.Context, prompt string) (bool, error)
	}

	// SessionStore is what page controllers need of the session.
	SessionStore interface {
		Snapshot() session.Session
		IsValidAuth() bool
		HasRole(role string) bool
		ClearAuth()
	}

	// Gateway is the data-access port of one backend collection; *api.Resource implements it.
	Gateway[T any] interface {
		Name() string
		List(ctx context.Context, q api.Query) (api.Page[T], error)
		Get(ctx context.Context, id string) (T, error)
		Create(ctx context.Context, payload interface{}) (T, error)
		Update(ctx context.Context, id string, payload interface{}) (T, error)
		Delete(ctx context.Context, id string) error
	}
)

var (
	_ SessionStore      = (*session.Store)(nil)
	_ Gateway[struct{}] = (*api.Resource[struct{}])(nil)
)

// AutoConfirm confirms everything, e.g. for `-yes` flags.
type AutoConfirm struct{}

func (AutoConfirm) Confirm(context.Context, string) (bool, error) { return true, nil }
