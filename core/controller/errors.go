package controller

import "github.com/pkg/errors"

// FallbackMessage is shown when a failure carries no backend message.
const FallbackMessage = "Something went wrong. Please try again."

var (
	// ErrNotAuthorized is returned, without any request issued, when the session is not valid.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrForbiddenRole is returned, without any request issued, when the user lacks the page's role.
	ErrForbiddenRole = errors.New("your role cannot access this page")
	// ErrNotConfirmed is returned when the operator declined a delete.
	ErrNotConfirmed = errors.New("action not confirmed")
	// ErrNoPage is returned when paging past the boundaries the server reported.
	ErrNoPage = errors.New("no such page")
	// ErrClosed is returned once the controller was torn down.
	ErrClosed = errors.New("controller closed")
)
