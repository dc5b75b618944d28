package controller

import (
	"sync"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/api"
)

// DefaultSignInPath is the sign-in boundary a torn down session is sent to.
const DefaultSignInPath = "/sign-in"

// Guard is the single reaction to a 401: clear the session then redirect to the sign-in boundary.
// Concurrent controllers observing the same 401 trigger one redirect per session teardown.
type Guard struct {
	mu         sync.Mutex
	store      SessionStore
	nav        Navigator
	logger     core.Logger
	signInPath string
	teardowns  []func()
}

func NewGuard(store SessionStore, nav Navigator, logger core.Logger, signInPath string) *Guard {
	if signInPath == "" {
		signInPath = DefaultSignInPath
	}
	return &Guard{store: store, nav: nav, logger: logger, signInPath: signInPath}
}

// Attach makes every 401 `client` observes go through the Guard.
func (g *Guard) Attach(client *api.Client) {
	client.OnUnauthorized(func(err *api.Error) {
		g.Unauthorized()
	})
}

// OnTeardown registers `fn` to run whenever the Guard tears a session down, e.g. to drop cached data.
func (g *Guard) OnTeardown(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.teardowns = append(g.teardowns, fn)
}

func (g *Guard) SignInPath() string {
	return g.signInPath
}

// Unauthorized clears the session and redirects. It reports whether this call tore a session down;
// redundant calls only re-run the idempotent ClearAuth.
func (g *Guard) Unauthorized() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	sess := g.store.Snapshot()
	live := sess.IsAuthenticated || sess.AccessToken != "" || sess.User != nil
	g.store.ClearAuth()
	if !live {
		return false
	}

	g.logger.Info("session invalid, redirecting to sign-in", map[string]interface{}{"path": g.signInPath})
	for _, fn := range g.teardowns {
		fn()
	}
	g.nav.Redirect(g.signInPath)
	return true
}
