package controller

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	logsvc "github.com/trezcool/masomo-admin/services/logger"
	"github.com/trezcool/masomo-admin/tests"
)

func TestGuard_Unauthorized(t *testing.T) {
	store, storage := testutil.NewSession(t, teacher())
	nav := &testutil.Navigator{}
	g := NewGuard(store, nav, logsvc.NewRecordingLogger(), "")
	var teardowns int
	g.OnTeardown(func() { teardowns++ })

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Unauthorized()
		}()
	}
	wg.Wait()

	assert.False(t, store.IsValidAuth())
	assert.Equal(t, 0, storage.Len())
	assert.Equal(t, []string{DefaultSignInPath}, nav.Redirects())
	assert.Equal(t, 1, teardowns)

	// a new session torn down redirects again
	store.SetAuth(*teacher(), "tok456")
	assert.True(t, g.Unauthorized())
	assert.Equal(t, []string{DefaultSignInPath, DefaultSignInPath}, nav.Redirects())
}

func TestGuard_AnonymousDoesNotRedirect(t *testing.T) {
	store, _ := testutil.NewSession(t, nil)
	nav := &testutil.Navigator{}
	g := NewGuard(store, nav, logsvc.NewRecordingLogger(), "/login")

	assert.False(t, g.Unauthorized())
	assert.Empty(t, nav.Redirects())
	assert.Equal(t, "/login", g.SignInPath())
}
