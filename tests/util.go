package testutil

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	echoapi "github.com/trezcool/masomo-admin/apps/sandbox/echo"
	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/api"
	"github.com/trezcool/masomo-admin/core/quiz"
	"github.com/trezcool/masomo-admin/core/session"
	"github.com/trezcool/masomo-admin/core/user"
	logsvc "github.com/trezcool/masomo-admin/services/logger"
	"github.com/trezcool/masomo-admin/storage/database/inmem"
	"github.com/trezcool/masomo-admin/storage/memstore"
)

// Navigator records redirects.
type Navigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *Navigator) Redirect(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *Navigator) Redirects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

// Confirmer answers every prompt with Answer and records the prompts.
type Confirmer struct {
	Answer bool
	Err    error

	mu      sync.Mutex
	prompts []string
}

func (c *Confirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	return c.Answer, c.Err
}

func (c *Confirmer) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

// NewSession returns a session store over memory storage, logged in as `usr` when given.
func NewSession(t *testing.T, usr *user.User, token ...string) (*session.Store, *memstore.Store) {
	t.Helper()
	storage := memstore.New()
	store := session.New(storage, logsvc.NewRecordingLogger(), nil)
	if usr != nil {
		tok := "tok123"
		if len(token) > 0 {
			tok = token[0]
		}
		store.SetAuth(*usr, tok, "ref123")
	}
	return store, storage
}

// NewClient returns an API client for `baseURL` authenticated through `store`.
func NewClient(t *testing.T, baseURL string, store *session.Store) *api.Client {
	t.Helper()
	client, err := api.NewClient(api.Options{BaseURL: baseURL, Tokens: store})
	if err != nil {
		t.Fatalf("api.NewClient() failed: %v", err)
	}
	return client
}

func Teacher() user.User {
	return user.User{ID: "u1", Name: "Bu Sari", Username: "sari", Email: "sari@masomo.test", Role: user.RoleTeacher, IsActive: true}
}

func Admin() user.User {
	return user.User{ID: "u0", Name: "Admin", Username: "admin", Email: "admin@masomo.test", Role: user.RoleAdmin, IsActive: true}
}

// NewValidator returns the validator with every form validator registered, as the apps wire it.
func NewValidator() *core.Validator {
	v := core.NewValidator()
	user.InitValidators(v.Validate, v.Translator)
	quiz.InitValidators(v.Validate, v.Translator)
	return v
}

// SandboxPassword is the password of every seeded sandbox account.
const SandboxPassword = "Rahasia#123"

// NewSandbox serves a freshly seeded sandbox backend; the API lives under `<URL>/api`.
func NewSandbox(t *testing.T) (*httptest.Server, *inmemdb.DB) {
	t.Helper()
	inmemdb.HashCost = bcrypt.MinCost

	db := inmemdb.Open()
	if err := inmemdb.Seed(db, SandboxPassword); err != nil {
		t.Fatalf("inmemdb.Seed() failed: %v", err)
	}
	conf := &core.Config{
		TestMode: true,
		AppName:  "Masomo Admin",
		Sandbox: core.SandboxConfig{
			SecretKey:                 "test-secret",
			JWTExpirationDelta:        15 * time.Minute,
			JWTRefreshExpirationDelta: 24 * time.Hour,
		},
	}
	srv := httptest.NewServer(echoapi.NewServer(echoapi.ServerDeps{
		Conf:      conf,
		Logger:    logsvc.NewRecordingLogger(),
		Validator: NewValidator(),
		DB:        db,
	}))
	t.Cleanup(srv.Close)
	return srv, db
}
