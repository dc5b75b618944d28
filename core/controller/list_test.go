package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/api"
	"github.com/trezcool/masomo-admin/core/querycache"
	"github.com/trezcool/masomo-admin/core/session"
	"github.com/trezcool/masomo-admin/core/user"
	logsvc "github.com/trezcool/masomo-admin/services/logger"
	notifysvc "github.com/trezcool/masomo-admin/services/notify"
	"github.com/trezcool/masomo-admin/tests"
)

type quiz struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

type quizForm struct {
	Title    string `json:"title" validate:"required,notblank,max=20"`
	Semester string `json:"semester" validate:"omitempty,semester"`
}

func patchQuiz(q quiz, f quizForm) quiz {
	q.Title = f.Title
	return q
}

type fakeGateway struct {
	mu          sync.Mutex
	items       []quiz
	pagination  *api.Pagination
	queries     []api.Query
	listErr     error
	updateErr   error
	deleteErr   error
	createCalls int
	updateCalls int
	deleteCalls int
	onUpdate    func()
	onDelete    func()
}

func (g *fakeGateway) Name() string { return "quizzes" }

func (g *fakeGateway) List(_ context.Context, q api.Query) (api.Page[quiz], error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queries = append(g.queries, q)
	if g.listErr != nil {
		return api.Page[quiz]{}, g.listErr
	}
	p := api.Pagination{CurrentPage: q.Page, TotalPages: 1, TotalItems: len(g.items)}
	if g.pagination != nil {
		p = *g.pagination
	}
	return api.Page[quiz]{Items: append([]quiz{}, g.items...), Pagination: p}, nil
}

func (g *fakeGateway) Get(_ context.Context, id string) (quiz, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, q := range g.items {
		if q.ID == id {
			return q, nil
		}
	}
	return quiz{}, &api.Error{Status: http.StatusNotFound, Message: "quiz not found"}
}

func (g *fakeGateway) Create(_ context.Context, payload interface{}) (quiz, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	f := payload.(quizForm)
	q := quiz{ID: "new", Title: f.Title}
	g.items = append(g.items, q)
	return q, nil
}

func (g *fakeGateway) Update(_ context.Context, id string, payload interface{}) (quiz, error) {
	g.mu.Lock()
	g.updateCalls++
	onUpdate, updateErr := g.onUpdate, g.updateErr
	g.mu.Unlock()
	if onUpdate != nil {
		onUpdate()
	}
	if updateErr != nil {
		return quiz{}, updateErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	f := payload.(quizForm)
	for i := range g.items {
		if g.items[i].ID == id {
			g.items[i].Title = f.Title
			return g.items[i], nil
		}
	}
	return quiz{}, &api.Error{Status: http.StatusNotFound}
}

func (g *fakeGateway) Delete(_ context.Context, id string) error {
	g.mu.Lock()
	g.deleteCalls++
	onDelete, deleteErr := g.onDelete, g.deleteErr
	g.mu.Unlock()
	if onDelete != nil {
		onDelete()
	}
	if deleteErr != nil {
		return deleteErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.items {
		if g.items[i].ID == id {
			g.items = append(g.items[:i], g.items[i+1:]...)
			break
		}
	}
	return nil
}

func (g *fakeGateway) listCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queries)
}

func (g *fakeGateway) lastQuery() api.Query {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.queries[len(g.queries)-1]
}

type harness struct {
	lc        *ListController[quiz, quizForm]
	gw        *fakeGateway
	store     *session.Store
	cache     *querycache.Cache
	nav       *testutil.Navigator
	notifier  *notifysvc.Console
	confirmer *testutil.Confirmer
}

func setup(t *testing.T, usr *user.User, configure ...func(*Options[quiz, quizForm])) *harness {
	t.Helper()
	store, _ := testutil.NewSession(t, usr)
	h := &harness{
		gw:        &fakeGateway{items: []quiz{{ID: "q1", Title: "Old"}, {ID: "q2", Title: "Algebra"}}},
		store:     store,
		cache:     querycache.New(0),
		nav:       &testutil.Navigator{},
		notifier:  notifysvc.NewConsoleMock(),
		confirmer: &testutil.Confirmer{Answer: true},
	}
	logger := logsvc.NewRecordingLogger()
	opts := Options[quiz, quizForm]{
		Gateway:     h.gw,
		Cache:       h.cache,
		Session:     store,
		Guard:       NewGuard(store, h.nav, logger, ""),
		Notifier:    h.notifier,
		Navigator:   h.nav,
		Confirmer:   h.confirmer,
		Validator:   core.NewValidator(),
		Logger:      logger,
		ListPath:    "/quizzes",
		SearchDelay: 20 * time.Millisecond,
		ID:          func(q quiz) string { return q.ID },
		Patch:       patchQuiz,
		Messages:    Messages{Created: "Quiz created", Updated: "Quiz updated", Deleted: "Quiz deleted"},
	}
	for _, fn := range configure {
		fn(&opts)
	}
	h.lc = New(opts)
	t.Cleanup(h.lc.Close)
	return h
}

func teacher() *user.User {
	usr := testutil.Teacher()
	return &usr
}

func TestListController_LoadRequiresValidSession(t *testing.T) {
	h := setup(t, nil)

	err := h.lc.Load(context.Background())
	assert.Equal(t, ErrNotAuthorized, err)
	assert.Equal(t, 0, h.gw.listCalls(), "no request without a valid session")
	assert.Equal(t, ErrNotAuthorized, h.lc.State().Err)
}

func TestListController_RoleGated(t *testing.T) {
	h := setup(t, teacher(), func(o *Options[quiz, quizForm]) { o.Roles = []string{user.RoleAdmin} })

	err := h.lc.Load(context.Background())
	assert.Equal(t, ErrForbiddenRole, err)
	assert.Equal(t, 0, h.gw.listCalls())

	admin := testutil.Admin()
	h.store.SetAuth(admin, "tok-admin")
	require.NoError(t, h.lc.Load(context.Background()))
	assert.Equal(t, 1, h.gw.listCalls())
}

func TestListController_Load(t *testing.T) {
	h := setup(t, teacher())
	h.gw.pagination = &api.Pagination{CurrentPage: 1, TotalPages: 3, TotalItems: 25, HasNext: true}

	require.NoError(t, h.lc.Load(context.Background()))

	st := h.lc.State()
	assert.True(t, st.Loaded)
	assert.False(t, st.Loading)
	assert.Nil(t, st.Err)
	assert.Len(t, st.Page.Items, 2)
	assert.False(t, st.Empty())
	// server flags drive the controls, though only two items came back
	assert.True(t, st.CanNext())
	assert.False(t, st.CanPrev())
	assert.Equal(t, api.DefaultLimit, h.gw.lastQuery().Limit)

	// a second load of the same query is served by the cache
	require.NoError(t, h.lc.Load(context.Background()))
	assert.Equal(t, 1, h.gw.listCalls())
}

func TestListController_Empty(t *testing.T) {
	h := setup(t, teacher())
	h.gw.items = nil

	assert.False(t, h.lc.State().Empty(), "nothing is shown as empty before the first load")
	require.NoError(t, h.lc.Load(context.Background()))
	assert.True(t, h.lc.State().Empty())
}

func TestListController_FetchFailure(t *testing.T) {
	h := setup(t, teacher())
	h.gw.listErr = &api.Error{Status: http.StatusInternalServerError, Message: "database is down"}

	err := h.lc.Load(context.Background())
	require.Error(t, err)
	st := h.lc.State()
	assert.Equal(t, "database is down", st.ErrMessage)
	assert.True(t, h.store.IsValidAuth(), "a non-401 failure keeps the session")
	assert.Empty(t, h.nav.Redirects())

	h.gw.listErr = errors.New("connection reset")
	_ = h.lc.Retry(context.Background())
	assert.Equal(t, FallbackMessage, h.lc.State().ErrMessage)

	h.gw.listErr = nil
	require.NoError(t, h.lc.Retry(context.Background()))
	st = h.lc.State()
	assert.Nil(t, st.Err)
	assert.Empty(t, st.ErrMessage)
	assert.True(t, st.Loaded)
	assert.Equal(t, 3, h.gw.listCalls(), "no automatic retry")
}

func TestListController_Unauthorized(t *testing.T) {
	h := setup(t, teacher())
	h.gw.listErr = &api.Error{Status: http.StatusUnauthorized}

	err := h.lc.Load(context.Background())
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, session.Session{}, h.store.Snapshot())
	assert.Equal(t, []string{DefaultSignInPath}, h.nav.Redirects())

	// the session is gone: nothing else is issued
	assert.Equal(t, ErrNotAuthorized, h.lc.Load(context.Background()))
	assert.Equal(t, 1, h.gw.listCalls())
	assert.Equal(t, []string{DefaultSignInPath}, h.nav.Redirects())
}

// Two controllers observing the same 401 over HTTP redirect once.
func TestListController_UnauthorizedOverHTTP(t *testing.T) {
	var mu sync.Mutex
	var auths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auths = append(auths, r.Header.Get("Authorization"))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"token expired"}`))
	}))
	defer srv.Close()

	store, storage := testutil.NewSession(t, teacher())
	nav := &testutil.Navigator{}
	logger := logsvc.NewRecordingLogger()
	guard := NewGuard(store, nav, logger, "/sign-in")
	client := testutil.NewClient(t, srv.URL+"/api", store)
	guard.Attach(client)

	var ctrls []*ListController[quiz, quizForm]
	for _, path := range []string{"/quizzes", "/quiz-types"} {
		lc := New(Options[quiz, quizForm]{
			Gateway: api.NewResource[quiz](client, path),
			Session: store,
			Guard:   guard,
			Logger:  logger,
		})
		defer lc.Close()
		ctrls = append(ctrls, lc)
	}

	var wg sync.WaitGroup
	for _, lc := range ctrls {
		wg.Add(1)
		go func(lc *ListController[quiz, quizForm]) {
			defer wg.Done()
			_ = lc.Load(context.Background())
		}(lc)
	}
	wg.Wait()

	snap := store.Snapshot()
	assert.Nil(t, snap.User)
	assert.False(t, snap.IsAuthenticated)
	assert.Empty(t, snap.AccessToken)
	assert.Equal(t, 0, storage.Len())
	assert.Equal(t, []string{"/sign-in"}, nav.Redirects())
	for _, a := range auths {
		assert.Equal(t, "Bearer tok123", a)
	}
}

func TestListController_DebouncedSearch(t *testing.T) {
	h := setup(t, teacher())
	require.NoError(t, h.lc.SetPage(context.Background(), 1))
	calls := h.gw.listCalls()

	for _, s := range []string{"a", "al", "alj", "alja", "aljab"} {
		h.lc.SetSearch(s)
		time.Sleep(2 * time.Millisecond)
	}
	assert.Eventually(t, func() bool { return h.gw.listCalls() == calls+1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, calls+1, h.gw.listCalls(), "exactly one fetch for the burst")
	assert.Equal(t, "aljab", h.gw.lastQuery().Search)
	assert.Equal(t, 1, h.gw.lastQuery().Page)
}

func TestListController_CloseCancelsSearch(t *testing.T) {
	h := setup(t, teacher())

	h.lc.SetSearch("late")
	h.lc.Close()
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, 0, h.gw.listCalls())
	assert.Equal(t, ErrClosed, h.lc.Load(context.Background()))
}

func TestListController_Paging(t *testing.T) {
	h := setup(t, teacher())
	h.gw.pagination = &api.Pagination{CurrentPage: 1, TotalPages: 2, TotalItems: 12, HasNext: true}
	require.NoError(t, h.lc.Load(context.Background()))

	assert.Equal(t, ErrNoPage, h.lc.PrevPage(context.Background()))

	h.gw.pagination = &api.Pagination{CurrentPage: 2, TotalPages: 2, TotalItems: 12, HasPrev: true}
	require.NoError(t, h.lc.NextPage(context.Background()))
	assert.Equal(t, 2, h.gw.lastQuery().Page)
	assert.Equal(t, ErrNoPage, h.lc.NextPage(context.Background()))
	assert.Equal(t, ErrNoPage, h.lc.SetPage(context.Background(), 3))

	require.NoError(t, h.lc.SetSort(context.Background(), "title", api.OrderAsc))
	assert.Equal(t, "title", h.gw.lastQuery().Sort)

	require.NoError(t, h.lc.SetFilter(context.Background(), "classId", "c1"))
	q := h.gw.lastQuery()
	assert.Equal(t, "c1", q.Filters["classId"])
	assert.Equal(t, 1, q.Page, "a new filter goes back to the first page")
}

// A failed edit restores the cached list exactly.
func TestListController_UpdateOptimisticRevert(t *testing.T) {
	h := setup(t, teacher())
	h.gw.items = []quiz{{ID: "q1", Title: "Old"}}
	require.NoError(t, h.lc.Load(context.Background()))
	key := querycache.NewKey("quizzes", h.lc.State().Query.Key())
	before, _ := h.cache.Get(key)

	var during []quiz
	h.gw.onUpdate = func() { during = h.lc.State().Page.Items }
	h.gw.updateErr = &api.Error{Status: http.StatusBadRequest, Message: "title already used"}

	_, err := h.lc.Update(context.Background(), "q1", quizForm{Title: "New"})
	require.Error(t, err)

	assert.Equal(t, []quiz{{ID: "q1", Title: "New"}}, during, "patched before the call resolved")
	after, _ := h.cache.Get(key)
	assert.Equal(t, before, after)
	assert.Equal(t, []quiz{{ID: "q1", Title: "Old"}}, h.lc.State().Page.Items)

	last, _ := h.notifier.Last()
	assert.Equal(t, notifysvc.LevelError, last.Level)
	assert.Equal(t, "title already used", last.Msg)
	assert.Empty(t, h.nav.Redirects(), "the operator stays on the form")
}

func TestListController_Update(t *testing.T) {
	h := setup(t, teacher())
	require.NoError(t, h.lc.Load(context.Background()))

	got, err := h.lc.Update(context.Background(), "q1", quizForm{Title: "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)

	assert.Equal(t, 2, h.gw.listCalls(), "the list is refetched")
	assert.Equal(t, "New", h.lc.State().Page.Items[0].Title)
	last, _ := h.notifier.Last()
	assert.Equal(t, "Quiz updated", last.Msg)
	assert.Equal(t, []string{"/quizzes"}, h.nav.Redirects())
}

func TestListController_ValidationBlocksSubmission(t *testing.T) {
	h := setup(t, teacher())

	tests := []struct {
		name      string
		form      quizForm
		wantField string
	}{
		{name: "required", form: quizForm{}, wantField: "title"},
		{name: "blank", form: quizForm{Title: "   "}, wantField: "title"},
		{name: "max length", form: quizForm{Title: "a title of more than twenty characters"}, wantField: "title"},
		{name: "semester", form: quizForm{Title: "Ok", Semester: "Summer"}, wantField: "semester"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.lc.Create(context.Background(), tt.form)
			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr), "Create() error = %v, want a validation error", err)
			assert.Contains(t, h.lc.State().FieldErrors, tt.wantField)
		})
	}
	assert.Equal(t, 0, h.gw.createCalls, "invalid input never reaches the network")

	_, err := h.lc.Create(context.Background(), quizForm{Title: "Geometry", Semester: core.SemesterOdd})
	require.NoError(t, err)
	assert.Nil(t, h.lc.State().FieldErrors)
	assert.Equal(t, 1, h.gw.createCalls)
}

func TestListController_DeleteRequiresConfirmation(t *testing.T) {
	h := setup(t, teacher())
	require.NoError(t, h.lc.Load(context.Background()))

	h.confirmer.Answer = false
	err := h.lc.Delete(context.Background(), "q1", "quiz Old")
	assert.Equal(t, ErrNotConfirmed, err)
	assert.Equal(t, 0, h.gw.deleteCalls)
	assert.Equal(t, []string{"Delete quiz Old?"}, h.confirmer.Prompts())

	h.confirmer.Answer = true
	require.NoError(t, h.lc.Delete(context.Background(), "q1", "quiz Old"))
	assert.Equal(t, 1, h.gw.deleteCalls)
	assert.Equal(t, []quiz{{ID: "q2", Title: "Algebra"}}, h.lc.State().Page.Items)
	last, _ := h.notifier.Last()
	assert.Equal(t, "Quiz deleted", last.Msg)
}

func TestListController_DeleteFailureRestores(t *testing.T) {
	h := setup(t, teacher())
	require.NoError(t, h.lc.Load(context.Background()))
	before := h.lc.State().Page.Items
	h.gw.deleteErr = &api.Error{Status: http.StatusConflict}

	err := h.lc.Delete(context.Background(), "q1", "")
	require.Error(t, err)
	assert.Equal(t, before, h.lc.State().Page.Items)
	last, _ := h.notifier.Last()
	assert.Equal(t, FallbackMessage, last.Msg)
}

// A 401 from an edit or a delete leaves nothing of the torn down session behind.
func TestListController_MutationUnauthorizedDropsCache(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(h *harness) error
	}{
		{name: "update", mutate: func(h *harness) error {
			_, err := h.lc.Update(context.Background(), "q1", quizForm{Title: "New"})
			return err
		}},
		{name: "delete", mutate: func(h *harness) error {
			return h.lc.Delete(context.Background(), "q1", "quiz Old")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var guard *Guard
			h := setup(t, teacher(), func(o *Options[quiz, quizForm]) { guard = o.Guard })
			guard.OnTeardown(h.cache.Clear)
			require.NoError(t, h.lc.Load(context.Background()))
			require.NotEmpty(t, h.cache.Keys(""))

			// the client hook tears the session down before the call returns
			h.gw.onUpdate = func() { guard.Unauthorized() }
			h.gw.onDelete = h.gw.onUpdate
			h.gw.updateErr = &api.Error{Status: http.StatusUnauthorized}
			h.gw.deleteErr = h.gw.updateErr

			err := tt.mutate(h)
			assert.True(t, api.IsUnauthorized(err))
			assert.False(t, h.store.IsValidAuth())
			assert.Empty(t, h.cache.Keys(""))
			assert.Empty(t, h.lc.State().Page.Items)
			assert.False(t, h.lc.State().Loaded)
			assert.Equal(t, []string{DefaultSignInPath}, h.nav.Redirects())
		})
	}
}

func TestListController_Detail(t *testing.T) {
	h := setup(t, teacher())

	q, err := h.lc.Detail(context.Background(), "q2")
	require.NoError(t, err)
	assert.Equal(t, "Algebra", q.Title)

	_, err = h.lc.Detail(context.Background(), "missing")
	assert.True(t, api.IsNotFound(err))
	assert.Equal(t, "quiz not found", h.lc.State().ErrMessage)
}

func TestListController_Poll(t *testing.T) {
	h := setup(t, teacher())
	require.NoError(t, h.lc.Load(context.Background()))

	h.lc.Poll(10 * time.Millisecond)
	assert.Eventually(t, func() bool { return h.gw.listCalls() >= 3 }, time.Second, 5*time.Millisecond)

	h.lc.Close()
	calls := h.gw.listCalls()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, calls, h.gw.listCalls(), "no polling after Close")
}
