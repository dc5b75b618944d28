package controller

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/api"
	"github.com/trezcool/masomo-admin/core/debounce"
	"github.com/trezcool/masomo-admin/core/querycache"
)

// DefaultSearchDelay is the quiet window search input is coalesced over.
const DefaultSearchDelay = 500 * time.Millisecond

type (
	// Messages are the toasts a controller shows after a successful mutation.
	Messages struct {
		Created  string
		Updated  string
		Deleted  string
		Fallback string // shown when a failure carries no backend message
	}

	// Options wires a ListController.
	Options[T any, F any] struct {
		Gateway   Gateway[T]
		Cache     *querycache.Cache
		Session   SessionStore
		Guard     *Guard
		Notifier  Notifier
		Navigator Navigator
		Confirmer Confirmer
		Validator *core.Validator
		Logger    core.Logger

		Roles       []string // role-gated page when set
		ListPath    string   // view to navigate back to after a mutation
		SearchDelay time.Duration
		Limit       int
		Query       api.Query // initial query

		ID    func(T) string
		Patch func(T, F) T // optimistic patch of a cached item; optimistic updates are off when nil
		Messages
	}

	// State is what the view renders.
	State[T any] struct {
		Query       api.Query
		Page        api.Page[T]
		Loading     bool
		Loaded      bool
		Err         error
		ErrMessage  string            // page-level error banner
		FieldErrors map[string]string // inline form errors
	}

	// ListController binds one backend collection to a list view with its create/edit/delete forms.
	ListController[T any, F any] struct {
		opts   Options[T, F]
		search *debounce.Debouncer[string]

		mu      sync.Mutex
		state   State[T]
		loadSeq uint64
		closed  bool
		poller  *Poller

		lifetime context.Context
		stop     context.CancelFunc
	}
)

// Empty reports whether the view shows its "nothing found" state.
func (s State[T]) Empty() bool {
	return s.Loaded && s.Err == nil && s.Page.IsEmpty()
}

// CanPrev reports whether the "previous" control is enabled, from the server-reported flags only.
func (s State[T]) CanPrev() bool {
	return s.Loaded && s.Page.Pagination.HasPrev
}

// CanNext reports whether the "next" control is enabled, from the server-reported flags only.
func (s State[T]) CanNext() bool {
	return s.Loaded && s.Page.Pagination.HasNext
}

func New[T any, F any](opts Options[T, F]) *ListController[T, F] {
	if opts.SearchDelay <= 0 {
		opts.SearchDelay = DefaultSearchDelay
	}
	if opts.Limit <= 0 {
		opts.Limit = api.DefaultLimit
	}
	if opts.Fallback == "" {
		opts.Fallback = FallbackMessage
	}
	if opts.Confirmer == nil {
		opts.Confirmer = AutoConfirm{}
	}
	if opts.Cache == nil {
		opts.Cache = querycache.New(0)
	}
	q := opts.Query
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = opts.Limit
	}

	lc := &ListController[T, F]{opts: opts, state: State[T]{Query: q}}
	lc.lifetime, lc.stop = context.WithCancel(context.Background())
	lc.search = debounce.New(opts.SearchDelay, func(s string) {
		lc.mu.Lock()
		lc.state.Query.Search = s
		lc.state.Query.Page = 1
		lc.mu.Unlock()
		_ = lc.Load(lc.lifetime)
	})
	return lc
}

// State returns a copy of the view state.
func (lc *ListController[T, F]) State() State[T] {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	st := lc.state
	if lc.state.FieldErrors != nil {
		st.FieldErrors = make(map[string]string, len(lc.state.FieldErrors))
		for k, v := range lc.state.FieldErrors {
			st.FieldErrors[k] = v
		}
	}
	return st
}

func (lc *ListController[T, F]) resource() string {
	return lc.opts.Gateway.Name()
}

func (lc *ListController[T, F]) listKey(q api.Query) querycache.Key {
	return querycache.NewKey(lc.resource(), q.Key())
}

// authorize guards every request: no request is issued without a valid session.
func (lc *ListController[T, F]) authorize() error {
	lc.mu.Lock()
	closed := lc.closed
	lc.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if !lc.opts.Session.IsValidAuth() {
		return ErrNotAuthorized
	}
	if len(lc.opts.Roles) == 0 {
		return nil
	}
	for _, role := range lc.opts.Roles {
		if lc.opts.Session.HasRole(role) {
			return nil
		}
	}
	return ErrForbiddenRole
}

// context ties `ctx` to the controller's lifetime so Close abandons in-flight requests.
func (lc *ListController[T, F]) context(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-lc.lifetime.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// failed translates a request error; a 401 goes through the Guard.
func (lc *ListController[T, F]) failed(err error) string {
	if api.IsUnauthorized(err) && lc.opts.Guard != nil {
		lc.opts.Guard.Unauthorized()
	}
	return api.Message(err, lc.opts.Fallback)
}

// Load reads the current page. On success the page replaces the displayed state and clears any error.
func (lc *ListController[T, F]) Load(ctx context.Context) error {
	if err := lc.authorize(); err != nil {
		lc.mu.Lock()
		lc.state.Err = err
		lc.state.ErrMessage = err.Error()
		lc.mu.Unlock()
		return err
	}

	lc.mu.Lock()
	lc.loadSeq++
	seq := lc.loadSeq
	q := lc.state.Query
	lc.state.Loading = true
	lc.mu.Unlock()

	ctx, cancel := lc.context(ctx)
	defer cancel()
	page, err := querycache.Fetch(ctx, lc.opts.Cache, lc.listKey(q), func(ctx context.Context) (api.Page[T], error) {
		return lc.opts.Gateway.List(ctx, q)
	})

	var msg string
	if err != nil {
		msg = lc.failed(err)
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()
	// torn down, or superseded by a newer load
	if lc.closed || seq != lc.loadSeq {
		return err
	}
	lc.state.Loading = false
	if err != nil {
		lc.state.Err = err
		lc.state.ErrMessage = msg
		return err
	}
	lc.state.Page = page
	lc.state.Loaded = true
	lc.state.Err = nil
	lc.state.ErrMessage = ""
	return nil
}

// Retry re-reads the current page from the network.
func (lc *ListController[T, F]) Retry(ctx context.Context) error {
	lc.mu.Lock()
	q := lc.state.Query
	lc.mu.Unlock()
	lc.opts.Cache.InvalidateKey(lc.listKey(q))
	return lc.Load(ctx)
}

// Refresh invalidates every cached read of the resource and reloads the current page.
func (lc *ListController[T, F]) Refresh(ctx context.Context) error {
	lc.opts.Cache.Invalidate(lc.resource())
	return lc.Load(ctx)
}

// SetSearch folds `s` into the query once the input has been quiet for the search delay.
func (lc *ListController[T, F]) SetSearch(s string) {
	lc.search.Trigger(s)
}

// FlushSearch applies the pending search input now.
func (lc *ListController[T, F]) FlushSearch() {
	lc.search.Flush()
}

func (lc *ListController[T, F]) setQuery(ctx context.Context, fn func(q *api.Query)) error {
	lc.mu.Lock()
	fn(&lc.state.Query)
	lc.mu.Unlock()
	return lc.Load(ctx)
}

// SetFilter sets (or removes, when `value` is empty) a resource filter and goes back to the first page.
func (lc *ListController[T, F]) SetFilter(ctx context.Context, key, value string) error {
	return lc.setQuery(ctx, func(q *api.Query) {
		*q = q.WithFilter(key, value)
		q.Page = 1
	})
}

func (lc *ListController[T, F]) SetSort(ctx context.Context, field, order string) error {
	return lc.setQuery(ctx, func(q *api.Query) {
		q.Sort = field
		q.Order = order
	})
}

func (lc *ListController[T, F]) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		return ErrNoPage
	}
	lc.mu.Lock()
	st := lc.state
	lc.mu.Unlock()
	if st.Loaded && st.Page.Pagination.TotalPages > 0 && page > st.Page.Pagination.TotalPages {
		return ErrNoPage
	}
	return lc.setQuery(ctx, func(q *api.Query) { q.Page = page })
}

func (lc *ListController[T, F]) NextPage(ctx context.Context) error {
	st := lc.State()
	if !st.CanNext() {
		return ErrNoPage
	}
	return lc.setQuery(ctx, func(q *api.Query) { q.Page = st.Page.Pagination.CurrentPage + 1 })
}

func (lc *ListController[T, F]) PrevPage(ctx context.Context) error {
	st := lc.State()
	if !st.CanPrev() {
		return ErrNoPage
	}
	return lc.setQuery(ctx, func(q *api.Query) { q.Page = st.Page.Pagination.CurrentPage - 1 })
}

// Detail reads the item `id` for its detail or edit view.
func (lc *ListController[T, F]) Detail(ctx context.Context, id string) (T, error) {
	var zero T
	if err := lc.authorize(); err != nil {
		return zero, err
	}
	ctx, cancel := lc.context(ctx)
	defer cancel()
	item, err := querycache.Fetch(ctx, lc.opts.Cache, querycache.DetailKey(lc.resource(), id), func(ctx context.Context) (T, error) {
		return lc.opts.Gateway.Get(ctx, id)
	})
	if err != nil {
		msg := lc.failed(err)
		lc.mu.Lock()
		lc.state.Err = err
		lc.state.ErrMessage = msg
		lc.mu.Unlock()
		return zero, err
	}
	return item, nil
}

// validate runs the client-side checks of `form`; violations fill the field errors and block submission.
func (lc *ListController[T, F]) validate(form F) error {
	var fields map[string]string
	if lc.opts.Validator != nil {
		if err := lc.opts.Validator.Struct(form); err != nil {
			var vErr *core.ValidationError
			if !errors.As(err, &vErr) {
				return err
			}
			fields = vErr.FieldMap()
		}
	}
	lc.mu.Lock()
	lc.state.FieldErrors = fields
	lc.mu.Unlock()
	if fields != nil {
		return core.NewValidationErrorFromMap(fields)
	}
	return nil
}

// mutated runs the success path of every mutation: toast, refetch, back to the list.
func (lc *ListController[T, F]) mutated(ctx context.Context, msg string) {
	if msg != "" && lc.opts.Notifier != nil {
		lc.opts.Notifier.Success(msg)
	}
	lc.opts.Cache.Invalidate(lc.resource())
	if err := lc.Load(ctx); err != nil && lc.opts.Logger != nil {
		lc.opts.Logger.Warn("reloading "+lc.resource()+" after mutation", err)
	}
	if lc.opts.ListPath != "" && lc.opts.Navigator != nil {
		lc.opts.Navigator.Redirect(lc.opts.ListPath)
	}
}

// mutationFailed shows the failure and leaves the form as it is.
func (lc *ListController[T, F]) mutationFailed(err error) {
	msg := lc.failed(err)
	if lc.opts.Notifier != nil {
		lc.opts.Notifier.Error(msg)
	}
}

// revert undoes an optimistic change after a failed mutation. After a 401 the session is gone, so
// the patched entries and the displayed page are dropped rather than restored.
func (lc *ListController[T, F]) revert(snap querycache.Snapshot, err error) {
	if api.IsUnauthorized(err) || !lc.opts.Session.IsValidAuth() {
		lc.opts.Cache.Discard(snap)
		lc.mu.Lock()
		lc.state.Page = api.Page[T]{}
		lc.state.Loaded = false
		lc.mu.Unlock()
		return
	}
	lc.opts.Cache.Restore(snap)
	lc.syncPage()
}

// syncPage re-reads the displayed page from the cache after a patch or a restore.
func (lc *ListController[T, F]) syncPage() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if v, ok := lc.opts.Cache.Get(lc.listKey(lc.state.Query)); ok {
		if page, ok := v.(api.Page[T]); ok {
			lc.state.Page = page
		}
	}
}

func (lc *ListController[T, F]) Create(ctx context.Context, form F) (T, error) {
	var zero T
	if err := lc.validate(form); err != nil {
		return zero, err
	}
	if err := lc.authorize(); err != nil {
		return zero, err
	}
	ctx, cancel := lc.context(ctx)
	defer cancel()

	item, err := lc.opts.Gateway.Create(ctx, form)
	if err != nil {
		lc.mutationFailed(err)
		return zero, err
	}
	lc.mutated(ctx, lc.opts.Created)
	return item, nil
}

// Update submits `form` for the item `id`. With a Patch function the cached copies of the item
// reflect the edit before the call resolves, and are restored exactly if it fails.
func (lc *ListController[T, F]) Update(ctx context.Context, id string, form F) (T, error) {
	var zero T
	if err := lc.validate(form); err != nil {
		return zero, err
	}
	if err := lc.authorize(); err != nil {
		return zero, err
	}
	ctx, cancel := lc.context(ctx)
	defer cancel()

	var snap querycache.Snapshot
	optimistic := lc.opts.Patch != nil && lc.opts.ID != nil
	if optimistic {
		snap = querycache.PatchItems(lc.opts.Cache, lc.resource(),
			func(item T) bool { return lc.opts.ID(item) == id },
			func(item T) T { return lc.opts.Patch(item, form) },
		)
		lc.syncPage()
	}

	item, err := lc.opts.Gateway.Update(ctx, id, form)
	if err != nil {
		if optimistic {
			lc.revert(snap, err)
		}
		lc.mutationFailed(err)
		return zero, err
	}
	lc.mutated(ctx, lc.opts.Updated)
	return item, nil
}

// Delete removes the item `id` once the operator confirmed it.
func (lc *ListController[T, F]) Delete(ctx context.Context, id, label string) error {
	if err := lc.authorize(); err != nil {
		return err
	}
	prompt := "Delete " + label + "?"
	if label == "" {
		prompt = "Delete this item?"
	}
	ok, err := lc.opts.Confirmer.Confirm(ctx, prompt)
	if err != nil {
		return errors.Wrap(err, "confirming delete")
	}
	if !ok {
		return ErrNotConfirmed
	}
	ctx, cancel := lc.context(ctx)
	defer cancel()

	var snap querycache.Snapshot
	if lc.opts.ID != nil {
		snap = querycache.RemoveItems(lc.opts.Cache, lc.resource(), func(item T) bool { return lc.opts.ID(item) == id })
		lc.syncPage()
	}

	if err := lc.opts.Gateway.Delete(ctx, id); err != nil {
		lc.revert(snap, err)
		lc.mutationFailed(err)
		return err
	}
	lc.opts.Cache.Remove(querycache.DetailKey(lc.resource(), id))
	lc.mutated(ctx, lc.opts.Deleted)
	return nil
}

// Poll re-reads the current page every `interval` until Close.
func (lc *ListController[T, F]) Poll(interval time.Duration) {
	lc.mu.Lock()
	if lc.closed || lc.poller != nil {
		lc.mu.Unlock()
		return
	}
	lc.poller = NewPoller(interval, lc.Retry, func(err error) {
		if lc.opts.Logger != nil {
			lc.opts.Logger.Warn("polling "+lc.resource(), err)
		}
	})
	p := lc.poller
	lc.mu.Unlock()
	p.Start(lc.lifetime)
}

// Close tears the controller down: pending search input is dropped, in-flight requests are
// abandoned and their results discarded.
func (lc *ListController[T, F]) Close() {
	lc.search.Stop()
	lc.mu.Lock()
	lc.closed = true
	p := lc.poller
	lc.mu.Unlock()
	lc.stop()
	if p != nil {
		p.Stop()
	}
}
