// Package querycache is the dashboard's data cache: query-keyed values with request dedup,
// invalidation, and reversible optimistic patches.
package querycache

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// ErrType is returned when a cached value is not of the requested type.
var ErrType = errors.New("cached value has an unexpected type")

// Key is the logical identity of a query: a resource plus its encoded parameters.
type Key struct {
	Resource string
	Params   string
}

// NewKey returns the Key of `resource` queried with `params` (e.g. api.Query.Key()).
func NewKey(resource, params string) Key {
	return Key{Resource: resource, Params: params}
}

// DetailKey returns the Key of the single item `id` of `resource`.
func DetailKey(resource, id string) Key {
	return Key{Resource: resource, Params: "id=" + id}
}

func (k Key) String() string {
	if k.Params == "" {
		return k.Resource
	}
	return k.Resource + "?" + k.Params
}

type entry struct {
	value     interface{}
	updatedAt time.Time
	stale     bool
}

// Snapshot holds the entries a Patch replaced, so Restore can put them back.
type Snapshot struct {
	entries map[Key]*entry // nil entry: the key did not exist
}

// Len returns the number of entries the snapshot covers.
func (s Snapshot) Len() int {
	return len(s.entries)
}

type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	gens    map[Key]uint64
	group   singleflight.Group
	ttl     time.Duration

	nowFunc func() time.Time
}

// New returns a Cache whose entries stay fresh for `ttl`; zero means until invalidated.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[Key]*entry),
		gens:    make(map[Key]uint64),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

func (c *Cache) freshLocked(e *entry) bool {
	if e == nil || e.stale {
		return false
	}
	return c.ttl == 0 || c.nowFunc().Sub(e.updatedAt) < c.ttl
}

// Get returns the value cached under `key`, fresh or stale.
func (c *Cache) Get(key Key) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// IsFresh reports whether `key` holds a value a read may reuse without going to the network.
func (c *Cache) IsFresh(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.freshLocked(c.entries[key])
}

func (c *Cache) Set(key Key, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[key]++
	c.entries[key] = &entry{value: value, updatedAt: c.nowFunc()}
}

func (c *Cache) Remove(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[key]++
	delete(c.entries, key)
}

// Invalidate marks every entry of `resource` stale; in-flight reads of them will not be stored.
func (c *Cache) Invalidate(resource string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if k.Resource == resource {
			e.stale = true
			c.gens[k]++
		}
	}
	for k := range c.gens {
		if k.Resource == resource {
			c.gens[k]++
		}
	}
}

// InvalidateKey marks the single entry `key` stale.
func (c *Cache) InvalidateKey(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.stale = true
	}
	c.gens[key]++
}

// Clear drops every entry, e.g. at logout.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		c.gens[k]++
	}
	c.entries = make(map[Key]*entry)
}

// Keys returns the cached keys of `resource` (all keys when empty), sorted.
func (c *Cache) Keys(resource string) []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		if resource == "" || k.Resource == resource {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Fetch returns the fresh value of `key`, or runs `fn` to read it. Concurrent fetches of the same key
// share one call of `fn`, which a caller cancelling its own ctx does not abort. A result is stored only if nothing set, patched or invalidated the key
// since the fetch was issued, so the latest-issued request wins.
func (c *Cache) Fetch(ctx context.Context, key Key, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	if e := c.entries[key]; c.freshLocked(e) {
		v := e.value
		c.mu.Unlock()
		return v, nil
	}
	gen := c.gens[key]
	c.mu.Unlock()

	// the shared call outlives any single caller; each caller's ctx only bounds its own wait
	shared := context.WithoutCancel(ctx)
	flight := key.String() + "#" + strconv.FormatUint(gen, 10)
	ch := c.group.DoChan(flight, func() (interface{}, error) {
		v, err := fn(shared)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gens[key] == gen {
			c.gens[key]++
			c.entries[key] = &entry{value: v, updatedAt: c.nowFunc()}
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// Patch applies `update` to every cached entry whose key matches, before the mutation is sent.
// `update` must return a new value rather than modify the cached one; it returns false to leave
// an entry untouched. The returned Snapshot restores the replaced entries exactly.
func (c *Cache) Patch(match func(Key) bool, update func(Key, interface{}) (interface{}, bool)) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{entries: make(map[Key]*entry)}
	for k, e := range c.entries {
		if !match(k) {
			continue
		}
		v, ok := update(k, e.value)
		if !ok {
			continue
		}
		prev := *e
		snap.entries[k] = &prev
		e.value = v
		c.gens[k]++
	}
	return snap
}

// Restore puts back the entries `snap` captured, replacing whatever they hold now.
func (c *Cache) Restore(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range snap.entries {
		c.gens[k]++
		if e == nil {
			delete(c.entries, k)
			continue
		}
		prev := *e
		c.entries[k] = &prev
	}
}

// Discard drops the entries `snap` covers instead of restoring them, e.g. when the session that
// patched them is gone.
func (c *Cache) Discard(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range snap.entries {
		c.gens[k]++
		delete(c.entries, k)
	}
}

// Fetch is the typed form of Cache.Fetch.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Fetch(ctx, key, func(ctx context.Context) (interface{}, error) { return fn(ctx) })
	if err != nil {
		var zero T
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, errors.Wrapf(ErrType, "%s", key)
	}
	return out, nil
}
