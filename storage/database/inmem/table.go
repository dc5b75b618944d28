package inmemdb

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("record not found")

// Table is an in-memory collection of T keyed by a generated `_id`, kept in insertion order.
type Table[T any] struct {
	mu    sync.RWMutex
	rows  map[string]T
	order []string
	idOf  func(T) string
	setID func(*T, string)
}

func NewTable[T any](idOf func(T) string, setID func(*T, string)) *Table[T] {
	return &Table[T]{
		rows:  make(map[string]T),
		idOf:  idOf,
		setID: setID,
	}
}

// Insert stores `item`, assigning it a new ID when it has none.
func (t *Table[T]) Insert(item T) T {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.idOf(item)
	if id == "" {
		id = uuid.New().String()
		t.setID(&item, id)
	}
	if _, exists := t.rows[id]; !exists {
		t.order = append(t.order, id)
	}
	t.rows[id] = item
	return item
}

func (t *Table[T]) Get(id string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	item, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return item, nil
}

// Update applies `fn` on the record `id` and stores the result unless `fn` fails.
func (t *Table[T]) Update(id string, fn func(*T) error) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	item, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	if err := fn(&item); err != nil {
		var zero T
		return zero, err
	}
	t.setID(&item, id)
	t.rows[id] = item
	return item, nil
}

func (t *Table[T]) Delete(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	delete(t.rows, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// All returns every record in insertion order.
func (t *Table[T]) All() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	items := make([]T, 0, len(t.order))
	for _, id := range t.order {
		items = append(items, t.rows[id])
	}
	return items
}

// Find returns the first record `match` accepts.
func (t *Table[T]) Find(match func(T) bool) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, id := range t.order {
		if item := t.rows[id]; match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}
