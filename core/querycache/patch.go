package querycache

import "github.com/trezcool/masomo-admin/core/api"

// PatchItems optimistically applies `apply` to every cached item of `resource` that `match` selects,
// both in list pages and in detail entries.
func PatchItems[T any](c *Cache, resource string, match func(T) bool, apply func(T) T) Snapshot {
	return c.Patch(
		func(k Key) bool { return k.Resource == resource },
		func(_ Key, v interface{}) (interface{}, bool) {
			switch val := v.(type) {
			case api.Page[T]:
				var changed bool
				items := make([]T, len(val.Items))
				for i, item := range val.Items {
					if match(item) {
						item = apply(item)
						changed = true
					}
					items[i] = item
				}
				if !changed {
					return nil, false
				}
				val.Items = items
				return val, true
			case T:
				if !match(val) {
					return nil, false
				}
				return apply(val), true
			}
			return nil, false
		},
	)
}

// RemoveItems optimistically drops the cached items of `resource` that `match` selects from the list pages.
func RemoveItems[T any](c *Cache, resource string, match func(T) bool) Snapshot {
	return c.Patch(
		func(k Key) bool { return k.Resource == resource },
		func(_ Key, v interface{}) (interface{}, bool) {
			page, ok := v.(api.Page[T])
			if !ok {
				return nil, false
			}
			items := make([]T, 0, len(page.Items))
			for _, item := range page.Items {
				if !match(item) {
					items = append(items, item)
				}
			}
			if len(items) == len(page.Items) {
				return nil, false
			}
			page.Items = items
			return page, true
		},
	)
}
