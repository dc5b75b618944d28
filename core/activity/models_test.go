package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-admin/core/api"
)

func TestFilter(t *testing.T) {
	from := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	f := Filter{Action: ActionDelete, UserID: "u1", From: from}

	q := f.Apply(api.Query{Page: 2})
	assert.Equal(t, "action=delete&from=2024-09-01T00%3A00%3A00Z&page=2&userId=u1", q.Key())

	assert.True(t, f.Matches(Activity{Action: ActionDelete, UserID: "u1", CreatedAt: from.Add(time.Hour)}))
	assert.False(t, f.Matches(Activity{Action: ActionDelete, UserID: "u1", CreatedAt: from.Add(-time.Hour)}))
	assert.False(t, f.Matches(Activity{Action: ActionLogin, UserID: "u1", CreatedAt: from}))
	assert.True(t, Filter{}.Matches(Activity{}))

	// an emptied filter is removed from the query
	q = Filter{}.Apply(q)
	assert.Equal(t, "from=2024-09-01T00%3A00%3A00Z&page=2", q.Key())
}
