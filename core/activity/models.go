package activity

import (
	"time"

	"github.com/trezcool/masomo-admin/core/api"
)

// Audited actions
const (
	ActionLogin  = "login"
	ActionLogout = "logout"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionAward  = "award"
)

// Activity is one audit entry; entries are written by the backend only.
type Activity struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName,omitempty"`
	Role        string    `json:"role,omitempty"`
	Action      string    `json:"action"`
	Resource    string    `json:"resource,omitempty"`
	ResourceID  string    `json:"resourceId,omitempty"`
	Description string    `json:"description,omitempty"`
	IPAddress   string    `json:"ipAddress,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Filter narrows the audit log.
type Filter struct {
	Action string
	UserID string
	From   time.Time
	To     time.Time
}

// Apply returns `q` carrying the filter.
func (f Filter) Apply(q api.Query) api.Query {
	q = q.WithFilter("action", f.Action).WithFilter("userId", f.UserID)
	if !f.From.IsZero() {
		q = q.WithFilter("from", f.From.UTC().Format(time.RFC3339))
	}
	if !f.To.IsZero() {
		q = q.WithFilter("to", f.To.UTC().Format(time.RFC3339))
	}
	return q
}

// Matches reports whether `a` passes the filter, for filtering a page already fetched.
func (f Filter) Matches(a Activity) bool {
	if f.Action != "" && a.Action != f.Action {
		return false
	}
	if f.UserID != "" && a.UserID != f.UserID {
		return false
	}
	if !f.From.IsZero() && a.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && a.CreatedAt.After(f.To) {
		return false
	}
	return true
}

func ID(a Activity) string { return a.ID }
