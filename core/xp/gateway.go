package xp

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/trezcool/masomo-admin/core/api"
)

const (
	MilestonePath   = "/milestones"
	transactionPath = "/xp/transactions"
	awardPath       = "/xp/award"
	leaderboardPath = "/xp/leaderboard"
)

// Gateway reads and writes milestones and XP transactions.
type Gateway struct {
	*api.Resource[Milestone]
	client *api.Client
}

func NewGateway(client *api.Client) *Gateway {
	return &Gateway{
		Resource: api.NewResource[Milestone](client, MilestonePath),
		client:   client,
	}
}

func (gw *Gateway) Transactions(ctx context.Context, q api.Query) (api.Page[Transaction], error) {
	return api.CallPage[Transaction](ctx, gw.client, api.Request{Method: http.MethodGet, Path: transactionPath, Query: q.Values()})
}

// Award grants (or takes back) XP manually.
func (gw *Gateway) Award(ctx context.Context, a Award) (Transaction, error) {
	return api.Call[Transaction](ctx, gw.client, api.Request{Method: http.MethodPost, Path: awardPath, Body: a})
}

// Leaderboard returns the top `limit` users by total XP, optionally within one class.
func (gw *Gateway) Leaderboard(ctx context.Context, classID string, limit int) ([]LeaderboardEntry, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if classID != "" {
		q.Set("classId", classID)
	}
	entries, err := api.Call[[]LeaderboardEntry](ctx, gw.client, api.Request{Method: http.MethodGet, Path: leaderboardPath, Query: q})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// TransactionResource is the read-only gateway of the XP ledger, for list views.
func (gw *Gateway) TransactionResource() *api.Resource[Transaction] {
	return api.NewResource[Transaction](gw.client, transactionPath)
}
