package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-admin/core/activity"
	"github.com/trezcool/masomo-admin/core/user"
	"github.com/trezcool/masomo-admin/storage/database/inmem"
)

type activityApi struct {
	db *inmemdb.DB
}

func registerActivityAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	aa := activityApi{db: deps.DB}

	ag := g.Group(activity.Path, authed, roleMiddleware(user.RoleAdmin))
	ag.GET("", aa.query)
}

var activitySorts = sortFuncs[activity.Activity]{
	"action":    byString(func(a activity.Activity) string { return a.Action }),
	"userName":  byString(func(a activity.Activity) string { return a.UserName }),
	"createdAt": byTime(func(a activity.Activity) time.Time { return a.CreatedAt }),
}

func (aa activityApi) query(ctx echo.Context) error {
	lp := bindList(ctx)
	f := activity.Filter{
		Action: ctx.QueryParam("action"),
		UserID: ctx.QueryParam("userId"),
		From:   queryTime(ctx, "from"),
		To:     queryTime(ctx, "to"),
	}
	entries := filter(aa.db.Activities.All(), func(a activity.Activity) bool {
		return f.Matches(a) && contains(lp.Search, a.UserName, a.Description, a.Resource)
	})
	if lp.Sort == "" {
		lp.Sort, lp.Desc = "createdAt", true // newest first
	}
	activitySorts.apply(entries, lp)
	page, p := paginate(entries, lp)
	return respondPage(ctx, page, p)
}
