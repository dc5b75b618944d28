package echoapi

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/activity"
	"github.com/trezcool/masomo-admin/core/api"
	"github.com/trezcool/masomo-admin/core/user"
	"github.com/trezcool/masomo-admin/core/xp"
	"github.com/trezcool/masomo-admin/storage/database/inmem"
)

var errUnknownUser = core.FieldError{Field: "userId", Error: "user does not exist"}

type xpApi struct {
	db        *inmemdb.DB
	validator *core.Validator
}

func registerXPAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	db := deps.DB
	xa := xpApi{db: db, validator: deps.Validator}

	milestones := &crud[xp.Milestone, xp.MilestoneForm, xp.MilestoneForm]{
		label:     "Milestone",
		resource:  "milestones",
		table:     db.Milestones,
		db:        db,
		validator: deps.Validator,
		id:        xp.ID,
		name:      func(m xp.Milestone) string { return m.Name },
		matches: func(m xp.Milestone, search string) bool {
			return contains(search, m.Name, m.Description, m.Reward)
		},
		sorts: sortFuncs[xp.Milestone]{
			"name":       byString(func(m xp.Milestone) string { return m.Name }),
			"xpRequired": byInt(func(m xp.Milestone) int { return m.XPRequired }),
		},
		cleanCreate: (*xp.MilestoneForm).Clean,
		cleanUpdate: (*xp.MilestoneForm).Clean,
		build: func(f xp.MilestoneForm, _ user.User) (xp.Milestone, error) {
			return xp.Patch(xp.Milestone{CreatedAt: inmemdb.NowFunc()}, f), nil
		},
		apply: xp.Patch,
	}

	mg := g.Group(xp.MilestonePath, authed, roleMiddleware(user.DashboardRoles...))
	milestones.register(mg, roleMiddleware(user.RoleAdmin))

	xg := g.Group("/xp", authed, roleMiddleware(user.DashboardRoles...))
	xg.GET("/transactions", xa.queryTransactions)
	xg.POST("/award", xa.award)
	xg.GET("/leaderboard", xa.leaderboard)
}

var transactionSorts = sortFuncs[xp.Transaction]{
	"points":    byInt(func(t xp.Transaction) int { return t.Points }),
	"userName":  byString(func(t xp.Transaction) string { return t.UserName }),
	"createdAt": byTime(func(t xp.Transaction) time.Time { return t.CreatedAt }),
}

func (xa xpApi) queryTransactions(ctx echo.Context) error {
	lp := bindList(ctx)
	userID, source := ctx.QueryParam("userId"), ctx.QueryParam("source")
	txs := filter(xa.db.Transactions.All(), func(t xp.Transaction) bool {
		return (userID == "" || t.UserID == userID) &&
			(source == "" || t.Source == source) &&
			contains(lp.Search, t.UserName, t.Reason)
	})
	if lp.Sort == "" {
		lp.Sort, lp.Desc = "createdAt", true // newest first
	}
	transactionSorts.apply(txs, lp)
	page, p := paginate(txs, lp)
	return respondPage(ctx, page, p)
}

func (xa xpApi) award(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	var data xp.Award
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Award")
	}
	data.Clean()
	if err := xa.validator.Struct(data); err != nil {
		return err
	}

	tx, err := xa.db.AwardXP(usr, data.UserID, data.Points, data.Reason, xp.SourceManual)
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return core.NewValidationError(nil, errUnknownUser)
		}
		return errors.Wrap(err, "awarding xp")
	}
	xa.db.Log(usr, activity.ActionAward, "xp", tx.ID, strconv.Itoa(tx.Points)+" XP to "+tx.UserName+": "+tx.Reason, ctx.RealIP())
	return respond(ctx, http.StatusCreated, tx, "XP awarded")
}

func (xa xpApi) leaderboard(ctx echo.Context) error {
	classID := ctx.QueryParam("classId")
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	if limit < 1 || limit > maxLimit {
		limit = api.DefaultLimit
	}

	students := xa.db.Users(func(u user.User) bool {
		return u.IsStudent() && (classID == "" || u.ClassID == classID)
	})
	sort.SliceStable(students, func(i, j int) bool { return students[i].TotalXP > students[j].TotalXP })
	if len(students) > limit {
		students = students[:limit]
	}

	entries := make([]xp.LeaderboardEntry, 0, len(students))
	for i, s := range students {
		entries = append(entries, xp.LeaderboardEntry{
			Rank:    i + 1,
			UserID:  s.ID,
			Name:    s.Name,
			ClassID: s.ClassID,
			TotalXP: s.TotalXP,
			Level:   s.Level,
		})
	}
	return respondOK(ctx, entries)
}
