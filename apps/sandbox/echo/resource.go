package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/studyresource"
	"github.com/trezcool/masomo-admin/core/user"
	"github.com/trezcool/masomo-admin/storage/database/inmem"
)

func registerResourceAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	db := deps.DB

	checkClass := func(classID string) error {
		if classID == "" {
			return nil
		}
		if _, err := db.Classes.Get(classID); err != nil {
			return core.NewValidationError(nil, errUnknownClass)
		}
		return nil
	}

	resources := &crud[studyresource.Resource, studyresource.Form, studyresource.Form]{
		label:     "Resource",
		resource:  "resources",
		table:     db.Resources,
		db:        db,
		validator: deps.Validator,
		id:        studyresource.ID,
		name:      func(r studyresource.Resource) string { return r.Title },
		matches: func(r studyresource.Resource, search string) bool {
			return contains(search, r.Title, r.Subject, r.Description)
		},
		sorts: sortFuncs[studyresource.Resource]{
			"title":     byString(func(r studyresource.Resource) string { return r.Title }),
			"fileSize":  func(a, b studyresource.Resource) bool { return a.FileSize < b.FileSize },
			"downloads": byInt(func(r studyresource.Resource) int { return r.Downloads }),
			"createdAt": byTime(func(r studyresource.Resource) time.Time { return r.CreatedAt }),
		},
		filters: map[string]func(studyresource.Resource, string) bool{
			"type":    func(r studyresource.Resource, v string) bool { return r.Type == v },
			"subject": func(r studyresource.Resource, v string) bool { return r.Subject == v },
			"classId": func(r studyresource.Resource, v string) bool { return r.ClassID == v },
		},
		cleanCreate: (*studyresource.Form).Clean,
		cleanUpdate: (*studyresource.Form).Clean,
		build: func(f studyresource.Form, _ user.User) (studyresource.Resource, error) {
			if err := checkClass(f.ClassID); err != nil {
				return studyresource.Resource{}, err
			}
			now := inmemdb.NowFunc()
			return studyresource.Patch(studyresource.Resource{CreatedAt: now, UpdatedAt: now}, f), nil
		},
		checkUpdate: func(f studyresource.Form) error {
			return checkClass(f.ClassID)
		},
		apply: func(r studyresource.Resource, f studyresource.Form) studyresource.Resource {
			r = studyresource.Patch(r, f)
			r.UpdatedAt = inmemdb.NowFunc()
			return r
		},
		present: func(r studyresource.Resource) studyresource.Resource {
			r.ClassName = ""
			if c, err := db.Classes.Get(r.ClassID); err == nil {
				r.ClassName = c.Name
			}
			r.FileSizeLabel = studyresource.DisplaySize(r.FileSize)
			return r
		},
	}

	rg := g.Group(studyresource.Path, authed, roleMiddleware(user.DashboardRoles...))
	resources.register(rg, roleMiddleware(user.DashboardRoles...))
}
