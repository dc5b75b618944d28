package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/class"
	"github.com/trezcool/masomo-admin/core/user"
	"github.com/trezcool/masomo-admin/storage/database/inmem"
)

var (
	errUnknownTeacher = core.FieldError{Field: "teacherId", Error: "teacher does not exist"}
	errClassNotEmpty  = echo.NewHTTPError(http.StatusConflict, "class still has students")
)

type classApi struct {
	db *inmemdb.DB
}

func registerClassAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	db := deps.DB
	ca := classApi{db: db}

	classes := &crud[class.Class, class.NewClass, class.UpdateClass]{
		label:     "Class",
		resource:  "classes",
		table:     db.Classes,
		db:        db,
		validator: deps.Validator,
		id:        class.ID,
		name:      func(c class.Class) string { return c.Name },
		matches: func(c class.Class, search string) bool {
			return contains(search, c.Name, c.AcademicYear, c.TeacherName)
		},
		sorts: sortFuncs[class.Class]{
			"name":         byString(func(c class.Class) string { return c.Name }),
			"grade":        byInt(func(c class.Class) int { return c.Grade }),
			"studentCount": byInt(func(c class.Class) int { return c.StudentCount }),
			"createdAt":    byTime(func(c class.Class) time.Time { return c.CreatedAt }),
		},
		filters: map[string]func(class.Class, string) bool{
			"semester":     func(c class.Class, v string) bool { return c.Semester == v },
			"academicYear": func(c class.Class, v string) bool { return c.AcademicYear == v },
			"teacherId":    func(c class.Class, v string) bool { return c.TeacherID == v },
		},
		cleanCreate: (*class.NewClass).Clean,
		cleanUpdate: (*class.UpdateClass).Clean,
		build: func(nc class.NewClass, _ user.User) (class.Class, error) {
			if err := ca.checkTeacher(nc.TeacherID); err != nil {
				return class.Class{}, err
			}
			now := inmemdb.NowFunc()
			c := class.Class{CreatedAt: now, UpdatedAt: now}
			return class.Patch(c, class.UpdateClass(nc)), nil
		},
		checkUpdate: func(uc class.UpdateClass) error {
			return ca.checkTeacher(uc.TeacherID)
		},
		apply: func(c class.Class, uc class.UpdateClass) class.Class {
			c = class.Patch(c, uc)
			c.UpdatedAt = inmemdb.NowFunc()
			return c
		},
		present: ca.present,
		canDelete: func(c class.Class) error {
			if len(ca.students(c.ID)) > 0 {
				return errClassNotEmpty
			}
			return nil
		},
	}

	cg := g.Group(class.Path, authed, roleMiddleware(user.DashboardRoles...))
	classes.register(cg, roleMiddleware(user.RoleAdmin))
	cg.GET("/:id/students", ca.queryStudents)
}

func (ca classApi) checkTeacher(teacherID string) error {
	if teacherID == "" {
		return nil
	}
	if acc, err := ca.db.Accounts.Get(teacherID); err != nil || !acc.IsTeacher() {
		return core.NewValidationError(nil, errUnknownTeacher)
	}
	return nil
}

func (ca classApi) students(classID string) []user.User {
	return ca.db.Users(func(u user.User) bool { return u.IsStudent() && u.ClassID == classID })
}

func (ca classApi) present(c class.Class) class.Class {
	c.TeacherName = ""
	if acc, err := ca.db.Accounts.Get(c.TeacherID); err == nil {
		c.TeacherName = acc.Name
	}
	c.StudentCount = len(ca.students(c.ID))
	return c
}

func (ca classApi) queryStudents(ctx echo.Context) error {
	c, err := ca.db.Classes.Get(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding class")
	}
	lp := bindList(ctx)
	students := filter(ca.students(c.ID), func(u user.User) bool {
		return contains(lp.Search, u.Name, u.Username, u.Email)
	})
	userSorts.apply(students, lp)
	page, p := paginate(students, lp)
	return respondPage(ctx, page, p)
}
