package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/exam"
	"github.com/trezcool/masomo-admin/core/user"
	"github.com/trezcool/masomo-admin/storage/database/inmem"
)

type examApi struct {
	db *inmemdb.DB
}

func registerExamAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	db := deps.DB
	ea := examApi{db: db}

	exams := &crud[exam.Exam, exam.NewExam, exam.UpdateExam]{
		label:     "Exam",
		resource:  "exams",
		table:     db.Exams,
		db:        db,
		validator: deps.Validator,
		id:        exam.ID,
		name:      func(e exam.Exam) string { return e.Title },
		matches: func(e exam.Exam, search string) bool {
			return contains(search, e.Title, e.Subject, e.Description)
		},
		sorts: sortFuncs[exam.Exam]{
			"title":   byString(func(e exam.Exam) string { return e.Title }),
			"subject": byString(func(e exam.Exam) string { return e.Subject }),
			"date":    byTime(func(e exam.Exam) time.Time { return e.Date }),
		},
		filters: map[string]func(exam.Exam, string) bool{
			"classId":  func(e exam.Exam, v string) bool { return e.ClassID == v },
			"semester": func(e exam.Exam, v string) bool { return e.Semester == v },
			"status":   func(e exam.Exam, v string) bool { return e.Status == v },
		},
		cleanCreate: (*exam.NewExam).Clean,
		cleanUpdate: (*exam.UpdateExam).Clean,
		build: func(ne exam.NewExam, _ user.User) (exam.Exam, error) {
			if err := ea.checkClass(ne.ClassID); err != nil {
				return exam.Exam{}, err
			}
			now := inmemdb.NowFunc()
			e := exam.Exam{CreatedAt: now, UpdatedAt: now}
			return exam.Patch(e, exam.UpdateExam(ne)), nil
		},
		checkUpdate: func(ue exam.UpdateExam) error {
			return ea.checkClass(ue.ClassID)
		},
		apply: func(e exam.Exam, ue exam.UpdateExam) exam.Exam {
			e = exam.Patch(e, ue)
			e.UpdatedAt = inmemdb.NowFunc()
			return e
		},
		present: ea.present,
	}

	eg := g.Group(exam.Path, authed, roleMiddleware(user.DashboardRoles...))
	exams.register(eg, roleMiddleware(user.DashboardRoles...))
	eg.GET("/:id/results", ea.results)
}

func (ea examApi) checkClass(classID string) error {
	if _, err := ea.db.Classes.Get(classID); err != nil {
		return core.NewValidationError(nil, errUnknownClass)
	}
	return nil
}

// status derives where the exam stands relative to `now`.
func status(e exam.Exam, now time.Time) string {
	end := e.Date.Add(time.Duration(e.Duration) * time.Minute)
	switch {
	case now.Before(e.Date):
		return exam.StatusScheduled
	case now.Before(end):
		return exam.StatusOngoing
	default:
		return exam.StatusCompleted
	}
}

func (ea examApi) present(e exam.Exam) exam.Exam {
	e.ClassName = ""
	if c, err := ea.db.Classes.Get(e.ClassID); err == nil {
		e.ClassName = c.Name
	}
	e.Status = status(e, inmemdb.NowFunc())
	return e
}

var resultSorts = sortFuncs[exam.Result]{
	"studentName": byString(func(r exam.Result) string { return r.StudentName }),
	"score":       func(a, b exam.Result) bool { return a.Score < b.Score },
	"submittedAt": byTime(func(r exam.Result) time.Time { return r.SubmittedAt }),
}

func (ea examApi) results(ctx echo.Context) error {
	e, err := ea.db.Exams.Get(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding exam")
	}
	lp := bindList(ctx)
	results := filter(ea.db.Results.All(), func(r exam.Result) bool {
		return r.ExamID == e.ID && contains(lp.Search, r.StudentName)
	})
	resultSorts.apply(results, lp)
	page, p := paginate(results, lp)
	return respondPage(ctx, page, p)
}
