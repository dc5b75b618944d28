package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/activity"
	"github.com/trezcool/masomo-admin/core/quiz"
	"github.com/trezcool/masomo-admin/core/user"
	"github.com/trezcool/masomo-admin/storage/database/inmem"
)

var (
	errUnknownQuizType = core.FieldError{Field: "quizTypeId", Error: "quiz type does not exist"}
	errUnknownClass    = core.FieldError{Field: "classId", Error: "class does not exist"}
	errQuizTypeInUse   = echo.NewHTTPError(http.StatusConflict, "quiz type still has quizzes")
)

type quizApi struct {
	db *inmemdb.DB
}

func registerQuizAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	db := deps.DB
	qa := quizApi{db: db}
	write := roleMiddleware(user.DashboardRoles...)

	quizzes := &crud[quiz.Quiz, quiz.NewQuiz, quiz.UpdateQuiz]{
		label:     "Quiz",
		resource:  "quizzes",
		table:     db.Quizzes,
		db:        db,
		validator: deps.Validator,
		id:        quiz.ID,
		name:      func(q quiz.Quiz) string { return q.Title },
		matches: func(q quiz.Quiz, search string) bool {
			return contains(search, q.Title, q.Subject, q.Description)
		},
		sorts: sortFuncs[quiz.Quiz]{
			"title":     byString(func(q quiz.Quiz) string { return q.Title }),
			"subject":   byString(func(q quiz.Quiz) string { return q.Subject }),
			"duration":  byInt(func(q quiz.Quiz) int { return q.Duration }),
			"createdAt": byTime(func(q quiz.Quiz) time.Time { return q.CreatedAt }),
		},
		filters: map[string]func(quiz.Quiz, string) bool{
			"classId":     func(q quiz.Quiz, v string) bool { return q.ClassID == v },
			"quizTypeId":  func(q quiz.Quiz, v string) bool { return q.QuizTypeID == v },
			"isPublished": func(q quiz.Quiz, v string) bool { return (v == "true") == q.IsPublished },
		},
		cleanCreate: (*quiz.NewQuiz).Clean,
		cleanUpdate: (*quiz.UpdateQuiz).Clean,
		build: func(nq quiz.NewQuiz, by user.User) (quiz.Quiz, error) {
			if err := qa.checkRelations(nq.QuizTypeID, nq.ClassID); err != nil {
				return quiz.Quiz{}, err
			}
			now := inmemdb.NowFunc()
			return quiz.Quiz{
				Title:       nq.Title,
				Description: nq.Description,
				QuizTypeID:  nq.QuizTypeID,
				ClassID:     nq.ClassID,
				Subject:     nq.Subject,
				Duration:    nq.Duration,
				Questions:   nq.Questions,
				IsPublished: nq.IsPublished,
				CreatedBy:   by.ID,
				CreatedAt:   now,
				UpdatedAt:   now,
			}, nil
		},
		checkUpdate: func(uq quiz.UpdateQuiz) error {
			return qa.checkRelations(uq.QuizTypeID, uq.ClassID)
		},
		apply: func(q quiz.Quiz, uq quiz.UpdateQuiz) quiz.Quiz {
			q = quiz.Patch(q, uq)
			q.UpdatedAt = inmemdb.NowFunc()
			return q
		},
		present: qa.present,
	}

	types := &crud[quiz.QuizType, quiz.QuizTypeForm, quiz.QuizTypeForm]{
		label:     "Quiz type",
		resource:  "quiz-types",
		table:     db.QuizTypes,
		db:        db,
		validator: deps.Validator,
		id:        quiz.TypeID,
		name:      func(qt quiz.QuizType) string { return qt.Name },
		matches: func(qt quiz.QuizType, search string) bool {
			return contains(search, qt.Name, qt.Description)
		},
		sorts: sortFuncs[quiz.QuizType]{
			"name":     byString(func(qt quiz.QuizType) string { return qt.Name }),
			"xpReward": byInt(func(qt quiz.QuizType) int { return qt.XPReward }),
		},
		cleanCreate: (*quiz.QuizTypeForm).Clean,
		cleanUpdate: (*quiz.QuizTypeForm).Clean,
		build: func(f quiz.QuizTypeForm, _ user.User) (quiz.QuizType, error) {
			return quiz.PatchType(quiz.QuizType{CreatedAt: inmemdb.NowFunc()}, f), nil
		},
		apply: quiz.PatchType,
		present: func(qt quiz.QuizType) quiz.QuizType {
			qt.QuizCount = len(filter(db.Quizzes.All(), func(q quiz.Quiz) bool { return q.QuizTypeID == qt.ID }))
			return qt
		},
		canDelete: func(qt quiz.QuizType) error {
			if _, used := db.Quizzes.Find(func(q quiz.Quiz) bool { return q.QuizTypeID == qt.ID }); used {
				return errQuizTypeInUse
			}
			return nil
		},
	}

	qg := g.Group(quiz.Path, authed, roleMiddleware(user.DashboardRoles...))
	quizzes.register(qg, write)
	qg.GET("/:id/statistics", qa.statistics)
	qg.PATCH("/:id/publish", qa.publish)

	tg := g.Group(quiz.TypePath, authed, roleMiddleware(user.DashboardRoles...))
	types.register(tg, roleMiddleware(user.RoleAdmin))
}

func (qa quizApi) checkRelations(quizTypeID, classID string) error {
	var fields []core.FieldError
	if _, err := qa.db.QuizTypes.Get(quizTypeID); err != nil {
		fields = append(fields, errUnknownQuizType)
	}
	if _, err := qa.db.Classes.Get(classID); err != nil {
		fields = append(fields, errUnknownClass)
	}
	if len(fields) > 0 {
		return core.NewValidationError(nil, fields...)
	}
	return nil
}

func (qa quizApi) present(q quiz.Quiz) quiz.Quiz {
	q.QuizTypeName, q.ClassName = "", ""
	if qt, err := qa.db.QuizTypes.Get(q.QuizTypeID); err == nil {
		q.QuizTypeName = qt.Name
	}
	if c, err := qa.db.Classes.Get(q.ClassID); err == nil {
		q.ClassName = c.Name
	}
	if q.Questions == nil {
		q.Questions = []quiz.Question{}
	}
	return q
}

func (qa quizApi) statistics(ctx echo.Context) error {
	q, err := qa.db.Quizzes.Get(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding quiz")
	}
	// attempts are taken in the student portal; the sandbox has none
	return respondOK(ctx, quiz.Statistics{QuizID: q.ID})
}

type publishRequest struct {
	IsPublished bool `json:"isPublished"`
}

func (qa quizApi) publish(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	var data publishRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to publishRequest")
	}
	q, err := qa.db.Quizzes.Update(ctx.Param("id"), func(q *quiz.Quiz) error {
		q.IsPublished = data.IsPublished
		q.UpdatedAt = inmemdb.NowFunc()
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "publishing quiz")
	}
	desc := "Quiz \"" + q.Title + "\" unpublished"
	if q.IsPublished {
		desc = "Quiz \"" + q.Title + "\" published"
	}
	qa.db.Log(usr, activity.ActionUpdate, "quizzes", q.ID, desc, ctx.RealIP())
	return respondOK(ctx, qa.present(q), desc)
}
