package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core/activity"
	"github.com/trezcool/masomo-admin/core/api"
	"github.com/trezcool/masomo-admin/core/class"
	"github.com/trezcool/masomo-admin/core/controller"
	"github.com/trezcool/masomo-admin/core/exam"
	"github.com/trezcool/masomo-admin/core/quiz"
	"github.com/trezcool/masomo-admin/core/studyresource"
	"github.com/trezcool/masomo-admin/core/user"
	"github.com/trezcool/masomo-admin/core/xp"
)

const timeLayout = "2006-01-02 15:04"

// resourceCommand runs the generic commands against one backend collection.
type resourceCommand interface {
	list(ctx context.Context, cli *commandLine, q api.Query, lv localView) error
	delete(ctx context.Context, cli *commandLine, confirmer controller.Confirmer, id string) error
	watch(ctx context.Context, cli *commandLine, q api.Query, lv localView, interval time.Duration, times int) error
}

// localView re-sorts and narrows the fetched page without another request.
type localView struct {
	sort, order, match string
}

type resourceCmd[T any, F any] struct {
	roles    []string
	gateway  func(cli *commandLine) controller.Gateway[T]
	id       func(T) string
	label    func(T) string
	patch    func(T, F) T
	header   []string
	row      func(T) []string
	messages controller.Messages
}

var resources = map[string]resourceCommand{
	"quizzes": resourceCmd[quiz.Quiz, quiz.UpdateQuiz]{
		gateway: func(cli *commandLine) controller.Gateway[quiz.Quiz] { return quiz.NewGateway(cli.client) },
		id:      quiz.ID,
		label:   func(q quiz.Quiz) string { return "quiz " + strconv.Quote(q.Title) },
		patch:   quiz.Patch,
		header:  []string{"ID", "TITLE", "TYPE", "CLASS", "SUBJECT", "PUBLISHED"},
		row: func(q quiz.Quiz) []string {
			return []string{q.ID, q.Title, q.QuizTypeName, q.ClassName, q.Subject, yesNo(q.IsPublished)}
		},
		messages: controller.Messages{Created: "Quiz created", Updated: "Quiz updated", Deleted: "Quiz deleted"},
	},
	"quiz-types": resourceCmd[quiz.QuizType, quiz.QuizTypeForm]{
		gateway: func(cli *commandLine) controller.Gateway[quiz.QuizType] { return quiz.NewGateway(cli.client).Types },
		id:      quiz.TypeID,
		label:   func(qt quiz.QuizType) string { return "quiz type " + strconv.Quote(qt.Name) },
		patch:   quiz.PatchType,
		header:  []string{"ID", "NAME", "XP", "QUIZZES"},
		row: func(qt quiz.QuizType) []string {
			return []string{qt.ID, qt.Name, strconv.Itoa(qt.XPReward), strconv.Itoa(qt.QuizCount)}
		},
		messages: controller.Messages{Created: "Quiz type created", Updated: "Quiz type updated", Deleted: "Quiz type deleted"},
	},
	"exams": resourceCmd[exam.Exam, exam.UpdateExam]{
		gateway: func(cli *commandLine) controller.Gateway[exam.Exam] { return exam.NewGateway(cli.client) },
		id:      exam.ID,
		label:   func(e exam.Exam) string { return "exam " + strconv.Quote(e.Title) },
		patch:   exam.Patch,
		header:  []string{"ID", "TITLE", "CLASS", "DATE", "STATUS"},
		row: func(e exam.Exam) []string {
			return []string{e.ID, e.Title, e.ClassName, e.Date.Local().Format(timeLayout), e.Status}
		},
		messages: controller.Messages{Created: "Exam created", Updated: "Exam updated", Deleted: "Exam deleted"},
	},
	"classes": resourceCmd[class.Class, class.UpdateClass]{
		gateway: func(cli *commandLine) controller.Gateway[class.Class] { return class.NewGateway(cli.client) },
		id:      class.ID,
		label:   func(c class.Class) string { return "class " + strconv.Quote(c.Label()) },
		patch:   class.Patch,
		header:  []string{"ID", "NAME", "SEMESTER", "YEAR", "TEACHER", "STUDENTS"},
		row: func(c class.Class) []string {
			return []string{c.ID, c.Name, c.Semester, c.AcademicYear, c.TeacherName, strconv.Itoa(c.StudentCount)}
		},
		messages: controller.Messages{Created: "Class created", Updated: "Class updated", Deleted: "Class deleted"},
	},
	"resources": resourceCmd[studyresource.Resource, studyresource.Form]{
		gateway: func(cli *commandLine) controller.Gateway[studyresource.Resource] {
			return studyresource.NewGateway(cli.client)
		},
		id:     studyresource.ID,
		label:  func(r studyresource.Resource) string { return "resource " + strconv.Quote(r.Title) },
		patch:  studyresource.Patch,
		header: []string{"ID", "TITLE", "TYPE", "SIZE", "DOWNLOADS"},
		row: func(r studyresource.Resource) []string {
			return []string{r.ID, r.Title, r.Type, r.SizeLabel(), strconv.Itoa(r.Downloads)}
		},
		messages: controller.Messages{Created: "Resource created", Updated: "Resource updated", Deleted: "Resource deleted"},
	},
	"milestones": resourceCmd[xp.Milestone, xp.MilestoneForm]{
		gateway: func(cli *commandLine) controller.Gateway[xp.Milestone] { return xp.NewGateway(cli.client) },
		id:      xp.ID,
		label:   func(m xp.Milestone) string { return "milestone " + strconv.Quote(m.Name) },
		patch:   xp.Patch,
		header:  []string{"ID", "NAME", "XP REQUIRED", "BADGE"},
		row: func(m xp.Milestone) []string {
			return []string{m.ID, m.Name, strconv.Itoa(m.XPRequired), m.Badge}
		},
		messages: controller.Messages{Created: "Milestone created", Updated: "Milestone updated", Deleted: "Milestone deleted"},
	},
	"xp-transactions": resourceCmd[xp.Transaction, struct{}]{
		gateway: func(cli *commandLine) controller.Gateway[xp.Transaction] {
			return xp.NewGateway(cli.client).TransactionResource()
		},
		header: []string{"ID", "USER", "POINTS", "SOURCE", "REASON", "AT"},
		row: func(tx xp.Transaction) []string {
			return []string{tx.ID, tx.UserName, fmt.Sprintf("%+d", tx.Points), tx.Source, tx.Reason, tx.CreatedAt.Local().Format(timeLayout)}
		},
	},
	"users": resourceCmd[user.User, user.UpdateProfile]{
		roles:   []string{user.RoleAdmin},
		gateway: func(cli *commandLine) controller.Gateway[user.User] { return cli.usrSvc.Users() },
		id:      func(u user.User) string { return u.ID },
		header:  []string{"ID", "NAME", "USERNAME", "ROLE", "XP", "ACTIVE"},
		row: func(u user.User) []string {
			return []string{u.ID, u.Name, u.Username, u.Role, strconv.Itoa(u.TotalXP), yesNo(u.IsActive)}
		},
	},
	"activities": resourceCmd[activity.Activity, struct{}]{
		roles:   []string{user.RoleAdmin},
		gateway: func(cli *commandLine) controller.Gateway[activity.Activity] { return activity.NewGateway(cli.client) },
		id:      activity.ID,
		header:  []string{"AT", "USER", "ACTION", "RESOURCE", "DESCRIPTION"},
		row: func(a activity.Activity) []string {
			return []string{a.CreatedAt.Local().Format(timeLayout), a.UserName, a.Action, a.Resource, a.Description}
		},
	},
}

func resourceNames() []string {
	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (rc resourceCmd[T, F]) controller(cli *commandLine, confirmer controller.Confirmer, q api.Query) *controller.ListController[T, F] {
	roles := rc.roles
	if roles == nil {
		roles = user.DashboardRoles
	}
	return controller.New(controller.Options[T, F]{
		Gateway:     rc.gateway(cli),
		Cache:       cli.cache,
		Session:     cli.store,
		Guard:       cli.guard,
		Notifier:    cli.notifier,
		Navigator:   cli.nav,
		Confirmer:   confirmer,
		Validator:   cli.validator,
		Logger:      cli.logger,
		Roles:       roles,
		SearchDelay: cli.conf.SearchDebounce,
		Query:       q,
		ID:          rc.id,
		Patch:       rc.patch,
		Messages:    rc.messages,
	})
}

func (rc resourceCmd[T, F]) list(ctx context.Context, cli *commandLine, q api.Query, lv localView) error {
	if _, err := rc.local(nil, lv); err != nil {
		return err
	}
	lc := rc.controller(cli, cli.confirmer, q)
	defer lc.Close()

	if err := lc.Load(ctx); err != nil {
		return err
	}
	rc.print(cli, lc.State(), lv)
	return nil
}

func (rc resourceCmd[T, F]) delete(ctx context.Context, cli *commandLine, confirmer controller.Confirmer, id string) error {
	if rc.id == nil || rc.label == nil {
		return errors.New("this resource is read-only")
	}
	lc := rc.controller(cli, confirmer, api.Query{})
	defer lc.Close()

	item, err := lc.Detail(ctx, id)
	if err != nil {
		return err
	}
	return lc.Delete(ctx, id, rc.label(item))
}

// watch prints the first page then re-polls it every `interval`, `times` times or until interrupted.
func (rc resourceCmd[T, F]) watch(ctx context.Context, cli *commandLine, q api.Query, lv localView, interval time.Duration, times int) error {
	if interval <= 0 {
		return errors.New("interval must be positive")
	}
	if _, err := rc.local(nil, lv); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	lc := rc.controller(cli, cli.confirmer, q)
	defer lc.Close()
	if err := lc.Load(ctx); err != nil {
		return err
	}
	rc.print(cli, lc.State(), lv)

	var (
		once    sync.Once
		done    = make(chan struct{})
		mu      sync.Mutex
		polls   int
		lastErr error
	)
	finish := func(err error) {
		once.Do(func() {
			lastErr = err
			close(done)
		})
	}
	poller := controller.NewPoller(interval, func(ctx context.Context) error {
		if err := lc.Retry(ctx); err != nil {
			return err
		}
		rc.print(cli, lc.State(), lv)
		mu.Lock()
		polls++
		n := polls
		mu.Unlock()
		if times > 0 && n >= times {
			finish(nil)
		}
		return nil
	}, func(err error) {
		// a torn down session ends the watch; other failures wait for the next tick
		if api.IsUnauthorized(err) || errors.Cause(err) == controller.ErrNotAuthorized {
			finish(err)
			return
		}
		cli.logger.Warn("refreshing watched list", err)
		fmt.Fprintf(cli.out, "refresh failed: %s\n", api.Message(err, controller.FallbackMessage))
	})
	poller.Start(ctx)
	defer poller.Stop()

	select {
	case <-done:
		return lastErr
	case <-ctx.Done():
		return nil
	}
}

// column returns the index of the header `name` refers to, e.g. "xp-required" for "XP REQUIRED".
func (rc resourceCmd[T, F]) column(name string) (int, error) {
	names := make([]string, len(rc.header))
	for i, h := range rc.header {
		names[i] = strings.ToLower(strings.ReplaceAll(h, " ", "-"))
		if strings.EqualFold(names[i], name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%q: no such column, use one of %s", name, strings.Join(names, ", "))
}

func (rc resourceCmd[T, F]) local(items []T, lv localView) ([]T, error) {
	if lv.order != api.OrderAsc && lv.order != api.OrderDesc {
		return nil, fmt.Errorf("%q: local order must be asc or desc", lv.order)
	}
	if lv.match != "" {
		items = controller.FilterLocal(items, func(item T) bool {
			return controller.MatchText(lv.match, rc.row(item)...)
		})
	}
	if lv.sort == "" {
		return items, nil
	}
	col, err := rc.column(lv.sort)
	if err != nil {
		return nil, err
	}
	return controller.SortLocal(items, func(a, b T) bool {
		return lessCell(rc.row(a)[col], rc.row(b)[col])
	}, lv.order), nil
}

// lessCell compares two table cells, numerically when both are numbers.
func lessCell(a, b string) bool {
	if x, err := strconv.Atoi(a); err == nil {
		if y, err := strconv.Atoi(b); err == nil {
			return x < y
		}
	}
	return strings.ToLower(a) < strings.ToLower(b)
}

func (rc resourceCmd[T, F]) print(cli *commandLine, st controller.State[T], lv localView) {
	if st.Empty() {
		fmt.Fprintln(cli.out, "Nothing found.")
		return
	}
	items, err := rc.local(st.Page.Items, lv)
	if err != nil {
		items = st.Page.Items
	}
	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(rc.header, "\t"))
	for _, item := range items {
		fmt.Fprintln(w, strings.Join(rc.row(item), "\t"))
	}
	_ = w.Flush()

	p := st.Page.Pagination
	if len(items) != len(st.Page.Items) {
		fmt.Fprintf(cli.out, "page %d/%d (%d items, %d shown)\n", p.CurrentPage, p.TotalPages, p.TotalItems, len(items))
		return
	}
	fmt.Fprintf(cli.out, "page %d/%d (%d items)\n", p.CurrentPage, p.TotalPages, p.TotalItems)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
