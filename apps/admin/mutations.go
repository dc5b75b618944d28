package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/api"
	"github.com/trezcool/masomo-admin/core/class"
	"github.com/trezcool/masomo-admin/core/controller"
	"github.com/trezcool/masomo-admin/core/quiz"
	"github.com/trezcool/masomo-admin/core/user"
	"github.com/trezcool/masomo-admin/core/xp"
)

func (cli *commandLine) createClass(ctx context.Context, name, semester, year string, grade int, teacherID string) error {
	form := class.NewClass{Name: name, Grade: grade, Semester: semester, AcademicYear: year, TeacherID: teacherID}
	form.Clean()

	lc := resourceCmd[class.Class, class.NewClass]{
		roles:    []string{user.RoleAdmin},
		gateway:  func(cli *commandLine) controller.Gateway[class.Class] { return class.NewGateway(cli.client) },
		id:       class.ID,
		messages: controller.Messages{Created: "Class created"},
	}.controller(cli, cli.confirmer, api.Query{})
	defer lc.Close()

	c, err := lc.Create(ctx, form)
	if err != nil {
		return cli.formFailed(err)
	}
	fmt.Fprintf(cli.out, "%s  %s\n", c.ID, c.Label())
	return nil
}

func (cli *commandLine) renameQuiz(ctx context.Context, id, title string) error {
	lc := resources["quizzes"].(resourceCmd[quiz.Quiz, quiz.UpdateQuiz]).controller(cli, cli.confirmer, api.Query{})
	defer lc.Close()

	q, err := lc.Detail(ctx, id)
	if err != nil {
		return err
	}
	form := quiz.EditForm(q)
	form.Title = title
	form.Clean()
	if _, err = lc.Update(ctx, id, form); err != nil {
		return cli.formFailed(err)
	}
	return nil
}

func (cli *commandLine) awardXP(ctx context.Context, userID string, points int, reason string) error {
	if !cli.store.IsValidAuth() {
		return controller.ErrNotAuthorized
	}
	if !hasAnyRole(*cli.store.User(), user.DashboardRoles) {
		return controller.ErrForbiddenRole
	}
	award := xp.Award{UserID: userID, Points: points, Reason: reason}
	award.Clean()
	if fields := cli.validator.Check(award); fields != nil {
		cli.printFields(fields)
		return core.NewValidationErrorFromMap(fields)
	}

	tx, err := xp.NewGateway(cli.client).Award(ctx, award)
	if err != nil {
		cli.notifier.Error(api.Message(err, controller.FallbackMessage))
		return err
	}
	cli.cache.Invalidate(xp.NewGateway(cli.client).TransactionResource().Name())
	cli.notifier.Success(fmt.Sprintf("Awarded %+d XP to %s", tx.Points, tx.UserName))
	return nil
}

// formFailed prints the inline field errors of a blocked submission.
func (cli *commandLine) formFailed(err error) error {
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		return err
	}
	cli.printFields(vErr.FieldMap())
	return err
}

func (cli *commandLine) printFields(fields map[string]string) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(cli.out, "  %s: %s\n", name, fields[name])
	}
}
