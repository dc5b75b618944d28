package inmemdb

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/class"
	"github.com/trezcool/masomo-admin/core/exam"
	"github.com/trezcool/masomo-admin/core/quiz"
	"github.com/trezcool/masomo-admin/core/studyresource"
	"github.com/trezcool/masomo-admin/core/user"
	"github.com/trezcool/masomo-admin/core/xp"
)

// Seed fills an empty DB with a small school: one admin, one teacher, three students and their
// classes, quizzes, exams, resources and XP history. Every account gets `password`.
func Seed(db *DB, password string) error {
	now := NowFunc()

	admin, err := db.CreateAccount(user.User{Name: "Admin Masomo", Username: "admin", Email: "admin@masomo.test", Role: user.RoleAdmin, IsActive: true}, password)
	if err != nil {
		return errors.Wrap(err, "creating admin")
	}
	teacher, err := db.CreateAccount(user.User{Name: "Bu Sari", Username: "sari", Email: "sari@masomo.test", Role: user.RoleTeacher, IsActive: true}, password)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}

	year := core.AcademicYear(now)
	ipa := db.Classes.Insert(class.Class{Name: "X IPA 1", Grade: 10, Semester: core.SemesterOdd, AcademicYear: year, TeacherID: teacher.ID, CreatedAt: now, UpdatedAt: now})
	ips := db.Classes.Insert(class.Class{Name: "X IPS 2", Grade: 10, Semester: core.SemesterOdd, AcademicYear: year, CreatedAt: now, UpdatedAt: now})

	var students []Account
	for i, s := range []struct{ name, username string }{{"Andi", "andi"}, {"Budi", "budi"}, {"Citra", "citra"}} {
		classID := ipa.ID
		if i == 2 {
			classID = ips.ID
		}
		acc, err := db.CreateAccount(user.User{Name: s.name, Username: s.username, Email: s.username + "@masomo.test", Role: user.RoleStudent, ClassID: classID, IsActive: true, Level: 1}, password)
		if err != nil {
			return errors.Wrapf(err, "creating student %s", s.username)
		}
		students = append(students, acc)
	}

	daily := db.QuizTypes.Insert(quiz.QuizType{Name: "Latihan Harian", XPReward: 10, CreatedAt: now})
	db.QuizTypes.Insert(quiz.QuizType{Name: "Ulangan", Description: "Ulangan akhir bab", XPReward: 50, CreatedAt: now})

	questions := []quiz.Question{
		{Text: "2 + 2 = ?", Options: []string{"3", "4", "5"}, CorrectAnswer: 1, Points: 10},
		{Text: "x + 3 = 5, x = ?", Options: []string{"1", "2", "8"}, CorrectAnswer: 1, Points: 10},
	}
	for _, title := range []string{"Aljabar Dasar", "Persamaan Linear", "Geometri Bidang"} {
		db.Quizzes.Insert(quiz.Quiz{
			Title:       title,
			QuizTypeID:  daily.ID,
			ClassID:     ipa.ID,
			Subject:     "Matematika",
			Duration:    30,
			Questions:   questions,
			IsPublished: title != "Geometri Bidang",
			CreatedBy:   teacher.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	midterm := db.Exams.Insert(exam.Exam{
		Title:        "UTS Matematika",
		ClassID:      ipa.ID,
		Subject:      "Matematika",
		Date:         now.Add(-7 * 24 * time.Hour),
		Duration:     90,
		TotalScore:   100,
		PassingScore: 70,
		Semester:     core.SemesterOdd,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	db.Exams.Insert(exam.Exam{
		Title:        "UAS Matematika",
		ClassID:      ipa.ID,
		Subject:      "Matematika",
		Date:         now.Add(30 * 24 * time.Hour),
		Duration:     120,
		TotalScore:   100,
		PassingScore: 70,
		Semester:     core.SemesterOdd,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	for i, score := range []float64{85, 62} {
		db.Results.Insert(exam.Result{
			ExamID:      midterm.ID,
			StudentID:   students[i].ID,
			StudentName: students[i].Name,
			Score:       score,
			Passed:      score >= float64(midterm.PassingScore),
			SubmittedAt: midterm.Date.Add(time.Hour),
		})
	}

	db.Resources.Insert(studyresource.Resource{
		Title:     "Modul Aljabar",
		Subject:   "Matematika",
		ClassID:   ipa.ID,
		Type:      studyresource.TypePDF,
		FileURL:   "https://cdn.masomo.test/modul-aljabar.pdf",
		FileSize:  5 * 1024 * 1024,
		CreatedAt: now,
		UpdatedAt: now,
	})
	db.Resources.Insert(studyresource.Resource{
		Title:     "Video Persamaan Linear",
		Subject:   "Matematika",
		Type:      studyresource.TypeVideo,
		FileURL:   "https://cdn.masomo.test/persamaan-linear.mp4",
		FileSize:  220 * 1024 * 1024,
		CreatedAt: now,
		UpdatedAt: now,
	})

	for _, m := range []xp.Milestone{
		{Name: "Perunggu", XPRequired: 100},
		{Name: "Perak", XPRequired: 500},
		{Name: "Emas", XPRequired: 1000},
	} {
		m.CreatedAt = now
		db.Milestones.Insert(m)
	}

	for i, pts := range []int{120, 40} {
		if _, err := db.AwardXP(admin.User, students[i].ID, pts, "Latihan harian", xp.SourceQuiz); err != nil {
			return errors.Wrapf(err, "awarding xp to %s", students[i].Username)
		}
	}
	return nil
}

// AwardXP records an XP transaction and moves the user's total and level accordingly.
func (db *DB) AwardXP(by user.User, userID string, points int, reason, source string) (xp.Transaction, error) {
	acc, err := db.Accounts.Update(userID, func(a *Account) error {
		a.TotalXP += points
		if a.TotalXP < 0 {
			a.TotalXP = 0
		}
		a.Level = Level(a.TotalXP)
		a.UpdatedAt = NowFunc()
		return nil
	})
	if err != nil {
		return xp.Transaction{}, err
	}
	return db.Transactions.Insert(xp.Transaction{
		UserID:    acc.ID,
		UserName:  acc.Name,
		Points:    points,
		Reason:    reason,
		Source:    source,
		CreatedBy: by.ID,
		CreatedAt: NowFunc(),
	}), nil
}

// Level is one level per 100 XP, starting at 1.
func Level(totalXP int) int {
	return totalXP/100 + 1
}
