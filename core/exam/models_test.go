package exam

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-admin/core"
)

func TestNewExamValidation(t *testing.T) {
	v := core.NewValidator()
	date := time.Date(2024, 11, 4, 8, 0, 0, 0, time.UTC)
	valid := NewExam{Title: "UTS Matematika", ClassID: "c1", Subject: "Matematika", Date: date, Duration: 90, TotalScore: 100, PassingScore: 70, Semester: core.SemesterOdd}

	tests := []struct {
		name      string
		mutate    func(*NewExam)
		wantField string
	}{
		{name: "valid", mutate: func(*NewExam) {}},
		{name: "no date", mutate: func(ne *NewExam) { ne.Date = time.Time{} }, wantField: "date"},
		{name: "passing above total", mutate: func(ne *NewExam) { ne.PassingScore = 120 }, wantField: "passingScore"},
		{name: "unknown semester", mutate: func(ne *NewExam) { ne.Semester = "Summer" }, wantField: "semester"},
		{name: "no semester", mutate: func(ne *NewExam) { ne.Semester = "" }, wantField: "semester"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ne := valid
			tt.mutate(&ne)
			errs := v.Check(ne)
			if tt.wantField == "" {
				assert.Nil(t, errs)
				return
			}
			assert.Contains(t, errs, tt.wantField)
		})
	}
}

func TestPatch(t *testing.T) {
	date := time.Date(2024, 11, 4, 8, 0, 0, 0, time.UTC)
	e := Exam{ID: "e1", Title: "UTS", ClassID: "c1", ClassName: "X IPA 1", Date: date, Status: StatusScheduled}

	same := Patch(e, UpdateExam{Title: "UTS Ganjil", ClassID: "c1", Date: date})
	assert.Equal(t, "UTS Ganjil", same.Title)
	assert.Equal(t, "X IPA 1", same.ClassName)
	assert.Equal(t, StatusScheduled, same.Status)

	moved := Patch(e, UpdateExam{Title: "UTS", ClassID: "c2", Date: date.Add(24 * time.Hour)})
	assert.Empty(t, moved.ClassName)
	assert.Empty(t, moved.Status)
}

func TestPassRate(t *testing.T) {
	assert.Equal(t, 0.0, PassRate(nil))
	assert.Equal(t, 0.5, PassRate([]Result{{Passed: true}, {Passed: false}}))
}
