package class

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-admin/core"
)

func TestNewClassValidation(t *testing.T) {
	v := core.NewValidator()
	tests := []struct {
		name      string
		form      NewClass
		wantField string
	}{
		{name: "valid", form: NewClass{Name: "X IPA 1", Grade: 10, Semester: core.SemesterEven, AcademicYear: "2024/2025"}},
		{name: "no name", form: NewClass{Semester: core.SemesterEven, AcademicYear: "2024/2025"}, wantField: "name"},
		{name: "bad semester", form: NewClass{Name: "X", Semester: "ganjil", AcademicYear: "2024/2025"}, wantField: "semester"},
		{name: "bad year", form: NewClass{Name: "X", Semester: core.SemesterOdd, AcademicYear: "2024/2026"}, wantField: "academicYear"},
		{name: "bad grade", form: NewClass{Name: "X", Grade: 13, Semester: core.SemesterOdd, AcademicYear: "2024/2025"}, wantField: "grade"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.Check(tt.form)
			if tt.wantField == "" {
				assert.Nil(t, errs)
				return
			}
			assert.Contains(t, errs, tt.wantField)
		})
	}
}

func TestDefaultAcademicYear(t *testing.T) {
	assert.Equal(t, "2024/2025", core.AcademicYear(time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2023/2024", core.AcademicYear(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)))
}

func TestPatchAndLabel(t *testing.T) {
	c := Class{ID: "c1", Name: "X IPA 1", Semester: core.SemesterOdd, AcademicYear: "2024/2025", TeacherID: "u1", TeacherName: "Bu Sari", StudentCount: 30}

	got := Patch(c, UpdateClass{Name: "X IPA 2", Semester: core.SemesterEven, AcademicYear: "2024/2025", TeacherID: "u2"})
	assert.Equal(t, "X IPA 2", got.Name)
	assert.Empty(t, got.TeacherName)
	assert.Equal(t, 30, got.StudentCount)
	assert.Equal(t, "X IPA 1 (Ganjil 2024/2025)", c.Label())
	assert.Equal(t, "X", Class{Name: "X"}.Label())
	assert.Equal(t, c, Patch(c, EditForm(c)))
}
