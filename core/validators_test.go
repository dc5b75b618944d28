package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type testForm struct {
	Name         string `json:"name" validate:"required,notblank"`
	Username     string `json:"username" validate:"omitempty,alphanum_"`
	Semester     string `json:"semester" validate:"required,semester"`
	AcademicYear string `json:"academicYear" validate:"omitempty,academicyear"`
	Internal     string `json:"-" validate:"omitempty,max=2"`
}

func TestValidator_Struct(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name string
		form testForm
		want map[string]string
	}{
		{name: "valid", form: testForm{Name: "X IPA 1", Username: "bu_sari", Semester: SemesterOdd, AcademicYear: "2024/2025"}},
		{name: "required", form: testForm{}, want: map[string]string{"name": "this field is required", "semester": "this field is required"}},
		{name: "blank", form: testForm{Name: "   ", Semester: SemesterEven}, want: map[string]string{"name": "this field cannot be blank"}},
		{name: "alphanum_", form: testForm{Name: "a", Username: "sari!", Semester: SemesterEven}, want: map[string]string{"username": alphaNumUnderText}},
		{name: "semester", form: testForm{Name: "a", Semester: "ganjil"}, want: map[string]string{"semester": semesterText}},
		{name: "academic year format", form: testForm{Name: "a", Semester: SemesterOdd, AcademicYear: "2024-2025"}, want: map[string]string{"academicYear": academicYearText}},
		{name: "academic year span", form: testForm{Name: "a", Semester: SemesterOdd, AcademicYear: "2024/2026"}, want: map[string]string{"academicYear": academicYearText}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.form)
			if tt.want == nil {
				assert.NoError(t, err)
				assert.Nil(t, v.Check(tt.form))
				return
			}
			if assert.IsType(t, &ValidationError{}, err) {
				assert.Equal(t, tt.want, err.(*ValidationError).FieldMap())
			}
			assert.Equal(t, tt.want, v.Check(tt.form))
		})
	}
}

func TestValidator_NotAStruct(t *testing.T) {
	v := NewValidator()
	err := v.Struct(42)
	assert.Error(t, err)
	assert.IsType(t, map[string]string{}, v.Check(42))
}

func TestAcademicYear(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{date: time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), want: "2024/2025"},
		{date: time.Date(2025, time.June, 30, 23, 0, 0, 0, time.UTC), want: "2024/2025"},
		{date: time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), want: "2024/2025"},
		{date: time.Date(2025, time.December, 10, 0, 0, 0, 0, time.UTC), want: "2025/2026"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AcademicYear(tt.date), tt.date.String())
	}
}

func TestValidationError(t *testing.T) {
	assert.Equal(t, "", ValidationError{}.Error())
	assert.Nil(t, ValidationError{}.FieldMap())

	err := NewValidationErrorFromMap(map[string]string{"title": "this field is required"})
	assert.Equal(t, "invalid input", err.Error())
	assert.Equal(t, map[string]string{"title": "this field is required"}, err.(*ValidationError).FieldMap())
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Bu Sari", CleanString("  Bu Sari \n"))
	assert.Equal(t, "sari@masomo.test", CleanString(" SARI@masomo.test ", true))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "Aljabar Dasar", n: 20, want: "Aljabar Dasar"},
		{in: "Aljabar Dasar", n: 8, want: "Aljabar…"},
		{in: "Aljabar", n: 1, want: "…"},
		{in: "Aljabar", n: 0, want: "Aljabar"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Truncate(tt.in, tt.n))
	}
}
