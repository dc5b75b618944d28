package class

import (
	"time"

	"github.com/trezcool/masomo-admin/core"
)

type (
	Class struct {
		ID           string    `json:"_id"`
		Name         string    `json:"name"`
		Grade        int       `json:"grade"`
		Semester     string    `json:"semester"`
		AcademicYear string    `json:"academicYear"`
		TeacherID    string    `json:"teacherId,omitempty"`
		TeacherName  string    `json:"teacherName,omitempty"` // server computed
		StudentCount int       `json:"studentCount"`          // server computed
		CreatedAt    time.Time `json:"createdAt"`
		UpdatedAt    time.Time `json:"updatedAt"`
	}

	// NewClass is the create-class form.
	NewClass struct {
		Name         string `json:"name" validate:"required,notblank,max=50"`
		Grade        int    `json:"grade" validate:"omitempty,min=1,max=12"`
		Semester     string `json:"semester" validate:"required,semester"`
		AcademicYear string `json:"academicYear" validate:"required,academicyear"`
		TeacherID    string `json:"teacherId,omitempty"`
	}

	// UpdateClass is the edit-class form; it replaces the editable fields.
	UpdateClass NewClass
)

func (nc *NewClass) Clean() {
	nc.Name = core.CleanString(nc.Name)
	nc.Semester = core.CleanString(nc.Semester)
	nc.AcademicYear = core.CleanString(nc.AcademicYear)
	nc.TeacherID = core.CleanString(nc.TeacherID)
}

func (uc *UpdateClass) Clean() {
	(*NewClass)(uc).Clean()
}

func EditForm(c Class) UpdateClass {
	return UpdateClass{
		Name:         c.Name,
		Grade:        c.Grade,
		Semester:     c.Semester,
		AcademicYear: c.AcademicYear,
		TeacherID:    c.TeacherID,
	}
}

// Patch applies `uc` on a cached Class until the refetch brings the server's copy.
func Patch(c Class, uc UpdateClass) Class {
	if uc.TeacherID != c.TeacherID {
		c.TeacherName = ""
	}
	c.Name = uc.Name
	c.Grade = uc.Grade
	c.Semester = uc.Semester
	c.AcademicYear = uc.AcademicYear
	c.TeacherID = uc.TeacherID
	return c
}

// Label is how a class is shown in pickers, e.g. "X IPA 1 (Ganjil 2024/2025)".
func (c Class) Label() string {
	if c.Semester == "" && c.AcademicYear == "" {
		return c.Name
	}
	return c.Name + " (" + core.CleanString(c.Semester+" "+c.AcademicYear) + ")"
}

func ID(c Class) string { return c.ID }
