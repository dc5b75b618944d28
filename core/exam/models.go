package exam

import (
	"time"

	"github.com/trezcool/masomo-admin/core"
)

// Exam statuses, computed by the server from the exam date.
const (
	StatusScheduled = "scheduled"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
)

type (
	Exam struct {
		ID           string    `json:"_id"`
		Title        string    `json:"title"`
		Description  string    `json:"description,omitempty"`
		ClassID      string    `json:"classId"`
		ClassName    string    `json:"className,omitempty"` // server computed
		Subject      string    `json:"subject"`
		Date         time.Time `json:"date"`
		Duration     int       `json:"duration"` // minutes
		TotalScore   int       `json:"totalScore"`
		PassingScore int       `json:"passingScore"`
		Semester     string    `json:"semester"`
		Status       string    `json:"status,omitempty"` // server computed
		CreatedAt    time.Time `json:"createdAt"`
		UpdatedAt    time.Time `json:"updatedAt"`
	}

	// Result is one student's graded attempt; grading happens server-side.
	Result struct {
		ID          string    `json:"_id"`
		ExamID      string    `json:"examId"`
		StudentID   string    `json:"studentId"`
		StudentName string    `json:"studentName"`
		Score       float64   `json:"score"`
		Passed      bool      `json:"passed"`
		SubmittedAt time.Time `json:"submittedAt"`
	}

	// NewExam is the create-exam form.
	NewExam struct {
		Title        string    `json:"title" validate:"required,notblank,max=100"`
		Description  string    `json:"description,omitempty" validate:"max=500"`
		ClassID      string    `json:"classId" validate:"required"`
		Subject      string    `json:"subject" validate:"required,notblank,max=50"`
		Date         time.Time `json:"date" validate:"required"`
		Duration     int       `json:"duration" validate:"min=1,max=480"`
		TotalScore   int       `json:"totalScore" validate:"min=1,max=1000"`
		PassingScore int       `json:"passingScore" validate:"min=0,ltefield=TotalScore"`
		Semester     string    `json:"semester" validate:"required,semester"`
	}

	// UpdateExam is the edit-exam form; it replaces the editable fields.
	UpdateExam NewExam
)

func (ne *NewExam) Clean() {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	ne.Subject = core.CleanString(ne.Subject)
}

func (ue *UpdateExam) Clean() {
	(*NewExam)(ue).Clean()
}

// EditForm returns the edit form prefilled with `e`.
func EditForm(e Exam) UpdateExam {
	return UpdateExam{
		Title:        e.Title,
		Description:  e.Description,
		ClassID:      e.ClassID,
		Subject:      e.Subject,
		Date:         e.Date,
		Duration:     e.Duration,
		TotalScore:   e.TotalScore,
		PassingScore: e.PassingScore,
		Semester:     e.Semester,
	}
}

// Patch applies `ue` on a cached Exam until the refetch brings the server's copy.
func Patch(e Exam, ue UpdateExam) Exam {
	if ue.ClassID != e.ClassID {
		e.ClassName = ""
	}
	if !ue.Date.Equal(e.Date) {
		e.Status = ""
	}
	e.Title = ue.Title
	e.Description = ue.Description
	e.ClassID = ue.ClassID
	e.Subject = ue.Subject
	e.Date = ue.Date
	e.Duration = ue.Duration
	e.TotalScore = ue.TotalScore
	e.PassingScore = ue.PassingScore
	e.Semester = ue.Semester
	return e
}

// PassRate returns the share of passed results, 0 when there is none.
func PassRate(results []Result) float64 {
	if len(results) == 0 {
		return 0
	}
	var passed int
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	return float64(passed) / float64(len(results))
}

func ID(e Exam) string { return e.ID }
