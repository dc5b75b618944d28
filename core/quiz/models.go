package quiz

import (
	"time"

	"github.com/trezcool/masomo-admin/core"
)

type (
	// Question is one multiple choice question of a Quiz.
	Question struct {
		Text          string   `json:"question" validate:"required,notblank,max=500"`
		Options       []string `json:"options" validate:"min=2,max=6,dive,required"`
		CorrectAnswer int      `json:"correctAnswer" validate:"min=0"`
		Points        int      `json:"points" validate:"min=0,max=100"`
	}

	Quiz struct {
		ID           string     `json:"_id"`
		Title        string     `json:"title"`
		Description  string     `json:"description,omitempty"`
		QuizTypeID   string     `json:"quizTypeId"`
		QuizTypeName string     `json:"quizTypeName,omitempty"` // server computed
		ClassID      string     `json:"classId"`
		ClassName    string     `json:"className,omitempty"` // server computed
		Subject      string     `json:"subject"`
		Duration     int        `json:"duration"` // minutes
		Questions    []Question `json:"questions"`
		IsPublished  bool       `json:"isPublished"`
		CreatedBy    string     `json:"createdBy,omitempty"`
		CreatedAt    time.Time  `json:"createdAt"`
		UpdatedAt    time.Time  `json:"updatedAt"`
	}

	// QuizType is a category of quizzes, e.g. daily practice or final review.
	QuizType struct {
		ID          string    `json:"_id"`
		Name        string    `json:"name"`
		Description string    `json:"description,omitempty"`
		XPReward    int       `json:"xpReward"`
		QuizCount   int       `json:"quizCount"` // server computed
		CreatedAt   time.Time `json:"createdAt"`
	}

	// Statistics are computed server-side and only displayed.
	Statistics struct {
		QuizID         string  `json:"quizId"`
		Attempts       int     `json:"attempts"`
		AverageScore   float64 `json:"averageScore"`
		HighestScore   float64 `json:"highestScore"`
		LowestScore    float64 `json:"lowestScore"`
		CompletionRate float64 `json:"completionRate"`
	}

	// NewQuiz is the create-quiz form.
	NewQuiz struct {
		Title       string     `json:"title" validate:"required,notblank,max=100"`
		Description string     `json:"description,omitempty" validate:"max=500"`
		QuizTypeID  string     `json:"quizTypeId" validate:"required"`
		ClassID     string     `json:"classId" validate:"required"`
		Subject     string     `json:"subject" validate:"required,notblank,max=50"`
		Duration    int        `json:"duration" validate:"min=1,max=300"`
		Questions   []Question `json:"questions" validate:"dive"`
		IsPublished bool       `json:"isPublished"`
	}

	// UpdateQuiz is the edit-quiz form; it replaces the editable fields.
	UpdateQuiz struct {
		Title       string     `json:"title" validate:"required,notblank,max=100"`
		Description string     `json:"description,omitempty" validate:"max=500"`
		QuizTypeID  string     `json:"quizTypeId" validate:"required"`
		ClassID     string     `json:"classId" validate:"required"`
		Subject     string     `json:"subject" validate:"required,notblank,max=50"`
		Duration    int        `json:"duration" validate:"min=1,max=300"`
		Questions   []Question `json:"questions" validate:"dive"`
		IsPublished bool       `json:"isPublished"`
	}

	// QuizTypeForm is the create and edit form of a QuizType.
	QuizTypeForm struct {
		Name        string `json:"name" validate:"required,notblank,max=50"`
		Description string `json:"description,omitempty" validate:"max=200"`
		XPReward    int    `json:"xpReward" validate:"min=0,max=1000"`
	}
)

func (nq *NewQuiz) Clean() {
	nq.Title = core.CleanString(nq.Title)
	nq.Description = core.CleanString(nq.Description)
	nq.Subject = core.CleanString(nq.Subject)
}

func (uq *UpdateQuiz) Clean() {
	uq.Title = core.CleanString(uq.Title)
	uq.Description = core.CleanString(uq.Description)
	uq.Subject = core.CleanString(uq.Subject)
}

func (f *QuizTypeForm) Clean() {
	f.Name = core.CleanString(f.Name)
	f.Description = core.CleanString(f.Description)
}

// TotalPoints sums the points of all questions.
func (q Quiz) TotalPoints() int {
	var total int
	for _, qs := range q.Questions {
		total += qs.Points
	}
	return total
}

// EditForm returns the edit form prefilled with `q`.
func EditForm(q Quiz) UpdateQuiz {
	return UpdateQuiz{
		Title:       q.Title,
		Description: q.Description,
		QuizTypeID:  q.QuizTypeID,
		ClassID:     q.ClassID,
		Subject:     q.Subject,
		Duration:    q.Duration,
		Questions:   append([]Question(nil), q.Questions...),
		IsPublished: q.IsPublished,
	}
}

// Patch applies `uq` on a cached Quiz until the refetch brings the server's copy.
// Server computed names of a changed relation are blanked rather than left pointing at the old one.
func Patch(q Quiz, uq UpdateQuiz) Quiz {
	if uq.QuizTypeID != q.QuizTypeID {
		q.QuizTypeName = ""
	}
	if uq.ClassID != q.ClassID {
		q.ClassName = ""
	}
	q.Title = uq.Title
	q.Description = uq.Description
	q.QuizTypeID = uq.QuizTypeID
	q.ClassID = uq.ClassID
	q.Subject = uq.Subject
	q.Duration = uq.Duration
	q.Questions = append([]Question(nil), uq.Questions...)
	q.IsPublished = uq.IsPublished
	return q
}

func PatchType(qt QuizType, f QuizTypeForm) QuizType {
	qt.Name = f.Name
	qt.Description = f.Description
	qt.XPReward = f.XPReward
	return qt
}

func ID(q Quiz) string { return q.ID }

func TypeID(qt QuizType) string { return qt.ID }
