package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-admin/core"
)

func newValidator() *core.Validator {
	v := core.NewValidator()
	InitValidators(v.Validate, v.Translator)
	return v
}

func TestPatch(t *testing.T) {
	q := Quiz{ID: "q1", Title: "Old", QuizTypeID: "t1", QuizTypeName: "Latihan", ClassID: "c1", ClassName: "X IPA 1", Duration: 30}

	tests := []struct {
		name         string
		form         UpdateQuiz
		wantTypeName string
		wantClass    string
	}{
		{
			name:         "same relations keep server names",
			form:         UpdateQuiz{Title: "New", QuizTypeID: "t1", ClassID: "c1", Duration: 45},
			wantTypeName: "Latihan",
			wantClass:    "X IPA 1",
		},
		{
			name:      "changed type blanks its name",
			form:      UpdateQuiz{Title: "New", QuizTypeID: "t2", ClassID: "c1", Duration: 45},
			wantClass: "X IPA 1",
		},
		{
			name:         "changed class blanks its name",
			form:         UpdateQuiz{Title: "New", QuizTypeID: "t1", ClassID: "c2", Duration: 45},
			wantTypeName: "Latihan",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Patch(q, tt.form)
			assert.Equal(t, "q1", got.ID)
			assert.Equal(t, "New", got.Title)
			assert.Equal(t, 45, got.Duration)
			assert.Equal(t, tt.wantTypeName, got.QuizTypeName)
			assert.Equal(t, tt.wantClass, got.ClassName)
		})
	}
	assert.Equal(t, "Old", q.Title, "the cached quiz is not modified")
}

func TestEditFormRoundTrip(t *testing.T) {
	q := Quiz{ID: "q1", Title: "Aljabar", QuizTypeID: "t1", ClassID: "c1", Subject: "Matematika", Duration: 30,
		Questions: []Question{{Text: "1+1?", Options: []string{"1", "2"}, CorrectAnswer: 1, Points: 10}}}
	assert.Equal(t, q, Patch(q, EditForm(q)))
	assert.Equal(t, 10, q.TotalPoints())
}

func TestNewQuizValidation(t *testing.T) {
	v := newValidator()
	valid := NewQuiz{Title: "Aljabar", QuizTypeID: "t1", ClassID: "c1", Subject: "Matematika", Duration: 30}

	tests := []struct {
		name       string
		mutate     func(*NewQuiz)
		wantFields []string
	}{
		{name: "valid", mutate: func(*NewQuiz) {}},
		{name: "missing title", mutate: func(nq *NewQuiz) { nq.Title = "" }, wantFields: []string{"title"}},
		{name: "zero duration", mutate: func(nq *NewQuiz) { nq.Duration = 0 }, wantFields: []string{"duration"}},
		{name: "missing relations", mutate: func(nq *NewQuiz) { nq.QuizTypeID = ""; nq.ClassID = "" }, wantFields: []string{"quizTypeId", "classId"}},
		{
			name: "answer out of options",
			mutate: func(nq *NewQuiz) {
				nq.Questions = []Question{{Text: "1+1?", Options: []string{"1", "2"}, CorrectAnswer: 2}}
			},
			wantFields: []string{"correctAnswer"},
		},
		{
			name: "too few options",
			mutate: func(nq *NewQuiz) {
				nq.Questions = []Question{{Text: "1+1?", Options: []string{"2"}}}
			},
			wantFields: []string{"options"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nq := valid
			tt.mutate(&nq)
			errs := v.Check(nq)
			if len(tt.wantFields) == 0 {
				assert.Nil(t, errs)
				return
			}
			for _, f := range tt.wantFields {
				assert.Contains(t, errs, f)
			}
		})
	}
}
