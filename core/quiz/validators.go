package quiz

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-admin/core"
)

var (
	answerTag  = "answeroption"
	answerText = "the correct answer must be one of the options"
)

// InitValidators registers the quiz forms' validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(questionStructValidation, Question{})
	core.RegisterCustomTranslation(validate, translator, answerTag, answerText)
}

func questionStructValidation(sl validator.StructLevel) {
	if q, ok := sl.Current().Interface().(Question); ok {
		if q.CorrectAnswer >= len(q.Options) {
			sl.ReportError(q.CorrectAnswer, "correctAnswer", "CorrectAnswer", answerTag, "")
		}
	}
}
