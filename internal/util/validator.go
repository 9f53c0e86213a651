package util

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const answerChoiceTag = "answer_choice"

// AnswerChoices are the option keys of a multiple-choice question.
var AnswerChoices = []string{"a", "b", "c", "d"}

// IsAnswerChoice reports whether s names one of the four options.
func IsAnswerChoice(s string) bool {
	for _, c := range AnswerChoices {
		if s == c {
			return true
		}
	}
	return false
}

// RegisterValidators installs the custom tags and JSON field naming on v.
func RegisterValidators(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v.RegisterValidation(answerChoiceTag, func(fl validator.FieldLevel) bool {
		return IsAnswerChoice(strings.ToLower(fl.Field().String()))
	})
}

// InitBindingValidators registers the custom validators on gin's engine.
func InitBindingValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return RegisterValidators(v)
}

// BindingError turns a gin binding failure into a ValidationError with one
// entry per offending field.
func BindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewValidationError(err)
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Error: "failed on the '" + fe.Tag() + "' rule"})
	}
	return NewValidationError(errors.New("invalid request"), fields...)
}
