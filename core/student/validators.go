package student

import (
	"fmt"
	"reflect"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/reportcard/core"
)

var (
	gradeTag  = "grade"
	gradeText = fmt.Sprintf("grade must be between %d and %d", MinGrade, MaxGrade)

	sectionTag  = "section"
	sectionText = "section must be one of A, B, C, D or E"
)

// RegisterValidators registers the student validation tags.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(gradeTag, gradeValidation)
	core.RegisterCustomTranslation(validate, translator, gradeTag, gradeText)

	_ = validate.RegisterValidation(sectionTag, sectionValidation)
	core.RegisterCustomTranslation(validate, translator, sectionTag, sectionText)
}

func gradeValidation(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int64:
		g := fl.Field().Int()
		return g >= MinGrade && g <= MaxGrade
	}
	return false
}

func sectionValidation(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return IsSection(s)
	}
	return false
}

func IsSection(s string) bool {
	for _, sec := range Sections {
		if s == sec {
			return true
		}
	}
	return false
}
