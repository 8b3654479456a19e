package comment

import (
	"reflect"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/reportcard/core"
)

var (
	toneTag  = "tone"
	toneText = "tone must be one of positive, neutral or negative"

	periodTag  = "period"
	periodText = "period must be 1 or 2"
)

// RegisterValidators registers the comment validation tags.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(toneTag, toneValidation)
	core.RegisterCustomTranslation(validate, translator, toneTag, toneText)

	_ = validate.RegisterValidation(periodTag, periodValidation)
	core.RegisterCustomTranslation(validate, translator, periodTag, periodText)
}

func IsTone(tone string) bool {
	for _, t := range Tones {
		if tone == t {
			return true
		}
	}
	return false
}

func toneValidation(fl validator.FieldLevel) bool {
	if tone, ok := fl.Field().Interface().(string); ok {
		return IsTone(tone)
	}
	return false
}

func periodValidation(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.Int {
		return false
	}
	p := int(fl.Field().Int())
	for _, period := range Periods {
		if p == period {
			return true
		}
	}
	return false
}
