package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"

	oneOfTag  = "oneof"
	oneOfText = "must be one of: {0}"
)

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	RegisterCustomTranslation(requiredTag, requiredText, true)
	RegisterCustomTranslation(requiredWithTag, requiredText, true)

	_ = Validate.RegisterTranslation(
		oneOfTag, Translator,
		func(t ut.Translator) error { return t.Add(oneOfTag, oneOfText, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(oneOfTag, fe.Param())
			return s
		},
	)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}
