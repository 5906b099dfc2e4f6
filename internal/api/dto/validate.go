package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/haras-web/pkg/util"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// errorMessages maps language and validation tag to a message template.
var errorMessages = map[string]map[string]string{
	"ar": {
		"required": "الحقل '%s' مطلوب",
		"email":    "الحقل '%s' يجب أن يكون بريداً إلكترونياً صالحاً",
		"min":      "الحقل '%s' يجب ألا يقل عن %s أحرف",
		"max":      "الحقل '%s' يجب ألا يزيد عن %s حرفاً",
	},
	"en": {
		"required": "The field '%s' is required.",
		"email":    "The field '%s' must be a valid email address.",
		"min":      "The field '%s' must be at least %s characters long.",
		"max":      "The field '%s' must be no longer than %s characters.",
	},
}

const defaultLang = "ar"

func parseMessage(e validator.FieldError, lang string) string {
	msgs, ok := errorMessages[lang]
	if !ok {
		msgs = errorMessages[defaultLang]
	}
	msg, ok := msgs[e.Tag()]
	if !ok {
		return fmt.Sprintf("Field '%s' is invalid: %s", e.Field(), e.Tag())
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, e.Field(), e.Param())
	}
	return fmt.Sprintf(msg, e.Field())
}

// Validate checks a request struct and reports the first violated field as an
// INVALID_INPUT error. Fields are checked in declaration order.
func Validate(req any, lang ...string) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.NewInvalidInput("", apperrors.MsgInvalidPayload)
	}
	l := defaultLang
	if len(lang) > 0 && lang[0] != "" {
		l = lang[0]
	}
	first := fieldErrs[0]
	return apperrors.NewInvalidInput(first.Field(), parseMessage(first, l))
}
