// Package validator registers the custom binding rules used by the
// HTTP handlers.
package validator

import (
	"regexp"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Custom validation tags.
const (
	TagUsername = "username" // letter first, alphanumeric and underscore, 3-32 chars
	TagPassword = "password" // min 8 chars with at least one letter and one digit
	TagSlug     = "slug"     // lowercase alphanumeric and hyphens
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{2,31}$`)
	slugRegex     = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// RegisterBindingRules installs the custom rules into gin's binding
// engine. Call once at startup before serving requests.
func RegisterBindingRules() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := v.RegisterValidation(TagUsername, validateUsername); err != nil {
		return err
	}
	if err := v.RegisterValidation(TagPassword, validatePassword); err != nil {
		return err
	}
	return v.RegisterValidation(TagSlug, validateSlug)
}

func validateUsername(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		// Let 'required' handle empty values.
		return true
	}
	return usernameRegex.MatchString(value)
}

func validatePassword(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	if len(value) < 8 {
		return false
	}

	var hasLetter, hasDigit bool
	for _, r := range value {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

func validateSlug(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return slugRegex.MatchString(value)
}
