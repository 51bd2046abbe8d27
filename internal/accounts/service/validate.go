package service

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names, which is what clients send.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkInput runs struct validation and merges in fields already found
// invalid by the caller. It returns nil or a *ValidationError.
func checkInput(in any, extra map[string]string) error {
	fields := map[string]string{}
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields[fe.Field()] = describe(fe)
		}
	}
	for k, v := range extra {
		if _, seen := fields[k]; !seen {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "eqfield":
		return "does not match"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "is too long"
	case "numeric":
		return "must be numeric"
	default:
		return "is invalid"
	}
}

// PasswordPolicy is the minimum strength accepted for new passwords.
type PasswordPolicy struct {
	MinLength int
}

// DefaultMinPasswordLength applies when no policy length is configured.
const DefaultMinPasswordLength = 8

// check returns a human reason when pw is too weak, or "".
func (p PasswordPolicy) check(pw string) string {
	minLen := p.MinLength
	if minLen <= 0 {
		minLen = DefaultMinPasswordLength
	}

	var letter, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case len([]rune(pw)) < minLen:
		return "must be at least " + strconv.Itoa(minLen) + " characters"
	case !letter || !digit:
		return "must contain a letter and a digit"
	}
	return ""
}

// passwordFields reports a weak password under key, for use with checkInput.
func (p PasswordPolicy) passwordFields(key, pw string) map[string]string {
	if pw == "" {
		return nil // "required" comes from the struct tags
	}
	if reason := p.check(pw); reason != "" {
		return map[string]string{key: reason}
	}
	return nil
}
