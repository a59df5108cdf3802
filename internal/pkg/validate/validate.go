package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-api-profile/internal/domain"
	"github.com/go-playground/validator/v10"
)

var (
	alphaSpaceRe = regexp.MustCompile(`^[A-Za-z\s]+$`)
	phoneRe      = regexp.MustCompile(`^\+?[0-9]{6,15}$`)
	otpCodeRe    = regexp.MustCompile(`^[0-9]{6}$`)
)

// v is the package-level singleton validator. It is initialised once at
// package load time. Custom tags are registered in init() before the first
// call to Struct.
var v = validator.New(validator.WithRequiredStructEnabled())

func init() {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	mustRegister("alphaspace", func(fl validator.FieldLevel) bool {
		return alphaSpaceRe.MatchString(fl.Field().String())
	})
	mustRegister("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	mustRegister("otpcode", func(fl validator.FieldLevel) bool {
		return otpCodeRe.MatchString(fl.Field().String())
	})
	mustRegister("strongpassword", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	// max counts runes; bcrypt and VARCHAR limits are in bytes.
	mustRegister("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= n
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// StrongPassword reports whether s has at least one upper-case letter,
// one lower-case letter and one digit.
func StrongPassword(s string) bool {
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// Struct validates the given struct using its validate tags.
// The returned error wraps domain.ErrValidation and lists every failing field.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, message(fe))
		}
		return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), domain.ErrValidation)
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", fe.Field(), fe.Param())
	case "alphaspace":
		return fmt.Sprintf("%s can only contain letters and spaces", fe.Field())
	case "phone":
		return fmt.Sprintf("%s must contain digits only", fe.Field())
	case "otpcode":
		return fmt.Sprintf("%s must be a 6-digit code", fe.Field())
	case "strongpassword":
		return fmt.Sprintf("%s must contain an uppercase letter, a lowercase letter and a number", fe.Field())
	case "eqfield":
		return "passwords do not match"
	}
	return fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag())
}
