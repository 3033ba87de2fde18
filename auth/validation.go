package auth

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	phoneCountryCode  = "998"
	phoneLocalDigits  = 9
	phoneDigits       = 12
	minPasswordLength = 6
)

// Credentials is a login form after normalisation
type Credentials struct {
	Phone    string `json:"phone" validate:"required,numeric,len=12,startswith=998"`
	Password string `json:"password" validate:"required,min=6"`
}

// Validator checks login input before it is sent to the backend.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	v := validator.New()
	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidateCredentials normalises the phone number and validates both fields.
// The returned Credentials carry the normalised phone number.
func (v *Validator) ValidateCredentials(phone, password string) (Credentials, error) {
	creds := Credentials{
		Phone:    FormatPhoneNumber(phone),
		Password: password,
	}
	if err := v.validate.Struct(creds); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return creds, err
		}
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return creds, fmt.Errorf("%w: %s", ErrInvalidCredentials, strings.Join(msgs, "; "))
	}
	return creds, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "phone":
		return "phone must be a 12 digit number starting with 998"
	case "password":
		return fmt.Sprintf("password must be at least %d characters", minPasswordLength)
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// FormatPhoneNumber strips everything but digits and adds the country code
// to a bare 9 digit local number.
func FormatPhoneNumber(phone string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	if !strings.HasPrefix(cleaned, phoneCountryCode) && len(cleaned) == phoneLocalDigits {
		return phoneCountryCode + cleaned
	}
	return cleaned
}

// IsValidPhone reports whether phone normalises to 998XXXXXXXXX
func IsValidPhone(phone string) bool {
	cleaned := FormatPhoneNumber(phone)
	return len(cleaned) == phoneDigits && strings.HasPrefix(cleaned, phoneCountryCode)
}

// IsValidPassword reports whether the password is long enough
func IsValidPassword(password string) bool {
	return utf8.RuneCountInString(password) >= minPasswordLength
}
