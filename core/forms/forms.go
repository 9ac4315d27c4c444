package forms

import (
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/mwalimu/darasa/core"
)

// Registration is the chapter 10 demo form. Validation is the whole point:
// the endpoint that accepts it does nothing with the data but echo the
// verdict back.
type Registration struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,phone"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Newsletter      bool   `json:"newsletter"`
}

func (r *Registration) Clean() {
	r.Name = core.CleanString(r.Name)
	r.Email = core.CleanString(r.Email, true /* lower */)
	r.Phone = core.CleanString(r.Phone)
}

// Password strength rules, one message per failure as the chapter presents
// them.
var (
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = "password must be at least 8 characters"

	pwdUpperTag  = "pwdupper"
	pwdUpperText = "password must contain an uppercase letter"

	pwdLowerTag  = "pwdlower"
	pwdLowerText = "password must contain a lowercase letter"

	pwdDigitTag  = "pwddigit"
	pwdDigitText = "password must contain a number"
)

// RegisterValidators adds the form-demo struct validation and its messages.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(registrationStructValidation, Registration{})

	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdUpperTag, pwdUpperText)
	core.RegisterCustomTranslation(validate, translator, pwdLowerTag, pwdLowerText)
	core.RegisterCustomTranslation(validate, translator, pwdDigitTag, pwdDigitText)
}

func registrationStructValidation(sl validator.StructLevel) {
	reg := sl.Current().Interface().(Registration)
	if reg.Password == "" {
		return // `required` already reports this
	}

	reportErr := func(tag string) {
		sl.ReportError(reg.Password, "password", "Password", tag, "")
	}

	if len(reg.Password) < 8 {
		reportErr(pwdMinLenTag)
		return
	}

	var hasUpper, hasLower, hasDigit bool
	for _, char := range reg.Password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasUpper {
		reportErr(pwdUpperTag)
	}
	if !hasLower {
		reportErr(pwdLowerTag)
	}
	if !hasDigit {
		reportErr(pwdDigitTag)
	}
}
