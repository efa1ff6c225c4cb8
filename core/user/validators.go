package user

import (
	"fmt"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
)

var (
	// PasswordMinLen is the minimum number of characters of a password.
	PasswordMinLen = 6
	pwdMinLenTag   = "pwdminlen"
	pwdMinLenText  = fmt.Sprintf("password must be at least %d characters", PasswordMinLen)

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to your email"

	phoneMinLen = 10
	phoneTag    = "phone"
	phoneText   = "please enter a valid phone number"
)

// InitValidators registers the password policy and the phone rule.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(pwdMinLenTag, pwdMinLenValidation)
	_ = validate.RegisterValidation(phoneTag, phoneValidation)
	validate.RegisterStructValidation(userStructValidation, NewUser{})

	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
	core.RegisterCustomTranslation(validate, translator, phoneTag, phoneText)
}

// userStructValidation does struct level validation on NewUser.
func userStructValidation(sl validator.StructLevel) {
	if nu, ok := sl.Current().Interface().(NewUser); ok {
		if TooSimilar(nu.Password, nu.Email) {
			sl.ReportError(nu.Password, "password", "Password", pwdAttrSimTag, "")
		}
	}
}

// TooSimilar reports whether pwd resembles the user's email too closely.
// Passwords shorter than the minimum length are left to the length rule.
func TooSimilar(pwd, email string) bool {
	if len(pwd) < PasswordMinLen || email == "" {
		return false
	}
	ratio := func(pass, attr string) float64 {
		if attr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(attr, "")).QuickRatio()
	}
	return ratio(pwd, email) >= pwdMaxSim || ratio(pwd, core.EmailLocalPart(email)) >= pwdMaxSim
}

// Custom Validators

func pwdMinLenValidation(fl validator.FieldLevel) bool {
	return len([]rune(fl.Field().String())) >= PasswordMinLen
}

// phoneValidation accepts digits, spaces, dashes, dots, parentheses and a leading '+'.
func phoneValidation(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	if len(phone) < phoneMinLen {
		return false
	}
	for i, char := range phone {
		switch {
		case unicode.IsDigit(char), char == ' ', char == '-', char == '.', char == '(', char == ')':
		case char == '+' && i == 0:
		default:
			return false
		}
	}
	return true
}
