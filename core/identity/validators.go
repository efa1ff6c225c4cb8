package identity

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
	"github.com/Bhaskar-J-Pathak/Acad-AI/core/user"
)

var (
	pwdConfirmTag  = "eqfield"
	pwdConfirmText = "passwords do not match"

	pwdAttrSimTag = "pwdtoosim"
)

// InitValidators registers the sign-up rules. It expects user.InitValidators to have run.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(signUpStructValidation, SignUpRequest{})
	core.RegisterCustomTranslation(validate, translator, pwdConfirmTag, pwdConfirmText, true)
}

func signUpStructValidation(sl validator.StructLevel) {
	if req, ok := sl.Current().Interface().(SignUpRequest); ok {
		if user.TooSimilar(req.Password, req.Email) {
			sl.ReportError(req.Password, "password", "Password", pwdAttrSimTag, "")
		}
	}
}
