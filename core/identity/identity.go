// Package identity defines the contract with the identity provider that owns
// learner credentials. The application only keeps a read-only Identity.
package identity

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
)

var (
	ErrInvalidCredentials = &Error{Message: "Invalid login credentials"}
	ErrUserExists         = &Error{Message: "User already registered"}
	ErrSignUpDisabled     = &Error{Message: "Signups not allowed for this instance"}
	ErrAccountDisabled    = &Error{Message: "Account deactivated"}

	ErrPhoneSignIn = core.NewValidationError(errors.New("Phone login not yet available. Please use email to sign in."))
)

// Error carries the message returned by the provider, shown to the learner as is.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// Identity is the learner as known by the provider.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Provider interface {
	Name() string
	SignUp(ctx context.Context, req SignUpRequest) (Identity, error)
	SignIn(ctx context.Context, email, password string) (Identity, error)
	SignOut(ctx context.Context, id Identity) error
}

// SignUpRequest is submitted by the sign-up form. Phone is optional metadata.
type SignUpRequest struct {
	Email           string `json:"email" form:"email" validate:"required,email"`
	Phone           string `json:"phone" form:"phone" validate:"omitempty,phone"`
	Password        string `json:"password" form:"password" validate:"required,pwdminlen"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"required,eqfield=Password"`
}

func (r *SignUpRequest) Validate(validate *validator.Validate) error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	r.Phone = core.CleanString(r.Phone)
	return validate.Struct(r)
}

// SignInRequest is submitted by the sign-in form.
type SignInRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Phone    string `json:"phone" form:"phone"`
	Password string `json:"password" form:"password" validate:"required,pwdminlen"`
}

// Validate checks the credentials shape. Signing in by phone is not available:
// once the password passes, a phone-only request fails with ErrPhoneSignIn.
func (r *SignInRequest) Validate(validate *validator.Validate) error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	r.Phone = core.CleanString(r.Phone)

	if r.Email == "" && r.Phone != "" {
		if err := validate.StructPartial(r, "Password"); err != nil {
			return err
		}
		return ErrPhoneSignIn
	}
	return validate.Struct(r)
}
