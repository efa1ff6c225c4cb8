package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/Bhaskar-J-Pathak/Acad-AI/core"
)

// PasswordCost is the bcrypt cost of new password hashes.
var PasswordCost = bcrypt.DefaultCost

// User is a learner account held by the local identity provider.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), PasswordCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// CheckPassword fails with ErrInvalidPassword on a mismatch or a missing hash.
func (u *User) CheckPassword(pwd string) error {
	if len(u.PasswordHash) == 0 {
		return ErrInvalidPassword
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// DisplayName is the local part of the email, used in greetings.
func (u User) DisplayName() string {
	return core.EmailLocalPart(u.Email)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Password string `json:"password" validate:"required,pwdminlen"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Phone = core.CleanString(nu.Phone)
	return validate.Struct(nu)
}
