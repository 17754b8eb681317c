package model

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"go-auth-core/internal/util"
	"go-auth-core/pkg/apierror"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 50
	EmailMaxLength    = 100
	NameMaxLength     = 50
	PasswordMinLength = 8
	// bcrypt ignores everything past 72 bytes, so longer passwords are refused
	// instead of silently truncated.
	PasswordMaxBytes = 72
)

type RegisterRequest struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

func (r *RegisterRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)

	n := utf8.RuneCountInString(r.Username)
	if n < UsernameMinLength || n > UsernameMaxLength {
		return invalidField("username must be between 3 and 50 characters", "username")
	}
	if util.HasHiddenRunes(r.Username) {
		return invalidField("username contains invisible or control characters", "username")
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if err := validatePassword(r.Password, "password"); err != nil {
		return err
	}
	trimName(r.FirstName)
	trimName(r.LastName)
	if r.FirstName != nil && utf8.RuneCountInString(*r.FirstName) > NameMaxLength {
		return invalidField("first_name must be at most 50 characters", "first_name")
	}
	if r.LastName != nil && utf8.RuneCountInString(*r.LastName) > NameMaxLength {
		return invalidField("last_name must be at most 50 characters", "last_name")
	}

	return nil
}

// LoginRequest accepts either "identifier" or the legacy "username" key; both
// may carry a username or an email address.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Identifier) == "" {
		r.Identifier = r.Username
	}
	r.Identifier = strings.TrimSpace(r.Identifier)

	if r.Identifier == "" {
		return invalidField("identifier is required", "identifier")
	}
	if r.Password == "" {
		return invalidField("password is required", "password")
	}

	return nil
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

func (r *PasswordResetRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validateEmail(r.Email)
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (r *PasswordResetConfirmRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return invalidField("token is required", "token")
	}
	return validatePassword(r.NewPassword, "new_password")
}

func validateEmail(email string) error {
	if email == "" {
		return invalidField("email is required", "email")
	}
	if utf8.RuneCountInString(email) > EmailMaxLength {
		return invalidField("email must be at most 100 characters", "email")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return invalidField("email is not a valid address", "email")
	}

	return nil
}

func validatePassword(password string, field string) error {
	if utf8.RuneCountInString(password) < PasswordMinLength {
		return invalidField(field+" must be at least 8 characters", field)
	}
	if len(password) > PasswordMaxBytes {
		return invalidField(field+" must be at most 72 bytes", field)
	}
	return nil
}

func invalidField(message string, field string) error {
	return apierror.Validation(field, message)
}

// trimName drops surrounding space and hidden runes from an optional name.
func trimName(name *string) {
	if name == nil {
		return
	}
	*name = strings.TrimSpace(util.StripHiddenRunes(*name))
}
