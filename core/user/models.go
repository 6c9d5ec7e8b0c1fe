package user

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/edusite/core"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// User is an identity verified by the auth provider. It is never stored by this application.
type User struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	EmailVerified bool     `json:"email_verified"`
	Roles         []string `json:"roles"`
}

func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// RolesFromClaims reads roles from the custom claims of an ID token.
func RolesFromClaims(claims map[string]interface{}) []string {
	roles := []string{RoleStudent}
	if admin, ok := claims[RoleAdmin].(bool); ok && admin {
		roles = append(roles, RoleAdmin)
	}
	return roles
}

// NewUser contains information needed to create an account with the auth provider.
type NewUser struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwdminlen,pwdnospace,pwdnotallnum"`
	IsAdmin  bool   `json:"is_admin"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Password = strings.TrimRight(nu.Password, "\r\n")
	return validate.Struct(nu)
}

const passwordRules = "required,pwdminlen,pwdnospace,pwdnotallnum"

// ValidatePassword checks pwd against the password policy.
func ValidatePassword(validate *validator.Validate, pwd string) error {
	return validate.Var(pwd, passwordRules)
}
