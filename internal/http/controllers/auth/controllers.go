// Package auth contiene los controllers HTTP de autenticación.
package auth

import (
	"github.com/dropDatabas3/bizdesk/internal/http/helpers"
	svc "github.com/dropDatabas3/bizdesk/internal/http/services/auth"
)

const tokenTypeBearer = "Bearer"

// Controllers agrupa todos los controllers del dominio auth.
type Controllers struct {
	Signup   *SignupController
	Login    *LoginController
	Password *PasswordController
	Code     *CodeController
	Session  *SessionController
	Member   *MemberController
}

// NewControllers crea el agregador de controllers auth.
func NewControllers(s svc.Services, cookies helpers.CookieConfig) *Controllers {
	return &Controllers{
		Signup:   NewSignupController(s.Signup, cookies),
		Login:    NewLoginController(s.Login, cookies),
		Password: NewPasswordController(s.Password),
		Code:     NewCodeController(s.Code),
		Session:  NewSessionController(s.Session, cookies),
		Member:   NewMemberController(s.Member),
	}
}
