package auth

import (
	"context"
	"time"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	"github.com/dropDatabas3/bizdesk/internal/oauth/google"
)

// IdentityVerifier valida ID tokens de un proveedor externo.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*google.Claim, error)
}

// =================================================================================
// REQUEST VARIANTS
// =================================================================================

// SignupRequest es una de PasswordSignupStart, PasswordSignupComplete o ProviderSignup.
type SignupRequest interface{ signupVariant() }

// PasswordSignupStart pide un código para email. No crea la cuenta.
type PasswordSignupStart struct {
	Email    string
	Password string
	Name     string
	Mobile   string
}

// PasswordSignupComplete crea la cuenta si Code es válido.
type PasswordSignupComplete struct {
	Email    string
	Password string
	Name     string
	Mobile   string
	Code     string
}

// ProviderSignup crea la cuenta desde un ID token; email, nombre y subject salen del token.
type ProviderSignup struct {
	IDToken string
	Mobile  string
}

func (PasswordSignupStart) signupVariant()    {}
func (PasswordSignupComplete) signupVariant() {}
func (ProviderSignup) signupVariant()         {}

// LoginRequest es PasswordLogin o ProviderLogin.
type LoginRequest interface{ loginVariant() }

type PasswordLogin struct {
	Email    string
	Password string
}

type ProviderLogin struct {
	IDToken string
}

func (PasswordLogin) loginVariant() {}
func (ProviderLogin) loginVariant() {}

// ForgotPasswordRequest es ForgotStart o ForgotComplete.
type ForgotPasswordRequest interface{ forgotVariant() }

type ForgotStart struct {
	Email string
}

type ForgotComplete struct {
	Email       string
	Code        string
	NewPassword string
}

func (ForgotStart) forgotVariant()    {}
func (ForgotComplete) forgotVariant() {}

// MemberInput es el alta administrativa.
type MemberInput struct {
	Email    string
	Password string
	Name     string
	Mobile   string
	Role     repository.Role
}

// =================================================================================
// RESULTS
// =================================================================================

// Session es un par de tokens recién emitido junto a la vista pública de la cuenta.
type Session struct {
	User         repository.PublicUser
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// SignupResult: CodeSent en el primer paso, Session cuando la cuenta se creó.
type SignupResult struct {
	CodeSent bool
	Session  *Session
}

// =================================================================================
// SERVICES
// =================================================================================

type SignupService interface {
	Signup(ctx context.Context, req SignupRequest) (*SignupResult, error)
}

type LoginService interface {
	Login(ctx context.Context, req LoginRequest) (*Session, error)
}

type PasswordService interface {
	// ForgotPassword devuelve nil en ForgotStart exista o no la cuenta.
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ChangePassword(ctx context.Context, who repository.Principal, current, next string) error
}

type CodeService interface {
	ResendCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
}

type SessionService interface {
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Logout(ctx context.Context, who repository.Principal) error
	Me(ctx context.Context, who repository.Principal) (repository.PublicUser, error)
}

type MemberService interface {
	CreateMember(ctx context.Context, actor repository.Principal, in MemberInput) (repository.PublicUser, error)
}
