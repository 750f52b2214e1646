// Package auth contiene los flujos de autenticación: alta, login, reset y
// cambio de password, códigos de verificación y ciclo de sesión.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dropDatabas3/bizdesk/internal/audit"
	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	"github.com/dropDatabas3/bizdesk/internal/email"
	httpmetrics "github.com/dropDatabas3/bizdesk/internal/http"
	jwtx "github.com/dropDatabas3/bizdesk/internal/jwt"
	"github.com/dropDatabas3/bizdesk/internal/oauth/google"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
	"github.com/dropDatabas3/bizdesk/internal/otp"
	"github.com/dropDatabas3/bizdesk/internal/security/password"
	"github.com/dropDatabas3/bizdesk/internal/validation"
)

// Deps contiene las dependencias de los services auth.
type Deps struct {
	Users  repository.UserRepository
	Codes  otp.Service
	Issuer *jwtx.Issuer
	// Identity nil deshabilita signup/login con proveedor.
	Identity IdentityVerifier
	Policy   password.Policy
	Hashing  password.Params
}

// Services agrupa todos los services del dominio auth.
type Services struct {
	Signup   SignupService
	Login    LoginService
	Password PasswordService
	Code     CodeService
	Session  SessionService
	Member   MemberService
}

// NewServices crea el agregador de services auth.
func NewServices(d Deps) Services {
	if d.Hashing == (password.Params{}) {
		d.Hashing = password.Default
	}
	b := &base{deps: d}
	return Services{
		Signup:   &signupService{base: b},
		Login:    &loginService{base: b},
		Password: &passwordService{base: b},
		Code:     &codeService{base: b},
		Session:  &sessionService{base: b},
		Member:   &memberService{base: b},
	}
}

// base concentra los pasos que comparten los flujos.
type base struct {
	deps Deps

	dummyOnce sync.Once
	dummyHash string
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (b *base) checkEmail(addr string) error {
	if !validation.IsEmail(addr) {
		return ErrInvalidEmail
	}
	return nil
}

func (b *base) checkPassword(plain string) error {
	if ok, reasons := b.deps.Policy.Validate(plain); !ok {
		return &PolicyError{Reasons: reasons}
	}
	return nil
}

func (b *base) checkMobile(mobile string) error {
	if mobile != "" && !validation.ValidMobile(mobile) {
		return ErrInvalidMobile
	}
	return nil
}

// ensureAvailable es el pre-chequeo de unicidad. No reemplaza al índice
// único del store: Create sigue pudiendo fallar con ErrConflict.
// El error no dice qué campo colisionó.
func (b *base) ensureAvailable(ctx context.Context, addr, subject, mobile string) error {
	check := func(u *repository.User, err error) error {
		switch {
		case err == nil:
			return ErrAccountExists
		case repository.IsNotFound(err):
			return nil
		default:
			return err
		}
	}
	if err := check(b.deps.Users.GetByEmail(ctx, addr)); err != nil {
		return err
	}
	if subject != "" {
		if err := check(b.deps.Users.GetBySubject(ctx, subject)); err != nil {
			return err
		}
	}
	if mobile != "" {
		if err := check(b.deps.Users.GetByMobile(ctx, mobile)); err != nil {
			return err
		}
	}
	return nil
}

func (b *base) create(ctx context.Context, u *repository.User) error {
	if err := b.deps.Users.Create(ctx, u); err != nil {
		if repository.IsConflict(err) {
			return ErrAccountExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (b *base) hash(plain string) (string, error) {
	h, err := password.Hash(b.deps.Hashing, plain)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return h, nil
}

// burnVerify corre una verificación contra un hash descartable para que
// un email inexistente tarde lo mismo que una password incorrecta.
func (b *base) burnVerify(plain string) {
	b.dummyOnce.Do(func() {
		b.dummyHash, _ = password.Hash(b.deps.Hashing, "bizdesk-dummy-credential")
	})
	_ = password.Verify(plain, b.dummyHash)
}

func (b *base) verifyIdentity(ctx context.Context, idToken string) (*google.Claim, error) {
	if b.deps.Identity == nil {
		return nil, ErrProviderDisabled
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, ErrInvalidInput
	}
	claim, err := b.deps.Identity.Verify(ctx, idToken)
	if err != nil {
		logger.From(ctx).Debug("identity token rejected", logger.Err(err))
		return nil, ErrInvalidIDToken
	}
	if !claim.EmailVerified {
		return nil, ErrEmailUnverified
	}
	c := *claim
	c.Email = normalizeEmail(c.Email)
	return &c, nil
}

// issueSession emite un par nuevo y persiste el fingerprint del refresh,
// lo que invalida cualquier refresh anterior de la cuenta.
func (b *base) issueSession(ctx context.Context, u *repository.User) (*Session, error) {
	access, err := b.deps.Issuer.IssueAccess(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenIssueFailed, err)
	}
	refresh, err := b.deps.Issuer.IssueRefresh(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenIssueFailed, err)
	}
	fp := jwtx.Fingerprint(refresh)
	if err := b.deps.Users.UpdateRefreshFingerprint(ctx, u.ID, &fp); err != nil {
		return nil, fmt.Errorf("store refresh fingerprint: %w", err)
	}
	u.RefreshFingerprint = &fp

	return &Session{
		User:         u.Public(),
		AccessToken:  access,
		RefreshToken: refresh,
		AccessTTL:    b.deps.Issuer.AccessTTL,
		RefreshTTL:   b.deps.Issuer.RefreshTTL,
	}, nil
}

const (
	purposeSignup = email.PurposeSignup
	purposeReset  = email.PurposeReset
	purposeVerify = email.PurposeVerify
)

func (b *base) issueCode(ctx context.Context, addr string, purpose email.Purpose) error {
	if err := b.deps.Codes.Issue(ctx, addr, purpose); err != nil {
		return err
	}
	httpmetrics.RecordCodeIssued(string(purpose))
	return nil
}

// outcome registra el resultado del flujo en métricas y auditoría.
func outcome(ctx context.Context, flow, addr string, err error) {
	label := outcomeLabel(err)
	httpmetrics.RecordAuthOutcome(flow, label)
	audit.Log(ctx, audit.Event{Flow: flow, Outcome: label, Email: addr})
}

// subjectOf extrae el email de la variante, si la tiene.
func subjectOf(req any) string {
	switch r := req.(type) {
	case PasswordSignupStart:
		return r.Email
	case PasswordSignupComplete:
		return r.Email
	case PasswordLogin:
		return r.Email
	case ForgotStart:
		return r.Email
	case ForgotComplete:
		return r.Email
	}
	return ""
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return audit.OutcomeOK
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrAccountExists):
		return "conflict"
	case errors.Is(err, ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, ErrAccountDisabled):
		return "disabled"
	case errors.Is(err, ErrCodeNotFound), errors.Is(err, ErrCodeExpired), errors.Is(err, ErrCodeMismatch):
		return "bad_code"
	case errors.Is(err, ErrWeakPassword), errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidMobile), errors.Is(err, ErrInvalidRole), errors.Is(err, ErrPasswordReuse):
		return "invalid_input"
	case errors.Is(err, ErrInvalidIDToken), errors.Is(err, ErrEmailUnverified), errors.Is(err, ErrProviderDisabled):
		return "provider_rejected"
	case errors.Is(err, ErrInvalidRefresh), errors.Is(err, ErrRefreshExpired), errors.Is(err, ErrSessionRevoked):
		return "invalid_session"
	default:
		return audit.OutcomeError
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
