// Package jwt emite y valida los tokens de sesión (access y refresh).
//
// Cada tipo de token usa su propio secreto HS256, su propia audiencia y un
// claim "typ", así un refresh nunca valida como access ni viceversa.
package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	tokens "github.com/dropDatabas3/bizdesk/internal/security/token"
)

// Kind distingue los dos tipos de token de sesión.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

const minSecretLen = 32

var (
	// ErrExpired: firma válida pero exp ya pasó.
	ErrExpired = errors.New("jwt: token expired")
	// ErrMalformed: estructura, firma, audiencia o tipo inválidos.
	ErrMalformed = errors.New("jwt: token malformed")
	// ErrWeakSecret: secreto ausente, corto o compartido entre tipos.
	ErrWeakSecret = errors.New("jwt: weak or shared secret")
)

// Claims es el payload de ambos tokens. Role sólo viaja en el access.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	Type  Kind   `json:"typ"`
	jwtv5.RegisteredClaims
}

// UserID retorna el subject.
func (c *Claims) UserID() string { return c.Subject }

// Config de construcción del Issuer.
type Config struct {
	Issuer        string
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	// Now permite fijar el reloj en tests. Default time.Now.
	Now func() time.Time
}

// Issuer firma y verifica tokens de sesión.
type Issuer struct {
	iss        string
	access     []byte
	refresh    []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(cfg Config) (*Issuer, error) {
	if len(cfg.AccessSecret) < minSecretLen || len(cfg.RefreshSecret) < minSecretLen ||
		cfg.AccessSecret == cfg.RefreshSecret {
		return nil, ErrWeakSecret
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("jwt: ttl must be positive")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Issuer{
		iss:        cfg.Issuer,
		access:     []byte(cfg.AccessSecret),
		refresh:    []byte(cfg.RefreshSecret),
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
		now:        now,
	}, nil
}

// IssueAccess firma un access token con id, email y rol.
func (i *Issuer) IssueAccess(id, email, role string) (string, error) {
	return i.sign(KindAccess, id, email, role)
}

// IssueRefresh firma un refresh token con id y email.
func (i *Issuer) IssueRefresh(id, email string) (string, error) {
	return i.sign(KindRefresh, id, email, "")
}

func (i *Issuer) sign(kind Kind, id, email, role string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("jwt: empty subject")
	}
	now := i.now()
	ttl := i.AccessTTL
	if kind == KindRefresh {
		ttl = i.RefreshTTL
	}
	claims := Claims{
		Email: email,
		Role:  role,
		Type:  kind,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.iss,
			Subject:   id,
			Audience:  jwtv5.ClaimStrings{i.audience(kind)},
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"
	return tk.SignedString(i.secret(kind))
}

// Verify valida firma, emisor, audiencia, expiración y tipo.
// Retorna ErrExpired o ErrMalformed; cualquier otro fallo colapsa a ErrMalformed.
func (i *Issuer) Verify(token string, kind Kind) (*Claims, error) {
	secret := i.secret(kind)
	if secret == nil || token == "" {
		return nil, ErrMalformed
	}

	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithAudience(i.audience(kind)),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithIssuedAt(),
		jwtv5.WithTimeFunc(i.now),
	}
	if i.iss != "" {
		opts = append(opts, jwtv5.WithIssuer(i.iss))
	}

	var claims Claims
	_, err := jwtv5.ParseWithClaims(token, &claims, func(*jwtv5.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrMalformed
	}
	if claims.Type != kind || claims.Subject == "" {
		return nil, ErrMalformed
	}
	return &claims, nil
}

// Fingerprint es el valor que se persiste en la cuenta para un refresh token.
func Fingerprint(refreshToken string) string {
	return tokens.SHA256Base64URL(refreshToken)
}

func (i *Issuer) secret(kind Kind) []byte {
	switch kind {
	case KindAccess:
		return i.access
	case KindRefresh:
		return i.refresh
	}
	return nil
}

func (i *Issuer) audience(kind Kind) string {
	if i.iss == "" {
		return "bizdesk:" + string(kind)
	}
	return i.iss + ":" + string(kind)
}
