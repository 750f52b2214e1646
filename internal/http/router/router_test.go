package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	"github.com/dropDatabas3/bizdesk/internal/email"
	authctrl "github.com/dropDatabas3/bizdesk/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/bizdesk/internal/http/controllers/health"
	"github.com/dropDatabas3/bizdesk/internal/http/helpers"
	svc "github.com/dropDatabas3/bizdesk/internal/http/services/auth"
	jwtx "github.com/dropDatabas3/bizdesk/internal/jwt"
	"github.com/dropDatabas3/bizdesk/internal/otp"
	"github.com/dropDatabas3/bizdesk/internal/rate"
	"github.com/dropDatabas3/bizdesk/internal/security/password"
	"github.com/dropDatabas3/bizdesk/internal/store/memory"
)

const (
	fixedCode = "424242"
	goodPass  = "Corr3ct-Horse"
)

type app struct {
	h      http.Handler
	users  *memory.UserRepo
	issuer *jwtx.Issuer
}

func newApp(t *testing.T, limiter rate.Limiter) *app {
	t.Helper()

	users := memory.NewUserRepo()
	issuer, err := jwtx.NewIssuer(jwtx.Config{
		Issuer:        "bizdesk-test",
		AccessSecret:  "access-secret-access-secret-0123456789",
		RefreshSecret: "refresh-secret-refresh-secret-0123456789",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	require.NoError(t, err)

	codes := otp.NewService(otp.Deps{
		Codes:    memory.NewCodeRepo(),
		Mailer:   email.SenderFunc(func(context.Context, email.Message) error { return nil }),
		Generate: func(int) (string, error) { return fixedCode, nil },
	})
	services := svc.NewServices(svc.Deps{
		Users:   users,
		Codes:   codes,
		Issuer:  issuer,
		Policy:  password.Policy{MinLength: 8, RequireUpper: true, RequireLower: true, RequireDigit: true},
		Hashing: password.Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32},
	})

	h := New(Deps{
		Auth:     authctrl.NewControllers(services, helpers.CookieConfig{Secure: true}),
		Health:   healthctrl.NewHealthController("test", map[string]healthctrl.Check{"users": users.Ping}),
		Verifier: issuer,
		Limiter:  limiter,
	})
	return &app{h: h, users: users, issuer: issuer}
}

func (a *app) do(t *testing.T, method, path string, body any, mods ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "203.0.113.7:5555"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, m := range mods {
		m(req)
	}
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	return rec
}

func bearer(tok string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func withCookie(name, value string) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: name, Value: value}) }
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Code
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

type authBody struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

func (a *app) signup(t *testing.T, addr string) (*httptest.ResponseRecorder, authBody) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/signup", map[string]string{"email": addr, "password": goodPass})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/signup", map[string]string{"email": addr, "password": goodPass, "otp": fixedCode})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body authBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestSignupFlow_SetsSessionCookies(t *testing.T) {
	a := newApp(t, nil)
	rec, body := a.signup(t, "Ana@Example.com")

	assert.Equal(t, "ana@example.com", body.User.Email)
	assert.Equal(t, "user", body.User.Role)
	assert.Equal(t, "Bearer", body.TokenType)
	assert.Equal(t, int64(900), body.ExpiresIn)
	assert.NotEmpty(t, body.AccessToken)
	assert.NotContains(t, rec.Body.String(), "passwordHash")
	assert.NotContains(t, rec.Body.String(), "ingerprint")
	assert.NotContains(t, rec.Body.String(), "refreshToken")

	for _, name := range []string{"accessToken", "refreshToken"} {
		ck := cookieByName(rec, name)
		require.NotNil(t, ck, name)
		assert.True(t, ck.HttpOnly)
		assert.True(t, ck.Secure)
		assert.Equal(t, http.SameSiteStrictMode, ck.SameSite)
		assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), ck.MaxAge)
	}
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = a.do(t, http.MethodPost, "/signup", map[string]string{"email": "ana@example.com", "password": goodPass})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errCode(t, rec))
}

func TestSignup_RejectsAmbiguousBodies(t *testing.T) {
	a := newApp(t, nil)

	cases := map[string]map[string]string{
		"empty":            {},
		"only email":       {"email": "a@x.com"},
		"token + password": {"identityToken": "tok", "password": goodPass},
		"token + otp":      {"identityToken": "tok", "otp": fixedCode},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := a.do(t, http.MethodPost, "/signup", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	rec := a.do(t, http.MethodPost, "/signup", map[string]string{"identityToken": "tok"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/signup", map[string]string{"email": "a@x.com", "password": "weak"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "PASSWORD_TOO_WEAK", errCode(t, rec))

	rec = a.do(t, http.MethodPost, "/signup", map[string]string{"email": "not-an-email", "password": goodPass})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, rec))
}

func TestLogin_UniformFailures(t *testing.T) {
	a := newApp(t, nil)
	a.signup(t, "bob@example.com")

	rec := a.do(t, http.MethodPost, "/login", map[string]string{"email": "bob@example.com", "password": "Wr0ng-pass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errCode(t, rec))
	wrong := rec.Body.String()

	rec = a.do(t, http.MethodPost, "/login", map[string]string{"email": "ghost@example.com", "password": "Wr0ng-pass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, wrong, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/login", map[string]string{"email": "bob@example.com", "password": goodPass})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, cookieByName(rec, "refreshToken"))
}

func TestAuthenticatedRoutes(t *testing.T) {
	a := newApp(t, nil)
	rec, body := a.signup(t, "carla@example.com")
	access := cookieByName(rec, "accessToken").Value

	t.Run("missing token", func(t *testing.T) {
		rec := a.do(t, http.MethodGet, "/me", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "TOKEN_MISSING", errCode(t, rec))
	})

	t.Run("bearer", func(t *testing.T) {
		rec := a.do(t, http.MethodGet, "/me", nil, bearer(body.AccessToken))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"email":"carla@example.com"`)
	})

	t.Run("cookie wins over header", func(t *testing.T) {
		rec := a.do(t, http.MethodGet, "/me", nil, withCookie("accessToken", access), bearer("garbage"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		refresh := cookieByName(rec, "refreshToken").Value
		rec := a.do(t, http.MethodGet, "/me", nil, bearer(refresh))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "TOKEN_INVALID", errCode(t, rec))
	})

	t.Run("change password", func(t *testing.T) {
		rec := a.do(t, http.MethodPost, "/change-password",
			map[string]string{"currentPassword": goodPass, "newPassword": goodPass}, bearer(body.AccessToken))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "PASSWORD_REUSE", errCode(t, rec))

		rec = a.do(t, http.MethodPost, "/change-password",
			map[string]string{"currentPassword": goodPass, "newPassword": "N3w-Passw0rd"}, bearer(body.AccessToken))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = a.do(t, http.MethodPost, "/login", map[string]string{"email": "carla@example.com", "password": "N3w-Passw0rd"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRefreshRotationAndLogout(t *testing.T) {
	a := newApp(t, nil)
	rec, body := a.signup(t, "dani@example.com")
	first := cookieByName(rec, "refreshToken").Value

	rec = a.do(t, http.MethodPost, "/refresh", nil, withCookie("refreshToken", first))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	second := cookieByName(rec, "refreshToken").Value
	assert.NotEqual(t, first, second)

	// el refresh anterior quedó invalidado
	rec = a.do(t, http.MethodPost, "/refresh", map[string]string{"refreshToken": first})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "SESSION_REVOKED", errCode(t, rec))

	rec = a.do(t, http.MethodPost, "/logout", nil, bearer(body.AccessToken))
	require.Equal(t, http.StatusNoContent, rec.Code)
	ck := cookieByName(rec, "refreshToken")
	require.NotNil(t, ck)
	assert.Equal(t, -1, ck.MaxAge)

	rec = a.do(t, http.MethodPost, "/refresh", nil, withCookie("refreshToken", second))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPost, "/refresh", nil)
	assert.Equal(t, "TOKEN_MISSING", errCode(t, rec))
}

func TestMembers_RequireAdmin(t *testing.T) {
	a := newApp(t, nil)
	_, user := a.signup(t, "eli@example.com")

	member := map[string]string{"email": "staff@example.com", "password": goodPass, "role": "member"}

	rec := a.do(t, http.MethodPost, "/members", member)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPost, "/members", member, bearer(user.AccessToken))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errCode(t, rec))

	h, err := password.Hash(password.Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}, goodPass)
	require.NoError(t, err)
	admin := &repository.User{Email: "boss@example.com", PasswordHash: &h, Role: repository.RoleAdmin, Status: repository.StatusActive, EmailVerified: true}
	require.NoError(t, a.users.Create(context.Background(), admin))
	tok, err := a.issuer.IssueAccess(admin.ID, admin.Email, string(admin.Role))
	require.NoError(t, err)

	rec = a.do(t, http.MethodPost, "/members", member, bearer(tok))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"role":"member"`)

	rec = a.do(t, http.MethodPost, "/members", map[string]string{"email": "x@example.com", "password": goodPass, "role": "root"}, bearer(tok))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, rec))
}

func TestForgotPassword_SameAnswerForUnknownEmail(t *testing.T) {
	a := newApp(t, nil)
	a.signup(t, "fede@example.com")

	known := a.do(t, http.MethodPost, "/forgot-password", map[string]string{"email": "fede@example.com"})
	unknown := a.do(t, http.MethodPost, "/forgot-password", map[string]string{"email": "nobody@example.com"})
	require.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, known.Code, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())

	rec := a.do(t, http.MethodPost, "/forgot-password",
		map[string]string{"email": "fede@example.com", "otp": fixedCode, "newPassword": "Res3t-Passw0rd"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/forgot-password",
		map[string]string{"email": "fede@example.com", "otp": fixedCode, "newPassword": "Res3t-Passw0rd"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CODE_NOT_FOUND", errCode(t, rec))

	rec = a.do(t, http.MethodPost, "/forgot-password", map[string]string{"email": "fede@example.com", "otp": fixedCode})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResendAndVerifyCode(t *testing.T) {
	a := newApp(t, nil)

	rec := a.do(t, http.MethodPost, "/resend-otp", map[string]string{"email": "gabi@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPost, "/verify-otp", map[string]string{"email": "gabi@example.com", "otp": "000000"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CODE_MISMATCH", errCode(t, rec))

	rec = a.do(t, http.MethodPost, "/verify-otp", map[string]string{"email": "gabi@example.com", "otp": fixedCode})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPost, "/verify-otp", map[string]string{"email": "gabi@example.com", "otp": fixedCode})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CODE_NOT_FOUND", errCode(t, rec))
}

func TestRateLimit_PublicRoutes(t *testing.T) {
	a := newApp(t, rate.NewMemoryLimiter(2, time.Minute))
	body := map[string]string{"email": "h@example.com", "password": "Wr0ng-pass"}

	for i := 0; i < 2; i++ {
		rec := a.do(t, http.MethodPost, "/login", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Remaining"))
	}
	rec := a.do(t, http.MethodPost, "/login", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", errCode(t, rec))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// otra ruta, otra clave
	rec = a.do(t, http.MethodPost, "/forgot-password", map[string]string{"email": "h@example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInfraRoutes(t *testing.T) {
	a := newApp(t, nil)

	rec := a.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errCode(t, rec))

	rec = a.do(t, http.MethodGet, "/login", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = a.do(t, http.MethodPost, "/login", nil, func(r *http.Request) {
		r.Body = http.NoBody
		r.Header.Set("Content-Type", "application/json")
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
