package auth

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	jwtx "github.com/dropDatabas3/bizdesk/internal/jwt"
	"github.com/dropDatabas3/bizdesk/internal/oauth/google"
)

func TestSignup_PasswordTwoSteps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Signup.Signup(ctx, PasswordSignupStart{Email: "  New@X.com ", Password: strongPassword, Name: "Nora"})
	require.NoError(t, err)
	assert.True(t, res.CodeSent)
	assert.Nil(t, res.Session)

	// el primer paso no crea la cuenta
	_, err = f.users.GetByEmail(ctx, "new@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	code := f.mail.lastCodeFor(t, "new@x.com")
	res, err = f.svc.Signup.Signup(ctx, PasswordSignupComplete{Email: "new@x.com", Password: strongPassword, Name: "Nora", Code: code})
	require.NoError(t, err)
	require.NotNil(t, res.Session)

	sess := res.Session
	assert.Equal(t, "new@x.com", sess.User.Email)
	assert.Equal(t, repository.RoleUser, sess.User.Role)
	assert.Equal(t, repository.StatusActive, sess.User.Status)
	assert.True(t, sess.User.EmailVerified)
	assert.True(t, sess.User.HasPassword)

	// el access token decodifica al mismo id
	claims, err := f.issuer.Verify(sess.AccessToken, jwtx.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.UserID())
	assert.Equal(t, "user", claims.Role)

	stored, err := f.users.GetByID(ctx, sess.User.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshFingerprint)
	assert.Equal(t, jwtx.Fingerprint(sess.RefreshToken), *stored.RefreshFingerprint)
	assert.NotEqual(t, strongPassword, *stored.PasswordHash)
}

func TestSignup_WeakPasswordFailsBeforeAnyMutation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Signup.Signup(context.Background(), PasswordSignupStart{Email: "new@x.com", Password: "weak"})
	require.ErrorIs(t, err, ErrWeakPassword)

	var pe *PolicyError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Reasons, "too_short")

	assert.Zero(t, f.mail.count())
	_, err = f.users.GetByEmail(context.Background(), "new@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSignup_InputValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]struct {
		req  SignupRequest
		want error
	}{
		"bad email":      {PasswordSignupStart{Email: "not-an-email", Password: strongPassword}, ErrInvalidEmail},
		"missing fields": {PasswordSignupStart{Email: "a@x.com"}, ErrInvalidInput},
		"bad mobile":     {PasswordSignupStart{Email: "a@x.com", Password: strongPassword, Mobile: "12ab"}, ErrInvalidMobile},
		"missing code":   {PasswordSignupComplete{Email: "a@x.com", Password: strongPassword}, ErrInvalidInput},
		"nil variant":    {nil, ErrInvalidInput},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Signup.Signup(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSignup_CodeErrorsSurface(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Signup.Signup(ctx, PasswordSignupComplete{Email: "a@x.com", Password: strongPassword, Code: "123456"})
	assert.ErrorIs(t, err, ErrCodeNotFound)

	_, err = f.svc.Signup.Signup(ctx, PasswordSignupStart{Email: "a@x.com", Password: strongPassword})
	require.NoError(t, err)
	code := f.mail.lastCodeFor(t, "a@x.com")

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err = f.svc.Signup.Signup(ctx, PasswordSignupComplete{Email: "a@x.com", Password: strongPassword, Code: wrong})
	assert.ErrorIs(t, err, ErrCodeMismatch)

	f.now = f.now.Add(10 * time.Minute)
	_, err = f.svc.Signup.Signup(ctx, PasswordSignupComplete{Email: "a@x.com", Password: strongPassword, Code: code})
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestSignup_DispatchFailureIsReported(t *testing.T) {
	f := newFixture(t)
	f.mail.err = errBoom

	_, err := f.svc.Signup.Signup(context.Background(), PasswordSignupStart{Email: "a@x.com", Password: strongPassword})
	assert.ErrorIs(t, err, ErrCodeDispatch)
}

func TestSignup_ConflictAcrossPaths(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signupWithPassword(t, "taken@x.com")

	// password path
	_, err := f.svc.Signup.Signup(ctx, PasswordSignupStart{Email: "TAKEN@x.com", Password: strongPassword})
	assert.ErrorIs(t, err, ErrAccountExists)

	// provider path con el mismo email
	f.idp.claims["tok"] = &google.Claim{Subject: "g-1", Email: "taken@x.com", EmailVerified: true}
	_, err = f.svc.Signup.Signup(ctx, ProviderSignup{IDToken: "tok"})
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestSignup_MobileConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Signup.Signup(ctx, PasswordSignupStart{Email: "a@x.com", Password: strongPassword, Mobile: "+5491122334455"})
	require.NoError(t, err)
	code := f.mail.lastCodeFor(t, "a@x.com")
	_, err = f.svc.Signup.Signup(ctx, PasswordSignupComplete{Email: "a@x.com", Password: strongPassword, Mobile: "+5491122334455", Code: code})
	require.NoError(t, err)

	_, err = f.svc.Signup.Signup(ctx, PasswordSignupStart{Email: "b@x.com", Password: strongPassword, Mobile: "+5491122334455"})
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestSignup_Provider(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.idp.claims["good"] = &google.Claim{
		Subject: "g-42", Email: "Ana@Gmail.com", EmailVerified: true, Name: "Ana", Picture: "https://img/a.png",
	}
	f.idp.claims["unverified"] = &google.Claim{Subject: "g-43", Email: "eve@gmail.com", EmailVerified: false}

	res, err := f.svc.Signup.Signup(ctx, ProviderSignup{IDToken: "good"})
	require.NoError(t, err)
	require.NotNil(t, res.Session)
	u := res.Session.User
	assert.Equal(t, "ana@gmail.com", u.Email)
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, "https://img/a.png", u.AvatarURL)
	assert.True(t, u.Linked)
	assert.False(t, u.HasPassword)
	assert.Equal(t, repository.RoleUser, u.Role)

	_, err = f.svc.Signup.Signup(ctx, ProviderSignup{IDToken: "unverified"})
	assert.ErrorIs(t, err, ErrEmailUnverified)

	_, err = f.svc.Signup.Signup(ctx, ProviderSignup{IDToken: "forged"})
	assert.ErrorIs(t, err, ErrInvalidIDToken)

	// mismo subject otra vez
	_, err = f.svc.Signup.Signup(ctx, ProviderSignup{IDToken: "good"})
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestSignup_ProviderDisabled(t *testing.T) {
	f := newFixture(t)
	f.svc = NewServices(Deps{Users: f.users, Issuer: f.issuer, Hashing: testHashing})

	_, err := f.svc.Signup.Signup(context.Background(), ProviderSignup{IDToken: "x"})
	assert.ErrorIs(t, err, ErrProviderDisabled)
}

// dos altas concurrentes del mismo email: el índice único deja pasar una sola
func TestSignup_ConcurrentCreateSingleWinner(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 8; i++ {
		f.idp.claims[string(rune('a'+i))] = &google.Claim{
			Subject: "g-" + string(rune('a'+i)), Email: "race@x.com", EmailVerified: true,
		}
	}

	var ok, conflict atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(tok string) {
			defer wg.Done()
			_, err := f.svc.Signup.Signup(context.Background(), ProviderSignup{IDToken: tok})
			switch {
			case err == nil:
				ok.Add(1)
			case assert.ErrorIs(t, err, ErrAccountExists):
				conflict.Add(1)
			}
		}(string(rune('a' + i)))
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(7), conflict.Load())
}
