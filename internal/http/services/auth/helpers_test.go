package auth

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	"github.com/dropDatabas3/bizdesk/internal/email"
	jwtx "github.com/dropDatabas3/bizdesk/internal/jwt"
	"github.com/dropDatabas3/bizdesk/internal/oauth/google"
	"github.com/dropDatabas3/bizdesk/internal/otp"
	"github.com/dropDatabas3/bizdesk/internal/security/password"
	"github.com/dropDatabas3/bizdesk/internal/store/memory"
)

const strongPassword = "Corr3ct-Horse"

// parámetros baratos para que los tests no tarden
var testHashing = password.Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}

type mailbox struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (m *mailbox) Send(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mailbox) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

var codeRE = regexp.MustCompile(`\b([0-9]{6})\b`)

func (m *mailbox) lastCodeFor(t *testing.T, to string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To == to {
			match := codeRE.FindStringSubmatch(m.sent[i].Text)
			require.Len(t, match, 2)
			return match[1]
		}
	}
	t.Fatalf("no mail sent to %s", to)
	return ""
}

// fakeIdentity resuelve tokens opacos a claims prefijados.
type fakeIdentity struct {
	claims map[string]*google.Claim
}

func (f *fakeIdentity) Verify(_ context.Context, idToken string) (*google.Claim, error) {
	if c, ok := f.claims[idToken]; ok {
		return c, nil
	}
	return nil, google.ErrInvalidToken
}

type fixture struct {
	svc    Services
	users  *memory.UserRepo
	mail   *mailbox
	issuer *jwtx.Issuer
	idp    *fakeIdentity
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users: memory.NewUserRepo(),
		mail:  &mailbox{},
		idp:   &fakeIdentity{claims: map[string]*google.Claim{}},
		now:   time.Now(),
	}
	var err error
	f.issuer, err = jwtx.NewIssuer(jwtx.Config{
		Issuer:        "bizdesk-test",
		AccessSecret:  "access-secret-access-secret-0123456789",
		RefreshSecret: "refresh-secret-refresh-secret-0123456789",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	require.NoError(t, err)

	codes := otp.NewService(otp.Deps{
		Codes:   memory.NewCodeRepo(),
		Mailer:  f.mail,
		Product: "Bizdesk",
		Now:     func() time.Time { return f.now },
	})

	f.svc = NewServices(Deps{
		Users:    f.users,
		Codes:    codes,
		Issuer:   f.issuer,
		Identity: f.idp,
		Policy:   password.Policy{MinLength: 8, RequireUpper: true, RequireLower: true, RequireDigit: true},
		Hashing:  testHashing,
	})
	return f
}

// seedPasswordUser crea una cuenta directamente en el store.
func (f *fixture) seedPasswordUser(t *testing.T, email, plain string, role repository.Role, status repository.Status) *repository.User {
	t.Helper()
	h, err := password.Hash(testHashing, plain)
	require.NoError(t, err)
	u := &repository.User{Email: email, PasswordHash: &h, Role: role, Status: status, EmailVerified: true}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) signupWithPassword(t *testing.T, email string) *Session {
	t.Helper()
	ctx := context.Background()
	res, err := f.svc.Signup.Signup(ctx, PasswordSignupStart{Email: email, Password: strongPassword})
	require.NoError(t, err)
	require.True(t, res.CodeSent)

	code := f.mail.lastCodeFor(t, email)
	res, err = f.svc.Signup.Signup(ctx, PasswordSignupComplete{Email: email, Password: strongPassword, Code: code})
	require.NoError(t, err)
	require.NotNil(t, res.Session)
	return res.Session
}

var errBoom = errors.New("boom")
