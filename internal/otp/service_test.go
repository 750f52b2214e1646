package otp

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	"github.com/dropDatabas3/bizdesk/internal/email"
	"github.com/dropDatabas3/bizdesk/internal/store/memory"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (m *captureMailer) Send(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

var sixDigits = regexp.MustCompile(`\b([0-9]{6})\b`)

func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	match := sixDigits.FindStringSubmatch(m.sent[len(m.sent)-1].Text)
	require.Len(t, match, 2)
	return match[1]
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newSvc(t *testing.T) (Service, *captureMailer, *fakeClock) {
	t.Helper()
	mailer := &captureMailer{}
	clk := &fakeClock{t: time.Now()}
	svc := NewService(Deps{Codes: memory.NewCodeRepo(), Mailer: mailer, Now: clk.Now})
	return svc, mailer, clk
}

func TestIssueThenVerifyExactlyOnce(t *testing.T) {
	svc, mailer, clk := newSvc(t)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "A@X.com ", email.PurposeSignup))
	code := mailer.lastCode(t)
	assert.Len(t, code, 6)
	assert.Equal(t, "a@x.com", mailer.sent[0].To)

	clk.Advance(5 * time.Minute)
	require.NoError(t, svc.Verify(ctx, "a@x.com", code))
	assert.ErrorIs(t, svc.Verify(ctx, "a@x.com", code), ErrNotFound)
}

func TestVerifyAfterExpiry(t *testing.T) {
	svc, mailer, clk := newSvc(t)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "a@x.com", email.PurposeSignup))
	code := mailer.lastCode(t)

	clk.Advance(10 * time.Minute)
	assert.ErrorIs(t, svc.Verify(ctx, "a@x.com", code), ErrExpired)
}

func TestVerifyMismatchKeepsCode(t *testing.T) {
	svc, mailer, _ := newSvc(t)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "a@x.com", email.PurposeReset))
	code := mailer.lastCode(t)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	assert.ErrorIs(t, svc.Verify(ctx, "a@x.com", wrong), ErrMismatch)
	assert.NoError(t, svc.Verify(ctx, "a@x.com", code))
}

func TestReissueReplacesPreviousCode(t *testing.T) {
	mailer := &captureMailer{}
	codes := []string{"111111", "222222"}
	var i int
	svc := NewService(Deps{
		Codes:  memory.NewCodeRepo(),
		Mailer: mailer,
		Generate: func(int) (string, error) {
			c := codes[i]
			i++
			return c, nil
		},
	})
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "a@x.com", email.PurposeSignup))
	require.NoError(t, svc.Issue(ctx, "a@x.com", email.PurposeSignup))

	assert.ErrorIs(t, svc.Verify(ctx, "a@x.com", "111111"), ErrMismatch)
	assert.NoError(t, svc.Verify(ctx, "a@x.com", "222222"))
}

func TestConcurrentVerifySingleWinner(t *testing.T) {
	svc, mailer, _ := newSvc(t)
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "a@x.com", email.PurposeSignup))
	code := mailer.lastCode(t)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if svc.Verify(ctx, "a@x.com", code) == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}

func TestIssue_DispatchFailureIsReported(t *testing.T) {
	mailer := &captureMailer{err: errors.New("smtp down")}
	svc := NewService(Deps{Codes: memory.NewCodeRepo(), Mailer: mailer})

	err := svc.Issue(context.Background(), "a@x.com", email.PurposeSignup)
	assert.ErrorIs(t, err, ErrDispatch)
}

func TestIssue_RejectsEmptyEmail(t *testing.T) {
	svc, mailer, _ := newSvc(t)
	assert.Error(t, svc.Issue(context.Background(), "  ", email.PurposeSignup))
	assert.Empty(t, mailer.sent)
	assert.ErrorIs(t, svc.Verify(context.Background(), "", "123456"), ErrNotFound)
}

func TestJanitor_StopsOnCancel(t *testing.T) {
	codes := memory.NewCodeRepo()
	j := &Janitor{Codes: codes, Every: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

type recordingCodes struct {
	*memory.CodeRepo
	last repository.VerificationCode
}

func (r *recordingCodes) Upsert(ctx context.Context, vc repository.VerificationCode) error {
	r.last = vc
	return r.CodeRepo.Upsert(ctx, vc)
}

func TestIssueStampsInjectedClock(t *testing.T) {
	mailer := &captureMailer{}
	clk := &fakeClock{t: time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)}
	codes := &recordingCodes{CodeRepo: memory.NewCodeRepo()}
	svc := NewService(Deps{Codes: codes, Mailer: mailer, Now: clk.Now, TTL: 10 * time.Minute})
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "a@x.com", email.PurposeSignup))
	assert.Equal(t, clk.Now(), codes.last.IssuedAt)
	assert.Equal(t, 10*time.Minute, codes.last.Lifetime())

	clk.Advance(5 * time.Minute)
	assert.NoError(t, svc.Verify(ctx, "a@x.com", mailer.lastCode(t)))
}
