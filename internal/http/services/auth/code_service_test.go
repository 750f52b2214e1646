package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
)

func TestResendCode_NoAccountRequired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Code.ResendCode(ctx, "Someone@X.com"))
	assert.Equal(t, 1, f.mail.count())
	assert.NotEmpty(t, f.mail.lastCodeFor(t, "someone@x.com"))

	assert.ErrorIs(t, f.svc.Code.ResendCode(ctx, "nope"), ErrInvalidEmail)

	f.mail.err = errBoom
	assert.ErrorIs(t, f.svc.Code.ResendCode(ctx, "someone@x.com"), ErrCodeDispatch)
}

func TestResendCode_ReplacesPreviousCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Code.ResendCode(ctx, "a@x.com"))
	first := f.mail.lastCodeFor(t, "a@x.com")
	require.NoError(t, f.svc.Code.ResendCode(ctx, "a@x.com"))
	second := f.mail.lastCodeFor(t, "a@x.com")

	if first != second {
		assert.ErrorIs(t, f.svc.Code.VerifyCode(ctx, "a@x.com", first), ErrCodeMismatch)
	}
	assert.NoError(t, f.svc.Code.VerifyCode(ctx, "a@x.com", second))
}

func TestVerifyCode_MarksAccountVerified(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedPasswordUser(t, "ana@x.com", strongPassword, repository.RoleUser, repository.StatusActive)
	require.NoError(t, f.users.Create(ctx, &repository.User{Email: "new@x.com", PasswordHash: u.PasswordHash}))

	require.NoError(t, f.svc.Code.ResendCode(ctx, "new@x.com"))
	code := f.mail.lastCodeFor(t, "new@x.com")
	require.NoError(t, f.svc.Code.VerifyCode(ctx, "new@x.com", code))

	stored, err := f.users.GetByEmail(ctx, "new@x.com")
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)

	// un solo uso
	assert.ErrorIs(t, f.svc.Code.VerifyCode(ctx, "new@x.com", code), ErrCodeNotFound)
	assert.ErrorIs(t, f.svc.Code.VerifyCode(ctx, "new@x.com", ""), ErrInvalidInput)
}
