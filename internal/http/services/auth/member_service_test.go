package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
)

func TestCreateMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := repository.Principal{ID: "admin-1", Email: "boss@x.com", Role: repository.RoleAdmin}

	pu, err := f.svc.Member.CreateMember(ctx, admin, MemberInput{
		Email: "Staff@X.com", Password: strongPassword, Name: "Sam", Role: repository.RoleMember,
	})
	require.NoError(t, err)
	assert.Equal(t, "staff@x.com", pu.Email)
	assert.Equal(t, repository.RoleMember, pu.Role)
	assert.False(t, pu.EmailVerified)

	// el miembro puede loguearse con su password
	sess, err := f.svc.Login.Login(ctx, PasswordLogin{Email: "staff@x.com", Password: strongPassword})
	require.NoError(t, err)
	assert.Equal(t, repository.RoleMember, sess.User.Role)

	_, err = f.svc.Member.CreateMember(ctx, admin, MemberInput{Email: "staff@x.com", Password: strongPassword, Role: repository.RoleUser})
	assert.ErrorIs(t, err, ErrAccountExists)

	_, err = f.svc.Member.CreateMember(ctx, admin, MemberInput{Email: "x@x.com", Password: strongPassword, Role: "owner"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = f.svc.Member.CreateMember(ctx, admin, MemberInput{Email: "y@x.com", Password: "weak", Role: repository.RoleUser})
	assert.ErrorIs(t, err, ErrWeakPassword)
}
