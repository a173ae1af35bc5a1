package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/imkarma/trophy/internal/store"
)

func newAuthServiceForTests(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "trophy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := NewService(st, time.Hour)
	svc.SetCost(bcrypt.MinCost)
	return svc, st
}

func TestSignupAndLogin(t *testing.T) {
	svc, st := newAuthServiceForTests(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)

	l, err := svc.Signup(ctx, " alice ", "hunter22", now)
	require.NoError(t, err)
	assert.Equal(t, "alice", l.User.Username)
	assert.NotEmpty(t, l.Token)
	assert.Equal(t, now.Add(time.Hour), l.ExpiresAt)

	u, err := st.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", u.PasswordHash)

	// Only the hash of the token is stored.
	_, err = st.GetSession(ctx, l.Token)
	assert.ErrorIs(t, err, store.ErrNotFound)

	name, err := svc.Authenticate(ctx, l.Token, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	l2, err := svc.Login(ctx, "alice", "hunter22", now)
	require.NoError(t, err)
	assert.NotEqual(t, l.Token, l2.Token)
}

func TestSignup_Validation(t *testing.T) {
	svc, _ := newAuthServiceForTests(t)
	ctx := context.Background()
	now := time.Now()

	_, err := svc.Signup(ctx, "", "hunter22", now)
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Signup(ctx, "bob", "12345", now)
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.Signup(ctx, "bob", "123456", now)
	require.NoError(t, err)
	_, err = svc.Signup(ctx, "bob", "abcdef", now)
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin_Rejects(t *testing.T) {
	svc, st := newAuthServiceForTests(t)
	ctx := context.Background()
	now := time.Now()

	_, err := svc.Signup(ctx, "alice", "hunter22", now)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "wrong-password", now)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "hunter22", now)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Local CLI users have no password.
	require.NoError(t, st.EnsureUser(ctx, "me"))
	_, err = svc.Login(ctx, "me", "anything", now)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_ExpiredSessionIsRejected(t *testing.T) {
	svc, st := newAuthServiceForTests(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 7, 10, 0, 0, 0, time.UTC)

	l, err := svc.Signup(ctx, "alice", "hunter22", now)
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, l.Token, l.ExpiresAt.Add(time.Second))
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = st.GetSession(ctx, hashToken(l.Token))
	assert.ErrorIs(t, err, store.ErrNotFound, "expired session should be purged")
}

func TestLogout(t *testing.T) {
	svc, _ := newAuthServiceForTests(t)
	ctx := context.Background()
	now := time.Now()

	l, err := svc.Signup(ctx, "alice", "hunter22", now)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, l.Token))

	_, err = svc.Authenticate(ctx, l.Token, now)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NoError(t, svc.Logout(ctx, "unknown"))
	assert.NoError(t, svc.Logout(ctx, ""))
}

func TestSetPassword_EnablesLogin(t *testing.T) {
	svc, st := newAuthServiceForTests(t)
	ctx := context.Background()

	require.NoError(t, st.EnsureUser(ctx, "me"))
	require.NoError(t, svc.SetPassword(ctx, "me", "s3cret!"))

	_, err := svc.Login(ctx, "me", "s3cret!", time.Now())
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.SetPassword(ctx, "me", "short"), ErrWeakPassword)
}
