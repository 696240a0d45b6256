package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozyrev/leadwell/internal/auth"
	"github.com/akozyrev/leadwell/internal/user"
	userstore "github.com/akozyrev/leadwell/internal/user/store"
)

func newService(t *testing.T, ttl time.Duration) (*auth.Service, *user.User) {
	t.Helper()

	users := userstore.New()

	u, err := user.New("admin@crm.local", "Admin", "Adminov", "admin123", "admin")
	require.NoError(t, err)
	require.NoError(t, users.Save(context.Background(), u))

	return auth.NewService(users, "test-secret", "leadwell", ttl), u
}

func TestAuthenticate(t *testing.T) {
	svc, u := newService(t, time.Hour)

	token, got, err := svc.Authenticate(context.Background(), "admin@crm.local", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, u.ID, got.ID)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc, _ := newService(t, time.Hour)

	_, _, err := svc.Authenticate(context.Background(), "admin@crm.local", "nope")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	svc, _ := newService(t, time.Hour)

	_, _, err := svc.Authenticate(context.Background(), "ghost@crm.local", "admin123")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthenticate_InactiveUser(t *testing.T) {
	users := userstore.New()

	u, err := user.New("off@crm.local", "Off", "Line", "secret")
	require.NoError(t, err)
	u.Deactivate()
	require.NoError(t, users.Save(context.Background(), u))

	svc := auth.NewService(users, "test-secret", "leadwell", time.Hour)

	_, _, err = svc.Authenticate(context.Background(), "off@crm.local", "secret")
	assert.ErrorIs(t, err, auth.ErrInactiveUser)
}

func TestVerify(t *testing.T) {
	svc, u := newService(t, time.Hour)

	token, _, err := svc.Authenticate(context.Background(), "admin@crm.local", "admin123")
	require.NoError(t, err)

	got, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Roles, got.Roles)
}

func TestVerify_Expired(t *testing.T) {
	svc, _ := newService(t, -time.Minute)

	token, _, err := svc.Authenticate(context.Background(), "admin@crm.local", "admin123")
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestVerify_Garbage(t *testing.T) {
	svc, _ := newService(t, time.Hour)

	_, err := svc.Verify(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestVerify_WrongKey(t *testing.T) {
	svc, _ := newService(t, time.Hour)

	token, _, err := svc.Authenticate(context.Background(), "admin@crm.local", "admin123")
	require.NoError(t, err)

	other := auth.NewService(userstore.New(), "other-secret", "leadwell", time.Hour)

	_, err = other.Verify(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestContextRoundTrip(t *testing.T) {
	_, u := newService(t, time.Hour)

	ctx := auth.WithUser(context.Background(), u)
	assert.Equal(t, u, auth.FromContext(ctx))
	assert.Nil(t, auth.FromContext(context.Background()))
}
