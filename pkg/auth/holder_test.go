package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogdeck/blogdeck/cli/pkg/api"
	"github.com/blogdeck/blogdeck/cli/pkg/api/apitest"
	"github.com/blogdeck/blogdeck/cli/pkg/client"
	"github.com/blogdeck/blogdeck/cli/pkg/credentials"
	clierrors "github.com/blogdeck/blogdeck/cli/pkg/errors"
	"github.com/blogdeck/blogdeck/cli/pkg/storage"
	"github.com/blogdeck/blogdeck/cli/pkg/storage/memory"
)

type fixture struct {
	holder *Holder
	store  storage.Store
	srv    *apitest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.NewServer(t)
	store := memory.New()

	var holder *Holder
	httpClient := client.New(client.Options{
		BaseURL:        srv.BaseURL(),
		Timeout:        5 * time.Second,
		OnUnauthorized: func() { holder.HandleUnauthorized() },
	})
	holder = NewHolder(api.New(httpClient), store)
	return &fixture{holder: holder, store: store, srv: srv}
}

func TestLoginStoresAndPersistsSession(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("alice", "alice@example.com", "secret1")
	ctx := context.Background()

	require.NoError(t, f.holder.Login(ctx, "alice", "secret1"))

	assert.True(t, f.holder.IsAuthenticated())
	assert.Equal(t, "alice", f.holder.User().Username)
	assert.NotEmpty(t, f.holder.Token())
	assert.Empty(t, f.holder.LastError())
	assert.False(t, f.holder.Loading())

	creds, err := credentials.Load(ctx, f.store)
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, f.holder.Token(), creds.Token)
}

func TestLoginFailureRecordsMessage(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("alice", "alice@example.com", "secret1")

	err := f.holder.Login(context.Background(), "alice", "wrongpw")
	require.Error(t, err)

	assert.False(t, f.holder.IsAuthenticated())
	assert.Equal(t, "Invalid credentials", f.holder.LastError())

	f.holder.ClearError()
	assert.Empty(t, f.holder.LastError())
}

func TestLoginValidatesBeforeRequest(t *testing.T) {
	f := newFixture(t)

	err := f.holder.Login(context.Background(), "al", "secret1")
	require.Error(t, err)
	assert.True(t, clierrors.Is(err, clierrors.ErrorTypeValidation))
	assert.Equal(t, 0, f.srv.Requests())
	assert.Equal(t, "Username must be at least 3 characters long", f.holder.LastError())
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.holder.Register(context.Background(), "bob", "bob@example.com", "secret1"))
	assert.True(t, f.holder.IsAuthenticated())
	assert.Equal(t, "bob", f.holder.User().Username)

	err := f.holder.Register(context.Background(), "bob", "not-an-email", "secret1")
	assert.True(t, clierrors.Is(err, clierrors.ErrorTypeValidation))
}

func TestLogoutClearsSession(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("alice", "alice@example.com", "secret1")
	ctx := context.Background()
	require.NoError(t, f.holder.Login(ctx, "alice", "secret1"))

	staleToken := f.holder.Token()
	require.NoError(t, f.holder.Logout(ctx))

	assert.NotEmpty(t, staleToken)
	assert.False(t, f.holder.IsAuthenticated())
	assert.Nil(t, f.holder.User())
	assert.Empty(t, f.holder.Token())

	creds, err := credentials.Load(ctx, f.store)
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, credentials.Save(ctx, f.store, &credentials.Credentials{
		User:  &api.User{ID: "u1", Username: "alice"},
		Token: "persisted",
	}))

	require.NoError(t, f.holder.Restore(ctx))
	assert.True(t, f.holder.IsAuthenticated())
	assert.Equal(t, "persisted", f.holder.Token())
}

func TestRestoreIgnoresIncompleteRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, credentials.Save(ctx, f.store, &credentials.Credentials{Token: "orphan"}))

	require.NoError(t, f.holder.Restore(ctx))
	assert.False(t, f.holder.IsAuthenticated())
}

func TestVerifyAuth(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("alice", "alice@example.com", "secret1")
	ctx := context.Background()

	assert.False(t, f.holder.VerifyAuth(ctx), "no token means not verified")

	require.NoError(t, f.holder.Login(ctx, "alice", "secret1"))
	assert.True(t, f.holder.VerifyAuth(ctx))
	assert.Equal(t, "alice@example.com", f.holder.User().Email)

	f.srv.RevokeToken(f.holder.Token())
	assert.False(t, f.holder.VerifyAuth(ctx))
	assert.False(t, f.holder.IsAuthenticated())
}

func TestUnauthorizedResponseEndsSession(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("alice", "alice@example.com", "secret1")
	ctx := context.Background()
	require.NoError(t, f.holder.Login(ctx, "alice", "secret1"))

	token := f.holder.Token()
	f.srv.RevokeToken(token)

	_, err := f.holder.ChangePassword(ctx, "secret1", "secret2")
	require.Error(t, err)
	assert.False(t, f.holder.IsAuthenticated())

	creds, loadErr := credentials.Load(ctx, f.store)
	require.NoError(t, loadErr)
	assert.Nil(t, creds)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("alice", "alice@example.com", "secret1")
	ctx := context.Background()

	_, err := f.holder.ChangePassword(ctx, "secret1", "secret2")
	assert.True(t, clierrors.Is(err, clierrors.ErrorTypeNotLoggedIn))

	require.NoError(t, f.holder.Login(ctx, "alice", "secret1"))

	_, err = f.holder.ChangePassword(ctx, "secret1", "secret1")
	assert.Equal(t, "New password must be different from current password", clierrors.Message(err))

	msg, err := f.holder.ChangePassword(ctx, "secret1", "secret2")
	require.NoError(t, err)
	assert.Equal(t, "Password changed successfully", msg)
	assert.Equal(t, "secret2", f.srv.Password("alice"))
	assert.True(t, f.holder.IsAuthenticated())
}

func TestForgotPassword(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("alice", "alice@example.com", "secret1")

	msg, preview, err := f.holder.ForgotPassword(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, msg)
	assert.Contains(t, preview, "https://")

	_, _, err = f.holder.ForgotPassword(context.Background(), "nobody@example.com")
	assert.Equal(t, "No user found with that email", clierrors.Message(err))
}

func TestResetPasswordSignsIn(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("alice", "alice@example.com", "secret1")
	resetToken := f.srv.IssueResetToken("alice")

	require.NoError(t, f.holder.ResetPassword(context.Background(), resetToken, "brandnew"))
	assert.True(t, f.holder.IsAuthenticated())
	assert.Equal(t, "alice", f.holder.User().Username)
}

func TestHandleSessionError(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("alice", "alice@example.com", "secret1")
	require.NoError(t, f.holder.Login(context.Background(), "alice", "secret1"))

	other := clierrors.NotFoundError("Post", "x")
	assert.Same(t, other, f.holder.HandleSessionError(other))
	assert.True(t, f.holder.IsAuthenticated())

	err := f.holder.HandleSessionError(clierrors.FromStatus(401, "Token expired", "", nil))
	assert.True(t, clierrors.Is(err, clierrors.ErrorTypeSessionExpired))
	assert.Equal(t, "Token expired", clierrors.Message(err))
	assert.False(t, f.holder.IsAuthenticated())
}

func TestIsSessionError(t *testing.T) {
	assert.False(t, IsSessionError(nil))
	assert.True(t, IsSessionError(clierrors.FromStatus(401, "", "", nil)))
	assert.True(t, IsSessionError(clierrors.SessionExpiredError("")))
	assert.False(t, IsSessionError(clierrors.FromStatus(403, "", "", nil)))
}

func TestTokenClaims(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.holder.TokenClaims()
	assert.True(t, clierrors.Is(err, clierrors.ErrorTypeNotLoggedIn))

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	require.NoError(t, credentials.Save(ctx, f.store, &credentials.Credentials{
		User:  &api.User{ID: "u1", Username: "alice"},
		Token: signed,
	}))
	require.NoError(t, f.holder.Restore(ctx))

	claims, err := f.holder.TokenClaims()
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.True(t, claims.ExpiresAt.Equal(exp))
	assert.False(t, claims.Expired(time.Now()))
	assert.True(t, claims.Expired(exp.Add(time.Minute)))
}

func TestParseClaimsRejectsOpaqueTokens(t *testing.T) {
	_, err := ParseClaims("tok-not-a-jwt")
	assert.Error(t, err)
}
