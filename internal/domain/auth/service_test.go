package auth

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appctx "inkhub/internal/core/context"
	"inkhub/internal/core/security"
	"inkhub/internal/data"
	"inkhub/internal/domain/entity"
	"inkhub/internal/store/local"
)

func newTestService(t *testing.T) (*Service, *data.Layer) {
	t.Helper()

	blob, err := local.Open(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	policy, err := security.DefaultPolicy()
	require.NoError(t, err)

	layer := data.NewLocal(blob, policy)
	require.NoError(t, layer.Load(context.Background()))

	svc := NewService(layer, NewSessionManager(),
		NewJWTService(DefaultJWTConfig("test-secret")), DefaultServiceConfig())
	return svc, layer
}

func seedUser(t *testing.T, layer *data.Layer, username, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = layer.CreateUser(context.Background(), entity.User{
		Username: username,
		Password: string(hash),
		Role:     entity.RoleAdmin,
		Branch:   "Main",
	})
	require.NoError(t, err)
}

func TestLoginRotatesSessionToken(t *testing.T) {
	svc, layer := newTestService(t)
	seedUser(t, layer, "jane", "hunter22")

	res, err := svc.Login(context.Background(), "jane", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Empty(t, res.User.Password)

	// The durable token and the local session must agree before login
	// returns.
	stored, ok := layer.User("jane")
	require.True(t, ok)
	username, token, ok := svc.sessions.Current()
	require.True(t, ok)
	assert.Equal(t, "jane", username)
	assert.Equal(t, stored.SessionToken, token)
	assert.NotEmpty(t, token)

	// A second login supersedes the first token.
	res2, err := svc.Login(context.Background(), "JANE", "hunter22")
	require.NoError(t, err)
	require.NotNil(t, res2)
	stored2, _ := layer.User("jane")
	assert.NotEqual(t, stored.SessionToken, stored2.SessionToken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, layer := newTestService(t)
	seedUser(t, layer, "jane", "hunter22")

	_, err := svc.Login(context.Background(), "jane", "wrong")
	assert.Error(t, err)
	_, err = svc.Login(context.Background(), "nobody", "hunter22")
	assert.Error(t, err)
}

func TestLoginUpgradesLegacyPlaintextPassword(t *testing.T) {
	svc, layer := newTestService(t)
	_, err := layer.CreateUser(context.Background(), entity.User{
		Username: "legacy",
		Password: "plaintext",
		Role:     entity.RoleUser,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "legacy", "plaintext")
	require.NoError(t, err)

	stored, _ := layer.User("legacy")
	assert.True(t, strings.HasPrefix(stored.Password, "$2"))
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("plaintext")))

	// And the upgraded hash keeps working.
	_, err = svc.Login(context.Background(), "legacy", "plaintext")
	assert.NoError(t, err)
}

func TestIdentityRoundTrip(t *testing.T) {
	svc, layer := newTestService(t)
	seedUser(t, layer, "jane", "hunter22")

	res, err := svc.Login(context.Background(), "jane", "hunter22")
	require.NoError(t, err)

	identity, err := svc.Identity(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "jane", identity.Username)
	assert.Equal(t, entity.RoleAdmin, identity.Role)
	assert.True(t, identity.AllBranches)

	_, err = svc.Identity("not-a-token")
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, layer := newTestService(t)
	seedUser(t, layer, "jane", "hunter22")
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{Username: "jane", Role: entity.RoleAdmin})

	require.Error(t, svc.ChangePassword(ctx, "jane", "wrong", "newpassword"))
	require.Error(t, svc.ChangePassword(ctx, "jane", "hunter22", "shrt"))
	require.NoError(t, svc.ChangePassword(ctx, "jane", "hunter22", "newpassword"))

	_, err := svc.Login(ctx, "jane", "hunter22")
	assert.Error(t, err)
	_, err = svc.Login(ctx, "jane", "newpassword")
	assert.NoError(t, err)
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, layer := newTestService(t)

	created, err := svc.Register(context.Background(), entity.User{
		Username: "Bob", Email: "bob@example.com",
	}, "secret99")
	require.NoError(t, err)
	assert.Equal(t, "bob", created.Username)
	assert.Empty(t, created.Password)

	stored, ok := layer.User("bob")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(stored.Password, "$2"))
}
