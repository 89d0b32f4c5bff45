package auth

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"halalai/cmd/identity"
	"halalai/cmd/internal/auth/token"
	"halalai/cmd/security/password"
)

var testSecret = []byte(strings.Repeat("s", 32))

func testHasher() *identity.Hasher {
	cfg := password.DefaultConfig()
	cfg.Cost = bcrypt.MinCost
	return identity.NewHasherWithConfig(cfg)
}

func testTokens(t *testing.T, lifetime time.Duration) *token.Service {
	t.Helper()
	svc, err := token.NewService(token.Config{Secret: testSecret, Lifetime: lifetime})
	require.NoError(t, err)
	return svc
}

// countingStore wraps a store and records Save calls, so tests can assert
// that failed registrations never reach the write.
type countingStore struct {
	identity.Store
	saves int
}

func (c *countingStore) Save(ctx context.Context, u identity.User) (identity.User, error) {
	c.saves++
	return c.Store.Save(ctx, u)
}

func newTestService(t *testing.T, lifetime time.Duration) (*Service, *countingStore) {
	t.Helper()
	store := &countingStore{Store: identity.NewMemoryStore()}
	svc, err := NewService(slog.Default(), store, testHasher(), testTokens(t, lifetime))
	require.NoError(t, err)
	return svc, store
}

func TestRegister_IssuesValidToken(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)

	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "alice", res.User.Username)
	assert.Equal(t, "alice@x.com", res.User.Email)
	assert.True(t, res.User.Enabled)
	assert.NotZero(t, res.User.ID)
	assert.NotEqual(t, "password123", res.User.PasswordHash)
}

func TestRegister_DuplicateUsernameNeverWrites(t *testing.T) {
	svc, store := newTestService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)
	require.Equal(t, 1, store.saves)

	_, err = svc.Register(ctx, "alice", "fresh@x.com", "password123")
	assert.ErrorIs(t, err, ErrDuplicateUsername)
	assert.Equal(t, 1, store.saves, "duplicate registration must not call Save")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob", "alice@x.com", "password123")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestLogin_ByUsernameAndByEmail(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice", res.User.Username)

	res, err = svc.Login(ctx, "alice@x.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice", res.User.Username)
}

func TestLogin_Failures(t *testing.T) {
	svc, store := newTestService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrUserNotFound)

	// Disable the account; correct credentials must no longer log in.
	u, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	u.Enabled = false
	_, err = store.Save(ctx, u)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "password123")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestRefresh_Failures(t *testing.T) {
	svc, store := newTestService(t, time.Hour)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Token whose embedded user id disagrees with the stored record.
	forgedTokens := testTokens(t, time.Hour)
	forged, err := forgedTokens.Issue("alice", res.User.ID+1)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Disabled account cannot refresh.
	u, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	u.Enabled = false
	_, err = store.Save(ctx, u)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, res.Token)
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestRefresh_UnknownSubject(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	// Correctly signed token for a user the store has never seen.
	tokens := testTokens(t, time.Hour)
	ghost, err := tokens.Issue("ghost", 99)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, ghost)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRefresh_UnexpiredTokenAlsoRefreshes(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)

	// Eager extension: the presented token is still live.
	again, err := svc.Refresh(ctx, res.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, again.Token)

	// Idempotent in effect: refresh twice, both results validate.
	third, err := svc.Refresh(ctx, again.Token)
	require.NoError(t, err)

	tokens := testTokens(t, time.Hour)
	assert.True(t, tokens.Validate(again.Token, "alice"))
	assert.True(t, tokens.Validate(third.Token, "alice"))
}

// TestAuthLifecycle walks the register -> duplicate -> login -> expire ->
// refresh scenario end to end.
func TestAuthLifecycle(t *testing.T) {
	ctx := context.Background()
	store := identity.NewMemoryStore()
	hasher := testHasher()

	live := testTokens(t, time.Hour)
	svc, err := NewService(slog.Default(), store, hasher, live)
	require.NoError(t, err)

	// Register -> token A valid for "alice".
	a, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)
	assert.True(t, live.Validate(a.Token, "alice"))

	// Same username again -> duplicate.
	_, err = svc.Register(ctx, "alice", "alice2@x.com", "password123")
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	// Login -> token B valid for "alice".
	b, err := svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.True(t, live.Validate(b.Token, "alice"))

	// Force-expire: a service sharing the secret but issuing with a
	// negative lifetime produces an already-expired token B'.
	expiring := testTokens(t, -time.Second)
	expiredSvc, err := NewService(slog.Default(), store, hasher, expiring)
	require.NoError(t, err)

	bExpired, err := expiredSvc.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.True(t, expiring.IsExpired(bExpired.Token))

	// Refresh with the expired token still succeeds and yields token C
	// valid for "alice".
	c, err := svc.Refresh(ctx, bExpired.Token)
	require.NoError(t, err)
	assert.True(t, live.Validate(c.Token, "alice"))
}
