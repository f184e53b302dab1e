package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := OpenStore(context.Background(), DriverSQLite, ":memory:", nil)
	require.NoError(t, err)
	store.SetHashCost(bcrypt.MinCost)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLStoreAddAndLookup(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.AddUser(ctx, "user1", "pass1"))

	user, err := store.Lookup(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, "user1", user.Username)
	assert.NotEqual(t, "pass1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass1")))
	assert.False(t, user.CreatedAt.IsZero())
}

func TestSQLStoreLookupUnknown(t *testing.T) {
	_, err := newTestStore(t).Lookup(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSQLStoreDuplicateUser(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.AddUser(ctx, "user1", "pass1"))
	err := store.AddUser(ctx, "user1", "other")
	assert.True(t, errors.Is(err, ErrUserExists))
}

func TestSQLStoreAddUserRejectsEmptyInput(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	assert.ErrorIs(t, store.AddUser(ctx, "", "pass"), ErrInvalidInput)
	assert.ErrorIs(t, store.AddUser(ctx, "user", ""), ErrInvalidInput)
}

func TestSQLStoreAddUserPasswordByteLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// 40 runes, 80 bytes
	err := store.AddUser(ctx, "user1", strings.Repeat("ø", 40))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = store.Lookup(ctx, "user1")
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, store.AddUser(ctx, "user2", strings.Repeat("ø", 36)))
}

func TestSQLStoreSeed(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.AddUser(ctx, "user1", "original"))

	err := store.Seed(ctx, map[string]string{"user1": "pass1", "user2": "pass2"})
	require.NoError(t, err)

	u1, err := store.Lookup(ctx, "user1")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u1.PasswordHash), []byte("original")),
		"seeding keeps existing users")

	_, err = store.Lookup(ctx, "user2")
	assert.NoError(t, err)
}

func TestSQLStorePingAfterClose(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Close())

	err := store.Ping(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestOpenStoreUnsupportedDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), "oracle", "x", nil)
	assert.Error(t, err)
}
