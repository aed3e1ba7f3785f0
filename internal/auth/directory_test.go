// ABOUTME: Tests for the bcrypt-backed user directory
// ABOUTME: Covers sign-up validation, login outcomes, and stored hash format

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/swavik-portal/internal/store"
)

func newTestDirectory(t *testing.T) (*Directory, *store.MockStore) {
	t.Helper()
	kv := store.NewMockStore()
	return NewDirectory(kv, 0, nil), kv
}

func TestDirectory_SignUpThenLogin(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	require.NoError(t, d.SignUp(ctx, "priya", "hunter2"))
	assert.NoError(t, d.Login(ctx, "priya", "hunter2"))
}

func TestDirectory_SignUpValidation(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"blank username", "", "secret", ErrMissingCredentials},
		{"whitespace username", "   ", "secret", ErrMissingCredentials},
		{"blank password", "priya", "", ErrMissingCredentials},
		{"short password", "priya", "abc", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, d.SignUp(ctx, tt.username, tt.password), tt.want)
		})
	}

	names, err := d.Usernames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDirectory_SignUpDuplicate(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	require.NoError(t, d.SignUp(ctx, "priya", "hunter2"))
	assert.ErrorIs(t, d.SignUp(ctx, "priya", "another"), ErrUserExists)
	assert.ErrorIs(t, d.SignUp(ctx, " priya ", "another"), ErrUserExists)

	// Original password still works
	assert.NoError(t, d.Login(ctx, "priya", "hunter2"))
}

func TestDirectory_LoginErrors(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()
	require.NoError(t, d.SignUp(ctx, "priya", "hunter2"))

	assert.ErrorIs(t, d.Login(ctx, "ravi", "hunter2"), ErrUnknownUser)
	assert.ErrorIs(t, d.Login(ctx, "priya", "wrong-pass"), ErrInvalidPassword)
	assert.ErrorIs(t, d.Login(ctx, "priya", ""), ErrMissingCredentials)
}

func TestDirectory_StoresHashNotPassword(t *testing.T) {
	d, kv := newTestDirectory(t)
	ctx := context.Background()
	require.NoError(t, d.SignUp(ctx, "priya", "hunter2"))

	data, err := kv.Get(ctx, store.KeyUsers)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")

	var users map[string]User
	require.NoError(t, json.Unmarshal(data, &users))
	require.Contains(t, users, "priya")
	assert.Contains(t, users["priya"].PasswordHash, "$2a$")
	assert.False(t, users["priya"].CreatedAt.IsZero())
}

func TestDirectory_CustomMinLength(t *testing.T) {
	d := NewDirectory(store.NewMockStore(), 8, nil)
	ctx := context.Background()

	err := d.SignUp(ctx, "priya", "short12")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	assert.Contains(t, err.Error(), "at least 8")

	assert.NoError(t, d.SignUp(ctx, "priya", "longer123"))
}

func TestDirectory_PasswordLengthCountsRunes(t *testing.T) {
	d, _ := newTestDirectory(t)

	// Four characters, more than four bytes
	assert.NoError(t, d.SignUp(context.Background(), "anya", "ééé€"))
}

func TestDirectory_SaveFailure(t *testing.T) {
	d, kv := newTestDirectory(t)
	kv.PutErr = errors.New("disk full")

	err := d.SignUp(context.Background(), "priya", "hunter2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving users")
}

func TestDirectory_CorruptTable(t *testing.T) {
	d, kv := newTestDirectory(t)
	ctx := context.Background()
	require.NoError(t, kv.Put(ctx, store.KeyUsers, []byte("{oops")))

	err := d.Login(ctx, "priya", "hunter2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding users")
}

func TestDirectory_Usernames(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()
	require.NoError(t, d.SignUp(ctx, "zoe", "pass1"))
	require.NoError(t, d.SignUp(ctx, "amir", "pass2"))

	names, err := d.Usernames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"amir", "zoe"}, names)
}
