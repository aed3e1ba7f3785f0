// ABOUTME: Unit tests for MockStore behavior not covered by the shared contract tests
// ABOUTME: Focuses on copy isolation and injected write failures

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore_CopiesValues(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	value := []byte("original")
	require.NoError(t, store.Put(ctx, "k", value))

	// Mutating the caller's slice must not change the stored value
	value[0] = 'X'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))

	// Mutating the returned slice must not change the stored value either
	got[0] = 'Y'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(again))
}

func TestMockStore_PutErr(t *testing.T) {
	store := NewMockStore()
	store.PutErr = errors.New("disk full")
	ctx := context.Background()

	err := store.Put(ctx, "k", []byte("v"))
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, 0, store.PutCount())

	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMockStore_PutCount(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a", nil))
	require.NoError(t, store.Put(ctx, "a", []byte("x")))
	assert.Equal(t, 2, store.PutCount())
}
