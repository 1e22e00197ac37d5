package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClientRoundTrip(t *testing.T) {
	client := NewMemoryClient(100)
	defer client.Close()

	ctx := context.Background()

	_, err := client.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, client.Set(ctx, "k1", []byte("v1"), time.Minute))

	got, err := client.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, client.Delete(ctx, "k1"))
	_, err = client.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClientExpiry(t *testing.T) {
	client := NewMemoryClient(100)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "short", []byte("v"), 10*time.Millisecond))

	time.Sleep(30 * time.Millisecond)

	_, err := client.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClientDeleteByPrefix(t *testing.T) {
	client := NewMemoryClient(100)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "report:a", []byte("1"), time.Minute))
	require.NoError(t, client.Set(ctx, "report:b", []byte("2"), time.Minute))
	require.NoError(t, client.Set(ctx, "other:c", []byte("3"), time.Minute))

	require.NoError(t, client.DeleteByPrefix(ctx, "report:"))

	_, err := client.Get(ctx, "report:a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = client.Get(ctx, "report:b")
	assert.ErrorIs(t, err, ErrCacheMiss)

	got, err := client.Get(ctx, "other:c")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), got)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "report:abc:v1", Key("report", "abc", "v1"))
}
