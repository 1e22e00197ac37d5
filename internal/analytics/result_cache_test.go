package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniretail-ai/support-engine/internal/cache"
	"github.com/omniretail-ai/support-engine/internal/observability"
)

func TestResultCache_RoundTrip(t *testing.T) {
	rc := NewResultCache(cache.NewMemoryClient(100), observability.Discard(), time.Minute)
	ctx := context.Background()

	_, ok := rc.Get(ctx, "SELECT 1")
	assert.False(t, ok)

	rc.Put(ctx, "SELECT 1", "resultado")

	got, ok := rc.Get(ctx, "SELECT 1")
	require.True(t, ok)
	assert.Equal(t, "resultado", got)
}

func TestResultCache_NormalizedKey(t *testing.T) {
	rc := NewResultCache(cache.NewMemoryClient(100), observability.Discard(), time.Minute)
	ctx := context.Background()

	rc.Put(ctx, "SELECT * FROM orders", "r")

	// Trim and case fold into the same fingerprint.
	got, ok := rc.Get(ctx, "  select * from ORDERS  ")
	require.True(t, ok)
	assert.Equal(t, "r", got)
}

func TestResultCache_Expiry(t *testing.T) {
	rc := NewResultCache(cache.NewMemoryClient(100), observability.Discard(), 20*time.Millisecond)
	ctx := context.Background()

	rc.Put(ctx, "SELECT 1", "resultado")
	time.Sleep(40 * time.Millisecond)

	_, ok := rc.Get(ctx, "SELECT 1")
	assert.False(t, ok)
}

func TestFingerprint_Deterministic(t *testing.T) {
	assert.Equal(t, Fingerprint("SELECT 1"), Fingerprint("select 1 "))
	assert.NotEqual(t, Fingerprint("SELECT 1"), Fingerprint("SELECT 2"))
}
