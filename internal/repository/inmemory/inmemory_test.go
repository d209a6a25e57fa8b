package inmemory

import (
	"testing"
	"time"

	campaignsdomain "coop-intake-go/internal/domain/campaigns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignCacheExpiry(t *testing.T) {
	cache := NewInMemoryCampaignCache()
	campaign := &campaignsdomain.Campaign{ID: "c1", Slug: "motoristas", Professions: []string{"Motorista"}}

	cache.SetBySlug("motoristas", campaign, time.Hour)
	got, ok := cache.GetBySlug("motoristas")
	require.True(t, ok)
	assert.Equal(t, "c1", got.ID)

	got.Professions[0] = "changed"
	again, _ := cache.GetBySlug("motoristas")
	assert.Equal(t, "Motorista", again.Professions[0])

	cache.SetBySlug("short", campaign, time.Nanosecond)
	time.Sleep(time.Millisecond)
	_, ok = cache.GetBySlug("short")
	assert.False(t, ok)

	cache.DeleteBySlug("motoristas")
	_, ok = cache.GetBySlug("motoristas")
	assert.False(t, ok)
}

func TestSessionStore(t *testing.T) {
	store := NewInMemorySessionStore()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	token, expiresAt, err := store.Create(24 * time.Hour)
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.Equal(t, now.Add(24*time.Hour), expiresAt)
	assert.True(t, store.Valid(token))
	assert.False(t, store.Valid("forged"))

	now = now.Add(25 * time.Hour)
	assert.False(t, store.Valid(token))

	now = now.Add(-25 * time.Hour)
	other, _, err := store.Create(time.Hour)
	require.NoError(t, err)
	store.Delete(other)
	assert.False(t, store.Valid(other))
}
