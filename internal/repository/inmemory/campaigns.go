package inmemory

import (
	"sync"
	"time"

	campaignsdomain "coop-intake-go/internal/domain/campaigns"
)

type InMemoryCampaignCache struct {
	mu    sync.RWMutex
	items map[string]campaignItem
}

type campaignItem struct {
	value     campaignsdomain.Campaign
	expiresAt time.Time
}

func NewInMemoryCampaignCache() *InMemoryCampaignCache {
	return &InMemoryCampaignCache{
		items: make(map[string]campaignItem),
	}
}

func (c *InMemoryCampaignCache) GetBySlug(slug string) (*campaignsdomain.Campaign, bool) {
	now := time.Now()

	c.mu.RLock()
	item, ok := c.items[slug]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[slug]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, slug)
		}
		c.mu.Unlock()
		return nil, false
	}

	value := item.value
	value.Professions = append([]string(nil), item.value.Professions...)
	return &value, true
}

func (c *InMemoryCampaignCache) SetBySlug(slug string, campaign *campaignsdomain.Campaign, ttl time.Duration) {
	if campaign == nil || ttl <= 0 {
		c.DeleteBySlug(slug)
		return
	}

	value := *campaign
	value.Professions = append([]string(nil), campaign.Professions...)

	c.mu.Lock()
	c.items[slug] = campaignItem{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *InMemoryCampaignCache) DeleteBySlug(slug string) {
	c.mu.Lock()
	delete(c.items, slug)
	c.mu.Unlock()
}

func (c *InMemoryCampaignCache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]campaignItem)
	c.mu.Unlock()
}
