package campaigns

import "time"

type Cache interface {
	GetBySlug(slug string) (*Campaign, bool)
	SetBySlug(slug string, campaign *Campaign, ttl time.Duration)
	DeleteBySlug(slug string)
	Clear()
}

type noopCache struct{}

func (noopCache) GetBySlug(string) (*Campaign, bool) {
	return nil, false
}

func (noopCache) SetBySlug(string, *Campaign, time.Duration) {}

func (noopCache) DeleteBySlug(string) {}

func (noopCache) Clear() {}
