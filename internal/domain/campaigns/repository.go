package campaigns

import "context"

type Repository interface {
	ListCampaigns(ctx context.Context) ([]Campaign, error)
	GetCampaignByID(ctx context.Context, id string) (*Campaign, error)
	GetCampaignBySlug(ctx context.Context, slug string) (*Campaign, error)
	CreateCampaign(ctx context.Context, campaign *Campaign) error
	UpdateCampaign(ctx context.Context, campaign *Campaign) error
}
