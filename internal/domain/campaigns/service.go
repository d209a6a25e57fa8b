package campaigns

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
}

func NewService(repo Repository, cache Cache, cacheTTL time.Duration) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	return &Service{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

func (s *Service) ListCampaigns(ctx context.Context) ([]Campaign, error) {
	return s.repo.ListCampaigns(ctx)
}

func (s *Service) GetCampaign(ctx context.Context, id string) (*Campaign, error) {
	return s.repo.GetCampaignByID(ctx, id)
}

// GetActiveCampaignBySlug backs the public intake form; inactive campaigns are
// reported as not found.
func (s *Service) GetActiveCampaignBySlug(ctx context.Context, slug string) (*Campaign, error) {
	if cached, ok := s.cache.GetBySlug(slug); ok {
		return cached, nil
	}

	campaign, err := s.repo.GetCampaignBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !campaign.Active {
		return nil, ErrCampaignNotFound
	}

	s.cache.SetBySlug(slug, campaign, s.cacheTTL)
	return campaign, nil
}

// CreateCampaign checks the slug before inserting. The check is advisory; the
// unique index on campaigns.slug is what actually rejects a concurrent duplicate,
// surfacing as ErrSlugTaken from the repository.
func (s *Service) CreateCampaign(ctx context.Context, input CampaignInput) (*Campaign, error) {
	input = normalizeInput(input)
	if err := Validate(input); err != nil {
		return nil, err
	}

	if err := s.ensureSlugFree(ctx, input.Slug, ""); err != nil {
		return nil, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	campaign := Campaign{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Slug:        input.Slug,
		BannerURL:   input.BannerURL,
		ClientID:    input.ClientID,
		FunctionID:  input.FunctionID,
		Professions: input.Professions,
		Active:      active,
	}

	if err := s.repo.CreateCampaign(ctx, &campaign); err != nil {
		return nil, err
	}

	return &campaign, nil
}

func (s *Service) UpdateCampaign(ctx context.Context, id string, input CampaignInput) (*Campaign, error) {
	input = normalizeInput(input)
	if err := Validate(input); err != nil {
		return nil, err
	}

	campaign, err := s.repo.GetCampaignByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if campaign.Slug != input.Slug {
		if err := s.ensureSlugFree(ctx, input.Slug, campaign.ID); err != nil {
			return nil, err
		}
	}

	previousSlug := campaign.Slug
	campaign.Name = input.Name
	campaign.Slug = input.Slug
	campaign.BannerURL = input.BannerURL
	campaign.ClientID = input.ClientID
	campaign.FunctionID = input.FunctionID
	campaign.Professions = input.Professions
	if input.Active != nil {
		campaign.Active = *input.Active
	}
	campaign.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateCampaign(ctx, campaign); err != nil {
		return nil, err
	}

	s.cache.DeleteBySlug(previousSlug)
	s.cache.DeleteBySlug(campaign.Slug)
	return campaign, nil
}

func (s *Service) ensureSlugFree(ctx context.Context, slug, selfID string) error {
	existing, err := s.repo.GetCampaignBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrCampaignNotFound) {
			return nil
		}
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return ErrSlugTaken
}
