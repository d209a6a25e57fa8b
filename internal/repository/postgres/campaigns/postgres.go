package campaigns

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	campaignsdomain "coop-intake-go/internal/domain/campaigns"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListCampaigns(ctx context.Context) ([]campaignsdomain.Campaign, error) {
	var items []campaignsdomain.Campaign
	if err := r.db.WithContext(ctx).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) GetCampaignByID(ctx context.Context, id string) (*campaignsdomain.Campaign, error) {
	var campaign campaignsdomain.Campaign
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&campaign).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, campaignsdomain.ErrCampaignNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

func (r *PostgresRepository) GetCampaignBySlug(ctx context.Context, slug string) (*campaignsdomain.Campaign, error) {
	var campaign campaignsdomain.Campaign
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&campaign).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, campaignsdomain.ErrCampaignNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

func (r *PostgresRepository) CreateCampaign(ctx context.Context, campaign *campaignsdomain.Campaign) error {
	if err := r.db.WithContext(ctx).Create(campaign).Error; err != nil {
		if isUniqueViolation(err) {
			return campaignsdomain.ErrSlugTaken
		}
		return err
	}
	return nil
}

func (r *PostgresRepository) UpdateCampaign(ctx context.Context, campaign *campaignsdomain.Campaign) error {
	result := r.db.WithContext(ctx).
		Model(&campaignsdomain.Campaign{}).
		Where("id = ?", campaign.ID).
		Updates(map[string]interface{}{
			"name":        campaign.Name,
			"slug":        campaign.Slug,
			"banner_url":  campaign.BannerURL,
			"client_id":   campaign.ClientID,
			"function_id": campaign.FunctionID,
			"professions": campaign.Professions,
			"active":      campaign.Active,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return campaignsdomain.ErrSlugTaken
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return campaignsdomain.ErrCampaignNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
