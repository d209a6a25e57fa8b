package proposals

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	proposalsdomain "coop-intake-go/internal/domain/proposals"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(proposalsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateProposal(ctx context.Context, proposal *proposalsdomain.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

func (r *PostgresRepository) GetProposalByID(ctx context.Context, id string) (*proposalsdomain.Proposal, error) {
	var proposal proposalsdomain.Proposal
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&proposal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, proposalsdomain.ErrProposalNotFound
		}
		return nil, err
	}
	return &proposal, nil
}

func (r *PostgresRepository) GetProposalByUploadToken(ctx context.Context, token string) (*proposalsdomain.Proposal, error) {
	var proposal proposalsdomain.Proposal
	if err := r.db.WithContext(ctx).Where("upload_token = ?", token).First(&proposal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, proposalsdomain.ErrProposalNotFound
		}
		return nil, err
	}
	return &proposal, nil
}

func (r *PostgresRepository) ListProposals(ctx context.Context, filter proposalsdomain.ListFilter) ([]proposalsdomain.Proposal, int64, error) {
	query := r.db.WithContext(ctx).Model(&proposalsdomain.Proposal{})
	if filter.CampaignID != "" {
		query = query.Where("campaign_id = ?", filter.CampaignID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at desc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var items []proposalsdomain.Proposal
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresRepository) ListProposalsByCampaign(ctx context.Context, campaignID string) ([]proposalsdomain.Proposal, error) {
	var items []proposalsdomain.Proposal
	if err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) MarkDocumentsReceived(ctx context.Context, id string, submittedAt time.Time) error {
	return r.updateStatus(ctx, id, map[string]interface{}{
		"status":                 proposalsdomain.StatusDocumentsReceived,
		"documents_submitted_at": submittedAt,
	})
}

func (r *PostgresRepository) MarkSynced(ctx context.Context, id string, syncedAt time.Time) error {
	return r.updateStatus(ctx, id, map[string]interface{}{
		"status":        proposalsdomain.StatusCompleted,
		"crm_synced":    true,
		"crm_synced_at": syncedAt,
	})
}

func (r *PostgresRepository) updateStatus(ctx context.Context, id string, values map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&proposalsdomain.Proposal{}).
		Where("id = ?", id).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return proposalsdomain.ErrProposalNotFound
	}
	return nil
}

// DeleteProposals removes the proposals in one statement; child rows go with
// them through ON DELETE CASCADE.
func (r *PostgresRepository) DeleteProposals(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&proposalsdomain.Proposal{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, proposalsdomain.ErrProposalNotFound
	}
	return result.RowsAffected, nil
}

func (r *PostgresRepository) CreateDocument(ctx context.Context, doc *proposalsdomain.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *PostgresRepository) ListDocuments(ctx context.Context, proposalID string) ([]proposalsdomain.Document, error) {
	var items []proposalsdomain.Document
	if err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("uploaded_at asc, id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) DeleteDocumentsByType(ctx context.Context, proposalID string, docType proposalsdomain.DocumentType) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("proposal_id = ? AND type = ?", proposalID, docType).
		Delete(&proposalsdomain.Document{})
	return result.RowsAffected, result.Error
}

func (r *PostgresRepository) CreateNotification(ctx context.Context, notification *proposalsdomain.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *PostgresRepository) ListNotifications(ctx context.Context, proposalID string) ([]proposalsdomain.Notification, error) {
	var items []proposalsdomain.Notification
	if err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order(`"timestamp" desc`).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) CreateSyncAttempt(ctx context.Context, attempt *proposalsdomain.SyncAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *PostgresRepository) ListSyncAttempts(ctx context.Context, proposalID string) ([]proposalsdomain.SyncAttempt, error) {
	var items []proposalsdomain.SyncAttempt
	if err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order(`"timestamp" desc`).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
